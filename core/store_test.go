package core

import (
	"testing"
	"time"
)

func TestQ(t *testing.T) {
	day := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		format string
		args   []interface{}
		want   string
	}{
		{
			name:   "string quoted",
			format: `status = %s`,
			args:   []interface{}{"active"},
			want:   `status = "active"`,
		},
		{
			name:   "embedded quotes escaped",
			format: `name ~ %s`,
			args:   []interface{}{`6ème "A"`},
			want:   `name ~ "6ème \"A\""`,
		},
		{
			name:   "and of two strings",
			format: `class_id = %s && status = %s`,
			args:   []interface{}{"cls1", "active"},
			want:   `class_id = "cls1" && status = "active"`,
		},
		{
			name:   "time uses store layout",
			format: `date >= %s`,
			args:   []interface{}{day},
			want:   `date >= "2026-03-14 09:30:00.000Z"`,
		},
		{
			name:   "numbers unquoted",
			format: `capacity >= %d`,
			args:   []interface{}{40},
			want:   `capacity >= 40`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Q(tt.format, tt.args...); got != tt.want {
				t.Errorf("Q() = %q, want %q", got, tt.want)
			}
		})
	}
}
