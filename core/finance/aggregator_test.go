package finance

import (
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/louisFankam/edumali-sub000/core/school"
)

func payments(amounts ...float64) []school.Payment {
	ps := make([]school.Payment, 0, len(amounts))
	for _, a := range amounts {
		ps = append(ps, school.Payment{Amount: a})
	}
	return ps
}

func TestPaymentStatus(t *testing.T) {
	tests := []struct {
		name          string
		totalFee      float64
		payments      []school.Payment
		wantStatus    string
		wantRemaining float64
	}{
		{
			name:          "fully paid in two installments",
			totalFee:      50000,
			payments:      payments(25000, 25000),
			wantStatus:    StatusPaid,
			wantRemaining: 0,
		},
		{
			name:          "partial",
			totalFee:      50000,
			payments:      payments(30000),
			wantStatus:    StatusPartial,
			wantRemaining: 20000,
		},
		{
			name:          "no payments",
			totalFee:      50000,
			payments:      nil,
			wantStatus:    StatusUnpaid,
			wantRemaining: 50000,
		},
		{
			name:          "overpaid goes negative",
			totalFee:      50000,
			payments:      payments(30000, 30000),
			wantStatus:    StatusPaid,
			wantRemaining: -10000,
		},
		{
			// every recorded payment counts, regardless of its own status
			name:     "payment status field ignored",
			totalFee: 50000,
			payments: []school.Payment{
				{Amount: 25000, Status: school.PaymentOverdue},
				{Amount: 25000, Status: school.PaymentPartial},
			},
			wantStatus:    StatusPaid,
			wantRemaining: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PaymentStatus(tt.totalFee, tt.payments)
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", got.Status, tt.wantStatus)
			}
			if got.RemainingBalance != tt.wantRemaining {
				t.Errorf("RemainingBalance = %v, want %v", got.RemainingBalance, tt.wantRemaining)
			}
		})
	}
}

func paid(amount float64, date string) school.Payment {
	return school.Payment{
		Amount:      amount,
		PaidAmount:  amount,
		Status:      school.PaymentPaid,
		PaymentDate: null.StringFrom(date),
	}
}

func TestComputeStats(t *testing.T) {
	now := time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC)
	ps := []school.Payment{
		paid(1000, "2026-05-02 00:00:00.000Z"),
		paid(2000, "2026-04-10 00:00:00.000Z"),
		{Amount: 1000, PaidAmount: 400, Status: school.PaymentPartial, DueDate: "2026-05-01 00:00:00.000Z"},
		{Amount: 500, PaidAmount: 0, Status: school.PaymentOverdue, DueDate: "2026-04-01 00:00:00.000Z"},
	}
	stats := ComputeStats(ps, now)

	if stats.TotalRevenue != 3000 {
		t.Errorf("TotalRevenue = %v, want 3000", stats.TotalRevenue)
	}
	if stats.MonthlyAverage != 1500 {
		t.Errorf("MonthlyAverage = %v, want 1500", stats.MonthlyAverage)
	}
	if stats.Growth != -50 {
		t.Errorf("Growth = %v, want -50", stats.Growth)
	}
	if stats.OutstandingPayments != 1100 {
		t.Errorf("OutstandingPayments = %v, want 1100", stats.OutstandingPayments)
	}
	// 100 * 3400 / 4500 = 75.55... -> 76
	if stats.PaymentRate != 76 {
		t.Errorf("PaymentRate = %d, want 76", stats.PaymentRate)
	}
}

func TestComputeStatsGrowthRules(t *testing.T) {
	now := time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC)

	// zero previous month, non-zero current
	stats := ComputeStats([]school.Payment{paid(1000, "2026-05-02 00:00:00.000Z")}, now)
	if stats.Growth != 100 {
		t.Errorf("Growth = %v, want 100 when previous month is empty", stats.Growth)
	}

	// both months empty
	stats = ComputeStats(nil, now)
	if stats.Growth != 0 {
		t.Errorf("Growth = %v, want 0 on empty input", stats.Growth)
	}
	if stats.PaymentRate != 0 {
		t.Errorf("PaymentRate = %d, want 0 on empty input", stats.PaymentRate)
	}
}

func TestComputeStatsMonthlyAverageSkipsOtherYears(t *testing.T) {
	now := time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC)
	ps := []school.Payment{
		paid(1000, "2026-05-02 00:00:00.000Z"),
		paid(9000, "2025-11-02 00:00:00.000Z"), // previous calendar year
	}
	stats := ComputeStats(ps, now)
	if stats.MonthlyAverage != 1000 {
		t.Errorf("MonthlyAverage = %v, want 1000 (current calendar year only)", stats.MonthlyAverage)
	}
}
