package exam

import (
	"context"

	"github.com/louisFankam/edumali-sub000/core"
	"github.com/louisFankam/edumali-sub000/core/school"
)

type Service struct {
	store core.Client
}

func NewService(store core.Client) *Service {
	return &Service{store: store}
}

// FetchGrades loads grades with their exam and subject expansions. Past the
// configured row threshold only the current academic year's grades are
// loaded; the second return value reports the fallback.
func (svc *Service) FetchGrades(ctx context.Context, activeYearID string) ([]school.Grade, bool, error) {
	threshold := core.Conf.GetInt("gradeWindowThreshold")
	opts := core.ListOptions{Expand: "exam_id.subject_id", PerPage: threshold}

	var grades []school.Grade
	total, err := svc.store.List(ctx, school.CollGrades, opts, &grades)
	if err != nil {
		return nil, false, err
	}
	if total <= threshold || activeYearID == "" {
		return grades, false, nil
	}

	opts.Filter = core.Q(`exam_id.academic_year = %s`, activeYearID)
	grades = nil
	if _, err := svc.store.List(ctx, school.CollGrades, opts, &grades); err != nil {
		return nil, false, err
	}
	return grades, true, nil
}

// Stats fetches and aggregates in one call.
func (svc *Service) Stats(ctx context.Context, activeYearID string) (Stats, error) {
	grades, windowed, err := svc.FetchGrades(ctx, activeYearID)
	if err != nil {
		return Stats{}, err
	}
	stats := ComputeStats(grades)
	stats.Windowed = windowed
	return stats, nil
}
