package finance

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/louisFankam/edumali-sub000/core"
	"github.com/louisFankam/edumali-sub000/core/school"
)

type Service struct {
	store core.Client
	nowFn func() time.Time
}

func NewService(store core.Client) *Service {
	return &Service{store: store, nowFn: time.Now}
}

// FetchPayments loads payments for aggregation, falling back to the last N
// months once the collection crosses the configured row threshold. The second
// return value reports the fallback.
func (svc *Service) FetchPayments(ctx context.Context) ([]school.Payment, bool, error) {
	threshold := core.Conf.GetInt("paymentWindowThreshold")
	opts := core.ListOptions{Sort: "-due_date", PerPage: threshold}

	var payments []school.Payment
	total, err := svc.store.List(ctx, school.CollPayments, opts, &payments)
	if err != nil {
		return nil, false, err
	}
	if total <= threshold {
		return payments, false, nil
	}

	since := svc.nowFn().AddDate(0, -core.Conf.GetInt("paymentWindowMonths"), 0)
	opts.Filter = core.Q(`due_date >= %s`, school.CanonicalDate(since))
	payments = nil
	if _, err := svc.store.List(ctx, school.CollPayments, opts, &payments); err != nil {
		return nil, false, err
	}
	return payments, true, nil
}

// Stats fetches and aggregates in one call.
func (svc *Service) Stats(ctx context.Context) (Stats, error) {
	payments, windowed, err := svc.FetchPayments(ctx)
	if err != nil {
		return Stats{}, err
	}
	stats := ComputeStats(payments, svc.nowFn())
	stats.Windowed = windowed
	return stats, nil
}

// StudentStatus loads a student's payments and their class fee, then derives
// the aggregate status with PaymentStatus.
func (svc *Service) StudentStatus(ctx context.Context, student school.Student) (StudentStatus, error) {
	var class school.Class
	if err := svc.store.Get(ctx, school.CollClasses, student.ClassID, &class); err != nil {
		return StudentStatus{}, errors.Wrap(err, "getting class "+student.ClassID)
	}

	var payments []school.Payment
	_, err := svc.store.List(ctx, school.CollPayments, core.ListOptions{
		Filter:  core.Q(`student_id = %s`, student.ID),
		PerPage: 500,
	}, &payments)
	if err != nil {
		return StudentStatus{}, errors.Wrap(err, "listing payments for "+student.ID)
	}
	return PaymentStatus(class.TotalFee, payments), nil
}
