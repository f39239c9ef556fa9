package finance

import (
	"math"
	"time"

	"github.com/louisFankam/edumali-sub000/core/school"
)

// Aggregate payment statuses (as displayed)
const (
	StatusPaid    = "Payé"
	StatusPartial = "Partiel"
	StatusUnpaid  = "Impayé"
)

type (
	// StudentStatus is a student's aggregate payment position against their
	// class fee. RemainingBalance may be negative when overpaid; it is not
	// clamped.
	StudentStatus struct {
		Status           string  `json:"status"`
		TotalPaid        float64 `json:"total_paid"`
		RemainingBalance float64 `json:"remaining_balance"`
	}

	Stats struct {
		TotalRevenue        float64 `json:"total_revenue"`
		MonthlyAverage      float64 `json:"monthly_average"`
		Growth              float64 `json:"growth"`
		OutstandingPayments float64 `json:"outstanding_payments"`
		PaymentRate         int     `json:"payment_rate"`
		// Windowed reports that the stats cover a recent window only.
		Windowed bool `json:"windowed"`
	}
)

// PaymentStatus derives a student's aggregate status from their class fee and
// their full payment list. Every recorded payment counts towards TotalPaid,
// regardless of its own status. The same function backs both the roster view
// and the single-student detail view.
func PaymentStatus(totalFee float64, payments []school.Payment) StudentStatus {
	var totalPaid float64
	for _, p := range payments {
		totalPaid += p.Amount
	}

	status := StatusPartial
	switch {
	case totalPaid >= totalFee:
		status = StatusPaid
	case totalPaid == 0:
		status = StatusUnpaid
	}
	return StudentStatus{
		Status:           status,
		TotalPaid:        totalPaid,
		RemainingBalance: totalFee - totalPaid,
	}
}

// ComputeStats derives school-wide financial statistics from a payment list.
func ComputeStats(payments []school.Payment, now time.Time) Stats {
	var stats Stats
	var totalAmount, totalPaidAmount float64
	monthly := make(map[string]float64) // "YYYY-MM" -> paid revenue

	for _, p := range payments {
		totalAmount += p.Amount
		totalPaidAmount += p.PaidAmount

		switch p.Status {
		case school.PaymentPaid:
			stats.TotalRevenue += p.PaidAmount
			if d, ok := paymentDate(p); ok {
				monthly[school.MonthKey(d)] += p.PaidAmount
			}
		case school.PaymentPartial, school.PaymentOverdue:
			stats.OutstandingPayments += p.Amount - p.PaidAmount
		}
	}

	// monthly average: mean of the non-zero monthly sums of the current
	// calendar year
	var yearSum float64
	var yearMonths int
	yearPrefix := now.UTC().Format("2006-")
	for key, sum := range monthly {
		if sum != 0 && len(key) >= len(yearPrefix) && key[:len(yearPrefix)] == yearPrefix {
			yearSum += sum
			yearMonths++
		}
	}
	if yearMonths > 0 {
		stats.MonthlyAverage = yearSum / float64(yearMonths)
	}

	stats.Growth = growth(monthly, now)

	if totalAmount > 0 {
		stats.PaymentRate = int(math.Round(100 * totalPaidAmount / totalAmount))
	}
	return stats
}

// growth is the percent change of the current calendar month's paid revenue
// against the previous month's. A zero previous month yields 100 when the
// current month has revenue, 0 otherwise.
func growth(monthly map[string]float64, now time.Time) float64 {
	now = now.UTC()
	cur := monthly[school.MonthKey(now)]
	prev := monthly[school.MonthKey(time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, time.UTC))]
	if prev == 0 {
		if cur > 0 {
			return 100
		}
		return 0
	}
	return (cur - prev) / prev * 100
}

// paymentDate is the month attribution date: payment_date when recorded,
// due_date otherwise.
func paymentDate(p school.Payment) (time.Time, bool) {
	raw := p.DueDate
	if p.PaymentDate.Valid && p.PaymentDate.String != "" {
		raw = p.PaymentDate.String
	}
	d, err := school.ParseDate(raw)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}
