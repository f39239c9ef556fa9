package attendance

import (
	"math"
	"time"

	"github.com/louisFankam/edumali-sub000/core/school"
)

// UnknownClass labels records whose class could not be resolved from the
// expanded relations.
const UnknownClass = "Inconnu"

type (
	ClassRate struct {
		Class   string `json:"class"`
		Present int    `json:"present"`
		Total   int    `json:"total"`
		Rate    int    `json:"rate"`
	}

	Stats struct {
		OverallRate int         `json:"overall_rate"`
		Trend       float64     `json:"trend"`
		ByClass     []ClassRate `json:"by_class"`
		// Windowed reports that the stats were computed over a recent window
		// only (see Service.FetchRecords), not the full history.
		Windowed bool `json:"windowed"`
	}
)

// ComputeStats derives attendance rates from a flat record list. A record
// counts towards the rate iff its status is present or late; absent and
// excused count against it. Empty input yields a zero rate, not an error.
func ComputeStats(records []school.AttendanceRecord, now time.Time) Stats {
	stats := Stats{ByClass: []ClassRate{}}
	if len(records) == 0 {
		return stats
	}

	var present int
	classIdx := make(map[string]int)
	for _, rec := range records {
		pe := presentEquivalent(rec.Status)
		if pe {
			present++
		}

		name := className(rec)
		i, ok := classIdx[name]
		if !ok {
			i = len(stats.ByClass)
			classIdx[name] = i
			stats.ByClass = append(stats.ByClass, ClassRate{Class: name})
		}
		stats.ByClass[i].Total++
		if pe {
			stats.ByClass[i].Present++
		}
	}
	stats.OverallRate = rate(present, len(records))
	for i := range stats.ByClass {
		stats.ByClass[i].Rate = rate(stats.ByClass[i].Present, stats.ByClass[i].Total)
	}
	stats.Trend = trend(records, now)
	return stats
}

func presentEquivalent(status string) bool {
	return status == school.AttendancePresent || status == school.AttendanceLate
}

// rate is the overall formula: round(100 * present / total), half-up.
func rate(present, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(present) / float64(total)))
}

// trend compares the rate over the last 7 days against the rate over the
// 7 days before that (days 8-14 back), to one decimal place. Either window
// being empty yields 0.
func trend(records []school.AttendanceRecord, now time.Time) float64 {
	weekAgo := now.AddDate(0, 0, -7)
	twoWeeksAgo := now.AddDate(0, 0, -14)

	var curPresent, curTotal, prevPresent, prevTotal int
	for _, rec := range records {
		d, err := school.ParseDate(rec.Date)
		if err != nil {
			continue
		}
		switch {
		case d.After(weekAgo) && !d.After(now):
			curTotal++
			if presentEquivalent(rec.Status) {
				curPresent++
			}
		case d.After(twoWeeksAgo) && !d.After(weekAgo):
			prevTotal++
			if presentEquivalent(rec.Status) {
				prevPresent++
			}
		}
	}
	if curTotal == 0 || prevTotal == 0 {
		return 0
	}
	cur := 100 * float64(curPresent) / float64(curTotal)
	prev := 100 * float64(prevPresent) / float64(prevTotal)
	return math.Round((cur-prev)*10) / 10
}

func className(rec school.AttendanceRecord) string {
	if s := rec.Expand.Student; s != nil && s.Expand.Class != nil && s.Expand.Class.Name != "" {
		return s.Expand.Class.Name
	}
	return UnknownClass
}
