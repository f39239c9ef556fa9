package exam

import (
	"math"
	"sort"
	"time"

	"github.com/louisFankam/edumali-sub000/core/school"
)

// Labels for unresolved expansions; aggregation degrades to these and keeps
// going, it never aborts on a missing relation.
const (
	UnknownSubject = "Matière inconnue"
	UnknownExam    = "Examen inconnu"
)

// PassScore is the pass threshold applied to every score (out of 20).
const PassScore = 10

const (
	maxSubjects    = 10
	maxRecentExams = 5
)

type (
	SubjectStats struct {
		Subject  string  `json:"subject"`
		Average  float64 `json:"average"`
		Students int     `json:"students"`
		PassRate int     `json:"pass_rate"`
	}

	ExamSummary struct {
		ID      string  `json:"id"`
		Title   string  `json:"title"`
		Subject string  `json:"subject"`
		Date    string  `json:"date"`
		Average float64 `json:"average"`
		Grades  int     `json:"grades"`
	}

	Stats struct {
		AverageScore float64        `json:"average_score"`
		PassRate     int            `json:"pass_rate"`
		BySubject    []SubjectStats `json:"by_subject"`
		RecentExams  []ExamSummary  `json:"recent_exams"`
		// Windowed reports that the stats cover the current academic year only.
		Windowed bool `json:"windowed"`
	}
)

type subjectAcc struct {
	name     string
	sum      float64
	count    int
	passed   int
	students map[string]struct{}
}

type examAcc struct {
	summary ExamSummary
	sum     float64
}

// ComputeStats derives exam statistics from a flat grade list. Subjects and
// exams are resolved through the grade -> exam -> subject expansions.
func ComputeStats(grades []school.Grade) Stats {
	stats := Stats{BySubject: []SubjectStats{}, RecentExams: []ExamSummary{}}
	if len(grades) == 0 {
		return stats
	}

	var sum float64
	var passed int
	subjects := make(map[string]*subjectAcc)
	var subjectOrder []string
	exams := make(map[string]*examAcc)
	var examOrder []string

	for _, g := range grades {
		sum += g.Score
		if g.Score >= PassScore {
			passed++
		}

		name := subjectName(g)
		acc, ok := subjects[name]
		if !ok {
			acc = &subjectAcc{name: name, students: make(map[string]struct{})}
			subjects[name] = acc
			subjectOrder = append(subjectOrder, name)
		}
		acc.sum += g.Score
		acc.count++
		if g.Score >= PassScore {
			acc.passed++
		}
		if g.StudentID != "" {
			acc.students[g.StudentID] = struct{}{}
		}

		// deduplicate exams by id, each exam's average from its own grades
		if g.ExamID != "" {
			ex, ok := exams[g.ExamID]
			if !ok {
				ex = &examAcc{summary: examSummary(g)}
				exams[g.ExamID] = ex
				examOrder = append(examOrder, g.ExamID)
			}
			ex.sum += g.Score
			ex.summary.Grades++
		}
	}

	stats.AverageScore = round1(sum / float64(len(grades)))
	stats.PassRate = int(math.Round(100 * float64(passed) / float64(len(grades))))

	for _, name := range subjectOrder {
		acc := subjects[name]
		stats.BySubject = append(stats.BySubject, SubjectStats{
			Subject:  acc.name,
			Average:  round1(acc.sum / float64(acc.count)),
			Students: len(acc.students),
			PassRate: int(math.Round(100 * float64(acc.passed) / float64(acc.count))),
		})
	}
	sort.SliceStable(stats.BySubject, func(i, j int) bool {
		return stats.BySubject[i].Average > stats.BySubject[j].Average
	})
	if len(stats.BySubject) > maxSubjects {
		stats.BySubject = stats.BySubject[:maxSubjects]
	}

	for _, id := range examOrder {
		ex := exams[id]
		ex.summary.Average = round1(ex.sum / float64(ex.summary.Grades))
		stats.RecentExams = append(stats.RecentExams, ex.summary)
	}
	sort.SliceStable(stats.RecentExams, func(i, j int) bool {
		return examTime(stats.RecentExams[i].Date).After(examTime(stats.RecentExams[j].Date))
	})
	if len(stats.RecentExams) > maxRecentExams {
		stats.RecentExams = stats.RecentExams[:maxRecentExams]
	}
	return stats
}

func subjectName(g school.Grade) string {
	if ex := g.Expand.Exam; ex != nil && ex.Expand.Subject != nil && ex.Expand.Subject.Name != "" {
		return ex.Expand.Subject.Name
	}
	return UnknownSubject
}

func examSummary(g school.Grade) ExamSummary {
	s := ExamSummary{ID: g.ExamID, Title: UnknownExam, Subject: subjectName(g)}
	if ex := g.Expand.Exam; ex != nil {
		if ex.Title != "" {
			s.Title = ex.Title
		}
		s.Date = ex.Date
	}
	return s
}

// examTime sorts unparsable dates last (zero time).
func examTime(date string) time.Time {
	t, err := school.ParseDate(date)
	if err != nil {
		return time.Time{}
	}
	return t
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
