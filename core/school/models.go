package school

import (
	"encoding/json"

	"github.com/volatiletech/null/v8"
)

// Record collections
const (
	CollStudents      = "students"
	CollTeachers      = "teachers"
	CollSubstitutes   = "substitutes"
	CollClasses       = "classes"
	CollAcademicYears = "academic_years"
	CollAttendance    = "attendance"
	CollPayments      = "payments"
	CollExams         = "exams"
	CollGrades        = "grades"
	CollSubjects      = "subjects"
	CollNotifications = "notifications"
	CollPreferences   = "preferences"
	CollSalaryExports = "salary_exports"
)

// Student statuses
const (
	StudentActive      = "active"
	StudentInactive    = "inactive"
	StudentTransferred = "transferred"
	StudentGraduated   = "graduated"
)

// AcademicYear statuses
const (
	YearActive   = "active"
	YearUpcoming = "upcoming"
	YearArchived = "archived"
)

// Attendance statuses
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLate    = "late"
	AttendanceExcused = "excused"
)

// Payment statuses (as stored)
const (
	PaymentPaid    = "paid"
	PaymentPartial = "partial"
	PaymentOverdue = "overdue"
)

// Teacher contract types
const (
	ContractHourly  = "horaire"
	ContractMonthly = "mensuel"
)

// Teacher statuses
const (
	TeacherActive   = "active"
	TeacherInactive = "inactive"
)

type Student struct {
	ID             string `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	ClassID        string `json:"class_id"`
	AcademicYear   string `json:"academic_year"`
	Status         string `json:"status"`
	EnrollmentDate string `json:"enrollment_date"`

	Expand struct {
		Class *Class `json:"class_id"`
	} `json:"expand"`
}

func (s Student) FullName() string {
	if s.FirstName == "" {
		return s.LastName
	}
	return s.FirstName + " " + s.LastName
}

type Class struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
	// CurrentStudents is a denormalized counter; the stored value must equal the
	// count of active Students referencing this class. roster.Service owns it.
	CurrentStudents int     `json:"current_students"`
	TotalFee        float64 `json:"total_fee"`
	TeacherID       string  `json:"teacher_id"`
	AcademicYear    string  `json:"academic_year"`
}

type Period struct {
	Name      string `json:"name"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type AcademicYear struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	// Periods and Holidays are JSON-encoded arrays of Period.
	Periods  string `json:"periods"`
	Holidays string `json:"holidays"`
}

func (y AcademicYear) PeriodList() ([]Period, error) {
	return decodePeriods(y.Periods)
}

func (y AcademicYear) HolidayList() ([]Period, error) {
	return decodePeriods(y.Holidays)
}

func decodePeriods(s string) ([]Period, error) {
	if s == "" {
		return nil, nil
	}
	var ps []Period
	if err := json.Unmarshal([]byte(s), &ps); err != nil {
		return nil, err
	}
	return ps, nil
}

// AttendanceRecord is day-granular; Date always carries the canonical
// midnight-UTC time component (see CanonicalDate). At most one record exists
// per (person, date), enforced by replace-on-save, not by the store.
type AttendanceRecord struct {
	ID        string      `json:"id"`
	StudentID null.String `json:"student_id"`
	TeacherID null.String `json:"teacher_id"`
	Date      string      `json:"date"`
	Status    string      `json:"status"`

	Expand struct {
		Student *Student `json:"student_id"`
		Teacher *Teacher `json:"teacher_id"`
	} `json:"expand"`
}

type Payment struct {
	ID           string      `json:"id"`
	StudentID    string      `json:"student_id"`
	Amount       float64     `json:"amount"`
	PaidAmount   float64     `json:"paid_amount"`
	Status       string      `json:"status"`
	DueDate      string      `json:"due_date"`
	PaymentDate  null.String `json:"payment_date"`
	AcademicYear string      `json:"academic_year"`
}

type Subject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// TeacherNumber is a denormalized counter; equals the count of Teachers whose
	// speciality contains this subject. subject.Service recomputes it in full.
	TeacherNumber int `json:"teacher_number"`
}

type Teacher struct {
	ID         string   `json:"id"`
	FirstName  string   `json:"first_name"`
	LastName   string   `json:"last_name"`
	Email      string   `json:"email"`
	Speciality []string `json:"speciality"`
	Status     string   `json:"status"`
	// Contract governs the salary formula: horaire pays HoursWorked*HourlyRate,
	// mensuel pays Salary; Majoration is added on top in both cases.
	Contract    string  `json:"contrat"`
	Salary      float64 `json:"salaire"`
	HourlyRate  float64 `json:"taux_horaire"`
	HoursWorked float64 `json:"hours_worked"`
	Majoration  float64 `json:"majoration"`
}

func (t Teacher) FullName() string {
	if t.FirstName == "" {
		return t.LastName
	}
	return t.FirstName + " " + t.LastName
}

type Substitute struct {
	ID          string   `json:"id"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	SubjectIDs  []string `json:"subject_id"`
	Contract    string   `json:"contrat"`
	Salary      float64  `json:"salaire"`
	HourlyRate  float64  `json:"taux_horaire"`
	HoursWorked float64  `json:"hours_worked"`
	Majoration  float64  `json:"majoration"`
}

func (s Substitute) FullName() string {
	if s.FirstName == "" {
		return s.LastName
	}
	return s.FirstName + " " + s.LastName
}

type Exam struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Date      string `json:"date"`
	ClassID   string `json:"class_id"`
	SubjectID string `json:"subject_id"`

	Expand struct {
		Subject *Subject `json:"subject_id"`
		Class   *Class   `json:"class_id"`
	} `json:"expand"`
}

type Grade struct {
	ID        string  `json:"id"`
	ExamID    string  `json:"exam_id"`
	StudentID string  `json:"student_id"`
	Score     float64 `json:"score"`

	Expand struct {
		Exam    *Exam    `json:"exam_id"`
		Student *Student `json:"student_id"`
	} `json:"expand"`
}

// SalaryExport marks a completed monthly payroll export. Month is the canonical
// per-month key (YYYY-MM); at most one export exists per month.
type SalaryExport struct {
	ID           string  `json:"id"`
	Month        string  `json:"month"`
	GeneratedAt  string  `json:"generated_at"`
	TeacherCount int     `json:"teacher_count"`
	TotalAmount  float64 `json:"total_amount"`
}
