package record

import "time"

// Field ranks the remote key aliases that may carry one logical value.
// Resolution walks the list in order and takes the first usable hit, so
// the alias tables below are the single place where payload naming
// differences are absorbed.
type Field []string

// First returns the first non-blank string value among the field's aliases.
func (f Field) First(obj map[string]any) string {
	for _, key := range f {
		if v, ok := obj[key]; ok {
			if s := String(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// Number returns the first value among the aliases coercible to a number.
func (f Field) Number(obj map[string]any) (float64, bool) {
	for _, key := range f {
		if v, ok := obj[key]; ok {
			if n, ok := Number(v); ok {
				return n, true
			}
		}
	}
	return 0, false
}

// Time returns the first value among the aliases parseable as a timestamp.
func (f Field) Time(obj map[string]any) (time.Time, bool) {
	for _, key := range f {
		if v, ok := obj[key]; ok {
			if t, ok := ParseTime(v); ok {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// Remote field aliases per logical value, in resolution order.
var (
	ProfileID        = Field{"id", "_id", "userId", "studentId"}
	ProfileName      = Field{"name", "fullName", "full_name", "studentName"}
	ProfileEmail     = Field{"email", "emailAddress", "email_address"}
	ProfileClass     = Field{"class", "className", "class_name", "currentClass"}
	ProfileAdmission = Field{"admissionNumber", "admission_number", "admissionNo", "regNumber"}

	SubjectName    = Field{"subject", "subjectName", "subject_name", "title", "name"}
	SubjectScore   = Field{"score", "totalScore", "total_score", "marks"}
	SubjectGrade   = Field{"grade", "letterGrade"}
	SubjectTeacher = Field{"teacher", "teacherName", "teacher_name", "subjectTeacher"}

	// TeacherName reads records that are themselves teachers (the
	// class/subject teacher lookup); AssignmentTeacher reads the
	// teacher-identifying fields of an assignment, where a bare "name"
	// would be the assignment's own title.
	TeacherName       = Field{"name", "fullName", "full_name", "teacherName", "teacher_name"}
	TeacherID         = Field{"teacherId", "teacher_id"}
	AssignmentTeacher = Field{"teacherName", "teacher", "teacher_name", "assignedBy"}

	ClassName = Field{"class", "className", "class_name"}

	AssignmentTitle   = Field{"title", "name", "assignmentTitle"}
	AssignmentSubject = Field{"subject", "subjectName", "subject_name"}
	AssignmentStatus  = Field{"status", "submissionStatus", "state"}
	AssignmentScore   = Field{"score", "marks"}
	AssignmentDue     = Field{"dueDate", "due_date", "due", "deadline"}

	AttendancePresent    = Field{"present", "presentDays", "present_days", "daysPresent", "attended"}
	AttendanceAbsent     = Field{"absent", "absentDays", "absent_days", "daysAbsent"}
	AttendanceTotal      = Field{"total", "totalDays", "total_days", "schoolDays"}
	AttendancePercentage = Field{"percentage", "percent", "attendanceRate", "rate"}

	EventTitle       = Field{"title", "name"}
	EventStart       = Field{"startDate", "start_date", "start", "date"}
	EventEnd         = Field{"endDate", "end_date", "end"}
	EventAudience    = Field{"audience", "targetAudience", "target_audience"}
	EventDescription = Field{"description", "details"}
	EventLocation    = Field{"location", "venue"}
	EventCategory    = Field{"category", "type"}

	SlotDay      = Field{"day", "dayOfWeek", "day_of_week", "weekday"}
	SlotTime     = Field{"time", "period", "startTime", "start_time"}
	SlotSubject  = Field{"subject", "subjectName", "subject_name"}
	SlotTeacher  = Field{"teacher", "teacherName", "teacher_name", "tutor"}
	SlotLocation = Field{"location", "room", "venue"}

	LoanTitle    = Field{"title", "bookTitle", "book_title", "book"}
	LoanAuthor   = Field{"author", "bookAuthor", "book_author"}
	LoanBorrowed = Field{"borrowedOn", "borrowed_on", "borrowDate", "issuedOn"}
	LoanDue      = Field{"dueDate", "due_date", "returnBy", "due"}
	LoanStatus   = Field{"status", "state"}
)
