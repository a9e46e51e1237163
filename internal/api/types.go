package api

// Wire types for the school backend. The backend wraps most payloads in a
// {success, message, data} envelope; endpoint methods unwrap it so callers
// only ever see the typed payload.

type envelope struct {
	Success bool   `json:"success"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

type User struct {
	ID       string `json:"id"`
	RollNo   string `json:"rollNo,omitempty"`
	Name     string `json:"name"`
	Class    string `json:"class,omitempty"`
	Section  string `json:"section,omitempty"`
	Mobile   string `json:"mobileNumber,omitempty"`
	Role     string `json:"role,omitempty"`
	PhotoURL string `json:"photoUrl,omitempty"`
}

// Profile is one student identity reachable from a guardian account.
type Profile struct {
	User   User   `json:"user"`
	Access string `json:"access"`
	Token  string `json:"token,omitempty"`
}

type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	PageSize    int  `json:"pageSize"`
	TotalPages  int  `json:"totalPages"`
	TotalItems  int  `json:"totalItems"`
	HasNextPage bool `json:"hasNextPage"`
}

type Dashboard struct {
	Student         User             `json:"student"`
	AttendanceRate  float64          `json:"attendanceRate"`
	PendingFees     float64          `json:"pendingFees"`
	UpcomingEvents  []Event          `json:"upcomingEvents"`
	RecentResults   []Result         `json:"recentResults"`
	TodayTimetable  []TimetableEntry `json:"todayTimetable"`
}

type Event struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"`
}

type TimetableEntry struct {
	Period  int    `json:"period"`
	Subject string `json:"subject"`
	Teacher string `json:"teacher"`
}

type DiaryEntry struct {
	ID          string `json:"id"`
	Subject     string `json:"subject"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	TeacherName string `json:"teacherName,omitempty"`
}

type Announcement struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Category string `json:"category,omitempty"`
	PostedAt string `json:"postedAt"`
}

type Result struct {
	ID         string  `json:"id"`
	Subject    string  `json:"subject"`
	Exam       string  `json:"exam"`
	Marks      float64 `json:"marks"`
	TotalMarks float64 `json:"totalMarks"`
	Grade      string  `json:"grade,omitempty"`
}

type AttendanceRecord struct {
	Date   string `json:"date"`
	Status string `json:"status"`
}

type AttendanceSummary struct {
	TotalDays   int                `json:"totalDays"`
	PresentDays int                `json:"presentDays"`
	AbsentDays  int                `json:"absentDays"`
	Records     []AttendanceRecord `json:"records"`
}

type StudentProfile struct {
	User         User   `json:"user"`
	GuardianName string `json:"guardianName,omitempty"`
	Address      string `json:"address,omitempty"`
	DateOfBirth  string `json:"dateOfBirth,omitempty"`
	BloodGroup   string `json:"bloodGroup,omitempty"`
}

type TeacherDashboard struct {
	Teacher       User        `json:"teacher"`
	TotalClasses  int         `json:"totalClasses"`
	TotalStudents int         `json:"totalStudents"`
	Classes       []Classroom `json:"classes"`
}

type TeacherProfile struct {
	User          User     `json:"user"`
	EmployeeID    string   `json:"employeeId,omitempty"`
	Subjects      []string `json:"subjects,omitempty"`
	Qualification string   `json:"qualification,omitempty"`
}

type Classroom struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Section      string `json:"section,omitempty"`
	StudentCount int    `json:"studentCount"`
}

type StudentSummary struct {
	ID     string `json:"id"`
	RollNo string `json:"rollNo"`
	Name   string `json:"name"`
}

type TeacherNote struct {
	ID          string `json:"id"`
	ClassroomID string `json:"classroomId"`
	Subject     string `json:"subject"`
	Note        string `json:"note"`
	Date        string `json:"date"`
}

type OTPReceipt struct {
	Message      string `json:"message"`
	MaskedMobile string `json:"maskedMobile,omitempty"`
	ResetToken   string `json:"resetToken,omitempty"`
}
