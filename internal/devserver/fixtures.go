package devserver

import (
	"fmt"
	"sync"
	"time"

	"vidyalink/app/internal/api"
	"vidyalink/app/internal/cache"
	"vidyalink/app/internal/ids"
	"vidyalink/app/internal/security"
)

// Fixtures is the in-memory school the dev server serves: one guardian
// account with two children, one teacher, and enough data behind each
// endpoint to exercise every screen.
type Fixtures struct {
	mu sync.Mutex

	guardians map[string]*guardianAccount // by mobile
	teachers  map[string]*teacherAccount  // by teacher id
	students  map[string]*studentRecord   // by user id

	announcements []api.Announcement
	classes       []api.Classroom
	rosters       map[string][]api.StudentSummary
	notes         map[string][]api.TeacherNote
	attendanceLog map[string]map[string]string // classroomID -> studentID -> status

	otps        map[string]string // mobile -> otp
	resetTokens map[string]string // mobile -> reset token
}

type guardianAccount struct {
	mobile       string
	passwordHash string
	studentIDs   []string
	access       map[string]string // studentID -> access level
}

type teacherAccount struct {
	passwordHash string
	user         api.User
	profile      api.TeacherProfile
}

type studentRecord struct {
	user       api.User
	dashboard  api.Dashboard
	diary      map[string][]api.DiaryEntry
	results    []api.Result
	attendance api.AttendanceSummary
	profile    api.StudentProfile
}

const (
	SeedGuardianMobile   = "9999999999"
	SeedGuardianPassword = "password123"
	SeedTeacherID        = "T-100"
	SeedTeacherPassword  = "teachme"
)

func SeedFixtures() (*Fixtures, error) {
	guardianHash, err := security.HashPassword(SeedGuardianPassword)
	if err != nil {
		return nil, fmt.Errorf("seed guardian password: %w", err)
	}
	teacherHash, err := security.HashPassword(SeedTeacherPassword)
	if err != nil {
		return nil, fmt.Errorf("seed teacher password: %w", err)
	}

	asha := api.User{ID: ids.New(), RollNo: "101", Name: "Asha Verma", Class: "10A", Section: "A", Mobile: SeedGuardianMobile}
	ravi := api.User{ID: ids.New(), RollNo: "204", Name: "Ravi Verma", Class: "7B", Section: "B", Mobile: SeedGuardianMobile}
	teacher := api.User{ID: ids.New(), Name: "Meena Iyer", Role: "teacher"}

	today := time.Now().Format(cache.DateLayout)
	classA := api.Classroom{ID: ids.New(), Name: "10A", Section: "A", StudentCount: 2}
	classB := api.Classroom{ID: ids.New(), Name: "7B", Section: "B", StudentCount: 1}

	f := &Fixtures{
		guardians: map[string]*guardianAccount{
			SeedGuardianMobile: {
				mobile:       SeedGuardianMobile,
				passwordHash: guardianHash,
				studentIDs:   []string{asha.ID, ravi.ID},
				access:       map[string]string{asha.ID: "full", ravi.ID: "restricted"},
			},
		},
		teachers: map[string]*teacherAccount{
			SeedTeacherID: {
				passwordHash: teacherHash,
				user:         teacher,
				profile: api.TeacherProfile{
					User:          teacher,
					EmployeeID:    SeedTeacherID,
					Subjects:      []string{"Mathematics", "Science"},
					Qualification: "M.Sc., B.Ed.",
				},
			},
		},
		students: map[string]*studentRecord{
			asha.ID: seedStudent(asha, today),
			ravi.ID: seedStudent(ravi, today),
		},
		announcements: seedAnnouncements(40),
		classes:       []api.Classroom{classA, classB},
		rosters: map[string][]api.StudentSummary{
			classA.ID: {
				{ID: asha.ID, RollNo: asha.RollNo, Name: asha.Name},
				{ID: ids.New(), RollNo: "102", Name: "Kiran Rao"},
			},
			classB.ID: {
				{ID: ravi.ID, RollNo: ravi.RollNo, Name: ravi.Name},
			},
		},
		notes:         make(map[string][]api.TeacherNote),
		attendanceLog: make(map[string]map[string]string),
		otps:          make(map[string]string),
		resetTokens:   make(map[string]string),
	}
	return f, nil
}

func seedStudent(user api.User, today string) *studentRecord {
	return &studentRecord{
		user: user,
		dashboard: api.Dashboard{
			Student:        user,
			AttendanceRate: 93.4,
			PendingFees:    1500,
			UpcomingEvents: []api.Event{
				{ID: ids.New(), Title: "Science Exhibition", Date: today},
			},
			RecentResults: []api.Result{
				{ID: ids.New(), Subject: "Mathematics", Exam: "Unit Test 2", Marks: 42, TotalMarks: 50, Grade: "A"},
			},
			TodayTimetable: []api.TimetableEntry{
				{Period: 1, Subject: "Mathematics", Teacher: "Meena Iyer"},
				{Period: 2, Subject: "English", Teacher: "Arun Nair"},
			},
		},
		diary: map[string][]api.DiaryEntry{
			today: {
				{ID: ids.New(), Subject: "Mathematics", Title: "Homework", Description: "Exercise 4.2, Q1-10", Date: today, TeacherName: "Meena Iyer"},
			},
		},
		results: []api.Result{
			{ID: ids.New(), Subject: "Mathematics", Exam: "Half Yearly", Marks: 88, TotalMarks: 100, Grade: "A"},
			{ID: ids.New(), Subject: "Science", Exam: "Half Yearly", Marks: 79, TotalMarks: 100, Grade: "B+"},
		},
		attendance: api.AttendanceSummary{
			TotalDays:   120,
			PresentDays: 112,
			AbsentDays:  8,
			Records: []api.AttendanceRecord{
				{Date: today, Status: "present"},
			},
		},
		profile: api.StudentProfile{
			User:         user,
			GuardianName: "Suresh Verma",
			Address:      "12 MG Road, Pune",
			DateOfBirth:  "2009-06-14",
			BloodGroup:   "B+",
		},
	}
}

func seedAnnouncements(n int) []api.Announcement {
	out := make([]api.Announcement, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, api.Announcement{
			ID:       ids.New(),
			Title:    fmt.Sprintf("Circular %d", n-i),
			Body:     "Details on the school notice board.",
			Category: "general",
			PostedAt: time.Now().AddDate(0, 0, -i).Format(time.RFC3339),
		})
	}
	return out
}
