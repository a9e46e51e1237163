package devserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"vidyalink/app/internal/api"
	"vidyalink/app/internal/cache"
	"vidyalink/app/internal/config"
	"vidyalink/app/internal/ids"
	"vidyalink/app/internal/security"
)

type HandlerSet struct {
	fixtures *Fixtures
	cfg      config.DevServerConfig
	log      zerolog.Logger
}

func NewHandlerSet(fixtures *Fixtures, cfg config.DevServerConfig, log zerolog.Logger) HandlerSet {
	return HandlerSet{fixtures: fixtures, cfg: cfg, log: log}
}

func (h HandlerSet) Register(engine *gin.Engine) {
	engine.GET("/healthz", h.health)

	auth := engine.Group("/auth")
	auth.POST("/login", h.login)
	auth.POST("/teacher/login", h.teacherLogin)
	auth.POST("/forgot-password", h.forgotPassword)
	auth.POST("/verify-otp", h.verifyOTP)
	auth.POST("/reset-password", h.resetPassword)
	auth.POST("/resend-otp", h.resendOTP)

	student := engine.Group("/")
	student.Use(bearerAuth(h.cfg.JWTSecret), requireRole("student"))
	student.GET("/dashboard", h.dashboard)
	student.GET("/diary", h.diary)
	student.GET("/announcements", h.announcements)
	student.GET("/results", h.results)
	student.GET("/attendance", h.attendance)
	student.GET("/users/profile", h.userProfile)

	teacher := engine.Group("/teacher")
	teacher.Use(bearerAuth(h.cfg.JWTSecret), requireRole("teacher"))
	teacher.GET("/dashboard", h.teacherDashboard)
	teacher.GET("/profile", h.teacherProfile)
	teacher.GET("/classlist", h.classList)
	teacher.GET("/studentslist", h.studentsList)
	teacher.GET("/diary/allnotes", h.allNotes)
	teacher.POST("/diary/addnote", h.addNote)
	teacher.GET("/diary/deletenote", h.deleteNote)
	teacher.POST("/attendance", h.markAttendance)
}

func (h HandlerSet) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "status": "ok"})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// Auth ---------------------------------------------------------------------

type loginRequest struct {
	Mobile   string `json:"mobile" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h HandlerSet) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Mobile and password are required")
		return
	}

	f := h.fixtures
	f.mu.Lock()
	defer f.mu.Unlock()

	guardian, ok := f.guardians[req.Mobile]
	if !ok || !security.VerifyPassword(req.Password, guardian.passwordHash) {
		fail(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	profiles := make([]api.Profile, 0, len(guardian.studentIDs))
	for _, studentID := range guardian.studentIDs {
		record, ok := f.students[studentID]
		if !ok {
			continue
		}
		token, err := security.MintToken(h.cfg.JWTSecret, studentID, "student", record.user.Name, h.cfg.TokenTTL)
		if err != nil {
			h.log.Error().Err(err).Msg("mint student token failed")
			fail(c, http.StatusInternalServerError, "Internal server error")
			return
		}
		profiles = append(profiles, api.Profile{
			User:   record.user,
			Access: guardian.access[studentID],
			Token:  token,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"profiles": profiles},
	})
}

type teacherLoginRequest struct {
	TeacherID string `json:"teacherId" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

func (h HandlerSet) teacherLogin(c *gin.Context) {
	var req teacherLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Teacher id and password are required")
		return
	}

	f := h.fixtures
	f.mu.Lock()
	defer f.mu.Unlock()

	account, ok := f.teachers[req.TeacherID]
	if !ok || !security.VerifyPassword(req.Password, account.passwordHash) {
		fail(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := security.MintToken(h.cfg.JWTSecret, account.user.ID, "teacher", account.user.Name, h.cfg.TokenTTL)
	if err != nil {
		h.log.Error().Err(err).Msg("mint teacher token failed")
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"token": token, "user": account.user},
	})
}

type mobileRequest struct {
	Mobile string `json:"mobile" binding:"required"`
}

func maskMobile(mobile string) string {
	if len(mobile) <= 4 {
		return mobile
	}
	masked := make([]byte, len(mobile))
	for i := range mobile {
		if i < len(mobile)-4 {
			masked[i] = '*'
		} else {
			masked[i] = mobile[i]
		}
	}
	return string(masked)
}

func (h HandlerSet) forgotPassword(c *gin.Context) {
	h.issueOTP(c, "OTP sent successfully")
}

func (h HandlerSet) resendOTP(c *gin.Context) {
	h.issueOTP(c, "OTP resent successfully")
}

func (h HandlerSet) issueOTP(c *gin.Context, message string) {
	var req mobileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Mobile is required")
		return
	}

	f := h.fixtures
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.guardians[req.Mobile]; !ok {
		fail(c, http.StatusNotFound, "Mobile number not found")
		return
	}

	// Deterministic OTP: this server exists for local development.
	f.otps[req.Mobile] = "123456"

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"message":      message,
			"maskedMobile": maskMobile(req.Mobile),
		},
	})
}

type verifyOTPRequest struct {
	Mobile string `json:"mobile" binding:"required"`
	OTP    string `json:"otp" binding:"required"`
}

func (h HandlerSet) verifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Mobile and OTP are required")
		return
	}

	f := h.fixtures
	f.mu.Lock()
	defer f.mu.Unlock()

	if otp, ok := f.otps[req.Mobile]; !ok || otp != req.OTP {
		fail(c, http.StatusUnauthorized, "Invalid OTP")
		return
	}
	delete(f.otps, req.Mobile)

	resetToken := uuid.NewString()
	f.resetTokens[req.Mobile] = resetToken

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"message": "OTP verified", "resetToken": resetToken},
	})
}

type resetPasswordRequest struct {
	Mobile      string `json:"mobile" binding:"required"`
	ResetToken  string `json:"resetToken" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

func (h HandlerSet) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Mobile, reset token and new password are required")
		return
	}

	f := h.fixtures
	f.mu.Lock()
	defer f.mu.Unlock()

	guardian, ok := f.guardians[req.Mobile]
	if !ok || f.resetTokens[req.Mobile] != req.ResetToken {
		fail(c, http.StatusUnauthorized, "Invalid reset token")
		return
	}
	hash, err := security.HashPassword(req.NewPassword)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	guardian.passwordHash = hash
	delete(f.resetTokens, req.Mobile)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"message": "Password reset successfully"},
	})
}

// Student ------------------------------------------------------------------

func (h HandlerSet) studentRecord(c *gin.Context) (*studentRecord, bool) {
	claims, ok := currentClaims(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "Missing token")
		return nil, false
	}
	f := h.fixtures
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.students[claims.UserID]
	if !ok {
		fail(c, http.StatusNotFound, "Student not found")
		return nil, false
	}
	return record, true
}

func (h HandlerSet) dashboard(c *gin.Context) {
	record, ok := h.studentRecord(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": record.dashboard})
}

func (h HandlerSet) diary(c *gin.Context) {
	record, ok := h.studentRecord(c)
	if !ok {
		return
	}
	date := c.Query("date")
	if date == "" {
		fail(c, http.StatusBadRequest, "Date is required")
		return
	}
	entries := record.diary[date]
	if entries == nil {
		entries = []api.DiaryEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "entries": entries})
}

func (h HandlerSet) announcements(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	f := h.fixtures
	f.mu.Lock()
	defer f.mu.Unlock()

	total := len(f.announcements)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	totalPages := (total + pageSize - 1) / pageSize

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    f.announcements[start:end],
		"pagination": api.Pagination{
			CurrentPage: page,
			PageSize:    pageSize,
			TotalPages:  totalPages,
			TotalItems:  total,
			HasNextPage: page < totalPages,
		},
	})
}

func (h HandlerSet) results(c *gin.Context) {
	record, ok := h.studentRecord(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": record.results})
}

func (h HandlerSet) attendance(c *gin.Context) {
	record, ok := h.studentRecord(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": record.attendance})
}

func (h HandlerSet) userProfile(c *gin.Context) {
	record, ok := h.studentRecord(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "profile": record.profile})
}

// Teacher ------------------------------------------------------------------

func (h HandlerSet) teacherAccount(c *gin.Context) (*teacherAccount, bool) {
	claims, ok := currentClaims(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "Missing token")
		return nil, false
	}
	f := h.fixtures
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.teachers {
		if account.user.ID == claims.UserID {
			return account, true
		}
	}
	fail(c, http.StatusNotFound, "Teacher not found")
	return nil, false
}

func (h HandlerSet) teacherDashboard(c *gin.Context) {
	account, ok := h.teacherAccount(c)
	if !ok {
		return
	}
	f := h.fixtures
	f.mu.Lock()
	defer f.mu.Unlock()

	students := 0
	for _, roster := range f.rosters {
		students += len(roster)
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": api.TeacherDashboard{
			Teacher:       account.user,
			TotalClasses:  len(f.classes),
			TotalStudents: students,
			Classes:       f.classes,
		},
	})
}

func (h HandlerSet) teacherProfile(c *gin.Context) {
	account, ok := h.teacherAccount(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": account.profile})
}

func (h HandlerSet) classList(c *gin.Context) {
	f := h.fixtures
	f.mu.Lock()
	defer f.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true, "data": f.classes})
}

func (h HandlerSet) studentsList(c *gin.Context) {
	classroomID := c.Query("classroomId")
	if classroomID == "" {
		fail(c, http.StatusBadRequest, "classroomId is required")
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	f := h.fixtures
	f.mu.Lock()
	defer f.mu.Unlock()

	roster, ok := f.rosters[classroomID]
	if !ok {
		fail(c, http.StatusNotFound, "Classroom not found")
		return
	}

	total := len(roster)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	totalPages := (total + limit - 1) / limit

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    roster[start:end],
		"pagination": api.Pagination{
			CurrentPage: page,
			PageSize:    limit,
			TotalPages:  totalPages,
			TotalItems:  total,
			HasNextPage: page < totalPages,
		},
	})
}

func (h HandlerSet) allNotes(c *gin.Context) {
	classroomID := c.Query("classroomId")
	if classroomID == "" {
		fail(c, http.StatusBadRequest, "classroomId is required")
		return
	}
	f := h.fixtures
	f.mu.Lock()
	defer f.mu.Unlock()
	notes := f.notes[classroomID]
	if notes == nil {
		notes = []api.TeacherNote{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": notes})
}

type addNoteRequest struct {
	ClassroomID string `json:"classroomId" binding:"required"`
	Subject     string `json:"subject"`
	Note        string `json:"note" binding:"required"`
	Date        string `json:"date"`
}

func (h HandlerSet) addNote(c *gin.Context) {
	var req addNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "classroomId and note are required")
		return
	}
	if req.Date == "" {
		req.Date = time.Now().Format(cache.DateLayout)
	}

	note := api.TeacherNote{
		ID:          ids.New(),
		ClassroomID: req.ClassroomID,
		Subject:     req.Subject,
		Note:        req.Note,
		Date:        req.Date,
	}

	f := h.fixtures
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notes[req.ClassroomID] = append(f.notes[req.ClassroomID], note)

	c.JSON(http.StatusOK, gin.H{"success": true, "data": note})
}

func (h HandlerSet) deleteNote(c *gin.Context) {
	entryID := c.Query("entryId")
	if entryID == "" {
		fail(c, http.StatusBadRequest, "entryId is required")
		return
	}

	f := h.fixtures
	f.mu.Lock()
	defer f.mu.Unlock()

	for classroomID, notes := range f.notes {
		for i, note := range notes {
			if note.ID == entryID {
				f.notes[classroomID] = append(notes[:i], notes[i+1:]...)
				c.JSON(http.StatusOK, gin.H{"success": true})
				return
			}
		}
	}
	fail(c, http.StatusNotFound, "Note not found")
}

type markAttendanceRequest struct {
	ClassroomID string            `json:"classroomId" binding:"required"`
	Date        string            `json:"date"`
	Entries     map[string]string `json:"entries" binding:"required"`
}

func (h HandlerSet) markAttendance(c *gin.Context) {
	var req markAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "classroomId and entries are required")
		return
	}

	f := h.fixtures
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.rosters[req.ClassroomID]; !ok {
		fail(c, http.StatusNotFound, "Classroom not found")
		return
	}
	if f.attendanceLog[req.ClassroomID] == nil {
		f.attendanceLog[req.ClassroomID] = make(map[string]string)
	}
	for studentID, status := range req.Entries {
		f.attendanceLog[req.ClassroomID][studentID] = status
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
