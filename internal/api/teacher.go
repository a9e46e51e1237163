package api

import (
	"context"
	"net/url"
	"strconv"
)

type teacherDashboardResponse struct {
	envelope
	Data TeacherDashboard `json:"data"`
}

func (c *Client) TeacherDashboard(ctx context.Context) (TeacherDashboard, error) {
	var resp teacherDashboardResponse
	if err := c.get(ctx, "/teacher/dashboard", nil, &resp); err != nil {
		return TeacherDashboard{}, err
	}
	if !resp.Success {
		return TeacherDashboard{}, rejected(resp.envelope)
	}
	return resp.Data, nil
}

type teacherProfileResponse struct {
	envelope
	Data TeacherProfile `json:"data"`
}

func (c *Client) TeacherProfile(ctx context.Context) (TeacherProfile, error) {
	var resp teacherProfileResponse
	if err := c.get(ctx, "/teacher/profile", nil, &resp); err != nil {
		return TeacherProfile{}, err
	}
	if !resp.Success {
		return TeacherProfile{}, rejected(resp.envelope)
	}
	return resp.Data, nil
}

type classListResponse struct {
	envelope
	Data []Classroom `json:"data"`
}

func (c *Client) TeacherClasses(ctx context.Context) ([]Classroom, error) {
	var resp classListResponse
	if err := c.get(ctx, "/teacher/classlist", nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, rejected(resp.envelope)
	}
	return resp.Data, nil
}

type studentListResponse struct {
	envelope
	Data       []StudentSummary `json:"data"`
	Pagination Pagination       `json:"pagination"`
}

func (c *Client) TeacherStudents(ctx context.Context, classroomID string, page, limit int) ([]StudentSummary, Pagination, error) {
	if classroomID == "" {
		return nil, Pagination{}, &Error{Kind: KindValidation, Message: "classroomId is required"}
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	query := url.Values{
		"classroomId": {classroomID},
		"page":        {strconv.Itoa(page)},
		"limit":       {strconv.Itoa(limit)},
	}
	var resp studentListResponse
	if err := c.get(ctx, "/teacher/studentslist", query, &resp); err != nil {
		return nil, Pagination{}, err
	}
	if !resp.Success {
		return nil, Pagination{}, rejected(resp.envelope)
	}
	return resp.Data, resp.Pagination, nil
}

type notesResponse struct {
	envelope
	Data []TeacherNote `json:"data"`
}

func (c *Client) TeacherNotes(ctx context.Context, classroomID string) ([]TeacherNote, error) {
	if classroomID == "" {
		return nil, &Error{Kind: KindValidation, Message: "classroomId is required"}
	}
	var resp notesResponse
	if err := c.get(ctx, "/teacher/diary/allnotes", url.Values{"classroomId": {classroomID}}, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, rejected(resp.envelope)
	}
	return resp.Data, nil
}

type addNoteRequest struct {
	ClassroomID string `json:"classroomId"`
	Subject     string `json:"subject"`
	Note        string `json:"note"`
	Date        string `json:"date"`
}

type addNoteResponse struct {
	envelope
	Data TeacherNote `json:"data"`
}

func (c *Client) TeacherAddNote(ctx context.Context, classroomID, subject, note, date string) (TeacherNote, error) {
	if classroomID == "" || note == "" {
		return TeacherNote{}, &Error{Kind: KindValidation, Message: "classroomId and note are required"}
	}
	var resp addNoteResponse
	err := c.post(ctx, "/teacher/diary/addnote",
		addNoteRequest{ClassroomID: classroomID, Subject: subject, Note: note, Date: date}, &resp)
	if err != nil {
		return TeacherNote{}, err
	}
	if !resp.Success {
		return TeacherNote{}, rejected(resp.envelope)
	}
	return resp.Data, nil
}

func (c *Client) TeacherDeleteNote(ctx context.Context, entryID string) error {
	if entryID == "" {
		return &Error{Kind: KindValidation, Message: "entryId is required"}
	}
	var resp struct{ envelope }
	if err := c.get(ctx, "/teacher/diary/deletenote", url.Values{"entryId": {entryID}}, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return rejected(resp.envelope)
	}
	return nil
}

type markAttendanceRequest struct {
	ClassroomID string            `json:"classroomId"`
	Date        string            `json:"date"`
	Entries     map[string]string `json:"entries"`
}

// TeacherMarkAttendance submits status-by-studentID for one class and date.
func (c *Client) TeacherMarkAttendance(ctx context.Context, classroomID, date string, entries map[string]string) error {
	if classroomID == "" || len(entries) == 0 {
		return &Error{Kind: KindValidation, Message: "classroomId and entries are required"}
	}
	var resp struct{ envelope }
	err := c.post(ctx, "/teacher/attendance",
		markAttendanceRequest{ClassroomID: classroomID, Date: date, Entries: entries}, &resp)
	if err != nil {
		return err
	}
	if !resp.Success {
		return rejected(resp.envelope)
	}
	return nil
}
