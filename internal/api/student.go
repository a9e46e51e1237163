package api

import (
	"context"
	"net/url"
	"strconv"
)

type dashboardResponse struct {
	envelope
	Data Dashboard `json:"data"`
}

func (c *Client) Dashboard(ctx context.Context) (Dashboard, error) {
	var resp dashboardResponse
	if err := c.get(ctx, "/dashboard", nil, &resp); err != nil {
		return Dashboard{}, err
	}
	if !resp.Success {
		return Dashboard{}, rejected(resp.envelope)
	}
	return resp.Data, nil
}

type diaryResponse struct {
	envelope
	Entries []DiaryEntry `json:"entries"`
}

// Diary fetches entries for one calendar date (YYYY-MM-DD).
func (c *Client) Diary(ctx context.Context, date string) ([]DiaryEntry, error) {
	if date == "" {
		return nil, &Error{Kind: KindValidation, Message: "date is required"}
	}
	var resp diaryResponse
	if err := c.get(ctx, "/diary", url.Values{"date": {date}}, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, rejected(resp.envelope)
	}
	return resp.Entries, nil
}

type announcementsResponse struct {
	envelope
	Data       []Announcement `json:"data"`
	Pagination Pagination     `json:"pagination"`
}

func (c *Client) Announcements(ctx context.Context, page, pageSize int) ([]Announcement, Pagination, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	query := url.Values{
		"page":     {strconv.Itoa(page)},
		"pageSize": {strconv.Itoa(pageSize)},
	}
	var resp announcementsResponse
	if err := c.get(ctx, "/announcements", query, &resp); err != nil {
		return nil, Pagination{}, err
	}
	if !resp.Success {
		return nil, Pagination{}, rejected(resp.envelope)
	}
	return resp.Data, resp.Pagination, nil
}

type resultsResponse struct {
	envelope
	Data []Result `json:"data"`
}

func (c *Client) Results(ctx context.Context) ([]Result, error) {
	var resp resultsResponse
	if err := c.get(ctx, "/results", nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, rejected(resp.envelope)
	}
	return resp.Data, nil
}

type attendanceResponse struct {
	envelope
	Data AttendanceSummary `json:"data"`
}

func (c *Client) Attendance(ctx context.Context) (AttendanceSummary, error) {
	var resp attendanceResponse
	if err := c.get(ctx, "/attendance", nil, &resp); err != nil {
		return AttendanceSummary{}, err
	}
	if !resp.Success {
		return AttendanceSummary{}, rejected(resp.envelope)
	}
	return resp.Data, nil
}

type profileResponse struct {
	envelope
	Profile StudentProfile `json:"profile"`
}

func (c *Client) UserProfile(ctx context.Context) (StudentProfile, error) {
	var resp profileResponse
	if err := c.get(ctx, "/users/profile", nil, &resp); err != nil {
		return StudentProfile{}, err
	}
	if !resp.Success {
		return StudentProfile{}, rejected(resp.envelope)
	}
	return resp.Profile, nil
}
