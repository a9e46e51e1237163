package api

import (
	"context"
	"net/http"
)

type loginRequest struct {
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
}

type loginResponse struct {
	envelope
	Data struct {
		Profiles []Profile `json:"profiles"`
	} `json:"data"`
}

// Login authenticates a guardian account and returns the candidate student
// profiles. It never stores anything; the session layer owns persistence.
func (c *Client) Login(ctx context.Context, mobile, password string) ([]Profile, error) {
	if mobile == "" || password == "" {
		return nil, &Error{Kind: KindValidation, Message: "mobile and password are required"}
	}

	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", nil,
		loginRequest{Mobile: mobile, Password: password}, &resp, false)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, rejected(resp.envelope)
	}
	return resp.Data.Profiles, nil
}

type teacherLoginRequest struct {
	TeacherID string `json:"teacherId"`
	Password  string `json:"password"`
}

type teacherLoginResponse struct {
	envelope
	Data struct {
		Token string `json:"token"`
		User  User   `json:"user"`
	} `json:"data"`
}

func (c *Client) TeacherLogin(ctx context.Context, teacherID, password string) (string, User, error) {
	if teacherID == "" || password == "" {
		return "", User{}, &Error{Kind: KindValidation, Message: "teacher id and password are required"}
	}

	var resp teacherLoginResponse
	err := c.do(ctx, http.MethodPost, "/auth/teacher/login", nil,
		teacherLoginRequest{TeacherID: teacherID, Password: password}, &resp, false)
	if err != nil {
		return "", User{}, err
	}
	if !resp.Success || resp.Data.Token == "" {
		return "", User{}, rejected(resp.envelope)
	}
	return resp.Data.Token, resp.Data.User, nil
}

type otpResponse struct {
	envelope
	Data OTPReceipt `json:"data"`
}

func (c *Client) RequestPasswordReset(ctx context.Context, mobile string) (OTPReceipt, error) {
	if mobile == "" {
		return OTPReceipt{}, &Error{Kind: KindValidation, Message: "mobile is required"}
	}
	return c.otpCall(ctx, "/auth/forgot-password", map[string]string{"mobile": mobile})
}

func (c *Client) VerifyOTP(ctx context.Context, mobile, otp string) (OTPReceipt, error) {
	if otp == "" {
		return OTPReceipt{}, &Error{Kind: KindValidation, Message: "otp is required"}
	}
	return c.otpCall(ctx, "/auth/verify-otp", map[string]string{"mobile": mobile, "otp": otp})
}

func (c *Client) ResetPassword(ctx context.Context, mobile, resetToken, newPassword string) (OTPReceipt, error) {
	if newPassword == "" {
		return OTPReceipt{}, &Error{Kind: KindValidation, Message: "new password is required"}
	}
	return c.otpCall(ctx, "/auth/reset-password", map[string]string{
		"mobile":      mobile,
		"resetToken":  resetToken,
		"newPassword": newPassword,
	})
}

func (c *Client) ResendOTP(ctx context.Context, mobile string) (OTPReceipt, error) {
	if mobile == "" {
		return OTPReceipt{}, &Error{Kind: KindValidation, Message: "mobile is required"}
	}
	return c.otpCall(ctx, "/auth/resend-otp", map[string]string{"mobile": mobile})
}

func (c *Client) otpCall(ctx context.Context, path string, body map[string]string) (OTPReceipt, error) {
	var resp otpResponse
	if err := c.do(ctx, http.MethodPost, path, nil, body, &resp, false); err != nil {
		return OTPReceipt{}, err
	}
	if !resp.Success {
		return OTPReceipt{}, rejected(resp.envelope)
	}
	return resp.Data, nil
}
