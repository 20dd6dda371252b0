package auth

import (
	"context"

	"solomanager/internal/api"
	"solomanager/internal/metrics"
	"solomanager/internal/session"
)

// Client drives the authentication flows. Success responses set the
// session cookie on the shared api.Client; the returned identity is what
// callers hand to session.Store.Login.
type Client struct {
	api *api.Client
}

func NewClient(apiClient *api.Client) *Client {
	return &Client{api: apiClient}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	GymName  string `json:"gym_name" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

type userEnvelope struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	User    session.Identity `json:"user"`
}

// Login authenticates a gym admin.
func (c *Client) Login(ctx context.Context, email, password string) (*session.Identity, error) {
	return c.login(ctx, "/api/auth/login", email, password)
}

// ManagerLogin authenticates an invited manager.
func (c *Client) ManagerLogin(ctx context.Context, email, password string) (*session.Identity, error) {
	return c.login(ctx, "/api/auth/manager-login", email, password)
}

func (c *Client) login(ctx context.Context, path, email, password string) (*session.Identity, error) {
	req := LoginRequest{Email: email, Password: password}
	if err := api.ValidateStruct(req); err != nil {
		return nil, err
	}

	var out userEnvelope
	if err := c.api.Post(ctx, path, req, &out); err != nil {
		metrics.RecordLogin("failure")
		return nil, err
	}
	metrics.RecordLogin("success")
	return &out.User, nil
}

// Signup registers a new gym admin. The account stays inactive until the
// emailed OTP is verified.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*session.Identity, error) {
	if err := api.ValidateStruct(req); err != nil {
		return nil, err
	}

	var out userEnvelope
	if err := c.api.Post(ctx, "/api/auth/signup", req, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// VerifyOTP completes signup with the emailed one-time code.
func (c *Client) VerifyOTP(ctx context.Context, email, otp string) error {
	body := map[string]string{"email": email, "otp": otp}
	var out struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := c.api.Post(ctx, "/api/auth/verify-otp", body, &out); err != nil {
		return err
	}
	if !out.Success {
		return &api.ValidationError{Message: out.Message}
	}
	return nil
}

// RequestPasswordReset emails a reset OTP.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.api.Post(ctx, "/api/auth/reset-password", map[string]string{"email": email}, nil)
}

// VerifyResetOTP checks the reset OTP before the new password is chosen.
func (c *Client) VerifyResetOTP(ctx context.Context, email, otp string) error {
	body := map[string]string{"email": email, "otp": otp}
	return c.api.Post(ctx, "/api/auth/reset-password/verify-otp", body, nil)
}

// ChangePassword sets the new password after a verified reset OTP.
func (c *Client) ChangePassword(ctx context.Context, email, otp, newPassword string) error {
	body := map[string]string{"email": email, "otp": otp, "password": newPassword}
	return c.api.Post(ctx, "/api/auth/change-password", body, nil)
}

// IsAuthenticated asks the server whether the session cookie is still
// valid.
func (c *Client) IsAuthenticated(ctx context.Context) (bool, error) {
	var out struct {
		Success bool `json:"success"`
	}
	if err := c.api.Get(ctx, "/api/auth/is-authenticated", &out); err != nil {
		if api.IsAuth(err) {
			return false, nil
		}
		return false, err
	}
	return out.Success, nil
}
