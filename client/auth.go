package client

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/medisync/clinic-client/session"
	"github.com/medisync/clinic-client/types"
)

// Login authenticates with the backend and persists the returned token
// pair. The expected role defaults to patient.
func (c *Client) Login(ctx context.Context, email, password string) (*types.LoginResponse, error) {
	var resp types.LoginResponse
	err := c.Call(ctx, CallSpec{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body: map[string]string{
			"username_or_email": email,
			"password":          password,
			"expected_role":     string(types.RolePatient),
		},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if err := c.session.Set(ctx, &session.Session{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}); err != nil {
		return nil, errors.Wrap(err, "[Client.Login] persist session")
	}
	c.log.Info().Msg("login successful, session persisted")
	return &resp, nil
}

// RegisterRequest is the payload for creating a patient account.
type RegisterRequest struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	Phone     *string `json:"phone,omitempty"`
}

// Register creates a patient account and persists the returned token
// pair, leaving the caller logged in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*types.LoginResponse, error) {
	var resp types.LoginResponse
	err := c.Call(ctx, CallSpec{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Body: map[string]any{
			"first_name": req.FirstName,
			"last_name":  req.LastName,
			"email":      req.Email,
			"username":   req.Email,
			"password":   req.Password,
			"phone":      req.Phone,
			"role":       string(types.RolePatient),
		},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if err := c.session.Set(ctx, &session.Session{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}); err != nil {
		return nil, errors.Wrap(err, "[Client.Register] persist session")
	}
	return &resp, nil
}

// Logout tells the backend to end the session, then clears local
// credentials regardless of the backend's answer.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.Call(ctx, CallSpec{Method: http.MethodPost, Path: "/auth/logout"}, nil); err != nil {
		c.log.Warn().Err(err).Msg("logout call failed, clearing local session anyway")
	}
	return c.session.Clear(ctx)
}

// CurrentUser returns the authenticated account behind /auth/me.
func (c *Client) CurrentUser(ctx context.Context) (*types.User, error) {
	var user types.User
	if err := c.Call(ctx, CallSpec{Method: http.MethodGet, Path: "/auth/me"}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// IsAuthenticated reports whether a stored session exists and the
// backend still accepts it.
func (c *Client) IsAuthenticated(ctx context.Context) bool {
	if !c.session.Authenticated(ctx) {
		return false
	}
	_, err := c.CurrentUser(ctx)
	return err == nil
}

// MFASetup is the backend's answer to an MFA enrollment request.
type MFASetup struct {
	QRURI   *string  `json:"qr_uri,omitempty"`
	Secret  *string  `json:"secret,omitempty"`
	Methods []string `json:"methods"`
}

// InitiateMFA starts multi-factor enrollment for the current account.
func (c *Client) InitiateMFA(ctx context.Context) (*MFASetup, error) {
	var setup MFASetup
	if err := c.Call(ctx, CallSpec{Method: http.MethodPost, Path: "/auth/mfa/initiate", Body: map[string]string{}}, &setup); err != nil {
		return nil, err
	}
	return &setup, nil
}

// MFAVerification is the backend's answer to a verification code.
type MFAVerification struct {
	Success       bool     `json:"success"`
	RecoveryCodes []string `json:"recovery_codes,omitempty"`
}

// VerifyMFA submits an MFA verification code.
func (c *Client) VerifyMFA(ctx context.Context, code string) (*MFAVerification, error) {
	var result MFAVerification
	err := c.Call(ctx, CallSpec{
		Method: http.MethodPost,
		Path:   "/auth/mfa/verify",
		Body:   map[string]string{"code": code},
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
