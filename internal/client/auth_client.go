package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"deal-board/internal/dto"
	"deal-board/internal/response"
)

// authBody is the union of fields the auth endpoints answer with
type authBody struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	Data    struct {
		Token string `json:"token"`
	} `json:"data"`
}

// Login signs in and keeps the issued token for later calls
func (c *crmClient) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResult, error) {
	result, err := c.auth(ctx, "/auth/login", req)
	if err != nil {
		return nil, err
	}
	if result.Success && result.Token != "" {
		c.tokens.Set(result.Token)
		c.logger.Info("Logged in", zap.String("email", req.Email))
	}
	return result, nil
}

// Register creates an account
func (c *crmClient) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResult, error) {
	return c.auth(ctx, "/auth/register", req)
}

// ForgotPassword asks the API to send a reset link
func (c *crmClient) ForgotPassword(ctx context.Context, req dto.ForgotPasswordRequest) (*dto.AuthResult, error) {
	return c.auth(ctx, "/auth/forgot-password", req)
}

// ResetPassword sets a new password using the emailed token
func (c *crmClient) ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) (*dto.AuthResult, error) {
	return c.auth(ctx, "/auth/reset-password", req)
}

// auth posts to an auth endpoint. Rejections by the API are a failed result,
// not an error; only transport failures are returned as errors.
func (c *crmClient) auth(ctx context.Context, path string, body interface{}) (*dto.AuthResult, error) {
	raw, err := c.send(ctx, http.MethodPost, path, body, false)
	if err != nil {
		var appErr *response.AppError
		// status errors carry no wrapped cause; transport failures do
		if errors.As(err, &appErr) && appErr.Err == nil && response.IsNetwork(err) {
			return &dto.AuthResult{Success: false, Message: appErr.Message}, nil
		}
		return nil, err
	}

	var parsed authBody
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &parsed)
	}
	token := parsed.Token
	if token == "" {
		token = parsed.Data.Token
	}
	return &dto.AuthResult{
		Success: true,
		Message: parsed.Message,
		Token:   token,
	}, nil
}
