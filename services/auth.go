package services

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"leave/model/entity"
	"leave/model/params"
)

// AuthService 认证服务 /api/auth/*
type AuthService struct {
	c *Client
}

// Login 返回解析后的结果和原始 JSON，原始 JSON 原样存进 authResponse
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.AuthResponse, []byte, error) {
	raw, err := s.c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/auth/login",
		body:     params.ParamLogin{Email: email, Password: password},
		fallback: "Login failed",
	})
	if err != nil {
		return nil, nil, err
	}
	ar := new(entity.AuthResponse)
	if err = decode(raw, ar); err != nil {
		return nil, nil, err
	}
	return ar, raw, nil
}

func (s *AuthService) Register(ctx context.Context, p params.ParamRegister) (*entity.AuthResponse, error) {
	raw, err := s.c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/auth/register",
		body:     p,
		fallback: "Registration failed",
	})
	if err != nil {
		return nil, err
	}
	ar := new(entity.AuthResponse)
	return ar, decode(raw, ar)
}

// Setup2FA 需要显式传入 token，不走 Credentials 的解析顺序
func (s *AuthService) Setup2FA(ctx context.Context, userID entity.ID, token string, now time.Time) (*entity.TwoFactorSetup, error) {
	raw, err := s.c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/2fa/setup",
		body: map[string]interface{}{
			"userId":    userID,
			"action":    "setup",
			"timestamp": now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		},
		token:    token,
		fallback: "Failed to set up 2FA",
	})
	if err != nil {
		return nil, err
	}
	out := new(entity.TwoFactorSetup)
	return out, decodeData(raw, out)
}

func (s *AuthService) Verify2FA(ctx context.Context, userID entity.ID, code, token string) (*entity.AuthResponse, []byte, error) {
	raw, err := s.c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/auth/2fa/verify",
		body:     map[string]interface{}{"userId": userID, "code": code},
		token:    token,
		fallback: "Failed to verify 2FA code",
	})
	if err != nil {
		return nil, nil, err
	}
	ar := new(entity.AuthResponse)
	if err = decode(raw, ar); err != nil {
		return nil, nil, err
	}
	return ar, raw, nil
}

// Me token 为空时用 Credentials 的 token
func (s *AuthService) Me(ctx context.Context, token string) (json.RawMessage, error) {
	raw, err := s.c.do(ctx, request{
		method:   http.MethodGet,
		path:     "/auth/me",
		token:    token,
		fallback: "Failed to fetch user",
	})
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, p params.ParamUpdateProfile) (*entity.User, error) {
	raw, err := s.c.do(ctx, request{
		method:   http.MethodPut,
		path:     "/auth/profile",
		body:     p,
		fallback: "Failed to update profile",
	})
	if err != nil {
		return nil, err
	}
	u := new(entity.User)
	return u, decodeData(raw, u)
}

func (s *AuthService) RefreshToken(ctx context.Context) (*entity.AuthResponse, error) {
	raw, err := s.c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/auth/refresh-token",
		fallback: "Failed to refresh token",
	})
	if err != nil {
		return nil, err
	}
	ar := new(entity.AuthResponse)
	return ar, decode(raw, ar)
}

func (s *AuthService) ChangePassword(ctx context.Context, p params.ParamChangePassword) error {
	_, err := s.c.do(ctx, request{
		method:   http.MethodPut,
		path:     "/auth/change-password",
		body:     p,
		fallback: "Failed to change password",
	})
	return err
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// UpdateUser PATCH /users/:id，role 为空时是 PENDING，其余空字段传 null
func (s *AuthService) UpdateUser(ctx context.Context, id entity.ID, p params.ParamUpdateUser) (*entity.User, error) {
	role := p.Role
	if role == "" {
		role = entity.RolePending
	}
	raw, err := s.c.do(ctx, request{
		method: http.MethodPatch,
		path:   "/users/" + pathEscape(id),
		body: map[string]interface{}{
			"department": nullable(p.Department),
			"role":       role,
			"jobTitle":   nullable(p.JobTitle),
		},
		fallback: "Failed to update user",
	})
	if err != nil {
		return nil, err
	}
	u := new(entity.User)
	return u, decodeData(raw, u)
}
