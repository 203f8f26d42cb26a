package logic

import (
	"context"
	"encoding/json"
	"time"

	"leave/dao/session"
	"leave/model/entity"
	"leave/model/params"
	"leave/model/store"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	PathLogin     = "/login"
	PathSetup2FA  = "/setup-2fa"
	PathVerify2FA = "/verify-2fa"
	PathDashboard = "/dashboard"
	PathHistory   = "/leaves/history"
)

var (
	ErrNoAuthData        = errors.New("No authentication data found")
	ErrUserIDRequired    = errors.New("User ID is required")
	ErrTokenRequired     = errors.New("Authentication token is required")
	ErrCodeRequired      = errors.New("Verification code is required")
	ErrNoTokenReceived   = errors.New("No token received")
	ErrInvalidMeResponse = errors.New("Invalid response structure from server")
	ErrInvalidUserData   = errors.New("Invalid user data received")
	ErrUserIDMissing     = errors.New("User ID is missing")
	ErrNoTokenFound      = errors.New("No authentication token found")
)

// AuthResult 登录类操作的结果，Next 是前端接下来要去的页面
type AuthResult struct {
	Next string       `json:"next,omitempty"`
	User *entity.User `json:"user,omitempty"`
}

func Login(ctx context.Context, s *Session, p *params.ParamLogin) (*AuthResult, error) {
	ar, raw, err := s.Auth.Login(ctx, p.Email, p.Password)
	if err != nil {
		return nil, s.fail(err, "Login failed")
	}
	if err = s.Creds.SetAuthResponse(ctx, session.ScopeLocal, raw); err != nil {
		return nil, s.fail(errors.Wrap(err, "store authResponse"), "Login failed")
	}
	userID := ar.UserID
	if userID == "" && ar.User != nil {
		userID = ar.User.ID
	}
	if err = s.Creds.Set(ctx, session.ScopeLocal, session.KeyUserID, userID.String()); err != nil {
		return nil, s.fail(errors.Wrap(err, "store userId"), "Login failed")
	}
	if ar.Token != "" {
		if err = s.Creds.Set(ctx, session.ScopeSession, session.KeyToken, ar.Token); err != nil {
			return nil, s.fail(errors.Wrap(err, "store token"), "Login failed")
		}
	}
	s.Store.Update(func(st *store.State) { st.User.Profile = ar.User })
	s.Store.ToastSuccess("Login successful!")
	return &AuthResult{Next: PathSetup2FA, User: ar.User}, nil
}

func Register(ctx context.Context, s *Session, p *params.ParamRegister) (*AuthResult, error) {
	if _, err := s.Auth.Register(ctx, *p); err != nil {
		return nil, s.fail(err, "Registration failed")
	}
	s.Store.ToastSuccess("Registration successful! Please log in.")
	return &AuthResult{Next: PathLogin}, nil
}

// storedLogin 2FA 相关操作共同的前置检查
func storedLogin(ctx context.Context, s *Session) (entity.ID, string, error) {
	ar, ok := s.Creds.AuthResponse(ctx, session.ScopeLocal)
	if !ok {
		return "", "", errors.WithStack(ErrNoAuthData)
	}
	if ar.User == nil || ar.User.ID == "" {
		return "", "", errors.WithStack(ErrUserIDRequired)
	}
	if ar.Token == "" {
		return "", "", errors.WithStack(ErrTokenRequired)
	}
	return ar.User.ID, ar.Token, nil
}

// Setup2FAResult 二维码和密钥都有时才能继续去校验
type Setup2FAResult struct {
	QRCodeURL string `json:"qrCodeUrl"`
	SecretKey string `json:"secretKey"`
	CanVerify bool   `json:"canVerify"`
	Next      string `json:"next,omitempty"`
}

func Setup2FA(ctx context.Context, s *Session, now time.Time) (*Setup2FAResult, error) {
	userID, token, err := storedLogin(ctx, s)
	if err != nil {
		return nil, s.fail(err, "2FA setup failed")
	}
	out, err := s.Auth.Setup2FA(ctx, userID, token, now)
	if err != nil {
		return nil, s.fail(err, "2FA setup failed")
	}
	res := &Setup2FAResult{QRCodeURL: out.QRCodeURL, SecretKey: out.SecretKey}
	if res.QRCodeURL != "" && res.SecretKey != "" {
		res.CanVerify = true
		res.Next = PathVerify2FA
	}
	return res, nil
}

func Verify2FA(ctx context.Context, s *Session, code string) (*AuthResult, error) {
	if code == "" {
		return nil, s.fail(errors.WithStack(ErrCodeRequired), "Verification failed")
	}
	userID, token, err := storedLogin(ctx, s)
	if err != nil {
		return nil, s.fail(err, "Verification failed")
	}
	ar, raw, err := s.Auth.Verify2FA(ctx, userID, code, token)
	if err != nil {
		return nil, s.fail(err, "2FA verification failed")
	}
	res := &AuthResult{User: ar.User}
	if ar.Token != "" {
		if err = s.Creds.SetAuthResponse(ctx, session.ScopeSession, raw); err != nil {
			return nil, s.fail(errors.Wrap(err, "store authResponse"), "Verification failed")
		}
		if err = s.Creds.Set(ctx, session.ScopeSession, session.KeyToken, ar.Token); err != nil {
			return nil, s.fail(errors.Wrap(err, "store token"), "Verification failed")
		}
		res.Next = PathDashboard
	}
	s.Store.ToastSuccess("2FA verification successful!")
	return res, nil
}

// meUser /auth/me 返回 {user: {...}} 或 {user: {user: {...}}}
func meUser(raw []byte) (*entity.User, error) {
	var body struct {
		User json.RawMessage `json:"user"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.User) == 0 || string(body.User) == "null" {
		return nil, errors.WithStack(ErrInvalidMeResponse)
	}
	var nested struct {
		User *entity.User `json:"user"`
	}
	if err := json.Unmarshal(body.User, &nested); err == nil && nested.User != nil {
		return nested.User, nil
	}
	u := new(entity.User)
	if err := json.Unmarshal(body.User, u); err != nil {
		return nil, errors.WithStack(ErrInvalidUserData)
	}
	return u, nil
}

// OAuth2Callback 用回调带回来的 token 拉取用户信息，失败统一回到登录页
func OAuth2Callback(ctx context.Context, s *Session, token string) (res *AuthResult, err error) {
	defer func() {
		if err != nil {
			zap.L().Warn("oauth2 callback failed", zap.Error(err))
			s.fail(err, "Authentication failed")
			res = &AuthResult{Next: PathLogin}
		}
	}()
	if token == "" {
		return nil, errors.WithStack(ErrNoTokenReceived)
	}
	raw, err := s.Auth.Me(ctx, token)
	if err != nil {
		return nil, err
	}
	u, err := meUser(raw)
	if err != nil {
		return nil, err
	}
	if u.ID == "" {
		return nil, errors.WithStack(ErrInvalidUserData)
	}
	stored := entity.AuthResponse{
		Token: token,
		User: &entity.User{
			ID:                u.ID,
			FirstName:         u.FirstName,
			LastName:          u.LastName,
			Email:             u.Email,
			Role:              u.Role,
			TwoFactorEnabled:  u.TwoFactorEnabled,
			TwoFactorVerified: u.TwoFactorVerified,
			SecretKey:         u.SecretKey,
		},
	}
	b, err := json.Marshal(stored)
	if err != nil {
		return nil, errors.Wrap(err, "encode authResponse")
	}
	if err = s.Creds.SetAuthResponse(ctx, session.ScopeLocal, b); err != nil {
		return nil, errors.Wrap(err, "store authResponse")
	}
	s.Store.Update(func(st *store.State) { st.User.Profile = stored.User })
	s.Store.ToastSuccess("Login successful!")
	next := PathDashboard
	if u.TwoFactorEnabled && !u.TwoFactorVerified {
		next = PathSetup2FA
	}
	return &AuthResult{Next: next, User: stored.User}, nil
}

func Logout(ctx context.Context, s *Session) (*AuthResult, error) {
	if err := s.Creds.Logout(ctx); err != nil {
		return nil, s.fail(err, "Logout failed")
	}
	s.Store.Reset()
	return &AuthResult{Next: PathLogin}, nil
}

// CurrentUser 拉取 /auth/me 写入用户切片
func CurrentUser(ctx context.Context, s *Session) (*entity.User, error) {
	return store.Run(s.Store, userAsync, func() (*entity.User, error) {
		if s.Creds.Token(ctx) == "" {
			return nil, errors.WithStack(ErrNoTokenFound)
		}
		raw, err := s.Auth.Me(ctx, "")
		if err != nil {
			return nil, err
		}
		return meUser(raw)
	}, func(st *store.State, u *entity.User) { st.User.Profile = u }, message)
}

func UpdateProfile(ctx context.Context, s *Session, p *params.ParamUpdateProfile) (*entity.User, error) {
	u, err := store.Run(s.Store, userAsync, func() (*entity.User, error) {
		return s.Auth.UpdateProfile(ctx, *p)
	}, func(st *store.State, u *entity.User) { st.User.Profile = u }, message)
	if err != nil {
		return nil, s.fail(err, "Failed to update profile")
	}
	s.Store.ToastSuccess("Profile updated successfully")
	return u, nil
}

func ChangePassword(ctx context.Context, s *Session, p *params.ParamChangePassword) error {
	if err := s.Auth.ChangePassword(ctx, *p); err != nil {
		return s.fail(err, "Failed to change password")
	}
	s.Store.ToastSuccess("Password changed successfully")
	return nil
}

// RefreshToken 新 token 写回 session
func RefreshToken(ctx context.Context, s *Session) error {
	ar, err := s.Auth.RefreshToken(ctx)
	if err != nil {
		return s.fail(err, "Failed to refresh token")
	}
	if ar.Token != "" {
		if err = s.Creds.Set(ctx, session.ScopeSession, session.KeyToken, ar.Token); err != nil {
			return s.fail(errors.Wrap(err, "store token"), "Failed to refresh token")
		}
	}
	return nil
}
