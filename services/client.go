package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"leave/initialize/viper"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Credentials 提供 bearer token，收到 401 时负责清理
type Credentials interface {
	Token(ctx context.Context) string
	Unauthorized(ctx context.Context)
}

// Client 一个后端服务的 http 客户端
type Client struct {
	baseURL string
	hc      *http.Client
	creds   Credentials
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: timeout},
	}
}

// WithCredentials 复制一个带凭证的客户端，底层连接池共用
func (c *Client) WithCredentials(creds Credentials) *Client {
	cp := *c
	cp.creds = creds
	return &cp
}

func (c *Client) BaseURL() string { return c.baseURL }

type request struct {
	method      string
	path        string
	query       url.Values
	body        interface{}
	reader      io.Reader
	contentType string
	token       string // 不为空时覆盖 Credentials 的 token
	fallback    string
}

// do 发送请求，返回原始 body
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	var body io.Reader
	contentType := "application/json"
	switch {
	case r.reader != nil:
		body = r.reader
		contentType = r.contentType
	case r.body != nil:
		raw, err := json.Marshal(r.body)
		if err != nil {
			return nil, errors.Wrap(err, "encode request body")
		}
		body = bytes.NewReader(raw)
	}
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	token := r.token
	if token == "" && c.creds != nil {
		token = c.creds.Token(ctx)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		zap.L().Error("backend request failed",
			zap.String("method", r.method),
			zap.String("url", c.baseURL+r.path),
			zap.Error(err))
		return nil, errors.WithStack(&APIError{Message: MsgNoResponse, cause: err})
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WithStack(&APIError{Status: resp.StatusCode, Message: MsgNoResponse, cause: err})
	}
	zap.L().Debug("backend request",
		zap.String("method", r.method),
		zap.String("url", c.baseURL+r.path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("cost", time.Since(start)))

	if resp.StatusCode == http.StatusUnauthorized && c.creds != nil {
		c.creds.Unauthorized(ctx)
	}
	if resp.StatusCode >= 400 {
		return nil, errors.WithStack(&APIError{
			Status:  resp.StatusCode,
			Message: responseMessage(raw, resp.Header.Get("Content-Type"), r.fallback),
		})
	}
	return raw, nil
}

// decode 直接解析
func decode(raw []byte, out interface{}) error {
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	return errors.Wrap(json.Unmarshal(raw, out), "decode response")
}

// decodeData 兼容 {"data": X} 和 X 两种返回
func decodeData(raw []byte, out interface{}) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &env); err == nil {
			if data, ok := env["data"]; ok {
				return decode(data, out)
			}
		}
	}
	return decode(trimmed, out)
}

// Backend 认证服务和请假服务
type Backend struct {
	auth  *Client
	leave *Client
}

func NewBackend(cfg *viper.BackendConfig) *Backend {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Backend{
		auth:  NewClient(cfg.AuthAPIURL, timeout),
		leave: NewClient(cfg.LeaveAPIURL, timeout),
	}
}

func (b *Backend) Auth(creds Credentials) *AuthService {
	return &AuthService{c: b.auth.WithCredentials(creds)}
}

func (b *Backend) Leave(creds Credentials) *LeaveService {
	return &LeaveService{c: b.leave.WithCredentials(creds)}
}
