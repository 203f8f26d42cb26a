package session

import (
	"context"
	"encoding/json"

	"leave/model/entity"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Client 某一个浏览器客户端的存储视图
type Client struct {
	store Storage
	sid   string
}

func For(store Storage, sid string) *Client {
	return &Client{store: store, sid: sid}
}

func (c *Client) SID() string { return c.sid }

func (c *Client) Get(ctx context.Context, scope, key string) (string, bool) {
	v, ok, err := c.store.Get(ctx, c.sid, scope, key)
	if err != nil {
		zap.L().Error("session get failed", zap.String("scope", scope), zap.String("key", key), zap.Error(err))
		return "", false
	}
	return v, ok
}

func (c *Client) Set(ctx context.Context, scope, key, value string) error {
	return c.store.Set(ctx, c.sid, scope, key, value)
}

func (c *Client) Remove(ctx context.Context, scope, key string) error {
	return c.store.Remove(ctx, c.sid, scope, key)
}

// AuthResponse 读取某个作用域下的 authResponse
func (c *Client) AuthResponse(ctx context.Context, scope string) (*entity.AuthResponse, bool) {
	raw, ok := c.Get(ctx, scope, KeyAuthResponse)
	if !ok || raw == "" {
		return nil, false
	}
	ar := new(entity.AuthResponse)
	if err := json.Unmarshal([]byte(raw), ar); err != nil {
		zap.L().Warn("stored authResponse is not valid json", zap.String("scope", scope), zap.Error(err))
		return nil, false
	}
	return ar, true
}

// SetAuthResponse 原样保存后端返回的 JSON
func (c *Client) SetAuthResponse(ctx context.Context, scope string, raw []byte) error {
	return c.Set(ctx, scope, KeyAuthResponse, string(raw))
}

// Token 取 token 的顺序: session token, session authResponse.token, local authResponse.token
func (c *Client) Token(ctx context.Context) string {
	if t, ok := c.Get(ctx, ScopeSession, KeyToken); ok && t != "" {
		return t
	}
	for _, scope := range []string{ScopeSession, ScopeLocal} {
		if ar, ok := c.AuthResponse(ctx, scope); ok && ar.Token != "" {
			return ar.Token
		}
	}
	return ""
}

// User 当前登录用户，session 优先
func (c *Client) User(ctx context.Context) *entity.User {
	for _, scope := range []string{ScopeSession, ScopeLocal} {
		if ar, ok := c.AuthResponse(ctx, scope); ok && ar.User != nil {
			return ar.User
		}
	}
	return nil
}

// Unauthorized 后端返回 401 时清掉凭证，不做跳转
func (c *Client) Unauthorized(ctx context.Context) {
	if err := c.ClearCredentials(ctx); err != nil {
		zap.L().Error("clear credentials failed", zap.String("sid", c.sid), zap.Error(err))
	}
}

func (c *Client) ClearCredentials(ctx context.Context) error {
	for _, k := range []struct{ scope, key string }{
		{ScopeLocal, KeyAuthResponse},
		{ScopeSession, KeyAuthResponse},
		{ScopeSession, KeyToken},
	} {
		if err := c.Remove(ctx, k.scope, k.key); err != nil {
			return errors.Wrapf(err, "remove %s %s", k.scope, k.key)
		}
	}
	return nil
}

// Logout 退出登录时删除的三个 key
func (c *Client) Logout(ctx context.Context) error {
	for _, k := range []struct{ scope, key string }{
		{ScopeSession, KeyToken},
		{ScopeLocal, KeyUserID},
		{ScopeLocal, KeyAuthResponse},
	} {
		if err := c.Remove(ctx, k.scope, k.key); err != nil {
			return errors.Wrapf(err, "remove %s %s", k.scope, k.key)
		}
	}
	return nil
}

// allKeys 一个客户端在两个作用域下可能保存的全部 key
var allKeys = []struct{ scope, key string }{
	{ScopeLocal, KeyAuthResponse},
	{ScopeLocal, KeyUserID},
	{ScopeSession, KeyAuthResponse},
	{ScopeSession, KeyToken},
}

// Known 存储里有这个客户端的任何数据
func (c *Client) Known(ctx context.Context) bool {
	for _, k := range allKeys {
		if _, ok := c.Get(ctx, k.scope, k.key); ok {
			return true
		}
	}
	return false
}

// MoveTo 把全部 key 搬到新的会话ID下，旧ID下不再保留
func (c *Client) MoveTo(ctx context.Context, sid string) (*Client, error) {
	next := For(c.store, sid)
	for _, k := range allKeys {
		v, ok := c.Get(ctx, k.scope, k.key)
		if !ok {
			continue
		}
		if err := next.Set(ctx, k.scope, k.key, v); err != nil {
			return nil, errors.Wrapf(err, "move %s %s", k.scope, k.key)
		}
	}
	for _, scope := range []string{ScopeLocal, ScopeSession} {
		if err := c.store.Clear(ctx, c.sid, scope); err != nil {
			return nil, errors.Wrapf(err, "clear %s", scope)
		}
	}
	return next, nil
}
