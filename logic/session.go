package logic

import (
	"context"
	"time"

	"leave/dao/session"
	"leave/model/store"
	"leave/services"
)

// Notifier 请假提交、审批结果的群通知
type Notifier interface {
	Announce(ctx context.Context, text string)
}

type nopNotifier struct{}

func (nopNotifier) Announce(context.Context, string) {}

const announceTimeout = 10 * time.Second

// Session 一个浏览器客户端在本次请求中的视图
type Session struct {
	Creds  *session.Client
	Store  *store.Store
	Auth   *services.AuthService
	Leave  *services.LeaveService
	Notify Notifier
}

func NewSession(b *services.Backend, storage session.Storage, st *store.Store, sid string, n Notifier) *Session {
	creds := session.For(storage, sid)
	if n == nil {
		n = nopNotifier{}
	}
	return &Session{
		Creds:  creds,
		Store:  st,
		Auth:   b.Auth(creds),
		Leave:  b.Leave(creds),
		Notify: n,
	}
}

// fail 弹出错误提示并原样返回错误
func (s *Session) fail(err error, fallback string) error {
	msg := services.Message(err)
	if msg == "" {
		msg = fallback
	}
	s.Store.ToastError(msg)
	return err
}

// announce 后台发送通知，请求返回不等它
func (s *Session) announce(text string) {
	n := s.Notify
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), announceTimeout)
		defer cancel()
		n.Announce(ctx, text)
	}()
}

func message(err error) string { return services.Message(err) }

func leaveAsync(st *store.State) *store.Async { return &st.Leave.Async }
func teamAsync(st *store.State) *store.Async { return &st.Team.Async }
func departmentAsync(st *store.State) *store.Async { return &st.Departments.Async }
func leaveTypeAsync(st *store.State) *store.Async { return &st.LeaveTypes.Async }
func userAsync(st *store.State) *store.Async { return &st.User.Async }
