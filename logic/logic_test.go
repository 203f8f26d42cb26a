package logic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"leave/dao/session"
	"leave/initialize/viper"
	"leave/model/store"
	"leave/services"

	"github.com/stretchr/testify/require"
)

// fakeBackend 同一个 httptest 服务同时充当认证服务(/auth-api)和请假服务(/leave-api)
type fakeBackend struct {
	mux     *http.ServeMux
	srv     *httptest.Server
	storage *session.Memory
	mu      sync.Mutex
	hits    map[string]int
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	f := &fakeBackend{mux: http.NewServeMux(), storage: session.NewMemory(), hits: make(map[string]int)}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.hits[r.Method+" "+r.URL.Path]++
		f.mu.Unlock()
		f.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeBackend) handle(pattern string, h http.HandlerFunc) { f.mux.HandleFunc(pattern, h) }

// reply pattern 形如 "GET /leave-api/requests"
func (f *fakeBackend) reply(pattern string, status int, body string) {
	f.handle(pattern, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

func (f *fakeBackend) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[key]
}

func (f *fakeBackend) backend() *services.Backend {
	return services.NewBackend(&viper.BackendConfig{
		AuthAPIURL:     f.srv.URL + "/auth-api",
		LeaveAPIURL:    f.srv.URL + "/leave-api",
		TimeoutSeconds: 2,
	})
}

type recordNotifier struct {
	mu    sync.Mutex
	texts []string
}

func (n *recordNotifier) Announce(_ context.Context, text string) {
	n.mu.Lock()
	n.texts = append(n.texts, text)
	n.mu.Unlock()
}

// wait 通知在后台发送，等到收到 count 条为止
func (n *recordNotifier) wait(t *testing.T, count int) []string {
	t.Helper()
	var texts []string
	require.Eventually(t, func() bool {
		n.mu.Lock()
		defer n.mu.Unlock()
		texts = append([]string(nil), n.texts...)
		return len(texts) >= count
	}, 2*time.Second, 10*time.Millisecond)
	return texts
}

func (f *fakeBackend) session(n Notifier) *Session {
	return NewSession(f.backend(), f.storage, store.New(), "sid-1", n)
}

// signIn 模拟登录和 2FA 完成后的存储内容
func signIn(t *testing.T, s *Session, token, user string) {
	t.Helper()
	ctx := context.Background()
	raw, err := json.Marshal(map[string]json.RawMessage{
		"token": json.RawMessage(`"` + token + `"`),
		"user":  json.RawMessage(user),
	})
	require.NoError(t, err)
	require.NoError(t, s.Creds.SetAuthResponse(ctx, session.ScopeLocal, raw))
	require.NoError(t, s.Creds.Set(ctx, session.ScopeSession, session.KeyToken, token))
}

func toastMessages(s *Session, kind string) []string {
	var out []string
	for _, t := range s.Store.DrainToasts() {
		if t.Type == kind {
			out = append(out, t.Message)
		}
	}
	return out
}
