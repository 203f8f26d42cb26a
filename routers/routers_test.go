package routers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"leave/controllers/portal"
	"leave/dao/session"
	"leave/initialize/validator"
	"leave/initialize/viper"
	"leave/logic"
	"leave/model/store"
	"leave/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := validator.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

var today = time.Date(2025, time.June, 30, 9, 0, 0, 0, time.UTC)

type envelope struct {
	Code int             `json:"code"`
	Data json.RawMessage `json:"data"`
	Msg  string          `json:"msg"`
}

type portalEnv struct {
	t       *testing.T
	backend *http.ServeMux
	storage *session.Memory
	srv     *httptest.Server
	client  *http.Client
	mu      sync.Mutex
	hits    map[string]int
	role    string
}

func newPortal(t *testing.T) *portalEnv {
	t.Helper()
	e := &portalEnv{t: t, backend: http.NewServeMux(), storage: session.NewMemory(), hits: map[string]int{}}
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e.mu.Lock()
		e.hits[r.Method+" "+r.URL.Path]++
		e.mu.Unlock()
		e.backend.ServeHTTP(w, r)
	}))
	t.Cleanup(api.Close)
	e.backend.HandleFunc("POST /auth-api/auth/login", func(w http.ResponseWriter, _ *http.Request) {
		e.mu.Lock()
		role := e.role
		e.mu.Unlock()
		tok := signedToken(t, time.Now().Add(time.Hour))
		_, _ = io.WriteString(w, `{"token":"`+tok+`","user":{"id":2,"firstName":"Bo","lastName":"Kim","email":"bo@example.com","role":"`+role+`"}}`)
	})

	h := &portal.Handler{
		Backend: services.NewBackend(&viper.BackendConfig{
			AuthAPIURL:     api.URL + "/auth-api",
			LeaveAPIURL:    api.URL + "/leave-api",
			TimeoutSeconds: 2,
		}),
		Storage:      e.storage,
		Holidays:     logic.NewHolidayCalendar("RW"),
		AuthorizeURL: "http://auth.example.com/oauth2/authorization/google",
		Now:          func() time.Time { return today },
	}
	r := Setup("test", Deps{
		App:      &viper.App{CookieName: "leave_sid"},
		Storage:  e.storage,
		Registry: store.NewRegistry(),
		TTL:      time.Hour,
		Handler:  h,
	})
	e.srv = httptest.NewServer(r)
	t.Cleanup(e.srv.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	e.client = &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return e
}

func (e *portalEnv) reply(pattern string, status int, body string) {
	e.backend.HandleFunc(pattern, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

func (e *portalEnv) count(key string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hits[key]
}

func (e *portalEnv) do(method, path, body string) *http.Response {
	e.t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	require.NoError(e.t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.client.Do(req)
	require.NoError(e.t, err)
	e.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *portalEnv) call(method, path, body string) (int, envelope) {
	e.t.Helper()
	resp := e.do(method, path, body)
	var env envelope
	require.NoError(e.t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{ExpiresAt: exp.Unix()}).SignedString([]byte("k"))
	require.NoError(t, err)
	return s
}

// login 走一遍 /login，后端返回的用户带上给定角色
func (e *portalEnv) login(role string) {
	e.t.Helper()
	e.mu.Lock()
	e.role = role
	e.mu.Unlock()
	_, env := e.call(http.MethodPost, "/login", `{"email":"bo@example.com","password":"secret"}`)
	require.Equal(e.t, 200, env.Code, env.Msg)
}

func (e *portalEnv) sid() string {
	u, err := url.Parse(e.srv.URL)
	require.NoError(e.t, err)
	for _, c := range e.client.Jar.Cookies(u) {
		if c.Name == "leave_sid" {
			return c.Value
		}
	}
	return ""
}

func TestIndexRedirectsToDashboard(t *testing.T) {
	e := newPortal(t)
	resp := e.do(http.MethodGet, "/", "")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))
}

func TestNoRoute(t *testing.T) {
	e := newPortal(t)
	resp := e.do(http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	b, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"msg":"404"}`, string(b))
}

func TestProtectedRoutes(t *testing.T) {
	e := newPortal(t)
	status, env := e.call(http.MethodGet, "/dashboard", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, 401, env.Code)
	assert.JSONEq(t, `{"next":"/login"}`, string(env.Data))

	// 过期的 token 同样视为未登录
	require.NotEmpty(t, e.sid())
	require.NoError(t, e.storage.Set(context.Background(), e.sid(), session.ScopeSession, session.KeyToken,
		signedToken(t, time.Now().Add(-time.Minute))))
	status, _ = e.call(http.MethodGet, "/leaves/history", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	numeric, err := jwt.NewWithClaims(jwt.SigningMethodHS256,
		jwt.MapClaims{"userId": 2, "role": "ROLE_USER", "exp": time.Now().Add(-time.Minute).Unix()}).SignedString([]byte("k"))
	require.NoError(t, err)
	require.NoError(t, e.storage.Set(context.Background(), e.sid(), session.ScopeSession, session.KeyToken, numeric))
	status, _ = e.call(http.MethodGet, "/leaves/history", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestLogin(t *testing.T) {
	e := newPortal(t)
	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"missing email", `{"password":"secret"}`, "Email is required"},
		{"bad email", `{"email":"nope","password":"secret"}`, "Please enter a valid email"},
		{"missing password", `{"email":"a@example.com"}`, "Password is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, env := e.call(http.MethodPost, "/login", tt.body)
			assert.Equal(t, 400, env.Code)
			assert.Equal(t, tt.msg, env.Msg)
		})
	}
	assert.Zero(t, e.count("POST /auth-api/auth/login"))

	e.login("ROLE_USER")
	e.reply("GET /leave-api/requests/my-requests", http.StatusOK,
		`[{"_id":"r1","leaveType":"Annual","status":"approved","reason":"Trip"},{"_id":"r2","leaveType":"Sick","status":"pending"}]`)
	_, env := e.call(http.MethodGet, "/leaves/history?status=pending", "")
	require.Equal(t, 200, env.Code, env.Msg)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "r2", list[0]["id"])

	_, env = e.call(http.MethodGet, "/ui/toasts", "")
	assert.Contains(t, string(env.Data), "Login successful!")
	_, env = e.call(http.MethodGet, "/ui/toasts", "")
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestLoginRotatesSession(t *testing.T) {
	e := newPortal(t)
	e.do(http.MethodGet, "/ui/state", "")
	before := e.sid()
	require.NotEmpty(t, before)

	e.login("ROLE_USER")
	after := e.sid()
	assert.NotEqual(t, before, after)
	assert.Empty(t, session.For(e.storage, before).Token(context.Background()))
	assert.NotEmpty(t, session.For(e.storage, after).Token(context.Background()))

	status, _ := e.call(http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusOK, status)
}

func TestHistoryServerFilter(t *testing.T) {
	e := newPortal(t)
	e.login("ROLE_USER")
	queries := make(chan string, 1)
	e.backend.HandleFunc("GET /leave-api/leave/history", func(w http.ResponseWriter, r *http.Request) {
		queries <- r.URL.RawQuery
		_, _ = io.WriteString(w, `[{"_id":"r3","leaveType":"Sick","status":"approved","reason":"Flu"}]`)
	})
	_, env := e.call(http.MethodGet, "/leaves/history?server=true&status=approved&type=sick", "")
	require.Equal(t, 200, env.Code, env.Msg)
	assert.Equal(t, "status=approved&type=sick", <-queries)
	assert.Contains(t, string(env.Data), `"r3"`)
	assert.Zero(t, e.count("GET /leave-api/requests/my-requests"))
}

func TestBackendFailure(t *testing.T) {
	e := newPortal(t)
	e.login("ROLE_USER")
	e.reply("GET /leave-api/requests/my-requests", http.StatusInternalServerError, `{"message":"boom"}`)
	_, env := e.call(http.MethodGet, "/leaves/history", "")
	assert.Equal(t, 502, env.Code)
	assert.Equal(t, "boom", env.Msg)
}

func TestApprovals(t *testing.T) {
	e := newPortal(t)
	e.login("ROLE_USER")
	status, env := e.call(http.MethodPost, "/approvals/p1/approve", `{"comment":"ok"}`)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "You do not have permission to approve/reject leave requests", env.Msg)

	e.login("ROLE_MANAGER")
	e.reply("POST /leave-api/requests/p1/approve", http.StatusOK, `{"_id":"p1","status":"approved"}`)
	_, env = e.call(http.MethodPost, "/approvals/p1/approve", `{"comment":"ok"}`)
	assert.Equal(t, 200, env.Code, env.Msg)
	assert.Equal(t, 1, e.count("POST /leave-api/requests/p1/approve"))

	_, env = e.call(http.MethodPost, "/approvals/p1/reject", `{"comment":"too short"}`)
	assert.Equal(t, 400, env.Code)
	assert.Equal(t, "Rejection reason must be at least 10 characters long", env.Msg)
	assert.Zero(t, e.count("POST /leave-api/requests/p1/reject"))
}

func TestReports(t *testing.T) {
	e := newPortal(t)
	e.login("ROLE_MANAGER")
	e.reply("GET /leave-api/requests", http.StatusOK,
		`[{"_id":"r1","user":{"id":1,"firstName":"Ann","department":"Engineering"},"leaveType":"Annual","status":"approved","numberOfDays":3,"startDate":"2025-03-03","endDate":"2025-03-05"}]`)
	e.reply("GET /leave-api/teams/members", http.StatusOK, `[{"id":1,"firstName":"Ann","department":"Engineering"}]`)

	_, env := e.call(http.MethodGet, "/admin/reports", "")
	require.Equal(t, 200, env.Code)
	assert.Contains(t, string(env.Data), "department-analysis")

	resp := e.do(http.MethodGet, "/admin/reports/department-analysis/download", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, "attachment; filename=department-analysis-20250630.csv", resp.Header.Get("Content-Disposition"))
	b, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(b), "Engineering")

	_, env = e.call(http.MethodGet, "/admin/reports/nope/download", "")
	assert.Equal(t, 1003, env.Code)

	// 没有归档时 runs 为空
	_, env = e.call(http.MethodGet, "/admin/reports/runs", "")
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestUIToggles(t *testing.T) {
	e := newPortal(t)
	_, env := e.call(http.MethodPost, "/ui/theme", "")
	assert.JSONEq(t, `{"theme":"dark"}`, string(env.Data))
	_, env = e.call(http.MethodPost, "/ui/sidebar", "")
	assert.JSONEq(t, `{"sidebarOpen":false}`, string(env.Data))
	_, env = e.call(http.MethodGet, "/ui", "")
	assert.Contains(t, string(env.Data), `"theme":"dark"`)
}

func TestOAuth2(t *testing.T) {
	e := newPortal(t)
	resp := e.do(http.MethodGet, "/oauth2/authorize", "")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "http://auth.example.com/oauth2/authorization/google", resp.Header.Get("Location"))

	_, env := e.call(http.MethodGet, "/oauth2/callback", "")
	assert.Equal(t, "No token received", env.Msg)
	assert.JSONEq(t, `{"next":"/login"}`, string(env.Data))
}
