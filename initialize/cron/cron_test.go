package cron

import (
	"context"
	"testing"
	"time"

	"leave/dao/session"
	"leave/global"
	"leave/initialize/viper"
	"leave/logic"
	"leave/model/store"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func token(t *testing.T, exp time.Time) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{ExpiresAt: exp.Unix()}).SignedString([]byte("k"))
	require.NoError(t, err)
	return s
}

// numericToken 后端用数字作 userId 时签出来的 token
func numericToken(t *testing.T, exp time.Time) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"userId": 42, "exp": exp.Unix()}).SignedString([]byte("k"))
	require.NoError(t, err)
	return s
}

func TestSweepSessions(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	storage := session.NewMemory()
	tests := []struct {
		sid   string
		token string
		keep  bool
	}{
		{"expired", token(t, now.Add(-time.Minute)), false},
		{"valid", token(t, now.Add(time.Hour)), true},
		{"opaque", "not-a-jwt", true},
		{"numeric user", numericToken(t, now.Add(-time.Minute)), false},
	}
	for _, tt := range tests {
		require.NoError(t, storage.Set(ctx, tt.sid, session.ScopeSession, session.KeyToken, tt.token))
		require.NoError(t, storage.Set(ctx, tt.sid, session.ScopeLocal, session.KeyUserID, "1"))
	}
	registry := store.NewRegistry()
	registry.Get("expired")

	cleared, evicted, err := SweepSessions(ctx, storage, registry, now, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, cleared)
	assert.Equal(t, 0, evicted)
	for _, tt := range tests {
		_, ok, err := storage.Get(ctx, tt.sid, session.ScopeSession, session.KeyToken)
		require.NoError(t, err)
		assert.Equal(t, tt.keep, ok, tt.sid)
		_, ok, _ = storage.Get(ctx, tt.sid, session.ScopeLocal, session.KeyUserID)
		assert.True(t, ok, "userId survives for %s", tt.sid)
	}

	_, evicted, err = SweepSessions(ctx, storage, registry, time.Now().Add(2*time.Hour), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, evicted)
	assert.Zero(t, registry.Len())
}

func TestStart(t *testing.T) {
	global.GLOAB_CORN = nil
	t.Cleanup(func() {
		Stop()
		global.GLOAB_CORN = nil
	})
	h := logic.NewHolidayCalendar("RW")
	cfg := viper.Default()

	require.NoError(t, Start(cfg.CronConfig, h, session.NewMemory(), store.NewRegistry(), time.Hour))
	assert.Len(t, global.GLOAB_CORN.Entries(), 2)

	err := Start(&viper.CronConfig{HolidayRefresh: "bad schedule", SessionSweep: "0 * * * * *"}, h, session.NewMemory(), nil, time.Hour)
	assert.Error(t, err)
}
