package redis

import (
	"strconv"
	"testing"

	"leave/global"
	"leave/initialize/viper"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	require.NoError(t, Init(&viper.RedisConfig{Host: mr.Host(), Port: port, PoolSize: 2}))
	t.Cleanup(func() {
		Close()
		global.GLOBAL_REDIS = nil
	})
	assert.NotNil(t, global.GLOBAL_REDIS)
}

func TestInit_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	port, _ := strconv.Atoi(mr.Port())
	mr.Close()
	assert.Error(t, Init(&viper.RedisConfig{Host: "127.0.0.1", Port: port}))
}
