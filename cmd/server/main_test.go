package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunReturnsConfigErrors(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("STORAGE", "sqlite")

	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load configuration")
}

func TestRunReturnsRedisConnectErrors(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("STORAGE", "memory")
	t.Setenv("REDIS_ADDR", "127.0.0.1:1")
	t.Setenv("POST_CACHE_TTL_SECONDS", "60")
	t.Setenv("LOG_LEVEL", "error")

	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect to redis")
}
