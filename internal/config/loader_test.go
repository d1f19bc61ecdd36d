package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandEnv(t *testing.T) {
	t.Run("env var set", func(t *testing.T) {
		t.Setenv("DB_HOST", "pg.internal")
		assert.Equal(t, "host: pg.internal", expandEnv("host: ${DB_HOST:localhost}"))
	})

	t.Run("default used when unset", func(t *testing.T) {
		assert.Equal(t, "host: localhost", expandEnv("host: ${UNSET_VAR_FOR_TEST:localhost}"))
	})

	t.Run("empty default", func(t *testing.T) {
		assert.Equal(t, "password: ", expandEnv("password: ${UNSET_VAR_FOR_TEST:}"))
	})

	t.Run("set env wins over default", func(t *testing.T) {
		t.Setenv("HTTP_PORT", "9090")
		assert.Equal(t, "port: 9090", expandEnv("port: ${HTTP_PORT:8080}"))
	})

	t.Run("empty env value still wins", func(t *testing.T) {
		t.Setenv("EMPTY_VAR", "")
		assert.Equal(t, "key: ", expandEnv("key: ${EMPTY_VAR:fallback}"))
	})

	t.Run("no default and unset keeps placeholder", func(t *testing.T) {
		assert.Equal(t, "key: ${UNSET_VAR_FOR_TEST}", expandEnv("key: ${UNSET_VAR_FOR_TEST}"))
	})

	t.Run("multiple placeholders", func(t *testing.T) {
		t.Setenv("A_VAR", "a")
		got := expandEnv("${A_VAR:x}-${B_VAR_UNSET:b}")
		assert.Equal(t, "a-b", got)
	})

	t.Run("default with url", func(t *testing.T) {
		got := expandEnv("base_url: ${UNSET_VAR_FOR_TEST:https://api.deepseek.com/v1}")
		assert.Equal(t, "base_url: https://api.deepseek.com/v1", got)
	})
}
