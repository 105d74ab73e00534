package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"POSTGRES_CONN", "SERVER_ADDRESS", "JWT_SECRET", "LOG_LEVEL", "LOG_FORMAT",
	"DB_MAX_OPEN_CONNS", "SHUTDOWN_TIMEOUT", "RUN_MIGRATIONS",
}

// clearEnv blanks every config variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("POSTGRES_CONN", "postgres://localhost/sourcing")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:8080", cfg.ServerAddress)
	require.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	require.Equal(t, 10, cfg.Postgres.MaxOpenConns)
	require.True(t, cfg.Postgres.RunMigrations)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("POSTGRES_CONN", "postgres://db/sourcing")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SERVER_ADDRESS", ":9090")
	t.Setenv("DB_MAX_OPEN_CONNS", "25")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("RUN_MIGRATIONS", "false")
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.ServerAddress)
	require.Equal(t, 25, cfg.Postgres.MaxOpenConns)
	require.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	require.False(t, cfg.Postgres.RunMigrations)
	require.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_RequiredAndInvalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"missing conn", map[string]string{"JWT_SECRET": "s"}, "POSTGRES_CONN is required"},
		{"missing secret", map[string]string{"POSTGRES_CONN": "c"}, "JWT_SECRET is required"},
		{"bad int", map[string]string{"POSTGRES_CONN": "c", "JWT_SECRET": "s", "DB_MAX_OPEN_CONNS": "many"}, "DB_MAX_OPEN_CONNS"},
		{"zero conns", map[string]string{"POSTGRES_CONN": "c", "JWT_SECRET": "s", "DB_MAX_OPEN_CONNS": "0"}, "must be positive"},
		{"bad duration", map[string]string{"POSTGRES_CONN": "c", "JWT_SECRET": "s", "SHUTDOWN_TIMEOUT": "soon"}, "SHUTDOWN_TIMEOUT"},
		{"bad bool", map[string]string{"POSTGRES_CONN": "c", "JWT_SECRET": "s", "RUN_MIGRATIONS": "maybe"}, "RUN_MIGRATIONS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	for _, k := range configKeys {
		require.NoError(t, os.Unsetenv(k))
	}
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("POSTGRES_CONN=postgres://file/db\nJWT_SECRET=from-file\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("POSTGRES_CONN")
		os.Unsetenv("JWT_SECRET")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "postgres://file/db", cfg.Postgres.Conn)
	require.Equal(t, "from-file", cfg.JWTSecret)
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("POSTGRES_CONN", "c")
	t.Setenv("JWT_SECRET", "s")

	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
}
