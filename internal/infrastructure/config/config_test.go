package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"JOBWORK_APP_NAME":          os.Getenv("JOBWORK_APP_NAME"),
		"JOBWORK_APP_ENV":           os.Getenv("JOBWORK_APP_ENV"),
		"JOBWORK_APP_PORT":          os.Getenv("JOBWORK_APP_PORT"),
		"JOBWORK_DATABASE_HOST":     os.Getenv("JOBWORK_DATABASE_HOST"),
		"JOBWORK_DATABASE_PORT":     os.Getenv("JOBWORK_DATABASE_PORT"),
		"JOBWORK_DATABASE_USER":     os.Getenv("JOBWORK_DATABASE_USER"),
		"JOBWORK_DATABASE_PASSWORD": os.Getenv("JOBWORK_DATABASE_PASSWORD"),
		"JOBWORK_DATABASE_DBNAME":   os.Getenv("JOBWORK_DATABASE_DBNAME"),
		"JOBWORK_DATABASE_SSLMODE":  os.Getenv("JOBWORK_DATABASE_SSLMODE"),
		"JOBWORK_LOG_LEVEL":         os.Getenv("JOBWORK_LOG_LEVEL"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "jobwork-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "jobwork", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, "info", cfg.Log.Level)
	})

	t.Run("loads values from environment variables with JOBWORK prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("JOBWORK_APP_NAME", "test-app")
		os.Setenv("JOBWORK_APP_PORT", "9000")
		os.Setenv("JOBWORK_DATABASE_HOST", "testdb.local")
		os.Setenv("JOBWORK_DATABASE_PORT", "5433")
		os.Setenv("JOBWORK_DATABASE_USER", "testuser")
		os.Setenv("JOBWORK_DATABASE_PASSWORD", "testpass")
		os.Setenv("JOBWORK_DATABASE_DBNAME", "testdb")
		os.Setenv("JOBWORK_LOG_LEVEL", "debug")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, "testdb", cfg.Database.DBName)
		assert.Equal(t, "debug", cfg.Log.Level)
	})

	t.Run("rejects production without database password", func(t *testing.T) {
		clearEnv()
		os.Setenv("JOBWORK_APP_ENV", "production")
		os.Setenv("JOBWORK_DATABASE_SSLMODE", "require")

		_, err := Load()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "database.password")
	})

	t.Run("rejects production with sslmode disable", func(t *testing.T) {
		clearEnv()
		os.Setenv("JOBWORK_APP_ENV", "production")
		os.Setenv("JOBWORK_DATABASE_PASSWORD", "secret")

		_, err := Load()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode")
	})
}

func TestDatabaseConfigDSN(t *testing.T) {
	t.Run("builds DSN with escaped credentials", func(t *testing.T) {
		d := DatabaseConfig{
			Host:     "db.local",
			Port:     5432,
			User:     "user",
			Password: "p@ss/word",
			DBName:   "jobwork",
			SSLMode:  "require",
		}

		dsn := d.DSN()
		assert.Contains(t, dsn, "postgres://")
		assert.Contains(t, dsn, "db.local:5432")
		assert.Contains(t, dsn, "sslmode=require")
		assert.NotContains(t, dsn, "p@ss/word", "special characters must be escaped")
	})
}
