package config

import (
	"testing"
	"time"

	"github.com/homechef/backend/internal/domain/loyalty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "homechef-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "homechef", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.False(t, cfg.Redis.Enabled)
		assert.Equal(t, 15*time.Minute, cfg.Ordering.ApprovalTimeout)
		assert.Equal(t, 2*time.Hour, cfg.Ordering.AutoCompleteAfter)
		assert.Equal(t, "150.00", cfg.Ordering.MaxCashOrderAmount)
		assert.Equal(t, "@every 1m", cfg.Scheduler.ApprovalExpirySpec)
		assert.Equal(t, "@every 10m", cfg.Scheduler.AutoCompleteSpec)
		assert.Equal(t, "@hourly", cfg.Scheduler.OutboxCleanupSpec)
		assert.Len(t, cfg.Loyalty.Tiers, 4)
		assert.False(t, cfg.Notification.EmailEnabled())
		assert.False(t, cfg.Notification.PushEnabled())
	})

	t.Run("loads values from environment variables with HOMECHEF prefix", func(t *testing.T) {
		t.Setenv("HOMECHEF_APP_PORT", "9000")
		t.Setenv("HOMECHEF_DATABASE_HOST", "db.internal")
		t.Setenv("HOMECHEF_DATABASE_PASSWORD", "p@ss")
		t.Setenv("HOMECHEF_REDIS_ENABLED", "true")
		t.Setenv("HOMECHEF_ORDERING_APPROVAL_TIMEOUT", "5m")
		t.Setenv("HOMECHEF_ORDERING_MAX_OPEN_CASH_ORDERS", "4")
		t.Setenv("HOMECHEF_NOTIFICATION_SMTP_HOST", "smtp.local")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "db.internal", cfg.Database.Host)
		assert.Equal(t, "p@ss", cfg.Database.Password)
		assert.True(t, cfg.Redis.Enabled)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
		assert.Equal(t, 5*time.Minute, cfg.Ordering.ApprovalTimeout)
		assert.Equal(t, int64(4), cfg.Ordering.MaxOpenCashOrders)
		assert.True(t, cfg.Notification.EmailEnabled())
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		t.Setenv("HOMECHEF_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("HOMECHEF_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("rejects an invalid port", func(t *testing.T) {
		t.Setenv("HOMECHEF_APP_PORT", "70000")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "app.port")
	})

	t.Run("rejects a redeem ratio above one", func(t *testing.T) {
		t.Setenv("HOMECHEF_LOYALTY_MAX_REDEEM_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max redeem ratio")
	})

	t.Run("rejects a negative fee", func(t *testing.T) {
		t.Setenv("HOMECHEF_ORDERING_DELIVERY_FEE_BASE", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ordering.delivery_fee_base")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func(t *testing.T) {
		t.Setenv("HOMECHEF_APP_ENV", "production")
		t.Setenv("HOMECHEF_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		t.Setenv("HOMECHEF_DATABASE_PASSWORD", "secure-password")
		t.Setenv("HOMECHEF_DATABASE_SSLMODE", "require")
	}

	t.Run("requires a long jwt.secret in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("HOMECHEF_JWT_SECRET", "short-secret")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret must be at least 32 characters")
	})

	t.Run("requires database.password in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("HOMECHEF_DATABASE_PASSWORD", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("HOMECHEF_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		setValidProductionBase(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.App.IsProduction())
	})
}

func TestLoyaltyConfig_Program(t *testing.T) {
	valid := LoyaltyConfig{
		PointsPerUnit:         "10",
		PointsPerUnitRedeemed: 100,
		MaxRedeemRatio:        "0.5",
		Tiers: []TierConfig{
			{Tier: "bronze", Threshold: 0, Multiplier: "1"},
			{Tier: "silver", Threshold: 500, Multiplier: "1.25"},
		},
	}

	t.Run("builds the program", func(t *testing.T) {
		program, err := valid.Program()
		require.NoError(t, err)
		require.Len(t, program.Tiers, 2)
		assert.Equal(t, loyalty.TierSilver, program.Tiers[1].Tier)
		assert.Equal(t, "1.25", program.Tiers[1].Multiplier.String())
	})

	t.Run("rejects non-ascending thresholds", func(t *testing.T) {
		cfg := valid
		cfg.Tiers = []TierConfig{
			{Tier: "bronze", Threshold: 0, Multiplier: "1"},
			{Tier: "silver", Threshold: 500, Multiplier: "1.25"},
			{Tier: "gold", Threshold: 400, Multiplier: "1.5"},
		}
		_, err := cfg.Program()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ascending")
	})

	t.Run("rejects a bad multiplier", func(t *testing.T) {
		cfg := valid
		cfg.Tiers = []TierConfig{{Tier: "bronze", Threshold: 0, Multiplier: "x"}}
		_, err := cfg.Program()
		require.Error(t, err)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost:5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "/testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})
}
