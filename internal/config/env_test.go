package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("CACHE_TTL", "")

	env := LoadEnv()

	assert.Equal(t, EnvDevelopment, env.AppEnv)
	assert.Equal(t, ":8080", env.AppAddr)
	assert.Equal(t, 5*time.Minute, env.Cache.TTL)
	assert.Equal(t, "admin_session", env.Session.CookieName)
	assert.Equal(t, 60, env.RateLimit.Public.Limit)
	require.NoError(t, env.Validate())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("RATE_LIMIT_LOGIN", "3")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("STRIPE_CURRENCY", "EUR")

	env := LoadEnv()

	assert.Equal(t, 90*time.Second, env.Cache.TTL)
	assert.Equal(t, 3, env.RateLimit.Login.Limit)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, env.CORSOrigins)
	assert.Equal(t, "eur", env.Stripe.Currency)
}

func TestValidateProductionRequiresSecrets(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("STRIPE_SECRET_KEY", "")

	env := LoadEnv()
	require.Error(t, env.Validate())

	env.Session.Secret = "0123456789abcdef0123456789abcdef"
	env.Session.CookieSecure = true
	env.Stripe.SecretKey = "sk_test_x"
	env.Stripe.WebhookSecret = "whsec_x"
	require.NoError(t, env.Validate())
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	env := LoadEnv()
	env.Log.Level = "loud"
	assert.Error(t, env.Validate())
}

func TestMySQLDSN(t *testing.T) {
	c := DBConfig{User: "u", Password: "p", Host: "db", Port: "3307", Name: "travel"}
	assert.Contains(t, c.MySQLDSN(), "u:p@tcp(db:3307)/travel?parseTime=true")

	c.DSN = "custom"
	assert.Equal(t, "custom", c.MySQLDSN())
}
