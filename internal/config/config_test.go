package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func setEnv(t *testing.T, values map[string]string) {
	t.Helper()
	for _, key := range []string{"PORT", "DB_DRIVER", "DATABASE_URL", "MONGO_URI", "MONGO_DATABASE", "JWT_SECRET", "JWT_ISSUER", "JWT_TTL_MINUTES", "BCRYPT_COST", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, values[key])
	}
}

func TestLoadDefaults(t *testing.T) {
	setEnv(t, map[string]string{"DATABASE_URL": "postgres://localhost/kalafo", "JWT_SECRET": "s3cret"})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddress())
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "kalafo-api", cfg.JWTIssuer)
	assert.Equal(t, bcrypt.DefaultCost, cfg.BcryptCost)
	assert.Contains(t, cfg.CORSOrigins, "https://*.vercel.app")
}

func TestLoadRequiresSecret(t *testing.T) {
	setEnv(t, map[string]string{"DATABASE_URL": "postgres://localhost/kalafo"})

	_, err := Load()
	assert.EqualError(t, err, "JWT_SECRET is required")
}

func TestLoadDriverRequirements(t *testing.T) {
	setEnv(t, map[string]string{"JWT_SECRET": "s3cret"})
	_, err := Load()
	assert.EqualError(t, err, "DATABASE_URL is required")

	setEnv(t, map[string]string{"JWT_SECRET": "s3cret", "DB_DRIVER": "mongo"})
	_, err = Load()
	assert.Error(t, err)

	setEnv(t, map[string]string{"JWT_SECRET": "s3cret", "DB_DRIVER": "Mongo", "MONGO_URI": "mongodb://localhost:27017"})
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverMongo, cfg.DBDriver)
	assert.Equal(t, "kalafo", cfg.MongoDatabase)

	setEnv(t, map[string]string{"JWT_SECRET": "s3cret", "DB_DRIVER": "sqlite"})
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	setEnv(t, map[string]string{
		"DATABASE_URL":         "postgres://localhost/kalafo",
		"JWT_SECRET":           "s3cret",
		"PORT":                 "9000",
		"JWT_TTL_MINUTES":      "30",
		"BCRYPT_COST":          "12",
		"CORS_ALLOWED_ORIGINS": " https://a.example , ,https://b.example",
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.HTTPAddress())
	assert.Equal(t, 30*time.Minute, cfg.JWTTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)

	t.Setenv("BCRYPT_COST", "99")
	_, err = Load()
	assert.Error(t, err)
}
