package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_TTL", "")
	t.Setenv("BCRYPT_COST", "")
	t.Setenv("STORAGE_DRIVER", "")

	cfg := Load()

	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "uploads", cfg.UploadDir)
	assert.Equal(t, int64(5<<20), cfg.UploadMaxBytes)
	assert.False(t, cfg.UsesMemoryStore())
}

func TestLoadFallsBackOnInvalidValues(t *testing.T) {
	t.Setenv("JWT_TTL", "a day")
	t.Setenv("BCRYPT_COST", "ten")
	t.Setenv("MAIL_SEND_ENABLED", "maybe")

	cfg := Load()

	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.False(t, cfg.MailSendEnabled)
}

func TestStorageDriverIsCaseInsensitive(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "Memory")
	assert.True(t, Load().UsesMemoryStore())
}

func TestListsAreTrimmed(t *testing.T) {
	cfg := &Config{
		CORSAllowedOrigins: " http://a.test , ,http://b.test",
		ElasticsearchAddrs: "",
	}
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins())
	assert.Empty(t, cfg.ESAddrs())
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "5432", DBName: "d", DBSSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", cfg.PostgresDSN())
}
