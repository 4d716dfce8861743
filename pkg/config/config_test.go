package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV(t *testing.T) {
	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a:9092", "b:9092"}, CSV(" a:9092, ,b:9092 "))
}

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	t.Setenv("SESSION_SECRET", "0123456789abcdef")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg := Load("testdata/does-not-exist.env")

	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "sqlite://instance/coffee_shop.db", cfg.DatabaseURL)
	assert.Equal(t, "static/images", cfg.UploadDir)
	assert.Equal(t, "products", cfg.ESIndex)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	cfg := fromViper(v)

	assert.Error(t, cfg.Validate(), "empty session secret")

	cfg.SessionSecret = []byte("0123456789abcdef")
	assert.NoError(t, cfg.Validate())

	cfg.AdminUsername = "admin"
	assert.Error(t, cfg.Validate(), "admin without password")

	cfg.AdminPassword = "secret"
	assert.NoError(t, cfg.Validate())
}
