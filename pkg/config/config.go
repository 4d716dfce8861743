package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	ServiceName string
	LogLevel    string
	LogFile     string

	ServerPort int

	DatabaseURL    string
	DatabaseDriver string

	SessionSecret []byte
	SessionTTL    time.Duration
	CookieSecure  bool

	StaticDir string
	UploadDir string

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_NAME", "coffee_shop")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("DATABASE_URL", "sqlite://instance/coffee_shop.db")
	v.SetDefault("DB_DRIVER", "pgx")
	v.SetDefault("SESSION_TTL", time.Hour)
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("STATIC_DIR", "static")
	v.SetDefault("UPLOAD_DIR", "static/images")
	v.SetDefault("ES_INDEX", "products")
}

// Load reads an optional .env file and resolves settings from the environment.
func Load(envFiles ...string) Config {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	if err := godotenv.Load(envFiles...); err != nil {
		log.Printf("notice: .env not loaded: %v, using system environment", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) Config {
	return Config{
		ServiceName: v.GetString("SERVICE_NAME"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		LogFile:     v.GetString("LOG_FILE"),

		ServerPort: v.GetInt("SERVER_PORT"),

		DatabaseURL:    v.GetString("DATABASE_URL"),
		DatabaseDriver: v.GetString("DB_DRIVER"),

		SessionSecret: []byte(v.GetString("SESSION_SECRET")),
		SessionTTL:    v.GetDuration("SESSION_TTL"),
		CookieSecure:  v.GetBool("COOKIE_SECURE"),

		StaticDir: v.GetString("STATIC_DIR"),
		UploadDir: v.GetString("UPLOAD_DIR"),

		KafkaBrokers: CSV(v.GetString("KAFKA_BROKERS")),

		ESURL:      v.GetString("ES_URL"),
		ESUser:     v.GetString("ES_USER"),
		ESPassword: v.GetString("ES_PASSWORD"),
		ESIndex:    v.GetString("ES_INDEX"),

		AdminUsername: v.GetString("ADMIN_USERNAME"),
		AdminEmail:    v.GetString("ADMIN_EMAIL"),
		AdminPassword: v.GetString("ADMIN_PASSWORD"),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
