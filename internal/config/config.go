package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port           string
	FrontendURL    string
	AllowedOrigins []string
	Database       DatabaseConfig
	Auth           AuthConfig
	Invite         InviteConfig
	Mail           MailConfig
	Log            LogConfig
}

type DatabaseConfig struct {
	Driver string
	URL    string
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type InviteConfig struct {
	ExpiryHours int
}

type MailConfig struct {
	Provider           string // "log", "resend" or "ses"
	From               string
	ResendAPIKey       string
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	Workers            int
	QueueSize          int
}

type LogConfig struct {
	Level  string
	Format string
	File   string
}

// Conventional variable names accepted in addition to the derived ones.
var envAliases = map[string][]string{
	"auth.jwt_secret":            {"AUTH_JWT_SECRET", "JWT_SECRET"},
	"mail.resend_api_key":        {"MAIL_RESEND_API_KEY", "RESEND_API_KEY"},
	"mail.aws_region":            {"MAIL_AWS_REGION", "AWS_REGION"},
	"mail.aws_access_key_id":     {"MAIL_AWS_ACCESS_KEY_ID", "AWS_ACCESS_KEY_ID"},
	"mail.aws_secret_access_key": {"MAIL_AWS_SECRET_ACCESS_KEY", "AWS_SECRET_ACCESS_KEY"},
}

// Default allowed origins for development
var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

// Load reads .env (if present), an optional YAML file at path and the
// environment. Environment variables use the upper-cased key with dots
// replaced by underscores, e.g. database.url -> DATABASE_URL.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range envAliases {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := Config{
		Port:           v.GetString("port"),
		FrontendURL:    strings.TrimSuffix(v.GetString("frontend_url"), "/"),
		AllowedOrigins: allowedOrigins(v.GetString("client_url"), v.GetString("allowed_origins")),
		Database: DatabaseConfig{
			Driver: strings.ToLower(v.GetString("database.driver")),
			URL:    v.GetString("database.url"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("auth.jwt_secret"),
			TokenTTL:  v.GetDuration("auth.token_ttl"),
		},
		Invite: InviteConfig{
			ExpiryHours: v.GetInt("invite.expiry_hours"),
		},
		Mail: MailConfig{
			Provider:           strings.ToLower(v.GetString("mail.provider")),
			From:               v.GetString("mail.from"),
			ResendAPIKey:       v.GetString("mail.resend_api_key"),
			AWSRegion:          v.GetString("mail.aws_region"),
			AWSAccessKeyID:     v.GetString("mail.aws_access_key_id"),
			AWSSecretAccessKey: v.GetString("mail.aws_secret_access_key"),
			Workers:            v.GetInt("mail.workers"),
			QueueSize:          v.GetInt("mail.queue_size"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			File:   v.GetString("log.file"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "3000")
	v.SetDefault("frontend_url", "http://localhost:5173")
	v.SetDefault("client_url", "")
	v.SetDefault("allowed_origins", "")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.url", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("invite.expiry_hours", 24)
	v.SetDefault("mail.provider", "log")
	v.SetDefault("mail.from", "Tracker <no-reply@tracker.local>")
	v.SetDefault("mail.resend_api_key", "")
	v.SetDefault("mail.aws_region", "eu-central-1")
	v.SetDefault("mail.aws_access_key_id", "")
	v.SetDefault("mail.aws_secret_access_key", "")
	v.SetDefault("mail.workers", 2)
	v.SetDefault("mail.queue_size", 100)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
}

func (c Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET (auth.jwt_secret) is not set")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.token_ttl must be positive")
	}
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL (database.url) is not set")
	}
	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.Mail.Provider {
	case "log":
	case "resend":
		if c.Mail.ResendAPIKey == "" {
			return errors.New("mail.resend_api_key is required for the resend provider")
		}
	case "ses":
		if c.Mail.AWSAccessKeyID == "" || c.Mail.AWSSecretAccessKey == "" {
			return errors.New("aws credentials are required for the ses provider")
		}
	default:
		return fmt.Errorf("unsupported mail provider %q", c.Mail.Provider)
	}
	if c.Invite.ExpiryHours <= 0 {
		return errors.New("invite.expiry_hours must be positive")
	}
	return nil
}

func allowedOrigins(clientURL, extra string) []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL != "" {
		origins = append(origins, clientURL)
	}

	for _, origin := range strings.Split(extra, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}

	return origins
}
