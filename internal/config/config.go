package config

import (
	"strings"
	"time"

	"github.com/cashora/backend/internal/models"
	"github.com/spf13/viper"
)

// AppConfig is the resolved process configuration.
type AppConfig struct {
	Port            string
	AdminEmail      string
	AdminPassword   string
	DemoPassword    string
	UploadsDir      string
	MailFrom        string
	SettingsBackend string
	ChatBackend     string
	KafkaBrokers    []string
	KafkaTopic      string
	Settings        models.SystemSettings
	Support         *SupportConfig
}

var envBindings = map[string]string{
	"server.port":                      "PORT",
	"jwt.secret_key":                   "JWT_SECRET_KEY",
	"jwt.expiry_hours":                 "JWT_EXPIRY_HOURS",
	"argon2.time":                      "ARGON2_TIME",
	"argon2.memory":                    "ARGON2_MEMORY",
	"argon2.threads":                   "ARGON2_THREADS",
	"argon2.key_length":                "ARGON2_KEY_LENGTH",
	"argon2.salt_length":               "ARGON2_SALT_LENGTH",
	"admin.email":                      "ADMIN_EMAIL",
	"admin.password":                   "ADMIN_PASSWORD",
	"seed.demo_password":               "SEED_DEMO_PASSWORD",
	"uploads.dir":                      "UPLOADS_DIR",
	"mail.from":                        "MAIL_FROM",
	"storage.settings_backend":         "SETTINGS_BACKEND",
	"chat.backend":                     "CHAT_BACKEND",
	"kafka.brokers":                    "KAFKA_BROKERS",
	"kafka.topic":                      "KAFKA_TOPIC",
	"settings.withdrawal_min_limit":    "SETTINGS_WITHDRAWAL_MIN",
	"settings.withdrawal_max_limit":    "SETTINGS_WITHDRAWAL_MAX",
	"settings.send_min_limit":          "SETTINGS_SEND_MIN",
	"settings.send_max_limit":          "SETTINGS_SEND_MAX",
	"settings.default_transaction_fee": "SETTINGS_DEFAULT_FEE",
	"settings.is_percentage_fee":       "SETTINGS_PERCENTAGE_FEE",
	"database.host":                    "DATABASE_HOST",
	"database.port":                    "DATABASE_PORT",
	"database.user":                    "DATABASE_USER",
	"database.password":                "DATABASE_PASSWORD",
	"database.name":                    "DATABASE_NAME",
	"database.ssl_mode":                "DATABASE_SSL_MODE",
	"redis.host":                       "REDIS_HOST",
	"redis.port":                       "REDIS_PORT",
	"redis.password":                   "REDIS_PASSWORD",
	"redis.db":                         "REDIS_DB",
	"support.reply_delay":              "SUPPORT_REPLY_DELAY",
	"support.max_message_len":          "SUPPORT_MAX_MESSAGE_LEN",
	"support.history_ttl":              "SUPPORT_HISTORY_TTL",
	"support.max_history":              "SUPPORT_MAX_HISTORY",
}

// BindEnv wires every known key to its environment variable and reads the
// optional .env file.
func BindEnv() error {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			return err
		}
	}

	return viper.ReadInConfig()
}

func setDefaults() {
	defaults := models.DefaultSystemSettings()

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("jwt.secret_key", "change-me")
	viper.SetDefault("jwt.expiry_hours", 24)
	viper.SetDefault("argon2.time", 1)
	viper.SetDefault("argon2.memory", 64*1024)
	viper.SetDefault("argon2.threads", 4)
	viper.SetDefault("argon2.key_length", 32)
	viper.SetDefault("argon2.salt_length", 16)
	viper.SetDefault("admin.email", "admin@cashora.com")
	viper.SetDefault("admin.password", "admin12345")
	viper.SetDefault("seed.demo_password", "password123")
	viper.SetDefault("uploads.dir", "./uploads")
	viper.SetDefault("mail.from", "no-reply@cashora.com")
	viper.SetDefault("storage.settings_backend", "memory")
	viper.SetDefault("chat.backend", "memory")
	viper.SetDefault("kafka.brokers", "")
	viper.SetDefault("kafka.topic", "cashora.status-events")
	viper.SetDefault("settings.withdrawal_min_limit", defaults.WithdrawalMinLimit)
	viper.SetDefault("settings.withdrawal_max_limit", defaults.WithdrawalMaxLimit)
	viper.SetDefault("settings.send_min_limit", defaults.SendMinLimit)
	viper.SetDefault("settings.send_max_limit", defaults.SendMaxLimit)
	viper.SetDefault("settings.default_transaction_fee", defaults.DefaultTransactionFee)
	viper.SetDefault("settings.is_percentage_fee", defaults.IsPercentageFee)
}

// Load resolves AppConfig from viper. BindEnv should run first.
func Load() *AppConfig {
	setDefaults()

	var brokers []string
	for _, b := range strings.Split(viper.GetString("kafka.brokers"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}

	return &AppConfig{
		Port:            getEnv("PORT", viper.GetString("server.port")),
		AdminEmail:      viper.GetString("admin.email"),
		AdminPassword:   viper.GetString("admin.password"),
		DemoPassword:    viper.GetString("seed.demo_password"),
		UploadsDir:      viper.GetString("uploads.dir"),
		MailFrom:        viper.GetString("mail.from"),
		SettingsBackend: viper.GetString("storage.settings_backend"),
		ChatBackend:     viper.GetString("chat.backend"),
		KafkaBrokers:    brokers,
		KafkaTopic:      viper.GetString("kafka.topic"),
		Settings: models.SystemSettings{
			WithdrawalMinLimit:    viper.GetFloat64("settings.withdrawal_min_limit"),
			WithdrawalMaxLimit:    viper.GetFloat64("settings.withdrawal_max_limit"),
			SendMinLimit:          viper.GetFloat64("settings.send_min_limit"),
			SendMaxLimit:          viper.GetFloat64("settings.send_max_limit"),
			DefaultTransactionFee: viper.GetFloat64("settings.default_transaction_fee"),
			IsPercentageFee:       viper.GetBool("settings.is_percentage_fee"),
		},
		Support: LoadSupportConfig(),
	}
}

// JWTExpiry is the configured token lifetime.
func JWTExpiry() time.Duration {
	return time.Duration(viper.GetInt("jwt.expiry_hours")) * time.Hour
}
