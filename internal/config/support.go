package config

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

// SupportConfig tunes the support chat.
type SupportConfig struct {
	ReplyDelay     time.Duration
	MaxMessageLen  int
	HistoryTTL     time.Duration
	MaxHistorySize int
}

// LoadSupportConfig reads the support.* keys.
func LoadSupportConfig() *SupportConfig {
	viper.SetDefault("support.reply_delay", time.Second)
	viper.SetDefault("support.max_message_len", 1000)
	viper.SetDefault("support.history_ttl", 24*time.Hour)
	viper.SetDefault("support.max_history", 200)

	return &SupportConfig{
		ReplyDelay:     viper.GetDuration("support.reply_delay"),
		MaxMessageLen:  viper.GetInt("support.max_message_len"),
		HistoryTTL:     viper.GetDuration("support.history_ttl"),
		MaxHistorySize: viper.GetInt("support.max_history"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
