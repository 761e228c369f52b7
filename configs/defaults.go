package configs

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets default configuration values for all components
func setDefaults(v *viper.Viper) {
	// Gateway defaults
	v.SetDefault("gateway.addr", "127.0.0.1:8474")
	v.SetDefault("gateway.request_timeout", 30*time.Second)

	// Fetch defaults
	v.SetDefault("fetch.timeout", 30*time.Second)
	v.SetDefault("fetch.user_agent", "vidloader/1.0")
	v.SetDefault("fetch.headers", map[string]string{})

	// Key store defaults
	home, _ := os.UserHomeDir()
	v.SetDefault("keys.database_path",
		filepath.Join(home, ".local", "share", "vidloader", "keys.db"))

	// Host defaults: older hosts expect the standard "wait" signal
	v.SetDefault("host.requires_resolved_signal", false)
}

// ApplyDefaults applies defaults to the global viper instance
func ApplyDefaults() {
	setDefaults(viper.GetViper())
}
