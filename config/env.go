package config

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultPort is bound when PORT is unset or empty.
const DefaultPort = "8080"

const (
	defaultAppEnv  = "local"
	defaultAppName = "ignite"
)

// envFiles are loaded in order. godotenv never overrides a variable that is
// already set, so the process environment beats .env.local, which beats .env.
var envFiles = []string{".env.local", ".env"}

var (
	loadOnce sync.Once
	loadErr  error
)

// Load reads .env files into the process environment and binds viper to it.
// Safe to call many times; only the first call does any work. Viper is set
// up even when a file fails to parse, so defaults stay in effect.
func Load() error {
	loadOnce.Do(func() {
		viper.SetDefault("APP_ENV", defaultAppEnv)
		viper.SetDefault("APP_NAME", defaultAppName)
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
		viper.AutomaticEnv()

		loadErr = loadEnvFiles(envFiles...)
	})
	return loadErr
}

// loadEnvFiles loads every existing file, returning the first parse error.
// Missing files are skipped.
func loadEnvFiles(files ...string) error {
	var first error
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) && first == nil {
			first = fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return first
}

// LookupFunc has the shape of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ResolvePort returns the PORT value exactly as lookup reports it, or
// DefaultPort when it is missing or empty. The value is not parsed.
func ResolvePort(lookup LookupFunc) string {
	if lookup == nil {
		return DefaultPort
	}
	if port, ok := lookup("PORT"); ok && port != "" {
		return port
	}
	return DefaultPort
}

// Port resolves the bind port from the process environment.
func Port() string {
	_ = Load()
	return ResolvePort(os.LookupEnv)
}

func AppEnv() string {
	_ = Load()
	return viper.GetString("APP_ENV")
}

func AppName() string {
	_ = Load()
	return viper.GetString("APP_NAME")
}

// Get reads any config key by name with a fallback for unset or empty values.
func Get(key, fallback string) string {
	_ = Load()
	if v := strings.TrimSpace(viper.GetString(key)); v != "" {
		return v
	}
	return fallback
}
