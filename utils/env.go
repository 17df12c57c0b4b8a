package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

var (
	loadOnce sync.Once
	loaded   string
	loadErr  error
)

// LoadEnv loads environment variables from the nearest .env file, looking in
// the working directory and up to two parents. Existing variables are not
// overwritten. It returns the file it loaded, or "" when there is none.
func LoadEnv() (string, error) {
	loadOnce.Do(func() {
		cwd, err := os.Getwd()
		if err != nil {
			return
		}
		path := findEnvFile(cwd, 3)
		if path == "" {
			return
		}
		loadErr = loadEnvFile(path)
		if loadErr == nil {
			loaded = path
		}
	})
	return loaded, loadErr
}

func findEnvFile(dir string, levels int) string {
	for i := 0; i < levels; i++ {
		path := filepath.Join(dir, ".env")
		if st, err := os.Stat(path); err == nil && !st.IsDir() {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// loadEnvFile parses path as a dotenv file. Keys come back lower-cased from
// the parser and are exported upper-cased.
func loadEnvFile(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	for _, key := range v.AllKeys() {
		name := strings.ToUpper(key)
		if _, exists := os.LookupEnv(name); exists {
			continue
		}
		if err := os.Setenv(name, v.GetString(key)); err != nil {
			return fmt.Errorf("set %s: %w", name, err)
		}
	}
	return nil
}
