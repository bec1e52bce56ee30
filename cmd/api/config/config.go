package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	DataDir      string
	ImageDirs    []string
	DownloadsDir string
	SettingsPath string
	ComputeURL   string
	ComputeToken string
	JwtSecret    string
}

// Load loads configuration from environment variables
// Automatically loads .env file if present
func Load() *Config {
	// Try to load .env file (fail silently if not present)
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", "/var/lib/applianced")

	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		DataDir:      dataDir,
		ImageDirs:    splitPaths(getEnv("IMAGE_DIRS", "")),
		DownloadsDir: getEnv("DOWNLOADS_DIR", ""),
		SettingsPath: getEnv("SETTINGS_PATH", filepath.Join(dataDir, "templates.json")),
		ComputeURL:   getEnv("COMPUTE_URL", "http://127.0.0.1:3080"),
		ComputeToken: getEnv("COMPUTE_TOKEN", ""),
		JwtSecret:    getEnv("JWT_SECRET", ""),
	}

	return cfg
}

// SearchDirs returns the directories the registry scans for image files:
// the managed store plus any extra configured locations.
func (c *Config) SearchDirs(storeDir string) []string {
	dirs := []string{storeDir}
	dirs = append(dirs, c.ImageDirs...)
	if c.DownloadsDir != "" {
		dirs = append(dirs, c.DownloadsDir)
	}
	return dirs
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitPaths(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, string(os.PathListSeparator)) {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
