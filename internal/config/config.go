// Package config reads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	DBPath    string
	LogLevel  string
	LogFormat string

	Auth   AuthConfig
	Push   PushConfig
	Backup BackupConfig
}

type AuthConfig struct {
	Secret        string
	PublicKeyFile string
	Issuer        string
}

type PushConfig struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Subscriber      string
}

// Enabled reports whether both VAPID keys are set.
func (c PushConfig) Enabled() bool {
	return c.VAPIDPublicKey != "" && c.VAPIDPrivateKey != ""
}

type BackupConfig struct {
	Endpoint   string
	Bucket     string
	Region     string
	AccessKey  string
	SecretKey  string
	Passphrase string
	Prefix     string
}

// Load reads configuration from the environment after applying envFiles
// (".env" when none are given). Missing env files are ignored, and values
// already in the environment win over file values.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := Config{
		Port:      getenv("LARDER_PORT", "8080"),
		DBPath:    getenv("LARDER_DB_PATH", "larder.db"),
		LogLevel:  getenv("LARDER_LOG_LEVEL", "info"),
		LogFormat: getenv("LARDER_LOG_FORMAT", "text"),
		Auth: AuthConfig{
			Secret:        os.Getenv("LARDER_AUTH_SECRET"),
			PublicKeyFile: os.Getenv("LARDER_AUTH_PUBLIC_KEY_FILE"),
			Issuer:        os.Getenv("LARDER_AUTH_ISSUER"),
		},
		Push: PushConfig{
			VAPIDPublicKey:  os.Getenv("LARDER_VAPID_PUBLIC_KEY"),
			VAPIDPrivateKey: os.Getenv("LARDER_VAPID_PRIVATE_KEY"),
			Subscriber:      getenv("LARDER_VAPID_SUBSCRIBER", "mailto:admin@larder.local"),
		},
		Backup: BackupConfig{
			Endpoint:   os.Getenv("LARDER_S3_ENDPOINT"),
			Bucket:     os.Getenv("LARDER_S3_BUCKET"),
			Region:     getenv("LARDER_S3_REGION", "auto"),
			AccessKey:  os.Getenv("LARDER_S3_ACCESS_KEY"),
			SecretKey:  os.Getenv("LARDER_S3_SECRET_KEY"),
			Passphrase: os.Getenv("LARDER_BACKUP_PASSPHRASE"),
			Prefix:     getenv("LARDER_S3_PREFIX", "larder/"),
		},
	}
	return cfg, nil
}

// ValidateAuth checks that exactly one verification key source is set.
func (c Config) ValidateAuth() error {
	switch {
	case c.Auth.Secret == "" && c.Auth.PublicKeyFile == "":
		return errors.New("one of LARDER_AUTH_SECRET or LARDER_AUTH_PUBLIC_KEY_FILE is required")
	case c.Auth.Secret != "" && c.Auth.PublicKeyFile != "":
		return errors.New("set only one of LARDER_AUTH_SECRET and LARDER_AUTH_PUBLIC_KEY_FILE")
	}
	return nil
}

// ValidateBackup checks the settings needed to reach object storage.
func (c Config) ValidateBackup() error {
	var missing []string
	for name, v := range map[string]string{
		"LARDER_S3_ENDPOINT":       c.Backup.Endpoint,
		"LARDER_S3_BUCKET":         c.Backup.Bucket,
		"LARDER_S3_ACCESS_KEY":     c.Backup.AccessKey,
		"LARDER_S3_SECRET_KEY":     c.Backup.SecretKey,
		"LARDER_BACKUP_PASSPHRASE": c.Backup.Passphrase,
	} {
		if v == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("backup requires %s", strings.Join(missing, ", "))
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
