// Package config loads gophchat runtime settings. Sources are applied in
// order, later ones winning: built-in defaults, a JSON file named by -c or
// -config, then command-line flags.
package config

import (
	"github.com/dmitrijs2005/gophchat/internal/cryptox"
	"github.com/dmitrijs2005/gophchat/internal/filex"
	"github.com/dmitrijs2005/gophchat/internal/objectstore"
)

// Config holds runtime settings for the gophchat CLI.
//
// Fields:
//   - DatabasePath: SQLite file holding all collections and the session.
//   - LogLevel: debug, info, warn or error.
//   - MaxFileSize: attachment ceiling in bytes.
//   - PasswordScheme: credential verifier, "plain" or "argon2".
//   - S3: bucket used by the "export s3" and "import s3" commands.
type Config struct {
	DatabasePath   string
	LogLevel       string
	MaxFileSize    int64
	PasswordScheme string
	S3             objectstore.Config
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "gophchat.db"
	c.LogLevel = "info"
	c.MaxFileSize = filex.DefaultMaxFileSize
	c.PasswordScheme = cryptox.SchemePlain
	c.S3 = objectstore.Config{Region: "us-east-1", Key: objectstore.DefaultKey}
}

// LoadConfig constructs a Config from defaults, JSON and flags. It panics
// on an unreadable config file or bad flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
