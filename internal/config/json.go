package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophchat/internal/flagx"
	"github.com/dmitrijs2005/gophchat/internal/objectstore"
)

// JsonConfig is the on-disk shape of the config file. Zero values leave the
// corresponding setting alone.
type JsonConfig struct {
	DatabasePath   string              `json:"database_path"`
	LogLevel       string              `json:"log_level"`
	MaxFileSizeMiB int64               `json:"max_file_size_mib"`
	PasswordScheme string              `json:"password_scheme"`
	S3             *objectstore.Config `json:"s3"`
}

// parseJson overlays cfg with the file given by -c/-config, if any.
// Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	path := flagx.ConfigPath(os.Args[1:])
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	if jc.MaxFileSizeMiB > 0 {
		cfg.MaxFileSize = jc.MaxFileSizeMiB << 20
	}
	if jc.PasswordScheme != "" {
		cfg.PasswordScheme = jc.PasswordScheme
	}
	if jc.S3 != nil {
		mergeS3(&cfg.S3, *jc.S3)
	}
}

func mergeS3(dst *objectstore.Config, src objectstore.Config) {
	set := func(d *string, s string) {
		if s != "" {
			*d = s
		}
	}
	set(&dst.Endpoint, src.Endpoint)
	set(&dst.Region, src.Region)
	set(&dst.Bucket, src.Bucket)
	set(&dst.AccessKey, src.AccessKey)
	set(&dst.SecretKey, src.SecretKey)
	set(&dst.Key, src.Key)
	if src.Timeout.Duration > 0 {
		dst.Timeout = src.Timeout
	}
}
