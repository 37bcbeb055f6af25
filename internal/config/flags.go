package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/gophchat/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-d string   database file
//	-l string   log level
//	-m int      attachment ceiling in MiB
//	-p string   password scheme (plain, argon2)
//
// Only these flags are looked at, so -c/-config and anything else on the
// command line pass through untouched.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-l", "-m", "-p"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "database file")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	maxMiB := fs.Int64("m", cfg.MaxFileSize>>20, "max attachment size (in MiB)")
	fs.StringVar(&cfg.PasswordScheme, "p", cfg.PasswordScheme, "password scheme: plain or argon2")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	if *maxMiB != cfg.MaxFileSize>>20 {
		cfg.MaxFileSize = *maxMiB << 20
	}
}
