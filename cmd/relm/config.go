package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the settings shared by all commands. Values are read from
// flags, RELM_* environment variables and the config file, in that order of
// precedence.
type Config struct {
	Schema  []string
	Dialect string
	DSN     string
	Target  string
	Package string
	Workers int
	Logger  LoggerConfig
}

type LoggerConfig struct {
	Level  string
	Format string
}

// commonFlags registers the flags every command accepts.
func commonFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (default is ./relm.yaml)")
	fs.StringSlice("schema", nil, "YAML model declaration files")
	fs.String("dialect", "sqlite", "SQL dialect: sqlite, mysql or postgres")
	fs.String("dsn", "", "data source name of the database")
	fs.String("target", "models", "output directory of generated models")
	fs.String("package", "", "package name of generated models")
	fs.Int("workers", 0, "number of files generated in parallel")
	fs.String("log-level", "info", "log level")
	fs.String("log-format", "text", "log format: text or json")
}

// loadConfig reads the configuration of a command from its parsed flags.
func loadConfig(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("dialect", "sqlite")
	v.SetDefault("target", "models")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetEnvPrefix("RELM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, flag := range map[string]string{
		"schema":     "schema",
		"dialect":    "dialect",
		"dsn":        "dsn",
		"target":     "target",
		"package":    "package",
		"workers":    "workers",
		"log.level":  "log-level",
		"log.format": "log-format",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return nil, fmt.Errorf("bind flag %q: %w", flag, err)
		}
	}

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("relm")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return &Config{
		Schema:  v.GetStringSlice("schema"),
		Dialect: v.GetString("dialect"),
		DSN:     v.GetString("dsn"),
		Target:  v.GetString("target"),
		Package: v.GetString("package"),
		Workers: v.GetInt("workers"),
		Logger: LoggerConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}, nil
}
