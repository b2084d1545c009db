// Package config resolves the runtime's configuration by layering
// built-in defaults, an optional config file, environment variables,
// and command-line flags — lowest to highest precedence — the way
// spf13/viper and spf13/pflag are meant to be paired. Flag/config-key
// resolution lives here, independent of urfave/cli's own flag
// definitions in cmd/actorrtd, mirroring the split the webitel example
// makes between its cmd package (command routing, usage text) and its
// own config package (config.LoadConfig()).
package config

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is everything internal/runtime.Config plus logging.Options
// needs to start the daemon.
type Config struct {
	Node    uint8
	Threads int
	Profile bool
	Daemon  bool
	CPath   string
	LogDir  string

	LogService    string
	LogServiceArg string
	Bootstrap     string
	BootstrapArg  string

	LogFile   string
	LogLevel  string
	LogFormat string
}

func defaults() Config {
	return Config{
		Node:       1,
		Threads:    8,
		CPath:      "./services/?.so",
		LogService: "logsvc",
		Bootstrap:  "bootstrap",
		LogLevel:   "info",
		LogFormat:  "text",
	}
}

// Load parses args (normally os.Args[1:]) against the flag set below,
// merges in a config file named by --config/ACTORRT_CONFIG if one is
// given, and returns the resolved Config. Precedence, highest first:
// explicit flags, environment variables prefixed ACTORRT_, the config
// file, then the built-in defaults.
func Load(args []string) (Config, error) {
	def := defaults()

	fs := pflag.NewFlagSet("actorrtd", pflag.ContinueOnError)
	fs.Uint8("node", def.Node, "harbor node id, the high byte of every handle")
	fs.Int("thread", def.Threads, "worker goroutine count")
	fs.Bool("profile", false, "enable per-message CPU cost accounting by default")
	fs.Bool("daemon", false, "daemon mode flag, stored in Config.Daemon; the process does not detach or write a pid file")
	fs.String("cpath", def.CPath, "module search path, ? substituted with the module name")
	fs.String("log-dir", "", "directory for LOGON-opened per-service log files")
	fs.String("logservice", def.LogService, "module name of the logger service")
	fs.String("logservice-arg", "", "argument string passed to the logger service")
	fs.String("bootstrap", def.Bootstrap, "module name launched after the logger")
	fs.String("bootstrap-arg", "", "argument string passed to the bootstrap service")
	fs.String("log", "", "process log file path, empty for stderr")
	fs.String("log-level", def.LogLevel, "debug, info, warning, error, fatal")
	fs.String("log-format", def.LogFormat, "text or json")
	fs.String("config", "", "path to a YAML/TOML/JSON config file")

	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("config: parsing flags: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("actorrt")
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, fmt.Errorf("config: binding flags: %w", err)
	}

	if configFile := v.GetString("config"); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: reading %s: %w", configFile, err)
		}
	}

	return Config{
		Node:          uint8(v.GetInt("node")),
		Threads:       v.GetInt("thread"),
		Profile:       v.GetBool("profile"),
		Daemon:        v.GetBool("daemon"),
		CPath:         v.GetString("cpath"),
		LogDir:        v.GetString("log-dir"),
		LogService:    v.GetString("logservice"),
		LogServiceArg: v.GetString("logservice-arg"),
		Bootstrap:     v.GetString("bootstrap"),
		BootstrapArg:  v.GetString("bootstrap-arg"),
		LogFile:       v.GetString("log"),
		LogLevel:      v.GetString("log-level"),
		LogFormat:     v.GetString("log-format"),
	}, nil
}
