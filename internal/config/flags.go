package config

// Flags holds the command-line overrides shared by every command. The CLI
// binds them to persistent flags.
type Flags struct {
	ConfigPath string
	Debug      bool
	LogFile    string
	Addr       string
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config, f Flags) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
	if f.Addr != "" {
		cfg.Server.Addr = f.Addr
	}
}
