package config

import "flag"

var (
	flagConfig          = flag.String("config", "", "Path to config file")
	flagDebug           = flag.Bool("debug", false, "Enable debug logging")
	flagProject         = flag.String("project", "", "Project manifest to load at startup")
	flagMaxTextureSize  = flag.Int("max-texture-size", 0, "Atlas resolution ceiling")
	flagRequireRevision = flag.Bool("require-revision", false, "Require ifRevision on every mutation")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagProject != "" {
		cfg.Project.Path = *flagProject
	}
	if *flagMaxTextureSize > 0 {
		cfg.Atlas.MaxTextureSize = *flagMaxTextureSize
	}
	if *flagRequireRevision {
		cfg.Revision.Required = true
	}
}
