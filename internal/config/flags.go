package config

import "flag"

var (
	flagConfig       = flag.String("config", "", "Path to config file")
	flagDebug        = flag.Bool("debug", false, "Enable debug logging")
	flagSourceDir    = flag.String("source-dir", "", "Directory where the Moana Island Scene dataset is located")
	flagDestDir      = flag.String("dest-dir", "", "Output directory where the USD data will be written")
	flagFormat       = flag.String("format", "", "File format to output data to")
	flagLoadTextures = flag.Bool("load-textures", false, "Create USD assets with Ptex textures")
	flagKeepSmall    = flag.Bool("keep-small-instances", false, "Instantiate small (or numerous) instances as well")
	flagWorkers      = flag.Int("workers", 0, "Number of concurrent conversion workers")
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
	if *flagSourceDir != "" {
		cfg.Source.Dir = *flagSourceDir
	}
	if *flagDestDir != "" {
		cfg.Dest.Dir = *flagDestDir
	}
	if *flagFormat != "" {
		cfg.Dest.Format = *flagFormat
	}
	if *flagLoadTextures {
		cfg.Convert.LoadTextures = true
	}
	if *flagKeepSmall {
		cfg.Convert.SkipSubInstances = nil
	}
	if *flagWorkers > 0 {
		cfg.Convert.Workers = *flagWorkers
	}
}
