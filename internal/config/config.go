// Package config handles converter configuration loading and management.
package config

// Config holds all converter settings.
type Config struct {
	Source  SourceConfig  `yaml:"source"`
	Dest    DestConfig    `yaml:"dest"`
	Convert ConvertConfig `yaml:"convert"`
	Logging LoggingConfig `yaml:"logging"`
}

// SourceConfig locates the Moana Island Scene dataset.
type SourceConfig struct {
	Dir string `yaml:"dir"`
}

// DestConfig controls where and how USD output is written.
type DestConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"` // output file extension, e.g. "usda"
}

// ConvertConfig holds conversion behavior settings.
type ConvertConfig struct {
	LoadTextures     bool     `yaml:"load_textures"`
	SkipSubInstances []string `yaml:"skip_sub_instances"` // sub-instance categories too numerous to instantiate
	Workers          int      `yaml:"workers"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Dir: ".",
		},
		Dest: DestConfig{
			Dir:    "./island-usd",
			Format: "usda",
		},
		Convert: ConvertConfig{
			LoadTextures: false,
			SkipSubInstances: []string{
				"xgGroundCover",
				"xgPalmDebris",
				"xgFlutes",
				"xgDebris",
			},
			Workers: 4,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
