package config

// Config holds the application configuration.
type Config struct {
	Logger  Logger  `yaml:"logger"`
	Tagging Tagging `yaml:"tagging"`
	Artwork Artwork `yaml:"artwork"`
	Watch   Watch   `yaml:"watch"`
	Server  Server  `yaml:"server"`
	Journal Journal `yaml:"journal"`
}

// Logger holds the configuration for the app logging
type Logger struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format  string `yaml:"format" validate:"omitempty,oneof=text json logfmt"`
}

// Tagging holds the ID3 settings used when files are saved.
type Tagging struct {
	Version int     `yaml:"version" validate:"oneof=3 4"`
	Rewrite Rewrite `yaml:"rewrite"`
}

// Rewrite configures the frame rewrite (re-decode) operation.
type Rewrite struct {
	Frame         string `yaml:"frame" validate:"len=4,alphanum,uppercase"`
	Charset       string `yaml:"charset" validate:"required"`
	Transliterate bool   `yaml:"transliterate"`
}

// Artwork holds configuration for embedded cover art
type Artwork struct {
	Size    int `yaml:"size" validate:"gte=0"`
	Quality int `yaml:"quality" validate:"gte=0,lte=100"`
}

// Watch holds configuration for the drop directory watcher
type Watch struct {
	Enabled      bool   `yaml:"enabled"`
	Path         string `yaml:"path" validate:"required_if=Enabled true"`
	DebounceSecs int    `yaml:"debounce_secs" validate:"gte=0"`
}

// Server hold the configuration for the Fiber server Config
type Server struct {
	PrintRoutes bool   `yaml:"show_routes"`
	Port        uint32 `yaml:"port"`
	// Root confines the paths API requests may name. Empty allows any path.
	Root string `yaml:"root"`
}

// Journal holds the configuration for the change journal database
type Journal struct {
	Path string `yaml:"path" validate:"required"`
}
