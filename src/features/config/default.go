package config

// createDefaultConfig creates a new Config with sensible default values
func createDefaultConfig() *Config {
	return &Config{
		Logger: Logger{
			Enabled: true,
			Level:   "info",
			Format:  "text",
		},
		Tagging: Tagging{
			Version: 4,
			Rewrite: Rewrite{
				Frame:         "TIT2",
				Charset:       "utf-8",
				Transliterate: false,
			},
		},
		Artwork: Artwork{
			Size:    1000,
			Quality: 85,
		},
		Watch: Watch{
			Enabled:      false,
			Path:         "./inbox",
			DebounceSecs: 5,
		},
		Server: Server{
			PrintRoutes: false,
			Port:        3535,
			Root:        "",
		},
		Journal: Journal{
			Path: "./journal.db",
		},
	}
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return createDefaultConfig()
}
