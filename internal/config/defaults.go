package config

const (
	defaultDataDir         = "~/.local/share/tally"
	defaultLogDir          = "~/.local/share/tally/logs"
	defaultDepotURL        = "http://localhost:5048/api"
	defaultDepotTimeout    = 15
	defaultDecoderBinary   = "zbarcam"
	defaultDebounceSeconds = 3
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Depot: Depot{
			URL:            defaultDepotURL,
			TimeoutSeconds: defaultDepotTimeout,
		},
		Station: Station{
			DecoderBinary:   defaultDecoderBinary,
			DebounceSeconds: defaultDebounceSeconds,
			Hotplug:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
