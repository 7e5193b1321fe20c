package config

const (
	defaultLibraryDir            = "~/.local/share/carddex"
	defaultLogDir                = "~/.local/share/carddex/logs"
	defaultImageCacheDir         = "~/.cache/carddex/images"
	defaultVisionBaseURL         = "https://api.cardrecognition.dev/v1"
	defaultVisionTimeoutSeconds  = 30
	defaultStorageBaseURL        = "https://storage.carddex.dev"
	defaultStorageBucket         = "card-images"
	defaultStorageTimeoutSeconds = 60
	defaultGradingBaseURL        = "https://api.cardgrading.dev/v1"
	defaultGradingTimeoutSeconds = 45
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir:    defaultLibraryDir,
			LogDir:        defaultLogDir,
			ImageCacheDir: defaultImageCacheDir,
		},
		Vision: Vision{
			BaseURL:        defaultVisionBaseURL,
			TimeoutSeconds: defaultVisionTimeoutSeconds,
		},
		Storage: Storage{
			BaseURL:        defaultStorageBaseURL,
			Bucket:         defaultStorageBucket,
			TimeoutSeconds: defaultStorageTimeoutSeconds,
		},
		Grading: Grading{
			Enabled:        false,
			BaseURL:        defaultGradingBaseURL,
			TimeoutSeconds: defaultGradingTimeoutSeconds,
		},
		Capture: Capture{
			ShowTutorial: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
