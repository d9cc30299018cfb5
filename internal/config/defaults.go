package config

const (
	defaultFFmpegBinary          = "ffmpeg"
	defaultFFprobeBinary         = "ffprobe"
	defaultWhisperBinary         = "whisper-ctranslate2"
	defaultSilenceThresholdDB    = -30.0
	defaultSilenceMinDuration    = 2.5
	defaultSilenceEndMargin      = 0.5
	defaultSnippetDuration       = 5.0
	defaultWhisperProfile        = "flexible"
	defaultWhisperComputeType    = "auto"
	defaultWhisperDevice         = "auto"
	defaultWhisperLanguage       = "en"
	defaultTestRunMinutes        = 240
	defaultStorePath             = "~/.local/share/chapterfind/runs.db"
	defaultNotifyRequestTimeout  = 10
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultLogDir                = "~/.local/share/chapterfind/logs"
)

func defaultTargetWords() []string {
	return []string{"chapter", "part", "section"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Tools: Tools{
			FFmpeg:  defaultFFmpegBinary,
			FFprobe: defaultFFprobeBinary,
			Whisper: defaultWhisperBinary,
		},
		Silence: Silence{
			ThresholdDB:        defaultSilenceThresholdDB,
			MinDurationSeconds: defaultSilenceMinDuration,
			EndMarginSeconds:   defaultSilenceEndMargin,
		},
		Snippet: Snippet{
			DurationSeconds: defaultSnippetDuration,
		},
		Targets: Targets{
			Words:         defaultTargetWords(),
			FirstWordOnly: true,
		},
		Whisper: Whisper{
			Profile:     defaultWhisperProfile,
			ComputeType: defaultWhisperComputeType,
			Device:      defaultWhisperDevice,
			Language:    defaultWhisperLanguage,
		},
		Output: Output{
			Enabled:     true,
			IncludeText: true,
			TextFixup:   true,
			Silence:     true,
		},
		TestRun: TestRun{
			DurationMinutes: defaultTestRunMinutes,
		},
		Store: Store{
			Enabled: true,
			Path:    defaultStorePath,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
			Dir:    defaultLogDir,
		},
	}
}
