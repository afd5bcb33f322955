package config

const (
	defaultOutputDir            = "~/megacut/output"
	defaultLogDir               = "~/.local/share/megacut/logs"
	defaultChunkDurationMinutes = 120
	defaultSceneWorkers         = 4
	defaultChunkLookahead       = 1
	defaultOverlayFont          = "DejaVuSans"
	defaultOverlayFontSize      = 24
	defaultOverlayShowSeconds   = 2.0
	defaultOverlayFadeSeconds   = 1.0
	defaultVideoCodec           = "libx264"
	defaultAudioCodec           = "aac"
	defaultExtractTimeout       = 1800
	defaultConcatTimeout        = 7200
	defaultNotifyTimeout        = 10
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Render: Render{
			ChunkDurationMinutes: defaultChunkDurationMinutes,
			SceneWorkers:         defaultSceneWorkers,
			ChunkLookahead:       defaultChunkLookahead,
			OverlayFont:          defaultOverlayFont,
			OverlayFontSize:      defaultOverlayFontSize,
			OverlayShowSeconds:   defaultOverlayShowSeconds,
			OverlayFadeSeconds:   defaultOverlayFadeSeconds,
		},
		FFmpeg: FFmpeg{
			VideoCodec:     defaultVideoCodec,
			AudioCodec:     defaultAudioCodec,
			ExtractTimeout: defaultExtractTimeout,
			ConcatTimeout:  defaultConcatTimeout,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			RunEvents:      true,
			ChunkEvents:    true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
