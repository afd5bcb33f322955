package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRender()
	c.normalizeFFmpeg()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.MovieDir, err = expandPath(c.Paths.MovieDir); err != nil {
		return fmt.Errorf("paths.movie_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeRender() {
	if c.Render.ChunkDurationMinutes <= 0 {
		c.Render.ChunkDurationMinutes = defaultChunkDurationMinutes
	}
	if c.Render.SceneWorkers <= 0 {
		c.Render.SceneWorkers = defaultSceneWorkers
	}
	if c.Render.ChunkLookahead <= 0 {
		c.Render.ChunkLookahead = defaultChunkLookahead
	}
	if c.Render.ChunkLookahead > 2 {
		c.Render.ChunkLookahead = 2
	}
	if strings.TrimSpace(c.Render.OverlayFont) == "" {
		c.Render.OverlayFont = defaultOverlayFont
	}
	if c.Render.OverlayFontSize <= 0 {
		c.Render.OverlayFontSize = defaultOverlayFontSize
	}
	if c.Render.OverlayShowSeconds <= 0 {
		c.Render.OverlayShowSeconds = defaultOverlayShowSeconds
	}
	if c.Render.OverlayFadeSeconds < 0 {
		c.Render.OverlayFadeSeconds = defaultOverlayFadeSeconds
	}
}

func (c *Config) normalizeFFmpeg() {
	c.FFmpeg.FFmpegBinary = strings.TrimSpace(c.FFmpeg.FFmpegBinary)
	c.FFmpeg.FFprobeBinary = strings.TrimSpace(c.FFmpeg.FFprobeBinary)
	if strings.TrimSpace(c.FFmpeg.VideoCodec) == "" {
		c.FFmpeg.VideoCodec = defaultVideoCodec
	}
	if strings.TrimSpace(c.FFmpeg.AudioCodec) == "" {
		c.FFmpeg.AudioCodec = defaultAudioCodec
	}
	if c.FFmpeg.ExtractTimeout <= 0 {
		c.FFmpeg.ExtractTimeout = defaultExtractTimeout
	}
	if c.FFmpeg.ConcatTimeout <= 0 {
		c.FFmpeg.ConcatTimeout = defaultConcatTimeout
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
