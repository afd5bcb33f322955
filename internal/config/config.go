package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	MovieDir  string `toml:"movie_dir"`
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
}

// Render contains configuration for the scene-rendering pipeline.
type Render struct {
	// ChunkDurationMinutes caps the cumulative duration of one output chunk.
	ChunkDurationMinutes int `toml:"chunk_duration_minutes"`
	// SceneWorkers bounds concurrent scene renders within a chunk.
	SceneWorkers int `toml:"scene_workers"`
	// ChunkLookahead allows rendering the next chunk while the previous one
	// is being assembled. Valid values are 1 (sequential) and 2.
	ChunkLookahead int `toml:"chunk_lookahead"`
	// OverlayFont is the font family passed to drawtext for timeline overlays.
	OverlayFont string `toml:"overlay_font"`
	// OverlayFontSize is the drawtext font size in points.
	OverlayFontSize int `toml:"overlay_font_size"`
	// OverlayShowSeconds is how long the overlay stays on screen.
	OverlayShowSeconds float64 `toml:"overlay_show_seconds"`
	// OverlayFadeSeconds is the fade-out length appended to the overlay.
	OverlayFadeSeconds float64 `toml:"overlay_fade_seconds"`
}

// FFmpeg contains configuration for the external media tools.
type FFmpeg struct {
	FFmpegBinary   string `toml:"ffmpeg_binary"`
	FFprobeBinary  string `toml:"ffprobe_binary"`
	VideoCodec     string `toml:"video_codec"`
	AudioCodec     string `toml:"audio_codec"`
	ExtractTimeout int    `toml:"extract_timeout"`
	ConcatTimeout  int    `toml:"concat_timeout"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	RunEvents      bool   `toml:"run_events"`
	ChunkEvents    bool   `toml:"chunk_events"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for megacut.
//
// Configuration sections by subsystem:
//   - Paths: movie folder, output folder, log directory
//   - Render: chunk ceiling, worker counts, overlay styling
//   - FFmpeg: external tool binaries, codecs, timeouts
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Render        Render        `toml:"render"`
	FFmpeg        FFmpeg        `toml:"ffmpeg"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/megacut/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. Environment variables
// MEGACUT_MOVIE_DIR, MEGACUT_OUTPUT_DIR, and MEGACUT_LOG_DIR override the
// corresponding file values when set.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func (c *Config) applyEnvOverrides() {
	if v := strings.TrimSpace(os.Getenv("MEGACUT_MOVIE_DIR")); v != "" {
		c.Paths.MovieDir = v
	}
	if v := strings.TrimSpace(os.Getenv("MEGACUT_OUTPUT_DIR")); v != "" {
		c.Paths.OutputDir = v
	}
	if v := strings.TrimSpace(os.Getenv("MEGACUT_LOG_DIR")); v != "" {
		c.Paths.LogDir = v
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("megacut.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the output and log directories when missing.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the configured ffmpeg binary, defaulting to "ffmpeg".
func (c *Config) FFmpegBinary() string {
	if binary := strings.TrimSpace(c.FFmpeg.FFmpegBinary); binary != "" {
		return binary
	}
	return "ffmpeg"
}

// FFprobeBinary returns the configured ffprobe binary, defaulting to "ffprobe".
func (c *Config) FFprobeBinary() string {
	if binary := strings.TrimSpace(c.FFmpeg.FFprobeBinary); binary != "" {
		return binary
	}
	return "ffprobe"
}

func expandPath(pathValue string) (string, error) {
	trimmed := strings.TrimSpace(pathValue)
	if trimmed == "" {
		return "", nil
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		if strings.HasPrefix(trimmed, "~/") {
			return filepath.Join(home, trimmed[2:]), nil
		}
		return "", fmt.Errorf("unsupported home expansion in %q", pathValue)
	}
	return filepath.Abs(trimmed)
}

// ExpandPath expands a leading tilde and returns an absolute path.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes the embedded sample configuration to path.
func CreateSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if expanded == "" {
		return errors.New("config path required")
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config already exists at %s", expanded)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
