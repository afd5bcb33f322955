package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"megacut/internal/logging"
	"megacut/internal/timecode"
)

var commandContext = exec.CommandContext

// ProgressUpdate captures ffmpeg progress events during long operations.
type ProgressUpdate struct {
	Percent float64
	Message string
}

// ExtractRequest describes one scene clip extraction.
type ExtractRequest struct {
	SourcePath string
	Start      time.Duration
	End        time.Duration
	// AudioStream selects a specific audio stream index; negative keeps the
	// default stream.
	AudioStream int
	// OverlayText is drawn top-right for the configured overlay window when
	// non-empty.
	OverlayText string
	OutputPath  string
}

// Capability is the media-processing surface the render pipeline depends on.
type Capability interface {
	ExtractScene(ctx context.Context, req ExtractRequest) error
	Concatenate(ctx context.Context, clipPaths []string, outputPath string, totalDuration time.Duration, progress func(ProgressUpdate)) error
}

// OverlayStyle configures the drawtext overlay burned onto scene clips.
type OverlayStyle struct {
	Font        string
	FontSize    int
	ShowSeconds float64
	FadeSeconds float64
}

// Options configure the CLI client.
type Options struct {
	Binary         string
	VideoCodec     string
	AudioCodec     string
	Overlay        OverlayStyle
	ExtractTimeout time.Duration
	ConcatTimeout  time.Duration
}

// CLI wraps the ffmpeg command-line tool.
type CLI struct {
	binary         string
	videoCodec     string
	audioCodec     string
	overlay        OverlayStyle
	extractTimeout time.Duration
	concatTimeout  time.Duration
	logger         *slog.Logger
}

// NewCLI constructs an ffmpeg client.
func NewCLI(opts Options, logger *slog.Logger) *CLI {
	binary := strings.TrimSpace(opts.Binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	videoCodec := strings.TrimSpace(opts.VideoCodec)
	if videoCodec == "" {
		videoCodec = "libx264"
	}
	audioCodec := strings.TrimSpace(opts.AudioCodec)
	if audioCodec == "" {
		audioCodec = "aac"
	}
	return &CLI{
		binary:         binary,
		videoCodec:     videoCodec,
		audioCodec:     audioCodec,
		overlay:        opts.Overlay,
		extractTimeout: opts.ExtractTimeout,
		concatTimeout:  opts.ConcatTimeout,
		logger:         logging.NewComponentLogger(logger, "ffmpeg"),
	}
}

// ExtractScene cuts the requested range out of the source, applies the audio
// selection and overlay, and encodes the clip to req.OutputPath.
func (c *CLI) ExtractScene(ctx context.Context, req ExtractRequest) error {
	if strings.TrimSpace(req.SourcePath) == "" {
		return errors.New("extract: source path required")
	}
	if strings.TrimSpace(req.OutputPath) == "" {
		return errors.New("extract: output path required")
	}
	if req.End <= req.Start {
		return fmt.Errorf("extract: end %v not after start %v", req.End, req.Start)
	}

	if c.extractTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.extractTimeout)
		defer cancel()
	}

	args := c.extractArgs(req)
	c.logger.Debug("extracting scene clip",
		logging.String("source", req.SourcePath),
		logging.String("output", req.OutputPath),
		logging.String("range", timecode.Format(req.Start)+"-"+timecode.Format(req.End)),
	)
	cmd := commandContext(ctx, c.binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ffmpeg extract: %w: %s", err, tailOf(output))
	}
	if _, err := os.Stat(req.OutputPath); err != nil {
		return fmt.Errorf("ffmpeg extract: clip not created: %w", err)
	}
	return nil
}

func (c *CLI) extractArgs(req ExtractRequest) []string {
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-ss", timecode.Format(req.Start),
		"-to", timecode.Format(req.End),
		"-i", req.SourcePath,
		"-map", "0:v:0",
	}
	if req.AudioStream >= 0 {
		args = append(args, "-map", fmt.Sprintf("0:%d", req.AudioStream))
	} else {
		args = append(args, "-map", "0:a:0?")
	}
	if filter := c.overlayFilter(req.OverlayText); filter != "" {
		args = append(args, "-vf", filter)
	}
	args = append(args,
		"-c:v", c.videoCodec,
		"-c:a", c.audioCodec,
		"-y", req.OutputPath,
	)
	return args
}

// overlayFilter builds the drawtext expression: text pinned top-right,
// visible for ShowSeconds and fading out over FadeSeconds.
func (c *CLI) overlayFilter(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	show := c.overlay.ShowSeconds
	if show <= 0 {
		show = 2
	}
	fade := c.overlay.FadeSeconds
	fontSize := c.overlay.FontSize
	if fontSize <= 0 {
		fontSize = 24
	}
	font := c.overlay.Font
	if font == "" {
		font = "DejaVuSans"
	}

	alpha := "1"
	if fade > 0 {
		alpha = fmt.Sprintf("if(lt(t,%.2f),1,max(0,1-(t-%.2f)/%.2f))", show, show, fade)
	}
	return fmt.Sprintf(
		"drawtext=font='%s':fontsize=%d:fontcolor=white:x=w-tw-20:y=20:alpha='%s':enable='lt(t,%.2f)':text='%s'",
		escapeDrawtext(font), fontSize, alpha, show+fade, escapeDrawtext(text),
	)
}

func escapeDrawtext(text string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `'`, `\'`, `:`, `\:`, `%`, `\%`)
	return replacer.Replace(text)
}

// Concatenate joins the rendered clips in order into outputPath using the
// concat demuxer, re-encoding once so transitions between heterogeneous
// sources stay seamless. Progress callbacks fire as ffmpeg reports out_time.
func (c *CLI) Concatenate(ctx context.Context, clipPaths []string, outputPath string, totalDuration time.Duration, progress func(ProgressUpdate)) error {
	if len(clipPaths) == 0 {
		return errors.New("concat: no clips to concatenate")
	}
	if strings.TrimSpace(outputPath) == "" {
		return errors.New("concat: output path required")
	}

	if c.concatTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.concatTimeout)
		defer cancel()
	}

	listPath, err := writeConcatList(clipPaths)
	if err != nil {
		return err
	}
	defer os.Remove(listPath)

	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-f", "concat", "-safe", "0",
		"-i", listPath,
		"-c:v", c.videoCodec,
		"-c:a", c.audioCodec,
		"-progress", "pipe:1",
		"-y", outputPath,
	}
	c.logger.Debug("concatenating chunk",
		logging.Int("clips", len(clipPaths)),
		logging.String("output", outputPath),
	)

	cmd := commandContext(ctx, c.binary, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("concat stdout pipe: %w", err)
	}
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg concat: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		update, ok := parseProgressLine(scanner.Text(), totalDuration)
		if ok && progress != nil {
			progress(update)
		}
	}

	if err := cmd.Wait(); err != nil {
		// ffmpeg writes the -y output progressively; drop whatever it got to.
		_ = os.Remove(outputPath)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ffmpeg concat: %w: %s", err, tailOf([]byte(stderr.String())))
	}
	if _, err := os.Stat(outputPath); err != nil {
		return fmt.Errorf("ffmpeg concat: output not created: %w", err)
	}
	return nil
}

// writeConcatList writes the concat demuxer file list, single quotes escaped.
func writeConcatList(clipPaths []string) (string, error) {
	file, err := os.CreateTemp("", "megacut-concat-*.txt")
	if err != nil {
		return "", fmt.Errorf("create concat list: %w", err)
	}
	defer file.Close()

	for _, clip := range clipPaths {
		absPath, err := filepath.Abs(clip)
		if err != nil {
			os.Remove(file.Name())
			return "", fmt.Errorf("resolve clip path %s: %w", clip, err)
		}
		escaped := strings.ReplaceAll(absPath, "'", `'\''`)
		if _, err := fmt.Fprintf(file, "file '%s'\n", escaped); err != nil {
			os.Remove(file.Name())
			return "", fmt.Errorf("write concat list: %w", err)
		}
	}
	return file.Name(), nil
}

func tailOf(output []byte) string {
	text := strings.TrimSpace(string(output))
	const limit = 400
	if len(text) > limit {
		text = "..." + text[len(text)-limit:]
	}
	return text
}
