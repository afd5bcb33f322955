package scenes

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// ErrInvalidInput marks fatal scene-list problems: unreadable files, missing
// required columns, or lists that yield no valid scenes.
var ErrInvalidInput = errors.New("invalid scene input")

// Scene is one contiguous time range from one source, with optional overlay
// and audio metadata. Sequence is the position in the original ordered input
// and defines the final output order.
type Scene struct {
	Title              string
	SeasonEpisode      string
	EpisodeTitle       string
	Start              time.Duration
	End                time.Duration
	TimelinePlacement  string
	Comment            string
	Language           string
	AudioTitle         string
	RealityDesignation string
	Sequence           int
}

// Duration returns the scene length.
func (s Scene) Duration() time.Duration {
	return s.End - s.Start
}

// SourceID identifies the source file the scene cuts from. Scenes from the
// same title share one decoded handle.
func (s Scene) SourceID() string {
	return s.Title
}

// Label renders a human-readable scene identifier for error reports.
func (s Scene) Label() string {
	if s.SeasonEpisode != "" {
		return fmt.Sprintf("%s %s (#%d)", s.Title, s.SeasonEpisode, s.Sequence)
	}
	return fmt.Sprintf("%s (#%d)", s.Title, s.Sequence)
}

// Validate checks the per-scene invariants.
func (s Scene) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("%w: scene %d has no title", ErrInvalidInput, s.Sequence)
	}
	if s.Start < 0 || s.End < 0 {
		return fmt.Errorf("%w: scene %d has negative timecodes", ErrInvalidInput, s.Sequence)
	}
	if s.End <= s.Start {
		return fmt.Errorf("%w: scene %d end %v is not after start %v", ErrInvalidInput, s.Sequence, s.End, s.Start)
	}
	return nil
}

// SourcePaths lists candidate file paths for the scene's source inside
// movieDir, most preferred first: the raw title, then a sanitized variant
// with filesystem-hostile characters removed and spaces underscored.
func (s Scene) SourcePaths(movieDir string) []string {
	raw := filepath.Join(movieDir, s.Title+".mkv")
	sanitized := filepath.Join(movieDir, sanitizeTitle(s.Title)+".mkv")
	if sanitized == raw {
		return []string{raw}
	}
	return []string{raw, sanitized}
}

func sanitizeTitle(title string) string {
	replacer := strings.NewReplacer(":", "", "/", "", " ", "_")
	return replacer.Replace(title)
}

// ValidateSequence checks the whole-list invariants: non-empty, strictly
// increasing unique sequence indices, each scene individually valid.
func ValidateSequence(list []Scene) error {
	if len(list) == 0 {
		return fmt.Errorf("%w: scene list is empty", ErrInvalidInput)
	}
	seen := make(map[int]struct{}, len(list))
	for _, scene := range list {
		if err := scene.Validate(); err != nil {
			return err
		}
		if _, dup := seen[scene.Sequence]; dup {
			return fmt.Errorf("%w: duplicate sequence index %d", ErrInvalidInput, scene.Sequence)
		}
		seen[scene.Sequence] = struct{}{}
	}
	return nil
}
