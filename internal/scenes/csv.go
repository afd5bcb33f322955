package scenes

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"megacut/internal/logging"
	"megacut/internal/timecode"
)

// Column names of the scene CSV format.
const (
	columnTitle              = "movie_show"
	columnSeasonEpisode      = "season_episode"
	columnEpisodeTitle       = "episode_title"
	columnStart              = "start_timecode"
	columnEnd                = "end_timecode"
	columnTimeline           = "timeline_placement"
	columnComment            = "comment"
	columnLanguage           = "language"
	columnAudioTitle         = "audio_title"
	columnRealityDesignation = "reality_designation"
)

var requiredColumns = []string{columnTitle, columnStart, columnEnd, columnTimeline}

// Load reads the scene CSV at path and returns the validated ordered scene
// list. Rows missing required fields are skipped with a warning; structural
// problems and empty results fail with ErrInvalidInput.
func Load(path string, logger *slog.Logger) ([]Scene, error) {
	logger = logging.NewComponentLogger(logger, "scenes")

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrInvalidInput, path, err)
	}
	defer file.Close()

	list, err := parse(file, logger)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidInput, path, err)
	}
	if err := ValidateSequence(list); err != nil {
		return nil, err
	}
	return list, nil
}

func parse(r io.Reader, logger *slog.Logger) ([]Scene, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %v", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(strings.ToLower(name))] = i
	}
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	field := func(record []string, name string) string {
		index, ok := columns[name]
		if !ok || index >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[index])
	}

	var list []Scene
	sequence := 0
	for row := 2; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %v", row, err)
		}

		title := field(record, columnTitle)
		if title == "" {
			continue
		}
		startText := field(record, columnStart)
		endText := field(record, columnEnd)
		timeline := field(record, columnTimeline)
		if startText == "" || endText == "" || timeline == "" {
			logger.Warn("skipping row with missing required fields", logging.Int("row", row), logging.String("title", title))
			continue
		}
		start, err := timecode.Parse(startText)
		if err != nil {
			logger.Warn("skipping row with bad start timecode", logging.Int("row", row), logging.String("title", title), logging.Error(err))
			continue
		}
		end, err := timecode.Parse(endText)
		if err != nil {
			logger.Warn("skipping row with bad end timecode", logging.Int("row", row), logging.String("title", title), logging.Error(err))
			continue
		}
		scene := Scene{
			Title:              title,
			SeasonEpisode:      field(record, columnSeasonEpisode),
			EpisodeTitle:       field(record, columnEpisodeTitle),
			Start:              start,
			End:                end,
			TimelinePlacement:  timeline,
			Comment:            field(record, columnComment),
			Language:           field(record, columnLanguage),
			AudioTitle:         field(record, columnAudioTitle),
			RealityDesignation: field(record, columnRealityDesignation),
			Sequence:           sequence,
		}
		if err := scene.Validate(); err != nil {
			logger.Warn("skipping invalid scene row", logging.Int("row", row), logging.String("title", title), logging.Error(err))
			continue
		}
		list = append(list, scene)
		sequence++
	}
	return list, nil
}
