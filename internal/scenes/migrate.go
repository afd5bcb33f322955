package scenes

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"megacut/internal/logging"
)

// Positional columns of the legacy headerless spreadsheet export.
const (
	legacyColumnTitle         = 1
	legacyColumnSeasonEpisode = 5
	legacyColumnEpisodeTitle  = 6
	legacyColumnStart         = 10
	legacyColumnEnd           = 12
	legacyColumnComment       = 14
	legacyColumnTimeline      = 24
)

var (
	yearPattern  = regexp.MustCompile(`^\d{4}$`)
	monthPattern = regexp.MustCompile(`(?i)^(JAN|FEB|MAR|APR|MAY|JUN|JUL|AUG|SEP|OCT|NOV|DEC)$`)
)

// MigrateOptions control the defaults stamped onto migrated rows.
type MigrateOptions struct {
	Language           string
	AudioTitle         string
	RealityDesignation string
}

func (o *MigrateOptions) applyDefaults() {
	if strings.TrimSpace(o.Language) == "" {
		o.Language = "en"
	}
	if strings.TrimSpace(o.AudioTitle) == "" {
		o.AudioTitle = "Original Audio"
	}
}

// Migrate converts a legacy headerless scene spreadsheet into the current
// header-driven CSV format and returns the number of migrated scenes.
//
// Legacy timeline cells behave like merged spreadsheet cells: blank cells
// inherit the previous scene's placement, and bare month names pick up the
// year from the most recent year section-header row above them.
func Migrate(oldPath, newPath string, opts MigrateOptions, logger *slog.Logger) (int, error) {
	logger = logging.NewComponentLogger(logger, "scenes")
	opts.applyDefaults()

	file, err := os.Open(oldPath)
	if err != nil {
		return 0, fmt.Errorf("%w: open %s: %v", ErrInvalidInput, oldPath, err)
	}
	defer file.Close()

	rows, err := parseLegacy(file)
	if err != nil {
		return 0, fmt.Errorf("%w: parse %s: %v", ErrInvalidInput, oldPath, err)
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("%w: %s contains no scene rows", ErrInvalidInput, oldPath)
	}

	out, err := os.Create(newPath)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", newPath, err)
	}
	defer out.Close()

	writer := csv.NewWriter(out)
	if err := writer.Write(headerRow()); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.title,
			row.seasonEpisode,
			row.episodeTitle,
			row.start,
			row.end,
			row.timeline,
			row.comment,
			opts.Language,
			opts.AudioTitle,
			opts.RealityDesignation,
		}
		if err := writer.Write(record); err != nil {
			return 0, fmt.Errorf("write scene row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return 0, fmt.Errorf("flush csv: %w", err)
	}

	logger.Info("migrated legacy scene list",
		logging.String("from", oldPath),
		logging.String("to", newPath),
		logging.Int("scenes", len(rows)),
	)
	return len(rows), nil
}

func headerRow() []string {
	return []string{
		columnTitle, columnSeasonEpisode, columnEpisodeTitle,
		columnStart, columnEnd, columnTimeline, columnComment,
		columnLanguage, columnAudioTitle, columnRealityDesignation,
	}
}

type legacyRow struct {
	title         string
	seasonEpisode string
	episodeTitle  string
	start         string
	end           string
	comment       string
	timeline      string
}

func parseLegacy(r io.Reader) ([]legacyRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	cell := func(record []string, index int) string {
		if index >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[index])
	}

	var rows []legacyRow
	currentYear := ""
	lastTimeline := ""
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		title := cell(record, legacyColumnTitle)
		start := cell(record, legacyColumnStart)
		end := cell(record, legacyColumnEnd)
		timeline := cell(record, legacyColumnTimeline)

		// Year section headers carry no timecodes but set the year context
		// for month-only timeline cells below them.
		if yearPattern.MatchString(title) && start == "" && end == "" {
			currentYear = title
			continue
		}
		if title == "" || start == "" || end == "" {
			continue
		}

		switch {
		case timeline == "":
			timeline = lastTimeline
		case monthPattern.MatchString(timeline) && currentYear != "":
			timeline = strings.ToUpper(timeline) + " " + currentYear
		}
		lastTimeline = timeline

		rows = append(rows, legacyRow{
			title:         title,
			seasonEpisode: cell(record, legacyColumnSeasonEpisode),
			episodeTitle:  cell(record, legacyColumnEpisodeTitle),
			start:         start,
			end:           end,
			comment:       cell(record, legacyColumnComment),
			timeline:      timeline,
		})
	}
	return rows, nil
}
