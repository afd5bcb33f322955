// Package timecode parses and formats the HH:MM:SS / MM:SS / SS timecodes
// used in scene lists and ffmpeg seek parameters.
package timecode

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Parse converts a timecode string into a duration. Accepted forms are
// "HH:MM:SS", "MM:SS", and "SS"; every part may carry a fractional component.
func Parse(tc string) (time.Duration, error) {
	trimmed := strings.TrimSpace(tc)
	if trimmed == "" {
		return 0, fmt.Errorf("timecode: empty value")
	}
	parts := strings.Split(trimmed, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("timecode: invalid value %q", tc)
	}
	values := make([]float64, 0, 3)
	for _, part := range parts {
		value, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || value < 0 {
			return 0, fmt.Errorf("timecode: invalid value %q", tc)
		}
		values = append(values, value)
	}
	var seconds float64
	for _, value := range values {
		seconds = seconds*60 + value
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

// Format renders a duration as HH:MM:SS.CC, the form ffmpeg expects for
// -ss and -to parameters.
func Format(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	totalSeconds := d.Seconds()
	hours := int(totalSeconds) / 3600
	minutes := (int(totalSeconds) % 3600) / 60
	seconds := totalSeconds - float64(hours*3600) - float64(minutes*60)
	return fmt.Sprintf("%02d:%02d:%05.2f", hours, minutes, seconds)
}
