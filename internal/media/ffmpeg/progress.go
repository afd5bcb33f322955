package ffmpeg

import (
	"strconv"
	"strings"
	"time"
)

// parseProgressLine interprets one key=value line of ffmpeg -progress output.
// Percent is derived from out_time_us against the expected total duration.
func parseProgressLine(line string, total time.Duration) (ProgressUpdate, bool) {
	line = strings.TrimSpace(line)
	key, value, found := strings.Cut(line, "=")
	if !found {
		return ProgressUpdate{}, false
	}
	switch key {
	case "out_time_us", "out_time_ms":
		// ffmpeg emits microseconds under both keys.
		micros, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil || micros < 0 {
			return ProgressUpdate{}, false
		}
		elapsed := time.Duration(micros) * time.Microsecond
		percent := 0.0
		if total > 0 {
			percent = elapsed.Seconds() / total.Seconds() * 100
			if percent > 100 {
				percent = 100
			}
		}
		return ProgressUpdate{Percent: percent, Message: "encoding"}, true
	case "progress":
		if strings.TrimSpace(value) == "end" {
			return ProgressUpdate{Percent: 100, Message: "finished"}, true
		}
		return ProgressUpdate{}, false
	default:
		return ProgressUpdate{}, false
	}
}
