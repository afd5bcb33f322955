package scenes

import (
	"encoding/csv"
	"fmt"
	"os"
)

// WriteSample writes a small scene CSV demonstrating the current format.
func WriteSample(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	records := [][]string{
		headerRow(),
		{"Black Panther", "", "", "0:00:14", "0:01:45", "2,500,000 BCE", "Prologue: the story of the first Black Panther.", "en", "Original Audio", "EARTH-199999"},
		{"Agents of S.H.I.E.L.D.", "3.19", "Failed Experiments", "0:00:45", "0:01:35", "3500 BCE", "Flashback to the first Inhuman transformation.", "en", "Original Audio", "EARTH-199999"},
		{"Thor: The Dark World", "", "", "0:00:35", "0:03:39", "2988 BCE", "Prologue: Odin narrating the Convergence.", "en", "Original Audio", "EARTH-199999"},
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write sample row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
