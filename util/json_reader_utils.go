package util

import (
	"encoding/json"
	"fmt"
	"os"

	"livepop-server/models/live_popularity"
)

// ReadLabelsFromJSON loads a JSON array of accessibility labels from disk.
func ReadLabelsFromJSON(filePath string) ([]string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", filePath, err)
	}
	var labels []string
	if err := json.Unmarshal(data, &labels); err != nil {
		return nil, fmt.Errorf("failed to unmarshal labels: %w", err)
	}
	return labels, nil
}

// ReadResultFromJSON loads a single live popularity Result from JSON on disk.
func ReadResultFromJSON(filePath string) (*live_popularity.Result, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", filePath, err)
	}
	var res live_popularity.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("failed to unmarshal Result: %w", err)
	}
	return &res, nil
}
