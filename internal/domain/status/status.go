// Package status generates status data for the curricula server.
//
// The server writes a JSON status file after startup and after every dataset
// reload. `curricula status` reads it back so a second terminal can see what
// the running server has loaded without talking to it over HTTP.
package status

import (
	"encoding/json"
	"os"
	"sort"
	"time"
)

// StatusFile is the filename within the .curricula directory where status JSON is written.
const StatusFile = "status.json"

// Subject is the per-subject input to Generate.
type Subject struct {
	Code   string
	Codes  int // registry codes across all four classes
	Loaded bool
	Error  string
}

// StatusData is the JSON payload the server writes.
type StatusData struct {
	Port        int       `json:"port,omitempty"`
	Subjects    int       `json:"subjects"`
	Loaded      int       `json:"loaded"`
	Failed      []string  `json:"failed,omitempty"`
	Reloads     uint64    `json:"reloads"`
	TopSubjects []string  `json:"top_subjects"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Generate produces a StatusData from the current subject registry.
func Generate(subjects []Subject, reloads uint64, now time.Time) *StatusData {
	sd := &StatusData{
		Subjects:    len(subjects),
		Reloads:     reloads,
		TopSubjects: topSubjects(subjects, 3),
		UpdatedAt:   now,
	}
	for _, s := range subjects {
		switch {
		case s.Loaded:
			sd.Loaded++
		case s.Error != "":
			sd.Failed = append(sd.Failed, s.Code)
		}
	}
	sort.Strings(sd.Failed)
	return sd
}

// WriteJSON writes the status data as JSON to a file.
func WriteJSON(path string, data *StatusData) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// ReadJSON reads a status file written by WriteJSON.
func ReadJSON(path string) (*StatusData, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sd StatusData
	if err := json.Unmarshal(b, &sd); err != nil {
		return nil, err
	}
	return &sd, nil
}

// topSubjects returns the top N loaded subject codes sorted by code count descending.
func topSubjects(subjects []Subject, n int) []string {
	type sc struct {
		code  string
		codes int
	}

	var loaded []sc
	for _, s := range subjects {
		if s.Loaded && s.Codes > 0 {
			loaded = append(loaded, sc{s.Code, s.Codes})
		}
	}

	sort.Slice(loaded, func(i, j int) bool {
		if loaded[i].codes != loaded[j].codes {
			return loaded[i].codes > loaded[j].codes
		}
		return loaded[i].code < loaded[j].code
	})

	limit := min(n, len(loaded))
	result := make([]string, limit)
	for i := 0; i < limit; i++ {
		result[i] = loaded[i].code
	}
	return result
}
