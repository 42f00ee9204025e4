package etl

import (
	"encoding/json"
	"os"
)

// RunStats is the run report written next to the process after a job
// completes. UnmatchedPlays surfaces play events silently dropped by the
// catalog join.
type RunStats struct {
	TotalExecutionTime string `json:"total_execution_time"`
	SongRecords        int    `json:"song_records"`
	SongsWritten       int    `json:"songs_written"`
	ArtistsWritten     int    `json:"artists_written"`
	LogRecords         int    `json:"log_records"`
	PlayEvents         int    `json:"play_events"`
	UsersWritten       int    `json:"users_written"`
	TimeRowsWritten    int    `json:"time_rows_written"`
	UnmatchedPlays     int    `json:"unmatched_plays"`
	SongplaysWritten   int    `json:"songplays_written"`
}

func (s *RunStats) WriteFile(path string) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
