package etl

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/audiolake/audiolake/pkg/frame"
	"github.com/audiolake/audiolake/pkg/io/jsonlio"
	"github.com/audiolake/audiolake/pkg/io/parquetio"
	"github.com/audiolake/audiolake/pkg/transform/derive"
	"github.com/audiolake/audiolake/pkg/transform/reshape"
)

// ProcessLogData builds users_table, time_table, and songplays_table from
// the activity logs, joining play events against a fresh load of the song
// catalog to resolve song and artist ids.
func ProcessLogData(ctx context.Context, sess *Session, input, output string, stats *RunStats) error {
	df, err := jsonlio.ReadDir(logDataDir(input), LogSchema)
	if err != nil {
		return fmt.Errorf("events stage: %w", err)
	}
	stats.LogRecords = df.Rows()

	plays, err := (&reshape.FilterEq{Column: "page", Value: NextSongPage}).Apply(ctx, df)
	if err != nil {
		return fmt.Errorf("events stage: %w", err)
	}
	stats.PlayEvents = plays.Rows()
	sess.Log.Info("loaded log data",
		zap.Int("records", df.Rows()), zap.Int("play_events", plays.Rows()))

	users, err := frame.NewPipeline().
		Add(&reshape.Project{Columns: []reshape.Rename{
			{From: "userId", To: "user_id"},
			{From: "firstName", To: "first_name"},
			{From: "lastName", To: "last_name"},
			{From: "gender"},
			{From: "level"},
		}}).
		Add(&reshape.DedupBy{Keys: []string{"user_id"}}).
		Run(ctx, plays)
	if err != nil {
		return fmt.Errorf("events stage: %w", err)
	}
	n, err := parquetio.WriteTable(filepath.Join(output, "users_table"), users)
	if err != nil {
		return fmt.Errorf("events stage: write users_table: %w", err)
	}
	stats.UsersWritten = n
	sess.Log.Info("wrote users_table", zap.Int("rows", n))

	if _, err := (&derive.EpochMillis{Source: "ts", Target: "start_time"}).Apply(ctx, plays); err != nil {
		return fmt.Errorf("events stage: %w", err)
	}

	timeTable, err := frame.NewPipeline().
		Add(reshape.Cols("start_time")).
		Add(&derive.TimeParts{Source: "start_time", Parts: []string{
			derive.PartHour, derive.PartDay, derive.PartWeek,
			derive.PartMonth, derive.PartYear, derive.PartWeekday,
		}}).
		Add(&reshape.Distinct{}).
		Run(ctx, plays)
	if err != nil {
		return fmt.Errorf("events stage: %w", err)
	}
	n, err = parquetio.WritePartitioned(filepath.Join(output, "time_table"), timeTable, []string{"year", "month"})
	if err != nil {
		return fmt.Errorf("events stage: write time_table: %w", err)
	}
	stats.TimeRowsWritten = n
	sess.Log.Info("wrote time_table", zap.Int("rows", n))

	// The catalog is re-read rather than reused from the songs stage: the
	// join always runs against the full, freshly loaded catalog image.
	songs, err := jsonlio.ReadGlob(songDataGlob(input), SongSchema)
	if err != nil {
		return fmt.Errorf("events stage: reload song data: %w", err)
	}

	join := &reshape.Lookup{Right: songs, On: []reshape.Equal{
		{Left: "song", Right: "title"},
		{Left: "artist", Right: "artist_name"},
	}}
	joined, err := join.Apply(ctx, plays)
	if err != nil {
		return fmt.Errorf("events stage: %w", err)
	}
	stats.UnmatchedPlays = join.Unmatched
	if join.Unmatched > 0 {
		sess.Log.Warn("play events with no catalog match were dropped",
			zap.Int("unmatched", join.Unmatched))
	}

	songplays, err := frame.NewPipeline().
		Add(&reshape.Project{Columns: []reshape.Rename{
			{From: "start_time"},
			{From: "userId", To: "user_id"},
			{From: "level"},
			{From: "song_id"},
			{From: "artist_id"},
			{From: "sessionId", To: "session_id"},
			{From: "location"},
			{From: "userAgent", To: "user_agent"},
		}}).
		Add(&reshape.Distinct{}).
		Add(&derive.TimeParts{Source: "start_time", Parts: []string{derive.PartYear, derive.PartMonth}}).
		Add(&derive.SurrogateID{Column: "songplay_id", Node: sess.Node}).
		Run(ctx, joined)
	if err != nil {
		return fmt.Errorf("events stage: %w", err)
	}
	n, err = parquetio.WritePartitioned(filepath.Join(output, "songplays_table"), songplays, []string{"year", "month"})
	if err != nil {
		return fmt.Errorf("events stage: write songplays_table: %w", err)
	}
	stats.SongplaysWritten = n
	sess.Log.Info("wrote songplays_table", zap.Int("rows", n))
	return nil
}
