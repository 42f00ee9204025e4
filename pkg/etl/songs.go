package etl

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/audiolake/audiolake/pkg/frame"
	"github.com/audiolake/audiolake/pkg/io/jsonlio"
	"github.com/audiolake/audiolake/pkg/io/parquetio"
	"github.com/audiolake/audiolake/pkg/transform/reshape"
)

// ProcessSongData builds songs_table and artists_table from the song-data
// records. Both writes fully overwrite their table directories.
func ProcessSongData(ctx context.Context, sess *Session, input, output string, stats *RunStats) error {
	df, err := jsonlio.ReadGlob(songDataGlob(input), SongSchema)
	if err != nil {
		return fmt.Errorf("songs stage: %w", err)
	}
	stats.SongRecords = df.Rows()
	sess.Log.Info("loaded song data", zap.Int("records", df.Rows()))

	songs, err := frame.NewPipeline().
		Add(reshape.Cols("song_id", "title", "artist_id", "year", "duration")).
		Add(&reshape.DedupBy{Keys: []string{"song_id"}}).
		Run(ctx, df)
	if err != nil {
		return fmt.Errorf("songs stage: %w", err)
	}
	n, err := parquetio.WritePartitioned(filepath.Join(output, "songs_table"), songs, []string{"year", "artist_id"})
	if err != nil {
		return fmt.Errorf("songs stage: write songs_table: %w", err)
	}
	stats.SongsWritten = n
	sess.Log.Info("wrote songs_table", zap.Int("rows", n))

	artists, err := frame.NewPipeline().
		Add(reshape.Cols("artist_id", "artist_name", "artist_location", "artist_latitude", "artist_longitude")).
		Add(&reshape.DedupBy{Keys: []string{"artist_id"}}).
		Run(ctx, df)
	if err != nil {
		return fmt.Errorf("songs stage: %w", err)
	}
	n, err = parquetio.WriteTable(filepath.Join(output, "artists_table"), artists)
	if err != nil {
		return fmt.Errorf("songs stage: write artists_table: %w", err)
	}
	stats.ArtistsWritten = n
	sess.Log.Info("wrote artists_table", zap.Int("rows", n))
	return nil
}
