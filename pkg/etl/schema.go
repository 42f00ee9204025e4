package etl

import (
	"path/filepath"

	"github.com/audiolake/audiolake/pkg/frame"
)

// NextSongPage is the event-type sentinel marking a song play.
const NextSongPage = "NextSong"

// SongSchema is the shape of one song-data record.
var SongSchema = frame.Schema{Columns: []frame.ColumnSchema{
	{Name: "song_id", Type: frame.KindString},
	{Name: "title", Type: frame.KindString},
	{Name: "artist_id", Type: frame.KindString},
	{Name: "artist_name", Type: frame.KindString},
	{Name: "artist_location", Type: frame.KindString, Nullable: true},
	{Name: "artist_latitude", Type: frame.KindFloat, Nullable: true},
	{Name: "artist_longitude", Type: frame.KindFloat, Nullable: true},
	{Name: "year", Type: frame.KindInt},
	{Name: "duration", Type: frame.KindFloat},
	{Name: "num_songs", Type: frame.KindInt, Nullable: true},
}}

// LogSchema is the shape of one activity-log record. Extra fields in the
// source records are ignored.
var LogSchema = frame.Schema{Columns: []frame.ColumnSchema{
	{Name: "artist", Type: frame.KindString, Nullable: true},
	{Name: "song", Type: frame.KindString, Nullable: true},
	{Name: "page", Type: frame.KindString},
	{Name: "ts", Type: frame.KindInt},
	{Name: "userId", Type: frame.KindString},
	{Name: "firstName", Type: frame.KindString, Nullable: true},
	{Name: "lastName", Type: frame.KindString, Nullable: true},
	{Name: "gender", Type: frame.KindString, Nullable: true},
	{Name: "level", Type: frame.KindString},
	{Name: "sessionId", Type: frame.KindInt},
	{Name: "location", Type: frame.KindString, Nullable: true},
	{Name: "userAgent", Type: frame.KindString, Nullable: true},
}}

func songDataGlob(input string) string {
	return filepath.Join(input, "song-data", "*", "*", "*.json")
}

func logDataDir(input string) string {
	return filepath.Join(input, "log-data")
}
