package parquetio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/audiolake/audiolake/pkg/frame"
)

func sampleFrame(t *testing.T) *frame.Frame {
	t.Helper()
	f := frame.New(frame.Schema{Columns: []frame.ColumnSchema{
		{Name: "song_id", Type: frame.KindString},
		{Name: "title", Type: frame.KindString},
		{Name: "artist_id", Type: frame.KindString},
		{Name: "year", Type: frame.KindInt},
		{Name: "duration", Type: frame.KindFloat},
		{Name: "start_time", Type: frame.KindTime, Nullable: true},
	}})
	rows := []struct {
		id, title, artist string
		year              int64
		dur               float64
	}{
		{"S1", "Song A", "P1", 2000, 200.5},
		{"S2", "Song B", "P1", 2000, 99.0},
		{"S3", "Song C", "P2", 2010, 150.25},
	}
	when := time.Date(2018, 11, 15, 0, 30, 26, 0, time.UTC)
	for _, r := range rows {
		f.AppendNullRow()
		i := f.Rows() - 1
		_ = f.SetCell(i, "song_id", r.id)
		_ = f.SetCell(i, "title", r.title)
		_ = f.SetCell(i, "artist_id", r.artist)
		_ = f.SetCell(i, "year", r.year)
		_ = f.SetCell(i, "duration", r.dur)
		_ = f.SetCell(i, "start_time", when)
	}
	return f
}

func asMillis(t *testing.T, v any) int64 {
	t.Helper()
	switch x := v.(type) {
	case int64:
		return x
	case time.Time:
		return x.UnixMilli()
	default:
		t.Fatalf("unexpected time representation %T", v)
		return 0
	}
}

func TestWriteTableRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "songs_table")
	f := sampleFrame(t)
	n, err := WriteTable(dir, f)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("written = %d, want 3", n)
	}
	rows, err := ReadTable(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("read %d rows, want 3", len(rows))
	}
	byID := map[string]map[string]any{}
	for _, r := range rows {
		byID[r["song_id"].(string)] = r
	}
	r := byID["S1"]
	if r["title"].(string) != "Song A" {
		t.Fatalf("title = %v", r["title"])
	}
	if r["duration"].(float64) != 200.5 {
		t.Fatalf("duration = %v", r["duration"])
	}
	want := time.Date(2018, 11, 15, 0, 30, 26, 0, time.UTC).UnixMilli()
	if got := asMillis(t, r["start_time"]); got != want {
		t.Fatalf("start_time = %d, want %d", got, want)
	}
}

func TestWritePartitioned(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "songs_table")
	f := sampleFrame(t)
	n, err := WritePartitioned(dir, f, []string{"year", "artist_id"})
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("written = %d, want 3", n)
	}
	for _, p := range []string{
		filepath.Join(dir, "year=2000", "artist_id=P1", "part-00000.parquet"),
		filepath.Join(dir, "year=2010", "artist_id=P2", "part-00000.parquet"),
	} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("missing partition file %s: %v", p, err)
		}
	}
	rows, err := ReadTable(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("read %d rows, want 3", len(rows))
	}
	for _, r := range rows {
		// partition columns come back from the directory names
		if _, ok := r["year"].(string); !ok {
			t.Fatalf("year missing from %v", r)
		}
		// and are dropped from the file contents, so song_id remains
		if _, ok := r["song_id"].(string); !ok {
			t.Fatalf("song_id missing from %v", r)
		}
	}
}

func TestWritePartitionedOverwrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "songs_table")
	stale := filepath.Join(dir, "year=1990", "artist_id=GONE")
	if err := os.MkdirAll(stale, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(stale, "part-00000.parquet"), []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := WritePartitioned(dir, sampleFrame(t), []string{"year", "artist_id"}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatal("stale partition survived overwrite")
	}
}

func TestWritePartitionedUnknownColumn(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "songs_table")
	if _, err := WritePartitioned(dir, sampleFrame(t), []string{"nope"}); err == nil {
		t.Fatal("expected unknown partition column error")
	}
}
