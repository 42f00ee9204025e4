package jsonlio

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/audiolake/audiolake/pkg/frame"
)

var testSchema = frame.Schema{Columns: []frame.ColumnSchema{
	{Name: "id", Type: frame.KindString},
	{Name: "ts", Type: frame.KindInt, Nullable: true},
	{Name: "dur", Type: frame.KindFloat, Nullable: true},
}}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestReadGlob(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a", "x", "one.json"),
		`{"id":"a","ts":1000,"dur":1.5}`+"\n"+`{"id":"b","ts":2000}`+"\n")
	writeFile(t, filepath.Join(dir, "b", "y", "two.json"),
		`{"id":"c","ts":"3000","extra":"ignored"}`+"\n")

	f, err := ReadGlob(filepath.Join(dir, "*", "*", "*.json"), testSchema)
	if err != nil {
		t.Fatal(err)
	}
	if f.Rows() != 3 {
		t.Fatalf("rows = %d, want 3", f.Rows())
	}
	// files load in sorted path order
	if v, _ := f.Value(0, "id"); v.(string) != "a" {
		t.Fatalf("row 0 id = %v", v)
	}
	// string-typed numbers coerce into int columns
	if v, ok := f.Value(2, "ts"); !ok || v.(int64) != 3000 {
		t.Fatalf("row 2 ts = %v, %v", v, ok)
	}
	if _, ok := f.Value(1, "dur"); ok {
		t.Fatal("absent field must stay null")
	}
}

func TestReadGlobNoMatch(t *testing.T) {
	if _, err := ReadGlob(filepath.Join(t.TempDir(), "*.json"), testSchema); err == nil {
		t.Fatal("expected error for empty glob")
	}
}

func TestReadGlobBadRecord(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a", "x", "bad.json"), `{"id":"a"}`+"\n"+`{{{`+"\n")
	if _, err := ReadGlob(filepath.Join(dir, "*", "*", "*.json"), testSchema); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestReadDirGzip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "2018", "events.json.gz")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := gzip.NewWriter(f)
	if _, err := zw.Write([]byte(`{"id":"z","ts":9}` + "\n")); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	fr, err := ReadDir(dir, testSchema)
	if err != nil {
		t.Fatal(err)
	}
	if fr.Rows() != 1 {
		t.Fatalf("rows = %d, want 1", fr.Rows())
	}
	if v, _ := fr.Value(0, "id"); v.(string) != "z" {
		t.Fatalf("id = %v", v)
	}
}

func TestStreamReader(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "one.json"),
		`{"id":"a","ts":1}`+"\n"+`{"id":"b","ts":2}`+"\n"+`{"id":"c","ts":3}`+"\n")
	writeFile(t, filepath.Join(dir, "two.json"), `{"id":"d","ts":4}`+"\n")

	paths := []string{filepath.Join(dir, "one.json"), filepath.Join(dir, "two.json")}
	sr, err := NewStreamReader(paths, 2)
	if err != nil {
		t.Fatal(err)
	}
	total := 0
	chunks := 0
	for {
		f, err := sr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		total += f.Rows()
		chunks++
	}
	if total != 4 {
		t.Fatalf("total rows = %d, want 4", total)
	}
	if chunks != 2 {
		t.Fatalf("chunks = %d, want 2", chunks)
	}
	if _, ok := sr.Schema().Col("id"); !ok {
		t.Fatal("schema inference missed id")
	}
}
