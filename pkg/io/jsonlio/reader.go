// Package jsonlio reads newline-delimited JSON records into frames.
package jsonlio

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/audiolake/audiolake/pkg/frame"
	"github.com/audiolake/audiolake/pkg/io/ioutils"
)

// ReadGlob reads every file matching pattern into one frame with the given
// schema. It is an error when nothing matches: an empty source dataset means
// a misconfigured input root, not an empty table.
func ReadGlob(pattern string, schema frame.Schema) (*frame.Frame, error) {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("jsonlio: no files match %q", pattern)
	}
	sort.Strings(paths)
	f := frame.New(schema)
	for _, p := range paths {
		if err := ReadInto(f, p); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// ReadDir reads every .json/.jsonl file under dir, recursively.
func ReadDir(dir string, schema frame.Schema) (*frame.Frame, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := strings.TrimSuffix(d.Name(), ".gz")
		switch filepath.Ext(name) {
		case ".json", ".jsonl":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("jsonlio: no json files under %q", dir)
	}
	sort.Strings(paths)
	f := frame.New(schema)
	for _, p := range paths {
		if err := ReadInto(f, p); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// ReadInto appends every record in one file to f. A record that fails to
// decode aborts the read.
func ReadInto(f *frame.Frame, path string) error {
	rc, err := ioutils.OpenMaybeCompressed(path)
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()
	dec := json.NewDecoder(rc)
	for {
		var m map[string]any
		if err := dec.Decode(&m); err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("jsonlio: %s: %w", path, err)
		}
		f.AppendNullRow()
		setRowFromMap(f, f.Rows()-1, m)
	}
}

// setRowFromMap coerces record fields to the frame's column kinds. Fields
// absent from the schema are ignored; unparseable cells stay null.
func setRowFromMap(f *frame.Frame, row int, m map[string]any) {
	for _, cs := range f.Schema().Columns {
		v, ok := m[cs.Name]
		if !ok || v == nil {
			continue
		}
		switch cs.Type {
		case frame.KindFloat:
			switch t := v.(type) {
			case float64:
				_ = f.SetCell(row, cs.Name, t)
			case string:
				if s := strings.TrimSpace(t); s != "" {
					if x, err := strconv.ParseFloat(s, 64); err == nil {
						_ = f.SetCell(row, cs.Name, x)
					}
				}
			}
		case frame.KindInt:
			switch t := v.(type) {
			case float64:
				_ = f.SetCell(row, cs.Name, int64(t))
			case string:
				if s := strings.TrimSpace(t); s != "" {
					if x, err := strconv.ParseInt(s, 10, 64); err == nil {
						_ = f.SetCell(row, cs.Name, x)
					}
				}
			}
		default:
			switch t := v.(type) {
			case string:
				_ = f.SetCell(row, cs.Name, t)
			default:
				b, _ := json.Marshal(t)
				_ = f.SetCell(row, cs.Name, string(b))
			}
		}
	}
}
