package parquetio

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	parquet "github.com/parquet-go/parquet-go"
)

// ReadFile reads every row of one Parquet file as generic records. Byte
// slices are normalized to strings so callers can compare values directly.
func ReadFile(path string) ([]map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	r := parquet.NewGenericReader[map[string]any](f)
	defer func() { _ = r.Close() }()

	var rows []map[string]any
	buf := make([]map[string]any, 256)
	for {
		n, err := r.Read(buf)
		for i := 0; i < n; i++ {
			rec := make(map[string]any, len(buf[i]))
			for k, v := range buf[i] {
				if b, ok := v.([]byte); ok {
					rec[k] = string(b)
				} else {
					rec[k] = v
				}
			}
			rows = append(rows, rec)
			buf[i] = nil
		}
		if err != nil {
			if strings.Contains(err.Error(), "EOF") {
				break
			}
			return nil, err
		}
		if n == 0 {
			break
		}
	}
	return rows, nil
}

// ReadTable reads a table directory written by WriteTable or
// WritePartitioned. Hive partition values parsed from the directory names
// are merged back into each record as strings.
func ReadTable(dir string) ([]map[string]any, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".parquet" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	var rows []map[string]any
	for _, file := range files {
		rel, err := filepath.Rel(dir, file)
		if err != nil {
			return nil, err
		}
		parts := map[string]string{}
		for _, seg := range strings.Split(filepath.ToSlash(rel), "/") {
			if k, v, ok := strings.Cut(seg, "="); ok {
				parts[k] = v
			}
		}
		recs, err := ReadFile(file)
		if err != nil {
			return nil, err
		}
		for _, rec := range recs {
			for k, v := range parts {
				rec[k] = v
			}
			rows = append(rows, rec)
		}
	}
	return rows, nil
}
