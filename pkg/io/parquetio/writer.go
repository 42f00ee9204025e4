// Package parquetio writes frames to Parquet table directories and reads
// them back for verification.
package parquetio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	local "github.com/xitongsys/parquet-go-source/local"
	pw "github.com/xitongsys/parquet-go/writer"

	"github.com/audiolake/audiolake/pkg/frame"
)

// hiveNull is the directory name hive-style layouts use for a null
// partition value.
const hiveNull = "__HIVE_DEFAULT_PARTITION__"

func parquetSchemaJSON(s frame.Schema) string {
	type field struct {
		Tag string `json:"Tag"`
	}
	type schema struct {
		Tag    string  `json:"Tag"`
		Fields []field `json:"Fields"`
	}
	sc := schema{Tag: "name=schema, repetitiontype=REQUIRED"}
	for _, cs := range s.Columns {
		tag := "name=" + cs.Name + ", repetitiontype=OPTIONAL, type="
		switch cs.Type {
		case frame.KindFloat:
			tag += "DOUBLE"
		case frame.KindInt:
			tag += "INT64"
		case frame.KindTime:
			tag += "INT64, convertedtype=TIMESTAMP_MILLIS"
		default:
			tag += "BYTE_ARRAY, convertedtype=UTF8"
		}
		sc.Fields = append(sc.Fields, field{Tag: tag})
	}
	b, _ := json.Marshal(sc)
	return string(b)
}

// WriteFile writes one Parquet file holding all rows of f.
func WriteFile(path string, f *frame.Frame) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	writer, err := pw.NewJSONWriter(parquetSchemaJSON(f.Schema()), fw, 4)
	if err != nil {
		_ = fw.Close()
		return fmt.Errorf("parquet writer init: %w", err)
	}
	for r := 0; r < f.Rows(); r++ {
		rec := make(map[string]any, f.Cols())
		for _, cs := range f.Schema().Columns {
			v, ok := f.Value(r, cs.Name)
			if !ok {
				continue
			}
			if t, isTime := v.(time.Time); isTime {
				v = t.UnixMilli()
			}
			rec[cs.Name] = v
		}
		b, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if err := writer.Write(string(b)); err != nil {
			_ = fw.Close()
			return fmt.Errorf("parquet write row: %w", err)
		}
	}
	if err := writer.WriteStop(); err != nil {
		_ = fw.Close()
		return fmt.Errorf("parquet finalize: %w", err)
	}
	return fw.Close()
}

// WriteTable writes f as an unpartitioned table directory, replacing any
// previous contents. Overwrite is not transactional: an aborted run can
// leave a partially written directory.
func WriteTable(dir string, f *frame.Frame) (int, error) {
	if err := os.RemoveAll(dir); err != nil {
		return 0, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}
	if err := WriteFile(filepath.Join(dir, "part-00000.parquet"), f); err != nil {
		return 0, err
	}
	return f.Rows(), nil
}

// WritePartitioned writes f as a hive-partitioned table directory
// (dir/col=value/.../part-00000.parquet), replacing any previous contents.
// Partition columns are dropped from the file contents, matching the
// engine convention the outputs are read with.
func WritePartitioned(dir string, f *frame.Frame, partitionCols []string) (int, error) {
	for _, pc := range partitionCols {
		if _, ok := f.Schema().Col(pc); !ok {
			return 0, fmt.Errorf("parquetio: unknown partition column %q", pc)
		}
	}
	dataSchema := frame.Schema{}
	for _, cs := range f.Schema().Columns {
		if !contains(partitionCols, cs.Name) {
			dataSchema.Columns = append(dataSchema.Columns, cs)
		}
	}

	groups := make(map[string]*frame.Frame)
	for row := 0; row < f.Rows(); row++ {
		sub := dir
		for _, pc := range partitionCols {
			sub = filepath.Join(sub, pc+"="+partitionValue(f, row, pc))
		}
		g, ok := groups[sub]
		if !ok {
			g = frame.New(dataSchema)
			groups[sub] = g
		}
		if err := f.CopyRow(g, row); err != nil {
			return 0, err
		}
	}

	if err := os.RemoveAll(dir); err != nil {
		return 0, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}
	dirs := make([]string, 0, len(groups))
	for d := range groups {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	written := 0
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return written, err
		}
		if err := WriteFile(filepath.Join(d, "part-00000.parquet"), groups[d]); err != nil {
			return written, err
		}
		written += groups[d].Rows()
	}
	return written, nil
}

func partitionValue(f *frame.Frame, row int, col string) string {
	v, ok := f.Value(row, col)
	if !ok {
		return hiveNull
	}
	switch t := v.(type) {
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case string:
		return t
	case time.Time:
		return strconv.FormatInt(t.UnixMilli(), 10)
	}
	return hiveNull
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}
