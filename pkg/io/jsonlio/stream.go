package jsonlio

import (
	"encoding/json"
	"io"
	"sort"
	"strings"

	"github.com/audiolake/audiolake/pkg/frame"
	"github.com/audiolake/audiolake/pkg/io/ioutils"
)

// StreamReader yields frames of chunkSize rows across a list of files,
// inferring a schema from a sample of the first file. Used for profiling,
// where whole-dataset materialization is unnecessary.
type StreamReader struct {
	paths     []string
	schema    frame.Schema
	chunkSize int

	cur io.ReadCloser
	dec *json.Decoder
	idx int
}

func NewStreamReader(paths []string, chunkSize int) (*StreamReader, error) {
	if chunkSize <= 0 {
		chunkSize = 1024
	}
	schema, err := inferSchemaFromFile(paths[0], 100)
	if err != nil {
		return nil, err
	}
	return &StreamReader{paths: paths, schema: schema, chunkSize: chunkSize}, nil
}

func (s *StreamReader) Schema() frame.Schema { return s.schema }

// Next returns the next chunk, or io.EOF after the last file is drained.
func (s *StreamReader) Next() (*frame.Frame, error) {
	f := frame.New(s.schema)
	for f.Rows() < s.chunkSize {
		if s.dec == nil {
			if s.idx >= len(s.paths) {
				break
			}
			rc, err := ioutils.OpenMaybeCompressed(s.paths[s.idx])
			if err != nil {
				return nil, err
			}
			s.cur = rc
			s.dec = json.NewDecoder(rc)
			s.idx++
		}
		var m map[string]any
		if err := s.dec.Decode(&m); err != nil {
			if err == io.EOF {
				_ = s.cur.Close()
				s.cur, s.dec = nil, nil
				continue
			}
			_ = s.cur.Close()
			return nil, err
		}
		f.AppendNullRow()
		setRowFromMap(f, f.Rows()-1, m)
	}
	if f.Rows() == 0 {
		return nil, io.EOF
	}
	return f, nil
}

func inferSchemaFromFile(path string, sampleRows int) (frame.Schema, error) {
	rc, err := ioutils.OpenMaybeCompressed(path)
	if err != nil {
		return frame.Schema{}, err
	}
	defer func() { _ = rc.Close() }()
	dec := json.NewDecoder(rc)
	var sample []map[string]any
	keysSet := map[string]struct{}{}
	for len(sample) < sampleRows {
		var m map[string]any
		if err := dec.Decode(&m); err != nil {
			if err == io.EOF {
				break
			}
			return frame.Schema{}, err
		}
		sample = append(sample, m)
		for k := range m {
			keysSet[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(keysSet))
	for k := range keysSet {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	schema := frame.Schema{Columns: make([]frame.ColumnSchema, len(keys))}
	for i, k := range keys {
		schema.Columns[i] = frame.ColumnSchema{Name: k, Type: inferKind(sample, k), Nullable: true}
	}
	return schema, nil
}

func inferKind(sample []map[string]any, key string) frame.Kind {
	nNum, nInt, nStr := 0, 0, 0
	for _, m := range sample {
		v, ok := m[key]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case float64:
			nNum++
			if float64(int64(t)) == t {
				nInt++
			}
		case string:
			if strings.TrimSpace(t) != "" {
				nStr++
			}
		default:
			nStr++
		}
	}
	switch {
	case nNum > nStr && nInt == nNum:
		return frame.KindInt
	case nNum > nStr:
		return frame.KindFloat
	default:
		return frame.KindString
	}
}
