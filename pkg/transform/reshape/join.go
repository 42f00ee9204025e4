package reshape

import (
	"context"
	"fmt"

	"github.com/audiolake/audiolake/pkg/frame"
)

// Equal pairs a left-frame column with the right-frame column it must match.
type Equal struct {
	Left  string
	Right string
}

// Lookup is an inner hash join against a fixed right-hand frame. The output
// carries all left columns followed by all right columns; a left row with
// several matches produces several rows, and a left row with none is dropped
// and counted in Unmatched. Rows with a null join key never match.
type Lookup struct {
	Right *frame.Frame
	On    []Equal

	Unmatched int
}

func (t *Lookup) Name() string { return "lookup" }

func (t *Lookup) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	leftCols := make([]string, len(t.On))
	rightCols := make([]string, len(t.On))
	for i, eq := range t.On {
		leftCols[i] = eq.Left
		rightCols[i] = eq.Right
	}

	schema := frame.Schema{}
	schema.Columns = append(schema.Columns, f.Schema().Columns...)
	for _, cs := range t.Right.Schema().Columns {
		if _, dup := f.Schema().Col(cs.Name); dup {
			return nil, fmt.Errorf("lookup: column %q exists on both sides", cs.Name)
		}
		schema.Columns = append(schema.Columns, cs)
	}

	index := make(map[string][]int, t.Right.Rows())
	for row := 0; row < t.Right.Rows(); row++ {
		if nullKey(t.Right, row, rightCols) {
			continue
		}
		k := t.Right.Key(row, rightCols)
		index[k] = append(index[k], row)
	}

	t.Unmatched = 0
	out := frame.New(schema)
	for row := 0; row < f.Rows(); row++ {
		if nullKey(f, row, leftCols) {
			t.Unmatched++
			continue
		}
		matches := index[f.Key(row, leftCols)]
		if len(matches) == 0 {
			t.Unmatched++
			continue
		}
		for _, rrow := range matches {
			out.AppendNullRow()
			r := out.Rows() - 1
			for _, cs := range f.Schema().Columns {
				if v, ok := f.Value(row, cs.Name); ok {
					if err := out.SetCell(r, cs.Name, v); err != nil {
						return nil, err
					}
				}
			}
			for _, cs := range t.Right.Schema().Columns {
				if v, ok := t.Right.Value(rrow, cs.Name); ok {
					if err := out.SetCell(r, cs.Name, v); err != nil {
						return nil, err
					}
				}
			}
		}
	}
	return out, nil
}

func nullKey(f *frame.Frame, row int, cols []string) bool {
	for _, c := range cols {
		if _, ok := f.Value(row, c); !ok {
			return true
		}
	}
	return false
}
