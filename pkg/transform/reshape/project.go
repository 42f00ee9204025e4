package reshape

import (
	"context"
	"fmt"

	"github.com/audiolake/audiolake/pkg/frame"
)

// Rename maps a source column to an output name. An empty To keeps From.
type Rename struct {
	From string
	To   string
}

// Project selects a subset of columns, optionally renaming them.
type Project struct {
	Columns []Rename
}

func (t *Project) Name() string { return "project" }

func (t *Project) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	schema := frame.Schema{Columns: make([]frame.ColumnSchema, len(t.Columns))}
	for i, r := range t.Columns {
		cs, ok := f.Schema().Col(r.From)
		if !ok {
			return nil, fmt.Errorf("project: unknown column %q", r.From)
		}
		to := r.To
		if to == "" {
			to = r.From
		}
		schema.Columns[i] = frame.ColumnSchema{Name: to, Type: cs.Type, Nullable: cs.Nullable}
	}
	out := frame.New(schema)
	for row := 0; row < f.Rows(); row++ {
		out.AppendNullRow()
		r := out.Rows() - 1
		for i, rn := range t.Columns {
			v, ok := f.Value(row, rn.From)
			if !ok {
				continue
			}
			if err := out.SetCell(r, schema.Columns[i].Name, v); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// Cols is shorthand for a Project with no renames.
func Cols(names ...string) *Project {
	p := &Project{Columns: make([]Rename, len(names))}
	for i, n := range names {
		p.Columns[i] = Rename{From: n}
	}
	return p
}
