package reshape

import (
	"context"

	"github.com/audiolake/audiolake/pkg/frame"
)

// DedupBy keeps one row per distinct key. The survivor is the last row seen
// with that key; output order follows first appearance of each key, so
// repeated runs over identical input produce identical output.
type DedupBy struct {
	Keys []string
}

func (t *DedupBy) Name() string { return "dedup_by" }

func (t *DedupBy) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	survivor := make(map[string]int, f.Rows())
	order := make([]string, 0, f.Rows())
	for row := 0; row < f.Rows(); row++ {
		k := f.Key(row, t.Keys)
		if _, seen := survivor[k]; !seen {
			order = append(order, k)
		}
		survivor[k] = row
	}
	out := frame.New(f.Schema())
	for _, k := range order {
		if err := f.CopyRow(out, survivor[k]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Distinct keeps one row per distinct full-row value.
type Distinct struct{}

func (t *Distinct) Name() string { return "distinct" }

func (t *Distinct) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	cols := f.ColumnNames()
	seen := make(map[string]struct{}, f.Rows())
	out := frame.New(f.Schema())
	for row := 0; row < f.Rows(); row++ {
		k := f.Key(row, cols)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		if err := f.CopyRow(out, row); err != nil {
			return nil, err
		}
	}
	return out, nil
}
