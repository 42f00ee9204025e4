package reshape

import (
	"context"

	"github.com/audiolake/audiolake/pkg/frame"
)

// FilterEq keeps rows whose string column equals Value. Null cells never
// match.
type FilterEq struct {
	Column string
	Value  string
}

func (t *FilterEq) Name() string { return "filter_eq" }

func (t *FilterEq) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	out := frame.New(f.Schema())
	for row := 0; row < f.Rows(); row++ {
		v, ok := f.Value(row, t.Column)
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok || s != t.Value {
			continue
		}
		if err := f.CopyRow(out, row); err != nil {
			return nil, err
		}
	}
	return out, nil
}
