package derive

import (
	"context"
	"fmt"

	"github.com/audiolake/audiolake/pkg/frame"
)

// EpochMillis adds a time column Target converted from the integer column
// Source, interpreted as milliseconds since the Unix epoch, in UTC. Null
// source cells yield null targets.
type EpochMillis struct {
	Source string
	Target string
}

func (t *EpochMillis) Name() string { return "epoch_millis" }

func (t *EpochMillis) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	src, ok := f.ColumnByName(t.Source)
	if !ok {
		return nil, fmt.Errorf("epoch_millis: unknown column %q", t.Source)
	}
	ic, ok := src.(*frame.IntColumn)
	if !ok {
		return nil, fmt.Errorf("epoch_millis: column %q is %v, want int", t.Source, src.Kind())
	}
	if err := f.AddColumn(frame.ColumnSchema{Name: t.Target, Type: frame.KindTime, Nullable: true}); err != nil {
		return nil, err
	}
	for row := 0; row < f.Rows(); row++ {
		ms, ok := ic.Get(row)
		if !ok {
			continue
		}
		if err := f.SetCell(row, t.Target, millisToTime(ms)); err != nil {
			return nil, err
		}
	}
	return f, nil
}
