package derive

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"

	"github.com/audiolake/audiolake/pkg/frame"
)

// SurrogateID adds an integer key column filled from a snowflake node.
// Generated ids are unique within and across runs but carry no ordering or
// contiguity guarantee.
type SurrogateID struct {
	Column string
	Node   *snowflake.Node
}

func (t *SurrogateID) Name() string { return "surrogate_id" }

func (t *SurrogateID) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	if t.Node == nil {
		return nil, fmt.Errorf("surrogate_id: nil snowflake node")
	}
	if err := f.AddColumn(frame.ColumnSchema{Name: t.Column, Type: frame.KindInt}); err != nil {
		return nil, err
	}
	for row := 0; row < f.Rows(); row++ {
		if err := f.SetCell(row, t.Column, t.Node.Generate().Int64()); err != nil {
			return nil, err
		}
	}
	return f, nil
}
