package derive

import (
	"context"
	"fmt"
	"time"

	"github.com/audiolake/audiolake/pkg/frame"
)

// Calendar part names accepted by TimeParts. "week" is the ISO week number
// and "weekday" is numbered 1=Sunday..7=Saturday.
const (
	PartHour    = "hour"
	PartDay     = "day"
	PartWeek    = "week"
	PartMonth   = "month"
	PartYear    = "year"
	PartWeekday = "weekday"
)

// TimeParts adds one integer column per requested calendar part, decomposed
// from the time column Source.
type TimeParts struct {
	Source string
	Parts  []string
}

func (t *TimeParts) Name() string { return "time_parts" }

func (t *TimeParts) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	src, ok := f.ColumnByName(t.Source)
	if !ok {
		return nil, fmt.Errorf("time_parts: unknown column %q", t.Source)
	}
	tc, ok := src.(*frame.TimeColumn)
	if !ok {
		return nil, fmt.Errorf("time_parts: column %q is %v, want time", t.Source, src.Kind())
	}
	for _, p := range t.Parts {
		switch p {
		case PartHour, PartDay, PartWeek, PartMonth, PartYear, PartWeekday:
		default:
			return nil, fmt.Errorf("time_parts: unknown part %q", p)
		}
		if err := f.AddColumn(frame.ColumnSchema{Name: p, Type: frame.KindInt, Nullable: true}); err != nil {
			return nil, err
		}
	}
	for row := 0; row < f.Rows(); row++ {
		v, ok := tc.Get(row)
		if !ok {
			continue
		}
		for _, p := range t.Parts {
			if err := f.SetCell(row, p, partOf(v, p)); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}

func partOf(v time.Time, part string) int64 {
	switch part {
	case PartHour:
		return int64(v.Hour())
	case PartDay:
		return int64(v.Day())
	case PartWeek:
		_, wk := v.ISOWeek()
		return int64(wk)
	case PartMonth:
		return int64(v.Month())
	case PartYear:
		return int64(v.Year())
	case PartWeekday:
		return int64(v.Weekday()) + 1
	}
	return 0
}

func millisToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
