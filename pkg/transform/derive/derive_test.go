package derive

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/audiolake/audiolake/pkg/frame"
)

func TestEpochMillis(t *testing.T) {
	f := frame.New(frame.Schema{Columns: []frame.ColumnSchema{
		{Name: "ts", Type: frame.KindInt, Nullable: true},
	}})
	f.AppendNullRow()
	_ = f.SetCell(0, "ts", int64(1000000000000))
	f.AppendNullRow() // ts null

	out, err := (&EpochMillis{Source: "ts", Target: "start_time"}).Apply(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	v, ok := out.Value(0, "start_time")
	if !ok {
		t.Fatal("start_time missing")
	}
	want := time.Date(2001, 9, 9, 1, 46, 40, 0, time.UTC)
	if !v.(time.Time).Equal(want) {
		t.Fatalf("start_time = %v, want %v", v, want)
	}
	if _, ok := out.Value(1, "start_time"); ok {
		t.Fatal("null ts must derive null start_time")
	}
}

func TestTimeParts(t *testing.T) {
	f := frame.New(frame.Schema{Columns: []frame.ColumnSchema{
		{Name: "start_time", Type: frame.KindTime},
	}})
	f.AppendNullRow()
	_ = f.SetCell(0, "start_time", time.Date(2023, 6, 15, 10, 30, 0, 0, time.UTC))

	out, err := (&TimeParts{Source: "start_time", Parts: []string{
		PartHour, PartDay, PartWeek, PartMonth, PartYear, PartWeekday,
	}}).Apply(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]int64{
		"hour":    10,
		"day":     15,
		"week":    24,
		"month":   6,
		"year":    2023,
		"weekday": 5, // Thursday, 1=Sunday numbering
	}
	for part, exp := range want {
		v, ok := out.Value(0, part)
		if !ok || v.(int64) != exp {
			t.Fatalf("%s = %v, want %d", part, v, exp)
		}
	}
}

func TestTimePartsUnknownPart(t *testing.T) {
	f := frame.New(frame.Schema{Columns: []frame.ColumnSchema{
		{Name: "start_time", Type: frame.KindTime},
	}})
	if _, err := (&TimeParts{Source: "start_time", Parts: []string{"minute"}}).Apply(context.Background(), f); err == nil {
		t.Fatal("expected unknown part error")
	}
}

func TestSurrogateIDUnique(t *testing.T) {
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatal(err)
	}
	f := frame.New(frame.Schema{Columns: []frame.ColumnSchema{
		{Name: "x", Type: frame.KindString, Nullable: true},
	}})
	for i := 0; i < 500; i++ {
		f.AppendNullRow()
	}
	out, err := (&SurrogateID{Column: "songplay_id", Node: node}).Apply(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	seen := map[int64]struct{}{}
	for row := 0; row < out.Rows(); row++ {
		v, ok := out.Value(row, "songplay_id")
		if !ok {
			t.Fatalf("row %d has no id", row)
		}
		id := v.(int64)
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = struct{}{}
	}
}
