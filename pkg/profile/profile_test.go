package profile

import (
	"strings"
	"testing"

	"github.com/audiolake/audiolake/pkg/frame"
)

func TestCollector(t *testing.T) {
	s := frame.Schema{Columns: []frame.ColumnSchema{
		{Name: "page", Type: frame.KindString, Nullable: true},
		{Name: "ts", Type: frame.KindInt, Nullable: true},
	}}
	f := frame.New(s)
	for i := 0; i < 4; i++ {
		f.AppendNullRow()
	}
	_ = f.SetCell(0, "page", "NextSong")
	_ = f.SetCell(1, "page", "NextSong")
	_ = f.SetCell(2, "page", "Home")
	// row 3 page null
	_ = f.SetCell(0, "ts", int64(10))
	_ = f.SetCell(1, "ts", int64(30))

	c := NewCollector(s, 3)
	c.ConsumeFrame(f)

	page := c.cols[0]
	if page.Str.Count != 3 || page.Str.Nulls != 1 {
		t.Fatalf("page count=%d nulls=%d", page.Str.Count, page.Str.Nulls)
	}
	if page.Str.Freqs["NextSong"] != 2 {
		t.Fatalf("NextSong freq = %d", page.Str.Freqs["NextSong"])
	}
	ts := c.cols[1]
	if ts.Num.Count != 2 || ts.Num.Nulls != 2 {
		t.Fatalf("ts count=%d nulls=%d", ts.Num.Count, ts.Num.Nulls)
	}
	if ts.Num.Min != 10 || ts.Num.Max != 30 {
		t.Fatalf("ts min=%v max=%v", ts.Num.Min, ts.Num.Max)
	}

	report := c.ReportText()
	if !strings.Contains(report, "page") || !strings.Contains(report, "NextSong") {
		t.Fatalf("report missing fields:\n%s", report)
	}
}
