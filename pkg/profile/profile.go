// Package profile computes per-column summaries of a dataset, fed one
// frame chunk at a time.
package profile

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/audiolake/audiolake/pkg/frame"
)

type NumStats struct {
	Count int
	Nulls int
	Min   float64
	Max   float64
	Sum   float64
}

type StringStats struct {
	Count int
	Nulls int
	Freqs map[string]int
}

type ColumnProfile struct {
	Name string
	Kind frame.Kind
	Num  *NumStats
	Str  *StringStats
}

type Collector struct {
	cols  []ColumnProfile
	index map[string]int
	topK  int
}

func NewCollector(schema frame.Schema, topK int) *Collector {
	c := &Collector{index: make(map[string]int), topK: topK}
	c.cols = make([]ColumnProfile, len(schema.Columns))
	for i, cs := range schema.Columns {
		cp := ColumnProfile{Name: cs.Name, Kind: cs.Type}
		switch cs.Type {
		case frame.KindInt, frame.KindFloat:
			cp.Num = &NumStats{Min: math.Inf(1), Max: math.Inf(-1)}
		default:
			cp.Str = &StringStats{Freqs: make(map[string]int)}
		}
		c.cols[i] = cp
		c.index[cs.Name] = i
	}
	return c
}

func (c *Collector) ConsumeFrame(f *frame.Frame) {
	for _, cs := range f.Schema().Columns {
		idx, ok := c.index[cs.Name]
		if !ok {
			continue
		}
		cp := &c.cols[idx]
		for row := 0; row < f.Rows(); row++ {
			v, ok := f.Value(row, cs.Name)
			if !ok {
				if cp.Num != nil {
					cp.Num.Nulls++
				} else {
					cp.Str.Nulls++
				}
				continue
			}
			switch t := v.(type) {
			case int64:
				cp.Num.observe(float64(t))
			case float64:
				cp.Num.observe(t)
			case string:
				cp.Str.Count++
				if c.topK > 0 {
					cp.Str.Freqs[t]++
				}
			default:
				cp.Str.Count++
			}
		}
	}
}

func (n *NumStats) observe(v float64) {
	n.Count++
	if v < n.Min {
		n.Min = v
	}
	if v > n.Max {
		n.Max = v
	}
	n.Sum += v
}

func (c *Collector) ReportText() string {
	var b strings.Builder
	b.WriteString("Profile Summary\n")
	for _, cp := range c.cols {
		fmt.Fprintf(&b, "- %s (%v): ", cp.Name, cp.Kind)
		switch {
		case cp.Num != nil:
			mean := 0.0
			if cp.Num.Count > 0 {
				mean = cp.Num.Sum / float64(cp.Num.Count)
			}
			fmt.Fprintf(&b, "count=%d nulls=%d min=%.6g max=%.6g mean=%.6g\n",
				cp.Num.Count, cp.Num.Nulls, cp.Num.Min, cp.Num.Max, mean)
		default:
			fmt.Fprintf(&b, "count=%d nulls=%d\n", cp.Str.Count, cp.Str.Nulls)
			if len(cp.Str.Freqs) > 0 {
				type kv struct {
					k string
					v int
				}
				arr := make([]kv, 0, len(cp.Str.Freqs))
				for k, v := range cp.Str.Freqs {
					arr = append(arr, kv{k, v})
				}
				sort.Slice(arr, func(i, j int) bool {
					if arr[i].v != arr[j].v {
						return arr[i].v > arr[j].v
					}
					return arr[i].k < arr[j].k
				})
				n := c.topK
				if n > len(arr) {
					n = len(arr)
				}
				for i := 0; i < n; i++ {
					fmt.Fprintf(&b, "    %q: %d\n", arr[i].k, arr[i].v)
				}
			}
		}
	}
	return b.String()
}
