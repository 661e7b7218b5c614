// File: simulate.go
package simulate

import (
	"fmt"
	"math"
	"math/rand"

	"scratchCard/internal/reveal"
)

// Options control a headless run.
type Options struct {
	Width, Height int
	Radius        int
	Threshold     float64
	Strokes       int // stroke centres laid out on a grid
	Steps         int // pointer moves per stroke
	Jitter        int // max random offset per move, 0 for a straight line
	Seed          int64
}

// Sample is the coverage observed after one pointer event.
type Sample struct {
	Stroke   int
	Revealed float64
	Won      bool
}

// Report summarises a run.
type Report struct {
	Events   int
	WinEvent int // index into Samples, -1 when the threshold was never crossed
	Revealed float64
	Samples  []Sample
	Surface  *reveal.Surface
}

// Run scratches the card with Strokes short horizontal strokes spread over an
// AutoGrid layout.
func Run(opts Options) (*Report, error) {
	s, err := reveal.New(opts.Width, opts.Height,
		reveal.WithRadius(opts.Radius),
		reveal.WithThreshold(opts.Threshold),
	)
	if err != nil {
		return nil, err
	}
	if opts.Strokes <= 0 {
		return nil, fmt.Errorf("simulate: strokes must be positive, got %d", opts.Strokes)
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	cols, rows := AutoGrid(opts.Strokes)
	cellW := float64(opts.Width) / float64(cols)
	cellH := float64(opts.Height) / float64(rows)
	step := 1
	if opts.Steps > 0 {
		step = int(math.Max(1, cellW/float64(opts.Steps)))
	}

	rep := &Report{WinEvent: -1, Surface: s}
	record := func(stroke int, u reveal.Update) {
		if u.Won {
			rep.WinEvent = len(rep.Samples)
		}
		rep.Samples = append(rep.Samples, Sample{Stroke: stroke, Revealed: u.Revealed, Won: u.Won})
	}

	for i := 0; i < opts.Strokes; i++ {
		col, row := i%cols, i/cols
		x := int(float64(col)*cellW + cellW/4)
		y := int(float64(row)*cellH + cellH/2)

		record(i, s.BeginStroke(x, y))
		for j := 0; j < opts.Steps; j++ {
			x += step
			if opts.Jitter > 0 {
				x += rng.Intn(2*opts.Jitter+1) - opts.Jitter
				y += rng.Intn(2*opts.Jitter+1) - opts.Jitter
			}
			record(i, s.ContinueStroke(x, y))
		}
		s.EndStroke()
	}

	rep.Events = len(rep.Samples)
	rep.Revealed = s.SampleCoverage()
	return rep, nil
}

// AutoGrid computes a grid of cols×rows to neatly hold n items
func AutoGrid(n int) (cols, rows int) {
	if n <= 0 {
		return 0, 0
	}
	cols = int(math.Ceil(math.Sqrt(float64(n))))
	rows = int(math.Ceil(float64(n) / float64(cols)))
	return
}
