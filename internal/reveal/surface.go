// File: surface.go
package reveal

import (
	"errors"
	"image"
)

const (
	// DefaultRadius is the brush radius in surface pixels.
	DefaultRadius = 15
	// DefaultThreshold is the revealed fraction that must be exceeded to win.
	DefaultThreshold = 0.30

	opaque      = 0xff
	transparent = 0x00
)

// ErrInvalidDimensions is returned by New for a non-positive width or height.
var ErrInvalidDimensions = errors.New("reveal: width and height must be positive")

// State is a snapshot of the reveal bookkeeping.
type State struct {
	OccludedCount int
	TotalPixels   int
	HasWon        bool
}

// Revealed returns the fraction of the mask that has been scratched off.
func (s State) Revealed() float64 {
	if s.TotalPixels == 0 {
		return 0
	}
	return float64(s.TotalPixels-s.OccludedCount) / float64(s.TotalPixels)
}

// Update is the outcome of one pointer event.
type Update struct {
	Applied  bool    // false when the event was a no-op
	Revealed float64 // revealed fraction sampled after the erase
	Won      bool    // true only for the event that crossed the threshold
}

// Option customises a Surface.
type Option func(*Surface)

// WithRadius overrides the brush radius. Negative values are treated as zero.
func WithRadius(r int) Option {
	return func(s *Surface) {
		if r < 0 {
			r = 0
		}
		s.radius = r
	}
}

// WithThreshold overrides the win threshold.
func WithThreshold(t float64) Option {
	return func(s *Surface) { s.threshold = t }
}

// Surface is an erasable mask over a hidden prize layer.
// It is not safe for concurrent use; hosts serialize calls per surface.
type Surface struct {
	mask      *image.Alpha
	occluded  int
	total     int
	hasWon    bool
	stroking  bool
	radius    int
	threshold float64
}

// New allocates a width×height surface with every mask pixel occluded.
func New(width, height int, opts ...Option) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	mask := image.NewAlpha(image.Rect(0, 0, width, height))
	for i := range mask.Pix {
		mask.Pix[i] = opaque
	}
	s := &Surface{
		mask:      mask,
		occluded:  width * height,
		total:     width * height,
		radius:    DefaultRadius,
		threshold: DefaultThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Surface) Width() int { return s.mask.Rect.Dx() }
func (s *Surface) Height() int { return s.mask.Rect.Dy() }
func (s *Surface) Radius() int { return s.radius }
func (s *Surface) Threshold() float64 { return s.threshold }
func (s *Surface) Stroking() bool { return s.stroking }
func (s *Surface) HasWon() bool { return s.hasWon }
func (s *Surface) TotalPixels() int { return s.total }
func (s *Surface) OccludedCount() int { return s.occluded }

// State returns the current reveal bookkeeping.
func (s *Surface) State() State {
	return State{OccludedCount: s.occluded, TotalPixels: s.total, HasWon: s.hasWon}
}

// Occluded reports whether the mask still covers (x, y). Out-of-range points report false.
func (s *Surface) Occluded(x, y int) bool {
	if !(image.Point{X: x, Y: y}).In(s.mask.Rect) {
		return false
	}
	return s.mask.Pix[s.mask.PixOffset(x, y)] != transparent
}

// Mask returns a copy of the mask's alpha channel, opaque where the cover remains.
func (s *Surface) Mask() *image.Alpha {
	out := image.NewAlpha(s.mask.Rect)
	copy(out.Pix, s.mask.Pix)
	return out
}

// BeginStroke starts a stroke and erases under the pointer. A second call while a
// stroke is active is ignored.
func (s *Surface) BeginStroke(x, y int) Update {
	if s.stroking {
		return Update{Revealed: s.SampleCoverage()}
	}
	s.stroking = true
	return s.apply(x, y)
}

// ContinueStroke erases under the pointer if a stroke is active.
func (s *Surface) ContinueStroke(x, y int) Update {
	if !s.stroking {
		return Update{Revealed: s.SampleCoverage()}
	}
	return s.apply(x, y)
}

// EndStroke finishes the active stroke, if any.
func (s *Surface) EndStroke() {
	s.stroking = false
}

// erase, sample and check in one step so a win is never judged on a stale sample.
func (s *Surface) apply(x, y int) Update {
	s.Erase(x, y, s.radius)
	revealed := s.SampleCoverage()
	return Update{Applied: true, Revealed: revealed, Won: s.CheckWin()}
}

// Erase clears every mask pixel within radius of (x, y) and returns how many pixels
// changed state. The centre is clamped into the surface first.
func (s *Surface) Erase(x, y, radius int) int {
	w, h := s.Width(), s.Height()
	x = clamp(x, 0, w-1)
	y = clamp(y, 0, h-1)
	if radius < 0 {
		radius = 0
	}

	r2 := radius * radius
	x0, x1 := clamp(x-radius, 0, w-1), clamp(x+radius, 0, w-1)
	y0, y1 := clamp(y-radius, 0, h-1), clamp(y+radius, 0, h-1)

	cleared := 0
	for py := y0; py <= y1; py++ {
		dy := py - y
		row := s.mask.PixOffset(0, py)
		for px := x0; px <= x1; px++ {
			dx := px - x
			if dx*dx+dy*dy > r2 {
				continue
			}
			if s.mask.Pix[row+px] == transparent {
				continue
			}
			s.mask.Pix[row+px] = transparent
			cleared++
		}
	}
	s.occluded -= cleared
	return cleared
}

// SampleCoverage returns the revealed fraction. The occluded count is kept current by
// Erase, so this does not rescan the mask.
func (s *Surface) SampleCoverage() float64 {
	return s.State().Revealed()
}

// CheckWin returns true exactly once: on the first call that observes a revealed
// fraction strictly above the threshold.
func (s *Surface) CheckWin() bool {
	if s.hasWon || s.SampleCoverage() <= s.threshold {
		return false
	}
	s.hasWon = true
	return true
}

// scanOccluded counts covered pixels directly from the mask.
func (s *Surface) scanOccluded() int {
	n := 0
	for _, a := range s.mask.Pix {
		if a != transparent {
			n++
		}
	}
	return n
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
