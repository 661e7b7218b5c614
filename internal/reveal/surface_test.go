package reveal

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// disk15 is the number of integer points within distance 15 of a centre.
const disk15 = 709

func newSurface(t *testing.T, w, h int, opts ...Option) *Surface {
	t.Helper()
	s, err := New(w, h, opts...)
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	t.Run("fully occluded", func(t *testing.T) {
		s := newSurface(t, 100, 100)
		st := s.State()
		assert.Equal(t, 10000, st.TotalPixels)
		assert.Equal(t, 10000, st.OccludedCount)
		assert.False(t, st.HasWon)
		assert.Zero(t, s.SampleCoverage())
		assert.Equal(t, DefaultRadius, s.Radius())
		assert.Equal(t, DefaultThreshold, s.Threshold())
		assert.Equal(t, 10000, s.scanOccluded())
	})

	tests := []struct {
		name string
		w, h int
	}{
		{"zero width", 0, 10},
		{"zero height", 10, 0},
		{"negative", -1, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.w, tt.h)
			assert.ErrorIs(t, err, ErrInvalidDimensions)
			assert.Nil(t, s)
		})
	}
}

func TestErase(t *testing.T) {
	t.Run("disk area", func(t *testing.T) {
		s := newSurface(t, 100, 100)
		n := s.Erase(50, 50, 15)
		assert.Equal(t, disk15, n)
		assert.Equal(t, 10000-disk15, s.OccludedCount())
		assert.InDelta(t, math.Pi*15*15/10000, s.SampleCoverage(), 0.001)
		assert.False(t, s.CheckWin())
	})

	t.Run("idempotent", func(t *testing.T) {
		s := newSurface(t, 100, 100)
		s.Erase(40, 40, 15)
		once := s.OccludedCount()
		assert.Zero(t, s.Erase(40, 40, 15))
		assert.Equal(t, once, s.OccludedCount())
		assert.Equal(t, once, s.scanOccluded())
	})

	t.Run("zero radius clears one pixel", func(t *testing.T) {
		s := newSurface(t, 10, 10)
		assert.Equal(t, 1, s.Erase(3, 4, 0))
		assert.False(t, s.Occluded(3, 4))
		assert.True(t, s.Occluded(4, 4))
	})

	t.Run("clamps out of range centre", func(t *testing.T) {
		s := newSurface(t, 100, 100)
		require.NotPanics(t, func() { s.Erase(-50, -50, 15) })
		assert.Less(t, s.OccludedCount(), 10000)
		for y := 0; y < 100; y++ {
			for x := 0; x < 100; x++ {
				if !s.Occluded(x, y) {
					assert.LessOrEqual(t, x*x+y*y, 15*15, "pixel (%d,%d) outside brush", x, y)
				}
			}
		}
		assert.False(t, s.Occluded(0, 0))
	})

	t.Run("clamps past far corner", func(t *testing.T) {
		s := newSurface(t, 20, 10)
		require.NotPanics(t, func() { s.Erase(1000, 1000, 3) })
		assert.False(t, s.Occluded(19, 9))
		assert.Equal(t, s.scanOccluded(), s.OccludedCount())
	})
}

func TestStrokes(t *testing.T) {
	t.Run("continue without begin is a no-op", func(t *testing.T) {
		s := newSurface(t, 50, 50)
		u := s.ContinueStroke(25, 25)
		assert.False(t, u.Applied)
		assert.Equal(t, 2500, s.OccludedCount())
		s.EndStroke()
		assert.False(t, s.Stroking())
	})

	t.Run("begin erases immediately", func(t *testing.T) {
		s := newSurface(t, 50, 50, WithRadius(2))
		u := s.BeginStroke(10, 10)
		assert.True(t, u.Applied)
		assert.True(t, s.Stroking())
		assert.False(t, s.Occluded(10, 10))
		assert.Greater(t, u.Revealed, 0.0)
	})

	t.Run("second begin is ignored", func(t *testing.T) {
		s := newSurface(t, 50, 50, WithRadius(2))
		s.BeginStroke(10, 10)
		u := s.BeginStroke(40, 40)
		assert.False(t, u.Applied)
		assert.True(t, s.Occluded(40, 40))
	})

	t.Run("end stops erasing", func(t *testing.T) {
		s := newSurface(t, 50, 50, WithRadius(2))
		s.BeginStroke(10, 10)
		s.ContinueStroke(12, 10)
		s.EndStroke()
		before := s.OccludedCount()
		s.ContinueStroke(40, 40)
		assert.Equal(t, before, s.OccludedCount())
		assert.True(t, s.Occluded(40, 40))
	})

	t.Run("negative radius option", func(t *testing.T) {
		s := newSurface(t, 10, 10, WithRadius(-4))
		assert.Zero(t, s.Radius())
	})
}

func TestCheckWin(t *testing.T) {
	t.Run("scenario", func(t *testing.T) {
		s := newSurface(t, 100, 100)
		centres := [][2]int{{16, 16}, {50, 16}, {84, 16}, {16, 50}, {50, 50}}
		for i, c := range centres[:4] {
			assert.Equal(t, disk15, s.Erase(c[0], c[1], 15), "centre %d overlaps", i)
			s.SampleCoverage()
			assert.False(t, s.CheckWin())
		}
		s.Erase(centres[4][0], centres[4][1], 15)
		assert.InDelta(t, 0.3545, s.SampleCoverage(), 1e-9)
		assert.True(t, s.CheckWin())
		assert.False(t, s.CheckWin())
		assert.True(t, s.HasWon())
	})

	t.Run("threshold is strict", func(t *testing.T) {
		s := newSurface(t, 100, 100)
		for i := 0; i < 3000; i++ {
			s.Erase(i%100, i/100, 0)
		}
		assert.Equal(t, 0.30, s.SampleCoverage())
		assert.False(t, s.CheckWin())

		s.Erase(0, 30, 0)
		assert.InDelta(t, 0.3001, s.SampleCoverage(), 1e-12)
		assert.True(t, s.CheckWin())
	})

	t.Run("custom threshold", func(t *testing.T) {
		s := newSurface(t, 10, 10, WithThreshold(0.5), WithRadius(0))
		s.BeginStroke(0, 0)
		for i := 1; i < 50; i++ {
			u := s.ContinueStroke(i%10, i/10)
			assert.False(t, u.Won)
		}
		u := s.ContinueStroke(0, 5)
		assert.True(t, u.Won)
	})
}

func TestRandomStrokes(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := newSurface(t, 120, 80)

	var (
		last float64
		wins int
	)
	for stroke := 0; stroke < 40; stroke++ {
		x, y := rng.Intn(200)-40, rng.Intn(160)-40
		u := s.BeginStroke(x, y)
		if u.Won {
			wins++
		}
		for step := 0; step < 10; step++ {
			x += rng.Intn(21) - 10
			y += rng.Intn(21) - 10
			u = s.ContinueStroke(x, y)
			require.GreaterOrEqual(t, u.Revealed, last, "revealed fraction went backwards")
			last = u.Revealed
			if u.Won {
				wins++
			}
		}
		s.EndStroke()
	}

	assert.Equal(t, s.scanOccluded(), s.OccludedCount())
	assert.True(t, s.HasWon())
	assert.Equal(t, 1, wins)
}

func TestMaskIsCopy(t *testing.T) {
	s := newSurface(t, 8, 8)
	m := s.Mask()
	m.Pix[0] = 0
	assert.True(t, s.Occluded(0, 0))
	assert.False(t, s.Occluded(-1, 0))
}
