// Package terminal hosts a scratch card in a terminal, driven by the mouse.
package terminal

import (
	"fmt"
	"image/color"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"scratchCard/internal/card"
	"scratchCard/internal/reveal"
)

// Each cell shows two stacked surface pixels: the upper half block takes the
// foreground colour and the lower half the background.
const halfBlock = '▀'

// Options configure a Host.
type Options struct {
	CardWidth, CardHeight int // render size before scaling to the terminal
	Radius                int
	Threshold             float64
	Logger                *zap.Logger
	OnWin                 func(card.Prize)
}

// Host forwards mouse events from a tcell screen to a reveal surface.
type Host struct {
	screen  tcell.Screen
	surface *reveal.Surface
	prize   card.Prize
	layers  *card.Layers
	logger  *zap.Logger
	onWin   func(card.Prize)

	revealed float64
	won      bool
}

// New sizes a surface to the screen (less one status row) and paints the card layers
// at the configured size before scaling them down to the grid.
func New(screen tcell.Screen, prize card.Prize, opts Options) (*Host, error) {
	cols, rows := screen.Size()
	w, h := cols, (rows-1)*2
	surface, err := reveal.New(w, h, reveal.WithRadius(opts.Radius), reveal.WithThreshold(opts.Threshold))
	if err != nil {
		return nil, fmt.Errorf("terminal %dx%d too small: %w", cols, rows, err)
	}

	rcfg, err := card.NewRenderConfig(opts.CardWidth, opts.CardHeight)
	if err != nil {
		return nil, err
	}
	full, err := card.NewLayers(rcfg, prize)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Host{
		screen:  screen,
		surface: surface,
		prize:   prize,
		layers: &card.Layers{
			Prize: card.Scale(full.Prize, w, h),
			Cover: card.Scale(full.Cover, w, h),
		},
		logger: logger,
		onWin:  opts.OnWin,
	}, nil
}

// Surface exposes the reveal surface.
func (h *Host) Surface() *reveal.Surface { return h.surface }

// Won reports whether the win signal has fired.
func (h *Host) Won() bool { return h.won }

// Run draws and processes events until the user quits or the screen is finalised.
func (h *Host) Run() error {
	h.screen.EnableMouse(tcell.MouseButtonEvents | tcell.MouseDragEvents)
	defer h.screen.DisableMouse()

	for {
		if err := h.Draw(); err != nil {
			return err
		}
		ev := h.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if h.HandleEvent(ev) {
			return nil
		}
	}
}

// HandleEvent applies one terminal event and reports whether the host should quit.
func (h *Host) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC:
			return true
		case ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q'):
			return true
		}
	case *tcell.EventMouse:
		h.handleMouse(ev)
	case *tcell.EventResize:
		// The surface keeps its size for the whole session.
		h.screen.Sync()
	}
	return false
}

func (h *Host) handleMouse(ev *tcell.EventMouse) {
	cx, cy := ev.Position()
	x, y := cx, cy*2

	if ev.Buttons()&tcell.Button1 == 0 {
		h.surface.EndStroke()
		return
	}

	var u reveal.Update
	if h.surface.Stroking() {
		u = h.surface.ContinueStroke(x, y)
	} else {
		u = h.surface.BeginStroke(x, y)
	}
	h.revealed = u.Revealed
	if u.Won {
		h.won = true
		h.logger.Info("card won", zap.String("prize_id", h.prize.ID), zap.Float64("revealed", u.Revealed))
		if h.onWin != nil {
			h.onWin(h.prize)
		}
	}
}

// Draw renders the composited card and the status row.
func (h *Host) Draw() error {
	img, err := h.layers.Composite(h.surface.Mask())
	if err != nil {
		return err
	}
	w, ph := h.surface.Width(), h.surface.Height()
	for cy := 0; cy*2 < ph; cy++ {
		for cx := 0; cx < w; cx++ {
			top := img.RGBAAt(cx, cy*2)
			bottom := top
			if cy*2+1 < ph {
				bottom = img.RGBAAt(cx, cy*2+1)
			}
			style := tcell.StyleDefault.Foreground(toColor(top)).Background(toColor(bottom))
			h.screen.SetContent(cx, cy, halfBlock, nil, style)
		}
	}
	h.drawStatus(ph / 2)
	h.screen.Show()
	return nil
}

func (h *Host) drawStatus(row int) {
	cols, _ := h.screen.Size()
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
	text := StatusLine(h.revealed, h.won, h.prize)
	if h.won {
		style = style.Foreground(tcell.ColorBlack).Background(tcell.ColorGold).Bold(true)
	}
	runes := []rune(text)
	for x := 0; x < cols; x++ {
		r := ' '
		if x < len(runes) {
			r = runes[x]
		}
		h.screen.SetContent(x, row, r, nil, style)
	}
}

// StatusLine is the text shown under the card.
func StatusLine(revealed float64, won bool, prize card.Prize) string {
	if won {
		return fmt.Sprintf(" You won: %s! (q to quit)", prize.Label)
	}
	return fmt.Sprintf(" %d%% revealed - drag with the left button to scratch (q to quit)", int(revealed*100))
}

func toColor(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
