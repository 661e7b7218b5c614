// File: simulate.go
package main

import (
	"fmt"
	"io"
	"math/rand"
	"os"

	"github.com/spf13/cobra"

	"scratchCard/internal/card"
	"scratchCard/internal/config"
	"scratchCard/internal/simulate"
)

type simulateFlags struct {
	strokes int
	steps   int
	jitter  int
	seed    int64
	out     string
}

func simulateCmd() *cobra.Command {
	var f simulateFlags

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Scratch a card headlessly and report coverage",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return runSimulate(cmd.OutOrStdout(), cfg, f)
		},
	}
	cmd.Flags().IntVar(&f.strokes, "strokes", 9, "number of strokes")
	cmd.Flags().IntVar(&f.steps, "steps", 6, "pointer moves per stroke")
	cmd.Flags().IntVar(&f.jitter, "jitter", 3, "max random offset per move")
	cmd.Flags().Int64Var(&f.seed, "seed", 1, "random seed")
	cmd.Flags().StringVar(&f.out, "out", "", "write the final card as PNG to this path")
	return cmd
}

func runSimulate(w io.Writer, cfg config.Config, f simulateFlags) error {
	rep, err := simulate.Run(simulate.Options{
		Width:     cfg.CardWidth,
		Height:    cfg.CardHeight,
		Radius:    cfg.BrushRadius,
		Threshold: cfg.WinThreshold,
		Strokes:   f.strokes,
		Steps:     f.steps,
		Jitter:    f.jitter,
		Seed:      f.seed,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "card %dx%d, radius %d, threshold %.2f\n",
		cfg.CardWidth, cfg.CardHeight, cfg.BrushRadius, cfg.WinThreshold)
	fmt.Fprintf(w, "events: %d\n", rep.Events)
	fmt.Fprintf(w, "revealed: %.2f%%\n", rep.Revealed*100)
	if rep.WinEvent >= 0 {
		s := rep.Samples[rep.WinEvent]
		fmt.Fprintf(w, "won at event %d (stroke %d, %.2f%% revealed)\n", rep.WinEvent+1, s.Stroke+1, s.Revealed*100)
	} else {
		fmt.Fprintln(w, "not won")
	}

	if f.out == "" {
		return nil
	}
	catalog, err := card.LoadCatalog(cfg.PrizesFile)
	if err != nil {
		return err
	}
	prize := catalog.Pick(rand.New(rand.NewSource(f.seed)))
	rcfg, err := card.NewRenderConfig(cfg.CardWidth, cfg.CardHeight)
	if err != nil {
		return err
	}
	layers, err := card.NewLayers(rcfg, prize)
	if err != nil {
		return err
	}
	img, err := layers.Composite(rep.Surface.Mask())
	if err != nil {
		return err
	}
	data, err := card.EncodePNG(img)
	if err != nil {
		return err
	}
	if err := os.WriteFile(f.out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", f.out, err)
	}
	fmt.Fprintf(w, "wrote %s (%s)\n", f.out, prize.Label)
	return nil
}
