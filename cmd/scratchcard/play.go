// File: play.go
package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"scratchCard/internal/card"
	"scratchCard/internal/config"
	"scratchCard/internal/terminal"
)

func playCmd() *cobra.Command {
	var radius int

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Scratch a card in the terminal with the mouse",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			catalog, err := card.LoadCatalog(cfg.PrizesFile)
			if err != nil {
				return err
			}
			prize := catalog.Pick(rand.New(rand.NewSource(time.Now().UnixNano())))

			screen, err := tcell.NewScreen()
			if err != nil {
				return err
			}
			if err := screen.Init(); err != nil {
				return err
			}

			host, err := terminal.New(screen, prize, terminal.Options{
				CardWidth:  cfg.CardWidth,
				CardHeight: cfg.CardHeight,
				Radius:     radius,
				Threshold:  cfg.WinThreshold,
			})
			if err != nil {
				screen.Fini()
				return err
			}
			err = host.Run()
			screen.Fini()
			if err != nil {
				return err
			}

			if host.Won() {
				fmt.Fprintf(cmd.OutOrStdout(), "You won: %s\n", prize.Label)
			}
			return nil
		},
	}
	// Terminal cells are much coarser than canvas pixels, hence the small default.
	cmd.Flags().IntVar(&radius, "radius", 3, "brush radius in half-cells")
	return cmd
}
