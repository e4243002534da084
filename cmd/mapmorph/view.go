package main

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/phanxgames/mapmorph"
	"github.com/spf13/cobra"
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Open an interactive transition viewer",
	Long: `Opens a window on a demo location graph.

  Left/Right   select a location
  Enter/Down   zoom into the selection
  Up/Backspace zoom out
  F            toggle a deliberately degraded cross-fade`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return runViewer(cfg)
	},
}

func runViewer(cfg mapmorph.Config) error {
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	canvas, err := mapmorph.NewCanvas(int(cfg.Width), int(cfg.Height))
	if err != nil {
		return err
	}
	v := &viewer{
		graph:  newDemoGraph(),
		orch:   mapmorph.NewOrchestrator(opts),
		canvas: canvas,
	}
	v.orch.UpdateLastLevel(v.graph.level)

	ebiten.SetWindowSize(int(cfg.Width), int(cfg.Height))
	ebiten.SetWindowTitle("mapmorph")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(v); err != nil {
		return fmt.Errorf("viewer: %w", err)
	}
	return nil
}

// viewer is the ebiten.Game driving the demo.
type viewer struct {
	graph    *demoGraph
	orch     *mapmorph.Orchestrator
	canvas   *mapmorph.Canvas
	degraded bool
}

func (v *viewer) Update() error {
	if v.orch.IsActive() {
		return nil
	}
	g := v.graph
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyRight):
		g.cycle(1)
	case inpututil.IsKeyJustPressed(ebiten.KeyLeft):
		g.cycle(-1)
	case inpututil.IsKeyJustPressed(ebiten.KeyF):
		v.degraded = !v.degraded
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter), inpututil.IsKeyJustPressed(ebiten.KeyDown):
		if g.level+1 < mapmorph.LevelCount {
			sel := g.next
			v.move(g.down, mapmorph.Move{FromLevel: g.level, ToLevel: g.level + 1, FromIndex: sel, ToIndex: sel})
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyUp), inpututil.IsKeyJustPressed(ebiten.KeyBackspace):
		if g.level > mapmorph.LevelRing {
			sel := g.trail[g.level-1].next
			v.move(g.up, mapmorph.Move{FromLevel: g.level, ToLevel: g.level - 1, FromIndex: sel, ToIndex: sel})
		}
	}
	return nil
}

// move changes level the way a game would: prepare with the current state,
// mutate the graph, then begin with the new state. With degraded set the
// prepare step is skipped and Begin falls back to a cross-fade.
func (v *viewer) move(change func(), m mapmorph.Move) {
	if !v.degraded {
		v.orch.Prepare(mapmorph.Capture(v.graph), m)
	}
	change()
	v.orch.Begin(mapmorph.Capture(v.graph))
}

func (v *viewer) Draw(screen *ebiten.Image) {
	v.canvas.BeginFrame()
	v.orch.Draw(v.canvas, mapmorph.Capture(v.graph))
	w, _ := v.canvas.Size()
	v.canvas.Text(v.graph.title(), mapmorph.Vec2{X: w / 2, Y: 16}, 18, mapmorph.ColorWhite)
	v.canvas.Present(screen)
}

func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	v.canvas.Resize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}
