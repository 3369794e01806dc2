package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deepnoodle-ai/wonton/tui"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/townloop/engine/domain"
	"github.com/townloop/engine/engine"
	"github.com/townloop/engine/slogger"
)

var tuiRefresh time.Duration

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Attach a live terminal dashboard and run the simulation (default command)",
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().DurationVar(&tuiRefresh, "refresh", 500*time.Millisecond, "minimum time between rendered frames")
}

var terrainGlyph = map[domain.Terrain]rune{
	domain.TerrainGrass:  '.',
	domain.TerrainWater:  '~',
	domain.TerrainCoast:  ',',
	domain.TerrainSand:   ':',
	domain.TerrainStone:  '#',
	domain.TerrainForest: '^',
	domain.TerrainHill:   'n',
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()
	ctx = slogger.WithLogger(ctx, rootLogger())

	narrate, err := buildNarrator(ctx, cfg)
	if err != nil {
		return err
	}
	e, err := engine.New(ctx, store, cfg, buildReasoner(cfg), narrate)
	if err != nil {
		return err
	}

	tui.HideCursor()
	defer tui.ShowCursor()
	for ctx.Err() == nil {
		start := time.Now()
		if err := e.RunTick(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			fmt.Fprintln(os.Stderr, err)
			return err
		}
		if err := renderFrame(ctx, e); err != nil {
			return err
		}
		if elapsed := time.Since(start); elapsed < tuiRefresh {
			select {
			case <-time.After(tuiRefresh - elapsed):
			case <-ctx.Done():
			}
		}
	}
	return nil
}

// renderFrame builds the dashboard as a single View tree — a header line,
// the glyph terrain grid, and an agent roster — and hands it to wonton/tui
// for one full-screen repaint, instead of writing ANSI sequences by hand.
func renderFrame(ctx context.Context, e *engine.Engine) error {
	world, err := e.GetWorldState(ctx)
	if err != nil {
		return err
	}
	agents, err := e.GetAllAgents(ctx)
	if err != nil {
		return err
	}
	cells, err := e.GetCellsInRect(ctx, domain.Rect{
		Min: domain.Position{X: 0, Y: 0},
		Max: domain.Position{X: world.Width - 1, Y: world.Height - 1},
	})
	if err != nil {
		return err
	}

	occupied := map[domain.Position]bool{}
	for _, a := range agents {
		occupied[a.Position] = true
	}

	byRow := make(map[int][]rune, world.Height)
	for _, c := range cells {
		glyph, ok := terrainGlyph[c.Cell.Terrain]
		if !ok {
			glyph = '?'
		}
		if occupied[c.Position] {
			glyph = '@'
		}
		for len(byRow[c.Position.Y]) <= c.Position.X {
			byRow[c.Position.Y] = append(byRow[c.Position.Y], ' ')
		}
		byRow[c.Position.Y][c.Position.X] = glyph
	}
	gridRows := make([]tui.View, 0, world.Height)
	for y := 0; y < world.Height; y++ {
		gridRows = append(gridRows, tui.Text("%s", string(byRow[y])))
	}

	roster := make([]tui.View, 0, len(agents)+1)
	roster = append(roster, tui.Text("agents:").Fg(tui.ColorYellow))
	for _, a := range agents {
		status := "awake"
		switch {
		case a.Sleeping:
			status = "asleep"
		case a.InTrance():
			status = "journeying"
		}
		name := runewidth.FillRight(a.Name, 16)
		statusView := tui.Text(" %s", status)
		switch status {
		case "asleep":
			statusView = statusView.Hint()
		case "journeying":
			statusView = statusView.Style(tui.NewStyle().WithFgRGB(tui.RGB{R: 140, G: 140, B: 220}))
		}
		roster = append(roster, tui.Group(
			tui.Text("  %s %s", name, a.Position),
			statusView,
		))
	}

	header := tui.Group(
		tui.Text("townloop ").Bold().Fg(tui.ColorCyan),
		tui.Text("tick %d  %s  %s", world.Tick, world.TimeOfDay(), world.Weather).Hint(),
	)

	frame := tui.Stack(
		header,
		tui.Divider(),
		tui.Stack(gridRows...).Gap(0),
		tui.Text(""),
		tui.Stack(roster...).Gap(0),
	).Gap(0)

	tui.ClearScreen()
	tui.Print(frame)
	return nil
}
