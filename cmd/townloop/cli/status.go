package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/townloop/engine/engine"
)

var statusField string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the current world state",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusField, "field", "", "print only this dotted JSON path (gjson syntax) instead of the full report")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	e, err := engine.New(ctx, store, cfg, buildReasoner(cfg), nil)
	if err != nil {
		return err
	}

	world, err := e.GetWorldState(ctx)
	if err != nil {
		return err
	}
	agents, err := e.GetAllAgents(ctx)
	if err != nil {
		return err
	}

	worldJSON, err := json.Marshal(world)
	if err != nil {
		return err
	}
	report := string(worldJSON)
	report, err = sjson.Set(report, "TimeOfDay", string(world.TimeOfDay()))
	if err != nil {
		return err
	}
	report, err = sjson.Set(report, "agent_count", len(agents))
	if err != nil {
		return err
	}
	agentNames := make([]string, len(agents))
	for i, a := range agents {
		agentNames[i] = a.Name
	}
	report, err = sjson.Set(report, "agents", agentNames)
	if err != nil {
		return err
	}

	if statusField != "" {
		fmt.Println(gjson.Get(report, statusField).String())
		return nil
	}

	useColor := isatty.IsTerminal(os.Stdout.Fd())
	label := color.New(color.FgCyan, color.Bold)
	if !useColor {
		label.DisableColor()
	}
	label.Printf("tick")
	fmt.Printf(" %d   ", gjson.Get(report, "Tick").Int())
	label.Printf("time")
	fmt.Printf(" %s   ", gjson.Get(report, "TimeOfDay").String())
	label.Printf("weather")
	fmt.Printf(" %s   ", gjson.Get(report, "Weather").String())
	label.Printf("agents")
	fmt.Printf(" %d\n", gjson.Get(report, "agent_count").Int())
	for _, name := range agentNames {
		fmt.Printf("  - %s\n", name)
	}
	return nil
}
