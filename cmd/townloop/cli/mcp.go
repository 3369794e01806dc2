package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/townloop/engine/engine"
	"github.com/townloop/engine/mcpserver"
	"github.com/townloop/engine/slogger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Host the observer/commander surface as an MCP server over stdio",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := slogger.WithLogger(context.Background(), rootLogger())
	narrate, err := buildNarrator(ctx, cfg)
	if err != nil {
		return err
	}
	e, err := engine.New(ctx, store, cfg, buildReasoner(cfg), narrate)
	if err != nil {
		return err
	}

	srv := mcpserver.New(e, e)
	return srv.Serve()
}
