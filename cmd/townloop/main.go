// Command townloop runs the tick simulation's command-line surface:
// init/run/status/tui/mcp, backed by the engine package.
package main

import "github.com/townloop/engine/cmd/townloop/cli"

func main() {
	cli.Execute()
}
