package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/townloop/engine/engine"
	"github.com/townloop/engine/slogger"
)

var runInjectionsDir string

var runCmd = &cobra.Command{
	Use:   "run <n>",
	Short: "Advance the simulation by n ticks",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&runInjectionsDir, "injections", "", "directory watched for observer-command files while running (optional)")
}

// injection is the file format an operator drops into --injections: one
// YAML document naming a single observer command to enqueue. The file is
// removed once consumed.
type injection struct {
	Kind       string `yaml:"Kind"` // trigger_event, set_weather, dream
	Text       string `yaml:"Text"`
	Agent      string `yaml:"Agent"`
	Weather    string `yaml:"Weather"`
}

func runRun(cmd *cobra.Command, args []string) error {
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return fmt.Errorf("n must be a positive integer, got %q", args[0])
	}

	cfg, err := loadConfig()
	if err != nil {
		os.Exit(2)
	}
	store, err := openStore(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer store.Close()

	ctx := slogger.WithLogger(context.Background(), rootLogger())

	narrate, err := buildNarrator(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(3)
	}
	e, err := engine.New(ctx, store, cfg, buildReasoner(cfg), narrate)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if runInjectionsDir != "" {
		stop := watchInjections(ctx, e, runInjectionsDir)
		defer stop()
	}

	if err := e.Run(ctx, n); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if ctx.Err() != nil {
			os.Exit(3)
		}
		os.Exit(2)
	}
	return nil
}

// watchInjections uses fsnotify to wake on new files under dir matching
// *.yaml, applying each as an Engine command.
func watchInjections(ctx context.Context, e *engine.Engine, dir string) func() {
	if err := os.MkdirAll(dir, 0755); err != nil {
		slogger.Ctx(ctx).Warn("failed to create injections directory", "dir", dir, "error", err)
		return func() {}
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slogger.Ctx(ctx).Warn("failed to start injection watcher", "error", err)
		return func() {}
	}
	if err := watcher.Add(dir); err != nil {
		slogger.Ctx(ctx).Warn("failed to watch injections directory", "dir", dir, "error", err)
		watcher.Close()
		return func() {}
	}

	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
					continue
				}
				match, _ := doublestar.Match("*.yaml", filepath.Base(ev.Name))
				if !match {
					continue
				}
				applyInjection(ctx, e, ev.Name)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slogger.Ctx(ctx).Warn("injection watcher error", "error", err)
			}
		}
	}()
	return func() { watcher.Close() }
}

func applyInjection(ctx context.Context, e *engine.Engine, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	var in injection
	if err := yaml.Unmarshal(data, &in); err != nil {
		slogger.Ctx(ctx).Warn("failed to parse injection file", "path", path, "error", err)
		os.Remove(path)
		return
	}
	switch in.Kind {
	case "trigger_event":
		_ = e.TriggerEvent(ctx, in.Text)
	case "set_weather":
		_ = e.SetWeather(ctx, weatherFromString(in.Weather))
	case "dream":
		_ = e.SendDream(ctx, in.Agent, in.Text)
	default:
		slogger.Ctx(ctx).Warn("unknown injection kind", "path", path, "kind", in.Kind)
	}
	os.Remove(path)
}
