package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/mvantol/ansuz/internal"
	"github.com/mvantol/ansuz/internal/coordinator"
	"github.com/mvantol/ansuz/internal/enrich"
	"github.com/mvantol/ansuz/internal/layout"
	"github.com/mvantol/ansuz/internal/mcpserver"
	"github.com/mvantol/ansuz/internal/promote"
	"github.com/mvantol/ansuz/internal/storage"
	"github.com/mvantol/ansuz/internal/workflow"
	pkgconfig "github.com/mvantol/ansuz/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadIfExists(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if vault := cmd.String("vault"); vault != "" {
		cfg.Vault.Path = vault
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger writes JSON logs to stderr so stdout stays free for command output.
func newLogger(cfg *internal.Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
}

func delegate(cfg *internal.Config) enrich.Enricher {
	if !cfg.Enrich.Enabled() {
		return nil
	}
	return enrich.NewHeuristic()
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func buildWorkflow(cfg *internal.Config, logger *slog.Logger) (*workflow.Workflow, *layout.Layout, storage.Provider, error) {
	l, err := layout.Resolve(cfg.Vault.Path)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := l.EnsureExists(); err != nil {
		return nil, nil, nil, err
	}
	store, err := storage.NewFS(l.Root)
	if err != nil {
		return nil, nil, nil, err
	}
	return workflow.New(store, l, delegate(cfg), logger), l, store, nil
}

func processCmd(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("usage: ansuz process <note-path>")
	}
	wf, _, _, err := buildWorkflow(cfg, newLogger(cfg))
	if err != nil {
		return err
	}
	opts := workflow.Options{
		PreviewOnly:    cmd.Bool("preview"),
		SkipEnrichment: cmd.Bool("skip-enrichment") || !cfg.Enrich.Enabled(),
	}
	res, err := wf.Process(ctx, path, opts)
	if err != nil {
		return err
	}
	return printJSON(res)
}

func batchCmd(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	b, err := coordinator.NewBatch(cfg.Vault.Path, delegate(cfg), newLogger(cfg))
	if err != nil {
		return err
	}
	opts := workflow.Options{
		PreviewOnly:    cmd.Bool("preview"),
		SkipEnrichment: !cfg.Enrich.Enabled(),
	}
	res, err := b.ProcessAll(ctx, opts)
	if err != nil {
		return err
	}
	return printJSON(res)
}

func promoteCmd(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	_, l, store, err := buildWorkflow(cfg, logger)
	if err != nil {
		return err
	}
	engine := promote.New(store, l, logger)
	res, err := engine.AutoPromote(ctx, cmd.Float("threshold"))
	if err != nil {
		return err
	}
	return printJSON(res)
}

func triageCmd(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	tr, err := coordinator.NewTriage(cfg.Vault.Path, delegate(cfg), newLogger(cfg))
	if err != nil {
		return err
	}
	report, err := tr.Report(ctx)
	if err != nil {
		return err
	}
	return printJSON(report)
}

func orphansCmd(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	o, err := coordinator.NewOrphans(cfg.Vault.Path, delegate(cfg), newLogger(cfg))
	if err != nil {
		return err
	}
	report, err := o.Remediate(ctx, !cmd.Bool("archive"))
	if err != nil {
		return err
	}
	return printJSON(report)
}

func statsCmd(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st, err := coordinator.NewStats(cfg.Vault.Path, delegate(cfg), newLogger(cfg))
	if err != nil {
		return err
	}
	defer st.Close()
	stats, err := st.Collect(ctx)
	if err != nil {
		return err
	}
	return printJSON(stats)
}

func watchCmd(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func mcpCmd(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	srv, err := mcpserver.New(cfg.Vault.Path, delegate(cfg), newLogger(cfg))
	if err != nil {
		return err
	}
	defer srv.Close()
	return srv.ServeStdio()
}

func main() {
	previewFlag := &cli.BoolFlag{
		Name:  "preview",
		Usage: "Compute the result without writing any files",
	}

	cmd := &cli.Command{
		Name:  "ansuz",
		Usage: "Note lifecycle engine: capture, enrich, promote, and curate a Markdown vault",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "vault",
				Usage:   "Vault root directory (overrides config)",
				Sources: cli.EnvVars("ANSUZ_VAULT"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "process",
				Usage:     "Process a single captured note through enrichment",
				ArgsUsage: "<note-path>",
				Flags: []cli.Flag{
					previewFlag,
					&cli.BoolFlag{
						Name:  "skip-enrichment",
						Usage: "Skip the enrichment delegate; the note will not auto-advance",
					},
				},
				Action: processCmd,
			},
			{
				Name:   "batch",
				Usage:  "Process every note in the capture area",
				Flags:  []cli.Flag{previewFlag},
				Action: batchCmd,
			},
			{
				Name:  "promote",
				Usage: "Relocate quality-gated notes from the capture area to their type directories",
				Flags: []cli.Flag{
					&cli.FloatFlag{
						Name:  "threshold",
						Usage: "Quality threshold override in [0,1]; 0 uses the vault's configured threshold",
					},
				},
				Action: promoteCmd,
			},
			{
				Name:   "triage",
				Usage:  "Rank captured notes by quality and age",
				Action: triageCmd,
			},
			{
				Name:  "orphans",
				Usage: "Find notes with no inbound or outbound links",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "archive",
						Usage: "Move orphaned notes into the archive",
					},
				},
				Action: orphansCmd,
			},
			{
				Name:   "stats",
				Usage:  "Lifecycle aggregates from the vault catalog",
				Action: statsCmd,
			},
			{
				Name:   "watch",
				Usage:  "Run resident watch mode over the capture area",
				Action: watchCmd,
			},
			{
				Name:   "mcp",
				Usage:  "Serve lifecycle tools over the Model Context Protocol on stdio",
				Action: mcpCmd,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
