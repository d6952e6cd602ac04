package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/daybook/internal"
	pkgconfig "github.com/starford/daybook/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadWithDefaults(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func runTUI(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunTUI(ctx, internal.WithConfig(cfg), internal.WithLogOutput(os.Stderr))
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg), internal.WithLogOutput(os.Stderr))
}

func printMonth(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	req := internal.MonthRequest{
		Year:    int(cmd.Int("year")),
		Month:   time.Month(cmd.Int("month")),
		ICSPath: cmd.String("ics"),
	}
	if req.Month < 0 || req.Month > 12 {
		return fmt.Errorf("month must be between 1 and 12, got %d", req.Month)
	}
	return internal.PrintMonth(ctx, os.Stdout, req, internal.WithConfig(cfg), internal.WithLogOutput(os.Stderr))
}

func main() {
	cmd := &cli.Command{
		Name:   "daybook",
		Usage:  "Single-user month calendar with reminders, an HTTP API, a terminal UI and MCP tools",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API, the reminder dispatcher and the inbox watcher",
				Action: serve,
			},
			{
				Name:   "tui",
				Usage:  "Open the interactive terminal calendar",
				Action: runTUI,
			},
			{
				Name:   "mcp",
				Usage:  "Serve calendar tools over MCP stdio",
				Action: runMCP,
			},
			{
				Name:   "month",
				Usage:  "Print one month grid",
				Action: printMonth,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "year", Usage: "Year to print (default: current)"},
					&cli.IntFlag{Name: "month", Usage: "Month 1-12 to print (default: current)"},
					&cli.StringFlag{Name: "ics", Usage: "Calendar file to preload"},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
