package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

// CLI is the top-level command structure for reel.
type CLI struct {
	Debug    bool     `env:"REEL_DEBUG" help:"Enable debug logging."`
	LogFile  string   `name:"log-file" type:"path" help:"Write debug logs to this file instead of stderr."`
	Config   string   `env:"REEL_CONFIG" type:"path" help:"Config file (default ~/.config/reel/config)."`
	Keyword  []string `short:"k" sep:"none" help:"Search keyword, repeatable. Replaces the configured keywords."`
	Limit    int      `help:"Results fetched per keyword."`
	Feedback string   `type:"path" help:"Feedback log: a CSV file, or .db for SQLite."`
	Backend  string   `help:"Search backend: yt-dlp, youtube or catalog."`

	Start   StartCmd   `cmd:"" default:"1" help:"Recommend videos and record ratings."`
	History HistoryCmd `cmd:"" help:"List the latest rating of every rated video."`
	Score   ScoreCmd   `cmd:"" help:"Show the current weight of each configured keyword."`
	Migrate MigrateCmd `cmd:"" help:"Copy every rating from one feedback store to another."`
	Mcp     McpCmd     `cmd:"" name:"mcp" help:"Serve recommendations as MCP tools over stdio."`
}

// config loads the config file and applies the command line overrides.
func (cli *CLI) config() (*Config, error) {
	path := cli.Config
	if path == "" {
		var err error
		if path, err = defaultConfigPath(); err != nil {
			return nil, err
		}
	}

	cfg, err := loadConfig(path)
	if err != nil {
		return nil, err
	}
	cfg.apply(overrides{
		Keywords: cli.Keyword,
		Limit:    cli.Limit,
		Feedback: cli.Feedback,
		Backend:  cli.Backend,
	})
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	cli := CLI{}
	parser, err := kong.New(&cli,
		kong.Name("reel"),
		kong.Description("Recommends videos for your keywords and learns from your ratings."),
		kong.UsageOnError(),
		kong.Exit(func(code int) {
			os.Exit(code)
		}),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reel: %v\n", err)
		os.Exit(1)
	}
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	setupLogger(cli.Debug)
	if cli.LogFile != "" {
		setupFileLogger(cli.LogFile)
	}

	cfg, err := cli.config()
	kctx.FatalIfErrorf(err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kctx.BindTo(ctx, (*context.Context)(nil))
	kctx.Bind(cfg)

	err = kctx.Run()
	stop()
	kctx.FatalIfErrorf(err)
}
