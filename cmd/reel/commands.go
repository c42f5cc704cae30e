package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"

	"github.com/lthms/reel/internal/engine"
	"github.com/lthms/reel/internal/feedback"
)

// StartCmd runs an interactive recommendation session.
type StartCmd struct{}

func (cmd *StartCmd) Run(ctx context.Context, cfg *Config) error {
	app, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	return engine.Run(ctx, app.Session, stdioTerminal())
}

// McpCmd serves one session over the MCP stdio transport.
type McpCmd struct{}

func (cmd *McpCmd) Run(ctx context.Context, cfg *Config) error {
	app, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	return runMCPServer(ctx, app.Session)
}

// HistoryCmd prints the feedback history.
type HistoryCmd struct {
	JSON bool `name:"json" help:"Print records as a JSON array."`
}

func (cmd *HistoryCmd) Run(cfg *Config) error {
	h, err := loadHistory(cfg.Feedback.Path)
	if err != nil {
		return err
	}
	return printHistory(os.Stdout, h, cmd.JSON)
}

// ScoreCmd prints the weight each configured keyword currently gets.
type ScoreCmd struct{}

func (cmd *ScoreCmd) Run(cfg *Config) error {
	h, err := loadHistory(cfg.Feedback.Path)
	if err != nil {
		return err
	}
	return printScores(os.Stdout, cfg.Search.Keyword, h)
}

// MigrateCmd copies a feedback store into a new one, e.g. CSV to SQLite.
type MigrateCmd struct {
	From string `arg:"" type:"path" help:"Existing feedback store."`
	To   string `arg:"" type:"path" help:"New feedback store; must not exist yet."`
}

func (cmd *MigrateCmd) Run() error {
	n, err := migrate(cmd.From, cmd.To)
	if err != nil {
		return err
	}
	fmt.Printf("Copied %d records from %s to %s\n", n, cmd.From, cmd.To)
	return nil
}

// loadHistory reads the store at path without creating it.
func loadHistory(path string) (*feedback.History, error) {
	if !feedback.Exists(path) {
		return feedback.NewHistory(), nil
	}
	store, err := feedback.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feedback store: %w", err)
	}
	defer store.Close()

	h, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load feedback: %w", err)
	}
	return h, nil
}

func printHistory(w io.Writer, h *feedback.History, asJSON bool) error {
	records := h.Records()
	if asJSON {
		if records == nil {
			records = []feedback.Record{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No feedback recorded yet.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RATED\tFEEDBACK\tKEYWORD\tTITLE\tLINK")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Timestamp.Local().Format(time.DateTime), r.Rating, r.Keyword, r.Title, r.Link)
	}
	return tw.Flush()
}

func printScores(w io.Writer, keywords []string, h *feedback.History) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEYWORD\tWEIGHT")
	for _, kw := range keywords {
		fmt.Fprintf(tw, "%s\t%d\n", kw, engine.KeywordWeight(kw, h))
	}
	return tw.Flush()
}

func migrate(from, to string) (int, error) {
	if !feedback.Exists(from) {
		return 0, fmt.Errorf("source store %s not found", from)
	}
	if feedback.Exists(to) {
		return 0, fmt.Errorf("destination %s already exists", to)
	}

	src, err := feedback.Open(from)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", from, err)
	}
	defer src.Close()

	dst, err := feedback.Open(to)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", to, err)
	}
	defer dst.Close()

	return feedback.Copy(dst, src)
}
