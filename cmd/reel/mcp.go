package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/goccy/go-json"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lthms/reel/internal/engine"
	"github.com/lthms/reel/internal/feedback"
	"github.com/lthms/reel/internal/video"
)

type nextArgs struct{}

type rateArgs struct {
	Rating string `json:"rating" jsonschema:"One of never, maybe, definitely, or quit to end the session"`
}

type historyArgs struct{}

// pickView is the JSON shape of a presented video.
type pickView struct {
	Title      string `json:"title"`
	Channel    string `json:"channel"`
	Duration   int    `json:"duration"`
	UploadDate string `json:"upload_date,omitempty"`
	Language   string `json:"language,omitempty"`
	Link       string `json:"link"`
	Keyword    string `json:"keyword"`
	Summary    string `json:"summary"`
	Weight     int    `json:"weight"`
	Remaining  int    `json:"remaining"`
}

// mcpSession serializes tool calls onto one recommendation session.
type mcpSession struct {
	mu      sync.Mutex
	session *engine.Session
}

func newMCPServer(s *engine.Session) *mcp.Server {
	ms := &mcpSession{session: s}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "reel",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "next_video",
		Description: "Recommend the next unrated video. Returns the video awaiting a rating if there is one.",
	}, ms.handleNext)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "rate_video",
		Description: "Rate the recommended video as never, maybe or definitely. The rating is saved to the feedback log and shifts future recommendations.",
	}, ms.handleRate)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "feedback_history",
		Description: "List the latest rating of every rated video as a JSON array.",
	}, ms.handleHistory)

	return server
}

func runMCPServer(ctx context.Context, s *engine.Session) error {
	slog.Debug("starting MCP server")
	return newMCPServer(s).Run(ctx, &mcp.StdioTransport{})
}

func (m *mcpSession) handleNext(ctx context.Context, req *mcp.CallToolRequest, args nextArgs) (*mcp.CallToolResult, any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pick, ok := m.session.Current()
	if !ok {
		var err error
		pick, err = m.session.Next(ctx)
		switch {
		case errors.Is(err, engine.ErrExhausted), errors.Is(err, engine.ErrTerminated):
			return textResult("No more new videos to recommend. Come back later!"), nil, nil
		case err != nil:
			return nil, nil, err
		}
	}
	slog.Debug("next_video called", "link", pick.Candidate.Link)

	c := pick.Candidate
	return jsonResult(pickView{
		Title:      c.Title,
		Channel:    c.Channel,
		Duration:   c.Duration,
		UploadDate: video.FormatDate(c.UploadDate),
		Language:   c.Language,
		Link:       c.Link,
		Keyword:    c.Keyword,
		Summary:    pick.Summary,
		Weight:     pick.Weight,
		Remaining:  m.session.Remaining(),
	})
}

func (m *mcpSession) handleRate(ctx context.Context, req *mcp.CallToolRequest, args rateArgs) (*mcp.CallToolResult, any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	slog.Debug("rate_video called", "rating", args.Rating)
	rating, err := m.session.Rate(args.Rating)
	switch {
	case errors.Is(err, engine.ErrQuit):
		return textResult("Session ended."), nil, nil
	case errors.Is(err, engine.ErrInvalidInput):
		return errorResult("Invalid rating %q: use never, maybe or definitely.", args.Rating), nil, nil
	case errors.Is(err, engine.ErrNothingPresented):
		return errorResult("No video is awaiting a rating; call next_video first."), nil, nil
	case errors.Is(err, engine.ErrTerminated):
		return errorResult("The session has ended."), nil, nil
	case err != nil:
		return nil, nil, fmt.Errorf("rate video: %w", err)
	}
	return textResult(fmt.Sprintf("Feedback saved (%s).", rating)), nil, nil
}

func (m *mcpSession) handleHistory(ctx context.Context, req *mcp.CallToolRequest, args historyArgs) (*mcp.CallToolResult, any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	records := m.session.History().Records()
	if records == nil {
		records = []feedback.Record{}
	}
	return jsonResult(records)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(format string, args ...any) *mcp.CallToolResult {
	res := textResult(fmt.Sprintf(format, args...))
	res.IsError = true
	return res
}

func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("encode result: %w", err)
	}
	return textResult(string(data)), nil, nil
}
