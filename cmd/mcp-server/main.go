package main

import (
	"context"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/patrickwarner/adsignal/internal/config"
	"github.com/patrickwarner/adsignal/internal/logic"
	"github.com/patrickwarner/adsignal/internal/models"
	"github.com/patrickwarner/adsignal/internal/observability"
	"github.com/patrickwarner/adsignal/internal/page"
)

// EvaluatePageInput describes the page to classify.
type EvaluatePageInput struct {
	URL       string `json:"url"`
	Cookie    string `json:"cookie,omitempty"`
	Referrer  string `json:"referrer,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

type EvaluatePageOutput struct {
	Verdict     models.Verdict    `json:"verdict"`
	Diagnostics logic.Diagnostics `json:"diagnostics"`
	Report      string            `json:"report"`
}

type RemoveSignalInput struct {
	Page models.PageSnapshot `json:"page"`
	Name string              `json:"name"`
}

type RemoveSignalOutput struct {
	Page      models.PageSnapshot `json:"page"`
	SetCookie []string            `json:"set_cookie"`
	Verdict   models.Verdict      `json:"verdict"`
}

// SignalServer exposes the engine as MCP tools.
type SignalServer struct {
	engine *logic.Engine
	logger *zap.Logger
}

// EvaluatePage implements the evaluate_page tool.
func (s *SignalServer) EvaluatePage(ctx context.Context, req *mcp.CallToolRequest, input EvaluatePageInput) (*mcp.CallToolResult, EvaluatePageOutput, error) {
	if input.URL == "" {
		return nil, EvaluatePageOutput{}, fmt.Errorf("url is required")
	}
	env := page.NewMemory(models.PageSnapshot{
		URL:       input.URL,
		Cookie:    input.Cookie,
		Referrer:  input.Referrer,
		UserAgent: input.UserAgent,
	})
	d := s.engine.Diagnose(env)
	out := EvaluatePageOutput{
		Verdict:     s.engine.Evaluate(env),
		Diagnostics: d,
		Report:      d.Format(),
	}
	s.logger.Debug("evaluate_page",
		zap.String("url", input.URL),
		zap.Bool("influenced", out.Verdict.IsAdInfluenced))
	return nil, out, nil
}

// RemoveSignal implements the remove_signal tool. Unknown and
// non-removable names return the page unchanged.
func (s *SignalServer) RemoveSignal(ctx context.Context, req *mcp.CallToolRequest, input RemoveSignalInput) (*mcp.CallToolResult, RemoveSignalOutput, error) {
	if input.Page.URL == "" {
		return nil, RemoveSignalOutput{}, fmt.Errorf("page.url is required")
	}
	env := page.NewMemory(input.Page)
	v, err := s.engine.RemoveByName(env, input.Name)
	if err != nil {
		return nil, RemoveSignalOutput{}, fmt.Errorf("remove %s: %w", input.Name, err)
	}
	out := RemoveSignalOutput{Page: env.Snapshot(), SetCookie: models.CookieLines(env.CookieWrites()), Verdict: v}
	return nil, out, nil
}

var pageProperties = map[string]interface{}{
	"url": map[string]interface{}{
		"type":        "string",
		"description": "Full page URL including the query string",
	},
	"cookie": map[string]interface{}{
		"type":        "string",
		"description": "Raw cookie string as seen by document.cookie (optional)",
	},
	"referrer": map[string]interface{}{
		"type":        "string",
		"description": "Referring URL (optional)",
	},
	"user_agent": map[string]interface{}{
		"type":        "string",
		"description": "Browser user agent (optional, diagnostics only)",
	},
}

// newMCPServer registers the tools on a fresh MCP server.
func newMCPServer(s *SignalServer) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "adsignal",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "evaluate_page",
		Description: "Report whether a page visit was influenced by advertising and which URL parameters, cookies or referrer carry the signal",
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": pageProperties,
			"required":   []string{"url"},
		},
	}, s.EvaluatePage)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "remove_signal",
		Description: "Strip one ad-tracking signal (by beneficiary name, e.g. url-utm_source or cookie-_ga) from a page and re-evaluate it",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"page": map[string]interface{}{
					"type":       "object",
					"properties": pageProperties,
					"required":   []string{"url"},
				},
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Beneficiary name as returned by evaluate_page",
				},
			},
			"required": []string{"page", "name"},
		},
	}, s.RemoveSignal)

	return server
}

func newLogger() (*zap.Logger, error) {
	// stdout carries the protocol
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.MessageKey = "msg"

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Named("adsignal-mcp").With(zap.String("service", "adsignal-mcp")), nil
}

func main() {
	logger, err := newLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Load()
	patterns, err := logic.LoadPatterns(cfg.PatternsFile, cfg.StrictParamKeys)
	if err != nil {
		logger.Fatal("Failed to load patterns", zap.Error(err))
	}

	server := newMCPServer(&SignalServer{
		engine: logic.NewEngine(patterns, logger, observability.NewNoOpRegistry()),
		logger: logger,
	})

	// stdout carries the protocol, so the transcript goes to stderr
	transport := &mcp.LoggingTransport{
		Transport: &mcp.StdioTransport{},
		Writer:    os.Stderr,
	}

	logger.Info("adsignal MCP server running via stdio")
	if err := server.Run(context.Background(), transport); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}
