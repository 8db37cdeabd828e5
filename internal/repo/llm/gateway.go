package llm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nguyentranbao-ct/shop-assistant/internal/config"
	"github.com/nguyentranbao-ct/shop-assistant/internal/models"
	log "github.com/nguyentranbao-ct/shop-assistant/pkg/logger/log"
)

const (
	errorReplyPrefix = "AI Error: "

	DefaultContextLimit = 10000
	DefaultHistoryTurns = 5
)

// Generator sends one composed prompt to a hosted model.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type Request struct {
	SystemInstruction string
	Context           string
	History           []models.ChatTurn
	Message           string
}

// Gateway never fails a conversation turn: on error the returned text is a
// readable notice and err carries the cause.
type Gateway interface {
	Generate(ctx context.Context, req Request) (string, error)
	SystemInstruction() string
}

type GatewayOptions struct {
	ContextLimit      int
	HistoryTurns      int
	Timeout           time.Duration
	SystemInstruction string
}

type gateway struct {
	gen  Generator
	opts GatewayOptions
}

func NewGateway(gen Generator, opts GatewayOptions) Gateway {
	if opts.SystemInstruction == "" {
		opts.SystemInstruction = DefaultSystemInstruction
	}
	if opts.ContextLimit <= 0 {
		opts.ContextLimit = DefaultContextLimit
	}
	if opts.HistoryTurns <= 0 {
		opts.HistoryTurns = DefaultHistoryTurns
	}
	return &gateway{gen: gen, opts: opts}
}

// NewGatewayFromConfig reads the system instruction from LLM_SYSTEM_PROMPT_FILE
// when set: a .yaml/.yml file is a Persona, anything else is the instruction
// verbatim.
func NewGatewayFromConfig(cfg *config.Config, gen Generator) (Gateway, error) {
	opts := GatewayOptions{
		ContextLimit: cfg.Assistant.ContextLimit,
		HistoryTurns: cfg.Assistant.HistoryTurns,
		Timeout:      cfg.LLM.Timeout,
	}
	if path := cfg.LLM.SystemPromptFile; path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read system prompt: %w", err)
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			persona, err := ParsePersona(data)
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
			opts.SystemInstruction = persona.SystemInstruction
		default:
			opts.SystemInstruction = string(data)
		}
	}
	return NewGateway(gen, opts), nil
}

func (g *gateway) SystemInstruction() string {
	return g.opts.SystemInstruction
}

func (g *gateway) Generate(ctx context.Context, req Request) (string, error) {
	if req.SystemInstruction == "" {
		req.SystemInstruction = g.opts.SystemInstruction
	}
	prompt, err := ComposePrompt(req, g.opts.ContextLimit, g.opts.HistoryTurns)
	if err != nil {
		return errorReplyPrefix + err.Error(), fmt.Errorf("compose prompt: %w", err)
	}

	if g.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := g.gen.GenerateText(ctx, prompt)
	if err != nil {
		log.Errorw(ctx, "model generation failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return errorReplyPrefix + err.Error(), fmt.Errorf("%w: generate: %w", models.ErrTransport, err)
	}
	log.Debugw(ctx, "model replied",
		"prompt_chars", len(prompt),
		"reply_chars", len(text),
		"duration_ms", time.Since(start).Milliseconds())
	return text, nil
}
