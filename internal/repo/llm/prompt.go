package llm

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/nguyentranbao-ct/shop-assistant/internal/models"
	"github.com/nguyentranbao-ct/shop-assistant/pkg/tmplx"
	"gopkg.in/yaml.v3"
)

//go:embed default_persona.yaml
var defaultPersonaData []byte

// Persona is the system instruction the model runs under.
type Persona struct {
	Name              string `yaml:"name"`
	SystemInstruction string `yaml:"system_instruction"`
}

// DefaultSystemInstruction teaches the model the upload payload convention.
var DefaultSystemInstruction = mustParsePersona(defaultPersonaData).SystemInstruction

// ParsePersona reads a YAML persona file.
func ParsePersona(data []byte) (Persona, error) {
	var p Persona
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Persona{}, fmt.Errorf("unmarshal persona: %w", err)
	}
	if strings.TrimSpace(p.SystemInstruction) == "" {
		return Persona{}, errors.New("persona has no system_instruction")
	}
	return p, nil
}

func mustParsePersona(data []byte) Persona {
	p, err := ParsePersona(data)
	if err != nil {
		panic(err)
	}
	return p
}

const promptTemplate = `{{.SystemInstruction}}

CONTEXT (UPLOADED FILE DATA):
{{truncate .ContextLimit .Context}} (Truncated if too long)

CHAT HISTORY:
{{range .History}}{{.Line}}
{{end}}
USER: {{.Message}}
ASSISTANT:
`

var prompt = tmplx.MustParse("prompt", promptTemplate, tmplx.WithValidate(
	promptData{
		SystemInstruction: "system",
		ContextLimit:      DefaultContextLimit,
		Context:           "context",
		History:           []models.ChatTurn{{Role: models.RoleUser, Content: "hi"}},
		Message:           "message",
	},
	func(buf *bytes.Buffer) error {
		out := buf.String()
		if !strings.Contains(out, "USER: hi\n") || !strings.HasSuffix(out, "USER: message\nASSISTANT:\n") {
			return fmt.Errorf("unexpected prompt layout: %q", out)
		}
		return nil
	},
))

type promptData struct {
	SystemInstruction string
	ContextLimit      int
	Context           string
	History           []models.ChatTurn
	Message           string
}

// ComposePrompt renders the single prompt sent to the model: instruction,
// file context cut at contextLimit characters, the last historyTurns turns
// oldest first, then the operator's message.
func ComposePrompt(req Request, contextLimit, historyTurns int) (string, error) {
	return prompt.RenderString(promptData{
		SystemInstruction: req.SystemInstruction,
		ContextLimit:      contextLimit,
		Context:           req.Context,
		History:           lastTurns(req.History, historyTurns),
		Message:           req.Message,
	})
}

func lastTurns(history []models.ChatTurn, n int) []models.ChatTurn {
	if n <= 0 {
		return nil
	}
	if len(history) > n {
		return history[len(history)-n:]
	}
	return history
}
