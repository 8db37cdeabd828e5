package llm

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/nguyentranbao-ct/shop-assistant/internal/config"
)

func NewGenkit(cfg *config.Config) *genkit.Genkit {
	googleAI := &googlegenai.GoogleAI{
		APIKey: cfg.LLM.GoogleAIAPIKey,
	}
	return genkit.Init(context.Background(), genkit.WithPlugins(googleAI))
}

type genkitGenerator struct {
	genkit *genkit.Genkit
	model  string
}

func NewGenkitGenerator(cfg *config.Config, g *genkit.Genkit) Generator {
	return &genkitGenerator{
		genkit: g,
		model:  cfg.LLM.Model,
	}
}

func (g *genkitGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	response, err := genkit.Generate(ctx, g.genkit,
		ai.WithMessages(ai.NewUserTextMessage(prompt)),
		ai.WithModelName(g.model),
	)
	if err != nil {
		return "", err
	}
	if response == nil {
		return "", fmt.Errorf("empty response from %s", g.model)
	}
	return response.Text(), nil
}
