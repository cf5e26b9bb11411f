package receipt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cashlytic-server/src/models"
	"cashlytic-server/src/resilience"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"google.golang.org/genai"
)

const DefaultModelName = "gemini-2.5-flash"

var ErrModelUnavailable = errors.New("receipt model unavailable")

// GeminiModel calls Gemini with a JSON response schema. Calls are bounded by
// a timeout and a circuit breaker and are never retried.
type GeminiModel struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	cb      *gobreaker.CircuitBreaker
}

func NewGeminiModel(ctx context.Context, apiKey, model string, timeout time.Duration, log zerolog.Logger) (*GeminiModel, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	if model == "" {
		model = DefaultModelName
	}
	return &GeminiModel{
		client:  client,
		model:   model,
		timeout: timeout,
		cb:      resilience.NewBreaker("gemini", resilience.DefaultBreakerConfig(), log),
	}, nil
}

func responseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"amount": {
				Type:        genai.TypeNumber,
				Description: "The total amount of the transaction.",
			},
			"date": {
				Type:        genai.TypeString,
				Format:      "date-time",
				Description: "The date of the transaction in ISO 8601 format.",
			},
			"description": {
				Type:        genai.TypeString,
				Description: "A brief summary of the purchase.",
			},
			"merchantName": {
				Type:        genai.TypeString,
				Description: "The name of the store or merchant.",
			},
			"category": {
				Type:        genai.TypeString,
				Enum:        models.ExpenseCategoryNames(),
				Description: "The suggested category from the provided list.",
			},
		},
	}
}

func (g *GeminiModel) Generate(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
				{
					InlineData: &genai.Blob{
						MIMEType: mimeType,
						Data:     image,
					},
				},
			},
		},
	}
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema(),
	}

	out, err := g.cb.Execute(func() (interface{}, error) {
		resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
		if err != nil {
			return nil, err
		}
		return resp.Text(), nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", ErrModelUnavailable
		}
		return "", fmt.Errorf("generate content: %w", err)
	}
	return out.(string), nil
}
