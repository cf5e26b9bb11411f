package receipt

//go:generate mockgen -source=model.go -destination=model_mock.go -package=receipt

import "context"

// Model turns a prompt plus one image into raw text, which is expected to be
// a JSON object.
type Model interface {
	Generate(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}

// Disabled is used when no model is configured; every scan reports
// ErrModelUnavailable.
type Disabled struct{}

func (Disabled) Generate(context.Context, string, []byte, string) (string, error) {
	return "", ErrModelUnavailable
}
