// Package receipt extracts transaction fields from a photographed receipt
// using a multimodal model.
package receipt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cashlytic-server/src/apperr"
	"cashlytic-server/src/metrics"
	"cashlytic-server/src/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// MaxImageSize is the largest receipt image accepted, 5 MiB.
const MaxImageSize = 5 << 20

const (
	fallbackDescription  = "Unrecognized receipt"
	fallbackMerchant     = "Unknown"
	defaultDescription   = "No description"
	defaultMerchant      = "Unknown Merchant"
	defaultCategory      = models.CategoryOtherExpense
	dateOnlyLayout       = "2006-01-02"
	dateTimeNoZoneLayout = "2006-01-02T15:04:05"
)

func prompt() string {
	return "Analyze this receipt image. Extract the total amount, the date (in ISO 8601 format), " +
		"a brief description of the purchase, the merchant/store name, and suggest the best single " +
		"category from the following list: " + strings.Join(models.ExpenseCategoryNames(), ", ") + ".\n" +
		"If the image is not a receipt or the information cannot be found, return an object with " +
		"null values for all fields."
}

type Extractor struct {
	model   Model
	metrics metrics.Collector
	log     zerolog.Logger
	now     func() time.Time
}

func NewExtractor(model Model, m metrics.Collector, log zerolog.Logger) *Extractor {
	if m == nil {
		m = metrics.NoOpCollector{}
	}
	return &Extractor{model: model, metrics: m, log: log, now: time.Now}
}

// Extract asks the model for the receipt's fields. Output that says nothing
// was found yields a fallback record instead of an error; output that is not
// JSON yields apperr.ErrExtractionFormat.
func (e *Extractor) Extract(ctx context.Context, image []byte, mimeType string) (*models.ScannedReceipt, error) {
	if err := validateImage(image, mimeType); err != nil {
		return nil, err
	}

	start := e.now()
	raw, err := e.model.Generate(ctx, prompt(), image, mimeType)
	if err != nil {
		e.metrics.RecordReceiptScan("error", e.now().Sub(start))
		return nil, fmt.Errorf("scan receipt: %w", err)
	}

	receipt, fallback, err := parseReceipt(raw, e.now())
	switch {
	case err != nil:
		e.metrics.RecordReceiptScan("format_error", e.now().Sub(start))
		e.log.Warn().Err(err).Str("raw", truncate(raw, 200)).Msg("unparseable model response")
		return nil, err
	case fallback:
		e.metrics.RecordReceiptScan("fallback", e.now().Sub(start))
	default:
		e.metrics.RecordReceiptScan("ok", e.now().Sub(start))
	}
	return receipt, nil
}

func validateImage(image []byte, mimeType string) error {
	if len(image) == 0 {
		return apperr.Validation("receipt image is required")
	}
	if len(image) > MaxImageSize {
		return apperr.Validation("file size too large, please upload a file smaller than 5MB")
	}
	if !strings.HasPrefix(strings.ToLower(mimeType), "image/") {
		return apperr.Validation("receipt must be an image, got %q", mimeType)
	}
	return nil
}

type modelReceipt struct {
	Amount       json.Number `json:"amount"`
	Date         string      `json:"date"`
	Description  string      `json:"description"`
	MerchantName string      `json:"merchantName"`
	Category     string      `json:"category"`
}

// parseReceipt maps raw model output onto a ScannedReceipt. The bool result
// reports whether the fallback record was used.
func parseReceipt(raw string, now time.Time) (*models.ScannedReceipt, bool, error) {
	var data *modelReceipt
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &data); err != nil {
		return nil, false, fmt.Errorf("%w: %v", apperr.ErrExtractionFormat, err)
	}

	if data == nil || data.Amount == "" {
		return fallbackReceipt(now), true, nil
	}
	amount, err := decimal.NewFromString(data.Amount.String())
	if err != nil {
		return nil, false, fmt.Errorf("%w: amount %q", apperr.ErrExtractionFormat, data.Amount)
	}
	if amount.IsZero() {
		return fallbackReceipt(now), true, nil
	}

	out := &models.ScannedReceipt{
		Amount:       amount.Abs().Round(2),
		Date:         parseDate(data.Date, now),
		Description:  strings.TrimSpace(data.Description),
		MerchantName: strings.TrimSpace(data.MerchantName),
		Category:     defaultCategory,
	}
	if out.Description == "" {
		out.Description = defaultDescription
	}
	if out.MerchantName == "" {
		out.MerchantName = defaultMerchant
	}
	if c := models.Category(strings.ToLower(strings.TrimSpace(data.Category))); c.IsExpense() {
		out.Category = c
	}
	return out, false, nil
}

func fallbackReceipt(now time.Time) *models.ScannedReceipt {
	return &models.ScannedReceipt{
		Amount:       decimal.Zero,
		Date:         now,
		Description:  fallbackDescription,
		Category:     defaultCategory,
		MerchantName: fallbackMerchant,
	}
}

func parseDate(s string, now time.Time) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, dateTimeNoZoneLayout, dateOnlyLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return now
}

// cleanModelJSON strips Markdown fences and any chatter around the JSON
// object the model was asked for.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		idx := strings.Index(s, "\n")
		if idx == -1 {
			return s
		}
		s = strings.TrimSpace(s[idx+1:])
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = s[start : end+1]
		}
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
