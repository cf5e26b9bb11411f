package notify

import (
	"context"
	"errors"
	"testing"

	"cashlytic-server/src/metrics"
	"cashlytic-server/src/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func alert() models.BudgetAlert {
	return models.BudgetAlert{
		UserName:    "Ann",
		Month:       "March 2024",
		Budget:      decimal.NewFromInt(2000),
		Spent:       decimal.RequireFromString("1700.5"),
		PercentUsed: 85.025,
	}
}

func TestSendBudgetAlert(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := NewMockSender(ctrl)
	n := NewNotifier(sender, metrics.NoOpCollector{}, zerolog.Nop())

	sender.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, email Email) error {
		assert.Equal(t, []string{"ann@example.com"}, email.To)
		assert.Equal(t, "Budget Alert for March 2024", email.Subject)
		assert.Contains(t, email.HTML, "Hello Ann,")
		assert.Contains(t, email.HTML, "85.0%")
		assert.Contains(t, email.HTML, "$2,000.00")
		assert.Contains(t, email.HTML, "$1,700.50")
		assert.Contains(t, email.HTML, "$299.50")
		return nil
	})

	n.SendBudgetAlert(context.Background(), "ann@example.com", alert())
}

func TestSendBudgetAlert_FailureIsSwallowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := NewMockSender(ctrl)
	n := NewNotifier(sender, nil, zerolog.Nop())

	sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.New("smtp down"))
	assert.NotPanics(t, func() {
		n.SendBudgetAlert(context.Background(), "ann@example.com", alert())
	})
}

func TestSendBudgetAlert_NoRecipient(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := NewMockSender(ctrl)
	n := NewNotifier(sender, nil, zerolog.Nop())

	// no Send expected
	n.SendBudgetAlert(context.Background(), "", alert())
}

func TestRenderBudgetAlert_EscapesName(t *testing.T) {
	n := NewNotifier(nil, nil, zerolog.Nop())
	a := alert()
	a.UserName = "<script>x</script>"

	html, err := n.renderBudgetAlert(a)
	assert.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}
