package notification

import (
	"testing"

	"github.com/homechef/backend/internal/domain/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateEngine_Render(t *testing.T) {
	engine, err := NewTemplateEngine("en")
	require.NoError(t, err)

	t.Run("receipt lists the totals", func(t *testing.T) {
		html, err := engine.Render(EmailContent{
			Name:    "ada lovelace",
			Subject: "Order ORD-20260501-00001 placed",
			Body:    "We sent your order to the kitchen.",
			Kind:    notification.KindOrderReceipt,
			Data:    map[string]string{"total": "EUR 24.50", "payment_method": "CASH", "redeemed_points": "200"},
		})
		require.NoError(t, err)
		assert.Contains(t, html, `lang="en"`)
		assert.Contains(t, html, "Hello Ada Lovelace,")
		assert.Contains(t, html, "EUR 24.50")
		assert.Contains(t, html, "<td>Cash</td>")
		assert.Contains(t, html, "Points redeemed")
	})

	t.Run("zero redeemed points are omitted", func(t *testing.T) {
		html, err := engine.Render(EmailContent{
			Kind: notification.KindOrderReceipt,
			Data: map[string]string{"total": "EUR 9.00", "payment_method": "CARD", "redeemed_points": "0"},
		})
		require.NoError(t, err)
		assert.NotContains(t, html, "Points redeemed")
		assert.Contains(t, html, "Hello,")
	})

	t.Run("escapes user supplied text", func(t *testing.T) {
		html, err := engine.Render(EmailContent{
			Kind: notification.KindOrderAccepted,
			Body: "<script>alert(1)</script>",
		})
		require.NoError(t, err)
		assert.NotContains(t, html, "<script>")
		assert.Contains(t, html, "&lt;script&gt;")
	})

	t.Run("tier change shows the tier", func(t *testing.T) {
		html, err := engine.Render(EmailContent{
			Kind: notification.KindTierChanged,
			Data: map[string]string{"tier": "GOLD"},
		})
		require.NoError(t, err)
		assert.Contains(t, html, "<strong>Gold</strong>")
	})
}

func TestTemplateEngine_Subject(t *testing.T) {
	engine, err := NewTemplateEngine("not a tag")
	require.NoError(t, err)

	assert.Equal(t, "New order ORD-1", engine.Subject(EmailContent{Subject: "new order ORD-1"}))
	assert.Equal(t, "Delivered", engine.Subject(EmailContent{Subject: "delivered"}))
	assert.Equal(t, "Order Completed", engine.Subject(EmailContent{Kind: notification.KindOrderCompleted}))
}
