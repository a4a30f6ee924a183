package middleware

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/homechef/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type priceBody struct {
	Price    decimal.Decimal `json:"price" binding:"positive_money"`
	Tendered decimal.Decimal `json:"tendered" binding:"money"`
}

func TestSetupValidator_MoneyTags(t *testing.T) {
	valid := priceBody{Price: decimal.RequireFromString("12.50"), Tendered: decimal.Zero}
	assert.NoError(t, binding.Validator.ValidateStruct(valid))

	err := binding.Validator.ValidateStruct(priceBody{
		Price:    decimal.Zero,
		Tendered: decimal.RequireFromString("10.005"),
	})
	require.Error(t, err)

	details, ok := dto.ValidationDetails(err)
	require.True(t, ok)
	fields := make([]string, len(details))
	for i, d := range details {
		fields[i] = d.Field
	}
	assert.ElementsMatch(t, []string{"price", "tendered"}, fields)
}
