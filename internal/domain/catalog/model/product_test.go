package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestEffectivePrice(t *testing.T) {
	v := &ProductVariant{Price: decimal.RequireFromString("199.90"), DiscountPercent: decimal.NewFromInt(15)}
	assert.Equal(t, "169.92", v.EffectivePrice().StringFixed(2))

	v.DiscountPercent = decimal.Zero
	assert.Equal(t, "199.90", v.EffectivePrice().StringFixed(2))
}

func TestUnitPriceAndStock(t *testing.T) {
	p := &Product{Price: decimal.NewFromInt(50), Stock: 3}
	v := &ProductVariant{Price: decimal.NewFromInt(60), Stock: 7}

	assert.True(t, UnitPrice(p, nil).Equal(decimal.NewFromInt(50)))
	assert.True(t, UnitPrice(p, v).Equal(decimal.NewFromInt(60)))
	assert.Equal(t, 3, AvailableStock(p, nil))
	assert.Equal(t, 7, AvailableStock(p, v))
}
