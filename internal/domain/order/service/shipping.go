package service

import (
	"fmt"

	"shop_backend/internal/domain/order/model"
	"shop_backend/pkg/apperr"

	"github.com/shopspring/decimal"
)

// ShippingPolicy 运费规则。FreeThreshold 大于 0 时，折后小计达到门槛免标准运费，加急运费照收
type ShippingPolicy struct {
	Standard      decimal.Decimal
	Express       decimal.Decimal
	FreeThreshold decimal.Decimal
}

func (p ShippingPolicy) Fee(method string, discountedSubtotal decimal.Decimal) (decimal.Decimal, error) {
	switch method {
	case model.ShippingStandard:
		if p.FreeThreshold.IsPositive() && discountedSubtotal.GreaterThanOrEqual(p.FreeThreshold) {
			return decimal.Zero, nil
		}
		return p.Standard, nil
	case model.ShippingExpress:
		return p.Express, nil
	default:
		return decimal.Zero, fmt.Errorf("shipping method %q: %w", method, apperr.ErrInvalidInput)
	}
}
