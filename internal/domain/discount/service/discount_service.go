package service

import (
	"context"
	"fmt"
	"time"

	"shop_backend/internal/domain/discount/model"
	"shop_backend/internal/domain/discount/repository"
	"shop_backend/pkg/apperr"
	"shop_backend/pkg/database"
	baseModel "shop_backend/pkg/model"
	"shop_backend/pkg/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

// Result 校验通过后的折扣信息
type Result struct {
	CodeID     string          `json:"codeId"`
	Code       string          `json:"code"`
	Percentage decimal.Decimal `json:"percentage"`
	Amount     decimal.Decimal `json:"amount"`
}

type CreateInput struct {
	Code               string
	DiscountPercentage decimal.Decimal
	MinimumOrderAmount decimal.Decimal
	UserID             string
}

type DiscountService interface {
	WithTx(tx *gorm.DB) DiscountService
	// Validate 校验优惠码并计算折扣金额 (只针对商品小计，不含运费)
	Validate(ctx context.Context, code, userID string, subtotal decimal.Decimal) (*Result, error)
	MarkUsed(ctx context.Context, codeID, orderID string) error
	Create(ctx context.Context, input CreateInput) (*model.DiscountCode, error)
	List(ctx context.Context, p utils.Pagination) (utils.PageResult, error)
}

type discountService struct {
	repo repository.DiscountRepository
	now  func() time.Time
}

func NewDiscountService(repo repository.DiscountRepository) DiscountService {
	return &discountService{repo: repo, now: time.Now}
}

func (s *discountService) WithTx(tx *gorm.DB) DiscountService {
	return &discountService{repo: s.repo.WithTx(tx), now: s.now}
}

func (s *discountService) Validate(ctx context.Context, code, userID string, subtotal decimal.Decimal) (*Result, error) {
	dc, err := s.repo.GetByCode(ctx, model.NormalizeCode(code))
	if err != nil {
		return nil, err
	}

	// 校验顺序：已使用 -> 归属 -> 最低金额
	if dc.IsUsed {
		return nil, fmt.Errorf("code %s: %w", dc.Code, apperr.ErrCodeAlreadyUsed)
	}
	if dc.UserID != nil && *dc.UserID != userID {
		return nil, fmt.Errorf("code %s: %w", dc.Code, apperr.ErrCodeNotOwned)
	}
	if subtotal.LessThan(dc.MinimumOrderAmount) {
		return nil, fmt.Errorf("subtotal %s below %s: %w", subtotal.StringFixed(2), dc.MinimumOrderAmount.StringFixed(2), apperr.ErrBelowMinimumOrder)
	}

	return &Result{
		CodeID:     dc.ID,
		Code:       dc.Code,
		Percentage: dc.DiscountPercentage,
		Amount:     Amount(subtotal, dc.DiscountPercentage),
	}, nil
}

// Amount 折扣金额四舍五入到分，且不超过小计
func Amount(subtotal, percentage decimal.Decimal) decimal.Decimal {
	amount := subtotal.Mul(percentage).Div(hundred).Round(2)
	if amount.GreaterThan(subtotal) {
		return subtotal
	}
	return amount
}

func (s *discountService) MarkUsed(ctx context.Context, codeID, orderID string) error {
	rows, err := s.repo.MarkUsed(ctx, codeID, orderID, s.now())
	if err != nil {
		return err
	}
	if rows == 0 {
		// 并发下单时被其他订单抢先使用
		return fmt.Errorf("code %s: %w", codeID, apperr.ErrCodeAlreadyUsed)
	}
	return nil
}

func (s *discountService) Create(ctx context.Context, input CreateInput) (*model.DiscountCode, error) {
	code := model.NormalizeCode(input.Code)
	if code == "" {
		return nil, fmt.Errorf("code is required: %w", apperr.ErrInvalidInput)
	}
	if !input.DiscountPercentage.IsPositive() || input.DiscountPercentage.GreaterThan(hundred) {
		return nil, fmt.Errorf("percentage must be within (0, 100]: %w", apperr.ErrInvalidInput)
	}
	if input.MinimumOrderAmount.IsNegative() {
		return nil, fmt.Errorf("minimum order amount must not be negative: %w", apperr.ErrInvalidInput)
	}

	dc := &model.DiscountCode{
		Code:               code,
		DiscountPercentage: input.DiscountPercentage,
		MinimumOrderAmount: input.MinimumOrderAmount,
		UserID:             baseModel.StringPtr(input.UserID),
	}
	if err := s.repo.Create(ctx, dc); err != nil {
		if database.IsUniqueViolation(err, "") {
			return nil, fmt.Errorf("code %s already exists: %w", code, apperr.ErrInvalidInput)
		}
		return nil, err
	}
	return dc, nil
}

func (s *discountService) List(ctx context.Context, p utils.Pagination) (utils.PageResult, error) {
	offset, limit := p.GetPageOffset()
	codes, total, err := s.repo.List(ctx, offset, limit)
	if err != nil {
		return utils.PageResult{}, err
	}
	return utils.NewPageResult(codes, total, p), nil
}
