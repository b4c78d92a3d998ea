package service

import (
	"context"
	"fmt"

	"shop_backend/internal/domain/cart/model"
	"shop_backend/internal/domain/cart/repository"
	catalogModel "shop_backend/internal/domain/catalog/model"
	"shop_backend/pkg/apperr"
	baseModel "shop_backend/pkg/model"

	"github.com/shopspring/decimal"
)

// CatalogReader 购物车需要的商品查询，由商品仓库实现
type CatalogReader interface {
	GetProduct(ctx context.Context, id string) (*catalogModel.Product, error)
	GetVariant(ctx context.Context, id string) (*catalogModel.ProductVariant, error)
	ListProductsByIDs(ctx context.Context, ids []string) ([]catalogModel.Product, error)
	ListVariantsByIDs(ctx context.Context, ids []string) ([]catalogModel.ProductVariant, error)
}

// CartLine 购物车展示行
type CartLine struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"productId"`
	VariantID   *string         `json:"variantId,omitempty"`
	ProductName string          `json:"productName"`
	VariantName string          `json:"variantName,omitempty"`
	SKU         string          `json:"sku,omitempty"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
	Available   int             `json:"available"`
}

type CartView struct {
	Items         []CartLine      `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TotalQuantity int             `json:"totalQuantity"`
}

type CartService interface {
	AddItem(ctx context.Context, userID, productID string, variantID *string, quantity int) (*model.CartItem, error)
	UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) error
	RemoveItem(ctx context.Context, userID, itemID string) error
	Clear(ctx context.Context, userID string) error
	GetCart(ctx context.Context, userID string) (*CartView, error)
}

type cartService struct {
	repo    repository.CartRepository
	catalog CatalogReader
}

func NewCartService(repo repository.CartRepository, catalog CatalogReader) CartService {
	return &cartService{repo: repo, catalog: catalog}
}

// AddItem 同一 (商品, 规格) 只保留一行，数量累加
func (s *cartService) AddItem(ctx context.Context, userID, productID string, variantID *string, quantity int) (*model.CartItem, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity %d: %w", quantity, apperr.ErrInvalidQuantity)
	}
	variantID = baseModel.StringPtr(baseModel.Deref(variantID))

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, fmt.Errorf("product %s is inactive: %w", productID, apperr.ErrNotFound)
	}
	if variantID != nil {
		variant, err := s.catalog.GetVariant(ctx, *variantID)
		if err != nil {
			return nil, err
		}
		if variant.ProductID != productID {
			return nil, fmt.Errorf("variant %s of product %s: %w", *variantID, productID, apperr.ErrNotFound)
		}
	}

	item := &model.CartItem{
		UserID:    userID,
		ProductID: productID,
		VariantID: variantID,
		Quantity:  quantity,
	}
	if err := s.repo.Upsert(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *cartService) ownedItem(ctx context.Context, userID, itemID string) (*model.CartItem, error) {
	item, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.UserID != userID {
		return nil, fmt.Errorf("cart item %s: %w", itemID, apperr.ErrUnauthorized)
	}
	return item, nil
}

func (s *cartService) UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity %d: %w", quantity, apperr.ErrInvalidQuantity)
	}
	if _, err := s.ownedItem(ctx, userID, itemID); err != nil {
		return err
	}
	return s.repo.UpdateQuantity(ctx, itemID, quantity)
}

func (s *cartService) RemoveItem(ctx context.Context, userID, itemID string) error {
	if _, err := s.ownedItem(ctx, userID, itemID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, itemID)
}

func (s *cartService) Clear(ctx context.Context, userID string) error {
	return s.repo.DeleteByUser(ctx, userID)
}

func (s *cartService) GetCart(ctx context.Context, userID string) (*CartView, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &CartView{Items: make([]CartLine, 0, len(items)), Subtotal: decimal.Zero}
	if len(items) == 0 {
		return view, nil
	}

	// 1. 批量加载商品和规格
	productIDs := make([]string, 0, len(items))
	var variantIDs []string
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
		if item.VariantID != nil {
			variantIDs = append(variantIDs, *item.VariantID)
		}
	}
	products, err := s.catalog.ListProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	variants, err := s.catalog.ListVariantsByIDs(ctx, variantIDs)
	if err != nil {
		return nil, err
	}
	productByID := make(map[string]*catalogModel.Product, len(products))
	for i := range products {
		productByID[products[i].ID] = &products[i]
	}
	variantByID := make(map[string]*catalogModel.ProductVariant, len(variants))
	for i := range variants {
		variantByID[variants[i].ID] = &variants[i]
	}

	// 2. 组装展示行
	for _, item := range items {
		product, ok := productByID[item.ProductID]
		if !ok {
			continue
		}
		var variant *catalogModel.ProductVariant
		if item.VariantID != nil {
			if variant, ok = variantByID[*item.VariantID]; !ok {
				continue
			}
		}

		unit := catalogModel.UnitPrice(product, variant)
		line := CartLine{
			ID:          item.ID,
			ProductID:   item.ProductID,
			VariantID:   item.VariantID,
			ProductName: product.Name,
			UnitPrice:   unit,
			Quantity:    item.Quantity,
			LineTotal:   unit.Mul(decimal.NewFromInt(int64(item.Quantity))),
			Available:   catalogModel.AvailableStock(product, variant),
		}
		if variant != nil {
			line.VariantName = variant.Name
			line.SKU = variant.SKU
		}
		view.Items = append(view.Items, line)
		view.Subtotal = view.Subtotal.Add(line.LineTotal)
		view.TotalQuantity += item.Quantity
	}
	return view, nil
}
