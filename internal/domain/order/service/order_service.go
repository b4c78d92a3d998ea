package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	addressModel "shop_backend/internal/domain/address/model"
	cartModel "shop_backend/internal/domain/cart/model"
	cartRepository "shop_backend/internal/domain/cart/repository"
	catalogModel "shop_backend/internal/domain/catalog/model"
	discountService "shop_backend/internal/domain/discount/service"
	inventoryService "shop_backend/internal/domain/inventory/service"
	"shop_backend/internal/domain/order/model"
	"shop_backend/internal/domain/order/repository"
	"shop_backend/internal/pkg/locker"
	"shop_backend/internal/pkg/worker"
	"shop_backend/pkg/apperr"
	"shop_backend/pkg/database"
	"shop_backend/pkg/logger"
	"shop_backend/pkg/metrics"
	"shop_backend/pkg/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AddressProvider 按 id 读取用户自己的收货地址
type AddressProvider interface {
	GetAddress(ctx context.Context, userID, addressID string) (*addressModel.Address, error)
}

// CatalogReader 批量读取商品和规格
type CatalogReader interface {
	ListProductsByIDs(ctx context.Context, ids []string) ([]catalogModel.Product, error)
	ListVariantsByIDs(ctx context.Context, ids []string) ([]catalogModel.ProductVariant, error)
}

// Dependencies 订单服务依赖
type Dependencies struct {
	Tx        database.TxManager
	Orders    repository.OrderRepository
	Carts     cartRepository.CartRepository
	Catalog   CatalogReader
	Inventory inventoryService.InventoryService
	Discounts discountService.DiscountService
	Addresses AddressProvider
	Locker    locker.Locker
	LockTTL   time.Duration
	Notifier  worker.Notifier
	Metrics   *metrics.MetricsCollector
	Shipping  ShippingPolicy
	Now       func() time.Time
}

type CheckoutInput struct {
	UserID         string
	AddressID      string
	DiscountCode   string
	ShippingMethod string
	// CartItemIDs 为空时结算整个购物车
	CartItemIDs []string
}

type SetStatusInput struct {
	OrderID        string
	Status         model.OrderStatus
	ActorID        string
	TrackingNumber string
}

// StatusResult 管理员改状态的返回
type StatusResult struct {
	ID             string            `json:"id"`
	Status         model.OrderStatus `json:"status"`
	TrackingNumber *string           `json:"trackingNumber"`
}

type OrderService interface {
	Checkout(ctx context.Context, input CheckoutInput) (*model.Order, error)
	SetStatus(ctx context.Context, input SetStatusInput) (*StatusResult, error)
	Cancel(ctx context.Context, orderID, userID string) (*model.Order, error)
	GetOrder(ctx context.Context, orderID, userID string, isAdmin bool) (*model.Order, error)
	ListOrders(ctx context.Context, userID string, p utils.Pagination) (utils.PageResult, error)
	ListAllOrders(ctx context.Context, status model.OrderStatus, p utils.Pagination) (utils.PageResult, error)
}

type orderService struct {
	Dependencies
}

func NewOrderService(deps Dependencies) OrderService {
	if deps.Locker == nil {
		deps.Locker = locker.NopLocker{}
	}
	if deps.LockTTL <= 0 {
		deps.LockTTL = 10 * time.Second
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &orderService{Dependencies: deps}
}

// Checkout 下单：读购物车、校验库存、优惠码、扣库存、写订单、清购物车在同一事务中完成
func (s *orderService) Checkout(ctx context.Context, input CheckoutInput) (*model.Order, error) {
	if err := model.ValidShippingMethod(input.ShippingMethod); err != nil {
		return nil, fmt.Errorf("%v: %w", err, apperr.ErrInvalidInput)
	}

	// 1. 防重复提交
	release, err := s.Locker.Acquire(ctx, "checkout:"+input.UserID, s.LockTTL)
	if err != nil {
		return nil, err
	}
	defer release()

	// 2. 地址快照
	address, err := s.Addresses.GetAddress(ctx, input.UserID, input.AddressID)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	order := &model.Order{
		OrderNo:              model.NewOrderNo(now),
		UserID:               input.UserID,
		OrderDate:            now,
		Status:               model.OrderStatusPlaced,
		ShippingMethod:       input.ShippingMethod,
		ShippingFullName:     address.FullName,
		ShippingPhone:        address.Phone,
		ShippingCity:         address.City,
		ShippingDistrict:     address.District,
		ShippingNeighborhood: address.Neighborhood,
		ShippingAddressLine:  address.AddressLine,
		ShippingPostalCode:   address.PostalCode,
	}

	err = s.Tx.Transaction(ctx, func(tx *gorm.DB) error {
		carts := s.Carts.WithTx(tx)

		// 3. 读取购物车
		cartItems, err := s.loadCart(ctx, carts, input)
		if err != nil {
			return err
		}

		// 4. 生成明细并预检库存
		items, subtotal, err := s.buildItems(ctx, cartItems)
		if err != nil {
			return err
		}
		order.Items = items
		order.Subtotal = subtotal

		// 5. 优惠码只作用于商品小计
		discounted := subtotal
		var discount *discountService.Result
		if code := strings.TrimSpace(input.DiscountCode); code != "" {
			discount, err = s.Discounts.WithTx(tx).Validate(ctx, code, input.UserID, subtotal)
			if err != nil {
				return err
			}
			order.DiscountCode = &discount.Code
			order.DiscountPercentage = discount.Percentage
			order.DiscountAmount = discount.Amount
			discounted = subtotal.Sub(discount.Amount)
		}

		fee, err := s.Shipping.Fee(input.ShippingMethod, discounted)
		if err != nil {
			return err
		}
		order.ShippingFee = fee
		order.TotalAmount = discounted.Add(fee)

		// 6. 扣减库存，任一失败整单回滚
		inventory := s.Inventory.WithTx(tx)
		for _, item := range order.Items {
			if _, err := inventory.AdjustStock(ctx, item.ProductID, item.VariantID, -item.Quantity); err != nil {
				return err
			}
		}

		// 7. 写订单
		if err := s.Orders.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}

		// 8. 核销优惠码
		if discount != nil {
			if err := s.Discounts.WithTx(tx).MarkUsed(ctx, discount.CodeID, order.ID); err != nil {
				return err
			}
		}

		// 9. 删除已结算的购物车条目
		ids := make([]string, len(cartItems))
		for i, item := range cartItems {
			ids[i] = item.ID
		}
		return carts.DeleteByIDs(ctx, ids)
	})
	if err != nil {
		s.recordEvent("checkout_failed")
		return nil, err
	}

	s.recordEvent("placed")
	s.notify(ctx, worker.EventOrderPlaced, order, map[string]string{
		"total_amount": order.TotalAmount.StringFixed(2),
	})
	logger.Ctx(ctx).Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("order_no", order.OrderNo),
		zap.String("user_id", order.UserID),
		zap.String("total", order.TotalAmount.StringFixed(2)),
	)
	return order, nil
}

func (s *orderService) loadCart(ctx context.Context, carts cartRepository.CartRepository, input CheckoutInput) ([]cartModel.CartItem, error) {
	if len(input.CartItemIDs) == 0 {
		items, err := carts.ListByUser(ctx, input.UserID)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return nil, apperr.ErrEmptyCart
		}
		return items, nil
	}

	unique := make(map[string]struct{}, len(input.CartItemIDs))
	for _, id := range input.CartItemIDs {
		unique[id] = struct{}{}
	}
	ids := make([]string, 0, len(unique))
	for id := range unique {
		ids = append(ids, id)
	}

	items, err := carts.ListByIDs(ctx, input.UserID, ids)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperr.ErrEmptyCart
	}
	if len(items) != len(ids) {
		return nil, fmt.Errorf("some cart items do not exist: %w", apperr.ErrNotFound)
	}
	return items, nil
}

func (s *orderService) buildItems(ctx context.Context, cartItems []cartModel.CartItem) ([]model.OrderItem, decimal.Decimal, error) {
	productIDs := make([]string, 0, len(cartItems))
	var variantIDs []string
	for _, item := range cartItems {
		productIDs = append(productIDs, item.ProductID)
		if item.VariantID != nil {
			variantIDs = append(variantIDs, *item.VariantID)
		}
	}

	products, err := s.Catalog.ListProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, decimal.Zero, err
	}
	variants, err := s.Catalog.ListVariantsByIDs(ctx, variantIDs)
	if err != nil {
		return nil, decimal.Zero, err
	}
	productByID := make(map[string]*catalogModel.Product, len(products))
	for i := range products {
		productByID[products[i].ID] = &products[i]
	}
	variantByID := make(map[string]*catalogModel.ProductVariant, len(variants))
	for i := range variants {
		variantByID[variants[i].ID] = &variants[i]
	}

	items := make([]model.OrderItem, 0, len(cartItems))
	subtotal := decimal.Zero
	for _, ci := range cartItems {
		product, ok := productByID[ci.ProductID]
		if !ok || !product.IsActive {
			return nil, decimal.Zero, fmt.Errorf("product %s: %w", ci.ProductID, apperr.ErrNotFound)
		}
		var variant *catalogModel.ProductVariant
		if ci.VariantID != nil {
			variant, ok = variantByID[*ci.VariantID]
			if !ok || variant.ProductID != product.ID {
				return nil, decimal.Zero, fmt.Errorf("variant %s: %w", *ci.VariantID, apperr.ErrNotFound)
			}
		}

		if available := catalogModel.AvailableStock(product, variant); ci.Quantity > available {
			return nil, decimal.Zero, fmt.Errorf("product %s wants %d, %d left: %w",
				product.Name, ci.Quantity, available, apperr.ErrInsufficientStock)
		}

		item := model.OrderItem{
			ProductID:   ci.ProductID,
			VariantID:   ci.VariantID,
			ProductName: product.Name,
			UnitPrice:   catalogModel.UnitPrice(product, variant),
			Quantity:    ci.Quantity,
		}
		if variant != nil {
			item.VariantName = variant.Name
			item.SKU = variant.SKU
		}
		items = append(items, item)
		subtotal = subtotal.Add(item.LineTotal())
	}
	return items, subtotal, nil
}

// SetStatus 管理员推进履约状态，只允许前进一步；Placed/Preparing 可直接取消并回补库存
func (s *orderService) SetStatus(ctx context.Context, input SetStatusInput) (*StatusResult, error) {
	order, err := s.Orders.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanAdminTransition(input.Status) {
		return nil, fmt.Errorf("%s -> %s: %w", order.Status, input.Status, apperr.ErrInvalidTransition)
	}

	now := s.Now()
	if input.Status == model.OrderStatusCancelled {
		if err := s.cancel(ctx, order, now); err != nil {
			return nil, err
		}
		s.afterCancel(ctx, order, input.ActorID)
		return &StatusResult{ID: order.ID, Status: order.Status, TrackingNumber: order.TrackingNumber}, nil
	}

	updates := map[string]interface{}{"status": input.Status}
	switch input.Status {
	case model.OrderStatusShipped:
		tracking := strings.TrimSpace(input.TrackingNumber)
		if tracking == "" {
			return nil, fmt.Errorf("tracking number is required to ship: %w", apperr.ErrInvalidInput)
		}
		updates["tracking_number"] = tracking
		updates["shipped_date"] = now
		order.TrackingNumber = &tracking
		order.ShippedDate = &now
	case model.OrderStatusDelivered:
		updates["delivered_date"] = now
		order.DeliveredDate = &now
	}

	rows, err := s.Orders.UpdateWhereStatus(ctx, order.ID, order.Status, updates)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, fmt.Errorf("order %s changed concurrently: %w", order.ID, apperr.ErrConcurrencyConflict)
	}

	from := order.Status
	order.Status = input.Status
	s.recordEvent("status_changed")
	s.notify(ctx, worker.EventOrderStatusChanged, order, map[string]string{"from": from.String()})
	logger.Ctx(ctx).Info("order status changed",
		zap.String("order_id", order.ID),
		zap.String("from", from.String()),
		zap.String("to", order.Status.String()),
		zap.String("actor", input.ActorID),
	)
	return &StatusResult{ID: order.ID, Status: order.Status, TrackingNumber: order.TrackingNumber}, nil
}

// Cancel 用户取消自己的订单
func (s *orderService) Cancel(ctx context.Context, orderID, userID string) (*model.Order, error) {
	order, err := s.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("order %s: %w", orderID, apperr.ErrUnauthorized)
	}
	if err := cancellable(order.Status); err != nil {
		return nil, err
	}

	if err := s.cancel(ctx, order, s.Now()); err != nil {
		return nil, err
	}
	s.afterCancel(ctx, order, userID)
	return order, nil
}

func cancellable(status model.OrderStatus) error {
	if status == model.OrderStatusCancelled {
		return apperr.ErrAlreadyCancelled
	}
	if !status.CanCancel() {
		return fmt.Errorf("order is %s: %w", status, apperr.ErrTooLateToCancel)
	}
	return nil
}

// cancel 先 CAS 状态再回补库存，二者在同一事务中
func (s *orderService) cancel(ctx context.Context, order *model.Order, now time.Time) error {
	err := s.Tx.Transaction(ctx, func(tx *gorm.DB) error {
		orders := s.Orders.WithTx(tx)
		rows, err := orders.UpdateWhereStatus(ctx, order.ID, order.Status, map[string]interface{}{
			"status":         model.OrderStatusCancelled,
			"cancelled_date": now,
		})
		if err != nil {
			return err
		}
		if rows == 0 {
			// 状态已被其他请求修改，重新读取以给出准确错误
			current, err := orders.GetByID(ctx, order.ID)
			if err != nil {
				return err
			}
			if err := cancellable(current.Status); err != nil {
				return err
			}
			return fmt.Errorf("order %s changed concurrently: %w", order.ID, apperr.ErrConcurrencyConflict)
		}

		inventory := s.Inventory.WithTx(tx)
		for _, item := range order.Items {
			if _, err := inventory.AdjustStock(ctx, item.ProductID, item.VariantID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	order.Status = model.OrderStatusCancelled
	order.CancelledDate = &now
	return nil
}

func (s *orderService) afterCancel(ctx context.Context, order *model.Order, actorID string) {
	s.recordEvent("cancelled")
	s.notify(ctx, worker.EventOrderCancelled, order, nil)
	logger.Ctx(ctx).Info("order cancelled",
		zap.String("order_id", order.ID),
		zap.String("actor", actorID),
		zap.Int("items_restocked", len(order.Items)),
	)
}

func (s *orderService) GetOrder(ctx context.Context, orderID, userID string, isAdmin bool) (*model.Order, error) {
	order, err := s.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && order.UserID != userID {
		return nil, fmt.Errorf("order %s: %w", orderID, apperr.ErrUnauthorized)
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, userID string, p utils.Pagination) (utils.PageResult, error) {
	offset, limit := p.GetPageOffset()
	orders, total, err := s.Orders.ListByUser(ctx, userID, offset, limit)
	if err != nil {
		return utils.PageResult{}, err
	}
	return utils.NewPageResult(orders, total, p), nil
}

func (s *orderService) ListAllOrders(ctx context.Context, status model.OrderStatus, p utils.Pagination) (utils.PageResult, error) {
	offset, limit := p.GetPageOffset()
	orders, total, err := s.Orders.List(ctx, status, offset, limit)
	if err != nil {
		return utils.PageResult{}, err
	}
	return utils.NewPageResult(orders, total, p), nil
}

func (s *orderService) recordEvent(event string) {
	if s.Metrics != nil {
		s.Metrics.RecordOrderEvent(event)
	}
}

func (s *orderService) notify(ctx context.Context, kind string, order *model.Order, extra map[string]string) {
	if s.Notifier == nil {
		return
	}
	data := map[string]string{
		"order_id": order.ID,
		"order_no": order.OrderNo,
		"status":   order.Status.String(),
	}
	for k, v := range extra {
		data[k] = v
	}
	s.Notifier.Notify(ctx, worker.Event{Kind: kind, UserID: order.UserID, Template: kind, Data: data})
}
