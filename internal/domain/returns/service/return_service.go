package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	inventoryService "shop_backend/internal/domain/inventory/service"
	orderModel "shop_backend/internal/domain/order/model"
	orderRepository "shop_backend/internal/domain/order/repository"
	"shop_backend/internal/domain/returns/model"
	"shop_backend/internal/domain/returns/repository"
	"shop_backend/internal/pkg/worker"
	"shop_backend/pkg/apperr"
	"shop_backend/pkg/database"
	"shop_backend/pkg/logger"
	"shop_backend/pkg/metrics"
	baseModel "shop_backend/pkg/model"
	"shop_backend/pkg/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies 退货服务依赖
type Dependencies struct {
	Tx        database.TxManager
	Returns   repository.ReturnRepository
	Orders    orderRepository.OrderRepository
	Inventory inventoryService.InventoryService
	Notifier  worker.Notifier
	Metrics   *metrics.MetricsCollector
	Now       func() time.Time
}

type RequestInput struct {
	OrderID     string
	UserID      string
	Reason      string
	Description string
}

type RefundInput struct {
	ReturnID      string
	Amount        decimal.Decimal
	Method        string
	TransactionID string
}

type ReturnService interface {
	RequestReturn(ctx context.Context, input RequestInput) (*model.ReturnRequest, error)
	Review(ctx context.Context, returnID string, approve bool, adminNote string) (*model.ReturnRequest, error)
	MarkShipped(ctx context.Context, returnID, trackingNumber string) (*model.ReturnRequest, error)
	MarkReceived(ctx context.Context, returnID string) (*model.ReturnRequest, error)
	MarkInspected(ctx context.Context, returnID string) (*model.ReturnRequest, error)
	StartRefund(ctx context.Context, returnID string) (*model.ReturnRequest, error)
	CompleteRefund(ctx context.Context, input RefundInput) (*model.ReturnRequest, error)
	CancelReturn(ctx context.Context, returnID, actorID string, isAdmin bool) (*model.ReturnRequest, error)
	GetReturn(ctx context.Context, returnID, userID string, isAdmin bool) (*model.ReturnRequest, error)
	ListByUser(ctx context.Context, userID string, p utils.Pagination) (utils.PageResult, error)
	ListAll(ctx context.Context, statuses []orderModel.ReturnStatus, p utils.Pagination) (utils.PageResult, error)
}

type returnService struct {
	Dependencies
}

func NewReturnService(deps Dependencies) ReturnService {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &returnService{Dependencies: deps}
}

// RequestReturn 用户对已签收订单发起退货
func (s *returnService) RequestReturn(ctx context.Context, input RequestInput) (*model.ReturnRequest, error) {
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, fmt.Errorf("return reason is required: %w", apperr.ErrInvalidInput)
	}

	order, err := s.Orders.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != input.UserID {
		return nil, fmt.Errorf("order %s: %w", order.ID, apperr.ErrUnauthorized)
	}
	if order.ReturnStatus.Active() {
		return nil, apperr.ErrReturnAlreadyOpen
	}
	if order.Status != orderModel.OrderStatusDelivered {
		return nil, fmt.Errorf("order is %s, only delivered orders can be returned: %w", order.Status, apperr.ErrInvalidTransition)
	}

	now := s.Now()
	rr := &model.ReturnRequest{
		OrderID:     order.ID,
		UserID:      order.UserID,
		ReturnCode:  model.NewReturnCode(now),
		Reason:      reason,
		Description: baseModel.StringPtr(strings.TrimSpace(input.Description)),
		RequestDate: now,
		Status:      orderModel.ReturnStatusRequested,
	}

	err = s.Tx.Transaction(ctx, func(tx *gorm.DB) error {
		returns := s.Returns.WithTx(tx)
		open, err := returns.HasActiveForOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		if open {
			return apperr.ErrReturnAlreadyOpen
		}
		if err := returns.Create(ctx, rr); err != nil {
			// 部分唯一索引兜底并发申请
			if database.IsUniqueViolation(err, "") {
				return apperr.ErrReturnAlreadyOpen
			}
			return err
		}
		return s.syncOrder(ctx, tx, rr, orderModel.ReturnStatusNone)
	})
	if err != nil {
		return nil, err
	}

	s.afterTransition(ctx, rr, orderModel.ReturnStatusNone, input.UserID)
	return rr, nil
}

// Review 管理员审核：通过或拒绝
func (s *returnService) Review(ctx context.Context, returnID string, approve bool, adminNote string) (*model.ReturnRequest, error) {
	to := orderModel.ReturnStatusRejected
	if approve {
		to = orderModel.ReturnStatusApproved
	}
	return s.transition(ctx, transition{
		returnID: returnID,
		to:       to,
		apply: func(rr *model.ReturnRequest, order *orderModel.Order, now time.Time) error {
			rr.AdminNote = baseModel.StringPtr(strings.TrimSpace(adminNote))
			rr.ReviewedDate = &now
			if approve {
				rr.ApprovedDate = &now
			}
			return nil
		},
	})
}

// MarkShipped 用户已寄回，登记物流单号
func (s *returnService) MarkShipped(ctx context.Context, returnID, trackingNumber string) (*model.ReturnRequest, error) {
	return s.transition(ctx, transition{
		returnID: returnID,
		to:       orderModel.ReturnStatusInTransit,
		apply: func(rr *model.ReturnRequest, order *orderModel.Order, now time.Time) error {
			tracking := strings.TrimSpace(trackingNumber)
			if tracking == "" {
				return fmt.Errorf("tracking number is required: %w", apperr.ErrInvalidInput)
			}
			rr.TrackingNumber = &tracking
			rr.ShippedDate = &now
			return nil
		},
	})
}

func (s *returnService) MarkReceived(ctx context.Context, returnID string) (*model.ReturnRequest, error) {
	return s.transition(ctx, transition{
		returnID: returnID,
		to:       orderModel.ReturnStatusReceived,
		apply: func(rr *model.ReturnRequest, order *orderModel.Order, now time.Time) error {
			rr.ReceivedDate = &now
			return nil
		},
	})
}

func (s *returnService) MarkInspected(ctx context.Context, returnID string) (*model.ReturnRequest, error) {
	return s.transition(ctx, transition{
		returnID: returnID,
		to:       orderModel.ReturnStatusInspecting,
		apply: func(rr *model.ReturnRequest, order *orderModel.Order, now time.Time) error {
			rr.InspectedDate = &now
			return nil
		},
	})
}

// StartRefund 提交退款，等待支付渠道回执
func (s *returnService) StartRefund(ctx context.Context, returnID string) (*model.ReturnRequest, error) {
	return s.transition(ctx, transition{
		returnID: returnID,
		to:       orderModel.ReturnStatusRefundProcessing,
	})
}

// CompleteRefund 退款完成，整单商品回补库存
func (s *returnService) CompleteRefund(ctx context.Context, input RefundInput) (*model.ReturnRequest, error) {
	return s.transition(ctx, transition{
		returnID: input.ReturnID,
		to:       orderModel.ReturnStatusRefundCompleted,
		restock:  true,
		apply: func(rr *model.ReturnRequest, order *orderModel.Order, now time.Time) error {
			if !input.Amount.IsPositive() {
				return fmt.Errorf("refund amount must be positive: %w", apperr.ErrInvalidAmount)
			}
			if input.Amount.GreaterThan(order.TotalAmount) {
				return fmt.Errorf("refund %s exceeds order total %s: %w",
					input.Amount.StringFixed(2), order.TotalAmount.StringFixed(2), apperr.ErrInvalidAmount)
			}
			method := strings.TrimSpace(input.Method)
			if method == "" {
				return fmt.Errorf("refund method is required: %w", apperr.ErrInvalidInput)
			}
			amount := input.Amount.Round(2)
			rr.RefundAmount = &amount
			rr.RefundMethod = &method
			rr.RefundTransactionID = baseModel.StringPtr(strings.TrimSpace(input.TransactionID))
			rr.RefundProcessedDate = &now
			return nil
		},
	})
}

// CancelReturn 申请人或管理员撤销进行中的退货，订单回到已签收
func (s *returnService) CancelReturn(ctx context.Context, returnID, actorID string, isAdmin bool) (*model.ReturnRequest, error) {
	return s.transition(ctx, transition{
		returnID: returnID,
		to:       orderModel.ReturnStatusCancelled,
		actorID:  actorID,
		authorize: func(rr *model.ReturnRequest) error {
			if !isAdmin && rr.UserID != actorID {
				return fmt.Errorf("return %s: %w", rr.ID, apperr.ErrUnauthorized)
			}
			return nil
		},
		apply: func(rr *model.ReturnRequest, order *orderModel.Order, now time.Time) error {
			rr.CancelledDate = &now
			return nil
		},
	})
}

type transition struct {
	returnID  string
	to        orderModel.ReturnStatus
	actorID   string
	restock   bool
	authorize func(rr *model.ReturnRequest) error
	apply     func(rr *model.ReturnRequest, order *orderModel.Order, now time.Time) error
}

// transition 校验状态机后，在同一事务里 CAS 退货单和订单镜像
func (s *returnService) transition(ctx context.Context, t transition) (*model.ReturnRequest, error) {
	rr, err := s.Returns.GetByID(ctx, t.returnID)
	if err != nil {
		return nil, err
	}
	if t.authorize != nil {
		if err := t.authorize(rr); err != nil {
			return nil, err
		}
	}
	if !rr.Status.CanTransitionTo(t.to) {
		return nil, fmt.Errorf("return %s -> %s: %w", rr.Status, t.to, apperr.ErrInvalidTransition)
	}

	order, err := s.Orders.GetByID(ctx, rr.OrderID)
	if err != nil {
		return nil, err
	}

	from := rr.Status
	now := s.Now()
	rr.Status = t.to
	if t.apply != nil {
		if err := t.apply(rr, order, now); err != nil {
			return nil, err
		}
	}

	err = s.Tx.Transaction(ctx, func(tx *gorm.DB) error {
		rows, err := s.Returns.WithTx(tx).CompareAndUpdate(ctx, rr, from)
		if err != nil {
			return err
		}
		if rows == 0 {
			return fmt.Errorf("return %s changed concurrently: %w", rr.ID, apperr.ErrConcurrencyConflict)
		}
		if err := s.syncOrder(ctx, tx, rr, from); err != nil {
			return err
		}

		if t.restock {
			inventory := s.Inventory.WithTx(tx)
			for _, item := range order.Items {
				if _, err := inventory.AdjustStock(ctx, item.ProductID, item.VariantID, item.Quantity); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	actor := t.actorID
	if actor == "" {
		actor = "admin"
	}
	s.afterTransition(ctx, rr, from, actor)
	return rr, nil
}

// syncOrder 用退货单覆盖订单镜像字段，以上一个退货状态对应的订单状态做 CAS
func (s *returnService) syncOrder(ctx context.Context, tx *gorm.DB, rr *model.ReturnRequest, from orderModel.ReturnStatus) error {
	expected := orderModel.OrderStatusForReturn(from)
	rows, err := s.Orders.WithTx(tx).UpdateWhereStatus(ctx, rr.OrderID, expected, rr.OrderMirror())
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("order %s is no longer %s: %w", rr.OrderID, expected, apperr.ErrConcurrencyConflict)
	}
	return nil
}

func (s *returnService) afterTransition(ctx context.Context, rr *model.ReturnRequest, from orderModel.ReturnStatus, actorID string) {
	if s.Metrics != nil {
		s.Metrics.RecordReturnTransition(rr.Status.String())
	}
	if s.Notifier != nil {
		s.Notifier.Notify(ctx, worker.Event{
			Kind:     worker.EventReturnStatusChanged,
			UserID:   rr.UserID,
			Template: worker.EventReturnStatusChanged,
			Data: map[string]string{
				"return_id":   rr.ID,
				"return_code": rr.ReturnCode,
				"order_id":    rr.OrderID,
				"from":        from.String(),
				"status":      rr.Status.String(),
			},
		})
	}
	logger.Ctx(ctx).Info("return transitioned",
		zap.String("return_id", rr.ID),
		zap.String("order_id", rr.OrderID),
		zap.String("from", from.String()),
		zap.String("to", rr.Status.String()),
		zap.String("actor", actorID),
	)
}

func (s *returnService) GetReturn(ctx context.Context, returnID, userID string, isAdmin bool) (*model.ReturnRequest, error) {
	rr, err := s.Returns.GetByID(ctx, returnID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && rr.UserID != userID {
		return nil, fmt.Errorf("return %s: %w", returnID, apperr.ErrUnauthorized)
	}
	return rr, nil
}

func (s *returnService) ListByUser(ctx context.Context, userID string, p utils.Pagination) (utils.PageResult, error) {
	offset, limit := p.GetPageOffset()
	list, total, err := s.Returns.ListByUser(ctx, userID, offset, limit)
	if err != nil {
		return utils.PageResult{}, err
	}
	return utils.NewPageResult(list, total, p), nil
}

func (s *returnService) ListAll(ctx context.Context, statuses []orderModel.ReturnStatus, p utils.Pagination) (utils.PageResult, error) {
	offset, limit := p.GetPageOffset()
	list, total, err := s.Returns.List(ctx, statuses, offset, limit)
	if err != nil {
		return utils.PageResult{}, err
	}
	return utils.NewPageResult(list, total, p), nil
}
