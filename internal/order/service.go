package order

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"
	"storefront-be/internal/payment"
	"storefront-be/internal/pricing"
	"storefront-be/internal/product"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReceiptDispatcher generates and sends the post-payment document for an
// order. Dispatch happens outside the transition transaction and its failure
// never undoes the transition.
type ReceiptDispatcher interface {
	Dispatch(ctx context.Context, o *Order) error
}

type CreateOrderItemInput struct {
	ProductID uuid.UUID
	Quantity  int
	// UnitPrice overrides the catalog list price when set (admin-created
	// orders). Normal checkout leaves it nil and the current list price is
	// snapshotted.
	UnitPrice *float64
}

type CreateOrderInput struct {
	Items                []CreateOrderItemInput
	DeliveryMethod       DeliveryMethod
	PaymentMethod        PaymentMethod
	ReceiptType          ReceiptType
	DocType              string
	DocNumber            string
	TaxID                *string
	BusinessName         *string
	ExpectedDeliveryDate *time.Time
	Discount             float64
}

// OrderHandle is what checkout returns to the client: enough to start the
// provider flow, nothing more.
type OrderHandle struct {
	OrderID       uuid.UUID     `json:"order_id"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	TotalAmount   float64       `json:"total_amount"`
}

type ConfirmResult struct {
	OrderID       uuid.UUID `json:"order_id"`
	TransactionID string    `json:"transaction_id"`
	AlreadyPaid   bool      `json:"already_paid"`
}

type Service interface {
	CreateOrder(ctx context.Context, buyerID uuid.UUID, in CreateOrderInput) (*OrderHandle, error)

	// TransitionStatus moves the order to target atomically. The PAID target
	// additionally decrements stock for every line item; externalTxnID, when
	// non-empty, is stored on the payment row.
	TransitionStatus(ctx context.Context, orderID uuid.UUID, target OrderStatus, externalTxnID string) error

	// ConfirmPayment captures the provider-side order and, on success,
	// transitions the local order to PAID. Safe to retry.
	ConfirmPayment(ctx context.Context, orderID uuid.UUID, externalOrderID string) (*ConfirmResult, error)

	// CanTransitionToCancelled reports whether the order is still in a
	// cancellable state (PENDING or PAID).
	CanTransitionToCancelled(ctx context.Context, orderID uuid.UUID) (bool, error)

	CancelOrder(ctx context.Context, orderID uuid.UUID, buyerID uuid.UUID, admin bool) error

	GetOrder(ctx context.Context, orderID uuid.UUID) (*Order, error)
	GetOrdersForBuyer(ctx context.Context, buyerID uuid.UUID) ([]*Order, error)
	GetAllOrders(ctx context.Context) ([]*Order, error)
}

type service struct {
	db          *sql.DB
	repo        Repository
	productRepo product.Repository
	paymentRepo payment.Repository
	gateway     payment.Gateway
	receipts    ReceiptDispatcher

	now func() time.Time
}

func NewService(
	db *sql.DB,
	repo Repository,
	productRepo product.Repository,
	paymentRepo payment.Repository,
	gateway payment.Gateway,
	receipts ReceiptDispatcher,
) Service {
	return &service{
		db:          db,
		repo:        repo,
		productRepo: productRepo,
		paymentRepo: paymentRepo,
		gateway:     gateway,
		receipts:    receipts,
		now:         time.Now,
	}
}

func (s *service) CreateOrder(ctx context.Context, buyerID uuid.UUID, in CreateOrderInput) (*OrderHandle, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateOrder"),
		zap.String("buyer_id", buyerID.String()),
	)

	if len(in.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: product %s", ErrInvalidQuantity, item.ProductID)
		}
	}

	now := s.now()
	o := &Order{
		ID:                   uuid.New(),
		BuyerID:              buyerID,
		OrderDate:            now,
		Discount:             in.Discount,
		DeliveryMethod:       in.DeliveryMethod,
		PaymentMethod:        in.PaymentMethod,
		Status:               StatusPending,
		ReceiptType:          in.ReceiptType,
		DocType:              in.DocType,
		DocNumber:            in.DocNumber,
		TaxID:                in.TaxID,
		BusinessName:         in.BusinessName,
		ExpectedDeliveryDate: in.ExpectedDeliveryDate,
	}

	// Every line item must resolve to a catalog product, even when the
	// caller supplies its own price. Stock is NOT touched here; the
	// decrement happens once, at the PAID transition.
	var total float64
	for _, item := range in.Items {
		p, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			log.Warn("order references unknown product",
				zap.String("product_id", item.ProductID.String()), zap.Error(err))
			return nil, err
		}

		unitPrice := p.Price
		if item.UnitPrice != nil {
			unitPrice = *item.UnitPrice
		}

		o.Items = append(o.Items, OrderItem{
			ID:        uuid.New(),
			OrderID:   o.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: unitPrice,
		})
		total += float64(item.Quantity) * unitPrice
	}

	if in.Discount < 0 || in.Discount > total {
		return nil, fmt.Errorf("%w: %.2f against item total %.2f", ErrInvalidDiscount, in.Discount, total)
	}
	o.TotalAmount = pricing.RoundCurrency(total - in.Discount)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.repo.CreateTx(ctx, tx, o); err != nil {
		return nil, err
	}

	p := &payment.Payment{
		ID:      uuid.New(),
		OrderID: o.ID,
		Amount:  o.TotalAmount,
		Method:  string(o.PaymentMethod),
		Status:  payment.StatusPending,
	}
	if err := s.paymentRepo.CreateTx(ctx, tx, p); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	metrics.OrdersCreated.Inc()
	log.Info("order created",
		zap.String("order_id", o.ID.String()),
		zap.Float64("total_amount", o.TotalAmount),
		zap.Int("item_count", len(o.Items)),
	)

	return &OrderHandle{
		OrderID:       o.ID,
		PaymentMethod: o.PaymentMethod,
		TotalAmount:   o.TotalAmount,
	}, nil
}

func (s *service) TransitionStatus(ctx context.Context, orderID uuid.UUID, target OrderStatus, externalTxnID string) error {
	err := s.transition(ctx, orderID, target, externalTxnID)
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.Transitions.WithLabelValues(string(target), result).Inc()
	return err
}

func (s *service) transition(ctx context.Context, orderID uuid.UUID, target OrderStatus, externalTxnID string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "TransitionStatus"),
		zap.String("order_id", orderID.String()),
		zap.String("target", string(target)),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	o, err := s.repo.GetForUpdateTx(ctx, tx, orderID)
	if err != nil {
		return err
	}

	if target == StatusPaid {
		if err := s.decrementStockTx(ctx, tx, log, o.Items); err != nil {
			return err
		}
	}

	if !CanTransition(o.Status, target) {
		log.Warn("transition denied", zap.String("current", string(o.Status)))
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, target)
	}

	if err := s.repo.UpdateStatusTx(ctx, tx, orderID, target); err != nil {
		return err
	}

	// Payment status is a pure function of the order's target status. The
	// provider transaction id and payment date are stamped only when one was
	// actually captured.
	var txnID *string
	var paidAt *time.Time
	if externalTxnID != "" {
		txnID = &externalTxnID
		t := s.now()
		paidAt = &t
	}
	if err := s.paymentRepo.UpdateForOrderTx(ctx, tx, orderID, paymentStatusFor(target), txnID, paidAt); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transition: %w", err)
	}

	log.Info("order transitioned", zap.String("from", string(o.Status)))

	if target == StatusPaid {
		o.Status = StatusPaid
		s.dispatchReceipt(o)
	}

	return nil
}

// decrementStockTx locks every referenced product, verifies availability, and
// writes the decremented stock. Products are locked in id order so two
// transitions touching overlapping products cannot deadlock.
func (s *service) decrementStockTx(ctx context.Context, tx *sql.Tx, log *zap.Logger, items []OrderItem) error {
	sorted := make([]OrderItem, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ProductID.String() < sorted[j].ProductID.String()
	})

	for _, item := range sorted {
		p, err := s.productRepo.GetForUpdateTx(ctx, tx, item.ProductID)
		if err != nil {
			return err
		}

		if p.Stock < item.Quantity {
			log.Warn("insufficient stock",
				zap.String("product_id", p.ID.String()),
				zap.Int("stock", p.Stock),
				zap.Int("requested", item.Quantity),
			)
			return fmt.Errorf("%w: product %q has %d, order needs %d",
				ErrInsufficientStock, p.Name, p.Stock, item.Quantity)
		}

		remaining := p.Stock - item.Quantity
		active := p.Active && remaining > 0
		if err := s.productRepo.UpdateStockTx(ctx, tx, p.ID, remaining, active); err != nil {
			return err
		}
	}

	return nil
}

// dispatchReceipt hands the order to the receipt pipeline on its own
// goroutine. The transition already committed; a dispatch failure is logged
// and counted, never propagated.
func (s *service) dispatchReceipt(o *Order) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.receipts.Dispatch(ctx, o); err != nil {
			metrics.ReceiptDispatchFailures.Inc()
			logger.L().Error("receipt dispatch failed",
				zap.String("order_id", o.ID.String()),
				zap.Error(err),
			)
		}
	}()
}

func (s *service) ConfirmPayment(ctx context.Context, orderID uuid.UUID, externalOrderID string) (*ConfirmResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ConfirmPayment"),
		zap.String("order_id", orderID.String()),
		zap.String("external_order_id", externalOrderID),
	)

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// Retried confirmation of an already-paid order is a success, not an
	// error. Return the stored transaction id so the response matches the
	// first attempt's.
	if o.Status == StatusPaid {
		log.Info("order already paid, returning stored result")
		res := &ConfirmResult{OrderID: orderID, AlreadyPaid: true}
		if p, err := s.paymentRepo.GetByOrder(ctx, orderID); err == nil && p.TransactionID != nil {
			res.TransactionID = *p.TransactionID
		}
		metrics.Captures.WithLabelValues("already_paid").Inc()
		return res, nil
	}

	remote, err := s.gateway.CaptureOrder(ctx, externalOrderID)
	if err != nil {
		metrics.Captures.WithLabelValues("error").Inc()
		return nil, err
	}
	if remote.Status != payment.GatewayStatusCompleted {
		metrics.Captures.WithLabelValues("error").Inc()
		log.Error("capture returned non-completed status", zap.String("remote_status", remote.Status))
		return nil, fmt.Errorf("%w: remote status %s", payment.ErrCaptureFailed, remote.Status)
	}

	if err := s.TransitionStatus(ctx, orderID, StatusPaid, remote.ID); err != nil {
		metrics.Captures.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.Captures.WithLabelValues("ok").Inc()
	log.Info("payment confirmed", zap.String("transaction_id", remote.ID))

	return &ConfirmResult{OrderID: orderID, TransactionID: remote.ID}, nil
}

func (s *service) CanTransitionToCancelled(ctx context.Context, orderID uuid.UUID) (bool, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return false, err
	}
	return CanTransition(o.Status, StatusCancelled), nil
}

// CancelOrder is the buyer-facing cancellation path: buyers may only cancel
// their own orders, admins anyone's. The transition rules still apply, so
// cancellation past PAID is rejected.
func (s *service) CancelOrder(ctx context.Context, orderID uuid.UUID, buyerID uuid.UUID, admin bool) error {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if !admin && o.BuyerID != buyerID {
		return ErrUnauthorized
	}
	if !CanTransition(o.Status, StatusCancelled) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, StatusCancelled)
	}
	return s.TransitionStatus(ctx, orderID, StatusCancelled, "")
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	return s.repo.GetByID(ctx, orderID)
}

func (s *service) GetOrdersForBuyer(ctx context.Context, buyerID uuid.UUID) ([]*Order, error) {
	return s.repo.ListByBuyer(ctx, buyerID)
}

func (s *service) GetAllOrders(ctx context.Context) ([]*Order, error) {
	return s.repo.ListAll(ctx)
}

// paymentStatusFor derives the payment status from the order's target status.
// PAID completes it, CANCELLED refunds it, every other target marks it FAILED.
func paymentStatusFor(target OrderStatus) payment.Status {
	switch target {
	case StatusPaid:
		return payment.StatusCompleted
	case StatusCancelled:
		return payment.StatusRefunded
	default:
		return payment.StatusFailed
	}
}
