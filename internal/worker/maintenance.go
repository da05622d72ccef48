package worker

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lojinha/internal/domain"
	"lojinha/internal/repo"
	"lojinha/internal/service"
)

// MaintenanceWorker runs the periodic cleanups: canceling boleto orders whose
// slip expired unpaid, and purging notifications past retention.
type MaintenanceWorker struct {
	db            *sql.DB
	orders        repo.OrderRepo
	payments      repo.PaymentRepo
	notifications repo.NotificationRepo
	orderService  service.OrderService
	interval      time.Duration
	retention     time.Duration
	logger        *zap.Logger
}

func NewMaintenanceWorker(
	db *sql.DB,
	orders repo.OrderRepo,
	payments repo.PaymentRepo,
	notifications repo.NotificationRepo,
	orderService service.OrderService,
	interval, retention time.Duration,
	logger *zap.Logger,
) *MaintenanceWorker {
	return &MaintenanceWorker{
		db:            db,
		orders:        orders,
		payments:      payments,
		notifications: notifications,
		orderService:  orderService,
		interval:      interval,
		retention:     retention,
		logger:        logger,
	}
}

func (w *MaintenanceWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("maintenance worker started", zap.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.process(ctx); err != nil {
				w.logger.Error("maintenance pass failed", zap.Error(err))
			}
		}
	}
}

func (w *MaintenanceWorker) process(ctx context.Context) error {
	expired, err := w.orders.FindExpiredBoletoOrders(ctx, time.Now())
	if err != nil {
		return err
	}
	for _, order := range expired {
		// Operator-style cancel so the transition and notification go
		// through the same path as a manual cancellation.
		if _, err := w.orderService.Cancel(ctx, order.ID, uuid.Nil, true); err != nil {
			w.logger.Error("failed to cancel expired boleto order",
				zap.String("order_id", order.ID.String()), zap.Error(err))
			continue
		}
		if err := w.expirePayment(ctx, order.ID); err != nil {
			w.logger.Error("failed to expire payment",
				zap.String("order_id", order.ID.String()), zap.Error(err))
		}
		w.logger.Info("canceled expired boleto order", zap.String("order_id", order.ID.String()))
	}

	purged, err := w.notifications.PurgeOlderThan(ctx, time.Now().Add(-w.retention))
	if err != nil {
		return err
	}
	if purged > 0 {
		w.logger.Info("purged old notifications", zap.Int64("count", purged))
	}
	return nil
}

// expirePayment marks the pending slip EXPIRED after its order was canceled.
func (w *MaintenanceWorker) expirePayment(ctx context.Context, orderID uuid.UUID) error {
	pay, err := w.payments.FindByOrderId(ctx, orderID)
	if err != nil || pay == nil || pay.Status != domain.PaymentPending {
		return err
	}
	pay.Status = domain.PaymentExpired

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := w.payments.UpdateStatus(ctx, tx, pay); err != nil {
		return err
	}
	return tx.Commit()
}
