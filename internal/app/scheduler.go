package app

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// AggregateReconciler пересчитывает производные рейтинги учителей
type AggregateReconciler interface {
	ReconcileAggregates(ctx context.Context) (int, error)
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	reconciler AggregateReconciler
	interval   time.Duration
	logger     *zap.Logger
	stopChan   chan struct{}
	done       chan struct{}
	started    atomic.Bool
}

// NewScheduler создаёт новый планировщик
func NewScheduler(reconciler AggregateReconciler, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		reconciler: reconciler,
		interval:   interval,
		logger:     logger,
		stopChan:   make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start запускает фоновые задачи. Нулевой интервал отключает сверку.
func (s *Scheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info("Background scheduler disabled")
		close(s.done)
		return
	}

	s.logger.Info("Starting background scheduler", zap.Duration("interval", s.interval))

	// Запускаем сверку рейтингов
	s.started.Store(true)
	go s.runReconcileTask(ctx)
}

// Stop останавливает фоновые задачи и ждёт их завершения
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}

	// Задача не запускалась, ждать нечего
	if !s.started.Load() {
		return
	}
	<-s.done
}

// runReconcileTask периодически пересчитывает рейтинги учителей из строк занятий
func (s *Scheduler) runReconcileTask(ctx context.Context) {
	defer close(s.done)

	// Первый запуск сразу при старте
	s.reconcile(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.reconcile(ctx)
		case <-s.stopChan:
			s.logger.Info("Aggregate reconcile task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Aggregate reconcile task cancelled")
			return
		}
	}
}

func (s *Scheduler) reconcile(ctx context.Context) {
	s.logger.Info("Starting teacher rating reconciliation")

	n, err := s.reconciler.ReconcileAggregates(ctx)
	if err != nil {
		s.logger.Error("Failed to reconcile teacher ratings", zap.Int("reconciled", n), zap.Error(err))
		return
	}

	s.logger.Info("Teacher rating reconciliation completed", zap.Int("reconciled", n))
}
