package archive

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/uwearuk/storefront/internal/orders/domain"
	"github.com/uwearuk/storefront/internal/orders/ports"
)

// Archiver migrates finished orders into the cold store. An order is
// eligible once it has been moved to sales and its creation date has passed
// the retention window.
//
// The run is two-phase: copy every eligible order, then delete only orders
// confirmed present in the archive. A crash between the phases leaves
// copies behind; the next run re-checks and completes the deletes, so no
// order is ever lost or duplicated.
type Archiver struct {
	orders    ports.OrderRepository
	archive   ports.ArchiveRepository
	retention time.Duration
	logger    *slog.Logger
}

func NewArchiver(
	orders ports.OrderRepository,
	archive ports.ArchiveRepository,
	retention time.Duration,
	logger *slog.Logger,
) *Archiver {
	return &Archiver{
		orders:    orders,
		archive:   archive,
		retention: retention,
		logger:    logger,
	}
}

// RunResult summarizes one archival sweep.
type RunResult struct {
	Archived int
	Deleted  int
}

// Run performs one sweep over eligible orders.
func (a *Archiver) Run(ctx context.Context) (*RunResult, error) {
	cutoff := time.Now().UTC().Add(-a.retention)
	moved := true

	eligible, err := a.orders.List(ctx, ports.ListFilter{
		IsMovedToSales: &moved,
		CreatedBefore:  &cutoff,
		PageSize:       archiveBatchSize,
	})
	if err != nil {
		return nil, err
	}

	if len(eligible) == 0 {
		a.logger.InfoContext(ctx, "no orders to archive")
		return &RunResult{}, nil
	}

	result := &RunResult{}
	archivedAt := time.Now().UTC()

	for _, order := range eligible {
		if err := a.archive.Copy(ctx, order, archivedAt); err != nil {
			a.logger.ErrorContext(ctx, "failed to copy order to archive", "error", err, "order_id", order.ID)
			continue
		}
		result.Archived++
	}

	for _, order := range eligible {
		deleted, err := a.sweep(ctx, order)
		if err != nil {
			a.logger.ErrorContext(ctx, "failed to delete archived order", "error", err, "order_id", order.ID)
			continue
		}
		if deleted {
			result.Deleted++
		}
	}

	a.logger.InfoContext(ctx, "archival run completed",
		"eligible", len(eligible), "archived", result.Archived, "deleted", result.Deleted)

	return result, nil
}

const archiveBatchSize = 500

// sweep deletes an active order only after confirming its archive copy
// exists.
func (a *Archiver) sweep(ctx context.Context, order domain.Order) (bool, error) {
	archived, err := a.archive.Contains(ctx, order.ID)
	if err != nil {
		return false, err
	}
	if !archived {
		return false, nil
	}

	if err := a.orders.Delete(ctx, order.ID); err != nil && !errors.Is(err, ports.ErrNotFound) {
		return false, err
	}

	return true, nil
}
