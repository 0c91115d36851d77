package cron

import (
	"context"
	"fmt"

	"github.com/erancho/erancho-backend/pkg/logger"
)

// OrphanSweepJobParams configure the orphaned reservation sweep.
type OrphanSweepJobParams struct {
	Logger  *logger.Logger
	Sweeper orphanSweeper
}

type orphanSweeper interface {
	SweepOrphans(ctx context.Context) (int64, error)
}

// NewOrphanSweepJob builds the job deleting reservations of removed people.
func NewOrphanSweepJob(params OrphanSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Sweeper == nil {
		return nil, fmt.Errorf("reservation sweeper required")
	}
	return &orphanSweepJob{logg: params.Logger, sweeper: params.Sweeper}, nil
}

type orphanSweepJob struct {
	logg    *logger.Logger
	sweeper orphanSweeper
}

func (j *orphanSweepJob) Name() string { return "orphan-reservation-sweep" }

func (j *orphanSweepJob) Run(ctx context.Context) error {
	removed, err := j.sweeper.SweepOrphans(ctx)
	if err != nil {
		return fmt.Errorf("orphan sweep: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "removed", removed), "orphaned reservations swept")
	return nil
}
