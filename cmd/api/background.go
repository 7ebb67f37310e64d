package main

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// startBackgroundJobs schedules the reconcile drain that replays order writes which
// failed after a verified payment.
func (app *application) startBackgroundJobs() error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	if _, err := app.reconciler.Schedule(s); err != nil {
		_ = s.Shutdown()
		return err
	}
	s.Start()
	app.scheduler = s

	app.logger.Infow("background jobs started", "reconcile_interval", app.config.reconcile.Interval.String())
	return nil
}

func (app *application) stopBackgroundJobs() {
	if app.scheduler != nil {
		if err := app.scheduler.Shutdown(); err != nil {
			app.logger.Errorw("scheduler shutdown", "error", err.Error())
		}
	}

	// one last pass so queued writes are not lost on a clean shutdown
	if app.reconciler != nil && app.reconciler.Len() > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		written, _ := app.reconciler.Drain(ctx)
		if left := app.reconciler.Len(); left > 0 {
			app.logger.Errorw("orders left unreconciled at shutdown", "count", left, "written", written)
		}
	}

	if app.checkout != nil {
		app.checkout.Wait()
	}
}
