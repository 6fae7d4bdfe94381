// Package worker recomputes the month-end forecast on a schedule and
// publishes the headline numbers as AMQP events.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bilancio/internal/amqp"
	"bilancio/internal/forecast"
	"bilancio/internal/ledger"
	"bilancio/internal/log"
)

// ForecastPublisher is the publish side of the AMQP client.
type ForecastPublisher interface {
	PublishForecastComputed(ctx context.Context, msg *amqp.ForecastComputedMessage) error
}

type ForecastWorker struct {
	predictor *forecast.Predictor
	publisher ForecastPublisher
	interval  time.Duration
	now       func() time.Time
}

// NewForecastWorker builds a worker over the given ledger. publisher
// may be nil, in which case forecasts are computed and logged only.
func NewForecastWorker(l ledger.Ledger, lookbackMonths int, publisher ForecastPublisher, interval time.Duration) *ForecastWorker {
	return &ForecastWorker{
		predictor: forecast.NewPredictor(l, lookbackMonths),
		publisher: publisher,
		interval:  interval,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Run computes a forecast immediately and then on every tick until the
// context ends. A failed cycle is logged and the loop continues; only
// context cancellation stops the worker.
func (w *ForecastWorker) Run(ctx context.Context) error {
	if err := w.RunOnce(ctx); err != nil {
		slog.ErrorContext(ctx, "Forecast cycle failed", "error", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Forecast worker stopping", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if err := w.RunOnce(ctx); err != nil {
				slog.ErrorContext(ctx, "Forecast cycle failed", "error", err)
			}
		}
	}
}

// LogForecastComputed handles forecast events read back from the
// queue, recording the headline numbers. It backs the worker's consume
// mode, where the process acts as a logging sink for the exchange.
func LogForecastComputed(msg *amqp.ForecastComputedMessage) error {
	if msg == nil {
		return errors.New("nil forecast event")
	}
	slog.Info("Forecast event received",
		log.FieldComponent, log.ComponentWorker,
		log.FieldYear, msg.Year,
		log.FieldMonth, msg.Month,
		log.FieldConfidence, msg.Confidence,
		"projected_end_of_month", msg.ProjectedEndOfMonth,
		"will_exceed_budget", msg.WillExceedBudget)
	return nil
}

// RunOnce computes one forecast and publishes the result.
func (w *ForecastWorker) RunOnce(ctx context.Context) error {
	now := w.now()

	result, err := w.predictor.Predict(ctx, now)
	if err != nil {
		return fmt.Errorf("compute forecast: %w", err)
	}

	slog.InfoContext(ctx, "Forecast computed",
		"year", result.Year,
		"month", result.Month,
		"day", result.Day,
		"projected_total_spend", result.ProjectedTotalSpend,
		"will_exceed_budget", result.WillExceedBudget,
		"confidence", result.Confidence)

	if w.publisher == nil {
		return nil
	}
	if err := w.publisher.PublishForecastComputed(ctx, amqp.NewForecastComputedMessage(result)); err != nil {
		return fmt.Errorf("publish forecast event: %w", err)
	}
	return nil
}
