package finance

import (
	"context"
	"sync"

	"solomanager/internal/logger"
	"solomanager/internal/notify"
)

// State is what the finance view renders.
type State struct {
	Period  Period
	Data    *Data
	Loading bool
}

// Controller holds the selected period and refetches the report whenever
// it changes. Failures clear the report and surface through the notifier.
type Controller struct {
	client   Client
	notifier notify.Notifier

	mu    sync.Mutex
	state State
}

func NewController(client Client, notifier notify.Notifier) *Controller {
	return &Controller{
		client:   client,
		notifier: notifier,
		state:    State{Period: PeriodCurrentMonth},
	}
}

func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetPeriod switches the reporting window and refetches. An unknown
// period is rejected without touching the current report.
func (c *Controller) SetPeriod(ctx context.Context, period Period) error {
	if !ValidPeriod(period) {
		return &invalidPeriodError{period: period}
	}

	c.mu.Lock()
	c.state.Period = period
	c.mu.Unlock()

	return c.fetch(ctx)
}

// Refresh refetches the report for the current period.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.fetch(ctx)
}

func (c *Controller) fetch(ctx context.Context) error {
	c.mu.Lock()
	period := c.state.Period
	c.state.Loading = true
	c.mu.Unlock()

	data, err := c.client.GetData(ctx, period)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Loading = false
	if err != nil {
		logger.WithError(err).Error("finance fetch failed")
		c.state.Data = nil
		c.notifier.Error("Failed to load finance data")
		return err
	}
	c.state.Data = data
	return nil
}

type invalidPeriodError struct {
	period Period
}

func (e *invalidPeriodError) Error() string {
	return "invalid period: " + string(e.period)
}
