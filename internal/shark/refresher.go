package shark

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/strefethen/home-hub-go/internal/audit"
)

// Recorder accepts audit events. Writes must never fail the caller.
type Recorder interface {
	Record(input audit.WriteEventInput)
}

type noopRecorder struct{}

func (noopRecorder) Record(audit.WriteEventInput) {}

// Refresher renews the cloud session on a fixed schedule. Ayla tokens expire
// after 24 hours, so refreshing every 12 keeps a healthy margin. A failed
// refresh is logged and retried at the next tick; it never stops the service.
type Refresher struct {
	client   *Client
	cron     *cron.Cron
	recorder Recorder
	logger   *log.Logger
}

// NewRefresher builds a refresher for the given client. recorder may be nil.
func NewRefresher(client *Client, recorder Recorder, logger *log.Logger) *Refresher {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Refresher{
		client:   client,
		cron:     cron.New(),
		recorder: recorder,
		logger:   logger,
	}
}

// Start schedules the refresh job.
func (r *Refresher) Start() error {
	if _, err := r.cron.AddFunc("@every 12h", r.refresh); err != nil {
		return err
	}
	r.cron.Start()
	r.logger.Printf("shark token refresh scheduled every 12h")
	return nil
}

// Stop cancels the schedule and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}

func (r *Refresher) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := r.client.Refresh(ctx); err != nil {
		r.logger.Printf("ERROR: shark token refresh failed: %v", err)
		r.recorder.Record(audit.WriteEventInput{
			Type:    audit.EventTokenRefreshError,
			Level:   audit.EventLevelError,
			Message: err.Error(),
		})
		return
	}

	r.logger.Printf("shark token refreshed")
	r.recorder.Record(audit.WriteEventInput{
		Type:    audit.EventTokenRefreshed,
		Level:   audit.EventLevelInfo,
		Message: "shark session token refreshed",
	})
}
