package interfaces

import (
	"context"
	"errors"
	"log"

	"osi-dues/internal/ledger/application"
)

// LoggingPublisher logs run completed events.
type LoggingPublisher struct {
	logger *log.Logger
}

// NewLoggingPublisher constructs a logging publisher.
func NewLoggingPublisher(logger *log.Logger) *LoggingPublisher {
	if logger == nil {
		logger = log.Default()
	}
	return &LoggingPublisher{logger: logger}
}

// PublishRunCompleted logs the event.
func (p *LoggingPublisher) PublishRunCompleted(ctx context.Context, event application.RunCompleted) error {
	_ = ctx
	if p == nil {
		return errors.New("run publisher: nil publisher")
	}
	if event.Report == nil {
		return errors.New("run publisher: nil report")
	}
	if rec := event.Report.Reconciliation; rec != nil {
		p.logger.Printf("run completed: id=%s outcome=%s extract=%s recorded=%s difference=%s",
			event.RunID, rec.Outcome, rec.ExtractTotal, rec.Recorded, rec.Difference)
		return nil
	}
	p.logger.Printf("run completed: id=%s aborted=%t allocated=%s", event.RunID, event.Report.Aborted, event.Report.Allocated())
	return nil
}
