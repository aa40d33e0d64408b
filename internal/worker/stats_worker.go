package worker

import (
	"context"
	"log/slog"

	"pollsite/internal/metrics"
)

type VoteEvent struct {
	QuestionID int64
	ChoiceID   int64
}

// StatsWorker drains accepted vote events off the request path and turns
// them into metrics and log lines.
type StatsWorker struct {
	Ch     <-chan VoteEvent
	logger *slog.Logger
}

func NewStatsWorker(ch <-chan VoteEvent, logger *slog.Logger) *StatsWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsWorker{Ch: ch, logger: logger}
}

// Run blocks until ctx is done or the channel is closed.
func (w *StatsWorker) Run(ctx context.Context) {
	w.logger.Info("stats worker started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("stats worker stopped")
			return
		case ev, ok := <-w.Ch:
			if !ok {
				w.logger.Info("stats worker stopped", "reason", "channel closed")
				return
			}
			metrics.IncVote()
			w.logger.Debug("vote recorded", "question_id", ev.QuestionID, "choice_id", ev.ChoiceID)
		}
	}
}

// Publish hands ev to the worker without blocking the caller. Events are
// dropped, and counted, when the queue is full.
func Publish(ch chan<- VoteEvent, ev VoteEvent) bool {
	select {
	case ch <- ev:
		return true
	default:
		metrics.IncVoteEventDropped()
		return false
	}
}
