package worker

import (
	"context"
	"testing"
	"time"
)

func TestPublishDoesNotBlockWhenFull(t *testing.T) {
	ch := make(chan VoteEvent, 1)

	if !Publish(ch, VoteEvent{QuestionID: 1, ChoiceID: 1}) {
		t.Fatalf("expected first publish to succeed")
	}
	if Publish(ch, VoteEvent{QuestionID: 1, ChoiceID: 2}) {
		t.Fatalf("expected publish on a full queue to be dropped")
	}
}

func TestRunDrainsAndStops(t *testing.T) {
	ch := make(chan VoteEvent, 4)
	w := NewStatsWorker(ch, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	ch <- VoteEvent{QuestionID: 1, ChoiceID: 2}
	ch <- VoteEvent{QuestionID: 3, ChoiceID: 4}
	close(ch)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("worker did not stop after channel close")
	}
	if len(ch) != 0 {
		t.Fatalf("expected all events drained, %d left", len(ch))
	}
}
