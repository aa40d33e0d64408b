package question

import (
	"errors"
	"sort"
	"time"
)

// RecentWindow is the trailing window used by WasPublishedRecently.
const RecentWindow = 24 * time.Hour

// ErrNotFound covers both unknown ids and questions that are not published yet.
var ErrNotFound = errors.New("question not found")

// WasPublishedRecently returns true iff now-24h <= pubDate <= now.
func WasPublishedRecently(pubDate, now time.Time) bool {
	if pubDate.After(now) {
		return false
	}
	return !pubDate.Before(now.Add(-RecentWindow))
}

// ListVisible returns the questions published at or before now, most recent
// first. Questions sharing a pub date keep their input order.
func ListVisible(questions []Question, now time.Time) []Question {
	res := make([]Question, 0, len(questions))
	for _, q := range questions {
		if q.IsVisible(now) {
			res = append(res, q)
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].PubDate.After(res[j].PubDate)
	})
	return res
}

// GetVisible looks up id among questions and hides it unless it is published.
func GetVisible(questions []Question, id int64, now time.Time) (Question, error) {
	for _, q := range questions {
		if q.ID != id {
			continue
		}
		if !q.IsVisible(now) {
			return Question{}, ErrNotFound
		}
		return q, nil
	}
	return Question{}, ErrNotFound
}
