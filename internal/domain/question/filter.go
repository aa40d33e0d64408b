package question

import (
	"errors"
	"time"
)

// Publication date filters offered by the admin listing.
const (
	DateAny       = "any"
	DateToday     = "today"
	DatePast7Days = "past_7_days"
	DateThisMonth = "this_month"
	DateThisYear  = "this_year"
)

var ErrInvalidDateFilter = errors.New("invalid pub_date filter")

// PubDateRange returns the half-open [since, until) range selected by filter,
// computed in now's location. DateAny (or "") yields two zero times.
func PubDateRange(filter string, now time.Time) (since, until time.Time, err error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := today.AddDate(0, 0, 1)

	switch filter {
	case "", DateAny:
		return time.Time{}, time.Time{}, nil
	case DateToday:
		return today, tomorrow, nil
	case DatePast7Days:
		return today.AddDate(0, 0, -7), tomorrow, nil
	case DateThisMonth:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return first, first.AddDate(0, 1, 0), nil
	case DateThisYear:
		first := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		return first, first.AddDate(1, 0, 0), nil
	default:
		return time.Time{}, time.Time{}, ErrInvalidDateFilter
	}
}
