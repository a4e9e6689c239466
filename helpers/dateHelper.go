package helpers

import (
	"strings"
	"time"
)

// DayLayout is the calendar-day key used by the quota ledger and revenue buckets.
const DayLayout = "2006-01-02"

func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayLayout)
}

// StartOfDay returns local midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// ShortOrderID is how an order id is shown to customers.
func ShortOrderID(orderID string) string {
	if len(orderID) > 6 {
		orderID = orderID[len(orderID)-6:]
	}
	return strings.ToUpper(orderID)
}
