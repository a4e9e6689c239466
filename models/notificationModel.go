package models

import "time"

// DailyCounter is the per-day outbound email ledger row, keyed by the
// calendar date of the deployment's zone.
type DailyCounter struct {
	Date       string    `bson:"_id" json:"date"`
	Count      int       `json:"count"`
	Updated_at time.Time `json:"updated_at"`
}

type QuotaStatus struct {
	Remaining int  `json:"remaining"`
	Can_send  bool `json:"canSend"`
	Limit     int  `json:"limit"`
}
