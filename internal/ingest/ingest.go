package ingest

import (
	"time"
)

// Run summarises one import. Every requested ISBN lands in exactly one of
// Invalid, NotFound, Created, Existing or Failed.
type Run struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string // RUNNING, COMPLETED, FAILED

	Requested int
	Invalid   int
	NotFound  int
	Fetched   int
	Created   int
	Existing  int
	Failed    int
	Error     string
}

const (
	StatusRunning   = "RUNNING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)
