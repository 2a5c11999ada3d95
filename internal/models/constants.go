package models

const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusDeclined = "Declined"
)

const (
	// ConfirmationCodeAlphabet is the URL-safe alphabet confirmation codes
	// are drawn from. Collisions across bookings are accepted, not checked.
	ConfirmationCodeAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

	// ConfirmationCodeLength is the issued code length.
	ConfirmationCodeLength = 9
)

const (
	// WorkerQueueSize is the ledger worker's in-memory queue size.
	WorkerQueueSize = 128

	// WatchBufferSize is the per-subscriber snapshot buffer. Snapshots
	// coalesce when the consumer lags, latest wins.
	WatchBufferSize = 1
)
