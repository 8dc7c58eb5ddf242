package models

const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusCheckedIn  = "checked-in"
	StatusCheckedOut = "checked-out"
	StatusCancelled  = "cancelled"
	StatusDeleted    = "deleted"
)

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleStaff   = "staff"
)

const (
	// ConfirmationPrefix opens every booking reference handed to guests.
	ConfirmationPrefix = "IVY"

	// StatsWindowDays is the trailing window for the stats aggregate.
	StatsWindowDays = 30

	// DefaultRetentionDays is how long terminal reservations are kept
	// before the sweep removes them.
	DefaultRetentionDays = 7

	// DefaultSyncIntervalSeconds is the mirror poll period.
	DefaultSyncIntervalSeconds = 10

	// DefaultSweepIntervalMinutes is the retention sweep period.
	DefaultSweepIntervalMinutes = 60

	// WorkerQueueSize is the in-memory sync queue capacity.
	WorkerQueueSize = 128
)
