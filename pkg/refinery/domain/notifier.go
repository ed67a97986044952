package domain

// Notifier surfaces transient status messages to the user (for example, that a refinement
// step failed and was skipped). Notifications are fire-and-forget: nothing is persisted.
type Notifier interface {
	Notify(message string)
}
