package ports

// Notifier surfaces the outcome of a user action (the toast of a UI).
type Notifier interface {
	Success(title, description string)
	Error(title, description string)
}
