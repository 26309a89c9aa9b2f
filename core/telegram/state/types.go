package state

// Cloner is implemented by session types that can produce a deep copy.
type Cloner[T any] interface {
	Clone() T
}

// Manager stores one session value per user.
type Manager[T any] interface {
	// Load returns a copy of the user's session and whether one was stored.
	Load(userID int64) (T, bool)
	// Store saves a copy of v as the user's session.
	Store(userID int64, v T)
	// Clear drops the user's session.
	Clear(userID int64)
	// Has reports whether the user has a stored session.
	Has(userID int64) bool
}
