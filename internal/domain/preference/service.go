package preference

import "time"

// Service keeps the in-memory preference state of each user session.
// Nothing is persisted; state lives until the session ends or idles out.
type Service interface {
	Get(userID string) State
	Toggle(userID string, key Key, value bool) (State, error)
	Reset(userID string) State
	Forget(userID string)
	Sweep(idle time.Duration) int
}
