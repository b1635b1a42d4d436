package app

import "todowork/internal/session"

// Follow drains ch the way Start's goroutine does, then returns.
func (a *App) Follow(ch <-chan session.Session) {
	a.follow(ch, func() {})
}

func (a *App) HasStore() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store != nil
}
