package local

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"todowork/internal/backend/sessionfile"
	"todowork/internal/service"
)

// Accounts implements service.AccountService on the local database.
// The signed-in session is persisted to a session file so it survives
// process restarts; the token is checked against the sessions table.
type Accounts struct {
	store   *Store
	session *sessionfile.File

	mu     sync.Mutex
	subs   map[int]func(service.SessionEvent)
	nextID int
}

// NewAccounts creates an account service backed by store, persisting the
// current session at sessionPath.
func NewAccounts(store *Store, sessionPath string) *Accounts {
	return &Accounts{
		store:   store,
		session: sessionfile.New(sessionPath),
		subs:    make(map[int]func(service.SessionEvent)),
	}
}

// SignIn implements service.AccountService.
func (a *Accounts) SignIn(ctx context.Context, email, password string) (service.SessionHandle, error) {
	email = normalizeEmail(email)

	var id, hash string
	err := a.store.DB.QueryRowContext(ctx,
		`SELECT id, password_hash FROM accounts WHERE email = ?`, email,
	).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return service.SessionHandle{}, service.ErrInvalidCredentials
	}
	if err != nil {
		return service.SessionHandle{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return service.SessionHandle{}, service.ErrInvalidCredentials
	}
	return a.startSession(ctx, id, email)
}

// SignUp implements service.AccountService.
func (a *Accounts) SignUp(ctx context.Context, email, password string) (service.SessionHandle, error) {
	email = normalizeEmail(email)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return service.SessionHandle{}, err
	}
	id := uuid.NewString()
	_, err = a.store.DB.ExecContext(ctx,
		`INSERT INTO accounts (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		id, email, string(hash), time.Now().Unix())
	if err != nil {
		if isUniqueViolation(err) {
			return service.SessionHandle{}, service.ErrAccountExists
		}
		return service.SessionHandle{}, err
	}
	return a.startSession(ctx, id, email)
}

// SignOut implements service.AccountService. The session file is removed
// and subscribers are notified even when the token row cannot be deleted.
func (a *Accounts) SignOut(ctx context.Context) error {
	h, ok, err := a.session.Load()
	if err != nil {
		// Unreadable session file: drop it.
		return a.session.Remove()
	}
	if !ok {
		return nil
	}
	_, dbErr := a.store.DB.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, h.Token)
	removeErr := a.session.Remove()
	a.notify(service.SessionEvent{Handle: h, Valid: false})
	return errors.Join(dbErr, removeErr)
}

// CurrentSession implements service.AccountService. A session file whose
// token has been revoked is removed and reported to subscribers.
func (a *Accounts) CurrentSession(ctx context.Context) (service.SessionHandle, bool, error) {
	h, ok, err := a.session.Load()
	if err != nil || !ok {
		return service.SessionHandle{}, false, err
	}

	var userID string
	err = a.store.DB.QueryRowContext(ctx,
		`SELECT user_id FROM sessions WHERE token = ?`, h.Token,
	).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && userID != h.UserID) {
		_ = a.session.Remove()
		a.notify(service.SessionEvent{Handle: h, Valid: false})
		return service.SessionHandle{}, false, nil
	}
	if err != nil {
		return service.SessionHandle{}, false, err
	}
	return h, true, nil
}

// Subscribe implements service.AccountService.
func (a *Accounts) Subscribe(fn func(service.SessionEvent)) func() {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.nextID
	a.nextID++
	a.subs[id] = fn
	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.subs, id)
	}
}

// startSession issues a new token for userID, replacing the token of any
// session already persisted in the session file.
func (a *Accounts) startSession(ctx context.Context, userID, email string) (service.SessionHandle, error) {
	h := service.SessionHandle{UserID: userID, Email: email, Token: uuid.NewString()}

	tx, err := a.store.DB.BeginTx(ctx, nil)
	if err != nil {
		return service.SessionHandle{}, err
	}
	defer tx.Rollback()

	if prev, ok, _ := a.session.Load(); ok {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, prev.Token); err != nil {
			return service.SessionHandle{}, err
		}
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, created_at) VALUES (?, ?, ?)`,
		h.Token, userID, time.Now().Unix())
	if err != nil {
		return service.SessionHandle{}, err
	}
	if err := tx.Commit(); err != nil {
		return service.SessionHandle{}, err
	}

	if err := a.session.Save(h); err != nil {
		return service.SessionHandle{}, err
	}
	a.notify(service.SessionEvent{Handle: h, Valid: true})
	return h, nil
}

func (a *Accounts) notify(ev service.SessionEvent) {
	a.mu.Lock()
	fns := make([]func(service.SessionEvent), 0, len(a.subs))
	for _, fn := range a.subs {
		fns = append(fns, fn)
	}
	a.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
