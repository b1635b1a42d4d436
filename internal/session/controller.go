package session

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"todowork/internal/observe"
	"todowork/internal/service"
)

// Controller is the single source of truth for the authentication status.
// It publishes a new Session only when a whole chain (account call plus the
// dependent profile read or write) has completed.
type Controller struct {
	accounts service.AccountService
	profiles service.ProfileStore
	log      *slog.Logger

	state *observe.Value[Session]
	unsub func()
}

// New creates a Controller in the Loading state and subscribes to the
// account service's session notifications. Call Close to unsubscribe.
func New(accounts service.AccountService, profiles service.ProfileStore, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	c := &Controller{
		accounts: accounts,
		profiles: profiles,
		log:      log.With("component", "session"),
		state:    observe.NewValue(loading()),
	}
	c.unsub = accounts.Subscribe(c.onSessionEvent)
	return c
}

// Session returns the current snapshot.
func (c *Controller) Session() Session {
	return c.state.Get()
}

// Subscribe delivers every Session published after the call.
func (c *Controller) Subscribe() (<-chan Session, func()) {
	return c.state.Subscribe()
}

// Close detaches from the account service and closes subscriber channels.
func (c *Controller) Close() {
	if c.unsub != nil {
		c.unsub()
		c.unsub = nil
	}
	c.state.Close()
}

// CheckSession resolves the startup status from the account service.
// A failed profile lookup still yields Authenticated with placeholder
// profile fields.
func (c *Controller) CheckSession(ctx context.Context) Session {
	handle, ok, err := c.accounts.CurrentSession(ctx)
	if err != nil {
		c.log.Warn("session check failed", "err", err)
		ok = false
	}
	if !ok {
		return c.publish(unauthenticated())
	}
	return c.publish(c.withProfile(ctx, handle))
}

// SignIn authenticates with email and password. Blank input is rejected
// without a transition; a backend failure publishes Error.
func (c *Controller) SignIn(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return service.Required("email")
	}
	if password == "" {
		return service.Required("password")
	}

	handle, err := c.accounts.SignIn(ctx, email, password)
	if err != nil {
		err = service.Remote("sign in", err)
		c.publish(failed(service.Message(err)))
		return err
	}
	c.publish(c.withProfile(ctx, handle))
	return nil
}

// SignUp creates an account and writes its profile record. An account whose
// profile write failed is left in place.
func (c *Controller) SignUp(ctx context.Context, email, password, displayName, secondaryID string) error {
	email = strings.TrimSpace(email)
	displayName = strings.TrimSpace(displayName)
	secondaryID = strings.TrimSpace(secondaryID)
	switch {
	case email == "":
		return service.Required("email")
	case password == "":
		return service.Required("password")
	case displayName == "":
		return service.Required("display name")
	case secondaryID == "":
		return service.Required("secondary id")
	}

	handle, err := c.accounts.SignUp(ctx, email, password)
	if err != nil {
		err = service.Remote("sign up", err)
		c.publish(failed(service.Message(err)))
		return err
	}

	profile := service.Profile{DisplayName: displayName, SecondaryID: secondaryID}
	if err := c.profiles.SetProfile(ctx, handle.UserID, profile); err != nil {
		err = service.Remote("save profile", err)
		c.log.Warn("account created without profile", "user", handle.UserID, "err", err)
		c.publish(failed(service.Message(err)))
		return err
	}

	c.publish(authenticated(handle.UserID, handle.Email, displayName, secondaryID))
	return nil
}

// SignOut ends the session and publishes Unauthenticated regardless of the
// prior status or the outcome of the backend call.
func (c *Controller) SignOut(ctx context.Context) error {
	err := c.accounts.SignOut(ctx)
	if err != nil {
		err = service.Remote("sign out", err)
		c.log.Warn("sign out failed", "err", err)
	}
	c.publish(unauthenticated())
	return err
}

// AwaitSettled blocks until the status leaves Loading and at least minDelay
// has elapsed, then returns the current Session.
func (c *Controller) AwaitSettled(ctx context.Context, minDelay time.Duration) (Session, error) {
	ch, cancel := c.Subscribe()
	defer cancel()

	var timer <-chan time.Time
	if minDelay > 0 {
		t := time.NewTimer(minDelay)
		defer t.Stop()
		timer = t.C
	}

	settled := c.Session().Status != Loading
	for !settled || timer != nil {
		select {
		case <-ctx.Done():
			return c.Session(), ctx.Err()
		case <-timer:
			timer = nil
		case s, ok := <-ch:
			if !ok {
				return c.Session(), nil
			}
			settled = s.Status != Loading
		}
	}
	return c.Session(), nil
}

func (c *Controller) withProfile(ctx context.Context, handle service.SessionHandle) Session {
	p, ok, err := c.profiles.GetProfile(ctx, handle.UserID)
	if err != nil {
		c.log.Warn("profile lookup failed", "user", handle.UserID, "err", err)
	}
	if err != nil || !ok {
		p = service.Profile{}
	}
	return authenticated(handle.UserID, handle.Email, p.DisplayName, p.SecondaryID)
}

func (c *Controller) onSessionEvent(ev service.SessionEvent) {
	if ev.Valid {
		return
	}
	cur := c.Session()
	if cur.Status != Authenticated {
		return
	}
	if ev.Handle.UserID != "" && ev.Handle.UserID != cur.UserID {
		return
	}
	c.log.Debug("session invalidated externally", "user", cur.UserID)
	c.publish(unauthenticated())
}

func (c *Controller) publish(s Session) Session {
	prev := c.state.Get()
	c.state.Set(s)
	c.log.Debug("session transition", "from", prev.Status, "to", s.Status)
	return s
}
