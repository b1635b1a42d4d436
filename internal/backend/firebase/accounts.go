// Package firebase implements service.AccountService on Firebase
// Authentication: email/password sign-in and sign-up go through the
// Identity Toolkit REST API with the project's web API key, and, when
// service-account credentials are configured, ID tokens are verified and
// revoked with the Firebase Admin SDK.
package firebase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	fb "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"todowork/internal/backend/sessionfile"
	"todowork/internal/config"
	"todowork/internal/service"
)

// APITimeout bounds each Firebase call.
const APITimeout = 10 * time.Second

// TokenVerifier is the subset of the Admin SDK auth client used here.
// VerifyIDToken reports a definitive failure by wrapping ErrTokenExpired
// or ErrTokenRejected; any other error is treated as transient.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// Accounts implements service.AccountService using Firebase Authentication.
type Accounts struct {
	toolkit  *identitytoolkit.Service
	verifier  TokenVerifier // nil when no service account is configured
	refresher TokenRefresher
	session   *sessionfile.File

	mu     sync.Mutex
	subs   map[int]func(service.SessionEvent)
	nextID int
}

// New creates the Firebase account service from settings. The session is
// persisted at cfg.SessionPath().
func New(ctx context.Context, cfg *config.Config) (*Accounts, error) {
	fs := cfg.Settings.Firebase
	toolkit, err := identitytoolkit.NewService(ctx, option.WithAPIKey(fs.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create identity toolkit service: %w", err)
	}

	var verifier TokenVerifier
	if fs.CredentialsFile != "" {
		verifier, err = newAdminAuth(ctx, fs)
		if err != nil {
			return nil, err
		}
	}
	refresher := NewRefresher(fs.APIKey, SecureTokenURL, nil)
	return NewWithServices(toolkit, verifier, refresher, cfg.SessionPath()), nil
}

// NewWithServices creates the account service from prebuilt clients
// (for testing). verifier and refresher may be nil.
func NewWithServices(toolkit *identitytoolkit.Service, verifier TokenVerifier, refresher TokenRefresher, sessionPath string) *Accounts {
	return &Accounts{
		toolkit:   toolkit,
		verifier:  verifier,
		refresher: refresher,
		session:   sessionfile.New(sessionPath),
		subs:      make(map[int]func(service.SessionEvent)),
	}
}

func newAdminAuth(ctx context.Context, fs config.FirebaseSettings) (TokenVerifier, error) {
	var fbCfg *fb.Config
	if fs.ProjectID != "" {
		fbCfg = &fb.Config{ProjectID: fs.ProjectID}
	}
	app, err := fb.NewApp(ctx, fbCfg, option.WithCredentialsFile(fs.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase: %w", err)
	}

	initCtx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()
	client, err := app.Auth(initCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase auth: %w", err)
	}
	return adminVerifier{client: client}, nil
}

// SignIn implements service.AccountService.
func (a *Accounts) SignIn(ctx context.Context, email, password string) (service.SessionHandle, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	resp, err := a.toolkit.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return service.SessionHandle{}, wrapError(err)
	}
	return a.startSession(service.SessionHandle{
		UserID:       resp.LocalId,
		Email:        resp.Email,
		Token:        resp.IdToken,
		RefreshToken: resp.RefreshToken,
	})
}

// SignUp implements service.AccountService.
func (a *Accounts) SignUp(ctx context.Context, email, password string) (service.SessionHandle, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	resp, err := a.toolkit.Relyingparty.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:    email,
		Password: password,
	}).Context(ctx).Do()
	if err != nil {
		return service.SessionHandle{}, wrapError(err)
	}
	if resp.Email == "" {
		resp.Email = email
	}
	return a.startSession(service.SessionHandle{
		UserID:       resp.LocalId,
		Email:        resp.Email,
		Token:        resp.IdToken,
		RefreshToken: resp.RefreshToken,
	})
}

// SignOut implements service.AccountService. Refresh tokens are revoked
// when an Admin SDK client is configured; a revocation failure does not
// keep the local session alive.
func (a *Accounts) SignOut(ctx context.Context) error {
	h, ok, err := a.session.Load()
	if err != nil {
		return a.session.Remove()
	}
	if !ok {
		return nil
	}

	var revokeErr error
	if a.verifier != nil {
		ctx, cancel := context.WithTimeout(ctx, APITimeout)
		defer cancel()
		revokeErr = a.verifier.RevokeRefreshTokens(ctx, h.UserID)
	}
	if err := a.session.Remove(); err != nil {
		return err
	}
	a.notify(service.SessionEvent{Handle: h, Valid: false})
	if revokeErr != nil {
		return fmt.Errorf("failed to revoke tokens: %w", revokeErr)
	}
	return nil
}

// CurrentSession implements service.AccountService. With an Admin SDK
// client the stored ID token is verified. An expired token is renewed with
// the refresh token; the session ends only when Firebase rejects the
// credentials. Transient failures are returned and keep the session file.
func (a *Accounts) CurrentSession(ctx context.Context) (service.SessionHandle, bool, error) {
	h, ok, err := a.session.Load()
	if err != nil || !ok {
		return service.SessionHandle{}, false, err
	}
	if a.verifier == nil {
		return h, true, nil
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	token, err := a.verifier.VerifyIDToken(ctx, h.Token)
	if errors.Is(err, ErrTokenExpired) {
		h, err = a.refresh(ctx, h)
		if err != nil {
			return a.endSession(h, err)
		}
		token, err = a.verifier.VerifyIDToken(ctx, h.Token)
	}
	if err != nil {
		return a.endSession(h, err)
	}
	if token.UID != h.UserID {
		return a.endSession(h, ErrTokenRejected)
	}
	return h, true, nil
}

// refresh renews h's ID token and persists the result.
func (a *Accounts) refresh(ctx context.Context, h service.SessionHandle) (service.SessionHandle, error) {
	if a.refresher == nil || h.RefreshToken == "" {
		return h, ErrTokenRejected
	}
	idToken, refreshToken, err := a.refresher.Refresh(ctx, h.RefreshToken)
	if err != nil {
		return h, fmt.Errorf("failed to refresh session: %w", err)
	}
	h.Token, h.RefreshToken = idToken, refreshToken
	if err := a.session.Save(h); err != nil {
		return h, err
	}
	return h, nil
}

// endSession removes the session for definitive token failures and
// otherwise returns err with the session file intact.
func (a *Accounts) endSession(h service.SessionHandle, err error) (service.SessionHandle, bool, error) {
	if !errors.Is(err, ErrTokenRejected) && !errors.Is(err, ErrTokenExpired) {
		return service.SessionHandle{}, false, err
	}
	_ = a.session.Remove()
	a.notify(service.SessionEvent{Handle: h, Valid: false})
	return service.SessionHandle{}, false, nil
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

func (a *Accounts) startSession(h service.SessionHandle) (service.SessionHandle, error) {
	if h.UserID == "" || h.Token == "" {
		return service.SessionHandle{}, errors.New("firebase returned no session")
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

// wrapError maps Identity Toolkit error codes to service errors.
func wrapError(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		if strings.Contains(err.Error(), "context deadline exceeded") {
			return fmt.Errorf("request timed out")
		}
		return err
	}
	msg := apiErr.Message
	switch {
	case strings.HasPrefix(msg, "EMAIL_NOT_FOUND"),
		strings.HasPrefix(msg, "INVALID_PASSWORD"),
		strings.HasPrefix(msg, "INVALID_LOGIN_CREDENTIALS"):
		return service.ErrInvalidCredentials
	case strings.HasPrefix(msg, "EMAIL_EXISTS"):
		return service.ErrAccountExists
	case strings.HasPrefix(msg, "WEAK_PASSWORD"):
		return fmt.Errorf("password too weak")
	case strings.HasPrefix(msg, "INVALID_EMAIL"):
		return fmt.Errorf("invalid email address")
	case strings.HasPrefix(msg, "USER_DISABLED"):
		return fmt.Errorf("account disabled")
	case strings.HasPrefix(msg, "TOO_MANY_ATTEMPTS_TRY_LATER"):
		return fmt.Errorf("too many attempts, try again later")
	}
	return err
}
