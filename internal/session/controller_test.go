package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todowork/internal/service"
	"todowork/internal/session"
	"todowork/internal/testutil"
)

func newController(t *testing.T) (*session.Controller, *testutil.FakeAccounts, *testutil.FakeProfiles) {
	t.Helper()
	accounts := testutil.NewFakeAccounts()
	profiles := testutil.NewFakeProfiles()
	c := session.New(accounts, profiles, nil)
	t.Cleanup(c.Close)
	return c, accounts, profiles
}

func TestNew_StartsLoading(t *testing.T) {
	c, _, _ := newController(t)
	assert.Equal(t, session.Loading, c.Session().Status)

	_, _, ok := c.Session().Profile()
	assert.False(t, ok, "profile must not be readable while loading")
}

func TestCheckSession_NoSession(t *testing.T) {
	c, _, _ := newController(t)

	s := c.CheckSession(context.Background())
	assert.Equal(t, session.Unauthenticated, s.Status)
	assert.Equal(t, session.Unauthenticated, c.Session().Status)
}

func TestCheckSession_LiveSessionWithProfile(t *testing.T) {
	c, accounts, profiles := newController(t)
	id := accounts.AddAccount("fay@example.com", "secret")
	accounts.SetCurrent("fay@example.com")
	profiles.Put(id, service.Profile{DisplayName: "Fay", SecondaryID: "123456"})

	s := c.CheckSession(context.Background())
	require.Equal(t, session.Authenticated, s.Status)
	name, sid, ok := s.Profile()
	require.True(t, ok)
	assert.Equal(t, "Fay", name)
	assert.Equal(t, "123456", sid)
	assert.Equal(t, id, s.UserID)
}

func TestCheckSession_ProfileFailureKeepsAuthenticated(t *testing.T) {
	c, accounts, profiles := newController(t)
	accounts.AddAccount("fay@example.com", "secret")
	accounts.SetCurrent("fay@example.com")
	profiles.GetProfileErr = errors.New("permission denied")

	s := c.CheckSession(context.Background())
	require.Equal(t, session.Authenticated, s.Status)
	name, sid, ok := s.Profile()
	require.True(t, ok)
	assert.Equal(t, session.PlaceholderName, name)
	assert.Equal(t, session.PlaceholderSecondaryID, sid)
}

func TestCheckSession_LookupErrorIsUnauthenticated(t *testing.T) {
	c, accounts, _ := newController(t)
	accounts.CurrentSessionErr = errors.New("network down")

	s := c.CheckSession(context.Background())
	assert.Equal(t, session.Unauthenticated, s.Status)
}

func TestSignIn_Success(t *testing.T) {
	c, accounts, profiles := newController(t)
	id := accounts.AddAccount("fay@example.com", "secret")
	profiles.Put(id, service.Profile{DisplayName: "Fay", SecondaryID: "123456"})

	require.NoError(t, c.SignIn(context.Background(), "fay@example.com", "secret"))

	s := c.Session()
	require.Equal(t, session.Authenticated, s.Status)
	name, _, _ := s.Profile()
	assert.Equal(t, "Fay", name)
}

func TestSignIn_SuccessWithoutProfileUsesPlaceholders(t *testing.T) {
	c, accounts, _ := newController(t)
	accounts.AddAccount("fay@example.com", "secret")

	require.NoError(t, c.SignIn(context.Background(), "fay@example.com", "secret"))

	name, sid, ok := c.Session().Profile()
	require.True(t, ok)
	assert.NotEmpty(t, name)
	assert.NotEmpty(t, sid)
}

func TestSignIn_BlankInputIsNoOp(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"empty email", "", "secret"},
		{"blank email", "   ", "secret"},
		{"empty password", "fay@example.com", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, _ := newController(t)
			err := c.SignIn(context.Background(), tt.email, tt.password)
			require.ErrorIs(t, err, service.ErrValidation)
			assert.Equal(t, session.Loading, c.Session().Status)
		})
	}
}

func TestSignIn_BadCredentialsPublishesError(t *testing.T) {
	c, accounts, _ := newController(t)
	accounts.AddAccount("fay@example.com", "secret")

	err := c.SignIn(context.Background(), "fay@example.com", "wrong")
	require.ErrorIs(t, err, service.ErrRemote)
	require.ErrorIs(t, err, service.ErrInvalidCredentials)

	s := c.Session()
	assert.Equal(t, session.Error, s.Status)
	assert.Equal(t, service.ErrInvalidCredentials.Error(), s.Message)
	_, _, ok := s.Profile()
	assert.False(t, ok)
}

func TestSignIn_RetryAfterError(t *testing.T) {
	c, accounts, _ := newController(t)
	accounts.AddAccount("fay@example.com", "secret")

	require.Error(t, c.SignIn(context.Background(), "fay@example.com", "wrong"))
	require.Equal(t, session.Error, c.Session().Status)

	require.NoError(t, c.SignIn(context.Background(), "fay@example.com", "secret"))
	assert.Equal(t, session.Authenticated, c.Session().Status)
}

func TestSignUp_Success(t *testing.T) {
	c, accounts, profiles := newController(t)

	err := c.SignUp(context.Background(), "new@example.com", "pw", "Fay", "123456")
	require.NoError(t, err)

	s := c.Session()
	require.Equal(t, session.Authenticated, s.Status)
	name, sid, _ := s.Profile()
	assert.Equal(t, "Fay", name)
	assert.Equal(t, "123456", sid)
	assert.True(t, accounts.HasAccount("new@example.com"))

	p, ok, err := profiles.GetProfile(context.Background(), s.UserID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, service.Profile{DisplayName: "Fay", SecondaryID: "123456"}, p)
}

func TestSignUp_RequiresAllFields(t *testing.T) {
	fields := [][4]string{
		{"", "pw", "Fay", "1"},
		{"a@b.c", "", "Fay", "1"},
		{"a@b.c", "pw", " ", "1"},
		{"a@b.c", "pw", "Fay", ""},
	}
	for _, f := range fields {
		c, accounts, profiles := newController(t)
		err := c.SignUp(context.Background(), f[0], f[1], f[2], f[3])
		require.ErrorIs(t, err, service.ErrValidation)
		assert.Equal(t, session.Loading, c.Session().Status)
		assert.False(t, accounts.HasAccount("a@b.c"))
		assert.Equal(t, 0, profiles.SetProfileCalls)
	}
}

func TestSignUp_AccountFailureWritesNoProfile(t *testing.T) {
	c, accounts, profiles := newController(t)
	accounts.SignUpErr = errors.New("email already in use")

	err := c.SignUp(context.Background(), "new@example.com", "pw", "Fay", "123456")
	require.ErrorIs(t, err, service.ErrRemote)

	assert.Equal(t, session.Error, c.Session().Status)
	assert.Equal(t, "email already in use", c.Session().Message)
	assert.Equal(t, 0, profiles.SetProfileCalls)
	assert.Equal(t, 0, profiles.Len())
}

func TestSignUp_ProfileFailureLeavesAccount(t *testing.T) {
	c, accounts, profiles := newController(t)
	profiles.SetProfileErr = errors.New("quota exceeded")

	err := c.SignUp(context.Background(), "new@example.com", "pw", "Fay", "123456")
	require.Error(t, err)

	assert.Equal(t, session.Error, c.Session().Status)
	assert.True(t, accounts.HasAccount("new@example.com"))
}

func TestSignOut_Idempotent(t *testing.T) {
	c, accounts, _ := newController(t)
	accounts.AddAccount("fay@example.com", "secret")
	require.NoError(t, c.SignIn(context.Background(), "fay@example.com", "secret"))

	require.NoError(t, c.SignOut(context.Background()))
	assert.Equal(t, session.Unauthenticated, c.Session().Status)

	require.NoError(t, c.SignOut(context.Background()))
	assert.Equal(t, session.Unauthenticated, c.Session().Status)
	assert.Equal(t, 2, accounts.SignOutCalls)
}

func TestSignOut_FromAnyState(t *testing.T) {
	c, accounts, _ := newController(t)
	accounts.SignInErr = errors.New("offline")
	_ = c.SignIn(context.Background(), "fay@example.com", "secret")
	require.Equal(t, session.Error, c.Session().Status)

	require.NoError(t, c.SignOut(context.Background()))
	assert.Equal(t, session.Unauthenticated, c.Session().Status)
}

func TestSignOut_BackendFailureStillUnauthenticated(t *testing.T) {
	c, accounts, _ := newController(t)
	accounts.AddAccount("fay@example.com", "secret")
	require.NoError(t, c.SignIn(context.Background(), "fay@example.com", "secret"))
	accounts.SignOutErr = errors.New("network down")

	err := c.SignOut(context.Background())
	require.ErrorIs(t, err, service.ErrRemote)
	assert.Equal(t, session.Unauthenticated, c.Session().Status)
}

func TestExternalInvalidation(t *testing.T) {
	c, accounts, _ := newController(t)
	accounts.AddAccount("fay@example.com", "secret")
	require.NoError(t, c.SignIn(context.Background(), "fay@example.com", "secret"))

	accounts.Invalidate()
	assert.Equal(t, session.Unauthenticated, c.Session().Status)
}

func TestExternalInvalidation_IgnoredWhenNotAuthenticated(t *testing.T) {
	c, accounts, _ := newController(t)
	accounts.AddAccount("fay@example.com", "secret")
	accounts.SetCurrent("fay@example.com")

	accounts.Invalidate()
	assert.Equal(t, session.Loading, c.Session().Status)
}

func TestSubscribe_ReceivesTransition(t *testing.T) {
	c, accounts, _ := newController(t)
	accounts.AddAccount("fay@example.com", "secret")

	ch, cancel := c.Subscribe()
	defer cancel()

	require.NoError(t, c.SignIn(context.Background(), "fay@example.com", "secret"))

	select {
	case s := <-ch:
		assert.Equal(t, session.Authenticated, s.Status)
	case <-time.After(time.Second):
		t.Fatal("no snapshot published")
	}
}

func TestAwaitSettled_WaitsForCheck(t *testing.T) {
	c, _, _ := newController(t)

	go func() {
		time.Sleep(10 * time.Millisecond)
		c.CheckSession(context.Background())
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s, err := c.AwaitSettled(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, session.Unauthenticated, s.Status)
}

func TestAwaitSettled_HonorsMinimumDelay(t *testing.T) {
	c, _, _ := newController(t)
	c.CheckSession(context.Background())

	start := time.Now()
	s, err := c.AwaitSettled(context.Background(), 30*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, session.Unauthenticated, s.Status)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestAwaitSettled_ContextCancelled(t *testing.T) {
	c, _, _ := newController(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s, err := c.AwaitSettled(ctx, 0)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, session.Loading, s.Status)
}
