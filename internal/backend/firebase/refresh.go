package firebase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"firebase.google.com/go/v4/auth"
	"golang.org/x/oauth2"
)

// SecureTokenURL is the Firebase endpoint that exchanges refresh tokens.
const SecureTokenURL = "https://securetoken.googleapis.com/v1/token"

var (
	// ErrTokenExpired reports an ID token that is past its lifetime and
	// may be renewed with the refresh token.
	ErrTokenExpired = errors.New("ID token expired")

	// ErrTokenRejected reports a credential Firebase will never accept
	// again: revoked, malformed, or belonging to a disabled or deleted user.
	ErrTokenRejected = errors.New("token rejected")
)

// TokenRefresher exchanges a refresh token for a new ID token.
// Refresh returns an error wrapping ErrTokenRejected when Firebase
// refuses the refresh token itself.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (idToken, newRefreshToken string, err error)
}

// Refresher is a TokenRefresher that talks to the secure token service.
type Refresher struct {
	conf   oauth2.Config
	client *http.Client
}

// NewRefresher returns a Refresher posting to tokenURL with the web API
// key. A nil client uses http.DefaultClient.
func NewRefresher(apiKey, tokenURL string, client *http.Client) *Refresher {
	return &Refresher{
		conf: oauth2.Config{
			Endpoint: oauth2.Endpoint{
				TokenURL:  tokenURL + "?key=" + url.QueryEscape(apiKey),
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		client: client,
	}
}

// Refresh implements TokenRefresher.
func (r *Refresher) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	if r.client != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, r.client)
	}
	tok, err := r.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil &&
			re.Response.StatusCode >= 400 && re.Response.StatusCode < 500 {
			return "", "", fmt.Errorf("%w: %v", ErrTokenRejected, err)
		}
		return "", "", err
	}
	idToken, _ := tok.Extra("id_token").(string)
	if idToken == "" {
		return "", "", errors.New("token refresh returned no ID token")
	}
	next := tok.RefreshToken
	if next == "" {
		next = refreshToken
	}
	return idToken, next, nil
}

// adminVerifier adapts the Admin SDK client to TokenVerifier, sorting
// its errors into ErrTokenExpired, ErrTokenRejected, or transient.
type adminVerifier struct {
	client *auth.Client
}

func (v adminVerifier) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	token, err := v.client.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	switch {
	case err == nil:
		return token, nil
	case auth.IsIDTokenExpired(err):
		return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
	case auth.IsIDTokenRevoked(err), auth.IsIDTokenInvalid(err),
		auth.IsUserDisabled(err), auth.IsUserNotFound(err):
		return nil, fmt.Errorf("%w: %v", ErrTokenRejected, err)
	}
	return nil, err
}

func (v adminVerifier) RevokeRefreshTokens(ctx context.Context, uid string) error {
	return v.client.RevokeRefreshTokens(ctx, uid)
}
