package client

import (
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	apperrors "github.com/kurihiro0119/community-console/internal/errors"
)

// Roles of a signed-in user
const (
	RoleMember   = "member"
	RoleAdmin    = "admin"
	RoleInvestor = "investor"
)

// Session is the signed-in identity handed explicitly to a Client.
// An empty Role is a member.
type Session struct {
	AccessToken string
	Role        string
}

// Require fails unless the session holds role
func (s *Session) Require(role string) error {
	if s == nil {
		return apperrors.NewUnauthorizedError("not signed in")
	}
	current := s.Role
	if current == "" {
		current = RoleMember
	}
	if current != role {
		return apperrors.NewForbiddenError(fmt.Sprintf("requires the %s role, signed in as %s", role, current))
	}
	return nil
}

// TokenSource serves the session token
func (s *Session) TokenSource() oauth2.TokenSource {
	return oauth2.ReuseTokenSource(nil, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: s.AccessToken}))
}

// accessTokenHeader is where the backend expects the token (not Authorization)
const accessTokenHeader = "accessToken"

// tokenTransport adds the session token to every request
type tokenTransport struct {
	source oauth2.TokenSource
	base   http.RoundTripper
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	tok, err := t.source.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, errors.New("session has no access token")
	}
	// RoundTrippers must not modify the caller's request
	r := req.Clone(req.Context())
	r.Header.Set(accessTokenHeader, tok.AccessToken)
	return t.base.RoundTrip(r)
}
