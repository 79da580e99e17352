package checkout

import "context"

// Session is the opaque credential handed out by the authentication
// collaborator. The coordinator only forwards the access token; it never
// inspects it.
type Session struct {
	AccessToken string
	UserID      string
}

// SessionProvider exposes the current session, or nil when signed out.
type SessionProvider interface {
	Current(ctx context.Context) *Session
}

// StaticSession is a SessionProvider over a fixed token, handy for tests and
// for clients that log in once up front.
type StaticSession struct {
	Token  string
	UserID string
}

func (s StaticSession) Current(ctx context.Context) *Session {
	if s.Token == "" {
		return nil
	}
	return &Session{AccessToken: s.Token, UserID: s.UserID}
}
