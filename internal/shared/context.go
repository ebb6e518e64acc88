package shared

import "context"

// Operator is the dashboard user a session belongs to.
type Operator struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Anonymous reports whether no operator is signed in.
func (o Operator) Anonymous() bool {
	return o.ID == 0
}

type sessionContextKey struct{}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// OperatorFromContext returns the operator of the request session.
func OperatorFromContext(ctx context.Context) Operator {
	if sess := SessionFromContext(ctx); sess != nil {
		return sess.Operator()
	}
	return Operator{}
}
