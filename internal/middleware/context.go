package middleware

import (
	"context"

	"finditweb/internal/session"
)

type ctxKey string

const (
	ctxRequestID ctxKey = "request_id"
	ctxSession   ctxKey = "session"
)

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxRequestID, id)
}

func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(ctxRequestID).(string)
	return v
}

func WithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, ctxSession, s)
}

func SessionFrom(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(ctxSession).(*session.Session)
	return s, ok && s != nil
}
