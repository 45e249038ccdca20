package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"fleet/internal/logs"
)

type ctxKey string

const requestIDKey ctxKey = "reqid"

// HeaderRequestID принимается от клиента и всегда возвращается в ответе.
const HeaderRequestID = "X-Request-Id"

// RequestID кладёт в контекст id запроса и логгер с полем reqid.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		ctx = logs.WithContext(ctx, logs.FromContext(ctx).WithField("reqid", id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetRequestID(r *http.Request) string {
	if s, ok := r.Context().Value(requestIDKey).(string); ok {
		return s
	}
	return ""
}
