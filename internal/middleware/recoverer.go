package middleware

import (
	"net/http"
	"runtime/debug"

	"fleet/internal/logs"
	"fleet/internal/models"
)

// Recoverer перехватывает панику в обработчике, пишет лог со стеком
// и возвращает 500 в формате application/problem+json.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logs.FromContext(r.Context()).
				WithField("panic", rec).
				WithField("uri", r.RequestURI).
				Errorf("handler panicked\nstack:\n%s", debug.Stack())
			models.WriteProblem(w, http.StatusInternalServerError,
				"Internal Server Error",
				"unexpected server error (see logs by reqid)", map[string]any{
					"reqid": GetRequestID(r),
				})
		}()
		next.ServeHTTP(w, r)
	})
}
