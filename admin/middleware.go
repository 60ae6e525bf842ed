package admin

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"
	"strings"
)

func RecoverMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}
				logger.ErrorContext(r.Context(), "panic serving admin request",
					"path", r.URL.Path, "panic", recovered, "stack", string(debug.Stack()))

				http.Error(w, "something went wrong", http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func MethodCheckMiddleware(methods []string, next http.Handler) http.Handler {
	allow := strings.Join(methods, ", ")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !slices.Contains(methods, r.Method) {
			w.Header().Set("Allow", allow)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		next.ServeHTTP(w, r)
	})
}
