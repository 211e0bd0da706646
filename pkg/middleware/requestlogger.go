package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"unicode"

	"github.com/fancystore/storeadmin/pkg/logger"
)

// OperatorHeader names the admin operator on a request. The admin UI sets it;
// there is no session layer to derive it from.
const OperatorHeader = "X-Operator-ID"

const maxOperatorLen = 64

// RequestLogger stores a request-scoped logger in the context, enriched with
// the correlation id, the operator and the active span. Handlers retrieve it
// with logger.FromContext.
//
// Mount it after RequestLogging (which sets correlation_id) and Tracing
// (which starts the span).
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if op := operator(r.Header.Get(OperatorHeader)); op != "" {
				ctx = logger.WithOperator(ctx, op)
			}
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// operator cleans a client-supplied operator id before it reaches logs and
// events: control characters are dropped and the value is truncated.
func operator(raw string) string {
	op := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, strings.TrimSpace(raw))
	if r := []rune(op); len(r) > maxOperatorLen {
		op = string(r[:maxOperatorLen])
	}
	return op
}
