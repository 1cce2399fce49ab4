package http

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = fmt.Sprintf("req-%d", time.Now().UnixNano())
		}

		ctx := context.WithValue(r.Context(), "request_id", requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OperatorMiddleware extracts the signed-on operator from the register's
// headers. Requests without an operator are still served; handlers that
// require one check the context themselves.
func OperatorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if operatorID := r.Header.Get("X-Operator-ID"); operatorID != "" {
			ctx = context.WithValue(ctx, "operator_id", operatorID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value("request_id").(string); ok {
		return requestID
	}
	return ""
}

func getOperatorID(ctx context.Context) string {
	if operatorID, ok := ctx.Value("operator_id").(string); ok {
		return operatorID
	}
	return ""
}
