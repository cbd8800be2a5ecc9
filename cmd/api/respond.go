package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"quickcart/pkg/apperr"
	"quickcart/pkg/order"
	"quickcart/pkg/otel"
)

// messageResponse is the body of every error reply.
type messageResponse struct {
	Message string `json:"message"`
}

type statusRequest struct {
	Status order.Status `json:"status"`
}

// addCartRequest carries the product to add. A missing quantity adds one.
type addCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type quantityRequest struct {
	Quantity *int `json:"quantity"`
}

type checkoutRequest struct {
	DeliveryAddress string `json:"deliveryAddress"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// fail maps err to a status code. Validation errors are the caller's fault and
// are echoed back; anything else is logged and hidden.
func (a *api) fail(ctx context.Context, w http.ResponseWriter, op string, err error) {
	span := trace.SpanFromContext(ctx)
	switch {
	case errors.Is(err, apperr.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperr.ErrUnavailable):
		span.RecordError(err)
		span.SetStatus(codes.Error, op)
		a.log.Error(ctx, op, "error", err)
		writeError(w, http.StatusServiceUnavailable, "Service temporarily unavailable")
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, op)
		a.log.Error(ctx, op, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// traceMiddleware continues the caller's trace and opens a span per request.
func traceMiddleware(tracer trace.Tracer) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := otel.ExtractHTTP(r.Context(), r.Header)
			ctx = otel.InjectTracing(ctx, tracer)

			name := r.Method + " " + r.URL.Path
			if route := mux.CurrentRoute(r); route != nil {
				if tpl, err := route.GetPathTemplate(); err == nil {
					name = r.Method + " " + tpl
				}
			}
			ctx, span := otel.AddSpan(ctx, name, attribute.String("http.method", r.Method))
			defer span.End()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (a *api) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		a.log.Debug(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
