package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/erraggy/oasgate/apierrors"
	"github.com/erraggy/oasgate/httpvalidator"
	"github.com/erraggy/oasgate/oaserrors"
)

const instrumentationName = "github.com/erraggy/oasgate/middleware"

// Middleware enforces a contract on the HTTP traffic of a handler.
// It is safe for concurrent use.
type Middleware struct {
	validator *httpvalidator.Validator

	logger            *slog.Logger
	validateResponses bool
	metrics           *Metrics
	tracer            trace.Tracer
	maxBodyBytes      int64
}

// New creates a Middleware for v.
//
// Returns an *oaserrors.ConfigError if v is nil or an option is invalid.
func New(v *httpvalidator.Validator, opts ...Option) (*Middleware, error) {
	if v == nil {
		return nil, &oaserrors.ConfigError{Option: "validator", Message: "validator cannot be nil"}
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, &oaserrors.ConfigError{Option: "middleware", Message: "invalid option", Cause: err}
		}
	}

	return &Middleware{
		validator:         v,
		logger:            cfg.logger,
		validateResponses: cfg.validateResponses,
		metrics:           cfg.metrics,
		tracer:            cfg.tracerProvider.Tracer(instrumentationName),
		maxBodyBytes:      cfg.maxBodyBytes,
	}, nil
}

type verdictKey struct{}

// VerdictFromContext returns the request verdict stored by the middleware.
func VerdictFromContext(ctx context.Context) (*httpvalidator.Verdict, bool) {
	v, ok := ctx.Value(verdictKey{}).(*httpvalidator.Verdict)
	return v, ok && v != nil
}

func withVerdict(ctx context.Context, v *httpvalidator.Verdict) context.Context {
	return context.WithValue(ctx, verdictKey{}, v)
}

// Handler wraps next. Requests that violate the contract are answered with a
// JSON:API error document and never reach next. Valid requests carry their
// verdict in the request context (see VerdictFromContext). With response
// validation enabled, the response of next is buffered, validated once and
// replaced by a 500 error document if it violates the contract.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r, req, ok := m.checkRequest(w, r)
		if !ok {
			return
		}
		if !m.validateResponses {
			next.ServeHTTP(w, r)
			return
		}

		rec := newResponseRecorder(w)
		next.ServeHTTP(rec, r)
		m.finishResponse(r.Context(), rec, req)
	})
}

// checkRequest validates r. When r must not reach the handler, the rejection
// has been written and ok is false.
func (m *Middleware) checkRequest(w http.ResponseWriter, r *http.Request) (_ *http.Request, _ *httpvalidator.Request, ok bool) {
	ctx, span := m.tracer.Start(r.Context(), "oasgate.validate_request",
		trace.WithAttributes(
			attribute.String("http.request.method", r.Method),
			attribute.String("url.path", r.URL.Path),
		))
	defer span.End()

	data, err := readBody(r, m.maxBodyBytes)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		http.Error(w, http.StatusText(status), status)
		return nil, nil, false
	}
	req := httpvalidator.RequestFromHTTP(r, parseBody(r.Header.Get("Content-Type"), data))

	start := time.Now()
	verdict, err := m.validator.ValidateRequest(req)
	m.metrics.observe("request", verdict, err, time.Since(start))
	if err != nil {
		m.logger.ErrorContext(ctx, "request validation failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return nil, nil, false
	}
	annotate(span, verdict)

	if !verdict.Valid {
		m.logger.InfoContext(ctx, "request rejected",
			"method", r.Method, "path", r.URL.Path, "errors", messages(verdict))
		doc := apierrors.Translate(apierrors.ScopeRequest, verdict, r.Method)
		if err := doc.Write(w); err != nil {
			m.logger.DebugContext(ctx, "writing error document", "error", err)
		}
		return nil, nil, false
	}

	return r.WithContext(withVerdict(r.Context(), verdict)), req, true
}

// finishResponse validates the buffered response exactly once and sends
// either it or the error document that replaces it.
func (m *Middleware) finishResponse(ctx context.Context, rec *responseRecorder, req *httpvalidator.Request) *httpvalidator.Verdict {
	return rec.finalize(func(resp *httpvalidator.Response) *httpvalidator.Verdict {
		ctx, span := m.tracer.Start(ctx, "oasgate.validate_response",
			trace.WithAttributes(
				attribute.String("http.request.method", req.Method),
				attribute.Int("http.response.status_code", resp.StatusCode),
			))
		defer span.End()

		start := time.Now()
		verdict, err := m.validateResponse(req, resp)
		m.metrics.observe("response", verdict, err, time.Since(start))
		if err != nil {
			m.logger.ErrorContext(ctx, "response validation failed",
				"method", req.Method, "path", req.URL, "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "validation failed")
			http.Error(rec.w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return nil
		}
		annotate(span, verdict)

		if !verdict.Valid {
			m.logger.ErrorContext(ctx, "response violates contract",
				"method", req.Method, "path", req.URL, "status", resp.StatusCode, "errors", messages(verdict))
			doc := apierrors.Translate(apierrors.ScopeResponse, verdict, req.Method)
			if err := doc.Write(rec.w); err != nil {
				m.logger.DebugContext(ctx, "writing error document", "error", err)
			}
			return verdict
		}

		rec.send()
		return verdict
	})
}

// validateResponse checks resp with its body decoded from any Content-Encoding.
// The buffered bytes sent to the client stay encoded.
func (m *Middleware) validateResponse(req *httpvalidator.Request, resp *httpvalidator.Response) (*httpvalidator.Verdict, error) {
	encoding := strings.Join(resp.Header.Values("Content-Encoding"), ",")
	if encoding == "" {
		return m.validator.ValidateResponse(req, resp)
	}
	body, err := decodeContent(encoding, resp.Body, m.maxBodyBytes)
	if err != nil {
		return nil, err
	}
	decoded := *resp
	decoded.Body = body
	return m.validator.ValidateResponse(req, &decoded)
}

// annotate records the verdict on span, one event per violation.
func annotate(span trace.Span, verdict *httpvalidator.Verdict) {
	if verdict.MatchedPath != "" {
		span.SetAttributes(attribute.String("http.route", verdict.MatchedPath))
	}
	span.SetAttributes(
		attribute.Bool("oasgate.valid", verdict.Valid),
		attribute.Int("oasgate.errors", len(verdict.Errors)),
	)
	for _, e := range verdict.Errors {
		span.AddEvent("contract violation", trace.WithAttributes(
			attribute.String("oasgate.kind", e.Kind.String()),
			attribute.String("oasgate.path", e.Path),
		))
	}
}

func messages(verdict *httpvalidator.Verdict) []string {
	out := make([]string, len(verdict.Errors))
	for i, e := range verdict.Errors {
		out[i] = e.String()
	}
	return out
}
