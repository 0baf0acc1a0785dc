package router

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/diarium/internal/pkg/config"
	"github.com/shandysiswandi/diarium/internal/pkg/instrument"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Bodies above this size are truncated in logs.
const maxLoggedBodyBytes = 32 * 1024

const redacted = "***"

// maskKeySet lowercases and dedupes the configured mask field names.
func maskKeySet(cfg config.Config) map[string]struct{} {
	keys := make(map[string]struct{})
	if cfg == nil {
		return keys
	}
	for _, field := range cfg.GetArray("instrument.log_mask_fields") {
		if field = strings.TrimSpace(strings.ToLower(field)); field != "" {
			keys[field] = struct{}{}
		}
	}
	return keys
}

func redactHeaders(headers http.Header, maskKeys map[string]struct{}) http.Header {
	if len(maskKeys) == 0 {
		return headers
	}

	out := headers.Clone()
	for key := range out {
		if _, found := maskKeys[strings.ToLower(key)]; found {
			out.Set(key, redacted)
		}
	}
	return out
}

// redactValue walks decoded JSON and replaces values under masked keys.
func redactValue(v any, maskKeys map[string]struct{}) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if _, found := maskKeys[strings.ToLower(k)]; found {
				out[k] = redacted
				continue
			}
			out[k] = redactValue(inner, maskKeys)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = redactValue(inner, maskKeys)
		}
		return out
	default:
		return v
	}
}

// responseRecorder captures the status, byte count and a bounded copy of
// the response body while passing writes through.
type responseRecorder struct {
	http.ResponseWriter
	code      int
	written   int
	body      *bytes.Buffer
	truncated bool
	err       error
}

func (w *responseRecorder) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseRecorder) Write(p []byte) (int, error) {
	if w.code == 0 {
		w.code = http.StatusOK
	}

	w.capture(p)

	n, err := w.ResponseWriter.Write(p)
	w.written += n
	return n, err
}

// capture copies at most maxLoggedBodyBytes into the log buffer.
func (w *responseRecorder) capture(p []byte) {
	if w.body == nil || w.truncated || len(p) == 0 {
		return
	}

	room := maxLoggedBodyBytes - w.body.Len()
	switch {
	case room <= 0:
		w.truncated = true
	case len(p) > room:
		w.body.Write(p[:room])
		w.truncated = true
	default:
		w.body.Write(p)
	}
}

// SetError lets the endpoint wrapper hand the handler error to this
// middleware for span recording.
func (w *responseRecorder) SetError(err error) {
	w.err = err
}

func (w *responseRecorder) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

//nolint:err113 // it use dynamic error
func (w *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	return h.Hijack()
}

func (w *responseRecorder) Push(target string, opts *http.PushOptions) error {
	if p, ok := w.ResponseWriter.(http.Pusher); ok {
		return p.Push(target, opts)
	}
	return http.ErrNotSupported
}

func (w *responseRecorder) status() int {
	if w.code == 0 {
		return http.StatusOK
	}
	return w.code
}

// loggableResponse renders the captured response body for logging.
func (w *responseRecorder) loggableResponse(maskKeys map[string]struct{}) any {
	if w.body == nil {
		return nil
	}

	var body any
	var decoded any
	switch {
	case json.Unmarshal(w.body.Bytes(), &decoded) == nil:
		body = redactValue(decoded, maskKeys)
	case utf8.Valid(w.body.Bytes()):
		body = w.body.String()
	case w.body.Len() > 0:
		body = "<binary body omitted>"
	}

	if w.truncated {
		return map[string]any{"body": body, "truncated": true}
	}
	return body
}

func matchedRoutePath(r *http.Request) string {
	if pattern := httprouter.ParamsFromContext(r.Context()).MatchedRoutePath(); pattern != "" {
		return pattern
	}
	return r.URL.Path
}

// loggableRequestBody renders a request body for logging: JSON and form
// bodies are decoded and masked, anything else is logged as text when
// printable.
func loggableRequestBody(contentType string, body []byte, maskKeys map[string]struct{}) any {
	if len(body) == 0 {
		return nil
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err == nil {
		return redactValue(decoded, maskKeys)
	}

	if strings.HasPrefix(strings.ToLower(contentType), "application/x-www-form-urlencoded") {
		if values, err := url.ParseQuery(string(body)); err == nil {
			return redactFormValues(values, maskKeys)
		}
	}

	if !utf8.Valid(body) {
		return "<binary body omitted>"
	}
	if len(body) > maxLoggedBodyBytes {
		return string(body[:maxLoggedBodyBytes]) + "...(truncated)"
	}
	return string(body)
}

func redactFormValues(values url.Values, maskKeys map[string]struct{}) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		if _, found := maskKeys[strings.ToLower(k)]; found {
			out[k] = redacted
			continue
		}
		if len(v) == 1 {
			out[k] = v[0]
		} else {
			out[k] = v
		}
	}
	return out
}

// peekRequestBody copies up to the log limit from the body and splices
// the read bytes back so the handler still sees the full stream.
func peekRequestBody(r *http.Request) []byte {
	if r.Body == nil {
		return nil
	}

	limited := io.LimitReader(r.Body, maxLoggedBodyBytes+1)
	//nolint:errcheck // best effort for logging only
	peeked, _ := io.ReadAll(limited)
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(peeked), r.Body))
	if len(peeked) > maxLoggedBodyBytes {
		return peeked[:maxLoggedBodyBytes]
	}
	return peeked
}

func logRequest(ctx context.Context, r *http.Request, route string, body []byte, maskKeys map[string]struct{}) {
	slog.InfoContext(
		ctx,
		"request received",
		"method", r.Method,
		"path", route,
		"uri", r.RequestURI,
		"headers", redactHeaders(r.Header, maskKeys),
		"body", loggableRequestBody(r.Header.Get("Content-Type"), body, maskKeys),
	)
}

// finishSpan records the handler error and outcome on the span.
func finishSpan(span trace.Span, rec *responseRecorder, status int) {
	if rec.err != nil {
		span.RecordError(rec.err)
	}

	if status < 500 {
		span.SetStatus(codes.Ok, "")
		return
	}

	if rec.err != nil {
		span.SetStatus(codes.Error, rec.err.Error())
		return
	}
	span.SetStatus(codes.Error, http.StatusText(status))
}

// middlewareObservability traces each request, records request count and
// latency metrics, and logs the masked request and response payloads.
func middlewareObservability(cfg config.Config, ins instrument.Instrumentation) Middleware {
	maskKeys := maskKeySet(cfg)
	tracer := ins.Tracer("http.server")
	meter := ins.Meter("http.server")

	requestCounter, err := meter.Int64Counter("http.server.requests",
		metric.WithDescription("Count of handled HTTP requests"))
	if err != nil {
		slog.Error("failed to create http request counter", "error", err)
	}

	durationHistogram, err := meter.Float64Histogram("http.server.duration",
		metric.WithDescription("Server-side request latency in milliseconds"))
	if err != nil {
		slog.Error("failed to create http duration histogram", "error", err)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := matchedRoutePath(r)
			start := time.Now()

			ctx, span := tracer.Start(
				r.Context(),
				r.Method+" "+route,
				trace.WithAttributes(
					semconv.HTTPRequestMethodKey.String(r.Method),
					semconv.HTTPRouteKey.String(route),
				),
			)
			defer span.End()

			logRequest(ctx, r, route, peekRequestBody(r), maskKeys)

			rec := &responseRecorder{ResponseWriter: w, body: &bytes.Buffer{}}
			next.ServeHTTP(rec, r.WithContext(ctx))

			status := rec.status()
			attrs := []attribute.KeyValue{
				semconv.HTTPRequestMethodKey.String(r.Method),
				semconv.HTTPRouteKey.String(route),
				semconv.HTTPResponseStatusCodeKey.Int(status),
			}

			finishSpan(span, rec, status)
			span.SetAttributes(append(attrs,
				semconv.NetworkProtocolVersionKey.String(r.Proto),
				semconv.ServerAddressKey.String(r.Host),
				attribute.String("http.target", r.URL.Path),
				attribute.String("http.user_agent", r.UserAgent()),
				attribute.Int("http.response_content_length", rec.written),
			)...)

			if requestCounter != nil {
				requestCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
			}
			if durationHistogram != nil {
				durationHistogram.Record(ctx, float64(time.Since(start).Milliseconds()), metric.WithAttributes(attrs...))
			}

			slog.InfoContext(
				ctx,
				"response sent",
				"method", r.Method,
				"path", route,
				"uri", r.RequestURI,
				"status", status,
				"bytes", rec.written,
				"latency_ms", time.Since(start).Milliseconds(),
				"body", rec.loggableResponse(maskKeys),
			)
		})
	}
}
