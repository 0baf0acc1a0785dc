package instrument

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

const maskedValue = "***"

// initLogging installs the process-wide slog handler: JSON to stdout,
// optionally bridged to the OTLP log pipeline, with sensitive fields
// masked and the correlation ID attached from context.
func initLogging(serviceName string, lp *sdklog.LoggerProvider, maskFields []string) {
	jsonHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       slog.LevelInfo,
		AddSource:   true,
		ReplaceAttr: renameLogAttr,
	})

	var handler slog.Handler = jsonHandler
	if lp != nil {
		handler = &fanoutHandler{targets: []slog.Handler{
			jsonHandler,
			otelslog.NewHandler(serviceName, otelslog.WithLoggerProvider(lp)),
		}}
	}

	slog.SetDefault(slog.New(&serviceHandler{
		Handler:     &maskHandler{next: handler, maskKeys: normalizeMaskKeys(maskFields)},
		serviceName: serviceName,
	}))
}

// renameLogAttr maps standard slog keys onto the field names the log
// pipeline expects and trims source paths to start at internal/.
func renameLogAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		a.Key = "ts"
	case slog.LevelKey:
		a.Key = "severity"
	case slog.SourceKey:
		src, ok := a.Value.Any().(*slog.Source)
		if !ok {
			return a
		}
		if !strings.Contains(src.File, "/internal/") {
			return slog.Attr{}
		}
		relPath := filepath.Join("internal", strings.SplitAfter(src.File, "/internal/")[1])
		return slog.Attr{
			Key:   "file",
			Value: slog.StringValue(fmt.Sprintf("%s:%d", relPath, src.Line)),
		}
	}
	return a
}

// serviceHandler stamps every record with the service name and, when
// present, the request correlation ID.
type serviceHandler struct {
	slog.Handler
	serviceName string
}

func (s *serviceHandler) Handle(ctx context.Context, rec slog.Record) error {
	if cID := GetCorrelationID(ctx); cID != "" && cID != "[invalid_chain_id]" {
		rec.AddAttrs(slog.String("_cID", cID))
	}
	rec.AddAttrs(slog.String("service", s.serviceName))

	return s.Handler.Handle(ctx, rec)
}

// fanoutHandler fans a record out to several targets.
type fanoutHandler struct {
	targets []slog.Handler
}

func (f *fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, t := range f.targets {
		if t.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f *fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	for _, t := range f.targets {
		if !t.Enabled(ctx, record.Level) {
			continue
		}
		if err := t.Handle(ctx, record.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(f.targets))
	for i, t := range f.targets {
		next[i] = t.WithAttrs(attrs)
	}
	return &fanoutHandler{targets: next}
}

func (f *fanoutHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(f.targets))
	for i, t := range f.targets {
		next[i] = t.WithGroup(name)
	}
	return &fanoutHandler{targets: next}
}

// maskHandler replaces the values of configured attribute keys with "***"
// before the record reaches the real handler. Masking descends into
// groups, maps, slices and JSON-encoded string or []byte payloads.
type maskHandler struct {
	next     slog.Handler
	maskKeys map[string]struct{}
}

func (m *maskHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return m.next.Enabled(ctx, level)
}

func (m *maskHandler) Handle(ctx context.Context, rec slog.Record) error {
	if len(m.maskKeys) == 0 {
		return m.next.Handle(ctx, rec)
	}

	out := slog.NewRecord(rec.Time, rec.Level, rec.Message, rec.PC)
	rec.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(m.maskAttr(a))
		return true
	})

	return m.next.Handle(ctx, out)
}

func (m *maskHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &maskHandler{next: m.next.WithAttrs(attrs), maskKeys: m.maskKeys}
}

func (m *maskHandler) WithGroup(name string) slog.Handler {
	return &maskHandler{next: m.next.WithGroup(name), maskKeys: m.maskKeys}
}

func (m *maskHandler) maskAttr(a slog.Attr) slog.Attr {
	if _, found := m.maskKeys[strings.ToLower(a.Key)]; found {
		return slog.String(a.Key, maskedValue)
	}

	switch a.Value.Kind() {
	case slog.KindGroup:
		group := a.Value.Group()
		masked := make([]slog.Attr, len(group))
		for i, ga := range group {
			masked[i] = m.maskAttr(ga)
		}
		a.Value = slog.GroupValue(masked...)
	case slog.KindString:
		if masked, ok := maskJSON([]byte(a.Value.String()), m.maskKeys); ok {
			a.Value = slog.StringValue(masked)
		}
	case slog.KindAny:
		val := a.Value.Any()
		if val == nil {
			return a
		}
		if masked, ok := maskContainer(val, m.maskKeys); ok {
			a.Value = slog.AnyValue(masked)
			return a
		}
		if b, ok := val.([]byte); ok {
			if masked, ok := maskJSON(b, m.maskKeys); ok {
				a.Value = slog.StringValue(masked)
			}
		}
	}

	return a
}

func normalizeMaskKeys(fields []string) map[string]struct{} {
	keys := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if field = strings.TrimSpace(strings.ToLower(field)); field != "" {
			keys[field] = struct{}{}
		}
	}
	return keys
}

// maskContainer handles the map and slice shapes that commonly reach the
// logger as attribute values.
func maskContainer(val any, maskKeys map[string]struct{}) (any, bool) {
	switch v := val.(type) {
	case map[string]any:
		return maskData(v, maskKeys), true
	case map[string]string:
		converted := make(map[string]any, len(v))
		for k, inner := range v {
			converted[k] = inner
		}
		return maskData(converted, maskKeys), true
	case []any:
		return maskData(v, maskKeys), true
	default:
		return nil, false
	}
}

// maskJSON re-encodes a JSON object or array with masked fields. The
// leading byte check keeps plain strings away from the decoder.
func maskJSON(payload []byte, maskKeys map[string]struct{}) (string, bool) {
	if len(payload) == 0 || (payload[0] != '{' && payload[0] != '[') {
		return "", false
	}
	var decoded any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return "", false
	}
	out, err := json.Marshal(maskData(decoded, maskKeys))
	if err != nil {
		return "", false
	}
	return string(out), true
}

func maskData(v any, maskKeys map[string]struct{}) any {
	switch data := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(data))
		for k, elem := range data {
			if _, found := maskKeys[strings.ToLower(k)]; found {
				out[k] = maskedValue
				continue
			}
			out[k] = maskData(elem, maskKeys)
		}
		return out
	case []any:
		out := make([]any, len(data))
		for i, elem := range data {
			out[i] = maskData(elem, maskKeys)
		}
		return out
	default:
		return v
	}
}
