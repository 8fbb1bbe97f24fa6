package logging

import (
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
)

// Config captures the settings needed to configure the process slog logger.
type Config struct {
	// Level represents the textual log level (trace, debug, info, warn, error).
	Level string
	// Format controls the output encoding (json or text).
	Format string
	// AddSource toggles slog's source attribution.
	AddSource bool
	// RedactAttrs lists attribute keys whose values are always masked.
	RedactAttrs []string
}

const redactedValue = "***"

// LevelTrace sits below debug and logs every forwarded request.
const LevelTrace = slog.LevelDebug - 2

// ParseLevel converts textual levels into slog levels, defaulting to info.
func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug", "dbg":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "err":
		return slog.LevelError
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// New builds a slog.Logger for the provided writer using the supplied configuration.
func New(w io.Writer, cfg Config) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	handlerOpts := &slog.HandlerOptions{
		Level:       ParseLevel(cfg.Level),
		AddSource:   cfg.AddSource,
		ReplaceAttr: replaceAttr(cfg.RedactAttrs),
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	default:
		return slog.New(slog.NewTextHandler(w, handlerOpts))
	}
}

func replaceAttr(redact []string) func([]string, slog.Attr) slog.Attr {
	masked := make(map[string]struct{}, len(redact))
	for _, key := range redact {
		masked[strings.ToLower(key)] = struct{}{}
	}
	return func(_ []string, attr slog.Attr) slog.Attr {
		if attr.Key == slog.LevelKey {
			if level, ok := attr.Value.Any().(slog.Level); ok && level == LevelTrace {
				attr.Value = slog.StringValue("TRACE")
			}
			return attr
		}
		if _, ok := masked[strings.ToLower(attr.Key)]; ok && attr.Value.Kind() != slog.KindGroup {
			attr.Value = slog.StringValue(redactedValue)
		}
		return attr
	}
}

// RedactURL masks the given query parameters so credentials never reach the log output.
// Unparseable input is returned fully masked.
func RedactURL(raw string, params ...string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return redactedValue
	}
	values := parsed.Query()
	changed := false
	for _, param := range params {
		if values.Has(param) {
			values.Set(param, redactedValue)
			changed = true
		}
	}
	if changed {
		parsed.RawQuery = values.Encode()
	}
	return parsed.String()
}
