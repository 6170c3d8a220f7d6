package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"

	pkgerrors "github.com/bargen/bargen-backend/pkg/errors"
	"github.com/bargen/bargen-backend/pkg/env"
)

const (
	EnvLevel  = "BARGEN_LOG_LEVEL"
	EnvFormat = "BARGEN_LOG_FORMAT"

	FormatJSON    = "json"
	FormatConsole = "console"
)

// Options configures a Logger. Empty Level and Format fall back to
// BARGEN_LOG_LEVEL and BARGEN_LOG_FORMAT, then to info and json.
type Options struct {
	ServiceName string
	Level       string
	Format      string
	Output      io.Writer
	// WarnStack attaches a goroutine stack to warnings as well as errors.
	WarnStack bool
}

// Logger carries per-request fields through context.Context rather than
// through its own state, so one Logger is shared by the whole process.
type Logger struct {
	root      zerolog.Logger
	warnStack bool
}

type entryKey struct{}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
}

func New(opts Options) *Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	format := opts.Format
	if format == "" {
		format = env.Get(EnvFormat, FormatJSON)
	}
	if strings.EqualFold(format, FormatConsole) {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	}
	level := opts.Level
	if level == "" {
		level = env.Get(EnvLevel, "")
	}

	root := zerolog.New(out).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Str("service", opts.ServiceName).
		Logger()
	return &Logger{root: root, warnStack: opts.WarnStack}
}

// ParseLevel maps a level name to zerolog, treating blanks and unknown names
// as info.
func ParseLevel(value string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(value)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func (l *Logger) entry(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if e, ok := ctx.Value(entryKey{}).(*zerolog.Logger); ok {
			return e
		}
	}
	return &l.root
}

func (l *Logger) derive(ctx context.Context, fn func(zerolog.Context) zerolog.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	child := fn(l.entry(ctx).With()).Logger()
	return context.WithValue(ctx, entryKey{}, &child)
}

func (l *Logger) WithField(ctx context.Context, key string, value any) context.Context {
	return l.derive(ctx, func(c zerolog.Context) zerolog.Context {
		return c.Interface(key, value)
	})
}

func (l *Logger) WithFields(ctx context.Context, fields map[string]any) context.Context {
	return l.derive(ctx, func(c zerolog.Context) zerolog.Context {
		return c.Fields(fields)
	})
}

func (l *Logger) WithRequestID(ctx context.Context, requestID string) context.Context {
	return l.derive(ctx, func(c zerolog.Context) zerolog.Context {
		return c.Str("request_id", requestID)
	})
}

// WithCaller tags every later entry with the authenticated principal and role.
func (l *Logger) WithCaller(ctx context.Context, principal, role string) context.Context {
	return l.derive(ctx, func(c zerolog.Context) zerolog.Context {
		return c.Str("principal", principal).Str("actor_role", role)
	})
}

func (l *Logger) Debug(ctx context.Context, msg string) {
	l.entry(ctx).Debug().Msg(msg)
}

func (l *Logger) Info(ctx context.Context, msg string) {
	l.entry(ctx).Info().Msg(msg)
}

func (l *Logger) Warn(ctx context.Context, msg string) {
	ev := l.entry(ctx).Warn()
	if l.warnStack {
		ev = ev.Str("stack", stack())
	}
	ev.Msg(msg)
}

// Error logs err with a stack. Typed errors also carry their error_code.
func (l *Logger) Error(ctx context.Context, msg string, err error) {
	ev := l.entry(ctx).Error()
	if err != nil {
		ev = ev.Err(err)
		if typed := pkgerrors.As(err); typed != nil {
			ev = ev.Str("error_code", string(typed.Code()))
		}
	}
	ev.Str("stack", stack()).Msg(msg)
}

func stack() string {
	return strings.TrimSpace(string(debug.Stack()))
}
