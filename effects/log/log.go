package log

import (
	"github.com/benbjohnson/immutable"
	"github.com/on-the-ground/effstack/effects"
	effectmodel "github.com/on-the-ground/effstack/effects/internal/model"
	"go.uber.org/zap"
)

const Family = effectmodel.FamilyLog

// LogLevel defines the severity level for log messages.
type LogLevel string

const (
	// LogInfo is used for general informational messages.
	LogInfo LogLevel = "info"

	// LogWarn is used for potentially harmful situations.
	LogWarn LogLevel = "warn"

	// LogError is used for error events that might still allow the application to continue running.
	LogError LogLevel = "error"

	// LogDebug is used for debugging messages with detailed internal information.
	LogDebug LogLevel = "debug"
)

// LogPayload is the payload structure for logging effect.
// It contains the log level, message string, and optional structured fields.
type LogPayload struct {
	Level   LogLevel
	Message string
	Fields  map[string]any
}

func (LogPayload) Family() effects.Family {
	return Family
}

// Entry is a LogPayload stamped with the time it was interpreted.
type Entry struct {
	LogPayload
	Span effects.TimeSpan
}

var _ effects.TimeBounded = Entry{}

func (e Entry) TimeSpan() effects.TimeSpan {
	return e.Span
}

func stamp(e effects.Effect) Entry {
	return Entry{LogPayload: e.(LogPayload), Span: effects.Now()}
}

// Tell sends a log entry.
func Tell(level LogLevel, msg string, fields map[string]any) effects.Eff[struct{}] {
	return effects.Send[struct{}](LogPayload{
		Level:   level,
		Message: msg,
		Fields:  fields,
	})
}

func Info(msg string, fields map[string]any) effects.Eff[struct{}] {
	return Tell(LogInfo, msg, fields)
}

func Warn(msg string, fields map[string]any) effects.Eff[struct{}] {
	return Tell(LogWarn, msg, fields)
}

func Error(msg string, fields map[string]any) effects.Eff[struct{}] {
	return Tell(LogError, msg, fields)
}

func Debug(msg string, fields map[string]any) effects.Eff[struct{}] {
	return Tell(LogDebug, msg, fields)
}

func units(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = struct{}{}
	}
	return out
}

type zapLoop struct {
	logger *zap.Logger
}

func (l zapLoop) write(entry Entry) {
	fields := make([]zap.Field, 0, len(entry.Fields)+1)
	for k, v := range entry.Fields {
		fields = append(fields, zap.Any(k, v))
	}
	fields = append(fields, zap.Time("at", entry.Span.Start()))

	switch entry.Level {
	case LogInfo:
		l.logger.Info(entry.Message, fields...)
	case LogWarn:
		l.logger.Warn(entry.Message, fields...)
	case LogError:
		l.logger.Error(entry.Message, fields...)
	case LogDebug:
		l.logger.Debug(entry.Message, fields...)
	default:
		l.logger.Info(entry.Message, fields...)
	}
}

func (l zapLoop) OnPure(a any) (effects.Eff[any], bool) {
	if err := l.logger.Sync(); err != nil {
		effects.Logger().Debug("failed to sync logger", zap.Error(err))
	}
	return effects.Pure(a), false
}

func (l zapLoop) OnEffect(e effects.Effect, k effects.Continuation) (effects.Eff[any], bool) {
	l.write(stamp(e))
	return k.Apply(struct{}{}), true
}

func (l zapLoop) OnApplicativeEffect(es []effects.Effect, k effects.Continuation) (effects.Eff[any], bool) {
	for _, e := range es {
		l.write(stamp(e))
	}
	return k.Apply(units(len(es))), true
}

// RunZap removes the Log family from e, writing every entry to logger in
// the order the entries are sent. A nil logger discards them.
func RunZap[A any](e effects.Eff[A], logger *zap.Logger) effects.Eff[A] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return effects.Typed[A](effects.InterpretStatelessLoop(effects.Erase(e), Family, zapLoop{logger: logger}))
}

type entries = *immutable.List[Entry]

type collectLoop[A any] struct{}

func (collectLoop[A]) OnPure(a any, s entries) (effects.Eff[any], entries, bool) {
	out := make([]Entry, 0, s.Len())
	itr := s.Iterator()
	for !itr.Done() {
		_, entry := itr.Next()
		out = append(out, entry)
	}
	return effects.Erase(effects.Pure(effects.Pair[A, []Entry]{First: effects.Coerce[A](a), Second: out})), s, false
}

func (collectLoop[A]) OnEffect(e effects.Effect, k effects.Continuation, s entries) (effects.Eff[any], entries, bool) {
	return k.Apply(struct{}{}), s.Append(stamp(e)), true
}

func (collectLoop[A]) OnApplicativeEffect(es []effects.Effect, k effects.Continuation, s entries) (effects.Eff[any], entries, bool) {
	for _, e := range es {
		s = s.Append(stamp(e))
	}
	return k.Apply(units(len(es))), s, true
}

// RunCollect removes the Log family from e and returns its value with the
// entries it sent, in order.
func RunCollect[A any](e effects.Eff[A]) effects.Eff[effects.Pair[A, []Entry]] {
	return effects.Typed[effects.Pair[A, []Entry]](effects.InterpretLoop(
		effects.Erase(e),
		Family,
		collectLoop[A]{},
		immutable.NewList[Entry](),
	))
}
