package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/juju/loggo"

	"github.com/shempignon/docker-compose-backup/internal/domain/backup"
	"github.com/shempignon/docker-compose-backup/internal/ports"
)

// RootModule prefixes every logger the sink creates.
const RootModule = "dcbackup"

const defaultWriterName = "default"

// Ensure Sink implements ports.DiagnosticSink.
var _ ports.DiagnosticSink = (*Sink)(nil)

// Sink forwards backup events to a private loggo context.
type Sink struct {
	context *loggo.Context
}

// New builds a sink that writes entries at or above level to out.
func New(level loggo.Level, out io.Writer) (*Sink, error) {
	ctx := loggo.NewContext(level)
	if out != nil {
		if err := ctx.AddWriter(defaultWriterName, loggo.NewSimpleWriter(out, formatEntry)); err != nil {
			return nil, fmt.Errorf("add log writer: %w", err)
		}
	}
	return &Sink{context: ctx}, nil
}

// NewWithWriter builds a sink around an existing loggo writer.
func NewWithWriter(level loggo.Level, writer loggo.Writer) (*Sink, error) {
	sink, err := New(level, nil)
	if err != nil {
		return nil, err
	}
	if err := sink.context.AddWriter(defaultWriterName, writer); err != nil {
		return nil, fmt.Errorf("add log writer: %w", err)
	}
	return sink, nil
}

// Configure applies a loggo specification such as "dcbackup.pull=DEBUG".
func (s *Sink) Configure(spec string) error {
	if strings.TrimSpace(spec) == "" {
		return nil
	}
	if err := s.context.ConfigureLoggers(spec); err != nil {
		return fmt.Errorf("configure loggers: %w", err)
	}
	return nil
}

// Logger returns the module logger for a component.
func (s *Sink) Logger(component string) loggo.Logger {
	if component == "" {
		return s.context.GetLogger(RootModule)
	}
	return s.context.GetLogger(RootModule + "." + component)
}

// Report logs event under the logger of its stage.
func (s *Sink) Report(event backup.Event) {
	logger := s.Logger(string(event.Stage))
	if event.Service == "" {
		logger.Logf(LevelFor(event.Level), "%s", event.Message)
		return
	}
	logger.Logf(LevelFor(event.Level), "[%s] %s", event.Service, event.Message)
}

// LevelFor maps an event level onto loggo.
func LevelFor(level backup.Level) loggo.Level {
	switch level {
	case backup.LevelDebug:
		return loggo.DEBUG
	case backup.LevelWarning:
		return loggo.WARNING
	case backup.LevelError:
		return loggo.ERROR
	default:
		return loggo.INFO
	}
}

// ParseLevel accepts loggo level names, case-insensitively.
func ParseLevel(name string) (loggo.Level, error) {
	level, ok := loggo.ParseLevel(name)
	if !ok {
		return loggo.UNSPECIFIED, fmt.Errorf("unknown log level %q", name)
	}
	return level, nil
}

func formatEntry(entry loggo.Entry) string {
	stage := strings.TrimPrefix(strings.TrimPrefix(entry.Module, RootModule), ".")
	if stage == "" {
		return fmt.Sprintf("%-7s %s", entry.Level, entry.Message)
	}
	return fmt.Sprintf("%-7s %s: %s", entry.Level, stage, entry.Message)
}
