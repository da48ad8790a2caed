package engine

import (
	"fmt"
	"io"
	"os"
)

// Logger is the engine's leveled logging surface, mirroring the original's
// logger.info_lv1/info_lv2/info_lv3 triad (lv1 always shown, lv3 most
// verbose). No teacher tool in the pack pulls in a structured logging
// library anywhere — every pkg/core/tools/*/tool.go writes with plain
// fmt.Printf/Fprintf — so this follows that idiom rather than introducing
// one.
type Logger interface {
	InfoLv1(format string, args ...interface{})
	InfoLv2(format string, args ...interface{})
	InfoLv3(format string, args ...interface{})
	Debug(format string, args ...interface{})
}

// WriterLogger writes each level to an io.Writer, suppressing levels above
// its configured Verbosity (0 = lv1 only, 3 = everything including debug).
type WriterLogger struct {
	Out       io.Writer
	Verbosity int
}

// NewLogger builds a WriterLogger writing to os.Stdout.
func NewLogger(verbosity int) *WriterLogger {
	return &WriterLogger{Out: os.Stdout, Verbosity: verbosity}
}

func (l *WriterLogger) InfoLv1(format string, args ...interface{}) { l.emit(1, format, args...) }
func (l *WriterLogger) InfoLv2(format string, args ...interface{}) { l.emit(2, format, args...) }
func (l *WriterLogger) InfoLv3(format string, args ...interface{}) { l.emit(3, format, args...) }
func (l *WriterLogger) Debug(format string, args ...interface{})   { l.emit(4, format, args...) }

func (l *WriterLogger) emit(level int, format string, args ...interface{}) {
	if level > l.Verbosity+1 {
		return
	}
	fmt.Fprintf(l.Out, format+"\n", args...)
}

// NopLogger discards everything; useful for tests that don't want engine
// log noise interleaved with test output.
type NopLogger struct{}

func (NopLogger) InfoLv1(string, ...interface{}) {}
func (NopLogger) InfoLv2(string, ...interface{}) {}
func (NopLogger) InfoLv3(string, ...interface{}) {}
func (NopLogger) Debug(string, ...interface{})   {}
