// Package narration provides narrators for headless runs and for feeding
// several outputs at once.
package narration

import (
	log "github.com/sirupsen/logrus"
)

// Narrator speaks instructions. It matches simulation.Narrator.
type Narrator interface {
	Speak(text string)
	Cancel()
}

// Logger narrates into the log.
type Logger struct {
	Entry *log.Entry
}

func NewLogger() *Logger {
	return &Logger{Entry: log.WithField("component", "narration")}
}

func (l *Logger) Speak(text string) {
	l.Entry.WithField("text", text).Info("Narration")
}

func (l *Logger) Cancel() {
	l.Entry.Debug("Narration cancelled")
}

// Multi fans out to every narrator it holds. Nil entries are skipped.
type Multi []Narrator

func (m Multi) Speak(text string) {
	for _, n := range m {
		if n != nil {
			n.Speak(text)
		}
	}
}

func (m Multi) Cancel() {
	for _, n := range m {
		if n != nil {
			n.Cancel()
		}
	}
}
