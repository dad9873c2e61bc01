package narration

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	spoken  []string
	cancels int
}

func (r *recorder) Speak(text string) { r.spoken = append(r.spoken, text) }
func (r *recorder) Cancel()           { r.cancels++ }

func TestLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.DebugLevel)
	n := &Logger{Entry: log.NewEntry(logger)}

	n.Speak("You have reached your destination.")
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, log.InfoLevel, hook.LastEntry().Level)
	assert.Equal(t, "You have reached your destination.", hook.LastEntry().Data["text"])

	n.Cancel()
	assert.Equal(t, log.DebugLevel, hook.LastEntry().Level)
}

func TestMulti(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	m := Multi{a, nil, b}

	m.Cancel()
	m.Speak("Turn right onto Dakshin Marg")

	for _, r := range []*recorder{a, b} {
		assert.Equal(t, []string{"Turn right onto Dakshin Marg"}, r.spoken)
		assert.Equal(t, 1, r.cancels)
	}
}
