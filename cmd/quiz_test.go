package cmd

import (
	"bytes"
	"context"
	"math/rand/v2"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lernwerk/vokabel/internal/logging"
	"github.com/lernwerk/vokabel/internal/session"
	"github.com/lernwerk/vokabel/internal/vocab"
)

type memRecorder struct {
	results []session.Result
}

func (m *memRecorder) RecordSession(_ context.Context, r session.Result) error {
	m.results = append(m.results, r)
	return nil
}

func newLineSession(t *testing.T, mode session.Mode, words ...[2]string) (*session.Session, *memRecorder) {
	t.Helper()
	course := vocab.Course{Grade: 5, Unit: 1, Station: 1}
	pool := make([]vocab.WordEntry, len(words))
	for i, w := range words {
		pool[i] = vocab.WordEntry{ID: "w" + strconv.Itoa(i), Source: w[0], Target: w[1], Course: course}
	}
	rec := &memRecorder{}
	s := session.New(session.Config{Course: course, Mode: mode}, session.Deps{
		Recorder: rec,
		Logger:   logging.Discard(),
		Rand:     rand.New(rand.NewPCG(1, 2)),
	})
	require.NoError(t, s.Initialize(context.Background(), pool))
	return s, rec
}

func TestPlayLinesCloze(t *testing.T) {
	s, rec := newLineSession(t, session.ModeCloze, [2]string{"Haus", "house"})

	var out bytes.Buffer
	err := playLines(context.Background(), s, strings.NewReader(" haus!\n"), &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Setze das deutsche Wort für house ein: ___")
	assert.Contains(t, out.String(), "✓ Correct!")
	assert.Contains(t, out.String(), "Summary: 1 of 1 correct (100%)")
	require.Len(t, rec.results, 1)
	assert.Equal(t, 100, rec.results[0].Percent)
}

func TestPlayLinesWrongAnswer(t *testing.T) {
	s, _ := newLineSession(t, session.ModeCloze, [2]string{"Haus", "house"})

	var out bytes.Buffer
	require.NoError(t, playLines(context.Background(), s, strings.NewReader("Maus\n"), &out))
	assert.Contains(t, out.String(), "Answer: Haus")
	assert.Contains(t, out.String(), "Summary: 0 of 1 correct (0%)")
	assert.Contains(t, out.String(), "Haus / house  (you: Maus)")
}

func TestPlayLinesSwitchAndQuit(t *testing.T) {
	s, rec := newLineSession(t, session.ModeCloze, [2]string{"Haus", "house"})

	var out bytes.Buffer
	require.NoError(t, playLines(context.Background(), s, strings.NewReader(":switch\n:quit\n"), &out))
	assert.Equal(t, vocab.SourceToTarget, s.Direction())
	assert.Contains(t, out.String(), "Setze das englische Wort für Haus ein: ___")
	assert.Contains(t, out.String(), "nothing saved")
	assert.Empty(t, rec.results)
}

func TestPlayLinesMultipleChoice(t *testing.T) {
	s, rec := newLineSession(t, session.ModeMultipleChoice,
		[2]string{"Haus", "house"}, [2]string{"Hund", "dog"},
		[2]string{"Katze", "cat"}, [2]string{"Baum", "tree"})

	var out bytes.Buffer
	input := "9\n1\n1\n1\n1\n"
	require.NoError(t, playLines(context.Background(), s, strings.NewReader(input), &out))
	assert.Contains(t, out.String(), "Answer with a number from 1 to 4.")
	assert.Contains(t, out.String(), "  4) ")
	require.Len(t, rec.results, 1)
	assert.Equal(t, 4, rec.results[0].Total)
}

func TestPlayLinesInputClosed(t *testing.T) {
	s, rec := newLineSession(t, session.ModeCloze, [2]string{"Haus", "house"})

	var out bytes.Buffer
	require.NoError(t, playLines(context.Background(), s, strings.NewReader(""), &out))
	assert.Contains(t, out.String(), "(input closed)")
	assert.Empty(t, rec.results)
}
