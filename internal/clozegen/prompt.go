package clozegen

import (
	"fmt"
	"strings"

	"github.com/lernwerk/vokabel/internal/vocab"
)

const systemPrompt = `You write example sentences for a German/English vocabulary trainer used by pupils in grades 5 to 10.

Rules:
- Write one German sentence for the German word and one English sentence for the English word.
- Replace the vocabulary word in each sentence with exactly three underscores: ___
- The blank must appear exactly once per sentence.
- Do not use the vocabulary word anywhere else in the sentence.
- Keep sentences short (at most 15 words), everyday and age-appropriate.
- The sentence must make the missing word guessable from context.`

func buildUserMessage(w vocab.WordEntry, feedback string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "German word: %s\n", vocab.PrimarySolution(w.Source))
	fmt.Fprintf(&b, "English word: %s\n", vocab.PrimarySolution(w.Target))
	if alts := vocab.SplitAnswers(w.Target); len(alts) > 1 {
		fmt.Fprintf(&b, "Other accepted English answers: %s\n", strings.Join(alts[1:], ", "))
	}
	fmt.Fprintf(&b, "Grade: %d\n", w.Grade)
	if feedback != "" {
		fmt.Fprintf(&b, "\nYour previous answer was rejected: %s\n", feedback)
	}
	return b.String()
}
