package vocab

import (
	"fmt"
	"strings"
)

// BuildPrompt returns the fill-in-the-blank text for entry. A stored cloze
// template for the asked-for language wins; otherwise a generic
// instruction naming the word to translate is synthesized. The result
// always contains BlankMarker.
func BuildPrompt(entry WordEntry, dir Direction) string {
	if dir == TargetToSource {
		if strings.Contains(entry.ClozeSource, BlankMarker) {
			return entry.ClozeSource
		}
		return fmt.Sprintf("Setze das **deutsche** Wort für **%s** ein: %s", strings.TrimSpace(entry.Target), BlankMarker)
	}
	if strings.Contains(entry.ClozeTarget, BlankMarker) {
		return entry.ClozeTarget
	}
	return fmt.Sprintf("Setze das **englische** Wort für **%s** ein: %s", strings.TrimSpace(entry.Source), BlankMarker)
}

// ExpectedAnswer returns the raw answer field the learner has to produce.
func ExpectedAnswer(entry WordEntry, dir Direction) string {
	if dir == TargetToSource {
		return entry.Source
	}
	return entry.Target
}

// QuestionText returns the word shown to the learner in a multiple-choice
// question.
func QuestionText(entry WordEntry, dir Direction) string {
	if dir == TargetToSource {
		return entry.Target
	}
	return entry.Source
}

// PlainPrompt strips the "**" emphasis markers used in synthesized prompts,
// for front ends that cannot render them.
func PlainPrompt(prompt string) string {
	return strings.ReplaceAll(prompt, "**", "")
}
