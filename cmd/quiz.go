package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lernwerk/vokabel/internal/session"
	"github.com/lernwerk/vokabel/internal/vocab"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Run a quiz line by line on stdin and stdout",
	Long: `Run one quiz without the terminal UI, for plain terminals and scripts.

Type the answer and press Enter. In multiple-choice mode answer with the
option number. ":switch" flips the direction and ":quit" stops without
saving.`,
	RunE: runQuiz,
}

func init() {
	quizCmd.Flags().Int("grade", 0, "Grade of the course (required)")
	quizCmd.Flags().Int("unit", 0, "Unit of the course (required)")
	quizCmd.Flags().Int("station", 0, "Station of the course (required)")
	_ = quizCmd.MarkFlagRequired("grade")
	_ = quizCmd.MarkFlagRequired("unit")
	_ = quizCmd.MarkFlagRequired("station")
}

func runQuiz(cmd *cobra.Command, args []string) error {
	course, err := courseFlags(cmd)
	if err != nil {
		return err
	}

	rt, err := openRuntime(cmd, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	mode, dir, err := rt.quizDefaults()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	s := session.New(session.Config{Course: course, Mode: mode, Direction: dir}, session.Deps{
		Loader:   rt.store.WordRepo(),
		Recorder: rt.store.ResultRepo(),
		Users:    rt.localUser(),
		Stats:    rt.store.StatRepo(),
		Logger:   rt.log,
	})
	if err := s.Load(ctx); err != nil {
		return fmt.Errorf("start quiz: %w", err)
	}
	return playLines(ctx, s, cmd.InOrStdin(), cmd.OutOrStdout())
}

func courseFlags(cmd *cobra.Command) (vocab.Course, error) {
	var c vocab.Course
	var err error
	if c.Grade, err = cmd.Flags().GetInt("grade"); err != nil {
		return c, err
	}
	if c.Unit, err = cmd.Flags().GetInt("unit"); err != nil {
		return c, err
	}
	if c.Station, err = cmd.Flags().GetInt("station"); err != nil {
		return c, err
	}
	return c, nil
}

// playLines drives s until it finishes or the input ends.
func playLines(ctx context.Context, s *session.Session, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)

	fmt.Fprintf(out, "Course %s: %d words, %s\n\n", s.Course(), s.Total(), s.Mode().Tag(s.Direction()))

	for !s.Finished() {
		q := s.Current()
		if q == nil {
			return fmt.Errorf("no question in phase %s", s.Phase())
		}

		fmt.Fprintf(out, "── Question %d/%d ──\n", s.Index()+1, s.Total())
		if s.Mode() == session.ModeMultipleChoice {
			fmt.Fprintf(out, "What does %s mean?\n", q.Prompt)
			for j, o := range q.Options {
				fmt.Fprintf(out, "  %d) %s\n", j+1, o)
			}
		} else {
			fmt.Fprintln(out, vocab.PlainPrompt(q.Prompt))
		}

		fmt.Fprint(out, "\nYour answer: ")
		if !scanner.Scan() {
			fmt.Fprintln(out, "\n(input closed)")
			return scanner.Err()
		}
		line := scanner.Text()

		switch strings.TrimSpace(line) {
		case ":quit":
			fmt.Fprintln(out, "Quiz stopped, nothing saved.")
			return nil
		case ":switch":
			if err := switchDirection(ctx, s, scanner, out); err != nil {
				return err
			}
			fmt.Fprintln(out)
			continue
		}

		a, err := s.SubmitAnswer(ctx, line)
		if errors.Is(err, session.ErrInvalidChoice) {
			fmt.Fprintf(out, "Answer with a number from 1 to %d.\n\n", len(q.Options))
			continue
		}
		if err != nil {
			return err
		}
		if a.Correct {
			fmt.Fprintln(out, "\033[32m✓ Correct!\033[0m")
		} else {
			fmt.Fprintf(out, "\033[31m✗ Wrong.\033[0m Answer: %s\n", a.Canonical)
		}
		fmt.Fprintln(out)

		if err := s.Advance(ctx); err != nil {
			return err
		}
	}

	sum := session.BuildSummary(s)
	fmt.Fprintf(out, "── Summary: %d of %d correct (%d%%) ──\n", sum.Correct, sum.Total, sum.Percent)
	for _, a := range sum.Wrong() {
		fmt.Fprintf(out, "  %s / %s  (you: %s)\n", a.Source, a.Target, a.Answer)
	}
	if sum.PersistErr != nil {
		fmt.Fprintf(out, "The result could not be saved: %v\n", sum.PersistErr)
	}
	return nil
}

// switchDirection flips the direction, asking first when answers would
// be thrown away.
func switchDirection(ctx context.Context, s *session.Session, scanner *bufio.Scanner, out io.Writer) error {
	next := s.Direction().Opposite()
	err := s.ChangeDirection(ctx, next, false)
	if !errors.Is(err, session.ErrConfirmationRequired) {
		return err
	}
	fmt.Fprint(out, "Switching restarts the quiz. Continue? [y/N] ")
	if !scanner.Scan() {
		return scanner.Err()
	}
	if !strings.EqualFold(strings.TrimSpace(scanner.Text()), "y") {
		return nil
	}
	return s.ChangeDirection(ctx, next, true)
}
