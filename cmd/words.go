package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lernwerk/vokabel/internal/clozegen"
	"github.com/lernwerk/vokabel/internal/llm"
	"github.com/lernwerk/vokabel/internal/store"
	"github.com/lernwerk/vokabel/internal/wordsync"
)

var wordsCmd = &cobra.Command{
	Use:   "words",
	Short: "Manage the word bank",
}

var wordsImportCmd = &cobra.Command{
	Use:   "import <file.csv>...",
	Short: "Import word lists from CSV files",
	Long: `Import word lists from CSV files with the columns

  de,en,grade,unit,station[,cloze_de[,cloze_en]]

Rows are validated one by one; invalid rows are reported and skipped.
Importing a list again updates the existing words.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		syncer := wordsync.New(rt.store.WordRepo(), "", rt.log)
		var total wordsync.Report
		for _, path := range args {
			rep, err := syncer.ImportFile(cmd.Context(), path)
			if err != nil {
				return err
			}
			total.Files += rep.Files
			total.Words += rep.Words
			total.Rejected += rep.Rejected
			total.Errors = append(total.Errors, rep.Errors...)
		}
		printReport(cmd, total)
		return nil
	},
}

var wordsSyncCmd = &cobra.Command{
	Use:   "sync [repo-url]",
	Short: "Clone or pull a git repository of CSV word lists and import it",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		branch, _ := cmd.Flags().GetString("branch")

		rt, err := openRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		repo := rt.cfg.Sync.Repo
		if len(args) == 1 {
			repo = args[0]
		}
		if repo == "" {
			return errors.New("no repository given and sync.repo is not set")
		}
		if branch == "" {
			branch = rt.cfg.Sync.Branch
		}
		reposDir := rt.cfg.Sync.ReposDir
		if reposDir == "" {
			reposDir = filepath.Join(rt.dataDir, "repos")
		}

		rep, err := wordsync.New(rt.store.WordRepo(), reposDir, rt.log).Sync(cmd.Context(), repo, branch)
		if err != nil {
			return err
		}
		printReport(cmd, rep)
		return nil
	},
}

func printReport(cmd *cobra.Command, rep wordsync.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Imported %d words from %d files.\n", rep.Words, rep.Files)
	if rep.Rejected > 0 {
		fmt.Fprintf(out, "Rejected %d rows:\n", rep.Rejected)
	}
	for _, err := range rep.Errors {
		fmt.Fprintf(out, "  %v\n", err)
	}
}

var wordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List words of the word bank",
	RunE: func(cmd *cobra.Command, args []string) error {
		grade, _ := cmd.Flags().GetInt("grade")
		unit, _ := cmd.Flags().GetInt("unit")
		station, _ := cmd.Flags().GetInt("station")
		limit, _ := cmd.Flags().GetInt("limit")

		rt, err := openRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		words, err := rt.store.WordRepo().ListWords(cmd.Context(), store.WordFilter{
			Grade: grade, Unit: unit, Station: station, Limit: limit,
		})
		if err != nil {
			return fmt.Errorf("list words: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(words) == 0 {
			fmt.Fprintln(out, "No words found.")
			return nil
		}
		fmt.Fprintf(out, "%-8s  %-24s  %-24s  %s\n", "Course", "German", "English", "Cloze")
		fmt.Fprintln(out, strings.Repeat("─", 66))
		for _, w := range words {
			cloze := ""
			if w.ClozeSource != "" {
				cloze = "✓"
			}
			fmt.Fprintf(out, "%-8s  %-24s  %-24s  %s\n",
				w.Course, truncate(w.Source, 24), truncate(w.Target, 24), cloze)
		}
		return nil
	},
}

var wordsClozeCmd = &cobra.Command{
	Use:   "cloze",
	Short: "Generate cloze sentences for words that have none",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		rt, err := openRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		if rt.cfg.LLM.Provider == "" {
			return errors.New("no LLM provider configured; set llm.provider or an API key such as ANTHROPIC_API_KEY")
		}
		ctx := cmd.Context()
		provider, err := llm.New(ctx, rt.cfg.LLM, rt.store.EventRepo(), rt.log)
		if err != nil {
			return fmt.Errorf("LLM provider: %w", err)
		}

		gen := clozegen.New(provider, clozegen.DefaultConfig())
		rep, err := gen.Backfill(ctx, rt.store.WordRepo(), limit, rt.log)
		fmt.Fprintf(cmd.OutOrStdout(), "Generated %d cloze sentences, %d failed.\n", rep.Generated, rep.Failed)
		return err
	},
}

func init() {
	wordsSyncCmd.Flags().String("repo", "", "Repository URL (overrides sync.repo)")
	wordsSyncCmd.Flags().String("branch", "", "Branch to check out (default: the remote HEAD)")

	wordsListCmd.Flags().Int("grade", 0, "Only list this grade")
	wordsListCmd.Flags().Int("unit", 0, "Only list this unit")
	wordsListCmd.Flags().Int("station", 0, "Only list this station")
	wordsListCmd.Flags().IntP("limit", "n", 100, "Number of words to list")

	wordsClozeCmd.Flags().IntP("limit", "n", 50, "Number of words to process")
	wordsClozeCmd.Flags().String("provider", "", "LLM provider: anthropic, openai, gemini or mock")

	wordsCmd.AddCommand(wordsImportCmd)
	wordsCmd.AddCommand(wordsSyncCmd)
	wordsCmd.AddCommand(wordsListCmd)
	wordsCmd.AddCommand(wordsClozeCmd)
}
