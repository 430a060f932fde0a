package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lernwerk/vokabel/internal/session"
	"github.com/lernwerk/vokabel/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past quiz results of the local learner",
	RunE: func(cmd *cobra.Command, args []string) error {
		grade, _ := cmd.Flags().GetInt("grade")
		unit, _ := cmd.Flags().GetInt("unit")
		station, _ := cmd.Flags().GetInt("station")
		limit, _ := cmd.Flags().GetInt("limit")
		email, _ := cmd.Flags().GetString("email")

		rt, err := openRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cmd.Context()
		userID := ""
		if email == "" {
			u, err := rt.localUser().CurrentUser(ctx)
			if err != nil {
				return fmt.Errorf("resolve local user: %w", err)
			}
			userID = u.ID
		} else {
			p, err := rt.store.ProfileRepo().ProfileByEmail(ctx, email)
			if err != nil {
				return fmt.Errorf("look up %s: %w", email, err)
			}
			userID = p.ID
		}

		results, err := rt.store.ResultRepo().ListResults(ctx, store.ResultFilter{
			UserID:  userID,
			Grade:   grade,
			Unit:    unit,
			Station: station,
			Limit:   limit,
		})
		if err != nil {
			return fmt.Errorf("list results: %w", err)
		}

		printResults(cmd.OutOrStdout(), results)
		return nil
	},
}

func printResults(out io.Writer, results []session.Result) {
	if len(results) == 0 {
		fmt.Fprintln(out, "No quiz results found.")
		return
	}

	fmt.Fprintf(out, "%-16s  %-8s  %-14s  %7s  %5s\n", "Date", "Course", "Mode", "Correct", "Score")
	fmt.Fprintln(out, strings.Repeat("─", 58))
	for _, r := range results {
		fmt.Fprintf(out, "%-16s  %-8s  %-14s  %3d/%-3d  %4d%%\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Course,
			r.Mode,
			r.Correct, r.Total,
			r.Percent,
		)
	}
	fmt.Fprintln(out, strings.Repeat("─", 58))
	fmt.Fprintln(out, session.Overview(results))
}

func init() {
	historyCmd.Flags().Int("grade", 0, "Only show this grade")
	historyCmd.Flags().Int("unit", 0, "Only show this unit")
	historyCmd.Flags().Int("station", 0, "Only show this station")
	historyCmd.Flags().IntP("limit", "n", 20, "Number of results to show")
	historyCmd.Flags().String("email", "", "Show the results of another profile")
}
