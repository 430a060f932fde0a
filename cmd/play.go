package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lernwerk/vokabel/internal/app"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start the quiz in the terminal UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd)
	},
}

func runPlay(cmd *cobra.Command) error {
	rt, err := openRuntime(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	env, err := rt.screenEnv(cmd.Context())
	if err != nil {
		return err
	}
	rt.log.Info("terminal ui started", "user", env.User.Email)
	return app.Run(env)
}
