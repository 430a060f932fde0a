package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lernwerk/vokabel/internal/auth"
	"github.com/lernwerk/vokabel/internal/store"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage learner and administrator profiles",
}

var userAddCmd = &cobra.Command{
	Use:   "add <email>",
	Short: "Create a profile",
	Long: `Create a profile. The password is read from --password or, when that
is empty, from the first line of stdin. Profiles without a password can
use the terminal quiz but cannot log in to the HTTP API.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		admin, _ := cmd.Flags().GetBool("admin")
		password, _ := cmd.Flags().GetString("password")
		noPassword, _ := cmd.Flags().GetBool("no-password")

		if password == "" && !noPassword {
			fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
			sc := bufio.NewScanner(cmd.InOrStdin())
			if sc.Scan() {
				password = strings.TrimSpace(sc.Text())
			}
			if password == "" {
				return errors.New("empty password; use --no-password for a profile without login")
			}
		}

		p := &store.Profile{Email: args[0], FullName: name, Admin: admin}
		if password != "" {
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			p.PasswordHash = hash
		}

		rt, err := openRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.store.ProfileRepo().CreateProfile(cmd.Context(), p); err != nil {
			return err
		}
		rt.log.Info("profile created", "email", p.Email, "admin", p.Admin)
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", p.Email, p.ID)
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		profiles, err := rt.store.ProfileRepo().ListProfiles(cmd.Context())
		if err != nil {
			return fmt.Errorf("list profiles: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(profiles) == 0 {
			fmt.Fprintln(out, "No profiles yet.")
			return nil
		}
		fmt.Fprintf(out, "%-32s  %-24s  %-5s  %s\n", "Email", "Name", "Admin", "Created")
		fmt.Fprintln(out, strings.Repeat("─", 80))
		for _, p := range profiles {
			admin := ""
			if p.Admin {
				admin = "✓"
			}
			fmt.Fprintf(out, "%-32s  %-24s  %-5s  %s\n",
				truncate(p.Email, 32), truncate(p.FullName, 24), admin, p.CreatedAt.Local().Format("2006-01-02"))
		}
		return nil
	},
}

var userAdminCmd = &cobra.Command{
	Use:   "admin <email>",
	Short: "Grant or revoke the admin role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		revoke, _ := cmd.Flags().GetBool("revoke")

		rt, err := openRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		ctx := cmd.Context()
		profiles := rt.store.ProfileRepo()
		p, err := profiles.ProfileByEmail(ctx, args[0])
		if err != nil {
			return fmt.Errorf("look up %s: %w", args[0], err)
		}
		if err := profiles.SetAdmin(ctx, p.ID, !revoke); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s admin: %v\n", p.Email, !revoke)
		return nil
	},
}

var userTokenCmd = &cobra.Command{
	Use:   "token <email>",
	Short: "Issue an API bearer token for a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		sc := rt.cfg.Server
		if sc.JWTSecret == "" {
			return errors.New("server.jwt_secret is not set (VOKABEL_SERVER__JWT_SECRET)")
		}
		p, err := rt.store.ProfileRepo().ProfileByEmail(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("look up %s: %w", args[0], err)
		}
		token, err := auth.NewService(sc.JWTSecret, sc.TokenTTL).Issue(p.ID, p.Email, p.Admin)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	userAddCmd.Flags().String("name", "", "Full name")
	userAddCmd.Flags().Bool("admin", false, "Grant the admin role")
	userAddCmd.Flags().String("password", "", "Password for API login")
	userAddCmd.Flags().Bool("no-password", false, "Create the profile without a password")

	userAdminCmd.Flags().Bool("revoke", false, "Revoke instead of grant")

	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userAdminCmd)
	userCmd.AddCommand(userTokenCmd)
}
