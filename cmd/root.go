package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lernwerk/vokabel/internal/config"
	"github.com/lernwerk/vokabel/internal/logging"
	"github.com/lernwerk/vokabel/internal/screen"
	"github.com/lernwerk/vokabel/internal/session"
	"github.com/lernwerk/vokabel/internal/store"
	"github.com/lernwerk/vokabel/internal/vocab"
)

var rootCmd = &cobra.Command{
	Use:   "vokabel",
	Short: "Vocabulary quiz for German and English",
	Long:  "Vokabel drills the word lists of a course as cloze or multiple-choice quizzes, in the terminal or over HTTP.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to the YAML config file (default $XDG_CONFIG_HOME/vokabel/config.yaml)")
	pf.String("db", "", "Database DSN; a file path for sqlite (overrides VOKABEL_DB)")
	pf.String("driver", "", "Database driver: sqlite, postgres or mysql")
	pf.String("log-level", "", "Log level: debug, info, warn or error")
	pf.String("log-file", "", "Write logs to this file")
	pf.String("user", "", "Email of the local learner profile")
	pf.String("mode", "", "Quiz mode: cloze or choice")
	pf.String("direction", "", "Quiz direction: en->de or de->en")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(wordsCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// cliEnv holds what the commands share once flags are parsed.
type cliEnv struct {
	cfg      config.Config
	store    *store.Store
	log      *slog.Logger
	dataDir  string
	closeLog func() error
}

// openRuntime loads the configuration, sets up logging and opens the
// store. Terminal UI commands log to a file since they own the screen.
func openRuntime(cmd *cobra.Command, logToFile bool) (*cliEnv, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, err
	}

	dsn := cfg.DB.DSN
	dataDir := ""
	if store.Driver(cfg.DB.Driver) == store.DriverSQLite {
		if dsn == "" {
			if dsn, err = store.DefaultDBPath(); err != nil {
				return nil, fmt.Errorf("resolve DB path: %w", err)
			}
		} else if err := store.EnsureDir(dsn); err != nil {
			return nil, fmt.Errorf("create DB dir: %w", err)
		}
		dataDir = filepath.Dir(dsn)
	} else if dir, err := os.UserCacheDir(); err == nil {
		dataDir = filepath.Join(dir, "vokabel")
	}

	logCfg := cfg.Log
	if logToFile && logCfg.File == "" && dataDir != "" {
		logCfg.File = filepath.Join(dataDir, "vokabel.log")
	}
	log, closeLog, err := logging.Open(logCfg, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("set up logging: %w", err)
	}

	st, err := store.Open(cmd.Context(), store.Options{Driver: store.Driver(cfg.DB.Driver), DSN: dsn})
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("open store: %w", err)
	}
	log.Debug("store opened", "driver", cfg.DB.Driver, "data_dir", dataDir)

	return &cliEnv{cfg: cfg, store: st, log: log, dataDir: dataDir, closeLog: closeLog}, nil
}

func (r *cliEnv) Close() {
	if err := r.store.Close(); err != nil {
		r.log.Warn("close store", "error", err)
	}
	_ = r.closeLog()
}

func (r *cliEnv) localUser() *store.LocalUser {
	return &store.LocalUser{
		Profiles: r.store.ProfileRepo(),
		Email:    r.cfg.User.Email,
		Name:     r.cfg.User.Name,
	}
}

// quizDefaults parses the configured mode and direction.
func (r *cliEnv) quizDefaults() (session.Mode, vocab.Direction, error) {
	mode, err := session.ParseMode(r.cfg.Quiz.Mode)
	if err != nil {
		return "", 0, err
	}
	dir, err := vocab.ParseDirection(r.cfg.Quiz.Direction)
	if err != nil {
		return "", 0, err
	}
	return mode, dir, nil
}

// screenEnv builds the environment of the terminal UI and resolves the
// local learner.
func (r *cliEnv) screenEnv(ctx context.Context) (*screen.Env, error) {
	mode, dir, err := r.quizDefaults()
	if err != nil {
		return nil, err
	}
	users := r.localUser()
	user, err := users.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve local user: %w", err)
	}
	return &screen.Env{
		Words:     r.store.WordRepo(),
		Results:   r.store.ResultRepo(),
		Profiles:  r.store.ProfileRepo(),
		Stats:     r.store.StatRepo(),
		Logger:    r.log,
		User:      user,
		Users:     users,
		Mode:      mode,
		Direction: dir,
	}, nil
}
