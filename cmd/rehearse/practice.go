package main

import (
	"io"
	"log/slog"
	"os"
	"os/user"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/rehearse/internal/config"
	"github.com/MikeSquared-Agency/rehearse/internal/interview"
	"github.com/MikeSquared-Agency/rehearse/internal/practice"
	"github.com/MikeSquared-Agency/rehearse/internal/session"
	"github.com/MikeSquared-Agency/rehearse/internal/store/memory"
)

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Practice an interview in the terminal",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.Load()

		userID, _ := cmd.Flags().GetString("user")
		if userID == "" {
			userID = defaultUser()
		}

		var role interview.Role
		if v, _ := cmd.Flags().GetString("role"); v != "" {
			r, err := interview.ParseRole(v)
			if err != nil {
				return err
			}
			role = r
		}

		seed, _ := cmd.Flags().GetUint64("seed")
		if seed == 0 {
			seed = cfg.RandomSeed
		}

		// Logs would interleave with the prompts.
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		}

		svc := session.New(memory.New(), nil, newRand(seed), logger,
			session.WithRequiredExchanges(cfg.RequiredExchanges))

		return practice.Run(cmd.Context(), svc, userID, role, practice.TerminalPrompter{}, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(practiceCmd)

	practiceCmd.Flags().StringP("user", "u", "", "user id for the session (default is the OS user name)")
	practiceCmd.Flags().StringP("role", "r", "", "role to practice; prompts when unset")
	practiceCmd.Flags().Uint64("seed", 0, "random seed for follow-up selection; 0 uses REHEARSE_RANDOM_SEED or the clock")
	practiceCmd.Flags().BoolP("debug", "d", false, "log session events to stderr")
}

func defaultUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "local"
}
