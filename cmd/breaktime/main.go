// Command breaktime reminds you to take micro-breaks while working and
// enforces a longer rest after a sustained work period.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hackebrot/breaktime/internal/config"
	"github.com/hackebrot/breaktime/internal/logging"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCmd(v *viper.Viper) *cobra.Command {
	root := &cobra.Command{
		Use:   "breaktime",
		Short: "Work/rest rhythm reminders",
		Long: `breaktime runs in the background and sends a desktop notification at
randomized 4-6 minute intervals while you work. After 90 minutes it tells
you to take a 20 minute break, then tells you when to get back to work.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}

			log, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
			if err != nil {
				return err
			}
			slog.SetDefault(log.With("session_id", uuid.NewString()))

			cmd.SetContext(withConfig(cmd.Context(), cfg))
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configFrom(cmd.Context()))
		},
	}

	root.AddCommand(
		newTestCmd(),
		newVersionCmd(),
	)
	return root
}

func newTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Send a sample notification and play a sound",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return sendTest(cmd.Context(), configFrom(cmd.Context()))
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "breaktime", version)
		},
	}
}

func main() {
	v := viper.New()
	root := newRootCmd(v)
	if err := config.BindFlags(root.PersistentFlags(), v); err != nil {
		fmt.Fprintln(os.Stderr, "breaktime:", err)
		os.Exit(1)
	}

	if err := root.ExecuteContext(context.Background()); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}
