package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/tally-client/internal/config"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Recovered from panic: %v\n", r)
			debug.PrintStack()
			os.Exit(2)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, finish := rootCmd()
	err := finish(ctx, cmd.ExecuteContext(ctx))
	if err != nil {
		stop()
		os.Exit(1)
	}
}

// rootCmd returns the command tree and the func to call with its result. The
// finish func releases what the run opened, which cobra's post-run hooks
// skip when a command fails.
func rootCmd() (*cobra.Command, func(context.Context, error) error) {
	var (
		logLevel string
		a        *app
	)

	cmd := &cobra.Command{
		Use:           "tally",
		Short:         "Command line client for the Tally backend",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := setupLogging(logLevel); err != nil {
				return err
			}
			c, err := config.New()
			if err != nil {
				return err
			}
			a, err = newApp(cmd.Context(), c, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if isatty.IsTerminal(os.Stderr.Fd()) {
				a.stopSpinner = showActivity(a.api.Tracker(), os.Stderr)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			displayAppname(a.cfg.GetAppName())
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	current := func() *app { return a }
	cmd.AddCommand(
		loginCmd(current),
		logoutCmd(current),
		whoamiCmd(current),
		registerCmd(current),
		confirmCmd(current),
		resetPasswordCmd(current),
		passwordCmd(current),
		balanceCmd(current),
		productsCmd(current),
		purchasesCmd(current),
		paymentsCmd(current),
		usersCmd(current),
		buyCmd(current),
		payCmd(current),
	)

	finish := func(ctx context.Context, runErr error) error {
		if a == nil {
			return runErr
		}
		runErr = a.expireRejectedSession(ctx, runErr)
		closeErr := a.Close()
		a = nil
		return errors.Join(runErr, closeErr)
	}
	return cmd, finish
}

func setupLogging(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
