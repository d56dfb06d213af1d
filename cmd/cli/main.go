package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	baseURL string
	timeout time.Duration
	token   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "spendctl",
		Short:         "Spendtrack operator CLI",
		Long:          `Manage the spendtrack database and talk to a running spendtrack API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the spendtrack API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("SPENDTRACK_TOKEN"), "Bearer token for APIs with auth enabled")

	rootCmd.AddCommand(
		migrateCmd(),
		seedCmd(),
		tokenCmd(),
		transactionsCmd(opts),
		summaryCmd(opts),
	)

	return rootCmd
}
