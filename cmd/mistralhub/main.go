package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "1.0.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mistralhub",
	Short: "Terminal chat client for the Mistral Hub relay",
	Long: `mistralhub talks to a running Mistral Hub relay and keeps your
conversations in a local store.

Examples:
  mistralhub chat "Explain goroutines in one paragraph"
  mistralhub chat --attach invoice.pdf "What is the total?"
  mistralhub chat                      # interactive session
  mistralhub list
  mistralhub use <conversation-id>
  mistralhub models`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return opts.resolve(cmd)
	},
}

var opts = &clientOptions{}

func init() {
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(useCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(modelsCmd)

	rootCmd.PersistentFlags().String("server", "", "Relay base URL (env MISTRALHUB_SERVER_URL)")
	rootCmd.PersistentFlags().String("store", "", "Conversation store DSN: sqlite path, postgres URL or \"memory\" (env MISTRALHUB_STORE_DSN)")
	rootCmd.PersistentFlags().StringP("model", "m", "", "Model for new conversations (env MISTRALHUB_MODEL)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (env MISTRALHUB_LOG_LEVEL)")
}
