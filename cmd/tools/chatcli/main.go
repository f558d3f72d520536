package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var (
	replyDelay time.Duration
	timezone   string
)

var rootCmd = &cobra.Command{
	Use:   "chatcli",
	Short: "Chat with the LabSense assistant from a terminal",
	Long: `Runs an in-process LabSense chat session.

Type a question and press enter. Commands:
  /attach <path>   stage a PDF or image for the next message
  /clear           drop the staged attachment
  /export <fmt>    print the transcript (json, jsonl, md, yaml)
  /quit            leave immediately, dropping pending replies`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		loc, err := time.LoadLocation(timezone)
		if err != nil {
			return fmt.Errorf("invalid timezone %q: %w", timezone, err)
		}
		if replyDelay < 0 {
			return fmt.Errorf("delay must not be negative")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return run(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), options{delay: replyDelay, loc: loc})
	},
}

func init() {
	rootCmd.Flags().DurationVar(&replyDelay, "delay", time.Second, "Simulated assistant reply delay")
	rootCmd.Flags().StringVar(&timezone, "tz", "Local", "Time zone used to render message timestamps")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
