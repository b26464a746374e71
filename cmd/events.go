/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/agritrack/apiserver/config"
	"github.com/agritrack/apiserver/internal/events"
	"github.com/agritrack/apiserver/internal/mq"
)

// eventsCmd represents the events command
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Tails entity change events from the configured broker",
	Long: `Tails entity change events from the configured broker. Usage:

	MQ_BACKEND=rabbitmq agritrack events
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.LoadConfig()

		broker, err := mq.Connect(cmd.Context(), cfg.MQ)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to connect broker: %v\n", err)
			os.Exit(1)
		}
		if broker == nil {
			fmt.Fprintln(os.Stderr, "MQ_BACKEND is not configured, nothing to tail")
			os.Exit(1)
		}
		defer broker.Close()

		slog.Info("tailing change events", "channel", events.Channel)
		err = broker.Subscribe(cmd.Context(), events.Channel, func(ctx context.Context, msg mq.Message) error {
			event, err := events.Decode(msg.Data)
			if err != nil {
				slog.Error("malformed change event", "message_id", msg.ID, "error", err)
				return nil
			}
			slog.Info("change event",
				"entity", event.Entity,
				"action", event.Action,
				"id", event.ID.String(),
				"at", event.At,
			)
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "subscribe error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}
