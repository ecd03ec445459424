// notifywatch is a terminal notification panel for the StayLine realtime
// gateway: it subscribes to channels and prints events as they arrive, with
// the same read/unread bookkeeping the web dashboards use.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/stayline/stayline_realtime/client"
)

var (
	endpoint string
	token    string
	channels []string
	bound    int
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "notifywatch",
	Short: "Watch StayLine realtime notifications from the terminal",
	Long: `notifywatch connects to the StayLine realtime gateway, subscribes to
the given channels and prints notifications as they arrive. On exit it
prints a summary of what is still unread.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logLevel := zerolog.WarnLevel
		if verbose {
			logLevel = zerolog.DebugLevel
		}
		logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(logLevel).
			With().Timestamp().Logger()

		rt := client.New(client.Options{
			Endpoint: endpoint,
			Token:    token,
			Bound:    bound,
			Channels: channels,
			Logger:   &logger,
		})

		rt.OnStatus(func(connected bool) {
			if connected {
				fmt.Printf("* connected to %s (channels: %v)\n", endpoint, rt.Channels())
			} else {
				fmt.Println("* disconnected, retrying...")
			}
		})

		rt.On(client.EventAny, func(ev client.Event) {
			rec := ev.Record
			fmt.Printf("[%s] %-8s %s: %s (unread: %d)\n",
				rec.Timestamp.Format("15:04:05"),
				rec.Severity,
				client.Title(rec),
				client.Message(rec),
				rt.UnreadCount())
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt.Connect(ctx)
		<-ctx.Done()
		rt.Close()

		unread := rt.Notifications(client.FilterUnread)
		fmt.Printf("\n%d notifications received, %d unread\n", len(rt.Notifications(client.FilterAll)), len(unread))
		for _, rec := range unread {
			fmt.Printf("  - %s: %s\n", client.Title(rec), client.Message(rec))
		}
		return nil
	},
}

func main() {
	rootCmd.Flags().StringVarP(&endpoint, "endpoint", "e", "ws://localhost:8080/ws", "gateway push endpoint")
	rootCmd.Flags().StringVarP(&token, "token", "t", os.Getenv("STAYLINE_TOKEN"), "bearer token for the gateway")
	rootCmd.Flags().StringSliceVarP(&channels, "channel", "c", []string{"admin"}, "channels to subscribe to")
	rootCmd.Flags().IntVar(&bound, "limit", 0, "max notifications to keep (0 = default)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
