package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"marketDash/internal/modules/dashboard/domain"
	"marketDash/internal/platform/broker"
)

func newWatchCmd() *cobra.Command {
	var (
		brokers []string
		topic   string
		groupID string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Tail the fetch events published by the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(brokers) == 0 {
				return fmt.Errorf("no brokers configured (use --brokers or KAFKA_BROKERS)")
			}
			consumer := broker.NewKafkaConsumer(brokers, groupID, topic)
			out := cmd.OutOrStdout()
			return consumer.Consume(cmd.Context(), func(msg *domain.Message) error {
				return writeEvent(out, msg)
			})
		},
	}

	cmd.Flags().StringSliceVar(&brokers, "brokers", splitList(envOr("KAFKA_BROKERS", os.Getenv("KAFKA_BROKER"))), "Kafka brokers")
	cmd.Flags().StringVar(&topic, "topic", envOr("KAFKA_TOPIC", "dashboard.events"), "Event topic")
	cmd.Flags().StringVar(&groupID, "group", "", "Consumer group (empty reads without committing offsets)")

	return cmd
}

func writeEvent(w io.Writer, msg *domain.Message) error {
	data, err := json.Marshal(msg.Data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s %-16s dateFrom=%s dateTo=%s %s\n",
		msg.Timestamp.Format("2006-01-02T15:04:05Z07:00"), msg.Topic, msg.Metadata["dateFrom"], msg.Metadata["dateTo"], data)
	return err
}

func splitList(raw string) []string {
	parts := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
