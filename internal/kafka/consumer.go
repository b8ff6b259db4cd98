package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/segmentio/kafka-go"
)

type Consumer struct {
	reader *kafka.Reader
}

// NewConsumer creates a Kafka consumer for the given topic and group.
func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader}
}

// Start consumes guest events until the reader is closed. Malformed
// messages are logged and skipped.
func (c *Consumer) Start(handler func(event GuestEvent)) {
	fmt.Println("Kafka consumer started...")

	for {
		msg, err := c.reader.ReadMessage(context.Background())
		if err != nil {
			log.Printf("Error reading message: %v\n", err)
			return
		}

		var event GuestEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Printf("Failed to unmarshal message: %v\n", err)
			continue
		}

		log.Printf("Received guest event: type=%s guest=%s", event.Type, event.Guest.ID)
		handler(event)
	}
}

// Close gracefully shuts down the Kafka reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
