package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"guestlist/internal/config"
	"guestlist/internal/models"
)

// GuestEvent is the wire payload for guest lifecycle events.
type GuestEvent struct {
	Type  string       `json:"type"`
	Guest models.Guest `json:"guest"`
	At    time.Time    `json:"at"`
}

const (
	EventGuestRegistered = "guest_registered"
	EventGuestCheckedIn  = "guest_checked_in"
	EventGuestDeleted    = "guest_deleted"
)

type Producer struct {
	registered *kafka.Writer
	checkedIn  *kafka.Writer
	deleted    *kafka.Writer
	mockMode   bool
}

func NewProducer(cfg config.KafkaConfig) *Producer {
	if cfg.MockMode {
		return &Producer{mockMode: true}
	}
	return &Producer{
		registered: newWriter(cfg.Brokers, cfg.Topics.GuestRegistered),
		checkedIn:  newWriter(cfg.Brokers, cfg.Topics.GuestCheckedIn),
		deleted:    newWriter(cfg.Brokers, cfg.Topics.GuestDeleted),
	}
}

func newWriter(brokers []string, topic string) *kafka.Writer {
	return kafka.NewWriter(kafka.WriterConfig{
		Brokers: brokers,
		Topic:   topic,
	})
}

func (p *Producer) publish(writer *kafka.Writer, eventType string, guest models.Guest) error {
	event := GuestEvent{Type: eventType, Guest: guest, At: time.Now()}
	msgBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if p.mockMode {
		fmt.Printf("Mock publish [%s]: %s\n", eventType, string(msgBytes))
		return nil
	}

	return writer.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(guest.ID),
			Value: msgBytes,
		},
	)
}

// PublishGuestRegistered streams a new registration to Kafka so the
// staff service can drop its listing snapshot for that venue/date.
func (p *Producer) PublishGuestRegistered(guest models.Guest) error {
	return p.publish(p.registered, EventGuestRegistered, guest)
}

func (p *Producer) PublishGuestCheckedIn(guest models.Guest) error {
	return p.publish(p.checkedIn, EventGuestCheckedIn, guest)
}

func (p *Producer) PublishGuestDeleted(guest models.Guest) error {
	return p.publish(p.deleted, EventGuestDeleted, guest)
}

func (p *Producer) Close() error {
	for _, w := range []*kafka.Writer{p.registered, p.checkedIn, p.deleted} {
		if w != nil {
			if err := w.Close(); err != nil {
				return err
			}
		}
	}
	return nil
}
