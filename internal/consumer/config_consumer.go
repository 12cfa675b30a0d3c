package consumer

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/Eursukkul/booth-festa/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
)

// SnapshotImporter stores a published configuration idempotently.
type SnapshotImporter interface {
	ImportSnapshot(ctx context.Context, snap models.ConfigPublished) (bool, error)
}

// Delivery is the part of amqp.Delivery the consumer acknowledges through.
type Delivery interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

type ConfigConsumer struct {
	importer SnapshotImporter
	timeout  time.Duration
}

func NewConfigConsumer(importer SnapshotImporter) *ConfigConsumer {
	return &ConfigConsumer{importer: importer, timeout: 10 * time.Second}
}

// Start syncs config.updated messages into the local snapshot store until
// msgs is closed.
func (cc *ConfigConsumer) Start(msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			cc.handle(msg.Body, msg)
		}
		log.Println("[ConfigConsumer] channel closed, stopping consumer")
	}()
}

func (cc *ConfigConsumer) handle(body []byte, ack Delivery) {
	var snap models.ConfigPublished
	if err := json.Unmarshal(body, &snap); err != nil {
		log.Printf("[ConfigConsumer] failed to unmarshal: %v", err)
		ack.Nack(false, false)
		return
	}
	if snap.Version == "" {
		log.Printf("[ConfigConsumer] dropping snapshot without version")
		ack.Nack(false, false)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), cc.timeout)
	defer cancel()

	created, err := cc.importer.ImportSnapshot(ctx, snap)
	if err != nil {
		log.Printf("[ConfigConsumer] failed to store version %s: %v", snap.Version, err)
		ack.Nack(false, true) // requeue
		return
	}

	if created {
		log.Printf("[ConfigConsumer] synced version %s (%d booths)", snap.Version, len(snap.Config.Booths))
	} else {
		log.Printf("[ConfigConsumer] version %s already stored", snap.Version)
	}
	ack.Ack(false)
}
