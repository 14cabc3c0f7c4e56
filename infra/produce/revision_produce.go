package produce

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	CatalogExchange = "catalog.exchange"

	// RevisionArchiveQueue receives one message per committed revision
	RevisionArchiveQueue      = "catalog.revision_archive"
	RevisionCreatedRoutingKey = "revision.created"

	// ObjectPurgeQueue receives one message per deleted catalog object
	ObjectPurgeQueue        = "catalog.object_purge"
	ObjectDeletedRoutingKey = "object.deleted"
)

// RevisionCreatedMessage announces a committed revision. Restores carry the
// commit they were restored from.
type RevisionCreatedMessage struct {
	BucketID     int64  `json:"bucket_id"`
	BucketName   string `json:"bucket_name"`
	ObjectName   string `json:"object_name"`
	CommitID     int64  `json:"commit_id"`
	RestoredFrom int64  `json:"restored_from,omitempty"`
	Username     string `json:"username"`
	Timestamp    int64  `json:"timestamp"`
}

// ObjectDeletedMessage asks the consumer to drop the archived history of an object.
type ObjectDeletedMessage struct {
	BucketName string `json:"bucket_name"`
	ObjectName string `json:"object_name"`
	Username   string `json:"username"`
	Timestamp  int64  `json:"timestamp"`
}

// Publisher is the subset of *amqp.Channel used to publish.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RevisionProduceService struct {
	publisher Publisher
}

func InitRevisionProduceService(channel *amqp.Channel) *RevisionProduceService {
	err := channel.ExchangeDeclare(
		CatalogExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		panic("Failed to declare Catalog exchange: " + err.Error())
	}

	bindings := []struct{ queue, key string }{
		{RevisionArchiveQueue, RevisionCreatedRoutingKey},
		{ObjectPurgeQueue, ObjectDeletedRoutingKey},
	}
	for _, b := range bindings {
		_, err = channel.QueueDeclare(
			b.queue,
			true,  // durable
			false, // auto-delete
			false, // exclusive
			false, // no-wait
			nil,
		)
		if err != nil {
			panic("Failed to declare " + b.queue + " queue: " + err.Error())
		}

		if err = channel.QueueBind(b.queue, b.key, CatalogExchange, false, nil); err != nil {
			panic("Failed to bind " + b.queue + " queue: " + err.Error())
		}
	}

	return NewRevisionProduceService(channel)
}

func NewRevisionProduceService(publisher Publisher) *RevisionProduceService {
	return &RevisionProduceService{publisher: publisher}
}

func (s *RevisionProduceService) PublishRevisionCreated(ctx context.Context, msg RevisionCreatedMessage) error {
	msg.Timestamp = time.Now().Unix()
	return s.publish(ctx, RevisionCreatedRoutingKey, msg)
}

func (s *RevisionProduceService) PublishObjectDeleted(ctx context.Context, msg ObjectDeletedMessage) error {
	msg.Timestamp = time.Now().Unix()
	return s.publish(ctx, ObjectDeletedRoutingKey, msg)
}

func (s *RevisionProduceService) publish(ctx context.Context, routingKey string, msg interface{}) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return s.publisher.PublishWithContext(
		ctx,
		CatalogExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    uuid.NewString(),
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
}
