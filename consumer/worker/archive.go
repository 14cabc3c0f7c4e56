package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/tnqbao/gau-catalog-service/entity"
	"github.com/tnqbao/gau-catalog-service/infra"
	"github.com/tnqbao/gau-catalog-service/infra/produce"
	"github.com/tnqbao/gau-catalog-service/repository"
	"github.com/tnqbao/gau-catalog-service/utils"
)

const (
	MetadataPayloadHash = "Payload-Sha256"
	MetadataSignature   = "Signature"
	MetadataCommitID    = "Commit-Id"
	MetadataUsername    = "Username"
)

type RevisionReader interface {
	Get(ctx context.Context, bucketID int64, objectName string, commitID int64) (*entity.Revision, error)
}

type ArchiveStore interface {
	PutRevisionArchive(ctx context.Context, key, contentType string, payload []byte, metadata map[string]string) error
	DeleteObjectsWithPrefix(ctx context.Context, prefix string) error
}

type ArchiveConsumer struct {
	channel    *amqp.Channel
	logger     *infra.LoggerClient
	revisions  RevisionReader
	store      ArchiveStore
	signingKey string
	maxRetries int
	backoff    time.Duration
}

func NewArchiveConsumer(channel *amqp.Channel, infra *infra.Infra, repo *repository.Repository, signingKey string) *ArchiveConsumer {
	return newArchiveConsumer(channel, infra.Logger, repo.RevisionRepo, infra.Minio, signingKey)
}

func newArchiveConsumer(channel *amqp.Channel, logger *infra.LoggerClient, revisions RevisionReader, store ArchiveStore, signingKey string) *ArchiveConsumer {
	return &ArchiveConsumer{
		channel:    channel,
		logger:     logger,
		revisions:  revisions,
		store:      store,
		signingKey: signingKey,
		maxRetries: 3,
		backoff:    2 * time.Second,
	}
}

func (c *ArchiveConsumer) Start(ctx context.Context) error {
	if err := c.consume(ctx, produce.RevisionArchiveQueue, "Archive Revision", c.handleRevisionCreated); err != nil {
		return fmt.Errorf("failed to start revision archive consumer: %w", err)
	}
	if err := c.consume(ctx, produce.ObjectPurgeQueue, "Purge Object", c.handleObjectDeleted); err != nil {
		return fmt.Errorf("failed to start object purge consumer: %w", err)
	}
	return nil
}

func (c *ArchiveConsumer) consume(ctx context.Context, queue, name string, handle func(context.Context, amqp.Delivery)) error {
	msgs, err := c.channel.Consume(
		queue,
		"",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer on %s: %w", queue, err)
	}

	c.logger.InfoWithContextf(ctx, "[Archive Consumer] Started listening on queue: %s", queue)

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.logger.InfoWithContextf(ctx, "[Archive Consumer - %s] Shutting down...", name)
				return
			case msg, ok := <-msgs:
				if !ok {
					c.logger.WarningWithContextf(ctx, "[Archive Consumer - %s] Channel closed", name)
					return
				}
				handle(ctx, msg)
			}
		}
	}()

	return nil
}

func (c *ArchiveConsumer) handleRevisionCreated(ctx context.Context, msg amqp.Delivery) {
	var payload produce.RevisionCreatedMessage
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		c.logger.ErrorWithContextf(ctx, err, "[Archive Consumer - Archive Revision] Failed to unmarshal message: %v", err)
		_ = msg.Nack(false, false)
		return
	}

	c.retry(ctx, msg, "Archive Revision", func() error {
		return c.archiveRevision(ctx, payload)
	})
}

func (c *ArchiveConsumer) handleObjectDeleted(ctx context.Context, msg amqp.Delivery) {
	var payload produce.ObjectDeletedMessage
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		c.logger.ErrorWithContextf(ctx, err, "[Archive Consumer - Purge Object] Failed to unmarshal message: %v", err)
		_ = msg.Nack(false, false)
		return
	}

	prefix := infra.RevisionArchivePrefix(payload.BucketName, payload.ObjectName)
	c.retry(ctx, msg, "Purge Object", func() error {
		return c.store.DeleteObjectsWithPrefix(ctx, prefix)
	})
}

// retry acks on success and requeues once every attempt has failed. A revision
// that no longer exists is acked since its object was deleted meanwhile.
func (c *ArchiveConsumer) retry(ctx context.Context, msg amqp.Delivery, name string, job func() error) {
	var err error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		err = job()
		if err == nil {
			_ = msg.Ack(false)
			return
		}
		if errors.Is(err, repository.ErrNotFound) {
			c.logger.WarningWithContextf(ctx, "[Archive Consumer - %s] Skipping message: %v", name, err)
			_ = msg.Ack(false)
			return
		}

		c.logger.ErrorWithContextf(ctx, err, "[Archive Consumer - %s] Attempt %d/%d failed: %v", name, attempt, c.maxRetries, err)
		if attempt < c.maxRetries {
			time.Sleep(time.Duration(attempt) * c.backoff)
		}
	}

	c.logger.ErrorWithContextf(ctx, err, "[Archive Consumer - %s] Failed after %d attempts, requeueing message", name, c.maxRetries)
	_ = msg.Nack(false, true)
}

func (c *ArchiveConsumer) archiveRevision(ctx context.Context, payload produce.RevisionCreatedMessage) error {
	revision, err := c.revisions.Get(ctx, payload.BucketID, payload.ObjectName, payload.CommitID)
	if err != nil {
		return err
	}

	payloadHash := utils.HashSHA256(revision.RawObject)
	stringToSign := utils.BuildArchiveStringToSign(payload.BucketName, revision.Name, revision.CommitID, payloadHash)
	metadata := map[string]string{
		MetadataPayloadHash: payloadHash,
		MetadataSignature:   utils.ComputeHMACSHA256(c.signingKey, stringToSign),
		MetadataCommitID:    strconv.FormatInt(revision.CommitID, 10),
		MetadataUsername:    revision.Username,
	}

	key := infra.RevisionArchiveKey(payload.BucketName, revision.Name, revision.CommitID)
	if err := c.store.PutRevisionArchive(ctx, key, revision.ContentType, revision.RawObject, metadata); err != nil {
		return err
	}

	c.logger.InfoWithContextf(ctx, "[Archive Consumer - Archive Revision] Archived %s (%d bytes)", key, len(revision.RawObject))
	return nil
}
