package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tnqbao/gau-catalog-service/entity"
	"github.com/tnqbao/gau-catalog-service/infra"
	"github.com/tnqbao/gau-catalog-service/infra/produce"
	"github.com/tnqbao/gau-catalog-service/repository"
	"github.com/tnqbao/gau-catalog-service/utils"
)

type ackRecorder struct {
	acks     int
	nacks    int
	requeued bool
}

func (a *ackRecorder) Ack(uint64, bool) error {
	a.acks++
	return nil
}

func (a *ackRecorder) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacks++
	a.requeued = requeue
	return nil
}

func (a *ackRecorder) Reject(_ uint64, requeue bool) error {
	return a.Nack(0, false, requeue)
}

type fakeRevisions struct {
	revision *entity.Revision
	err      error
}

func (f *fakeRevisions) Get(_ context.Context, bucketID int64, objectName string, commitID int64) (*entity.Revision, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.revision.BucketID != bucketID || f.revision.Name != objectName || f.revision.CommitID != commitID {
		return nil, repository.ErrNotFound
	}
	return f.revision, nil
}

type putCall struct {
	key         string
	contentType string
	payload     []byte
	metadata    map[string]string
}

type fakeStore struct {
	puts      []putCall
	prefixes  []string
	failures  int
	failError error
}

func (f *fakeStore) fail() error {
	if f.failures > 0 {
		f.failures--
		return f.failError
	}
	return nil
}

func (f *fakeStore) PutRevisionArchive(_ context.Context, key, contentType string, payload []byte, metadata map[string]string) error {
	if err := f.fail(); err != nil {
		return err
	}
	f.puts = append(f.puts, putCall{key: key, contentType: contentType, payload: payload, metadata: metadata})
	return nil
}

func (f *fakeStore) DeleteObjectsWithPrefix(_ context.Context, prefix string) error {
	if err := f.fail(); err != nil {
		return err
	}
	f.prefixes = append(f.prefixes, prefix)
	return nil
}

func newTestConsumer(revisions RevisionReader, store ArchiveStore) *ArchiveConsumer {
	logger := infra.NewLoggerClient(slog.New(slog.NewTextHandler(io.Discard, nil)))
	consumer := newArchiveConsumer(nil, logger, revisions, store, "signing-key")
	consumer.backoff = 0
	return consumer
}

func delivery(t *testing.T, ack *ackRecorder, payload interface{}) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return amqp.Delivery{Acknowledger: ack, Body: body}
}

func TestHandleRevisionCreatedArchivesSignedPayload(t *testing.T) {
	revision := &entity.Revision{
		CommitID:    42,
		BucketID:    7,
		Name:        "etl job",
		ContentType: "application/xml",
		Username:    "alice",
		RawObject:   []byte("<job/>"),
	}
	store := &fakeStore{}
	consumer := newTestConsumer(&fakeRevisions{revision: revision}, store)
	ack := &ackRecorder{}

	consumer.handleRevisionCreated(context.Background(), delivery(t, ack, produce.RevisionCreatedMessage{
		BucketID: 7, BucketName: "designs", ObjectName: "etl job", CommitID: 42,
	}))

	assert.Equal(t, 1, ack.acks)
	require.Len(t, store.puts, 1)
	put := store.puts[0]
	assert.Equal(t, "designs/etl%20job/42", put.key)
	assert.Equal(t, "application/xml", put.contentType)
	assert.Equal(t, []byte("<job/>"), put.payload)

	hash := utils.HashSHA256([]byte("<job/>"))
	assert.Equal(t, hash, put.metadata[MetadataPayloadHash])
	assert.Equal(t, "42", put.metadata[MetadataCommitID])
	assert.Equal(t, "alice", put.metadata[MetadataUsername])
	assert.Equal(t,
		utils.ComputeHMACSHA256("signing-key", utils.BuildArchiveStringToSign("designs", "etl job", 42, hash)),
		put.metadata[MetadataSignature])
}

func TestHandleRevisionCreatedAcksMissingRevision(t *testing.T) {
	store := &fakeStore{}
	consumer := newTestConsumer(&fakeRevisions{err: repository.ErrNotFound}, store)
	ack := &ackRecorder{}

	consumer.handleRevisionCreated(context.Background(), delivery(t, ack, produce.RevisionCreatedMessage{
		BucketID: 1, BucketName: "designs", ObjectName: "gone", CommitID: 3,
	}))

	assert.Equal(t, 1, ack.acks)
	assert.Zero(t, ack.nacks)
	assert.Empty(t, store.puts)
}

func TestHandleRevisionCreatedDropsMalformedMessage(t *testing.T) {
	consumer := newTestConsumer(&fakeRevisions{}, &fakeStore{})
	ack := &ackRecorder{}

	consumer.handleRevisionCreated(context.Background(), amqp.Delivery{Acknowledger: ack, Body: []byte("{")})

	assert.Equal(t, 1, ack.nacks)
	assert.False(t, ack.requeued)
}

func TestRetryRecoversFromTransientFailures(t *testing.T) {
	store := &fakeStore{failures: 2, failError: errors.New("minio unavailable")}
	consumer := newTestConsumer(&fakeRevisions{}, store)
	ack := &ackRecorder{}

	consumer.handleObjectDeleted(context.Background(), delivery(t, ack, produce.ObjectDeletedMessage{
		BucketName: "designs", ObjectName: "etl",
	}))

	assert.Equal(t, 1, ack.acks)
	assert.Equal(t, []string{"designs/etl/"}, store.prefixes)
}

func TestRetryRequeuesAfterLastAttempt(t *testing.T) {
	store := &fakeStore{failures: 3, failError: errors.New("minio unavailable")}
	consumer := newTestConsumer(&fakeRevisions{}, store)
	ack := &ackRecorder{}

	consumer.handleObjectDeleted(context.Background(), delivery(t, ack, produce.ObjectDeletedMessage{
		BucketName: "designs", ObjectName: "etl",
	}))

	assert.Zero(t, ack.acks)
	assert.Equal(t, 1, ack.nacks)
	assert.True(t, ack.requeued)
	assert.Empty(t, store.prefixes)
}
