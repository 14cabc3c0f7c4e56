package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tnqbao/gau-catalog-service/entity"
)

func TestRevisionRepository_CreateObject(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	bucket := mustCreateBucket(t, repo, "b", "alice")

	first := mustCreateObject(t, repo, bucket.ID, "report", "Workflow/standard", "application/xml")
	assert.NotZero(t, first.CommitID)
	assert.Equal(t, "initial", first.CommitMessage)

	object, err := repo.ObjectRepo.FindByBucketAndName(ctx, bucket.ID, "report")
	require.NoError(t, err)
	require.NotNil(t, object.LastCommitID)
	assert.Equal(t, first.CommitID, *object.LastCommitID)
	assert.Equal(t, "workflow/standard", object.KindLower)

	_, err = repo.RevisionRepo.CreateObject(ctx, CreateRevisionInput{
		BucketID: bucket.ID, ObjectName: "report", Kind: "x", CommitMessage: "dup",
	})
	require.ErrorIs(t, err, ErrConflict)
}

func TestRevisionRepository_CreateRejectsInvalidInput(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	bucket := mustCreateBucket(t, repo, "b", "alice")

	_, err := repo.RevisionRepo.CreateObject(ctx, CreateRevisionInput{BucketID: bucket.ID, ObjectName: "o", CommitMessage: "m"})
	require.ErrorIs(t, err, ErrInvalidInput, "kind is mandatory on creation")

	_, err = repo.RevisionRepo.Create(ctx, CreateRevisionInput{BucketID: bucket.ID, ObjectName: "o"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = repo.RevisionRepo.Create(ctx, CreateRevisionInput{BucketID: bucket.ID, ObjectName: "missing", CommitMessage: "m"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRevisionRepository_HistoryAndRestore(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	bucket := mustCreateBucket(t, repo, "b", "alice")

	c1, err := repo.RevisionRepo.CreateObject(ctx, CreateRevisionInput{
		BucketID:      bucket.ID,
		ObjectName:    "wf",
		Kind:          "Workflow",
		ContentType:   "application/xml",
		CommitMessage: "first",
		Username:      "alice",
		ProjectName:   "demo",
		RawObject:     []byte("<v1/>"),
		Tags:          []entity.KeyValue{{Label: entity.TagLabelGeneral, Key: entity.TagKeyProjectName, Value: "demo"}},
	})
	require.NoError(t, err)

	c2, err := repo.RevisionRepo.Create(ctx, CreateRevisionInput{
		BucketID:      bucket.ID,
		ObjectName:    "wf",
		CommitMessage: "second",
		Username:      "bob",
		RawObject:     []byte("<v2/>"),
	})
	require.NoError(t, err)
	assert.Greater(t, c2.CommitID, c1.CommitID)
	assert.Equal(t, "Workflow", c2.Kind, "kind is inherited from the object")
	assert.Equal(t, "application/xml", c2.ContentType)

	c3, err := repo.RevisionRepo.Restore(ctx, bucket.ID, "wf", c1.CommitID, "carol")
	require.NoError(t, err)
	assert.Greater(t, c3.CommitID, c2.CommitID)
	assert.Equal(t, fmt.Sprintf("Restored from revision %d", c1.CommitID), c3.CommitMessage)
	assert.Equal(t, "carol", c3.Username)
	assert.Equal(t, []byte("<v1/>"), c3.RawObject)
	assert.Equal(t, "demo", c3.ProjectName)
	assert.Equal(t, []entity.KeyValue(c1.Tags), []entity.KeyValue(c3.Tags))

	target, err := repo.RevisionRepo.Get(ctx, bucket.ID, "wf", c1.CommitID)
	require.NoError(t, err)
	assert.Equal(t, "first", target.CommitMessage, "restore never mutates the target")
	assert.Equal(t, []byte("<v1/>"), target.RawObject)

	history, err := repo.RevisionRepo.List(ctx, bucket.ID, "wf")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, []int64{c3.CommitID, c2.CommitID, c1.CommitID},
		[]int64{history[0].CommitID, history[1].CommitID, history[2].CommitID})
	assert.Empty(t, history[0].RawObject, "listing does not load payloads")

	object, err := repo.ObjectRepo.FindByBucketAndName(ctx, bucket.ID, "wf")
	require.NoError(t, err)
	latest, err := repo.RevisionRepo.GetMostRecent(ctx, bucket.ID, object.ID)
	require.NoError(t, err)
	assert.Equal(t, c3.CommitID, latest.CommitID)
	assert.Equal(t, []byte("<v1/>"), latest.RawObject)

	byName, err := repo.RevisionRepo.GetMostRecentByName(ctx, bucket.ID, "wf")
	require.NoError(t, err)
	assert.Equal(t, c3.CommitID, byName.CommitID)
}

func TestRevisionRepository_ListOrdersByCommitDate(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	bucket := mustCreateBucket(t, repo, "b", "alice")

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	dates := []time.Time{base, base.Add(time.Hour), base.Add(time.Hour)}
	step := 0
	repo.RevisionRepo.now = func() time.Time {
		d := dates[step]
		step++
		return d
	}

	c1 := mustCreateObject(t, repo, bucket.ID, "o", "k", "text/plain")
	c2, err := repo.RevisionRepo.Create(ctx, CreateRevisionInput{BucketID: bucket.ID, ObjectName: "o", CommitMessage: "2"})
	require.NoError(t, err)
	c3, err := repo.RevisionRepo.Create(ctx, CreateRevisionInput{BucketID: bucket.ID, ObjectName: "o", CommitMessage: "3"})
	require.NoError(t, err)

	history, err := repo.RevisionRepo.List(ctx, bucket.ID, "o")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, c3.CommitID, history[0].CommitID, "same date ties break on commit id")
	assert.Equal(t, c2.CommitID, history[1].CommitID)
	assert.Equal(t, c1.CommitID, history[2].CommitID)
}

func TestRevisionRepository_NotFound(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	bucket := mustCreateBucket(t, repo, "b", "alice")
	other := mustCreateBucket(t, repo, "other", "alice")
	c1 := mustCreateObject(t, repo, bucket.ID, "o", "k", "")

	_, err := repo.RevisionRepo.Get(ctx, bucket.ID, "o", c1.CommitID+100)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = repo.RevisionRepo.Get(ctx, bucket.ID, "missing", c1.CommitID)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = repo.RevisionRepo.Get(ctx, other.ID, "o", c1.CommitID)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = repo.RevisionRepo.List(ctx, bucket.ID, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = repo.RevisionRepo.Restore(ctx, bucket.ID, "o", c1.CommitID+100, "alice")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = repo.RevisionRepo.GetMostRecentByName(ctx, other.ID, "o")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRevisionRepository_RestoreTargetsOnlyOwnObject(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	bucket := mustCreateBucket(t, repo, "b", "alice")
	a := mustCreateObject(t, repo, bucket.ID, "a", "k", "")
	mustCreateObject(t, repo, bucket.ID, "b", "k", "")

	_, err := repo.RevisionRepo.Restore(ctx, bucket.ID, "b", a.CommitID, "alice")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRevisionRepository_ListMostRecentInBucket(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	bucket := mustCreateBucket(t, repo, "b", "alice")

	mustCreateObject(t, repo, bucket.ID, "zeta", "Workflow", "application/xml")
	mustCreateObject(t, repo, bucket.ID, "alpha", "Script", "text/plain")
	latest, err := repo.RevisionRepo.Create(ctx, CreateRevisionInput{BucketID: bucket.ID, ObjectName: "alpha", CommitMessage: "v2"})
	require.NoError(t, err)

	revisions, err := repo.RevisionRepo.ListMostRecentInBucket(ctx, bucket.ID, nil, 0, 0)
	require.NoError(t, err)
	require.Len(t, revisions, 2)
	assert.Equal(t, "alpha", revisions[0].Name)
	assert.Equal(t, latest.CommitID, revisions[0].CommitID)
	assert.Equal(t, "zeta", revisions[1].Name)

	revisions, err = repo.RevisionRepo.ListMostRecentInBucket(ctx, bucket.ID, []string{"work"}, 0, 0)
	require.NoError(t, err)
	require.Len(t, revisions, 1)
	assert.Equal(t, "zeta", revisions[0].Name)

	revisions, err = repo.RevisionRepo.ListMostRecentInBucket(ctx, bucket.ID, nil, 1, 1)
	require.NoError(t, err)
	require.Len(t, revisions, 1)
	assert.Equal(t, "zeta", revisions[0].Name)
}

func TestRevisionRepository_PointerNeverMovesBackwards(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	bucket := mustCreateBucket(t, repo, "b", "alice")
	first := mustCreateObject(t, repo, bucket.ID, "o", "k", "")

	object, err := repo.ObjectRepo.FindByBucketAndName(ctx, bucket.ID, "o")
	require.NoError(t, err)

	// Simulate a pointer that is ahead of any commit id the sequence can hand out next.
	require.NoError(t, db.Model(object).UpdateColumn("last_commit_id", first.CommitID+1000).Error)

	_, err = repo.RevisionRepo.Create(ctx, CreateRevisionInput{BucketID: bucket.ID, ObjectName: "o", CommitMessage: "late"})
	require.ErrorIs(t, err, ErrConflict)

	history, err := repo.RevisionRepo.List(ctx, bucket.ID, "o")
	require.NoError(t, err)
	assert.Len(t, history, 1, "the failed insert was rolled back")
}

func TestRevisionRepository_ConcurrentCreatesAreMonotonic(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	ctx := context.Background()
	bucket := mustCreateBucket(t, repo, "b", "alice")
	mustCreateObject(t, repo, bucket.ID, "o", "k", "")

	const writers = 8
	ids := make(chan int64, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			revision, err := repo.RevisionRepo.Create(ctx, CreateRevisionInput{
				BucketID:      bucket.ID,
				ObjectName:    "o",
				CommitMessage: fmt.Sprintf("writer %d", i),
			})
			if assert.NoError(t, err) {
				ids <- revision.CommitID
			}
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	var highest int64
	for id := range ids {
		assert.False(t, seen[id], "commit id %d handed out twice", id)
		seen[id] = true
		if id > highest {
			highest = id
		}
	}
	assert.Len(t, seen, writers)

	latest, err := repo.RevisionRepo.GetMostRecentByName(ctx, bucket.ID, "o")
	require.NoError(t, err)
	assert.Equal(t, highest, latest.CommitID)
}
