package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/storesync/internal/database"
	"github.com/allisson/storesync/internal/outbox/domain"
	"github.com/allisson/storesync/internal/testutil"
)

var baseTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestItem(storeID uuid.UUID, createdAt time.Time) *domain.OutboxItem {
	return &domain.OutboxItem{
		ID:            uuid.Must(uuid.NewV7()),
		StoreID:       storeID,
		EntityType:    domain.EntityTypePack,
		EntityID:      uuid.New(),
		Operation:     domain.OperationActivate,
		Payload:       json.RawMessage(`{"pack_number":"0001"}`),
		Priority:      domain.PriorityNormal,
		SyncDirection: domain.SyncDirectionPush,
		MaxAttempts:   domain.DefaultMaxAttempts,
		APIEndpoint:   domain.APIEndpoint(domain.EntityTypePack, domain.OperationActivate),
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
}

func setupRepo(t *testing.T) *OutboxItemRepository {
	t.Helper()
	db := testutil.SetupSQLiteDB(t)
	return NewOutboxItemRepository(db, database.DialectSQLite)
}

func TestOutboxItemRepository_CreateAndGet(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	storeID := uuid.New()

	item := newTestItem(storeID, baseTime)
	require.NoError(t, repo.Create(ctx, item))

	got, err := repo.Get(ctx, storeID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)
	assert.Equal(t, item.EntityID, got.EntityID)
	assert.Equal(t, domain.EntityTypePack, got.EntityType)
	assert.Equal(t, domain.OperationActivate, got.Operation)
	assert.JSONEq(t, `{"pack_number":"0001"}`, string(got.Payload))
	assert.Equal(t, "packs/activate", got.APIEndpoint)
	assert.False(t, got.Synced)
	assert.False(t, got.DeadLettered)
	assert.Nil(t, got.ErrorCategory)
	assert.Nil(t, got.HTTPStatus)
	assert.True(t, baseTime.Equal(got.CreatedAt))
}

func TestOutboxItemRepository_Get_OtherStore(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	item := newTestItem(uuid.New(), baseTime)
	require.NoError(t, repo.Create(ctx, item))

	_, err := repo.Get(ctx, uuid.New(), item.ID)
	assert.ErrorIs(t, err, domain.ErrOutboxItemNotFound)
}

func TestOutboxItemRepository_ListRetryable(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	storeID := uuid.New()
	now := baseTime.Add(time.Hour)

	first := newTestItem(storeID, baseTime)
	second := newTestItem(storeID, baseTime.Add(time.Minute))
	urgent := newTestItem(storeID, baseTime.Add(2*time.Minute))
	urgent.Priority = 10

	waiting := newTestItem(storeID, baseTime)
	future := now.Add(time.Minute)
	waiting.RetryAfter = &future

	due := newTestItem(storeID, baseTime.Add(3*time.Minute))
	past := now.Add(-time.Minute)
	due.RetryAfter = &past

	synced := newTestItem(storeID, baseTime)
	synced.MarkSynced(&domain.SendResult{Success: true, HTTPStatus: 200}, baseTime)

	dead := newTestItem(storeID, baseTime)
	dead.DeadLetter(domain.DeadLetterReasonManual, baseTime)

	foreign := newTestItem(uuid.New(), baseTime)

	for _, item := range []*domain.OutboxItem{first, second, urgent, waiting, due, synced, dead, foreign} {
		require.NoError(t, repo.Create(ctx, item))
	}

	items, err := repo.ListRetryable(ctx, storeID, now, 10)
	require.NoError(t, err)
	require.Len(t, items, 4)
	assert.Equal(t, urgent.ID, items[0].ID)
	assert.Equal(t, first.ID, items[1].ID)
	assert.Equal(t, second.ID, items[2].ID)
	assert.Equal(t, due.ID, items[3].ID)

	limited, err := repo.ListRetryable(ctx, storeID, now, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestOutboxItemRepository_ListRetryable_SameCreatedAt(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	storeID := uuid.New()

	a := newTestItem(storeID, baseTime)
	b := newTestItem(storeID, baseTime)
	require.NoError(t, repo.Create(ctx, b))
	require.NoError(t, repo.Create(ctx, a))

	items, err := repo.ListRetryable(ctx, storeID, baseTime, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, a.ID, items[0].ID)
	assert.Equal(t, b.ID, items[1].ID)
}

func TestOutboxItemRepository_Update(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	storeID := uuid.New()

	item := newTestItem(storeID, baseTime)
	require.NoError(t, repo.Create(ctx, item))

	category := domain.ErrorCategoryPermanent
	lastErr := "remote responded with status 400 Bad Request"
	status := 400
	body := `{"error":"bad"}`
	item.SyncAttempts = 1
	item.ErrorCategory = &category
	item.LastSyncError = &lastErr
	item.HTTPStatus = &status
	item.ResponseBody = &body
	item.DeadLetter(domain.DeadLetterReasonPermanentError, baseTime.Add(time.Minute))
	require.NoError(t, repo.Update(ctx, item))

	got, err := repo.Get(ctx, storeID, item.ID)
	require.NoError(t, err)
	assert.True(t, got.DeadLettered)
	assert.Equal(t, 1, got.SyncAttempts)
	require.NotNil(t, got.DeadLetterReason)
	assert.Equal(t, domain.DeadLetterReasonPermanentError, *got.DeadLetterReason)
	require.NotNil(t, got.ErrorCategory)
	assert.Equal(t, domain.ErrorCategoryPermanent, *got.ErrorCategory)
	require.NotNil(t, got.HTTPStatus)
	assert.Equal(t, 400, *got.HTTPStatus)
	assert.Equal(t, body, *got.ResponseBody)
	assert.Equal(t, domain.OutboxStatusDeadLettered, got.Status())

	t.Run("unknown item", func(t *testing.T) {
		missing := newTestItem(storeID, baseTime)
		assert.ErrorIs(t, repo.Update(ctx, missing), domain.ErrOutboxItemNotFound)
	})
}

func TestOutboxItemRepository_CountByStatus(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	storeID := uuid.New()
	now := baseTime.Add(time.Hour)

	pending := newTestItem(storeID, baseTime)

	failed := newTestItem(storeID, baseTime)
	failed.SyncAttempts = 2

	waiting := newTestItem(storeID, baseTime)
	waiting.SyncAttempts = 1
	future := now.Add(time.Hour)
	waiting.RetryAfter = &future

	synced := newTestItem(storeID, baseTime)
	synced.MarkSynced(nil, baseTime)

	dead := newTestItem(storeID, baseTime)
	dead.DeadLetter(domain.DeadLetterReasonMaxAttemptsExceeded, baseTime)

	for _, item := range []*domain.OutboxItem{pending, failed, waiting, synced, dead, newTestItem(uuid.New(), baseTime)} {
		require.NoError(t, repo.Create(ctx, item))
	}

	counts, err := repo.CountByStatus(ctx, storeID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts.Pending)
	assert.Equal(t, int64(1), counts.RetryWaiting)
	assert.Equal(t, int64(2), counts.Failed)
	assert.Equal(t, int64(1), counts.DeadLettered)
	assert.Equal(t, int64(1), counts.Synced)

	empty, err := repo.CountByStatus(ctx, uuid.New(), now)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCounts{}, *empty)
}

func TestOutboxItemRepository_DeadLetterQueries(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	storeID := uuid.New()

	transient := domain.ErrorCategoryTransient
	permanent := domain.ErrorCategoryPermanent

	older := newTestItem(storeID, baseTime)
	older.ErrorCategory = &transient
	older.DeadLetter(domain.DeadLetterReasonMaxAttemptsExceeded, baseTime.Add(time.Minute))

	newer := newTestItem(storeID, baseTime)
	newer.EntityType = domain.EntityTypeDayClose
	newer.ErrorCategory = &permanent
	newer.DeadLetter(domain.DeadLetterReasonPermanentError, baseTime.Add(2*time.Minute))

	manual := newTestItem(storeID, baseTime)
	manual.DeadLetter(domain.DeadLetterReasonManual, baseTime.Add(3*time.Minute))

	live := newTestItem(storeID, baseTime)

	for _, item := range []*domain.OutboxItem{older, newer, manual, live} {
		require.NoError(t, repo.Create(ctx, item))
	}

	t.Run("list newest first", func(t *testing.T) {
		items, err := repo.ListDeadLettered(ctx, storeID, domain.DeadLetterFilter{}, 0, 10)
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, manual.ID, items[0].ID)
		assert.Equal(t, newer.ID, items[1].ID)
		assert.Equal(t, older.ID, items[2].ID)
	})

	t.Run("list with filters", func(t *testing.T) {
		entityType := domain.EntityTypeDayClose
		items, err := repo.ListDeadLettered(ctx, storeID, domain.DeadLetterFilter{EntityType: &entityType}, 0, 10)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, newer.ID, items[0].ID)

		reason := domain.DeadLetterReasonMaxAttemptsExceeded
		items, err = repo.ListDeadLettered(ctx, storeID, domain.DeadLetterFilter{Reason: &reason}, 0, 10)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, older.ID, items[0].ID)

		items, err = repo.ListDeadLettered(ctx, storeID, domain.DeadLetterFilter{ErrorCategory: &permanent}, 0, 10)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, newer.ID, items[0].ID)
	})

	t.Run("list paginates", func(t *testing.T) {
		items, err := repo.ListDeadLettered(ctx, storeID, domain.DeadLetterFilter{}, 1, 1)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, newer.ID, items[0].ID)
	})

	t.Run("stats", func(t *testing.T) {
		stats, err := repo.DeadLetterStats(ctx, storeID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), stats.Total)
		assert.Equal(t, int64(1), stats.ByReason[domain.DeadLetterReasonManual])
		assert.Equal(t, int64(1), stats.ByReason[domain.DeadLetterReasonPermanentError])
		assert.Equal(t, int64(2), stats.ByEntityType[domain.EntityTypePack])
		assert.Equal(t, int64(1), stats.ByEntityType[domain.EntityTypeDayClose])
		assert.Equal(t, int64(1), stats.ByErrorCategory[domain.ErrorCategoryTransient])
		require.NotNil(t, stats.OldestAt)
		require.NotNil(t, stats.NewestAt)
		assert.True(t, baseTime.Add(time.Minute).Equal(*stats.OldestAt))
		assert.True(t, baseTime.Add(3*time.Minute).Equal(*stats.NewestAt))
	})

	t.Run("stats of another store", func(t *testing.T) {
		stats, err := repo.DeadLetterStats(ctx, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, int64(0), stats.Total)
		assert.Nil(t, stats.OldestAt)
	})
}

func TestOutboxItemRepository_FindLatestForEntity(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	storeID := uuid.New()
	entityID := uuid.New()

	first := newTestItem(storeID, baseTime)
	first.EntityType = domain.EntityTypeDayClose
	first.Operation = domain.OperationCreate
	first.EntityID = entityID

	second := newTestItem(storeID, baseTime.Add(time.Minute))
	second.EntityType = domain.EntityTypeDayClose
	second.Operation = domain.OperationCreate
	second.EntityID = entityID

	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	got, err := repo.FindLatestForEntity(ctx, storeID, domain.EntityTypeDayClose, entityID, domain.OperationCreate)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)

	_, err = repo.FindLatestForEntity(ctx, storeID, domain.EntityTypePack, entityID, domain.OperationCreate)
	assert.ErrorIs(t, err, domain.ErrOutboxItemNotFound)
}

func TestOutboxItemRepository_StoreDiscovery(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	now := baseTime.Add(time.Hour)

	storeA := uuid.New()
	storeB := uuid.New()
	storeC := uuid.New()

	require.NoError(t, repo.Create(ctx, newTestItem(storeA, baseTime)))
	require.NoError(t, repo.Create(ctx, newTestItem(storeA, baseTime)))
	require.NoError(t, repo.Create(ctx, newTestItem(storeB, baseTime)))

	synced := newTestItem(storeC, baseTime)
	synced.MarkSynced(nil, baseTime)
	require.NoError(t, repo.Create(ctx, synced))

	stores, err := repo.ListStoresWithRetryable(ctx, now, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{storeA, storeB}, stores)

	withSynced, err := repo.ListStoresWithSynced(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{storeC}, withSynced)
}

func TestOutboxItemRepository_DeleteAndPurge(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	storeID := uuid.New()

	old := newTestItem(storeID, baseTime)
	old.MarkSynced(nil, baseTime)
	recent := newTestItem(storeID, baseTime)
	recent.MarkSynced(nil, baseTime.Add(48*time.Hour))
	pending := newTestItem(storeID, baseTime)

	for _, item := range []*domain.OutboxItem{old, recent, pending} {
		require.NoError(t, repo.Create(ctx, item))
	}

	purged, err := repo.PurgeSynced(ctx, storeID, baseTime.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	_, err = repo.Get(ctx, storeID, old.ID)
	assert.ErrorIs(t, err, domain.ErrOutboxItemNotFound)

	require.NoError(t, repo.Delete(ctx, storeID, pending.ID))
	assert.ErrorIs(t, repo.Delete(ctx, storeID, pending.ID), domain.ErrOutboxItemNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, uuid.New(), recent.ID), domain.ErrOutboxItemNotFound)
}

func TestOutboxItemRepository_CreateInTransaction(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	repo := NewOutboxItemRepository(db, database.DialectSQLite)
	txManager := database.NewTxManager(db)
	ctx := context.Background()
	storeID := uuid.New()

	item := newTestItem(storeID, baseTime)
	err := txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := repo.Create(ctx, item); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	_, err = repo.Get(ctx, storeID, item.ID)
	assert.ErrorIs(t, err, domain.ErrOutboxItemNotFound)
}
