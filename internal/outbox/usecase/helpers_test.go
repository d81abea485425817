package usecase

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/storesync/internal/database"
	"github.com/allisson/storesync/internal/outbox/domain"
	"github.com/allisson/storesync/internal/outbox/repository"
	"github.com/allisson/storesync/internal/testutil"
)

var testBackoff = domain.BackoffPolicy{Base: 2 * time.Second, Multiplier: 2, Max: 10 * time.Minute}

type testEnv struct {
	db        *sql.DB
	txManager database.TxManager
	repo      *repository.OutboxItemRepository
	store     *outboxStore
	dlq       *deadLetterUseCase
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupSQLiteDB(t)
	txManager := database.NewTxManager(db)
	repo := repository.NewOutboxItemRepository(db, database.DialectSQLite)

	return &testEnv{
		db:        db,
		txManager: txManager,
		repo:      repo,
		store:     NewOutboxStore(repo, 5, discardLogger()).(*outboxStore),
		dlq:       NewDeadLetterUseCase(txManager, repo, testBackoff, discardLogger()).(*deadLetterUseCase),
	}
}

func (e *testEnv) enqueue(t *testing.T, storeID uuid.UUID, priority int) *domain.OutboxItem {
	t.Helper()

	item, err := e.store.Enqueue(context.Background(), domain.EnqueueRequest{
		StoreID:    storeID,
		EntityType: domain.EntityTypePack,
		EntityID:   uuid.New(),
		Operation:  domain.OperationUpdate,
		Payload:    map[string]string{"status": "DEPLETED"},
		Priority:   priority,
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	return item
}

func (e *testEnv) reload(t *testing.T, item *domain.OutboxItem) *domain.OutboxItem {
	t.Helper()

	got, err := e.repo.Get(context.Background(), item.StoreID, item.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	return got
}

// fakeTransport answers every send with respond and records the delivery order.
type fakeTransport struct {
	mu      sync.Mutex
	sent    []uuid.UUID
	respond func(ctx context.Context, item *domain.OutboxItem) (*domain.SendResult, error)
}

func (f *fakeTransport) Send(ctx context.Context, item *domain.OutboxItem) (*domain.SendResult, error) {
	f.mu.Lock()
	f.sent = append(f.sent, item.ID)
	f.mu.Unlock()

	if f.respond == nil {
		return &domain.SendResult{Success: true, HTTPStatus: 200, Body: `{"ok":true}`}, nil
	}
	return f.respond(ctx, item)
}

func (f *fakeTransport) Sent() []uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uuid.UUID(nil), f.sent...)
}

func statusResponse(code int) func(context.Context, *domain.OutboxItem) (*domain.SendResult, error) {
	return func(context.Context, *domain.OutboxItem) (*domain.SendResult, error) {
		return &domain.SendResult{Success: code >= 200 && code < 300, HTTPStatus: code}, nil
	}
}
