package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/storesync/internal/database"
	"github.com/allisson/storesync/internal/inventory/domain"
	"github.com/allisson/storesync/internal/testutil"
)

type fixture struct {
	packs   *PackRepository
	games   *GameRepository
	storeID uuid.UUID
	game    *domain.Game
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db := testutil.SetupSQLiteDB(t)
	f := &fixture{
		packs:   NewPackRepository(db, database.DialectSQLite),
		games:   NewGameRepository(db, database.DialectSQLite),
		storeID: uuid.New(),
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	f.game = &domain.Game{
		ID:             uuid.Must(uuid.NewV7()),
		StoreID:        f.storeID,
		Code:           "LUCKY7",
		Name:           "Lucky 7s",
		Price:          decimal.RequireFromString("2.00"),
		TicketsPerPack: 150,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, f.games.Create(context.Background(), f.game))
	return f
}

func (f *fixture) newPack(number string) *domain.Pack {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Pack{
		ID:            uuid.Must(uuid.NewV7()),
		StoreID:       f.storeID,
		GameID:        f.game.ID,
		PackNumber:    number,
		Status:        domain.PackStatusReceived,
		OpeningSerial: "000",
		SalesAmount:   decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestGameRepository(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	got, err := f.games.Get(ctx, f.storeID, f.game.ID)
	require.NoError(t, err)
	assert.Equal(t, "LUCKY7", got.Code)
	assert.True(t, decimal.NewFromInt(2).Equal(got.Price))
	assert.Equal(t, 150, got.TicketsPerPack)

	_, err = f.games.Get(ctx, uuid.New(), f.game.ID)
	assert.ErrorIs(t, err, domain.ErrGameNotFound)
}

func TestPackRepository_CreateGetUpdate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	pack := f.newPack("0001")
	require.NoError(t, f.packs.Create(ctx, pack))

	got, err := f.packs.Get(ctx, f.storeID, pack.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PackStatusReceived, got.Status)
	assert.Nil(t, got.CurrentBinID)
	assert.Nil(t, got.ClosingSerial)
	assert.Nil(t, got.DepletionReason)
	assert.True(t, got.SalesAmount.IsZero())

	byNumber, err := f.packs.GetByNumber(ctx, f.storeID, f.game.ID, "0001")
	require.NoError(t, err)
	assert.Equal(t, pack.ID, byNumber.ID)

	now := time.Now().UTC().Truncate(time.Microsecond)
	shift := uuid.New()
	actor := domain.Actor{UserID: uuid.New(), ShiftID: &shift}
	require.NoError(t, got.Activate(uuid.New(), actor, now))
	require.NoError(t, got.Deplete("149", 150, decimal.NewFromInt(300), domain.DepletionReasonAutoReplaced, actor, now))
	require.NoError(t, f.packs.Update(ctx, got))

	updated, err := f.packs.Get(ctx, f.storeID, pack.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PackStatusDepleted, updated.Status)
	assert.Equal(t, "149", *updated.ClosingSerial)
	assert.Equal(t, 150, updated.TicketsSoldCount)
	assert.True(t, decimal.NewFromInt(300).Equal(updated.SalesAmount))
	assert.Equal(t, domain.DepletionReasonAutoReplaced, *updated.DepletionReason)
	assert.Equal(t, actor.UserID, *updated.DepletedBy)
	assert.Equal(t, shift, *updated.DepletedShiftID)
	assert.True(t, now.Equal(*updated.DepletedAt))

	t.Run("not found", func(t *testing.T) {
		_, err := f.packs.Get(ctx, uuid.New(), pack.ID)
		assert.ErrorIs(t, err, domain.ErrPackNotFound)

		assert.ErrorIs(t, f.packs.Update(ctx, f.newPack("9999")), domain.ErrPackNotFound)
	})
}

func TestPackRepository_ListActiveInBin(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	bin := uuid.New()
	now := time.Now().UTC()
	actor := domain.Actor{UserID: uuid.New()}

	active := f.newPack("0001")
	require.NoError(t, active.Activate(bin, actor, now))
	require.NoError(t, f.packs.Create(ctx, active))

	elsewhere := f.newPack("0002")
	require.NoError(t, elsewhere.Activate(uuid.New(), actor, now))
	require.NoError(t, f.packs.Create(ctx, elsewhere))

	require.NoError(t, f.packs.Create(ctx, f.newPack("0003")))

	packs, err := f.packs.ListActiveInBin(ctx, f.storeID, bin)
	require.NoError(t, err)
	require.Len(t, packs, 1)
	assert.Equal(t, active.ID, packs[0].ID)

	other, err := f.packs.ListActiveInBin(ctx, uuid.New(), bin)
	require.NoError(t, err)
	assert.Empty(t, other)

	t.Run("second active pack in the bin is rejected", func(t *testing.T) {
		intruder := f.newPack("0004")
		require.NoError(t, intruder.Activate(bin, actor, now))
		assert.Error(t, f.packs.Create(ctx, intruder))
	})

	t.Run("list by status", func(t *testing.T) {
		received, err := f.packs.ListByStatus(ctx, f.storeID, domain.PackStatusReceived, 0, 10)
		require.NoError(t, err)
		require.Len(t, received, 1)
		assert.Equal(t, "0003", received[0].PackNumber)
	})
}
