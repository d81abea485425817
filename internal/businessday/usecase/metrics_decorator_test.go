package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/storesync/internal/businessday/domain"
	"github.com/allisson/storesync/internal/metrics"
	outboxDomain "github.com/allisson/storesync/internal/outbox/domain"
	"github.com/allisson/storesync/internal/session"
)

type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

var _ metrics.BusinessMetrics = (*mockBusinessMetrics)(nil)

// stubDayCloseUseCase returns err from every method.
type stubDayCloseUseCase struct {
	err error
}

func (s *stubDayCloseUseCase) CurrentDay(context.Context, uuid.UUID) (*domain.BusinessDay, error) {
	return &domain.BusinessDay{}, s.err
}

func (s *stubDayCloseUseCase) Get(context.Context, uuid.UUID, uuid.UUID) (*domain.BusinessDay, error) {
	return &domain.BusinessDay{}, s.err
}

func (s *stubDayCloseUseCase) PrepareClose(
	context.Context,
	session.Session,
	uuid.UUID,
	[]domain.ClosingInput,
) (*domain.ClosePreview, error) {
	return &domain.ClosePreview{}, s.err
}

func (s *stubDayCloseUseCase) CommitClose(context.Context, session.Session, uuid.UUID) (*domain.BusinessDay, error) {
	return &domain.BusinessDay{}, s.err
}

func (s *stubDayCloseUseCase) CancelClose(context.Context, session.Session, uuid.UUID) (*domain.BusinessDay, error) {
	return &domain.BusinessDay{}, s.err
}

func (s *stubDayCloseUseCase) RequeueForSync(
	context.Context,
	session.Session,
	uuid.UUID,
) (*outboxDomain.OutboxItem, error) {
	return &outboxDomain.OutboxItem{}, s.err
}

func (s *stubDayCloseUseCase) RecordActivation(context.Context, uuid.UUID) error {
	return s.err
}

func TestDayCloseMetricsDecorator(t *testing.T) {
	ctx := context.Background()
	sess := session.Session{StoreID: uuid.New(), UserID: uuid.New()}
	dayID := uuid.New()

	calls := []struct {
		operation string
		call      func(uc DayCloseUseCase) error
	}{
		{"current_day", func(uc DayCloseUseCase) error {
			_, err := uc.CurrentDay(ctx, sess.StoreID)
			return err
		}},
		{"day_get", func(uc DayCloseUseCase) error {
			_, err := uc.Get(ctx, sess.StoreID, dayID)
			return err
		}},
		{"prepare_close", func(uc DayCloseUseCase) error {
			_, err := uc.PrepareClose(ctx, sess, dayID, nil)
			return err
		}},
		{"commit_close", func(uc DayCloseUseCase) error {
			_, err := uc.CommitClose(ctx, sess, dayID)
			return err
		}},
		{"cancel_close", func(uc DayCloseUseCase) error {
			_, err := uc.CancelClose(ctx, sess, dayID)
			return err
		}},
		{"requeue_sync", func(uc DayCloseUseCase) error {
			_, err := uc.RequeueForSync(ctx, sess, dayID)
			return err
		}},
		{"record_activation", func(uc DayCloseUseCase) error {
			return uc.RecordActivation(ctx, sess.StoreID)
		}},
	}

	for _, c := range calls {
		for _, failing := range []bool{false, true} {
			status := "success"
			var wantErr error
			if failing {
				status = "error"
				wantErr = errors.New("boom")
			}

			t.Run(c.operation+"_"+status, func(t *testing.T) {
				mockMetrics := &mockBusinessMetrics{}
				mockMetrics.On("RecordOperation", ctx, "businessday", c.operation, status).Return().Once()
				mockMetrics.On("RecordDuration", ctx, "businessday", c.operation, mock.AnythingOfType("time.Duration"), status).
					Return().
					Once()

				decorator := NewDayCloseUseCaseWithMetrics(&stubDayCloseUseCase{err: wantErr}, mockMetrics)

				err := c.call(decorator)
				if failing {
					assert.ErrorIs(t, err, wantErr)
				} else {
					assert.NoError(t, err)
				}
				mockMetrics.AssertExpectations(t)
			})
		}
	}
}
