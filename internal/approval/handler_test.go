package approval

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bagdasarian/campus-teams/internal/broker"
	"github.com/bagdasarian/campus-teams/internal/domain"
	"github.com/bagdasarian/campus-teams/internal/logger"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockApplier struct {
	mock.Mock
}

func (m *mockApplier) Apply(ctx context.Context, body []byte) (Result, error) {
	args := m.Called(ctx, body)
	return args.Get(0).(Result), args.Error(1)
}

func TestHandler_Handle(t *testing.T) {
	body := []byte(`{"request_type":"approve_team"}`)

	cases := []struct {
		name     string
		err      error
		expected broker.Decision
	}{
		{"успех подтверждается", nil, broker.Ack},
		{"битое сообщение уходит в DLQ", newError(KindMalformed, nil, "decode"), broker.DeadLetter},
		{"ошибка валидации уходит в DLQ", newError(KindValidation, nil, "missing"), broker.DeadLetter},
		{"команда не найдена уходит в DLQ", newError(KindNotFound, domain.ErrNotFound, "team"), broker.DeadLetter},
		{"недопустимый переход повторяется", newError(KindInvalidTransition, nil, "not pending"), broker.Retry},
		{"ошибка хранилища повторяется", newError(KindStore, errors.New("conn reset"), "lock"), broker.Retry},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			applier := new(mockApplier)
			applier.On("Apply", mock.Anything, body).Return(Result{Outcome: OutcomeApplied}, tc.err)

			h := NewHandler(applier, time.Second, logger.NewNop())
			decision := h.Handle(context.Background(), amqp.Delivery{Body: body})

			assert.Equal(t, tc.expected, decision)
			applier.AssertExpectations(t)
		})
	}

	t.Run("обработка не прерывается отменой родительского контекста", func(t *testing.T) {
		applier := new(mockApplier)
		applier.On("Apply", mock.MatchedBy(func(ctx context.Context) bool {
			_, hasDeadline := ctx.Deadline()
			return ctx.Err() == nil && hasDeadline
		}), body).Return(Result{}, nil)

		parent, cancel := context.WithCancel(context.Background())
		cancel()

		decision := NewHandler(applier, time.Second, logger.NewNop()).Handle(parent, amqp.Delivery{Body: body})

		assert.Equal(t, broker.Ack, decision)
		applier.AssertExpectations(t)
	})
}
