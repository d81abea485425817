package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/allisson/storesync/internal/outbox/domain"
)

// DefaultConfirmTimeout is how long Send waits for the broker to confirm a publish.
const DefaultConfirmTimeout = 10 * time.Second

// ErrPublishNacked is returned when the broker refuses to persist a message.
var ErrPublishNacked = errors.New("broker nacked the message")

type confirmation interface {
	Done() <-chan struct{}
	Acked() bool
}

type publisher interface {
	Publish(ctx context.Context, exchange, routingKey string, msg amqp.Publishing) (confirmation, error)
	Close() error
}

// channelPublisher adapts an amqp channel running in confirm mode.
type channelPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func (p *channelPublisher) Publish(
	ctx context.Context,
	exchange, routingKey string,
	msg amqp.Publishing,
) (confirmation, error) {
	deferred, err := p.channel.PublishWithDeferredConfirmWithContext(ctx, exchange, routingKey, false, false, msg)
	if err != nil {
		return nil, err
	}
	return deferred, nil
}

func (p *channelPublisher) Close() error {
	chErr := p.channel.Close()
	connErr := p.conn.Close()
	return errors.Join(chErr, connErr)
}

// AMQPTransport publishes outbox items to a durable topic exchange with publisher confirms.
// A publish counts as delivered once the broker acks it.
type AMQPTransport struct {
	exchange       string
	confirmTimeout time.Duration
	logger         *slog.Logger

	mu        sync.Mutex
	publisher publisher
	closeOnce sync.Once
}

// NewAMQPTransport dials the broker, declares the exchange and enables confirm mode.
func NewAMQPTransport(url, exchange string, logger *slog.Logger) (*AMQPTransport, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open broker channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	logger.Info("connected to sync broker", slog.String("exchange", exchange))
	return newAMQPTransport(&channelPublisher{conn: conn, channel: ch}, exchange, DefaultConfirmTimeout, logger), nil
}

func newAMQPTransport(p publisher, exchange string, confirmTimeout time.Duration, logger *slog.Logger) *AMQPTransport {
	return &AMQPTransport{
		exchange:       exchange,
		confirmTimeout: confirmTimeout,
		logger:         logger,
		publisher:      p,
	}
}

// RoutingKey returns store.<store_id>.<entity_type>.<operation>.
func RoutingKey(item *domain.OutboxItem) string {
	return fmt.Sprintf("store.%s.%s.%s", item.StoreID, item.EntityType, item.Operation)
}

// Send publishes the item and waits for the broker confirmation. A nack or a confirm timeout
// is returned as an error, so the item is retried.
func (t *AMQPTransport) Send(ctx context.Context, item *domain.OutboxItem) (*domain.SendResult, error) {
	// a channel is not safe for concurrent publishes
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now().UTC()
	confirm, err := t.publisher.Publish(ctx, t.exchange, RoutingKey(item), amqp.Publishing{
		MessageId:    item.ID.String(),
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    now,
		Type:         item.APIEndpoint,
		Headers: amqp.Table{
			"idempotency_key": item.ID.String(),
			"store_id":        item.StoreID.String(),
			"entity_type":     string(item.EntityType),
			"entity_id":       item.EntityID.String(),
			"operation":       string(item.Operation),
		},
		Body: item.Payload,
	})
	if err != nil {
		return nil, fmt.Errorf("publish failed: %w", err)
	}

	timer := time.NewTimer(t.confirmTimeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, errors.New("publisher confirm timeout")
	case <-confirm.Done():
		if !confirm.Acked() {
			return nil, ErrPublishNacked
		}
		return &domain.SendResult{Success: true}, nil
	}
}

// Close releases the broker channel and connection.
func (t *AMQPTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		t.logger.Info("closing sync broker connection")
		err = t.publisher.Close()
	})
	return err
}
