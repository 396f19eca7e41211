package rabbit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Temutjin2k/vehicle-tracker/internal/domain/models"
	"github.com/Temutjin2k/vehicle-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/vehicle-tracker/pkg/logger/wrapper"
	"github.com/Temutjin2k/vehicle-tracker/pkg/metrics"
)

const ExchangeMapFanout = "tracker_map_fanout"

var ErrPublisherBusy = errors.New("map publisher queue is full")

// Client is the part of pkg/rabbit the publisher needs.
type Client interface {
	DeclareFanout(name string) error
	Publish(ctx context.Context, exchange, key string, msg amqp.Publishing) error
}

// MapPublisher fans map commands out to other consumers of the live view.
// Send only enqueues; Run does the network IO so a slow broker never stalls
// the caller.
type MapPublisher struct {
	client   Client
	exchange string
	queue    chan models.MapCommand
	l        logger.Logger
}

func NewMapPublisher(client Client, exchange string, buffer int, l logger.Logger) *MapPublisher {
	if exchange == "" {
		exchange = ExchangeMapFanout
	}
	if buffer <= 0 {
		buffer = 64
	}
	return &MapPublisher{
		client:   client,
		exchange: exchange,
		queue:    make(chan models.MapCommand, buffer),
		l:        l,
	}
}

// Send enqueues cmd. It fails fast with ErrPublisherBusy when the queue is full.
func (p *MapPublisher) Send(_ context.Context, cmd models.MapCommand) error {
	select {
	case p.queue <- cmd:
		return nil
	default:
		metrics.RecordRabbitMQPublish(p.exchange, ErrPublisherBusy)
		return ErrPublisherBusy
	}
}

// Run declares the exchange and publishes queued commands until ctx is done.
func (p *MapPublisher) Run(ctx context.Context) error {
	const op = "MapPublisher.Run"

	if err := p.client.DeclareFanout(p.exchange); err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: failed to declare exchange: %w", op, err))
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case cmd := <-p.queue:
			if err := p.publish(ctx, cmd); err != nil {
				p.l.Error(ctx, "failed to publish map command", err, "type", string(cmd.Type))
			}
		}
	}
}

func (p *MapPublisher) publish(ctx context.Context, cmd models.MapCommand) error {
	const op = "MapPublisher.publish"

	body, err := json.Marshal(cmd)
	if err != nil {
		ctx = wrap.WithAction(ctx, "marshal_map_command")
		return wrap.Error(ctx, fmt.Errorf("%s: failed to marshal message: %w", op, err))
	}

	key := fmt.Sprintf("map.%s.%s", cmd.IMEI, cmd.Type)

	err = p.client.Publish(ctx, p.exchange, key, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
		Timestamp:   time.Now(),
	})
	metrics.RecordRabbitMQPublish(p.exchange, err)
	if err != nil {
		ctx = wrap.WithAction(ctx, "publish_message")
		return wrap.Error(ctx, fmt.Errorf("%s: failed to publish with context: %w", op, err))
	}
	return nil
}
