// Package rabbit adapts the event-bus port to RabbitMQ: one direct
// exchange and routing key for all room events, a durable consumer queue,
// and a dead-letter exchange for messages that must not be retried.
package rabbit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"rooms_svc/internal/adapters/observability"
	"rooms_svc/internal/domain"
)

type Bus struct {
	conn       *amqp.Connection
	ch         *amqp.Channel
	exchange   string
	routingKey string
	queue      string
}

// New dials the broker and declares the topology. The consumer queue
// dead-letters into "<exchange>.dlx"; rejected messages land on
// "<queue>.dead" for operator inspection.
func New(url, exchange, queue, routingKey string) (*Bus, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}

	dlx := exchange + ".dlx"
	if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(dlx, "fanout", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := ch.QueueDeclare(queue+".dead", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.QueueBind(queue+".dead", "", dlx, false, nil); err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange": dlx,
	}); err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.QueueBind(queue, routingKey, exchange, false, nil); err != nil {
		conn.Close()
		return nil, err
	}

	return &Bus{conn: conn, ch: ch, exchange: exchange, routingKey: routingKey, queue: queue}, nil
}

func (b *Bus) Close() {
	if b.ch != nil {
		_ = b.ch.Close()
	}
	if b.conn != nil {
		_ = b.conn.Close()
	}
}

func (b *Bus) Publish(ctx context.Context, ev domain.RoomEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	err = b.ch.PublishWithContext(ctx, b.exchange, b.routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.EventID,
		Body:         body,
	})
	observability.ObserveEvent("publish", string(ev.Kind), err)
	return err
}

// Consume drains the queue until ctx is cancelled, feeding each decoded
// event to handle. Malformed payloads and unknown/invalid kinds are
// rejected to the dead-letter exchange; any other handler error requeues
// the delivery for redelivery.
func (b *Bus) Consume(ctx context.Context, prefetch int, handle func(context.Context, domain.RoomEvent) error) error {
	if err := b.ch.Qos(prefetch, 0, false); err != nil {
		return err
	}
	deliveries, err := b.ch.Consume(b.queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("amqp deliveries channel closed")
			}
			// Handlers run concurrently; the caller bounds them (the
			// synchronizer wraps handle with a weighted semaphore).
			go b.dispatch(ctx, d, handle)
		}
	}
}

func (b *Bus) dispatch(ctx context.Context, d amqp.Delivery, handle func(context.Context, domain.RoomEvent) error) {
	var ev domain.RoomEvent
	if err := json.Unmarshal(d.Body, &ev); err != nil {
		log.Error().Err(err).Str("message_id", d.MessageId).Msg("undecodable event rejected to dead letter")
		observability.ObserveEvent("consume", "unknown", err)
		_ = d.Nack(false, false)
		return
	}

	err := handle(ctx, ev)
	observability.ObserveEvent("consume", string(ev.Kind), err)
	switch {
	case err == nil:
		_ = d.Ack(false)
	case errors.Is(err, domain.ErrUnknownEventKind), errors.Is(err, domain.ErrInvalidInput):
		log.Error().Err(err).Str("event_id", ev.EventID).Msg("fatal event rejected to dead letter")
		_ = d.Nack(false, false)
	default:
		log.Warn().Err(err).Str("event_id", ev.EventID).Str("kind", string(ev.Kind)).Msg("event handling failed; requeued")
		_ = d.Nack(false, true)
	}
}
