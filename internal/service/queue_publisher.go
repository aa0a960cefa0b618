package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/parking-registry/internal/queue"
)

// ErrPublisherBacklog is returned when the outgoing buffer is full.
var ErrPublisherBacklog = errors.New("event backlog full")

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("publisher closed")

const (
	publishBacklog = 256
	dialTimeout    = 5 * time.Second
	sendTimeout    = 5 * time.Second
)

// EventPublisher delivers parking events after their transaction commits.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ParkingEvent) error
}

// NopPublisher discards every event.  It is used when no broker is configured.
type NopPublisher struct{}

// Publish implements EventPublisher.
func (NopPublisher) Publish(context.Context, queue.ParkingEvent) error { return nil }

// AMQPPublisher publishes events to the parking.events queue.  Publish only
// buffers the event; a single worker goroutine owns the broker connection,
// opens it lazily and reopens it after a failure.
type AMQPPublisher struct {
	url string
	log *logrus.Logger

	mu     sync.RWMutex
	closed bool
	events chan queue.ParkingEvent

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// owned by the worker
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAMQPPublisher returns a publisher for the broker at url and starts its
// delivery worker.  Close must be called to stop it.
func NewAMQPPublisher(url string, log *logrus.Logger) *AMQPPublisher {
	p := newAMQPPublisher(url, log, publishBacklog)
	p.wg.Add(1)
	go p.run()
	return p
}

func newAMQPPublisher(url string, log *logrus.Logger, backlog int) *AMQPPublisher {
	ctx, cancel := context.WithCancel(context.Background())
	return &AMQPPublisher{
		url:    url,
		log:    log,
		events: make(chan queue.ParkingEvent, backlog),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Publish queues ev for delivery and returns without touching the network.
// A missing event id is filled with a random UUID.
func (p *AMQPPublisher) Publish(_ context.Context, ev queue.ParkingEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}
	select {
	case p.events <- ev:
		return nil
	default:
		return ErrPublisherBacklog
	}
}

// Close stops the worker and releases the broker connection.  Events still
// buffered are dropped.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.events)
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
	p.reset()
	return nil
}

func (p *AMQPPublisher) run() {
	defer p.wg.Done()
	for ev := range p.events {
		if p.ctx.Err() != nil {
			continue
		}
		if err := p.send(ev); err != nil {
			p.log.WithError(err).WithFields(logrus.Fields{
				"event":    ev.Type,
				"event_id": ev.ID,
			}).Warn("rabbitmq: publish parking event failed")
		}
	}
}

func (p *AMQPPublisher) send(ev queue.ParkingEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	ch, err := p.channel()
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Type:         ev.Type,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	ctx, cancel := context.WithTimeout(p.ctx, sendTimeout)
	defer cancel()
	if err := ch.PublishWithContext(ctx, "", queue.ParkingEventsQueue, false, false, pub); err != nil {
		p.reset()
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// channel returns an open channel, dialing when needed.
func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      p.dial,
	})
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("channel open: %w", err)
	}
	if _, err := ch.QueueDeclare(queue.ParkingEventsQueue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("queue declare: %w", err)
	}
	p.conn, p.ch = conn, ch
	p.log.WithField("queue", queue.ParkingEventsQueue).Debug("rabbitmq: publisher connected")
	return ch, nil
}

// dial is amqp.DefaultDial bound to the publisher lifetime so Close does not
// wait out a slow handshake.
func (p *AMQPPublisher) dial(network, addr string) (net.Conn, error) {
	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(p.ctx, network, addr)
	if err != nil {
		return nil, err
	}
	if err := conn.SetDeadline(time.Now().Add(dialTimeout)); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

func (p *AMQPPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.ch, p.conn = nil, nil
}
