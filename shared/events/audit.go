// Package events publishes provisioning and authentication audit events to
// Kafka. Publishing is best-effort and asynchronous; a slow or absent broker
// never blocks the request path.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// Audit event types.
const (
	TypeBootstrapCompleted = "bootstrap.completed"
	TypeBootstrapFailed    = "bootstrap.failed"
	TypeLoginSucceeded     = "login.succeeded"
	TypeLoginFailed        = "login.failed"
)

// AuditEvent records a single provisioning or authentication outcome.
type AuditEvent struct {
	EventID   string    `json:"event_id"`
	Type      string    `json:"type"`
	TenantID  string    `json:"tenant_id,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	Email     string    `json:"email,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher drains audit events to a Kafka topic through a small worker pool.
// A nil Publisher is valid and drops all events.
type Publisher struct {
	writer       *kafka.Writer
	eventChan    chan AuditEvent
	workerCount  int
	shutdownChan chan struct{}
	wg           sync.WaitGroup
}

// NewPublisher creates a publisher for the given broker and topic. An empty
// broker disables publishing and returns nil.
func NewPublisher(broker, topic string) *Publisher {
	if broker == "" {
		return nil
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	}

	p := &Publisher{
		writer:       writer,
		eventChan:    make(chan AuditEvent, 256),
		workerCount:  2,
		shutdownChan: make(chan struct{}),
	}
	p.startWorkers()
	return p
}

func (p *Publisher) startWorkers() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	logrus.Infof("Audit publisher started %d workers", p.workerCount)
}

func (p *Publisher) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case event := <-p.eventChan:
			if err := p.send(event); err != nil {
				logrus.WithFields(logrus.Fields{
					"worker": id,
					"type":   event.Type,
					"error":  err,
				}).Warn("Failed to publish audit event")
			}
		case <-p.shutdownChan:
			return
		}
	}
}

// Publish queues an audit event without blocking. Events are dropped when
// the queue is full or the publisher is nil.
func (p *Publisher) Publish(eventType, tenantID, userID, email, detail string) {
	if p == nil {
		return
	}

	event := AuditEvent{
		EventID:   uuid.New().String(),
		Type:      eventType,
		TenantID:  tenantID,
		UserID:    userID,
		Email:     email,
		Detail:    detail,
		Timestamp: time.Now().UTC(),
	}

	select {
	case p.eventChan <- event:
	default:
		logrus.WithField("type", eventType).Warn("Audit event queue full, event dropped")
	}
}

func (p *Publisher) send(event AuditEvent) error {
	message, err := json.Marshal(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Type),
		Value: message,
	})
}

// Close drains the workers and closes the underlying writer.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	close(p.shutdownChan)
	p.wg.Wait()
	return p.writer.Close()
}
