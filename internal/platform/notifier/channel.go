// Package notifier provides the notification topic publisher. The channel
// implementation is suitable for single-instance deployments and testing;
// multi-instance deployments would swap in a real broker behind the same
// interface.
package notifier

import (
	"context"
	"fmt"
	"sync"

	"github.com/mintflow/syncd/internal/core/ports"
)

// Message is one published notification with its topic.
type Message struct {
	Topic   string
	Payload any
}

// ChannelPublisher fans published messages into a buffered channel. It is
// safe for concurrent use.
type ChannelPublisher struct {
	msgChan   chan Message
	closeChan chan struct{}
	mu        sync.RWMutex
	closed    bool
}

// NewChannelPublisher creates a publisher with the given buffer size.
// Publish blocks once the buffer is full, until a consumer drains it.
func NewChannelPublisher(bufferSize int) *ChannelPublisher {
	return &ChannelPublisher{
		msgChan:   make(chan Message, bufferSize),
		closeChan: make(chan struct{}),
	}
}

var _ ports.NotificationPublisher = (*ChannelPublisher)(nil)

// Publish enqueues one message with context cancellation support.
func (p *ChannelPublisher) Publish(ctx context.Context, topic string, payload any) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return fmt.Errorf("publisher is closed")
	}

	select {
	case p.msgChan <- Message{Topic: topic, Payload: payload}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.closeChan:
		return fmt.Errorf("publisher is closed")
	}
}

// Messages exposes the consumer side of the topic.
func (p *ChannelPublisher) Messages() <-chan Message {
	return p.msgChan
}

// Close stops the publisher. Pending messages stay readable until drained.
func (p *ChannelPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	close(p.closeChan)
	close(p.msgChan)
	return nil
}
