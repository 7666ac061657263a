// Package events fans published scan results out to in-process subscribers.
package events

import (
	"sync"

	"github.com/vadiminshakov/arbscan/internal/domain"
)

const defaultBuffer = 64

// ScanBroadcaster fans out scan results to all subscribers via buffered channels.
type ScanBroadcaster struct {
	mu     sync.RWMutex
	subs   map[chan domain.ScanResult]struct{}
	buffer int
}

// NewScanBroadcaster creates a broadcaster with the given per-subscriber buffer.
func NewScanBroadcaster(buffer int) *ScanBroadcaster {
	if buffer < 1 {
		buffer = defaultBuffer
	}
	return &ScanBroadcaster{
		subs:   make(map[chan domain.ScanResult]struct{}),
		buffer: buffer,
	}
}

// Publish sends the result to all subscribers, dropping it for a subscriber whose buffer is full.
func (b *ScanBroadcaster) Publish(result domain.ScanResult) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- result:
		default:
			// drop slow consumer
		}
	}
}

// Subscribe returns a channel that receives results until Unsubscribe is called.
func (b *ScanBroadcaster) Subscribe() chan domain.ScanResult {
	ch := make(chan domain.ScanResult, b.buffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the channel and closes it.
func (b *ScanBroadcaster) Unsubscribe(ch chan domain.ScanResult) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}

// Subscribers returns the number of active subscribers.
func (b *ScanBroadcaster) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
