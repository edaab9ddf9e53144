// Copyright (c) 2026 Nexus Portal. All rights reserved.
// Author: dev@nexusportal.app

package auth

import (
	"sync"
	"time"

	"github.com/nexusportal/nexus/internal/platform/sec"
)

// # Session Events

// EventType enumerates the session lifecycle transitions worth announcing.
type EventType string

const (
	EventSignedIn  EventType = "signed_in"
	EventSignedOut EventType = "signed_out"
	EventVerified  EventType = "verified"
	EventRefreshed EventType = "refreshed"
)

// SessionEvent describes one session state transition.
type SessionEvent struct {
	Type   EventType `json:"type"`
	UserID string    `json:"user_id"`
	Email  string    `json:"email,omitempty"`
	Role   sec.Role  `json:"role,omitempty"`
	At     time.Time `json:"at"`
}

// Broadcaster fans session lifecycle events out to subscribers.
//
// # Why an interface?
//
// The service announces transitions without caring who listens; audit logging,
// cache invalidation, and tests all attach through the same contract.
type Broadcaster interface {

	// Subscribe registers a listener and returns its event channel together
	// with an unsubscribe function. The channel is closed on unsubscribe.
	Subscribe() (<-chan SessionEvent, func())

	// Publish delivers an event to every current subscriber without blocking
	// the caller. Slow subscribers miss events rather than stalling logins.
	Publish(event SessionEvent)
}

// # Channel Broadcaster

const subscriberBuffer = 16

// ChannelBroadcaster is the in-process [Broadcaster] implementation.
type ChannelBroadcaster struct {
	mu          sync.Mutex
	subscribers map[int]chan SessionEvent
	nextID      int
}

// NewBroadcaster constructs an empty ChannelBroadcaster.
func NewBroadcaster() *ChannelBroadcaster {
	return &ChannelBroadcaster{
		subscribers: make(map[int]chan SessionEvent),
	}
}

/*
Subscribe registers a new listener.

Description: Allocates a buffered channel for the listener and returns an
idempotent unsubscribe function that closes it.

Returns:
  - <-chan SessionEvent: Event stream
  - func(): Unsubscribe handle
*/
func (broadcaster *ChannelBroadcaster) Subscribe() (<-chan SessionEvent, func()) {
	broadcaster.mu.Lock()
	defer broadcaster.mu.Unlock()

	id := broadcaster.nextID
	broadcaster.nextID++

	channel := make(chan SessionEvent, subscriberBuffer)
	broadcaster.subscribers[id] = channel

	unsubscribe := func() {
		broadcaster.mu.Lock()
		defer broadcaster.mu.Unlock()

		if existing, ok := broadcaster.subscribers[id]; ok {
			delete(broadcaster.subscribers, id)
			close(existing)
		}
	}

	return channel, unsubscribe
}

/*
Publish delivers the event to all subscribers.

Description: Non-blocking fan-out. A subscriber whose buffer is full misses
the event; session announcements are advisory, not transactional.

Parameters:
  - event: SessionEvent
*/
func (broadcaster *ChannelBroadcaster) Publish(event SessionEvent) {
	if event.At.IsZero() {
		event.At = time.Now()
	}

	broadcaster.mu.Lock()
	defer broadcaster.mu.Unlock()

	for _, channel := range broadcaster.subscribers {
		select {
		case channel <- event:
		default:
		}
	}
}
