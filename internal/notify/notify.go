// Package notify is the outbound client-notification channel. The map core
// publishes biome-change, loot and event messages through it; delivery is the
// host's problem.
package notify

import "sync"

// Message is the wire shape every broadcast uses.
type Message struct {
	Channel string
	Action  string
	Payload map[string]any
}

// Notifier delivers messages to clients.
type Notifier interface {
	// Broadcast sends to every connected client.
	Broadcast(msg Message)
	// Send targets one player.
	Send(playerID string, msg Message)
}

// Discard drops every message. Useful for headless generation runs.
type Discard struct{}

func (Discard) Broadcast(Message)    {}
func (Discard) Send(string, Message) {}

// Recorder captures messages for tests.
type Recorder struct {
	mu        sync.Mutex
	broadcast []Message
	direct    map[string][]Message
}

func NewRecorder() *Recorder {
	return &Recorder{direct: make(map[string][]Message)}
}

func (r *Recorder) Broadcast(msg Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcast = append(r.broadcast, msg)
}

func (r *Recorder) Send(playerID string, msg Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.direct[playerID] = append(r.direct[playerID], msg)
}

// Broadcasts returns a snapshot of broadcast messages.
func (r *Recorder) Broadcasts() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.broadcast...)
}

// SentTo returns a snapshot of messages sent to one player.
func (r *Recorder) SentTo(playerID string) []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.direct[playerID]...)
}
