package notify

import (
	"sync"
)

// Broker is an in-process pub/sub keyed by topic. Slow subscribers miss
// messages rather than blocking publishers.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

func TeamTopic(teamID string) string   { return "team:" + teamID }
func EventTopic(eventID string) string { return "event:" + eventID }

// Subscribe returns a channel that receives every message published to topic.
func (b *Broker) Subscribe(topic string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[chan []byte]struct{})
	}
	b.subs[topic][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(topic string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[topic], ch)
	if len(b.subs[topic]) == 0 {
		delete(b.subs, topic)
	}
	b.mu.Unlock()
}

// Publish sends data to all subscribers of topic and reports how many
// received it.
func (b *Broker) Publish(topic string, data []byte) int {
	var sent int
	b.mu.RLock()
	for ch := range b.subs[topic] {
		select {
		case ch <- data:
			sent++
		default:
		}
	}
	b.mu.RUnlock()
	return sent
}
