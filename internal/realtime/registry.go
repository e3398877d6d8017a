package realtime

import (
	"sync"

	"backend-delivery/internal/logger"
)

// Kapasitas antrian per subscriber. Kalau penuh, payload baru dibuang untuk
// subscriber itu saja (drop-newest) — publisher tidak pernah ikut ngeblok.
const subscriberQueueSize = 50

// StreamRegistry adalah fan-out in-process: map topic -> daftar antrian
// subscriber. Dipakai stream lokasi driver (topic = order id) dan jalur
// fallback announcement. Satu mutex untuk semua mutasi; critical section
// cuma seukuran subscriber satu topic.
type StreamRegistry struct {
	mu     sync.Mutex
	topics map[string][]chan string
}

func NewStreamRegistry() *StreamRegistry {
	return &StreamRegistry{
		topics: make(map[string][]chan string),
	}
}

// Registry global satu per proses, dipakai handler lewat referensi ini.
var Streams = NewStreamRegistry()

func (r *StreamRegistry) Register(topic string) chan string {
	q := make(chan string, subscriberQueueSize)
	r.mu.Lock()
	r.topics[topic] = append(r.topics[topic], q)
	r.mu.Unlock()
	return q
}

// Unregister lepas satu antrian; entry topic ikut dihapus kalau antrian
// terakhirnya hilang.
func (r *StreamRegistry) Unregister(topic string, q chan string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	queues, ok := r.topics[topic]
	if !ok {
		return
	}
	for i, existing := range queues {
		if existing == q {
			r.topics[topic] = append(queues[:i], queues[i+1:]...)
			break
		}
	}
	if len(r.topics[topic]) == 0 {
		delete(r.topics, topic)
	}
}

// Broadcast antri payload (sudah diserialisasi sekali oleh caller) ke semua
// subscriber topic. Antrian penuh = payload di-skip untuk subscriber itu.
func (r *StreamRegistry) Broadcast(topic string, payload string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, q := range r.topics[topic] {
		select {
		case q <- payload:
		default:
			logger.WithField("topic", topic).Debug("subscriber queue penuh, payload di-drop")
		}
	}
}

// SubscriberCount dipakai buat observability & test.
func (r *StreamRegistry) SubscriberCount(topic string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.topics[topic])
}

// TopicCount jumlah topic yang masih punya subscriber hidup.
func (r *StreamRegistry) TopicCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.topics)
}
