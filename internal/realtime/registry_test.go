package realtime

import (
	"fmt"
	"sync"
	"testing"
)

func TestRegistryBroadcastFanOut(t *testing.T) {
	r := NewStreamRegistry()

	const n = 5
	queues := make([]chan string, n)
	for i := range queues {
		queues[i] = r.Register("order-1")
	}

	r.Broadcast("order-1", `{"latitude":1,"longitude":2}`)

	for i, q := range queues {
		select {
		case got := <-q:
			if got != `{"latitude":1,"longitude":2}` {
				t.Errorf("queue %d: payload salah: %s", i, got)
			}
		default:
			t.Errorf("queue %d: tidak dapat payload", i)
		}
	}
}

func TestRegistryUnregisterLeavesOthers(t *testing.T) {
	r := NewStreamRegistry()

	q1 := r.Register("order-7")
	q2 := r.Register("order-7")
	q3 := r.Register("order-7")

	r.Unregister("order-7", q2)
	r.Broadcast("order-7", "x")

	if len(q1) != 1 || len(q3) != 1 {
		t.Error("subscriber yang masih hidup tidak dapat broadcast")
	}
	if len(q2) != 0 {
		t.Error("subscriber yang sudah lepas masih dapat broadcast")
	}
	if r.SubscriberCount("order-7") != 2 {
		t.Errorf("SubscriberCount = %d, mau 2", r.SubscriberCount("order-7"))
	}
}

func TestRegistryTopicRemovedWhenEmpty(t *testing.T) {
	r := NewStreamRegistry()

	q1 := r.Register("order-9")
	q2 := r.Register("order-9")

	r.Unregister("order-9", q1)
	if r.TopicCount() != 1 {
		t.Fatal("topic hilang padahal masih ada subscriber")
	}

	r.Unregister("order-9", q2)
	if r.TopicCount() != 0 {
		t.Fatal("topic masih ada setelah subscriber terakhir lepas")
	}

	// Unregister kedua kali harus aman
	r.Unregister("order-9", q2)
}

func TestRegistryOverflowDropsNewestNeverBlocks(t *testing.T) {
	r := NewStreamRegistry()
	q := r.Register("busy")

	// Kirim lebih dari kapasitas — Broadcast tidak boleh ngeblok
	for i := 0; i < subscriberQueueSize+10; i++ {
		r.Broadcast("busy", fmt.Sprintf("msg-%d", i))
	}

	if len(q) != subscriberQueueSize {
		t.Fatalf("len(q) = %d, mau %d", len(q), subscriberQueueSize)
	}

	// Drop-newest: isi antrian tetap pesan paling awal, urut publish
	for i := 0; i < subscriberQueueSize; i++ {
		if got := <-q; got != fmt.Sprintf("msg-%d", i) {
			t.Fatalf("urutan rusak di %d: %s", i, got)
		}
	}

	if r.SubscriberCount("busy") != 1 {
		t.Error("subscriber kena prune gara-gara overflow")
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewStreamRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			topic := fmt.Sprintf("t-%d", i%4)
			q := r.Register(topic)
			r.Broadcast(topic, "payload")
			r.Unregister(topic, q)
		}(i)
	}
	wg.Wait()

	if r.TopicCount() != 0 {
		t.Errorf("TopicCount = %d setelah semua lepas, mau 0", r.TopicCount())
	}
}
