package realtime

import (
	"backend-delivery/internal/config"
	"backend-delivery/internal/logger"

	"github.com/redis/go-redis/v9"
)

// Nama channel broker yang dipakai seluruh sistem.
const (
	OrdersChannel        = "orders"
	AnnouncementsChannel = "announcements"
)

// Subscription membungkus satu langganan pub/sub. Receive channel ditutup
// otomatis waktu Close() dipanggil.
type Subscription struct {
	pubsub *redis.PubSub
	ch     <-chan *redis.Message
}

func (s *Subscription) Messages() <-chan *redis.Message {
	return s.ch
}

func (s *Subscription) Close() {
	_ = s.pubsub.Close()
}

// BrokerHealthy dipanggil endpoint stream sebelum subscribe supaya client
// baru dapat 503 yang jelas, bukan koneksi yang diam selamanya.
func BrokerHealthy() bool {
	if config.Redis == nil {
		return false
	}
	return config.Redis.Ping(config.Ctx).Err() == nil
}

// Publish kirim payload ke satu channel, fire-and-forget. Error broker cuma
// di-log: pada titik ini write domain sudah commit, notifikasi best-effort.
func Publish(channel string, payload []byte) {
	if config.Redis == nil {
		logger.WithField("channel", channel).Warn("publish skipped, broker belum diinit")
		return
	}
	if err := config.Redis.Publish(config.Ctx, channel, payload).Err(); err != nil {
		logger.WithError(err).WithField("channel", channel).Warn("publish gagal, event dibuang")
	}
}

// Subscribe buka langganan baru. Error dikembalikan ke caller supaya endpoint
// bisa jawab 503 redis_unavailable.
func Subscribe(channel string) (*Subscription, error) {
	pubsub := config.Redis.Subscribe(config.Ctx, channel)

	// go-redis baru kirim SUBSCRIBE waktu Receive pertama; paksa di sini
	// biar broker down ketahuan sekarang, bukan waktu baca pertama.
	if _, err := pubsub.Receive(config.Ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	return &Subscription{pubsub: pubsub, ch: pubsub.Channel()}, nil
}
