package handler

import (
	"bufio"
	"encoding/json"
	"strings"
	"time"

	"backend-delivery/internal/config"
	"backend-delivery/internal/logger"
	"backend-delivery/internal/realtime"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

// Hint reconnect yang dikirim di awal stream order.
const ordersRetryMs = 3000

// StreamOrders: SSE yang nge-tail channel "orders" di broker. Broker down
// waktu connect = jawab 503, jangan gantung client tanpa kabar.
func StreamOrders(c *fiber.Ctx) error {
	if !realtime.BrokerHealthy() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"error":   "redis_unavailable",
			"message": "Broker notifikasi lagi tidak tersedia",
		})
	}

	sub, err := realtime.Subscribe(realtime.OrdersChannel)
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"error":   "redis_unavailable",
			"message": "Broker notifikasi lagi tidak tersedia",
		})
	}

	clientID := uuid.NewString()
	setSSEHeaders(c)

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer sub.Close()

		log := logger.WithField("client", clientID)
		log.Info("orders stream connected")
		defer log.Info("orders stream closed")

		if err := sseRetry(w, ordersRetryMs); err != nil {
			return
		}

		ping := time.NewTicker(keepAliveInterval)
		defer ping.Stop()

		for {
			select {
			case msg, ok := <-sub.Messages():
				if !ok {
					// Koneksi broker putus di tengah jalan: satu event error
					// bertipe, lalu tutup — lebih jelas daripada close mendadak
					_ = sseEvent(w, "error", `{"error":"redis_lost","message":"Lost broker connection"}`)
					return
				}
				// Payload diteruskan verbatim, satu event per pesan publish
				if err := sseData(w, msg.Payload); err != nil {
					return
				}
			case <-ping.C:
				if err := sseComment(w, "ping"); err != nil {
					return
				}
			}
		}
	}))

	return nil
}

// PublishOrder: endpoint publish mentah ke channel "orders". Body boleh
// JSON atau teks biasa; order_id di-generate via INCR kalau tidak ada.
func PublishOrder(c *fiber.Ctx) error {
	raw := string(c.Body())

	var payload map[string]interface{}
	if strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &payload); err != nil || payload == nil {
			payload = map[string]interface{}{"text": raw}
		}
	} else {
		payload = map[string]interface{}{
			"info": "empty body",
			"ts":   time.Now().Unix(),
		}
	}

	if !realtime.BrokerHealthy() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"error":   "redis_connection",
			"message": "Broker tidak bisa dihubungi, coba lagi nanti",
		})
	}

	if _, ok := payload["order_id"]; !ok {
		id, err := config.Redis.Incr(config.Ctx, "orders:next_id").Result()
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"success": false,
				"error":   "redis_connection",
				"message": "Broker tidak bisa dihubungi, coba lagi nanti",
			})
		}
		payload["order_id"] = id
	}
	if _, ok := payload["created_ts"]; !ok {
		payload["created_ts"] = time.Now().Unix()
	}

	serialized, err := json.Marshal(payload)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid_payload",
		})
	}

	if err := config.Redis.Publish(config.Ctx, realtime.OrdersChannel, serialized).Err(); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"error":   "redis_connection",
			"message": "Broker tidak bisa dihubungi, coba lagi nanti",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":      true,
		"published_to": realtime.OrdersChannel,
		"message":      payload,
	})
}

// OrdersStreamHealth probe kecil buat cek jalur notifikasi.
func OrdersStreamHealth(c *fiber.Ctx) error {
	if !realtime.BrokerHealthy() {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status": "error",
			"error":  "redis_unreachable",
		})
	}
	return c.JSON(fiber.Map{
		"status":  "ok",
		"channel": realtime.OrdersChannel,
	})
}
