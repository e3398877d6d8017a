package handler

import (
	"bufio"
	"database/sql"
	"encoding/json"
	"strconv"
	"time"

	"backend-delivery/internal/logger"
	"backend-delivery/internal/realtime"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

const keepAliveInterval = 15 * time.Second

// StreamDriverLocation: SSE posisi driver untuk satu order. Snapshot
// terakhir dikirim duluan (kalau ada), sisanya tail dari registry — satu
// blok data per perubahan, keepalive tiap 15 detik.
func StreamDriverLocation(c *fiber.Ctx) error {
	orderID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid_order_id",
		})
	}

	if c.QueryInt("customer_id", 0) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "customer_id_required",
		})
	}

	topic := strconv.Itoa(orderID)
	clientID := uuid.NewString()
	setSSEHeaders(c)

	// Register dulu, snapshot belakangan — update yang mendarat di antara
	// keduanya masuk antrian, bukan hilang. Overlap snapshot/antrian
	// dibereskan dedupe di tailLocations.
	q := realtime.Streams.Register(topic)

	var first *string
	if point, err := currentLocation(int64(orderID)); err == nil {
		if b, err := json.Marshal(point); err == nil {
			s := string(b)
			first = &s
		}
	} else if err != sql.ErrNoRows {
		logger.WithError(err).Warn("ambil lokasi awal gagal")
	}

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		// Unregister di semua jalur keluar — entry registry tidak boleh bocor
		defer realtime.Streams.Unregister(topic, q)

		log := logger.WithFields(map[string]interface{}{
			"client": clientID,
			"order":  orderID,
		})
		log.Info("tracking stream connected")
		defer log.Info("tracking stream closed")

		keepalive := time.NewTicker(keepAliveInterval)
		defer keepalive.Stop()
		tailLocations(w, q, first, keepalive.C)
	}))

	return nil
}

// tailLocations kirim snapshot (kalau ada) lalu terusin isi antrian satu
// event per payload. Payload yang identik dengan kiriman terakhir di-skip
// — emit-on-change, snapshot yang keburu masuk antrian tidak dobel.
// Balik waktu write gagal (client putus).
func tailLocations(w *bufio.Writer, q chan string, first *string, keepalive <-chan time.Time) {
	lastSent := ""
	if first != nil {
		if err := sseData(w, *first); err != nil {
			return
		}
		lastSent = *first
	}

	for {
		select {
		case payload := <-q:
			if payload == lastSent {
				continue
			}
			if err := sseData(w, payload); err != nil {
				return
			}
			lastSent = payload
		case <-keepalive:
			if err := sseComment(w, "keepalive"); err != nil {
				return
			}
		}
	}
}
