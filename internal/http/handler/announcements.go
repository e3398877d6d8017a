package handler

import (
	"bufio"
	"encoding/json"
	"strings"
	"time"

	"backend-delivery/internal/config"
	"backend-delivery/internal/helper"
	"backend-delivery/internal/logger"
	"backend-delivery/internal/models"
	"backend-delivery/internal/realtime"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

// Jumlah announcement terakhir yang di-replay ke subscriber baru.
const announcementReplayCount = 5

// Topic registry untuk jalur fallback in-process.
const announcementsTopic = "announcements"

// CreateAnnouncement simpan lalu siarkan lewat DUA jalur sekaligus: broker
// dan registry lokal. Subscriber fallback tetap dapat event walau Redis mati.
func CreateAnnouncement(c *fiber.Ctx) error {
	var req models.CreateAnnouncementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid_request_body",
		})
	}

	title := strings.TrimSpace(req.Title)
	message := strings.TrimSpace(req.Message)
	sender := strings.TrimSpace(req.SenderName)
	if sender == "" {
		sender = "Admin"
	}
	priority := helper.NormalizePriority(req.Priority)

	if title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "title_required",
		})
	}
	if message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "message_required",
		})
	}

	result, err := config.DB.Exec(`
		INSERT INTO announcements (title, message, sender_name, priority, is_active, created_at)
		VALUES (?, ?, ?, ?, 'y', NOW())
	`, title, message, sender, priority)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "create_failed",
		})
	}

	id, _ := result.LastInsertId()
	ann, err := getAnnouncementByID(id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "db_error",
		})
	}

	resp := models.ToAnnouncementResponse(ann)
	annJSON, err := json.Marshal(resp)
	if err != nil {
		logger.WithError(err).Warn("marshal announcement gagal")
		annJSON = []byte("{}")
	}

	// Jalur broker (best-effort)
	if event, err := json.Marshal(models.AnnouncementEvent{Announcement: resp, Ts: time.Now().Unix()}); err == nil {
		realtime.Publish(realtime.AnnouncementsChannel, event)
	}

	// Jalur lokal — selalu, bukan cuma waktu broker gagal
	realtime.Streams.Broadcast(announcementsTopic, string(annJSON))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":      true,
		"announcement": resp,
	})
}

func GetAnnouncements(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)
	if limit < 1 || limit > 100 {
		limit = 10
	}

	list, err := recentAnnouncements(limit)
	if err != nil {
		// Port perilaku asli: list gagal = balikin kosong, bukan error
		list = []models.AnnouncementResponse{}
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"announcements": list,
	})
}

// StreamAnnouncements: SSE dengan dua mode. Broker sehat -> subscribe dulu,
// replay 5 terakhir, lalu tail Redis. Broker mati -> jalur fallback registry
// lokal yang harus tetap jalan mandiri.
func StreamAnnouncements(c *fiber.Ctx) error {
	var sub *realtime.Subscription
	if realtime.BrokerHealthy() {
		if s, err := realtime.Subscribe(realtime.AnnouncementsChannel); err == nil {
			sub = s
		}
	}

	// Replay diambil sebelum masuk stream writer
	recent, err := recentAnnouncements(announcementReplayCount)
	if err != nil {
		recent = nil
	}
	replay := make([]string, 0, len(recent))
	for _, ann := range recent {
		if b, err := json.Marshal(ann); err == nil {
			replay = append(replay, string(b))
		}
	}

	clientID := uuid.NewString()
	setSSEHeaders(c)

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		log := logger.WithField("client", clientID)

		if sub != nil {
			defer sub.Close()
			log.Info("announcement stream connected (broker)")
			defer log.Info("announcement stream closed")

			if err := sseEvent(w, "ping", "connected"); err != nil {
				return
			}
			for _, data := range replay {
				if err := sseData(w, data); err != nil {
					return
				}
			}

			ping := time.NewTicker(keepAliveInterval)
			defer ping.Stop()
			for {
				select {
				case msg, ok := <-sub.Messages():
					if !ok {
						_ = sseEvent(w, "error", `{"error":"redis_lost","message":"Lost broker connection"}`)
						return
					}
					if err := sseData(w, msg.Payload); err != nil {
						return
					}
				case <-ping.C:
					if err := sseComment(w, "keepalive"); err != nil {
						return
					}
				}
			}
		}

		// Fallback in-process
		q := realtime.Streams.Register(announcementsTopic)
		defer realtime.Streams.Unregister(announcementsTopic, q)
		log.Info("announcement stream connected (fallback)")
		defer log.Info("announcement stream closed")

		for _, data := range replay {
			if err := sseData(w, data); err != nil {
				return
			}
		}
		if err := sseData(w, `{"type":"connected","message":"Connected to announcements"}`); err != nil {
			return
		}

		keepalive := time.NewTicker(2 * keepAliveInterval)
		defer keepalive.Stop()
		for {
			select {
			case data := <-q:
				if err := sseData(w, data); err != nil {
					return
				}
			case <-keepalive.C:
				if err := sseComment(w, "keepalive"); err != nil {
					return
				}
			}
		}
	}))

	return nil
}

func recentAnnouncements(limit int) ([]models.AnnouncementResponse, error) {
	rows, err := config.DB.Query(`
		SELECT id, title, message, sender_name, priority, is_active, created_at
		FROM announcements WHERE is_active = 'y'
		ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.AnnouncementResponse{}
	for rows.Next() {
		var a models.Announcement
		if err := rows.Scan(&a.ID, &a.Title, &a.Message, &a.SenderName, &a.Priority, &a.IsActive, &a.CreatedAt); err != nil {
			continue
		}
		list = append(list, models.ToAnnouncementResponse(a))
	}
	return list, nil
}

func getAnnouncementByID(id int64) (models.Announcement, error) {
	var a models.Announcement
	err := config.DB.QueryRow(`
		SELECT id, title, message, sender_name, priority, is_active, created_at
		FROM announcements WHERE id = ?
	`, id).Scan(&a.ID, &a.Title, &a.Message, &a.SenderName, &a.Priority, &a.IsActive, &a.CreatedAt)
	return a, err
}
