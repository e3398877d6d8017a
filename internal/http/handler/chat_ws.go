package handler

import (
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"backend-delivery/internal/config"
	"backend-delivery/internal/logger"
	"backend-delivery/internal/models"
	"backend-delivery/internal/realtime"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

/*
|--------------------------------------------------------------------------
| Chat Connection State
|--------------------------------------------------------------------------
*/

type chatClient struct {
	conn      *websocket.Conn
	room      *realtime.RoomClient
	writeMux  sync.Mutex
	closeChan chan struct{}
	closed    bool
	id        string

	// chat_id -> username yang lagi ngetik lewat koneksi ini;
	// dibersihkan waktu disconnect supaya indikator tidak nyangkut
	typingIn map[int64]string
}

func (cl *chatClient) markClosed() bool {
	cl.writeMux.Lock()
	defer cl.writeMux.Unlock()
	if cl.closed {
		return false
	}
	cl.closed = true
	close(cl.closeChan)
	return true
}

/*
|--------------------------------------------------------------------------
| WebSocket Handler
|--------------------------------------------------------------------------
*/

// ChatWebSocket jalanin satu koneksi chat full-duplex. Pesan masuk berupa
// JSON ber-tag type (customer_handshake, agent_subscribe, get_chats,
// open_chat, send_message, typing); pesan keluar didorong lewat send buffer
// milik room client, ditulis ke socket oleh satu goroutine writer.
func ChatWebSocket(c *websocket.Conn) {
	clientID := uuid.NewString()
	client := &chatClient{
		conn:      c,
		room:      realtime.NewRoomClient(clientID),
		closeChan: make(chan struct{}),
		id:        clientID,
		typingIn:  make(map[int64]string),
	}

	log := logger.WithField("client", clientID)
	log.Info("chat client connected")

	defer func() {
		// Teardown wajib jalan di semua jalur keluar: lepas semua room,
		// bersihkan typing state, baru tutup socket
		client.markClosed()
		realtime.Rooms.LeaveAll(client.room)
		clearTypingFor(client)
		_ = c.Close()
		log.Info("chat client disconnected")
	}()

	c.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.SetPongHandler(func(string) error {
		c.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Writer: satu-satunya yang nulis ke socket
	go func() {
		for {
			select {
			case payload := <-client.room.Send:
				client.writeMux.Lock()
				if client.closed {
					client.writeMux.Unlock()
					return
				}
				c.SetWriteDeadline(time.Now().Add(5 * time.Second))
				err := c.WriteMessage(websocket.TextMessage, payload)
				client.writeMux.Unlock()
				if err != nil {
					log.WithError(err).Debug("chat write error")
					return
				}
			case <-client.closeChan:
				return
			}
		}
	}()

	// Ping ticker setiap 20 detik
	ticker := time.NewTicker(20 * time.Second)
	defer ticker.Stop()
	go func() {
		for {
			select {
			case <-ticker.C:
				client.writeMux.Lock()
				if client.closed {
					client.writeMux.Unlock()
					return
				}
				c.SetWriteDeadline(time.Now().Add(5 * time.Second))
				err := c.WriteMessage(websocket.PingMessage, nil)
				client.writeMux.Unlock()
				if err != nil {
					return
				}
			case <-client.closeChan:
				return
			}
		}
	}()

	sendSelf(client, fiber.Map{"type": "connected", "message": "connected"})

	// Read loop: tiap pesan diproses berurutan per koneksi
	for {
		_, raw, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure,
			) {
				log.WithError(err).Debug("chat unexpected close")
			}
			return
		}

		var msg models.ChatInbound
		if err := json.Unmarshal(raw, &msg); err != nil {
			sendSelf(client, fiber.Map{"type": "error", "error": "invalid_message"})
			continue
		}

		switch msg.Type {
		case "customer_handshake":
			handleHandshake(client, msg)
		case "agent_subscribe":
			handleAgentSubscribe(client)
		case "get_chats":
			sendSelf(client, fiber.Map{"type": "chats_list", "chats": listChats()})
		case "open_chat":
			handleOpenChat(client, msg)
		case "send_message":
			handleSendMessage(client, msg)
		case "typing":
			handleTyping(client, msg)
		default:
			sendSelf(client, fiber.Map{"type": "error", "error": "unknown_message_type"})
		}
	}
}

/*
|--------------------------------------------------------------------------
| Message Handlers
|--------------------------------------------------------------------------
*/

func handleHandshake(client *chatClient, msg models.ChatInbound) {
	username := msg.User
	if username == "" {
		username = "anonymous"
	}

	user, err := getOrCreateChatUser(username, "customer")
	if err != nil {
		sendSelf(client, fiber.Map{"type": "error", "error": "db_error"})
		return
	}

	// Satu session aktif per customer: lookup-or-create
	var session models.ChatSession
	newChat := false
	err = config.DB.QueryRow(`
		SELECT id, customer_user_id, created_at, last_activity_at
		FROM chat_sessions WHERE customer_user_id = ? LIMIT 1
	`, user.ID).Scan(&session.ID, &session.CustomerUserID, &session.CreatedAt, &session.LastActivityAt)
	if err == sql.ErrNoRows {
		result, err := config.DB.Exec(`
			INSERT INTO chat_sessions (customer_user_id, created_at, last_activity_at)
			VALUES (?, NOW(), NOW())
		`, user.ID)
		if err != nil {
			sendSelf(client, fiber.Map{"type": "error", "error": "db_error"})
			return
		}
		session.ID, _ = result.LastInsertId()
		newChat = true
	} else if err != nil {
		sendSelf(client, fiber.Map{"type": "error", "error": "db_error"})
		return
	}

	realtime.Rooms.Join(roomName(session.ID), client.room)

	sendSelf(client, fiber.Map{
		"type":     "customer_chat",
		"chat_id":  session.ID,
		"history":  chatHistory(session.ID),
		"user":     username,
		"new_chat": newChat,
	})

	if newChat {
		broadcastRoom(realtime.AgentsRoom, fiber.Map{
			"type":     "new_chat",
			"chat_id":  session.ID,
			"customer": username,
		}, nil)
	}
}

func handleAgentSubscribe(client *chatClient) {
	realtime.Rooms.Join(realtime.AgentsRoom, client.room)
	sendSelf(client, fiber.Map{"type": "chats_list", "chats": listChats()})
}

func handleOpenChat(client *chatClient, msg models.ChatInbound) {
	chatID := int64(msg.ChatID)
	if chatID == 0 {
		return
	}

	// Session harus sudah ada — chat_id asing diabaikan diam-diam
	var exists int
	if err := config.DB.QueryRow(`SELECT COUNT(*) FROM chat_sessions WHERE id = ?`, chatID).Scan(&exists); err != nil || exists == 0 {
		return
	}

	realtime.Rooms.Join(roomName(chatID), client.room)
	sendSelf(client, fiber.Map{
		"type":    "chat_opened",
		"chat_id": chatID,
		"history": chatHistory(chatID),
	})
}

func handleSendMessage(client *chatClient, msg models.ChatInbound) {
	chatID := int64(msg.ChatID)
	if chatID == 0 {
		return
	}

	// Teks kosong / spasi doang = no-op, bukan error
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	role := msg.Role
	if role == "" {
		role = "customer"
	}
	username := msg.User
	if username == "" {
		username = "anonymous"
	}

	user, err := getOrCreateChatUser(username, role)
	if err != nil {
		sendSelf(client, fiber.Map{"type": "error", "error": "db_error"})
		return
	}

	var exists int
	if err := config.DB.QueryRow(`SELECT COUNT(*) FROM chat_sessions WHERE id = ?`, chatID).Scan(&exists); err != nil || exists == 0 {
		return
	}

	result, err := config.DB.Exec(`
		INSERT INTO chat_messages (chat_id, sender_user_id, role, text, created_at)
		VALUES (?, ?, ?, ?, NOW())
	`, chatID, user.ID, role, text)
	if err != nil {
		sendSelf(client, fiber.Map{"type": "error", "error": "db_error"})
		return
	}
	messageID, _ := result.LastInsertId()

	if _, err := config.DB.Exec(`
		UPDATE chat_sessions SET last_activity_at = NOW() WHERE id = ?
	`, chatID); err != nil {
		logger.WithError(err).Warn("update last_activity_at gagal")
	}

	payload := models.ChatMessageResponse{
		ID:        messageID,
		ChatID:    chatID,
		SenderID:  user.ID,
		Sender:    displayName(user.Email),
		Role:      role,
		Text:      text,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	// Broadcast ke room dulu (termasuk pengirim), lalu ack khusus pengirim
	broadcastRoom(roomName(chatID), fiber.Map{"type": "message", "payload": payload}, nil)
	sendSelf(client, fiber.Map{
		"type":       "delivered",
		"chat_id":    chatID,
		"message_id": messageID,
	})
}

func handleTyping(client *chatClient, msg models.ChatInbound) {
	chatID := int64(msg.ChatID)
	if chatID == 0 {
		return
	}
	username := msg.User
	if username == "" {
		username = "anonymous"
	}

	others := realtime.Typing.Set(chatID, username, msg.IsTyping)
	if msg.IsTyping {
		client.typingIn[chatID] = username
	} else {
		delete(client.typingIn, chatID)
	}

	// Pengirim tidak ikut dapat typing_status miliknya sendiri
	broadcastRoom(roomName(chatID), fiber.Map{
		"type":    "typing_status",
		"chat_id": chatID,
		"users":   others,
	}, client.room)
}

// clearTypingFor: hardening disconnect — status typing koneksi ini dicabut
// dan room dikasih tahu set terbarunya.
func clearTypingFor(client *chatClient) {
	for chatID, username := range client.typingIn {
		changed := realtime.Typing.ClearUser(username, []int64{chatID})
		for id, others := range changed {
			broadcastRoom(roomName(id), fiber.Map{
				"type":    "typing_status",
				"chat_id": id,
				"users":   others,
			}, client.room)
		}
	}
}

/*
|--------------------------------------------------------------------------
| Helpers
|--------------------------------------------------------------------------
*/

func roomName(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

func sendSelf(client *chatClient, payload fiber.Map) {
	b, err := json.Marshal(payload)
	if err != nil {
		return
	}
	select {
	case client.room.Send <- b:
	default:
	}
}

func broadcastRoom(room string, payload fiber.Map, except *realtime.RoomClient) {
	b, err := json.Marshal(payload)
	if err != nil {
		return
	}
	realtime.Rooms.Broadcast(room, b, except)
}

// getOrCreateChatUser: username dianggap email kalau mengandung '@', selain
// itu dibikinkan email sintetis. User belum ada = dibuat diam-diam
// (upsert-on-first-touch, sama seperti driver).
func getOrCreateChatUser(username, role string) (models.User, error) {
	email := strings.ToLower(username)
	if !strings.Contains(email, "@") {
		email = email + "@local.test"
	}

	var user models.User
	err := config.DB.QueryRow(`
		SELECT id, email, first_name, last_name, role FROM users WHERE email = ?
	`, email).Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.Role)
	if err == nil {
		return user, nil
	}
	if err != sql.ErrNoRows {
		return user, err
	}

	first := strings.SplitN(username, "@", 2)[0]
	if len(first) > 30 {
		first = first[:30]
	}
	if first == "" {
		first = "User"
	}
	last := strings.ToUpper(role[:1]) + role[1:]

	result, err := config.DB.Exec(`
		INSERT INTO users (email, password, first_name, last_name, role, is_active, created_at, updated_at)
		VALUES (?, 'chat-only', ?, ?, ?, 'y', NOW(), NOW())
	`, email, first, last, role)
	if err != nil {
		return user, err
	}

	user.ID, _ = result.LastInsertId()
	user.Email = email
	user.FirstName = first
	user.LastName = last
	user.Role = role
	return user, nil
}

func displayName(email string) string {
	return strings.SplitN(email, "@", 2)[0]
}

func chatHistory(chatID int64) []models.ChatMessageResponse {
	rows, err := config.DB.Query(`
		SELECT m.id, m.chat_id, m.sender_user_id, u.email, m.role, m.text, m.created_at
		FROM chat_messages m
		JOIN users u ON u.id = m.sender_user_id
		WHERE m.chat_id = ?
		ORDER BY m.id ASC
	`, chatID)
	if err != nil {
		return []models.ChatMessageResponse{}
	}
	defer rows.Close()

	history := []models.ChatMessageResponse{}
	for rows.Next() {
		var (
			m     models.ChatMessage
			email string
		)
		if err := rows.Scan(&m.ID, &m.ChatID, &m.SenderUserID, &email, &m.Role, &m.Text, &m.CreatedAt); err != nil {
			continue
		}
		history = append(history, models.ChatMessageResponse{
			ID:        m.ID,
			ChatID:    m.ChatID,
			SenderID:  m.SenderUserID,
			Sender:    displayName(email),
			Role:      m.Role,
			Text:      m.Text,
			CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return history
}

// listChats: ringkasan semua session, paling baru aktif duluan.
func listChats() []models.ChatSummary {
	rows, err := config.DB.Query(`
		SELECT s.id, u.email, s.created_at, s.last_activity_at,
			COALESCE((SELECT m.text FROM chat_messages m WHERE m.chat_id = s.id ORDER BY m.id DESC LIMIT 1), ''),
			COALESCE((SELECT m.created_at FROM chat_messages m WHERE m.chat_id = s.id ORDER BY m.id DESC LIMIT 1), s.created_at)
		FROM chat_sessions s
		JOIN users u ON u.id = s.customer_user_id
		ORDER BY s.last_activity_at DESC
	`)
	if err != nil {
		return []models.ChatSummary{}
	}
	defer rows.Close()

	chats := []models.ChatSummary{}
	for rows.Next() {
		var (
			s        models.ChatSession
			email    string
			lastText string
			lastTs   time.Time
		)
		if err := rows.Scan(&s.ID, &email, &s.CreatedAt, &s.LastActivityAt, &lastText, &lastTs); err != nil {
			continue
		}
		chats = append(chats, models.ChatSummary{
			ChatID:    s.ID,
			Customer:  displayName(email),
			CreatedTs: s.CreatedAt.UTC().Format(time.RFC3339),
			LastText:  lastText,
			LastTs:    lastTs.UTC().Format(time.RFC3339),
		})
	}
	return chats
}
