package models

import (
	"strconv"
	"strings"
	"time"
)

/*
|--------------------------------------------------------------------------
| DATABASE MODEL (INTERNAL)
|--------------------------------------------------------------------------
| Satu customer = satu session (lookup-or-create di handshake).
| Message append-only, urut berdasarkan id ASC.
*/
type ChatSession struct {
	ID             int64
	CustomerUserID int64
	CreatedAt      time.Time
	LastActivityAt time.Time
}

type ChatMessage struct {
	ID           int64
	ChatID       int64
	SenderUserID int64
	Role         string // customer | agent
	Text         string
	CreatedAt    time.Time
}

/*
|--------------------------------------------------------------------------
| WEBSOCKET MESSAGE (INBOUND)
|--------------------------------------------------------------------------
| Satu envelope untuk semua tipe pesan masuk, dibedakan lewat field type.
| Field yang tidak relevan untuk satu tipe dibiarkan kosong.
*/
type ChatInbound struct {
	Type     string `json:"type"` // customer_handshake, agent_subscribe, get_chats, open_chat, send_message, typing
	User     string `json:"user"`
	ChatID   ChatID `json:"chat_id"`
	Role     string `json:"role"`
	Text     string `json:"text"`
	IsTyping bool   `json:"is_typing"`
}

// ChatID terima angka JSON maupun string angka ("42") — client lama ngirim
// chat_id sebagai string. null dan string kosong dianggap 0 (chat_id absen).
type ChatID int64

func (c *ChatID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*c = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*c = ChatID(v)
	return nil
}

/*
|--------------------------------------------------------------------------
| RESPONSE DTO
|--------------------------------------------------------------------------
*/
type ChatMessageResponse struct {
	ID        int64  `json:"id"`
	ChatID    int64  `json:"chat_id"`
	SenderID  int64  `json:"sender_user_id"`
	Sender    string `json:"sender"`
	Role      string `json:"role"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

type ChatSummary struct {
	ChatID    int64  `json:"chat_id"`
	Customer  string `json:"customer"`
	CreatedTs string `json:"created_ts"`
	LastText  string `json:"last_text"`
	LastTs    string `json:"last_ts"`
}
