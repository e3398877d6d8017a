package models

import (
	"encoding/json"
	"testing"
)

func TestChatInboundChatIDNumber(t *testing.T) {
	var msg ChatInbound
	if err := json.Unmarshal([]byte(`{"type":"open_chat","chat_id":42}`), &msg); err != nil {
		t.Fatalf("unmarshal angka gagal: %v", err)
	}
	if msg.ChatID != 42 {
		t.Errorf("chat_id = %d, mau 42", msg.ChatID)
	}
}

func TestChatInboundChatIDString(t *testing.T) {
	// Client lama ngirim chat_id sebagai string, harus tetap diterima
	var msg ChatInbound
	if err := json.Unmarshal([]byte(`{"type":"typing","chat_id":"42","user":"budi","is_typing":true}`), &msg); err != nil {
		t.Fatalf("unmarshal string angka gagal: %v", err)
	}
	if msg.ChatID != 42 {
		t.Errorf("chat_id = %d, mau 42", msg.ChatID)
	}
}

func TestChatInboundChatIDAbsent(t *testing.T) {
	for _, raw := range []string{
		`{"type":"send_message"}`,
		`{"type":"send_message","chat_id":null}`,
		`{"type":"send_message","chat_id":""}`,
	} {
		var msg ChatInbound
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			t.Fatalf("unmarshal %s gagal: %v", raw, err)
		}
		if msg.ChatID != 0 {
			t.Errorf("%s: chat_id = %d, mau 0", raw, msg.ChatID)
		}
	}
}

func TestChatInboundChatIDBogus(t *testing.T) {
	var msg ChatInbound
	if err := json.Unmarshal([]byte(`{"type":"open_chat","chat_id":"abc"}`), &msg); err == nil {
		t.Error("chat_id non-angka harus error, bukan diam-diam jadi 0")
	}
}
