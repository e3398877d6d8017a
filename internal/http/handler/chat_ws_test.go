package handler

import (
	"testing"

	"backend-delivery/internal/models"
	"backend-delivery/internal/realtime"
)

func newTestChatClient(id string) *chatClient {
	return &chatClient{
		room:      realtime.NewRoomClient(id),
		closeChan: make(chan struct{}),
		id:        id,
		typingIn:  make(map[int64]string),
	}
}

func TestSendMessageBlankTextIsNoOp(t *testing.T) {
	// Teks kosong / spasi doang harus berhenti sebelum nyentuh DB:
	// tidak ada broadcast ke room, tidak ada ack delivered ke pengirim.
	sender := newTestChatClient("pengirim")
	member := realtime.NewRoomClient("anggota")
	realtime.Rooms.Join(roomName(1), member)
	t.Cleanup(func() {
		realtime.Rooms.LeaveAll(member)
		realtime.Rooms.LeaveAll(sender.room)
	})

	for _, text := range []string{"", "   ", "   \t  ", " \n "} {
		handleSendMessage(sender, models.ChatInbound{
			Type:   "send_message",
			ChatID: 1,
			User:   "budi",
			Text:   text,
		})
	}

	select {
	case got := <-member.Send:
		t.Fatalf("room dapat broadcast padahal teks kosong: %s", got)
	default:
	}
	select {
	case got := <-sender.room.Send:
		t.Fatalf("pengirim dapat ack padahal teks kosong: %s", got)
	default:
	}
}

func TestSendMessageMissingChatIDIsNoOp(t *testing.T) {
	sender := newTestChatClient("pengirim")
	t.Cleanup(func() { realtime.Rooms.LeaveAll(sender.room) })

	handleSendMessage(sender, models.ChatInbound{
		Type: "send_message",
		User: "budi",
		Text: "halo",
	})

	select {
	case got := <-sender.room.Send:
		t.Fatalf("chat_id absen harus no-op, dapat: %s", got)
	default:
	}
}
