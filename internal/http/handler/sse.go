package handler

import (
	"bufio"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

/*
|--------------------------------------------------------------------------
| SSE Helpers
|--------------------------------------------------------------------------
| Framing Server-Sent-Events di atas body stream writer fasthttp.
| Flush() error = client sudah putus, loop stream harus berhenti.
*/

func setSSEHeaders(c *fiber.Ctx) {
	c.Set("Content-Type", "text/event-stream; charset=utf-8")
	c.Set("Cache-Control", "no-cache, no-transform")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")
}

// sseData satu event default (type "message"), satu payload per event.
func sseData(w *bufio.Writer, data string) error {
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	return w.Flush()
}

// sseEvent event bertipe, dipakai buat error satu kali sebelum close.
func sseEvent(w *bufio.Writer, event, data string) error {
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	return w.Flush()
}

// sseComment baris komentar, dipakai sebagai keep-alive.
func sseComment(w *bufio.Writer, comment string) error {
	if _, err := fmt.Fprintf(w, ": %s\n\n", comment); err != nil {
		return err
	}
	return w.Flush()
}

// sseRetry hint reconnect buat EventSource client.
func sseRetry(w *bufio.Writer, ms int) error {
	if _, err := fmt.Fprintf(w, "retry: %d\n\n", ms); err != nil {
		return err
	}
	return w.Flush()
}
