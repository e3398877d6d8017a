package handler

import (
	"bufio"
	"bytes"
	"testing"
)

func frame(t *testing.T, write func(w *bufio.Writer) error) string {
	t.Helper()
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	if err := write(w); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

func TestSSEDataFraming(t *testing.T) {
	got := frame(t, func(w *bufio.Writer) error {
		return sseData(w, `{"latitude":1.5,"longitude":2.5}`)
	})
	want := "data: {\"latitude\":1.5,\"longitude\":2.5}\n\n"
	if got != want {
		t.Errorf("got %q, mau %q", got, want)
	}
}

func TestSSEEventFraming(t *testing.T) {
	got := frame(t, func(w *bufio.Writer) error {
		return sseEvent(w, "error", `{"error":"redis_lost"}`)
	})
	want := "event: error\ndata: {\"error\":\"redis_lost\"}\n\n"
	if got != want {
		t.Errorf("got %q, mau %q", got, want)
	}
}

func TestSSECommentIsKeepAliveOnly(t *testing.T) {
	got := frame(t, func(w *bufio.Writer) error {
		return sseComment(w, "keepalive")
	})
	if got != ": keepalive\n\n" {
		t.Errorf("got %q", got)
	}
}

func TestSSERetryHint(t *testing.T) {
	got := frame(t, func(w *bufio.Writer) error {
		return sseRetry(w, 3000)
	})
	if got != "retry: 3000\n\n" {
		t.Errorf("got %q", got)
	}
}

func TestToFloatCoercion(t *testing.T) {
	if v, ok := toFloat(float64(3.25)); !ok || v != 3.25 {
		t.Error("angka JSON harus lolos")
	}
	if v, ok := toFloat("41.01"); !ok || v != 41.01 {
		t.Error("string angka harus lolos")
	}
	if _, ok := toFloat("utara"); ok {
		t.Error("string non-angka harus gagal")
	}
	if _, ok := toFloat([]interface{}{1}); ok {
		t.Error("tipe lain harus gagal")
	}
}
