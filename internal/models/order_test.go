package models

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"
)

func TestToOrderResponseNullHandling(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	o := Order{
		ID:         5,
		CustomerID: 2,
		Status:     "confirmed",
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	resp := ToOrderResponse(o)
	if resp.DeliveryAddress != nil || resp.TotalAmount != nil || resp.RestaurantName != nil {
		t.Error("kolom NULL harus jadi nil di response")
	}
	if string(resp.Items) != "[]" {
		t.Errorf("items kosong harus jadi [], dapat %s", resp.Items)
	}
	if resp.CreatedAt != "2025-03-01T10:00:00Z" {
		t.Errorf("created_at = %s", resp.CreatedAt)
	}
}

func TestToOrderEventMatchesPublishShape(t *testing.T) {
	o := Order{
		ID:         9,
		CustomerID: 3,
		Status:     "preparing",
		Items:      sql.NullString{String: `["Nasi Goreng"]`, Valid: true},
		TotalAmount: sql.NullFloat64{
			Float64: 45.5,
			Valid:   true,
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	b, err := json.Marshal(ToOrderEvent(o))
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatal(err)
	}

	if decoded["order_id"].(float64) != 9 {
		t.Error("order_id tidak ikut ke event")
	}
	if decoded["status"] != "preparing" {
		t.Error("status tidak ikut ke event")
	}
	items, ok := decoded["items"].([]interface{})
	if !ok || len(items) != 1 {
		t.Errorf("items = %v, mau list satu isi", decoded["items"])
	}
}
