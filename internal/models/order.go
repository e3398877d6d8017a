package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

/*
|--------------------------------------------------------------------------
| DATABASE MODEL (INTERNAL)
|--------------------------------------------------------------------------
| Kolom items disimpan sebagai JSON string di kolom TEXT
*/
type Order struct {
	ID                int64
	CustomerID        int64
	Status            string
	DeliveryAddress   sql.NullString
	Items             sql.NullString
	TotalAmount       sql.NullFloat64
	RestaurantName    sql.NullString
	EstimatedDelivery sql.NullTime
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

/*
|--------------------------------------------------------------------------
| REQUEST
|--------------------------------------------------------------------------
*/
type CreateOrderRequest struct {
	CustomerID      *int64          `json:"customer_id"`
	Items           json.RawMessage `json:"items"`
	DeliveryAddress string          `json:"delivery_address"`
	TotalAmount     *float64        `json:"total_amount"`
	Status          string          `json:"status"`
	RestaurantName  string          `json:"restaurant_name"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

/*
|--------------------------------------------------------------------------
| RESPONSE DTO
|--------------------------------------------------------------------------
*/
type OrderResponse struct {
	ID                int64           `json:"id"`
	CustomerID        int64           `json:"customer_id"`
	Status            string          `json:"status"`
	DeliveryAddress   *string         `json:"delivery_address"`
	Items             json.RawMessage `json:"items"`
	TotalAmount       *float64        `json:"total_amount"`
	RestaurantName    *string         `json:"restaurant_name"`
	EstimatedDelivery *string         `json:"estimated_delivery"`
	CreatedAt         string          `json:"created_at"`
	UpdatedAt         string          `json:"updated_at"`
}

// OrderEvent adalah payload yang dipublish ke channel "orders" setelah
// order berhasil disimpan.
type OrderEvent struct {
	OrderID         int64           `json:"order_id"`
	CustomerID      int64           `json:"customer_id"`
	Status          string          `json:"status"`
	DeliveryAddress *string         `json:"delivery_address"`
	TotalAmount     *float64        `json:"total_amount"`
	RestaurantName  *string         `json:"restaurant_name"`
	CreatedAt       string          `json:"created_at"`
	Items           json.RawMessage `json:"items"`
}

/*
|--------------------------------------------------------------------------
| MAPPER
|--------------------------------------------------------------------------
*/
func ToOrderResponse(o Order) OrderResponse {
	resp := OrderResponse{
		ID:         o.ID,
		CustomerID: o.CustomerID,
		Status:     o.Status,
		Items:      json.RawMessage("[]"),
		CreatedAt:  o.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  o.UpdatedAt.UTC().Format(time.RFC3339),
	}

	if o.DeliveryAddress.Valid {
		resp.DeliveryAddress = &o.DeliveryAddress.String
	}
	if o.Items.Valid && o.Items.String != "" {
		resp.Items = json.RawMessage(o.Items.String)
	}
	if o.TotalAmount.Valid {
		resp.TotalAmount = &o.TotalAmount.Float64
	}
	if o.RestaurantName.Valid {
		resp.RestaurantName = &o.RestaurantName.String
	}
	if o.EstimatedDelivery.Valid {
		s := o.EstimatedDelivery.Time.UTC().Format(time.RFC3339)
		resp.EstimatedDelivery = &s
	}

	return resp
}

func ToOrderEvent(o Order) OrderEvent {
	resp := ToOrderResponse(o)
	return OrderEvent{
		OrderID:         resp.ID,
		CustomerID:      resp.CustomerID,
		Status:          resp.Status,
		DeliveryAddress: resp.DeliveryAddress,
		TotalAmount:     resp.TotalAmount,
		RestaurantName:  resp.RestaurantName,
		CreatedAt:       resp.CreatedAt,
		Items:           resp.Items,
	}
}
