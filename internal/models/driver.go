package models

import "database/sql"

/*
|--------------------------------------------------------------------------
| DATABASE MODEL (INTERNAL)
|--------------------------------------------------------------------------
*/
type Driver struct {
	ID             int64
	Name           string
	IsOnline       string
	CurrentOrderID sql.NullInt64
}

// DriverLocation itu append-only: baris lama tidak pernah diubah,
// "lokasi sekarang" = baris dengan id terbesar untuk satu order.
type DriverLocation struct {
	ID        int64
	DriverID  int64
	OrderID   int64
	Latitude  float64
	Longitude float64
}

/*
|--------------------------------------------------------------------------
| REQUEST
|--------------------------------------------------------------------------
*/
type CreateDriverRequest struct {
	Name           string `json:"name"`
	IsOnline       *bool  `json:"is_online"`
	CurrentOrderID *int64 `json:"current_order_id"`
}

// Latitude/longitude sengaja interface{}: nilai non-angka harus jadi error
// invalid_location_format, bukan bad request generik dari body parser.
type UpdateLocationRequest struct {
	Latitude  interface{} `json:"latitude"`
	Longitude interface{} `json:"longitude"`
	OrderID   *int64      `json:"order_id"`
}

type SetOnlineRequest struct {
	IsOnline       *bool  `json:"is_online"`
	CurrentOrderID *int64 `json:"current_order_id"`
}

/*
|--------------------------------------------------------------------------
| RESPONSE DTO
|--------------------------------------------------------------------------
*/
type DriverResponse struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	IsOnline       bool   `json:"is_online"`
	CurrentOrderID *int64 `json:"current_order_id"`
}

// LocationPoint dipakai dua arah: response API dan payload broadcast SSE.
type LocationPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

/*
|--------------------------------------------------------------------------
| MAPPER
|--------------------------------------------------------------------------
*/
func ToDriverResponse(d Driver) DriverResponse {
	var orderID *int64
	if d.CurrentOrderID.Valid {
		orderID = &d.CurrentOrderID.Int64
	}

	return DriverResponse{
		ID:             d.ID,
		Name:           d.Name,
		IsOnline:       d.IsOnline == "y",
		CurrentOrderID: orderID,
	}
}
