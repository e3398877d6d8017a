package models

import (
	"database/sql"
	"time"
)

/*
|--------------------------------------------------------------------------
| DATABASE MODEL (INTERNAL)
|--------------------------------------------------------------------------
| Dipakai untuk query ke DB
*/
type User struct {
	ID        int64
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     sql.NullString
	Role      string
	IsActive  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type PaymentMethod struct {
	ID        int64
	UserID    int64
	CardType  string
	LastFour  string
	Expires   string
	IsDefault string
	CreatedAt time.Time
}

/*
|--------------------------------------------------------------------------
| REQUEST
|--------------------------------------------------------------------------
*/
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateProfileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

type PaymentMethodRequest struct {
	CardType string `json:"card_type"`
	LastFour string `json:"last_four"`
	Expires  string `json:"expires"`
}

/*
|--------------------------------------------------------------------------
| RESPONSE DTO
|--------------------------------------------------------------------------
| Dipakai untuk API response
*/
type UserResponse struct {
	ID        int64   `json:"id"`
	Email     string  `json:"email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Phone     *string `json:"phone,omitempty"`
	Role      string  `json:"role"`
}

type PaymentMethodResponse struct {
	ID        int64  `json:"id"`
	CardType  string `json:"card_type"`
	LastFour  string `json:"last_four"`
	Expires   string `json:"expires"`
	IsDefault bool   `json:"is_default"`
}

/*
|--------------------------------------------------------------------------
| MAPPER
|--------------------------------------------------------------------------
| Convert struct DB -> struct API
*/
func ToUserResponse(u User) UserResponse {
	var phone *string
	if u.Phone.Valid {
		phone = &u.Phone.String
	}

	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     phone,
		Role:      u.Role,
	}
}

func ToPaymentMethodResponse(p PaymentMethod) PaymentMethodResponse {
	return PaymentMethodResponse{
		ID:        p.ID,
		CardType:  p.CardType,
		LastFour:  p.LastFour,
		Expires:   p.Expires,
		IsDefault: p.IsDefault == "y",
	}
}
