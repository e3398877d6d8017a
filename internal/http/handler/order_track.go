package handler

import (
	"database/sql"

	"backend-delivery/internal/config"
	"backend-delivery/internal/models"
	"backend-delivery/internal/realtime"

	"github.com/gofiber/fiber/v2"
)

// TrackOrder itu long-poll: request digantung sampai status order berubah
// atau timeout (clamp 60 detik). Client kirim last_status yang dia tahu;
// tanpa last_status (panggilan pertama) langsung dijawab.
func TrackOrder(c *fiber.Ctx) error {
	orderID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid_order_id",
		})
	}

	var lastStatus *string
	if s := c.Query("last_status"); s != "" {
		lastStatus = &s
	}
	timeout := realtime.ClampTrackTimeout(c.QueryInt("timeout", 30))

	fetch := func() (string, error) {
		var status string
		err := config.DB.QueryRow(`SELECT status FROM orders WHERE id = ?`, orderID).Scan(&status)
		return status, err
	}

	_, changed, err := realtime.WaitForStatusChange(c.Context(), fetch, lastStatus, timeout)
	if err == sql.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "order_not_found",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "db_error",
		})
	}

	// Snapshot penuh buat response (wait cuma mantau kolom status)
	order, err := getOrderByID(int64(orderID))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "order_not_found",
		})
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       models.ToOrderResponse(order),
		"has_update": changed,
	})
}
