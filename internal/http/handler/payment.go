package handler

import (
	"backend-delivery/internal/config"
	"backend-delivery/internal/models"

	"github.com/gofiber/fiber/v2"
)

func AddPaymentMethod(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int64)

	var req models.PaymentMethodRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid_request_body",
		})
	}

	if req.CardType == "" || len(req.LastFour) != 4 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"error":   "invalid_payment_method",
		})
	}

	// Kartu pertama otomatis jadi default
	var count int
	if err := config.DB.QueryRow(`SELECT COUNT(*) FROM payment_methods WHERE user_id = ?`, userID).Scan(&count); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "db_error",
		})
	}

	isDefault := "n"
	if count == 0 {
		isDefault = "y"
	}

	result, err := config.DB.Exec(`
		INSERT INTO payment_methods (user_id, card_type, last_four, expires, is_default, created_at)
		VALUES (?, ?, ?, ?, ?, NOW())
	`, userID, req.CardType, req.LastFour, req.Expires, isDefault)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "db_error",
		})
	}

	id, _ := result.LastInsertId()
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"payment_method": models.PaymentMethodResponse{
			ID:        id,
			CardType:  req.CardType,
			LastFour:  req.LastFour,
			Expires:   req.Expires,
			IsDefault: isDefault == "y",
		},
	})
}

func GetPaymentMethods(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int64)

	rows, err := config.DB.Query(`
		SELECT id, user_id, card_type, last_four, expires, is_default, created_at
		FROM payment_methods WHERE user_id = ? ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "db_error",
		})
	}
	defer rows.Close()

	methods := []models.PaymentMethodResponse{}
	for rows.Next() {
		var p models.PaymentMethod
		if err := rows.Scan(&p.ID, &p.UserID, &p.CardType, &p.LastFour, &p.Expires, &p.IsDefault, &p.CreatedAt); err != nil {
			continue
		}
		methods = append(methods, models.ToPaymentMethodResponse(p))
	}

	return c.JSON(fiber.Map{
		"success":         true,
		"payment_methods": methods,
	})
}

func DeletePaymentMethod(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int64)
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid_id",
		})
	}

	result, err := config.DB.Exec(`DELETE FROM payment_methods WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "db_error",
		})
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "payment_method_not_found",
		})
	}

	return c.JSON(fiber.Map{"success": true})
}

// SetDefaultPaymentMethod sengaja last-writer-wins: dua request barengan
// tidak diserialisasi, commit terakhir yang menang.
func SetDefaultPaymentMethod(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int64)
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid_id",
		})
	}

	var exists int
	if err := config.DB.QueryRow(`
		SELECT COUNT(*) FROM payment_methods WHERE id = ? AND user_id = ?
	`, id, userID).Scan(&exists); err != nil || exists == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "payment_method_not_found",
		})
	}

	if _, err := config.DB.Exec(`
		UPDATE payment_methods SET is_default = IF(id = ?, 'y', 'n') WHERE user_id = ?
	`, id, userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "db_error",
		})
	}

	return c.JSON(fiber.Map{"success": true})
}
