package handler

import (
	"database/sql"
	"encoding/json"

	"backend-delivery/internal/config"
	"backend-delivery/internal/helper"
	"backend-delivery/internal/logger"
	"backend-delivery/internal/models"
	"backend-delivery/internal/realtime"

	"github.com/gofiber/fiber/v2"
)

func CreateOrder(c *fiber.Ctx) error {
	var req models.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid_request_body",
		})
	}

	missing := []string{}
	if req.CustomerID == nil {
		missing = append(missing, "customer_id")
	}
	if len(req.Items) == 0 {
		missing = append(missing, "items")
	}
	if req.DeliveryAddress == "" {
		missing = append(missing, "delivery_address")
	}
	if req.TotalAmount == nil {
		missing = append(missing, "total_amount")
	}
	if len(missing) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "missing_fields",
			"fields":  missing,
		})
	}

	var items []json.RawMessage
	if err := json.Unmarshal(req.Items, &items); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "items_must_be_list",
		})
	}

	status := req.Status
	if status == "" {
		status = "confirmed"
	}
	if !helper.IsValidOrderStatus(status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid_status",
			"valid":   helper.OrderStatuses,
		})
	}

	// Customer harus ada duluan biar FK error tidak bocor jadi 500
	var exists int
	if err := config.DB.QueryRow(`SELECT COUNT(*) FROM users WHERE id = ?`, *req.CustomerID).Scan(&exists); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "db_error",
		})
	}
	if exists == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "customer_not_found",
		})
	}

	var restaurant interface{}
	if req.RestaurantName != "" {
		restaurant = req.RestaurantName
	}

	result, err := config.DB.Exec(`
		INSERT INTO orders (customer_id, status, delivery_address, items, total_amount, restaurant_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, NOW(), NOW())
	`, *req.CustomerID, status, req.DeliveryAddress, string(req.Items), *req.TotalAmount, restaurant)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "create_failed",
		})
	}

	orderID, _ := result.LastInsertId()
	order, err := getOrderByID(orderID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "db_error",
		})
	}

	// Write sudah commit — publish best-effort, gagal cuma di-log
	if payload, err := json.Marshal(models.ToOrderEvent(order)); err == nil {
		realtime.Publish(realtime.OrdersChannel, payload)
	} else {
		logger.WithError(err).Warn("marshal order event gagal")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    models.ToOrderResponse(order),
	})
}

func GetOrder(c *fiber.Ctx) error {
	orderID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid_order_id",
		})
	}

	order, err := getOrderByID(int64(orderID))
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

	return c.JSON(fiber.Map{
		"success": true,
		"data":    models.ToOrderResponse(order),
	})
}

func GetCustomerOrders(c *fiber.Ctx) error {
	customerID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid_customer_id",
		})
	}

	return listOrders(c, `
		SELECT id, customer_id, status, delivery_address, items, total_amount, restaurant_name, estimated_delivery, created_at, updated_at
		FROM orders WHERE customer_id = ? ORDER BY created_at DESC
	`, customerID)
}

// GetAllOrders dipakai dashboard employee.
func GetAllOrders(c *fiber.Ctx) error {
	return listOrders(c, `
		SELECT id, customer_id, status, delivery_address, items, total_amount, restaurant_name, estimated_delivery, created_at, updated_at
		FROM orders ORDER BY created_at DESC
	`)
}

func UpdateOrderStatus(c *fiber.Ctx) error {
	orderID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid_order_id",
		})
	}

	var req models.UpdateOrderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid_request_body",
		})
	}

	// Cuma cek keanggotaan enum. Urutan transisi TIDAK divalidasi.
	if !helper.IsValidOrderStatus(req.Status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid_status",
			"valid":   helper.OrderStatuses,
		})
	}

	result, err := config.DB.Exec(`
		UPDATE orders SET status = ?, updated_at = NOW() WHERE id = ?
	`, req.Status, orderID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "db_error",
		})
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		// Bisa juga status sama persis — bedakan dengan cek keberadaan
		var exists int
		if err := config.DB.QueryRow(`SELECT COUNT(*) FROM orders WHERE id = ?`, orderID).Scan(&exists); err != nil || exists == 0 {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "order_not_found",
			})
		}
	}

	order, err := getOrderByID(int64(orderID))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "order_not_found",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    models.ToOrderResponse(order),
	})
}

func listOrders(c *fiber.Ctx, query string, args ...interface{}) error {
	rows, err := config.DB.Query(query, args...)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "db_error",
		})
	}
	defer rows.Close()

	orders := []models.OrderResponse{}
	for rows.Next() {
		var o models.Order
		if err := scanOrder(rows.Scan, &o); err != nil {
			continue
		}
		orders = append(orders, models.ToOrderResponse(o))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
	})
}

func getOrderByID(id int64) (models.Order, error) {
	var o models.Order
	err := scanOrder(config.DB.QueryRow(`
		SELECT id, customer_id, status, delivery_address, items, total_amount, restaurant_name, estimated_delivery, created_at, updated_at
		FROM orders WHERE id = ?
	`, id).Scan, &o)
	return o, err
}

func scanOrder(scan func(dest ...interface{}) error, o *models.Order) error {
	return scan(
		&o.ID,
		&o.CustomerID,
		&o.Status,
		&o.DeliveryAddress,
		&o.Items,
		&o.TotalAmount,
		&o.RestaurantName,
		&o.EstimatedDelivery,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
}
