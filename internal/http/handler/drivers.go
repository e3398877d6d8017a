package handler

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"backend-delivery/internal/config"
	"backend-delivery/internal/logger"
	"backend-delivery/internal/models"
	"backend-delivery/internal/realtime"

	"github.com/gofiber/fiber/v2"
)

// Order yang dipasang otomatis ke driver tanpa assignment — convenience
// untuk testing manual, nilai warisan dari desain awal.
const defaultAutoOrderID = 123

func CreateDriver(c *fiber.Ctx) error {
	var req models.CreateDriverRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid_request_body",
		})
	}

	name := req.Name
	if name == "" {
		name = "Driver"
	}
	isOnline := "y"
	if req.IsOnline != nil && !*req.IsOnline {
		isOnline = "n"
	}

	var orderID interface{}
	if req.CurrentOrderID != nil {
		orderID = *req.CurrentOrderID
	}

	result, err := config.DB.Exec(`
		INSERT INTO drivers (name, is_online, current_order_id) VALUES (?, ?, ?)
	`, name, isOnline, orderID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "db_error",
		})
	}

	id, _ := result.LastInsertId()
	driver, err := getDriverByID(id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "db_error",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"driver":  models.ToDriverResponse(driver),
	})
}

// UpdateDriverLocation: upsert-on-first-touch. Driver yang belum ada dibuat
// diam-diam, order di-assign otomatis kalau kosong. Append sample lokasi
// lalu broadcast ke subscriber stream order tersebut.
func UpdateDriverLocation(c *fiber.Ctx) error {
	driverID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid_driver_id",
		})
	}

	var req models.UpdateLocationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid_request_body",
		})
	}

	if req.Latitude == nil || req.Longitude == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "latitude_longitude_required",
		})
	}

	lat, okLat := toFloat(req.Latitude)
	lng, okLng := toFloat(req.Longitude)
	if !okLat || !okLng {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid_location_format",
		})
	}

	// Validasi range koordinat sengaja TIDAK dipasang (port dari desain
	// awal yang menonaktifkannya) — jangan ditambah diam-diam.

	driver, err := getDriverByID(int64(driverID))
	if err == sql.ErrNoRows {
		if _, err := config.DB.Exec(`
			INSERT INTO drivers (id, name, is_online) VALUES (?, ?, 'y')
		`, driverID, fmt.Sprintf("Driver %d", driverID)); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "db_error",
			})
		}
		driver, err = getDriverByID(int64(driverID))
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "db_error",
		})
	}

	if !driver.CurrentOrderID.Valid {
		orderID := int64(defaultAutoOrderID)
		if req.OrderID != nil {
			orderID = *req.OrderID
		}
		if _, err := config.DB.Exec(`
			UPDATE drivers SET current_order_id = ?, is_online = 'y' WHERE id = ?
		`, orderID, driverID); err == nil {
			driver.CurrentOrderID = sql.NullInt64{Int64: orderID, Valid: true}
		}
	}

	if !driver.CurrentOrderID.Valid {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "no_active_delivery",
		})
	}

	if _, err := config.DB.Exec(`
		INSERT INTO driver_locations (driver_id, order_id, latitude, longitude)
		VALUES (?, ?, ?, ?)
	`, driverID, driver.CurrentOrderID.Int64, lat, lng); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "save_failed",
		})
	}

	point := models.LocationPoint{Latitude: lat, Longitude: lng}
	payload, err := json.Marshal(point)
	if err == nil {
		topic := strconv.FormatInt(driver.CurrentOrderID.Int64, 10)
		realtime.Streams.Broadcast(topic, string(payload))
	} else {
		logger.WithError(err).Warn("marshal location gagal")
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"location": point,
	})
}

func SetDriverOnline(c *fiber.Ctx) error {
	driverID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid_driver_id",
		})
	}

	var req models.SetOnlineRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid_request_body",
		})
	}

	if _, err := getDriverByID(int64(driverID)); err == sql.ErrNoRows {
		if _, err := config.DB.Exec(`
			INSERT INTO drivers (id, name, is_online) VALUES (?, ?, 'n')
		`, driverID, fmt.Sprintf("Driver %d", driverID)); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "db_error",
			})
		}
	}

	if req.IsOnline != nil {
		isOnline := "n"
		if *req.IsOnline {
			isOnline = "y"
		}
		if _, err := config.DB.Exec(`UPDATE drivers SET is_online = ? WHERE id = ?`, isOnline, driverID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "db_error",
			})
		}
	}
	if req.CurrentOrderID != nil {
		if _, err := config.DB.Exec(`UPDATE drivers SET current_order_id = ? WHERE id = ?`, *req.CurrentOrderID, driverID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "db_error",
			})
		}
	}

	driver, err := getDriverByID(int64(driverID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "db_error",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"driver":  models.ToDriverResponse(driver),
	})
}

// GetDriverLocation balikin sample terakhir untuk satu order.
func GetDriverLocation(c *fiber.Ctx) error {
	orderID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid_order_id",
		})
	}

	if c.QueryInt("customer_id", 0) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "customer_id_required",
		})
	}

	point, err := currentLocation(int64(orderID))
	if err == sql.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "no_location_available",
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
		"data":    point,
	})
}

// currentLocation = sample dengan id terbesar (history tidak pernah diubah,
// id autoincrement jadi urutan recency).
func currentLocation(orderID int64) (models.LocationPoint, error) {
	var point models.LocationPoint
	err := config.DB.QueryRow(`
		SELECT latitude, longitude FROM driver_locations
		WHERE order_id = ? ORDER BY id DESC LIMIT 1
	`, orderID).Scan(&point.Latitude, &point.Longitude)
	return point, err
}

func getDriverByID(id int64) (models.Driver, error) {
	var d models.Driver
	err := config.DB.QueryRow(`
		SELECT id, name, is_online, current_order_id FROM drivers WHERE id = ?
	`, id).Scan(&d.ID, &d.Name, &d.IsOnline, &d.CurrentOrderID)
	return d, err
}

// toFloat terima angka JSON atau string angka; selain itu gagal.
func toFloat(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case string:
		f, err := strconv.ParseFloat(val, 64)
		return f, err == nil
	}
	return 0, false
}
