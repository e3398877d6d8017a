package handler

import (
	"database/sql"
	"strings"

	"backend-delivery/internal/config"
	"backend-delivery/internal/logger"
	"backend-delivery/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

func Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid_request_body",
		})
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"error":   "missing_required_fields",
		})
	}

	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		role = "customer"
	}

	var exists int
	err := config.DB.QueryRow(`SELECT COUNT(*) FROM users WHERE email = ?`, req.Email).Scan(&exists)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "db_error",
		})
	}
	if exists > 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"error":   "email_already_registered",
		})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "hash_failed",
		})
	}

	var phone interface{}
	if req.Phone != "" {
		phone = req.Phone
	}

	result, err := config.DB.Exec(`
		INSERT INTO users (email, password, first_name, last_name, phone, role, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 'y', NOW(), NOW())
	`, req.Email, string(hashed), req.FirstName, req.LastName, phone, role)
	if err != nil {
		// Race dengan insert lain di email yang sama tetap jadi 422, bukan 500
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"error":   "email_already_registered",
		})
	}

	userID, _ := result.LastInsertId()
	nama := req.FirstName + " " + req.LastName
	token, err := config.GenerateToken(userID, req.Email, nama, role)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "token_failed",
		})
	}

	logger.WithField("email", req.Email).Info("user registered")

	user, _ := getUserByID(userID)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":      true,
		"user":         models.ToUserResponse(user),
		"access_token": token,
	})
}

func Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid_request_body",
		})
	}

	if req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "email_password_required",
		})
	}

	var user models.User
	query := `SELECT id, email, password, first_name, last_name, phone, role, is_active
	          FROM users WHERE email = ?`
	err := config.DB.QueryRow(query, strings.ToLower(req.Email)).Scan(
		&user.ID,
		&user.Email,
		&user.Password,
		&user.FirstName,
		&user.LastName,
		&user.Phone,
		&user.Role,
		&user.IsActive,
	)

	if err == sql.ErrNoRows {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "invalid_credentials",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "db_error",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "invalid_credentials",
		})
	}

	if user.IsActive != "y" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "account_deactivated",
		})
	}

	nama := user.FirstName + " " + user.LastName
	token, err := config.GenerateToken(user.ID, user.Email, nama, user.Role)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "token_failed",
		})
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"user":         models.ToUserResponse(user),
		"access_token": token,
	})
}

func GetProfile(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int64)

	user, err := getUserByID(userID)
	if err == sql.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "user_not_found",
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
		"user":    models.ToUserResponse(user),
	})
}

func UpdateProfile(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int64)

	var req models.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid_request_body",
		})
	}

	query := "UPDATE users SET updated_at = NOW()"
	args := []interface{}{}

	if req.FirstName != "" {
		query += ", first_name = ?"
		args = append(args, req.FirstName)
	}
	if req.LastName != "" {
		query += ", last_name = ?"
		args = append(args, req.LastName)
	}
	if req.Phone != "" {
		query += ", phone = ?"
		args = append(args, req.Phone)
	}

	query += " WHERE id = ?"
	args = append(args, userID)

	if _, err := config.DB.Exec(query, args...); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "db_error",
		})
	}

	user, err := getUserByID(userID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "user_not_found",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    models.ToUserResponse(user),
	})
}

func getUserByID(id int64) (models.User, error) {
	var user models.User
	query := `SELECT id, email, password, first_name, last_name, phone, role, is_active
	          FROM users WHERE id = ?`
	err := config.DB.QueryRow(query, id).Scan(
		&user.ID,
		&user.Email,
		&user.Password,
		&user.FirstName,
		&user.LastName,
		&user.Phone,
		&user.Role,
		&user.IsActive,
	)
	return user, err
}
