package utils

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"cylinder-booking/database"
	"cylinder-booking/models/user"
	"cylinder-booking/types"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// HashPassword returns a bcrypt hash of the plain password.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares a bcrypt hash and a plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// GenerateToken builds and signs an HS256 JWT carrying the user id, role and
// email. TTL comes from JWT_TTL_HOURS (default 24).
func GenerateToken(u *user.User) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", fmt.Errorf("JWT_SECRET environment variable is not set")
	}

	ttlHours := 24
	if v := os.Getenv("JWT_TTL_HOURS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			ttlHours = parsed
		}
	}

	claims := jwt.MapClaims{
		"sub":   strconv.FormatUint(uint64(u.ID), 10),
		"role":  u.Role,
		"email": u.Email,
		"exp":   time.Now().Add(time.Duration(ttlHours) * time.Hour).Unix(),
		"iat":   time.Now().Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// UserIDFromClaims extracts the authenticated user's id from the claims the
// auth middleware stored in c.Locals("user").
func UserIDFromClaims(c *fiber.Ctx) (uint, error) {
	claims, ok := c.Locals("user").(jwt.MapClaims)
	if !ok {
		return 0, errors.New("invalid user claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return 0, errors.New("user id not found in token")
	}

	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return 0, errors.New("malformed user id in token")
	}

	return uint(id), nil
}

// GetUserByID loads a user row by primary key.
func GetUserByID(id uint) (*user.User, error) {
	var u user.User
	err := database.DB.First(&u, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, err
	}
	return &u, nil
}

// CurrentUser resolves the authenticated user row from request claims.
func CurrentUser(c *fiber.Ctx) (*user.User, error) {
	id, err := UserIDFromClaims(c)
	if err != nil {
		return nil, err
	}
	return GetUserByID(id)
}

// ParsePagination reads page/limit query params with sane defaults and caps.
func ParsePagination(c *fiber.Ctx) (page, limit, offset int) {
	page = c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit = c.QueryInt("limit", 10)
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit, (page - 1) * limit
}

// TotalPages computes the page count for a pagination block.
func TotalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	pages := int(total) / limit
	if int(total)%limit != 0 {
		pages++
	}
	return pages
}

var sensitiveBodyFields = regexp.MustCompile(`(?i)"(password|new_password|code)"\s*:\s*"[^"]*"`)

// CreateSanitizedLogEntry builds a request log entry with credentials masked.
func CreateSanitizedLogEntry(c *fiber.Ctx) types.LogEntry {
	body := sensitiveBodyFields.ReplaceAllString(string(c.Body()), `"$1":"***"`)

	reqHeaders := ""
	c.Request().Header.VisitAll(func(key, value []byte) {
		k := string(key)
		v := string(value)
		if k == fiber.HeaderAuthorization || k == fiber.HeaderCookie {
			v = "***"
		}
		reqHeaders += k + ": " + v + "\n"
	})

	return types.LogEntry{
		Method:         c.Method(),
		URL:            c.OriginalURL(),
		RequestBody:    body,
		ResponseBody:   string(c.Response().Body()),
		RequestHeaders: reqHeaders,
		StatusCode:     c.Response().StatusCode(),
		CreatedAt:      time.Now(),
	}
}
