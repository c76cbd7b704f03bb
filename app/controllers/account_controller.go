package controllers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/pathcraft-app/pathcraft/app/models"
	"github.com/pathcraft-app/pathcraft/app/repository"
	"github.com/pathcraft-app/pathcraft/internal/pkg/billing"
	"github.com/pathcraft-app/pathcraft/internal/pkg/usercontext"
)

// AccountController serves account registration, API key minting and the
// caller's usage profile.
type AccountController struct {
	users    repository.UserRepository
	profiles repository.UserProfileRepository
}

// NewAccountController creates an account controller from the user and
// profile repositories.
func NewAccountController(users repository.UserRepository, profiles repository.UserProfileRepository) *AccountController {
	return &AccountController{users: users, profiles: profiles}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=150"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type mintAPIKeyRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleRegister creates a new user account.
func (ct *AccountController) HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   fiber.Map{"code": billing.CodeValidationError, "message": "invalid request body"},
		})
	}
	if err := requestValidator.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   fiber.Map{"code": billing.CodeValidationError, "message": err.Error()},
		})
	}

	if _, err := ct.users.GetByEmail(req.Email); err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   fiber.Map{"code": billing.CodeValidationError, "message": "email already registered"},
		})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("account: user lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   fiber.Map{"code": billing.CodeInternalError, "message": "internal server error"},
		})
	}

	user, err := models.CreateUser(req.Name, req.Email, req.Password)
	if err != nil {
		log.Printf("account: password hash failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   fiber.Map{"code": billing.CodeInternalError, "message": "internal server error"},
		})
	}
	if err := ct.users.Create(user); err != nil {
		log.Printf("account: user create failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   fiber.Map{"code": billing.CodeInternalError, "message": "could not create account"},
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"user": user},
	})
}

// HandleCreateAPIKey authenticates by email and password and mints a fresh
// API key for the account. The plaintext key is returned exactly once; only
// its hash is stored, and a new key replaces any previous one.
func (ct *AccountController) HandleCreateAPIKey(c *fiber.Ctx) error {
	var req mintAPIKeyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   fiber.Map{"code": billing.CodeValidationError, "message": "invalid request body"},
		})
	}
	if err := requestValidator.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   fiber.Map{"code": billing.CodeValidationError, "message": err.Error()},
		})
	}

	user, err := ct.users.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "invalid credentials"})
		}
		log.Printf("account: user lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   fiber.Map{"code": billing.CodeInternalError, "message": "internal server error"},
		})
	}
	if !user.CheckPassword(req.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "invalid credentials"})
	}
	if user.Status != models.STATUS_ACTIVE {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": "user inactive"})
	}

	key, hash, err := models.GenerateAPIKey()
	if err != nil {
		log.Printf("account: api key generation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   fiber.Map{"code": billing.CodeInternalError, "message": "could not generate API key"},
		})
	}
	user.APIKeyHash = hash
	if err := ct.users.Update(user); err != nil {
		log.Printf("account: api key store failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   fiber.Map{"code": billing.CodeInternalError, "message": "could not store API key"},
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"apiKey": key},
	})
}

// HandleGetProfile returns the caller's usage-limit profile, creating the
// default row on first access.
func (ct *AccountController) HandleGetProfile(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "authentication required"})
	}

	profile, err := ct.profiles.GetOrCreate(userCtx.UserID)
	if err != nil {
		log.Printf("account: profile lookup failed for user %d: %v", userCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   fiber.Map{"code": billing.CodeInternalError, "message": "could not load profile"},
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"profile": profile},
	})
}
