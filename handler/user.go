package handler

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"storepay/dto/model"
	"storepay/pkg/response"
	"storepay/repository"
)

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

// CreateUser registers an operator account for the ledger screens.
func CreateUser(c *fiber.Ctx) error {
	type NewUser struct {
		Username string `json:"username" validate:"required,min=3,max=64"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
		Names    string `json:"names"`
		Role     string `json:"role" validate:"omitempty,oneof=admin superadmin"`
	}

	input := new(NewUser)
	if err := c.BodyParser(input); err != nil {
		return response.Response(c, fiber.StatusBadRequest, "review your input")
	}
	if err := validate.Struct(input); err != nil {
		return response.Response(c, fiber.StatusBadRequest, err.Error())
	}

	ctx := c.UserContext()

	existing, err := repository.FindUserByUsername(ctx, input.Username)
	if err != nil {
		return response.Response(c, fiber.StatusInternalServerError, "internal server error")
	}
	if existing != nil {
		return response.Response(c, fiber.StatusConflict, "username already taken")
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return response.Response(c, fiber.StatusInternalServerError, "could not hash password")
	}

	role := input.Role
	if role == "" {
		role = "admin"
	}

	user := &model.User{
		Username: input.Username,
		Email:    input.Email,
		Password: hash,
		Names:    input.Names,
		Role:     role,
	}
	if err := repository.CreateUser(ctx, user); err != nil {
		return response.Response(c, fiber.StatusInternalServerError, "could not create user")
	}

	return response.ResponseSuccess(c, fiber.StatusCreated, fiber.Map{
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
	})
}
