package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"storepay/dto/model"
	"storepay/middleware"
	"storepay/pkg/response"
	"storepay/repository"
)

// CheckPasswordHash compare password with hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

func generateJWT(user *model.User) (string, error) {
	claims := jwt.MapClaims{}
	claims["user_id"] = user.ID
	claims["username"] = user.Username
	claims["email"] = user.Email
	claims["role"] = user.Role
	claims["exp"] = time.Now().Add(time.Hour * 24).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(middleware.JWTSecret())
}

func Login(c *fiber.Ctx) error {
	type LoginInput struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	input := new(LoginInput)
	if err := c.BodyParser(input); err != nil {
		return response.Response(c, fiber.StatusBadRequest, "error on login request")
	}
	if err := validate.Struct(input); err != nil {
		return response.Response(c, fiber.StatusBadRequest, err.Error())
	}

	user, err := repository.FindUserByUsername(c.UserContext(), input.Username)
	if err != nil {
		return response.Response(c, fiber.StatusInternalServerError, "internal server error")
	}
	if user == nil || !CheckPasswordHash(input.Password, user.Password) {
		return response.Response(c, fiber.StatusUnauthorized, "invalid identity or password")
	}

	token, err := generateJWT(user)
	if err != nil {
		return response.Response(c, fiber.StatusInternalServerError, "could not sign token")
	}

	return response.ResponseSuccess(c, fiber.StatusOK, fiber.Map{
		"token":    token,
		"username": user.Username,
		"role":     user.Role,
	})
}
