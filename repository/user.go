package repository

import (
	"context"
	"errors"
	"fmt"

	"storepay/database"
	"storepay/dto/model"

	"go.elastic.co/apm"
	"gorm.io/gorm"
)

// FindUserByUsername looks up an operator account for login.
func FindUserByUsername(ctx context.Context, username string) (*model.User, error) {
	span, _ := apm.StartSpan(ctx, "FindUserByUsername", "repository")
	defer span.End()

	var user model.User
	err := database.GetDB().WithContext(ctx).
		Where("username = ?", username).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching user %s: %w", username, err)
	}
	return &user, nil
}

// CreateUser persists a new operator account.
func CreateUser(ctx context.Context, user *model.User) error {
	span, _ := apm.StartSpan(ctx, "CreateUser", "repository")
	defer span.End()

	if err := database.GetDB().WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("error creating user %s: %w", user.Username, err)
	}
	return nil
}
