package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/SAP-F-2025/quiz-portal/internal/models"
	"github.com/SAP-F-2025/quiz-portal/internal/repositories"
	"gorm.io/gorm"
)

type UserPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewUserPostgreSQL(db *gorm.DB, helpers *SharedHelpers) repositories.UserRepository {
	return &UserPostgreSQL{
		db:      db,
		helpers: helpers,
	}
}

func (u *UserPostgreSQL) Create(ctx context.Context, user *models.User) error {
	if err := u.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, id string) (*models.User, error) {
	return u.first(ctx, "id = ?", id)
}

func (u *UserPostgreSQL) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return u.first(ctx, "email = ?", email)
}

func (u *UserPostgreSQL) first(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	if err := u.helpers.checkRecord("user", user.ID, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) Update(ctx context.Context, user *models.User) error {
	result := u.db.WithContext(ctx).Model(&models.User{ID: user.ID}).Select("*").Omit("created_at").Updates(user)
	if result.Error != nil {
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (u *UserPostgreSQL) Delete(ctx context.Context, id string) error {
	result := u.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (u *UserPostgreSQL) List(ctx context.Context) ([]*models.User, error) {
	return u.find(ctx, "", nil)
}

func (u *UserPostgreSQL) ListByRole(ctx context.Context, role models.UserRole) ([]*models.User, error) {
	return u.find(ctx, "role = ?", role)
}

func (u *UserPostgreSQL) ListByGrade(ctx context.Context, grade models.Grade) ([]*models.User, error) {
	return u.find(ctx, "grade = ?", grade)
}

func (u *UserPostgreSQL) find(ctx context.Context, query string, arg interface{}) ([]*models.User, error) {
	var users []*models.User
	q := u.db.WithContext(ctx).Order("name ASC")
	if query != "" {
		q = q.Where(query, arg)
	}
	if err := q.Find(&users).Error; err != nil {
		return nil, err
	}
	return keepValid(u.helpers, "user", users, func(user *models.User) string { return user.ID }), nil
}
