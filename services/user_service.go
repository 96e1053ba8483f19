package services

import (
	"context"
	"fmt"
	"log"

	"guesthouse-backend/models"
	"guesthouse-backend/repositories"

	"gorm.io/gorm"
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

// Actor is the authenticated caller of a user operation.
type Actor struct {
	UserID uint
	Role   models.UserRole
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// canAccess allows admins everywhere and everyone else only on themselves.
func (a Actor) canAccess(userID uint) bool { return a.IsAdmin() || a.UserID == userID }

type UserUpdate struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Role     *string `json:"role"`
}

func (s *UserService) List(ctx context.Context, actor Actor) ([]models.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden.WithMessage("Only admins can view all users")
	}
	var users []models.User
	if err := s.DB.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, actor Actor, id uint) (*models.User, error) {
	if !actor.canAccess(id) {
		return nil, ErrForbidden.WithMessage("You can only view your own profile")
	}
	return findUser(repositories.New(s.DB.WithContext(ctx)), id)
}

// Update edits a user. A role in the input is only applied for admins.
func (s *UserService) Update(ctx context.Context, actor Actor, id uint, in UserUpdate) (*models.User, error) {
	log.Printf("➡️ UserService.Update user_id=%d by=%d", id, actor.UserID)

	if !actor.canAccess(id) {
		return nil, ErrForbidden.WithMessage("You can only update your own profile")
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var user *models.User
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := repositories.New(tx)

		var err error
		user, err = findUser(repo, id)
		if err != nil {
			return err
		}
		if in.Role != nil && *in.Role != "" && actor.IsAdmin() {
			role, err := models.ParseUserRole(*in.Role)
			if err != nil {
				return ErrInvalidRole
			}
			user.Role = role
		}
		applyString(&user.FullName, in.FullName)
		if err := changeEmail(repo, user, in.Email); err != nil {
			return err
		}
		return saveUser(tx, user)
	})
	if err != nil {
		log.Printf("⬅️ UserService.Update error: %v", err)
		return nil, err
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, actor Actor, id uint) error {
	log.Printf("➡️ UserService.Delete user_id=%d by=%d", id, actor.UserID)

	if !actor.IsAdmin() {
		return ErrForbidden.WithMessage("Only admins can delete users")
	}
	if actor.UserID == id {
		return ErrInvalidOperation
	}
	res := s.DB.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
