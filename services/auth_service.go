package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"guesthouse-backend/models"
	"guesthouse-backend/repositories"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	DB     *gorm.DB
	Tokens *TokenService
}

func NewAuthService(db *gorm.DB, tokens *TokenService) *AuthService {
	return &AuthService{DB: db, Tokens: tokens}
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

type SetupInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required"`
}

type ProfileUpdate struct {
	FullName        *string `json:"full_name"`
	Email           *string `json:"email" validate:"omitempty,email"`
	CurrentPassword string  `json:"current_password"`
	NewPassword     string  `json:"new_password" validate:"omitempty,min=6"`
}

// LoginResult is what login and setup hand back to the client.
type LoginResult struct {
	AccessToken string      `json:"access_token"`
	User        models.User `json:"user"`
}

// Setup creates the first admin. It only works while no user exists.
func (s *AuthService) Setup(ctx context.Context, in SetupInput) (*LoginResult, error) {
	log.Printf("➡️ AuthService.Setup email=%s", in.Email)

	if err := validateInput(in); err != nil {
		return nil, err
	}

	var user *models.User
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := repositories.New(tx).CountUsers()
		if err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		if n > 0 {
			return ErrSetupDone
		}
		user, err = createUser(tx, in.Email, in.Password, in.FullName, models.RoleAdmin)
		return err
	})
	if err != nil {
		log.Printf("⬅️ AuthService.Setup error: %v", err)
		return nil, err
	}
	return s.issue(*user)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if err := validateInput(in); err != nil {
		return nil, ErrMissingFields.WithMessage("Email and password are required")
	}

	user, err := repositories.New(s.DB.WithContext(ctx)).FindUserByEmail(normalizeEmail(in.Email))
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		log.Printf("⚠️ failed login for %s", user.Email)
		return nil, ErrInvalidCredentials
	}
	return s.issue(*user)
}

// Register creates a staff account. Callers must already be admins.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	log.Printf("➡️ AuthService.Register email=%s role=%s", in.Email, in.Role)

	if err := validateInput(in); err != nil {
		return nil, err
	}
	role, err := models.ParseUserRole(in.Role)
	if err != nil {
		return nil, ErrInvalidRole
	}
	return createUser(s.DB.WithContext(ctx), in.Email, in.Password, in.FullName, role)
}

func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	return findUser(repositories.New(s.DB.WithContext(ctx)), userID)
}

// UpdateProfile edits the caller's own name, email and password. The
// password only changes when the current one is supplied and correct.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uint, in ProfileUpdate) (*models.User, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var user *models.User
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := repositories.New(tx)

		var err error
		user, err = findUser(repo, userID)
		if err != nil {
			return err
		}
		applyString(&user.FullName, in.FullName)
		if err := changeEmail(repo, user, in.Email); err != nil {
			return err
		}
		if in.CurrentPassword != "" && in.NewPassword != "" {
			if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.CurrentPassword)) != nil {
				return ErrInvalidPassword
			}
			hash, err := hashPassword(in.NewPassword)
			if err != nil {
				return err
			}
			user.PasswordHash = hash
		}
		return saveUser(tx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issue(u models.User) (*LoginResult, error) {
	token, err := s.Tokens.Generate(u)
	if err != nil {
		return nil, err
	}
	return &LoginResult{AccessToken: token, User: u}, nil
}

// ----------------------------------------------------
// helpers shared with UserService
// ----------------------------------------------------

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func createUser(db *gorm.DB, email, password, fullName string, role models.UserRole) (*models.User, error) {
	email = normalizeEmail(email)
	if _, err := repositories.New(db).FindUserByEmail(email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(fullName),
		Role:         role,
	}
	if err := db.Create(&user).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	log.Printf("✅ user %d (%s, %s) created", user.ID, user.Email, user.Role)
	return &user, nil
}

func changeEmail(repo *repositories.Repository, user *models.User, email *string) error {
	if email == nil || strings.TrimSpace(*email) == "" {
		return nil
	}
	next := normalizeEmail(*email)
	if next == user.Email {
		return nil
	}
	if other, err := repo.FindUserByEmail(next); err == nil && other.ID != user.ID {
		return ErrEmailExists
	} else if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("find user by email: %w", err)
	}
	user.Email = next
	return nil
}

func saveUser(db *gorm.DB, user *models.User) error {
	if err := db.Save(user).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func findUser(repo *repositories.Repository, id uint) (*models.User, error) {
	user, err := repo.FindUser(id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	return user, nil
}
