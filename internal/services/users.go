package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"aitools/internal/models"
	"aitools/internal/utils"

	"gorm.io/gorm"
)

// UserService handles local email/password accounts.
type UserService struct {
	db          *gorm.DB
	adminEmails func(email string) bool
}

// NewUserService takes a predicate for emails that are promoted to admin on
// sign-up and sign-in; nil promotes nobody.
func NewUserService(db *gorm.DB, isAdminEmail func(string) bool) *UserService {
	if isAdminEmail == nil {
		isAdminEmail = func(string) bool { return false }
	}
	return &UserService{db: db, adminEmails: isAdminEmail}
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" {
		return nil, invalid("username", "Please choose a display name")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalid("email", "Please enter a valid email address")
	}
	if len(password) < 8 {
		return nil, invalid("password", "Password must be at least 8 characters")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := models.User{Username: username, Email: email, Password: hash, Role: models.RoleUser}
	if s.adminEmails(email) {
		user.Role = models.RoleAdmin
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return &user, nil
}

// Authenticate checks credentials. Listed admin emails are promoted here so
// that adding an address to the config takes effect on next sign-in.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidLogin
		}
		return nil, err
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		return nil, ErrInvalidLogin
	}
	if !user.IsAdmin() && s.adminEmails(email) {
		if err := s.SetRole(ctx, email, models.RoleAdmin); err != nil {
			return nil, err
		}
		user.Role = models.RoleAdmin
	}
	return &user, nil
}

// SetRole changes a user's role by email.
func (s *UserService) SetRole(ctx context.Context, email, role string) error {
	if role != models.RoleUser && role != models.RoleAdmin {
		return invalid("role", "Unknown role")
	}
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
