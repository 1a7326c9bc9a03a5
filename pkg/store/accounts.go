package store

import (
	"fmt"

	"github.com/jinzhu/gorm"

	"clipstream/pkg/models"
)

// Accounts owns the User collection.
type Accounts struct {
	db *gorm.DB
}

func NewAccounts(db *gorm.DB) *Accounts {
	return &Accounts{db: db}
}

// Register creates a new account. The password is hashed by the model's
// pre-save hook, never stored in the clear.
func (s *Accounts) Register(email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required: %w", ErrInvalidInput)
	}

	var existing models.User
	err := s.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("email already registered: %w", ErrConflict)
	}
	if !gorm.IsRecordNotFoundError(err) {
		return nil, fmt.Errorf("account lookup: %v", err)
	}

	user := models.User{Email: email, Password: password}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("account create: %v", err)
	}
	return &user, nil
}

// Authenticate verifies an email/password pair. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *Accounts) Authenticate(email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required: %w", ErrInvalidInput)
	}

	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("account lookup: %v", err)
	}
	if !user.CheckPassword(password) {
		return nil, ErrUnauthenticated
	}
	return &user, nil
}
