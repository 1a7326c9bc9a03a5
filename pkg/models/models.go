package models

import (
	"time"

	"github.com/jinzhu/gorm"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID        uint      `gorm:"primary_key" json:"id"`
	Email     string    `gorm:"unique_index;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeSave hashes the password before it reaches the database. Saving an
// already-hashed value (e.g. re-saving a loaded user) leaves it untouched;
// only a value that parses as a full bcrypt digest is treated as hashed, so a
// password that merely starts with "$2a$" is still hashed.
func (u *User) BeforeSave(scope *gorm.Scope) error {
	if u.Password == "" {
		return nil
	}
	if _, err := bcrypt.Cost([]byte(u.Password)); err == nil {
		return nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return scope.SetColumn("Password", string(hashed))
}

// CheckPassword compares a candidate password against the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

// Transformation holds the display-time resize/quality parameters the media
// host applies when serving a video.
type Transformation struct {
	Height  int `json:"height"`
	Width   int `json:"width"`
	Quality int `json:"quality"`
}

// Videos are served in a fixed portrait frame.
const (
	DefaultHeight  = 1920
	DefaultWidth   = 1080
	DefaultQuality = 100
)

type Video struct {
	ID             uint           `gorm:"primary_key" json:"id"`
	Title          string         `gorm:"not null" json:"title"`
	Description    string         `gorm:"not null" json:"description"`
	VideoURL       string         `gorm:"not null" json:"videoUrl"`
	ThumbnailURL   string         `json:"thumbnailUrl,omitempty"`
	Controls       *bool          `json:"controls"`
	Transformation Transformation `gorm:"embedded;embedded_prefix:transformation_" json:"transformation"`
	CreatedAt      time.Time      `json:"created_at"`
}

// BeforeCreate applies the serving defaults: controls on unless the caller
// said otherwise, quality 100 unless set, and the frame size always forced.
func (v *Video) BeforeCreate() error {
	if v.Controls == nil {
		on := true
		v.Controls = &on
	}
	if v.Transformation.Quality == 0 {
		v.Transformation.Quality = DefaultQuality
	}
	v.Transformation.Height = DefaultHeight
	v.Transformation.Width = DefaultWidth
	return nil
}
