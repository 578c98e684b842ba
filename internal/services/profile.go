package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/mactrack/mactrack/internal/models"
)

// ProfileLoader resolves a user to their profile, creating a default row on
// first sight. It backs the gate's profile resolution.
type ProfileLoader struct {
	DB *gorm.DB
}

func NewProfileLoader(db *gorm.DB) *ProfileLoader { return &ProfileLoader{DB: db} }

// Resolve fetches the profile for userID. When no row exists, a default one
// is inserted (full name taken from the signup metadata, falling back to
// the email local part) and returned. The insert is create-or-get: losing a
// race to another request's insert is resolved by re-fetching the winner's
// row, so at most one profile ever exists per user.
func (l *ProfileLoader) Resolve(ctx context.Context, userID uint) (*models.Profile, error) {
	var profile models.Profile
	err := l.DB.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err == nil {
		return &profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var user models.User
	if err := l.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, err
	}
	profile = models.Profile{UserID: user.ID, FullName: defaultFullName(user)}
	if err := l.DB.WithContext(ctx).Create(&profile).Error; err != nil {
		if models.IsUniqueViolation(err) {
			var existing models.Profile
			if err2 := l.DB.WithContext(ctx).Where("user_id = ?", userID).First(&existing).Error; err2 == nil {
				return &existing, nil
			}
		}
		return nil, err
	}
	return &profile, nil
}

func defaultFullName(user models.User) string {
	if name := strings.TrimSpace(user.FullName); name != "" {
		return name
	}
	if at := strings.Index(user.Email, "@"); at > 0 {
		return user.Email[:at]
	}
	return "Student"
}

// UpdateProfileInput carries the editable profile fields. Gender is
// optional; everything else is required for a complete profile.
type UpdateProfileInput struct {
	FullName string `json:"full_name" validate:"required"`
	Gender   string `json:"gender"`
	Degree   string `json:"degree" validate:"required"`
	Year     int    `json:"year" validate:"min=1,max=4"`
	Session  int    `json:"session" validate:"min=1,max=3"`
}

// Update writes the editable fields of the user's profile.
func (l *ProfileLoader) Update(ctx context.Context, userID uint, in UpdateProfileInput) (*models.Profile, error) {
	profile, err := l.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.FullName = strings.TrimSpace(in.FullName)
	profile.Gender = in.Gender
	profile.Degree = strings.TrimSpace(in.Degree)
	profile.Year = in.Year
	profile.Session = in.Session
	if err := l.DB.WithContext(ctx).Save(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}
