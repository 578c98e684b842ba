package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/mactrack/mactrack/internal/models"
)

// AdminService assembles the admin console overview: per-user rows joined
// from users, profiles and units, plus aggregate stats.
type AdminService struct {
	DB *gorm.DB
}

func NewAdminService(db *gorm.DB) *AdminService { return &AdminService{DB: db} }

type UserOverview struct {
	User    models.User     `json:"user"`
	Profile *models.Profile `json:"profile"`
	Units   []models.Unit   `json:"units"`
}

type OverviewStats struct {
	TotalUsers       int64 `json:"total_users"`
	TotalUnits       int64 `json:"total_units"`
	Admins           int64 `json:"admins"`
	CompleteProfiles int64 `json:"complete_profiles"`
}

type Overview struct {
	Stats OverviewStats  `json:"stats"`
	Users []UserOverview `json:"users"`
}

// BuildOverview loads every user newest-first with their profile and units.
// Missing profiles are tolerated: a user who never signed in after a manual
// insert simply shows an empty profile column.
func (s *AdminService) BuildOverview(ctx context.Context) (*Overview, error) {
	var users []models.User
	if err := s.DB.WithContext(ctx).Preload("Profile").Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	var units []models.Unit
	if err := s.DB.WithContext(ctx).Find(&units).Error; err != nil {
		return nil, err
	}
	byUser := make(map[uint][]models.Unit, len(users))
	for _, u := range units {
		byUser[u.UserID] = append(byUser[u.UserID], u)
	}

	ov := &Overview{Users: make([]UserOverview, 0, len(users))}
	ov.Stats.TotalUsers = int64(len(users))
	ov.Stats.TotalUnits = int64(len(units))
	for _, u := range users {
		row := UserOverview{User: u, Profile: u.Profile, Units: byUser[u.ID]}
		if u.Profile != nil {
			if u.Profile.IsAdmin {
				ov.Stats.Admins++
			}
			if u.Profile.Complete() {
				ov.Stats.CompleteProfiles++
			}
		}
		ov.Users = append(ov.Users, row)
	}
	return ov, nil
}
