// services/history_service.go
package services

import (
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/wfunc/lobbyclient/models"
	"github.com/wfunc/lobbyclient/persistence"
	"gorm.io/gorm"
)

// HistoryService remembers who logged in and which rooms they joined.
// It never stores the lobby's room list.
type HistoryService struct {
	db  persistence.Database
	now func() time.Time
}

func NewHistoryService(db persistence.Database) *HistoryService {
	return &HistoryService{db: db, now: time.Now}
}

// RecordLogin 创建或更新玩家资料
func (s *HistoryService) RecordLogin(nickname string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		_, err := s.touchProfile(tx, nickname)
		return err
	})
}

// RecordJoin 记录加入房间，并更新玩家资料中的最近房间
func (s *HistoryService) RecordJoin(nickname, roomName string, created bool) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		record := models.JoinRecord{
			ID:       ulid.Make().String(),
			Nickname: nickname,
			RoomName: roomName,
			Created:  created,
			JoinedAt: s.now(),
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		return tx.Model(&models.Profile{}).
			Where("nickname = ?", nickname).
			Update("last_room", roomName).Error
	})
}

// RecentJoins returns up to limit joins by nickname, newest first.
func (s *HistoryService) RecentJoins(nickname string, limit int) ([]models.JoinRecord, error) {
	var records []models.JoinRecord
	err := s.db.DB().
		Where("nickname = ?", nickname).
		Order("joined_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// LastNickname returns the most recently used nickname.
func (s *HistoryService) LastNickname() (string, error) {
	var profile models.Profile
	err := s.db.DB().Order("last_login_at DESC").First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", persistence.ErrRecordNotFound
	}
	if err != nil {
		return "", err
	}
	return profile.Nickname, nil
}

func (s *HistoryService) touchProfile(tx *gorm.DB, nickname string) (*models.Profile, error) {
	var profile models.Profile
	result := tx.Where("nickname = ?", nickname).First(&profile)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		profile = models.Profile{
			ID:          ulid.Make().String(),
			Nickname:    nickname,
			LastLoginAt: s.now(),
		}
		return &profile, tx.Create(&profile).Error
	} else if result.Error != nil {
		return nil, result.Error
	}

	profile.LastLoginAt = s.now()
	return &profile, tx.Save(&profile).Error
}
