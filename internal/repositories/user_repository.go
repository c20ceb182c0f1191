package repositories

import (
	"errors"
	"time"

	"github.com/platewise/backend/internal/models"
	"gorm.io/gorm"
)

// UserRepository is the user directory consumed by the notification and
// analytics subsystems.
type UserRepository interface {
	GetUserByID(id uint) (*models.User, error)
	GetUserByFirebaseUID(firebaseUID string) (*models.User, error)
	ListActiveIDs() ([]uint, error)
	Count() (int64, error)
	CountCreatedBetween(from, to time.Time) (int64, error)
	CountByStatus(status string) (int64, error)
	CountCreatedPerDay(from, to time.Time) (map[string]int64, error)
}

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// GetUserByID retrieves a user by ID from PostgreSQL
func (r *PostgresUserRepository) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByFirebaseUID retrieves a user by Firebase UID from PostgreSQL
func (r *PostgresUserRepository) GetUserByFirebaseUID(firebaseUID string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("firebase_uid = ?", firebaseUID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ListActiveIDs returns the ids of all active users, used by announcement fan-out.
func (r *PostgresUserRepository) ListActiveIDs() ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.User{}).
		Where("status = ?", models.UserStatusActive).
		Pluck("id", &ids).Error
	return ids, err
}

// Count returns the total number of users.
func (r *PostgresUserRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Count(&count).Error
	return count, err
}

// CountCreatedBetween counts users created in [from, to).
func (r *PostgresUserRepository) CountCreatedBetween(from, to time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	return count, err
}

// CountByStatus counts users with the given account status.
func (r *PostgresUserRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// CountCreatedPerDay returns signup counts keyed by YYYY-MM-DD for [from, to).
func (r *PostgresUserRepository) CountCreatedPerDay(from, to time.Time) (map[string]int64, error) {
	type row struct {
		Day   time.Time
		Count int64
	}
	var rows []row
	err := r.db.Model(&models.User{}).
		Select("date_trunc('day', created_at) AS day, count(*) AS count").
		Where("created_at >= ? AND created_at < ?", from, to).
		Group("day").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	perDay := make(map[string]int64, len(rows))
	for _, r := range rows {
		perDay[r.Day.Format("2006-01-02")] = r.Count
	}
	return perDay, nil
}
