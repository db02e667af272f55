package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Insert(ctx context.Context, a *Appointment) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	if a == nil {
		return fmt.Errorf("appointment is nil")
	}
	if a.ExternalID == "" {
		return fmt.Errorf("appointment external_id is empty")
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *Repo) Update(ctx context.Context, a *Appointment) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	if a == nil || a.ID == "" {
		return fmt.Errorf("appointment id is empty")
	}
	return r.db.WithContext(ctx).Save(a).Error
}

// FindByExternalID 按源端记录标识查找；不存在时返回 (nil, nil)。
func (r *Repo) FindByExternalID(ctx context.Context, externalID string) (*Appointment, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var a Appointment
	err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
