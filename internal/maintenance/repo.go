package maintenance

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

func (r *Repo) Insert(ctx context.Context, s *ServiceRecord) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	if s == nil {
		return fmt.Errorf("service record is nil")
	}
	if s.ExternalID == "" {
		return fmt.Errorf("service record external_id is empty")
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Status == "" {
		s.Status = StatusCompleted
	}
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *Repo) Update(ctx context.Context, s *ServiceRecord) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	if s == nil || s.ID == "" {
		return fmt.Errorf("service record id is empty")
	}
	return r.db.WithContext(ctx).Save(s).Error
}

// FindByExternalID 按源端记录标识查找；不存在时返回 (nil, nil)。
func (r *Repo) FindByExternalID(ctx context.Context, externalID string) (*ServiceRecord, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var s ServiceRecord
	err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
