package repair

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

func (r *Repo) Insert(ctx context.Context, req *RepairRequest) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	if req == nil {
		return fmt.Errorf("repair request is nil")
	}
	if req.ExternalID == "" {
		return fmt.Errorf("repair request external_id is empty")
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Urgency == "" {
		req.Urgency = UrgencyLow
	}
	if req.Status == "" {
		req.Status = StatusSubmitted
	}
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *Repo) Update(ctx context.Context, req *RepairRequest) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	if req == nil || req.ID == "" {
		return fmt.Errorf("repair request id is empty")
	}
	return r.db.WithContext(ctx).Save(req).Error
}

// FindByExternalID 按源端记录标识查找；不存在时返回 (nil, nil)。
func (r *Repo) FindByExternalID(ctx context.Context, externalID string) (*RepairRequest, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var req RepairRequest
	err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}
