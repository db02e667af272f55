package vehicle

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

func (r *Repo) Insert(ctx context.Context, v *Vehicle) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	if v == nil {
		return fmt.Errorf("vehicle is nil")
	}
	if v.ExternalID == "" {
		return fmt.Errorf("vehicle external_id is empty")
	}
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.Status == "" {
		v.Status = StatusActive
	}
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *Repo) Update(ctx context.Context, v *Vehicle) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	if v == nil || v.ID == "" {
		return fmt.Errorf("vehicle id is empty")
	}
	return r.db.WithContext(ctx).Save(v).Error
}

// FindByExternalID 按源端记录标识查找；不存在时返回 (nil, nil)。
func (r *Repo) FindByExternalID(ctx context.Context, externalID string) (*Vehicle, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var v Vehicle
	err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// EnsureDriverLink 保证车辆与司机之间恰好存在一行关联：
// 已存在则不重复插入（重复导入时保持幂等）。
func (r *Repo) EnsureDriverLink(ctx context.Context, vehicleID, memberID string) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	if vehicleID == "" || memberID == "" {
		return fmt.Errorf("vehicle_id and member_id required")
	}

	var link VehicleDriver
	err := r.db.WithContext(ctx).
		Where("vehicle_id = ? AND member_id = ?", vehicleID, memberID).
		First(&link).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return r.db.WithContext(ctx).Create(&VehicleDriver{
		ID:        uuid.NewString(),
		VehicleID: vehicleID,
		MemberID:  memberID,
	}).Error
}
