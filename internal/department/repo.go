package department

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

// Insert 插入一行；ID 为空时由仓储生成。
func (r *Repo) Insert(ctx context.Context, d *Department) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	if d == nil {
		return fmt.Errorf("department is nil")
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *Repo) Update(ctx context.Context, d *Department) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	if d == nil || d.ID == "" {
		return fmt.Errorf("department id is empty")
	}
	return r.db.WithContext(ctx).Save(d).Error
}

// FindByExternalID 按源端记录标识查找；不存在时返回 (nil, nil)。
func (r *Repo) FindByExternalID(ctx context.Context, externalID string) (*Department, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var d Department
	err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// FindByName 按部门名（自然键）查找；不存在时返回 (nil, nil)。
func (r *Repo) FindByName(ctx context.Context, name string) (*Department, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var d Department
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}
