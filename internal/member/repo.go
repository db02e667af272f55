package member

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

func (r *Repo) Insert(ctx context.Context, m *Member) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	if m == nil {
		return fmt.Errorf("member is nil")
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Role == "" {
		m.Role = RoleCustomer
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *Repo) Update(ctx context.Context, m *Member) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	if m == nil || m.ID == "" {
		return fmt.Errorf("member id is empty")
	}
	return r.db.WithContext(ctx).Save(m).Error
}

// FindByEmail 按自然键（规范化邮箱）查找；不存在时返回 (nil, nil)。
func (r *Repo) FindByEmail(ctx context.Context, email string) (*Member, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var m Member
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindByExternalID 按源端记录标识查找；不存在时返回 (nil, nil)。
func (r *Repo) FindByExternalID(ctx context.Context, externalID string) (*Member, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var m Member
	err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
