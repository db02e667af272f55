package importer

import (
	"context"
	"fmt"

	"github.com/SmartFleetSync/SmartFleetSync/internal/common/logger"
	"github.com/SmartFleetSync/SmartFleetSync/internal/member"
)

// Resolver 自然键实体解析器：
// 按规范化邮箱找到或创建成员行，返回库端标识，
// 供车辆对账在写入前解析司机引用。
//
// 先查后插，非事务。并发跑两轮导入理论上可能对同一邮箱插出两行，
// 单操作员的批处理任务接受这个风险；更严格的做法需要库级唯一约束
// 加 upsert-on-conflict。
type Resolver struct {
	members MemberStore
	log     logger.Logger
}

func NewResolver(members MemberStore, log logger.Logger) *Resolver {
	return &Resolver{members: members, log: log}
}

// ResolveDriver 邮箱（自然键）-> 成员库端标识。
// 同一轮内重复调用同一邮箱不会产生重复行。
// 没有邮箱时无法解析，返回空标识且不算错误（车辆照常入库，不建关联）。
func (r *Resolver) ResolveDriver(ctx context.Context, name, email, phone string) (string, error) {
	if r == nil || r.members == nil {
		return "", fmt.Errorf("resolver not initialized")
	}
	if email == "" {
		return "", nil
	}

	existing, err := r.members.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("find member by email %q: %w", email, err)
	}
	if existing != nil {
		return existing.ID, nil
	}

	// 兜底创建最小成员行：司机角色、未审核，等后续成员表同步补全
	m := &member.Member{
		Name:     name,
		Email:    email,
		Phone:    phone,
		Role:     member.RoleDriver,
		Approved: false,
	}
	if err := r.members.Insert(ctx, m); err != nil {
		return "", fmt.Errorf("create member for email %q: %w", email, err)
	}
	if r.log != nil {
		r.log.WithField("email", email).Debug("resolver created member row")
	}
	return m.ID, nil
}
