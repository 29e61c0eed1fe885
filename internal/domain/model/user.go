package model

import "time"

type Role string

const (
	RoleFarmAdmin Role = "farm_admin"
	RoleOperator  Role = "operator"
)

type User struct {
	ID           string     `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID     string     `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"column:password_hash;not null" json:"-"`
	FirstName    string     `gorm:"type:varchar(100)" json:"first_name"`
	LastName     string     `gorm:"type:varchar(100)" json:"last_name"`
	Phone        string     `gorm:"type:varchar(50)" json:"phone"`
	Role         Role       `gorm:"type:varchar(20);not null;default:'operator'" json:"role"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
