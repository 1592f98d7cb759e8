package domain

import (
	"time"
)

type Role string

const (
	RoleDriver Role = "司机"
	RoleAdmin  Role = "管理员"
)

type Driver struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	PasswordHash  string    `json:"-"`
	FullName      string    `json:"fullName"`
	Email         string    `json:"email"`
	Role          Role      `json:"role"`
	LicenseNumber string    `json:"licenseNumber"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	Version       int32     `json:"-"`
}
