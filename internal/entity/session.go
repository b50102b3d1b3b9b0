package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Role distinguishes the two staff levels.
type Role string

const (
	RoleOwner Role = "owner"
	RoleStaff Role = "staff"
)

// User is a staff account that can sign in.
type User struct {
	bun.BaseModel `bun:"table:users"`

	ID           int64     `bun:",pk,autoincrement"`
	Name         string    `bun:"name,notnull"`
	Email        string    `bun:"email,notnull"`
	PasswordHash string    `bun:"password_hash,notnull"`
	Role         Role      `bun:"role,notnull"`
	LaundryID    int64     `bun:"laundry_id"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`

	Laundry *Laundry `bun:"rel:belongs-to,join:laundry_id=id"`
}

// Session is the authenticated principal kept in the key-value store for the
// lifetime of a bearer token. PrinterAddress remembers the last thermal
// printer this account connected to.
type Session struct {
	Token          string    `json:"token"`
	UserID         int64     `json:"user_id"`
	Name           string    `json:"name"`
	Role           Role      `json:"role"`
	LaundryID      int64     `json:"laundry_id"`
	LaundryName    string    `json:"laundry_name"`
	PrinterAddress string    `json:"printer_address,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
