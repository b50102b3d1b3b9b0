package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Order represents one laundry transaction stored in the relational database.
// Weight and TotalPrice are carried as strings because the transport contract
// is textual; parsing happens only where a number is genuinely needed.
type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID         int64     `bun:",pk,autoincrement"`
	Barcode    string    `bun:"barcode,notnull"`
	CustomerID int64     `bun:"customer_id"`
	LaundryID  int64     `bun:"laundry_id"`
	ServiceID  int64     `bun:"service_id"`
	Weight     string    `bun:"weight"`
	TotalPrice string    `bun:"total_price"`
	Note       string    `bun:"note,nullzero"`
	Status     Status    `bun:"status,notnull"`
	OrderDate  time.Time `bun:"order_date,nullzero"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero"`

	Customer *Customer    `bun:"rel:belongs-to,join:customer_id=id"`
	Laundry  *Laundry     `bun:"rel:belongs-to,join:laundry_id=id"`
	Service  *ServiceType `bun:"rel:belongs-to,join:service_id=id"`
}

// LaundryName returns the branch name for display, or empty when the
// relation was not loaded.
func (o *Order) LaundryName() string {
	if o.Laundry != nil {
		return o.Laundry.Name
	}
	return ""
}

// Customer is the party that owns the laundry.
type Customer struct {
	bun.BaseModel `bun:"table:customers"`

	ID        int64     `bun:",pk,autoincrement"`
	Name      string    `bun:"name,notnull"`
	Phone     string    `bun:"phone,nullzero"`
	Username  string    `bun:"username,nullzero"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}

// Laundry is the branch that processes orders.
type Laundry struct {
	bun.BaseModel `bun:"table:laundries"`

	ID        int64     `bun:",pk,autoincrement"`
	Name      string    `bun:"name,notnull"`
	Address   string    `bun:"address,nullzero"`
	Phone     string    `bun:"phone,nullzero"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}

// ServiceType describes a bookable service (wash, iron, express, ...).
type ServiceType struct {
	bun.BaseModel `bun:"table:services"`

	ID         int64     `bun:",pk,autoincrement"`
	Name       string    `bun:"name,notnull"`
	PricePerKg string    `bun:"price_per_kg,nullzero"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}
