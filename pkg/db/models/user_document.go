package models

import (
	"time"

	"github.com/kayalabs/studiocart-backend/pkg/enums"
	"github.com/kayalabs/studiocart-backend/pkg/types"
)

// UserDocument is the durable per-user record keyed by the opaque identity
// the auth provider issues. The cart column is always overwritten wholesale;
// sibling status fields merge independently. CartVersion guards against
// out-of-order snapshot pushes regressing the cart.
type UserDocument struct {
	UserID            string               `gorm:"column:user_id;primaryKey"`
	Email             string               `gorm:"column:email"`
	Username          string               `gorm:"column:username"`
	Role              enums.Role           `gorm:"column:role;not null;default:'user'"`
	Cart              types.CartSnapshot   `gorm:"column:cart;type:jsonb;serializer:json"`
	CartVersion       int64                `gorm:"column:cart_version;not null;default:0"`
	TrackDesignActive bool                 `gorm:"column:track_design_active;not null;default:false"`
	DesignProgress    enums.DesignProgress `gorm:"column:design_progress;not null;default:'Pending'"`
	PaymentStatus     enums.PaymentStatus  `gorm:"column:payment_status;not null;default:'Not Paid'"`
	DesignDuration    string               `gorm:"column:design_duration;not null;default:'Pending'"`
	PaymentMethod     *string              `gorm:"column:payment_method"`
	LastUpdated       time.Time            `gorm:"column:last_updated"`
	CreatedAt         time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the historical table name.
func (UserDocument) TableName() string {
	return "user_documents"
}
