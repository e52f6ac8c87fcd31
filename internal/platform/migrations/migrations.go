package migrations

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the order service schema. Adapters never automigrate on their own.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&orderRecord{},
		&orderItemRecord{},
		&idempotencyRecord{},
	)
}

// Order schema mirrors the orders Postgres adapter.
type orderRecord struct {
	OrderNumber string            `gorm:"primaryKey;column:order_number;size:64"`
	Status      string            `gorm:"column:status;type:varchar(32);index"`
	Version     int64             `gorm:"column:version;not null"`
	CreatedAt   time.Time         `gorm:"column:created_at;index"`
	UpdatedAt   time.Time         `gorm:"column:updated_at"`
	Items       []orderItemRecord `gorm:"foreignKey:OrderNumber;references:OrderNumber;constraint:OnDelete:CASCADE"`
}

func (orderRecord) TableName() string { return "orders" }

type orderItemRecord struct {
	ID          int64           `gorm:"primaryKey;autoIncrement;column:id"`
	OrderNumber string          `gorm:"column:order_number;size:64;index"`
	Position    int             `gorm:"column:position"`
	SKUCode     string          `gorm:"column:sku_code;size:128"`
	Quantity    int32           `gorm:"column:quantity"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(19,2)"`
}

func (orderItemRecord) TableName() string { return "order_items" }

// Idempotency schema mirrors the placement key store.
type idempotencyRecord struct {
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash string    `gorm:"column:request_hash;size:128"`
	OrderNumber string    `gorm:"column:order_number;size:64"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (idempotencyRecord) TableName() string { return "order_idempotency_keys" }
