package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-order-service/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-order-service/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders and their lines in PostgreSQL using GORM.
// The connection must be opened with TranslateError so unique violations
// surface as gorm.ErrDuplicatedKey.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle
// and schema (see platform/migrations).
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type orderRecord struct {
	OrderNumber string            `gorm:"primaryKey;column:order_number;size:64"`
	Status      string            `gorm:"column:status;type:varchar(32);index"`
	Version     int64             `gorm:"column:version;not null"`
	CreatedAt   time.Time         `gorm:"column:created_at;index"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime:false"`
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

// Save inserts when Version is zero, otherwise updates guarded by the stored
// version. Header and lines are written in one transaction.
func (r *Repository) Save(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}

	var saved orderRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if order.Version == 0 {
			if err := insertHeader(tx, order); err != nil {
				return err
			}
		} else {
			if err := updateHeader(tx, order); err != nil {
				return err
			}
			if err := tx.Where("order_number = ?", order.OrderNumber).Delete(&orderItemRecord{}).Error; err != nil {
				return err
			}
		}
		if items := toItemRecords(order); len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return loadOrder(tx, order.OrderNumber, &saved)
	})
	if err != nil {
		return nil, err
	}
	return saved.toDomain(), nil
}

// GetByOrderNumber loads the order with its lines in their original order.
func (r *Repository) GetByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := loadOrder(r.db.WithContext(ctx), orderNumber, &record); err != nil {
		return nil, err
	}
	return record.toDomain(), nil
}

func insertHeader(tx *gorm.DB, order *domain.Order) error {
	now := time.Now().UTC()
	record := orderRecord{
		OrderNumber: order.OrderNumber,
		Status:      string(order.Status),
		Version:     1,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = record.CreatedAt
	}
	if err := tx.Omit(clause.Associations).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ports.ErrDuplicateOrder
		}
		return err
	}
	return nil
}

func updateHeader(tx *gorm.DB, order *domain.Order) error {
	updatedAt := order.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	result := tx.Model(&orderRecord{}).
		Where("order_number = ? AND version = ?", order.OrderNumber, order.Version).
		Updates(map[string]any{
			"status":     string(order.Status),
			"updated_at": updatedAt,
			"version":    gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}
	var count int64
	if err := tx.Model(&orderRecord{}).Where("order_number = ?", order.OrderNumber).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ports.ErrNotFound
	}
	return ports.ErrVersionConflict
}

func loadOrder(db *gorm.DB, orderNumber string, into *orderRecord) error {
	err := db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(into, "order_number = ?", orderNumber).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ports.ErrNotFound
	}
	return err
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toItemRecords(order *domain.Order) []orderItemRecord {
	items := make([]orderItemRecord, 0, len(order.Items))
	for i, item := range order.Items {
		items = append(items, orderItemRecord{
			OrderNumber: order.OrderNumber,
			Position:    i,
			SKUCode:     item.SKUCode,
			Quantity:    item.Quantity,
			Price:       item.Price,
		})
	}
	return items
}

func (r orderRecord) toDomain() *domain.Order {
	order := &domain.Order{
		OrderNumber: r.OrderNumber,
		Status:      domain.Status(r.Status),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		Version:     r.Version,
		Items:       make([]domain.Item, 0, len(r.Items)),
	}
	for _, item := range r.Items {
		order.Items = append(order.Items, domain.Item{
			SKUCode:  item.SKUCode,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}
	return order
}
