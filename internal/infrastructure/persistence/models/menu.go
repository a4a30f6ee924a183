package models

import (
	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/menu"
	"github.com/homechef/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// DishModel is the persistence model for the Dish aggregate root
type DishModel struct {
	AggregateModel
	CookID      uuid.UUID            `gorm:"type:uuid;not null;index"`
	Name        string               `gorm:"type:varchar(200);not null"`
	Description string               `gorm:"type:text"`
	Category    string               `gorm:"type:varchar(100);index"`
	Price       decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	Currency    valueobject.Currency `gorm:"type:varchar(3);not null"`
	PrepMinutes int                  `gorm:"not null"`
	Available   bool                 `gorm:"not null;index"`
	ImageKey    string               `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (DishModel) TableName() string {
	return "dishes"
}

// ToDomain converts the persistence model to a domain Dish
func (m *DishModel) ToDomain() *menu.Dish {
	price, err := valueobject.NewMoney(m.Price, m.Currency)
	if err != nil {
		price = valueobject.Zero(valueobject.DefaultCurrency)
	}
	return &menu.Dish{
		BaseAggregateRoot: m.ToAggregateRoot(),
		CookID:            m.CookID,
		Name:              m.Name,
		Description:       m.Description,
		Category:          m.Category,
		Price:             price,
		PrepMinutes:       m.PrepMinutes,
		Available:         m.Available,
		ImageKey:          m.ImageKey,
	}
}

// FromDomain populates the persistence model from a domain Dish
func (m *DishModel) FromDomain(d *menu.Dish) {
	m.FromDomainAggregateRoot(d.BaseAggregateRoot)
	m.CookID = d.CookID
	m.Name = d.Name
	m.Description = d.Description
	m.Category = d.Category
	m.Price = d.Price.Amount()
	m.Currency = d.Price.Currency()
	m.PrepMinutes = d.PrepMinutes
	m.Available = d.Available
	m.ImageKey = d.ImageKey
}

// DishModelFromDomain creates a new persistence model from a domain Dish
func DishModelFromDomain(d *menu.Dish) *DishModel {
	m := &DishModel{}
	m.FromDomain(d)
	return m
}
