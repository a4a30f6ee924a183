package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/loyalty"
)

// LoyaltyAccountModel is the persistence model for the loyalty Account aggregate root
type LoyaltyAccountModel struct {
	AggregateModel
	ClientID       uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex"`
	Balance        int64        `gorm:"not null;default:0;check:balance >= 0"`
	LifetimeEarned int64        `gorm:"not null;default:0"`
	Tier           loyalty.Tier `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (LoyaltyAccountModel) TableName() string {
	return "loyalty_accounts"
}

// ToDomain converts the persistence model to a domain loyalty Account
func (m *LoyaltyAccountModel) ToDomain() *loyalty.Account {
	return &loyalty.Account{
		BaseAggregateRoot: m.ToAggregateRoot(),
		ClientID:          m.ClientID,
		Balance:           m.Balance,
		LifetimeEarned:    m.LifetimeEarned,
		Tier:              m.Tier,
	}
}

// LoyaltyAccountModelFromDomain creates a new persistence model from a domain loyalty Account
func LoyaltyAccountModelFromDomain(a *loyalty.Account) *LoyaltyAccountModel {
	m := &LoyaltyAccountModel{
		ClientID:       a.ClientID,
		Balance:        a.Balance,
		LifetimeEarned: a.LifetimeEarned,
		Tier:           a.Tier,
	}
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	return m
}

// LoyaltyEntryModel is an append-only ledger row. The partial unique index
// on (order_id, type) makes earning and reversing idempotent per order.
type LoyaltyEntryModel struct {
	ID           uuid.UUID         `gorm:"type:uuid;primary_key"`
	AccountID    uuid.UUID         `gorm:"type:uuid;not null;index"`
	ClientID     uuid.UUID         `gorm:"type:uuid;not null;index:idx_loyalty_entries_client_created,priority:1"`
	Type         loyalty.EntryType `gorm:"type:varchar(20);not null;uniqueIndex:idx_loyalty_entries_order_type,priority:2,where:order_id IS NOT NULL"`
	Points       int64             `gorm:"not null"`
	BalanceAfter int64             `gorm:"not null"`
	OrderID      *uuid.UUID        `gorm:"type:uuid;uniqueIndex:idx_loyalty_entries_order_type,priority:1,where:order_id IS NOT NULL"`
	Reason       string            `gorm:"type:varchar(500)"`
	CreatedBy    *uuid.UUID        `gorm:"type:uuid"`
	CreatedAt    time.Time         `gorm:"not null;index:idx_loyalty_entries_client_created,priority:2"`
}

// TableName returns the table name for GORM
func (LoyaltyEntryModel) TableName() string {
	return "loyalty_entries"
}

// ToDomain converts the persistence model to a domain LedgerEntry
func (m *LoyaltyEntryModel) ToDomain() loyalty.LedgerEntry {
	return loyalty.LedgerEntry{
		ID:           m.ID,
		AccountID:    m.AccountID,
		ClientID:     m.ClientID,
		Type:         m.Type,
		Points:       m.Points,
		BalanceAfter: m.BalanceAfter,
		OrderID:      m.OrderID,
		Reason:       m.Reason,
		CreatedBy:    m.CreatedBy,
		CreatedAt:    m.CreatedAt,
	}
}

// LoyaltyEntryModelFromDomain creates a new persistence model from a domain LedgerEntry
func LoyaltyEntryModelFromDomain(e *loyalty.LedgerEntry) *LoyaltyEntryModel {
	return &LoyaltyEntryModel{
		ID:           e.ID,
		AccountID:    e.AccountID,
		ClientID:     e.ClientID,
		Type:         e.Type,
		Points:       e.Points,
		BalanceAfter: e.BalanceAfter,
		OrderID:      e.OrderID,
		Reason:       e.Reason,
		CreatedBy:    e.CreatedBy,
		CreatedAt:    e.CreatedAt,
	}
}
