package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/notification"
)

// NotificationModel is an inbox row
type NotificationModel struct {
	ID          uuid.UUID         `gorm:"type:uuid;primary_key"`
	RecipientID uuid.UUID         `gorm:"type:uuid;not null;index:idx_notifications_recipient_created,priority:1"`
	Kind        notification.Kind `gorm:"type:varchar(40);not null"`
	Title       string            `gorm:"type:varchar(200);not null"`
	Body        string            `gorm:"type:text"`
	OrderID     *uuid.UUID        `gorm:"type:uuid;index"`
	Data        []byte            `gorm:"type:jsonb"`
	ReadAt      *time.Time        `gorm:"index"`
	CreatedAt   time.Time         `gorm:"not null;index:idx_notifications_recipient_created,priority:2"`
}

// TableName returns the table name for GORM
func (NotificationModel) TableName() string {
	return "notifications"
}

// ToDomain converts the persistence model to a domain Notification.
// Undecodable data is dropped rather than failing the listing.
func (m *NotificationModel) ToDomain() notification.Notification {
	n := notification.Notification{
		ID:          m.ID,
		RecipientID: m.RecipientID,
		Kind:        m.Kind,
		Title:       m.Title,
		Body:        m.Body,
		OrderID:     m.OrderID,
		ReadAt:      m.ReadAt,
		CreatedAt:   m.CreatedAt,
	}
	if len(m.Data) > 0 {
		var data map[string]string
		if err := json.Unmarshal(m.Data, &data); err == nil {
			n.Data = data
		}
	}
	return n
}

// NotificationModelFromDomain creates a new persistence model from a domain Notification
func NotificationModelFromDomain(n *notification.Notification) (*NotificationModel, error) {
	m := &NotificationModel{
		ID:          n.ID,
		RecipientID: n.RecipientID,
		Kind:        n.Kind,
		Title:       n.Title,
		Body:        n.Body,
		OrderID:     n.OrderID,
		ReadAt:      n.ReadAt,
		CreatedAt:   n.CreatedAt,
	}
	if len(n.Data) > 0 {
		data, err := json.Marshal(n.Data)
		if err != nil {
			return nil, err
		}
		m.Data = data
	}
	return m, nil
}
