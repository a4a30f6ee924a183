package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/account"
	"github.com/homechef/backend/internal/domain/notification"
	"github.com/homechef/backend/internal/domain/shared"
	"github.com/homechef/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// RealtimeEventNotification is the websocket event type of inbox items
const RealtimeEventNotification = "notification"

// RealtimePublisher delivers an event to every open connection of a user
type RealtimePublisher interface {
	PublishToUser(ctx context.Context, userID uuid.UUID, eventType string, payload any) error
}

// PushMessage is a mobile push notification
type PushMessage struct {
	Title string
	Body  string
	Data  map[string]string
}

// PushSender delivers to device tokens. Tokens the gateway reports as no
// longer registered are returned so they can be dropped.
type PushSender interface {
	Send(ctx context.Context, tokens []string, msg PushMessage) (invalid []string, err error)
}

// Email is a templated message; the sender renders Kind's template with Data
type Email struct {
	To      string
	Name    string
	Kind    notification.Kind
	Subject string
	Body    string
	Data    map[string]string
}

// EmailSender delivers rendered email
type EmailSender interface {
	SendEmail(ctx context.Context, email Email) error
}

// Channels are the outbound delivery paths. A nil channel is disabled.
type Channels struct {
	Realtime RealtimePublisher
	Push     PushSender
	Email    EmailSender
}

// Dispatch is one notification addressed to several recipients
type Dispatch struct {
	Recipients []uuid.UUID
	Kind       notification.Kind
	Title      string
	Body       string
	OrderID    *uuid.UUID
	Data       map[string]string
	// Channels defaults to every channel. The in-app row is always written.
	Channels []notification.Channel
}

// NotificationService writes inbox items and fans them out
type NotificationService struct {
	repo     notification.Repository
	accounts account.AccountRepository
	devices  account.DeviceRepository
	channels Channels
	logger   *zap.Logger
	metrics  *telemetry.BusinessMetrics
	now      func() time.Time
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(
	repo notification.Repository,
	accounts account.AccountRepository,
	devices account.DeviceRepository,
	channels Channels,
	logger *zap.Logger,
) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		repo:     repo,
		accounts: accounts,
		devices:  devices,
		channels: channels,
		logger:   logger,
		now:      time.Now,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *NotificationService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.metrics = bm
}

// Notify persists an inbox item per recipient and then delivers it over the
// requested channels. Channel failures are logged and counted; only the
// inbox write can fail the call.
func (s *NotificationService) Notify(ctx context.Context, d Dispatch) error {
	recipients := uniqueRecipients(d.Recipients)
	if len(recipients) == 0 {
		return nil
	}

	now := s.now()
	items := make([]*notification.Notification, 0, len(recipients))
	for _, id := range recipients {
		n, err := notification.New(id, d.Kind, d.Title, d.Body, d.OrderID, d.Data, now)
		if err != nil {
			return err
		}
		items = append(items, n)
	}
	if err := s.repo.CreateBatch(ctx, items); err != nil {
		return fmt.Errorf("store notifications: %w", err)
	}

	channels := d.Channels
	if channels == nil {
		channels = notification.AllChannels
	}
	want := make(map[notification.Channel]bool, len(channels))
	for _, c := range channels {
		want[c] = true
	}

	if want[notification.ChannelRealtime] {
		s.sendRealtime(ctx, items)
	}
	if !want[notification.ChannelPush] && !want[notification.ChannelEmail] {
		return nil
	}

	accounts, err := s.accounts.FindByIDs(ctx, recipients)
	if err != nil {
		s.logger.Warn("failed to load recipients, skipping push and email",
			zap.String("kind", string(d.Kind)),
			zap.Error(err),
		)
		return nil
	}
	if want[notification.ChannelPush] {
		s.sendPush(ctx, d, accounts)
	}
	if want[notification.ChannelEmail] {
		s.sendEmail(ctx, d, accounts)
	}
	return nil
}

func (s *NotificationService) sendRealtime(ctx context.Context, items []*notification.Notification) {
	if s.channels.Realtime == nil {
		s.metrics.RecordNotification(ctx, string(notification.ChannelRealtime), telemetry.OutcomeSkipped)
		return
	}
	for _, n := range items {
		outcome := telemetry.OutcomeSent
		if err := s.channels.Realtime.PublishToUser(ctx, n.RecipientID, RealtimeEventNotification, ToNotificationResponse(n)); err != nil {
			outcome = telemetry.OutcomeFailed
			s.logger.Warn("realtime delivery failed",
				zap.String("recipient_id", n.RecipientID.String()),
				zap.Error(err),
			)
		}
		s.metrics.RecordNotification(ctx, string(notification.ChannelRealtime), outcome)
	}
}

func (s *NotificationService) sendPush(ctx context.Context, d Dispatch, accounts []account.Account) {
	if s.channels.Push == nil || s.devices == nil {
		s.metrics.RecordNotification(ctx, string(notification.ChannelPush), telemetry.OutcomeSkipped)
		return
	}
	ids := make([]uuid.UUID, 0, len(accounts))
	for _, a := range accounts {
		if a.Preferences.Push {
			ids = append(ids, a.ID)
		}
	}
	if len(ids) == 0 {
		return
	}
	devices, err := s.devices.FindByAccounts(ctx, ids)
	if err != nil {
		s.logger.Warn("failed to load devices", zap.Error(err))
		s.metrics.RecordNotification(ctx, string(notification.ChannelPush), telemetry.OutcomeFailed)
		return
	}
	if len(devices) == 0 {
		return
	}
	tokens := make([]string, len(devices))
	for i, dev := range devices {
		tokens[i] = dev.Token
	}

	data := make(map[string]string, len(d.Data)+2)
	for k, v := range d.Data {
		data[k] = v
	}
	data["kind"] = string(d.Kind)
	if d.OrderID != nil {
		data["order_id"] = d.OrderID.String()
	}

	invalid, err := s.channels.Push.Send(ctx, tokens, PushMessage{Title: d.Title, Body: d.Body, Data: data})
	if err != nil {
		s.logger.Warn("push delivery failed", zap.String("kind", string(d.Kind)), zap.Error(err))
		s.metrics.RecordNotification(ctx, string(notification.ChannelPush), telemetry.OutcomeFailed)
	} else {
		s.metrics.RecordNotification(ctx, string(notification.ChannelPush), telemetry.OutcomeSent)
	}
	for _, token := range invalid {
		if err := s.devices.DeleteByToken(ctx, token); err != nil {
			s.logger.Warn("failed to drop unregistered device", zap.Error(err))
		}
	}
}

func (s *NotificationService) sendEmail(ctx context.Context, d Dispatch, accounts []account.Account) {
	if s.channels.Email == nil {
		s.metrics.RecordNotification(ctx, string(notification.ChannelEmail), telemetry.OutcomeSkipped)
		return
	}
	for _, a := range accounts {
		if !a.Preferences.Email || a.Email == "" {
			continue
		}
		outcome := telemetry.OutcomeSent
		err := s.channels.Email.SendEmail(ctx, Email{
			To:      a.Email,
			Name:    a.DisplayName,
			Kind:    d.Kind,
			Subject: d.Title,
			Body:    d.Body,
			Data:    d.Data,
		})
		if err != nil {
			outcome = telemetry.OutcomeFailed
			s.logger.Warn("email delivery failed",
				zap.String("recipient_id", a.ID.String()),
				zap.String("kind", string(d.Kind)),
				zap.Error(err),
			)
		}
		s.metrics.RecordNotification(ctx, string(notification.ChannelEmail), outcome)
	}
}

func uniqueRecipients(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// List returns the caller's inbox, newest first
func (s *NotificationService) List(ctx context.Context, actor account.Actor, q ListQuery) ([]NotificationResponse, int64, error) {
	filter := shared.Filter{
		Page:     q.Page,
		PageSize: q.PageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
	}.Normalize()
	items, total, err := s.repo.FindByRecipient(ctx, actor.ID, q.UnreadOnly, filter)
	if err != nil {
		return nil, 0, err
	}
	return ToNotificationResponses(items), total, nil
}

// MarkRead marks one of the caller's notifications as read
func (s *NotificationService) MarkRead(ctx context.Context, actor account.Actor, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, actor.ID, id, s.now())
}

// MarkAllRead clears the caller's inbox badge
func (s *NotificationService) MarkAllRead(ctx context.Context, actor account.Actor) (*MarkAllReadResponse, error) {
	n, err := s.repo.MarkAllRead(ctx, actor.ID, s.now())
	if err != nil {
		return nil, err
	}
	return &MarkAllReadResponse{Marked: n}, nil
}

// UnreadCount returns the caller's unread notifications
func (s *NotificationService) UnreadCount(ctx context.Context, actor account.Actor) (*UnreadCountResponse, error) {
	n, err := s.repo.CountUnread(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return &UnreadCountResponse{Unread: n}, nil
}
