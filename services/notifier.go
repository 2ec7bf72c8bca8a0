package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"saree-api/models"
	"saree-api/realtime"
)

// Push is the content of one notification.
type Push struct {
	Type    string                 `json:"type" binding:"required,oneof=order_update promotion system driver_alert"`
	Title   string                 `json:"title" binding:"required"`
	Message string                 `json:"message" binding:"required"`
	Data    map[string]interface{} `json:"data"`
}

// Notifier records a notification row and then tries to deliver it live.
// The row is the durable record; live delivery is best effort.
type Notifier struct {
	db  *gorm.DB
	hub *realtime.Hub
}

func NewNotifier(db *gorm.DB, hub *realtime.Hub) *Notifier {
	return &Notifier{db: db, hub: hub}
}

// ToUser persists a notification for one recipient and pushes it if the
// recipient is connected.
func (n *Notifier) ToUser(ctx context.Context, role models.UserRole, userID uuid.UUID, p Push) (*models.Notification, error) {
	row, err := n.persist(ctx, string(role), &userID, p)
	if err != nil {
		return nil, err
	}
	if n.hub.SendToUser(userID, *row) {
		n.markSent(ctx, row)
	}
	return row, nil
}

// ToRole persists one notification addressed to a role and fans it out to
// every connected user of that role.
func (n *Notifier) ToRole(ctx context.Context, role models.UserRole, p Push) (*models.Notification, int, error) {
	row, err := n.persist(ctx, string(role), nil, p)
	if err != nil {
		return nil, 0, err
	}
	sent := n.hub.BroadcastToRole(role, *row)
	if sent > 0 {
		n.markSent(ctx, row)
	}
	return row, sent, nil
}

// ToAll addresses every connected user.
func (n *Notifier) ToAll(ctx context.Context, p Push) (*models.Notification, int, error) {
	row, err := n.persist(ctx, models.RecipientAll, nil, p)
	if err != nil {
		return nil, 0, err
	}
	sent := n.hub.BroadcastAll(*row)
	if sent > 0 {
		n.markSent(ctx, row)
	}
	return row, sent, nil
}

// Live pushes an ephemeral payload without recording it.
func (n *Notifier) Live(userID uuid.UUID, payload interface{}) bool {
	return n.hub.SendToUser(userID, payload)
}

// List returns the notifications addressed to a user, directly or through
// their role, newest first.
func (n *Notifier) List(ctx context.Context, role models.UserRole, userID uuid.UUID, limit int) ([]models.Notification, error) {
	var rows []models.Notification
	err := n.db.WithContext(ctx).
		Where("(recipient_id = ?) OR (recipient_id IS NULL AND recipient_type IN ?)", userID, []string{string(role), models.RecipientAll}).
		Order("created_at desc").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// MarkRead flags a notification as read. It accepts exactly the rows List
// shows the caller. A role or all-users broadcast is one shared row, so
// reading it marks it read for its whole audience.
func (n *Notifier) MarkRead(ctx context.Context, role models.UserRole, userID, id uuid.UUID) error {
	res := n.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ?", id).
		Where("(recipient_id = ?) OR (recipient_id IS NULL AND recipient_type IN ?)", userID, []string{string(role), models.RecipientAll}).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (n *Notifier) persist(ctx context.Context, recipientType string, recipientID *uuid.UUID, p Push) (*models.Notification, error) {
	row := &models.Notification{
		Type:          p.Type,
		Title:         p.Title,
		Message:       p.Message,
		Data:          datatypes.JSONMap(p.Data),
		RecipientType: recipientType,
		RecipientID:   recipientID,
	}
	if err := n.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, fmt.Errorf("persist notification: %w", err)
	}
	return row, nil
}

func (n *Notifier) markSent(ctx context.Context, row *models.Notification) {
	now := time.Now().UTC()
	err := n.db.WithContext(ctx).Model(row).Updates(map[string]interface{}{"is_sent": true, "sent_at": now}).Error
	if err != nil {
		logrus.WithError(err).WithField("notification_id", row.ID).Warn("mark notification sent")
		return
	}
	row.IsSent = true
	row.SentAt = &now
}
