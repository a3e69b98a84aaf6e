package notification

import (
	"context"
	"fmt"

	"synca/models"
	"synca/repository"
	"synca/services/logger"

	"github.com/goccy/go-json"
	"github.com/olahol/melody"
)

// SessionUserKey khóa lưu userID trong melody.Session
const SessionUserKey = "userID"

// Pusher đẩy payload tới các kết nối websocket của một user
type Pusher interface {
	SendToUser(userID uint, payload []byte) error
}

type MelodyService struct {
	m *melody.Melody
}

func NewMelodyService(m *melody.Melody) *MelodyService {
	return &MelodyService{m: m}
}

func (s *MelodyService) SendToUser(userID uint, payload []byte) error {
	if s.m == nil {
		return fmt.Errorf("melody instance is nil")
	}
	return s.m.BroadcastFilter(payload, func(sess *melody.Session) bool {
		v, ok := sess.Get(SessionUserKey)
		if !ok {
			return false
		}
		id, ok := v.(uint)
		return ok && id == userID
	})
}

// Service lưu thông báo rồi đẩy realtime cho người nhận
type Service interface {
	Notify(ctx context.Context, n *models.Notification) error
}

type StoreService struct {
	store  repository.Store
	pusher Pusher
	logger logger.Logger
}

// NewStoreService pusher có thể nil, khi đó chỉ lưu thông báo
func NewStoreService(store repository.Store, pusher Pusher, log logger.Logger) *StoreService {
	return &StoreService{store: store, pusher: pusher, logger: log}
}

func (s *StoreService) Notify(ctx context.Context, n *models.Notification) error {
	if n.UserID == 0 {
		return nil
	}
	if err := s.store.Notifications().Create(ctx, n); err != nil {
		return err
	}
	if s.pusher == nil {
		return nil
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	if err := s.pusher.SendToUser(n.UserID, payload); err != nil {
		// người dùng offline vẫn đọc được qua GET /notifications
		s.logger.Debug("push notification %d to user %d failed: %v", n.ID, n.UserID, err)
	}
	return nil
}

// MessageBuilder dựng nội dung thông báo cho một booking
type MessageBuilder struct {
	title   string
	booking *models.Booking
}

func NewMessageBuilder(title string, booking *models.Booking) *MessageBuilder {
	return &MessageBuilder{title: title, booking: booking}
}

func (b *MessageBuilder) Build(userID uint) *models.Notification {
	id := b.booking.ID
	return &models.Notification{
		UserID:      userID,
		Message:     b.title,
		Description: b.describe(),
		BookingID:   &id,
	}
}

func (b *MessageBuilder) describe() string {
	bed := b.booking.Bed
	if bed == nil || bed.Room == nil || bed.Room.PG == nil {
		return fmt.Sprintf("Booking #%d", b.booking.ID)
	}
	return fmt.Sprintf("Booking #%d · %s · Room %s · Bed %s",
		b.booking.ID, bed.Room.PG.Name, bed.Room.RoomNumber, bed.Identifier)
}
