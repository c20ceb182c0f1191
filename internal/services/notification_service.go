package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/platewise/backend/internal/models"
	"github.com/platewise/backend/internal/repositories"
	"github.com/platewise/backend/pkg/metrics"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Mailer is the external email-delivery collaborator. Delivery is best-effort:
// a failure never rolls back the persisted notification.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

const (
	// emailSendTimeout bounds a single email delivery attempt.
	emailSendTimeout = 5 * time.Second
	// fanoutConcurrency bounds parallel persistence during bulk fan-out.
	fanoutConcurrency = 8
	// unreadCacheTTL keeps the cached unread count fresh enough for badges.
	unreadCacheTTL = 30 * time.Second
)

// NotifyInput carries everything needed to create one notification.
type NotifyInput struct {
	Type         models.NotificationType
	Recipient    uint
	Sender       *uint // nil for system-originated notifications
	Data         models.NotificationData
	TemplateArgs []string
	SendEmail    bool
	Priority     models.NotificationPriority
}

// NotificationService creates, lists and mutates notifications.
type NotificationService struct {
	repo   repositories.NotificationRepository
	users  repositories.UserRepository
	mailer Mailer
	rdb    *redis.Client // optional; nil disables caching and pub/sub
	log    *zap.Logger
}

// NewNotificationService creates a new NotificationService. mailer and rdb may
// be nil, disabling the email channel and the Redis side-effects respectively.
func NewNotificationService(repo repositories.NotificationRepository, users repositories.UserRepository, mailer Mailer, rdb *redis.Client, log *zap.Logger) *NotificationService {
	return &NotificationService{
		repo:   repo,
		users:  users,
		mailer: mailer,
		rdb:    rdb,
		log:    log,
	}
}

// Notify renders, persists and dispatches a single notification. It returns
// (nil, nil) when the self-notify guard fires: no record is created and that
// is not an error.
func (s *NotificationService) Notify(ctx context.Context, input NotifyInput) (*models.Notification, error) {
	if input.Recipient == 0 {
		return nil, fmt.Errorf("notification recipient is required")
	}
	if input.Sender != nil && *input.Sender == 0 {
		return nil, fmt.Errorf("notification sender must be a valid user id")
	}
	if input.Sender != nil && *input.Sender == input.Recipient && !AllowsSelfNotify(input.Type) {
		return nil, nil
	}

	title, message, err := RenderNotification(input.Type, input.TemplateArgs)
	if err != nil {
		return nil, err
	}

	priority := input.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	now := time.Now()
	n := &models.Notification{
		Recipient: input.Recipient,
		Sender:    input.Sender,
		Type:      input.Type,
		Title:     title,
		Message:   message,
		Data:      input.Data,
		Priority:  priority,
		Delivery: models.DeliveryState{
			InApp: models.ChannelState{Sent: true, SentAt: &now},
			Email: models.ChannelState{Sent: false},
		},
		CreatedAt: now,
		ExpiresAt: now.Add(models.NotificationTTL),
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	metrics.NotificationsCreated.WithLabelValues(string(n.Type)).Inc()

	if input.SendEmail {
		s.deliverEmail(ctx, n)
	}

	s.publish(ctx, n)
	s.invalidateUnreadCount(ctx, n.Recipient)

	return n, nil
}

// deliverEmail attempts the email side channel. Failure is logged and leaves
// delivery.email.sent false; it never surfaces as the operation's error.
func (s *NotificationService) deliverEmail(ctx context.Context, n *models.Notification) {
	if s.mailer == nil {
		return
	}

	recipient, err := s.users.GetUserByID(n.Recipient)
	if err != nil {
		s.log.Warn("email delivery skipped: recipient lookup failed",
			zap.Uint("recipient", n.Recipient), zap.Error(err))
		metrics.EmailDeliveryFailures.Inc()
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, emailSendTimeout)
	defer cancel()

	if err := s.mailer.Send(sendCtx, recipient.Email, n.Title, n.Message); err != nil {
		s.log.Warn("email delivery failed",
			zap.Uint("recipient", n.Recipient),
			zap.String("type", string(n.Type)),
			zap.Error(err))
		metrics.EmailDeliveryFailures.Inc()
		return
	}

	sentAt := time.Now()
	if err := s.repo.SetEmailSent(ctx, n.ID, sentAt); err != nil {
		s.log.Warn("failed to record email delivery", zap.String("id", n.ID.Hex()), zap.Error(err))
		return
	}
	n.Delivery.Email = models.ChannelState{Sent: true, SentAt: &sentAt}
}

// NotifyMany fans a notification out to many recipients with bounded
// concurrency. A failure for one recipient is logged and excluded; the rest
// proceed. The returned slice holds only the successfully created records.
func (s *NotificationService) NotifyMany(ctx context.Context, recipients []uint, input NotifyInput) []*models.Notification {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		sem     = make(chan struct{}, fanoutConcurrency)
		created = make([]*models.Notification, 0, len(recipients))
	)

	for _, recipient := range recipients {
		wg.Add(1)
		sem <- struct{}{}
		go func(recipient uint) {
			defer wg.Done()
			defer func() { <-sem }()

			perRecipient := input
			perRecipient.Recipient = recipient
			n, err := s.Notify(ctx, perRecipient)
			if err != nil {
				s.log.Warn("fan-out delivery failed for recipient",
					zap.Uint("recipient", recipient),
					zap.String("type", string(input.Type)),
					zap.Error(err))
				return
			}
			if n == nil {
				return
			}
			mu.Lock()
			created = append(created, n)
			mu.Unlock()
		}(recipient)
	}
	wg.Wait()

	return created
}

// Announce fans a system announcement out to every active user and returns
// the number of notifications created.
func (s *NotificationService) Announce(ctx context.Context, req models.AnnouncementRequest) (int, error) {
	recipients, err := s.users.ListActiveIDs()
	if err != nil {
		return 0, err
	}

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	batchID := uuid.NewString()
	created := s.NotifyMany(ctx, recipients, NotifyInput{
		Type:         models.NotificationSystemAnnouncement,
		Sender:       nil, // system origin
		TemplateArgs: []string{req.Title, req.Message},
		Data: models.NotificationData{
			Metadata: map[string]interface{}{"batchId": batchID},
		},
		SendEmail: req.Email,
		Priority:  priority,
	})

	metrics.AnnouncementFanoutSize.Observe(float64(len(created)))
	s.log.Info("announcement fan-out complete",
		zap.String("batchId", batchID),
		zap.Int("requested", len(recipients)),
		zap.Int("sent", len(created)))

	return len(created), nil
}

// List returns a page of the recipient's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, recipient uint, page, limit int64, isRead *bool) ([]models.Notification, int64, error) {
	return s.repo.ListByRecipient(ctx, recipient, page, limit, isRead)
}

// UnreadCount returns the recipient's unread count, served from the Redis
// cache when available.
func (s *NotificationService) UnreadCount(ctx context.Context, recipient uint) (int64, error) {
	key := unreadCountKey(recipient)
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, key).Result(); err == nil {
			if count, err := strconv.ParseInt(cached, 10, 64); err == nil {
				return count, nil
			}
		}
	}

	count, err := s.repo.UnreadCount(ctx, recipient)
	if err != nil {
		return 0, err
	}
	if s.rdb != nil {
		s.rdb.Set(ctx, key, count, unreadCacheTTL)
	}
	return count, nil
}

// MarkRead marks one owned notification as read. Idempotent on readAt.
func (s *NotificationService) MarkRead(ctx context.Context, id primitive.ObjectID, recipient uint) error {
	if err := s.repo.MarkRead(ctx, id, recipient); err != nil {
		return err
	}
	s.invalidateUnreadCount(ctx, recipient)
	return nil
}

// MarkAllRead marks every unread notification of the recipient and returns
// the number modified.
func (s *NotificationService) MarkAllRead(ctx context.Context, recipient uint) (int64, error) {
	modified, err := s.repo.MarkAllRead(ctx, recipient)
	if err != nil {
		return 0, err
	}
	s.invalidateUnreadCount(ctx, recipient)
	return modified, nil
}

// DeleteOne removes one owned notification.
func (s *NotificationService) DeleteOne(ctx context.Context, id primitive.ObjectID, recipient uint) error {
	if err := s.repo.DeleteOne(ctx, id, recipient); err != nil {
		return err
	}
	s.invalidateUnreadCount(ctx, recipient)
	return nil
}

// DeleteAll removes every notification of the recipient and returns the count.
func (s *NotificationService) DeleteAll(ctx context.Context, recipient uint) (int64, error) {
	deleted, err := s.repo.DeleteAll(ctx, recipient)
	if err != nil {
		return 0, err
	}
	s.invalidateUnreadCount(ctx, recipient)
	return deleted, nil
}

// StatsByType returns the admin per-type breakdown.
func (s *NotificationService) StatsByType(ctx context.Context) ([]models.NotificationTypeStat, error) {
	return s.repo.StatsByType(ctx)
}

// publish pushes the created notification to the recipient's Redis channel so
// connected clients can update in real time. Best-effort.
func (s *NotificationService) publish(ctx context.Context, n *models.Notification) {
	if s.rdb == nil {
		return
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return
	}
	s.rdb.Publish(ctx, fmt.Sprintf("user_notifications:%d", n.Recipient), payload)
}

func (s *NotificationService) invalidateUnreadCount(ctx context.Context, recipient uint) {
	if s.rdb == nil {
		return
	}
	s.rdb.Del(ctx, unreadCountKey(recipient))
}

func unreadCountKey(recipient uint) string {
	return fmt.Sprintf("notifications:unread:%d", recipient)
}
