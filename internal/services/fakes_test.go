package services

import (
	"context"
	"sync"
	"time"

	"github.com/platewise/backend/internal/models"
	"github.com/platewise/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeNotificationRepo is an in-memory stand-in for the Mongo repository.
type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []*models.Notification
	createErrFor  map[uint]error // per-recipient Create failures
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{createErrFor: map[uint]error{}}
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.createErrFor[n.Recipient]; err != nil {
		return err
	}
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	stored := *n
	f.notifications = append(f.notifications, &stored)
	return nil
}

func (f *fakeNotificationRepo) ListByRecipient(_ context.Context, recipient uint, page, limit int64, isRead *bool) ([]models.Notification, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := []models.Notification{}
	for i := len(f.notifications) - 1; i >= 0; i-- { // newest first (insertion order)
		n := f.notifications[i]
		if n.Recipient != recipient {
			continue
		}
		if isRead != nil && n.IsRead != *isRead {
			continue
		}
		matched = append(matched, *n)
	}
	total := int64(len(matched))
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (f *fakeNotificationRepo) UnreadCount(_ context.Context, recipient uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.notifications {
		if n.Recipient == recipient && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, id primitive.ObjectID, recipient uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.notifications {
		if n.ID == id && n.Recipient == recipient {
			if !n.IsRead {
				now := time.Now()
				n.IsRead = true
				n.ReadAt = &now
			}
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeNotificationRepo) MarkAllRead(_ context.Context, recipient uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var modified int64
	now := time.Now()
	for _, n := range f.notifications {
		if n.Recipient == recipient && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &now
			modified++
		}
	}
	return modified, nil
}

func (f *fakeNotificationRepo) SetEmailSent(_ context.Context, id primitive.ObjectID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.notifications {
		if n.ID == id {
			n.Delivery.Email = models.ChannelState{Sent: true, SentAt: &at}
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeNotificationRepo) DeleteOne(_ context.Context, id primitive.ObjectID, recipient uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.notifications {
		if n.ID == id && n.Recipient == recipient {
			f.notifications = append(f.notifications[:i], f.notifications[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeNotificationRepo) DeleteAll(_ context.Context, recipient uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.notifications[:0]
	var deleted int64
	for _, n := range f.notifications {
		if n.Recipient == recipient {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	f.notifications = kept
	return deleted, nil
}

func (f *fakeNotificationRepo) StatsByType(_ context.Context) ([]models.NotificationTypeStat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	byType := map[models.NotificationType]*models.NotificationTypeStat{}
	for _, n := range f.notifications {
		stat, ok := byType[n.Type]
		if !ok {
			stat = &models.NotificationTypeStat{Type: n.Type}
			byType[n.Type] = stat
		}
		stat.Total++
		if !n.IsRead {
			stat.Unread++
		}
	}
	stats := []models.NotificationTypeStat{}
	for _, s := range byType {
		stats = append(stats, *s)
	}
	return stats, nil
}

func (f *fakeNotificationRepo) all() []*models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Notification, len(f.notifications))
	copy(out, f.notifications)
	return out
}

// fakeUserRepo is an in-memory user directory.
type fakeUserRepo struct {
	users     map[uint]*models.User
	activeIDs []uint
	listErr   error
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	f := &fakeUserRepo{users: map[uint]*models.User{}}
	for _, u := range users {
		f.users[u.ID] = u
		if u.Status == models.UserStatusActive {
			f.activeIDs = append(f.activeIDs, u.ID)
		}
	}
	return f
}

func (f *fakeUserRepo) GetUserByID(id uint) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetUserByFirebaseUID(uid string) (*models.User, error) {
	for _, u := range f.users {
		if u.FirebaseUID == uid {
			return u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUserRepo) ListActiveIDs() ([]uint, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.activeIDs, nil
}

func (f *fakeUserRepo) Count() (int64, error) { return int64(len(f.users)), nil }

func (f *fakeUserRepo) CountCreatedBetween(from, to time.Time) (int64, error) { return 0, nil }

func (f *fakeUserRepo) CountByStatus(status string) (int64, error) {
	var count int64
	for _, u := range f.users {
		if u.Status == status {
			count++
		}
	}
	return count, nil
}

func (f *fakeUserRepo) CountCreatedPerDay(from, to time.Time) (map[string]int64, error) {
	return map[string]int64{}, nil
}

// fakeMailer records sends and can be forced to fail.
type fakeMailer struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, to)
	return nil
}
