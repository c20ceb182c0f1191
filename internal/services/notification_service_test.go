package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/platewise/backend/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func uintPtr(v uint) *uint { return &v }

func newTestService(t *testing.T, repo *fakeNotificationRepo, users *fakeUserRepo, mailer Mailer, rdb *redis.Client) *NotificationService {
	t.Helper()
	return NewNotificationService(repo, users, mailer, rdb, zaptest.NewLogger(t))
}

func TestNotifyCreatesNotification(t *testing.T) {
	repo := newFakeNotificationRepo()
	users := newFakeUserRepo(&models.User{ID: 1, Email: "alice@example.com", Status: models.UserStatusActive})
	svc := newTestService(t, repo, users, nil, nil)

	before := time.Now()
	n, err := svc.Notify(context.Background(), NotifyInput{
		Type:         models.NotificationRecipeLike,
		Recipient:    1,
		Sender:       uintPtr(2),
		TemplateArgs: []string{"bob", "Shakshuka"},
	})
	require.NoError(t, err)
	require.NotNil(t, n)

	assert.Equal(t, "New like on your recipe", n.Title)
	assert.Equal(t, `bob liked your recipe "Shakshuka"`, n.Message)
	assert.Equal(t, models.PriorityMedium, n.Priority)
	assert.False(t, n.IsRead)
	assert.Nil(t, n.ReadAt)

	// In-app delivery is implied by persistence; email was not requested.
	assert.True(t, n.Delivery.InApp.Sent)
	require.NotNil(t, n.Delivery.InApp.SentAt)
	assert.False(t, n.Delivery.Email.Sent)
	assert.Nil(t, n.Delivery.Email.SentAt)

	assert.WithinDuration(t, before.Add(models.NotificationTTL), n.ExpiresAt, 5*time.Second)
	assert.Len(t, repo.all(), 1)
}

func TestNotifySelfGuard(t *testing.T) {
	repo := newFakeNotificationRepo()
	users := newFakeUserRepo(&models.User{ID: 1, Status: models.UserStatusActive})
	svc := newTestService(t, repo, users, nil, nil)

	n, err := svc.Notify(context.Background(), NotifyInput{
		Type:         models.NotificationRecipeLike,
		Recipient:    1,
		Sender:       uintPtr(1),
		TemplateArgs: []string{"alice", "Shakshuka"},
	})
	require.NoError(t, err)
	assert.Nil(t, n, "liking your own recipe must not notify")
	assert.Empty(t, repo.all())
}

func TestNotifySelfGuardExceptions(t *testing.T) {
	for _, notifType := range []models.NotificationType{
		models.NotificationRecipePublished,
		models.NotificationRecipeFeatured,
	} {
		t.Run(string(notifType), func(t *testing.T) {
			repo := newFakeNotificationRepo()
			users := newFakeUserRepo(&models.User{ID: 1, Status: models.UserStatusActive})
			svc := newTestService(t, repo, users, nil, nil)

			n, err := svc.Notify(context.Background(), NotifyInput{
				Type:         notifType,
				Recipient:    1,
				Sender:       uintPtr(1),
				TemplateArgs: []string{"Ramen"},
			})
			require.NoError(t, err)
			require.NotNil(t, n)
			assert.Len(t, repo.all(), 1)
		})
	}
}

func TestNotifyUnknownTypeRejected(t *testing.T) {
	repo := newFakeNotificationRepo()
	users := newFakeUserRepo(&models.User{ID: 1, Status: models.UserStatusActive})
	svc := newTestService(t, repo, users, nil, nil)

	n, err := svc.Notify(context.Background(), NotifyInput{
		Type:      models.NotificationType("carrier_pigeon"),
		Recipient: 1,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownNotificationType)
	assert.Nil(t, n)
	assert.Empty(t, repo.all())
}

func TestNotifyEmailDelivery(t *testing.T) {
	repo := newFakeNotificationRepo()
	users := newFakeUserRepo(&models.User{ID: 1, Email: "alice@example.com", Status: models.UserStatusActive})
	mailer := &fakeMailer{}
	svc := newTestService(t, repo, users, mailer, nil)

	n, err := svc.Notify(context.Background(), NotifyInput{
		Type:         models.NotificationRecipeFeatured,
		Recipient:    1,
		TemplateArgs: []string{"Ramen"},
		SendEmail:    true,
	})
	require.NoError(t, err)
	require.NotNil(t, n)

	assert.Equal(t, []string{"alice@example.com"}, mailer.sent)
	assert.True(t, n.Delivery.Email.Sent)
	require.NotNil(t, n.Delivery.Email.SentAt)

	stored := repo.all()[0]
	assert.True(t, stored.Delivery.Email.Sent)
}

func TestNotifyEmailFailureIsNonFatal(t *testing.T) {
	repo := newFakeNotificationRepo()
	users := newFakeUserRepo(&models.User{ID: 1, Email: "alice@example.com", Status: models.UserStatusActive})
	mailer := &fakeMailer{err: errors.New("ses: throttled")}
	svc := newTestService(t, repo, users, mailer, nil)

	n, err := svc.Notify(context.Background(), NotifyInput{
		Type:         models.NotificationRecipeFeatured,
		Recipient:    1,
		TemplateArgs: []string{"Ramen"},
		SendEmail:    true,
	})
	require.NoError(t, err, "email failure must not fail the operation")
	require.NotNil(t, n)

	assert.True(t, n.Delivery.InApp.Sent)
	assert.False(t, n.Delivery.Email.Sent)
	assert.Len(t, repo.all(), 1, "notification is persisted despite the email failure")
}

func TestNotifyManyPartialFailure(t *testing.T) {
	repo := newFakeNotificationRepo()
	repo.createErrFor[3] = errors.New("write conflict")
	users := newFakeUserRepo(
		&models.User{ID: 1, Status: models.UserStatusActive},
		&models.User{ID: 2, Status: models.UserStatusActive},
		&models.User{ID: 3, Status: models.UserStatusActive},
		&models.User{ID: 4, Status: models.UserStatusActive},
		&models.User{ID: 5, Status: models.UserStatusActive},
	)
	svc := newTestService(t, repo, users, nil, nil)

	created := svc.NotifyMany(context.Background(), []uint{1, 2, 3, 4, 5}, NotifyInput{
		Type:         models.NotificationRecipePublished,
		TemplateArgs: []string{"Ramen"},
	})

	assert.Len(t, created, 4, "one failed recipient must not sink the rest")
	recipients := map[uint]bool{}
	for _, n := range created {
		recipients[n.Recipient] = true
	}
	assert.False(t, recipients[3])
}

func TestMarkReadIdempotent(t *testing.T) {
	repo := newFakeNotificationRepo()
	users := newFakeUserRepo(
		&models.User{ID: 1, Status: models.UserStatusActive},
		&models.User{ID: 2, Status: models.UserStatusActive},
	)
	svc := newTestService(t, repo, users, nil, nil)
	ctx := context.Background()

	n, err := svc.Notify(ctx, NotifyInput{
		Type:         models.NotificationUserFollow,
		Recipient:    1,
		Sender:       uintPtr(2),
		TemplateArgs: []string{"bob"},
	})
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(ctx, n.ID, 1))
	stored := repo.all()[0]
	require.True(t, stored.IsRead)
	require.NotNil(t, stored.ReadAt)

	// Pin the original read time so a rewrite would be visible.
	firstReadAt := time.Now().Add(-time.Hour)
	stored.ReadAt = &firstReadAt

	require.NoError(t, svc.MarkRead(ctx, n.ID, 1), "repeat by the owner succeeds")
	stored = repo.all()[0]
	assert.True(t, stored.IsRead)
	require.NotNil(t, stored.ReadAt)
	assert.Equal(t, firstReadAt, *stored.ReadAt, "read time is set exactly once")
}

func TestAnnounce(t *testing.T) {
	repo := newFakeNotificationRepo()
	users := newFakeUserRepo(
		&models.User{ID: 1, Status: models.UserStatusActive},
		&models.User{ID: 2, Status: models.UserStatusActive},
		&models.User{ID: 3, Status: models.UserStatusBanned},
		&models.User{ID: 4, Status: models.UserStatusActive},
	)
	svc := newTestService(t, repo, users, nil, nil)

	sent, err := svc.Announce(context.Background(), models.AnnouncementRequest{
		Title:    "New feature: collections",
		Message:  "Group your recipes into shareable collections.",
		Priority: models.PriorityHigh,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, sent, "only active users receive announcements")

	for _, n := range repo.all() {
		assert.Equal(t, models.NotificationSystemAnnouncement, n.Type)
		assert.Nil(t, n.Sender, "announcements are system-originated")
		assert.Equal(t, "New feature: collections", n.Title)
		assert.Equal(t, models.PriorityHigh, n.Priority)
		assert.NotEmpty(t, n.Data.Metadata["batchId"])
	}
}

func TestAnnounceListFailure(t *testing.T) {
	repo := newFakeNotificationRepo()
	users := newFakeUserRepo()
	users.listErr = errors.New("pg: connection refused")
	svc := newTestService(t, repo, users, nil, nil)

	_, err := svc.Announce(context.Background(), models.AnnouncementRequest{Title: "t", Message: "m"})
	require.Error(t, err)
	assert.Empty(t, repo.all())
}

func TestUnreadCountUsesRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	repo := newFakeNotificationRepo()
	users := newFakeUserRepo(&models.User{ID: 7, Status: models.UserStatusActive})
	svc := newTestService(t, repo, users, nil, rdb)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Notify(ctx, NotifyInput{
			Type:         models.NotificationUserFollow,
			Recipient:    7,
			Sender:       uintPtr(uint(10 + i)),
			TemplateArgs: []string{fmt.Sprintf("user%d", i)},
		})
		require.NoError(t, err)
	}

	count, err := svc.UnreadCount(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	// Mutate the store behind the cache's back: the stale value is served
	// until the TTL elapses or a mutation invalidates it.
	_, err = repo.MarkAllRead(ctx, 7)
	require.NoError(t, err)

	count, err = svc.UnreadCount(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count, "cached value is served within the TTL")

	mr.FastForward(unreadCacheTTL + time.Second)

	count, err = svc.UnreadCount(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestMarkAllReadInvalidatesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	repo := newFakeNotificationRepo()
	users := newFakeUserRepo(&models.User{ID: 7, Status: models.UserStatusActive})
	svc := newTestService(t, repo, users, nil, rdb)
	ctx := context.Background()

	_, err := svc.Notify(ctx, NotifyInput{
		Type:         models.NotificationUserFollow,
		Recipient:    7,
		Sender:       uintPtr(8),
		TemplateArgs: []string{"bob"},
	})
	require.NoError(t, err)

	count, err := svc.UnreadCount(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	modified, err := svc.MarkAllRead(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), modified)

	count, err = svc.UnreadCount(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count, "mutations invalidate the cached count")
}

func TestNotifyPublishesToRecipientChannel(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	repo := newFakeNotificationRepo()
	users := newFakeUserRepo(&models.User{ID: 5, Status: models.UserStatusActive})
	svc := newTestService(t, repo, users, nil, rdb)
	ctx := context.Background()

	sub := rdb.Subscribe(ctx, "user_notifications:5")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	_, err = svc.Notify(ctx, NotifyInput{
		Type:         models.NotificationUserFollow,
		Recipient:    5,
		Sender:       uintPtr(6),
		TemplateArgs: []string{"bob"},
	})
	require.NoError(t, err)

	select {
	case msg := <-sub.Channel():
		assert.Contains(t, msg.Payload, `"type":"user_follow"`)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a published notification on the recipient channel")
	}
}
