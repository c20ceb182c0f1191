package services

import (
	"errors"
	"fmt"

	"github.com/platewise/backend/internal/models"
)

// ErrUnknownNotificationType is returned when a notification type has no
// registered template. Creation must abort rather than persist blank text.
var ErrUnknownNotificationType = errors.New("unknown notification type")

// notificationTemplate renders a title and message from positional arguments.
type notificationTemplate struct {
	title   string
	message string
	argc    int
}

// notificationTemplates maps each notification type to its fixed
// positional-argument template.
var notificationTemplates = map[models.NotificationType]notificationTemplate{
	models.NotificationRecipeLike: {
		title:   "New like on your recipe",
		message: "%s liked your recipe \"%s\"",
		argc:    2,
	},
	models.NotificationRecipeComment: {
		title:   "New comment on your recipe",
		message: "%s commented on your recipe \"%s\"",
		argc:    2,
	},
	models.NotificationCommentReply: {
		title:   "New reply to your comment",
		message: "%s replied to your comment on \"%s\"",
		argc:    2,
	},
	models.NotificationRecipeFavorite: {
		title:   "Recipe added to favorites",
		message: "%s added your recipe \"%s\" to their favorites",
		argc:    2,
	},
	models.NotificationCollectionFollow: {
		title:   "New collection follower",
		message: "%s started following your collection \"%s\"",
		argc:    2,
	},
	models.NotificationUserFollow: {
		title:   "New follower",
		message: "%s started following you",
		argc:    1,
	},
	models.NotificationRecipePublished: {
		title:   "Recipe published",
		message: "Your recipe \"%s\" has been published",
		argc:    1,
	},
	models.NotificationRecipeFeatured: {
		title:   "Recipe featured",
		message: "Your recipe \"%s\" has been featured by our editors",
		argc:    1,
	},
	models.NotificationCommentLike: {
		title:   "New like on your comment",
		message: "%s liked your comment",
		argc:    1,
	},
	// Announcements carry caller-provided text: args are (title, message).
	models.NotificationSystemAnnouncement: {argc: 2},
}

// selfNotifyAllowed names the types permitted to bypass the no-self-notify
// guard. These fire on a user's own content (there is no distinct sender), so
// recipient == sender is intentional for them.
var selfNotifyAllowed = map[models.NotificationType]bool{
	models.NotificationRecipePublished: true,
	models.NotificationRecipeFeatured:  true,
}

// AllowsSelfNotify reports whether the type may notify its own sender.
func AllowsSelfNotify(t models.NotificationType) bool {
	return selfNotifyAllowed[t]
}

// RenderNotification produces the title and message for a notification type
// from its ordered template arguments.
func RenderNotification(t models.NotificationType, args []string) (title, message string, err error) {
	tmpl, ok := notificationTemplates[t]
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrUnknownNotificationType, t)
	}
	if len(args) != tmpl.argc {
		return "", "", fmt.Errorf("notification type %s expects %d template args, got %d", t, tmpl.argc, len(args))
	}

	if t == models.NotificationSystemAnnouncement {
		return args[0], args[1], nil
	}

	fmtArgs := make([]interface{}, len(args))
	for i, a := range args {
		fmtArgs[i] = a
	}
	return tmpl.title, fmt.Sprintf(tmpl.message, fmtArgs...), nil
}
