package service

import (
	"context"
	"errors"
	"testing"

	"github.com/realcpa-hub/internal/constants"
	"github.com/realcpa-hub/internal/queue"
)

func TestNotifyRendersInRecipientLocale(t *testing.T) {
	env := setupServiceTest(t)
	user := createTestUser(t, env.db, "ru@example.com", constants.RoleAffiliate)
	env.db.Model(user).Update("locale", "ru-RU")

	n := env.notifications.Notify(context.Background(), NotifyInput{
		UserID:   user.ID,
		Type:     constants.NotificationTypeParticipationApproved,
		TitleKey: "notification.participation_approved.title",
		BodyKey:  "notification.participation_approved.body",
		BodyArgs: []interface{}{"Shoes", "https://track.example.com/t/tk-1"},
	})
	if n == nil {
		t.Fatalf("notification should be created")
	}
	if n.Title != "Заявка одобрена" || n.Body != "Ваша заявка на оффер «Shoes» одобрена. Ссылка для трафика: https://track.example.com/t/tk-1" {
		t.Fatalf("unexpected rendering: %q / %q", n.Title, n.Body)
	}
	if env.notifications.Notify(context.Background(), NotifyInput{}) != nil {
		t.Fatalf("notify without user must be a no-op")
	}
}

func TestNotificationListAndMarkRead(t *testing.T) {
	env := setupServiceTest(t)
	user := createTestUser(t, env.db, "a@example.com", constants.RoleAffiliate)
	other := createTestUser(t, env.db, "b@example.com", constants.RoleAffiliate)
	ctx := context.Background()
	input := NotifyInput{UserID: user.ID, Type: constants.NotificationTypeSystem, TitleKey: "notification.payout_paid.title"}
	first := env.notifications.Notify(ctx, input)
	env.notifications.Notify(ctx, input)
	env.notifications.Notify(ctx, input)

	result, err := env.notifications.List(user.ID, false, 2, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if result.Total != 3 || len(result.Items) != 2 || result.UnreadCount != 3 {
		t.Fatalf("unexpected list: total=%d items=%d unread=%d", result.Total, len(result.Items), result.UnreadCount)
	}

	if _, err := env.notifications.MarkRead(other.ID, first.ID); !errors.Is(err, ErrNotificationNotFound) {
		t.Fatalf("foreign notification must be hidden, got %v", err)
	}
	read, err := env.notifications.MarkRead(user.ID, first.ID)
	if err != nil || read.ReadAt == nil {
		t.Fatalf("mark read failed: %v", err)
	}
	readAgain, err := env.notifications.MarkRead(user.ID, first.ID)
	if err != nil || !readAgain.ReadAt.Equal(*read.ReadAt) {
		t.Fatalf("second mark read must keep original time: %v", err)
	}

	unread, _ := env.notifications.List(user.ID, true, 0, 0)
	if unread.Total != 2 || unread.UnreadCount != 2 {
		t.Fatalf("unexpected unread list: %+v", unread)
	}
	updated, err := env.notifications.MarkAllRead(user.ID)
	if err != nil || updated != 2 {
		t.Fatalf("want 2 updated got %d err=%v", updated, err)
	}
	after, _ := env.notifications.List(user.ID, false, 0, 0)
	if after.UnreadCount != 0 {
		t.Fatalf("all notifications should be read, got %d", after.UnreadCount)
	}
}

func TestSendEmailSkipsWhenDisabled(t *testing.T) {
	env := setupServiceTest(t)
	user := createTestUser(t, env.db, "a@example.com", constants.RoleAffiliate)
	n := env.notifications.Notify(context.Background(), NotifyInput{UserID: user.ID, Type: constants.NotificationTypeSystem, TitleKey: "notification.payout_paid.title"})
	err := env.notifications.SendEmail(context.Background(), queue.NotificationEmailPayload{NotificationID: n.ID, UserID: user.ID})
	if err != nil {
		t.Fatalf("disabled email should be skipped silently, got %v", err)
	}
	if err := env.notifications.SendEmail(context.Background(), queue.NotificationEmailPayload{NotificationID: 999, UserID: user.ID}); err != nil {
		t.Fatalf("missing notification should be dropped, got %v", err)
	}
}
