package queue

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/realcpa-hub/internal/config"
)

func TestDisabledClientSkipsEnqueue(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("client should be disabled")
	}
	if err := client.EnqueueNotificationEmail(context.Background(), NotificationEmailPayload{NotificationID: 1, UserID: 2}); err != nil {
		t.Fatalf("disabled enqueue should be noop: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close disabled client failed: %v", err)
	}
}

func TestNewNotificationEmailTask(t *testing.T) {
	task, err := NewNotificationEmailTask(NotificationEmailPayload{NotificationID: 7, UserID: 3, Locale: "ru-RU"})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if task.Type() != TaskNotificationEmail {
		t.Fatalf("unexpected task type: %s", task.Type())
	}
	var payload NotificationEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		t.Fatalf("decode payload failed: %v", err)
	}
	if payload.NotificationID != 7 || payload.UserID != 3 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(&config.QueueConfig{Host: "redis", Port: 6380, DB: 2})
	if opt.Addr != "redis:6380" || opt.DB != 2 {
		t.Fatalf("unexpected redis opt: %+v", opt)
	}
	if cfg.Concurrency != 10 || cfg.Queues[DefaultQueue] != 1 {
		t.Fatalf("unexpected server config: %+v", cfg)
	}
}

func TestBuildServerConfigOverrides(t *testing.T) {
	opt, cfg := BuildServerConfig(&config.QueueConfig{
		Host:        " queue.internal ",
		Password:    "secret",
		Concurrency: 4,
		Queues:      map[string]int{"critical": 6, "default": 3},
	})
	if opt.Addr != "queue.internal:6379" || opt.Password != "secret" {
		t.Fatalf("unexpected redis opt: %+v", opt)
	}
	if cfg.Concurrency != 4 || cfg.Queues["critical"] != 6 || cfg.ErrorHandler == nil {
		t.Fatalf("unexpected server config: %+v", cfg)
	}
}
