package service

import (
	"errors"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/realcpa-hub/internal/config"
)

func TestSendNotificationEmailDisabled(t *testing.T) {
	svc := NewEmailService(&config.EmailConfig{Enabled: false})
	email := NotificationEmail{To: "a@example.com", Subject: "hi", Body: "body"}
	if err := svc.SendNotificationEmail(email); !errors.Is(err, ErrEmailServiceDisabled) {
		t.Fatalf("want disabled got %v", err)
	}
	svc.SetConfig(&config.EmailConfig{Enabled: true})
	if err := svc.SendNotificationEmail(email); !errors.Is(err, ErrEmailServiceNotConfigured) {
		t.Fatalf("want not configured got %v", err)
	}
	svc.SetConfig(&config.EmailConfig{Enabled: true, Host: "smtp.example.com", Port: 25, From: "noreply@example.com"})
	email.To = "not-an-email"
	if err := svc.SendNotificationEmail(email); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("want invalid email got %v", err)
	}
}

func TestSendNotificationEmailComposesMessage(t *testing.T) {
	svc := NewEmailService(&config.EmailConfig{
		Enabled:  true,
		Host:     "smtp.example.com",
		Port:     587,
		From:     "noreply@realcpa.example",
		FromName: "RealCPA Hub",
	})
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	var gotTo []string
	var gotMsg string
	svc.send = func(_ *config.EmailConfig, from string, to []string, msg []byte) error {
		if from != "noreply@realcpa.example" {
			t.Fatalf("unexpected envelope sender %q", from)
		}
		gotTo = to
		gotMsg = string(msg)
		return nil
	}

	err := svc.SendNotificationEmail(NotificationEmail{
		To:      "Affiliate <a@example.com>",
		Subject: "Выплата отправлена",
		Body:    "Payout #1 of 1000.00 RUB has been paid.",
		Link:    "/affiliate/payouts",
	})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if len(gotTo) != 1 || gotTo[0] != "a@example.com" {
		t.Fatalf("unexpected recipients %v", gotTo)
	}
	for _, want := range []string{
		"From: \"RealCPA Hub\" <noreply@realcpa.example>\r\n",
		"To: a@example.com\r\n",
		"Subject: =?UTF-8?q?",
		"Date: Sun, 01 Mar 2026 12:00:00 +0000\r\n",
		"@realcpa.example>\r\n",
		"Content-Type: text/plain; charset=UTF-8\r\n",
		"\r\n\r\nPayout #1 of 1000.00 RUB has been paid.\r\n\r\n/affiliate/payouts",
	} {
		if !strings.Contains(gotMsg, want) {
			t.Fatalf("message missing %q:\n%s", want, gotMsg)
		}
	}
}

func TestSendNotificationEmailRecipientRejected(t *testing.T) {
	svc := NewEmailService(&config.EmailConfig{Enabled: true, Host: "smtp.example.com", Port: 25, From: "noreply@example.com"})
	svc.send = func(*config.EmailConfig, string, []string, []byte) error {
		return &textproto.Error{Code: 550, Msg: "5.1.1 mailbox does not exist"}
	}
	if err := svc.SendNotificationEmail(NotificationEmail{To: "gone@example.com", Subject: "hi"}); !errors.Is(err, ErrEmailRecipientRejected) {
		t.Fatalf("want recipient rejected got %v", err)
	}

	svc.send = func(*config.EmailConfig, string, []string, []byte) error {
		return &textproto.Error{Code: 421, Msg: "service not available"}
	}
	err := svc.SendNotificationEmail(NotificationEmail{To: "a@example.com", Subject: "hi"})
	if err == nil || errors.Is(err, ErrEmailRecipientRejected) {
		t.Fatalf("temporary failure must stay retryable, got %v", err)
	}
}

func TestIsEmailRecipientRejected(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{errors.New("Recipient address rejected: User unknown"), true},
		{errors.New("no such user here"), true},
		{&textproto.Error{Code: 553, Msg: "mailbox name not allowed"}, true},
		{&textproto.Error{Code: 452, Msg: "insufficient storage"}, false},
		{errors.New("421 service not available"), false},
		{nil, false},
	}
	for _, tc := range cases {
		if got := isEmailRecipientRejected(tc.err); got != tc.want {
			t.Fatalf("%v: want %v got %v", tc.err, tc.want, got)
		}
	}
}
