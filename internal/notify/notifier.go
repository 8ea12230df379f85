// Package notify delivers messages to users outside the application:
// email through SES, Telegram chats and a Kafka event stream.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"projecthub/internal/model"
)

// ErrDelivery marks an out-of-band delivery failure. It is never fatal to a job.
var ErrDelivery = errors.New("delivery failed")

// Kind selects the message template.
type Kind string

const (
	KindDueReminder  Kind = "due_reminder"
	KindWeeklyDigest Kind = "weekly_digest"
)

// Recipient carries the contact addresses of a user.
type Recipient struct {
	UserID     uint
	Name       string
	Email      string
	TelegramID int64
}

func RecipientFor(u model.User) Recipient {
	return Recipient{UserID: u.ID, Name: u.DisplayName(), Email: u.Email, TelegramID: u.TelegramID}
}

// DigestStats are the four weekly numbers.
type DigestStats struct {
	Completed  int64 `json:"completed"`
	InProgress int64 `json:"in_progress"`
	Pending    int64 `json:"pending"`
	Overdue    int64 `json:"overdue"`
}

// Payload is the data a template renders. Fields irrelevant to a kind stay zero.
type Payload struct {
	TaskID          uint
	TaskTitle       string
	TaskDescription string
	DueDate         time.Time
	Stats           DigestStats
	Link            string
}

// Channel names a delivery route.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelTelegram Channel = "telegram"
	ChannelKafka    Channel = "kafka"
)

// Result is the outcome of a send. Notifiers report failures here instead
// of returning errors or panicking.
type Result struct {
	Success bool
	Error   string
	// Channels lists the routes that accepted the message.
	Channels []Channel
}

func ok(ch Channel) Result { return Result{Success: true, Channels: []Channel{ch}} }

// DeliveredVia reports whether ch accepted the message.
func (r Result) DeliveredVia(ch Channel) bool {
	for _, c := range r.Channels {
		if c == ch {
			return true
		}
	}
	return false
}

func failed(format string, args ...any) Result {
	return Result{Error: fmt.Sprintf(format, args...)}
}

// Err converts a failed result into an error wrapping ErrDelivery.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrDelivery, r.Error)
}

// Notifier attempts delivery of one message to one recipient.
type Notifier interface {
	Send(ctx context.Context, kind Kind, to Recipient, payload Payload) Result
}
