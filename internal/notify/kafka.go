package notify

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	kgo "github.com/segmentio/kafka-go"
)

// Event is the JSON record published for every delivery.
type Event struct {
	Kind       Kind         `json:"kind"`
	UserID     uint         `json:"user_id"`
	Email      string       `json:"email,omitempty"`
	TelegramID int64        `json:"telegram_id,omitempty"`
	Subject    string       `json:"subject"`
	Text       string       `json:"text"`
	TaskID     uint         `json:"task_id,omitempty"`
	Stats      *DigestStats `json:"stats,omitempty"`
	At         int64        `json:"at"` // epoch ms
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kgo.Message) error
	Close() error
}

// KafkaNotifier publishes delivery events for downstream consumers
// (push gateways, audit). Messages are keyed by user id.
type KafkaNotifier struct {
	writer  messageWriter
	timeout time.Duration
	now     func() time.Time
}

func NewKafkaNotifier(brokersCSV, topic string) *KafkaNotifier {
	w := &kgo.Writer{
		Addr:         kgo.TCP(splitCSV(brokersCSV)...),
		Topic:        topic,
		Balancer:     &kgo.Hash{},
		RequiredAcks: kgo.RequireOne,
	}
	return &KafkaNotifier{writer: w, timeout: 3 * time.Second, now: time.Now}
}

func (n *KafkaNotifier) Close() error { return n.writer.Close() }

func (n *KafkaNotifier) Send(ctx context.Context, kind Kind, to Recipient, payload Payload) Result {
	msg, err := Render(kind, to, payload)
	if err != nil {
		return failed("%v", err)
	}

	ev := Event{
		Kind:       kind,
		UserID:     to.UserID,
		Email:      to.Email,
		TelegramID: to.TelegramID,
		Subject:    msg.Subject,
		Text:       msg.Text,
		TaskID:     payload.TaskID,
		At:         n.now().UnixMilli(),
	}
	if kind == KindWeeklyDigest {
		stats := payload.Stats
		ev.Stats = &stats
	}

	b, err := json.Marshal(ev)
	if err != nil {
		return failed("encode event: %v", err)
	}

	cctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	key := strconv.FormatUint(uint64(to.UserID), 10)
	if err := n.writer.WriteMessages(cctx, kgo.Message{Key: []byte(key), Value: b, Time: n.now()}); err != nil {
		return failed("kafka publish failed: %v", err)
	}
	return ok(ChannelKafka)
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
