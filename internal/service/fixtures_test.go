package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"projecthub/internal/model"
	"projecthub/internal/notify"
	"projecthub/internal/repository"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// base is the fixed "now" of most job tests.
var base = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "jobs.db"), discard)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, u model.User) model.User {
	t.Helper()
	require.NoError(t, repository.NewUserRepository(db).Create(context.Background(), &u))
	return u
}

func createTask(t *testing.T, db *gorm.DB, task model.Task) model.Task {
	t.Helper()
	require.NoError(t, repository.NewTaskRepository(db).Create(context.Background(), &task))
	return task
}

func findTask(t *testing.T, db *gorm.DB, id uint) *model.Task {
	t.Helper()
	task, err := repository.NewTaskRepository(db).FindByID(context.Background(), id)
	require.NoError(t, err)
	return task
}

func allNotifications(t *testing.T, db *gorm.DB) []model.Notification {
	t.Helper()
	out, err := repository.NewNotificationRepository(db).Find(context.Background(), repository.NotificationFilter{})
	require.NoError(t, err)
	return out
}

type sentMessage struct {
	Kind    notify.Kind
	To      notify.Recipient
	Payload notify.Payload
}

// recordingNotifier records every send. fail decides per recipient whether
// the send fails; via lists the channels a success reports, email when empty.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	fail func(notify.Recipient) bool
	via  []notify.Channel
}

func (n *recordingNotifier) Send(_ context.Context, kind notify.Kind, to notify.Recipient, p notify.Payload) notify.Result {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{Kind: kind, To: to, Payload: p})
	if n.fail != nil && n.fail(to) {
		return notify.Result{Error: "smtp unreachable"}
	}
	via := n.via
	if len(via) == 0 {
		via = []notify.Channel{notify.ChannelEmail}
	}
	return notify.Result{Success: true, Channels: via}
}

func (n *recordingNotifier) messages() []sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentMessage(nil), n.sent...)
}

var errStoreDown = fmt.Errorf("%w: connection reset", repository.ErrStore)

// flakyNotifications fails Create for notifications about one task title.
type flakyNotifications struct {
	NotificationStore
	failTitle string
}

func (f *flakyNotifications) Create(ctx context.Context, n *model.Notification) error {
	if n.TaskTitle == f.failTitle {
		return errStoreDown
	}
	return f.NotificationStore.Create(ctx, n)
}

// brokenTasks fails every query.
type brokenTasks struct {
	TaskStore
}

func (brokenTasks) Find(context.Context, repository.TaskFilter) ([]model.Task, error) {
	return nil, errStoreDown
}

func (brokenTasks) Count(context.Context, repository.TaskFilter) (int64, error) {
	return 0, errStoreDown
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }
