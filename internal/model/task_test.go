package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskSpawn(t *testing.T) {
	processed := date(2024, 3, 11)
	parent := Task{
		ID:              7,
		OwnerID:         3,
		Title:           "Rotate keys",
		Description:     "Monthly key rotation",
		Assignee:        "ops",
		Priority:        PriorityHigh,
		Status:          StatusCompleted,
		DueDate:         date(2024, 3, 10),
		DueDateNotified: true,
		OverdueNotified: true,
		Repo:            "acme/infra",
		Branch:          "main",
		Labels:          []Label{{ID: 1, Name: "ops"}},
		Recurrence: Recurrence{
			Enabled:       true,
			Frequency:     FrequencyMonthly,
			Interval:      1,
			LastProcessed: &processed,
		},
	}

	child := parent.Spawn(date(2024, 4, 10))

	assert.Zero(t, child.ID)
	assert.Equal(t, StatusPending, child.Status)
	assert.Equal(t, date(2024, 4, 10), child.DueDate)
	assert.False(t, child.DueDateNotified)
	assert.False(t, child.OverdueNotified)
	assert.Equal(t, parent.OwnerID, child.OwnerID)
	assert.Equal(t, parent.Title, child.Title)
	assert.Equal(t, parent.Description, child.Description)
	assert.Equal(t, parent.Assignee, child.Assignee)
	assert.Equal(t, parent.Priority, child.Priority)
	assert.Equal(t, parent.Repo, child.Repo)
	assert.Equal(t, parent.Branch, child.Branch)
	assert.Equal(t, parent.Labels, child.Labels)

	assert.True(t, child.Recurrence.Enabled)
	assert.Equal(t, FrequencyMonthly, child.Recurrence.Frequency)
	assert.Nil(t, child.Recurrence.LastProcessed)
	require.NotNil(t, child.Recurrence.ParentTaskID)
	assert.Equal(t, uint(7), *child.Recurrence.ParentTaskID)

	// The parent is untouched.
	assert.Equal(t, &processed, parent.Recurrence.LastProcessed)
	assert.Nil(t, parent.Recurrence.ParentTaskID)
}

func TestTaskIsOverdue(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, Task{Status: StatusPending, DueDate: now.Add(-time.Minute)}.IsOverdue(now))
	assert.False(t, Task{Status: StatusCompleted, DueDate: now.Add(-time.Minute)}.IsOverdue(now))
	assert.False(t, Task{Status: StatusInProgress, DueDate: now.Add(time.Minute)}.IsOverdue(now))
}

func TestUserHasContact(t *testing.T) {
	assert.False(t, User{}.HasContact())
	assert.True(t, User{Email: "a@example.com"}.HasContact())
	assert.True(t, User{TelegramID: 42}.HasContact())
	assert.Equal(t, "there", User{}.DisplayName())
	assert.Equal(t, "Ada", User{Name: "Ada"}.DisplayName())
}
