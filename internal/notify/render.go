package notify

import (
	"fmt"
	"html"
	"strings"
)

// Message is a rendered notification, ready for any channel.
type Message struct {
	Subject string
	// Text uses the small HTML subset Telegram accepts in HTML parse mode.
	Text string
	HTML string
}

// Render builds the message for kind. Unknown kinds are an error.
func Render(kind Kind, to Recipient, p Payload) (Message, error) {
	switch kind {
	case KindDueReminder:
		return renderDueReminder(to, p), nil
	case KindWeeklyDigest:
		return renderWeeklyDigest(to, p), nil
	default:
		return Message{}, fmt.Errorf("%w: unknown message kind %q", ErrDelivery, kind)
	}
}

func renderDueReminder(to Recipient, p Payload) Message {
	desc := strings.TrimSpace(p.TaskDescription)
	if desc == "" {
		desc = "No description"
	}
	due := p.DueDate.Format("2006-01-02 15:04 MST")

	var text strings.Builder
	text.WriteString(fmt.Sprintf("⏳ <b>%s</b> is due soon\n", html.EscapeString(p.TaskTitle)))
	text.WriteString(fmt.Sprintf("   ⏰ %s\n", due))
	text.WriteString(fmt.Sprintf("   📝 %s", html.EscapeString(desc)))
	if p.Link != "" {
		text.WriteString(fmt.Sprintf("\n   🔗 %s", html.EscapeString(p.Link)))
	}

	var body strings.Builder
	body.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`)
	body.WriteString(`<h2>Task Due Reminder</h2>`)
	body.WriteString(fmt.Sprintf(`<p>Hi %s,</p>`, html.EscapeString(to.Name)))
	body.WriteString(`<p>This is a reminder that the following task is due soon:</p>`)
	body.WriteString(fmt.Sprintf(`<h3>%s</h3><p>%s</p>`, html.EscapeString(p.TaskTitle), html.EscapeString(desc)))
	body.WriteString(fmt.Sprintf(`<p><strong>Due:</strong> %s</p>`, due))
	if p.Link != "" {
		body.WriteString(fmt.Sprintf(`<a href="%s">View Task</a>`, html.EscapeString(p.Link)))
	}
	body.WriteString(`</div>`)

	return Message{
		Subject: fmt.Sprintf("Reminder: Task %q is due soon", p.TaskTitle),
		Text:    text.String(),
		HTML:    body.String(),
	}
}

func renderWeeklyDigest(to Recipient, p Payload) Message {
	s := p.Stats

	var text strings.Builder
	text.WriteString("📋 <b>Weekly digest</b>\n")
	text.WriteString(fmt.Sprintf("✅ Completed: %d\n", s.Completed))
	text.WriteString(fmt.Sprintf("🔥 In progress: %d\n", s.InProgress))
	text.WriteString(fmt.Sprintf("🟢 Pending: %d\n", s.Pending))
	text.WriteString(fmt.Sprintf("⚠️ Overdue: %d", s.Overdue))
	if s.Overdue > 0 {
		text.WriteString("\nOverdue tasks need attention!")
	}

	var body strings.Builder
	body.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`)
	body.WriteString(`<h2>Weekly Digest</h2>`)
	body.WriteString(fmt.Sprintf(`<p>Hi %s,</p><p>Here's your weekly summary:</p>`, html.EscapeString(to.Name)))
	body.WriteString(fmt.Sprintf(`<ul><li>Completed: %d</li><li>In Progress: %d</li><li>Pending: %d</li><li>Overdue: %d</li></ul>`,
		s.Completed, s.InProgress, s.Pending, s.Overdue))
	if p.Link != "" {
		body.WriteString(fmt.Sprintf(`<a href="%s">View Dashboard</a>`, html.EscapeString(p.Link)))
	}
	body.WriteString(`</div>`)

	return Message{
		Subject: "Your Weekly ProjectHub Digest",
		Text:    text.String(),
		HTML:    body.String(),
	}
}
