package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts messages to a user's private chat.
type TelegramNotifier struct {
	api telegramAPI
}

// NewTelegramNotifier authorizes the bot token against the Telegram API.
func NewTelegramNotifier(token string) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return &TelegramNotifier{api: api}, nil
}

func (n *TelegramNotifier) Send(ctx context.Context, kind Kind, to Recipient, payload Payload) Result {
	if to.TelegramID == 0 {
		return failed("no telegram chat")
	}
	if err := ctx.Err(); err != nil {
		return failed("%v", err)
	}
	msg, err := Render(kind, to, payload)
	if err != nil {
		return failed("%v", err)
	}

	out := tgbotapi.NewMessage(to.TelegramID, msg.Text)
	out.ParseMode = tgbotapi.ModeHTML
	out.DisableWebPagePreview = true
	if _, err := n.api.Send(out); err != nil {
		return failed("telegram send failed: %v", err)
	}
	return ok(ChannelTelegram)
}
