package notify

import (
	"context"
	"strings"
)

// Multi tries every channel and succeeds when at least one of them did.
// The result lists the channels that delivered.
// A panicking channel counts as a failed one.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, kind Kind, to Recipient, payload Payload) Result {
	if len(m) == 0 {
		return failed("no delivery channels configured")
	}

	var (
		errs     []string
		channels []Channel
	)
	for _, n := range m {
		res := safeSend(ctx, n, kind, to, payload)
		if res.Success {
			channels = append(channels, res.Channels...)
			continue
		}
		errs = append(errs, res.Error)
	}
	if len(channels) > 0 {
		return Result{Success: true, Channels: channels}
	}
	return Result{Error: strings.Join(errs, "; ")}
}

func safeSend(ctx context.Context, n Notifier, kind Kind, to Recipient, payload Payload) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = failed("notifier panic: %v", r)
		}
	}()
	return n.Send(ctx, kind, to, payload)
}
