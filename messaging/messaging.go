// Package messaging abstracts outbound SMS and push delivery. Sends are
// fire-and-forget from the core's perspective.
package messaging

import "context"

type PushMessage struct {
	Title string
	Body  string
	// Data mirrors the notification payload for client-side routing.
	Data map[string]string
}

type Sender interface {
	SendSMS(ctx context.Context, numbers []string, text string) error
	SendPush(ctx context.Context, tokens []string, message PushMessage) error
}

// NopSender discards everything, used when messaging is disabled.
type NopSender struct{}

func (NopSender) SendSMS(context.Context, []string, string) error       { return nil }
func (NopSender) SendPush(context.Context, []string, PushMessage) error { return nil }
