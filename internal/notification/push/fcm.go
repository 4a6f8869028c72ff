// Package push delivers multicast notifications through Firebase Cloud Messaging.
package push

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhijeet0/fortunecloud-leadmgmt-sub000/platform/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// MaxTokensPerCall is the FCM multicast limit.
const MaxTokensPerCall = 500

// Message is the platform-neutral push payload.
type Message struct {
	Title string
	Body  string
	Data  map[string]string
}

// BatchResult aggregates per-token delivery for one multicast call.
type BatchResult struct {
	SuccessCount int
	FailureCount int
}

// Sender sends one multicast message to at most MaxTokensPerCall tokens.
type Sender interface {
	SendMulticast(ctx context.Context, tokens []string, msg Message) (BatchResult, error)
}

// ErrPushDisabled is returned by the disabled sender.
var ErrPushDisabled = errors.New("push delivery is not configured")

// FCM sends through a Firebase messaging client.
type FCM struct {
	client    *messaging.Client
	channelID string
}

// NewFCM initializes a Firebase app from inline JSON credentials or a
// credentials file, preferring inline JSON.
func NewFCM(ctx context.Context, cfg config.PushConfig) (*FCM, error) {
	var opt option.ClientOption
	switch {
	case cfg.GetFirebaseCredentialsJSON() != "":
		opt = option.WithCredentialsJSON([]byte(cfg.GetFirebaseCredentialsJSON()))
	case cfg.GetFirebaseCredentialsFile() != "":
		opt = option.WithCredentialsFile(cfg.GetFirebaseCredentialsFile())
	default:
		return nil, ErrPushDisabled
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.GetFirebaseProjectID()}, opt)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase messaging: %w", err)
	}
	return &FCM{client: client, channelID: cfg.GetAndroidChannelID()}, nil
}

func (f *FCM) SendMulticast(ctx context.Context, tokens []string, msg Message) (BatchResult, error) {
	if len(tokens) > MaxTokensPerCall {
		return BatchResult{}, fmt.Errorf("multicast of %d tokens exceeds limit %d", len(tokens), MaxTokensPerCall)
	}

	resp, err := f.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound:     "default",
				ChannelID: f.channelID,
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	})
	if err != nil {
		return BatchResult{}, err
	}
	return BatchResult{SuccessCount: resp.SuccessCount, FailureCount: resp.FailureCount}, nil
}

// Disabled rejects every send. It stands in when Firebase is not configured.
type Disabled struct{}

func (Disabled) SendMulticast(context.Context, []string, Message) (BatchResult, error) {
	return BatchResult{}, ErrPushDisabled
}
