// internal/infra/push/fcm.go
package push

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	domainPush "coparent_notification_service/internal/domain/push"
)

// FCMClient implements the push Client interface on top of Firebase Cloud
// Messaging multicast sends.
type FCMClient struct {
	mc *messaging.Client
}

func NewFCMClient(ctx context.Context, credentialsFile string) (*FCMClient, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	mc, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize messaging client: %w", err)
	}
	return &FCMClient{mc: mc}, nil
}

// SendMulticast performs one multicast attempt to all tokens. High-priority
// delivery with an audible alert on both mobile platforms. Per-token
// failures are partitioned: only tokens FCM reports as unregistered are
// returned for pruning.
func (c *FCMClient) SendMulticast(ctx context.Context, tokens []string, n domainPush.Notification, data map[string]string) (*domainPush.SendReport, error) {
	msg := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound: "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}

	br, err := c.mc.SendEachForMulticast(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("fcm multicast send failed: %w", err)
	}

	report := &domainPush.SendReport{
		SuccessCount: br.SuccessCount,
		FailureCount: br.FailureCount,
	}
	for i, resp := range br.Responses {
		if resp.Success {
			continue
		}
		if messaging.IsUnregistered(resp.Error) {
			report.InvalidTokens = append(report.InvalidTokens, tokens[i])
		}
	}
	return report, nil
}
