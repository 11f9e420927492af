// internal/infra/push/logdriver.go
package push

import (
	"context"

	"github.com/sirupsen/logrus"

	domainPush "coparent_notification_service/internal/domain/push"
)

// LogClient logs pushes instead of sending them. Used in development and in
// environments without FCM credentials (PUSH_DRIVER=log).
type LogClient struct {
	logger *logrus.Entry
}

func NewLogClient(logger *logrus.Entry) *LogClient {
	return &LogClient{logger: logger}
}

func (c *LogClient) SendMulticast(_ context.Context, tokens []string, n domainPush.Notification, data map[string]string) (*domainPush.SendReport, error) {
	c.logger.WithFields(logrus.Fields{
		"tokens": len(tokens),
		"title":  n.Title,
		"body":   n.Body,
		"data":   data,
	}).Info("push (log driver): multicast send")
	return &domainPush.SendReport{SuccessCount: len(tokens)}, nil
}
