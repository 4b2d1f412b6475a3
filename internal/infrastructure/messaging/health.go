package messaging

import (
	"context"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// PingBrokers thành công khi dial được ít nhất một broker
func PingBrokers(ctx context.Context, brokers []string) error {
	var (
		dialer  kafka.Dialer
		lastErr = errors.New("no brokers configured")
	)
	for _, broker := range brokers {
		conn, err := dialer.DialContext(ctx, "tcp", broker)
		if err != nil {
			lastErr = err
			continue
		}
		_ = conn.Close()
		return nil
	}
	return fmt.Errorf("kafka unreachable: %w", lastErr)
}
