package notification

import "context"

// Sender delivers a message over one channel. A false result with a nil
// error means the provider accepted the call but did not deliver.
type Sender interface {
	Send(ctx context.Context, msg Message) (bool, error)
}
