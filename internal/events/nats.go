package events

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Publisher is the slice of *nats.Conn the forwarder needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSForwarder relays committed activity to NATS as JSON, one subject per event type
// under a common prefix, e.g. "activity.ticket_created".
type NATSForwarder struct {
	pub     Publisher
	subject string
	logger  *zap.Logger
}

// ConnectNATS dials the server for the forwarder.
func ConnectNATS(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url, nats.Name("ticket-admin"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, errors.Wrap(err, "nats connect failed")
	}
	return nc, nil
}

func NewNATSForwarder(pub Publisher, subject string, logger *zap.Logger) *NATSForwarder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NATSForwarder{pub: pub, subject: subject, logger: logger}
}

// Subject returns the subject an event type is published on.
func (f *NATSForwarder) Subject(eventType EventType) string {
	return f.subject + "." + strings.ToLower(string(eventType))
}

// Handle is an EventHandler.
func (f *NATSForwarder) Handle(_ context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "encode activity event")
	}
	subject := f.Subject(event.Type)
	if err := f.pub.Publish(subject, data); err != nil {
		return errors.Wrapf(err, "publish %s", subject)
	}
	f.logger.Debug("activity forwarded", zap.String("subject", subject), zap.String("event_id", event.ID))
	return nil
}
