package stats

import (
	"context"
	"encoding/json"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"

	"github.com/wekezahq/coopledger-backend/pkg/logger"
)

const changeEventKind = "ledger.changed"

// changeEvent is the payload published after each committed ledger
// operation. Consumers only need the signal, not the mutation detail.
type changeEvent struct {
	Kind string    `json:"kind"`
	At   time.Time `json:"at"`
}

// PublishNotifier signals ledger changes over Pub/Sub so the stats worker
// rebuilds the dashboard summary out of the request path.
type PublishNotifier struct {
	publisher *gcppubsub.Publisher
	logg      *logger.Logger
}

// NewPublishNotifier wires a Pub/Sub backed notifier.
func NewPublishNotifier(publisher *gcppubsub.Publisher, logg *logger.Logger) *PublishNotifier {
	return &PublishNotifier{publisher: publisher, logg: logg}
}

// NotifyChanged publishes a change signal. Failures are logged and
// swallowed: the financial operation already committed.
func (n *PublishNotifier) NotifyChanged(ctx context.Context) {
	if n == nil || n.publisher == nil {
		return
	}
	payload, err := json.Marshal(changeEvent{Kind: changeEventKind, At: time.Now().UTC()})
	if err != nil {
		n.logg.Error(ctx, "encoding ledger change event", err)
		return
	}
	result := n.publisher.Publish(ctx, &gcppubsub.Message{Data: payload})
	if _, err := result.Get(ctx); err != nil {
		n.logg.Error(ctx, "publishing ledger change event", err)
	}
}

// InlineNotifier recomputes the summary synchronously. Used when the
// deployment runs without Pub/Sub.
type InlineNotifier struct {
	service Service
	logg    *logger.Logger
}

// NewInlineNotifier wires a notifier that recomputes in-process.
func NewInlineNotifier(service Service, logg *logger.Logger) *InlineNotifier {
	return &InlineNotifier{service: service, logg: logg}
}

// NotifyChanged rebuilds the summary immediately, logging failures.
func (n *InlineNotifier) NotifyChanged(ctx context.Context) {
	if n == nil || n.service == nil {
		return
	}
	if _, err := n.service.Recompute(ctx); err != nil {
		n.logg.Error(ctx, "recomputing dashboard summary", err)
	}
}

// NoopNotifier discards change signals. Used when stats are disabled.
type NoopNotifier struct{}

// NotifyChanged does nothing.
func (NoopNotifier) NotifyChanged(ctx context.Context) {}
