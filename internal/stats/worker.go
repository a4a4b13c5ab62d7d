package stats

import (
	"context"
	"errors"

	gcppubsub "cloud.google.com/go/pubsub/v2"

	"github.com/wekezahq/coopledger-backend/pkg/logger"
)

// Worker consumes ledger change signals and rebuilds the dashboard
// summary. Messages are collapsible: any successful recompute covers all
// signals that arrived before it, so redelivery is harmless.
type Worker struct {
	subscriber *gcppubsub.Subscriber
	service    Service
	logg       *logger.Logger
}

// NewWorker wires the stats worker.
func NewWorker(subscriber *gcppubsub.Subscriber, service Service, logg *logger.Logger) (*Worker, error) {
	if subscriber == nil {
		return nil, errors.New("ledger change subscription is required")
	}
	if service == nil {
		return nil, errors.New("stats service is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Worker{subscriber: subscriber, service: service, logg: logg}, nil
}

// Run blocks consuming change signals until the context is canceled.
func (w *Worker) Run(ctx context.Context) error {
	w.logg.Info(ctx, "stats worker started")
	err := w.subscriber.Receive(ctx, func(msgCtx context.Context, msg *gcppubsub.Message) {
		if _, err := w.service.Recompute(msgCtx); err != nil {
			w.logg.Error(msgCtx, "recomputing dashboard summary", err)
			msg.Nack()
			return
		}
		msg.Ack()
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
