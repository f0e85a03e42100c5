package verifier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"travelsure/internal/models"

	"github.com/google/uuid"
)

// ResultSink receives verification answers. Satisfied by the engine's
// verification coordinator.
type ResultSink interface {
	OnVerificationResult(ctx context.Context, result models.VerificationResult) error
	OnVerificationError(ctx context.Context, requestID, reason string) error
}

// LocalDispatcher performs lookups in-process: Dispatch returns an opaque
// request id immediately and a goroutine delivers exactly one callback per
// dispatched request. Delivery re-enters the engine through its own mutex, so
// a callback can never observe a request before the coordinator has recorded
// it.
type LocalDispatcher struct {
	client  StatusClient
	sink    ResultSink
	timeout time.Duration
}

func NewLocalDispatcher(client StatusClient, timeout time.Duration) *LocalDispatcher {
	return &LocalDispatcher{client: client, timeout: timeout}
}

// Bind attaches the callback sink. Separate from the constructor because the
// coordinator and the dispatcher reference each other.
func (d *LocalDispatcher) Bind(sink ResultSink) {
	d.sink = sink
}

// Dispatch takes the namespace per call rather than at construction, so an
// admin config change shows up in the next request id without a restart.
func (d *LocalDispatcher) Dispatch(_ context.Context, namespace string, policyID int64, flightKey string, departure time.Time) (string, error) {
	if d.sink == nil {
		return "", fmt.Errorf("dispatcher has no bound result sink")
	}
	requestID := fmt.Sprintf("%s-%s", namespace, uuid.NewString())

	go d.resolve(requestID, policyID, flightKey, departure)
	return requestID, nil
}

func (d *LocalDispatcher) resolve(requestID string, policyID int64, flightKey string, departure time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	status, err := d.client.FlightStatus(ctx, flightKey, departure)
	if err != nil {
		if sinkErr := d.sink.OnVerificationError(ctx, requestID, err.Error()); sinkErr != nil {
			slog.Error("failed to deliver verification error", "request_id", requestID, "policy_id", policyID, "error", sinkErr)
		}
		return
	}
	if !status.Found {
		if sinkErr := d.sink.OnVerificationError(ctx, requestID, "flight not found"); sinkErr != nil {
			slog.Error("failed to deliver verification error", "request_id", requestID, "policy_id", policyID, "error", sinkErr)
		}
		return
	}

	result := models.VerificationResult{
		RequestID:    requestID,
		Occurred:     status.Delayed,
		DelayMinutes: status.DelayMinutes,
	}
	if err := d.sink.OnVerificationResult(ctx, result); err != nil {
		slog.Error("failed to deliver verification result", "request_id", requestID, "policy_id", policyID, "error", err)
	}
}
