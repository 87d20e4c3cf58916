package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Enqueuer hands registration follow-up jobs to asynq. It satisfies the auth
// service's VerificationEnqueuer.
type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

func (e *Enqueuer) EnqueueVerificationEmail(ctx context.Context, tenantID, userID uuid.UUID, email string) error {
	task, err := NewVerificationEmailTask(VerificationEmailPayload{
		TenantID: tenantID,
		UserID:   userID,
		Email:    email,
	})
	if err != nil {
		return err
	}
	_, err = e.client.EnqueueContext(ctx, task, asynq.Queue("default"), asynq.MaxRetry(5))
	return err
}

// Handler processes background tasks on the worker.
type Handler struct {
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

func (h *Handler) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeVerificationEmail, h.HandleVerificationEmail)
}

// HandleVerificationEmail delivers the address-verification email. Delivery
// is logged until an email provider is wired up.
func (h *Handler) HandleVerificationEmail(ctx context.Context, t *asynq.Task) error {
	var payload VerificationEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshaling verification email payload: %w", err)
	}

	h.logger.Info("sending verification email",
		"tenant_id", payload.TenantID,
		"user_id", payload.UserID,
		"email", payload.Email,
	)

	return nil
}
