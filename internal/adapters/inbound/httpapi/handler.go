// Package httpapi exposes the messaging and verification webhooks over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bnema/sms-rce/internal/domain"
)

const (
	RegistrationPath      = "/register/complete"
	RegistrationFinalPath = RegistrationPath + "/final"

	maxWebhookBodyBytes = 1 << 20

	webhookResponse = "OK"

	pageSuccess   = "<h1>Registration successful!</h1>"
	pageFailed    = "Registration failed (%s). Use Voice instead."
	pageExhausted = "Registration failed (%s). No further verification methods are available."
	pageNoAdvance = "Registration failed (%s). Voice verification could not be started, please try again later."
	pageUnknown   = "Unknown or expired verification request."
	unknownReason = "unknown"
)

// bridgePage turns the redirect fragment into a query string, because
// fragments never reach the server.
const bridgePage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>Convert Fragment</title>
<script type="text/javascript">
window.onload = function() {
	if (window.location.hash) {
		window.location.replace(window.location.href.replace('#', '/final?'));
	}
};
</script>
</head>
<body>
<p>Redirecting...</p>
</body>
</html>
`

// Gateway is the application surface the webhooks drive.
type Gateway interface {
	HandleInbound(ctx context.Context, inbound domain.InboundEvent) (domain.Decision, error)
	CompleteVerification(ctx context.Context, id domain.RequestID, code, reason string) (domain.CompletionOutcome, error)
}

type Handler struct {
	gateway Gateway
	logger  *zap.Logger
}

func NewHandler(gateway Gateway, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{gateway: gateway, logger: logger}
}

// Routes mounts every endpoint on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/_/health", h.Health)

	r.Route("/webhooks", func(r chi.Router) {
		r.Post("/messages/inbound", h.InboundMessage)
		r.Post("/messages/status", h.logStatus("message status"))
		r.Post("/verify/status", h.logStatus("verification status"))
	})

	r.Get(RegistrationPath, h.RegistrationBridge)
	r.Get(RegistrationFinalPath, h.CompleteRegistration)
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, webhookResponse)
}

// inboundPayload is the subset of the inbound message webhook body we use.
type inboundPayload struct {
	Channel     string `json:"channel"`
	MessageUUID string `json:"message_uuid"`
	From        string `json:"from"`
	To          string `json:"to"`
	Text        string `json:"text"`
}

// InboundMessage authorizes the sender and, when verified, runs the command
// before answering. The provider may retry if this takes longer than its
// webhook timeout.
func (h *Handler) InboundMessage(w http.ResponseWriter, r *http.Request) {
	var payload inboundPayload
	if err := json.NewDecoder(io.LimitReader(r.Body, maxWebhookBodyBytes)).Decode(&payload); err != nil {
		h.logger.Warn("malformed inbound message", zap.Error(err))
		writeText(w, http.StatusBadRequest, "malformed inbound message")
		return
	}

	channel, err := domain.ParseChannel(payload.Channel)
	if err != nil {
		h.logger.Warn("inbound message on unsupported channel",
			zap.String("channel", payload.Channel),
			zap.String("message_uuid", payload.MessageUUID),
		)
		writeText(w, http.StatusOK, webhookResponse)
		return
	}

	inbound := domain.InboundEvent{
		Channel:     channel,
		MessageUUID: payload.MessageUUID,
		From:        payload.From,
		To:          payload.To,
		Text:        payload.Text,
	}
	h.logger.Info("received inbound message",
		zap.String("channel", string(channel)),
		zap.String("message_uuid", payload.MessageUUID),
		zap.String("sender", inbound.Sender().String()),
	)

	// A client disconnect must not cancel a command that already started.
	decision, err := h.gateway.HandleInbound(context.WithoutCancel(r.Context()), inbound)
	if err != nil {
		h.logger.Error("inbound message failed",
			zap.String("message_uuid", payload.MessageUUID),
			zap.String("decision", string(decision)),
			zap.Error(err),
		)
		writeText(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeText(w, http.StatusOK, webhookResponse)
}

func (h *Handler) logStatus(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		if err := json.NewDecoder(io.LimitReader(r.Body, maxWebhookBodyBytes)).Decode(&payload); err != nil {
			h.logger.Warn("malformed "+kind, zap.Error(err))
		} else {
			h.logger.Info("received "+kind, zap.Any("payload", payload))
		}
		writeText(w, http.StatusOK, webhookResponse)
	}
}

func (h *Handler) RegistrationBridge(w http.ResponseWriter, _ *http.Request) {
	writeHTML(w, http.StatusOK, bridgePage)
}

// CompleteRegistration finishes the silent auth step from the redirect query.
func (h *Handler) CompleteRegistration(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	id, err := domain.ParseRequestID(query.Get("request_id"))
	if err != nil {
		h.logger.Warn("invalid verification callback", zap.Error(err))
		writeHTML(w, http.StatusBadRequest, html.EscapeString("Invalid verification request."))
		return
	}

	code := strings.TrimSpace(query.Get("code"))
	reason := strings.TrimSpace(query.Get("error_description"))
	if reason == "" {
		reason = strings.TrimSpace(query.Get("error"))
	}

	outcome, err := h.gateway.CompleteVerification(r.Context(), id, code, reason)
	switch {
	case errors.Is(err, domain.ErrUnknownVerificationRequest):
		h.logger.Info("verification callback for unknown request", zap.String("request_id", id.String()))
		writeHTML(w, http.StatusNotFound, pageUnknown)
		return
	case err != nil:
		h.logger.Error("verification callback failed", zap.String("request_id", id.String()), zap.Error(err))
		writeHTML(w, http.StatusInternalServerError, "Verification could not be completed.")
		return
	}

	writeHTML(w, http.StatusOK, outcomePage(outcome))
}

func outcomePage(outcome domain.CompletionOutcome) string {
	if outcome.Completed() {
		return pageSuccess
	}

	reason := outcome.Reason
	if reason == "" {
		reason = unknownReason
	}
	reason = html.EscapeString(reason)

	switch {
	case outcome.Stage == domain.StageExhausted:
		return fmt.Sprintf(pageExhausted, reason)
	case outcome.AdvanceErr != nil:
		return fmt.Sprintf(pageNoAdvance, reason)
	default:
		return fmt.Sprintf(pageFailed, reason)
	}
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func writeHTML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
