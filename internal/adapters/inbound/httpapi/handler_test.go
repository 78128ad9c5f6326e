package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bnema/sms-rce/internal/domain"
)

const testRequestID = "c1f5a3de-4f0b-4a57-9d0e-3a1f6f0b2c11"

type completion struct {
	id     domain.RequestID
	code   string
	reason string
}

type fakeGateway struct {
	mu          sync.Mutex
	inbound     []domain.InboundEvent
	completions []completion
	inboundErr  error
	outcome     domain.CompletionOutcome
	completeErr error
	ctxErr      error
}

func (g *fakeGateway) HandleInbound(ctx context.Context, inbound domain.InboundEvent) (domain.Decision, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.inbound = append(g.inbound, inbound)
	g.ctxErr = ctx.Err()
	if g.inboundErr != nil {
		return domain.DecisionPending, g.inboundErr
	}
	return domain.DecisionAllow, nil
}

func (g *fakeGateway) CompleteVerification(_ context.Context, id domain.RequestID, code, reason string) (domain.CompletionOutcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.completions = append(g.completions, completion{id: id, code: code, reason: reason})
	return g.outcome, g.completeErr
}

func newTestRouter(gateway Gateway) http.Handler {
	return NewRouter(NewHandler(gateway, zap.NewNop()), zap.NewNop())
}

func serve(t *testing.T, router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := serve(t, newTestRouter(&fakeGateway{}), http.MethodGet, "/_/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestInboundMessageDecodesPayload(t *testing.T) {
	gateway := &fakeGateway{}
	body := `{"channel":"whatsapp","message_uuid":"aaaaaaaa-bbbb-cccc-dddd-0123456789ab","from":"15550001111","to":"14157386102","text":"echo hi","timestamp":"2025-02-03T12:14:25Z"}`

	rec := serve(t, newTestRouter(gateway), http.MethodPost, "/webhooks/messages/inbound", body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	require.Len(t, gateway.inbound, 1)
	assert.Equal(t, domain.InboundEvent{
		Channel:     domain.ChannelWhatsApp,
		MessageUUID: "aaaaaaaa-bbbb-cccc-dddd-0123456789ab",
		From:        "15550001111",
		To:          "14157386102",
		Text:        "echo hi",
	}, gateway.inbound[0])
	assert.NoError(t, gateway.ctxErr)
}

func TestInboundMessageMalformedBody(t *testing.T) {
	gateway := &fakeGateway{}

	rec := serve(t, newTestRouter(gateway), http.MethodPost, "/webhooks/messages/inbound", "{not json")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, gateway.inbound)
}

func TestInboundMessageUnsupportedChannelIsAcknowledged(t *testing.T) {
	gateway := &fakeGateway{}

	rec := serve(t, newTestRouter(gateway), http.MethodPost, "/webhooks/messages/inbound", `{"channel":"telegram","from":"1","to":"2","text":"x"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, gateway.inbound)
}

func TestInboundMessageGatewayError(t *testing.T) {
	gateway := &fakeGateway{inboundErr: errors.New("provider down")}

	rec := serve(t, newTestRouter(gateway), http.MethodPost, "/webhooks/messages/inbound", `{"channel":"sms","from":"15550001111","to":"14157386102","text":"echo hi"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "provider down")
}

func TestStatusWebhooksAreAcknowledged(t *testing.T) {
	router := newTestRouter(&fakeGateway{})

	for _, path := range []string{"/webhooks/messages/status", "/webhooks/verify/status"} {
		t.Run(path, func(t *testing.T) {
			rec := serve(t, router, http.MethodPost, path, `{"status":"delivered"}`)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "OK", rec.Body.String())

			rec = serve(t, router, http.MethodPost, path, "garbage")
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestRegistrationBridgeRewritesFragment(t *testing.T) {
	rec := serve(t, newTestRouter(&fakeGateway{}), http.MethodGet, "/register/complete", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "replace('#', '/final?')")
}

func TestCompleteRegistrationSuccess(t *testing.T) {
	gateway := &fakeGateway{outcome: domain.CompletionOutcome{Result: domain.CompletionCompleted}}

	rec := serve(t, newTestRouter(gateway), http.MethodGet, "/register/complete/final?request_id="+testRequestID+"&code=si9sfG", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<h1>Registration successful!</h1>", rec.Body.String())
	require.Len(t, gateway.completions, 1)
	assert.Equal(t, completion{id: testRequestID, code: "si9sfG"}, gateway.completions[0])
}

func TestCompleteRegistrationOutcomePages(t *testing.T) {
	cases := []struct {
		name    string
		outcome domain.CompletionOutcome
		want    string
	}{
		{
			name:    "failed",
			outcome: domain.CompletionOutcome{Result: domain.CompletionFailed, Reason: "invalid_code", Stage: domain.StageVoice},
			want:    "Registration failed (invalid_code). Use Voice instead.",
		},
		{
			name:    "missing reason",
			outcome: domain.CompletionOutcome{Result: domain.CompletionFailed, Stage: domain.StageVoice},
			want:    "Registration failed (unknown). Use Voice instead.",
		},
		{
			name: "exhausted",
			outcome: domain.CompletionOutcome{
				Result:     domain.CompletionFailed,
				Reason:     "expired",
				Stage:      domain.StageExhausted,
				AdvanceErr: domain.ErrNoFurtherWorkflow,
			},
			want: "Registration failed (expired). No further verification methods are available.",
		},
		{
			name: "advance failed",
			outcome: domain.CompletionOutcome{
				Result:     domain.CompletionFailed,
				Reason:     "failed",
				Stage:      domain.StageSilentAuth,
				AdvanceErr: errors.New("timeout"),
			},
			want: "Registration failed (failed). Voice verification could not be started, please try again later.",
		},
		{
			name:    "escaped reason",
			outcome: domain.CompletionOutcome{Result: domain.CompletionFailed, Reason: "<script>", Stage: domain.StageVoice},
			want:    "Registration failed (&lt;script&gt;). Use Voice instead.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gateway := &fakeGateway{outcome: tc.outcome}

			rec := serve(t, newTestRouter(gateway), http.MethodGet, "/register/complete/final?request_id="+testRequestID+"&error_description=x", "")

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tc.want, rec.Body.String())
		})
	}
}

func TestCompleteRegistrationPassesErrorDescription(t *testing.T) {
	gateway := &fakeGateway{outcome: domain.CompletionOutcome{Result: domain.CompletionFailed, Stage: domain.StageVoice}}

	serve(t, newTestRouter(gateway), http.MethodGet, "/register/complete/final?request_id="+testRequestID+"&error=access_denied&error_description=Network+mismatch", "")

	require.Len(t, gateway.completions, 1)
	assert.Equal(t, "", gateway.completions[0].code)
	assert.Equal(t, "Network mismatch", gateway.completions[0].reason)
}

func TestCompleteRegistrationMalformedCallback(t *testing.T) {
	gateway := &fakeGateway{outcome: domain.CompletionOutcome{Result: domain.CompletionFailed, Stage: domain.StageVoice}}

	rec := serve(t, newTestRouter(gateway), http.MethodGet, "/register/complete/final?request_id="+testRequestID, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, gateway.completions, 1)
	assert.Equal(t, completion{id: testRequestID}, gateway.completions[0])
}

func TestCompleteRegistrationInvalidRequestID(t *testing.T) {
	gateway := &fakeGateway{}

	rec := serve(t, newTestRouter(gateway), http.MethodGet, "/register/complete/final?request_id=nope&code=1234", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, gateway.completions)
}

func TestCompleteRegistrationUnknownRequest(t *testing.T) {
	gateway := &fakeGateway{completeErr: fmt.Errorf("%w: %s", domain.ErrUnknownVerificationRequest, testRequestID)}

	rec := serve(t, newTestRouter(gateway), http.MethodGet, "/register/complete/final?request_id="+testRequestID+"&code=1234", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Unknown or expired verification request.", rec.Body.String())
}

func TestCompleteRegistrationStoreError(t *testing.T) {
	gateway := &fakeGateway{completeErr: errors.New("store unavailable")}

	rec := serve(t, newTestRouter(gateway), http.MethodGet, "/register/complete/final?request_id="+testRequestID+"&code=1234", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "store unavailable")
}

type panickingGateway struct{ fakeGateway }

func (*panickingGateway) HandleInbound(context.Context, domain.InboundEvent) (domain.Decision, error) {
	panic("boom")
}

func TestRouterRecoversFromPanics(t *testing.T) {
	rec := serve(t, newTestRouter(&panickingGateway{}), http.MethodPost, "/webhooks/messages/inbound", `{"channel":"sms","from":"1","to":"2","text":"x"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
