package payment_test

import (
	"errors"
	"testing"

	"kantin/internal/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedOverlay replays a fixed sequence of outcomes.
type scriptedOverlay struct {
	results []payment.Result
	openErr error
	token   string
}

func (o *scriptedOverlay) Show(token string, report func(payment.Result)) error {
	o.token = token
	if o.openErr != nil {
		return o.openErr
	}
	for _, r := range o.results {
		report(r)
	}
	return nil
}

type outcomeRecorder struct {
	fired []string
}

func (r *outcomeRecorder) callbacks() payment.Callbacks {
	return payment.Callbacks{
		OnSuccess: func(payment.Result) { r.fired = append(r.fired, "success") },
		OnPending: func(payment.Result) { r.fired = append(r.fired, "pending") },
		OnError:   func(payment.Result) { r.fired = append(r.fired, "error") },
		OnClose:   func() { r.fired = append(r.fired, "closed") },
	}
}

func TestBridgeFiresExactlyOneOutcome(t *testing.T) {
	tests := []struct {
		name    string
		results []payment.Result
		want    string
	}{
		{"success", []payment.Result{{Outcome: payment.OutcomeSuccess}}, "success"},
		{"pending", []payment.Result{{Outcome: payment.OutcomePending}}, "pending"},
		{"error", []payment.Result{{Outcome: payment.OutcomeError}}, "error"},
		{"closed", []payment.Result{{Outcome: payment.OutcomeClosed}}, "closed"},
		{"success then close", []payment.Result{{Outcome: payment.OutcomeSuccess}, {Outcome: payment.OutcomeClosed}}, "success"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			overlay := &scriptedOverlay{results: tt.results}
			rec := &outcomeRecorder{}
			bridge := payment.NewBridge(overlay)

			require.NoError(t, bridge.Pay("tok-1", rec.callbacks()))
			assert.Equal(t, []string{tt.want}, rec.fired)
			assert.Equal(t, "tok-1", overlay.token)
		})
	}
}

func TestBridgeOpenFailureReportsError(t *testing.T) {
	rec := &outcomeRecorder{}
	bridge := payment.NewBridge(&scriptedOverlay{openErr: errors.New("script blocked")})

	err := bridge.Pay("tok-1", rec.callbacks())
	assert.Error(t, err)
	assert.Equal(t, []string{"error"}, rec.fired)
}

func TestBridgeNotReady(t *testing.T) {
	bridge := payment.NewBridge(nil)
	assert.False(t, bridge.Ready())
	assert.ErrorIs(t, bridge.Pay("tok", payment.Callbacks{}), payment.ErrOverlayNotReady)
}

func TestBridgeRejectsEmptyToken(t *testing.T) {
	rec := &outcomeRecorder{}
	bridge := payment.NewBridge(&scriptedOverlay{})
	assert.Error(t, bridge.Pay("", rec.callbacks()))
	assert.Empty(t, rec.fired)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "success", payment.OutcomeSuccess.String())
	assert.Equal(t, "closed", payment.OutcomeClosed.String())
}
