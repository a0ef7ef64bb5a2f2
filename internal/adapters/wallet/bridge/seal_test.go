package bridge

import (
	"testing"

	"github.com/bnema/billboard-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealerRoundTrip(t *testing.T) {
	t.Parallel()

	sealer, err := NewSealer(testKey, testTopic)
	require.NoError(t, err)

	payload, err := sealer.Seal(PurposeEvent, EventPayload{Type: "session_update", Accounts: []string{"0xabc"}, ChainID: 4})
	require.NoError(t, err)
	assert.NotContains(t, payload, "0xabc")

	again, err := sealer.Seal(PurposeEvent, EventPayload{Type: "session_update", Accounts: []string{"0xabc"}, ChainID: 4})
	require.NoError(t, err)
	assert.NotEqual(t, payload, again, "every payload gets a fresh nonce")

	var opened EventPayload
	require.NoError(t, sealer.Open(PurposeEvent, payload, &opened))
	assert.Equal(t, []string{"0xabc"}, opened.Accounts)
	assert.Equal(t, uint64(4), opened.ChainID)
}

func TestSealerRejectsMismatchedContext(t *testing.T) {
	t.Parallel()

	sealer, err := NewSealer(testKey, testTopic)
	require.NoError(t, err)
	payload, err := sealer.Seal(PurposeApproval, ApprovalPayload{Accounts: []string{"0xabc"}})
	require.NoError(t, err)

	otherTopic, err := NewSealer(testKey, "topic-2")
	require.NoError(t, err)

	tests := []struct {
		name    string
		sealer  Sealer
		purpose string
		payload string
	}{
		{name: "other purpose", sealer: sealer, purpose: PurposeEvent, payload: payload},
		{name: "other topic", sealer: otherTopic, purpose: PurposeApproval, payload: payload},
		{name: "flipped byte", sealer: sealer, purpose: PurposeApproval, payload: flipByte(payload)},
		{name: "not base64", sealer: sealer, purpose: PurposeApproval, payload: "%%%"},
		{name: "too short", sealer: sealer, purpose: PurposeApproval, payload: "AAAA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out ApprovalPayload
			err := tt.sealer.Open(tt.purpose, tt.payload, &out)
			require.ErrorIs(t, err, ErrPayloadRejected)
			assert.Empty(t, out.Accounts)
		})
	}
}

func TestNewSealerValidatesKey(t *testing.T) {
	t.Parallel()

	_, err := NewSealer("zz", testTopic)
	require.ErrorIs(t, err, domain.ErrSessionError)

	_, err = NewSealer("0001", testTopic)
	require.ErrorIs(t, err, domain.ErrSessionError)

	_, err = NewSealer(testKey, "")
	require.ErrorIs(t, err, domain.ErrSessionError)
}

func flipByte(payload string) string {
	raw := []byte(payload)
	if raw[10] == 'A' {
		raw[10] = 'B'
	} else {
		raw[10] = 'A'
	}
	return string(raw)
}
