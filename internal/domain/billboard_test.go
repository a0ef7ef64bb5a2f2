package domain

import (
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankHistoryHighestPriceIsCurrent(t *testing.T) {
	records := []UpdateRecord{
		NewUpdateRecord(big.NewInt(5), "0x05", 10, 0, "five", "", ""),
		NewUpdateRecord(big.NewInt(10), "0x0a", 11, 0, "ten", "", ""),
		NewUpdateRecord(big.NewInt(3), "0x03", 12, 0, "three", "", ""),
	}

	current, previous := RankHistory(records)
	require.NotNil(t, current)
	assert.Equal(t, "0x0a", current.TxHash)
	require.Len(t, previous, 2)
	assert.Equal(t, "0x05", previous[0].TxHash)
	assert.Equal(t, "0x03", previous[1].TxHash)

	// input order is untouched
	assert.Equal(t, "0x05", records[0].TxHash)
}

func TestRankHistoryEmpty(t *testing.T) {
	current, previous := RankHistory(nil)
	assert.Nil(t, current)
	assert.Nil(t, previous)
}

func TestRankHistoryEqualPricesKeepChainOrder(t *testing.T) {
	records := []UpdateRecord{
		NewUpdateRecord(big.NewInt(7), "0xa", 1, 0, "", "", ""),
		NewUpdateRecord(big.NewInt(7), "0xb", 2, 0, "", "", ""),
	}

	current, previous := RankHistory(records)
	assert.Equal(t, "0xa", current.TxHash)
	assert.Equal(t, "0xb", previous[0].TxHash)
}

func TestNewUpdateRecordJoinsLines(t *testing.T) {
	record := NewUpdateRecord(big.NewInt(1), "0x1", 1, 0, "power", "to", "all")
	assert.Equal(t, "power to all", record.Text)
	assert.Equal(t, [LineCount]string{"power", "to", "all"}, record.Lines)
}

func TestUpdateFormValidate(t *testing.T) {
	current := big.NewInt(100)

	tests := []struct {
		name    string
		form    UpdateForm
		wantErr string
	}{
		{name: "valid", form: UpdateForm{Lines: [LineCount]string{"a", "b", "c"}, Price: big.NewInt(101)}},
		{name: "equal price", form: UpdateForm{Price: big.NewInt(100)}, wantErr: "must exceed"},
		{name: "lower price", form: UpdateForm{Price: big.NewInt(1)}, wantErr: "must exceed"},
		{name: "missing price", form: UpdateForm{}, wantErr: "price is required"},
		{name: "line too long", form: UpdateForm{Lines: [LineCount]string{"", strings.Repeat("x", 51), ""}, Price: big.NewInt(101)}, wantErr: "line 2 is 51 bytes"},
		{name: "line at limit", form: UpdateForm{Lines: [LineCount]string{strings.Repeat("x", 50), "", ""}, Price: big.NewInt(101)}},
		{name: "multibyte counts bytes", form: UpdateForm{Lines: [LineCount]string{strings.Repeat("é", 26), "", ""}, Price: big.NewInt(101)}, wantErr: "line 1 is 52 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.form.Validate(current)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestUpdateFormValidateUnknownCurrentPrice(t *testing.T) {
	err := UpdateForm{Price: big.NewInt(5)}.Validate(nil)
	require.ErrorIs(t, err, ErrValidation)
}

func TestSessionEventValidate(t *testing.T) {
	require.NoError(t, SessionEvent{Kind: SessionEventConnect, Accounts: []string{"0xabc"}}.Validate())
	require.NoError(t, SessionEvent{Kind: SessionEventConnect, Accounts: []string{}}.Validate())
	require.NoError(t, SessionEvent{Kind: SessionEventDisconnect}.Validate())
	require.ErrorIs(t, SessionEvent{Kind: SessionEventUpdate}.Validate(), ErrSessionError)
	require.ErrorIs(t, SessionEvent{Kind: "bogus", Accounts: []string{}}.Validate(), ErrSessionError)
}

func TestAddressShort(t *testing.T) {
	assert.Equal(t, "0xA384…93A8", Address("0xA384435C0a70873DA9872f1C5Ae6795e5A4a93A8").Short())
	assert.Equal(t, "0xabc", Address("0xabc").Short())
	assert.True(t, Address("  ").Empty())
}

func TestRemoteSessionConnected(t *testing.T) {
	assert.False(t, RemoteSession{}.Connected())
	assert.False(t, RemoteSession{Topic: "t"}.Connected())
	assert.True(t, RemoteSession{Topic: "t", Accounts: []string{"0xabc"}}.Connected())
}

func TestRetriable(t *testing.T) {
	assert.True(t, Retriable(ErrChainRead))
	assert.False(t, Retriable(ErrDecode))
	assert.False(t, Retriable(errors.New("other")))
}
