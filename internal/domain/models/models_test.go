package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshg28/stockroom/internal/domain/models"
)

func Test_Item_StockStatus(t *testing.T) {
	tests := []struct {
		name     string
		quantity int64
		reorder  int64
		expected models.StockStatus
	}{
		{name: "zero_quantity_is_out_of_stock", quantity: 0, reorder: 2, expected: models.StockStatusOut},
		{name: "zero_quantity_zero_reorder_is_out_of_stock", quantity: 0, reorder: 0, expected: models.StockStatusOut},
		{name: "at_reorder_level_is_low_stock", quantity: 2, reorder: 2, expected: models.StockStatusLow},
		{name: "below_reorder_level_is_low_stock", quantity: 1, reorder: 2, expected: models.StockStatusLow},
		{name: "above_reorder_level_is_in_stock", quantity: 3, reorder: 2, expected: models.StockStatusIn},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			item := models.Item{Quantity: tc.quantity, ReorderLevel: tc.reorder}
			assert.Equal(t, tc.expected, item.StockStatus())
		})
	}
}

func Test_ParseParty(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected models.Party
		wantErr  error
	}{
		{name: "exact_harsh", input: "Harsh", expected: models.PartyHarsh},
		{name: "exact_gaurav", input: "Gaurav", expected: models.PartyGaurav},
		{name: "lowercase", input: "harsh", expected: models.PartyHarsh},
		{name: "uppercase_with_spaces", input: "  GAURAV ", expected: models.PartyGaurav},
		{name: "unknown_name", input: "Someone Else", wantErr: models.ErrUnknownParty},
		{name: "empty", input: "", wantErr: models.ErrUnknownParty},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			party, err := models.ParseParty(tc.input)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, party)
		})
	}
}

func Test_Party_Counterpart(t *testing.T) {
	assert.Equal(t, models.PartyGaurav, models.PartyHarsh.Counterpart())
	assert.Equal(t, models.PartyHarsh, models.PartyGaurav.Counterpart())
}

func Test_ValidatePairing(t *testing.T) {
	tests := []struct {
		name     string
		issuer   models.Party
		receiver models.Party
		wantErr  error
	}{
		{name: "harsh_to_gaurav_is_valid", issuer: models.PartyHarsh, receiver: models.PartyGaurav},
		{name: "gaurav_to_harsh_is_valid", issuer: models.PartyGaurav, receiver: models.PartyHarsh},
		{name: "same_party_rejected", issuer: models.PartyHarsh, receiver: models.PartyHarsh, wantErr: models.ErrSameParty},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := models.ValidatePairing(tc.issuer, tc.receiver)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func Test_ValidateQuantity(t *testing.T) {
	assert.NoError(t, models.ValidateQuantity(1))
	assert.ErrorIs(t, models.ValidateQuantity(0), models.ErrInvalidQuantity)
	assert.ErrorIs(t, models.ValidateQuantity(-3), models.ErrInvalidQuantity)
}

func Test_ParseComponentStatus(t *testing.T) {
	status, err := models.ParseComponentStatus("OK")
	require.NoError(t, err)
	assert.Equal(t, models.ComponentOK, status)

	status, err = models.ParseComponentStatus(" lost ")
	require.NoError(t, err)
	assert.Equal(t, models.ComponentLost, status)

	_, err = models.ParseComponentStatus("broken")
	assert.ErrorIs(t, err, models.ErrUnknownComponentStatus)
}

func Test_ComponentStatus_RestoresStock(t *testing.T) {
	assert.True(t, models.ComponentOK.RestoresStock())
	assert.True(t, models.ComponentFaulty.RestoresStock())
	assert.False(t, models.ComponentLost.RestoresStock())
}

func Test_AppendRemark(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		note     string
		expected string
	}{
		{name: "note_onto_empty", existing: "", note: "initial", expected: "initial"},
		{name: "note_onto_existing", existing: "first", note: "second", expected: "first\nsecond"},
		{name: "blank_note_keeps_existing", existing: "first", note: "   ", expected: "first"},
		{name: "note_is_trimmed", existing: "first", note: " padded ", expected: "first\npadded"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, models.AppendRemark(tc.existing, tc.note))
		})
	}
}
