package pagination_test

import (
	"testing"
	"time"

	"github.com/digiwallet/wallet_backend/internal/utils/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	createdAt := time.Date(2025, 6, 3, 11, 22, 33, 444555666, time.UTC)
	txnID := "8f14e45f-ceea-467f-9d41-90b0f3a3f0a1"

	token := pagination.EncodeCursor(createdAt, txnID)
	require.NotEmpty(t, token)

	gotTime, gotID, err := pagination.DecodeCursor(token)
	require.NoError(t, err)
	assert.True(t, createdAt.Equal(gotTime))
	assert.Equal(t, txnID, gotID)
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	_, _, err := pagination.DecodeCursor("not-base64!!")
	assert.Error(t, err)
}

func TestDecodeCursorRejectsMissingSeparator(t *testing.T) {
	// Valid base64, but no field separator inside.
	_, _, err := pagination.DecodeCursor("aGVsbG8=")
	assert.Error(t, err)
}
