package ledger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilePersisterRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p, err := NewFilePersister(dir)
	require.NoError(t, err)

	// Absent files load as empty/absent, not as errors.
	trades, err := p.LoadTrades()
	require.NoError(t, err)
	assert.Empty(t, trades)

	_, ok, err := p.LoadAccount()
	require.NoError(t, err)
	assert.False(t, ok)

	entry := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	want := []Trade{openTrade("t1", entry, 5000)}
	require.NoError(t, p.SaveTrades(want))

	acct := NewAccountState(10000, entry)
	acct.OpenPositions = []string{"t1"}
	require.NoError(t, p.SaveAccount(acct))

	require.NoError(t, p.SaveSnapshots([]DailySnapshot{{Date: "2025-03-01", Equity: 10000}}))

	got, err := p.LoadTrades()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, want[0].ID, got[0].ID)
	assert.Equal(t, want[0].EntryRate, got[0].EntryRate)
	assert.True(t, got[0].EntryTime.Equal(entry))

	gotAcct, ok, err := p.LoadAccount()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, acct.OpenPositions, gotAcct.OpenPositions)
	assert.Equal(t, acct.Equity, gotAcct.Equity)

	snaps, err := p.LoadSnapshots()
	require.NoError(t, err)
	require.Len(t, snaps, 1)

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-")
	}
}

func TestFilePersisterCorruptFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p, err := NewFilePersister(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "trades.json"), []byte("{not json"), 0o644))
	_, err = p.LoadTrades()
	assert.Error(t, err)
}

func TestStoreFallsBackOnCorruption(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p, err := NewFilePersister(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "trades.json"), []byte("garbage"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "account.json"), []byte("garbage"), 0o644))

	s, err := Open(p, 10000, nil)
	require.NoError(t, err, "corrupt files must not prevent startup")
	assert.Empty(t, s.Trades())
	assert.Equal(t, 10000.0, s.Account().Equity)
}
