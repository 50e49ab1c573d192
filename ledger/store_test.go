package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTrade(id string, entry time.Time, notional float64) Trade {
	return Trade{
		ID:            id,
		Symbol:        "BTC-PERP",
		Direction:     "SHORT",
		Strategy:      "funding_zscore",
		Status:        StatusOpen,
		EntryTime:     entry,
		EntryRate:     0.15,
		Notional:      notional,
		Leverage:      2,
		HoldDays:      7,
		ScheduledExit: entry.Add(7 * 24 * time.Hour),
		Fees:          notional * 0.0005,
	}
}

func TestStoreOpenEmpty(t *testing.T) {
	t.Parallel()

	s, err := Open(&MemPersister{}, 10000, nil)
	require.NoError(t, err)

	acct := s.Account()
	assert.Equal(t, 10000.0, acct.Equity)
	assert.Equal(t, 10000.0, acct.StartingCapital)
	assert.Equal(t, 10000.0, acct.PeakEquity)
	assert.Empty(t, acct.OpenPositions)
	assert.Empty(t, s.Trades())
}

func TestStoreAppendAndClose(t *testing.T) {
	t.Parallel()

	p := &MemPersister{}
	s, err := Open(p, 10000, nil)
	require.NoError(t, err)

	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.AppendTrade(openTrade("t1", t0, 5000)))

	acct := s.Account()
	assert.Equal(t, []string{"t1"}, acct.OpenPositions)
	assert.Equal(t, 10000.0, acct.Equity, "opening must not change equity")

	// Persisted on append.
	assert.Len(t, p.Trades, 1)
	assert.Equal(t, []string{"t1"}, p.Account.OpenPositions)

	closed, err := s.CloseTrade("t1", CloseRecord{
		Time:    t0.Add(168 * time.Hour),
		Rate:    0.05,
		ZScore:  0.4,
		Reason:  ExitTimeBased,
		ExitFee: 2.5,
		NetPnL:  150,
	})
	require.NoError(t, err)

	assert.Equal(t, StatusClosed, closed.Status)
	require.NotNil(t, closed.RealizedPnL)
	assert.Equal(t, 150.0, *closed.RealizedPnL)
	assert.Equal(t, 0.0, closed.UnrealizedPnL)
	assert.True(t, closed.Consistent())

	acct = s.Account()
	assert.Empty(t, acct.OpenPositions)
	assert.Equal(t, 10150.0, acct.Equity)
	assert.Equal(t, 10150.0, acct.PeakEquity)

	// Double close rejected.
	_, err = s.CloseTrade("t1", CloseRecord{Time: t0, Reason: ExitManual})
	assert.Error(t, err)
}

func TestStoreEquityConsistency(t *testing.T) {
	t.Parallel()

	s, err := Open(&MemPersister{}, 10000, nil)
	require.NoError(t, err)

	t0 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	pnls := []float64{500, -1500, 800}
	for i, pnl := range pnls {
		id := string(rune('a' + i))
		tr := openTrade(id, t0.Add(time.Duration(i)*time.Hour), 1000)
		tr.Symbol = "ETH-PERP"
		require.NoError(t, s.AppendTrade(tr))
		_, err := s.CloseTrade(id, CloseRecord{
			Time:   t0.Add(time.Duration(i+1) * time.Hour),
			Reason: ExitManual,
			NetPnL: pnl,
		})
		require.NoError(t, err)
	}

	var sum float64
	for _, tr := range s.Trades() {
		require.NotNil(t, tr.RealizedPnL)
		sum += *tr.RealizedPnL
	}
	acct := s.Account()
	assert.InDelta(t, 10000+sum, acct.Equity, 1e-9)

	// Peak caught the high-water mark after the first win and never fell.
	assert.InDelta(t, 10500, acct.PeakEquity, 1e-9)
	assert.GreaterOrEqual(t, acct.PeakEquity, acct.Equity)
}

func TestStoreSetUnrealized(t *testing.T) {
	t.Parallel()

	s, err := Open(&MemPersister{}, 10000, nil)
	require.NoError(t, err)

	t0 := time.Now().UTC()
	require.NoError(t, s.AppendTrade(openTrade("t1", t0, 5000)))

	require.NoError(t, s.SetUnrealized("t1", 42.5))
	tr, ok := s.Trade("t1")
	require.True(t, ok)
	assert.Equal(t, 42.5, tr.UnrealizedPnL)

	// Same value again is a no-op in effect.
	require.NoError(t, s.SetUnrealized("t1", 42.5))
	tr, _ = s.Trade("t1")
	assert.Equal(t, 42.5, tr.UnrealizedPnL)

	assert.Error(t, s.SetUnrealized("missing", 1))

	_, err = s.CloseTrade("t1", CloseRecord{Time: t0, Reason: ExitManual})
	require.NoError(t, err)
	assert.Error(t, s.SetUnrealized("t1", 1), "marking a closed trade must fail")
}

func TestStoreRollbackOnPersistFailure(t *testing.T) {
	t.Parallel()

	p := &MemPersister{}
	s, err := Open(p, 10000, nil)
	require.NoError(t, err)

	t0 := time.Now().UTC()
	require.NoError(t, s.AppendTrade(openTrade("t1", t0, 5000)))

	p.FailSaves = errors.New("disk full")

	err = s.AppendTrade(openTrade("t2", t0, 1000))
	require.Error(t, err)
	assert.Len(t, s.Trades(), 1, "failed append must roll back")
	assert.Equal(t, []string{"t1"}, s.Account().OpenPositions)

	_, err = s.CloseTrade("t1", CloseRecord{Time: t0, Reason: ExitManual, NetPnL: 99})
	require.Error(t, err)
	tr, _ := s.Trade("t1")
	assert.True(t, tr.IsOpen(), "failed close must roll back")
	assert.Equal(t, 10000.0, s.Account().Equity)
}

func TestStoreRepairsOpenSet(t *testing.T) {
	t.Parallel()

	exit := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	pnl := -25.0
	closed := openTrade("dead", exit.Add(-24*time.Hour), 1000)
	closed.Status = StatusClosed
	closed.ExitTime = &exit
	closed.RealizedPnL = &pnl

	live := openTrade("live", exit, 1000)

	p := &MemPersister{
		Trades:  []Trade{closed, live},
		HasAcct: true,
		Account: AccountState{
			// Stale set: still references the closed trade, misses the
			// live one.
			OpenPositions:   []string{"dead"},
			Equity:          9975,
			StartingCapital: 10000,
			PeakEquity:      10000,
		},
	}

	s, err := Open(p, 10000, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"live"}, s.Account().OpenPositions)
}

func TestStoreUpsertSnapshot(t *testing.T) {
	t.Parallel()

	s, err := Open(&MemPersister{}, 10000, nil)
	require.NoError(t, err)

	require.NoError(t, s.UpsertSnapshot(DailySnapshot{Date: "2025-03-01", Equity: 10000}))
	require.NoError(t, s.UpsertSnapshot(DailySnapshot{Date: "2025-03-02", Equity: 10100}))

	// Same-day capture overwrites, list length is stable.
	require.NoError(t, s.UpsertSnapshot(DailySnapshot{Date: "2025-03-02", Equity: 10200}))
	snaps := s.Snapshots()
	require.Len(t, snaps, 2)
	assert.Equal(t, 10200.0, snaps[1].Equity)
}

func TestStoreCountAlert(t *testing.T) {
	t.Parallel()

	s, err := Open(&MemPersister{}, 10000, nil)
	require.NoError(t, err)

	require.NoError(t, s.CountAlert())
	require.NoError(t, s.CountAlert())
	assert.Equal(t, 2, s.Account().AlertsSeen)
}
