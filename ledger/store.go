package ledger

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Store owns the in-memory ledger and keeps it in lockstep with the
// persister. All mutation happens under one mutex with persistence
// inside the critical section, so readers never observe a state that
// was not also written out.
type Store struct {
	mu  sync.Mutex
	log *slog.Logger
	p   Persister

	trades []*Trade
	byID   map[string]*Trade
	acct   AccountState
	snaps  []DailySnapshot
}

// Open loads the ledger from the persister. Unreadable data is a loud
// warning, not a fatal error: the store falls back to an empty ledger
// or a fresh account, mirroring a first run. An open-position set that
// disagrees with trade statuses is repaired from the statuses, which
// are ground truth.
func Open(p Persister, startingCapital float64, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	s := &Store{log: log, p: p, byID: make(map[string]*Trade)}

	trades, err := p.LoadTrades()
	if err != nil {
		log.Warn("trade ledger unreadable, starting from empty history",
			"err", err)
		trades = nil
	}
	for i := range trades {
		t := trades[i]
		s.trades = append(s.trades, &t)
		s.byID[t.ID] = s.trades[len(s.trades)-1]
	}

	acct, ok, err := p.LoadAccount()
	switch {
	case err != nil:
		log.Warn("account state unreadable, resetting to starting capital",
			"err", err, "starting_capital", startingCapital)
		acct = NewAccountState(startingCapital, time.Now())
	case !ok:
		acct = NewAccountState(startingCapital, time.Now())
	}
	s.acct = acct

	snaps, err := p.LoadSnapshots()
	if err != nil {
		log.Warn("daily snapshots unreadable, starting from empty list",
			"err", err)
		snaps = nil
	}
	s.snaps = snaps

	s.repairOpenSetLocked()
	return s, nil
}

// repairOpenSetLocked rebuilds acct.OpenPositions from trade statuses
// when the two diverge.
func (s *Store) repairOpenSetLocked() {
	var open []string
	for _, t := range s.trades {
		if t.IsOpen() {
			open = append(open, t.ID)
		}
	}
	if equalSets(open, s.acct.OpenPositions) {
		return
	}
	s.log.Error("open-position set diverged from trade statuses, rebuilding from ledger",
		"account_set", s.acct.OpenPositions, "ledger_set", open)
	s.acct.OpenPositions = open
}

func equalSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

// Trades returns a copy of the full ledger in append order.
func (s *Store) Trades() []Trade {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Trade, 0, len(s.trades))
	for _, t := range s.trades {
		out = append(out, *t)
	}
	return out
}

// Trade returns a copy of one trade by id.
func (s *Store) Trade(id string) (Trade, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.byID[id]
	if !ok {
		return Trade{}, false
	}
	return *t, true
}

// OpenTrades returns copies of all trades with status OPEN.
func (s *Store) OpenTrades() []Trade {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Trade
	for _, t := range s.trades {
		if t.IsOpen() {
			out = append(out, *t)
		}
	}
	return out
}

// Account returns a copy of the account state.
func (s *Store) Account() AccountState {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.acct
	acct.OpenPositions = append([]string(nil), s.acct.OpenPositions...)
	return acct
}

// Snapshots returns a copy of the daily snapshot list.
func (s *Store) Snapshots() []DailySnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]DailySnapshot(nil), s.snaps...)
}

// CountAlert increments the alerts-seen counter used by the
// signal-to-trade metric.
func (s *Store) CountAlert() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acct.AlertsSeen++
	if err := s.p.SaveAccount(s.acct); err != nil {
		s.acct.AlertsSeen--
		return fmt.Errorf("persist account: %w", err)
	}
	return nil
}

// AppendTrade adds a newly opened trade to the ledger and the
// open-position set, persisting both. On persistence failure the
// in-memory mutation is rolled back so the open never happened.
func (s *Store) AppendTrade(t Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[t.ID]; exists {
		return fmt.Errorf("trade %q already in ledger", t.ID)
	}
	if !t.IsOpen() {
		return fmt.Errorf("trade %q must be appended in OPEN state", t.ID)
	}

	tp := &Trade{}
	*tp = t
	s.trades = append(s.trades, tp)
	s.byID[t.ID] = tp

	prevAcct := s.acct
	prevOpen := append([]string(nil), s.acct.OpenPositions...)
	s.acct.addOpen(t.ID)
	s.acct.UpdatedAt = t.EntryTime

	if err := s.persistTradesAndAccountLocked(); err != nil {
		s.trades = s.trades[:len(s.trades)-1]
		delete(s.byID, t.ID)
		s.acct = prevAcct
		s.acct.OpenPositions = prevOpen
		return err
	}
	return nil
}

// SetUnrealized updates the live PnL estimate of an open trade and
// persists the ledger. Account state is untouched.
func (s *Store) SetUnrealized(id string, pnl float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("trade %q not found", id)
	}
	if !t.IsOpen() {
		return fmt.Errorf("trade %q is closed", id)
	}

	prev := t.UnrealizedPnL
	t.UnrealizedPnL = pnl
	if err := s.p.SaveTrades(s.snapshotTradesLocked()); err != nil {
		t.UnrealizedPnL = prev
		return fmt.Errorf("persist trades: %w", err)
	}
	return nil
}

// CloseRecord carries everything the store needs to finalize a close.
// PnL and fee arithmetic belong to the engine; the store only records.
type CloseRecord struct {
	Time    time.Time
	Rate    float64
	ZScore  float64
	Reason  ExitReason
	ExitFee float64
	NetPnL  float64
}

// CloseTrade transitions a trade to CLOSED, credits the realized PnL
// to equity, raises the peak watermark if exceeded, and persists both
// records. Returns a copy of the closed trade.
func (s *Store) CloseTrade(id string, rec CloseRecord) (Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.byID[id]
	if !ok {
		return Trade{}, fmt.Errorf("trade %q not found", id)
	}
	if !t.IsOpen() {
		return Trade{}, fmt.Errorf("trade %q is already closed", id)
	}

	prevTrade := *t
	prevAcct := s.acct
	prevOpen := append([]string(nil), s.acct.OpenPositions...)

	exitTime := rec.Time
	exitRate := rec.Rate
	exitZ := rec.ZScore
	netPnL := rec.NetPnL

	t.Status = StatusClosed
	t.ExitTime = &exitTime
	t.ExitRate = &exitRate
	t.ExitZScore = &exitZ
	t.ExitReason = rec.Reason
	t.RealizedPnL = &netPnL
	t.UnrealizedPnL = 0
	t.Fees += rec.ExitFee

	s.acct.removeOpen(id)
	s.acct.applyRealized(netPnL, rec.Time)

	if err := s.persistTradesAndAccountLocked(); err != nil {
		*t = prevTrade
		s.acct = prevAcct
		s.acct.OpenPositions = prevOpen
		return Trade{}, err
	}
	return *t, nil
}

// UpsertSnapshot records a daily snapshot, replacing any existing
// record for the same date.
func (s *Store) UpsertSnapshot(snap DailySnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := append([]DailySnapshot(nil), s.snaps...)
	s.snaps = upsertSnapshot(s.snaps, snap)
	if err := s.p.SaveSnapshots(s.snaps); err != nil {
		s.snaps = prev
		return fmt.Errorf("persist snapshots: %w", err)
	}
	return nil
}

func (s *Store) persistTradesAndAccountLocked() error {
	if err := s.p.SaveTrades(s.snapshotTradesLocked()); err != nil {
		return fmt.Errorf("persist trades: %w", err)
	}
	if err := s.p.SaveAccount(s.acct); err != nil {
		return fmt.Errorf("persist account: %w", err)
	}
	return nil
}

func (s *Store) snapshotTradesLocked() []Trade {
	out := make([]Trade, 0, len(s.trades))
	for _, t := range s.trades {
		out = append(out, *t)
	}
	return out
}
