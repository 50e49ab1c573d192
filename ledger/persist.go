package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Persister is the abstract persistence contract for the ledger. The
// store calls Save* inside its critical section so the on-disk view
// never lags a mutation.
type Persister interface {
	LoadTrades() ([]Trade, error)
	SaveTrades([]Trade) error

	// LoadAccount returns ok=false when no account has been persisted
	// yet, distinct from a read/parse error.
	LoadAccount() (AccountState, bool, error)
	SaveAccount(AccountState) error

	LoadSnapshots() ([]DailySnapshot, error)
	SaveSnapshots([]DailySnapshot) error
}

// FilePersister stores the ledger as JSON files in one directory,
// written atomically (temp file then rename) so a crash mid-write
// cannot leave a truncated file behind.
type FilePersister struct {
	Dir string
}

const (
	tradesFile    = "trades.json"
	accountFile   = "account.json"
	snapshotsFile = "snapshots.json"
)

func NewFilePersister(dir string) (*FilePersister, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FilePersister{Dir: dir}, nil
}

func (p *FilePersister) LoadTrades() ([]Trade, error) {
	var trades []Trade
	ok, err := p.read(tradesFile, &trades)
	if err != nil || !ok {
		return nil, err
	}
	return trades, nil
}

func (p *FilePersister) SaveTrades(trades []Trade) error {
	return p.write(tradesFile, trades)
}

func (p *FilePersister) LoadAccount() (AccountState, bool, error) {
	var acct AccountState
	ok, err := p.read(accountFile, &acct)
	return acct, ok, err
}

func (p *FilePersister) SaveAccount(acct AccountState) error {
	return p.write(accountFile, acct)
}

func (p *FilePersister) LoadSnapshots() ([]DailySnapshot, error) {
	var snaps []DailySnapshot
	ok, err := p.read(snapshotsFile, &snaps)
	if err != nil || !ok {
		return nil, err
	}
	return snaps, nil
}

func (p *FilePersister) SaveSnapshots(snaps []DailySnapshot) error {
	return p.write(snapshotsFile, snaps)
}

// read unmarshals name into v. ok=false when the file does not exist.
func (p *FilePersister) read(name string, v any) (bool, error) {
	data, err := os.ReadFile(filepath.Join(p.Dir, name))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parse %s: %w", name, err)
	}
	return true, nil
}

// write marshals v to a temp file in the same directory and renames it
// over the target.
func (p *FilePersister) write(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(p.Dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("temp file for %s: %w", name, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", name, err)
	}

	if err := os.Rename(tmpName, filepath.Join(p.Dir, name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}

// MemPersister keeps everything in memory. Used by tests and by tools
// that only need a scratch ledger.
type MemPersister struct {
	Trades    []Trade
	Account   AccountState
	HasAcct   bool
	Snapshots []DailySnapshot

	// FailSaves, when set, makes every Save* call return an error.
	FailSaves error
}

func (m *MemPersister) LoadTrades() ([]Trade, error) { return m.Trades, nil }

func (m *MemPersister) SaveTrades(trades []Trade) error {
	if m.FailSaves != nil {
		return m.FailSaves
	}
	m.Trades = append([]Trade(nil), trades...)
	return nil
}

func (m *MemPersister) LoadAccount() (AccountState, bool, error) {
	return m.Account, m.HasAcct, nil
}

func (m *MemPersister) SaveAccount(acct AccountState) error {
	if m.FailSaves != nil {
		return m.FailSaves
	}
	m.Account = acct
	m.HasAcct = true
	return nil
}

func (m *MemPersister) LoadSnapshots() ([]DailySnapshot, error) { return m.Snapshots, nil }

func (m *MemPersister) SaveSnapshots(snaps []DailySnapshot) error {
	if m.FailSaves != nil {
		return m.FailSaves
	}
	m.Snapshots = append([]DailySnapshot(nil), snaps...)
	return nil
}
