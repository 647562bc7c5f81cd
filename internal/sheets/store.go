package sheets

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	sorted "github.com/tobshub/go-sortedmap"

	"github.com/tablecraft/tablecraft/internal/auth"
	"github.com/tablecraft/tablecraft/internal/table"
	"github.com/tablecraft/tablecraft/pkg"
)

// Backend is the spreadsheet service the data operations run against.
// Fetch returns a Table honoring the table invariants; Write replaces
// the whole tab with header plus records. The fetch-mutate-write cycle
// is not atomic: concurrent cycles on one tab race and the last write
// wins.
type Backend interface {
	Fetch(ref, tab string) (table.Table, error)
	Write(ref, tab string, t table.Table) error
}

var (
	ErrSheetNotFound = errors.New("Spreadsheet not found")
	ErrTabNotFound   = errors.New("Tab not found")
	ErrSheetExists   = errors.New("Spreadsheet already exists")
)

type Tab struct {
	Name string `json:"name"`
	Grid Grid   `json:"grid"`
}

type Spreadsheet struct {
	Id   string
	Name string
	// tab name -> tab, in creation order like real sheet tabs
	Tabs *pkg.InsertSortMap[string, *Tab]
}

type spreadsheetJSON struct {
	Id   string `json:"id"`
	Name string `json:"name"`
	Tabs []*Tab `json:"tabs"`
}

func (s *Spreadsheet) MarshalJSON() ([]byte, error) {
	return json.Marshal(spreadsheetJSON{Id: s.Id, Name: s.Name, Tabs: s.Tabs.Values()})
}

func (s *Spreadsheet) UnmarshalJSON(data []byte) error {
	var buf spreadsheetJSON
	if err := json.Unmarshal(data, &buf); err != nil {
		return err
	}
	s.Id = buf.Id
	s.Name = buf.Name
	s.Tabs = pkg.NewInsertSortMap[string, *Tab]()
	for _, tab := range buf.Tabs {
		s.Tabs.Push(tab.Name, tab)
	}
	return nil
}

type WriteSettings struct {
	write_path     string
	in_mem         bool
	write_ticker   *time.Ticker
	write_interval time.Duration
}

func NewWriteSettings(write_path string, in_mem bool, write_interval_ms int) *WriteSettings {
	var write_ticker *time.Ticker
	write_interval := time.Duration(write_interval_ms) * time.Millisecond
	if !in_mem {
		if len(write_path) == 0 {
			pkg.FatalLog("Must either provide a snapshot path or use in-memory mode")
		}
		write_ticker = time.NewTicker(write_interval)
	}
	return &WriteSettings{write_path, in_mem, write_ticker, write_interval}
}

// Store is the in-process spreadsheet backend. Spreadsheets are kept
// sorted by name so listings are deterministic.
type Store struct {
	Locker sync.RWMutex

	Users  pkg.Map[string, *auth.User]
	sheets *sorted.SortedMap[string, *Spreadsheet]

	write_settings *WriteSettings
	last_change    time.Time
}

type snapshot struct {
	Sheets []*Spreadsheet `json:"sheets"`
	Users  []*auth.User   `json:"users"`
}

func spreadsheetLess(a, b *Spreadsheet) bool { return a.Name < b.Name }

func NewStore(write_settings *WriteSettings) *Store {
	s := &Store{
		Users:          pkg.Map[string, *auth.User]{},
		sheets:         sorted.New[string, *Spreadsheet](0, spreadsheetLess),
		write_settings: write_settings,
		last_change:    time.Now(),
	}

	s.loadSnapshot()

	if len(s.Users) == 0 {
		name := os.Getenv("TCRAFT_USER")
		if name == "" {
			name = "admin"
		}
		pass := os.Getenv("TCRAFT_PASS")
		if pass == "" {
			pass = "admin"
		}
		root := auth.NewUser(name, pass, auth.RoleAdmin)
		s.Users.Set(root.Id, root)
	}

	return s
}

func (s *Store) GetLocker() *sync.RWMutex { return &s.Locker }

func (s *Store) loadSnapshot() {
	if s.write_settings.write_path == "" {
		return
	}

	f, open_err := os.Open(s.write_settings.write_path)
	if open_err != nil {
		if !errors.Is(open_err, os.ErrNotExist) {
			pkg.ErrorLog("failed to open snapshot;", open_err)
		}
		return
	}
	defer f.Close()

	var snap snapshot
	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		if err == io.EOF {
			pkg.WarnLog("read empty snapshot file")
			return
		}
		pkg.FatalLog("failed to decode snapshot;", err)
	}

	for _, sheet := range snap.Sheets {
		if !s.sheets.Insert(sheet.Name, sheet) {
			s.sheets.Replace(sheet.Name, sheet)
		}
	}
	for _, user := range snap.Users {
		s.Users.Set(user.Id, user)
	}

	pkg.InfoLog("loaded spreadsheets from file", s.write_settings.write_path)
}

func (s *Store) WriteToFile() {
	if s.write_settings.in_mem {
		return
	}

	pkg.DebugLog("writing spreadsheets to disk")

	s.Locker.RLock()
	defer s.Locker.RUnlock()

	snap := snapshot{Sheets: s.allSheets(), Users: []*auth.User{}}
	for _, user := range s.Users {
		snap.Users = append(snap.Users, user)
	}

	data, err := json.Marshal(snap)
	if err != nil {
		pkg.FatalLog("marshalling spreadsheets for write", err)
	}
	if err := os.WriteFile(s.write_settings.write_path, data, 0644); err != nil {
		pkg.FatalLog("writing spreadsheets to file", err)
	}
}

// WatchWrites flushes the snapshot whenever something changed since the
// last flush. Blocks; run it on its own goroutine.
func (s *Store) WatchWrites() {
	if s.write_settings.write_ticker == nil {
		return
	}

	last_write := s.LastChange()
	for {
		<-s.write_settings.write_ticker.C
		if s.LastChange().After(last_write) {
			s.WriteToFile()
			last_write = s.LastChange()
		}
	}
}

// ResetWriteTimer delays the next snapshot flush; called per request so
// a busy server is not constantly writing.
func (s *Store) ResetWriteTimer() {
	if s.write_settings.write_ticker != nil {
		s.write_settings.write_ticker.Reset(s.write_settings.write_interval)
	}
}

func (s *Store) LastChange() time.Time {
	s.Locker.RLock()
	defer s.Locker.RUnlock()
	return s.last_change
}

func (s *Store) touch() { s.last_change = time.Now() }

func (s *Store) CreateSheet(name string, tabs []string) (*Spreadsheet, error) {
	s.Locker.Lock()
	defer s.Locker.Unlock()

	if s.sheets.Has(name) {
		return nil, fmt.Errorf("%w: %s", ErrSheetExists, name)
	}

	if len(tabs) == 0 {
		tabs = []string{"Sheet1"}
	}
	sheet := &Spreadsheet{Id: uuid.New().String(), Name: name, Tabs: pkg.NewInsertSortMap[string, *Tab]()}
	for _, tab := range tabs {
		if !sheet.Tabs.Has(tab) {
			sheet.Tabs.Push(tab, &Tab{Name: tab, Grid: Grid{}})
		}
	}

	s.sheets.Insert(name, sheet)
	s.touch()
	return sheet, nil
}

func (s *Store) DropSheet(name string) error {
	s.Locker.Lock()
	defer s.Locker.Unlock()

	if !s.sheets.Delete(name) {
		return fmt.Errorf("%w: %s", ErrSheetNotFound, name)
	}
	s.touch()
	return nil
}

// ListSheets returns spreadsheet names in sorted order.
func (s *Store) ListSheets() []string {
	s.Locker.RLock()
	defer s.Locker.RUnlock()

	names := []string{}
	for _, sheet := range s.allSheets() {
		names = append(names, sheet.Name)
	}
	return names
}

// allSheets iterates the sorted map; callers hold the store lock.
func (s *Store) allSheets() []*Spreadsheet {
	all := []*Spreadsheet{}
	iter, err := s.sheets.IterCh()
	if err != nil {
		// empty map
		return all
	}
	for rec := range iter.Records() {
		all = append(all, rec.Val)
	}
	return all
}

func (s *Store) getTab(ref, tab string) (*Tab, error) {
	sheet, ok := s.sheets.Get(ref)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, ref)
	}
	if !sheet.Tabs.Has(tab) {
		return nil, fmt.Errorf("%w: %s", ErrTabNotFound, tab)
	}
	return sheet.Tabs.Get(tab), nil
}

func (s *Store) Fetch(ref, tab string) (table.Table, error) {
	s.Locker.RLock()
	defer s.Locker.RUnlock()

	t, err := s.getTab(ref, tab)
	if err != nil {
		return table.Table{}, err
	}
	if len(t.Grid) == 0 {
		// brand new tab, no header yet
		return table.Table{Columns: []string{}, Rows: []table.Row{}}, nil
	}
	return TableFromGrid(t.Grid)
}

func (s *Store) Write(ref, tab string, data table.Table) error {
	s.Locker.Lock()
	defer s.Locker.Unlock()

	t, err := s.getTab(ref, tab)
	if err != nil {
		return err
	}
	t.Grid = GridFromTable(data)
	s.touch()
	return nil
}
