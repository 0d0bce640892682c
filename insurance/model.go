package insurance

import (
	"context"
	"maps"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kjk/insurancedb/flatdb"
	"github.com/kjk/insurancedb/log"
	"github.com/kjk/insurancedb/u"
)

// Storage is what Model needs from the database. *flatdb.Store implements it.
type Storage interface {
	ReadAll() ([]flatdb.Slot, error)
	Read(id int) ([]string, error)
	Add(fields []string) (int, error)
	Update(id int, fields []string) error
	Delete(id int) error
	Find(criteria []string, mode flatdb.Mode) ([]int, error)
	Path() string
}

var _ Storage = &flatdb.Store{}

// Model caches companies from Storage in memory and notifies
// observers about changes
type Model struct {
	store Storage

	mu        sync.Mutex
	companies map[int]*Company
	current   *Company
	sortBy    SortStrategy
	observers []Observer
}

// New creates a model and loads all companies from store
func New(store Storage) (*Model, error) {
	m := &Model{
		store:  store,
		sortBy: ByID,
	}
	if err := m.load(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) load() error {
	slots, err := m.store.ReadAll()
	if err != nil {
		return err
	}
	companies := map[int]*Company{}
	for _, slot := range slots {
		if slot.State != flatdb.Active {
			continue
		}
		c, err := FromFields(slot.ID, slot.Fields)
		if err != nil {
			log.Logf("insurance: skipping record: %v\n", err)
			continue
		}
		companies[slot.ID] = c
	}

	m.mu.Lock()
	m.companies = companies
	if m.current != nil {
		m.current = companies[m.current.ID]
	}
	m.mu.Unlock()
	return nil
}

// Reload re-reads all companies from storage
func (m *Model) Reload() error {
	if err := m.load(); err != nil {
		m.notifyFailed(err)
		return err
	}
	m.notifyTableChanged()
	return nil
}

func (m *Model) Register(o Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, o)
}

func (m *Model) Unregister(o Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := slices.Index(m.observers, o); i >= 0 {
		m.observers = slices.Delete(m.observers, i, i+1)
	}
}

// observers are called without holding the lock so that
// they can call back into the model
func (m *Model) observersCopy() []Observer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.observers)
}

func (m *Model) notifyTableChanged() {
	for _, o := range m.observersCopy() {
		o.TableChanged()
	}
}

func (m *Model) notifySelectionChanged(c *Company) {
	for _, o := range m.observersCopy() {
		o.SelectionChanged(c)
	}
}

func (m *Model) notifyFailed(err error) {
	for _, o := range m.observersCopy() {
		o.Failed(err)
	}
}

// SetSortStrategy sets order of All(). nil means ByID.
func (m *Model) SetSortStrategy(s SortStrategy) {
	if s == nil {
		s = ByID
	}
	m.mu.Lock()
	m.sortBy = s
	m.mu.Unlock()
	m.notifyTableChanged()
}

// All returns all companies ordered by current sort strategy
func (m *Model) All() []*Company {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := slices.Collect(maps.Values(m.companies))
	slices.SortFunc(res, m.sortBy)
	return res
}

// Get returns a cached company or nil
func (m *Model) Get(id int) *Company {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.companies[id]
}

// Select makes company id current. Returns false if there's no such company.
func (m *Model) Select(id int) bool {
	m.mu.Lock()
	c := m.companies[id]
	m.current = c
	m.mu.Unlock()
	m.notifySelectionChanged(c)
	return c != nil
}

func (m *Model) Current() *Company {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *Model) fail(err error) error {
	m.notifyFailed(err)
	return err
}

// Add stores a new company and returns it with ID set
func (m *Model) Add(c *Company) (*Company, error) {
	fields := c.Fields()
	if err := flatdb.ValidateFields(fields); err != nil {
		return nil, m.fail(err)
	}
	id, err := m.store.Add(fields)
	if err != nil {
		return nil, m.fail(err)
	}
	added := *c
	added.ID = id

	m.mu.Lock()
	m.companies[id] = &added
	m.current = &added
	m.mu.Unlock()

	m.notifyTableChanged()
	return &added, nil
}

// Update replaces company id and returns the stored version
func (m *Model) Update(id int, c *Company) (*Company, error) {
	fields := c.Fields()
	if err := flatdb.ValidateFields(fields); err != nil {
		return nil, m.fail(err)
	}
	if err := m.store.Update(id, fields); err != nil {
		return nil, m.fail(err)
	}
	// read back what was stored
	fields, err := m.store.Read(id)
	if err != nil {
		return nil, m.fail(err)
	}
	updated, err := FromFields(id, fields)
	if err != nil {
		return nil, m.fail(err)
	}

	m.mu.Lock()
	m.companies[id] = updated
	if m.current != nil && m.current.ID == id {
		m.current = updated
	}
	m.mu.Unlock()

	m.notifyTableChanged()
	return updated, nil
}

func (m *Model) Delete(id int) error {
	if err := m.store.Delete(id); err != nil {
		return m.fail(err)
	}

	m.mu.Lock()
	delete(m.companies, id)
	if m.current != nil && m.current.ID == id {
		m.current = nil
	}
	m.mu.Unlock()

	m.notifyTableChanged()
	return nil
}

// Search finds companies by insurance types. See ParseQuery for the
// query syntax. Results are ordered by id.
func (m *Model) Search(query string) ([]*Company, error) {
	criteria, mode := ParseQuery(query)
	ids, err := m.store.Find(criteria, mode)
	if err != nil {
		return nil, m.fail(err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []*Company
	for _, id := range ids {
		// records with invalid percentage are not cached
		if c := m.companies[id]; c != nil {
			res = append(res, c)
		}
	}
	return res, nil
}

// Watch re-loads the model when the database file is replaced by
// another process. It blocks until ctx is cancelled.
// Bursts of file events within debounce cause a single re-load.
func (m *Model) Watch(ctx context.Context, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// the file is replaced by rename so we watch the directory
	path := m.store.Path()
	if err = w.Add(filepath.Dir(path)); err != nil {
		return err
	}
	d := &u.Debouncer{Timeout: debounce}
	defer d.Stop()
	reload := func() {
		log.Verbosef("insurance: '%s' changed, reloading\n", path)
		_ = m.Reload()
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Name != path || !ev.Has(fsnotify.Create|fsnotify.Write) {
				continue
			}
			d.Debounce(reload)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.IfErrf(err, "insurance: watching '%s' failed: %v", path, err)
		}
	}
}
