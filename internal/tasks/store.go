package tasks

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskmanager/internal/models"
	"taskmanager/internal/store"
)

// Options tunes a Store. Zero values select the defaults.
type Options struct {
	// SaveTimeout bounds each background write. Defaults to 5s.
	SaveTimeout time.Duration
	// Now returns the current time in unix milliseconds.
	Now func() int64
	// NewID generates task ids. Defaults to random UUIDs.
	NewID func() string
}

// Store owns the authoritative task list. All changes go through commands;
// readers get copies. Every change is persisted in the background.
type Store struct {
	// mu serialises commands, including subscriber notification.
	mu sync.Mutex

	stateMu sync.RWMutex
	tasks   []models.Task
	closed  bool

	subMu     sync.Mutex
	subs      map[int]func([]models.Task)
	nextSubID int

	now   func() int64
	newID func() string

	persist *persister
}

// Open loads the persisted task list from kv and starts the background
// writer. Missing or unreadable data starts an empty list.
func Open(ctx context.Context, kv store.Store, opts Options) *Store {
	if kv == nil {
		panic("tasks: Open requires a key-value store")
	}
	if opts.SaveTimeout <= 0 {
		opts.SaveTimeout = 5 * time.Second
	}
	if opts.Now == nil {
		opts.Now = models.NowMillis
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}

	p := NewPersistence(kv)
	loaded, ok := p.Load(ctx)
	if !ok {
		loaded = []models.Task{}
	}

	s := &Store{
		tasks:   loaded,
		subs:    make(map[int]func([]models.Task)),
		now:     opts.Now,
		newID:   opts.NewID,
		persist: newPersister(p, opts.SaveTimeout),
	}
	go s.persist.run()

	return s
}

// Dispatch applies cmd. Invalid input and unknown ids are silent no-ops.
func (s *Store) Dispatch(cmd Command) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mustBeOpen()

	s.stateMu.RLock()
	current := s.tasks
	s.stateMu.RUnlock()

	next, changed := Reduce(current, cmd, s.now(), s.newID)
	if !changed {
		return
	}

	s.stateMu.Lock()
	s.tasks = next
	s.stateMu.Unlock()

	s.persist.schedule(next)
	s.notify(next)
}

func (s *Store) Add(title string) { s.Dispatch(Add{Title: title}) }

func (s *Store) Toggle(id string) { s.Dispatch(Toggle{ID: id}) }

func (s *Store) Delete(id string) { s.Dispatch(Delete{ID: id}) }

func (s *Store) Edit(id, title string) { s.Dispatch(Edit{ID: id, Title: title}) }

func (s *Store) ClearCompleted() { s.Dispatch(ClearCompleted{}) }

func (s *Store) Replace(tasks []models.Task) { s.Dispatch(Replace{Tasks: tasks}) }

// LoadSample replaces the list with the demo tasks.
func (s *Store) LoadSample() {
	s.Replace(SampleTasks(s.now(), s.newID))
}

// Reset removes every task.
func (s *Store) Reset() {
	s.Replace(nil)
}

// Tasks returns a copy of the current list in store order (newest added first).
func (s *Store) Tasks() []models.Task {
	s.mustBeOpen()

	s.stateMu.RLock()
	defer s.stateMu.RUnlock()

	out := make([]models.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Counts tallies the current list.
func (s *Store) Counts() models.Counts {
	s.mustBeOpen()

	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return CountOf(s.tasks)
}

// FilteredAndSorted returns the derived view of the current list.
func (s *Store) FilteredAndSorted(filter models.Filter, search string) []models.Task {
	s.mustBeOpen()

	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return FilterAndSort(s.tasks, filter, search)
}

// Subscribe registers fn to receive a copy of the list after every change.
// fn runs on the goroutine that issued the command and must not issue
// commands itself. The returned function removes the subscription.
func (s *Store) Subscribe(fn func([]models.Task)) (unsubscribe func()) {
	s.mustBeOpen()

	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) notify(tasks []models.Task) {
	s.subMu.Lock()
	fns := make([]func([]models.Task), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		snapshot := make([]models.Task, len(tasks))
		copy(snapshot, tasks)
		fn(snapshot)
	}
}

// Flush writes the latest list synchronously if a write is pending.
func (s *Store) Flush() {
	s.mustBeOpen()
	s.persist.flush()
}

// Close writes any pending change and stops the background writer.
// The store must not be used afterwards.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stateMu.Lock()
	if s.closed {
		s.stateMu.Unlock()
		return
	}
	s.closed = true
	s.stateMu.Unlock()

	s.persist.stop()
}

// mustBeOpen panics when the store is used outside its lifetime; that is
// a wiring bug, not a data condition.
func (s *Store) mustBeOpen() {
	if s == nil {
		panic("tasks: use of nil Store")
	}
	s.stateMu.RLock()
	closed := s.closed
	s.stateMu.RUnlock()
	if closed {
		panic("tasks: use of closed Store")
	}
}

// persister writes snapshots in the background. Only the latest pending
// snapshot is kept; older ones are superseded.
type persister struct {
	p       *Persistence
	timeout time.Duration

	mu      sync.Mutex
	pending []models.Task
	dirty   bool

	// saveMu keeps writes ordered when Flush races the writer goroutine.
	saveMu sync.Mutex

	wake chan struct{}
	quit chan struct{}
	done chan struct{}
	once sync.Once
}

func newPersister(p *Persistence, timeout time.Duration) *persister {
	return &persister{
		p:       p,
		timeout: timeout,
		wake:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (w *persister) schedule(tasks []models.Task) {
	w.mu.Lock()
	w.pending = tasks
	w.dirty = true
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *persister) run() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			w.flush()
		case <-w.quit:
			w.flush()
			return
		}
	}
}

func (w *persister) flush() {
	w.saveMu.Lock()
	defer w.saveMu.Unlock()

	w.mu.Lock()
	if !w.dirty {
		w.mu.Unlock()
		return
	}
	tasks := w.pending
	w.pending = nil
	w.dirty = false
	w.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	// The in-memory list stays authoritative; the next change retries.
	if err := w.p.Save(ctx, tasks); err != nil {
		log.Printf("failed to persist %d tasks: %v", len(tasks), err)
	}
}

func (w *persister) stop() {
	w.once.Do(func() {
		close(w.quit)
		<-w.done
	})
}
