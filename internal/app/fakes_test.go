package app

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"showtime_alert_bot/internal/domain/alert"
	"showtime_alert_bot/internal/domain/showtime"
	"showtime_alert_bot/internal/domain/theater"
	idb "showtime_alert_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
)

func discardLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

type fakeAlertRepo struct {
	mu        sync.Mutex
	nextID    int64
	alerts    []*alert.Alert
	listErr   error
	deleteErr map[int64]error
	deleted   []int64

	// When set, ListAll signals listStarted and then waits on listRelease.
	listStarted chan struct{}
	listRelease chan struct{}
}

func newFakeAlertRepo(alerts ...*alert.Alert) *fakeAlertRepo {
	r := &fakeAlertRepo{deleteErr: map[int64]error{}}
	for _, a := range alerts {
		r.nextID++
		if a.ID == 0 {
			a.ID = r.nextID
		}
		r.alerts = append(r.alerts, a)
	}
	return r
}

func (r *fakeAlertRepo) Create(_ context.Context, a *alert.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	a.ID = r.nextID
	a.CreatedAt = time.Date(2026, 10, 15, 0, 0, int(r.nextID), 0, time.UTC)
	r.alerts = append(r.alerts, a)
	return nil
}

func (r *fakeAlertRepo) GetByID(_ context.Context, id int64) (*alert.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.alerts {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, idb.ErrAlertNotFound
}

func (r *fakeAlertRepo) ListAll(_ context.Context) ([]*alert.Alert, error) {
	if r.listRelease != nil {
		close(r.listStarted)
		<-r.listRelease
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	return append([]*alert.Alert(nil), r.alerts...), nil
}

func (r *fakeAlertRepo) ListByOwner(_ context.Context, ownerID int64) ([]*alert.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*alert.Alert
	for _, a := range r.alerts {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeAlertRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.deleteErr[id]; err != nil {
		return err
	}
	r.removeLocked(id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *fakeAlertRepo) DeleteOwned(_ context.Context, id int64, ownerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.alerts {
		if a.ID == id && a.OwnerID == ownerID {
			r.removeLocked(id)
			r.deleted = append(r.deleted, id)
			return nil
		}
	}
	return idb.ErrAlertNotFound
}

func (r *fakeAlertRepo) removeLocked(id int64) {
	for i, a := range r.alerts {
		if a.ID == id {
			r.alerts = append(r.alerts[:i], r.alerts[i+1:]...)
			return
		}
	}
}

func (r *fakeAlertRepo) has(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.alerts {
		if a.ID == id {
			return true
		}
	}
	return false
}

type fakeProvider struct {
	mu          sync.Mutex
	films       map[string][]showtime.Film
	errs        map[string]error
	panics      map[string]bool
	cinemas     []showtime.Cinema
	calls       map[string]int
	lastDate    time.Time
	hadDeadline bool
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		films:  map[string][]showtime.Film{},
		errs:   map[string]error{},
		panics: map[string]bool{},
		calls:  map[string]int{},
	}
}

func (p *fakeProvider) FetchShowtimes(ctx context.Context, cinemaID string, date time.Time) ([]showtime.Film, error) {
	p.mu.Lock()
	p.calls[cinemaID]++
	p.lastDate = date
	_, p.hadDeadline = ctx.Deadline()
	films, err, boom := p.films[cinemaID], p.errs[cinemaID], p.panics[cinemaID]
	p.mu.Unlock()
	if boom {
		panic("provider exploded")
	}
	return films, err
}

func (p *fakeProvider) FetchCinemasNearby(_ context.Context, _, _ float64) ([]showtime.Cinema, error) {
	return p.cinemas, nil
}

func (p *fakeProvider) callsFor(cinemaID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[cinemaID]
}

type sentPush struct {
	PlayerID string
	Title    string
	Body     string
}

type fakeSender struct {
	mu     sync.Mutex
	sent   []sentPush
	fail   map[string]error
	panics map[string]bool
}

func newFakeSender() *fakeSender {
	return &fakeSender{fail: map[string]error{}, panics: map[string]bool{}}
}

func (s *fakeSender) Send(_ context.Context, playerID, title, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.panics[playerID] {
		panic("push client exploded")
	}
	s.sent = append(s.sent, sentPush{PlayerID: playerID, Title: title, Body: body})
	return s.fail[playerID]
}

type fakeEvents struct {
	mu     sync.Mutex
	events []alert.Triggered
	err    error
}

func (e *fakeEvents) PublishAlertTriggered(_ context.Context, ev alert.Triggered) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
	return e.err
}

type fakeTheaterRepo struct {
	mu       sync.Mutex
	nextID   int64
	theaters map[string]*theater.Theater
}

func newFakeTheaterRepo() *fakeTheaterRepo {
	return &fakeTheaterRepo{theaters: map[string]*theater.Theater{}}
}

func (r *fakeTheaterRepo) Ensure(_ context.Context, cinemaID string, name string) (*theater.Theater, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.theaters[cinemaID]; ok {
		return t, nil
	}
	r.nextID++
	t := &theater.Theater{ID: r.nextID, CinemaID: cinemaID, Name: name}
	r.theaters[cinemaID] = t
	return t, nil
}

func (r *fakeTheaterRepo) GetByID(_ context.Context, id int64) (*theater.Theater, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.theaters {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, idb.ErrTheaterNotFound
}

func (r *fakeTheaterRepo) GetByCinemaID(_ context.Context, cinemaID string) (*theater.Theater, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.theaters[cinemaID]; ok {
		return t, nil
	}
	return nil, idb.ErrTheaterNotFound
}
