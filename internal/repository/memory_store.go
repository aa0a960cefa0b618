package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/parking-registry/internal/model"
)

// MemoryStore is an in-process implementation of the stores used when
// STORE_DRIVER=memory.  Transactions are serialised by a single mutex and
// run against a copy of the state that replaces the live state only on
// commit, which gives the same all-or-nothing behaviour as SQLStore.
type MemoryStore struct {
	mu    sync.Mutex
	state memoryState
}

type memoryState struct {
	clients     map[uint64]model.Client
	parkings    map[uint64]model.Parking
	sessions    map[uint64]model.ClientParking
	nextClient  uint64
	nextParking uint64
	nextSession uint64
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: memoryState{
		clients:  make(map[uint64]model.Client),
		parkings: make(map[uint64]model.Parking),
		sessions: make(map[uint64]model.ClientParking),
	}}
}

func (st memoryState) clone() memoryState {
	out := st
	out.clients = make(map[uint64]model.Client, len(st.clients))
	for k, v := range st.clients {
		out.clients[k] = v
	}
	out.parkings = make(map[uint64]model.Parking, len(st.parkings))
	for k, v := range st.parkings {
		out.parkings[k] = v
	}
	out.sessions = make(map[uint64]model.ClientParking, len(st.sessions))
	for k, v := range st.sessions {
		out.sessions[k] = v
	}
	return out
}

// Clients returns the client view of the store.
func (s *MemoryStore) Clients() ClientStore { return memoryClients{s} }

// Parkings returns the parking lot view of the store.
func (s *MemoryStore) Parkings() ParkingStore { return memoryParkings{s} }

// InTx runs fn against a private copy of the state and publishes the
// copy only when fn returns nil.
func (s *MemoryStore) InTx(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.state.clone()
	if err := fn(&memoryTx{state: &work}); err != nil {
		return err
	}
	s.state = work
	return nil
}

type memoryClients struct{ s *MemoryStore }

func (m memoryClients) Create(_ context.Context, c *model.Client) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.state.nextClient++
	c.ID = m.s.state.nextClient
	m.s.state.clients[c.ID] = *c
	return nil
}

func (m memoryClients) GetByID(_ context.Context, id uint64) (*model.Client, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c, ok := m.s.state.clients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m memoryClients) List(_ context.Context) ([]*model.Client, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := make([]*model.Client, 0, len(m.s.state.clients))
	for _, c := range m.s.state.clients {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memoryParkings struct{ s *MemoryStore }

func (m memoryParkings) Create(_ context.Context, p *model.Parking) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.state.nextParking++
	p.ID = m.s.state.nextParking
	m.s.state.parkings[p.ID] = *p
	return nil
}

func (m memoryParkings) GetByID(_ context.Context, id uint64) (*model.Parking, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.state.parkings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m memoryParkings) List(_ context.Context) ([]*model.Parking, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := make([]*model.Parking, 0, len(m.s.state.parkings))
	for _, p := range m.s.state.parkings {
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// memoryTx works on a cloned state; the store mutex is already held.
type memoryTx struct {
	state *memoryState
}

func (t *memoryTx) GetClient(_ context.Context, id uint64) (*model.Client, error) {
	c, ok := t.state.clients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (t *memoryTx) GetParkingForUpdate(_ context.Context, id uint64) (*model.Parking, error) {
	p, ok := t.state.parkings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (t *memoryTx) GetSessionForUpdate(_ context.Context, clientID, parkingID uint64) (*model.ClientParking, error) {
	for _, s := range t.state.sessions {
		if s.ClientID == clientID && s.ParkingID == parkingID {
			s := s
			return &s, nil
		}
	}
	return nil, ErrNotFound
}

func (t *memoryTx) CreateSession(ctx context.Context, s *model.ClientParking) error {
	if _, err := t.GetSessionForUpdate(ctx, s.ClientID, s.ParkingID); err == nil {
		return ErrConflict
	}
	t.state.nextSession++
	s.ID = t.state.nextSession
	t.state.sessions[s.ID] = *s
	return nil
}

func (t *memoryTx) CloseSession(_ context.Context, id uint64, timeOut time.Time) error {
	s, ok := t.state.sessions[id]
	if !ok || s.TimeOut.Valid {
		return ErrNotFound
	}
	s.TimeOut.Time = timeOut.UTC()
	s.TimeOut.Valid = true
	t.state.sessions[id] = s
	return nil
}

func (t *memoryTx) AdjustAvailable(_ context.Context, parkingID uint64, delta int) error {
	p, ok := t.state.parkings[parkingID]
	if !ok {
		return ErrNotFound
	}
	next := p.CountAvailablePlaces + delta
	if next < 0 || next > p.CountPlaces {
		return ErrCapacity
	}
	p.CountAvailablePlaces = next
	t.state.parkings[parkingID] = p
	return nil
}
