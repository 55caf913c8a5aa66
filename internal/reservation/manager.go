package reservation

import (
	"sync"

	"github.com/green-tasty/preorder-gateway/internal/client"
	apperrors "github.com/green-tasty/preorder-gateway/internal/errors"
)

// Manager owns the live dialog flows. Only one flow may be mounted at a time
// per reservation entity: the reservation id for edits, the table/date for
// new bookings.
type Manager struct {
	mu       sync.Mutex
	flows    map[string]*Flow
	entities map[string]string

	api client.Client
}

func NewManager(api client.Client) *Manager {
	return &Manager{
		flows:    make(map[string]*Flow),
		entities: make(map[string]string),
		api:      api,
	}
}

func entityKey(params OpenParams) string {

	if params.EditMode && params.Reservation != nil {
		return "reservation/" + params.Reservation.ID
	}

	return "table/" + params.LocationID + "/" + params.Table.TableNumber + "/" + params.Table.Date
}

// Open mounts a new dialog flow. A live flow for the same entity is a
// conflict; closed flows are swept out first.
func (m *Manager) Open(params OpenParams) (*Flow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweepLocked()

	key := entityKey(params)

	if _, exists := m.entities[key]; exists {
		return nil, apperrors.ConflictError("A booking dialog is already open for this table")
	}

	flow := newFlow(m.api, params)
	m.flows[flow.ID()] = flow
	m.entities[key] = flow.ID()

	return flow, nil
}

func (m *Manager) Get(id string) (*Flow, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	flow, ok := m.flows[id]

	return flow, ok
}

// Close dismisses the flow and unmounts it.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	flow, ok := m.flows[id]
	if !ok {
		return false
	}

	flow.Close()
	m.removeLocked(id)

	return true
}

func (m *Manager) sweepLocked() {
	for id, flow := range m.flows {
		if flow.closed() {
			m.removeLocked(id)
		}
	}
}

func (m *Manager) removeLocked(id string) {
	delete(m.flows, id)

	for key, flowID := range m.entities {
		if flowID == id {
			delete(m.entities, key)

			break
		}
	}
}
