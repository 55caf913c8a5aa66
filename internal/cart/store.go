package cart

import (
	"context"
	"log/slog"
	"sync"

	"github.com/green-tasty/preorder-gateway/internal/client"
	apperrors "github.com/green-tasty/preorder-gateway/internal/errors"
	"github.com/green-tasty/preorder-gateway/internal/models"
)

// Store holds the session's pre-order cart: one item per reservation, in
// insertion order. Local mutations never touch the network; Fetch and Submit
// reconcile with the backend cart. Listeners registered with Subscribe are
// invoked after every committed mutation.
type Store struct {
	mu        sync.Mutex
	items     []models.CartItem
	status    models.CartStatus
	lastErr   string
	fetchSeq  uint64
	listeners []func(items []models.CartItem)

	api client.Client
}

func NewStore(api client.Client) *Store {
	return &Store{
		status: models.CartStatusIdle,
		api:    api,
	}
}

// Subscribe registers a listener called with a snapshot of the items after
// each committed mutation. Not safe to call concurrently with mutations;
// wire listeners up during startup.
func (s *Store) Subscribe(fn func(items []models.CartItem)) {
	s.listeners = append(s.listeners, fn)
}

func (s *Store) Items() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	return copyItems(s.items)
}

func (s *Store) Status() models.CartStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.status
}

func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastErr
}

// ItemsByState returns the items currently in the given lifecycle state, in
// insertion order.
func (s *Store) ItemsByState(state models.ItemState) []models.CartItem {

	var filtered []models.CartItem

	for _, item := range s.Items() {
		if item.State == state {
			filtered = append(filtered, item)
		}
	}

	return filtered
}

// Hydrate replaces the collection with a persisted snapshot. A fetch that
// resolves later wins wholesale.
func (s *Store) Hydrate(items []models.CartItem) {
	s.mu.Lock()
	s.items = copyItems(items)
	snapshot := copyItems(s.items)
	s.mu.Unlock()

	s.notify(snapshot)
}

// AddToCart increments the dish quantity on the reservation's UNSUBMITTED
// item, creating the dish line or the whole item when absent. Local-only,
// always succeeds.
func (s *Store) AddToCart(reservationID string, dish models.DishLine) {
	s.mu.Lock()

	if dish.DishQuantity < 1 {
		dish.DishQuantity = 1
	}

	item := s.findLocked(reservationID, models.StateUnsubmitted)
	if item != nil {
		found := false

		for i := range item.DishItems {
			if item.DishItems[i].DishID == dish.DishID {
				item.DishItems[i].DishQuantity += dish.DishQuantity
				found = true

				break
			}
		}

		if !found {
			item.DishItems = append(item.DishItems, dish)
		}
	} else {
		s.items = append(s.items, models.CartItem{
			ReservationID: reservationID,
			DishItems:     []models.DishLine{dish},
			State:         models.StateUnsubmitted,
		})
	}

	snapshot := copyItems(s.items)
	s.mu.Unlock()

	s.notify(snapshot)
}

// UpdateItem merges the non-nil fields into the matching item. No lifecycle
// restriction is enforced here; callers must keep the transition legal.
func (s *Store) UpdateItem(reservationID string, updates models.UpdateCartItemRequest) {
	s.mu.Lock()

	for i := range s.items {
		if s.items[i].ReservationID != reservationID {
			continue
		}

		if updates.Date != nil {
			s.items[i].Date = *updates.Date
		}
		if updates.TimeSlot != nil {
			s.items[i].TimeSlot = *updates.TimeSlot
		}
		if updates.LocationAddress != nil {
			s.items[i].LocationAddress = *updates.LocationAddress
		}
		if updates.DishItems != nil {
			s.items[i].DishItems = append([]models.DishLine(nil), updates.DishItems...)
		}

		break
	}

	snapshot := copyItems(s.items)
	s.mu.Unlock()

	s.notify(snapshot)
}

// StartEditing moves a SUBMITTED item to EDIT_IN_PROGRESS; no-op for any
// other state.
func (s *Store) StartEditing(reservationID string) {
	s.transition(reservationID, models.StateSubmitted, models.StateEditInProgress)
}

// CancelEditing moves an EDIT_IN_PROGRESS item back to SUBMITTED; no-op for
// any other state.
func (s *Store) CancelEditing(reservationID string) {
	s.transition(reservationID, models.StateEditInProgress, models.StateSubmitted)
}

func (s *Store) transition(reservationID string, from, to models.ItemState) {
	s.mu.Lock()

	if item := s.findLocked(reservationID, from); item != nil {
		item.State = to
	}

	snapshot := copyItems(s.items)
	s.mu.Unlock()

	s.notify(snapshot)
}

// RemoveDish deletes the matching dish line; emptying an item removes the
// item from the collection regardless of its state.
func (s *Store) RemoveDish(reservationID, dishID string) {
	s.mu.Lock()

	for i := range s.items {
		if s.items[i].ReservationID != reservationID {
			continue
		}

		dishes := s.items[i].DishItems[:0]

		for _, dish := range s.items[i].DishItems {
			if dish.DishID != dishID {
				dishes = append(dishes, dish)
			}
		}

		s.items[i].DishItems = dishes

		if len(dishes) == 0 {
			s.items = append(s.items[:i], s.items[i+1:]...)
		}

		break
	}

	snapshot := copyItems(s.items)
	s.mu.Unlock()

	s.notify(snapshot)
}

// Clear empties the whole collection. Used on logout.
func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	snapshot := copyItems(s.items)
	s.mu.Unlock()

	s.notify(snapshot)
}

// Fetch replaces the collection with the backend cart. On failure the
// existing items are left untouched; there is no partial merge. A fetch that
// was superseded by a newer one discards its resolution instead of writing
// stale state into the store.
func (s *Store) Fetch(ctx context.Context) error {
	s.mu.Lock()
	s.fetchSeq++
	gen := s.fetchSeq
	s.status = models.CartStatusLoading
	s.lastErr = ""
	s.mu.Unlock()

	items, err := s.api.GetCart(ctx)

	s.mu.Lock()

	if gen != s.fetchSeq {
		s.mu.Unlock()
		slog.Debug("Discarding superseded cart fetch", slog.Uint64("generation", gen))

		return nil
	}

	if err != nil {
		s.status = models.CartStatusFailed
		s.lastErr = err.Error()
		s.mu.Unlock()

		return err
	}

	s.items = copyItems(items)
	s.status = models.CartStatusSucceeded
	snapshot := copyItems(s.items)
	s.mu.Unlock()

	s.notify(snapshot)

	return nil
}

// Submit sends the reservation's item to the backend. The local item is
// optimistically marked SUBMITTED before the call; on success the server's
// representation replaces it wholesale, on failure the state reverts to
// UNSUBMITTED. Content edits made while the call was in flight are not
// rolled back.
func (s *Store) Submit(ctx context.Context, reservationID string) (*models.CartItem, error) {
	s.mu.Lock()

	var payload *models.CartItem

	for i := range s.items {
		if s.items[i].ReservationID == reservationID {
			copied := copyItem(s.items[i])
			payload = &copied

			break
		}
	}

	if payload == nil {
		s.mu.Unlock()

		return nil, apperrors.NotFoundError("Cart item not found")
	}

	s.status = models.CartStatusLoading

	if item := s.findAnyLocked(reservationID); item != nil {
		item.State = models.StateSubmitted
	}

	snapshot := copyItems(s.items)
	s.mu.Unlock()

	s.notify(snapshot)

	persisted, err := s.api.PutCart(ctx, *payload)

	s.mu.Lock()

	if err != nil {
		s.status = models.CartStatusFailed
		s.lastErr = err.Error()

		if item := s.findAnyLocked(reservationID); item != nil {
			item.State = models.StateUnsubmitted
		}

		snapshot = copyItems(s.items)
		s.mu.Unlock()

		s.notify(snapshot)

		return nil, err
	}

	s.status = models.CartStatusSucceeded

	replaced := false

	for i := range s.items {
		if s.items[i].ReservationID == persisted.ReservationID {
			s.items[i] = copyItem(*persisted)
			replaced = true

			break
		}
	}

	if !replaced {
		// defensive: the id should already exist locally
		s.items = append(s.items, copyItem(*persisted))
	}

	snapshot = copyItems(s.items)
	s.mu.Unlock()

	s.notify(snapshot)

	result := copyItem(*persisted)

	return &result, nil
}

func (s *Store) findLocked(reservationID string, state models.ItemState) *models.CartItem {
	for i := range s.items {
		if s.items[i].ReservationID == reservationID && s.items[i].State == state {
			return &s.items[i]
		}
	}

	return nil
}

func (s *Store) findAnyLocked(reservationID string) *models.CartItem {
	for i := range s.items {
		if s.items[i].ReservationID == reservationID {
			return &s.items[i]
		}
	}

	return nil
}

func (s *Store) notify(items []models.CartItem) {
	for _, fn := range s.listeners {
		fn(items)
	}
}

func copyItem(item models.CartItem) models.CartItem {
	item.DishItems = append([]models.DishLine(nil), item.DishItems...)

	return item
}

func copyItems(items []models.CartItem) []models.CartItem {

	copied := make([]models.CartItem, len(items))

	for i, item := range items {
		copied[i] = copyItem(item)
	}

	return copied
}
