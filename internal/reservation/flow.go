package reservation

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/green-tasty/preorder-gateway/internal/client"
	apperrors "github.com/green-tasty/preorder-gateway/internal/errors"
	"github.com/green-tasty/preorder-gateway/internal/models"
)

// State is the dialog lifecycle of one booking or edit flow.
type State string

const (
	StateClosed     State = "CLOSED"
	StateSlotChosen State = "SLOT_CHOSEN"
	StateSubmitting State = "SUBMITTING"
	StateConfirmed  State = "CONFIRMED"
)

// waiterMaxGuests bounds the waiter flow where no table capacity is known.
const waiterMaxGuests = 10

// OpenParams describes the slot the user picked and the context of the
// dialog being opened.
type OpenParams struct {
	Slot            string
	Table           models.Table
	LocationID      string
	LocationAddress string
	Guests          int
	EditMode        bool
	Reservation     *models.Reservation

	Waiter        bool
	ClientType    string
	CustomerName  string
	CustomerEmail string
}

// Flow is the short-lived state machine behind one booking dialog. It exists
// while the dialog is open and is discarded on close; nothing in it is
// persisted.
type Flow struct {
	mu sync.Mutex

	id     string
	state  State
	params OpenParams

	selectedSlot string
	selectedTime string
	nextTime     string
	guests       int
	maxGuests    int
	editMode     bool

	reservation *models.Reservation

	api client.Client
}

// View is a read-only snapshot of a flow, for the rendering layer.
type View struct {
	ID           string              `json:"id"`
	State        State               `json:"state"`
	SelectedSlot string              `json:"selectedSlot"`
	SelectedTime string              `json:"selectedTime"`
	NextTime     string              `json:"nextTime"`
	Guests       int                 `json:"numberOfGuests"`
	MaxGuests    int                 `json:"maxGuests"`
	EditMode     bool                `json:"editMode"`
	Reservation  *models.Reservation `json:"reservation,omitempty"`
}

func newFlow(api client.Client, params OpenParams) *Flow {

	maxGuests := waiterMaxGuests

	if !params.Waiter {
		if capacity, err := strconv.Atoi(params.Table.Capacity); err == nil && capacity > 0 {
			maxGuests = capacity
		}
	}

	guests := params.Guests
	if guests < 1 {
		guests = 1
	}
	if guests > maxGuests {
		guests = maxGuests
	}

	f := &Flow{
		id:          uuid.NewString(),
		state:       StateSlotChosen,
		params:      params,
		guests:      guests,
		maxGuests:   maxGuests,
		editMode:    params.EditMode,
		reservation: params.Reservation,
		api:         api,
	}

	slot := params.Slot
	if params.EditMode && slot == "" && params.Reservation != nil {
		slot = reservationSlot(params.Reservation)
	}

	f.applySlot(slot)

	return f
}

func reservationSlot(r *models.Reservation) string {

	if r.TimeSlot != "" {
		return r.TimeSlot
	}

	if r.TimeFrom != "" && r.TimeTo != "" {
		return r.TimeFrom + " - " + r.TimeTo
	}

	return r.TimeFrom
}

// applySlot splits a paired slot directly; a single start time gets its end
// derived from the second-shift table.
func (f *Flow) applySlot(slot string) {

	f.selectedSlot = slot

	if from, to, ok := SplitSlot(slot); ok {
		f.selectedTime = from
		f.nextTime = to

		return
	}

	f.selectedTime = slot
	f.nextTime = NextServiceTime(slot)
}

func (f *Flow) ID() string {
	return f.id
}

func (f *Flow) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.viewLocked()
}

func (f *Flow) viewLocked() View {
	return View{
		ID:           f.id,
		State:        f.state,
		SelectedSlot: f.selectedSlot,
		SelectedTime: f.selectedTime,
		NextTime:     f.nextTime,
		Guests:       f.guests,
		MaxGuests:    f.maxGuests,
		EditMode:     f.editMode,
		Reservation:  f.reservation,
	}
}

// SetTime changes the start time and re-derives the slot end.
func (f *Flow) SetTime(value string) View {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateSlotChosen {
		f.selectedTime = value
		f.nextTime = NextServiceTime(value)
	}

	return f.viewLocked()
}

// IncrementGuests raises the guest count by one; exceeding the bound is a
// no-op.
func (f *Flow) IncrementGuests() View {
	return f.adjustGuests(1)
}

// DecrementGuests lowers the guest count by one; going below one is a no-op.
func (f *Flow) DecrementGuests() View {
	return f.adjustGuests(-1)
}

func (f *Flow) adjustGuests(delta int) View {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := f.guests + delta

	if f.state == StateSlotChosen && next >= 1 && next <= f.maxGuests {
		f.guests = next
	}

	return f.viewLocked()
}

// Submit dispatches the reservation to the backend: an edit when the flow
// was opened in edit mode, otherwise a client or waiter booking. Success
// closes the slot dialog and opens the confirmation; any failure keeps the
// dialog open with no local reservation state committed.
func (f *Flow) Submit(ctx context.Context) (View, error) {
	f.mu.Lock()

	if f.state != StateSlotChosen {
		view := f.viewLocked()
		f.mu.Unlock()

		return view, apperrors.ConflictError("Reservation dialog is not open")
	}

	if f.selectedTime == "" || f.nextTime == "" {
		view := f.viewLocked()
		f.mu.Unlock()

		return view, apperrors.ValidationError("Select a time slot first")
	}

	f.state = StateSubmitting

	guestsNumber := strconv.Itoa(f.guests)
	timeFrom := f.selectedTime
	timeTo := f.nextTime
	editMode := f.editMode
	params := f.params

	var reservationID string
	if f.reservation != nil {
		reservationID = f.reservation.ID
	}

	f.mu.Unlock()

	var (
		reservation *models.Reservation
		err         error
	)

	switch {
	case editMode:
		reservation, err = f.api.EditReservation(ctx, reservationID, &models.EditReservationRequest{
			GuestsNumber: guestsNumber,
			TimeFrom:     timeFrom,
			TimeTo:       timeTo,
		})
	case params.Waiter:
		reservation, err = f.api.CreateWaiterBooking(ctx, &models.WaiterBookingRequest{
			ClientType:    params.ClientType,
			CustomerName:  params.CustomerName,
			CustomerEmail: params.CustomerEmail,
			LocationID:    params.LocationID,
			TableNumber:   []string{params.Table.TableNumber},
			Date:          normalizeDate(params.Table.Date),
			GuestsNumber:  guestsNumber,
			TimeFrom:      timeFrom,
			TimeTo:        timeTo,
			Time:          timeFrom,
		})
	default:
		reservation, err = f.api.CreateClientBooking(ctx, &models.ClientBookingRequest{
			LocationID:   params.LocationID,
			TableNumber:  []string{params.Table.TableNumber},
			Date:         normalizeDate(params.Table.Date),
			GuestsNumber: guestsNumber,
			TimeFrom:     timeFrom,
			TimeTo:       timeTo,
		})
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		// dialog stays open, no retry
		f.state = StateSlotChosen
		slog.Warn("Reservation submit failed", slog.Bool("editMode", editMode), slog.String("error", err.Error()))

		return f.viewLocked(), err
	}

	f.reservation = reservation
	f.state = StateConfirmed
	f.editMode = false

	return f.viewLocked(), nil
}

// Reedit reopens the slot dialog from the confirmation, prefilled from the
// confirmed reservation's time slot.
func (f *Flow) Reedit() (View, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateConfirmed || f.reservation == nil {
		return f.viewLocked(), apperrors.ConflictError("No confirmed reservation to edit")
	}

	f.state = StateSlotChosen
	f.editMode = true
	f.applySlot(reservationSlot(f.reservation))

	return f.viewLocked(), nil
}

// CancelReservation cancels the confirmed reservation upstream and closes
// the dialog on success.
func (f *Flow) CancelReservation(ctx context.Context) (View, error) {
	f.mu.Lock()

	if f.state != StateConfirmed || f.reservation == nil {
		view := f.viewLocked()
		f.mu.Unlock()

		return view, apperrors.ConflictError("No confirmed reservation to cancel")
	}

	reservationID := f.reservation.ID
	f.mu.Unlock()

	err := f.api.CancelReservation(ctx, reservationID)

	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		return f.viewLocked(), err
	}

	f.state = StateClosed

	return f.viewLocked(), nil
}

// Close dismisses the dialog; the draft is discarded.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.state = StateClosed
	f.editMode = false
}

func (f *Flow) closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.state == StateClosed
}

// normalizeDate converts the availability search's DD-MM-YYYY dates to the
// ISO format the booking endpoints expect. Dates already in ISO form pass
// through.
func normalizeDate(date string) string {

	if parsed, err := time.Parse("02-01-2006", date); err == nil {
		return parsed.Format("2006-01-02")
	}

	return date
}
