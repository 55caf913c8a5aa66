package models

type Reservation struct {
	ID              string `json:"id"`
	Status          string `json:"status,omitempty"`
	LocationID      string `json:"locationId,omitempty"`
	LocationAddress string `json:"locationAddress,omitempty"`
	Date            string `json:"date"`
	TimeSlot        string `json:"timeSlot,omitempty"`
	TimeFrom        string `json:"timeFrom,omitempty"`
	TimeTo          string `json:"timeTo,omitempty"`
	GuestsNumber    string `json:"guestsNumber"`
	TableNumber     string `json:"tableNumber,omitempty"`
	PreOrder        string `json:"preOrder,omitempty"`
}

// Table is one bookable table for a given date, as returned by the
// availability search.
type Table struct {
	Date           string   `json:"date"`
	Capacity       string   `json:"capacity"`
	AvailableSlots []string `json:"availableSlots"`
	TableNumber    string   `json:"tableNumber"`
	LocationID     string   `json:"locationId"`
}

// ClientBookingRequest is the POST /bookings/client payload. Guest and time
// fields are strings on the wire.
type ClientBookingRequest struct {
	LocationID   string   `json:"locationId"   validate:"required"`
	TableNumber  []string `json:"tableNumber"  validate:"required,min=1"`
	Date         string   `json:"date"         validate:"required"`
	GuestsNumber string   `json:"guestsNumber" validate:"required"`
	TimeFrom     string   `json:"timeFrom"     validate:"required"`
	TimeTo       string   `json:"timeTo"       validate:"required"`
}

type WaiterBookingRequest struct {
	ClientType    string   `json:"clientType"    validate:"required,oneof=CUSTOMER VISITOR"`
	CustomerName  string   `json:"customerName"`
	CustomerEmail string   `json:"customerEmail" validate:"omitempty,email"`
	LocationID    string   `json:"locationId"    validate:"required"`
	TableNumber   []string `json:"tableNumber"   validate:"required,min=1"`
	Date          string   `json:"date"          validate:"required"`
	GuestsNumber  string   `json:"guestsNumber"  validate:"required"`
	TimeFrom      string   `json:"timeFrom"      validate:"required"`
	TimeTo        string   `json:"timeTo"        validate:"required"`
	Time          string   `json:"time"`
}

type EditReservationRequest struct {
	GuestsNumber string `json:"guestsNumber" validate:"required"`
	TimeFrom     string `json:"timeFrom"     validate:"required"`
	TimeTo       string `json:"timeTo"       validate:"required"`
}
