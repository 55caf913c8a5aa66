package models

// ItemState is the lifecycle state of a pre-order cart item. Edits always
// return to SUBMITTED; an item never moves between UNSUBMITTED and
// EDIT_IN_PROGRESS directly.
type ItemState string

const (
	StateUnsubmitted    ItemState = "UNSUBMITTED"
	StateSubmitted      ItemState = "SUBMITTED"
	StateEditInProgress ItemState = "EDIT_IN_PROGRESS"
)

// CartStatus tracks the last asynchronous cart operation.
type CartStatus string

const (
	CartStatusIdle      CartStatus = "idle"
	CartStatusLoading   CartStatus = "loading"
	CartStatusSucceeded CartStatus = "succeeded"
	CartStatusFailed    CartStatus = "failed"
)

type DishLine struct {
	DishID       string `json:"dishId"`
	DishName     string `json:"dishName"`
	DishImageURL string `json:"dishImageUrl"`
	DishPrice    string `json:"dishPrice"`
	DishQuantity int    `json:"dishQuantity"`
}

// CartItem is the per-reservation collection of dish selections. A cart holds
// exactly one item per reservation id.
type CartItem struct {
	ReservationID   string     `json:"reservationId"`
	Date            string     `json:"date"`
	TimeSlot        string     `json:"timeSlot"`
	LocationAddress string     `json:"locationAddress"`
	DishItems       []DishLine `json:"dishItems"`
	State           ItemState  `json:"state"`
}

// CartResponse is the upstream GET /cart payload.
type CartResponse struct {
	Content []CartItem `json:"content"`
}

type AddDishRequest struct {
	ReservationID string   `json:"reservationId" validate:"required"`
	Dish          DishLine `json:"dish"          validate:"required"`
}

type UpdateCartItemRequest struct {
	Date            *string    `json:"date,omitempty"`
	TimeSlot        *string    `json:"timeSlot,omitempty"`
	LocationAddress *string    `json:"locationAddress,omitempty"`
	DishItems       []DishLine `json:"dishItems,omitempty"`
}
