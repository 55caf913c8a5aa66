package models

type FeedbackRequest struct {
	ReservationID  string `json:"reservationId"  validate:"required"`
	CuisineRating  string `json:"cuisineRating"  validate:"omitempty,oneof=1 2 3 4 5"`
	ServiceRating  string `json:"serviceRating"  validate:"omitempty,oneof=1 2 3 4 5"`
	CuisineComment string `json:"cuisineComment" validate:"max=500"`
	ServiceComment string `json:"serviceComment" validate:"max=500"`
}
