package domain

import "time"

type Reservation struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	Status          string    `json:"status"`
	StartAt         time.Time `json:"startAt"`
	EndAt           time.Time `json:"endAt"`
	TotalPriceCents int       `json:"totalPriceCents"`
	Currency        string    `json:"currency"`
	PickupAgencyID  string    `json:"pickupAgencyId"`
	DropoffAgencyID string    `json:"dropoffAgencyId"`
	CarCategoryCode string    `json:"carCategoryCode"`
	CreatedAt       time.Time `json:"createdAt"`
}
