package domain

import "time"

const (
	ThreadStatusOpen   = "OPEN"
	ThreadStatusClosed = "CLOSED"
)

// Thread es una conversacion de soporte entre un cliente y, a lo sumo, un
// agente asignado. AssignedSupportUserID vacio significa "sin asignar".
type Thread struct {
	ID                    string    `json:"id"`
	Subject               string    `json:"subject"`
	Status                string    `json:"status"`
	CreatedByUserID       string    `json:"createdByUserId"`
	AssignedSupportUserID string    `json:"assignedSupportUserId,omitempty"`
	ReservationID         string    `json:"reservationId,omitempty"`
	CreatedAt             time.Time `json:"createdAt"`
}

// ThreadView es la forma enriquecida que viaja por HTTP y por los topics.
type ThreadView struct {
	ID                    string    `json:"id"`
	Subject               string    `json:"subject"`
	Status                string    `json:"status"`
	CreatedAt             time.Time `json:"createdAt"`
	CreatedByUserID       string    `json:"createdByUserId"`
	CreatedByName         string    `json:"createdByName,omitempty"`
	CreatedByEmail        string    `json:"createdByEmail,omitempty"`
	ReservationID         string    `json:"reservationId,omitempty"`
	AssignedSupportUserID string    `json:"assignedSupportUserId,omitempty"`
	AssignedSupportName   string    `json:"assignedSupportName,omitempty"`
	AssignedSupportEmail  string    `json:"assignedSupportEmail,omitempty"`
}
