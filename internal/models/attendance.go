package models

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	AttendanceTable = "attendance"
	TicketsTable    = "tickets"
)

const (
	NoLimit = "No limit"
	SoldOut = "Sold out"
)

type TicketKind string

const (
	TicketFree TicketKind = "free"
	TicketPaid TicketKind = "paid"
)

// Spots is the derived seat availability shown next to an event.
type Spots struct {
	Available int    `json:"available"`
	Unlimited bool   `json:"unlimited"`
	Display   string `json:"display"`
}

func (s Spots) SoldOut() bool {
	return !s.Unlimited && s.Available == 0
}

// AvailableSpots returns max(0, capacity-attendees). A capacity of zero or less means the
// event has no limit.
func AvailableSpots(capacity, attendees int) Spots {
	if capacity <= 0 {
		return Spots{Unlimited: true, Display: NoLimit}
	}

	available := max(0, capacity-attendees)
	if available == 0 {
		return Spots{Display: SoldOut}
	}
	return Spots{Available: available, Display: strconv.Itoa(available)}
}

// Attendance is the single source of truth for "is attending".
type Attendance struct {
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;primaryKey"`
	EventID   uuid.UUID `json:"event_id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"created_at"`
}

func (Attendance) TableName() string {
	return AttendanceTable
}

// Ticket snapshots the event as it was when the ticket was issued.
type Ticket struct {
	ID                uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	UserID            uuid.UUID  `json:"user_id" gorm:"type:uuid;uniqueIndex:idx_ticket_user_event"`
	EventID           uuid.UUID  `json:"event_id" gorm:"type:uuid;uniqueIndex:idx_ticket_user_event"`
	Title             string     `json:"title"`
	Address           string     `json:"address"`
	StartTime         time.Time  `json:"start_time"`
	Price             string     `json:"price"`
	Email             string     `json:"email"`
	FullName          string     `json:"full_name"`
	Kind              TicketKind `json:"kind"`
	CheckoutSessionID string     `json:"checkout_session_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

func (Ticket) TableName() string {
	return TicketsTable
}

// JoinParams describes who joins and how the ticket was paid for.
type JoinParams struct {
	UserID            uuid.UUID
	EventID           uuid.UUID
	Email             string
	FullName          string
	Kind              TicketKind
	CheckoutSessionID string
}

type AttendanceStatus struct {
	EventID   uuid.UUID `json:"event_id"`
	Attending bool      `json:"attending"`
	Attendees int       `json:"attendees"`
	Spots     Spots     `json:"spots"`
}
