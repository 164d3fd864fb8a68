package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PriceFree marks an event that does not go through checkout.
const PriceFree = "FREE"

type Event struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description"`
	Address     string    `json:"address" validate:"required"` // "Gdansk, Dluga 1"
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	Price       string    `json:"price" validate:"required"`
	GroupID     uuid.UUID `json:"group_id" gorm:"type:uuid"`
	CreatorID   uuid.UUID `json:"creator_id" gorm:"type:uuid"`
	Topics      Topics    `json:"topics" gorm:"type:jsonb"`
	Capacity    int       `json:"capacity"` // <= 0 means no limit
	PriceID     string    `json:"price_id,omitempty"`
	ProductID   string    `json:"product_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Event) TableName() string {
	return EventsTable
}

func (e *Event) IsFree() bool {
	return strings.EqualFold(strings.TrimSpace(e.Price), PriceFree)
}

// City is the comma separated prefix of the address.
func (e *Event) City() string {
	city, _, _ := strings.Cut(e.Address, ",")
	return strings.TrimSpace(city)
}

// ValidateEvent checks the fields the validator tags cannot express.
func (e *Event) ValidateEvent() error {
	if err := Validate.Struct(e); err != nil {
		return err
	}
	if !e.IsFree() {
		amount, err := strconv.ParseFloat(strings.TrimSpace(e.Price), 64)
		if err != nil || amount <= 0 {
			return fmt.Errorf("price must be %q or a positive number", PriceFree)
		}
		if e.PriceID == "" {
			return fmt.Errorf("price_id is required for paid events")
		}
	}
	return e.Topics.Validate()
}

func (e *Event) Normalize() {
	e.Title = strings.TrimSpace(e.Title)
	e.Address = strings.TrimSpace(e.Address)
	e.Price = strings.TrimSpace(e.Price)
	if e.IsFree() {
		e.Price = PriceFree
	}
	if e.Topics.Version == 0 {
		e.Topics.Version = TopicsVersion
	}
}

type EventImage struct {
	EventID uuid.UUID `json:"event_id"`
	Path    string    `json:"path"`
}

// EventView is the denormalized read model returned by discovery endpoints.
type EventView struct {
	Event
	ImageURL  string `json:"image_url,omitempty"`
	Attendees int    `json:"attendees"`
	Spots     Spots  `json:"spots"`
}
