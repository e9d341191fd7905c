package models

import (
	"time"

	"github.com/google/uuid"
)

// Party is a customer identity. De-duplication is by exact name equality,
// matching the behavior the marketplace integration has always had.
type Party struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name  string    `gorm:"type:varchar(255);not null;index:idx_parties_name" json:"name"`
	Email string    `gorm:"type:varchar(255)" json:"email,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`

	Addresses []Address          `gorm:"foreignKey:PartyID" json:"addresses,omitempty"`
	Contacts  []ContactMechanism `gorm:"foreignKey:PartyID" json:"contacts,omitempty"`
}

// TableName specifies the table name
func (Party) TableName() string {
	return "parties"
}

// Address is a shipping or billing address of a party. Two shipping
// payloads with the same recipient name collapse to one address; that is
// the documented de-duplication rule, surprising as it looks.
type Address struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PartyID uuid.UUID `gorm:"type:uuid;not null;index" json:"partyId"`

	Name            string  `gorm:"type:varchar(255);not null" json:"name"`
	Line1           *string `gorm:"type:varchar(255)" json:"line1,omitempty"`
	Line2           *string `gorm:"type:varchar(255)" json:"line2,omitempty"`
	City            *string `gorm:"type:varchar(255)" json:"city,omitempty"`
	StateRegion     *string `gorm:"type:varchar(255)" json:"stateRegion,omitempty"`
	SubdivisionCode *string `gorm:"type:varchar(10)" json:"subdivisionCode,omitempty"`
	PostalCode      *string `gorm:"type:varchar(20)" json:"postalCode,omitempty"`
	CountryCode     *string `gorm:"type:varchar(2)" json:"countryCode,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// TableName specifies the table name
func (Address) TableName() string {
	return "party_addresses"
}

// ContactMechanismType is the kind of a contact mechanism.
type ContactMechanismType string

const (
	ContactPhone ContactMechanismType = "phone"
	ContactEmail ContactMechanismType = "email"
)

// ContactMechanism is a phone number or similar attached to a party.
type ContactMechanism struct {
	ID      uuid.UUID            `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PartyID uuid.UUID            `gorm:"type:uuid;not null;index" json:"partyId"`
	Type    ContactMechanismType `gorm:"type:varchar(20);not null" json:"type"`
	Value   string               `gorm:"type:varchar(255);not null" json:"value"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// TableName specifies the table name
func (ContactMechanism) TableName() string {
	return "party_contact_mechanisms"
}

// Subdivision is a country subdivision used to resolve the free-form
// StateOrRegion field of marketplace addresses.
type Subdivision struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CountryCode string    `gorm:"type:varchar(2);not null;uniqueIndex:idx_subdivisions_code" json:"countryCode"`
	Code        string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_subdivisions_code" json:"code"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
}

// TableName specifies the table name
func (Subdivision) TableName() string {
	return "country_subdivisions"
}
