package repository

import (
	"context"
	"errors"
	"fmt"

	"amazon-connector-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PartyRepositoryInterface defines party and address persistence operations.
type PartyRepositoryInterface interface {
	FindByNameAndEmail(ctx context.Context, name, email string) (*models.Party, error)
	Create(ctx context.Context, party *models.Party) error
	ListAddresses(ctx context.Context, partyID uuid.UUID) ([]models.Address, error)
	CreateAddress(ctx context.Context, address *models.Address) error
	HasContact(ctx context.Context, partyID uuid.UUID, contactType models.ContactMechanismType, value string) (bool, error)
	CreateContact(ctx context.Context, contact *models.ContactMechanism) error
	FindSubdivision(ctx context.Context, countryCode, region string) (*models.Subdivision, error)
}

// PartyRepository handles database operations for parties and addresses
type PartyRepository struct {
	db *gorm.DB
}

var _ PartyRepositoryInterface = (*PartyRepository)(nil)

// NewPartyRepository creates a new party repository
func NewPartyRepository(db *gorm.DB) *PartyRepository {
	return &PartyRepository{db: db}
}

// FindByNameAndEmail retrieves the oldest party matching a buyer name and
// email. A missing party returns (nil, nil).
func (r *PartyRepository) FindByNameAndEmail(ctx context.Context, name, email string) (*models.Party, error) {
	var party models.Party
	err := r.db.WithContext(ctx).
		Where("name = ? AND email = ?", name, email).
		Order("created_at ASC").
		First(&party).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &party, nil
}

// Create creates a new party
func (r *PartyRepository) Create(ctx context.Context, party *models.Party) error {
	return r.db.WithContext(ctx).Create(party).Error
}

// ListAddresses retrieves a party's addresses
func (r *PartyRepository) ListAddresses(ctx context.Context, partyID uuid.UUID) ([]models.Address, error) {
	var addresses []models.Address
	err := r.db.WithContext(ctx).
		Where("party_id = ?", partyID).
		Order("created_at ASC").
		Find(&addresses).Error
	return addresses, err
}

// CreateAddress creates a new address
func (r *PartyRepository) CreateAddress(ctx context.Context, address *models.Address) error {
	return r.db.WithContext(ctx).Create(address).Error
}

// HasContact reports whether the party already carries a contact mechanism
func (r *PartyRepository) HasContact(ctx context.Context, partyID uuid.UUID, contactType models.ContactMechanismType, value string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ContactMechanism{}).
		Where("party_id = ? AND type = ? AND value = ?", partyID, contactType, value).
		Count(&count).Error
	return count > 0, err
}

// CreateContact creates a new contact mechanism
func (r *PartyRepository) CreateContact(ctx context.Context, contact *models.ContactMechanism) error {
	return r.db.WithContext(ctx).Create(contact).Error
}

// FindSubdivision resolves a state or region string within a country. It
// tries the ISO code first (country prefix plus region), then falls back
// to a case-insensitive name match. A missing subdivision returns
// (nil, nil); addresses keep the raw region text either way.
func (r *PartyRepository) FindSubdivision(ctx context.Context, countryCode, region string) (*models.Subdivision, error) {
	if region == "" {
		return nil, nil
	}

	var subdivision models.Subdivision
	code := fmt.Sprintf("%s-%s", countryCode, region)
	err := r.db.WithContext(ctx).
		Where("country_code = ? AND code = ?", countryCode, code).
		First(&subdivision).Error
	if err == nil {
		return &subdivision, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Where("country_code = ? AND name ILIKE ?", countryCode, region).
		First(&subdivision).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &subdivision, nil
}
