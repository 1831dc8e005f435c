package services

import (
	stderrors "errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/property-system/tenancy-api/models"
	"github.com/property-system/tenancy-api/phone"
	"github.com/property-system/tenancy-api/pkg/errors"
)

// PartyService resolves contract parties against the registry and provisions
// login accounts for them.
type PartyService struct {
	db *gorm.DB
}

// NewPartyService creates a new party service
func NewPartyService(db *gorm.DB) *PartyService {
	return &PartyService{db: db}
}

// ResolveOrCreateParty finds an existing party by normalized phone or national
// id, or creates one. The same person supplied as "0501234567" on one contract
// and "+966501234567" on the next resolves to a single party row.
//
// When the phone matches one existing party and the national id matches a
// different one, the request is ambiguous and is rejected rather than guessing
// which identity the caller meant.
func (s *PartyService) ResolveOrCreateParty(tx *gorm.DB, input models.PartyInput, partyType string) (*models.Party, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.ValidationError("PARTY_NAME_REQUIRED", "party name is required")
	}
	normalizedPhone := phone.Normalize(input.Phone)
	nationalID := strings.TrimSpace(input.NationalID)
	if normalizedPhone == "" && nationalID == "" {
		return nil, errors.ValidationError("PARTY_IDENTITY_REQUIRED",
			fmt.Sprintf("party %q needs a phone or national id", name))
	}

	byPhone, err := s.findParty(tx, "REPLACE(REPLACE(phone, '+966', '0'), ' ', '') = ?", phone.Domestic(normalizedPhone))
	if err != nil {
		return nil, err
	}
	byNationalID, err := s.findParty(tx, "national_id = ? AND national_id <> ''", nationalID)
	if err != nil {
		return nil, err
	}

	switch {
	case byPhone != nil && byNationalID != nil && byPhone.ID != byNationalID.ID:
		return nil, errors.ConflictError("PARTY_IDENTITY_AMBIGUOUS",
			fmt.Sprintf("phone and national id of party %q belong to two different registered parties", name))
	case byPhone != nil:
		return byPhone, nil
	case byNationalID != nil:
		return byNationalID, nil
	}

	party := &models.Party{
		Type:       partyType,
		Name:       name,
		Phone:      normalizedPhone,
		NationalID: nationalID,
	}
	if err := tx.Create(party).Error; err != nil {
		return nil, fmt.Errorf("failed to create party %q: %w", name, err)
	}
	return party, nil
}

func (s *PartyService) findParty(tx *gorm.DB, cond string, arg string) (*models.Party, error) {
	if arg == "" {
		return nil, nil
	}
	var party models.Party
	err := tx.Where(cond, arg).Order("id").First(&party).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("party lookup failed: %w", err)
	}
	return &party, nil
}

// ProvisionUserAccount ensures the party can log in: find-or-create a user row
// keyed by phone and grant the given role if not already granted. Parties
// without a phone are skipped; they have no login identity to provision.
func (s *PartyService) ProvisionUserAccount(tx *gorm.DB, party *models.Party, roleName string) error {
	if party.Phone == "" {
		return nil
	}

	var user models.User
	err := tx.Where("phone = ?", party.Phone).First(&user).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{Name: party.Name, Phone: party.Phone, IsActive: true}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to provision user for party %d: %w", party.ID, err)
		}
	} else if err != nil {
		return fmt.Errorf("user lookup failed: %w", err)
	}

	role := models.Role{RoleName: roleName}
	if err := tx.Where("role_name = ?", roleName).FirstOrCreate(&role).Error; err != nil {
		return fmt.Errorf("failed to resolve role %q: %w", roleName, err)
	}

	grant := models.UserRole{UserID: user.ID, RoleID: role.ID}
	if err := tx.Where("user_id = ? AND role_id = ?", user.ID, role.ID).FirstOrCreate(&grant).Error; err != nil {
		return fmt.Errorf("failed to grant role %q to user %d: %w", roleName, user.ID, err)
	}
	return nil
}
