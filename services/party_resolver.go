// services/party_resolver.go
package services

import (
	"errors"
	"strings"

	"bizbooks-backend/models"
	"bizbooks-backend/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// PartyResolver finds or creates a party from a fuzzy set of identifying
// fields. The schema keeps a single normalized phone column, so fuzziness
// lives entirely on the input side: the caller's phone is expanded into
// its lookup variants and matched with one indexed query.
type PartyResolver struct {
	db *gorm.DB
}

func NewPartyResolver(db *gorm.DB) *PartyResolver {
	return &PartyResolver{db: db}
}

// ResolvePartyInput identifies a party by explicit ID, phone or name, in
// that priority order. DefaultType is used only when a new record has to
// be created.
type ResolvePartyInput struct {
	PartyID     *uuid.UUID
	Name        string
	Phone       string
	DefaultType models.PartyType
}

// Resolve returns an existing party or creates one. A concurrent identical
// create is recovered by re-running the search after a duplicate-key
// failure instead of failing the whole operation.
func (r *PartyResolver) Resolve(companyID, userID uuid.UUID, in ResolvePartyInput) (*models.Party, error) {
	if in.PartyID != nil && *in.PartyID != uuid.Nil {
		var party models.Party
		err := r.db.Where("company_id = ? AND id = ?", companyID, *in.PartyID).First(&party).Error
		if err == nil {
			return &party, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.WrapInternal("failed to load party", err)
		}
		return nil, utils.NewNotFoundError("party not found")
	}

	if party, err := r.search(companyID, in); err != nil {
		return nil, err
	} else if party != nil {
		return party, nil
	}

	if in.Name == "" && in.Phone == "" {
		return nil, utils.NewValidationError("party name or phone is required")
	}

	partyType := in.DefaultType
	if partyType == "" {
		partyType = models.PartyTypeCustomer
	}
	party := models.Party{
		CompanyID:       companyID,
		CreatedByUserID: userID,
		Name:            in.Name,
		Phone:           utils.NormalizePhone(in.Phone),
		PartyType:       partyType,
	}
	if party.Name == "" {
		party.Name = party.Phone
	}

	if err := r.db.Create(&party).Error; err != nil {
		if !isDuplicateKey(err) {
			return nil, utils.WrapInternal("failed to create party", err)
		}
		// Lost the create race; the concurrently created record must be
		// findable now.
		recovered, searchErr := r.search(companyID, in)
		if searchErr == nil && recovered != nil {
			log.Debug().Str("party", recovered.ID.String()).Msg("recovered concurrently created party")
			return recovered, nil
		}
		return nil, utils.NewConflictError(
			"party resolution conflict: duplicate record detected but not recoverable (tried phone=%q name=%q)",
			in.Phone, in.Name)
	}
	return &party, nil
}

// search runs the phone-then-name lookup. Returns nil without error when
// nothing matches.
func (r *PartyResolver) search(companyID uuid.UUID, in ResolvePartyInput) (*models.Party, error) {
	if in.Phone != "" {
		variants := utils.PhoneVariants(in.Phone)
		var party models.Party
		err := r.db.Where("company_id = ? AND is_active = ? AND phone IN ?", companyID, true, variants).
			Order("created_at").First(&party).Error
		if err == nil {
			// Last write wins on the display name.
			if in.Name != "" && in.Name != party.Name {
				if updErr := r.db.Model(&party).Update("name", in.Name).Error; updErr != nil {
					log.Warn().Err(updErr).Str("party", party.ID.String()).Msg("failed to update party name")
				} else {
					party.Name = in.Name
				}
			}
			return &party, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.WrapInternal("party phone lookup failed", err)
		}
	}

	if in.Name != "" {
		var party models.Party
		err := r.db.Where("company_id = ? AND is_active = ? AND LOWER(name) = ?", companyID, true, strings.ToLower(in.Name)).
			Order("created_at").First(&party).Error
		if err == nil {
			// Backfill phone on records that never had one.
			if party.Phone == "" && in.Phone != "" {
				normalized := utils.NormalizePhone(in.Phone)
				if updErr := r.db.Model(&party).Update("phone", normalized).Error; updErr != nil {
					log.Warn().Err(updErr).Str("party", party.ID.String()).Msg("failed to backfill party phone")
				} else {
					party.Phone = normalized
				}
			}
			return &party, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.WrapInternal("party name lookup failed", err)
		}
	}

	return nil, nil
}
