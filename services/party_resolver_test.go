package services

import (
	"testing"

	"bizbooks-backend/models"
	"bizbooks-backend/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_ByExplicitID(t *testing.T) {
	db := setupTestDB(t)
	companyID, userID := seedCompany(t, db)
	party := seedParty(t, db, companyID, userID, "Ravi", "9876543210", models.PartyTypeCustomer, 0)

	resolver := NewPartyResolver(db)
	resolved, err := resolver.Resolve(companyID, userID, ResolvePartyInput{PartyID: &party.ID})
	require.NoError(t, err)
	assert.Equal(t, party.ID, resolved.ID)
}

func TestResolve_ExplicitIDNotFound(t *testing.T) {
	db := setupTestDB(t)
	companyID, userID := seedCompany(t, db)

	missing := uuid.New()
	resolver := NewPartyResolver(db)
	_, err := resolver.Resolve(companyID, userID, ResolvePartyInput{PartyID: &missing, Name: "Ravi"})
	require.Error(t, err)

	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.Status)
}

func TestResolve_MatchesPhoneVariants(t *testing.T) {
	db := setupTestDB(t)
	companyID, userID := seedCompany(t, db)
	party := seedParty(t, db, companyID, userID, "Ravi", "9876543210", models.PartyTypeCustomer, 0)

	resolver := NewPartyResolver(db)
	for _, input := range []string{
		"9876543210",
		"98765 43210",
		"98765-43210",
		"+919876543210", // country code stripped to last 10 digits
		"09876543210",   // leading zero stripped
	} {
		resolved, err := resolver.Resolve(companyID, userID, ResolvePartyInput{Phone: input})
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, party.ID, resolved.ID, "input %q", input)
	}
}

func TestResolve_PhoneMatchUpdatesName(t *testing.T) {
	db := setupTestDB(t)
	companyID, userID := seedCompany(t, db)
	party := seedParty(t, db, companyID, userID, "Ravi", "9876543210", models.PartyTypeCustomer, 0)

	resolver := NewPartyResolver(db)
	resolved, err := resolver.Resolve(companyID, userID, ResolvePartyInput{
		Name:  "Ravi Kumar",
		Phone: "9876543210",
	})
	require.NoError(t, err)
	assert.Equal(t, party.ID, resolved.ID)
	assert.Equal(t, "Ravi Kumar", resolved.Name)

	var reloaded models.Party
	require.NoError(t, db.First(&reloaded, "id = ?", party.ID).Error)
	assert.Equal(t, "Ravi Kumar", reloaded.Name)
}

func TestResolve_NameMatchCaseInsensitiveAndBackfillsPhone(t *testing.T) {
	db := setupTestDB(t)
	companyID, userID := seedCompany(t, db)
	party := seedParty(t, db, companyID, userID, "Ravi Kumar", "", models.PartyTypeCustomer, 0)

	resolver := NewPartyResolver(db)
	resolved, err := resolver.Resolve(companyID, userID, ResolvePartyInput{
		Name:  "ravi kumar",
		Phone: "98765 43210",
	})
	require.NoError(t, err)
	assert.Equal(t, party.ID, resolved.ID)
	assert.Equal(t, "9876543210", resolved.Phone)
}

func TestResolve_CreatesWithDefaultType(t *testing.T) {
	db := setupTestDB(t)
	companyID, userID := seedCompany(t, db)

	resolver := NewPartyResolver(db)
	resolved, err := resolver.Resolve(companyID, userID, ResolvePartyInput{
		Name:        "New Supplier",
		Phone:       "9812345678",
		DefaultType: models.PartyTypeSupplier,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PartyTypeSupplier, resolved.PartyType)
	assert.Equal(t, "9812345678", resolved.Phone)
	assert.True(t, resolved.IsSupplier())

	var count int64
	db.Model(&models.Party{}).Where("company_id = ?", companyID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestResolve_CreateUsesPhoneAsNameFallback(t *testing.T) {
	db := setupTestDB(t)
	companyID, userID := seedCompany(t, db)

	resolver := NewPartyResolver(db)
	resolved, err := resolver.Resolve(companyID, userID, ResolvePartyInput{Phone: "9812345678"})
	require.NoError(t, err)
	assert.Equal(t, "9812345678", resolved.Name)
	assert.Equal(t, models.PartyTypeCustomer, resolved.PartyType)
}

func TestResolve_RequiresNameOrPhone(t *testing.T) {
	db := setupTestDB(t)
	companyID, userID := seedCompany(t, db)

	resolver := NewPartyResolver(db)
	_, err := resolver.Resolve(companyID, userID, ResolvePartyInput{})
	require.Error(t, err)

	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)
}

func TestResolve_SecondCallReturnsSameParty(t *testing.T) {
	db := setupTestDB(t)
	companyID, userID := seedCompany(t, db)

	resolver := NewPartyResolver(db)
	first, err := resolver.Resolve(companyID, userID, ResolvePartyInput{Name: "Ravi", Phone: "9876543210"})
	require.NoError(t, err)

	second, err := resolver.Resolve(companyID, userID, ResolvePartyInput{Name: "Ravi", Phone: "9876543210"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	db.Model(&models.Party{}).Where("company_id = ?", companyID).Count(&count)
	assert.Equal(t, int64(1), count)
}

// An unrecoverable duplicate (the conflicting record is invisible to the
// search, here because it is deactivated) surfaces as a conflict instead of
// a raw constraint error.
func TestResolve_DuplicateNotRecoverable(t *testing.T) {
	db := setupTestDB(t)
	companyID, userID := seedCompany(t, db)
	party := seedParty(t, db, companyID, userID, "Old Ravi", "9876543210", models.PartyTypeCustomer, 0)
	require.NoError(t, db.Model(&party).Update("is_active", false).Error)

	resolver := NewPartyResolver(db)
	_, err := resolver.Resolve(companyID, userID, ResolvePartyInput{Name: "Ravi", Phone: "9876543210"})
	require.Error(t, err)

	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 409, appErr.Status)
}
