package partner

import (
	"context"

	"github.com/google/uuid"

	"github.com/jobwork/backend/internal/domain/partner"
	"github.com/jobwork/backend/internal/domain/shared"
)

// PartyRequest carries the fields a party master record can be created or
// updated with.
type PartyRequest struct {
	Name     string `json:"name"`
	IsActive *bool  `json:"is_active,omitempty"`
}

// PartyService manages party master records
type PartyService struct {
	partyRepo partner.PartyRepository
}

// NewPartyService creates a new PartyService
func NewPartyService(partyRepo partner.PartyRepository) *PartyService {
	return &PartyService{partyRepo: partyRepo}
}

// Create registers a new party
func (s *PartyService) Create(ctx context.Context, scope shared.Scope, req PartyRequest) (*partner.Party, error) {
	party, err := partner.NewParty(scope, req.Name)
	if err != nil {
		return nil, err
	}
	if err := s.partyRepo.Save(ctx, party); err != nil {
		return nil, err
	}
	return party, nil
}

// Update changes a party's name or active flag
func (s *PartyService) Update(ctx context.Context, scope shared.Scope, partyID uuid.UUID, req PartyRequest) (*partner.Party, error) {
	party, err := s.partyRepo.FindByID(ctx, scope, partyID)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		party.Name = req.Name
	}
	if req.IsActive != nil {
		party.IsActive = *req.IsActive
	}
	if err := s.partyRepo.Save(ctx, party); err != nil {
		return nil, err
	}
	return party, nil
}

// GetByID returns a single party
func (s *PartyService) GetByID(ctx context.Context, scope shared.Scope, partyID uuid.UUID) (*partner.Party, error) {
	return s.partyRepo.FindByID(ctx, scope, partyID)
}

// List returns all parties in the scope
func (s *PartyService) List(ctx context.Context, scope shared.Scope, filter shared.Filter) ([]partner.Party, error) {
	return s.partyRepo.FindAll(ctx, scope, filter)
}
