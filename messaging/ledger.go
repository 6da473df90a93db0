package messaging

import (
	"context"
	"strings"

	"bitbucket.org/flact/governance_backend/apperr"
	"bitbucket.org/flact/governance_backend/models"
)

// Ledger is the typed surface of the resolution ledger service. Workflow
// code depends on this interface so tests can substitute a fake.
type Ledger interface {
	CreateResolution(ctx context.Context, draft ResolutionDraft) (int, error)
	VoteForResolution(ctx context.Context, payload VotePayload) error
	GetResolutionInfo(ctx context.Context, resolutionId int) (*ResolutionInfo, error)
	GetResolutionsInfo(ctx context.Context, filter ResolutionsFilter) (*ResolutionsResult, error)
	CancelResolution(ctx context.Context, payload CancelPayload) error
	EditResolution(ctx context.Context, payload EditPayload) error

	RegisterCompany(ctx context.Context, companyId int) error
	CreateDirector(ctx context.Context, payload CreateCosignatoryPayload) error
	CreateShareholder(ctx context.Context, payload CreateCosignatoryPayload) error
	RemoveDirector(ctx context.Context, payload RemoveCosignatoryPayload) error
	RemoveShareholder(ctx context.Context, payload RemoveCosignatoryPayload) error
	UpdateShareholder(ctx context.Context, payload UpdateShareholderPayload) error
}

// LedgerClient implements Ledger over a Bus, translating remote rejections
// into the local taxonomy at this boundary.
type LedgerClient struct {
	bus Bus
}

func NewLedgerClient(bus Bus) *LedgerClient {
	return &LedgerClient{bus: bus}
}

func (c *LedgerClient) translate(err error, field, notFoundMessage string) error {
	if err == nil {
		return nil
	}
	if remote, ok := AsRemoteError(err); ok {
		return TranslateLedgerError(remote.Message, field, notFoundMessage)
	}
	return err
}

func (c *LedgerClient) CreateResolution(ctx context.Context, draft ResolutionDraft) (int, error) {
	var result CreateResolutionResult
	err := c.bus.Request(ctx, PatternCreateResolution, draft, &result)
	if err != nil {
		return 0, c.translate(err, "companyId", models.ErrCompanyNotFound)
	}
	return result.Id, nil
}

func (c *LedgerClient) VoteForResolution(ctx context.Context, payload VotePayload) error {
	var ok bool
	err := c.bus.Request(ctx, PatternVoteForResolution, payload, &ok)
	return c.translate(err, "resolutionId", models.ErrResolutionNotFound)
}

func (c *LedgerClient) GetResolutionInfo(ctx context.Context, resolutionId int) (*ResolutionInfo, error) {
	var result ResolutionInfo
	err := c.bus.Request(ctx, PatternGetResolution, resolutionId, &result)
	if err != nil {
		return nil, c.translate(err, "resolutionId", models.ErrResolutionNotFound)
	}
	return &result, nil
}

func (c *LedgerClient) GetResolutionsInfo(ctx context.Context, filter ResolutionsFilter) (*ResolutionsResult, error) {
	var result ResolutionsResult
	err := c.bus.Request(ctx, PatternGetResolutions, filter, &result)
	if err != nil {
		return nil, c.translate(err, "", models.ErrResolutionFilterNotFound)
	}
	return &result, nil
}

func (c *LedgerClient) CancelResolution(ctx context.Context, payload CancelPayload) error {
	var ok bool
	err := c.bus.Request(ctx, PatternCancelResolution, payload, &ok)
	return c.translate(err, "resolutionId", models.ErrResolutionNotFound)
}

func (c *LedgerClient) EditResolution(ctx context.Context, payload EditPayload) error {
	var ok bool
	err := c.bus.Request(ctx, PatternEditResolution, payload, &ok)
	if remote, isRemote := AsRemoteError(err); isRemote {
		// A vote already cast means voting has started; edits are locked.
		if strings.Contains(strings.ToLower(remote.Message), "already voted") {
			return apperr.Unprocessable("resolutionId", models.ErrVotingAlreadyStarted)
		}
	}
	return c.translate(err, "resolutionId", models.ErrResolutionNotFound)
}

func (c *LedgerClient) RegisterCompany(ctx context.Context, companyId int) error {
	return c.bus.Emit(ctx, PatternRegisterCompany, RegisterCompanyPayload{Id: companyId})
}

func (c *LedgerClient) CreateDirector(ctx context.Context, payload CreateCosignatoryPayload) error {
	return c.bus.Emit(ctx, PatternCreateDirector, payload)
}

func (c *LedgerClient) CreateShareholder(ctx context.Context, payload CreateCosignatoryPayload) error {
	return c.bus.Emit(ctx, PatternCreateShareholder, payload)
}

func (c *LedgerClient) RemoveDirector(ctx context.Context, payload RemoveCosignatoryPayload) error {
	return c.bus.Emit(ctx, PatternRemoveDirector, payload)
}

func (c *LedgerClient) RemoveShareholder(ctx context.Context, payload RemoveCosignatoryPayload) error {
	return c.bus.Emit(ctx, PatternRemoveShareholder, payload)
}

func (c *LedgerClient) UpdateShareholder(ctx context.Context, payload UpdateShareholderPayload) error {
	return c.bus.Emit(ctx, PatternUpdateShareholder, payload)
}
