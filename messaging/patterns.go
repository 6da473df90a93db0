package messaging

import (
	"time"

	"github.com/shopspring/decimal"
)

// Request/response patterns served by the ledger service.
const (
	PatternCreateResolution  = "CREATE_RESOLUTION"
	PatternVoteForResolution = "VOTE_FOR_RESOLUTION"
	PatternGetResolution     = "GET_RESOLUTION"
	PatternGetResolutions    = "GET_RESOLUTIONS"
	PatternCancelResolution  = "CANCEL_RESOLUTION"
	PatternEditResolution    = "EDIT_RESOLUTION"
)

// Fire-and-forget patterns emitted towards the ledger service.
const (
	PatternRegisterCompany   = "REGISTER_COMPANY"
	PatternCreateDirector    = "CREATE_DIRECTOR"
	PatternCreateShareholder = "CREATE_SHAREHOLDER"
	PatternRemoveDirector    = "REMOVE_DIRECTOR"
	PatternRemoveShareholder = "REMOVE_SHAREHOLDER"
	PatternUpdateShareholder = "UPDATE_SHAREHOLDER"
)

// Patterns on the notification and event side.
const (
	PatternSendNotification            = "SEND_NOTIFICATION"
	PatternResolutionStatusChanged     = "RESOLUTION_STATUS_CHANGED"
	PatternCompanyCalendarNotification = "COMPANY_CALENDAR_NOTIFICATION"
)

// ResolutionDraft is the create-resolution request payload. The ledger
// assigns the resolution id.
type ResolutionDraft struct {
	CompanyId       int       `json:"companyId"`
	CosecId         int       `json:"cosecId"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Type            string    `json:"type"`
	VotingStartDate time.Time `json:"votingStartDate"`
	VotingEndDate   time.Time `json:"votingEndDate"`
	ApprovalRatio   int       `json:"approvalRatio"`
	Emergency       bool      `json:"emergency"`
	Hashes          []string  `json:"hashes"`
}

type CreateResolutionResult struct {
	Id int `json:"id"`
}

type VotePayload struct {
	ResolutionId  int    `json:"resolutionId"`
	CosignatoryId int    `json:"cosignatoryId"`
	Vote          string `json:"vote"`
}

type CancelPayload struct {
	ResolutionId int    `json:"resolutionId"`
	CancelReason string `json:"cancelReason"`
}

type EditPayload struct {
	ResolutionId int      `json:"resolutionId"`
	Hashes       []string `json:"hashes"`
}

// VoteRecord is one cosignatory's recorded vote as held by the ledger.
// Weight and veto may be absent, in which case the local workplace-derived
// defaults apply during expansion.
type VoteRecord struct {
	Vote      string           `json:"vote"`
	Timestamp time.Time        `json:"timestamp"`
	Weight    *decimal.Decimal `json:"weight"`
	Veto      *bool            `json:"veto"`
}

// ResolutionInfo is the ledger's authoritative view of one resolution.
type ResolutionInfo struct {
	Id              int                   `json:"id"`
	CompanyId       int                   `json:"companyId"`
	CosecId         int                   `json:"cosecId"`
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	Type            string                `json:"type"`
	Status          string                `json:"status"`
	VotingStartDate time.Time             `json:"votingStartDate"`
	VotingEndDate   time.Time             `json:"votingEndDate"`
	ApprovalRatio   int                   `json:"approvalRatio"`
	Emergency       bool                  `json:"emergency"`
	Hashes          []string              `json:"hashes"`
	Votes           map[string]VoteRecord `json:"votes"`
}

// FilterConditions narrows GET_RESOLUTIONS by locally resolved identity
// matches (resolution ids, company ids, partial resolution name).
type FilterConditions struct {
	ResolutionsIds []int  `json:"resolutionsIds"`
	CompaniesIds   []int  `json:"companiesIds"`
	ResolutionName string `json:"resolutionName,omitempty"`
}

// ResolutionsFilter is the composite query shape for GET_RESOLUTIONS. One
// paginated request carries every filter dimension at once.
type ResolutionsFilter struct {
	CompanyId      *int              `json:"companyId,omitempty"`
	CosignatoryId  *int              `json:"cosignatoryId,omitempty"`
	ResolutionsIds []int             `json:"resolutionsIds,omitempty"`
	Type           string            `json:"type,omitempty"`
	Statuses       []string          `json:"statuses,omitempty"`
	IsVote         *bool             `json:"isVote,omitempty"`
	DateFrom       *time.Time        `json:"dateFrom,omitempty"`
	DateTo         *time.Time        `json:"dateTo,omitempty"`
	EndDateFrom    *time.Time        `json:"endDateFrom,omitempty"`
	CondParams     *FilterConditions `json:"condParams,omitempty"`
	Offset         int               `json:"offset"`
	Limit          int               `json:"limit"`
}

type ResolutionsResult struct {
	Count           int              `json:"count"`
	ResolutionsInfo []ResolutionInfo `json:"resolutionsInfo"`
}

type RegisterCompanyPayload struct {
	Id int `json:"id"`
}

// CreateCosignatoryPayload registers one (user, company, position) triple.
type CreateCosignatoryPayload struct {
	Id          int              `json:"id"`
	CompanyId   int              `json:"companyId"`
	VotingValue *decimal.Decimal `json:"votingValue,omitempty"`
	VetoPower   bool             `json:"vetoPower"`
	IsChairman  bool             `json:"isChairman"`
}

type RemoveCosignatoryPayload struct {
	CompanyId int `json:"companyId"`
	UserId    int `json:"userId"`
}

type UpdateShareholderPayload struct {
	Id          int              `json:"id"`
	CompanyId   int              `json:"companyId"`
	VotingValue *decimal.Decimal `json:"votingValue,omitempty"`
	VetoPower   bool             `json:"vetoPower"`
}

// NotificationPayload goes to the email transport.
type NotificationPayload struct {
	Email       string            `json:"email"`
	PhoneNumber string            `json:"phoneNumber,omitempty"`
	Template    string            `json:"template"`
	Subject     string            `json:"subject"`
	Context     map[string]string `json:"context"`
}

// StatusChangedEvent is consumed when the ledger reports a transition.
type StatusChangedEvent struct {
	Id     int    `json:"id"`
	Status string `json:"status"`
}
