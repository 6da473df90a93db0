package models

import "errors"

type UserRole string

const (
	UserRoleCoSecretary UserRole = "CO_SECRETARY"
	UserRoleCoSignatory UserRole = "CO_SIGNATORY"
	UserRoleAdmin       UserRole = "ADMIN"
)

func (r *UserRole) Parse(s string) error {
	switch s {
	case "CO_SECRETARY":
		*r = UserRoleCoSecretary
	case "CO_SIGNATORY":
		*r = UserRoleCoSignatory
	case "ADMIN":
		*r = UserRoleAdmin
	default:
		return errors.New("invalid user role")
	}
	return nil
}

type UserStatus string

const (
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusInactive UserStatus = "INACTIVE"
	UserStatusDeleted  UserStatus = "DELETED"
)

type UserPosition string

const (
	UserPositionDirector    UserPosition = "DIRECTOR"
	UserPositionShareHolder UserPosition = "SHARE_HOLDER"
	UserPositionSecretary   UserPosition = "SECRETARY"
)

type ResolutionStatus string

const (
	ResolutionStatusUpcoming   ResolutionStatus = "UPCOMING"
	ResolutionStatusInProgress ResolutionStatus = "IN_PROGRESS"
	ResolutionStatusAccepted   ResolutionStatus = "ACCEPTED"
	ResolutionStatusRejected   ResolutionStatus = "REJECTED"
	ResolutionStatusCancelled  ResolutionStatus = "CANCELLED"

	// ResolutionStatusClosed is a query-only pseudo status that expands to
	// ResolutionClosedStatuses in filters; it never appears on a resolution.
	ResolutionStatusClosed ResolutionStatus = "CLOSED"
)

var ResolutionClosedStatuses = []ResolutionStatus{
	ResolutionStatusAccepted,
	ResolutionStatusRejected,
	ResolutionStatusCancelled,
}

// ResolutionActiveStatuses is the policy boundary for "awaiting a vote":
// cosignatory deactivation and workplace changes are blocked while the user
// has resolutions in these states.
var ResolutionActiveStatuses = []ResolutionStatus{
	ResolutionStatusInProgress,
	ResolutionStatusUpcoming,
}

type ResolutionType string

const (
	ResolutionTypeDirectors    ResolutionType = "DIRECTORS"
	ResolutionTypeShareholders ResolutionType = "SHAREHOLDERS"
)

// ResolutionPosition maps a resolution type to the position label shown for
// each voter in the expanded voting view.
var ResolutionPosition = map[ResolutionType]UserPosition{
	ResolutionTypeDirectors:    UserPositionDirector,
	ResolutionTypeShareholders: UserPositionShareHolder,
}

type ResolutionVote string

const (
	ResolutionVoteAccept    ResolutionVote = "ACCEPT"
	ResolutionVoteReject    ResolutionVote = "REJECT"
	ResolutionVoteAbstained ResolutionVote = "ABSTAINED"
)

// IsResolutionVote reports whether s is a recorded vote value as opposed to
// a pending-voter placeholder.
func IsResolutionVote(s string) bool {
	switch ResolutionVote(s) {
	case ResolutionVoteAccept, ResolutionVoteReject, ResolutionVoteAbstained:
		return true
	}
	return false
}

type ActivityAction string

const (
	ActivityCreatedResolution   ActivityAction = "CREATED_RESOLUTION"
	ActivityCancelledResolution ActivityAction = "CANCELLED_RESOLUTION"
	ActivityEditedResolution    ActivityAction = "EDITED_RESOLUTION"
	ActivityAcceptedResolution  ActivityAction = "ACCEPTED_RESOLUTION"
	ActivityRejectedResolution  ActivityAction = "REJECTED_RESOLUTION"
	ActivityVotedAccept         ActivityAction = "VOTED_ACCEPT"
	ActivityVotedReject         ActivityAction = "VOTED_REJECT"
	ActivityVotedAbstained      ActivityAction = "VOTED_ABSTAINED"
	ActivityLeftComment         ActivityAction = "LEFT_COMMENT"
	ActivityUpdateComment       ActivityAction = "UPDATE_COMMENT"
	ActivityRemoveComment       ActivityAction = "REMOVE_COMMENT"
)

// VoteActivity maps a submitted vote to the activity row written alongside it.
var VoteActivity = map[ResolutionVote]ActivityAction{
	ResolutionVoteAccept:    ActivityVotedAccept,
	ResolutionVoteReject:    ActivityVotedReject,
	ResolutionVoteAbstained: ActivityVotedAbstained,
}

type MessageDelivery string

const (
	MessageDeliveryEmail MessageDelivery = "EMAIL"
	MessageDeliverySms   MessageDelivery = "SMS"
)

type MessageType string

const (
	MessageTypeNewApprovalRequest MessageType = "NEW_APPROVAL_REQUEST"
	MessageTypeDocumentCancelled  MessageType = "DOCUMENT_CANCELLED"
	MessageTypeDocumentAccepted   MessageType = "DOCUMENT_ACCEPTED"
	MessageTypeDocumentRejected   MessageType = "DOCUMENT_REJECTED"
	MessageTypeReminder           MessageType = "REMINDER"
	MessageTypeInvite             MessageType = "INVITE"
	MessageTypeResetPassword      MessageType = "RESET_PASSWORD"
	MessageTypeCalendarEvent      MessageType = "CALENDAR_EVENT"
)

type CompanyStatus string

const (
	CompanyStatusActive   CompanyStatus = "ACTIVE"
	CompanyStatusInactive CompanyStatus = "INACTIVE"
)

// Company log parameters form the allow-list of company-level diff-log keys.
// The invitation keys mark the attachment of a cosignatory or co-secretary.
const (
	CompanyLogCosignInvitation  = "cosignInvitation"
	CompanyLogCosecInvitation   = "cosecInvitation"
	CompanyLogName              = "name"
	CompanyLogRegistrationNo    = "registrationNumber"
	CompanyLogIncorporationDate = "incorporationDate"
	CompanyLogFinancialYearEnd  = "financialYearEndDate"
	CompanyLogNextMeetingDate   = "nextMeetingDate"
	CompanyLogLogoName          = "logoName"
)

// User log parameters: user-level audit keys. The workplace keys are scoped
// to a company name when written.
const (
	UserLogStatus      = "status"
	UserLogVotingValue = "votingValue"
	UserLogVetoPower   = "vetoPower"
	UserLogPositions   = "positions"
)

// DocumentMimeTypes is the allow-list for resolution attachments.
var DocumentMimeTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// ImageMimeTypes is the allow-list for company logos.
var ImageMimeTypes = []string{
	"image/jpeg",
	"image/png",
	"image/svg+xml",
}
