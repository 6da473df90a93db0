package models

// Stable message keys surfaced to clients. A client never sees a raw remote
// error string; it sees one of these (plus details for diagnostics).
const (
	ErrVotingStartDateMoreThanEndDate = "VOTING_START_DATE_MORE_THAN_END_DATE"
	ErrResolutionNotFound             = "RESOLUTION_NOT_FOUND"
	ErrResolutionFilterNotFound       = "RESOLUTION_FILTER_NOT_FOUND"
	ErrResolutionCosecNotFound        = "RESOLUTION_COSECRETARY_NOT_FOUND"
	ErrCosignatoryAlreadyVoted        = "COSIGNATORY_ALREADY_VOTED"
	ErrVotingHasNotStarted            = "VOTING_HAS_NOT_STARTED"
	ErrVotingAlreadyClosed            = "VOTING_ALREADY_CLOSED"
	ErrVotingAlreadyStarted           = "VOTING_ALREADY_STARTED"
	ErrResolutionCommentNotFound      = "RESOLUTION_COMMENT_NOT_FOUND"

	ErrCompanyNotFound              = "COMPANY_NOT_FOUND"
	ErrCompanyWithThisNameExist     = "COMPANY_WITH_THIS_NAME_EXIST"
	ErrCompanyTotalVotingValueLimit = "COMPANY_TOTAL_VOTING_VALUES_LIMIT"
	ErrCompanyHasResolutions        = "COMPANY_HAS_RESOLUTIONS"

	ErrUserNotFound             = "USER_NOT_FOUND"
	ErrUserHasResolutions       = "USER_HAS_RESOLUTIONS"
	ErrUserHasActiveResolutions = "USER_HAS_ACTIVE_RESOLUTIONS"
	ErrUserAlreadyInWorkplace   = "USER_ALREADY_ADDED_TO_WORK_PLACE"

	ErrWorkplaceNotFound      = "WORKPLACE_NOT_FOUND"
	ErrWorkplacesMustBeUnique = "WORKPLACES_MUST_BE_UNIQUE"

	ErrFileNotFound    = "FILE_NOT_FOUND"
	ErrFileInvalidType = "FILE_INVALID_TYPE"
	ErrFileAlreadyUsed = "FILE_IS_ALREADY_USED"

	ErrMessageNotFound       = "USER_MESSAGE_NOT_FOUND"
	ErrMessageNotResendable  = "USER_NOTIFICATION_CAN_NOT_BE_RESEND"
	ErrNotificationsDisabled = "USER_DISABLE_NOTIFICATIONS"

	ErrValidationFailed   = "VALIDATION_FAILED"
	ErrPhoneNumberInvalid = "PHONE_NUMBER_INVALID"
	ErrForbidden          = "FORBIDDEN"
	ErrServiceUnavailable = "SERVICE_UNAVAILABLE"
)
