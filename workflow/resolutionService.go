package workflow

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bitbucket.org/flact/governance_backend/apperr"
	"bitbucket.org/flact/governance_backend/config"
	"bitbucket.org/flact/governance_backend/messaging"
	"bitbucket.org/flact/governance_backend/models"
	"bitbucket.org/flact/governance_backend/shortener"
	"bitbucket.org/flact/governance_backend/utils"
)

const resolutionDetailsPath = "/resolutions"

// Notifier is the notification fan-out surface the resolution workflows
// depend on.
type Notifier interface {
	SendEventNotifications(ctx context.Context, userId int, template models.NotificationTemplate, data NotificationData) error
}

// ResolutionService orchestrates the resolution lifecycle: the ledger holds
// authoritative status and votes, the local store holds the shadow record,
// documents, comments and the activity trail.
type ResolutionService struct {
	logger    *logrus.Logger
	ledger    messaging.Ledger
	notifier  Notifier
	shortener shortener.Shortener
	files     FileRemover
}

func NewResolutionService(logger *logrus.Logger, ledger messaging.Ledger, notifier Notifier, shortener shortener.Shortener, files FileRemover) *ResolutionService {
	return &ResolutionService{
		logger:    logger,
		ledger:    ledger,
		notifier:  notifier,
		shortener: shortener,
		files:     files,
	}
}

// CosignatoryVote is one voter's row in the expanded resolution view. When
// the ledger vote carries no weight override, the voter's workplace-derived
// defaults apply.
type CosignatoryVote struct {
	User        models.User      `json:"user"`
	Vote        string           `json:"vote"`
	VoteDate    *time.Time       `json:"vote_date"`
	VotingValue *decimal.Decimal `json:"voting_value"`
	VetoPower   bool             `json:"veto_power"`
	Position    string           `json:"position"`
}

// ResolutionView is the ledger-authoritative resolution enriched with local
// relational data.
type ResolutionView struct {
	Resolution    messaging.ResolutionInfo `json:"resolution"`
	Company       *models.Company          `json:"company"`
	Cosec         *models.User             `json:"cosec"`
	Documents     []models.File            `json:"documents"`
	Cosignatories []CosignatoryVote        `json:"cosignatories"`
}

func (s *ResolutionService) getCompanyOrFail(ctx context.Context, companyId, allianceId int) (*models.Company, error) {
	company, err := models.GetCompany(ctx, companyId, allianceId)
	if err != nil {
		return nil, apperr.Unprocessable("companyId", models.ErrCompanyNotFound)
	}
	return company, nil
}

func (s *ResolutionService) getCosignatoryOrFail(ctx context.Context, id, allianceId int) (*models.User, error) {
	user, err := models.GetUser(ctx, id, allianceId)
	if err != nil {
		return nil, apperr.Unprocessable("cosignatoryId", models.ErrUserNotFound)
	}
	return user, nil
}

func (s *ResolutionService) getResolutionOrFail(ctx context.Context, resolutionId int) (*models.Resolution, error) {
	resolution, err := models.GetResolution(ctx, resolutionId)
	if err != nil {
		return nil, apperr.Unprocessable("id", models.ErrResolutionNotFound)
	}
	return resolution, nil
}

// getDocumentsOrFail resolves the requested documents, rejecting disallowed
// MIME types before reporting missing ids.
func (s *ResolutionService) getDocumentsOrFail(ctx context.Context, documentIds []int) ([]models.File, error) {
	documents, err := models.GetFilesByIds(ctx, documentIds)
	if err != nil {
		return nil, err
	}
	for _, document := range documents {
		if !utils.Contains(models.DocumentMimeTypes, document.Type) {
			return nil, apperr.Unprocessable("documentsIds", models.ErrFileInvalidType)
		}
	}
	if len(documents) != len(utils.UniqueSlice(documentIds)) {
		return nil, apperr.NotFound("documentsIds", models.ErrFileNotFound)
	}
	return documents, nil
}

func validateVotingDates(start, end time.Time) error {
	if start.After(end) {
		return apperr.BadRequest("votingEndDate", models.ErrVotingStartDateMoreThanEndDate)
	}
	return nil
}

// CreateResolution validates the draft, lets the ledger assign the id, then
// persists the local shadow and activity entry and fans out notifications
// to every voter. The ledger call is the commit gate; nothing is written
// locally before it succeeds.
func (s *ResolutionService) CreateResolution(ctx context.Context, input models.NewResolution, principal Principal) (int, error) {
	if err := validateVotingDates(input.VotingStartDate, input.VotingEndDate); err != nil {
		return 0, err
	}
	if _, err := s.getCompanyOrFail(ctx, input.CompanyId, principal.AllianceId); err != nil {
		return 0, err
	}

	documents, err := s.getDocumentsOrFail(ctx, input.DocumentIds)
	if err != nil {
		return 0, err
	}
	hashes := make([]string, 0, len(documents))
	for _, document := range documents {
		hashes = append(hashes, document.Hash)
	}

	resolutionId, err := s.ledger.CreateResolution(ctx, messaging.ResolutionDraft{
		CompanyId:       input.CompanyId,
		CosecId:         principal.UserId,
		Title:           input.Title,
		Description:     input.Description,
		Type:            string(input.Type),
		VotingStartDate: input.VotingStartDate,
		VotingEndDate:   input.VotingEndDate,
		ApprovalRatio:   input.ApprovalRatio,
		Emergency:       input.Emergency,
		Hashes:          hashes,
	})
	if err != nil {
		return 0, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		shadow := models.Resolution{
			ID:              resolutionId,
			AllianceId:      principal.AllianceId,
			CompanyId:       input.CompanyId,
			CreatedById:     principal.UserId,
			Title:           input.Title,
			Description:     input.Description,
			Type:            input.Type,
			VotingStartDate: input.VotingStartDate,
			VotingEndDate:   input.VotingEndDate,
			Documents:       documents,
		}
		if err := tx.Create(&shadow).Error; err != nil {
			return err
		}
		return models.InsertActivity(tx, ctx, &models.Activity{
			AllianceId:   principal.AllianceId,
			ResolutionId: resolutionId,
			UserId:       &principal.UserId,
			Action:       models.ActivityCreatedResolution,
		})
	})
	if err != nil {
		return 0, err
	}

	if err := s.sendResolutionCreatedNotifications(ctx, resolutionId); err != nil {
		config.LogError(s.logger, "resolutionService.go", "CreateResolution", "notifications", resolutionId, err)
	}
	return resolutionId, nil
}

func (s *ResolutionService) sendResolutionCreatedNotifications(ctx context.Context, resolutionId int) error {
	cosignatories, err := s.getResolutionCosignatories(ctx, resolutionId)
	if err != nil {
		return err
	}

	longLink := s.resolutionLink(resolutionId)
	link := s.shortener.Shorten(ctx, longLink)
	template := models.NotificationTemplates[models.EventNewResolutionCreated]
	identity := resolutionTemplateContext(ctx, resolutionId)

	for _, cosignatory := range cosignatories {
		data := NotificationData{
			Email:       cosignatory.User.Email,
			PhoneNumber: cosignatory.User.PhoneNumber,
			Context: mergeContext(identity, map[string]string{
				"link":     link,
				"longLink": longLink,
			}),
		}
		if err := s.notifier.SendEventNotifications(ctx, cosignatory.User.ID, template, data); err != nil {
			config.LogError(s.logger, "resolutionService.go", "sendResolutionCreatedNotifications", "notify", cosignatory.User.ID, err)
		}
	}
	return nil
}

// VoteForResolution wraps the activity insert and the ledger vote in one
// local transaction. The ledger call is the commit point; a recognized
// rejection rolls the activity entry back so no orphan audit row remains.
func (s *ResolutionService) VoteForResolution(ctx context.Context, resolutionId int, vote models.ResolutionVote, principal Principal) error {
	if _, err := s.getResolutionOrFail(ctx, resolutionId); err != nil {
		return err
	}
	action, ok := models.VoteActivity[vote]
	if !ok {
		return apperr.BadRequest("vote", models.ErrForbidden)
	}

	db := config.GetDB()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := models.InsertActivity(tx, ctx, &models.Activity{
			AllianceId:   principal.AllianceId,
			ResolutionId: resolutionId,
			UserId:       &principal.UserId,
			Action:       action,
		})
		if err != nil {
			return err
		}
		return s.ledger.VoteForResolution(ctx, messaging.VotePayload{
			ResolutionId:  resolutionId,
			CosignatoryId: principal.UserId,
			Vote:          string(vote),
		})
	})
}

// CancelResolution sends the cancel to the ledger and writes the activity
// entry regardless of delivery confirmation; an unreachable ledger is an
// accepted eventual-consistency window, a domain rejection is not.
func (s *ResolutionService) CancelResolution(ctx context.Context, resolutionId int, cancelReason string, principal Principal) error {
	if _, err := s.getResolutionOrFail(ctx, resolutionId); err != nil {
		return err
	}

	err := s.ledger.CancelResolution(ctx, messaging.CancelPayload{
		ResolutionId: resolutionId,
		CancelReason: cancelReason,
	})
	if err != nil {
		if !apperr.IsServiceUnavailable(err) {
			return err
		}
		config.LogError(s.logger, "resolutionService.go", "CancelResolution", "unconfirmed cancel", resolutionId, err)
	}

	err = models.InsertActivity(config.GetDB(), ctx, &models.Activity{
		AllianceId:   principal.AllianceId,
		ResolutionId: resolutionId,
		UserId:       &principal.UserId,
		Action:       models.ActivityCancelledResolution,
	})
	if err != nil {
		return err
	}

	return s.sendResolutionEventNotifications(ctx, resolutionId, models.NotificationTemplates[models.EventResolutionCanceled], nil)
}

// EditResolutionDocument swaps the resolution's document set. The removed
// set is exactly (old documents) minus (new document ids) and only that set
// reaches file deletion.
func (s *ResolutionService) EditResolutionDocument(ctx context.Context, resolutionId int, documentIds []int, principal Principal) error {
	resolution, err := s.getResolutionOrFail(ctx, resolutionId)
	if err != nil {
		return err
	}

	documents, err := s.getDocumentsOrFail(ctx, documentIds)
	if err != nil {
		return err
	}

	removedIds := RemovedDocumentIds(resolution.Documents, documentIds)

	hashes := make([]string, 0, len(documents))
	for _, document := range documents {
		hashes = append(hashes, document.Hash)
	}

	if err := s.ledger.EditResolution(ctx, messaging.EditPayload{ResolutionId: resolutionId, Hashes: hashes}); err != nil {
		return err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(resolution).Association("Documents").Replace(documents); err != nil {
			return err
		}
		return models.InsertActivity(tx, ctx, &models.Activity{
			AllianceId:   principal.AllianceId,
			ResolutionId: resolutionId,
			UserId:       &principal.UserId,
			Action:       models.ActivityEditedResolution,
		})
	})
	if err != nil {
		return err
	}

	if err := s.files.RemoveFiles(ctx, removedIds); err != nil {
		config.LogError(s.logger, "resolutionService.go", "EditResolutionDocument", "remove documents", removedIds, err)
	}
	return nil
}

// RemovedDocumentIds computes which currently attached documents are absent
// from the proposed id set.
func RemovedDocumentIds(current []models.File, proposedIds []int) []int {
	var removed []int
	for _, document := range current {
		if !utils.Contains(proposedIds, document.ID) {
			removed = append(removed, document.ID)
		}
	}
	return removed
}

// GetResolution returns the expanded ledger view. A cosignatory may only
// see resolutions they are a recorded voter on.
func (s *ResolutionService) GetResolution(ctx context.Context, resolutionId int, principal Principal) (*ResolutionView, error) {
	info, err := s.ledger.GetResolutionInfo(ctx, resolutionId)
	if err != nil {
		return nil, err
	}

	if principal.IsCosignatory() {
		if _, ok := info.Votes[strconv.Itoa(principal.UserId)]; !ok {
			return nil, apperr.Forbidden("id", models.ErrForbidden)
		}
	}

	return s.expandResolutionInfo(ctx, *info, principal.AllianceId)
}

// ResolutionsQuery is the inbound filter shape for listing resolutions.
type ResolutionsQuery struct {
	CompanyId          *int
	CosignatoryId      *int
	ResolutionId       *int
	ResolutionIdentity string
	SearchString       string
	Status             models.ResolutionStatus
	Type               models.ResolutionType
	DateFrom           *time.Time
	DateTo             *time.Time
	Skip               int
	Limit              int
}

// GetResolutions builds the composite ledger filter, issues a single
// paginated query and expands every returned resolution.
func (s *ResolutionService) GetResolutions(ctx context.Context, query ResolutionsQuery, principal Principal) ([]ResolutionView, int, error) {
	filter, err := s.prepareResolutionsFilter(ctx, query, principal.AllianceId)
	if err != nil {
		return nil, 0, err
	}

	result, err := s.ledger.GetResolutionsInfo(ctx, *filter)
	if err != nil {
		return nil, 0, err
	}

	views := make([]ResolutionView, 0, len(result.ResolutionsInfo))
	for _, info := range result.ResolutionsInfo {
		view, err := s.expandResolutionInfo(ctx, info, principal.AllianceId)
		if err != nil {
			return nil, 0, err
		}
		views = append(views, *view)
	}
	return views, result.Count, nil
}

func (s *ResolutionService) prepareResolutionsFilter(ctx context.Context, query ResolutionsQuery, allianceId int) (*messaging.ResolutionsFilter, error) {
	filter := messaging.ResolutionsFilter{
		CompanyId:     query.CompanyId,
		CosignatoryId: query.CosignatoryId,
		DateFrom:      query.DateFrom,
		DateTo:        query.DateTo,
		Offset:        query.Skip,
		Limit:         query.Limit,
	}
	if query.Type != "" {
		filter.Type = string(query.Type)
	}
	if query.Status != "" {
		if query.Status == models.ResolutionStatusClosed {
			for _, status := range models.ResolutionClosedStatuses {
				filter.Statuses = append(filter.Statuses, string(status))
			}
		} else {
			filter.Statuses = []string{string(query.Status)}
		}
	}

	if query.CompanyId != nil {
		if _, err := s.getCompanyOrFail(ctx, *query.CompanyId, allianceId); err != nil {
			return nil, err
		}
	}
	if query.CosignatoryId != nil {
		if _, err := s.getCosignatoryOrFail(ctx, *query.CosignatoryId, allianceId); err != nil {
			return nil, err
		}
	}
	if query.ResolutionId != nil {
		if _, err := s.getResolutionOrFail(ctx, *query.ResolutionId); err != nil {
			return nil, err
		}
		filter.ResolutionsIds = []int{*query.ResolutionId}
	}

	if query.ResolutionIdentity != "" || query.SearchString != "" {
		resolutionIds, err := models.FindResolutionIdsByIdentity(ctx, []string{query.ResolutionIdentity, query.SearchString})
		if err != nil {
			return nil, err
		}
		var companyIds []int
		if query.SearchString != "" {
			companyIds, err = models.FindCompanyIdsByName(ctx, allianceId, query.SearchString)
			if err != nil {
				return nil, err
			}
		}
		filter.CondParams = &messaging.FilterConditions{
			ResolutionsIds: resolutionIds,
			CompaniesIds:   companyIds,
			ResolutionName: query.ResolutionIdentity,
		}
	}

	return &filter, nil
}

func (s *ResolutionService) expandResolutionInfo(ctx context.Context, info messaging.ResolutionInfo, allianceId int) (*ResolutionView, error) {
	company, err := models.GetCompanyWithLogo(ctx, info.CompanyId, allianceId)
	if err != nil && !errors.Is(err, utils.ErrorRecordNotFound) {
		return nil, err
	}

	cosec, err := models.GetUser(ctx, info.CosecId, allianceId)
	if err != nil && !errors.Is(err, utils.ErrorRecordNotFound) {
		return nil, err
	}

	var documents []models.File
	if shadow, err := models.GetResolution(ctx, info.Id); err == nil {
		documents = shadow.Documents
	}

	cosignatories, err := s.expandResolutionCosignatories(ctx, info)
	if err != nil {
		return nil, err
	}

	return &ResolutionView{
		Resolution:    info,
		Company:       company,
		Cosec:         cosec,
		Documents:     documents,
		Cosignatories: cosignatories,
	}, nil
}

func (s *ResolutionService) expandResolutionCosignatories(ctx context.Context, info messaging.ResolutionInfo) ([]CosignatoryVote, error) {
	voterIds := make([]int, 0, len(info.Votes))
	for key := range info.Votes {
		id, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		voterIds = append(voterIds, id)
	}
	if len(voterIds) == 0 {
		return nil, nil
	}

	users, err := models.GetUsersByIds(ctx, voterIds)
	if err != nil {
		return nil, err
	}

	cosignatories := make([]CosignatoryVote, 0, len(users))
	for _, user := range users {
		record := info.Votes[strconv.Itoa(user.ID)]
		cosignatories = append(cosignatories, expandCosignatoryVote(user, record, info))
	}
	return cosignatories, nil
}

// expandCosignatoryVote merges the ledger vote record with the voter's
// workplace-derived defaults. A recorded vote keeps its own weight and veto
// as of voting time; a pending voter shows current workplace values.
func expandCosignatoryVote(user models.User, record messaging.VoteRecord, info messaging.ResolutionInfo) CosignatoryVote {
	defaultValue := decimal.NewFromInt(1)
	defaultVeto := false
	for _, workplace := range user.Workplaces {
		if workplace.CompanyId == info.CompanyId {
			if workplace.VotingValue != nil {
				defaultValue = *workplace.VotingValue
			}
			defaultVeto = workplace.VetoPower
			break
		}
	}

	vote := CosignatoryVote{
		User:        user,
		Vote:        record.Vote,
		VotingValue: &defaultValue,
		VetoPower:   defaultVeto,
		Position:    string(models.ResolutionPosition[models.ResolutionType(info.Type)]),
	}
	if models.IsResolutionVote(record.Vote) {
		if !record.Timestamp.IsZero() {
			ts := record.Timestamp
			vote.VoteDate = &ts
		}
		if record.Weight != nil {
			vote.VotingValue = record.Weight
		}
		if record.Veto != nil {
			vote.VetoPower = *record.Veto
		}
	}
	return vote
}

func (s *ResolutionService) getResolutionCosignatories(ctx context.Context, resolutionId int) ([]CosignatoryVote, error) {
	info, err := s.ledger.GetResolutionInfo(ctx, resolutionId)
	if err != nil {
		return nil, err
	}
	return s.expandResolutionCosignatories(ctx, *info)
}

// getResolutionCosecretary resolves the cosecretary behind a resolution. A
// missing record is logged as a monitoring signal, not an error.
func (s *ResolutionService) getResolutionCosecretary(ctx context.Context, resolutionId, allianceId int) (*models.User, error) {
	info, err := s.ledger.GetResolutionInfo(ctx, resolutionId)
	if err != nil {
		return nil, err
	}
	cosec, err := models.GetUser(ctx, info.CosecId, allianceId)
	if err != nil {
		s.logger.WithField("resolutionId", resolutionId).Warn(models.ErrResolutionCosecNotFound)
		return nil, nil
	}
	return cosec, nil
}

// SaveComment upserts the caller's single comment on a resolution, writes
// the matching activity entry and notifies the cosecretary.
func (s *ResolutionService) SaveComment(ctx context.Context, resolutionId int, text string, principal Principal) (*models.ResolutionComment, error) {
	if _, err := s.getResolutionOrFail(ctx, resolutionId); err != nil {
		return nil, err
	}

	existing, err := models.GetResolutionComment(ctx, resolutionId, principal.UserId)
	if err != nil && !errors.Is(err, utils.ErrorRecordNotFound) {
		return nil, err
	}

	action := models.ActivityLeftComment
	templateEvent := models.EventCosignatoryLeftComment
	if existing != nil {
		action = models.ActivityUpdateComment
		templateEvent = models.EventCosignatoryUpdateComment
	}

	db := config.GetDB()
	comment := existing
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if comment == nil {
			comment = &models.ResolutionComment{
				AllianceId:   principal.AllianceId,
				ResolutionId: resolutionId,
				AuthorId:     principal.UserId,
			}
		}
		comment.Text = text
		if err := tx.Save(comment).Error; err != nil {
			return err
		}
		return models.InsertActivity(tx, ctx, &models.Activity{
			AllianceId:   principal.AllianceId,
			ResolutionId: resolutionId,
			UserId:       &principal.UserId,
			Action:       action,
		})
	})
	if err != nil {
		return nil, err
	}

	if err := s.sendCommentNotification(ctx, resolutionId, principal, models.NotificationTemplates[templateEvent]); err != nil {
		config.LogError(s.logger, "resolutionService.go", "SaveComment", "notify cosecretary", resolutionId, err)
	}
	return comment, nil
}

// DeleteComment removes the caller's comment; deleting a comment that does
// not exist is not-found.
func (s *ResolutionService) DeleteComment(ctx context.Context, resolutionId int, principal Principal) error {
	if _, err := s.getResolutionOrFail(ctx, resolutionId); err != nil {
		return err
	}

	comment, err := models.GetResolutionComment(ctx, resolutionId, principal.UserId)
	if err != nil {
		return apperr.NotFound("", models.ErrResolutionCommentNotFound)
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(comment).Error; err != nil {
			return err
		}
		return models.InsertActivity(tx, ctx, &models.Activity{
			AllianceId:   principal.AllianceId,
			ResolutionId: resolutionId,
			UserId:       &principal.UserId,
			Action:       models.ActivityRemoveComment,
		})
	})
	if err != nil {
		return err
	}

	if err := s.sendCommentNotification(ctx, resolutionId, principal, models.NotificationTemplates[models.EventCosignatoryDeleteComment]); err != nil {
		config.LogError(s.logger, "resolutionService.go", "DeleteComment", "notify cosecretary", resolutionId, err)
	}
	return nil
}

func (s *ResolutionService) GetResolutionComments(ctx context.Context, resolutionId int) ([]models.ResolutionComment, error) {
	if _, err := s.getResolutionOrFail(ctx, resolutionId); err != nil {
		return nil, err
	}
	return models.GetResolutionComments(ctx, resolutionId)
}

func (s *ResolutionService) sendCommentNotification(ctx context.Context, resolutionId int, principal Principal, template models.NotificationTemplate) error {
	cosec, err := s.getResolutionCosecretary(ctx, resolutionId, principal.AllianceId)
	if err != nil {
		return err
	}
	if cosec == nil {
		return nil
	}

	longLink := s.resolutionLink(resolutionId)
	link := s.shortener.Shorten(ctx, longLink)

	return s.notifier.SendEventNotifications(ctx, cosec.ID, template, NotificationData{
		Email:       cosec.Email,
		PhoneNumber: cosec.PhoneNumber,
		Context: mergeContext(resolutionTemplateContext(ctx, resolutionId), map[string]string{
			"link":     link,
			"longLink": longLink,
			"userName": principal.Name,
		}),
	})
}

// SendResolutionStatusNotifications fans the accepted/rejected outcome out
// to every voter plus the cosecretary. Driven by the status-changed event.
func (s *ResolutionService) SendResolutionStatusNotifications(ctx context.Context, resolutionId int, status models.ResolutionStatus, allianceId int) error {
	templateEvent := models.EventStatusRejected
	if status == models.ResolutionStatusAccepted {
		templateEvent = models.EventStatusAccepted
	}
	template := models.NotificationTemplates[templateEvent]

	cosignatories, err := s.getResolutionCosignatories(ctx, resolutionId)
	if err != nil {
		return err
	}
	cosec, err := s.getResolutionCosecretary(ctx, resolutionId, allianceId)
	if err != nil {
		return err
	}

	longLink := s.resolutionLink(resolutionId)
	link := s.shortener.Shorten(ctx, longLink)
	context := mergeContext(resolutionTemplateContext(ctx, resolutionId), map[string]string{
		"link":     link,
		"longLink": longLink,
		"status":   string(status),
	})

	recipients := make([]models.User, 0, len(cosignatories)+1)
	for _, cosignatory := range cosignatories {
		recipients = append(recipients, cosignatory.User)
	}
	if cosec != nil {
		recipients = append(recipients, *cosec)
	}

	for _, recipient := range recipients {
		data := NotificationData{Email: recipient.Email, PhoneNumber: recipient.PhoneNumber, Context: context}
		if err := s.notifier.SendEventNotifications(ctx, recipient.ID, template, data); err != nil {
			config.LogError(s.logger, "resolutionService.go", "SendResolutionStatusNotifications", "notify", recipient.ID, err)
		}
	}
	return nil
}

// SaveSystemResolutionActivity appends the terminal-status activity entry
// attributed to no human author, under the deployment's own tenant.
func (s *ResolutionService) SaveSystemResolutionActivity(ctx context.Context, resolutionId int, status models.ResolutionStatus) error {
	alliance, err := models.GetAllianceByName(ctx, config.ClientName())
	if err != nil {
		return err
	}

	action := models.ActivityAcceptedResolution
	if status == models.ResolutionStatusRejected {
		action = models.ActivityRejectedResolution
	}

	return models.InsertActivity(config.GetDB(), ctx, &models.Activity{
		AllianceId:   alliance.ID,
		ResolutionId: resolutionId,
		Action:       action,
	})
}

// sendResolutionEventNotifications notifies every current voter about a
// lifecycle event; extraContext merges into the standard link context.
func (s *ResolutionService) sendResolutionEventNotifications(ctx context.Context, resolutionId int, template models.NotificationTemplate, extraContext map[string]string) error {
	cosignatories, err := s.getResolutionCosignatories(ctx, resolutionId)
	if err != nil {
		return err
	}

	longLink := s.resolutionLink(resolutionId)
	link := s.shortener.Shorten(ctx, longLink)
	identity := resolutionTemplateContext(ctx, resolutionId)

	for _, cosignatory := range cosignatories {
		context := mergeContext(identity, map[string]string{
			"link":     link,
			"longLink": longLink,
		})
		for key, value := range extraContext {
			context[key] = value
		}
		data := NotificationData{
			Email:       cosignatory.User.Email,
			PhoneNumber: cosignatory.User.PhoneNumber,
			Context:     context,
		}
		if err := s.notifier.SendEventNotifications(ctx, cosignatory.User.ID, template, data); err != nil {
			config.LogError(s.logger, "resolutionService.go", "sendResolutionEventNotifications", template.Event, cosignatory.User.ID, err)
		}
	}
	return nil
}

func (s *ResolutionService) resolutionLink(resolutionId int) string {
	return config.FrontendURL() + resolutionDetailsPath + "/" + strconv.Itoa(resolutionId)
}

// resolutionTemplateContext supplies the identity markers every resolution
// template interpolates: title, company name and the voting window. When the
// shadow row cannot be loaded the id is the only identity available.
func resolutionTemplateContext(ctx context.Context, resolutionId int) map[string]string {
	values := map[string]string{
		"resolutionId": strconv.Itoa(resolutionId),
	}
	resolution, err := models.GetResolution(ctx, resolutionId)
	if err != nil {
		return values
	}
	values["resolutionTitle"] = resolution.Title
	if resolution.Company != nil {
		values["companyName"] = resolution.Company.Name
	}
	values["votingStartDate"] = utils.FormatDate(resolution.VotingStartDate)
	values["votingEndDate"] = utils.FormatDate(resolution.VotingEndDate)
	return values
}

func mergeContext(base map[string]string, extra map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(extra))
	for key, value := range base {
		merged[key] = value
	}
	for key, value := range extra {
		merged[key] = value
	}
	return merged
}
