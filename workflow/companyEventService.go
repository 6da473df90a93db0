package workflow

import (
	"context"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"bitbucket.org/flact/governance_backend/config"
	"bitbucket.org/flact/governance_backend/models"
	"bitbucket.org/flact/governance_backend/utils"
)

// beforeAgmMonths offsets the recorded AGM date to the next expected one.
// An annual general meeting is due twelve months after the last.
const beforeAgmMonths = 12

// CompanyEventService sends the scheduled calendar reminders: incorporation
// anniversaries, financial year ends and upcoming AGM anniversaries. Each
// user picks per channel how many days in advance to be reminded.
type CompanyEventService struct {
	logger        *logrus.Logger
	notifications *NotificationService
}

func NewCompanyEventService(logger *logrus.Logger, notifications *NotificationService) *CompanyEventService {
	return &CompanyEventService{logger: logger, notifications: notifications}
}

// SendCompanyCalendarNotifications runs one full reminder sweep. It is
// invoked by the broker-driven calendar event, once per schedule tick.
// A redelivered tick on the same day is a no-op; the sweep date is marked
// in redis once the sweep completes.
func (s *CompanyEventService) SendCompanyCalendarNotifications(ctx context.Context) error {
	alliance, err := models.GetAllianceWithCompanies(ctx, config.ClientName())
	if err != nil {
		if err == utils.ErrorRecordNotFound {
			return nil
		}
		return err
	}

	now := time.Now()

	sweepKey := "CalendarSweep:" + strconv.Itoa(alliance.ID) + ":" + now.Format("2006-01-02")
	var swept bool
	if exists, err := config.GetRedisObject(sweepKey, &swept); err == nil && exists && swept {
		return nil
	}

	if err := s.sendIncorporationReminders(ctx, alliance, now); err != nil {
		return err
	}
	if err := s.sendFinancialYearEndReminders(ctx, alliance, now); err != nil {
		return err
	}
	if err := s.sendAgmReminders(ctx, alliance, now); err != nil {
		return err
	}

	if err := config.SetRedisObject(sweepKey, true, 48*time.Hour); err != nil {
		config.LogError(s.logger, "companyEventService.go", "SendCompanyCalendarNotifications", "marking sweep", sweepKey, err)
	}
	return nil
}

// Incorporation reminders go to co-secretaries, who oversee the whole
// portfolio.
func (s *CompanyEventService) sendIncorporationReminders(ctx context.Context, alliance *models.Alliance, now time.Time) error {
	users, err := models.GetUsersWithEnabledNotifications(ctx, models.EnabledNotificationFilter{
		AllianceId:          alliance.ID,
		Role:                models.UserRoleCoSecretary,
		BeforeIncorporation: true,
	})
	if err != nil {
		return err
	}

	template := models.NotificationTemplates[models.EventIncorporationDate]
	for _, user := range users {
		for _, pref := range user.Notifications {
			if !pref.Enabled || pref.BeforeIncorporation == nil {
				continue
			}
			for _, company := range alliance.Companies {
				if company.IncorporationDate == nil {
					continue
				}
				days := utils.DaysUntilAnniversary(*company.IncorporationDate, now)
				if days == *pref.BeforeIncorporation {
					s.sendCalendarNotification(ctx, user, company.Name, days, template, pref.Delivery)
				}
			}
		}
	}
	return nil
}

// Financial year end reminders also reach cosignatory directors, each for
// their own companies. Co-secretaries get the filing-aware template over
// the full portfolio.
func (s *CompanyEventService) sendFinancialYearEndReminders(ctx context.Context, alliance *models.Alliance, now time.Time) error {
	users, err := models.GetUsersWithEnabledNotifications(ctx, models.EnabledNotificationFilter{
		AllianceId:             alliance.ID,
		Position:               models.UserPositionDirector,
		BeforeFinancialYearEnd: true,
	})
	if err != nil {
		return err
	}

	for _, user := range users {
		template := models.NotificationTemplates[models.EventFinancialYearEndCosign]
		companies := make([]models.Company, 0)
		if user.Role == models.UserRoleCoSecretary {
			template = models.NotificationTemplates[models.EventFinancialYearEndCosec]
			companies = alliance.Companies
		} else {
			for _, workplace := range user.Workplaces {
				if workplace.Company != nil {
					companies = append(companies, *workplace.Company)
				}
			}
		}

		for _, pref := range user.Notifications {
			if !pref.Enabled || pref.BeforeFinancialYearEnd == nil {
				continue
			}
			for _, company := range companies {
				if company.FinancialYearEndDate == nil {
					continue
				}
				days := utils.DaysUntilAnniversary(*company.FinancialYearEndDate, now)
				if days == *pref.BeforeFinancialYearEnd {
					s.sendCalendarNotification(ctx, user, company.Name, days, template, pref.Delivery)
				}
			}
		}
	}
	return nil
}

// AGM reminders count down to the last recorded meeting date plus twelve
// months, a plain day difference rather than a recurring anniversary.
func (s *CompanyEventService) sendAgmReminders(ctx context.Context, alliance *models.Alliance, now time.Time) error {
	users, err := models.GetUsersWithEnabledNotifications(ctx, models.EnabledNotificationFilter{
		AllianceId:                 alliance.ID,
		Role:                       models.UserRoleCoSecretary,
		BeforeAnniversaryOfLastAgm: true,
	})
	if err != nil {
		return err
	}

	template := models.NotificationTemplates[models.EventAnniversaryOfLastAgmDate]
	for _, user := range users {
		for _, pref := range user.Notifications {
			if !pref.Enabled || pref.BeforeAnniversaryOfLastAgm == nil {
				continue
			}
			for _, company := range alliance.Companies {
				if company.NextMeetingDate == nil {
					continue
				}
				nextAgm := company.NextMeetingDate.AddDate(0, beforeAgmMonths, 0)
				days := utils.DaysUntil(nextAgm, now)
				if days == *pref.BeforeAnniversaryOfLastAgm {
					s.sendCalendarNotification(ctx, user, company.Name, days, template, pref.Delivery)
				}
			}
		}
	}
	return nil
}

func (s *CompanyEventService) sendCalendarNotification(ctx context.Context, user models.User, companyName string, daysCount int, template models.NotificationTemplate, delivery models.MessageDelivery) {
	s.logger.WithFields(logrus.Fields{
		"user":     user.ID,
		"company":  companyName,
		"days":     daysCount,
		"delivery": delivery,
		"template": template.Event,
	}).Debug("send calendar notification")

	data := NotificationData{
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
		Context: map[string]string{
			"company":   companyName,
			"daysCount": strconv.Itoa(daysCount),
		},
	}
	if err := s.notifications.SendDirectNotification(ctx, user.ID, template, data, delivery); err != nil {
		config.LogError(s.logger, "companyEventService.go", "sendCalendarNotification", template.Event, user.ID, err)
	}
}
