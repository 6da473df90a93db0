package main

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/sirupsen/logrus"

	"bitbucket.org/flact/governance_backend/config"
	"bitbucket.org/flact/governance_backend/messaging"
	"bitbucket.org/flact/governance_backend/models"
	"bitbucket.org/flact/governance_backend/utils"
	"bitbucket.org/flact/governance_backend/workflow"
)

// eventMaxAge bounds redelivery loops. A handler failure normally nacks for
// retry, but once the message is older than this the retry can no longer
// produce a timely notification, so it is acked away with a warning.
const eventMaxAge = 2 * time.Minute

var (
	allianceMutexMap = make(map[int]*sync.Mutex)
	allianceMutex    = &sync.Mutex{}
)

type eventHandlers struct {
	resolutions *workflow.ResolutionService
	events      *workflow.CompanyEventService
}

// messageExpired reports whether a broker message is past the redelivery
// cutoff at the given time.
func messageExpired(publishTime, now time.Time) bool {
	return now.Sub(publishTime) > eventMaxAge
}

// RunEventWorkflow consumes the api events subscription: resolution status
// changes pushed by the ledger and scheduled calendar ticks. Handlers run
// serialized per alliance under a system principal.
func RunEventWorkflow(handlers eventHandlers) error {
	logger := config.GetLogger()
	ctx := context.Background()

	client, err := config.GetClient(ctx)
	if err != nil {
		return err
	}
	topicName, err := config.TopicName(config.EnvAPIEventsTopic)
	if err != nil {
		return err
	}
	topic, err := config.CreateTopicIfNotExists(client, topicName)
	if err != nil {
		return err
	}
	subName, err := config.TopicName(config.EnvAPIEventsSubscription)
	if err != nil {
		return err
	}
	sub, err := config.CreateSubscriptionIfNotExists(client, subName, topic)
	if err != nil {
		return err
	}
	sub.ReceiveSettings.MaxOutstandingMessages = 10

	callback := func(ctx context.Context, msg *pubsub.Message) {
		pattern := msg.Attributes["pattern"]

		if messageExpired(msg.PublishTime, time.Now()) {
			logger.WithFields(logrus.Fields{
				"pattern":      pattern,
				"message_id":   msg.ID,
				"publish_time": msg.PublishTime,
			}).Warn("api event past redelivery cutoff, dropping")
			msg.Ack()
			return
		}

		alliance, err := models.GetAllianceByName(ctx, config.ClientName())
		if err != nil {
			config.LogError(logger, "eventWorkflow.go", "RunEventWorkflow", "resolving alliance", config.ClientName(), err)
			msg.Nack()
			return
		}

		allianceMutex.Lock()
		mutex, exists := allianceMutexMap[alliance.ID]
		if !exists {
			mutex = &sync.Mutex{}
			allianceMutexMap[alliance.ID] = mutex
		}
		allianceMutex.Unlock()

		mutex.Lock()
		defer mutex.Unlock()

		ctx = utils.SetAllianceIdInContext(ctx, alliance.ID)
		ctx = utils.SetUserIdInContext(ctx, 0)
		ctx = utils.SetUserNameInContext(ctx, "System")
		ctx = utils.SetCorrelationIdInContext(ctx, msg.ID)

		if err := handleEvent(ctx, handlers, alliance.ID, pattern, msg.Data); err != nil {
			cid, _ := utils.GetCorrelationIdFromContext(ctx)
			logger.WithFields(logrus.Fields{
				"pattern":        pattern,
				"alliance_id":    alliance.ID,
				"correlation_id": cid,
			}).Error("api event processing failed: " + err.Error())
			msg.Nack()
			return
		}
		msg.Ack()
	}

	go func() {
		if err := sub.Receive(ctx, callback); err != nil {
			config.LogError(logger, "eventWorkflow.go", "RunEventWorkflow", "receiving api events", nil, err)
		}
	}()

	return nil
}

func handleEvent(ctx context.Context, handlers eventHandlers, allianceId int, pattern string, data []byte) error {
	logger := config.GetLogger()

	switch pattern {
	case messaging.PatternResolutionStatusChanged:
		var event messaging.StatusChangedEvent
		if err := json.Unmarshal(data, &event); err != nil {
			config.LogError(logger, "eventWorkflow.go", "handleEvent", "unmarshaling status event", data, err)
			// Malformed payloads never become valid on redelivery.
			return nil
		}
		status := models.ResolutionStatus(event.Status)
		if err := handlers.resolutions.SaveSystemResolutionActivity(ctx, event.Id, status); err != nil {
			return err
		}
		return handlers.resolutions.SendResolutionStatusNotifications(ctx, event.Id, status, allianceId)

	case messaging.PatternCompanyCalendarNotification:
		return handlers.events.SendCompanyCalendarNotifications(ctx)

	default:
		logger.WithField("pattern", pattern).Warn("unknown api event pattern, dropping")
		return nil
	}
}
