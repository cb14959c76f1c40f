package cron

import (
	"context"
	"time"

	"github.com/questx-lab/netgraph/internal/domain"
	"github.com/questx-lab/netgraph/pkg/dateutil"
	"github.com/questx-lab/netgraph/pkg/xcontext"
)

type CleanupNotificationCronJob struct {
	notificationDomain domain.NotificationDomain
}

func NewCleanupNotificationCronJob(notificationDomain domain.NotificationDomain) *CleanupNotificationCronJob {
	return &CleanupNotificationCronJob{notificationDomain: notificationDomain}
}

func (job *CleanupNotificationCronJob) Do(ctx context.Context) {
	before := time.Now().Add(-xcontext.Configs(ctx).Notification.ReadRetention)
	n, err := job.notificationDomain.CleanupRead(ctx, before)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot cleanup read notifications: %v", err)
		return
	}

	xcontext.Logger(ctx).Infof("Deleted %d read notifications", n)
}

func (job *CleanupNotificationCronJob) RunNow() bool {
	return true
}

func (job *CleanupNotificationCronJob) Next() time.Time {
	return dateutil.NextDay(time.Now())
}

type EndorsementReminderCronJob struct {
	notificationDomain domain.NotificationDomain
}

func NewEndorsementReminderCronJob(notificationDomain domain.NotificationDomain) *EndorsementReminderCronJob {
	return &EndorsementReminderCronJob{notificationDomain: notificationDomain}
}

func (job *EndorsementReminderCronJob) Do(ctx context.Context) {
	n, err := job.notificationDomain.SendEndorsementReminders(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot send endorsement reminders: %v", err)
	}

	xcontext.Logger(ctx).Infof("Sent %d endorsement reminders", n)
}

func (job *EndorsementReminderCronJob) RunNow() bool {
	return false
}

func (job *EndorsementReminderCronJob) Next() time.Time {
	return dateutil.NextDay(time.Now())
}

type ConnectionSuggestionCronJob struct {
	notificationDomain domain.NotificationDomain
}

func NewConnectionSuggestionCronJob(notificationDomain domain.NotificationDomain) *ConnectionSuggestionCronJob {
	return &ConnectionSuggestionCronJob{notificationDomain: notificationDomain}
}

func (job *ConnectionSuggestionCronJob) Do(ctx context.Context) {
	n, err := job.notificationDomain.SendConnectionSuggestions(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot send connection suggestions: %v", err)
	}

	xcontext.Logger(ctx).Infof("Sent %d connection suggestions", n)
}

func (job *ConnectionSuggestionCronJob) RunNow() bool {
	return false
}

func (job *ConnectionSuggestionCronJob) Next() time.Time {
	return dateutil.NextDay(time.Now())
}
