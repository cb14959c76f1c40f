package domain

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/structs"
	"github.com/questx-lab/netgraph/internal/common"
	"github.com/questx-lab/netgraph/internal/domain/event"
	"github.com/questx-lab/netgraph/internal/entity"
	"github.com/questx-lab/netgraph/internal/model"
	"github.com/questx-lab/netgraph/internal/repository"
	"github.com/questx-lab/netgraph/pkg/dateutil"
	"github.com/questx-lab/netgraph/pkg/errorx"
	"github.com/questx-lab/netgraph/pkg/idutil"
	"github.com/questx-lab/netgraph/pkg/xcontext"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

const (
	reminderBatchSize   = 100
	suggestionBatchSize = 100
)

type NotificationDomain interface {
	event.Subscriber

	GetMyNotifications(context.Context, *model.GetNotificationsRequest) (*model.GetNotificationsResponse, error)
	MarkRead(context.Context, *model.MarkNotificationReadRequest) (*model.MarkNotificationReadResponse, error)
	MarkAllRead(context.Context, *model.MarkAllNotificationsReadRequest) (*model.MarkAllNotificationsReadResponse, error)

	// SendEndorsementReminders asks connections of users who were not endorsed recently to
	// endorse them. It returns the number of created notifications.
	SendEndorsementReminders(ctx context.Context) (int, error)

	// SendConnectionSuggestions tells users about people they share an accepted connection
	// with, at most notification.suggestions_per_day per user and day. It returns the number
	// of created notifications.
	SendConnectionSuggestions(ctx context.Context) (int, error)

	// CleanupRead deletes read notifications created before the given time.
	CleanupRead(ctx context.Context, before time.Time) (int64, error)
}

type notificationData struct {
	UserID       string `structs:"user_id"`
	UserName     string `structs:"user_name"`
	ConnectionID string `structs:"connection_id,omitempty"`
	SkillID      string `structs:"skill_id,omitempty"`
	SkillName    string `structs:"skill_name,omitempty"`
	Message      string `structs:"message,omitempty"`
	MutualUserID string `structs:"mutual_user_id,omitempty"`
}

type notificationDomain struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	connectionRepo   repository.ConnectionRepository
	endorsementRepo  repository.EndorsementRepository
	profileRepo      repository.ProfileRepository
}

func NewNotificationDomain(
	notificationRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	connectionRepo repository.ConnectionRepository,
	endorsementRepo repository.EndorsementRepository,
	profileRepo repository.ProfileRepository,
) *notificationDomain {
	return &notificationDomain{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		connectionRepo:   connectionRepo,
		endorsementRepo:  endorsementRepo,
		profileRepo:      profileRepo,
	}
}

func (d *notificationDomain) Name() string {
	return "notification"
}

// Handle never returns an error. Notifications are best-effort, a failure is logged and
// counted but must not trigger a redelivery of the event.
func (d *notificationDomain) Handle(ctx context.Context, ev *event.MutationEvent) error {
	var err error
	switch ev.Type {
	case event.ConnectionRequested:
		err = d.onConnection(ctx, ev, entity.NotificationConnectionRequest)
	case event.ConnectionAccepted:
		err = d.onConnection(ctx, ev, entity.NotificationConnectionAccepted)
	case event.FollowCreated:
		err = d.onFollow(ctx, ev)
	case event.EndorsementCreated:
		err = d.onEndorsement(ctx, ev)
	default:
		return nil
	}

	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot notify %s: %v", ev.Type, err)
		common.PromCounters[common.NotificationFailure].WithLabelValues(string(ev.Type)).Inc()
	}

	return nil
}

func (d *notificationDomain) onConnection(
	ctx context.Context, ev *event.MutationEvent, notificationType entity.NotificationType,
) error {
	payload := event.ConnectionPayload{}
	if err := ev.Decode(&payload); err != nil {
		return err
	}

	// A request notifies its recipient, an acceptance notifies the original requester.
	recipientID, senderID := payload.ToUserID, payload.FromUserID
	title := "%s sent you a connection request"
	if notificationType == entity.NotificationConnectionAccepted {
		recipientID, senderID = payload.FromUserID, payload.ToUserID
		title = "%s accepted your connection request"
	}

	senderName := d.userName(ctx, senderID)
	_, err := d.create(ctx, recipientID, senderID, notificationType, senderID,
		fmt.Sprintf(title, senderName),
		notificationData{
			UserID:       senderID,
			UserName:     senderName,
			ConnectionID: payload.ConnectionID,
			Message:      payload.Message,
		})
	return err
}

func (d *notificationDomain) onFollow(ctx context.Context, ev *event.MutationEvent) error {
	payload := event.FollowPayload{}
	if err := ev.Decode(&payload); err != nil {
		return err
	}

	followerName := d.userName(ctx, payload.FollowerID)
	_, err := d.create(ctx, payload.FollowingID, payload.FollowerID,
		entity.NotificationNewFollower, payload.FollowerID,
		fmt.Sprintf("%s started following you", followerName),
		notificationData{UserID: payload.FollowerID, UserName: followerName})
	return err
}

func (d *notificationDomain) onEndorsement(ctx context.Context, ev *event.MutationEvent) error {
	payload := event.EndorsementPayload{}
	if err := ev.Decode(&payload); err != nil {
		return err
	}

	endorserName := d.userName(ctx, payload.EndorserID)
	_, err := d.create(ctx, payload.SkillOwnerID, payload.EndorserID,
		entity.NotificationSkillEndorsement, payload.SkillID+":"+payload.EndorserID,
		fmt.Sprintf("%s endorsed your skill %s", endorserName, payload.SkillName),
		notificationData{
			UserID:    payload.EndorserID,
			UserName:  endorserName,
			SkillID:   payload.SkillID,
			SkillName: payload.SkillName,
		})
	return err
}

// create inserts the notification unless an unread one with the same recipient, type and
// subject was already created today.
func (d *notificationDomain) create(
	ctx context.Context,
	recipientID, senderID string,
	notificationType entity.NotificationType,
	subjectID, title string,
	data notificationData,
) (bool, error) {
	if recipientID == "" || recipientID == senderID {
		return false, nil
	}

	exists, err := d.notificationRepo.ExistsUnreadSince(
		ctx, recipientID, notificationType, subjectID, dateutil.Date(time.Now()))
	if err != nil {
		return false, err
	}

	if exists {
		xcontext.Logger(ctx).Debugf("Skip duplicated %s notification to %s", notificationType, recipientID)
		return false, nil
	}

	notification := &entity.Notification{
		SnowFlakeBase: entity.SnowFlakeBase{ID: idutil.NextSnowflake()},
		RecipientID:   recipientID,
		SenderID:      sql.NullString{String: senderID, Valid: senderID != ""},
		Type:          notificationType,
		SubjectID:     subjectID,
		Title:         title,
		Data:          structs.Map(data),
	}

	if err := d.notificationRepo.Create(ctx, notification); err != nil {
		return false, err
	}

	return true, nil
}

func (d *notificationDomain) userName(ctx context.Context, userID string) string {
	user, err := d.userRepo.GetByID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot get user %s: %v", userID, err)
		return "Someone"
	}

	return user.Name
}

func (d *notificationDomain) GetMyNotifications(
	ctx context.Context, req *model.GetNotificationsRequest,
) (*model.GetNotificationsResponse, error) {
	userID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}

	offset, limit, err := pagination(ctx, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	notifications, err := d.notificationRepo.GetList(ctx, userID, req.UnreadOnly, offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get notifications: %v", err)
		return nil, errorx.Unknown
	}

	unread, err := d.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count unread notifications: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.GetNotificationsResponse{
		Notifications: []model.Notification{},
		UnreadCount:   unread,
	}

	for i := range notifications {
		resp.Notifications = append(resp.Notifications, model.ConvertNotification(&notifications[i]))
	}

	return resp, nil
}

func (d *notificationDomain) MarkRead(
	ctx context.Context, req *model.MarkNotificationReadRequest,
) (*model.MarkNotificationReadResponse, error) {
	userID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}

	id, err := strconv.ParseInt(req.ID, 10, 64)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid notification id")
	}

	if err := d.notificationRepo.MarkRead(ctx, userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found notification")
		}

		xcontext.Logger(ctx).Errorf("Cannot mark notification as read: %v", err)
		return nil, errorx.Unknown
	}

	return &model.MarkNotificationReadResponse{}, nil
}

func (d *notificationDomain) MarkAllRead(
	ctx context.Context, req *model.MarkAllNotificationsReadRequest,
) (*model.MarkAllNotificationsReadResponse, error) {
	userID, err := requestUserID(ctx)
	if err != nil {
		return nil, err
	}

	updated, err := d.notificationRepo.MarkAllRead(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot mark all notifications as read: %v", err)
		return nil, errorx.Unknown
	}

	return &model.MarkAllNotificationsReadResponse{Updated: updated}, nil
}

func (d *notificationDomain) SendEndorsementReminders(ctx context.Context) (int, error) {
	since := time.Now().Add(-xcontext.Configs(ctx).Notification.ReminderInactivity)

	sent := 0
	lastID := ""
	for {
		userIDs, err := d.profileRepo.GetUserIDsLackingEndorsements(ctx, since, lastID, reminderBatchSize)
		if err != nil {
			return sent, err
		}

		if len(userIDs) == 0 {
			return sent, nil
		}

		for _, userID := range userIDs {
			n, err := d.remindConnections(ctx, userID, since)
			if err != nil {
				xcontext.Logger(ctx).Errorf("Cannot send endorsement reminders for %s: %v", userID, err)
				common.PromCounters[common.NotificationFailure].
					WithLabelValues(string(entity.NotificationEndorseReminder)).Inc()
				continue
			}

			sent += n
		}

		lastID = userIDs[len(userIDs)-1]
	}
}

func (d *notificationDomain) remindConnections(ctx context.Context, userID string, since time.Time) (int, error) {
	connectionIDs, err := d.connectionRepo.GetAcceptedUserIDs(ctx, userID)
	if err != nil {
		return 0, err
	}

	userName := d.userName(ctx, userID)
	sent := 0
	for _, otherID := range connectionIDs {
		endorsed, err := d.endorsementRepo.HasEndorsedSince(ctx, userID, otherID, since)
		if err != nil {
			return sent, err
		}

		if endorsed {
			continue
		}

		created, err := d.create(ctx, otherID, "", entity.NotificationEndorseReminder, userID,
			fmt.Sprintf("Endorse %s's skills", userName),
			notificationData{UserID: userID, UserName: userName})
		if err != nil {
			return sent, err
		}

		if created {
			sent++
		}
	}

	return sent, nil
}

func (d *notificationDomain) SendConnectionSuggestions(ctx context.Context) (int, error) {
	sent := 0
	lastID := ""
	for {
		userIDs, err := d.userRepo.GetIDsAfter(ctx, lastID, suggestionBatchSize)
		if err != nil {
			return sent, err
		}

		if len(userIDs) == 0 {
			return sent, nil
		}

		for _, userID := range userIDs {
			n, err := d.suggestConnections(ctx, userID)
			if err != nil {
				xcontext.Logger(ctx).Errorf("Cannot send connection suggestions to %s: %v", userID, err)
				common.PromCounters[common.NotificationFailure].
					WithLabelValues(string(entity.NotificationSuggestion)).Inc()
				continue
			}

			sent += n
		}

		lastID = userIDs[len(userIDs)-1]
	}
}

type suggestion struct {
	userID       string
	mutualUserID string
}

func (d *notificationDomain) suggestConnections(ctx context.Context, userID string) (int, error) {
	cfg := xcontext.Configs(ctx).Notification
	sentToday, err := d.notificationRepo.CountSince(
		ctx, userID, entity.NotificationSuggestion, dateutil.Date(time.Now()))
	if err != nil {
		return 0, err
	}

	remaining := cfg.SuggestionsPerDay - int(sentToday)
	if remaining <= 0 {
		return 0, nil
	}

	suggestions, err := d.suggestionsOf(ctx, userID, cfg.SuggestionsPerConnection)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, s := range suggestions {
		if sent >= remaining {
			break
		}

		name := d.userName(ctx, s.userID)
		created, err := d.create(ctx, userID, "", entity.NotificationSuggestion, s.userID,
			fmt.Sprintf("You might know %s", name),
			notificationData{UserID: s.userID, UserName: name, MutualUserID: s.mutualUserID})
		if err != nil {
			return sent, err
		}

		if created {
			sent++
		}
	}

	return sent, nil
}

// suggestionsOf returns users connected to a connection of userID which have no connection
// row of any status with userID, taking at most perConnection of them from each connection.
func (d *notificationDomain) suggestionsOf(
	ctx context.Context, userID string, perConnection int,
) ([]suggestion, error) {
	connectionIDs, err := d.connectionRepo.GetAcceptedUserIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	slices.Sort(connectionIDs)
	seen := map[string]bool{userID: true}
	for _, id := range connectionIDs {
		seen[id] = true
	}

	var result []suggestion
	for _, mutualID := range connectionIDs {
		candidates, err := d.connectionRepo.GetAcceptedUserIDs(ctx, mutualID)
		if err != nil {
			return nil, err
		}

		slices.Sort(candidates)
		taken := 0
		for _, candidate := range candidates {
			if perConnection > 0 && taken >= perConnection {
				break
			}

			if seen[candidate] {
				continue
			}
			seen[candidate] = true

			_, err := d.connectionRepo.GetByPair(ctx, userID, candidate)
			if err == nil {
				continue
			}

			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}

			result = append(result, suggestion{userID: candidate, mutualUserID: mutualID})
			taken++
		}
	}

	return result, nil
}

func (d *notificationDomain) CleanupRead(ctx context.Context, before time.Time) (int64, error) {
	return d.notificationRepo.DeleteReadBefore(ctx, before)
}
