package event

import (
	"errors"
	"time"

	"github.com/fatih/structs"
	"github.com/mitchellh/mapstructure"
	"github.com/questx-lab/netgraph/pkg/enum"
	"golang.org/x/exp/slices"
)

type Type string

var (
	ConnectionRequested = enum.New(Type("connection_requested"))
	ConnectionAccepted  = enum.New(Type("connection_accepted"))
	ConnectionDeclined  = enum.New(Type("connection_declined"))
	ConnectionRemoved   = enum.New(Type("connection_removed"))
	FollowCreated       = enum.New(Type("follow_created"))
	FollowRemoved       = enum.New(Type("follow_removed"))
	EndorsementCreated  = enum.New(Type("endorsement_created"))
	EndorsementRemoved  = enum.New(Type("endorsement_removed"))
	ContentChanged      = enum.New(Type("content_changed"))
	UserCreated         = enum.New(Type("user_created"))
)

// MutationEvent is emitted after a graph or content mutation committed.
type MutationEvent struct {
	Type            Type           `json:"type"`
	AffectedUserIDs []string       `json:"affected_user_ids"`
	ActorID         string         `json:"actor_id"`
	SubjectID       string         `json:"subject_id"`
	Payload         map[string]any `json:"payload"`
	OccurredAt      time.Time      `json:"occurred_at"`
}

// Payload is the typed body of a MutationEvent.
type Payload interface {
	EventType() Type
}

// New builds an event from its payload. Affected users are deduplicated and sorted.
func New(payload Payload, actorID, subjectID string, affectedUserIDs ...string) *MutationEvent {
	affected := make([]string, 0, len(affectedUserIDs))
	for _, id := range affectedUserIDs {
		if id != "" {
			affected = append(affected, id)
		}
	}

	slices.Sort(affected)
	affected = slices.Compact(affected)

	return &MutationEvent{
		Type:            payload.EventType(),
		AffectedUserIDs: affected,
		ActorID:         actorID,
		SubjectID:       subjectID,
		Payload:         structs.Map(payload),
		OccurredAt:      time.Now(),
	}
}

// Decode fills out with the payload of the event.
func (e *MutationEvent) Decode(out Payload) error {
	if err := mapstructure.Decode(e.Payload, out); err != nil {
		return err
	}

	if p, ok := out.(*ConnectionPayload); ok {
		p.eventType = e.Type
	}

	return nil
}

// Validate checks events received from outside of the process.
func (e *MutationEvent) Validate() error {
	if _, err := enum.ToEnum[Type](string(e.Type)); err != nil {
		return err
	}

	if len(e.AffectedUserIDs) == 0 {
		return errors.New("event has no affected user")
	}

	return nil
}

// CONNECTION EVENTS
type ConnectionPayload struct {
	ConnectionID string `mapstructure:"connection_id" structs:"connection_id"`
	FromUserID   string `mapstructure:"from_user_id" structs:"from_user_id"`
	ToUserID     string `mapstructure:"to_user_id" structs:"to_user_id"`
	Message      string `mapstructure:"message" structs:"message"`

	// Cancelled is set when the requester withdrew a pending request.
	Cancelled bool `mapstructure:"cancelled" structs:"cancelled"`

	eventType Type
}

func NewConnectionPayload(t Type, connectionID, fromUserID, toUserID string) *ConnectionPayload {
	return &ConnectionPayload{
		ConnectionID: connectionID,
		FromUserID:   fromUserID,
		ToUserID:     toUserID,
		eventType:    t,
	}
}

func (p *ConnectionPayload) EventType() Type {
	return p.eventType
}

// FOLLOW EVENTS
type FollowPayload struct {
	FollowerID  string `mapstructure:"follower_id" structs:"follower_id"`
	FollowingID string `mapstructure:"following_id" structs:"following_id"`
	Removed     bool   `mapstructure:"removed" structs:"removed"`
}

func (p *FollowPayload) EventType() Type {
	if p.Removed {
		return FollowRemoved
	}

	return FollowCreated
}

// ENDORSEMENT EVENTS
type EndorsementPayload struct {
	EndorsementID string `mapstructure:"endorsement_id" structs:"endorsement_id"`
	SkillID       string `mapstructure:"skill_id" structs:"skill_id"`
	SkillName     string `mapstructure:"skill_name" structs:"skill_name"`
	SkillOwnerID  string `mapstructure:"skill_owner_id" structs:"skill_owner_id"`
	EndorserID    string `mapstructure:"endorser_id" structs:"endorser_id"`
	Removed       bool   `mapstructure:"removed" structs:"removed"`
}

func (p *EndorsementPayload) EventType() Type {
	if p.Removed {
		return EndorsementRemoved
	}

	return EndorsementCreated
}

// CONTENT EVENTS
type ContentPayload struct {
	UserID string `mapstructure:"user_id" structs:"user_id"`

	// Section is the changed content table, such as profile, experience or skill.
	Section string `mapstructure:"section" structs:"section"`
}

func (*ContentPayload) EventType() Type {
	return ContentChanged
}

// USER EVENTS
type UserPayload struct {
	UserID string `mapstructure:"user_id" structs:"user_id"`
}

func (*UserPayload) EventType() Type {
	return UserCreated
}
