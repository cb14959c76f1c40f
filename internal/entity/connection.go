package entity

import (
	"strings"
	"time"

	"github.com/questx-lab/netgraph/pkg/enum"
	"gorm.io/gorm"
)

type ConnectionStatus string

var (
	ConnectionPending  = enum.New(ConnectionStatus("pending"))
	ConnectionAccepted = enum.New(ConnectionStatus("accepted"))
	ConnectionDeclined = enum.New(ConnectionStatus("declined"))
	ConnectionBlocked  = enum.New(ConnectionStatus("blocked"))
)

// Connection is a directed request between two users. PairKey is unique, so a pair of users
// has at most one row regardless of direction.
type Connection struct {
	ID        string `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	FromUserID string `gorm:"index:idx_connections_from_status"`
	FromUser   User   `gorm:"foreignKey:FromUserID"`

	ToUserID string `gorm:"index:idx_connections_to_status"`
	ToUser   User   `gorm:"foreignKey:ToUserID"`

	PairKey string           `gorm:"uniqueIndex;size:128"`
	Status  ConnectionStatus `gorm:"index:idx_connections_from_status;index:idx_connections_to_status;size:16"`
	Message string           `gorm:"size:300"`
}

func (c *Connection) BeforeCreate(tx *gorm.DB) error {
	c.PairKey = PairKey(c.FromUserID, c.ToUserID)
	return nil
}

// Other returns the opposite endpoint of userID.
func (c *Connection) Other(userID string) string {
	if c.FromUserID == userID {
		return c.ToUserID
	}

	return c.FromUserID
}

func (c *Connection) Involves(userID string) bool {
	return c.FromUserID == userID || c.ToUserID == userID
}

// PairKey canonicalizes an unordered pair of users.
func PairKey(a, b string) string {
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}

	return a + ":" + b
}
