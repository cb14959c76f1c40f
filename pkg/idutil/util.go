package idutil

import (
	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

var node, _ = snowflake.NewNode(1)

// Setup replaces the snowflake node. Every process sharing a database needs its own node id.
func Setup(nodeID int64) error {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return err
	}

	node = n
	return nil
}

func NextSnowflake() int64 {
	return node.Generate().Int64()
}

func NewUUID() string {
	return uuid.NewString()
}
