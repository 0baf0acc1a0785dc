package uid

import (
	"os"
	"strconv"

	"github.com/bwmarrin/snowflake"
)

// NumberID generates unique int64 identifiers.
type NumberID interface {
	Generate() int64
}

// StringID generates unique string identifiers.
type StringID interface {
	Generate() string
}

// Snowflake generates sortable int64 IDs using the snowflake scheme.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake creates a snowflake generator.
//
// The node number is taken from the SNOWFLAKE_NODE environment variable when
// set, otherwise node 1 is used. Two instances sharing a node number can
// generate colliding IDs, so set it per deployment replica.
func NewSnowflake() (*Snowflake, error) {
	nodeNum := int64(1)
	if raw := os.Getenv("SNOWFLAKE_NODE"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			nodeNum = n
		}
	}

	node, err := snowflake.NewNode(nodeNum)
	if err != nil {
		return nil, err
	}

	return &Snowflake{node: node}, nil
}

// Generate returns a new int64 ID.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}
