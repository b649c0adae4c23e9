package pkguid

import (
	"crypto/rand"
	"encoding/binary"
	"sync"

	"github.com/bwmarrin/snowflake"
)

// epoch is 2024-01-01T00:00:00Z in milliseconds.
const epoch int64 = 1704067200000

//nolint:gochecknoglobals // snowflake.Epoch is package state; set it once
var setEpoch sync.Once

// Snowflake generates time-ordered numeric IDs.
type Snowflake struct {
	node *snowflake.Node
}

func generateRandomNodeID() (int64, error) {
	var nodeID int64
	err := binary.Read(rand.Reader, binary.BigEndian, &nodeID)
	if err != nil {
		return 0, err
	}

	return nodeID & (1<<snowflake.NodeBits - 1), nil
}

// NewSnowflake constructs a Snowflake generator. A negative node picks a random one.
func NewSnowflake(node int64) (*Snowflake, error) {
	if node < 0 {
		var err error
		if node, err = generateRandomNodeID(); err != nil {
			return nil, err
		}
	}

	setEpoch.Do(func() {
		snowflake.Epoch = epoch
	})

	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, err
	}

	return &Snowflake{node: n}, nil
}

// Generate returns a new unique numeric ID.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}
