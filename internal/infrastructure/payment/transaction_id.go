package payment

import (
	"fmt"

	"github.com/bwmarrin/snowflake"

	"github.com/eventhub/backend/internal/domain/billing"
)

// SnowflakeTransactionIDs issues time-ordered transaction ids that are unique
// across processes as long as every process uses a distinct node id.
type SnowflakeTransactionIDs struct {
	node   *snowflake.Node
	prefix string
}

// NewSnowflakeTransactionIDs creates a generator for node nodeID (0-1023)
func NewSnowflakeTransactionIDs(nodeID int64, prefix string) (*SnowflakeTransactionIDs, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("payment: invalid snowflake node %d: %w", nodeID, err)
	}
	return &SnowflakeTransactionIDs{node: node, prefix: prefix}, nil
}

// NextTransactionID returns a new globally unique transaction id
func (g *SnowflakeTransactionIDs) NextTransactionID() string {
	return g.prefix + g.node.Generate().String()
}

var _ billing.TransactionIDGenerator = (*SnowflakeTransactionIDs)(nil)
