// Package graphstore implements the Graph Query Adapter (C3): executes
// validated, parameterized, read-only Cypher against Neo4j and parses the
// result into a nodes+edges payload.
package graphstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/codeready-toolchain/assistant-orchestrator/pkg/apperrors"
	"github.com/codeready-toolchain/assistant-orchestrator/pkg/cypher"
	"github.com/codeready-toolchain/assistant-orchestrator/pkg/models"
)

// Adapter executes read-only Cypher queries against Neo4j. The driver
// handle it wraps must never be shared with a write path — spec §5's
// shared-resource policy requires a separate driver handle for writes.
type Adapter struct {
	driver  neo4j.DriverWithContext
	timeout time.Duration
}

// New constructs an Adapter over an existing driver handle, configured for
// read-only sessions exclusively.
func New(driver neo4j.DriverWithContext, timeout time.Duration) *Adapter {
	return &Adapter{driver: driver, timeout: timeout}
}

// Execute revalidates query (defense in depth — C1 already ran once in the
// Cypher Generator's pipeline stage), opens a read-only session bound to
// the adapter's timeout, and parses the result rows into a GraphPayload.
func (a *Adapter) Execute(ctx context.Context, query string, params map[string]any) (*models.GraphPayload, error) {
	if result := cypher.Validate(query); !result.Valid {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidCypher, result.Reason)
	}

	queryCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	session := a.driver.NewSession(queryCtx, neo4j.SessionConfig{
		AccessMode: neo4j.AccessModeRead,
	})
	defer func() {
		if err := session.Close(queryCtx); err != nil {
			slog.Warn("closing neo4j session", "error", err)
		}
	}()

	result, err := session.ExecuteRead(queryCtx, func(tx neo4j.ManagedTransaction) (any, error) {
		records, err := tx.Run(queryCtx, query, params)
		if err != nil {
			return nil, err
		}
		return records.Collect(queryCtx)
	})
	if err != nil {
		if errors.Is(queryCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("graph query exceeded %s: %w", a.timeout, apperrors.ErrGraphTimeout)
		}
		return nil, fmt.Errorf("executing graph query: %w", apperrors.ErrGraphExecutionFailed)
	}

	records, ok := result.([]*neo4j.Record)
	if !ok {
		return nil, fmt.Errorf("unexpected graph query result shape: %w", apperrors.ErrGraphExecutionFailed)
	}

	return parseRecords(records), nil
}
