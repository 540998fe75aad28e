package graphstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/assistant-orchestrator/pkg/apperrors"
)

func TestExecute_RejectsInvalidCypherBeforeTouchingDriver(t *testing.T) {
	// driver is intentionally nil: an invalid query must be rejected by the
	// C1 revalidation before any session is opened.
	a := New(nil, 5*time.Second)

	_, err := a.Execute(context.Background(), `MATCH (a) DETACH DELETE a RETURN a`, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidCypher))
	assert.Equal(t, "invalid-cypher", apperrors.Kind(err))
}

func TestExecute_RejectsQueryMissingCampaignParameter(t *testing.T) {
	a := New(nil, 5*time.Second)

	_, err := a.Execute(context.Background(), `MATCH (a) RETURN a`, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidCypher))
}
