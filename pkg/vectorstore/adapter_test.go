package vectorstore

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/assistant-orchestrator/pkg/models"
)

type fakeEmbedder struct {
	dims int
	err  error
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return make([]float32, f.dims), nil
}

type fakeQdrantClient struct {
	exists bool
	points []*qdrant.ScoredPoint
	err    error
}

func (f *fakeQdrantClient) CollectionExists(_ context.Context, _ string) (bool, error) {
	return f.exists, f.err
}

func (f *fakeQdrantClient) Query(_ context.Context, _ *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error) {
	return f.points, nil
}

func strVal(s string) *qdrant.Value {
	return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: s}}
}

func TestSearchNotes_MissingCollectionReturnsEmpty(t *testing.T) {
	client := &fakeQdrantClient{exists: false}
	a := NewWithClient(client, &fakeEmbedder{dims: 1536}, 1536, 50)

	campaign := &models.Campaign{VectorCollection: "campaign-1"}
	results, err := a.SearchNotes(context.Background(), campaign, "what happened", 5)

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchNotes_ParsesPayload(t *testing.T) {
	noteID := uuid.New()
	client := &fakeQdrantClient{
		exists: true,
		points: []*qdrant.ScoredPoint{
			{
				Score: 0.9,
				Payload: map[string]*qdrant.Value{
					payloadNoteID:    strVal(noteID.String()),
					payloadNoteTitle: strVal("Session 3 recap"),
					payloadSnippet:   strVal("the party arrived at..."),
				},
			},
		},
	}
	a := NewWithClient(client, &fakeEmbedder{dims: 1536}, 1536, 50)

	campaign := &models.Campaign{VectorCollection: "campaign-1"}
	results, err := a.SearchNotes(context.Background(), campaign, "what happened in session 3", 5)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, noteID, results[0].NoteID)
	assert.Equal(t, "Session 3 recap", results[0].Title)
	assert.InDelta(t, 0.9, results[0].Score, 0.0001)
}

func TestSearchNotes_EmbedDimMismatchIsRetrievalFailure(t *testing.T) {
	client := &fakeQdrantClient{exists: true}
	a := NewWithClient(client, &fakeEmbedder{dims: 768}, 1536, 50)

	campaign := &models.Campaign{VectorCollection: "campaign-1"}
	_, err := a.SearchNotes(context.Background(), campaign, "query", 5)

	require.Error(t, err)
}

func TestSearchNotes_RejectsEmptyQuery(t *testing.T) {
	a := NewWithClient(&fakeQdrantClient{exists: true}, &fakeEmbedder{dims: 1536}, 1536, 50)
	campaign := &models.Campaign{VectorCollection: "campaign-1"}

	_, err := a.SearchNotes(context.Background(), campaign, "", 5)
	require.Error(t, err)
}

func TestClampK(t *testing.T) {
	assert.Equal(t, 1, clampK(0, 50))
	assert.Equal(t, 1, clampK(-5, 50))
	assert.Equal(t, 5, clampK(5, 50))
	assert.Equal(t, 50, clampK(100, 50))
}
