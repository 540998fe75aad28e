package querycache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/assistant-orchestrator/pkg/models"
)

func TestGetSet_NormalizesQueryKey(t *testing.T) {
	c := New(time.Minute)
	response := models.AssistantResponse{ResponseType: models.ResponseTypeText, TextResponse: "hello"}
	c.Set("campaign-1", "  Who Rules The City?  ", response)

	cached, ok := c.Get("campaign-1", "who rules the city?")
	require.True(t, ok)
	assert.Equal(t, "hello", cached.TextResponse)
}

func TestSet_NeverCachesErrorResponses(t *testing.T) {
	c := New(time.Minute)
	c.Set("campaign-1", "q", models.AssistantResponse{ResponseType: models.ResponseTypeError, ErrorType: "planning-failure"})

	_, ok := c.Get("campaign-1", "q")
	assert.False(t, ok)
}

func TestGet_ExpiresAfterTTL(t *testing.T) {
	c := New(5 * time.Millisecond)
	c.Set("campaign-1", "q", models.AssistantResponse{ResponseType: models.ResponseTypeText})

	time.Sleep(10 * time.Millisecond)
	_, ok := c.Get("campaign-1", "q")
	assert.False(t, ok)
}

func TestInvalidateAll_EvictsOnlyThatCampaign(t *testing.T) {
	c := New(time.Minute)
	c.Set("campaign-1", "q", models.AssistantResponse{ResponseType: models.ResponseTypeText, TextResponse: "a"})
	c.Set("campaign-2", "q", models.AssistantResponse{ResponseType: models.ResponseTypeText, TextResponse: "b"})

	c.InvalidateAll("campaign-1")

	_, ok := c.Get("campaign-1", "q")
	assert.False(t, ok)
	cached, ok := c.Get("campaign-2", "q")
	require.True(t, ok)
	assert.Equal(t, "b", cached.TextResponse)
}

func TestGetOrPopulate_CallsPopulateOnceUnderConcurrency(t *testing.T) {
	c := New(time.Minute)
	var calls int32

	populate := func(_ context.Context) (models.AssistantResponse, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(5 * time.Millisecond)
		return models.AssistantResponse{ResponseType: models.ResponseTypeText, TextResponse: "computed"}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			response, err := c.GetOrPopulate(context.Background(), "campaign-1", "what happened", populate)
			require.NoError(t, err)
			assert.Equal(t, "computed", response.TextResponse)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetOrPopulate_DoesNotCacheErrorResult(t *testing.T) {
	c := New(time.Minute)
	wantErr := assert.AnError

	_, err := c.GetOrPopulate(context.Background(), "campaign-1", "q", func(_ context.Context) (models.AssistantResponse, error) {
		return models.AssistantResponse{}, wantErr
	})
	require.Error(t, err)

	_, ok := c.Get("campaign-1", "q")
	assert.False(t, ok)
}
