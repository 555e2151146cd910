package pipeline

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"ai-proposal-api/pkg/cache"
	"ai-proposal-api/pkg/models"
)

type blockingIndexer struct {
	mu      sync.Mutex
	calls   int
	started chan struct{}
	release chan struct{}
}

func newBlockingIndexer() *blockingIndexer {
	return &blockingIndexer{started: make(chan struct{}, 8), release: make(chan struct{})}
}

func (b *blockingIndexer) IndexProposal(ctx context.Context, _ models.Proposal) error {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	b.started <- struct{}{}
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return nil
}

func (b *blockingIndexer) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func TestSchedule_OneTaskPerCompany(t *testing.T) {
	defer goleak.VerifyNone(t)

	ix := newBlockingIndexer()
	h := newHarness(t, newFakeLLM(), fakeScraper{}, DefaultConfig(), WithIndexer(ix))
	p := MockProposal("Acme Corp", "https://acme.example", fixedNow)

	h.orch.schedule(p, true)
	<-ix.started
	for i := 0; i < 5; i++ {
		h.orch.schedule(p, true)
	}
	close(ix.release)
	h.orch.Wait()

	assert.Equal(t, 1, ix.count())
	assert.True(t, h.cache.Exists("acme-corp", cache.StageLLMContent))

	// once the first task is done a new trigger may run again
	ix2 := newBlockingIndexer()
	close(ix2.release)
	h.orch.indexer = ix2
	h.orch.schedule(p, true)
	h.orch.Wait()
	assert.Equal(t, 1, ix2.count())
}

func TestSchedule_SkipsWhenNothingToDo(t *testing.T) {
	h := newHarness(t, newFakeLLM(), fakeScraper{}, DefaultConfig())
	p := MockProposal("Acme Corp", "", fixedNow)
	require.NoError(t, h.cache.Write("acme-corp", cache.StageLLMContent, models.NarrativeContent{CompanyContext: "kept"}))

	h.orch.schedule(p, true)
	h.orch.Wait()

	var got models.NarrativeContent
	require.True(t, h.cache.Load("acme-corp", cache.StageLLMContent, &got))
	assert.Equal(t, "kept", got.CompanyContext)
}

func TestNarrative_Sources(t *testing.T) {
	h := newHarness(t, newFakeLLM(), fakeScraper{}, DefaultConfig())
	p := MockProposal("Acme Corp", "https://acme.example", fixedNow)
	require.NoError(t, h.cache.Write("acme-corp", cache.StageFinalProposal, p))

	first, source, err := h.orch.Narrative("Acme Corp")
	require.NoError(t, err)
	assert.Equal(t, SourceGenerated, source)
	assert.Equal(t, fixedNow.UnixMilli(), first.GeneratedAt)
	assert.NotEmpty(t, first.StrategicOpportunities)

	second, source, err := h.orch.Narrative("acme corp")
	require.NoError(t, err)
	assert.Equal(t, SourceCache, source)
	assert.Equal(t, first, second)
}

func TestNarrative_NoProposal(t *testing.T) {
	h := newHarness(t, newFakeLLM(), fakeScraper{}, DefaultConfig())

	_, _, err := h.orch.Narrative("Nobody Inc")
	assert.ErrorIs(t, err, ErrNoProposal)
}
