package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"ai-proposal-api/pkg/cache"
	"ai-proposal-api/pkg/models"
)

const backgroundTimeout = 2 * time.Minute

// Narrative sources returned by Narrative.
const (
	SourceCache     = "cache"
	SourceGenerated = "generated"
)

// ErrNoProposal is returned by Narrative when nothing is cached for the company.
var ErrNoProposal = errors.New("pipeline: no cached proposal")

// narrativeTasks deduplicates the background work per company. The inflight
// set keeps a second trigger from spawning a goroutine at all; the
// singleflight group collapses a background build with an on-demand one.
type narrativeTasks struct {
	group    singleflight.Group
	mu       sync.Mutex
	inflight map[string]struct{}
	wg       sync.WaitGroup
}

func newNarrativeTasks() *narrativeTasks {
	return &narrativeTasks{inflight: make(map[string]struct{})}
}

// schedule starts the post-generation work for p: building its narrative
// unless one is cached, and archiving it when index is set. Failures are
// logged only.
func (o *Orchestrator) schedule(p models.Proposal, index bool) {
	companyID := cache.CompanyID(p.CompanyName)
	logger := o.logger.With(zap.String("company", companyID))

	needNarrative := !o.cache.Exists(companyID, cache.StageLLMContent)
	needIndex := index && o.indexer != nil
	if !needNarrative && !needIndex {
		logger.Debug("narrative already cached, skipping background work")
		return
	}

	o.tasks.mu.Lock()
	if _, busy := o.tasks.inflight[companyID]; busy {
		o.tasks.mu.Unlock()
		logger.Info("background work already running, skipping")
		return
	}
	o.tasks.inflight[companyID] = struct{}{}
	o.tasks.wg.Add(1)
	o.tasks.mu.Unlock()

	go func() {
		defer o.tasks.wg.Done()
		defer func() {
			o.tasks.mu.Lock()
			delete(o.tasks.inflight, companyID)
			o.tasks.mu.Unlock()
		}()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("background work panicked", zap.Any("panic", r))
			}
		}()

		if needNarrative {
			if _, err := o.buildNarrative(companyID, p); err != nil {
				logger.Warn("narrative generation failed", zap.Error(err))
			} else {
				logger.Info("narrative generated")
			}
		}
		if needIndex {
			ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
			defer cancel()
			if err := o.indexer.IndexProposal(ctx, p); err != nil {
				logger.Warn("proposal indexing failed", zap.Error(err))
			}
		}
	}()
}

// buildNarrative returns the cached narrative of the company or builds and
// caches one from p.
func (o *Orchestrator) buildNarrative(companyID string, p models.Proposal) (models.NarrativeContent, error) {
	v, err, _ := o.tasks.group.Do(companyID, func() (any, error) {
		var existing models.NarrativeContent
		if o.cache.Load(companyID, cache.StageLLMContent, &existing) {
			return existing, nil
		}
		content := o.narrative.Build(p)
		return content, o.cache.Write(companyID, cache.StageLLMContent, content)
	})
	content, _ := v.(models.NarrativeContent)
	return content, err
}

// Narrative returns the narrative of a company with its source: SourceCache
// when it was pregenerated, SourceGenerated when it was just built from the
// cached proposal.
func (o *Orchestrator) Narrative(company string) (models.NarrativeContent, string, error) {
	companyID := cache.CompanyID(company)

	var content models.NarrativeContent
	if o.cache.Load(companyID, cache.StageLLMContent, &content) {
		return content, SourceCache, nil
	}

	var p models.Proposal
	if !o.cache.Load(companyID, cache.StageFinalProposal, &p) {
		return models.NarrativeContent{}, "", ErrNoProposal
	}
	content, err := o.buildNarrative(companyID, p)
	if err != nil {
		// the content is still usable when only the cache write failed
		o.logger.Warn("caching narrative failed", zap.String("company", companyID), zap.Error(err))
	}
	return content, SourceGenerated, nil
}

// Wait blocks until every background task has finished.
func (o *Orchestrator) Wait() {
	o.tasks.wg.Wait()
}
