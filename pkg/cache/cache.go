// Package cache persists the output of every pipeline stage per company.
//
// A Store holds raw JSON documents keyed by company id and stage name. Cache
// wraps a Store with JSON encoding and the read policy of the pipeline:
// a missing or unreadable entry is a miss, never an error.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrNotFound is returned by Store.Get when no entry exists.
var ErrNotFound = errors.New("cache: entry not found")

// Stage names used as cache keys.
const (
	StageScrapedData             = "scraped_data"
	StageContextAnalysis         = "context_analysis"
	StageBusinessChallenges      = "businessChallenges"
	StageIndustryInsights        = "industry_insights"
	StageStrategies              = "strategies"
	StageOptimizedStrategies     = "optimized_strategies"
	StageEnrichedStrategies      = "enriched_strategies"
	StageImplementation          = "implementation_strategies"
	StageImplementationFallback  = "implementation_strategies_fallback"
	StageInitialFeasibility      = "initial_feasibility"
	StageFeasibilityEvolutions   = "feasibility_evolutions"
	StageFinalImplementations    = "final_implementations"
	StageFinalProposal           = "final_proposal"
	StageLLMContent              = "llm_content"
	stageFeasibilityIterationFmt = "feasibility_iteration_%d"
)

// FeasibilityIteration is the stage name of the n-th feasibility refinement round.
func FeasibilityIteration(n int) string {
	return fmt.Sprintf(stageFeasibilityIterationFmt, n)
}

// Entry describes one stored document.
type Entry struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// Store is a key-value backend for stage documents.
type Store interface {
	Get(companyID, stage string) ([]byte, error)
	Put(companyID, stage string, data []byte) error
	Entries(companyID string) ([]Entry, error)
	Clear(companyID string) error
	// Location describes where the documents of companyID live.
	Location(companyID string) string
	Close() error
}

var (
	whitespace = regexp.MustCompile(`\s+`)
	separators = strings.NewReplacer("/", "-", `\`, "-")
	validStage = regexp.MustCompile(`^[A-Za-z0-9_\-]+$`)
)

// CompanyID normalizes a company name into a cache key: lower-cased, with
// whitespace runs collapsed to "-". Path separators also become "-".
func CompanyID(name string) string {
	id := strings.ToLower(strings.TrimSpace(name))
	id = whitespace.ReplaceAllString(id, "-")
	return separators.Replace(id)
}

func checkKey(companyID, stage string) error {
	if companyID == "" || companyID == "." || companyID == ".." {
		return fmt.Errorf("cache: invalid company id %q", companyID)
	}
	if !validStage.MatchString(stage) {
		return fmt.Errorf("cache: invalid stage name %q", stage)
	}
	return nil
}

// Cache reads and writes stage documents as JSON.
type Cache struct {
	store   Store
	logger  *zap.Logger
	enabled bool
}

// New wraps store. A disabled cache misses on every read but still writes.
func New(store Store, logger *zap.Logger, enabled bool) *Cache {
	return &Cache{store: store, logger: logger, enabled: enabled}
}

// Store returns the backend.
func (c *Cache) Store() Store { return c.store }

// Enabled reports whether reads may hit.
func (c *Cache) Enabled() bool { return c.enabled }

// Read decodes the stored document into dst and reports whether it did.
// A corrupt document counts as a miss.
func (c *Cache) Read(companyID, stage string, dst any) bool {
	if !c.enabled {
		return false
	}
	return c.Load(companyID, stage, dst)
}

// Load is Read without the enabled check; the HTTP layer uses it to serve
// cached documents regardless of the pipeline setting.
func (c *Cache) Load(companyID, stage string, dst any) bool {
	data, err := c.store.Get(companyID, stage)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.logger.Warn("cache read failed", zap.String("company", companyID), zap.String("stage", stage), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		c.logger.Warn("ignoring corrupt cache entry", zap.String("company", companyID), zap.String("stage", stage), zap.Error(err))
		return false
	}
	c.logger.Debug("cache hit", zap.String("company", companyID), zap.String("stage", stage))
	return true
}

// Raw returns the stored document as is.
func (c *Cache) Raw(companyID, stage string) ([]byte, error) {
	return c.store.Get(companyID, stage)
}

// Exists reports whether a document is stored, readable or not.
func (c *Cache) Exists(companyID, stage string) bool {
	_, err := c.store.Get(companyID, stage)
	return err == nil
}

// Write stores v as indented JSON. Failures are logged and returned; the
// pipeline carries on regardless.
func (c *Cache) Write(companyID, stage string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		c.logger.Warn("cache encode failed", zap.String("company", companyID), zap.String("stage", stage), zap.Error(err))
		return fmt.Errorf("encode %s: %w", stage, err)
	}
	if err := c.store.Put(companyID, stage, data); err != nil {
		c.logger.Warn("cache write failed", zap.String("company", companyID), zap.String("stage", stage), zap.Error(err))
		return err
	}
	return nil
}

// Entries lists the documents of a company.
func (c *Cache) Entries(companyID string) ([]Entry, error) {
	return c.store.Entries(companyID)
}

// Clear drops every document of a company.
func (c *Cache) Clear(companyID string) error {
	if err := c.store.Clear(companyID); err != nil {
		return err
	}
	c.logger.Info("cache cleared", zap.String("company", companyID))
	return nil
}

// Location describes where the documents of companyID live.
func (c *Cache) Location(companyID string) string {
	return c.store.Location(companyID)
}

// Close releases the backend.
func (c *Cache) Close() error {
	return c.store.Close()
}
