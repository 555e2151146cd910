package services

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"ai-proposal-api/pkg/llm"
	"ai-proposal-api/pkg/models"
)

// DefaultStrategyCollection is the Qdrant collection ranked strategies are archived in.
const DefaultStrategyCollection = "proposal_strategies"

// ErrIndexDisabled is returned when no strategy archive is configured.
var ErrIndexDisabled = errors.New("strategy index is not configured")

// SimilarStrategy is a search hit from the archive.
type SimilarStrategy struct {
	Company       string  `json:"company"`
	Industry      string  `json:"industry"`
	ProposalID    string  `json:"proposalId"`
	StrategyID    string  `json:"strategyId"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Category      string  `json:"category"`
	CombinedScore float64 `json:"combinedScore"`
	Similarity    float32 `json:"similarity"`
}

// StrategyIndexService archives the ranked strategies of computed proposals
// in Qdrant and finds similar ones across companies.
type StrategyIndexService struct {
	points      qdrant.PointsClient
	collections qdrant.CollectionsClient
	embedder    llm.Embedder
	collection  string
	logger      *zap.Logger

	mu    sync.Mutex
	ready bool
}

// DialQdrant opens a gRPC connection to Qdrant. With an API key the
// connection uses TLS and sends the key on every call; without one it is a
// plain local connection.
func DialQdrant(url, apiKey string) (*grpc.ClientConn, error) {
	var dialOpts []grpc.DialOption
	if apiKey != "" {
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(credentials.NewTLS(&tls.Config{})))
		authInterceptor := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
			ctx = metadata.AppendToOutgoingContext(ctx, "api-key", apiKey)
			return invoker(ctx, method, req, reply, cc, opts...)
		}
		dialOpts = append(dialOpts, grpc.WithUnaryInterceptor(authInterceptor))
	} else {
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	conn, err := grpc.NewClient(url, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}
	return conn, nil
}

// NewStrategyIndexService creates the archive on top of conn.
func NewStrategyIndexService(conn grpc.ClientConnInterface, embedder llm.Embedder, collection string, logger *zap.Logger) *StrategyIndexService {
	return newStrategyIndex(qdrant.NewPointsClient(conn), qdrant.NewCollectionsClient(conn), embedder, collection, logger)
}

func newStrategyIndex(points qdrant.PointsClient, collections qdrant.CollectionsClient, embedder llm.Embedder, collection string, logger *zap.Logger) *StrategyIndexService {
	if collection == "" {
		collection = DefaultStrategyCollection
	}
	return &StrategyIndexService{
		points:      points,
		collections: collections,
		embedder:    embedder,
		collection:  collection,
		logger:      logger,
	}
}

// EnsureCollection creates the collection when it does not exist yet. It
// retries the listing while Qdrant is starting up.
func (s *StrategyIndexService) EnsureCollection(ctx context.Context, attempts int, interval time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}
	if attempts < 1 {
		attempts = 1
	}

	var (
		res     *qdrant.ListCollectionsResponse
		listErr error
	)
	for i := 0; i < attempts; i++ {
		callCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		res, listErr = s.collections.List(callCtx, &qdrant.ListCollectionsRequest{})
		cancel()
		if listErr == nil {
			break
		}
		s.logger.Warn("qdrant not ready", zap.Int("attempt", i+1), zap.Int("attempts", attempts), zap.Error(listErr))
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}
		}
	}
	if listErr != nil {
		return fmt.Errorf("listing qdrant collections: %w", listErr)
	}

	for _, collection := range res.GetCollections() {
		if collection.GetName() == s.collection {
			s.ready = true
			return nil
		}
	}

	_, err := s.collections.Create(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     uint64(s.embedder.Dimensions()),
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("creating qdrant collection %s: %w", s.collection, err)
	}
	s.logger.Info("qdrant collection created", zap.String("collection", s.collection))
	s.ready = true
	return nil
}

// IndexProposal archives every opportunity of p. Point ids derive from the
// company and strategy, so re-indexing a company replaces its entries.
func (s *StrategyIndexService) IndexProposal(ctx context.Context, p models.Proposal) error {
	if len(p.AIOpportunities) == 0 {
		return nil
	}
	if err := s.EnsureCollection(ctx, 1, 0); err != nil {
		return err
	}

	points := make([]*qdrant.PointStruct, 0, len(p.AIOpportunities))
	for _, o := range p.AIOpportunities {
		vector, err := s.embedder.Embed(ctx, strategyText(o))
		if err != nil {
			return fmt.Errorf("embedding strategy %s: %w", o.ID, err)
		}
		points = append(points, &qdrant.PointStruct{
			Id: &qdrant.PointId{
				PointIdOptions: &qdrant.PointId_Uuid{Uuid: StrategyPointID(p.CompanyName, o.ID)},
			},
			Vectors: &qdrant.Vectors{
				VectorsOptions: &qdrant.Vectors_Vector{Vector: &qdrant.Vector{Data: vector}},
			},
			Payload: map[string]*qdrant.Value{
				"company":       stringValue(p.CompanyName),
				"industry":      stringValue(p.Industry),
				"proposalId":    stringValue(p.ID),
				"strategyId":    stringValue(o.ID),
				"title":         stringValue(o.Title),
				"description":   stringValue(o.Description),
				"category":      stringValue(string(o.Category)),
				"combinedScore": {Kind: &qdrant.Value_DoubleValue{DoubleValue: o.CombinedScore}},
			},
		})
	}

	wait := true
	if _, err := s.points.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
		Wait:           &wait,
	}); err != nil {
		return fmt.Errorf("upserting strategies: %w", err)
	}
	s.logger.Info("proposal indexed", zap.String("company", p.CompanyName), zap.Int("strategies", len(points)))
	return nil
}

// Search returns the archived strategies closest to query.
func (s *StrategyIndexService) Search(ctx context.Context, query string, limit uint64) ([]SimilarStrategy, error) {
	if err := s.EnsureCollection(ctx, 1, 0); err != nil {
		return nil, err
	}
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	res, err := s.points.Search(ctx, &qdrant.SearchPoints{
		CollectionName: s.collection,
		Vector:         vector,
		Limit:          limit,
		WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("searching strategies: %w", err)
	}

	hits := make([]SimilarStrategy, 0, len(res.GetResult()))
	for _, point := range res.GetResult() {
		payload := point.GetPayload()
		hits = append(hits, SimilarStrategy{
			Company:       payload["company"].GetStringValue(),
			Industry:      payload["industry"].GetStringValue(),
			ProposalID:    payload["proposalId"].GetStringValue(),
			StrategyID:    payload["strategyId"].GetStringValue(),
			Title:         payload["title"].GetStringValue(),
			Description:   payload["description"].GetStringValue(),
			Category:      payload["category"].GetStringValue(),
			CombinedScore: payload["combinedScore"].GetDoubleValue(),
			Similarity:    point.GetScore(),
		})
	}
	return hits, nil
}

// StrategyPointID is the stable point id of a company's strategy.
func StrategyPointID(company, strategyID string) string {
	key := strings.ToLower(strings.TrimSpace(company)) + "/" + strategyID
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

func strategyText(o models.Opportunity) string {
	var b strings.Builder
	b.WriteString(o.Title)
	b.WriteString("\n")
	b.WriteString(o.Description)
	for _, benefit := range o.KeyBenefits {
		b.WriteString("\n- ")
		b.WriteString(benefit)
	}
	return b.String()
}

func stringValue(s string) *qdrant.Value {
	return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: s}}
}
