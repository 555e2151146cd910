package services

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries the id assigned to every request.
const RequestIDHeader = "X-Request-ID"

const (
	maxLogEntries   = 10000
	maxRecentErrors = 10
)

// LogEntry is one recorded request.
type LogEntry struct {
	RequestID    string        `json:"requestId"`
	Timestamp    time.Time     `json:"timestamp"`
	Path         string        `json:"path"`
	Method       string        `json:"method"`
	StatusCode   int           `json:"statusCode"`
	ResponseTime time.Duration `json:"responseTime"`
}

type outcomeEvent struct {
	at      time.Time
	company string
	outcome string
}

// MonitoringService keeps recent requests and proposal outcomes in memory
// for the dashboard.
type MonitoringService struct {
	mu       sync.RWMutex
	logs     []LogEntry
	outcomes []outcomeEvent
	logger   *zap.Logger
	now      func() time.Time
}

// NewMonitoringService creates an empty MonitoringService.
func NewMonitoringService(logger *zap.Logger) *MonitoringService {
	return &MonitoringService{
		logs:   make([]LogEntry, 0),
		logger: logger,
		now:    time.Now,
	}
}

// LogRequest records a request, dropping the oldest entries past the cap.
func (s *MonitoringService) LogRequest(entry LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, entry)
	if over := len(s.logs) - maxLogEntries; over > 0 {
		s.logs = append(s.logs[:0:0], s.logs[over:]...)
	}
}

// RecordOutcome counts how a proposal request was served.
func (s *MonitoringService) RecordOutcome(company, outcome string) {
	s.mu.Lock()
	s.outcomes = append(s.outcomes, outcomeEvent{at: s.now(), company: company, outcome: outcome})
	if over := len(s.outcomes) - maxLogEntries; over > 0 {
		s.outcomes = append(s.outcomes[:0:0], s.outcomes[over:]...)
	}
	s.mu.Unlock()

	s.logger.Info("proposal served", zap.String("company", company), zap.String("outcome", outcome))
}

// LoggingMiddleware tags every request with an id, logs it and records it
// for the dashboard. Admin and monitoring calls are not recorded.
func (s *MonitoringService) LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := s.now()
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("requestId", requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/v1/admin") || strings.HasPrefix(path, "/api/v1/monitoring") {
			return
		}

		entry := LogEntry{
			RequestID:    requestID,
			Timestamp:    start,
			Path:         path,
			Method:       c.Request.Method,
			StatusCode:   c.Writer.Status(),
			ResponseTime: s.now().Sub(start),
		}
		s.LogRequest(entry)
		s.logger.Info("request",
			zap.String("requestId", requestID),
			zap.String("method", entry.Method),
			zap.String("path", path),
			zap.Int("status", entry.StatusCode),
			zap.Duration("latency", entry.ResponseTime),
		)
	}
}

// DashboardData is the aggregated view of a period.
type DashboardData struct {
	RequestsOverTime []map[string]interface{} `json:"requestsOverTime"`
	Endpoints        map[string]int           `json:"endpoints"`
	StatusCodes      []map[string]interface{} `json:"statusCodes"`
	AvgResponseTimes []map[string]interface{} `json:"avgResponseTimes"`
	RecentErrors     []LogEntry               `json:"recentErrors"`
	ProposalOutcomes map[string]int           `json:"proposalOutcomes"`
}

// GetDashboardData aggregates the entries of the last periodHours hours.
func (s *MonitoringService) GetDashboardData(periodHours int) DashboardData {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now().UTC()
	since := now.Add(-time.Duration(periodHours) * time.Hour)

	filteredLogs := make([]LogEntry, 0)
	for _, log := range s.logs {
		if log.Timestamp.After(since) {
			filteredLogs = append(filteredLogs, log)
		}
	}

	// hourly buckets, oldest first
	requestsOverTime := make([]map[string]interface{}, periodHours)
	hourlyBuckets := make(map[string]int)
	for _, log := range filteredLogs {
		hourlyBuckets[log.Timestamp.UTC().Truncate(time.Hour).Format(time.RFC3339)]++
	}
	for i := 0; i < periodHours; i++ {
		target := now.Add(-time.Duration(periodHours-1-i) * time.Hour)
		bucketKey := target.Truncate(time.Hour).Format(time.RFC3339)
		requestsOverTime[i] = map[string]interface{}{"time": target.Format("15:00"), "requests": hourlyBuckets[bucketKey]}
	}

	endpoints := make(map[string]int)
	for _, log := range filteredLogs {
		endpoints[log.Path]++
	}

	statusCodes := map[string]int{"2xx Success": 0, "4xx Client Error": 0, "5xx Server Error": 0}
	for _, log := range filteredLogs {
		switch {
		case log.StatusCode >= 200 && log.StatusCode < 300:
			statusCodes["2xx Success"]++
		case log.StatusCode >= 400 && log.StatusCode < 500:
			statusCodes["4xx Client Error"]++
		case log.StatusCode >= 500:
			statusCodes["5xx Server Error"]++
		}
	}
	statusCodesSlice := make([]map[string]interface{}, 0, len(statusCodes))
	for _, name := range []string{"2xx Success", "4xx Client Error", "5xx Server Error"} {
		statusCodesSlice = append(statusCodesSlice, map[string]interface{}{"name": name, "value": statusCodes[name]})
	}

	responseTimeSum := make(map[string]time.Duration)
	responseCount := make(map[string]int)
	for _, log := range filteredLogs {
		responseTimeSum[log.Path] += log.ResponseTime
		responseCount[log.Path]++
	}
	paths := make([]string, 0, len(responseTimeSum))
	for path := range responseTimeSum {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	avgResponseTimes := make([]map[string]interface{}, 0, len(paths))
	for _, path := range paths {
		avg := responseTimeSum[path].Milliseconds() / int64(responseCount[path])
		avgResponseTimes = append(avgResponseTimes, map[string]interface{}{"endpoint": path, "responseTime": avg})
	}

	recentErrors := make([]LogEntry, 0)
	for i := len(filteredLogs) - 1; i >= 0 && len(recentErrors) < maxRecentErrors; i-- {
		if filteredLogs[i].StatusCode >= 500 {
			recentErrors = append(recentErrors, filteredLogs[i])
		}
	}

	outcomes := make(map[string]int)
	for _, o := range s.outcomes {
		if o.at.After(since) {
			outcomes[o.outcome]++
		}
	}

	return DashboardData{
		RequestsOverTime: requestsOverTime,
		Endpoints:        endpoints,
		StatusCodes:      statusCodesSlice,
		AvgResponseTimes: avgResponseTimes,
		RecentErrors:     recentErrors,
		ProposalOutcomes: outcomes,
	}
}
