package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/Harshitk-cp/synapse/internal/domain"
	"go.uber.org/zap"
)

const (
	// Heuristic confidence below this escalates to the generative backend.
	escalationThreshold = 0.7

	unknownConfidence      = 0.3
	mixedMaxConfidence     = 0.8
	singleMaxConfidence    = 0.9
	parseFailureConfidence = 0.5
	backendErrorConfidence = 0.4

	intentHistorySize = 1000
)

var (
	historicalKeywords = []string{
		"history", "happened", "timeline", "over time", "previously",
		"evolved", "changed since", "last quarter", "last year", "trend",
		"so far", "to date",
	}
	causalKeywords = []string{
		"why", "cause", "caused", "because", "led to", "reason",
		"root cause", "result of", "impact of", "due to", "driven by",
	}
	factualKeywords = []string{
		"current", "status", "what is", "what are", "who is", "who owns",
		"how many", "now", "today", "latest", "state of",
	}
	mixedSignalPhrases = []string{
		"compare", "versus", " vs ", "difference between",
		"before and after", "trade-off", "tradeoff", "both",
	}
)

// IntentService classifies queries into intents with a keyword heuristic,
// escalating low-confidence calls to the generative backend. A bounded
// history ring feeds aggregate statistics only; it never influences
// classification decisions.
type IntentService struct {
	generator domain.GenerativeClient
	logger    *zap.Logger

	mu          sync.Mutex
	history     []domain.Classification
	next        int
	total       int
	escalations int
}

func NewIntentService(generator domain.GenerativeClient, logger *zap.Logger) *IntentService {
	return &IntentService{
		generator: generator,
		logger:    logger,
		history:   make([]domain.Classification, 0, intentHistorySize),
	}
}

// Classify maps a query to an intent with confidence and reasoning.
// Ambiguity is not an error: unmatched queries come back as unknown and
// contested ones as mixed.
func (s *IntentService) Classify(ctx context.Context, query string) domain.Classification {
	result := s.heuristic(query)

	if result.Confidence < escalationThreshold && s.generator != nil {
		result = s.escalate(ctx, query, result)
	}

	s.record(result)
	return result
}

func (s *IntentService) heuristic(query string) domain.Classification {
	q := strings.ToLower(query)

	historical := countMatches(q, historicalKeywords)
	causal := countMatches(q, causalKeywords)
	factual := countMatches(q, factualKeywords)
	mixed := countMatches(q, mixedSignalPhrases)

	total := historical + causal + factual + mixed
	if total == 0 {
		return domain.Classification{
			Intent:     domain.IntentUnknown,
			Confidence: unknownConfidence,
			Reasoning:  "no intent keywords matched",
		}
	}

	categories := 0
	for _, n := range []int{historical, causal, factual} {
		if n > 0 {
			categories++
		}
	}

	if categories > 1 || mixed > 0 {
		conf := 0.5 + 0.1*float64(total)
		if conf > mixedMaxConfidence {
			conf = mixedMaxConfidence
		}
		return domain.Classification{
			Intent:     domain.IntentMixed,
			Confidence: conf,
			Reasoning: fmt.Sprintf("signals from multiple categories (historical=%d causal=%d factual=%d comparison=%d)",
				historical, causal, factual, mixed),
		}
	}

	intent := domain.IntentFactual
	count := factual
	switch {
	case historical >= causal && historical >= factual:
		intent, count = domain.IntentHistorical, historical
	case causal >= factual:
		intent, count = domain.IntentCausal, causal
	}

	conf := 0.5 + 0.15*float64(count)
	if conf > singleMaxConfidence {
		conf = singleMaxConfidence
	}
	return domain.Classification{
		Intent:     intent,
		Confidence: conf,
		Reasoning:  fmt.Sprintf("%d %s keyword(s) matched", count, intent),
	}
}

// escalate asks the generative backend for a structured
// INTENT|CONFIDENCE|REASONING line and maps it back onto the enum.
func (s *IntentService) escalate(ctx context.Context, query string, heuristic domain.Classification) domain.Classification {
	line, err := s.generator.ClassifyIntent(ctx, query)
	if err != nil {
		s.logger.Warn("intent escalation failed", zap.Error(err))
		return domain.Classification{
			Intent:     domain.IntentMixed,
			Confidence: backendErrorConfidence,
			Reasoning:  "classification backend unavailable, defaulting to mixed",
			Escalated:  true,
		}
	}

	result, ok := parseIntentLine(line)
	if !ok {
		s.logger.Debug("unparseable intent line", zap.String("line", line))
		return domain.Classification{
			Intent:     domain.IntentMixed,
			Confidence: parseFailureConfidence,
			Reasoning:  "could not parse backend classification, defaulting to mixed",
			Escalated:  true,
		}
	}

	result.Escalated = true
	return result
}

func parseIntentLine(line string) (domain.Classification, bool) {
	parts := strings.SplitN(strings.TrimSpace(line), "|", 3)
	if len(parts) != 3 {
		return domain.Classification{}, false
	}

	intent := strings.ToLower(strings.TrimSpace(parts[0]))
	if !domain.ValidIntent(intent) {
		return domain.Classification{}, false
	}

	conf, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return domain.Classification{}, false
	}

	return domain.Classification{
		Intent:     domain.Intent(intent),
		Confidence: clamp01(conf),
		Reasoning:  strings.TrimSpace(parts[2]),
	}, true
}

func countMatches(query string, keywords []string) int {
	count := 0
	for _, kw := range keywords {
		if strings.Contains(query, kw) {
			count++
		}
	}
	return count
}

func (s *IntentService) record(c domain.Classification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.history) < intentHistorySize {
		s.history = append(s.history, c)
	} else {
		s.history[s.next] = c
		s.next = (s.next + 1) % intentHistorySize
	}
	s.total++
	if c.Escalated {
		s.escalations++
	}
}

// IntentStats aggregates the classification history ring.
type IntentStats struct {
	Total             int                   `json:"total"`
	WindowSize        int                   `json:"window_size"`
	Distribution      map[domain.Intent]int `json:"distribution"`
	AverageConfidence float64               `json:"average_confidence"`
	EscalationRate    float64               `json:"escalation_rate"`
}

func (s *IntentService) Stats() IntentStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := IntentStats{
		Total:        s.total,
		WindowSize:   len(s.history),
		Distribution: make(map[domain.Intent]int),
	}
	if len(s.history) == 0 {
		return stats
	}

	var confSum float64
	for _, c := range s.history {
		stats.Distribution[c.Intent]++
		confSum += c.Confidence
	}
	stats.AverageConfidence = confSum / float64(len(s.history))
	if s.total > 0 {
		stats.EscalationRate = float64(s.escalations) / float64(s.total)
	}
	return stats
}
