package insight

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

// Sentiment labels produced by the analyzer.
const (
	SentimentPositive         = "Positive"
	SentimentNegative         = "Negative"
	SentimentNeutral          = "Neutral"
	SentimentSlightlyPositive = "Slightly Positive"
	SentimentSlightlyNegative = "Slightly Negative"
)

// Result is the outcome of analyzing a conversation transcript.
type Result struct {
	Summary   string `json:"summary"`
	Sentiment string `json:"sentiment"`
}

// Analyzer is the swappable strategy that turns a conversation transcript
// into a summary and a sentiment. It is pure from the caller's perspective
// and never touches the registry or the relay.
type Analyzer interface {
	Analyze(conversationText string) Result
}

// MockAnalyzer is a stand-in for a real language model. Keyword hits produce
// fixed results; anything else draws from a set of canned summaries.
type MockAnalyzer struct {
	mu        sync.Mutex
	rng       *rand.Rand
	summaries []string
	mild      []string
}

// NewMockAnalyzer creates a MockAnalyzer with its own random source.
func NewMockAnalyzer() *MockAnalyzer {
	return &MockAnalyzer{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		summaries: []string{
			"The conversation focused on project deadlines and resource allocation.",
			"A positive exchange regarding customer feedback and next steps.",
			"A long thread discussing an unresolved technical issue.",
			"General chitchat with a negative undertone about recent company changes.",
			"A quick, decisive communication about task completion.",
		},
		mild: []string{SentimentNeutral, SentimentSlightlyPositive, SentimentSlightlyNegative},
	}
}

// Analyze implements the Analyzer strategy.
func (a *MockAnalyzer) Analyze(conversationText string) Result {
	text := strings.ToLower(conversationText)

	switch {
	case strings.Contains(text, "problem") || strings.Contains(text, "error"):
		return Result{
			Summary:   "High-priority discussion regarding a technical failure or persistent problem.",
			Sentiment: SentimentNegative,
		}
	case strings.Contains(text, "success") || strings.Contains(text, "great"):
		return Result{
			Summary:   "A summary of positive progress and achievement confirmation.",
			Sentiment: SentimentPositive,
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return Result{
		Summary:   a.summaries[a.rng.Intn(len(a.summaries))],
		Sentiment: a.mild[a.rng.Intn(len(a.mild))],
	}
}
