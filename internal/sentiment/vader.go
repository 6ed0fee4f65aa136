package sentiment

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"

	"github.com/spacesedan/echomind/internal/models"
)

// Scorer wraps the VADER analyzer. Construct once and inject; the
// analyzer itself is stateless across calls.
type Scorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewScorer() *Scorer {
	return &Scorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

var (
	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
)

func removeLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1") // Keep only the text
	return urlPattern.ReplaceAllString(input, "")
}

// convertMarkdownToText flattens markdown so formatting tokens do not
// skew the lexicon lookup. Agent replies arrive as markdown.
func convertMarkdownToText(input string) string {
	output := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	plainText := strings.Join(strings.Fields(string(output)), " ")

	return removeLinks(plainText)
}

// Score analyzes the polarity of text. Empty or whitespace-only input
// returns the canonical neutral score without invoking the analyzer.
// Analyzer failure also returns neutral: analytics continuity is worth
// more than a perfect signal, so scoring never fails the caller.
func (s *Scorer) Score(text string) (score models.SentimentScore) {
	if strings.TrimSpace(text) == "" {
		return models.NeutralSentiment()
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Warn("[Sentiment] Analyzer panicked, returning neutral",
				slog.Any("panic", r))
			score = models.NeutralSentiment()
		}
	}()

	plainText := convertMarkdownToText(text)
	polarity := s.analyzer.PolarityScores(plainText)

	return models.SentimentScore{
		Compound: polarity.Compound,
		Positive: polarity.Positive,
		Neutral:  polarity.Neutral,
		Negative: polarity.Negative,
	}
}
