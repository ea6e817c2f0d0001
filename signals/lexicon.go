package signals

import "github.com/jonreiter/govader"

// LexiconScores are the raw VADER polarity scores for one text.
type LexiconScores struct {
	Compound float64
	Positive float64
	Negative float64
	Neutral  float64
}

// VaderScorer wraps the VADER lexicon analyzer. Scoring is pure and
// in-process; the neutral guard only triggers on empty input.
type VaderScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderScorer() *VaderScorer {
	return &VaderScorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (s *VaderScorer) Score(text string) LexiconScores {
	if text == "" {
		return LexiconScores{Neutral: 1}
	}
	scores := s.analyzer.PolarityScores(text)
	return LexiconScores{
		Compound: scores.Compound,
		Positive: scores.Positive,
		Negative: scores.Negative,
		Neutral:  scores.Neutral,
	}
}
