package signals

import (
	"strings"

	"github.com/mentalbloom/mentalbloom/models"
)

// emotionCategories is the fixed scoring order: happy, angry, surprise,
// sad, fear.
var emotionCategories = []string{"happy", "angry", "surprise", "sad", "fear"}

var emotionLexicon = map[string][]string{
	"happy": {
		"happy", "joy", "joyful", "glad", "delighted", "cheerful", "content",
		"pleased", "excited", "thrilled", "smile", "smiling", "laugh", "laughing",
		"wonderful", "great", "amazing", "love", "loved", "grateful", "hopeful",
		"proud", "relieved", "better",
	},
	"angry": {
		"angry", "mad", "furious", "rage", "annoyed", "irritated", "frustrated",
		"hate", "hated", "resent", "resentful", "outraged", "hostile", "bitter",
		"disgusted", "fed up", "sick of",
	},
	"surprise": {
		"surprised", "surprising", "shocked", "shocking", "astonished", "amazed",
		"stunned", "unexpected", "sudden", "suddenly", "wow", "unbelievable",
		"startled", "speechless",
	},
	"sad": {
		"sad", "unhappy", "depressed", "depressing", "miserable", "down", "blue",
		"cry", "crying", "cried", "tears", "grief", "grieving", "lonely", "alone",
		"hopeless", "worthless", "empty", "heartbroken", "loss", "lost", "hurt",
	},
	"fear": {
		"afraid", "scared", "fear", "fearful", "terrified", "anxious", "anxiety",
		"worried", "worry", "panic", "panicking", "nervous", "dread", "frightened",
		"overwhelmed", "insecure", "threatened",
	},
}

// EmotionScorer does heuristic lexical emotion scoring over the five fixed
// categories. Scores are normalized hit ratios; a text with no lexicon
// hits scores all zero.
type EmotionScorer struct{}

func NewEmotionScorer() *EmotionScorer {
	return &EmotionScorer{}
}

func (s *EmotionScorer) Score(text string) models.EmotionScores {
	lower := strings.ToLower(text)
	counts := make(map[string]int, len(emotionCategories))
	total := 0
	for _, category := range emotionCategories {
		for _, word := range emotionLexicon[category] {
			counts[category] += strings.Count(lower, word)
		}
		total += counts[category]
	}
	if total == 0 {
		return models.EmotionScores{}
	}
	return models.EmotionScores{
		Happy:    float64(counts["happy"]) / float64(total),
		Angry:    float64(counts["angry"]) / float64(total),
		Surprise: float64(counts["surprise"]) / float64(total),
		Sad:      float64(counts["sad"]) / float64(total),
		Fear:     float64(counts["fear"]) / float64(total),
	}
}
