package signals

import "strings"

// intentOrder fixes the vocabulary declaration order. It decides ties in
// ScoreMap.Max, so it must not be reordered.
var intentOrder = []string{
	"venting",
	"seeking_advice",
	"emergency",
	"gratitude",
	"greeting",
	"farewell",
	"general_question",
	"sharing_experience",
	"seeking_clarification",
	"expressing_opinion",
}

var intentKeywords = map[string][]string{
	"venting": {
		"frustrated", "angry", "upset", "annoyed", "irritated", "mad", "furious",
		"tired of", "sick of", "fed up", "had enough", "vent", "complain", "rant",
		"just saying", "need to get this off my chest", "bothering me",
	},
	"seeking_advice": {
		"advice", "help", "suggestion", "recommend", "what should", "how can i",
		"what do you think", "what would you do", "how do i", "how to", "tips",
		"guidance", "insight", "opinion", "perspective", "should i",
	},
	"emergency": {
		"suicide", "kill myself", "end my life", "don't want to live", "want to die",
		"harm myself", "hurt myself", "self-harm", "emergency", "crisis", "urgent",
		"immediate help", "desperate", "hopeless", "can't go on", "overdose",
	},
	"gratitude": {
		"thank", "grateful", "appreciate", "thanks", "thankful", "blessing",
		"honored", "indebted", "recognition", "acknowledgment",
	},
	"greeting": {
		"hello", "hi", "hey", "greetings", "good morning", "good afternoon",
		"good evening", "howdy", "what's up", "how are you", "nice to meet",
	},
	"farewell": {
		"goodbye", "bye", "see you", "talk to you later", "until next time",
		"farewell", "take care", "have a good day", "have a nice day", "later",
	},
	"general_question": {
		"what is", "who is", "where is", "when is", "why is", "how is",
		"can you explain", "tell me about", "information about", "learn about",
	},
	"sharing_experience": {
		"happened to me", "my experience", "i experienced", "i went through",
		"i've been", "i have been", "in my case", "from my perspective",
	},
	"seeking_clarification": {
		"what do you mean", "could you explain", "i don't understand",
		"clarify", "confused about", "not sure what", "what exactly",
	},
	"expressing_opinion": {
		"i think", "i believe", "in my opinion", "i feel that", "from my point of view",
		"as i see it", "i would say", "i consider", "my take on",
	},
}

// IntentLabels returns the candidate labels in declaration order. Used as
// the zero-shot candidate set.
func IntentLabels() []string {
	out := make([]string, len(intentOrder))
	copy(out, intentOrder)
	return out
}

// KeywordMatcher scores text against the fixed intent vocabulary.
type KeywordMatcher struct{}

func NewKeywordMatcher() *KeywordMatcher {
	return &KeywordMatcher{}
}

// Scores returns one entry per intent, in declaration order. The score is
// matched-keyword-count divided by the keyword count for that intent;
// intents with no match keep an explicit zero.
func (m *KeywordMatcher) Scores(text string) *ScoreMap {
	lower := strings.ToLower(text)
	scores := NewScoreMap()
	for _, intent := range intentOrder {
		keywords := intentKeywords[intent]
		matches := 0
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				matches++
			}
		}
		if matches > 0 {
			scores.Set(intent, float64(matches)/float64(len(keywords)))
		} else {
			scores.Set(intent, 0)
		}
	}
	return scores
}
