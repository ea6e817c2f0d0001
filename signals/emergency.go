package signals

import "strings"

var emergencyPhrases = []string{
	"i want to kill myself",
	"i want to die",
	"i want to end my life",
	"i don't want to live anymore",
	"i'm going to kill myself",
	"i'm planning to commit suicide",
	"i'm thinking about suicide",
	"i'm going to harm myself",
	"i'm going to hurt myself",
	"i have a plan to kill myself",
	"i've written a suicide note",
	"i'm ready to end it all",
	"there's no reason to live",
	"everyone would be better off without me",
	"i can't take it anymore",
}

// EmergencyMatcher flags text containing a crisis phrase.
type EmergencyMatcher struct{}

func NewEmergencyMatcher() *EmergencyMatcher {
	return &EmergencyMatcher{}
}

// Match reports whether the text contains any listed phrase,
// case-insensitive substring.
func (m *EmergencyMatcher) Match(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range emergencyPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
