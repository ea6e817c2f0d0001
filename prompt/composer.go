// Package prompt assembles the system prompt for a chat turn from the
// analysis results and retrieved documents.
package prompt

import (
	"fmt"
	"strings"

	"github.com/mentalbloom/mentalbloom/models"
)

const basePrompt = `You are MentalBloom, an empathetic and supportive mental health assistant.
Your goal is to provide helpful, accurate, and compassionate responses to users seeking mental health support.

Guidelines:
- Be warm, empathetic, and supportive in your tone
- Provide evidence-based information when possible
- Never claim to diagnose conditions or replace professional help
- Encourage seeking professional help for serious concerns
- Respect user privacy and maintain confidentiality
- Be sensitive to cultural differences
- Focus on providing practical, actionable advice when appropriate
- Acknowledge the user's feelings and validate their experiences
`

const emergencyPrompt = `
THIS IS A POTENTIAL EMERGENCY SITUATION. Prioritize user safety:
- Express concern for their wellbeing
- Provide crisis resources (hotlines, text lines)
- Encourage immediate professional help
- Be direct but compassionate
`

// Compose builds the full system prompt. Sentiment and intent sections are
// omitted when the corresponding analysis is nil; the emergency block is
// always included when the intent analysis flags an emergency.
func Compose(sentiment *models.SentimentResult, intent *models.IntentResult, documents []models.RetrievedDocument) string {
	var b strings.Builder
	b.WriteString(basePrompt)

	if sentiment != nil {
		fmt.Fprintf(&b, "\nThe user's message shows a %s sentiment with primarily %s emotions.\n",
			sentiment.Sentiment, dominantEmotion(sentiment.Emotions))
		b.WriteString("Adjust your response to be appropriately sensitive to their emotional state.\n")
	}

	if intent != nil {
		fmt.Fprintf(&b, "\nThe user's intent appears to be: %s\n", intent.PrimaryIntent)
		if intent.IsEmergency {
			b.WriteString(emergencyPrompt)
		}
		if intent.SuggestedResponseType != "" {
			fmt.Fprintf(&b, "\nUse a %s response approach.\n", intent.SuggestedResponseType)
		}
	}

	b.WriteString(`
Use the following retrieved documents to inform your response.
Incorporate relevant information from these sources, but maintain a conversational tone.
If the documents don't contain relevant information, rely on your general knowledge but be honest about limitations.

Retrieved documents:
`)
	b.WriteString(formatDocuments(documents))
	b.WriteString("\nRemember to be empathetic, accurate, and supportive in your response.\n")

	return b.String()
}

func formatDocuments(documents []models.RetrievedDocument) string {
	if len(documents) == 0 {
		return "(none)\n"
	}
	var b strings.Builder
	for i, doc := range documents {
		title := doc.Title
		if title == "" {
			title = "Untitled"
		}
		fmt.Fprintf(&b, "[%d] %s\n", i+1, title)
		fmt.Fprintf(&b, "Content: %s\n\n", doc.Content)
	}
	return b.String()
}

// dominantEmotion returns the highest-scoring emotion, resolving ties to
// the first category in the fixed order. An all-zero tie lands on the
// first category.
func dominantEmotion(e models.EmotionScores) string {
	type pair struct {
		name  string
		score float64
	}
	pairs := []pair{
		{"happy", e.Happy},
		{"angry", e.Angry},
		{"surprise", e.Surprise},
		{"sad", e.Sad},
		{"fear", e.Fear},
	}
	best := pairs[0]
	for _, p := range pairs[1:] {
		if p.score > best.score {
			best = p
		}
	}
	return best.name
}
