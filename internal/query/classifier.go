package query

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Intent is the classifier's output label steering which handling branch
// executes.
type Intent int

const (
	// IntentOther covers everything the service refuses to answer,
	// including unrecognized classifier output.
	IntentOther Intent = iota
	IntentGreeting
	IntentDateRelated
	IntentMusicRelated
)

func (i Intent) String() string {
	switch i {
	case IntentGreeting:
		return "GREETING"
	case IntentDateRelated:
		return "DATE_RELATED"
	case IntentMusicRelated:
		return "MUSIC_RELATED"
	default:
		return "OTHER"
	}
}

// parseIntent matches a raw classifier label against the fixed category
// set. The label is never trusted beyond this match: anything unrecognized
// degrades to IntentOther.
func parseIntent(label string) Intent {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "GREETING":
		return IntentGreeting
	case "DATE_RELATED":
		return IntentDateRelated
	case "MUSIC_RELATED":
		return IntentMusicRelated
	default:
		return IntentOther
	}
}

// Classifier maps a question plus rendered history into an Intent with a
// single LLM round trip.
type Classifier struct {
	llm LanguageModel
}

// NewClassifier creates a new intent classifier
func NewClassifier(llm LanguageModel) *Classifier {
	return &Classifier{llm: llm}
}

// Classify returns the intent for a question. Classification failure is
// fail-safe toward refusal: a transport error or an unrecognized label both
// resolve to IntentOther.
func (c *Classifier) Classify(ctx context.Context, question, historyText string) Intent {
	prompt := fmt.Sprintf(classificationPrompt, historyContext(historyText), question)

	label, err := c.llm.Complete(ctx, prompt)
	if err != nil {
		log.Printf("Classification failed, treating as OTHER: %v", err)
		return IntentOther
	}

	return parseIntent(label)
}
