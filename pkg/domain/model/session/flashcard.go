package session

import (
	"github.com/lectern-dev/lectern/pkg/domain/model/chat"
	"github.com/lectern-dev/lectern/pkg/domain/types"
)

// Flashcard is a study card derived from a completed generateFlashcard tool
// invocation. Its ID is the tool call ID, which keeps derivation idempotent.
type Flashcard struct {
	ID          types.ToolCallID `json:"id" firestore:"id"`
	Type        types.CardType   `json:"type" firestore:"type"`
	Question    string           `json:"question" firestore:"question"`
	Answer      string           `json:"answer" firestore:"answer"`
	Options     []string         `json:"options,omitempty" firestore:"options,omitempty"`
	Explanation string           `json:"explanation,omitempty" firestore:"explanation,omitempty"`
	Answered    bool             `json:"answered" firestore:"answered"`
}

// DeriveFlashcards walks the transcript in order and collects one card per
// completed generateFlashcard invocation. In-flight invocations and other
// tools contribute nothing. Answered is always false: derivation recomputes
// cards from scratch and the transcript carries no answer state.
func DeriveFlashcards(messages []chat.Message) []Flashcard {
	flashcards := []Flashcard{}

	for _, msg := range messages {
		for _, inv := range msg.ToolInvocations {
			if inv.ToolName != types.ToolNameGenerateFlashcard || !inv.Completed() {
				continue
			}

			card := Flashcard{
				ID:       inv.ToolCallID,
				Answered: false,
			}
			if v, ok := inv.Result["type"].(string); ok {
				card.Type = types.CardType(v)
			}
			if v, ok := inv.Result["question"].(string); ok {
				card.Question = v
			}
			if v, ok := inv.Result["answer"].(string); ok {
				card.Answer = v
			}
			card.Options = stringSlice(inv.Result["options"])
			if v, ok := inv.Result["explanation"].(string); ok {
				card.Explanation = v
			}

			flashcards = append(flashcards, card)
		}
	}

	return flashcards
}

// stringSlice converts a decoded JSON array into []string. Both []string
// (in-process values) and []any (values round-tripped through JSON or
// Firestore) occur.
func stringSlice(v any) []string {
	switch vs := v.(type) {
	case []string:
		return vs
	case []any:
		result := make([]string, 0, len(vs))
		for _, item := range vs {
			if s, ok := item.(string); ok {
				result = append(result, s)
			}
		}
		return result
	}
	return nil
}
