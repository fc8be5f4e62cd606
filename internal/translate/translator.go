package translate

import "context"

// Turn is one utterance in a conversation, tagged with a display name
// ("Customer", "Agent") so the backend can keep pronouns and tone coherent.
type Turn struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// Translator is the external translation capability. Implementations may
// fail or be unavailable; callers own the fallback policy.
type Translator interface {
	// TranslateSingle translates one standalone text.
	TranslateSingle(ctx context.Context, text, sourceLang, targetLang string) (string, error)

	// TranslateConversation translates a whole conversation at once.
	// The response must have the same length and order as the input.
	TranslateConversation(ctx context.Context, turns []Turn, sourceLang, targetLang string) ([]Turn, error)
}

// LanguageDetector is an optional capability of a Translator. The
// coordinator uses it to resolve an "auto" source language before the
// same-language short-circuit.
type LanguageDetector interface {
	DetectLanguage(ctx context.Context, text string) (string, error)
}
