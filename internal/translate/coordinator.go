package translate

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/lingobridge/lingobridge-server/internal/store"
)

const defaultLanguage = "en"

// Result is the outcome of translating one message. When Translated is
// false the message is delivered as-is and stored without translation
// columns; that covers both the same-language short-circuit and total
// backend failure.
type Result struct {
	Text           string
	SourceLanguage string
	TargetLanguage string
	Translated     bool
}

// Coordinator decides source/target languages for a message and produces
// the best-effort translation through a fallback chain: contextual
// conversation translation, then single-message translation, then the
// original text. It never returns an error to the router.
type Coordinator struct {
	translator Translator
	contexts   *ContextBuilder
	timeout    time.Duration
	log        *zerolog.Logger
}

// NewCoordinator builds a coordinator. timeout bounds each backend call.
func NewCoordinator(tr Translator, cb *ContextBuilder, timeout time.Duration, logger *zerolog.Logger) *Coordinator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Coordinator{
		translator: tr,
		contexts:   cb,
		timeout:    timeout,
		log:        logger,
	}
}

// Translate resolves languages from the session and sender role and runs
// the fallback chain for one message.
func (c *Coordinator) Translate(ctx context.Context, session *store.Session, role store.SenderRole, text, declaredLang string) Result {
	sourceLang, targetLang := resolveLanguages(session, role, declaredLang)
	result := Result{Text: text, SourceLanguage: sourceLang, TargetLanguage: targetLang}

	if sourceLang == targetLang {
		return result
	}

	turns, err := c.contexts.Build(ctx, session.ID)
	if err != nil {
		c.log.Warn().Err(err).Str("session_id", session.ID).Msg("failed to build conversation context")
		turns = nil
	}
	turns = append(turns, Turn{Speaker: SpeakerLabel(role), Text: text})

	if len(turns) > 1 {
		if translated, ok := c.translateConversation(ctx, turns, sourceLang, targetLang); ok {
			result.Text = translated
			result.Translated = true
			return result
		}
	}

	if translated, ok := c.translateSingle(ctx, text, sourceLang, targetLang); ok {
		result.Text = translated
		result.Translated = true
		return result
	}

	// Total failure: deliver the original text and store it untranslated.
	return result
}

// TranslateText is the standalone single-message path used by the REST
// translate endpoint and the OCR pipeline. It does not read session state.
// Returns the text to deliver and whether a translation happened.
func (c *Coordinator) TranslateText(ctx context.Context, text, sourceLang, targetLang string) (string, bool) {
	if sourceLang == "" {
		sourceLang = "auto"
	}
	if targetLang == "" {
		targetLang = defaultLanguage
	}
	if sourceLang == "auto" {
		sourceLang = c.detectLanguage(ctx, text)
	}
	if sourceLang == targetLang {
		return text, false
	}
	return c.translateSingleOrOriginal(ctx, text, sourceLang, targetLang)
}

// detectLanguage resolves an "auto" source through the backend's detector
// when available. Detection failures keep "auto": the translate endpoints
// accept it and detect server-side.
func (c *Coordinator) detectLanguage(ctx context.Context, text string) string {
	detector, ok := c.translator.(LanguageDetector)
	if !ok {
		return "auto"
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	detected, err := detector.DetectLanguage(callCtx, text)
	if err != nil || detected == "" {
		if err != nil {
			c.log.Debug().Err(err).Msg("language detection failed")
		}
		return "auto"
	}
	return detected
}

func (c *Coordinator) translateConversation(ctx context.Context, turns []Turn, sourceLang, targetLang string) (string, bool) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	translated, err := c.translator.TranslateConversation(callCtx, turns, sourceLang, targetLang)
	if err != nil {
		c.log.Warn().Err(err).
			Str("source", sourceLang).
			Str("target", targetLang).
			Int("turns", len(turns)).
			Msg("conversation translation failed, falling back to single")
		return "", false
	}
	// The current message is the last turn of the response.
	return translated[len(translated)-1].Text, true
}

func (c *Coordinator) translateSingle(ctx context.Context, text, sourceLang, targetLang string) (string, bool) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	translated, err := c.translator.TranslateSingle(callCtx, text, sourceLang, targetLang)
	if err != nil {
		c.log.Warn().Err(err).
			Str("source", sourceLang).
			Str("target", targetLang).
			Msg("single translation failed, delivering original text")
		return "", false
	}
	return translated, true
}

func (c *Coordinator) translateSingleOrOriginal(ctx context.Context, text, sourceLang, targetLang string) (string, bool) {
	if translated, ok := c.translateSingle(ctx, text, sourceLang, targetLang); ok {
		return translated, true
	}
	return text, false
}

// resolveLanguages applies the per-role resolution rule:
//
//	CUSTOMER: session customer language -> agent language
//	AGENT:    session agent language -> customer language
//	other:    declared language -> "en"
//
// with the message's declared language and "en" as successive fallbacks
// on the source side.
func resolveLanguages(session *store.Session, role store.SenderRole, declaredLang string) (string, string) {
	switch role {
	case store.RoleCustomer:
		return firstNonEmpty(session.CustomerLanguage, declaredLang, defaultLanguage),
			firstNonEmpty(session.AgentLanguage, defaultLanguage)
	case store.RoleAgent:
		return firstNonEmpty(session.AgentLanguage, declaredLang, defaultLanguage),
			firstNonEmpty(session.CustomerLanguage, defaultLanguage)
	default:
		return firstNonEmpty(declaredLang, defaultLanguage), defaultLanguage
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
