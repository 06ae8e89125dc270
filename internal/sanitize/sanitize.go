// Package sanitize guards inbound messages against prompt injection,
// profanity, and code injection before they reach the model.
package sanitize

import (
	"context"
	"regexp"
	"strings"

	"github.com/carwise/llm-orchestrator/internal/observability"
)

// MaxMessageLength is the hard cap on inbound message length in characters.
const MaxMessageLength = 2000

// Category identifies which pattern family matched a message.
type Category string

const (
	CategoryNone          Category = ""
	CategoryInjection     Category = "injection"
	CategoryProfanity     Category = "profanity"
	CategoryCodeInjection Category = "code_injection"
)

// Canned assistant replies returned in place of a model response when a
// pattern family matches. The offending text is never forwarded.
const (
	InjectionReply = "Я AI-консультант по подбору автомобилей. Могу помочь только с выбором машины. Какой автомобиль ты ищешь?"
	ProfanityReply = "Пожалуйста, давай общаться уважительно. Я здесь, чтобы помочь тебе выбрать автомобиль. Расскажи, какие у тебя требования к машине?"
	CodeReply      = "Обнаружена попытка выполнить код. Пожалуйста, задавай обычные вопросы о подборе автомобилей."
)

var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(previous|above|all)\s+instructions?`),
	regexp.MustCompile(`(?i)forget\s+(previous|everything|all)`),
	regexp.MustCompile(`(?i)disregard\s+(previous|all)\s+instructions?`),
	regexp.MustCompile(`(?i)you\s+are\s+now`),
	regexp.MustCompile(`(?i)act\s+as`),
	regexp.MustCompile(`(?i)pretend\s+(you|to\s+be)`),
	regexp.MustCompile(`(?i)roleplay`),
	regexp.MustCompile(`(?i)system\s*prompt`),
	regexp.MustCompile(`(?i)your\s+instructions`),
	regexp.MustCompile(`(?i)show\s+me\s+your\s+(prompt|instructions|rules)`),
	regexp.MustCompile(`(?i)<\|im_start\|>`),
	regexp.MustCompile(`(?i)<\|im_end\|>`),
	regexp.MustCompile(`(?i)###\s*Instruction`),
	regexp.MustCompile(`(?i)\[INST\]`),
	regexp.MustCompile(`(?i)\[/INST\]`),
}

// Cyrillic stems are anchored to a non-letter boundary by hand since \b in
// RE2 only understands ASCII word characters.
var profanityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:\A|[^\p{L}])(хуй|хуя|хер|пизд|ебал|еба[тл]|бля[тд]|сука|сучк|мудак|долбо[её]б|уёбк|уебк)\p{L}*`),
	regexp.MustCompile(`(?i)\b(fuck|shit|bitch|asshole|cunt|dick)\w*`),
}

var codeInjectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\bSELECT\b.*\bFROM\b)|(\bDROP\b.*\bTABLE\b)|(\bINSERT\b.*\bINTO\b)`),
	regexp.MustCompile(`(?i)(\$where|\$regex|\$gt|\$lt|\$ne)`),
	regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)on(load|error|click|mouse)=`),
}

// Guard evaluates the pattern families against inbound messages.
type Guard struct {
	logger *observability.Logger
}

// NewGuard creates an input guard.
func NewGuard(logger *observability.Logger) *Guard {
	return &Guard{logger: logger}
}

// Inspect evaluates the three pattern families in priority order: injection,
// then profanity, then code injection. On a match it returns the category and
// the canned reply, and logs a warning carrying only a truncated preview of
// the message.
func (g *Guard) Inspect(ctx context.Context, sessionID, message string) (Category, string) {
	if matchAny(injectionPatterns, message) {
		g.warn(ctx, "prompt injection attempt detected", sessionID, message)
		return CategoryInjection, InjectionReply
	}
	if matchAny(profanityPatterns, message) {
		g.warn(ctx, "profanity detected", sessionID, message)
		return CategoryProfanity, ProfanityReply
	}
	if matchAny(codeInjectionPatterns, message) {
		g.warn(ctx, "code injection attempt detected", sessionID, message)
		return CategoryCodeInjection, CodeReply
	}
	return CategoryNone, ""
}

func (g *Guard) warn(ctx context.Context, msg, sessionID, message string) {
	g.logger.Warn(ctx, msg,
		"message_preview", preview(message, 50),
		"session_id", sessionID,
	)
}

func matchAny(patterns []*regexp.Regexp, message string) bool {
	for _, p := range patterns {
		if p.MatchString(message) {
			return true
		}
	}
	return false
}

// Normalize trims the message and collapses whitespace runs to single spaces.
func Normalize(message string) string {
	return strings.Join(strings.Fields(message), " ")
}

// preview truncates by runes so a multibyte message is never split mid-character.
func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
