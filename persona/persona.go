package persona

import (
	"fmt"
	"strings"
)

// Telegram rejects messages longer than this
const TelegramMessageLimit = 4096

// Fallback keys
const (
	FallbackGreeting = "greeting"
	FallbackThanks   = "thanks"
	FallbackQuestion = "question"
	FallbackHelp     = "help"
	FallbackDefault  = "default"
)

var fallbackKeys = []string{FallbackGreeting, FallbackThanks, FallbackQuestion, FallbackHelp, FallbackDefault}

/* Persona holds every text the bot sends on its own
 * and the instruction given to the language model
 */
type Persona struct {
	Name              string            `yaml:"name"`
	Owner             string            `yaml:"owner"`
	SystemInstruction string            `yaml:"system_instruction"`
	Guidelines        string            `yaml:"guidelines"`
	Start             string            `yaml:"start"`
	Help              string            `yaml:"help"`
	Stop              string            `yaml:"stop"`
	StatusHeader      string            `yaml:"status_header"`
	RateLimited       string            `yaml:"rate_limited"`
	TruncationNote    string            `yaml:"truncation_note"`
	MaxReplyLength    int               `yaml:"max_reply_length"`
	Fallbacks         map[string]string `yaml:"fallbacks"`
}

// Default is used when no persona file is configured
func Default() Persona {
	return Persona{
		Name:  "RAG assistant",
		Owner: "my owner",
		SystemInstruction: "You are a personal assistant answering questions about your owner. " +
			"Answer from the retrieved documents. If unsure, say what you know and suggest contacting your owner directly.",
		Guidelines: strings.Join([]string{
			"Only use greetings (Hello, Hi) if the user is greeting you.",
			"For non-greeting questions, jump straight into the answer.",
			"Be specific and informative, not generic.",
			"Keep responses conversational but focused.",
			"Don't mention technical terms like documents or knowledge base.",
		}, "\n"),
		Start: "🤖 Hello! I'm your RAG assistant.\n\n" +
			"Available commands:\n" +
			"/help - Show this help message\n" +
			"/status - Show bot status\n" +
			"/stop - Stop the bot\n\n" +
			"Ask me anything!",
		Help: "🆘 Help - Bot Commands:\n\n" +
			"/start - Initialize the bot\n" +
			"/help - Show this help message\n" +
			"/status - Show connection status\n" +
			"/stop - Stop the bot\n\n" +
			"Send any text message and I'll do my best to answer.",
		Stop:           "👋 Goodbye! Bot is stopping...",
		StatusHeader:   "📊 Bot Status:",
		RateLimited:    "⏳ You're sending messages too quickly. Please wait a moment and try again.",
		TruncationNote: "...\n\nFor more details, feel free to get in touch directly!",
		MaxReplyLength: 4000,
		Fallbacks: map[string]string{
			FallbackGreeting: "Hello! I'm an assistant. How can I help you today?",
			FallbackThanks:   "You're welcome! Feel free to ask me anything else.",
			FallbackQuestion: "That's a great question! I'd love to help, but I'm currently updating my information. Please try again later.",
			FallbackHelp:     "I'm here to help! You can ask me about background, experience, projects, or anything else you'd like to know.",
			FallbackDefault:  "Thanks for reaching out! What would you like to know?",
		},
	}
}

// Validate checks if the persona can be used to answer users
func (p *Persona) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name cannot be empty")
	}
	for field, text := range map[string]string{
		"start":           p.Start,
		"help":            p.Help,
		"stop":            p.Stop,
		"status_header":   p.StatusHeader,
		"rate_limited":    p.RateLimited,
		"truncation_note": p.TruncationNote,
	} {
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}
	}
	if p.MaxReplyLength < 200 || p.MaxReplyLength > TelegramMessageLimit {
		return fmt.Errorf("max_reply_length must be between 200 and %d (got %d)", TelegramMessageLimit, p.MaxReplyLength)
	}
	if len([]rune(p.TruncationNote)) >= 100 {
		return fmt.Errorf("truncation_note must be shorter than 100 characters")
	}
	for _, key := range fallbackKeys {
		if strings.TrimSpace(p.Fallbacks[key]) == "" {
			return fmt.Errorf("fallback %q cannot be empty", key)
		}
	}
	return nil
}

// Fallback returns the canned reply for key, or the default one
func (p *Persona) Fallback(key string) string {
	if text, ok := p.Fallbacks[key]; ok && text != "" {
		return text
	}
	return p.Fallbacks[FallbackDefault]
}
