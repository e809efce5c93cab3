package rag

import (
	"strings"
	"unicode"
)

/* QueryType steers the tone of the generated answer
 * Classification is keyword based and checked in declaration order
 */
type QueryType int

const (
	Greeting QueryType = iota + 1
	Technical
	Identity
	Professional
	Thanks
	HelpRequest
	Conversational
)

// String returns the string representation of the query type
func (q QueryType) String() string {
	switch q {
	case Greeting:
		return "greeting"
	case Technical:
		return "technical"
	case Identity:
		return "identity"
	case Professional:
		return "professional"
	case Thanks:
		return "thanks"
	case HelpRequest:
		return "help"
	case Conversational:
		return "conversational"
	default:
		return "unknown"
	}
}

var (
	greetingWords     = []string{"hello", "hi", "hey", "good morning", "good afternoon", "good evening"}
	technicalWords    = []string{"skills", "programming", "languages", "technology", "technical", "experience", "projects", "work"}
	identityWords     = []string{"who is", "tell me about", "what does", "about him", "about her"}
	professionalWords = []string{"hire", "hiring", "contact", "reach", "professional", "work with"}
	thanksWords       = []string{"thanks", "thank you", "thx"}
	questionWords     = []string{"what", "how", "why", "when", "where", "who"}
	helpWords         = []string{"help"}
)

// Classify picks the query type of a user message
func Classify(text string) QueryType {
	words := normalize(text)
	switch {
	case containsAny(words, greetingWords):
		return Greeting
	case containsAny(words, technicalWords):
		return Technical
	case containsAny(words, identityWords):
		return Identity
	case containsAny(words, professionalWords):
		return Professional
	case containsAny(words, thanksWords):
		return Thanks
	case containsAny(words, helpWords):
		return HelpRequest
	default:
		return Conversational
	}
}

// normalize lowercases text and collapses everything but letters and digits
// into single spaces, padded so phrases match on word boundaries.
func normalize(text string) string {
	f := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return " " + strings.Join(f, " ") + " "
}

func containsAny(words string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(words, " "+p+" ") {
			return true
		}
	}
	return false
}
