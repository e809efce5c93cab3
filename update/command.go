package update

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Command is one of the fixed bot commands
type Command int

const (
	Start Command = iota + 1
	Help
	Status
	Stop
)

// String returns the command name without the leading slash
func (c Command) String() string {
	switch c {
	case Start:
		return "start"
	case Help:
		return "help"
	case Status:
		return "status"
	case Stop:
		return "stop"
	default:
		return ""
	}
}

// NewCommand creates a Command from its name. Unknown names yield an invalid Command.
func NewCommand(name string) Command {
	switch strings.ToLower(name) {
	case "start":
		return Start
	case "help":
		return Help
	case "status":
		return Status
	case "stop":
		return Stop
	default:
		return 0
	}
}

// Validate checks if the command is one of the fixed commands
func (c Command) Validate() error {
	if c < Start || c > Stop {
		return fmt.Errorf("invalid command: %d", c)
	}
	return nil
}

// RouteKind is the handler family an update is sent to
type RouteKind int

const (
	RouteIgnore RouteKind = iota + 1
	RouteCommand
	RouteFreeForm
)

// String returns the string representation of the route kind
func (r RouteKind) String() string {
	switch r {
	case RouteIgnore:
		return "ignore"
	case RouteCommand:
		return "command"
	case RouteFreeForm:
		return "free_form"
	default:
		return "unknown"
	}
}

// Route is the routing decision for one update
type Route struct {
	Kind    RouteKind
	Command Command
	Args    string
	// Text is the input for free-form handling, with any bot mention removed
	Text string
}

/* Router maps updates onto the fixed command table
 * Anything that is not one of our commands is free-form text
 */
type Router struct {
	botUsername string
	mention     *regexp.Regexp
}

// NewRouter creates a router for the bot with the given handle
func NewRouter(botUsername string) *Router {
	name := strings.TrimPrefix(botUsername, "@")
	return &Router{
		botUsername: name,
		mention:     regexp.MustCompile(`(?i)@` + regexp.QuoteMeta(name) + `\b`),
	}
}

// Route decides which handler family gets the update
func (r *Router) Route(u InboundUpdate) Route {
	if u.Kind != KindMessage {
		return Route{Kind: RouteIgnore}
	}
	text := strings.TrimSpace(u.Text)
	if text == "" {
		return Route{Kind: RouteIgnore}
	}

	if strings.HasPrefix(text, "/") {
		name, args := text[1:], ""
		if i := strings.IndexFunc(name, unicode.IsSpace); i >= 0 {
			name, args = name[:i], name[i:]
		}
		name, target, addressed := strings.Cut(name, "@")
		if addressed && !strings.EqualFold(target, r.botUsername) {
			return Route{Kind: RouteIgnore}
		}
		if cmd := NewCommand(name); cmd.Validate() == nil {
			return Route{Kind: RouteCommand, Command: cmd, Args: strings.TrimSpace(args)}
		}
	}

	if u.IsGroup() {
		stripped, ok := r.stripMention(text)
		if !ok || stripped == "" {
			return Route{Kind: RouteIgnore}
		}
		text = stripped
	}
	return Route{Kind: RouteFreeForm, Text: text}
}

func (r *Router) stripMention(text string) (string, bool) {
	loc := r.mention.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	return strings.TrimSpace(text[:loc[0]] + text[loc[1]:]), true
}
