package command

import (
	"regexp"
	"strings"
)

var (
	dateRangePattern  = regexp.MustCompile(`(?i)from\s+(\d{4}-\d{2}-\d{2})\s+to\s+(\d{4}-\d{2}-\d{2})`)
	singleDatePattern = regexp.MustCompile(`(?i)(?:(?:from|for|on)\s+)?(\d{4}-\d{2}-\d{2})`)
	searchPattern     = regexp.MustCompile(`(?i)(?:with|for|containing|about)\s+(.+)`)
)

// ExtractParams pulls parameters out of raw message text with regexes. It is
// a backstop for when the classifier omits params, never a replacement for
// classification.
func ExtractParams(message string) Params {
	var params Params

	if m := dateRangePattern.FindStringSubmatch(message); m != nil {
		params.StartDate = m[1]
		params.EndDate = m[2]
	} else if m := singleDatePattern.FindStringSubmatch(message); m != nil {
		params.Date = m[1]
	}

	if m := searchPattern.FindStringSubmatch(message); m != nil {
		term := strings.TrimSpace(m[1])
		// "for 2024-01-15" already matched as a date, and "for yesterday"
		// is a temporal phrase for the classifier, not a search term
		if term != params.Date &&
			(params.StartDate == "" || !strings.HasPrefix(term, params.StartDate)) &&
			!temporalTerm(term) {
			params.SearchTerm = term
		}
	}

	return params
}

// temporalTerms are relative-date phrases the classifier resolves against
// the current date; they never name a thing to search for.
var temporalTerms = map[string]bool{
	"today": true, "yesterday": true, "tomorrow": true,
	"this week": true, "last week": true,
	"this month": true, "last month": true,
	"this year": true, "last year": true,
}

func temporalTerm(s string) bool {
	return temporalTerms[strings.ToLower(s)]
}

// commandKeywords is the small set of words that suggest a message is
// addressed to the bot: receipt nouns, command verbs, and temporal words.
var commandKeywords = []string{
	"receipt", "receipts", "spending", "spend", "expense", "expenses",
	"report", "summary", "channel", "currency", "thread",
	"show", "list", "display", "add", "set", "create", "generate", "help",
	"today", "yesterday", "tomorrow", "week", "month", "date",
}

// MentionsCommand is a pure local pre-filter deciding whether text plausibly
// contains a command at all. It short-circuits classifier calls for ordinary
// chat.
func MentionsCommand(message string) bool {
	lowered := strings.ToLower(message)
	fields := strings.FieldsFunc(lowered, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9') && r != '-'
	})

	words := make(map[string]bool, len(fields))
	for _, f := range fields {
		words[f] = true
	}
	for _, keyword := range commandKeywords {
		if words[keyword] {
			return true
		}
	}
	// Bare ISO dates count as temporal words too
	return singleDatePattern.MatchString(message)
}

// StripMention removes a bot @mention from message text so only the command
// itself reaches the resolver.
func StripMention(messageText, botUsername string) string {
	if botUsername == "" {
		return strings.TrimSpace(messageText)
	}
	pattern := regexp.MustCompile(`(?i)\s*@` + regexp.QuoteMeta(botUsername) + `[,\s]*`)
	return strings.TrimSpace(pattern.ReplaceAllString(messageText, " "))
}
