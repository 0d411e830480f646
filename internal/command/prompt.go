package command

import (
	"fmt"
	"time"
)

// commandVocabulary describes every command to the classifier. It is
// versioned together with the worked examples below: the two must always be
// edited as a pair.
const commandVocabulary = `**Available Commands:**
- "list" - Show user's receipts in current room
- "room" - Show all receipts in current room
- "date" - Show user's receipts from specific date (requires date parameter)
- "date_range" - Show user's receipts within a date range (requires startDate and endDate parameters)
- "thread" - Show all receipts in current thread (must be in thread)
- "thread_user" - Show user's receipts in current thread (must be in thread)
- "add_channel" - Add current room to user's channel list
- "set_room_currency" - Set the currency for the current room (requires currency code, e.g., USD, EUR, JPY)
- "spending_report" - Create a report about the user spending.
    - Optional parameters:
        - startDate, endDate (for date range)
        - category (for filtering by category, e.g., Food, Electronics, etc.)
- "create_channel" - Create a new channel
    - Required parameters:
        - name (the channel name, e.g., "receipt-processing")
- "help" - Show available commands
- "unknown" - When request doesn't match any available command
`

// commandExamples anchors relative dates ("yesterday", "last week") to the
// current date and fixes preferred mappings for ambiguous phrasing: "show my
// receipts" is a listing (list), "show my spending" is a report
// (spending_report).
func commandExamples(today time.Time) string {
	return fmt.Sprintf(`Today's Date is %s
**Examples:**
User: "show me my receipts" → { "command": "list" }
User: "list my receipts" → { "command": "list" }
User: "show all receipts in this room" → { "command": "room" }
User: "show me receipt data" → { "command": "room" }
User: "show receipts from 2024-01-15" → { "command": "date", "params": { "date": "2024-01-15" } }
User: "show receipts on 2024-01-15" → { "command": "date", "params": { "date": "2024-01-15" } }
User: "show receipts for today" → { "command": "date", "params": { "date": "%s" } }
User: "show receipts for yesterday" → { "command": "date", "params": { "date": "%s" } }
User: "show receipts for tomorrow" → { "command": "date", "params": { "date": "%s" } }
User: "show receipts for last week" → { "command": "date_range", "params": { "startDate": "%s", "endDate": "%s" } }
User: "show receipts for last month" → { "command": "date_range", "params": { "startDate": "%s", "endDate": "%s" } }
User: "show receipts for 3 days ago" → { "command": "date", "params": { "date": "%s" } }
User: "show receipts from 2024-07-01 to 2024-07-31" → { "command": "date_range", "params": { "startDate": "2024-07-01", "endDate": "2024-07-31" } }
User: "show receipts in this thread" → { "command": "thread" }
User: "show my receipts in this thread" → { "command": "thread_user" }
User: "add this channel" → { "command": "add_channel" }
User: "set room currency USD" → { "command": "set_room_currency", "params": { "currency": "USD" } }
User: "change currency to EUR for this room" → { "command": "set_room_currency", "params": { "currency": "EUR" } }
User: "create a spending report" → { "command": "spending_report" }
User: "show my spending summary" → { "command": "spending_report" }
User: "show my food spending" → { "command": "spending_report", "params": { "category": "Food" } }
User: "generate electronics spending report for last month" → { "command": "spending_report", "params": { "startDate": "%s", "endDate": "%s", "category": "Electronics" } }
User: "create channel project-alpha" → { "command": "create_channel", "params": { "name": "project-alpha" } }
User: "make a new channel called finance-team" → { "command": "create_channel", "params": { "name": "finance-team" } }
User: "help me" → { "command": "help" }
User: "what's the weather?" → { "command": "unknown" }
User: "tell me a joke" → { "command": "unknown" }
`,
		iso(today),
		iso(today),
		iso(today.AddDate(0, 0, -1)),
		iso(today.AddDate(0, 0, 1)),
		iso(startOfWeek(today).AddDate(0, 0, -7)),
		iso(startOfWeek(today).AddDate(0, 0, -1)),
		iso(startOfMonth(today).AddDate(0, -1, 0)),
		iso(startOfMonth(today).AddDate(0, 0, -1)),
		iso(today.AddDate(0, 0, -3)),
		iso(startOfMonth(today).AddDate(0, -1, 0)),
		iso(startOfMonth(today).AddDate(0, 0, -1)),
	)
}

// translationPrompt is the full classifier prompt for one user message.
func translationPrompt(messageText string, today time.Time) string {
	return fmt.Sprintf(`You are a command interpreter that converts user requests into structured JSON commands.

**Strict Rules:**
1. ONLY return a JSON response with a "command" key and optional "params" key.
2. DO NOT include explanations, reasoning, or additional text.
3. DO NOT wrap the JSON in backticks or any other formatting.
4. DO NOT add metadata, comments, or response indicators.
5. The response MUST be instantly parsable.

%s

%s

ONLY RETURN THE JSON RESPONSE EXACTLY AS SHOWN ABOVE.

**User message:**
%s
`, commandVocabulary, commandExamples(today), messageText)
}

func iso(t time.Time) string {
	return t.Format("2006-01-02")
}

// startOfWeek returns the Monday of t's week.
func startOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return t.AddDate(0, 0, -(weekday - 1))
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
