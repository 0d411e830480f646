package bot

// User-facing response texts. Kept in one place so the chat surface and the
// CLI print the same wording.
const (
	InvalidImageResponse = "I'm sorry, but the image you uploaded is not recognized as a valid receipt. Please try again with a clearer image of a receipt."

	GeneralErrorResponse = "Unable to process the receipt data."

	EmptyRoomReceiptsResponse = "You don't have any receipts saved in this room."

	FailedGetReceiptsResponse = "Sorry, there was an error retrieving your receipts."

	LLMUnavailableResponse = "I wasn't able to reach the LLM service right now. Please check the LLM configuration and try again."

	emptyRoomAllResponse = "No receipts found in this room."

	emptyDateResponse = "No receipts found for this date."

	emptyRangeResponse = "No receipts found for this date range."

	emptyThreadResponse = "No receipts found for this thread."

	missingDateResponse = "Please provide a date in YYYY-MM-DD format."

	invalidDateResponse = "Invalid date format. Please use YYYY-MM-DD format."

	threadOnlyResponse = "This command can only be used inside a thread."

	channelAddedResponse = "This channel has been added to your channel list."

	channelAddFailedResponse = "Failed to add this channel to your channel list."

	missingCurrencyResponse = "Please tell me which currency to use, for example USD or VND."

	missingChannelNameResponse = "Please tell me what to name the new channel."

	channelCreateUnsupportedResponse = "Creating channels is not available here."

	noReportDataResponse = "There is no spending data to report on yet."

	reportExportFailedResponse = "I built your report but could not export it. Please try again."

	unknownCommandResponse = "I didn't understand that command. Just ask me naturally what you want to do with your receipts, or say 'help' to see what I can do!"

	helpResponse = `Receipt Command Help

Available commands:
- Show my receipts - "show me my receipts" / "list my receipts"
- Show room receipts - "show all receipts in this room" / "room receipts"
- Show receipts by date - "show receipts from 2024-01-15" / "receipts from yesterday"
- Show receipts in a date range - "receipts from 2024-01-01 to 2024-01-31"
- Show thread receipts - "show receipts in this thread" (must be in thread)
- Show my thread receipts - "show my receipts in this thread" (must be in thread)
- Add channel - "add this channel to my list" / "subscribe to this room"
- Set room currency - "set this room's currency to VND"
- Spending report - "make a spending report for last month" (optionally by category)
- Help - "help" / "what can you do?"

You can upload receipt images without mentioning me - they are processed automatically.`
)
