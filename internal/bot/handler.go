package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/receiptbot/receiptbot/internal/command"
	"github.com/receiptbot/receiptbot/internal/llm"
	"github.com/receiptbot/receiptbot/internal/money"
	"github.com/receiptbot/receiptbot/internal/receipt"
	"github.com/receiptbot/receiptbot/internal/report"
)

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// RoomCreator creates a new room on the chat surface and returns its id.
// Surfaces that cannot create rooms leave it nil.
type RoomCreator interface {
	CreateRoom(ctx context.Context, name, ownerID string) (string, error)
}

// Scope identifies where a message came from. ThreadID is empty outside a
// thread.
type Scope struct {
	UserID   string
	RoomID   string
	ThreadID string
}

// Reply is what the handler wants said back. Artifact is non-nil only for
// replies that carry a file, like a rendered spending report.
type Reply struct {
	Text     string
	Artifact *report.Artifact
}

// Handler executes resolved intents against storage and reporting. It
// returns user-facing reply text; delivering the reply is the caller's
// concern.
type Handler struct {
	repo        *receipt.Repository
	channels    *ChannelRegistry
	resolver    *command.Resolver
	client      llm.Client
	sink        report.Sink
	categorizer receipt.Categorizer
	rooms       RoomCreator
	timeSource  TimeSource
	logger      *slog.Logger
}

// NewHandler creates a Handler with default categorizer and time source.
func NewHandler(repo *receipt.Repository, channels *ChannelRegistry, resolver *command.Resolver, client llm.Client, sink report.Sink, logger *slog.Logger) *Handler {
	return &Handler{
		repo:        repo,
		channels:    channels,
		resolver:    resolver,
		client:      client,
		sink:        sink,
		categorizer: NewLLMCategorizer(client),
		timeSource:  &defaultTimeSource{},
		logger:      logger,
	}
}

// NewHandlerWithDeps creates a Handler with custom dependencies for testing
func NewHandlerWithDeps(repo *receipt.Repository, channels *ChannelRegistry, resolver *command.Resolver, client llm.Client, sink report.Sink, categorizer receipt.Categorizer, rooms RoomCreator, timeSrc TimeSource, logger *slog.Logger) *Handler {
	return &Handler{
		repo:        repo,
		channels:    channels,
		resolver:    resolver,
		client:      client,
		sink:        sink,
		categorizer: categorizer,
		rooms:       rooms,
		timeSource:  timeSrc,
		logger:      logger,
	}
}

// Execute resolves the message text into an intent and dispatches it.
// Ordinary chat never reaches the classifier: the local keyword pre-filter
// short-circuits it with a silent empty reply.
func (h *Handler) Execute(ctx context.Context, messageText string, scope Scope) Reply {
	if !command.MentionsCommand(messageText) {
		return Reply{}
	}
	intent := h.resolver.Resolve(ctx, messageText, h.timeSource.Now())
	return h.Dispatch(ctx, intent, scope)
}

// Dispatch runs a resolved intent. Every branch produces a reply; failures
// become user-facing error texts, never panics or empty replies.
func (h *Handler) Dispatch(ctx context.Context, intent command.Intent, scope Scope) Reply {
	h.logger.Info("executing command", "command", intent.Command, "room", scope.RoomID, "user", scope.UserID)

	switch intent.Command {
	case command.CommandList:
		receipts, err := h.repo.ByUserAndRoom(scope.UserID, scope.RoomID)
		return h.listReply(receipts, err, scope, EmptyRoomReceiptsResponse)

	case command.CommandRoom:
		receipts, err := h.repo.ByRoom(scope.RoomID)
		return h.listReply(receipts, err, scope, emptyRoomAllResponse)

	case command.CommandDate:
		date := intent.Params.Date
		if date == "" {
			return Reply{Text: missingDateResponse}
		}
		if _, err := time.Parse(money.ISODate, date); err != nil {
			return Reply{Text: invalidDateResponse}
		}
		receipts, err := h.repo.ByRoomAndDate(scope.RoomID, date)
		return h.listReply(receipts, err, scope, emptyDateResponse)

	case command.CommandDateRange:
		start, end := intent.Params.StartDate, intent.Params.EndDate
		if start == "" || end == "" {
			return Reply{Text: missingDateResponse}
		}
		receipts, err := h.repo.ByUserAndDateRange(scope.UserID, scope.RoomID, start, end)
		return h.listReply(receipts, err, scope, emptyRangeResponse)

	case command.CommandThread:
		if scope.ThreadID == "" {
			return Reply{Text: threadOnlyResponse}
		}
		receipts, err := h.repo.ByThread(scope.RoomID, scope.ThreadID)
		return h.listReply(receipts, err, scope, emptyThreadResponse)

	case command.CommandThreadUser:
		if scope.ThreadID == "" {
			return Reply{Text: threadOnlyResponse}
		}
		receipts, err := h.repo.ByThreadAndUser(scope.RoomID, scope.ThreadID, scope.UserID)
		return h.listReply(receipts, err, scope, emptyThreadResponse)

	case command.CommandAddChannel:
		if err := h.channels.Add(scope.RoomID, scope.UserID); err != nil {
			h.logger.Error("adding channel", "error", err)
			return Reply{Text: channelAddFailedResponse}
		}
		return Reply{Text: channelAddedResponse}

	case command.CommandSetRoomCurrency:
		code := strings.ToUpper(strings.TrimSpace(intent.Params.Currency))
		if code == "" {
			return Reply{Text: missingCurrencyResponse}
		}
		if err := h.channels.SetCurrency(scope.RoomID, code); err != nil {
			h.logger.Error("setting room currency", "error", err)
			return Reply{Text: GeneralErrorResponse}
		}
		return Reply{Text: fmt.Sprintf("Room currency set to %s.", code)}

	case command.CommandCreateChannel:
		return h.createChannel(ctx, intent.Params.Name, scope)

	case command.CommandSpendingReport:
		return h.spendingReport(ctx, intent.Params, scope)

	case command.CommandHelp:
		return Reply{Text: helpResponse}

	default:
		return Reply{Text: unknownCommandResponse}
	}
}

// listReply turns a repository query result into a reply: error text,
// empty-set text, or the formatted summary in the room's currency.
func (h *Handler) listReply(receipts []receipt.Receipt, err error, scope Scope, emptyMessage string) Reply {
	if err != nil {
		h.logger.Error("retrieving receipts", "error", err)
		return Reply{Text: FailedGetReceiptsResponse}
	}
	if len(receipts) == 0 {
		return Reply{Text: emptyMessage}
	}

	currency, err := h.channels.Currency(scope.RoomID)
	if err != nil {
		h.logger.Warn("reading room currency", "error", err)
		currency = DefaultCurrency
	}
	return Reply{Text: formatReceiptsSummary(receipts, currency)}
}

func (h *Handler) createChannel(ctx context.Context, name string, scope Scope) Reply {
	if h.rooms == nil {
		return Reply{Text: channelCreateUnsupportedResponse}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Reply{Text: missingChannelNameResponse}
	}

	roomID, err := h.rooms.CreateRoom(ctx, name, scope.UserID)
	if err != nil {
		h.logger.Error("creating channel", "error", err, "name", name)
		return Reply{Text: GeneralErrorResponse}
	}
	if err := h.channels.Add(roomID, scope.UserID); err != nil {
		h.logger.Error("adding created channel to list", "error", err)
	}
	return Reply{Text: fmt.Sprintf("Channel %q created and added to your channel list.", name)}
}

func (h *Handler) spendingReport(ctx context.Context, params command.Params, scope Scope) Reply {
	var (
		receipts []receipt.Receipt
		err      error
	)
	switch {
	case params.StartDate != "" && params.EndDate != "":
		receipts, err = h.repo.ByUserAndDateRange(scope.UserID, scope.RoomID, params.StartDate, params.EndDate)
	case params.Date != "":
		receipts, err = h.repo.ByRoomAndDate(scope.RoomID, params.Date)
	default:
		receipts, err = h.repo.ByUserAndRoom(scope.UserID, scope.RoomID)
	}
	if err != nil {
		h.logger.Error("retrieving receipts for report", "error", err)
		return Reply{Text: FailedGetReceiptsResponse}
	}
	if len(receipts) == 0 {
		return Reply{Text: noReportDataResponse}
	}

	spending, err := receipt.BuildCategorySummary(ctx, receipts, h.categorizer, params.Category)
	if errors.Is(err, receipt.ErrNoData) {
		return Reply{Text: fmt.Sprintf("No spending found for category %q.", params.Category)}
	}
	if err != nil {
		h.logger.Error("building category summary", "error", err)
		return Reply{Text: LLMUnavailableResponse}
	}

	currency, err := h.channels.Currency(scope.RoomID)
	if err != nil {
		currency = DefaultCurrency
	}
	spending.Currency = currency
	spending.Summary = summarizeSpending(ctx, h.client, spending)

	artifact, err := h.sink.Render(ctx, spending, report.FormatText)
	if err != nil {
		h.logger.Error("rendering report", "error", err)
		return Reply{Text: reportExportFailedResponse}
	}
	return Reply{
		Text:     fmt.Sprintf("Here is your spending report from %s to %s.", spending.StartDate, spending.EndDate),
		Artifact: artifact,
	}
}

// formatReceiptsSummary renders receipts as a chat message in the room's
// currency. Unit prices are shown as stored; line totals multiply by
// quantity.
func formatReceiptsSummary(receipts []receipt.Receipt, currency string) string {
	sym := money.Symbol(currency)
	var grandTotal float64
	var b strings.Builder

	fmt.Fprintf(&b, "📋 *Your Receipts (%d)* 📋\n\n", len(receipts))
	for i, rcpt := range receipts {
		grandTotal += rcpt.TotalPrice

		fmt.Fprintf(&b, "*%d. Receipt from %s*\n", i+1, rcpt.UploadedDate)
		b.WriteString("*Items:*\n")
		for _, item := range rcpt.Items {
			lineTotal := money.Round(item.Price * float64(item.Quantity))
			if item.Quantity > 1 {
				fmt.Fprintf(&b, "• %s (%d x %s%s) - %s%s\n",
					item.Name, item.Quantity,
					sym, money.FormatAmount(item.Price, currency),
					sym, money.FormatAmount(lineTotal, currency))
			} else {
				fmt.Fprintf(&b, "• %s - %s%s\n", item.Name, sym, money.FormatAmount(lineTotal, currency))
			}
		}

		fmt.Fprintf(&b, "*Extra Fees:* %s%s\n", sym, money.FormatAmount(rcpt.ExtraFee, currency))
		if rcpt.Discounts != 0 {
			fmt.Fprintf(&b, "*Discounts:* %s%s\n", sym, money.FormatAmount(rcpt.Discounts, currency))
		}
		fmt.Fprintf(&b, "*Total:* %s%s", sym, money.FormatAmount(rcpt.TotalPrice, currency))

		if i < len(receipts)-1 {
			b.WriteString("\n\n---\n\n")
		}
	}

	fmt.Fprintf(&b, "\n\n*Total Amount Across All Receipts:* %s%s", sym, money.FormatAmount(money.Round(grandTotal), currency))
	return b.String()
}
