package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/receiptbot/receiptbot/internal/bot"
	"github.com/receiptbot/receiptbot/internal/command"
	"github.com/receiptbot/receiptbot/internal/llm"
	"github.com/receiptbot/receiptbot/internal/receipt"
	"github.com/receiptbot/receiptbot/internal/report"
	"github.com/receiptbot/receiptbot/internal/scanning"
)

const version = "0.1.0"

func main() {
	fs := ff.NewFlagSet("receiptbot")
	var (
		dbPath      = fs.StringLong("db", "receiptbot.db", "Database file path")
		storagePath = fs.StringLong("storage", "./attachments", "Attachment archive directory")
		backend     = fs.StringLong("scanner", "gemini", "LLM backend: 'gemini' or 'ollama'")
		geminiKey   = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel = fs.StringLong("gemini-model", "gemini-2.5-flash", "Google Gemini model name")
		ollamaURL   = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel = fs.StringLong("ollama-model", "llava", "Ollama model name (e.g., llava, llava-phi3, bakllava)")
		roomID      = fs.StringLong("room", "cli", "Room id to operate in")
		userID      = fs.StringLong("user", "cli", "User id to operate as")
		scanFile    = fs.StringLong("scan", "", "Scan a receipt file and save it")
		fetchFile   = fs.StringLong("attachment", "", "Write an archived attachment to stdout")
		askText     = fs.StringLong("ask", "", "Resolve a natural-language command and execute it")
		runReport   = fs.BoolLong("report", "Build a spending report")
		category    = fs.StringLong("category", "", "Restrict the report to one category")
		showVersion = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("RECEIPTBOT"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var (
		client llm.Client
		err    error
	)
	switch *backend {
	case "gemini":
		apiKey := *geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			logger.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		client, err = llm.NewGemini(apiKey, *geminiModel)
	case "ollama":
		client, err = llm.NewOllama(*ollamaURL, *ollamaModel)
	default:
		logger.Error("Invalid backend", "type", *backend, "valid", "gemini or ollama")
		os.Exit(1)
	}
	if err != nil {
		logger.Error("Failed to initialize LLM backend", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	store, err := receipt.NewBoltStore(*dbPath)
	if err != nil {
		logger.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	archive, err := receipt.NewLocalArchive(*storagePath)
	if err != nil {
		logger.Error("Failed to initialize attachment archive", "error", err)
		os.Exit(1)
	}

	repo := receipt.NewRepositoryWithArchive(store, archive)
	channels := bot.NewChannelRegistry(store)
	resolver := command.NewResolver(client)
	handler := bot.NewHandler(repo, channels, resolver, client, report.NewTextSink(), logger)
	scope := bot.Scope{UserID: *userID, RoomID: *roomID}

	ctx := context.Background()

	switch {
	case *scanFile != "":
		if err := scanReceipt(ctx, scanning.NewExtractor(client), archive, repo, *scanFile, scope, logger); err != nil {
			logger.Error("Scan failed", "error", err)
			os.Exit(1)
		}

	case *fetchFile != "":
		data, err := archive.Get(*fetchFile)
		if err != nil {
			logger.Error("Failed to read archived attachment", "error", err)
			os.Exit(1)
		}
		os.Stdout.Write(data)

	case *askText != "":
		reply := handler.Execute(ctx, *askText, scope)
		fmt.Println(reply.Text)
		if reply.Artifact != nil {
			printArtifact(reply.Artifact)
		}

	case *runReport:
		intent := command.Intent{
			Command: command.CommandSpendingReport,
			Params:  command.Params{Category: *category},
		}
		reply := handler.Dispatch(ctx, intent, scope)
		fmt.Println(reply.Text)
		if reply.Artifact != nil {
			printArtifact(reply.Artifact)
		}

	default:
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintln(os.Stderr, "one of --scan, --ask, --report or --attachment is required")
		os.Exit(1)
	}
}

func scanReceipt(ctx context.Context, scan scanning.Scanner, archive receipt.Archive, repo *receipt.Repository, path string, scope bot.Scope, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	ingestor := bot.NewIngestor(scan, archive, logger)
	draft, err := ingestor.ProcessAttachment(ctx, data, "", path, scope, receipt.NewItemID())
	if err != nil {
		return err
	}
	if err := repo.Save(*draft); err != nil {
		return fmt.Errorf("saving receipt: %w", err)
	}

	fmt.Printf("Saved receipt: %d items, total %.2f\n", len(draft.Items), draft.TotalPrice)
	return nil
}

func printArtifact(artifact *report.Artifact) {
	fmt.Printf("--- %s ---\n", artifact.Filename)
	os.Stdout.Write(artifact.Data)
}
