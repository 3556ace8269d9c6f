// Package main is the kbagent CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Shashanka19/Knowledge-Based-Agent/internal/cli"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/config"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/embedding"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/extract"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/fileid"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/indexer"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/keyword"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/llm"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/models"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/orchestrator"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/prompt"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/retriever"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/server"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/sources"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/storage"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/vector"
	"github.com/Shashanka19/Knowledge-Based-Agent/internal/watcher"
	"github.com/Shashanka19/Knowledge-Based-Agent/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kbagent/config.yaml"

// loadConfig loads config from path. When path is the default, a config.yaml
// in the current directory takes precedence so running from the project dir
// picks up the project's config. Returns the path actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	// API keys commonly live in a .env next to the binary during development.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "server":
		runServer()
	case "ask":
		runAsk()
	case "ingest":
		runIngest()
	case "delete":
		runDelete()
	case "search":
		runSearch()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("kbagent version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedPath),
		zap.Bool("debug", debugMode))

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	idx := components.Indexer
	exts := cfg.Watch.Extensions
	roots := make([]watcher.Root, 0, len(cfg.Watch.Directories))
	for _, d := range cfg.Watch.Directories {
		roots = append(roots, watcher.Root{Path: d.Path, Category: d.Category})
	}
	watchOpts := []watcher.Option{}
	if debugMode {
		watchOpts = append(watchOpts, watcher.WithLogger(logger))
	}
	watchSvc := watcher.New(roots, exts, cfg.Watch.RecursiveOrDefault(),
		func(path, category string) {
			if err := idx.IndexFile(context.Background(), path, category, exts); err != nil {
				logger.Warn("watch index failed", zap.String("path", path), zap.Error(err))
			}
		},
		func(path string) {
			if err := idx.DeleteFile(context.Background(), path); err != nil {
				logger.Warn("watch delete failed", zap.String("path", path), zap.Error(err))
			}
		},
		watchOpts...,
	)
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if len(roots) > 0 {
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		watchSvc.SyncExistingFiles()
	}

	srv := server.NewServer(
		components.Orchestrator,
		components.Indexer,
		components.Storage,
		components.VectorIndex,
		components.KeywordIndex,
		cfg,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if cfg.Storage.VectorIndexPath != "" {
		if err := components.VectorIndex.Save(cfg.Storage.VectorIndexPath); err != nil {
			logger.Warn("vector index save failed",
				zap.String("path", cfg.Storage.VectorIndexPath), zap.Error(err))
		}
	}
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// buildQuestion joins positional args so multi-word questions work with or
// without shell quoting.
func buildQuestion(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// argsReorder moves flags that appear after positional arguments to the front
// so flag.Parse sees them. The flag package stops at the first non-flag
// argument, which would silently drop trailing flags.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runAsk() {
	askArgs := argsReorder(os.Args[2:])
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", `server URL (empty = answer directly without a running server)`)
	category := fs.String("category", "", "restrict retrieval to one category")
	topK := fs.Int("top-k", 0, "number of passages to retrieve (0 = default)")
	multiSource := fs.Bool("multi-source", false, "also consult the optional sources")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(askArgs)

	question := buildQuestion(fs.Args())
	if question == "" {
		fmt.Println("Usage: kbagent ask [flags] <question>")
		os.Exit(1)
	}

	format, err := cli.ParseFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	query := &models.Query{
		Question:    question,
		Category:    *category,
		TopK:        *topK,
		MultiSource: *multiSource,
	}

	var answer *models.Answer
	if *serverURL != "" {
		res, err := askViaHTTP(*serverURL, query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
			os.Exit(1)
		}
		answer = res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger)
		if err != nil {
			logger.Fatal("Failed to initialize", zap.Error(err))
		}
		defer components.Close()

		answer, err = components.Orchestrator.Ask(context.Background(), query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
			os.Exit(1)
		}
	}

	if err := cli.WriteAnswer(os.Stdout, answer, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func askViaHTTP(serverURL string, query *models.Query) (*models.Answer, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/ask", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var answer models.Answer
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &answer, nil
}

func runIngest() {
	ingestArgs := argsReorder(os.Args[2:])
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	category := fs.String("category", "general", "category to ingest under")
	_ = fs.Parse(ingestArgs)

	if fs.NArg() < 1 {
		fmt.Println("Usage: kbagent ingest [flags] <file-or-directory>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()
	defer components.SaveVectorIndex(cfg, logger)

	ctx := context.Background()
	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("Failed to stat path: %v\n", err)
		os.Exit(1)
	}
	if info.IsDir() {
		n, err := components.Indexer.IndexDirectory(ctx, path, *category, cfg.Watch.Extensions)
		if err != nil {
			fmt.Printf("Ingesting directory failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Ingested %d file(s) from %s under %q\n", n, path, *category)
		return
	}
	// Single file: no extension filter.
	if err := components.Indexer.IndexFile(ctx, path, *category, nil); err != nil {
		fmt.Printf("Ingesting failed: %v\n", err)
		os.Exit(1)
	}
	absPath, _ := filepath.Abs(path)
	fmt.Printf("Document ingested: %s\n", fileid.FileDocID(absPath))
}

func runDelete() {
	deleteArgs := argsReorder(os.Args[2:])
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	byFile := fs.Bool("file", false, "treat the argument as a file path instead of a document ID")
	_ = fs.Parse(deleteArgs)

	if fs.NArg() < 1 {
		fmt.Println("Usage: kbagent delete [flags] <document-id | path>")
		os.Exit(1)
	}
	docID := fs.Arg(0)
	if *byFile {
		abs, _ := filepath.Abs(docID)
		docID = fileid.FileDocID(abs)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()
	defer components.SaveVectorIndex(cfg, logger)

	if err := components.Indexer.DeleteDocument(context.Background(), docID); err != nil {
		fmt.Printf("Deletion failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Document deleted: %s\n", docID)
}

func runSearch() {
	searchArgs := argsReorder(os.Args[2:])
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = search the local index directly)")
	category := fs.String("category", "", "restrict to one category")
	limit := fs.Int("limit", 10, "number of results")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(searchArgs)

	format, err := cli.ParseFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	query := buildQuestion(fs.Args())
	if query == "" {
		fmt.Println("Usage: kbagent search [flags] <query>")
		os.Exit(1)
	}

	var results []keyword.KeywordResult
	if *serverURL != "" {
		res, err := searchViaHTTP(*serverURL, query, *category, *limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
		results = res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger)
		if err != nil {
			logger.Fatal("Failed to initialize", zap.Error(err))
		}
		defer components.Close()

		results, err = components.KeywordIndex.Search(context.Background(), query, *category, *limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
	}

	if err := cli.WriteKeywordResults(os.Stdout, results, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func searchViaHTTP(serverURL, query, category string, limit int) ([]keyword.KeywordResult, error) {
	u := fmt.Sprintf("%s/api/v1/search?q=%s&limit=%d", serverURL, url.QueryEscape(query), limit)
	if category != "" {
		u += "&category=" + url.QueryEscape(category)
	}
	resp, err := http.Get(u)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var out struct {
		Results []keyword.KeywordResult `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out.Results, nil
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = read local storage)")
	_ = fs.Parse(os.Args[2:])

	var status map[string]any
	if *serverURL != "" {
		resp, err := http.Get(*serverURL + "/api/v1/status")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Fprintf(os.Stderr, "Server returned %d: %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
			fmt.Fprintf(os.Stderr, "Decode failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger)
		if err != nil {
			logger.Fatal("Failed to initialize", zap.Error(err))
		}
		defer components.Close()

		ctx := context.Background()
		docCount, err := components.Storage.CountDocuments(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count documents failed: %v\n", err)
			os.Exit(1)
		}
		chunkCount, _ := components.Storage.CountChunks(ctx)
		byCategory, _ := components.Storage.CountDocumentsByCategory(ctx)
		status = map[string]any{
			"documents":             docCount,
			"chunks":                chunkCount,
			"documents_by_category": byCategory,
			"vector_index_size":     components.VectorIndex.Size(),
			"embedding_dimensions":  components.VectorIndex.Dimensions(),
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(status); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

// Components holds the initialized services behind one Ask pipeline.
type Components struct {
	Storage      storage.Storage
	Embedder     embedding.Embedder
	VectorIndex  vector.Index
	KeywordIndex keyword.KeywordIndex
	Indexer      *indexer.Indexer
	Orchestrator *orchestrator.Orchestrator
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.VectorIndex != nil {
		_ = c.VectorIndex.Close()
	}
	if c.KeywordIndex != nil {
		_ = c.KeywordIndex.Close()
	}
}

// SaveVectorIndex persists the in-memory vectors so the next process start
// does not need a full re-embed.
func (c *Components) SaveVectorIndex(cfg *config.Config, logger *zap.Logger) {
	if cfg.Storage.VectorIndexPath == "" || c.VectorIndex == nil {
		return
	}
	if err := c.VectorIndex.Save(cfg.Storage.VectorIndexPath); err != nil {
		logger.Warn("vector index save failed",
			zap.String("path", cfg.Storage.VectorIndexPath), zap.Error(err))
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	embedder, err := embedding.New(cfg.Embedding)
	if err != nil {
		logger.Warn("embedding provider unavailable, using offline embedder", zap.Error(err))
		embedder = embedding.NewOfflineEmbedder(cfg.Embedding.Dimensions)
	}

	vectorIndex, err := vector.NewMemoryIndex(embedder.Dimensions())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vector index: %w", err)
	}
	if cfg.Storage.VectorIndexPath != "" {
		if loadErr := vectorIndex.Load(cfg.Storage.VectorIndexPath); loadErr != nil {
			logger.Warn("vector index load skipped",
				zap.String("path", cfg.Storage.VectorIndexPath), zap.Error(loadErr))
		}
	}
	logger.Info("vector index ready",
		zap.Int("dimensions", vectorIndex.Dimensions()),
		zap.Int("vectors", vectorIndex.Size()))

	keywordIndex, err := keyword.NewBleveIndex(cfg.Storage.KeywordIndexPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize keyword index: %w", err)
	}

	idx := indexer.NewIndexer(store, embedder, vectorIndex, keywordIndex,
		cfg.Retrieval, extract.NewExtractor(), indexer.WithLogger(logger))

	r := retriever.NewRetriever(embedder, vectorIndex, store, retriever.WithLogger(logger))
	assembler := prompt.NewAssembler(cfg.Retrieval.PromptBudget)
	client := llm.NewClient(cfg.Answer, llm.WithLogger(logger))

	orchOpts := []orchestrator.Option{
		orchestrator.WithLogger(logger),
		orchestrator.WithSourceTimeout(time.Duration(cfg.Sources.PerSourceTimeoutSeconds) * time.Second),
	}
	if extra := buildSources(cfg, client, logger); len(extra) > 0 {
		orchOpts = append(orchOpts, orchestrator.WithSources(extra...))
	}
	orch := orchestrator.New(r, assembler, client, orchOpts...)

	return &Components{
		Storage:      store,
		Embedder:     embedder,
		VectorIndex:  vectorIndex,
		KeywordIndex: keywordIndex,
		Indexer:      idx,
		Orchestrator: orch,
	}, nil
}

// buildSources assembles the optional sources for multi-source mode from
// config toggles.
func buildSources(cfg *config.Config, client *llm.Client, logger *zap.Logger) []sources.Source {
	var out []sources.Source
	if cfg.Sources.WebSearch.Enabled {
		out = append(out, sources.NewWebSearchSource(cfg.Sources.WebSearch, logger))
	}
	if cfg.Sources.CodingAssistant.Enabled {
		out = append(out, sources.NewCodingAssistantSource())
	}
	if cfg.Sources.Chat.Enabled {
		out = append(out, sources.NewChatSource(client))
	}
	return out
}

func printUsage() {
	fmt.Println(`kbagent - Knowledge base question answering over your documents

Usage:
  kbagent server [flags]            Start the HTTP server
  kbagent ask [flags] <question>    Ask a question against the knowledge base
  kbagent ingest [flags] <path>     Ingest a file or directory
  kbagent search [flags] <query>    Keyword search over indexed documents
  kbagent delete [flags] <id>       Delete a document
  kbagent status [flags]            Show document and index status
  kbagent version                   Show version
  kbagent help                      Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/kbagent/config.yaml)
  --debug            Enable debug logging

Ask Flags:
  --server string    Server URL (default: http://localhost:8080). Use --server "" to answer without a running server.
  --category string  Restrict retrieval to one category (general, hr, policies, sops, technical)
  --top-k int        Number of passages to retrieve
  --multi-source     Also consult the optional sources (web search, coding assistant, chat)
  --output string    Output format: text or json (default: text)

Ingest Flags:
  --config string    Config file path
  --category string  Category to ingest under (default: general)

Delete Flags:
  --config string    Config file path
  --file             Treat the argument as a file path instead of a document ID

Examples:
  kbagent server
  kbagent ask "How many PTO days do we get?"
  kbagent ask --category hr --output json "parental leave policy"
  kbagent ask --multi-source "set up the VPN on macOS"
  kbagent ingest --category policies ./docs/policies
  kbagent search expense report
  kbagent delete --file ./docs/policies/expenses.md
  kbagent status`)
}
