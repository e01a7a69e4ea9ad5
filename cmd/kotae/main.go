// Package main is the Kotae CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/kotae/internal/answer"
	"github.com/hyperjump/kotae/internal/chunker"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/extract"
	"github.com/hyperjump/kotae/internal/generate"
	"github.com/hyperjump/kotae/internal/ingest"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/server"
	"github.com/hyperjump/kotae/internal/storage"
	"github.com/hyperjump/kotae/internal/vectorstore"
	"github.com/hyperjump/kotae/internal/watcher"
	"github.com/hyperjump/kotae/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kotae/config.yaml"

// loadConfig loads config from path. When path is the default, a config.yaml
// in the current directory takes precedence (for development). Missing files
// fall back to pure defaults so "kotae server" works out of the box.
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
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "upload":
		runUpload()
	case "import":
		runImport()
	case "chat":
		runChat()
	case "clear":
		runClear()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("kotae version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	mockEmbedder := fs.Bool("mock-embedder", false, "use deterministic mock embeddings instead of the ONNX model")
	memoryStore := fs.Bool("memory-store", false, "use an in-process vector store instead of Qdrant")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
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
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger, *mockEmbedder, *memoryStore)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	var watchSvc *watcher.Watcher
	if len(cfg.Watch.Directories) > 0 {
		ing := components.Ingestor
		watchSvc = watcher.New(
			cfg.Watch.Directories,
			cfg.Watch.Extensions,
			cfg.Watch.RecursiveOrDefault(),
			func(path string) {
				content, readErr := os.ReadFile(path)
				if readErr != nil {
					logger.Warn("watch read failed", zap.String("path", path), zap.Error(readErr))
					return
				}
				if _, ingErr := ing.IngestFile(context.Background(), content, filepath.Base(path)); ingErr != nil {
					logger.Warn("watch ingest failed", zap.String("path", path), zap.Error(ingErr))
				}
			},
			logger,
		)
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		watchSvc.SyncExisting()
	}

	srv := server.NewServer(
		components.Ingestor,
		components.Answerer,
		components.Store,
		components.History,
		&cfg.Server,
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
	if watchSvc != nil {
		watchSvc.Stop()
	}
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runUpload() {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: kotae upload [flags] <file>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	file, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err == nil {
		_, err = io.Copy(part, file)
	}
	if err == nil {
		err = mw.Close()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build request: %v\n", err)
		os.Exit(1)
	}

	resp, err := http.Post(*serverURL+"/upload", mw.FormDataContentType(), &buf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Upload failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	printResponse(resp)
}

func runImport() {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	source := fs.String("source", "cms", "source label for the imported content")
	_ = fs.Parse(os.Args[2:])

	var content string
	if fs.NArg() >= 1 {
		data, err := os.ReadFile(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read file: %v\n", err)
			os.Exit(1)
		}
		content = string(data)
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read stdin: %v\n", err)
			os.Exit(1)
		}
		content = string(data)
	}

	body, _ := json.Marshal(models.CMSImport{Content: content, Source: *source})
	resp, err := http.Post(*serverURL+"/import-cms", "application/json", bytes.NewReader(body))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	printResponse(resp)
}

func runChat() {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: kotae chat [flags] <question>")
		os.Exit(1)
	}
	query := strings.TrimSpace(strings.Join(fs.Args(), " "))

	body, _ := json.Marshal(models.ChatRequest{Query: query})
	resp, err := http.Post(*serverURL+"/chat", "application/json", bytes.NewReader(body))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Chat failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		fmt.Fprintf(os.Stderr, "Server returned %d: %s\n", resp.StatusCode, string(b))
		os.Exit(1)
	}

	var result models.Answer
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse response: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(result.Text)
	if len(result.Sources) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for _, src := range result.Sources {
			fmt.Printf("  [%.3f] %s (%s)\n", src.Score, src.Source, src.Type)
		}
	}
}

func runClear() {
	fs := flag.NewFlagSet("clear", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[2:])

	req, _ := http.NewRequest(http.MethodDelete, *serverURL+"/clear", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Clear failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	printResponse(resp)
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[2:])

	resp, err := http.Get(*serverURL + "/status")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	printResponse(resp)
}

// printResponse pretty-prints a JSON API response, exiting non-zero on errors.
func printResponse(resp *http.Response) {
	b, _ := io.ReadAll(resp.Body)
	var pretty bytes.Buffer
	if json.Indent(&pretty, b, "", "  ") == nil {
		b = pretty.Bytes()
	}
	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Server returned %d: %s\n", resp.StatusCode, string(b))
		os.Exit(1)
	}
	fmt.Println(string(b))
}

// Components holds initialized services.
type Components struct {
	Embedder *embedding.Service
	Store    vectorstore.Store
	History  storage.History
	Ingestor *ingest.Ingestor
	Answerer *answer.Answerer
}

func (c *Components) Close() {
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.History != nil {
		_ = c.History.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, mockEmbedder, memoryStore bool) (*Components, error) {
	ch := chunker.New(cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap)
	extractor := extract.NewExtractor(ch, cfg.Chunking.MaxTabularRows, logger)

	var factory embedding.ModelFactory
	if mockEmbedder {
		factory = func() (embedding.Model, error) {
			return embedding.NewMockModel(cfg.Embedding.Dimensions), nil
		}
	} else {
		factory = func() (embedding.Model, error) {
			m, err := embedding.NewONNXModel(cfg.Embedding.ModelPath, cfg.Embedding.Dimensions, cfg.Embedding.MaxTokens)
			if err != nil {
				return nil, err
			}
			return m, nil
		}
	}
	embedder := embedding.NewService(factory, cfg.Embedding.Dimensions, cfg.Embedding.MaxChars, cfg.Embedding.CacheSize, logger)

	var store vectorstore.Store
	if memoryStore {
		store = vectorstore.NewMemory(cfg.Embedding.Dimensions, logger)
	} else {
		store = vectorstore.NewQdrant(cfg.Qdrant, cfg.Embedding.Dimensions, logger)
	}

	var history storage.History
	if cfg.Storage.DatabasePath != "" {
		h, err := storage.NewSQLiteHistory(cfg.Storage.DatabasePath)
		if err != nil {
			logger.Warn("ingest history unavailable", zap.String("path", cfg.Storage.DatabasePath), zap.Error(err))
		} else {
			history = h
		}
	}

	generator := generate.NewOllama(cfg.Generation, logger)
	ingestor := ingest.NewIngestor(extractor, embedder, store, history, cfg.Chunking.MinSentenceChars, logger)
	answerer := answer.NewAnswerer(embedder, store, generator, &cfg.Retrieval, logger)

	return &Components{
		Embedder: embedder,
		Store:    store,
		History:  history,
		Ingestor: ingestor,
		Answerer: answerer,
	}, nil
}

func printUsage() {
	fmt.Println(`kotae - Document Q&A over your own files

Usage:
  kotae server [flags]            Start the HTTP server
  kotae upload [flags] <file>     Upload a document to a running server
  kotae import [flags] [file]     Import CMS text (from file or stdin)
  kotae chat [flags] <question>   Ask a question about the documents
  kotae clear [flags]             Delete all stored document chunks
  kotae status [flags]            Show collection and ingest status
  kotae version                   Show version
  kotae help                      Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/kotae/config.yaml)
  --debug            Enable debug logging
  --mock-embedder    Use deterministic mock embeddings instead of the ONNX model
  --memory-store     Use an in-process vector store instead of Qdrant

Client Flags (upload, import, chat, clear, status):
  --server string    Server URL (default: http://localhost:8080)
  --source string    Source label for import (default: cms)

Examples:
  kotae server
  kotae upload report.pdf
  kotae import --source "release-notes" notes.txt
  kotae chat "What does the report conclude?"
  kotae status
  kotae clear`)
}
