package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/duckarchive/inspector-cli/internal/catalog"
	"github.com/duckarchive/inspector-cli/internal/db"
	"github.com/duckarchive/inspector-cli/internal/fsimport"
	"github.com/duckarchive/inspector-cli/internal/fsimport/parser"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		pool, err := catalogPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		parsers, err := loadParsers()
		if err != nil {
			return err
		}

		opts, err := importOptions()
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newServer(pool, parsers, opts, cfg.Import.FetchLimit).routes(),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// server holds the shared state of the HTTP API. Import runs are gated to a
// single in-flight batch.
type server struct {
	pool       db.Pool
	store      *catalog.Store
	parsers    []parser.Parser
	opts       fsimport.Options
	fetchLimit int

	importMu   sync.Mutex
	importGate *rate.Limiter
}

func newServer(pool db.Pool, parsers []parser.Parser, opts fsimport.Options, fetchLimit int) *server {
	return &server{
		pool:       pool,
		store:      catalog.NewStore(pool),
		parsers:    parsers,
		opts:       opts,
		fetchLimit: fetchLimit,
		importGate: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/api/items/fresh", s.handleFreshItems)
	r.Post("/api/parse", s.handleParse)
	r.Post("/api/import", s.handleImport)
	r.Post("/api/import/check", s.handleImportCheck)
	r.Post("/api/structure/check", s.handleStructureCheck)
	r.Post("/api/structure", s.handleStructureApply)

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type freshItem struct {
	ID                uuid.UUID `json:"id"`
	ProjectID         uuid.UUID `json:"project_id"`
	ArchiveCode       string    `json:"archive_code"`
	DGS               string    `json:"dgs"`
	Volume            string    `json:"volume"`
	Volumes           string    `json:"volumes"`
	ArchivalReference string    `json:"archival_reference"`
	Title             string    `json:"title"`
	DateRange         string    `json:"date_range"`
}

func (s *server) handleFreshItems(w http.ResponseWriter, r *http.Request) {
	limit := s.fetchLimit
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	items, err := s.store.ListFreshItems(r.Context(), limit)
	if err != nil {
		zap.L().Error("list fresh items failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	out := make([]freshItem, 0, len(items))
	for _, it := range items {
		out = append(out, freshItem{
			ID:                it.ID,
			ProjectID:         it.ProjectID,
			ArchiveCode:       it.ArchiveCode,
			DGS:               it.DGS,
			Volume:            it.Volume,
			Volumes:           it.Volumes,
			ArchivalReference: it.ArchivalReference,
			Title:             it.Title,
			DateRange:         it.DateRange,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out, "count": len(out)})
}

type parseRequest struct {
	Items []struct {
		ArchiveCode       string `json:"archive_code"`
		DGS               string `json:"dgs"`
		Volume            string `json:"volume"`
		Volumes           string `json:"volumes"`
		ArchivalReference string `json:"archival_reference"`
	} `json:"items"`
}

func (s *server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	type parsedCodes struct {
		Codes []string `json:"codes"`
	}
	results := make([]parsedCodes, 0, len(req.Items))
	for _, it := range req.Items {
		codes := parser.AutoParse(parser.Item{
			ArchiveCode:       it.ArchiveCode,
			DGS:               it.DGS,
			Volume:            it.Volume,
			Volumes:           it.Volumes,
			ArchivalReference: it.ArchivalReference,
		}, s.parsers)
		if codes == nil {
			codes = []string{}
		}
		results = append(results, parsedCodes{Codes: codes})
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// handleImport runs one full import batch. A second request while a batch is
// running, or too soon after one, gets 429 instead of queueing.
func (s *server) handleImport(w http.ResponseWriter, r *http.Request) {
	if !s.importMu.TryLock() {
		writeError(w, http.StatusTooManyRequests, "import already running")
		return
	}
	defer s.importMu.Unlock()

	if !s.importGate.Allow() {
		writeError(w, http.StatusTooManyRequests, "import rate limit exceeded")
		return
	}

	items, err := s.store.ListFreshItems(r.Context(), s.fetchLimit)
	if err != nil {
		zap.L().Error("list fresh items failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	parsed, unparsed := fsimport.ParseItems(items, s.parsers)

	res, err := fsimport.NewReconciler(s.pool, s.opts).Reconcile(r.Context(), parsed)
	if err != nil {
		zap.L().Error("import failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "import failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"result":   res,
		"fetched":  len(items),
		"unparsed": len(unparsed),
	})
}

func (s *server) handleImportCheck(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.ListFreshItems(r.Context(), s.fetchLimit)
	if err != nil {
		zap.L().Error("list fresh items failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	parsed, unparsed := fsimport.ParseItems(items, s.parsers)

	stats, err := s.store.CheckImport(r.Context(), importRefs(parsed))
	if err != nil {
		zap.L().Error("import check failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "check failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"stats":    stats,
		"fetched":  len(items),
		"unparsed": len(unparsed),
	})
}

type structureCheckRequest struct {
	Original catalog.OriginalRefs `json:"original"`
	Proposed catalog.ProposedRefs `json:"proposed"`
}

func (s *server) handleStructureCheck(w http.ResponseWriter, r *http.Request) {
	var req structureCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.store.CheckStructure(r.Context(), req.Original, req.Proposed)
	if err != nil {
		zap.L().Error("structure check failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "check failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *server) handleStructureApply(w http.ResponseWriter, r *http.Request) {
	var proposed catalog.ProposedRefs
	if err := json.NewDecoder(r.Body).Decode(&proposed); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ids, err := s.store.ApplyStructure(r.Context(), proposed)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ids)
}
