package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/DeafMist/civic-radar/backend/internal/config"
	"github.com/DeafMist/civic-radar/backend/internal/models"
	"github.com/DeafMist/civic-radar/backend/internal/search"
	"github.com/DeafMist/civic-radar/backend/internal/synthetic"
	"github.com/DeafMist/civic-radar/backend/internal/upstream"
)

const maxRequestBytes = 1 << 20

type civicLookup interface {
	Representatives(ctx context.Context, address string) (*models.Representatives, error)
}

type legislationSource interface {
	SearchBills(ctx context.Context, q upstream.BillQuery) ([]models.Bill, int, error)
	BillVotes(ctx context.Context, q upstream.BillQuery) ([]models.Vote, error)
	Legislators(ctx context.Context, q upstream.PeopleQuery) ([]models.Legislator, error)
	Committees(ctx context.Context, jurisdiction string, perPage int) ([]models.Committee, error)
}

type mediaFeeds interface {
	Podcast(ctx context.Context, feedURL string, limit int) ([]models.Episode, error)
	YouTube(ctx context.Context, channelID string, limit int) ([]models.Video, error)
}

type marketSearch interface {
	Polymarket(ctx context.Context, name, state string) ([]models.Market, error)
	Kalshi(ctx context.Context, name, state string) ([]models.Market, error)
	All(ctx context.Context, name, state string) ([]models.Market, error)
}

type newsSearch interface {
	Search(ctx context.Context, name, state string, limit int) ([]models.Article, error)
}

type districtResolver interface {
	Resolve(ctx context.Context, stateAbbr string) (*models.StateDistricts, error)
}

type unifiedSearch interface {
	Search(ctx context.Context, query string, sources []string) (*models.UnifiedSearchResult, error)
}

type server struct {
	log *slog.Logger
	cfg *config.API

	civic       civicLookup
	legislation legislationSource
	federal     search.FederalBillSearcher
	courts      search.CaseSearcher
	register    search.DocumentSearcher
	lobbying    search.FilingSearcher
	media       mediaFeeds
	markets     marketSearch
	news        newsSearch
	districts   districtResolver
	unified     unifiedSearch
	synthetic   *synthetic.Generator
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.cors)

	r.Get("/health", s.handleHealth)

	r.Post("/civic-lookup", s.handleCivicLookup)
	r.Post("/bills", s.handleBills)
	r.Post("/votes", s.handleVotes)
	r.Post("/legislators", s.handleLegislators)
	r.Post("/committees", s.handleCommittees)
	r.Post("/federal-bills", s.handleFederalBills)
	r.Post("/court-cases", s.handleCourtCases)
	r.Post("/federal-register", s.handleFederalRegister)
	r.Post("/lobbying", s.handleLobbying)
	r.Post("/polymarket", s.handleMarkets(marketSearch.Polymarket))
	r.Post("/kalshi", s.handleMarkets(marketSearch.Kalshi))
	r.Post("/markets", s.handleMarkets(marketSearch.All))
	r.Post("/news", s.handleNews)
	r.Post("/podcast", s.handlePodcast)
	r.Post("/youtube", s.handleYouTube)
	r.Post("/districts", s.handleDistricts)
	r.Post("/unified-search", s.handleUnifiedSearch)
	r.Post("/synthetic/finance", s.handleSyntheticFinance)
	r.Post("/synthetic/voting-record", s.handleSyntheticVotingRecord)

	return r
}

// cors allows the configured origins and answers every preflight with a
// fixed 204.
func (s *server) cors(next http.Handler) http.Handler {
	anyOrigin := s.cfg.AllowsAnyOrigin()
	allowed := make(map[string]struct{}, len(s.cfg.AllowedOrigins))
	for _, o := range s.cfg.AllowedOrigins {
		allowed[o] = struct{}{}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		origin := r.Header.Get("Origin")
		switch {
		case anyOrigin:
			h.Set("Access-Control-Allow-Origin", "*")
		case origin != "":
			h.Add("Vary", "Origin")
			if _, ok := allowed[origin]; ok {
				h.Set("Access-Control-Allow-Origin", origin)
			}
		}
		h.Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Authorization, X-Client-Info, Apikey, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type errorResponse struct {
	Success        bool   `json:"success"`
	Error          string `json:"error"`
	UpstreamStatus int    `json:"upstreamStatus,omitempty"`
}

// decode reads a JSON body into dst. An empty body leaves dst untouched.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: request body exceeds %d bytes", models.ErrInvalidInput, maxRequestBytes)
		}
		return fmt.Errorf("%w: malformed JSON body: %v", models.ErrInvalidInput, err)
	}
	return nil
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", models.ErrInvalidInput, field)
	}
	return nil
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := errorResponse{Error: err.Error()}
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, upstream.ErrNotConfigured):
		status = http.StatusServiceUnavailable
	case errors.Is(err, upstream.ErrUnavailable):
		status = http.StatusBadGateway
		resp.UpstreamStatus = upstream.StatusCode(err)
	default:
		resp.Error = "internal error"
	}

	level := slog.LevelWarn
	if status == http.StatusInternalServerError {
		level = slog.LevelError
	}
	s.log.LogAttrs(r.Context(), level, "request failed",
		slog.String("path", r.URL.Path),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Int("status", status),
		slog.Any("err", err),
	)
	writeJSON(w, status, resp)
}

// writeOK writes payload with success set.
func writeOK(w http.ResponseWriter, payload map[string]any) {
	payload["success"] = true
	writeJSON(w, http.StatusOK, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
