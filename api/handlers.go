package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/DeafMist/civic-radar/backend/internal/models"
	"github.com/DeafMist/civic-radar/backend/internal/upstream"
)

type legislationRequest struct {
	Jurisdiction string `json:"jurisdiction"`
	Session      string `json:"session"`
	Search       string `json:"search"`
	PerPage      int    `json:"per_page"`
}

func (req legislationRequest) billQuery() upstream.BillQuery {
	return upstream.BillQuery{
		Jurisdiction: strings.TrimSpace(req.Jurisdiction),
		Session:      strings.TrimSpace(req.Session),
		Search:       req.Search,
		PerPage:      req.PerPage,
	}
}

type queryRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type politicianRequest struct {
	PoliticianName string `json:"politicianName"`
	State          string `json:"state"`
	Limit          int    `json:"limit"`
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleCivicLookup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Address string `json:"address"`
	}
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	reps, err := s.civic.Representatives(r.Context(), req.Address)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, map[string]any{
		"address": reps.Address,
		"federal": reps.Federal,
		"state":   reps.State,
		"county":  reps.County,
		"local":   reps.Local,
	})
}

func (s *server) handleBills(w http.ResponseWriter, r *http.Request) {
	var req legislationRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	bills, total, err := s.legislation.SearchBills(r.Context(), req.billQuery())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, map[string]any{"bills": bills, "total": total})
}

func (s *server) handleVotes(w http.ResponseWriter, r *http.Request) {
	var req legislationRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	votes, err := s.legislation.BillVotes(r.Context(), req.billQuery())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, map[string]any{"votes": votes})
}

func (s *server) handleLegislators(w http.ResponseWriter, r *http.Request) {
	var req legislationRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	legislators, err := s.legislation.Legislators(r.Context(), upstream.PeopleQuery{
		Jurisdiction: strings.TrimSpace(req.Jurisdiction),
		Name:         req.Search,
		PerPage:      req.PerPage,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, map[string]any{"legislators": legislators})
}

func (s *server) handleCommittees(w http.ResponseWriter, r *http.Request) {
	var req legislationRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	committees, err := s.legislation.Committees(r.Context(), strings.TrimSpace(req.Jurisdiction), req.PerPage)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, map[string]any{"committees": committees})
}

func (s *server) handleFederalBills(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Search   string `json:"search"`
		Congress int    `json:"congress"`
		Limit    int    `json:"limit"`
	}
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	bills, err := s.federal.SearchBills(r.Context(), upstream.FederalBillQuery{
		Search:   req.Search,
		Congress: req.Congress,
		Limit:    req.Limit,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, map[string]any{"bills": bills})
}

func (s *server) handleCourtCases(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	cases, err := s.courts.SearchCases(r.Context(), req.Query, req.Limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, map[string]any{"cases": cases})
}

func (s *server) handleFederalRegister(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	docs, err := s.register.SearchDocuments(r.Context(), req.Query, req.Limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, map[string]any{"documents": docs})
}

func (s *server) handleLobbying(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	filings, err := s.lobbying.SearchFilings(r.Context(), req.Query, req.Limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, map[string]any{"filings": filings})
}

type marketQuery func(m marketSearch, ctx context.Context, name, state string) ([]models.Market, error)

func (s *server) handleMarkets(query marketQuery) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req politicianRequest
		if err := decode(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}

		found, err := query(s.markets, r.Context(), req.PoliticianName, req.State)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeOK(w, map[string]any{"markets": found})
	}
}

func (s *server) handleNews(w http.ResponseWriter, r *http.Request) {
	var req politicianRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	articles, err := s.news.Search(r.Context(), req.PoliticianName, req.State, req.Limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, map[string]any{"articles": articles})
}

func (s *server) handlePodcast(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FeedURL string `json:"feedUrl"`
		Limit   int    `json:"limit"`
	}
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	episodes, err := s.media.Podcast(r.Context(), req.FeedURL, req.Limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, map[string]any{"episodes": episodes})
}

func (s *server) handleYouTube(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChannelID string `json:"channelId"`
		Limit     int    `json:"limit"`
	}
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	videos, err := s.media.YouTube(r.Context(), req.ChannelID, req.Limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, map[string]any{"videos": videos})
}

func (s *server) handleDistricts(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StateAbbr string `json:"stateAbbr"`
	}
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := required("stateAbbr", req.StateAbbr); err != nil {
		s.writeError(w, r, err)
		return
	}

	d, err := s.districts.Resolve(r.Context(), req.StateAbbr)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, map[string]any{
		"stateAbbr":     d.StateAbbr,
		"congressional": d.Congressional,
		"stateSenate":   d.StateSenate,
		"stateHouse":    d.StateHouse,
		"expected":      d.Expected,
		"swapped":       d.Swapped,
	})
}

type unifiedSearchResponse struct {
	Success bool `json:"success"`
	*models.UnifiedSearchResult
}

func (s *server) handleUnifiedSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query   string   `json:"query"`
		Sources []string `json:"sources"`
	}
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.unified.Search(r.Context(), req.Query, req.Sources)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, unifiedSearchResponse{Success: true, UnifiedSearchResult: result})
}

func (s *server) handleSyntheticFinance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EntityID string `json:"entityId"`
		Party    string `json:"party"`
		Level    string `json:"level"`
	}
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	finance, err := s.synthetic.Finance(req.EntityID, req.Party, req.Level)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, map[string]any{"finance": finance})
}

func (s *server) handleSyntheticVotingRecord(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EntityID  string   `json:"entityId"`
		Party     string   `json:"party"`
		KeyIssues []string `json:"keyIssues"`
	}
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	record, err := s.synthetic.VotingRecord(req.EntityID, req.Party, req.KeyIssues)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeOK(w, map[string]any{"votingRecord": record})
}
