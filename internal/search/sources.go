package search

import (
	"context"
	"strings"

	"github.com/DeafMist/civic-radar/backend/internal/models"
	"github.com/DeafMist/civic-radar/backend/internal/upstream"
)

// BillSearcher is satisfied by *upstream.OpenStates.
type BillSearcher interface {
	SearchBills(ctx context.Context, q upstream.BillQuery) ([]models.Bill, int, error)
}

// FederalBillSearcher is satisfied by *upstream.Congress.
type FederalBillSearcher interface {
	SearchBills(ctx context.Context, q upstream.FederalBillQuery) ([]models.FederalBill, error)
}

// CaseSearcher is satisfied by *upstream.CourtListener.
type CaseSearcher interface {
	SearchCases(ctx context.Context, query string, limit int) ([]models.CourtCase, error)
}

// DocumentSearcher is satisfied by *upstream.FederalRegister.
type DocumentSearcher interface {
	SearchDocuments(ctx context.Context, query string, limit int) ([]models.Regulation, error)
}

// FilingSearcher is satisfied by *upstream.LDA.
type FilingSearcher interface {
	SearchFilings(ctx context.Context, query string, limit int) ([]models.LobbyingFiling, error)
}

// Bills searches state bills of one jurisdiction.
func Bills(s BillSearcher, jurisdiction string) Source {
	return Source{Key: SourceBills, Fetch: func(ctx context.Context, query string, limit int) ([]models.NormalizedRecord, error) {
		bills, _, err := s.SearchBills(ctx, upstream.BillQuery{
			Jurisdiction: jurisdiction,
			Search:       query,
			PerPage:      limit,
		})
		if err != nil {
			return nil, err
		}
		return mapAll(bills, billRecord), nil
	}}
}

// FederalBills searches Congress.gov bills.
func FederalBills(s FederalBillSearcher) Source {
	return Source{Key: SourceFederalBills, Fetch: func(ctx context.Context, query string, limit int) ([]models.NormalizedRecord, error) {
		bills, err := s.SearchBills(ctx, upstream.FederalBillQuery{Search: query, Limit: limit})
		if err != nil {
			return nil, err
		}
		return mapAll(bills, federalBillRecord), nil
	}}
}

// CourtCases searches court opinions.
func CourtCases(s CaseSearcher) Source {
	return Source{Key: SourceCourtCases, Fetch: func(ctx context.Context, query string, limit int) ([]models.NormalizedRecord, error) {
		cases, err := s.SearchCases(ctx, query, limit)
		if err != nil {
			return nil, err
		}
		return mapAll(cases, courtCaseRecord), nil
	}}
}

// Regulations searches Federal Register documents.
func Regulations(s DocumentSearcher) Source {
	return Source{Key: SourceRegulations, Fetch: func(ctx context.Context, query string, limit int) ([]models.NormalizedRecord, error) {
		docs, err := s.SearchDocuments(ctx, query, limit)
		if err != nil {
			return nil, err
		}
		return mapAll(docs, regulationRecord), nil
	}}
}

// Lobbying searches lobbying disclosure filings.
func Lobbying(s FilingSearcher) Source {
	return Source{Key: SourceLobbying, Fetch: func(ctx context.Context, query string, limit int) ([]models.NormalizedRecord, error) {
		filings, err := s.SearchFilings(ctx, query, limit)
		if err != nil {
			return nil, err
		}
		return mapAll(filings, lobbyingRecord), nil
	}}
}

func mapAll[T any](items []T, fn func(T) models.NormalizedRecord) []models.NormalizedRecord {
	out := make([]models.NormalizedRecord, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}

func billRecord(b models.Bill) models.NormalizedRecord {
	return models.NormalizedRecord{
		ID:          b.ID,
		Title:       joinNonEmpty(": ", b.BillNumber, b.Title),
		Description: b.LatestAction,
		Date:        b.LatestActionDate,
		URL:         b.URL,
		Meta: map[string]any{
			"billNumber":     b.BillNumber,
			"session":        b.Session,
			"jurisdiction":   b.Jurisdiction,
			"classification": b.Classification,
			"subjects":       b.Subjects,
		},
	}
}

func federalBillRecord(b models.FederalBill) models.NormalizedRecord {
	return models.NormalizedRecord{
		ID:          b.ID,
		Title:       joinNonEmpty(": ", b.BillNumber, b.Title),
		Description: b.LatestAction,
		Date:        b.LatestActionDate,
		URL:         b.URL,
		Meta: map[string]any{
			"billNumber":    b.BillNumber,
			"congress":      b.Congress,
			"originChamber": b.OriginChamber,
		},
	}
}

func courtCaseRecord(c models.CourtCase) models.NormalizedRecord {
	return models.NormalizedRecord{
		ID:          c.ID,
		Title:       c.CaseName,
		Description: c.Snippet,
		Date:        c.DateFiled,
		URL:         c.URL,
		Meta: map[string]any{
			"court":        c.Court,
			"docketNumber": c.DocketNumber,
		},
	}
}

func regulationRecord(r models.Regulation) models.NormalizedRecord {
	return models.NormalizedRecord{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Abstract,
		Date:        r.PublicationDate,
		URL:         r.URL,
		Meta: map[string]any{
			"documentNumber": r.DocumentNumber,
			"type":           r.Type,
			"agencies":       r.Agencies,
		},
	}
}

func lobbyingRecord(f models.LobbyingFiling) models.NormalizedRecord {
	// Self-filing organizations are their own client.
	title := f.Registrant
	if f.Client != f.Registrant {
		title = joinNonEmpty(" for ", f.Registrant, f.Client)
	}
	return models.NormalizedRecord{
		ID:          f.ID,
		Title:       title,
		Description: strings.Join(f.Issues, ", "),
		Date:        f.Posted,
		URL:         f.URL,
		Meta: map[string]any{
			"registrant": f.Registrant,
			"client":     f.Client,
			"filingType": f.FilingType,
			"period":     f.Period,
			"year":       f.Year,
			"amount":     f.Amount,
		},
	}
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
