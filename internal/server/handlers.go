package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/bobmcallan/folio/internal/app"
	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/models"
	"github.com/bobmcallan/folio/internal/services/loader"
	"github.com/bobmcallan/folio/internal/services/report"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, common.CurrentBuild())
}

// handleImport accepts a multipart upload with the holdings, transactions
// and performance exports and runs one reconciliation.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	maxBytes := int64(s.app.Config.Server.MaxUploadMB) << 20
	if maxBytes <= 0 {
		maxBytes = 32 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid multipart upload: "+err.Error())
		return
	}

	var in loader.Inputs
	for _, part := range []struct {
		field string
		dest  *loader.Payload
	}{
		{"holdings", &in.Holdings},
		{"transactions", &in.Transactions},
		{"performance", &in.Performance},
	} {
		p, err := readPart(r, part.field)
		if err != nil {
			WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), "missing_export")
			return
		}
		*part.dest = p
	}

	p, err := s.app.Import(r.Context(), in)
	if err != nil {
		var se *loader.StructuralError
		if errors.As(err, &se) {
			WriteJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
				Error: se.Error(),
				Code:  "structural_error",
				Field: se.Field,
			})
			return
		}
		s.logger.Error().Err(err).Msg("Import failed")
		WriteError(w, http.StatusInternalServerError, "Import failed: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, p)
}

func readPart(r *http.Request, field string) (loader.Payload, error) {
	f, header, err := r.FormFile(field)
	if err != nil {
		return loader.Payload{}, fmt.Errorf("%s export is required", field)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return loader.Payload{}, fmt.Errorf("failed to read %s export: %w", field, err)
	}
	return loader.Payload{Name: header.Filename, Data: data}, nil
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadPortfolio(w, r)
	if !ok {
		return
	}
	if info, err := s.app.Store.GetSnapshotInfo(r.Context()); err == nil && info != nil {
		w.Header().Set("X-Run-ID", info.RunID)
	}
	WriteJSON(w, http.StatusOK, p)
}

func (s *Server) handlePortfolioSummary(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadPortfolio(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, report.BuildSummary(p, report.DefaultTopN))
}

func (s *Server) handlePortfolioReport(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadPortfolio(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, report.FormatMarkdown(p, report.BuildSummary(p, report.DefaultTopN)))
}

// loadPortfolio writes 404 when nothing has been imported yet.
func (s *Server) loadPortfolio(w http.ResponseWriter, r *http.Request) (*models.Portfolio, bool) {
	p, err := s.app.Portfolio(r.Context())
	if errors.Is(err, app.ErrNoSnapshot) {
		WriteErrorWithCode(w, http.StatusNotFound, err.Error(), "no_snapshot")
		return nil, false
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load portfolio snapshot")
		WriteError(w, http.StatusInternalServerError, "Failed to load portfolio")
		return nil, false
	}
	return p, true
}
