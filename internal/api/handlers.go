package api

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"gospc/adapters/excel"
	"gospc/domain/core"
	"gospc/domain/spc"
	apperrors "gospc/internal/errors"
	"gospc/internal/report"
)

func (s *Server) sessionID(r *http.Request) (core.SessionID, error) {
	return core.ParseSessionID(chi.URLParam(r, "id"))
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	// An empty body is fine; the name is optional
	_ = json.NewDecoder(r.Body).Decode(&req)

	snap := s.svc.CreateSession(req.Name)
	s.writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	id, err := s.sessionID(r)
	if err != nil {
		s.writeError(w, apperrors.InvalidInput(err.Error()))
		return
	}
	snap, err := s.svc.Snapshot(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	id, err := s.sessionID(r)
	if err != nil {
		s.writeError(w, apperrors.InvalidInput(err.Error()))
		return
	}
	snap, err := s.svc.Snapshot(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	view := report.NewSummaryView(snap.Stats,
		s.cfg.Display.StatPrecision, s.cfg.Display.IndexPrecision)
	s.writeJSON(w, http.StatusOK, view)
}

// handleLoadTable accepts either a JSON body naming a server-side file or a
// multipart upload under the "file" field.
func (s *Server) handleLoadTable(w http.ResponseWriter, r *http.Request) {
	id, err := s.sessionID(r)
	if err != nil {
		s.writeError(w, apperrors.InvalidInput(err.Error()))
		return
	}

	var path, sheet string
	if ct := r.Header.Get("Content-Type"); ct != "" && len(ct) >= 19 && ct[:19] == "multipart/form-data" {
		path, err = s.receiveUpload(r)
		if err != nil {
			s.writeError(w, err)
			return
		}
		sheet = r.FormValue("sheet")
	} else {
		var req struct {
			Path  string `json:"path"`
			Sheet string `json:"sheet"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, apperrors.InvalidInput("invalid request body"))
			return
		}
		path, sheet = req.Path, req.Sheet
	}

	if path == "" {
		s.writeError(w, apperrors.InvalidInput("no file provided"))
		return
	}

	snap, err := s.svc.LoadTable(id, excel.NewDataReader(path), sheet)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

// receiveUpload spools a multipart upload to a temp file keeping its extension
func (s *Server) receiveUpload(r *http.Request) (string, error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", apperrors.InvalidInput("missing file field")
	}
	defer file.Close()

	tmp, err := os.CreateTemp("", "gospc-*"+filepath.Ext(header.Filename))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to spool upload")
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, file); err != nil {
		os.Remove(tmp.Name())
		return "", apperrors.Wrap(err, "failed to spool upload")
	}
	return tmp.Name(), nil
}

func (s *Server) handleSetAxes(w http.ResponseWriter, r *http.Request) {
	id, err := s.sessionID(r)
	if err != nil {
		s.writeError(w, apperrors.InvalidInput(err.Error()))
		return
	}
	var req struct {
		ValueColumn    string `json:"value_column"`
		CategoryColumn string `json:"category_column"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperrors.InvalidInput("invalid request body"))
		return
	}
	snap, err := s.svc.SetAxes(id, req.ValueColumn, req.CategoryColumn)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSetFilter(w http.ResponseWriter, r *http.Request) {
	id, err := s.sessionID(r)
	if err != nil {
		s.writeError(w, apperrors.InvalidInput(err.Error()))
		return
	}
	var req struct {
		Values []string `json:"values"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperrors.InvalidInput("invalid request body"))
		return
	}
	snap, err := s.svc.SetFilter(id, req.Values)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSetSpecs(w http.ResponseWriter, r *http.Request) {
	id, err := s.sessionID(r)
	if err != nil {
		s.writeError(w, apperrors.InvalidInput(err.Error()))
		return
	}
	var specs spc.SpecLimits
	if err := json.NewDecoder(r.Body).Decode(&specs); err != nil {
		s.writeError(w, apperrors.InvalidInput("invalid spec limits"))
		return
	}
	snap, err := s.svc.SetSpecLimits(id, specs)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleColumns(w http.ResponseWriter, r *http.Request) {
	id, err := s.sessionID(r)
	if err != nil {
		s.writeError(w, apperrors.InvalidInput(err.Error()))
		return
	}
	columns, err := s.svc.Columns(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"columns": columns})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	id, err := s.sessionID(r)
	if err != nil {
		s.writeError(w, apperrors.InvalidInput(err.Error()))
		return
	}
	values, err := s.svc.CategoryValues(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"values": values})
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	id, err := s.sessionID(r)
	if err != nil {
		s.writeError(w, apperrors.InvalidInput(err.Error()))
		return
	}
	profiles, err := s.svc.ProfileColumns(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, profiles)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	id, err := s.sessionID(r)
	if err != nil {
		s.writeError(w, apperrors.InvalidInput(err.Error()))
		return
	}
	s.hub.HandleSSE(w, r, id.String())
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	id, err := s.sessionID(r)
	if err != nil {
		s.writeError(w, apperrors.InvalidInput(err.Error()))
		return
	}
	snap, err := s.svc.Snapshot(id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="observations.csv"`)
	if err := report.WriteCSV(w, snap); err != nil {
		s.logger.Error("CSV export failed: %v", err)
	}
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	id, err := s.sessionID(r)
	if err != nil {
		s.writeError(w, apperrors.InvalidInput(err.Error()))
		return
	}
	snap, err := s.svc.Snapshot(id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	md := report.BuildMarkdown(snap,
		s.cfg.Display.StatPrecision, s.cfg.Display.IndexPrecision)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(report.RenderHTML(md))
}

func (s *Server) handleSaveState(w http.ResponseWriter, r *http.Request) {
	id, err := s.sessionID(r)
	if err != nil {
		s.writeError(w, apperrors.InvalidInput(err.Error()))
		return
	}
	if err := s.svc.SaveState(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"saved": id.String()})
}

func (s *Server) handleRestoreState(w http.ResponseWriter, r *http.Request) {
	id, err := s.sessionID(r)
	if err != nil {
		s.writeError(w, apperrors.InvalidInput(err.Error()))
		return
	}
	var req struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperrors.InvalidInput("invalid request body"))
		return
	}
	if req.Path == "" {
		s.writeError(w, apperrors.InvalidInput("path is required"))
		return
	}

	snap, err := s.svc.RestoreState(r.Context(), id, excel.NewDataReader(req.Path))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDeleteSaved(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		s.writeError(w, apperrors.InvalidInput("persistence is not configured"))
		return
	}
	id, err := s.sessionID(r)
	if err != nil {
		s.writeError(w, apperrors.InvalidInput(err.Error()))
		return
	}
	if err := s.repo.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"deleted": id.String()})
}

func (s *Server) handleListSaved(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		s.writeError(w, apperrors.InvalidInput("persistence is not configured"))
		return
	}
	states, err := s.repo.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"saved": states})
}
