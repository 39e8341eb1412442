package controllers

// ReadController serves the façade's GET endpoints: as-of lookups composed
// at the current block (spec.md §6), plus the supplemented history and
// agent-lookup endpoints (SPEC_FULL.md §8).

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"provenance-chain/internal/store"
	"provenance-chain/server/services"
)

type ReadController struct {
	svc *services.ReadService
}

func NewReadController(svc *services.ReadService) *ReadController {
	return &ReadController{svc: svc}
}

type rowResponse struct {
	StartBlockNum int64           `json:"startBlockNum"`
	EndBlockNum   int64           `json:"endBlockNum"`
	Doc           json.RawMessage `json:"doc"`
}

func writeRow(w http.ResponseWriter, row store.Row) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rowResponse{
		StartBlockNum: row.StartBlockNum,
		EndBlockNum:   row.EndBlockNum,
		Doc:           json.RawMessage(row.Doc),
	})
}

func writeRows(w http.ResponseWriter, rows []store.Row) {
	out := make([]rowResponse, len(rows))
	for i, r := range rows {
		out[i] = rowResponse{StartBlockNum: r.StartBlockNum, EndBlockNum: r.EndBlockNum, Doc: json.RawMessage(r.Doc)}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

func (c *ReadController) Agent(w http.ResponseWriter, r *http.Request) {
	row, err := c.svc.Agent(r.Context(), mux.Vars(r)["publicKey"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeRow(w, row)
}

func (c *ReadController) ListAgents(w http.ResponseWriter, r *http.Request) {
	rows, err := c.svc.ListAgents(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeRows(w, rows)
}

func (c *ReadController) Record(w http.ResponseWriter, r *http.Request) {
	row, err := c.svc.Record(r.Context(), mux.Vars(r)["recordId"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeRow(w, row)
}

func (c *ReadController) ListRecords(w http.ResponseWriter, r *http.Request) {
	rows, err := c.svc.ListRecords(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeRows(w, rows)
}

func (c *ReadController) RecordType(w http.ResponseWriter, r *http.Request) {
	row, err := c.svc.RecordType(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeRow(w, row)
}

func (c *ReadController) ListRecordTypes(w http.ResponseWriter, r *http.Request) {
	rows, err := c.svc.ListRecordTypes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeRows(w, rows)
}

func (c *ReadController) Property(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	row, err := c.svc.Property(r.Context(), vars["recordId"], vars["name"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeRow(w, row)
}

// PropertyHistory handles GET /records/{recordId}/properties/{name}/history
// (SPEC_FULL.md §8's supplemented read-side aggregate view).
func (c *ReadController) PropertyHistory(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	lookback := 5
	if v := r.URL.Query().Get("lookback"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			lookback = n
		}
	}
	propRow, pages, err := c.svc.PropertyHistory(r.Context(), vars["recordId"], vars["name"], lookback)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := struct {
		Property rowResponse                      `json:"property"`
		Pages    []services.PropertyHistoryEntry   `json:"pages"`
	}{
		Property: rowResponse{StartBlockNum: propRow.StartBlockNum, EndBlockNum: propRow.EndBlockNum, Doc: json.RawMessage(propRow.Doc)},
		Pages:    pages,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (c *ReadController) ListProposals(w http.ResponseWriter, r *http.Request) {
	rows, err := c.svc.ListProposals(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeRows(w, rows)
}
