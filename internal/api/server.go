// Copyright ©2024 The ExclusionMS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package api is the thin HTTP adapter (§6 of the specification): it
// binds the endpoint table to the exclusion store, validates batch
// bodies whole before any mutation (§7), maps error kinds to status
// codes, and logs at the boundary. It never implements exclusion logic
// itself.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/pgarrett-scripps/exclusionms-go/internal/errs"
	"github.com/pgarrett-scripps/exclusionms-go/internal/model"
	"github.com/pgarrett-scripps/exclusionms-go/internal/offset"
	"github.com/pgarrett-scripps/exclusionms-go/internal/store"
)

// storeExt is the extension given to persisted store files under DataDir.
const storeExt = ".exms"

// Server wires the exclusion store and offset register to the endpoint
// table. The zero value is not usable; use NewServer.
type Server struct {
	Store   *store.Store
	Offset  *offset.Register
	DataDir string
	Log     *slog.Logger

	pool *workerPool
}

// NewServer returns a Server ready to have Routes() mounted.
func NewServer(s *store.Store, reg *offset.Register, dataDir string, workers int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{Store: s, Offset: reg, DataDir: dataDir, Log: logger, pool: newWorkerPool(workers)}
}

// Routes returns the mux.Router binding every endpoint in §6.
func (s *Server) Routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/exclusionms/statistics", s.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/exclusionms/file", s.handleListFiles).Methods(http.MethodGet)
	r.HandleFunc("/exclusionms/save", s.handleSave).Methods(http.MethodPost)
	r.HandleFunc("/exclusionms/load", s.handleLoad).Methods(http.MethodPost)
	r.HandleFunc("/exclusionms/clear", s.handleClear).Methods(http.MethodPost)
	r.HandleFunc("/exclusionms/delete", s.handleDelete).Methods(http.MethodPost)
	r.HandleFunc("/exclusionms/intervals/search", s.handleIntervalsSearch).Methods(http.MethodPost)
	r.HandleFunc("/exclusionms/intervals", s.handleIntervalsAdd).Methods(http.MethodPost)
	r.HandleFunc("/exclusionms/intervals", s.handleIntervalsRemove).Methods(http.MethodDelete)
	r.HandleFunc("/exclusionms/points/search", s.handlePointsSearch).Methods(http.MethodPost)
	r.HandleFunc("/exclusionms/points/exclusion_search", s.handlePointsExclusionSearch).Methods(http.MethodPost)
	r.HandleFunc("/exclusionms/offset", s.handleOffsetGet).Methods(http.MethodGet)
	r.HandleFunc("/exclusionms/offset", s.handleOffsetSet).Methods(http.MethodPost)
	return r
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Store.Stats())
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(s.DataDir)
	if err != nil && !os.IsNotExist(err) {
		s.writeError(w, &errs.PersistenceError{Op: "list", Err: err})
		return
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != storeExt {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), storeExt))
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) storePath(exid string) string {
	return filepath.Join(s.DataDir, exid+storeExt)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	exid := r.URL.Query().Get("exid")
	if err := s.Store.Save(s.storePath(exid)); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	exid := r.URL.Query().Get("exid")
	if err := s.Store.Load(s.storePath(exid)); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Store.Clear())
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	exid := r.URL.Query().Get("exid")
	path := s.storePath(exid)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			s.writeError(w, &errs.NotFound{Name: exid})
			return
		}
		s.writeError(w, &errs.PersistenceError{Op: "delete", Err: err})
		return
	}
	if err := os.Remove(path); err != nil {
		s.writeError(w, &errs.PersistenceError{Op: "delete", Err: err})
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleIntervalsSearch(w http.ResponseWriter, r *http.Request) {
	var query []model.Interval
	if err := decodeJSON(r, &query); err != nil {
		s.writeError(w, &errs.InvalidInterval{Reason: err.Error()})
		return
	}
	for _, q := range query {
		if !q.Valid() {
			s.writeError(w, &errs.InvalidInterval{Reason: "a min bound exceeds its max bound"})
			return
		}
	}
	out := make([][]model.Interval, len(query))
	for i, q := range query {
		out[i] = s.Store.QueryByInterval(q)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleIntervalsAdd validates the whole batch before dispatching any
// mutation to the worker pool (§7/§6).
func (s *Server) handleIntervalsAdd(w http.ResponseWriter, r *http.Request) {
	var ivs []model.Interval
	if err := decodeJSON(r, &ivs); err != nil {
		s.writeError(w, &errs.InvalidInterval{Reason: err.Error()})
		return
	}
	for _, iv := range ivs {
		if _, ok := iv.ID.Get(); !ok {
			s.writeError(w, &errs.InvalidInterval{Reason: "interval_id must not be null"})
			return
		}
		if !iv.Valid() {
			s.writeError(w, &errs.InvalidInterval{Reason: "a min bound exceeds its max bound"})
			return
		}
	}

	jobs := make([]func() error, len(ivs))
	for i, iv := range ivs {
		iv := iv
		jobs[i] = func() error { return s.Store.Add(iv) }
	}
	for _, err := range s.pool.run(jobs) {
		if err != nil {
			s.writeError(w, err)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleIntervalsRemove(w http.ResponseWriter, r *http.Request) {
	var queries []model.Interval
	if err := decodeJSON(r, &queries); err != nil {
		s.writeError(w, &errs.InvalidInterval{Reason: err.Error()})
		return
	}
	for _, q := range queries {
		if !q.Valid() {
			s.writeError(w, &errs.InvalidInterval{Reason: "a min bound exceeds its max bound"})
			return
		}
	}
	out := make([][]model.Interval, len(queries))
	for i, q := range queries {
		out[i] = s.Store.Remove(q)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePointsSearch(w http.ResponseWriter, r *http.Request) {
	var points []model.Point
	if err := decodeJSON(r, &points); err != nil {
		s.writeError(w, &errs.InvalidInterval{Reason: err.Error()})
		return
	}
	o := s.Offset.Get()
	out := make([][]model.Interval, len(points))
	for i, p := range points {
		out[i] = s.Store.QueryByPoint(offset.Apply(p, o))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePointsExclusionSearch(w http.ResponseWriter, r *http.Request) {
	var points []model.Point
	if err := decodeJSON(r, &points); err != nil {
		s.writeError(w, &errs.InvalidInterval{Reason: err.Error()})
		return
	}
	o := s.Offset.Get()
	out := make([]bool, len(points))
	for i, p := range points {
		out[i] = s.Store.IsExcluded(offset.Apply(p, o))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleOffsetGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Offset.Get())
}

func (s *Server) handleOffsetSet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	o := offset.Offset{
		Mass:      queryFloat(q, "mass"),
		RT:        queryFloat(q, "rt"),
		OOK0:      queryFloat(q, "ook0"),
		Intensity: queryFloat(q, "intensity"),
	}
	s.Offset.Set(o)
	writeJSON(w, http.StatusOK, o)
}

func queryFloat(q map[string][]string, key string) float64 {
	vs, ok := q[key]
	if !ok || len(vs) == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(vs[0], 64)
	if err != nil {
		return 0
	}
	return v
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an error kind to a status class (§7) and logs it.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var invalidInterval *errs.InvalidInterval
	var invalidTolerance *errs.InvalidTolerance
	var notFound *errs.NotFound
	var persistenceErr *errs.PersistenceError
	switch {
	case errors.As(err, &invalidInterval), errors.As(err, &invalidTolerance):
		status = http.StatusBadRequest
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &persistenceErr):
		status = http.StatusInternalServerError
	}
	s.Log.Error("request failed", "status", status, "err", err)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
