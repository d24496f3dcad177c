package rpc

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"tasknav/internal/repo"
)

const maxBodyBytes = 1 << 20

// Server exposes a repository as POST /rpc/{command} plus GET /health.
type Server struct {
	repo repo.Repository
	log  *slog.Logger
	mux  *http.ServeMux
}

func NewServer(r repo.Repository, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{repo: r, log: log, mux: http.NewServeMux()}
	s.mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	s.mux.HandleFunc("POST /rpc/{command}", s.handleCommand)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	s.log.Info("rpc request",
		"method", r.Method,
		"path", r.URL.Path,
		"status", rec.status,
		"duration", time.Since(start),
	)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	cmd := r.PathValue("command")
	var req request
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.fail(w, cmd, repo.InvalidOperationError{Op: cmd, Reason: "invalid json body"})
		return
	}

	ctx := r.Context()
	var (
		out any
		err error
	)
	switch cmd {
	case CmdGetTask:
		t, e := s.repo.GetTask(ctx, req.ID)
		out, err = taskResponse{Task: t}, e
	case CmdLoadRootTasks:
		ts, e := s.repo.LoadRootTasks(ctx)
		out, err = tasksResponse{Tasks: ts}, e
	case CmdLoadSubtasks:
		ts, e := s.repo.LoadSubtasks(ctx, req.ParentID)
		out, err = tasksResponse{Tasks: ts}, e
	case CmdAddTask:
		t, e := s.repo.AddTask(ctx, req.ParentID, req.Title)
		out, err = taskResponse{Task: t}, e
	case CmdUpdateTask:
		t, e := s.repo.UpdateTask(ctx, req.ID, req.NewTitle)
		out, err = taskResponse{Task: t}, e
	case CmdToggleComplete:
		t, e := s.repo.ToggleComplete(ctx, req.ID)
		out, err = taskResponse{Task: t}, e
	case CmdRemoveTask:
		out, err = okResponse{OK: true}, s.repo.RemoveTask(ctx, req.ID)
	case CmdReorderChildren:
		out, err = okResponse{OK: true}, s.repo.ReorderChildren(ctx, req.ParentID, req.NewOrder)
	case CmdMoveTask:
		out, err = okResponse{OK: true}, s.repo.MoveTask(ctx, req.ID, req.NewParentID)
	default:
		writeJSON(w, http.StatusNotFound, errorResponse{Error: errorBody{Kind: kindInvalid, Message: "unknown command: " + cmd, Op: cmd}})
		return
	}
	if err != nil {
		s.fail(w, cmd, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) fail(w http.ResponseWriter, cmd string, err error) {
	status, body := encodeError(err)
	if status >= 500 {
		s.log.Error("rpc command failed", "command", cmd, "err", err)
	} else {
		s.log.Debug("rpc command rejected", "command", cmd, "err", err)
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
