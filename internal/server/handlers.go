package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/jonathan/applykit/internal/pipeline"
	"github.com/jonathan/applykit/internal/session"
	"github.com/jonathan/applykit/internal/types"
)

// maxBodyBytes caps request bodies; job ads and edited letters are plain text.
const maxBodyBytes = 1 << 20

// CreateSessionRequest is the body of POST /sessions.
type CreateSessionRequest struct {
	JobAd       string `json:"job_ad" validate:"required_without=JobURL"`
	JobURL      string `json:"job_url" validate:"omitempty,url"`
	LetterCount int    `json:"letter_count" validate:"omitempty,gte=1,lte=10"`
}

// UpdateContentRequest is the body of the artifact edit endpoints.
type UpdateContentRequest struct {
	Content string `json:"content" validate:"required"`
}

// SessionResponse is a session plus the documents it can render.
type SessionResponse struct {
	*session.Session
	Documents []string `json:"documents"`
}

func (s *Server) sessionResponse(sess *session.Session) SessionResponse {
	jobs := pipeline.Jobs(s.renderer, sess.Result())
	names := make([]string, len(jobs))
	for i, job := range jobs {
		names[i] = job.Name
	}
	return SessionResponse{Session: sess, Documents: names}
}

// decode reads and validates a JSON body into dst.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	if err := s.validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

// startRun resolves the job ad and runs generation.
func (s *Server) startRun(ctx context.Context, req CreateSessionRequest, onProgress pipeline.ProgressCallback) (*session.Session, error) {
	ad := types.JobAd{Text: req.JobAd}
	if req.JobURL != "" && strings.TrimSpace(req.JobAd) == "" {
		fetched, err := s.fetchJob(ctx, req.JobURL)
		if err != nil {
			return nil, err
		}
		ad = fetched
	}

	count := req.LetterCount
	if count == 0 {
		count = s.letterCount
	}
	res, err := s.runner.Run(ctx, ad, pipeline.RunOptions{LetterCount: count, OnProgress: onProgress})
	if err != nil {
		return nil, err
	}

	sess := session.New(res)
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	s.logger.InfoContext(ctx, "session created", "session_id", sess.ID, "letters", len(sess.Letters), "failed_steps", len(sess.Errors))
	return sess, nil
}

// handleCreateSession runs generation and stores the result as a new session.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	sess, err := s.startRun(r.Context(), req, nil)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, s.sessionResponse(sess))
}

// handleCreateSessionStream is handleCreateSession with progress streamed
// as Server-Sent Events. The final "complete" event carries the session.
func (s *Server) handleCreateSessionStream(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	stream, err := newEventStream(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	stop := stream.keepAlive(keepAliveInterval)
	defer stop()

	sess, err := s.startRun(r.Context(), req, func(event pipeline.ProgressEvent) {
		if err := stream.send("progress", event); err != nil {
			s.logger.WarnContext(r.Context(), "error writing SSE event", "error", err)
		}
	})
	if err != nil {
		s.logger.WarnContext(r.Context(), "streaming run failed", "error", err)
		if err := stream.sendError(err); err != nil {
			s.logger.WarnContext(r.Context(), "error writing SSE event", "error", err)
		}
		return
	}
	if err := stream.send("complete", s.sessionResponse(sess)); err != nil {
		s.logger.WarnContext(r.Context(), "error writing SSE event", "error", err)
	}
}

// handleGetSession returns a session
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.sessionResponse(sess))
}

// handleDeleteSession removes a session before its TTL.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// editSession loads a session, applies edit and saves it back.
func (s *Server) editSession(w http.ResponseWriter, r *http.Request, edit func(*session.Session, string) error) {
	var req UpdateContentRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	sess, err := s.sessions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := edit(sess, req.Content); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.sessions.Save(r.Context(), sess); err != nil {
		s.fail(w, r, fmt.Errorf("saving session: %w", err))
		return
	}
	s.jsonResponse(w, http.StatusOK, s.sessionResponse(sess))
}

// handleUpdateCV replaces the tailored CV text.
func (s *Server) handleUpdateCV(w http.ResponseWriter, r *http.Request) {
	s.editSession(w, r, func(sess *session.Session, content string) error {
		return sess.SetCVContent(content)
	})
}

// handleUpdateLetter replaces one cover letter's text.
func (s *Server) handleUpdateLetter(w http.ResponseWriter, r *http.Request) {
	version, err := strconv.Atoi(r.PathValue("version"))
	if err != nil || version < 1 {
		s.fail(w, r, &ErrValidation{Field: "version", Message: "must be a positive integer"})
		return
	}
	s.editSession(w, r, func(sess *session.Session, content string) error {
		return sess.SetLetterContent(version, content)
	})
}

// handleDocument renders one document of a session on demand, from the
// session's current (possibly edited) text.
func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")
	ext := path.Ext(file)
	name := strings.TrimSuffix(file, ext)
	kind := types.DocumentKind(strings.TrimPrefix(ext, "."))
	if kind != types.KindDocx && kind != types.KindPDF {
		s.fail(w, r, &ErrValidation{Field: "file", Message: "extension must be .docx or .pdf"})
		return
	}

	sess, err := s.sessions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	pair, err := pipeline.RenderDocument(r.Context(), s.renderer, sess.Result(), name)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	data := pair.Bytes(kind)
	w.Header().Set("Content-Type", kind.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if kind == types.KindPDF && pair.Pages > 0 {
		w.Header().Set("X-Page-Count", strconv.Itoa(pair.Pages))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.WarnContext(r.Context(), "error writing document", "error", err)
	}
}
