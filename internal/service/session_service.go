package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"parseview/internal/domain"
	"parseview/internal/metrics"
	"parseview/internal/port"
)

// UploadInput is the DTO for a session upload.
type UploadInput struct {
	SessionID string
	File      io.Reader
	FileName  string
	Size      int64
	Options   domain.ParseOptions
}

// SessionService owns the per-session upload lifecycle and the session's current result.
type SessionService interface {
	Upload(ctx context.Context, input UploadInput) (*domain.SessionResult, error)
	Result(ctx context.Context, sessionID string) (*domain.SessionResult, error)
	State(ctx context.Context, sessionID string) (*domain.SessionState, error)
	Discard(ctx context.Context, sessionID string) error
}

type sessionService struct {
	processor FileProcessor
	store     port.ResultStore
	metrics   *metrics.Metrics
	now       func() time.Time

	mu     sync.Mutex
	states map[string]domain.SessionState
}

// NewSessionService creates a new SessionService implementation.
func NewSessionService(
	processor FileProcessor,
	store port.ResultStore,
	m *metrics.Metrics,
) SessionService {
	return &sessionService{
		processor: processor,
		store:     store,
		metrics:   m,
		now:       time.Now,
		states:    make(map[string]domain.SessionState),
	}
}

func (s *sessionService) Upload(ctx context.Context, input UploadInput) (*domain.SessionResult, error) {
	if err := domain.ValidateSessionID(input.SessionID); err != nil {
		return nil, err
	}
	if !s.begin(input.SessionID) {
		s.metrics.RecordUpload("conflict")
		return nil, domain.ErrUploadInProgress
	}
	defer func() {
		if r := recover(); r != nil {
			s.fail(input.SessionID, fmt.Errorf("upload aborted: %v", r))
			s.metrics.RecordUpload("error")
			panic(r)
		}
	}()

	log.Info().
		Str("session_id", input.SessionID).
		Str("file", input.FileName).
		Int64("size", input.Size).
		Msg("sessionService.Upload: upload started")

	result, doc, err := s.processor.Process(ctx, ProcessInput{
		File:     input.File,
		FileName: input.FileName,
		Size:     input.Size,
		Options:  input.Options,
	})
	if err != nil {
		s.fail(input.SessionID, err)
		s.metrics.RecordUpload(uploadOutcome(err))
		log.Warn().Err(err).Str("session_id", input.SessionID).Msg("sessionService.Upload: upload failed")
		return nil, err
	}

	sr := &domain.SessionResult{
		SessionID: input.SessionID,
		Document:  *doc,
		Options:   input.Options,
		Result:    result,
		ParsedAt:  s.now().UTC(),
	}
	err = s.store.Put(ctx, sr)
	s.metrics.RecordStoreOperation("put", err)
	if err != nil {
		s.fail(input.SessionID, err)
		s.metrics.RecordUpload("error")
		log.Error().Err(err).Str("session_id", input.SessionID).Msg("sessionService.Upload: failed to store result")
		return nil, fmt.Errorf("storing result: %w", err)
	}

	s.setState(input.SessionID, domain.SessionStatusParsed, "")
	s.metrics.RecordUpload("success")

	log.Info().
		Str("session_id", input.SessionID).
		Int("elements", len(result.Elements)).
		Msg("sessionService.Upload: result stored")
	return sr, nil
}

func (s *sessionService) Result(ctx context.Context, sessionID string) (*domain.SessionResult, error) {
	if err := domain.ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	sr, err := s.store.Get(ctx, sessionID)
	if err != nil && !errors.Is(err, domain.ErrResultNotFound) {
		s.metrics.RecordStoreOperation("get", err)
		return nil, fmt.Errorf("loading result: %w", err)
	}
	s.metrics.RecordStoreOperation("get", nil)
	return sr, err
}

func (s *sessionService) State(ctx context.Context, sessionID string) (*domain.SessionState, error) {
	if err := domain.ValidateSessionID(sessionID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	st, tracked := s.states[sessionID]
	s.mu.Unlock()
	if tracked && st.Status != domain.SessionStatusParsed {
		return &st, nil
	}

	// Parsed and untracked sessions are confirmed against the store, since
	// results can expire or outlive a restart.
	sr, err := s.store.Get(ctx, sessionID)
	switch {
	case err == nil:
		if !tracked {
			st = domain.SessionState{SessionID: sessionID, Status: domain.SessionStatusParsed, UpdatedAt: sr.ParsedAt}
		}
		return &st, nil
	case errors.Is(err, domain.ErrResultNotFound):
		if tracked {
			s.mu.Lock()
			delete(s.states, sessionID)
			s.mu.Unlock()
		}
		return &domain.SessionState{SessionID: sessionID, Status: domain.SessionStatusEmpty, UpdatedAt: s.now().UTC()}, nil
	default:
		return nil, fmt.Errorf("loading result: %w", err)
	}
}

func (s *sessionService) Discard(ctx context.Context, sessionID string) error {
	if err := domain.ValidateSessionID(sessionID); err != nil {
		return err
	}

	s.mu.Lock()
	if st, ok := s.states[sessionID]; ok && st.Status == domain.SessionStatusUploading {
		s.mu.Unlock()
		return domain.ErrUploadInProgress
	}
	delete(s.states, sessionID)
	s.mu.Unlock()

	err := s.store.Delete(ctx, sessionID)
	s.metrics.RecordStoreOperation("delete", err)
	if err != nil {
		return fmt.Errorf("discarding result: %w", err)
	}
	log.Info().Str("session_id", sessionID).Msg("sessionService.Discard: session discarded")
	return nil
}

// begin moves the session to Uploading unless an upload is already running.
func (s *sessionService) begin(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.states[sessionID]; ok && st.Status == domain.SessionStatusUploading {
		return false
	}
	s.states[sessionID] = domain.SessionState{
		SessionID: sessionID,
		Status:    domain.SessionStatusUploading,
		UpdatedAt: s.now().UTC(),
	}
	return true
}

func (s *sessionService) fail(sessionID string, err error) {
	s.setState(sessionID, domain.SessionStatusError, err.Error())
}

func (s *sessionService) setState(sessionID string, status domain.SessionStatus, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[sessionID] = domain.SessionState{
		SessionID: sessionID,
		Status:    status,
		Error:     msg,
		UpdatedAt: s.now().UTC(),
	}
}

func uploadOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "validation_error"
	case errors.Is(err, domain.ErrVendor):
		return "vendor_error"
	default:
		return "error"
	}
}
