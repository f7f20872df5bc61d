package viewstate

import (
	"sync"
	"time"

	"github.com/NatiBytes/crispy-vison/pkg/models"
)

// Phase is the presentation state of the single upload-to-render cycle.
// Exactly one phase is active at any observable point.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseError   Phase = "error"
	PhaseSuccess Phase = "success"
)

// Snapshot is an immutable view of the presentation state. Message is set
// only in the error phase, Result only in the success phase. PreviewURL is
// present in every phase except idle.
type Snapshot struct {
	Phase      Phase
	PreviewURL string
	Message    string
	Result     *models.AnalysisResult
	UpdatedAt  time.Time
	Seq        uint64
}

// Store holds the single presentation state. It is written by the upload
// flow and read by the rendering collaborator.
//
// Every accepted upload gets a monotonically increasing sequence number;
// completions carrying a stale sequence are ignored, so a result landing
// after a newer upload started can never overwrite the newer state.
type Store struct {
	mu   sync.Mutex
	seq  uint64
	snap Snapshot
}

// NewStore creates a store in the idle phase.
func NewStore() *Store {
	return &Store{snap: Snapshot{Phase: PhaseIdle}}
}

// Begin accepts a new upload: it clears any prior result, error and preview,
// enters the loading phase with the new preview, and returns the sequence
// number that tags this invocation.
func (s *Store) Begin(previewURL string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	s.snap = Snapshot{
		Phase:      PhaseLoading,
		PreviewURL: previewURL,
		UpdatedAt:  time.Now().UTC(),
		Seq:        s.seq,
	}
	return s.seq
}

// Succeed moves the tagged invocation to the success phase. It reports false
// when the sequence is stale and the completion was dropped.
func (s *Store) Succeed(seq uint64, result *models.AnalysisResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		return false
	}
	s.snap.Phase = PhaseSuccess
	s.snap.Result = result
	s.snap.Message = ""
	s.snap.UpdatedAt = time.Now().UTC()
	return true
}

// Fail moves the tagged invocation to the error phase. The preview set by
// Begin stays visible. It reports false when the sequence is stale.
func (s *Store) Fail(seq uint64, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		return false
	}
	s.snap.Phase = PhaseError
	s.snap.Message = message
	s.snap.Result = nil
	s.snap.UpdatedAt = time.Now().UTC()
	return true
}

// Current returns the current snapshot.
func (s *Store) Current() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}
