package redline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hay-kot/redline/internal/core/config"
	"github.com/hay-kot/redline/internal/core/document"
	"github.com/hay-kot/redline/internal/core/eventbus"
	"github.com/hay-kot/redline/internal/core/logging"
	"github.com/hay-kot/redline/internal/core/proposal"
	"github.com/hay-kot/redline/internal/core/review"
	"github.com/hay-kot/redline/internal/core/textdiff"
)

// Sentinel errors for review operations.
var (
	// ErrNoReview indicates no session exists and no pending proposals
	// could seed one.
	ErrNoReview = errors.New("no review in progress")

	// ErrNotReviewable indicates the document is excluded by the
	// configured review patterns.
	ErrNotReviewable = errors.New("document excluded by review patterns")
)

// ReviewStatus is a point-in-time snapshot of a review: the hunks
// between the replayed session content and the merged proposal target,
// and which of them are already decided.
type ReviewStatus struct {
	SessionID  string
	DocumentID string
	Recovered  bool
	Hunks      []textdiff.Hunk
	Processed  map[string]struct{}
	Pending    int  // change hunks without a decision
	Decided    int  // recorded decisions
	Complete   bool // replayed content already equals the target
}

// ReviewService drives the hunk-by-hunk review lifecycle for documents.
// In-memory sessions are authoritative; persistence through the saver is
// best-effort. A single mutex serializes every operation so decisions
// never interleave.
type ReviewService struct {
	docs      document.Storage
	sessions  review.Store
	proposals proposal.Store
	config    *config.Config
	bus       *eventbus.EventBus
	saver     *Saver
	log       zerolog.Logger

	mu     sync.Mutex
	active map[string]*review.Session // document id -> open session
}

// NewReviewService creates a new ReviewService.
func NewReviewService(
	docs document.Storage,
	sessions review.Store,
	proposals proposal.Store,
	cfg *config.Config,
	bus *eventbus.EventBus,
	saver *Saver,
	log zerolog.Logger,
) *ReviewService {
	return &ReviewService{
		docs:      docs,
		sessions:  sessions,
		proposals: proposals,
		config:    cfg,
		bus:       bus,
		saver:     saver,
		log:       log,
		active:    make(map[string]*review.Session),
	}
}

// Propose registers a pending change for its document. Missing id and
// timestamp are filled in. Documents excluded by the configured review
// patterns are rejected with ErrNotReviewable.
func (s *ReviewService) Propose(ctx context.Context, change proposal.ProposedChange) (proposal.ProposedChange, error) {
	if change.DocumentID == "" {
		return change, fmt.Errorf("proposal has no document id")
	}
	if !change.Kind.Valid() {
		return change, fmt.Errorf("invalid proposal kind %q", change.Kind)
	}
	if !s.config.Reviewable(change.DocumentID) {
		s.log.Warn().Str("document_id", change.DocumentID).Msg("proposal rejected by review patterns")
		return change, ErrNotReviewable
	}

	if change.ID == "" {
		change.ID = uuid.NewString()
	}
	if change.CreatedAt.IsZero() {
		change.CreatedAt = time.Now().UTC()
	}

	if err := s.proposals.Put(ctx, change); err != nil {
		return change, fmt.Errorf("store proposal: %w", err)
	}

	s.log.Info().
		Str("change_id", change.ID).
		Str("document_id", change.DocumentID).
		Str("kind", string(change.Kind)).
		Msg("proposal received")
	s.bus.PublishProposalReceived(eventbus.ProposalReceivedPayload{Change: &change})

	return change, nil
}

// EnterReview opens (or resumes) the review session for the document.
// A persisted session is restored only when its source identity matches
// the document's name; a stale record is discarded and a fresh session
// snapshotted from the current content takes its place.
func (s *ReviewService) EnterReview(ctx context.Context, doc document.Document) (review.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx = logging.WithDocumentID(ctx, doc.ID)

	if sess, inMemory := s.lookupLocked(ctx, doc); sess != nil {
		if !inMemory {
			s.bus.PublishReviewStarted(eventbus.ReviewStartedPayload{Session: sess})
		}
		return *sess, nil
	}

	sess := review.NewSession(doc.ID, doc.Name, doc.Content)
	s.active[doc.ID] = sess
	s.saver.Save(ctx, *sess)

	ctx = logging.WithSessionID(ctx, sess.ID)
	s.log.Info().Ctx(ctx).Msg("review started")
	s.bus.PublishReviewStarted(eventbus.ReviewStartedPayload{Session: sess})

	return *sess, nil
}

// Status reports the current hunks and decision progress for the
// document's review. When no session exists but proposals are pending,
// a session is opened implicitly, exactly as EnterReview would.
func (s *ReviewService) Status(ctx context.Context, doc document.Document) (ReviewStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, inMemory := s.lookupLocked(ctx, doc)
	if sess == nil {
		changes, err := s.proposals.ForDocument(ctx, doc.ID)
		if err != nil {
			return ReviewStatus{}, fmt.Errorf("read proposals: %w", err)
		}
		if len(changes) == 0 {
			return ReviewStatus{}, ErrNoReview
		}

		sess = review.NewSession(doc.ID, doc.Name, doc.Content)
		s.active[doc.ID] = sess
		s.saver.Save(ctx, *sess)
		s.log.Info().Str("document_id", doc.ID).Str("session_id", sess.ID).Msg("review started")
		s.bus.PublishReviewStarted(eventbus.ReviewStartedPayload{Session: sess})
	} else if !inMemory {
		s.bus.PublishReviewStarted(eventbus.ReviewStartedPayload{Session: sess})
	}

	hunks, computed, target := s.currentHunksLocked(ctx, sess)
	processed := sess.ProcessedIDs()

	pending := 0
	for _, h := range hunks {
		if h.Kind != textdiff.HunkChange {
			continue
		}
		if _, ok := processed[h.ID]; !ok {
			pending++
		}
	}

	return ReviewStatus{
		SessionID:  sess.ID,
		DocumentID: sess.DocumentID,
		Recovered:  sess.Recovered,
		Hunks:      hunks,
		Processed:  processed,
		Pending:    pending,
		Decided:    len(sess.Queue),
		Complete:   len(sess.Queue) > 0 && computed == target,
	}, nil
}

// AcceptHunk records an accept decision for the hunk in the current
// diff. Unknown or already decided hunk ids are a logged no-op, never an
// error. Reports whether a decision was recorded.
func (s *ReviewService) AcceptHunk(ctx context.Context, doc document.Document, hunkID string) (bool, error) {
	return s.decide(ctx, doc, hunkID, review.PatchAccept)
}

// RejectHunk records a reject decision: the hunk is marked processed and
// contributes nothing to the content. Unknown or already decided hunk
// ids are a logged no-op.
func (s *ReviewService) RejectHunk(ctx context.Context, doc document.Document, hunkID string) (bool, error) {
	return s.decide(ctx, doc, hunkID, review.PatchReject)
}

func (s *ReviewService) decide(ctx context.Context, doc document.Document, hunkID string, kind review.PatchKind) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx = logging.WithDocumentID(ctx, doc.ID)

	sess, err := s.ensureForDecisionLocked(ctx, doc)
	if err != nil {
		return false, err
	}
	ctx = logging.WithSessionID(ctx, sess.ID)

	hunks, _, _ := s.currentHunksLocked(ctx, sess)

	var match *textdiff.Hunk
	for i := range hunks {
		if hunks[i].Kind == textdiff.HunkChange && hunks[i].ID == hunkID {
			match = &hunks[i]
			break
		}
	}

	if match == nil {
		s.log.Debug().Ctx(ctx).Str("hunk_id", hunkID).Msg("unknown hunk id, ignoring decision")
		return false, nil
	}
	if sess.Processed(hunkID) {
		s.log.Debug().Ctx(ctx).Str("hunk_id", hunkID).Msg("hunk already decided, ignoring")
		return false, nil
	}

	switch kind {
	case review.PatchAccept:
		sess.AcceptHunk(*match)
	case review.PatchReject:
		sess.RejectHunk(*match)
	}

	s.log.Info().Ctx(ctx).
		Str("hunk_id", hunkID).
		Str("kind", string(kind)).
		Msg("hunk decided")
	s.bus.PublishHunkDecided(eventbus.HunkDecidedPayload{
		DocumentID: sess.DocumentID,
		SessionID:  sess.ID,
		HunkID:     hunkID,
		Kind:       kind,
	})

	if !s.checkCompletionLocked(ctx, sess) {
		s.saver.Save(ctx, *sess)
	}

	return true, nil
}

// UndoLast removes the newest decision from the session's queue.
// Undoing an empty queue is a no-op.
func (s *ReviewService) UndoLast(ctx context.Context, doc document.Document) (review.Patch, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx = logging.WithDocumentID(ctx, doc.ID)

	sess, err := s.ensureForDecisionLocked(ctx, doc)
	if err != nil {
		return review.Patch{}, false, err
	}
	ctx = logging.WithSessionID(ctx, sess.ID)

	p, ok := sess.UndoLast()
	if !ok {
		return review.Patch{}, false, nil
	}

	s.log.Info().Ctx(ctx).
		Str("hunk_id", p.HunkID).
		Msg("decision undone")
	s.bus.PublishDecisionUndone(eventbus.DecisionUndonePayload{
		DocumentID: sess.DocumentID,
		SessionID:  sess.ID,
		PatchID:    p.ID,
		HunkID:     p.HunkID,
	})

	if !s.checkCompletionLocked(ctx, sess) {
		s.saver.Save(ctx, *sess)
	}

	return p, true, nil
}

// AcceptAll accepts every undecided change hunk in the current diff and
// resolves the review: the resulting content is written to storage,
// pending proposals are cleared, and the session closes. Hunks are
// accepted bottom-up so a splice never shifts the ranges of the hunks
// above it in the queue replay.
func (s *ReviewService) AcceptAll(ctx context.Context, doc document.Document) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.ensureForDecisionLocked(ctx, doc)
	if err != nil {
		return 0, err
	}

	hunks, _, target := s.currentHunksLocked(ctx, sess)

	var remaining []textdiff.Hunk
	decided := 0
	for _, h := range hunks {
		if h.Kind != textdiff.HunkChange {
			continue
		}
		if sess.Processed(h.ID) {
			decided++
			continue
		}
		remaining = append(remaining, h)
	}
	sort.Slice(remaining, func(i, j int) bool {
		return spliceStart(remaining[i]) > spliceStart(remaining[j])
	})

	for _, h := range remaining {
		sess.AcceptHunk(h)
	}

	computed := sess.Apply()
	// With no prior rejections, accepting every hunk replays to the
	// merged target exactly. The target is what the user accepted, so it
	// wins if the recorded ranges ever disagree.
	if decided == 0 && computed != target {
		s.log.Error().
			Str("document_id", sess.DocumentID).
			Str("session_id", sess.ID).
			Msg("accept-all replay diverged from merged target, writing target")
		computed = target
	}
	if err := s.docs.Write(ctx, sess.DocumentID, computed); err != nil {
		// Decisions stay recorded; a later close or accept-all retries
		// the write.
		s.saver.Save(ctx, *sess)
		return 0, fmt.Errorf("write document: %w", err)
	}

	s.resolveLocked(ctx, sess, eventbus.OutcomeAccepted)

	return len(remaining), nil
}

// RejectAll reverts the review: the baseline is written back to storage,
// or the document is deleted when the pending changes include a create.
// Pending proposals are cleared and the session closes.
func (s *ReviewService) RejectAll(ctx context.Context, doc document.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.ensureForDecisionLocked(ctx, doc)
	if err != nil {
		return err
	}

	changes, err := s.proposals.ForDocument(ctx, sess.DocumentID)
	if err != nil {
		s.log.Warn().Err(err).Str("document_id", sess.DocumentID).Msg("failed to read proposals during reject-all")
	}

	creation := false
	for _, change := range changes {
		if change.Kind == proposal.KindCreate {
			creation = true
			break
		}
	}

	if creation {
		if err := s.docs.Delete(ctx, sess.DocumentID); err != nil {
			return fmt.Errorf("delete created document: %w", err)
		}
	} else {
		if err := s.docs.Write(ctx, sess.DocumentID, sess.Baseline); err != nil {
			return fmt.Errorf("restore baseline: %w", err)
		}
	}

	s.resolveLocked(ctx, sess, eventbus.OutcomeReverted)

	return nil
}

// CloseReview abandons the review. Decisions made so far take effect:
// when the queue is non-empty the replayed content is written to
// storage first. Pending proposals are dropped.
func (s *ReviewService) CloseReview(ctx context.Context, doc document.Document, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeLocked(ctx, doc, reason, false)
}

// SwitchDocument closes the document's review because attention moved
// elsewhere. Unlike CloseReview it never fails the switch: storage
// errors are logged and the session is dropped regardless.
func (s *ReviewService) SwitchDocument(ctx context.Context, doc document.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.closeLocked(ctx, doc, "switched away", true)
}

func (s *ReviewService) closeLocked(ctx context.Context, doc document.Document, reason string, force bool) error {
	ctx = logging.WithDocumentID(ctx, doc.ID)

	sess, _ := s.lookupLocked(ctx, doc)

	var sessionID string
	if sess != nil {
		sessionID = sess.ID
		if len(sess.Queue) > 0 {
			computed := sess.Apply()
			if err := s.docs.Write(ctx, sess.DocumentID, computed); err != nil {
				if !force {
					return fmt.Errorf("write document: %w", err)
				}
				s.log.Error().Ctx(ctx).Err(err).Msg("write on close failed, closing anyway")
			}
		}
		delete(s.active, doc.ID)
		s.saver.Delete(ctx, doc.ID)
	}

	dropped, err := s.proposals.DropDocument(ctx, doc.ID)
	if err != nil {
		s.log.Warn().Ctx(ctx).Err(err).Msg("failed to drop pending proposals")
	}

	if sess == nil && dropped == 0 {
		if force {
			return nil
		}
		return ErrNoReview
	}

	if dropped > 0 {
		s.bus.PublishProposalsDropped(eventbus.ProposalsDroppedPayload{
			DocumentID: doc.ID,
			Count:      dropped,
			Reason:     reason,
		})
	}

	s.log.Info().Ctx(ctx).Str("session_id", sessionID).Str("reason", reason).Msg("review closed")
	s.bus.PublishReviewClosed(eventbus.ReviewClosedPayload{
		DocumentID: doc.ID,
		SessionID:  sessionID,
		Reason:     reason,
	})

	return nil
}

// lookupLocked finds the session for the document, restoring a persisted
// record when the in-memory registry has none. Sessions whose source
// identity no longer matches the document are discarded, never reused.
// The bool reports whether the session was already in memory.
func (s *ReviewService) lookupLocked(ctx context.Context, doc document.Document) (*review.Session, bool) {
	if sess, ok := s.active[doc.ID]; ok {
		if sess.SourceIdentity == doc.Name {
			return sess, true
		}
		s.log.Warn().
			Str("document_id", doc.ID).
			Str("session_id", sess.ID).
			Str("session_identity", sess.SourceIdentity).
			Str("document_identity", doc.Name).
			Msg("discarding session with stale source identity")
		delete(s.active, doc.ID)
		s.saver.Delete(ctx, doc.ID)
	}

	stored, err := s.sessions.Get(ctx, doc.ID)
	if err != nil {
		if !errors.Is(err, review.ErrSessionNotFound) {
			s.log.Warn().Err(err).Str("document_id", doc.ID).Msg("session store read failed")
		}
		return nil, false
	}

	if stored.SourceIdentity != doc.Name {
		s.log.Warn().
			Str("document_id", doc.ID).
			Str("session_id", stored.ID).
			Msg("discarding persisted session with stale source identity")
		s.saver.Delete(ctx, doc.ID)
		return nil, false
	}

	sess := stored
	s.active[doc.ID] = &sess
	return &sess, false
}

// ensureForDecisionLocked returns the session a decision applies to.
// When none exists it rebuilds a minimal session from the newest pending
// proposal's original content, so a decision arriving after a process
// restart still lands. With no session and no proposals there is nothing
// to decide on.
func (s *ReviewService) ensureForDecisionLocked(ctx context.Context, doc document.Document) (*review.Session, error) {
	if sess, _ := s.lookupLocked(ctx, doc); sess != nil {
		return sess, nil
	}

	changes, err := s.proposals.ForDocument(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("read proposals: %w", err)
	}
	if len(changes) == 0 {
		return nil, ErrNoReview
	}

	newest := changes[len(changes)-1]
	sess := review.NewSession(doc.ID, doc.Name, newest.OriginalContent)
	sess.Recovered = true
	s.active[doc.ID] = sess
	s.saver.Save(ctx, *sess)

	s.log.Warn().
		Str("document_id", doc.ID).
		Str("session_id", sess.ID).
		Str("change_id", newest.ID).
		Msg("no session for decision, rebuilt from newest pending proposal")
	s.bus.PublishReviewStarted(eventbus.ReviewStartedPayload{Session: sess})

	return sess, nil
}

// spliceStart is the old-side position a hunk's accept patch splices
// at, counting a pure insertion at its anchor. Bottom-up ordering in
// AcceptAll sorts on this so insertions land between the right
// neighbors.
func spliceStart(h textdiff.Hunk) int {
	if h.OldStart == 0 {
		return h.InsertAfter + 1
	}
	return h.OldStart
}

// currentHunksLocked computes the live diff for the session: replayed
// content on the old side, the merged proposal target on the new side.
func (s *ReviewService) currentHunksLocked(ctx context.Context, sess *review.Session) (hunks []textdiff.Hunk, computed, target string) {
	computed = sess.Apply()
	target = s.computeTargetLocked(ctx, sess)
	hunks = textdiff.Group(textdiff.Diff(computed, target), s.config.Review.ContextLines)
	return hunks, computed, target
}

func (s *ReviewService) computeTargetLocked(ctx context.Context, sess *review.Session) string {
	changes, err := s.proposals.ForDocument(ctx, sess.DocumentID)
	if err != nil {
		s.log.Warn().Err(err).Str("document_id", sess.DocumentID).Msg("failed to read proposals, target falls back to baseline")
		return sess.Baseline
	}

	result := proposal.Merge(sess.Baseline, s.documentExists(ctx, sess.DocumentID), changes)
	for _, skipped := range result.Skipped {
		s.log.Debug().
			Str("document_id", sess.DocumentID).
			Str("change_id", skipped.ID).
			Str("kind", string(skipped.Kind)).
			Msg("change skipped during merge")
	}

	return result.Content
}

func (s *ReviewService) documentExists(ctx context.Context, id string) bool {
	_, err := s.docs.Read(ctx, id)
	return err == nil
}

// checkCompletionLocked resolves the session when every change has been
// decided: the queue is non-empty and the replayed content equals the
// target. Returns true when the session was resolved and closed.
func (s *ReviewService) checkCompletionLocked(ctx context.Context, sess *review.Session) bool {
	if len(sess.Queue) == 0 {
		return false
	}

	computed := sess.Apply()
	if computed != s.computeTargetLocked(ctx, sess) {
		return false
	}

	if err := s.docs.Write(ctx, sess.DocumentID, computed); err != nil {
		// The review stays open; the next decision or close retries.
		s.log.Error().Err(err).
			Str("document_id", sess.DocumentID).
			Str("session_id", sess.ID).
			Msg("completion write failed, review stays open")
		return false
	}

	s.resolveLocked(ctx, sess, eventbus.OutcomeCompleted)

	return true
}

// resolveLocked finalizes a review that reached a terminal outcome:
// pending proposals are cleared and the session leaves both the registry
// and the persistent store.
func (s *ReviewService) resolveLocked(ctx context.Context, sess *review.Session, outcome string) {
	if _, err := s.proposals.DropDocument(ctx, sess.DocumentID); err != nil {
		s.log.Warn().Err(err).Str("document_id", sess.DocumentID).Msg("failed to clear resolved proposals")
	}

	delete(s.active, sess.DocumentID)
	s.saver.Delete(ctx, sess.DocumentID)

	s.log.Info().
		Str("document_id", sess.DocumentID).
		Str("session_id", sess.ID).
		Str("outcome", outcome).
		Int("decisions", len(sess.Queue)).
		Msg("review resolved")
	s.bus.PublishReviewResolved(eventbus.ReviewResolvedPayload{
		DocumentID: sess.DocumentID,
		SessionID:  sess.ID,
		Outcome:    outcome,
		Decisions:  len(sess.Queue),
	})
}
