package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ericfisherdev/reviewgate/internal/domain/model"
	"github.com/ericfisherdev/reviewgate/internal/domain/port/driven"
)

// --- Mock implementations ---

type trackingCall struct {
	Repo   string
	Title  string
	Body   string
	Labels []string
}

type mockClient struct {
	mu sync.Mutex

	fetchComments func(call int) ([]model.RawComment, error)
	// blockFetch makes FetchComments wait until its context is done.
	blockFetch    bool
	status        model.ChangeRequestStatus
	statusErr     error
	trackingID    int
	trackingErr   error
	trackingDelay time.Duration
	postErr       error

	commentCalls  int
	trackingCalls []trackingCall
	posted        []string
}

var _ driven.ChangeRequestClient = (*mockClient)(nil)

func (m *mockClient) FetchComments(ctx context.Context, _ model.ChangeRequestRef) ([]model.RawComment, error) {
	m.mu.Lock()
	m.commentCalls++
	call := m.commentCalls
	m.mu.Unlock()

	if m.blockFetch {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.fetchComments == nil {
		return nil, nil
	}
	return m.fetchComments(call)
}

func (m *mockClient) FetchStatus(_ context.Context, _ model.ChangeRequestRef) (model.ChangeRequestStatus, error) {
	return m.status, m.statusErr
}

func (m *mockClient) CreateTrackingItem(_ context.Context, repo, title, body string, labels []string) (int, error) {
	time.Sleep(m.trackingDelay)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.trackingCalls = append(m.trackingCalls, trackingCall{Repo: repo, Title: title, Body: body, Labels: labels})
	return m.trackingID, m.trackingErr
}

func (m *mockClient) PostComment(_ context.Context, _ model.ChangeRequestRef, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posted = append(m.posted, body)
	return m.postErr
}

// workflowClient adds reviewer-B workflow reporting to mockClient.
type workflowClient struct {
	*mockClient
	failed bool
	err    error
}

func (w *workflowClient) WorkflowRunFailed(_ context.Context, _ model.ChangeRequestRef, _ string) (bool, error) {
	return w.failed, w.err
}

type fakeClock struct {
	now     time.Time
	sleeps  []time.Duration
	onSleep func(n int)
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.sleeps = append(f.sleeps, d)
	f.now = f.now.Add(d)
	if f.onSleep != nil {
		f.onSleep(len(f.sleeps))
	}
	return ctx.Err()
}

type mockSignatureStore struct {
	sigs []model.ReviewerSignature
	err  error
}

func (m *mockSignatureStore) Add(_ context.Context, sig model.ReviewerSignature) (model.ReviewerSignature, error) {
	return sig, m.err
}
func (m *mockSignatureStore) Remove(_ context.Context, _ int64) error { return m.err }
func (m *mockSignatureStore) ListAll(_ context.Context) ([]model.ReviewerSignature, error) {
	return m.sigs, m.err
}

type mockEvaluationStore struct {
	mu    sync.Mutex
	saved []model.Evaluation
	err   error
}

func (m *mockEvaluationStore) Save(_ context.Context, eval model.Evaluation) (model.Evaluation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return model.Evaluation{}, m.err
	}
	eval.RunID = "01JTESTRUN0000000000000000"
	m.saved = append(m.saved, eval)
	return eval, nil
}
func (m *mockEvaluationStore) Latest(_ context.Context, _ model.ChangeRequestRef) (model.Evaluation, error) {
	if len(m.saved) == 0 {
		return model.Evaluation{}, driven.ErrEvaluationNotFound
	}
	return m.saved[len(m.saved)-1], nil
}
func (m *mockEvaluationStore) ListByChangeRequest(_ context.Context, _ model.ChangeRequestRef, _ int) ([]model.Evaluation, error) {
	return m.saved, nil
}

type mockTrackingStore struct {
	mu      sync.Mutex
	records map[model.ChangeRequestRef]model.TrackingRecord
	getErr  error
}

func newMockTrackingStore() *mockTrackingStore {
	return &mockTrackingStore{records: make(map[model.ChangeRequestRef]model.TrackingRecord)}
}

func (m *mockTrackingStore) Get(_ context.Context, ref model.ChangeRequestRef) (*model.TrackingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	rec, ok := m.records[ref]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *mockTrackingStore) Record(_ context.Context, rec model.TrackingRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.ChangeRequest] = rec
	return nil
}

type mockRecorder struct {
	mu        sync.Mutex
	waits     []model.ReviewStatus
	items     int
	decisions []model.MergeDecision
}

func (m *mockRecorder) ObserveWait(status model.ReviewStatus, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.waits = append(m.waits, status)
}
func (m *mockRecorder) ObserveItems(items []model.ReviewItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items += len(items)
}
func (m *mockRecorder) ObserveDecision(d model.MergeDecision) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions = append(m.decisions, d)
}

// --- Fixtures ---

var (
	testRef = model.ChangeRequestRef{Repo: "acme/widgets", Number: 7}

	errTransport = errors.New("connection reset by peer")

	reviewerAComment = model.RawComment{
		ID:     101,
		Author: "copilot-pull-request-reviewer[bot]",
		Body:   "Copilot reviewed 4 out of 4 changed files in this pull request.",
		Kind:   model.CommentKindReview,
	}
	reviewerBComment = model.RawComment{
		ID:     102,
		Author: "github-actions[bot]",
		Body:   "## 🔍 Perplexity Code Review\n\nNo major issues found.",
		Kind:   model.CommentKindGeneral,
	}
	humanComment = model.RawComment{
		ID:     103,
		Author: "alice",
		Body:   "Thanks, looks reasonable to me.",
		Kind:   model.CommentKindGeneral,
	}
)

func commentsOf(comments ...model.RawComment) func(int) ([]model.RawComment, error) {
	return func(int) ([]model.RawComment, error) { return comments, nil }
}
