package usecase

import (
	"context"
	"io"
	"log/slog"
	"time"

	"NewsHarvester/internal/domain"
	"NewsHarvester/internal/ports"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeItems struct {
	items  map[int64]*domain.ScrapedItem
	byURL  map[string]int64
	nextID int64

	statusHistory []domain.PipelineStatus
	getErr        error
	setStatusErr  error
	saveErr       error
}

func newFakeItems() *fakeItems {
	return &fakeItems{items: map[int64]*domain.ScrapedItem{}, byURL: map[string]int64{}}
}

func (f *fakeItems) Upsert(_ context.Context, item domain.ScrapedItem) (int64, error) {
	id, ok := f.byURL[item.URL]
	if !ok {
		f.nextID++
		id = f.nextID
		f.byURL[item.URL] = id
	}
	item.ID = id
	item.Status = domain.StatusPending
	item.ErrorDetail = ""
	f.items[id] = &item
	return id, nil
}

func (f *fakeItems) GetByID(_ context.Context, id int64) (*domain.ScrapedItem, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	item, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	copied := *item
	return &copied, nil
}

func (f *fakeItems) SetStatus(_ context.Context, id int64, status domain.PipelineStatus, detail string) error {
	if f.setStatusErr != nil {
		return f.setStatusErr
	}
	item, ok := f.items[id]
	if !ok {
		return nil
	}
	item.Status = status
	item.ErrorDetail = detail
	f.statusHistory = append(f.statusHistory, status)
	return nil
}

func (f *fakeItems) SaveAnalysis(_ context.Context, id int64, analysis domain.Analysis) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	item, ok := f.items[id]
	if !ok {
		return nil
	}
	item.Summary = analysis.Summary
	item.Tags = analysis.Tags
	item.Category = analysis.Category
	item.Urgency = analysis.Urgency
	item.Status = domain.StatusCompleted
	item.ErrorDetail = ""
	f.statusHistory = append(f.statusHistory, domain.StatusCompleted)
	return nil
}

func (f *fakeItems) List(_ context.Context, skip, limit int) ([]domain.ScrapedItem, error) {
	var out []domain.ScrapedItem
	for id := f.nextID; id >= 1; id-- {
		if item, ok := f.items[id]; ok {
			copied := *item
			copied.CleanText = ""
			out = append(out, copied)
		}
	}
	if skip >= len(out) {
		return nil, nil
	}
	out = out[skip:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

type fakeSources struct {
	byDomain map[string]*domain.Source
	nextID   int64

	// raceOnCreate simulates a concurrent insert winning: Create reports the
	// duplicate and plants the row the re-read will find.
	raceOnCreate bool
	touched      []int64
}

func newFakeSources() *fakeSources {
	return &fakeSources{byDomain: map[string]*domain.Source{}}
}

func (f *fakeSources) GetByDomain(_ context.Context, dom string) (*domain.Source, error) {
	source, ok := f.byDomain[dom]
	if !ok {
		return nil, nil
	}
	copied := *source
	return &copied, nil
}

func (f *fakeSources) Create(_ context.Context, dom string) (*domain.Source, error) {
	if f.raceOnCreate {
		f.raceOnCreate = false
		f.nextID++
		f.byDomain[dom] = &domain.Source{ID: f.nextID, Domain: dom}
		return nil, ports.ErrDuplicateSource
	}
	f.nextID++
	source := &domain.Source{ID: f.nextID, Domain: dom}
	f.byDomain[dom] = source
	return source, nil
}

func (f *fakeSources) TouchLastCrawled(_ context.Context, id int64, at time.Time) error {
	f.touched = append(f.touched, id)
	for _, source := range f.byDomain {
		if source.ID == id {
			source.LastCrawledAt = at
		}
	}
	return nil
}

type fakeJobs struct {
	jobs      map[int64]*domain.ScheduledJob
	nextID    int64
	stamped   map[int64]time.Time
	intervals map[int64]int
}

func newFakeJobs() *fakeJobs {
	return &fakeJobs{
		jobs:      map[int64]*domain.ScheduledJob{},
		stamped:   map[int64]time.Time{},
		intervals: map[int64]int{},
	}
}

func (f *fakeJobs) add(job domain.ScheduledJob) int64 {
	f.nextID++
	job.ID = f.nextID
	f.jobs[job.ID] = &job
	return job.ID
}

func (f *fakeJobs) Create(_ context.Context, job domain.ScheduledJob) (int64, error) {
	return f.add(job), nil
}

func (f *fakeJobs) GetByID(_ context.Context, id int64) (*domain.ScheduledJob, error) {
	job, ok := f.jobs[id]
	if !ok {
		return nil, nil
	}
	copied := *job
	return &copied, nil
}

func (f *fakeJobs) List(_ context.Context) ([]domain.ScheduledJob, error) {
	var out []domain.ScheduledJob
	for _, job := range f.jobs {
		out = append(out, *job)
	}
	return out, nil
}

func (f *fakeJobs) ListActive(_ context.Context) ([]domain.ScheduledJob, error) {
	var out []domain.ScheduledJob
	for _, job := range f.jobs {
		if job.IsActive {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (f *fakeJobs) Delete(_ context.Context, id int64) error {
	delete(f.jobs, id)
	return nil
}

func (f *fakeJobs) StampTriggered(_ context.Context, id int64, at time.Time) error {
	f.stamped[id] = at
	if job, ok := f.jobs[id]; ok {
		stamp := at
		job.LastTriggeredAt = &stamp
	}
	return nil
}

func (f *fakeJobs) UpdateInterval(_ context.Context, id int64, seconds int) error {
	f.intervals[id] = seconds
	if job, ok := f.jobs[id]; ok {
		job.IntervalSeconds = seconds
	}
	return nil
}

type fakeAudit struct {
	entries []domain.AuditEntry
}

func (f *fakeAudit) Append(_ context.Context, entry domain.AuditEntry) error {
	f.entries = append(f.entries, entry)
	return nil
}

type fakeGate struct {
	allowed  bool
	checkErr error
}

func (f *fakeGate) Allowed(context.Context, string) (bool, error) {
	return f.allowed, f.checkErr
}

type fakeFetcher struct {
	html string
	err  error
}

func (f *fakeFetcher) Fetch(context.Context, string) (string, error) {
	return f.html, f.err
}

type fakeExtractor struct {
	page domain.ExtractedPage
}

func (f *fakeExtractor) Extract(string) domain.ExtractedPage {
	return f.page
}

// fakeAnalyzer replays a scripted sequence of results, one per call.
type fakeAnalyzer struct {
	results []analyzerResult
	calls   int
}

type analyzerResult struct {
	analysis *domain.Analysis
	err      error
}

func (f *fakeAnalyzer) Analyze(context.Context, string) (*domain.Analysis, error) {
	idx := f.calls
	f.calls++
	if idx >= len(f.results) {
		idx = len(f.results) - 1
	}
	r := f.results[idx]
	return r.analysis, r.err
}

type fakeDispatcher struct {
	ingest []ports.IngestTask
	enrich []ports.EnrichTask
	err    error
}

func (f *fakeDispatcher) EnqueueIngest(_ context.Context, task ports.IngestTask) error {
	if f.err != nil {
		return f.err
	}
	f.ingest = append(f.ingest, task)
	return nil
}

func (f *fakeDispatcher) EnqueueEnrich(_ context.Context, task ports.EnrichTask) error {
	if f.err != nil {
		return f.err
	}
	f.enrich = append(f.enrich, task)
	return nil
}

type fakeAdjuster struct {
	urgencyCalls   []int64
	urgencies      []int
	noContentCalls []int64
}

func (f *fakeAdjuster) AdjustFromUrgency(_ context.Context, jobID int64, urgency int) error {
	f.urgencyCalls = append(f.urgencyCalls, jobID)
	f.urgencies = append(f.urgencies, urgency)
	return nil
}

func (f *fakeAdjuster) AdjustNoContent(_ context.Context, jobID int64) error {
	f.noContentCalls = append(f.noContentCalls, jobID)
	return nil
}
