package dataset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/langinsight/internal/assessment"
	"github.com/mind-engage/langinsight/internal/eventlog"
	"github.com/mind-engage/langinsight/internal/export"
	"github.com/mind-engage/langinsight/internal/insights"
	"github.com/mind-engage/langinsight/internal/interpret"
	"github.com/mind-engage/langinsight/internal/logger"
	"github.com/mind-engage/langinsight/internal/report"
	"github.com/mind-engage/langinsight/internal/storage"
)

var (
	ErrIngest          = errors.New("dataset ingestion failed")
	ErrNoDataset       = errors.New("no dataset loaded")
	ErrStudentNotFound = errors.New("student not found")
)

const (
	blobPrefix     = "datasets/"
	currentPointer = blobPrefix + "current"
)

// EventSink receives audit events; *eventlog.Repo implements it.
type EventSink interface {
	Record(ctx context.Context, typ, key, actor string, data any) error
}

// Snapshot is one immutable loaded dataset.
type Snapshot struct {
	ID          string
	Source      string
	BlobKey     string
	LoadedAt    time.Time
	Records     []assessment.Record
	Students    []assessment.Student
	SkippedRows int

	byID map[string]assessment.Student
}

type Summary struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	LoadedAt    time.Time `json:"loaded_at"`
	Records     int       `json:"records"`
	Students    int       `json:"students"`
	SkippedRows int       `json:"skipped_rows"`
	BlobKey     string    `json:"blob_key,omitempty"`
}

func (s *Snapshot) Summary() Summary {
	return Summary{
		ID:          s.ID,
		Source:      s.Source,
		LoadedAt:    s.LoadedAt,
		Records:     len(s.Records),
		Students:    len(s.Students),
		SkippedRows: s.SkippedRows,
		BlobKey:     s.BlobKey,
	}
}

type memoKey struct {
	studentID string
	audience  interpret.Audience
}

// state pairs a snapshot with the reports derived from it.
type state struct {
	snap *Snapshot

	mu      sync.Mutex
	reports map[memoKey]report.Report
}

type Config struct {
	Assembler *report.Assembler
	Blobs     storage.BlobStore // optional
	Events    EventSink         // optional
	Log       *logger.Logger
	Now       func() time.Time
}

// Service owns the current dataset and serves derivations from it.
type Service struct {
	assembler *report.Assembler
	blobs     storage.BlobStore
	events    EventSink
	log       *logger.Logger
	now       func() time.Time

	mu  sync.RWMutex
	cur *state
}

func NewService(cfg Config) *Service {
	if cfg.Log == nil {
		cfg.Log = logger.Nop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		assembler: cfg.Assembler,
		blobs:     cfg.Blobs,
		events:    cfg.Events,
		log:       cfg.Log.With("service", "Dataset"),
		now:       cfg.Now,
	}
}

// Load parses r and replaces the current snapshot. On error the previous
// snapshot stays in place.
func (s *Service) Load(ctx context.Context, r io.Reader, source, actor string) (Summary, error) {
	return s.load(ctx, r, source, actor, "")
}

// load persists the raw bytes unless they already live under blobKey.
func (s *Service) load(ctx context.Context, r io.Reader, source, actor, blobKey string) (Summary, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Summary{}, fmt.Errorf("%w: read: %v", ErrIngest, err)
	}
	rows, err := assessment.ParseCSV(bytes.NewReader(raw))
	if err != nil {
		return Summary{}, fmt.Errorf("%w: %v", ErrIngest, err)
	}

	snap := &Snapshot{
		ID:       uuid.NewString(),
		Source:   source,
		BlobKey:  blobKey,
		LoadedAt: s.now(),
	}
	snap.Records = assessment.Normalize(rows, assessment.Options{
		Now: snap.LoadedAt,
		OnSkip: func(i int, reason string) {
			snap.SkippedRows++
			s.log.Debug("row skipped", "row", i, "reason", reason)
		},
	})
	snap.Students = assessment.Students(snap.Records)
	snap.byID = make(map[string]assessment.Student, len(snap.Students))
	for _, st := range snap.Students {
		snap.byID[st.ID] = st
	}

	if blobKey == "" && s.blobs != nil {
		snap.BlobKey = s.persist(ctx, snap.ID, raw)
	}

	s.mu.Lock()
	s.cur = &state{snap: snap, reports: map[memoKey]report.Report{}}
	s.mu.Unlock()

	sum := snap.Summary()
	s.log.Info("dataset loaded",
		"id", sum.ID, "source", sum.Source,
		"records", sum.Records, "students", sum.Students, "skipped", sum.SkippedRows)
	s.record(ctx, eventlog.TypeDatasetLoaded, sum.ID, actor, sum)
	return sum, nil
}

// persist stores the raw upload and moves the current pointer to it. Failures
// are logged; the in-memory snapshot is still usable.
func (s *Service) persist(ctx context.Context, id string, raw []byte) string {
	key, err := s.blobs.Put(ctx, blobPrefix+id+".csv", bytes.NewReader(raw))
	if err != nil {
		s.log.Warn("dataset blob save failed", "id", id, "error", err)
		return ""
	}
	if _, err := s.blobs.Put(ctx, currentPointer, strings.NewReader(key)); err != nil {
		s.log.Warn("dataset pointer update failed", "key", key, "error", err)
	}
	return key
}

// LoadLatest reloads the most recently persisted upload. It reports false
// when nothing has been persisted yet.
func (s *Service) LoadLatest(ctx context.Context) (bool, error) {
	if s.blobs == nil {
		return false, nil
	}
	ptr, err := s.blobs.Get(ctx, currentPointer)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	keyBytes, err := io.ReadAll(ptr)
	_ = ptr.Close()
	if err != nil {
		return false, err
	}
	key := strings.TrimSpace(string(keyBytes))
	rc, err := s.blobs.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("open %s: %w", key, err)
	}
	defer rc.Close()
	if _, err := s.load(ctx, rc, "blob:"+key, "", key); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) current() (*state, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cur == nil {
		return nil, ErrNoDataset
	}
	return s.cur, nil
}

// Ready reports whether a dataset has been loaded.
func (s *Service) Ready() bool {
	_, err := s.current()
	return err == nil
}

func (s *Service) Current() (Summary, error) {
	st, err := s.current()
	if err != nil {
		return Summary{}, err
	}
	return st.snap.Summary(), nil
}

func (s *Service) Students() ([]assessment.Student, error) {
	st, err := s.current()
	if err != nil {
		return nil, err
	}
	return append([]assessment.Student{}, st.snap.Students...), nil
}

func (st *state) student(id string) (assessment.Student, []assessment.Record, error) {
	stu, ok := st.snap.byID[id]
	if !ok {
		return assessment.Student{}, nil, fmt.Errorf("%w: %s", ErrStudentNotFound, id)
	}
	return stu, assessment.ForStudent(st.snap.Records, id), nil
}

// Assessments returns the student's records oldest first.
func (s *Service) Assessments(studentID string) ([]assessment.Record, error) {
	st, err := s.current()
	if err != nil {
		return nil, err
	}
	_, recs, err := st.student(studentID)
	if err != nil {
		return nil, err
	}
	return assessment.Chronological(recs), nil
}

// Report is memoized per (student, audience) for the lifetime of a snapshot.
func (s *Service) Report(studentID string, audience interpret.Audience) (report.Report, error) {
	st, err := s.current()
	if err != nil {
		return report.Report{}, err
	}
	key := memoKey{studentID: studentID, audience: audience}
	st.mu.Lock()
	rep, ok := st.reports[key]
	st.mu.Unlock()
	if ok {
		return rep, nil
	}

	stu, recs, err := st.student(studentID)
	if err != nil {
		return report.Report{}, err
	}
	rep = s.assembler.Assemble(stu, recs, audience)

	st.mu.Lock()
	st.reports[key] = rep
	st.mu.Unlock()
	return rep, nil
}

func (s *Service) Insights(studentID string) ([]insights.Insight, error) {
	st, err := s.current()
	if err != nil {
		return nil, err
	}
	_, recs, err := st.student(studentID)
	if err != nil {
		return nil, err
	}
	return insights.Heuristics(recs), nil
}

// Export writes the plain-text report for a student and returns its file name.
func (s *Service) Export(ctx context.Context, w io.Writer, studentID, actor string) (string, error) {
	st, err := s.current()
	if err != nil {
		return "", err
	}
	stu, recs, err := st.student(studentID)
	if err != nil {
		return "", err
	}
	now := s.now()
	if err := export.WriteText(w, stu, recs, insights.Heuristics(recs), now); err != nil {
		return "", err
	}
	name := export.Filename(stu, now)
	s.record(ctx, eventlog.TypeReportExported, stu.ID, actor, map[string]string{
		"dataset": st.snap.ID,
		"file":    name,
	})
	return name, nil
}

func (s *Service) record(ctx context.Context, typ, key, actor string, data any) {
	if s.events == nil {
		return
	}
	if err := s.events.Record(ctx, typ, key, actor, data); err != nil {
		s.log.Warn("event append failed", "type", typ, "key", key, "error", err)
	}
}
