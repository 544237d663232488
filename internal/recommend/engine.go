// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/degreematch/internal/cache"
	"github.com/tomtom215/degreematch/internal/metrics"
	"github.com/tomtom215/degreematch/internal/recommend/embedding"
	"github.com/tomtom215/degreematch/internal/recommend/scoring"
	"github.com/tomtom215/degreematch/internal/recommend/vector"
)

// Engine errors.
var (
	// ErrNotReady is returned when no snapshot has been published yet.
	ErrNotReady = errors.New("recommendation model not ready")

	// ErrNoModel is returned by Restore when no stored model exists.
	ErrNoModel = errors.New("no stored model")

	// ErrTrainingInProgress is returned when Train is called concurrently.
	ErrTrainingInProgress = errors.New("training already in progress")

	// ErrCourseNotFound is returned for a course missing from the snapshot.
	ErrCourseNotFound = errors.New("course not found")

	// ErrProgramNotFound is returned for a program missing from the snapshot.
	ErrProgramNotFound = errors.New("program not found")

	// ErrNoDataProvider is returned when training or reloading without a
	// DataProvider.
	ErrNoDataProvider = errors.New("data provider not set")

	// ErrInvalidRequest is returned for requests that violate configured
	// limits.
	ErrInvalidRequest = errors.New("invalid request")
)

// Training phases reported in TrainingStatus.Phase.
const (
	phaseLoading   = "loading"
	phaseTraining  = "training"
	phaseEmbedding = "embedding"
	phasePersist   = "persisting"
	phasePublish   = "publishing"
)

// Engine trains the vector-space model, publishes immutable snapshots and
// answers recommendation queries against the current snapshot. It is safe
// for concurrent use.
type Engine struct {
	configMu sync.RWMutex
	config   *Config
	scorer   *scoring.Scorer

	logger zerolog.Logger

	// Current snapshot; nil until the first Train, Restore or Reload.
	snapshot atomic.Pointer[Snapshot]
	version  atomic.Int64

	// trainMu serializes Train, Restore, Reload and RefreshEmbeddings.
	trainMu sync.Mutex

	// statusMu guards status so GetStatus never waits on training.
	statusMu sync.RWMutex
	status   TrainingStatus

	requestCount      atomic.Int64
	cacheHits         atomic.Int64
	cacheMisses       atomic.Int64
	errorCount        atomic.Int64
	trainingCount     atomic.Int64
	skippedCandidates atomic.Int64

	// responses is swapped whole when the cache settings change.
	responses atomic.Pointer[cache.LRU[*ProgramResponse]]

	dataProvider DataProvider
	writer       EmbeddingWriter
	store        ModelStore
}

// NewEngine creates a new recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	scorer, err := scoring.NewScorer(cfg.Scoring)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	e := &Engine{
		config: cfg.Clone(),
		scorer: scorer,
		logger: logger.With().Str("component", "recommend").Logger(),
	}
	e.responses.Store(newResponseCache(cfg.Cache))
	return e, nil
}

//nolint:gocritic // hugeParam: cache config is a small value type
func newResponseCache(cc CacheConfig) *cache.LRU[*ProgramResponse] {
	return cache.NewLRU[*ProgramResponse](cc.MaxEntries, cc.TTL)
}

// SetDataProvider sets the catalog source for training and reloads.
func (e *Engine) SetDataProvider(dp DataProvider) {
	e.trainMu.Lock()
	defer e.trainMu.Unlock()
	e.dataProvider = dp
}

// SetEmbeddingWriter sets where recomputed vectors are persisted.
func (e *Engine) SetEmbeddingWriter(w EmbeddingWriter) {
	e.trainMu.Lock()
	defer e.trainMu.Unlock()
	e.writer = w
}

// SetModelStore sets where trained models are saved and restored from.
func (e *Engine) SetModelStore(s ModelStore) {
	e.trainMu.Lock()
	defer e.trainMu.Unlock()
	e.store = s
}

// Snapshot returns the current snapshot, or nil before the first publish.
func (e *Engine) Snapshot() *Snapshot {
	return e.snapshot.Load()
}

// IsReady reports whether a snapshot is available.
func (e *Engine) IsReady() bool {
	return e.snapshot.Load() != nil
}

// IsTraining reports whether a training run is in progress.
func (e *Engine) IsTraining() bool {
	e.statusMu.RLock()
	defer e.statusMu.RUnlock()
	return e.status.IsTraining
}

// settings returns the current config and scorer as a consistent pair.
func (e *Engine) settings() (*Config, *scoring.Scorer) {
	e.configMu.RLock()
	defer e.configMu.RUnlock()
	return e.config, e.scorer
}

// Train loads the catalog, trains a new model, recomputes and persists every
// vector, and publishes a new snapshot. Returns ErrTrainingInProgress
// immediately if another run holds the lock.
func (e *Engine) Train(ctx context.Context) error {
	if !e.trainMu.TryLock() {
		return ErrTrainingInProgress
	}
	defer e.trainMu.Unlock()

	if e.dataProvider == nil {
		return ErrNoDataProvider
	}

	cfg, _ := e.settings()
	start := time.Now()
	e.beginTraining()
	e.trainingCount.Add(1)
	e.logger.Info().Msg("starting model training")

	trainCtx, cancel := context.WithTimeout(ctx, cfg.Training.Timeout)
	defer cancel()

	snap, err := e.train(trainCtx, cfg)
	duration := time.Since(start)
	e.endTraining(snap, duration, err)

	if err != nil {
		metrics.RecordTraining("failure", duration, 0)
		e.logger.Error().Err(err).Dur("duration", duration).Msg("model training failed")
		return err
	}

	metrics.RecordTraining("success", duration, snap.Model().Len())
	e.logger.Info().
		Int("version", snap.Version).
		Int("vocabulary", snap.Model().Len()).
		Int("courses", snap.CourseCount()).
		Int("programs", snap.ProgramCount()).
		Int64("duration_ms", duration.Milliseconds()).
		Msg("model training complete")
	return nil
}

//nolint:gocritic // hugeParam: cfg is a pointer to an immutable config
func (e *Engine) train(ctx context.Context, cfg *Config) (*Snapshot, error) {
	e.setPhase(phaseLoading, 0)
	courses, programs, err := e.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	corpus := make([]embedding.CorpusItem, 0, len(courses)+len(programs))
	for i := range courses {
		corpus = append(corpus, courses[i].CorpusItem())
	}
	for i := range programs {
		corpus = append(corpus, programs[i].CorpusItem())
	}
	if len(corpus) < cfg.Training.MinCorpusItems {
		return nil, fmt.Errorf("insufficient training data: %d < %d items", len(corpus), cfg.Training.MinCorpusItems)
	}

	e.setPhase(phaseTraining, 5)
	trainer := embedding.NewTrainer(cfg.Training.Model, e.logger)
	trainer.SetProgress(func(epoch, epochs int) {
		e.setPhase(phaseTraining, 5+(80*epoch)/epochs)
	})
	model, err := trainer.Train(ctx, corpus)
	if err != nil {
		return nil, fmt.Errorf("train model: %w", err)
	}

	e.setPhase(phaseEmbedding, 85)
	set, err := BuildEmbeddings(ctx, model, courses, programs)
	if err != nil {
		return nil, fmt.Errorf("build embeddings: %w", err)
	}
	e.logger.Info().
		Int("courses", set.Stats.Courses).
		Int("programs", set.Stats.Programs).
		Int("courses_without_signal", set.Stats.CoursesWithoutSignal).
		Int("programs_without_vector", set.Stats.ProgramsWithoutVector).
		Msg("embeddings computed")

	if cfg.Training.PersistEmbeddings && e.writer != nil {
		e.setPhase(phasePersist, 90)
		if err := e.persistEmbeddings(ctx, set); err != nil {
			// The new snapshot is still valid; the catalog keeps stale vectors
			// until the next refresh.
			e.logger.Error().Err(err).Msg("failed to persist embeddings")
		}
	}
	set.Apply(courses, programs)

	e.setPhase(phasePublish, 95)
	snap, stats := BuildSnapshot(model, courses, programs, SnapshotOptions{UseCourseWeights: cfg.Rank.UseCourseWeights}, e.logger)
	snap.TrainedAt = time.Now()

	if e.store != nil {
		stored, err := e.store.SaveModel(ctx, model, trainer.Config())
		if err != nil {
			e.logger.Error().Err(err).Msg("failed to save model")
		} else {
			snap.StoredVersion = stored
		}
	}

	e.publish(snap)
	e.logSnapshot(snap, stats)
	return snap, nil
}

// Restore loads the newest stored model and builds a snapshot from the
// current catalog without training.
func (e *Engine) Restore(ctx context.Context) error {
	e.trainMu.Lock()
	defer e.trainMu.Unlock()

	if e.store == nil {
		return ErrNoModel
	}
	if e.dataProvider == nil {
		return ErrNoDataProvider
	}

	model, version, err := e.store.LoadLatestModel(ctx)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}

	snap, err := e.rebuild(ctx, model)
	if err != nil {
		return err
	}
	snap.StoredVersion = version
	snap.TrainedAt = time.Now()
	e.publish(snap)

	e.statusMu.Lock()
	e.status.StoredModelVersion = version
	e.statusMu.Unlock()

	e.logger.Info().
		Int("stored_version", version).
		Int("version", snap.Version).
		Msg("model restored")
	return nil
}

// Reload rebuilds the snapshot from current catalog data using the current
// model. Used after catalog changes.
func (e *Engine) Reload(ctx context.Context) error {
	e.trainMu.Lock()
	defer e.trainMu.Unlock()

	current := e.snapshot.Load()
	if current == nil {
		return ErrNotReady
	}
	if e.dataProvider == nil {
		return ErrNoDataProvider
	}

	snap, err := e.rebuild(ctx, current.Model())
	if err != nil {
		return err
	}
	snap.StoredVersion = current.StoredVersion
	snap.TrainedAt = current.TrainedAt
	e.publish(snap)
	return nil
}

// RefreshEmbeddings recomputes every course and program vector with the
// current model, persists them, and reloads the snapshot.
func (e *Engine) RefreshEmbeddings(ctx context.Context) (EmbeddingStats, error) {
	e.trainMu.Lock()
	defer e.trainMu.Unlock()

	current := e.snapshot.Load()
	if current == nil {
		return EmbeddingStats{}, ErrNotReady
	}
	if e.dataProvider == nil {
		return EmbeddingStats{}, ErrNoDataProvider
	}

	courses, programs, err := e.loadCatalog(ctx)
	if err != nil {
		return EmbeddingStats{}, err
	}
	set, err := BuildEmbeddings(ctx, current.Model(), courses, programs)
	if err != nil {
		return EmbeddingStats{}, fmt.Errorf("build embeddings: %w", err)
	}
	if e.writer != nil {
		if err := e.persistEmbeddings(ctx, set); err != nil {
			return set.Stats, err
		}
	}
	set.Apply(courses, programs)

	cfg, _ := e.settings()
	snap, stats := BuildSnapshot(current.Model(), courses, programs, SnapshotOptions{UseCourseWeights: cfg.Rank.UseCourseWeights}, e.logger)
	snap.StoredVersion = current.StoredVersion
	snap.TrainedAt = current.TrainedAt
	e.publish(snap)
	e.logSnapshot(snap, stats)

	return set.Stats, nil
}

func (e *Engine) rebuild(ctx context.Context, model *embedding.Model) (*Snapshot, error) {
	courses, programs, err := e.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	cfg, _ := e.settings()
	snap, stats := BuildSnapshot(model, courses, programs, SnapshotOptions{UseCourseWeights: cfg.Rank.UseCourseWeights}, e.logger)
	e.logSnapshot(snap, stats)
	return snap, nil
}

func (e *Engine) loadCatalog(ctx context.Context) ([]Course, []Program, error) {
	courses, err := e.dataProvider.ListCourses(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list courses: %w", err)
	}
	programs, err := e.dataProvider.ListPrograms(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list programs: %w", err)
	}

	e.statusMu.Lock()
	e.status.CourseCount = len(courses)
	e.status.ProgramCount = len(programs)
	e.statusMu.Unlock()

	e.logger.Info().
		Int("courses", len(courses)).
		Int("programs", len(programs)).
		Msg("loaded catalog")
	return courses, programs, nil
}

func (e *Engine) persistEmbeddings(ctx context.Context, set *EmbeddingSet) error {
	if err := e.writer.SaveCourseVectors(ctx, set.Courses); err != nil {
		return fmt.Errorf("save course vectors: %w", err)
	}
	if err := e.writer.SaveProgramVectors(ctx, set.Programs); err != nil {
		return fmt.Errorf("save program vectors: %w", err)
	}
	return nil
}

// publish assigns the next version to snap and makes it current.
func (e *Engine) publish(snap *Snapshot) {
	snap.Version = int(e.version.Add(1))
	e.snapshot.Store(snap)
	e.clearCache()

	e.statusMu.Lock()
	e.status.Ready = true
	e.status.ModelVersion = snap.Version
	e.status.StoredModelVersion = snap.StoredVersion
	e.status.VocabularySize = snap.Model().Len()
	e.status.Dimension = snap.Dim()
	e.status.CourseCount = snap.CourseCount()
	e.status.ProgramCount = snap.ProgramCount()
	if !snap.TrainedAt.IsZero() {
		e.status.LastTrainedAt = snap.TrainedAt
	}
	e.statusMu.Unlock()
}

//nolint:gocritic // hugeParam: stats is a small value type
func (e *Engine) logSnapshot(snap *Snapshot, stats SnapshotStats) {
	e.logger.Info().
		Int("courses", stats.Courses).
		Int("courses_vectorized", stats.CoursesVectorized).
		Int("programs", stats.Programs).
		Int("programs_direct", stats.ProgramsDirect).
		Int("programs_derived", stats.ProgramsDerived).
		Int("programs_no_vector", stats.ProgramsNoVector).
		Int("dimension", snap.Dim()).
		Msg("snapshot built")
}

func (e *Engine) beginTraining() {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	e.status.IsTraining = true
	e.status.Progress = 0
	e.status.Phase = phaseLoading
	e.status.LastError = ""
}

func (e *Engine) setPhase(phase string, progress int) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	e.status.Phase = phase
	e.status.Progress = progress
}

func (e *Engine) endTraining(snap *Snapshot, duration time.Duration, err error) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	e.status.IsTraining = false
	e.status.Phase = ""
	e.status.LastTrainingDurationMS = duration.Milliseconds()
	if err != nil {
		e.status.LastError = err.Error()
		return
	}
	e.status.Progress = 100
	if snap != nil {
		e.status.LastTrainedAt = snap.TrainedAt
	}
}

// SetNextScheduledTraining records when the scheduler will train next.
func (e *Engine) SetNextScheduledTraining(t time.Time) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	e.status.NextScheduledTraining = t
}

// RecommendPrograms ranks programs against the aggregate of the requested
// courses. Courses unknown to the snapshot are reported in Missing; the
// request fails with vector.ErrNoEmbedding only when none are known.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) RecommendPrograms(ctx context.Context, req ProgramRequest) (*ProgramResponse, error) {
	start := time.Now()
	e.requestCount.Add(1)

	snap := e.snapshot.Load()
	if snap == nil {
		e.errorCount.Add(1)
		return nil, ErrNotReady
	}
	cfg, scorer := e.settings()

	req, err := e.prepareRequest(req, cfg)
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}
	logger := e.logger.With().
		Str("request_id", req.RequestID).
		Int("courses", len(req.Courses)).
		Logger()

	minSim := *req.MinSimilarity
	key := cacheKey(snap.Version, &req)
	if cfg.Cache.Enabled {
		if resp := e.checkCache(key); resp != nil {
			e.cacheHits.Add(1)
			metrics.RecordCacheResult(true)
			resp.Metadata.RequestID = req.RequestID
			resp.Metadata.CacheHit = true
			resp.Metadata.LatencyMS = time.Since(start).Milliseconds()
			logger.Debug().Msg("cache hit")
			return resp, nil
		}
		e.cacheMisses.Add(1)
		metrics.RecordCacheResult(false)
	}

	schedule, missing, err := snap.ScheduleVector(req.Courses, cfg.Rank.UseCourseWeights)
	if err != nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("schedule has no known courses: %w", err)
	}
	if len(missing) > 0 {
		logger.Debug().Int("missing", len(missing)).Msg("schedule courses without vectors")
	}

	// Codes only intersect within one institution's namespace.
	codes := make([]string, 0, len(req.Courses))
	for _, c := range req.Courses {
		if SameInstitution(c.Institution, req.Institution) {
			codes = append(codes, c.Code)
		}
	}

	results, stats, err := RankWithStats(ctx, scorer, Query{
		Vector:      schedule,
		Codes:       codes,
		Institution: req.Institution,
	}, snap.Candidates(), RankOptions{
		TopN:              req.TopN,
		MinSimilarity:     minSim,
		ParallelThreshold: cfg.Rank.ParallelThreshold,
		Workers:           cfg.Rank.Workers,
	}, logger)
	if err != nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("rank programs: %w", err)
	}
	e.skippedCandidates.Add(int64(stats.Skipped))

	resp := &ProgramResponse{
		Recommendations: e.buildRecommendations(snap, results),
		Missing:         missing,
		Metadata: ResponseMetadata{
			RequestID:       req.RequestID,
			ScheduleCourses: len(req.Courses),
			Candidates:      stats.Candidates,
			Skipped:         stats.Skipped,
			TopN:            req.TopN,
			MinSimilarity:   minSim,
			SnapshotVersion: snap.Version,
			TrainedAt:       snap.TrainedAt,
			LatencyMS:       time.Since(start).Milliseconds(),
			Timestamp:       time.Now(),
		},
	}
	metrics.RecommendationsTotal.Inc()

	if cfg.Cache.Enabled {
		e.storeCache(key, resp)
	}

	logger.Debug().
		Int("candidates", stats.Candidates).
		Int("qualified", stats.Qualified).
		Int("returned", len(resp.Recommendations)).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation complete")

	return resp, nil
}

// prepareRequest applies defaults and limits and canonicalizes course keys.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(req ProgramRequest, cfg *Config) (ProgramRequest, error) {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if len(req.Courses) == 0 {
		return req, fmt.Errorf("%w: at least one course is required", ErrInvalidRequest)
	}
	if len(req.Courses) > cfg.Limits.MaxScheduleCourses {
		return req, fmt.Errorf("%w: %d courses exceeds limit of %d", ErrInvalidRequest, len(req.Courses), cfg.Limits.MaxScheduleCourses)
	}

	courses := make([]CourseKey, len(req.Courses))
	for i, c := range req.Courses {
		courses[i] = c.Canonical()
	}
	req.Courses = courses
	req.Institution = strings.TrimSpace(req.Institution)

	if req.TopN <= 0 {
		req.TopN = cfg.Rank.TopN
	}
	if req.TopN > cfg.Limits.MaxTopN {
		req.TopN = cfg.Limits.MaxTopN
	}

	minSim := cfg.Rank.MinSimilarity
	if req.MinSimilarity != nil {
		minSim = *req.MinSimilarity
		if minSim < 0 || minSim > 1 {
			return req, fmt.Errorf("%w: min_similarity must be in [0, 1], got %f", ErrInvalidRequest, minSim)
		}
	}
	req.MinSimilarity = &minSim

	return req, nil
}

func (e *Engine) buildRecommendations(snap *Snapshot, results []Result) []ProgramRecommendation {
	recs := make([]ProgramRecommendation, 0, len(results))
	for i := range results {
		r := &results[i]
		p := &snap.programs[r.Index].program
		recs = append(recs, ProgramRecommendation{
			Rank:           i + 1,
			Program:        p.Key(),
			DegreeType:     p.DegreeType,
			Department:     p.Department,
			Score:          r.Score,
			Semantic:       r.Semantic,
			Raw:            r.Raw,
			Overlap:        r.Overlap,
			OverlapApplied: r.OverlapApplied,
		})
	}
	return recs
}

// SimilarCourses returns the courses closest to req.Course by cosine
// similarity, optionally restricted to one institution. The course itself
// is excluded.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) SimilarCourses(ctx context.Context, req SimilarRequest) ([]SimilarCourse, error) {
	snap := e.snapshot.Load()
	if snap == nil {
		return nil, ErrNotReady
	}
	cfg, _ := e.settings()

	source := req.Course.Canonical()
	sourceEntry, ok := snap.courses[source]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCourseNotFound, source)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = cfg.Limits.DefaultSimilarCourses
	}
	if limit > cfg.Limits.MaxSimilarCourses {
		limit = cfg.Limits.MaxSimilarCourses
	}

	keys := snap.CoursesAt(req.TargetInstitution)
	results := make([]SimilarCourse, 0, len(keys))
	for i, key := range keys {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if key == source {
			continue
		}
		entry := snap.courses[key]
		sim, err := vector.Cosine(sourceEntry.vec, entry.vec)
		if err != nil {
			continue
		}
		results = append(results, SimilarCourse{
			Course:      key,
			Title:       entry.course.Title,
			Description: entry.course.Description,
			Similarity:  sim,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// CourseSimilarity returns the cosine similarity of two courses' vectors.
func (e *Engine) CourseSimilarity(a, b CourseKey) (float64, error) {
	snap := e.snapshot.Load()
	if snap == nil {
		return 0, ErrNotReady
	}
	ea, ok := snap.courses[a.Canonical()]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrCourseNotFound, a.Canonical())
	}
	eb, ok := snap.courses[b.Canonical()]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrCourseNotFound, b.Canonical())
	}
	return vector.Cosine(ea.vec, eb.vec)
}

// ScheduleVector returns the aggregate vector of courses and the keys that
// could not be resolved.
func (e *Engine) ScheduleVector(courses []CourseKey) (vector.Vector, []CourseKey, error) {
	snap := e.snapshot.Load()
	if snap == nil {
		return nil, nil, ErrNotReady
	}
	cfg, _ := e.settings()
	return snap.ScheduleVector(courses, cfg.Rank.UseCourseWeights)
}

// Vectorize vectorizes arbitrary text with the current model.
func (e *Engine) Vectorize(text string) (vector.Vector, error) {
	snap := e.snapshot.Load()
	if snap == nil {
		return nil, ErrNotReady
	}
	return snap.Model().Vectorize(text), nil
}

// GetStatus returns the current training status.
func (e *Engine) GetStatus() TrainingStatus {
	e.statusMu.RLock()
	defer e.statusMu.RUnlock()
	return e.status
}

// GetMetrics returns the current engine counters.
func (e *Engine) GetMetrics() Metrics {
	e.statusMu.RLock()
	lastDuration := e.status.LastTrainingDurationMS
	e.statusMu.RUnlock()

	return Metrics{
		RequestCount:           e.requestCount.Load(),
		CacheHits:              e.cacheHits.Load(),
		CacheMisses:            e.cacheMisses.Load(),
		ErrorCount:             e.errorCount.Load(),
		TrainingCount:          e.trainingCount.Load(),
		SkippedCandidates:      e.skippedCandidates.Load(),
		LastTrainingDurationMS: lastDuration,
		CacheSize:              e.responses.Load().Len(),
	}
}

// GetConfig returns a copy of the current configuration.
func (e *Engine) GetConfig() *Config {
	cfg, _ := e.settings()
	return cfg.Clone()
}

// UpdateConfig validates and installs cfg. Training and vector settings take
// effect on the next Train or Reload; scoring and ranking settings apply
// immediately.
func (e *Engine) UpdateConfig(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	scorer, err := scoring.NewScorer(cfg.Scoring)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	e.configMu.Lock()
	e.config = cfg.Clone()
	e.scorer = scorer
	e.configMu.Unlock()

	e.responses.Store(newResponseCache(cfg.Cache))
	e.logger.Info().Msg("configuration updated")
	return nil
}

// cacheKey identifies a prepared request against one snapshot version.
// Course order does not affect the aggregate, so keys are sorted.
func cacheKey(version int, req *ProgramRequest) string {
	courses := make([]string, len(req.Courses))
	for i, c := range req.Courses {
		courses[i] = c.String()
	}
	sort.Strings(courses)

	var b strings.Builder
	b.WriteString("rec:")
	b.WriteString(strconv.Itoa(version))
	b.WriteByte('|')
	b.WriteString(strings.ToLower(req.Institution))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(req.TopN))
	b.WriteByte('|')
	b.WriteString(strconv.FormatFloat(*req.MinSimilarity, 'g', -1, 64))
	b.WriteByte('|')
	b.WriteString(strings.Join(courses, ","))
	return b.String()
}

// checkCache returns a copy of a live cached response, or nil.
func (e *Engine) checkCache(key string) *ProgramResponse {
	resp, ok := e.responses.Load().Get(key)
	if !ok {
		return nil
	}
	return copyResponse(resp)
}

func copyResponse(resp *ProgramResponse) *ProgramResponse {
	recs := make([]ProgramRecommendation, len(resp.Recommendations))
	copy(recs, resp.Recommendations)
	var missing []CourseKey
	if resp.Missing != nil {
		missing = make([]CourseKey, len(resp.Missing))
		copy(missing, resp.Missing)
	}
	return &ProgramResponse{
		Recommendations: recs,
		Missing:         missing,
		Metadata:        resp.Metadata,
	}
}

func (e *Engine) storeCache(key string, resp *ProgramResponse) {
	e.responses.Load().Add(key, copyResponse(resp))
}

func (e *Engine) clearCache() {
	e.responses.Load().Clear()
	e.logger.Debug().Msg("cache cleared")
}
