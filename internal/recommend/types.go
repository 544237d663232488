// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package recommend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/degreematch/internal/recommend/embedding"
	"github.com/tomtom215/degreematch/internal/recommend/scoring"
	"github.com/tomtom215/degreematch/internal/recommend/vector"
)

// keySeparator joins institution and code/name in key strings.
const keySeparator = ":"

// CourseKey identifies a course. Course codes are only unique within an
// institution, so both parts are required.
type CourseKey struct {
	// Institution is the issuing institution, e.g. "CSUSB".
	Institution string `json:"institution" validate:"required,max=128"`

	// Code is the institution's course code, e.g. "CSE 2010".
	Code string `json:"code" validate:"required,max=64"`
}

// NewCourseKey builds a canonical CourseKey: institution is trimmed and the
// code is trimmed and upper-cased.
func NewCourseKey(institution, code string) CourseKey {
	return CourseKey{
		Institution: strings.TrimSpace(institution),
		Code:        scoring.NormalizeCode(code),
	}
}

// Canonical returns k with NewCourseKey normalization applied.
func (k CourseKey) Canonical() CourseKey {
	return NewCourseKey(k.Institution, k.Code)
}

// String renders the key as "institution:code".
func (k CourseKey) String() string {
	return k.Institution + keySeparator + k.Code
}

// ParseCourseKey parses "institution:code".
func ParseCourseKey(s string) (CourseKey, error) {
	inst, code, ok := strings.Cut(s, keySeparator)
	if !ok || strings.TrimSpace(inst) == "" || strings.TrimSpace(code) == "" {
		return CourseKey{}, fmt.Errorf("invalid course key %q: want institution:code", s)
	}
	return NewCourseKey(inst, code), nil
}

// ProgramKey identifies a program within an institution.
type ProgramKey struct {
	Institution string `json:"institution" validate:"required,max=128"`
	Name        string `json:"name" validate:"required,max=256"`
}

// NewProgramKey builds a ProgramKey with trimmed fields.
func NewProgramKey(institution, name string) ProgramKey {
	return ProgramKey{
		Institution: strings.TrimSpace(institution),
		Name:        strings.TrimSpace(name),
	}
}

// String renders the key as "institution:name".
func (k ProgramKey) String() string {
	return k.Institution + keySeparator + k.Name
}

// ParseProgramKey parses "institution:name".
func ParseProgramKey(s string) (ProgramKey, error) {
	inst, name, ok := strings.Cut(s, keySeparator)
	if !ok || strings.TrimSpace(inst) == "" || strings.TrimSpace(name) == "" {
		return ProgramKey{}, fmt.Errorf("invalid program key %q: want institution:name", s)
	}
	return NewProgramKey(inst, name), nil
}

// DegreeType classifies a program.
type DegreeType string

// Degree types.
const (
	DegreeAssociate   DegreeType = "Associate"
	DegreeBachelor    DegreeType = "Bachelor"
	DegreeMaster      DegreeType = "Master"
	DegreeDoctorate   DegreeType = "Doctorate"
	DegreeCertificate DegreeType = "Certificate"
)

// ParseDegreeType matches s case-insensitively. Empty input yields
// DegreeBachelor.
func ParseDegreeType(s string) (DegreeType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DegreeBachelor, nil
	}
	for _, d := range []DegreeType{DegreeAssociate, DegreeBachelor, DegreeMaster, DegreeDoctorate, DegreeCertificate} {
		if strings.EqualFold(s, string(d)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown degree type %q", s)
}

// Course is a catalog course.
type Course struct {
	Institution string    `json:"institution"`
	Code        string    `json:"code"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Weight      float64   `json:"weight"`
	HasVector   bool      `json:"has_embedding"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`

	// Vector is the persisted document vector, nil if never computed.
	Vector vector.Vector `json:"-"`
}

// Key returns the course's canonical key.
func (c *Course) Key() CourseKey {
	return NewCourseKey(c.Institution, c.Code)
}

// EmbeddingText is the text vectorized for the course.
func (c *Course) EmbeddingText() string {
	return c.Code + " " + c.Title + " " + c.Description
}

// CorpusItem returns the course's training text.
func (c *Course) CorpusItem() embedding.CorpusItem {
	return embedding.CorpusItem{Primary: c.Title, Secondary: c.Description}
}

// Program is an academic program with its course requirements.
type Program struct {
	Institution     string      `json:"institution"`
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	Department      string      `json:"department,omitempty"`
	DegreeType      DegreeType  `json:"degree_type"`
	RequiredCourses []CourseKey `json:"required_courses"`
	ElectiveCourses []CourseKey `json:"elective_courses,omitempty"`
	HasVector       bool        `json:"has_embedding"`
	UpdatedAt       time.Time   `json:"updated_at,omitempty"`

	// Vector is the persisted (direct) program vector. It takes precedence
	// over aggregation of required courses.
	Vector vector.Vector `json:"-"`
}

// Key returns the program's key.
func (p *Program) Key() ProgramKey {
	return NewProgramKey(p.Institution, p.Name)
}

// EmbeddingText is the text vectorized for the program's description part.
func (p *Program) EmbeddingText() string {
	return p.Name + " " + p.Description
}

// CorpusItem returns the program's training text.
func (p *Program) CorpusItem() embedding.CorpusItem {
	return embedding.CorpusItem{Primary: p.Name, Secondary: p.Description}
}

// Schedule is a set of completed courses for one student. Duplicates are
// allowed and weigh the aggregate accordingly.
type Schedule struct {
	ID          string      `json:"id"`
	Institution string      `json:"institution,omitempty"`
	Courses     []CourseKey `json:"courses"`
	CreatedAt   time.Time   `json:"created_at"`
	ExpiresAt   time.Time   `json:"expires_at,omitempty"`
}

// DataProvider supplies catalog data for training and snapshot builds.
// It is typically implemented by the database package.
type DataProvider interface {
	// ListCourses returns every course with its persisted vector, if any.
	ListCourses(ctx context.Context) ([]Course, error)

	// ListPrograms returns every program with requirements and persisted
	// vector, if any.
	ListPrograms(ctx context.Context) ([]Program, error)
}

// EmbeddingWriter persists vectors computed by the embedding pipeline.
type EmbeddingWriter interface {
	SaveCourseVectors(ctx context.Context, vectors map[CourseKey]vector.Vector) error
	SaveProgramVectors(ctx context.Context, vectors map[ProgramKey]vector.Vector) error
}

// ModelStore persists trained vector-space models.
type ModelStore interface {
	// SaveModel stores m and returns its version.
	SaveModel(ctx context.Context, m *embedding.Model, cfg embedding.TrainConfig) (int, error)

	// LoadLatestModel returns the newest stored model and its version.
	// It returns ErrNoModel when nothing has been stored.
	LoadLatestModel(ctx context.Context) (*embedding.Model, int, error)
}

// ProgramRequest asks for programs matching a set of completed courses.
type ProgramRequest struct {
	// RequestID is propagated to logs. Generated if empty.
	RequestID string

	// Courses are the completed courses.
	Courses []CourseKey

	// Institution enables the course-overlap bonus for programs at the same
	// institution. Empty disables it.
	Institution string

	// TopN limits the number of results. 0 uses the configured default.
	TopN int

	// MinSimilarity overrides the configured threshold when set.
	MinSimilarity *float64
}

// ProgramRecommendation is one ranked program.
type ProgramRecommendation struct {
	Rank           int        `json:"rank"`
	Program        ProgramKey `json:"program"`
	DegreeType     DegreeType `json:"degree_type,omitempty"`
	Department     string     `json:"department,omitempty"`
	Score          float64    `json:"score"`
	Semantic       float64    `json:"semantic"`
	Raw            float64    `json:"raw_similarity"`
	Overlap        float64    `json:"overlap,omitempty"`
	OverlapApplied bool       `json:"overlap_applied"`
}

// ProgramResponse is the result of RecommendPrograms.
type ProgramResponse struct {
	Recommendations []ProgramRecommendation `json:"recommendations"`

	// Missing lists requested courses that have no vector in the snapshot.
	Missing []CourseKey `json:"missing,omitempty"`

	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata describes how a response was produced.
type ResponseMetadata struct {
	RequestID       string    `json:"request_id"`
	ScheduleCourses int       `json:"schedule_courses"`
	Candidates      int       `json:"candidates"`
	Skipped         int       `json:"skipped"`
	TopN            int       `json:"top_n"`
	MinSimilarity   float64   `json:"min_similarity"`
	SnapshotVersion int       `json:"snapshot_version"`
	TrainedAt       time.Time `json:"trained_at"`
	LatencyMS       int64     `json:"latency_ms"`
	CacheHit        bool      `json:"cache_hit"`
	Timestamp       time.Time `json:"timestamp"`
}

// SimilarRequest asks for courses similar to a given course.
type SimilarRequest struct {
	Course CourseKey

	// TargetInstitution restricts results to one institution.
	TargetInstitution string

	// Limit caps the results. 0 uses the configured default.
	Limit int
}

// SimilarCourse is one result of SimilarCourses.
type SimilarCourse struct {
	Course      CourseKey `json:"course"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Similarity  float64   `json:"similarity"`
}

// EmbeddingStats summarizes an embedding pipeline run.
type EmbeddingStats struct {
	Courses               int   `json:"courses"`
	Programs              int   `json:"programs"`
	CoursesWithoutSignal  int   `json:"courses_without_signal"`
	ProgramsWithoutVector int   `json:"programs_without_vector"`
	DurationMS            int64 `json:"duration_ms"`
}

// TrainingStatus represents the current training state.
type TrainingStatus struct {
	// IsTraining indicates whether training is currently in progress.
	IsTraining bool `json:"is_training"`

	// Phase names the current step while training.
	Phase string `json:"phase,omitempty"`

	// Progress is the training progress (0-100).
	Progress int `json:"progress"`

	// Ready reports whether a snapshot is available for scoring.
	Ready bool `json:"ready"`

	LastTrainedAt          time.Time `json:"last_trained_at"`
	LastTrainingDurationMS int64     `json:"last_training_duration_ms"`
	LastError              string    `json:"last_error,omitempty"`

	CourseCount    int `json:"course_count"`
	ProgramCount   int `json:"program_count"`
	VocabularySize int `json:"vocabulary_size"`
	Dimension      int `json:"dimension"`

	// ModelVersion is the current snapshot version.
	ModelVersion int `json:"model_version"`

	// StoredModelVersion is the version assigned by the model store, if any.
	StoredModelVersion int `json:"stored_model_version,omitempty"`

	NextScheduledTraining time.Time `json:"next_scheduled_training,omitempty"`
}

// Metrics contains engine counters for observability.
type Metrics struct {
	RequestCount           int64 `json:"request_count"`
	CacheHits              int64 `json:"cache_hits"`
	CacheMisses            int64 `json:"cache_misses"`
	ErrorCount             int64 `json:"error_count"`
	TrainingCount          int64 `json:"training_count"`
	SkippedCandidates      int64 `json:"skipped_candidates"`
	LastTrainingDurationMS int64 `json:"last_training_duration_ms"`
	CacheSize              int   `json:"cache_size"`
}
