// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrEmptyCorpus is returned when the corpus has no items or no tokens.
	ErrEmptyCorpus = errors.New("empty corpus")

	// ErrDegenerateVocabulary is returned when fewer than two distinct tokens
	// survive the minimum frequency filter.
	ErrDegenerateVocabulary = errors.New("degenerate vocabulary")

	// ErrInvalidConfig is returned for out-of-range trainer settings.
	ErrInvalidConfig = errors.New("invalid trainer config")
)

// Architecture selects the word2vec training objective.
type Architecture string

const (
	// ArchitectureCBOW predicts a token from the mean of its context.
	ArchitectureCBOW Architecture = "cbow"

	// ArchitectureSkipGram predicts a token from each context token.
	ArchitectureSkipGram Architecture = "skipgram"
)

// maxExp clamps sigmoid inputs; beyond it the gradient is effectively zero.
const maxExp = 6.0

// noisePower flattens the unigram distribution used for negative samples.
const noisePower = 0.75

// TrainConfig contains parameters for the vector space trainer.
// Zero values are replaced with defaults.
type TrainConfig struct {
	// Dimension is the size of every token vector.
	// Default: 100.
	Dimension int `json:"dimension" koanf:"dimension"`

	// Window is the maximum distance between a token and its context.
	// Default: 5.
	Window int `json:"window" koanf:"window"`

	// MinFrequency drops tokens seen fewer times than this.
	// Default: 1 (keep every token).
	MinFrequency int `json:"min_frequency" koanf:"min_frequency"`

	// Epochs is the number of passes over the corpus.
	// Default: 5.
	Epochs int `json:"epochs" koanf:"epochs"`

	// Negative is the number of noise tokens drawn per positive example.
	// Default: 5.
	Negative int `json:"negative" koanf:"negative"`

	// LearningRate is the initial SGD step size, decayed linearly.
	// Default: 0.025.
	LearningRate float64 `json:"learning_rate" koanf:"learning_rate"`

	// MinLearningRate is the floor of the decayed step size.
	// Default: 0.0001.
	MinLearningRate float64 `json:"min_learning_rate" koanf:"min_learning_rate"`

	// Architecture is "cbow" or "skipgram".
	// Default: cbow.
	Architecture Architecture `json:"architecture" koanf:"architecture"`

	// Seed makes training reproducible.
	// Default: 1.
	Seed int64 `json:"seed" koanf:"seed"`
}

// DefaultTrainConfig returns the default trainer configuration.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		Dimension:       100,
		Window:          5,
		MinFrequency:    1,
		Epochs:          5,
		Negative:        5,
		LearningRate:    0.025,
		MinLearningRate: 0.0001,
		Architecture:    ArchitectureCBOW,
		Seed:            1,
	}
}

// WithDefaults returns a copy of c with zero fields set to defaults.
func (c TrainConfig) WithDefaults() TrainConfig {
	d := DefaultTrainConfig()
	if c.Dimension == 0 {
		c.Dimension = d.Dimension
	}
	if c.Window == 0 {
		c.Window = d.Window
	}
	if c.MinFrequency == 0 {
		c.MinFrequency = d.MinFrequency
	}
	if c.Epochs == 0 {
		c.Epochs = d.Epochs
	}
	if c.Negative == 0 {
		c.Negative = d.Negative
	}
	if c.LearningRate == 0 {
		c.LearningRate = d.LearningRate
	}
	if c.MinLearningRate == 0 {
		c.MinLearningRate = d.MinLearningRate
	}
	if c.Architecture == "" {
		c.Architecture = d.Architecture
	}
	if c.Seed == 0 {
		c.Seed = d.Seed
	}
	return c
}

// Validate checks the configuration after defaults are applied.
func (c TrainConfig) Validate() error {
	switch {
	case c.Dimension < 1:
		return fmt.Errorf("%w: dimension must be positive, got %d", ErrInvalidConfig, c.Dimension)
	case c.Window < 1:
		return fmt.Errorf("%w: window must be positive, got %d", ErrInvalidConfig, c.Window)
	case c.MinFrequency < 1:
		return fmt.Errorf("%w: min_frequency must be positive, got %d", ErrInvalidConfig, c.MinFrequency)
	case c.Epochs < 1:
		return fmt.Errorf("%w: epochs must be positive, got %d", ErrInvalidConfig, c.Epochs)
	case c.Negative < 1:
		return fmt.Errorf("%w: negative must be positive, got %d", ErrInvalidConfig, c.Negative)
	case c.LearningRate <= 0:
		return fmt.Errorf("%w: learning_rate must be positive, got %f", ErrInvalidConfig, c.LearningRate)
	case c.MinLearningRate <= 0 || c.MinLearningRate > c.LearningRate:
		return fmt.Errorf("%w: min_learning_rate must be in (0, learning_rate], got %f", ErrInvalidConfig, c.MinLearningRate)
	case c.Architecture != ArchitectureCBOW && c.Architecture != ArchitectureSkipGram:
		return fmt.Errorf("%w: unknown architecture %q", ErrInvalidConfig, c.Architecture)
	}
	return nil
}

// CorpusItem is one unit of training text, e.g. a course title and its
// description.
type CorpusItem struct {
	Primary   string
	Secondary string
}

// Text joins the primary and secondary text.
func (c CorpusItem) Text() string {
	return c.Primary + " " + c.Secondary
}

// ProgressFunc is called after each completed epoch.
type ProgressFunc func(epoch, epochs int)

// Trainer learns a word2vec model with negative sampling.
//
// Each run builds a fresh Model; a trained Model is never mutated. Training
// is single-threaded and deterministic for a given seed and corpus.
type Trainer struct {
	config   TrainConfig
	logger   zerolog.Logger
	progress ProgressFunc
}

// NewTrainer creates a trainer. Zero config fields take default values.
//
//nolint:gocritic // logger passed by value for zerolog chaining
func NewTrainer(cfg TrainConfig, logger zerolog.Logger) *Trainer {
	return &Trainer{
		config: cfg.WithDefaults(),
		logger: logger.With().Str("component", "trainer").Logger(),
	}
}

// SetProgress registers a callback invoked after every epoch.
func (t *Trainer) SetProgress(fn ProgressFunc) {
	t.progress = fn
}

// Config returns the effective configuration.
func (t *Trainer) Config() TrainConfig {
	return t.config
}

// Train is a convenience wrapper around NewTrainer(cfg).Train without logging.
func Train(ctx context.Context, corpus []CorpusItem, cfg TrainConfig) (*Model, error) {
	return NewTrainer(cfg, zerolog.Nop()).Train(ctx, corpus)
}

// vocabulary is the token index built from the corpus.
type vocabulary struct {
	tokens []string
	counts []int
	index  map[string]int
}

// Train learns a Model from corpus. It returns ErrEmptyCorpus or
// ErrDegenerateVocabulary when no meaningful model can be built, and the
// context error if ctx is cancelled mid-run.
func (t *Trainer) Train(ctx context.Context, corpus []CorpusItem) (*Model, error) {
	cfg := t.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	sentences, totalTokens := tokenizeCorpus(corpus)
	if totalTokens == 0 {
		return nil, fmt.Errorf("%w: %d items, no tokens", ErrEmptyCorpus, len(corpus))
	}

	vocab := buildVocabulary(sentences, cfg.MinFrequency)
	if len(vocab.tokens) < 2 {
		return nil, fmt.Errorf("%w: %d distinct tokens with min_frequency %d",
			ErrDegenerateVocabulary, len(vocab.tokens), cfg.MinFrequency)
	}

	encoded, trainWords := encodeSentences(sentences, vocab.index)
	if len(encoded) == 0 {
		return nil, fmt.Errorf("%w: no item has two in-vocabulary tokens", ErrDegenerateVocabulary)
	}

	t.logger.Info().
		Int("items", len(corpus)).
		Int("tokens", totalTokens).
		Int("vocabulary", len(vocab.tokens)).
		Int("dimension", cfg.Dimension).
		Str("architecture", string(cfg.Architecture)).
		Int("epochs", cfg.Epochs).
		Msg("training vector space")

	//nolint:gosec // G404: math/rand is acceptable for ML initialization (not security)
	rng := rand.New(rand.NewSource(cfg.Seed))

	s := newSGNS(cfg, vocab, rng)
	totalSteps := float64(cfg.Epochs * trainWords)
	var processed int

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("training cancelled at epoch %d: %w", epoch, err)
		}

		for _, sent := range encoded {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("training cancelled at epoch %d: %w", epoch, err)
			}
			for pos := range sent {
				lr := cfg.LearningRate - (cfg.LearningRate-cfg.MinLearningRate)*float64(processed)/totalSteps
				if lr < cfg.MinLearningRate {
					lr = cfg.MinLearningRate
				}
				if cfg.Architecture == ArchitectureSkipGram {
					s.trainSkipGram(sent, pos, lr)
				} else {
					s.trainCBOW(sent, pos, lr)
				}
				processed++
			}
		}

		t.logger.Debug().
			Int("epoch", epoch+1).
			Int("epochs", cfg.Epochs).
			Msg("epoch complete")
		if t.progress != nil {
			t.progress(epoch+1, cfg.Epochs)
		}
	}

	vectors := make([][]float64, len(vocab.tokens))
	for i := range vocab.tokens {
		vectors[i] = s.input[i*cfg.Dimension : (i+1)*cfg.Dimension]
	}

	model, err := NewModel(vocab.tokens, vocab.counts, vectors)
	if err != nil {
		return nil, fmt.Errorf("build model: %w", err)
	}

	t.logger.Info().
		Int("vocabulary", model.Len()).
		Dur("duration", time.Since(start)).
		Msg("vector space trained")

	return model, nil
}

// tokenizeCorpus tokenizes every corpus item, dropping items with no tokens.
func tokenizeCorpus(corpus []CorpusItem) ([][]string, int) {
	sentences := make([][]string, 0, len(corpus))
	total := 0
	for _, item := range corpus {
		tokens := Tokenize(item.Text())
		if len(tokens) == 0 {
			continue
		}
		sentences = append(sentences, tokens)
		total += len(tokens)
	}
	return sentences, total
}

// buildVocabulary counts tokens and keeps those with count >= minFreq,
// ordered by descending count then token for a stable index.
func buildVocabulary(sentences [][]string, minFreq int) vocabulary {
	counts := make(map[string]int)
	for _, sent := range sentences {
		for _, tok := range sent {
			counts[tok]++
		}
	}

	tokens := make([]string, 0, len(counts))
	for tok, n := range counts {
		if n >= minFreq {
			tokens = append(tokens, tok)
		}
	}
	sort.Slice(tokens, func(i, j int) bool {
		ci, cj := counts[tokens[i]], counts[tokens[j]]
		if ci != cj {
			return ci > cj
		}
		return tokens[i] < tokens[j]
	})

	v := vocabulary{
		tokens: tokens,
		counts: make([]int, len(tokens)),
		index:  make(map[string]int, len(tokens)),
	}
	for i, tok := range tokens {
		v.counts[i] = counts[tok]
		v.index[tok] = i
	}
	return v
}

// encodeSentences maps tokens to vocabulary indices, dropping filtered
// tokens. Sentences shorter than two tokens carry no context and are dropped.
func encodeSentences(sentences [][]string, index map[string]int) ([][]int, int) {
	out := make([][]int, 0, len(sentences))
	words := 0
	for _, sent := range sentences {
		ids := make([]int, 0, len(sent))
		for _, tok := range sent {
			if i, ok := index[tok]; ok {
				ids = append(ids, i)
			}
		}
		if len(ids) < 2 {
			continue
		}
		out = append(out, ids)
		words += len(ids)
	}
	return out, words
}

// sgns holds the mutable training state for skip-gram/CBOW with negative
// sampling. It is discarded once the Model is built.
type sgns struct {
	dim      int
	window   int
	negative int
	input    []float64 // token vectors, row-major
	output   []float64 // context vectors for negative sampling
	noise    []float64 // cumulative noise distribution
	rng      *rand.Rand
	hidden   []float64
	errAcc   []float64
}

func newSGNS(cfg TrainConfig, vocab vocabulary, rng *rand.Rand) *sgns {
	n := len(vocab.tokens)
	s := &sgns{
		dim:      cfg.Dimension,
		window:   cfg.Window,
		negative: cfg.Negative,
		input:    make([]float64, n*cfg.Dimension),
		output:   make([]float64, n*cfg.Dimension),
		noise:    make([]float64, n),
		rng:      rng,
		hidden:   make([]float64, cfg.Dimension),
		errAcc:   make([]float64, cfg.Dimension),
	}

	scale := 1 / float64(cfg.Dimension)
	for i := range s.input {
		s.input[i] = (rng.Float64() - 0.5) * scale
	}

	var cum float64
	for i, c := range vocab.counts {
		cum += math.Pow(float64(c), noisePower)
		s.noise[i] = cum
	}
	for i := range s.noise {
		s.noise[i] /= cum
	}
	return s
}

// sampleNoise draws a token index from the unigram^0.75 distribution.
func (s *sgns) sampleNoise() int {
	r := s.rng.Float64()
	i := sort.SearchFloat64s(s.noise, r)
	if i >= len(s.noise) {
		i = len(s.noise) - 1
	}
	return i
}

// contextBounds returns the [lo, hi) context range around pos using a
// randomly shrunk window.
func (s *sgns) contextBounds(n, pos int) (int, int) {
	span := s.window - s.rng.Intn(s.window)
	lo := pos - span
	if lo < 0 {
		lo = 0
	}
	hi := pos + span + 1
	if hi > n {
		hi = n
	}
	return lo, hi
}

// trainCBOW predicts sent[pos] from the mean of its context vectors.
func (s *sgns) trainCBOW(sent []int, pos int, lr float64) {
	lo, hi := s.contextBounds(len(sent), pos)

	clear(s.hidden)
	count := 0
	for c := lo; c < hi; c++ {
		if c == pos {
			continue
		}
		row := s.input[sent[c]*s.dim : (sent[c]+1)*s.dim]
		for j, x := range row {
			s.hidden[j] += x
		}
		count++
	}
	if count == 0 {
		return
	}
	inv := 1 / float64(count)
	for j := range s.hidden {
		s.hidden[j] *= inv
	}

	clear(s.errAcc)
	s.negativeStep(s.hidden, sent[pos], lr)

	for j := range s.errAcc {
		s.errAcc[j] *= inv
	}
	for c := lo; c < hi; c++ {
		if c == pos {
			continue
		}
		row := s.input[sent[c]*s.dim : (sent[c]+1)*s.dim]
		for j := range row {
			row[j] += s.errAcc[j]
		}
	}
}

// trainSkipGram predicts sent[pos] from each context token in turn.
func (s *sgns) trainSkipGram(sent []int, pos int, lr float64) {
	lo, hi := s.contextBounds(len(sent), pos)
	for c := lo; c < hi; c++ {
		if c == pos {
			continue
		}
		row := s.input[sent[c]*s.dim : (sent[c]+1)*s.dim]
		clear(s.errAcc)
		s.negativeStep(row, sent[pos], lr)
		for j := range row {
			row[j] += s.errAcc[j]
		}
	}
}

// negativeStep runs one positive and s.negative noise updates for hidden
// against target, accumulating the input gradient into s.errAcc.
func (s *sgns) negativeStep(hidden []float64, target int, lr float64) {
	for d := 0; d <= s.negative; d++ {
		tgt := target
		label := 1.0
		if d > 0 {
			tgt = s.sampleNoise()
			if tgt == target {
				continue
			}
			label = 0
		}

		out := s.output[tgt*s.dim : (tgt+1)*s.dim]
		var f float64
		for j, x := range hidden {
			f += x * out[j]
		}

		var g float64
		switch {
		case f > maxExp:
			g = (label - 1) * lr
		case f < -maxExp:
			g = label * lr
		default:
			g = (label - 1/(1+math.Exp(-f))) * lr
		}
		if g == 0 {
			continue
		}

		for j := range out {
			s.errAcc[j] += g * out[j]
			out[j] += g * hidden[j]
		}
	}
}
