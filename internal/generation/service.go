package generation

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"interview-backend/internal/cache"
	"interview-backend/internal/llm"
	"interview-backend/internal/questions"
	"interview-backend/internal/shared/metrics"
	"interview-backend/internal/shared/telemetry"
	"interview-backend/internal/shared/util"
	"interview-backend/internal/tier"
	"interview-backend/internal/usage"
)

const (
	DefaultMinJobDescription = 50
	DefaultMinResume         = 100
	DefaultTimeout           = 75 * time.Second
)

// TierResolver resolves a caller's subscription tier.
type TierResolver interface {
	Resolve(ctx context.Context, userKey string) tier.Tier
}

// ResultCache stores parsed results by fingerprint.
type ResultCache interface {
	Lookup(ctx context.Context, key string) (questions.Result, bool)
	Store(ctx context.Context, key string, result questions.Result, t tier.Tier) error
}

// QuotaChecker rejects free callers without generations left today.
type QuotaChecker interface {
	Check(ctx context.Context, userKey string) error
}

// UsageRecorder logs generations and charges the free quota.
type UsageRecorder interface {
	Record(ctx context.Context, userID, email string, t tier.Tier, s usage.Summary) error
	TrackFeature(ctx context.Context, userID, feature string, metadata map[string]any) error
}

// Invoker calls a model client with retries.
type Invoker interface {
	Invoke(ctx context.Context, client llm.Client, prompt string) (string, error)
}

// Service runs the question generation pipeline.
type Service struct {
	Tiers   TierResolver
	Cache   ResultCache
	Quota   QuotaChecker
	Usage   UsageRecorder
	Retrier Invoker
	LLM     llm.Client

	MinJobDescription int
	MinResume         int
	Timeout           time.Duration

	now func() time.Time
}

// Generate validates the inputs, serves a cached result when one is fresh,
// and otherwise prompts the model, parses its answer, caches it and logs usage.
// Failed requests are returned as *StageError.
func (s *Service) Generate(ctx context.Context, caller Caller, req Request) (resp Response, err error) {
	start := s.clock()
	stage := StageValidating
	defer func() {
		metrics.ObserveGenerationDurationMs(float64(s.clock().Sub(start).Microseconds()) / 1000.0)
		if err == nil {
			return
		}
		metrics.IncGenerationFailed()
		telemetry.Warn("generation.failed", map[string]any{
			"user_id": caller.UserID,
			"stage":   string(stage),
			"error":   err,
		})
		err = &StageError{Stage: stage, Err: err}
	}()

	jd := util.CleanText(req.JobDescription)
	resume := util.CleanText(req.Resume)
	if verr := s.validate(jd, resume); verr != nil {
		return Response{}, verr
	}
	metrics.IncGenerationRequests()

	ctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	stage = StageTierResolving
	userKey := tier.UserKey(caller.UserID, caller.Email)
	t := tier.Free
	if s.Tiers != nil {
		t = s.Tiers.Resolve(ctx, userKey)
	}

	stage = StageCacheChecking
	key := cache.Fingerprint(jd, resume, t)
	if s.Cache != nil {
		if cached, ok := s.Cache.Lookup(ctx, key); ok {
			metrics.IncGenerationCacheHits()
			result := restrict(cached, t)
			s.trackFeature(ctx, caller, t, jd, resume, true)
			telemetry.Info("generation.complete", map[string]any{
				"user_id": caller.UserID,
				"tier":    t.String(),
				"cached":  true,
				"total":   result.Total(),
			})
			stage = StageDone
			return Response{Result: result.Normalized(), Tier: t.String(), Cached: true}, nil
		}
	}

	stage = StageQuotaChecking
	if !t.Paid() && s.Quota != nil {
		if qerr := s.Quota.Check(ctx, userKey); qerr != nil {
			if errors.Is(qerr, usage.ErrLimitReached) {
				metrics.IncQuotaRejected()
				return Response{}, qerr
			}
			telemetry.Error("generation.quota_check_failed", map[string]any{"user_key": userKey, "error": qerr})
		}
	}

	stage = StagePrompting
	prompt := llm.BuildPrompt(t.Paid(), jd, resume)

	stage = StageModelInvoking
	raw, ierr := s.invoke(ctx, prompt)
	if ierr != nil {
		return Response{}, s.invokeError(ctx, ierr)
	}

	stage = StageParsing
	var result questions.Result
	if t.Paid() {
		result = questions.ParsePro(raw)
	} else {
		result = questions.Parse(raw)
	}
	result = restrict(result, t)
	if result.Empty() {
		telemetry.Warn("generation.empty_result", map[string]any{
			"user_id":      caller.UserID,
			"response_len": len(raw),
			"preview":      telemetry.Truncate(raw, 200),
		})
		return Response{}, ErrEmptyResult
	}

	stage = StageCaching
	if s.Cache != nil {
		if cerr := s.Cache.Store(ctx, key, result, t); cerr != nil {
			telemetry.Warn("generation.cache_store_failed", map[string]any{"key": key, "error": cerr})
		}
	}

	stage = StageLogging
	if s.Usage != nil {
		summary := usage.Summary{
			Technical:  len(result.Technical),
			Behavioral: len(result.Behavioral),
			Followup:   len(result.Followup),
			Insights:   result.InsightSummary != nil || result.SkillGaps != nil,
		}
		if uerr := s.Usage.Record(ctx, caller.UserID, caller.Email, t, summary); uerr != nil {
			telemetry.Warn("generation.usage_record_failed", map[string]any{"user_id": caller.UserID, "error": uerr})
		}
	}
	s.trackFeature(ctx, caller, t, jd, resume, false)

	telemetry.Info("generation.complete", map[string]any{
		"user_id": caller.UserID,
		"tier":    t.String(),
		"cached":  false,
		"total":   result.Total(),
	})
	stage = StageDone
	return Response{Result: result.Normalized(), Tier: t.String(), Cached: false}, nil
}

func (s *Service) validate(jd, resume string) error {
	minJD := s.MinJobDescription
	if minJD <= 0 {
		minJD = DefaultMinJobDescription
	}
	minResume := s.MinResume
	if minResume <= 0 {
		minResume = DefaultMinResume
	}
	if utf8.RuneCountInString(jd) < minJD {
		return &ValidationError{Field: FieldJobDescription, Issue: fmt.Sprintf("Must be at least %d characters long", minJD)}
	}
	if utf8.RuneCountInString(resume) < minResume {
		return &ValidationError{Field: FieldResume, Issue: fmt.Sprintf("Must be at least %d characters long", minResume)}
	}
	return nil
}

func (s *Service) invoke(ctx context.Context, prompt string) (string, error) {
	if s.LLM == nil {
		return "", llm.ErrNotConfigured
	}
	counted := llm.ClientFunc(func(ctx context.Context, prompt string) (string, error) {
		metrics.IncLLMAttempts()
		return s.LLM.Complete(ctx, prompt)
	})
	if s.Retrier == nil {
		return counted.Complete(ctx, prompt)
	}
	return s.Retrier.Invoke(ctx, counted, prompt)
}

// invokeError hides provider detail from callers.
func (s *Service) invokeError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, llm.ErrNotConfigured) {
		telemetry.Error("generation.llm_not_configured", nil)
	}
	return fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
}

func (s *Service) trackFeature(ctx context.Context, caller Caller, t tier.Tier, jd, resume string, cached bool) {
	if s.Usage == nil {
		return
	}
	_ = s.Usage.TrackFeature(ctx, caller.UserID, usage.FeatureGenerateQuestions, map[string]any{
		"tier":          t.String(),
		"jd_length":     utf8.RuneCountInString(jd),
		"resume_length": utf8.RuneCountInString(resume),
		"cached":        cached,
	})
}

func (s *Service) timeout() time.Duration {
	if s.Timeout > 0 {
		return s.Timeout
	}
	return DefaultTimeout
}

func (s *Service) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// restrict clears paid-only fields for free callers.
func restrict(r questions.Result, t tier.Tier) questions.Result {
	if t.Paid() {
		return r
	}
	return r.WithoutInsights()
}
