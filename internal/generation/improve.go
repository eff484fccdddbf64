package generation

import (
	"context"
	"strings"
	"unicode/utf8"

	"interview-backend/internal/llm"
	"interview-backend/internal/shared/telemetry"
	"interview-backend/internal/shared/util"
	"interview-backend/internal/tier"
	"interview-backend/internal/usage"
)

// ImproveResponse is the job seeker's improvement plan.
type ImproveResponse struct {
	Improvements string `json:"improvements"`
	Tier         string `json:"tier"`
}

// Improve asks the model how the resume could better match the job description.
// It is a paid feature: nothing is cached and no quota is charged.
func (s *Service) Improve(ctx context.Context, caller Caller, req Request) (resp ImproveResponse, err error) {
	stage := StageValidating
	defer func() {
		if err == nil {
			return
		}
		telemetry.Warn("improve.failed", map[string]any{
			"user_id": caller.UserID,
			"stage":   string(stage),
			"error":   err,
		})
		err = &StageError{Stage: stage, Err: err}
	}()

	jd := util.CleanText(req.JobDescription)
	resume := util.CleanText(req.Resume)
	if verr := s.validate(jd, resume); verr != nil {
		return ImproveResponse{}, verr
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	stage = StageTierResolving
	t := tier.Free
	if s.Tiers != nil {
		t = s.Tiers.Resolve(ctx, tier.UserKey(caller.UserID, caller.Email))
	}
	if !t.Paid() {
		return ImproveResponse{}, ErrProRequired
	}

	stage = StagePrompting
	prompt := llm.BuildImprovePrompt(jd, resume)

	stage = StageModelInvoking
	raw, ierr := s.invoke(ctx, prompt)
	if ierr != nil {
		return ImproveResponse{}, s.invokeError(ctx, ierr)
	}

	stage = StageParsing
	plan := strings.TrimSpace(strings.ReplaceAll(raw, "```", ""))
	if plan == "" {
		return ImproveResponse{}, ErrEmptyResult
	}

	stage = StageLogging
	if s.Usage != nil {
		_ = s.Usage.TrackFeature(ctx, caller.UserID, usage.FeatureImproveResume, map[string]any{
			"tier":          t.String(),
			"jd_length":     utf8.RuneCountInString(jd),
			"resume_length": utf8.RuneCountInString(resume),
		})
	}
	telemetry.Info("improve.complete", map[string]any{"user_id": caller.UserID, "tier": t.String(), "length": len(plan)})

	stage = StageDone
	return ImproveResponse{Improvements: plan, Tier: t.String()}, nil
}
