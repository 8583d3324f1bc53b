package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/plans"
	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/repository"
	"github.com/google/uuid"
)

// HumanizeResult is what the caller gets back. Degraded means the text was
// generated but history or usage was not durably recorded.
type HumanizeResult struct {
	Text       string
	WordCount  int
	TokensUsed int
	Tier       plans.Tier
	Degraded   bool
}

// HumanizeService runs one request through
// validate -> authorize -> dispatch -> persist.
type HumanizeService struct {
	entitlements *EntitlementService
	usage        *UsageService
	history      repository.HistoryRepository
	generator    Generator
}

func NewHumanizeService(entitlements *EntitlementService, usage *UsageService, history repository.HistoryRepository, generator Generator) *HumanizeService {
	return &HumanizeService{
		entitlements: entitlements,
		usage:        usage,
		history:      history,
		generator:    generator,
	}
}

// ValidateText rejects empty or whitespace-only input and returns its word count.
func ValidateText(text string) (int, error) {
	if strings.TrimSpace(text) == "" {
		return 0, invalid("Text is required")
	}
	return CountWords(text), nil
}

// Humanize validates before it authenticates, so empty text is a 400 even
// for anonymous callers. userID is uuid.Nil when there is no session.
func (s *HumanizeService) Humanize(ctx context.Context, userID uuid.UUID, text string) (*HumanizeResult, error) {
	result, err := s.humanize(ctx, userID, text)
	metrics.HumanizeRequests.WithLabelValues(outcomeOf(result, err)).Inc()
	return result, err
}

func (s *HumanizeService) humanize(ctx context.Context, userID uuid.UUID, text string) (*HumanizeResult, error) {
	words, err := ValidateText(text)
	if err != nil {
		return nil, err
	}

	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	res, err := s.entitlements.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	if words > res.PerRequestWordLimit {
		return nil, &EntitlementError{Kind: LimitPerRequest, Limit: res.PerRequestWordLimit, Requested: words}
	}

	period, err := s.usage.CurrentPeriod(ctx, userID, res.Entitlement)
	if err != nil {
		return nil, err
	}

	if period.WordCount+words > res.MonthlyWordLimit {
		return nil, &EntitlementError{
			Kind:      LimitMonthly,
			Limit:     res.MonthlyWordLimit,
			Requested: words,
			Used:      period.WordCount,
		}
	}

	output, err := s.generator.Humanize(ctx, text)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}

	result := &HumanizeResult{
		Text:       output,
		WordCount:  words,
		TokensUsed: EstimateTokens(text, output),
		Tier:       res.Tier,
	}

	// Both writes are attempted even if the first fails.
	historyErr := s.history.CreateHumanization(ctx, &models.Humanization{
		UserID:        userID,
		OriginalText:  text,
		HumanizedText: output,
		Status:        models.HumanizationCompleted,
		TokensUsed:    result.TokensUsed,
	})
	usageErr := s.usage.RecordConsumption(ctx, period, words)

	if historyErr != nil || usageErr != nil {
		perr := &PersistenceError{HistoryErr: historyErr, UsageErr: usageErr}
		slog.Error("error saving humanization",
			"user_id", userID.String(),
			"action", "humanize.persist",
			"error", perr.Error(),
		)
		result.Degraded = true
	}
	if usageErr == nil {
		metrics.WordsConsumed.WithLabelValues(string(res.Tier)).Add(float64(words))
	}

	return result, nil
}

func outcomeOf(result *HumanizeResult, err error) string {
	var ve *ValidationError
	var ee *EntitlementError
	var ue *UpstreamError
	switch {
	case err == nil && result.Degraded:
		return metrics.OutcomeDegraded
	case err == nil:
		return metrics.OutcomeOK
	case errors.As(err, &ve):
		return metrics.OutcomeInvalid
	case errors.Is(err, ErrUnauthenticated):
		return metrics.OutcomeUnauthenticated
	case errors.As(err, &ee) && ee.Kind == LimitPerRequest:
		return metrics.OutcomePerRequestLimit
	case errors.As(err, &ee):
		return metrics.OutcomeMonthlyLimit
	case errors.As(err, &ue):
		return metrics.OutcomeUpstreamError
	default:
		return metrics.OutcomeInternalError
	}
}
