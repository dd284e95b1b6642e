package fortune

import (
	"context"
	"log/slog"
	"time"

	"github.com/hitoshi/uranai/internal/model"
	"github.com/hitoshi/uranai/internal/repository"
)

// GeneratorInterface は占い生成のインターフェース。テストでモックに差し替える。
type GeneratorInterface interface {
	Generate(ctx context.Context) (*Result, error)
}

// MetricsRecorder はサービス層が記録するメトリクスのインターフェース。
type MetricsRecorder interface {
	RecordFortuneGenerated(cardName string)
	RecordGenerationFailure()
	RecordGenerationLatency(d time.Duration)
}

// Service は占いリクエストのビジネスロジックを提供する。
// 生成に成功した占いを永続化し、履歴の読み取りを仲介する。
type Service struct {
	generator   GeneratorInterface
	fortuneRepo repository.FortuneRepository
	metrics     MetricsRecorder
}

// NewService はServiceを生成する。metricsはnil可。
func NewService(generator GeneratorInterface, fortuneRepo repository.FortuneRepository, metrics MetricsRecorder) *Service {
	return &Service{
		generator:   generator,
		fortuneRepo: fortuneRepo,
		metrics:     metrics,
	}
}

// Draw は占いを1回実行する。生成 → 永続化の順で、どちらかが失敗した場合は
// 部分的な結果を残さない（生成失敗なら書き込みは行わない）。
// userIDがnilの場合は匿名の占いとして記録する。
func (s *Service) Draw(ctx context.Context, userID *string) (*Result, error) {
	start := time.Now()

	result, err := s.generator.Generate(ctx)
	if s.metrics != nil {
		s.metrics.RecordGenerationLatency(time.Since(start))
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordGenerationFailure()
		}
		return nil, err
	}

	cardImage := result.CardImage
	_, err = s.fortuneRepo.Create(ctx, &model.FortuneInput{
		UserID:      userID,
		CardName:    result.CardName,
		FortuneText: result.FortuneText,
		CardImage:   &cardImage,
		ReadingType: model.ReadingTypeSingleCard,
		IsShared:    false,
	})
	if err != nil {
		slog.Error("failed to record fortune",
			slog.String("card", result.CardName),
			slog.String("error", err.Error()),
		)
		return nil, model.NewStorageWriteError()
	}

	if s.metrics != nil {
		s.metrics.RecordFortuneGenerated(result.CardName)
	}

	return result, nil
}

// History は全占い履歴を新しい順で返す。
// ページネーションは行わない（全件返却は既存のプロダクト挙動）。
func (s *Service) History(ctx context.Context) ([]*model.Fortune, error) {
	fortunes, err := s.fortuneRepo.ListAll(ctx)
	if err != nil {
		slog.Error("failed to list fortunes", slog.String("error", err.Error()))
		return nil, model.NewStorageReadError()
	}
	return fortunes, nil
}

// Get は指定IDの占い結果を返す。見つからない場合はFORTUNE_NOT_FOUNDを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Fortune, error) {
	fortune, err := s.fortuneRepo.FindByID(ctx, id)
	if err != nil {
		slog.Error("failed to find fortune",
			slog.String("fortune_id", id),
			slog.String("error", err.Error()),
		)
		return nil, model.NewStorageReadError()
	}
	if fortune == nil {
		return nil, model.NewFortuneNotFoundError(id)
	}
	return fortune, nil
}
