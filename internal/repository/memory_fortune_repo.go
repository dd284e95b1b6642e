package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/uranai/internal/model"
)

// MemoryFortuneRepo はインメモリの占い結果リポジトリ。
// プロセス再起動でデータは消える。開発・テスト用。
type MemoryFortuneRepo struct {
	mu       sync.RWMutex
	fortunes map[string]model.Fortune
}

// NewMemoryFortuneRepo はMemoryFortuneRepoを生成する。
func NewMemoryFortuneRepo() *MemoryFortuneRepo {
	return &MemoryFortuneRepo{
		fortunes: make(map[string]model.Fortune),
	}
}

// Create は占い結果を作成する。IDはUUID、timestampはプロセスのクロックで採番する。
func (r *MemoryFortuneRepo) Create(ctx context.Context, input *model.FortuneInput) (*model.Fortune, error) {
	fortune := model.Fortune{
		ID:          uuid.New().String(),
		UserID:      input.UserID,
		CardName:    input.CardName,
		FortuneText: input.FortuneText,
		CardImage:   input.CardImage,
		ReadingType: input.ReadingType,
		IsShared:    input.IsShared,
		Timestamp:   time.Now(),
	}

	r.mu.Lock()
	r.fortunes[fortune.ID] = fortune
	r.mu.Unlock()

	result := fortune
	return &result, nil
}

// ListAll は全占い結果をtimestamp降順で返す。
// 同時刻のレコードはid降順で並べ、Postgres実装と同じ決定的な順序を保証する。
func (r *MemoryFortuneRepo) ListAll(ctx context.Context) ([]*model.Fortune, error) {
	r.mu.RLock()
	fortunes := make([]*model.Fortune, 0, len(r.fortunes))
	for _, f := range r.fortunes {
		copied := f
		fortunes = append(fortunes, &copied)
	}
	r.mu.RUnlock()

	sort.Slice(fortunes, func(i, j int) bool {
		if !fortunes[i].Timestamp.Equal(fortunes[j].Timestamp) {
			return fortunes[i].Timestamp.After(fortunes[j].Timestamp)
		}
		return fortunes[i].ID > fortunes[j].ID
	})

	return fortunes, nil
}

// FindByID は指定IDの占い結果を取得する。見つからない場合はnilを返す。
func (r *MemoryFortuneRepo) FindByID(ctx context.Context, id string) (*model.Fortune, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fortune, ok := r.fortunes[id]
	if !ok {
		return nil, nil
	}

	result := fortune
	return &result, nil
}

// compile-time interface check
var _ FortuneRepository = (*MemoryFortuneRepo)(nil)
