package repository

import (
	"context"
	"sync"
	"time"

	"github.com/hitoshi/uranai/internal/model"
)

// MemoryUserRepo はインメモリのユーザーリポジトリ。開発・テスト用。
type MemoryUserRepo struct {
	mu    sync.RWMutex
	users map[string]model.User
}

// NewMemoryUserRepo はMemoryUserRepoを生成する。
func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{
		users: make(map[string]model.User),
	}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *MemoryUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}

	result := user
	return &result, nil
}

// Upsert はIdP発行のIDをキーにユーザーを作成または更新する。
// 更新時はプロフィールのみ上書きし、予約カウンターとCreatedAtは既存値を維持する。
func (r *MemoryUserRepo) Upsert(ctx context.Context, profile *model.UserProfile) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()

	user, ok := r.users[profile.ID]
	if !ok {
		user = model.User{
			ID:        profile.ID,
			CreatedAt: now,
		}
	}

	user.Email = profile.Email
	user.FirstName = profile.FirstName
	user.LastName = profile.LastName
	user.ProfileImageURL = profile.ProfileImageURL
	user.UpdatedAt = now

	r.users[profile.ID] = user

	result := user
	return &result, nil
}

// compile-time interface check
var _ UserRepository = (*MemoryUserRepo)(nil)
