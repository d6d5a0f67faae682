package storage

import (
	"context"

	"gorm.io/gorm"
)

// TxRepos bundles repositories bound to a single transaction. Every read and
// write a unit of work performs must go through these instances.
type TxRepos struct {
	Users          UserRepository
	FriendRequests FriendRequestRepository
	Friendships    FriendshipRepository
}

// TxManager runs a function as one atomic unit: commit when fn returns nil,
// roll back when it returns an error. The session is released on every path.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(repos TxRepos) error) error
}

type gormTxManager struct {
	db *gorm.DB
}

// NewGormTxManager creates a TxManager backed by gorm's Transaction helper.
func NewGormTxManager(db *gorm.DB) TxManager {
	return &gormTxManager{db: db}
}

func (m *gormTxManager) WithinTx(ctx context.Context, fn func(repos TxRepos) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(TxRepos{
			Users:          NewGormUserRepository(tx),
			FriendRequests: NewGormFriendRequestRepository(tx),
			Friendships:    NewGormFriendshipRepository(tx),
		})
	})
}
