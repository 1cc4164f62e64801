package memory

import (
	"context"
)

// TxManager runs the function directly: the in-memory repositories have
// no transactional scope to join, so there is nothing to roll back.
type TxManager struct{}

func NewTxManager() *TxManager {
	return &TxManager{}
}

func (TxManager) WithinTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}
