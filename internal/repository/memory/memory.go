package memory

import (
	"github.com/saldoapp/account-ledger/internal/repository"
)

var (
	_ repository.AccountRepository  = (*AccountRepository)(nil)
	_ repository.MovementRepository = (*MovementRepository)(nil)
	_ repository.SnapshotRepository = (*SnapshotRepository)(nil)
)
