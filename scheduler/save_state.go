package scheduler

import "github.com/9to5ninja-projects/cryptosniper/portfolio"

// SaveStateJob persists the ledger to its state file. Persistence is a
// periodic snapshot, deliberately not transactional with trade execution:
// a crash between a trade and the next save loses that trade from disk.
type SaveStateJob struct {
	Ledger *portfolio.Ledger
	Path   string
}

func (j SaveStateJob) Name() string { return "save-ledger-state" }

func (j SaveStateJob) Run() error {
	return j.Ledger.SaveState(j.Path)
}
