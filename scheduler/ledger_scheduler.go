package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"storepay/repository"
)

const pendingSyncBatch = 100

// LedgerScheduler periodically reconciles orders that still carry pending
// rows, so holds settled or voided in the processor console reach the ledger
// without an operator pressing sync.
type LedgerScheduler struct {
	cron   *cron.Cron
	ledger *repository.TransactionLedger
	store  *repository.GormRecordStore
}

func NewLedgerScheduler(ledger *repository.TransactionLedger, store *repository.GormRecordStore) *LedgerScheduler {
	return &LedgerScheduler{
		cron:   cron.New(),
		ledger: ledger,
		store:  store,
	}
}

func (s *LedgerScheduler) Start() {
	entryID, err := s.cron.AddFunc("@every 15m", s.syncPending)
	if err != nil {
		log.Printf("Error scheduling ledger sync: %v", err)
		return
	}
	log.Printf("Ledger sync scheduler started with entry ID: %d", entryID)

	s.cron.Start()
}

func (s *LedgerScheduler) Stop() {
	s.cron.Stop()
}

func (s *LedgerScheduler) syncPending() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	orderIDs, err := s.store.ListPendingOrders(ctx, pendingSyncBatch)
	if err != nil {
		log.Printf("Error listing pending orders for sync: %v", err)
		return
	}
	if len(orderIDs) == 0 {
		return
	}

	log.Printf("Ledger sync pass starting for %d pending orders", len(orderIDs))

	var appended int
	for _, orderID := range orderIDs {
		records, err := s.ledger.Sync(ctx, orderID)
		if err != nil {
			log.Printf("Error syncing order %s: %v", orderID, err)
			continue
		}
		appended += len(records)
	}

	log.Printf("Ledger sync pass finished, %d new rows", appended)
}
