package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"storepay/config"
	"storepay/database"
	"storepay/dto/model"
	"storepay/helper"
	"storepay/lib"

	"github.com/google/uuid"
	"go.elastic.co/apm"
	"gorm.io/gorm"
)

// Memo attached to rows discovered during a sync pass rather than created by
// a storefront operation.
const consoleSyncMemo = "Recorded by ledger sync; transaction originated outside the store (processor console)."

// RecordStore is the flat persistence the ledger runs on. The gorm-backed
// implementation is the production one; tests substitute an in-memory fake.
type RecordStore interface {
	ListByOrder(ctx context.Context, orderID string) ([]model.PaymentTransaction, error)
	GetByTxnID(ctx context.Context, orderID, txnID string) (*model.PaymentTransaction, error)
	Insert(ctx context.Context, record *model.PaymentTransaction) error
	UpdateStatus(ctx context.Context, orderID, txnID, status, pendingReason string, modified time.Time) error
}

// GormRecordStore persists ledger rows in postgres.
type GormRecordStore struct {
	DB *gorm.DB
}

func NewGormRecordStore() *GormRecordStore {
	return &GormRecordStore{DB: database.GetDB()}
}

func (s *GormRecordStore) ListByOrder(ctx context.Context, orderID string) ([]model.PaymentTransaction, error) {
	span, _ := apm.StartSpan(ctx, "ListByOrder", "repository")
	defer span.End()

	var records []model.PaymentTransaction
	if err := s.DB.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("date_added ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("error fetching ledger rows for %s: %w", orderID, err)
	}
	return records, nil
}

func (s *GormRecordStore) GetByTxnID(ctx context.Context, orderID, txnID string) (*model.PaymentTransaction, error) {
	span, _ := apm.StartSpan(ctx, "GetByTxnID", "repository")
	defer span.End()

	var record model.PaymentTransaction
	err := s.DB.WithContext(ctx).
		Where("order_id = ? AND txn_id = ?", orderID, txnID).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching ledger row %s/%s: %w", orderID, txnID, err)
	}
	return &record, nil
}

func (s *GormRecordStore) Insert(ctx context.Context, record *model.PaymentTransaction) error {
	span, _ := apm.StartSpan(ctx, "InsertLedgerRow", "repository")
	defer span.End()

	if err := s.DB.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("error inserting ledger row %s/%s: %w", record.OrderID, record.TxnID, err)
	}
	return nil
}

func (s *GormRecordStore) UpdateStatus(ctx context.Context, orderID, txnID, status, pendingReason string, modified time.Time) error {
	span, _ := apm.StartSpan(ctx, "UpdateLedgerStatus", "repository")
	defer span.End()

	updates := map[string]interface{}{
		"payment_status": status,
		"pending_reason": pendingReason,
	}
	if !modified.IsZero() {
		updates["last_modified"] = modified
	}

	if err := s.DB.WithContext(ctx).
		Model(&model.PaymentTransaction{}).
		Where("order_id = ? AND txn_id = ?", orderID, txnID).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("error updating ledger row %s/%s: %w", orderID, txnID, err)
	}
	return nil
}

// ListPendingOrders returns distinct order ids that still carry a pending
// row, oldest activity first. Feeds the periodic sync job.
func (s *GormRecordStore) ListPendingOrders(ctx context.Context, limit int) ([]string, error) {
	span, _ := apm.StartSpan(ctx, "ListPendingOrders", "repository")
	defer span.End()

	var orderIDs []string
	if err := s.DB.WithContext(ctx).
		Model(&model.PaymentTransaction{}).
		Distinct("order_id").
		Where("payment_status = ? OR pending_reason <> ''", "PENDING").
		Limit(limit).
		Pluck("order_id", &orderIDs).Error; err != nil {
		return nil, fmt.Errorf("error listing pending orders: %w", err)
	}
	return orderIDs, nil
}

// ProcessorReader is the slice of the client the ledger needs.
type ProcessorReader interface {
	GetOrder(ctx context.Context, orderID string) (*lib.OrderSnapshot, error)
}

// TransactionLedger keeps the local transaction tree of every order in step
// with the processor's authoritative state. Not re-entrant-safe per order:
// callers serialize Sync/Append for the same order id.
type TransactionLedger struct {
	store  RecordStore
	client ProcessorReader
	logger *helper.Logger
}

func NewTransactionLedger(store RecordStore, client ProcessorReader) *TransactionLedger {
	return &TransactionLedger{
		store:  store,
		client: client,
		logger: helper.NewLogger("LEDGER"),
	}
}

func txnTypeRank(txnType string) int {
	switch txnType {
	case model.TxnTypeCreate:
		return 0
	case model.TxnTypeAuthorize:
		return 1
	case model.TxnTypeCapture:
		return 2
	default:
		return 3
	}
}

// sortLedgerRecords orders rows CREATE first, then AUTHORIZE, then CAPTURE,
// then the rest, each group ascending by creation time.
func sortLedgerRecords(records []model.PaymentTransaction) []model.PaymentTransaction {
	sorted := make([]model.PaymentTransaction, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := txnTypeRank(sorted[i].TxnType), txnTypeRank(sorted[j].TxnType)
		if ri != rj {
			return ri < rj
		}
		return sorted[i].DateAdded.Before(sorted[j].DateAdded)
	})
	return sorted
}

// Reconstruct builds the parent-ordered chain from the flat rows: an arena
// keyed by txn id with explicit parent references, walked from the CREATE
// root so every record sits after its parent. Records whose parent is not in
// the set are appended at the end in their own subtree order.
func (l *TransactionLedger) Reconstruct(records []model.PaymentTransaction) []model.PaymentTransaction {
	if len(records) == 0 {
		return nil
	}

	sorted := sortLedgerRecords(records)

	arena := make(map[string]*model.PaymentTransaction, len(sorted))
	children := make(map[string][]string, len(sorted))
	order := make([]string, 0, len(sorted))

	for i := range sorted {
		record := &sorted[i]
		arena[record.TxnID] = record
		children[record.ParentTxnID] = append(children[record.ParentTxnID], record.TxnID)
		order = append(order, record.TxnID)
	}

	visited := make(map[string]bool, len(sorted))
	chain := make([]model.PaymentTransaction, 0, len(sorted))

	var visit func(txnID string)
	visit = func(txnID string) {
		if visited[txnID] {
			return
		}
		visited[txnID] = true
		chain = append(chain, *arena[txnID])
		for _, childID := range children[txnID] {
			visit(childID)
		}
	}

	// The CREATE root always leads the chain.
	for _, txnID := range order {
		if arena[txnID].TxnType == model.TxnTypeCreate && arena[txnID].ParentTxnID == "" {
			visit(txnID)
			break
		}
	}

	// Anything left over has a parent outside the set; keep it, in order.
	for _, txnID := range order {
		visit(txnID)
	}

	return chain
}

// Chain loads and reconstructs the full ledger chain of an order.
func (l *TransactionLedger) Chain(ctx context.Context, orderID string) ([]model.PaymentTransaction, error) {
	records, err := l.store.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return l.Reconstruct(records), nil
}

// Sync fetches the live order and merges any transactions the store has not
// seen yet, tagging them as console-originated. Repeated syncs against an
// unchanged remote state are no-ops.
func (l *TransactionLedger) Sync(ctx context.Context, orderID string) ([]model.PaymentTransaction, error) {
	span, spanCtx := apm.StartSpan(ctx, "LedgerSync", "repository")
	defer span.End()

	snap, err := l.client.GetOrder(spanCtx, orderID)
	if err != nil {
		return nil, err
	}

	return l.MergeSnapshot(spanCtx, snap, consoleSyncMemo)
}

// MergeSnapshot merges the payment records of an already-fetched snapshot
// into the ledger. Categories are processed authorizations, captures,
// refunds, in that order, since captures reference authorizations and
// refunds reference captures.
func (l *TransactionLedger) MergeSnapshot(ctx context.Context, snap *lib.OrderSnapshot, memo string) ([]model.PaymentTransaction, error) {
	if snap == nil || len(snap.PurchaseUnits) == 0 || snap.PurchaseUnits[0].Payments == nil {
		return nil, nil
	}

	paymentType := snap.PaymentSource.PaymentType()
	payments := snap.PurchaseUnits[0].Payments

	// Data-quality warning, not a fatal error: the known categories still sync.
	for _, category := range payments.Unknown {
		l.logger.Warn("unrecognized payment record category %q on order %s", category, snap.ID)
	}

	// Live authorizations and captures by id, for parent status propagation.
	index := make(map[string]lib.RemoteTransaction)
	for _, authorization := range payments.Authorizations {
		index[authorization.ID] = authorization.AsRemote()
	}
	for _, capture := range payments.Captures {
		index[capture.ID] = capture.AsRemote()
	}

	var appended []model.PaymentTransaction

	merge := func(txnType string, remote lib.RemoteTransaction) error {
		existing, err := l.store.GetByTxnID(ctx, snap.ID, remote.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return nil
		}

		record, err := l.insert(ctx, snap.ID, txnType, paymentType, remote, memo)
		if err != nil {
			return err
		}
		appended = append(appended, *record)

		if parentID := remote.ParentID(); parentID != "" {
			if parentRemote, ok := index[parentID]; ok {
				if err := l.TouchParent(ctx, snap.ID, parentID, parentRemote.Status, parentRemote.PendingReason, parseRemoteTime(parentRemote.UpdateTime)); err != nil {
					return err
				}
			}
		}
		return nil
	}

	for _, authorization := range payments.Authorizations {
		if err := merge(model.TxnTypeAuthorize, authorization.AsRemote()); err != nil {
			return appended, err
		}
	}
	for _, capture := range payments.Captures {
		if err := merge(model.TxnTypeCapture, capture.AsRemote()); err != nil {
			return appended, err
		}
	}
	for _, refund := range payments.Refunds {
		if err := merge(model.TxnTypeRefund, refund.AsRemote()); err != nil {
			return appended, err
		}
	}

	return appended, nil
}

// Append records a transaction from a just-performed processor operation.
// Returns the new row id and the derived parent txn id so the caller can
// push date/status onto that parent in the same pass. Appending an id the
// store already holds is a no-op returning the existing row.
func (l *TransactionLedger) Append(ctx context.Context, orderID, txnType, paymentType string, remote lib.RemoteTransaction, memo string) (string, string, error) {
	existing, err := l.store.GetByTxnID(ctx, orderID, remote.ID)
	if err != nil {
		return "", "", err
	}
	if existing != nil {
		return existing.ID, existing.ParentTxnID, nil
	}

	record, err := l.insert(ctx, orderID, txnType, paymentType, remote, memo)
	if err != nil {
		return "", "", err
	}
	return record.ID, record.ParentTxnID, nil
}

// AppendCreate records the root row for a freshly created order.
func (l *TransactionLedger) AppendCreate(ctx context.Context, snap *lib.OrderSnapshot, memo string) (string, error) {
	remote := lib.RemoteTransaction{
		ID:         snap.ID,
		Status:     snap.Status,
		CreateTime: snap.CreateTime,
		UpdateTime: snap.UpdateTime,
	}
	if len(snap.PurchaseUnits) > 0 && snap.PurchaseUnits[0].Amount != nil {
		remote.Currency = snap.PurchaseUnits[0].Amount.CurrencyCode
		remote.GrossAmount = snap.PurchaseUnits[0].Amount.Value
	}

	recordID, _, err := l.Append(ctx, snap.ID, model.TxnTypeCreate, snap.PaymentSource.PaymentType(), remote, memo)
	return recordID, err
}

// TouchParent pushes a live status and timestamp onto an existing row.
func (l *TransactionLedger) TouchParent(ctx context.Context, orderID, txnID, status, pendingReason string, modified time.Time) error {
	if txnID == "" || status == "" {
		return nil
	}
	return l.store.UpdateStatus(ctx, orderID, txnID, status, pendingReason, modified)
}

// MarkVoided flags an authorization row after a successful void. The
// processor drops voided authorizations from its queryable history, so the
// local row is the only remaining trace.
func (l *TransactionLedger) MarkVoided(ctx context.Context, orderID, authorizationID string) error {
	return l.store.UpdateStatus(ctx, orderID, authorizationID, "VOIDED", "", time.Now())
}

func (l *TransactionLedger) insert(ctx context.Context, orderID, txnType, paymentType string, remote lib.RemoteTransaction, memo string) (*model.PaymentTransaction, error) {
	uniqueID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate row id: %w", err)
	}

	record := &model.PaymentTransaction{
		ID:             uniqueID.String(),
		OrderID:        orderID,
		TxnID:          remote.ID,
		ParentTxnID:    remote.ParentID(),
		TxnType:        txnType,
		PaymentType:    paymentType,
		PaymentStatus:  remote.Status,
		PendingReason:  remote.PendingReason,
		Currency:       remote.Currency,
		GrossAmount:    remote.GrossAmount,
		SettleAmount:   remote.SettleAmount,
		SettleCurrency: remote.SettleCurrency,
		ExchangeRate:   remote.ExchangeRate,
		FinalCapture:   remote.FinalCapture,
		Memo:           memo,
	}

	if expiration := parseRemoteTime(remote.ExpirationTime); !expiration.IsZero() {
		record.ExpirationTime = &expiration
	}

	if err := l.store.Insert(ctx, record); err != nil {
		return nil, err
	}

	config.LogLedgerEvent(orderID, remote.ID, remote.Status, "Ledger row appended: "+txnType)
	return record, nil
}

func parseRemoteTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
