package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// OperationLogEntry is one structured line in an operation log file.
type OperationLogEntry struct {
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Timestamp string                 `json:"timestamp"`
	Operation string                 `json:"operation"`
	OrderID   string                 `json:"order_id,omitempty"`
	TxnID     string                 `json:"txn_id,omitempty"`
	Status    string                 `json:"status,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Duration  float64                `json:"duration_ms,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// OperationLogger writes JSON entries for one operation category on its own goroutine.
type OperationLogger struct {
	operation string
	logger    *log.Logger
	logFile   *os.File
	logChan   chan OperationLogEntry
	stopChan  chan bool
	wg        sync.WaitGroup
}

// OperationLoggerManager owns the per-category loggers.
type OperationLoggerManager struct {
	loggers map[string]*OperationLogger
	mu      sync.RWMutex
}

var OpLogManager *OperationLoggerManager

// Operation categories
const (
	OP_TOKEN    = "token"
	OP_ORDERS   = "orders"
	OP_PAYMENTS = "payments"
	OP_LEDGER   = "ledger"
	OP_ADMIN    = "admin"
)

// InitOperationLoggers creates one async logger per operation category.
func InitOperationLoggers() error {
	OpLogManager = &OperationLoggerManager{
		loggers: make(map[string]*OperationLogger),
	}

	operations := []string{OP_TOKEN, OP_ORDERS, OP_PAYMENTS, OP_LEDGER, OP_ADMIN}
	for _, op := range operations {
		if err := OpLogManager.CreateLogger(op); err != nil {
			return fmt.Errorf("failed to create logger for %s: %w", op, err)
		}
	}

	return nil
}

// CreateLogger opens the weekly log file for a category and starts its worker.
func (m *OperationLoggerManager) CreateLogger(operation string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	logDir := filepath.Join(Config("LOG_DIR", "logs"), "operations")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return err
	}

	currentTime := time.Now()
	year, month, _ := currentTime.Date()
	_, week := currentTime.ISOWeek()

	logFileName := fmt.Sprintf("storepay-%d-%02d-week%d-%s.log", year, month, week, operation)
	logFilePath := filepath.Join(logDir, logFileName)

	logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	opLogger := &OperationLogger{
		operation: operation,
		logger:    log.New(logFile, "", 0),
		logFile:   logFile,
		logChan:   make(chan OperationLogEntry, 1000),
		stopChan:  make(chan bool),
	}

	opLogger.wg.Add(1)
	go opLogger.worker()

	m.loggers[operation] = opLogger
	return nil
}

func (ol *OperationLogger) worker() {
	defer ol.wg.Done()

	for {
		select {
		case entry := <-ol.logChan:
			ol.writeLog(entry)
		case <-ol.stopChan:
			// Drain remaining entries before stopping
			for len(ol.logChan) > 0 {
				entry := <-ol.logChan
				ol.writeLog(entry)
			}
			return
		}
	}
}

func (ol *OperationLogger) writeLog(entry OperationLogEntry) {
	jsonData, err := json.Marshal(entry)
	if err != nil {
		log.Printf("Error marshaling log entry for %s: %v", ol.operation, err)
		return
	}

	ol.logger.Println(string(jsonData))
	ol.logFile.Sync()
}

// LogOperation queues a log entry without blocking the caller.
func (m *OperationLoggerManager) LogOperation(operation, level, message string, entry OperationLogEntry) {
	if level != "ERROR" && level != "WARN" && level != "INFO" {
		return
	}

	m.mu.RLock()
	opLogger, exists := m.loggers[operation]
	m.mu.RUnlock()

	if !exists {
		log.Printf("WARN: operation logger for %s not found", operation)
		return
	}
	entry.Level = level
	entry.Message = message
	entry.Operation = operation
	entry.Timestamp = time.Now().Format(time.RFC3339)

	select {
	case opLogger.logChan <- entry:
	default:
		log.Printf("ERROR: operation logger channel full for %s", operation)
	}
}

// LogProcessorCall records one outbound call to the payment processor.
func LogProcessorCall(operation, method, path string, statusCode int, duration time.Duration, errMsg string) {
	if OpLogManager == nil {
		return
	}

	entry := OperationLogEntry{
		Duration: float64(duration.Nanoseconds()) / 1e6,
		Data: map[string]interface{}{
			"method":      method,
			"path":        path,
			"status_code": statusCode,
		},
	}

	if errMsg != "" {
		entry.Error = errMsg
		OpLogManager.LogOperation(operation, "ERROR", "Processor call failed", entry)
		return
	}
	OpLogManager.LogOperation(operation, "INFO", "Processor call completed", entry)
}

// LogLedgerEvent records a ledger append or sync outcome.
func LogLedgerEvent(orderID, txnID, status, message string) {
	if OpLogManager == nil {
		return
	}

	OpLogManager.LogOperation(OP_LEDGER, "INFO", message, OperationLogEntry{
		OrderID: orderID,
		TxnID:   txnID,
		Status:  status,
	})
}

// Shutdown flushes and stops all workers.
func (m *OperationLoggerManager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, opLogger := range m.loggers {
		close(opLogger.stopChan)
		opLogger.wg.Wait()
		opLogger.logFile.Close()
	}
}
