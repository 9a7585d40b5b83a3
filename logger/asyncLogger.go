package logger

import (
	"log"
	"sync/atomic"

	log_model "mm-shipping/models/log"
	"mm-shipping/types"

	"gorm.io/gorm"
)

type AsyncLogger struct {
	db      *gorm.DB
	channel chan types.LogEntry
	dropped int64
}

func NewAsyncLogger(db *gorm.DB) *AsyncLogger {
	return &AsyncLogger{
		db:      db,
		channel: make(chan types.LogEntry, 100), // Buffered channel to hold log entries
	}
}

func (logger *AsyncLogger) ProcessLog() {
	log.Println("Starting asynchronous logger...")

	for logEntry := range logger.channel {
		dbLog := log_model.Log{
			Method:          logEntry.Method,
			URL:             logEntry.URL,
			RequestBody:     logEntry.RequestBody,
			ResponseBody:    logEntry.ResponseBody,
			RequestHeaders:  logEntry.RequestHeaders,
			ResponseHeaders: logEntry.ResponseHeaders,
			StatusCode:      logEntry.StatusCode,
			CreatedAt:       logEntry.CreatedAt,
		}

		if err := logger.db.Create(&dbLog).Error; err != nil {
			log.Printf("Failed to insert new log entry: %v", err)
		}
	}
}

// Log pushes a log entry into the channel without blocking the request path.
// When the buffer is full the entry is dropped and counted; a slow database
// must never stall responses.
func (logger *AsyncLogger) Log(entry types.LogEntry) {
	select {
	case logger.channel <- entry:
	default:
		n := atomic.AddInt64(&logger.dropped, 1)
		log.Printf("Request log buffer full, dropped entry (%d dropped so far)", n)
	}
}

// Dropped reports how many entries were discarded on a full buffer.
func (logger *AsyncLogger) Dropped() int64 {
	return atomic.LoadInt64(&logger.dropped)
}
