package sql

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
)

// QueryLogger provides toggleable SQL debug logging
type QueryLogger struct {
	enabled bool
	mu      sync.RWMutex
}

// NewQueryLogger creates a new query logger
func NewQueryLogger(enabled bool) *QueryLogger {
	return &QueryLogger{enabled: enabled}
}

// IsEnabled returns whether SQL logging is enabled
func (l *QueryLogger) IsEnabled() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.enabled
}

// SetEnabled enables or disables SQL logging
func (l *QueryLogger) SetEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = enabled
}

// LogQuery logs a SELECT query with execution time and row count
func (l *QueryLogger) LogQuery(query string, args []any, duration time.Duration, rowCount int) {
	if !l.IsEnabled() {
		return
	}
	log.Printf("[SQL] [%.2fms] [rows:%d] %s %s",
		float64(duration.Nanoseconds())/1e6,
		rowCount,
		l.formatQuery(query),
		l.formatArgs(args))
}

// LogExec logs an INSERT/UPDATE/DELETE with execution time and affected rows
func (l *QueryLogger) LogExec(query string, args []any, duration time.Duration, result sql.Result) {
	if !l.IsEnabled() {
		return
	}

	rowsAffected := int64(-1)
	if result != nil {
		if affected, err := result.RowsAffected(); err == nil {
			rowsAffected = affected
		}
	}

	if rowsAffected >= 0 {
		log.Printf("[SQL] [%.2fms] [rows:%d] %s %s",
			float64(duration.Nanoseconds())/1e6,
			rowsAffected,
			l.formatQuery(query),
			l.formatArgs(args))
		return
	}
	log.Printf("[SQL] [%.2fms] %s %s",
		float64(duration.Nanoseconds())/1e6,
		l.formatQuery(query),
		l.formatArgs(args))
}

// LogError logs a query that resulted in an error
func (l *QueryLogger) LogError(query string, args []any, duration time.Duration, err error) {
	if !l.IsEnabled() {
		return
	}
	log.Printf("[SQL] [%.2fms] [ERROR] %s %s - %v",
		float64(duration.Nanoseconds())/1e6,
		l.formatQuery(query),
		l.formatArgs(args),
		err)
}

// formatQuery normalizes whitespace for single-line output
func (l *QueryLogger) formatQuery(query string) string {
	return strings.Join(strings.Fields(query), " ")
}

// formatArgs formats the query arguments for logging
func (l *QueryLogger) formatArgs(args []any) string {
	if len(args) == 0 {
		return ""
	}

	formatted := make([]string, 0, len(args))
	for _, arg := range args {
		switch v := arg.(type) {
		case string:
			formatted = append(formatted, fmt.Sprintf("%q", v))
		case nil:
			formatted = append(formatted, "NULL")
		default:
			formatted = append(formatted, fmt.Sprintf("%v", v))
		}
	}
	return fmt.Sprintf("[Args: [%s]]", strings.Join(formatted, ", "))
}
