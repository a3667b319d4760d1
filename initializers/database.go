package initializers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"
)

var DB *goqu.Database

// QueryTimeout bounds every store call so no handler blocks indefinitely.
const QueryTimeout = 5 * time.Second

// StoreRetries is how many extra attempts a guarded mutation gets on a
// transient failure. The dedup and status CAS checks make retries safe.
const StoreRetries = 2

func ConnectDB() {
	dsn := os.Getenv("DB_URL")

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		parsed, err := pq.ParseURL(dsn)
		if err != nil {
			log.Fatal(err)
		}
		dsn = parsed
	}
	// Server-side statement bound matching QueryTimeout, so no handler query
	// can hang past the store deadline. Timed-out statements fail with
	// SQLSTATE 57014, which IsTransientError classifies as retryable.
	dsn = fmt.Sprintf("%s statement_timeout=%d", dsn, QueryTimeout.Milliseconds())

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := QueryContext()
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal(err)
	}

	DB = goqu.New("postgres", db)
}

// QueryContext returns a context with the standard store timeout applied.
func QueryContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), QueryTimeout)
}

// IsTransientError reports whether err is a timeout or connection-class
// failure worth retrying, as opposed to a business-rule rejection.
func IsTransientError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// Class 08 - connection exceptions, 57 - operator intervention
		// (shutdown), 40001 - serialization failure.
		switch pqErr.Code.Class() {
		case "08", "57":
			return true
		}
		if pqErr.Code == "40001" {
			return true
		}
	}
	return false
}

// WithStoreRetry runs op, retrying on transient store failures. Non-transient
// errors are returned immediately.
func WithStoreRetry(op func() error) error {
	var err error
	for attempt := 0; attempt <= StoreRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
		}
		err = op()
		if err == nil || !IsTransientError(err) {
			return err
		}
		log.Printf("transient store error (attempt %d/%d): %v", attempt+1, StoreRetries+1, err)
	}
	return err
}
