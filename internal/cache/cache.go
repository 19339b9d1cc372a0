package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"debttrack/internal/log"
)

// Cache is a keyed store for computed projection responses.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Size() int
}

// Cleaner is implemented by caches that can drop expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Janitor periodically sweeps registered caches until its context ends.
type Janitor struct {
	caches []Cleaner
	logger *log.Logger
}

func NewJanitor(logger *log.Logger, caches ...Cleaner) *Janitor {
	return &Janitor{caches: caches, logger: logger.WithComponent(log.ComponentCache)}
}

// Sweep cleans every cache once and returns the number of removed entries.
func (j *Janitor) Sweep() int {
	total := 0
	for _, c := range j.caches {
		total += c.CleanExpired()
	}
	return total
}

// Run blocks, sweeping every interval, until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := j.Sweep(); removed > 0 {
				j.logger.Debug("Expired cache entries removed", "removed", removed)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Key joins the inputs of a computation into a stable cache key. Floats
// are written with %g so 100 and 100.0 map to the same entry.
func Key(parts ...any) string {
	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			b.WriteByte('|')
		}
		switch v := p.(type) {
		case float64:
			fmt.Fprintf(&b, "%g", v)
		case *float64:
			if v == nil {
				b.WriteString("nil")
			} else {
				fmt.Fprintf(&b, "%g", *v)
			}
		default:
			fmt.Fprint(&b, v)
		}
	}
	return b.String()
}
