package convert

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// unit is one independent piece of conversion work.
type unit struct {
	name string
	run  func() error
}

// runUnits executes the units on a fixed-size worker pool. A failed
// unit is logged and does not stop the others; the aggregated errors
// are returned at the end.
func (c *Converter) runUnits(kind string, units []unit) error {
	if len(units) == 0 {
		return nil
	}

	jobs := make(chan unit)
	var (
		wg   sync.WaitGroup
		done atomic.Int64

		errMu sync.Mutex
		errs  error
	)

	for i := 0; i < c.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range jobs {
				if err := u.run(); err != nil {
					c.log.Error("conversion failed",
						zap.String("kind", kind),
						zap.String("unit", u.name),
						zap.Error(err))
					errMu.Lock()
					errs = multierr.Append(errs, err)
					errMu.Unlock()
				}
				done.Add(1)
			}
		}()
	}

	// Progress reporter.
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.log.Info("converting",
					zap.String("kind", kind),
					zap.Int64("done", done.Load()),
					zap.Int("total", len(units)))
			case <-stop:
				return
			}
		}
	}()

	for _, u := range units {
		jobs <- u
	}
	close(jobs)
	wg.Wait()
	close(stop)

	c.log.Info("finished",
		zap.String("kind", kind),
		zap.Int64("done", done.Load()),
		zap.Int("total", len(units)))
	return errs
}
