package service

import (
	"fmt"
	"runtime/debug"
)

// ItemFailures collects per-item errors of one job run. The run goes on
// after each failure; the collected errors are reported once at the end.
type ItemFailures struct {
	Job   string
	Total int
	Errs  []error
}

func (e *ItemFailures) Error() string {
	if len(e.Errs) == 1 {
		return fmt.Sprintf("%s: 1 of %d items failed: %v", e.Job, e.Total, e.Errs[0])
	}
	return fmt.Sprintf("%s: %d of %d items failed, first: %v", e.Job, len(e.Errs), e.Total, e.Errs[0])
}

func (e *ItemFailures) Unwrap() []error { return e.Errs }

func (e *ItemFailures) add(err error) {
	e.Errs = append(e.Errs, err)
}

// err returns nil when nothing failed.
func (e *ItemFailures) err() error {
	if len(e.Errs) == 0 {
		return nil
	}
	return e
}

// guard runs fn and turns a panic into an error so one bad record cannot
// take down the rest of a pass.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return fn()
}
