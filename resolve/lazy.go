package resolve

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// lazy holds a value computed on first successful use. Concurrent callers
// share one computation; failures are not cached.
type lazy[T any] struct {
	group singleflight.Group
	mutex sync.Mutex
	ready bool
	value T
}

func (l *lazy[T]) peek() (T, bool) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.value, l.ready
}

func (l *lazy[T]) get(compute func() (T, error)) (T, error) {
	if value, ready := l.peek(); ready {
		return value, nil
	}

	result, err, _ := l.group.Do("", func() (any, error) {
		if value, ready := l.peek(); ready {
			return value, nil
		}

		value, err := compute()
		if err != nil {
			return nil, err
		}

		l.mutex.Lock()
		l.value = value
		l.ready = true
		l.mutex.Unlock()

		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return result.(T), nil
}
