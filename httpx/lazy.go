package httpx

// lazy holds a value computed on first successful read. Failed
// computations are not stored, so the next read tries again.
type lazy[T any] struct {
	v  T
	ok bool
}

func (l *lazy[T]) get(compute func() (T, error)) (T, error) {
	if l.ok {
		return l.v, nil
	}
	v, err := compute()
	if err != nil {
		var zero T
		return zero, err
	}
	l.v, l.ok = v, true
	return v, nil
}
