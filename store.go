package calcgraph

// keyedStore is a typed map keyed by Key, used for the value cache and
// the override map. It is single-owner, like the Graph that holds it
// (see the concurrency note in the package docs).
type keyedStore[T any] struct {
	data map[Key]T
}

func newKeyedStore[T any]() *keyedStore[T] {
	return &keyedStore[T]{data: make(map[Key]T)}
}

func (s *keyedStore[T]) Load(key Key) (T, bool) {
	v, ok := s.data[key]
	return v, ok
}

func (s *keyedStore[T]) Store(key Key, value T) {
	s.data[key] = value
}

func (s *keyedStore[T]) Delete(key Key) {
	delete(s.data, key)
}

func (s *keyedStore[T]) Has(key Key) bool {
	_, ok := s.data[key]
	return ok
}

func (s *keyedStore[T]) Len() int {
	return len(s.data)
}

func (s *keyedStore[T]) Range(fn func(key Key, value T) bool) {
	for k, v := range s.data {
		if !fn(k, v) {
			return
		}
	}
}
