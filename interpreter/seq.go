// Package interpreter executes an indexed.IndexedQuery against an Adapter,
// producing the lazy, iterator-driven row stream spec.md §4.3 describes.
package interpreter

// Seq is a lazy pull-style sequence of values: calling seq(yield) pushes
// successive elements to yield until yield returns false (the consumer is
// done) or the sequence runs out on its own. This stands in for the standard
// library's iter.Seq, which requires a newer Go version than this module's
// go.mod declares; consumers call Seq values directly with an explicit yield
// closure rather than using range-over-func syntax.
type Seq[T any] func(yield func(T) bool)

// SeqFromSlice turns a plain slice into a Seq, in order.
func SeqFromSlice[T any](items []T) Seq[T] {
	return func(yield func(T) bool) {
		for _, item := range items {
			if !yield(item) {
				return
			}
		}
	}
}

// Collect drains seq into a slice. Used by tests and by any adapter-facing
// helper that needs the whole sequence materialized at once.
func Collect[T any](seq Seq[T]) []T {
	var out []T
	seq(func(v T) bool {
		out = append(out, v)
		return true
	})
	return out
}

// mapSeq lazily transforms every element of seq with fn.
func mapSeq[T, U any](seq Seq[T], fn func(T) U) Seq[U] {
	return func(yield func(U) bool) {
		seq(func(v T) bool {
			return yield(fn(v))
		})
	}
}

// filterSeq lazily keeps only the elements of seq for which keep returns
// true.
func filterSeq[T any](seq Seq[T], keep func(T) bool) Seq[T] {
	return func(yield func(T) bool) {
		seq(func(v T) bool {
			if !keep(v) {
				return true
			}
			return yield(v)
		})
	}
}

// flatMapSeq lazily expands every element of seq into zero or more elements
// via fn, concatenating the results in order. Used for edge expansion, where
// one context fans out into (context, neighbor) pairs.
func flatMapSeq[T, U any](seq Seq[T], fn func(T) Seq[U]) Seq[U] {
	return func(yield func(U) bool) {
		stop := false
		seq(func(v T) bool {
			fn(v)(func(u U) bool {
				if !yield(u) {
					stop = true
					return false
				}
				return true
			})
			return !stop
		})
	}
}

// takeSeq lazily stops after at most n elements.
func takeSeq[T any](seq Seq[T], n int) Seq[T] {
	return func(yield func(T) bool) {
		if n <= 0 {
			return
		}
		count := 0
		seq(func(v T) bool {
			if !yield(v) {
				return false
			}
			count++
			return count < n
		})
	}
}
