package dbq

import "errors"

// ErrAllocOverflow is returned by Enqueue when growing the enqueue half past
// maxRecordBytes would be required to fit the requested record. This is a
// programmer error: a single frame's staging footprint ran past the 32 KiB
// cap.
var ErrAllocOverflow = errors.New("dbq: alloc overflow: record would exceed the 32KiB cap")

// record is one entry staged in a half: the caller's boxed value plus the
// header fields that would have prefixed it in a raw byte ring.
type record[T any] struct {
	value    T
	size     uint32
	alignPad uint8
}

// half tracks one of the two buffers' bump-allocation state: how many bytes
// are accounted for (including header and alignment padding), how many
// bytes are currently budgeted, and the staged records themselves in
// enqueue order.
type half[T any] struct {
	used    uint32
	cap     uint32
	records []record[T]
	next    int // dequeue cursor: index of the next record to dequeue
}

func newHalf[T any]() *half[T] {
	return &half[T]{cap: initialBytes}
}

func (h *half[T]) reset() {
	h.used = 0
	h.next = 0
	h.records = h.records[:0]
}

// grow raises h.cap geometrically by goldenRatio until it can hold need
// bytes, capped at maxRecordBytes. Returns false if even the cap can't
// hold it.
func (h *half[T]) grow(need uint32) bool {
	if need > maxRecordBytes {
		return false
	}
	cap := h.cap
	for cap < need {
		next := uint32(float64(cap) * goldenRatio)
		if next <= cap {
			next = cap + 1
		}
		if next > maxRecordBytes {
			next = maxRecordBytes
		}
		cap = next
		if cap == maxRecordBytes && cap < need {
			return false
		}
	}
	h.cap = cap
	return true
}

// Queue is a single-producer/single-consumer, variable-size record queue
// with external synchronization: exactly one goroutine may call Enqueue,
// exactly one may call Dequeue, and Swap must run while neither is active.
// T is the boxed record type staged per producer — CommandQueue instantiates
// this with its own Command interface.
type Queue[T any] struct {
	halves      [2]*half[T]
	enqueueSide int // index into halves of the current enqueue half
}

// New creates a double-buffer queue with both halves at their initial
// 320-byte budget.
func New[T any]() *Queue[T] {
	return &Queue[T]{
		halves: [2]*half[T]{newHalf[T](), newHalf[T]()},
	}
}

// Enqueue stages value as a record of the given declared size and required
// alignment. size and align drive only the byte-footprint accounting and
// growth/overflow behavior that mirrors the original placement-new ring;
// the value itself is stored as a normal Go value, avoiding unsafe
// placement construction into raw memory (see package doc).
//
// Fails with ErrAllocOverflow if accommodating this record would require
// growing the enqueue half past the 32 KiB cap.
func (q *Queue[T]) Enqueue(value T, size uint32, align uint8) error {
	enq := q.halves[q.enqueueSide]
	pad := alignPadFor(enq.used, align)
	need := enq.used + headerBytes + uint32(pad) + size
	if need > enq.cap {
		if !enq.grow(need) {
			return ErrAllocOverflow
		}
	}
	enq.records = append(enq.records, record[T]{value: value, size: size, alignPad: pad})
	enq.used = need
	return nil
}

// Dequeue returns the next staged record from the dequeue half, in the
// order it was enqueued, and advances the dequeue cursor. ok is false once
// [next, last) is empty.
func (q *Queue[T]) Dequeue() (value T, ok bool) {
	deq := q.halves[1-q.enqueueSide]
	if deq.next >= len(deq.records) {
		var zero T
		return zero, false
	}
	r := deq.records[deq.next]
	deq.next++
	return r.value, true
}

// Remaining reports how many records are left to dequeue from the dequeue
// half.
func (q *Queue[T]) Remaining() int {
	deq := q.halves[1-q.enqueueSide]
	return len(deq.records) - deq.next
}

// Swap exchanges the enqueue and dequeue halves: the half that was being
// filled becomes the new dequeue half (cursor reset to its start), and the
// half that was just drained becomes the new enqueue half (reset to empty,
// capacity retained). Must be called only while neither Enqueue nor
// Dequeue is running concurrently.
func (q *Queue[T]) Swap() {
	newEnqueueSide := 1 - q.enqueueSide
	q.halves[newEnqueueSide].reset()
	q.enqueueSide = newEnqueueSide
	q.halves[1-q.enqueueSide].next = 0
}
