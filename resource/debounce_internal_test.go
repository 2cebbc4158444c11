package resource

import (
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("debouncer", func() {
	var calls atomic.Int32

	BeforeEach(func() {
		calls.Store(0)
	})

	count := func() { calls.Add(1) }

	It("coalesces rapid triggers into one call with the last function", func() {
		d := newDebouncer(30 * time.Millisecond)
		var last atomic.Value

		for _, v := range []string{"b", "ba", "ban", "banj", "banjir"} {
			d.Trigger(func() {
				calls.Add(1)
				last.Store(v)
			})
			time.Sleep(2 * time.Millisecond)
		}

		Expect(calls.Load()).To(BeZero())
		Eventually(calls.Load).Should(Equal(int32(1)))
		Consistently(calls.Load, 100*time.Millisecond).Should(Equal(int32(1)))
		Expect(last.Load()).To(Equal("banjir"))
	})

	It("runs the pending function on Flush", func() {
		d := newDebouncer(time.Hour)

		d.Trigger(count)
		d.Flush()
		Expect(calls.Load()).To(Equal(int32(1)))

		d.Flush()
		Expect(calls.Load()).To(Equal(int32(1)))
	})

	It("drops the pending function on Close and ignores later triggers", func() {
		d := newDebouncer(10 * time.Millisecond)

		d.Trigger(count)
		d.Close()
		d.Trigger(count)
		d.Flush()

		Consistently(calls.Load, 50*time.Millisecond).Should(BeZero())
	})

	It("runs synchronously without a wait", func() {
		d := newDebouncer(0)

		d.Trigger(count)
		Expect(calls.Load()).To(Equal(int32(1)))
	})
})
