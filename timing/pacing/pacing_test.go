package pacing_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/dp8sim/timing/latency"
	"github.com/sarchlab/dp8sim/timing/pacing"
)

var _ = Describe("Nop", func() {
	It("should return immediately", func() {
		start := time.Now()
		err := pacing.Nop{}.Pace(context.Background(), pacing.Step{Kind: latency.KindExecute, Seconds: 10})
		Expect(err).NotTo(HaveOccurred())
		Expect(time.Since(start)).To(BeNumerically("<", time.Second))
	})
})

var _ = Describe("Sleep", func() {
	It("should block for the scaled latency", func() {
		p := pacing.Sleep{Scale: 0.1}

		start := time.Now()
		err := p.Pace(context.Background(), pacing.Step{Kind: latency.KindRead, Seconds: 0.2})
		Expect(err).NotTo(HaveOccurred())
		Expect(time.Since(start)).To(BeNumerically(">=", 20*time.Millisecond))
	})

	It("should stop when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := pacing.Sleep{}.Pace(ctx, pacing.Step{Kind: latency.KindWrite, Seconds: 60})
		Expect(err).To(MatchError(context.Canceled))
	})

	It("should not block for a zero latency", func() {
		err := pacing.Sleep{}.Pace(context.Background(), pacing.Step{Kind: latency.KindWrite})
		Expect(err).NotTo(HaveOccurred())
	})
})

var _ = Describe("VirtualPacer", func() {
	var p *pacing.VirtualPacer

	BeforeEach(func() {
		p = pacing.NewVirtualPacer()
	})

	It("should start at time zero", func() {
		Expect(p.Now()).To(BeZero())
		Expect(p.Trace()).To(BeEmpty())
	})

	It("should advance the clock by each latency", func() {
		ctx := context.Background()
		Expect(p.Pace(ctx, pacing.Step{Kind: latency.KindRead, Seconds: 0.3, Detail: "r1,r2"})).To(Succeed())
		Expect(p.Pace(ctx, pacing.Step{Kind: latency.KindExecute, Seconds: 0.8, Detail: "ADD"})).To(Succeed())
		Expect(p.Pace(ctx, pacing.Step{Kind: latency.KindWrite, Seconds: 0.4, Detail: "r5"})).To(Succeed())

		Expect(p.Now()).To(BeNumerically("~", 1.5, 1e-9))

		trace := p.Trace()
		Expect(trace).To(HaveLen(3))
		Expect(trace[0].Step.Detail).To(Equal("r1,r2"))
		Expect(trace[0].At).To(BeNumerically("~", 0.3, 1e-9))
		Expect(trace[1].Step.Kind).To(Equal(latency.KindExecute))
		Expect(trace[1].At).To(BeNumerically("~", 1.1, 1e-9))
		Expect(trace[2].At).To(BeNumerically("~", 1.5, 1e-9))
	})

	It("should not sleep", func() {
		start := time.Now()
		Expect(p.Pace(context.Background(), pacing.Step{Kind: latency.KindExecute, Seconds: 3600})).To(Succeed())
		Expect(time.Since(start)).To(BeNumerically("<", time.Second))
		Expect(p.Now()).To(BeNumerically("~", 3600, 1e-6))
	})

	It("should refuse a cancelled context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		Expect(p.Pace(ctx, pacing.Step{Seconds: 1})).To(MatchError(context.Canceled))
		Expect(p.Trace()).To(BeEmpty())
	})

	It("should reset", func() {
		Expect(p.Pace(context.Background(), pacing.Step{Seconds: 1})).To(Succeed())
		p.Reset()
		Expect(p.Now()).To(BeZero())
		Expect(p.Trace()).To(BeEmpty())
	})
})
