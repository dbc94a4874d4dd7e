package ledger_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/photolab/internal/ledger"
	"github.com/san-kum/photolab/internal/physics"
	"github.com/san-kum/photolab/internal/sampler"
)

var _ = Describe("Ledger", func() {
	var (
		l     *ledger.Ledger
		clock time.Time
	)

	params := func(v float64) physics.Parameters {
		return physics.Parameters{
			MaterialID:      "cesium",
			WavelengthNm:    400,
			IntensityWPerM2: 5,
			AreaCm2:         0.1,
			AppliedVoltageV: v,
		}
	}

	measure := func(v float64) ledger.Record {
		p := params(v)
		res, err := physics.Compute(2.10, p)
		Expect(err).NotTo(HaveOccurred())
		out := sampler.New(sampler.NewSeededSource(1)).Sample(res.CurrentUa)
		return l.Record("Cesium", p, res, out)
	}

	BeforeEach(func() {
		clock = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		l = ledger.New(ledger.WithClock(func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		}))
	})

	It("starts empty", func() {
		Expect(l.Len()).To(Equal(0))
		Expect(l.Count()).To(Equal(0))
		Expect(l.All()).To(BeEmpty())
		Expect(l.IVCurve()).To(BeEmpty())
	})

	Describe("Record", func() {
		It("appends in order and keeps the counter in step", func() {
			for i, v := range []float64{0, -0.5, 1} {
				rec := measure(v)
				Expect(rec.Sequence).To(Equal(i + 1))
				Expect(l.Len()).To(Equal(l.Count()))
			}
			Expect(l.Count()).To(Equal(3))

			all := l.All()
			Expect(all[0].Parameters.AppliedVoltageV).To(Equal(0.0))
			Expect(all[1].Parameters.AppliedVoltageV).To(Equal(-0.5))
			Expect(all[2].Parameters.AppliedVoltageV).To(Equal(1.0))
		})

		It("stamps records with the ledger clock", func() {
			first := measure(0)
			second := measure(0)
			Expect(first.Timestamp).To(Equal(time.Date(2024, 3, 1, 12, 0, 1, 0, time.UTC)))
			Expect(second.Timestamp.After(first.Timestamp)).To(BeTrue())
		})

		It("captures the sampler summary", func() {
			rec := measure(0)
			Expect(rec.SampleCount).To(Equal(sampler.DefaultCount))
			Expect(rec.Samples).To(HaveLen(sampler.DefaultCount))
			Expect(rec.MeanUa).To(BeNumerically("~", 0.0005, 1e-7))
			Expect(rec.Material).To(Equal("Cesium"))
			Expect(rec.ID).NotTo(BeEmpty())
		})

		It("gives each record a distinct id", func() {
			a := measure(0)
			b := measure(0)
			Expect(a.ID).NotTo(Equal(b.ID))
		})

		It("does not share sample storage with callers", func() {
			rec := measure(0)
			rec.Samples[0] = -1
			Expect(l.All()[0].Samples[0]).NotTo(Equal(-1.0))

			snap := l.LastN(1)
			snap[0].Samples[1] = -1
			snap[0].MeanUa = -1
			Expect(l.All()[0].Samples[1]).NotTo(Equal(-1.0))
			Expect(l.All()[0].MeanUa).NotTo(Equal(-1.0))
		})
	})

	Describe("LastN", func() {
		BeforeEach(func() {
			for i := 0; i < 12; i++ {
				measure(-float64(i) * 0.1)
			}
		})

		It("returns the most recent records oldest first", func() {
			last := l.LastN(3)
			Expect(last).To(HaveLen(3))
			Expect(last[0].Sequence).To(Equal(10))
			Expect(last[2].Sequence).To(Equal(12))
		})

		It("caps at the ledger length", func() {
			Expect(l.LastN(50)).To(HaveLen(12))
		})

		It("returns nothing for non-positive k", func() {
			Expect(l.LastN(0)).To(BeEmpty())
			Expect(l.LastN(-1)).To(BeEmpty())
		})

		It("does not mutate the ledger", func() {
			l.LastN(5)
			Expect(l.Len()).To(Equal(12))
		})
	})

	Describe("IVCurve", func() {
		It("keeps insertion order for non-monotonic sweeps", func() {
			voltages := []float64{1, -0.5, 0.5, -1, 0}
			for _, v := range voltages {
				measure(v)
			}

			curve := l.IVCurve()
			Expect(curve).To(HaveLen(len(voltages)))
			for i, v := range voltages {
				Expect(curve[i].VoltageV).To(Equal(v))
			}
			Expect(curve[0].CurrentUa).To(Equal(l.All()[0].MeanUa))
		})
	})

	Describe("Reset", func() {
		It("clears records and the counter", func() {
			measure(0)
			measure(1)
			l.Reset()

			Expect(l.Len()).To(Equal(0))
			Expect(l.Count()).To(Equal(0))
			Expect(l.LastN(10)).To(BeEmpty())
			Expect(l.IVCurve()).To(BeEmpty())
		})

		It("is idempotent", func() {
			measure(0)
			l.Reset()
			l.Reset()
			Expect(l.Len()).To(Equal(0))
			Expect(l.Count()).To(Equal(0))
		})

		It("restarts the sequence", func() {
			measure(0)
			l.Reset()
			Expect(measure(0).Sequence).To(Equal(1))
		})

		It("does not disturb records handed out earlier", func() {
			measure(0)
			before := l.All()
			l.Reset()
			measure(2)
			Expect(before[0].Parameters.AppliedVoltageV).To(Equal(0.0))
		})
	})
})
