package experiment_test

import (
	"math"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/photolab/internal/experiment"
	"github.com/san-kum/photolab/internal/export"
	"github.com/san-kum/photolab/internal/physics"
	"github.com/san-kum/photolab/internal/sampler"
)

var _ = Describe("Lab", func() {
	var (
		lab    *experiment.Lab
		params physics.Parameters
	)

	BeforeEach(func() {
		lab = experiment.New(experiment.Config{Seed: 42})
		params = physics.Parameters{
			MaterialID:      "cesium",
			WavelengthNm:    400,
			IntensityWPerM2: 5,
			AreaCm2:         0.10,
			AppliedVoltageV: 0,
		}
	})

	Describe("Evaluate", func() {
		It("computes the cesium reference point", func() {
			res, err := lab.Evaluate(params)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.PhotonEnergyEv).To(BeNumerically("~", 3.10, 0.01))
			Expect(res.MaxKineticEnergyEv).To(BeNumerically("~", 1.00, 0.01))
			Expect(res.ThresholdWavelengthNm).To(BeNumerically("~", 590.9, 0.1))
			Expect(res.EmissionOccurs).To(BeTrue())
			Expect(res.CurrentUa).To(Equal(0.0005))
		})

		It("rejects out-of-range parameters", func() {
			params.WavelengthNm = 800
			_, err := lab.Evaluate(params)
			Expect(err).To(MatchError(physics.ErrInvalidParameter))
		})

		It("rejects unknown materials as invalid parameters", func() {
			params.MaterialID = "unobtainium"
			_, err := lab.Evaluate(params)
			Expect(err).To(MatchError(physics.ErrInvalidParameter))
			Expect(err.Error()).To(ContainSubstring("unknown material"))
		})

		It("does not touch the ledger", func() {
			_, err := lab.Evaluate(params)
			Expect(err).NotTo(HaveOccurred())
			Expect(lab.Count()).To(Equal(0))
		})
	})

	Describe("Measure", func() {
		It("records a 1000-sample measurement", func() {
			res, err := lab.Evaluate(params)
			Expect(err).NotTo(HaveOccurred())

			rec, err := lab.Measure(params, res)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.SampleCount).To(Equal(1000))
			Expect(rec.Samples).To(HaveLen(1000))
			Expect(rec.Material).To(Equal("Cesium"))
			Expect(math.Abs(rec.MeanUa - res.CurrentUa)).To(BeNumerically("<", 5*rec.StdErrorUa))
			Expect(lab.Count()).To(Equal(1))
		})

		It("is reproducible for a given seed", func() {
			res, _ := lab.Evaluate(params)
			a, err := lab.Measure(params, res)
			Expect(err).NotTo(HaveOccurred())

			other := experiment.New(experiment.Config{Seed: 42})
			b, err := other.Measure(params, res)
			Expect(err).NotTo(HaveOccurred())

			Expect(b.MeanUa).To(Equal(a.MeanUa))
			Expect(b.StdDevUa).To(Equal(a.StdDevUa))
			Expect(b.StdErrorUa).To(Equal(a.StdErrorUa))
		})

		It("uses an injected random source", func() {
			fixed := experiment.New(experiment.Config{}, experiment.WithSource(sampler.NewSequenceSource(0.5)))
			res, _ := fixed.Evaluate(params)
			rec, err := fixed.Measure(params, res)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.MeanUa).To(BeNumerically("~", res.CurrentUa, 1e-15))
			Expect(rec.StdDevUa).To(BeNumerically("<", 1e-15))
		})

		It("honours a custom sample count", func() {
			small := experiment.New(experiment.Config{Seed: 1, SampleCount: 10})
			res, _ := small.Evaluate(params)
			rec, err := small.Measure(params, res)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.Samples).To(HaveLen(10))
		})

		It("leaves the ledger unchanged on invalid input", func() {
			res, _ := lab.Evaluate(params)
			_, err := lab.Measure(params, res)
			Expect(err).NotTo(HaveOccurred())

			bad := params
			bad.AreaCm2 = 3
			_, err = lab.Measure(bad, res)
			Expect(err).To(MatchError(physics.ErrInvalidParameter))

			res.CurrentUa = math.NaN()
			_, err = lab.Measure(params, res)
			Expect(err).To(MatchError(physics.ErrInvalidParameter))

			Expect(lab.Count()).To(Equal(1))
			Expect(lab.Records()).To(HaveLen(1))
		})
	})

	Describe("Snapshot", func() {
		BeforeEach(func() {
			_, err := lab.Sweep(params, -1.5, 0, 0.1)
			Expect(err).NotTo(HaveOccurred())
		})

		It("defaults to the ten most recent records", func() {
			snap := lab.Snapshot(0)
			Expect(snap).To(HaveLen(experiment.DefaultSnapshotSize))
			Expect(snap[len(snap)-1].Parameters.AppliedVoltageV).To(Equal(0.0))
		})

		It("returns at most k records", func() {
			Expect(lab.Snapshot(3)).To(HaveLen(3))
			Expect(lab.Snapshot(100)).To(HaveLen(16))
		})
	})

	Describe("Sweep", func() {
		It("records one point per bias step in order", func() {
			recs, err := lab.Sweep(params, -1, 1, 0.5)
			Expect(err).NotTo(HaveOccurred())
			Expect(recs).To(HaveLen(5))

			curve := lab.IVCurve()
			Expect(curve).To(HaveLen(5))
			for i, v := range []float64{-1, -0.5, 0, 0.5, 1} {
				Expect(curve[i].VoltageV).To(Equal(v))
			}
		})

		It("produces zero current past the stopping potential", func() {
			_, err := lab.Sweep(params, -2, -1.1, 0.1)
			Expect(err).NotTo(HaveOccurred())
			for _, pt := range lab.IVCurve() {
				Expect(pt.CurrentUa).To(BeZero())
			}
		})

		It("records nothing when any point is invalid", func() {
			_, err := lab.Sweep(params, -4, 6, 1)
			Expect(err).To(MatchError(physics.ErrInvalidParameter))
			Expect(lab.Count()).To(Equal(0))
		})

		It("rejects a non-positive step", func() {
			_, err := lab.Sweep(params, -1, 1, 0)
			Expect(err).To(MatchError(physics.ErrInvalidParameter))
		})

		It("rejects a step too small to count", func() {
			_, err := lab.Sweep(params, -5, 5, 1e-320)
			Expect(err).To(MatchError(physics.ErrInvalidParameter))
			Expect(lab.Count()).To(Equal(0))
		})
	})

	Describe("Reset", func() {
		It("empties snapshot and curve, idempotently", func() {
			_, err := lab.Sweep(params, -1, 1, 0.5)
			Expect(err).NotTo(HaveOccurred())

			lab.Reset()
			Expect(lab.Snapshot(0)).To(BeEmpty())
			Expect(lab.IVCurve()).To(BeEmpty())

			lab.Reset()
			Expect(lab.Snapshot(0)).To(BeEmpty())
			Expect(lab.Count()).To(Equal(0))
		})
	})

	Describe("Export", func() {
		It("signals an empty ledger", func() {
			text, err := lab.Export()
			Expect(err).To(MatchError(export.ErrEmptyLedger))
			Expect(text).To(BeEmpty())
		})

		It("round trips voltage and mean current", func() {
			recs, err := lab.Sweep(params, -1.2, 0.6, 0.3)
			Expect(err).NotTo(HaveOccurred())

			text, err := lab.Export()
			Expect(err).NotTo(HaveOccurred())

			rows, err := export.ParseCSV(strings.NewReader(text))
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(len(recs)))
			for i, row := range rows {
				Expect(row.AppliedVoltageV).To(BeNumerically("~", recs[i].Parameters.AppliedVoltageV, 1e-6))
				Expect(row.MeanCurrentUa).To(BeNumerically("~", recs[i].MeanUa, 1e-6))
			}
			Expect(lab.Count()).To(Equal(len(recs)))
		})
	})
})

var _ = DescribeTable("SweepVoltages",
	func(from, to, step float64, want []float64) {
		got, err := experiment.SweepVoltages(from, to, step)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(want))
	},
	Entry("unit steps", -1.0, 1.0, 1.0, []float64{-1, 0, 1}),
	Entry("tenths", 0.0, 0.3, 0.1, []float64{0, 0.1, 0.2, 0.3}),
	Entry("single point", 0.5, 0.5, 0.1, []float64{0.5}),
	Entry("step overshoots end", 0.0, 1.0, 0.75, []float64{0, 0.75}),
)

var _ = DescribeTable("SweepVoltages rejects",
	func(from, to, step float64) {
		got, err := experiment.SweepVoltages(from, to, step)
		Expect(err).To(MatchError(physics.ErrInvalidParameter))
		Expect(got).To(BeNil())
	},
	Entry("zero step", -1.0, 1.0, 0.0),
	Entry("negative step", -1.0, 1.0, -0.1),
	Entry("NaN step", -1.0, 1.0, math.NaN()),
	Entry("reversed window", 1.0, -1.0, 0.1),
	Entry("subnormal step", -5.0, 5.0, 1e-320),
	Entry("too many points", -5.0, 5.0, 1e-4),
	Entry("infinite upper bound", 0.0, math.Inf(1), 0.1),
	Entry("infinite lower bound", math.Inf(-1), 0.0, 0.1),
)
