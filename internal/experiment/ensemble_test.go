package experiment_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/photolab/internal/analysis"
	"github.com/san-kum/photolab/internal/experiment"
	"github.com/san-kum/photolab/internal/physics"
)

var _ = Describe("Ensemble", func() {
	var (
		ens    *experiment.Ensemble
		params physics.Parameters
	)

	BeforeEach(func() {
		ens = experiment.NewEnsemble(experiment.Config{Seed: 7, SampleCount: 50})
		params = physics.Parameters{
			MaterialID:      "cesium",
			IntensityWPerM2: 5,
			AreaCm2:         0.10,
		}
	})

	It("keeps wavelength order and marks dark points unresolved", func() {
		scan, err := ens.Scan(context.Background(), params, []float64{250, 400, 650}, -5, 0, 0.05)
		Expect(err).NotTo(HaveOccurred())
		Expect(scan).To(HaveLen(3))

		Expect(scan[0].WavelengthNm).To(Equal(250.0))
		Expect(scan[1].WavelengthNm).To(Equal(400.0))
		Expect(scan[2].WavelengthNm).To(Equal(650.0))

		Expect(scan[0].Resolved).To(BeTrue())
		Expect(scan[1].Resolved).To(BeTrue())
		Expect(scan[2].Resolved).To(BeFalse())
		Expect(scan[0].Curve).To(HaveLen(101))
	})

	It("reads stopping potentials within one step of the model", func() {
		scan, err := ens.Scan(context.Background(), params, []float64{300, 400}, -5, 0, 0.05)
		Expect(err).NotTo(HaveOccurred())
		for _, pt := range scan {
			Expect(pt.MeasuredStopV).To(BeNumerically("<=", pt.Result.StoppingPotentialV+1e-9))
			Expect(pt.MeasuredStopV).To(BeNumerically(">=", pt.Result.StoppingPotentialV-0.05-1e-9))
		}
	})

	It("is reproducible for a fixed seed", func() {
		a, err := ens.Scan(context.Background(), params, []float64{300, 400}, -2, 0, 0.5)
		Expect(err).NotTo(HaveOccurred())
		b, err := ens.Scan(context.Background(), params, []float64{300, 400}, -2, 0, 0.5)
		Expect(err).NotTo(HaveOccurred())
		Expect(a).To(Equal(b))
	})

	It("feeds a Millikan fit close to Planck's constant", func() {
		scan, err := ens.Scan(context.Background(), params, []float64{250, 300, 350, 400, 450}, -5, 0, 0.01)
		Expect(err).NotTo(HaveOccurred())

		fit, err := analysis.MillikanFit(experiment.FrequencyPoints(scan))
		Expect(err).NotTo(HaveOccurred())
		Expect(fit.Points).To(Equal(5))
		Expect(fit.PlanckEvS).To(BeNumerically("~", physics.PlanckEvS, 0.05*physics.PlanckEvS))
		Expect(fit.WorkFunctionEv).To(BeNumerically("~", 2.10, 0.1))
	})

	It("rejects out-of-range wavelengths", func() {
		_, err := ens.Scan(context.Background(), params, []float64{400, 900}, -1, 0, 0.5)
		Expect(err).To(MatchError(physics.ErrInvalidParameter))
		Expect(err.Error()).To(ContainSubstring("900.0 nm"))
	})

	It("ignores the base bias and reports the zero-bias model", func() {
		params.AppliedVoltageV = 7
		scan, err := ens.Scan(context.Background(), params, []float64{300, 400}, -5, 0, 0.05)
		Expect(err).NotTo(HaveOccurred())
		for _, pt := range scan {
			Expect(pt.Result.FrequencyHz).To(BeNumerically("~", physics.SpeedOfLight/(pt.WavelengthNm*1e-9), 1))
			Expect(pt.Result.StoppingPotentialV).To(BeNumerically(">", 0))
			Expect(pt.Result.CurrentUa).To(Equal(pt.Result.SaturationCurrentUa))
			Expect(pt.Resolved).To(BeTrue())
		}

		points := experiment.FrequencyPoints(scan)
		Expect(points).To(HaveLen(2))
		for _, fp := range points {
			Expect(fp.FrequencyHz).To(BeNumerically(">", 0))
		}
	})

	It("fails on an unknown material instead of returning empty results", func() {
		params.MaterialID = "unobtainium"
		scan, err := ens.Scan(context.Background(), params, []float64{300}, -1, 0, 0.5)
		Expect(err).To(MatchError(physics.ErrInvalidParameter))
		Expect(err.Error()).To(ContainSubstring("300.0 nm"))
		Expect(scan).To(BeNil())
	})

	It("rejects a bad sweep window before starting", func() {
		_, err := ens.Scan(context.Background(), params, []float64{400}, 1, 0, 0.5)
		Expect(err).To(MatchError(physics.ErrInvalidParameter))
	})

	It("seeds each wavelength independently of its neighbours", func() {
		pair, err := ens.Scan(context.Background(), params, []float64{300, 400}, -2, 0, 0.5)
		Expect(err).NotTo(HaveOccurred())
		single, err := ens.Scan(context.Background(), params, []float64{300}, -2, 0, 0.5)
		Expect(err).NotTo(HaveOccurred())
		Expect(single[0]).To(Equal(pair[0]))
	})

	It("stops when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := ens.Scan(ctx, params, []float64{300, 400}, -1, 0, 0.5)
		Expect(err).To(MatchError(context.Canceled))
	})
})
