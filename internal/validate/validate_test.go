package validate_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/miegruneisen/internal/model"
	"github.com/san-kum/miegruneisen/internal/series"
	"github.com/san-kum/miegruneisen/internal/sweep"
	"github.com/san-kum/miegruneisen/internal/thermo"
	"github.com/san-kum/miegruneisen/internal/validate"
)

var _ = Describe("AlmostEqual", func() {
	It("should accept differences below 1.5e-10", func() {
		Expect(validate.AlmostEqual(1.0, 1.0+1.4e-10, 10)).To(BeTrue())
		Expect(validate.AlmostEqual(-21.5, -21.5, 10)).To(BeTrue())
	})

	It("should reject differences at or above the tolerance", func() {
		Expect(validate.AlmostEqual(1.0, 1.0+2e-10, 10)).To(BeFalse())
		Expect(validate.AlmostEqual(0, 1e-3, 2)).To(BeTrue())
		Expect(validate.AlmostEqual(0, 2e-2, 2)).To(BeFalse())
	})

	It("should treat NaN as matching only NaN", func() {
		Expect(validate.AlmostEqual(math.NaN(), math.NaN(), 10)).To(BeTrue())
		Expect(validate.AlmostEqual(math.NaN(), 1, 10)).To(BeFalse())
		Expect(validate.AlmostEqual(math.Inf(1), math.Inf(1), 10)).To(BeTrue())
		Expect(validate.AlmostEqual(math.Inf(1), 1e308, 10)).To(BeFalse())
	})
})

var _ = Describe("Compare", func() {
	volumes := []float64{1, 2, 3}

	It("should report mismatches with their volume", func() {
		c, err := validate.Compare("z", volumes, []float64{1, 2, 3.001}, []float64{1, 2, 3}, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.OK()).To(BeFalse())
		Expect(c.Mismatches).To(HaveLen(1))
		Expect(c.Mismatches[0].Index).To(Equal(2))
		Expect(c.Mismatches[0].Volume).To(Equal(3.0))
		Expect(c.MaxAbsDiff).To(BeNumerically("~", 1e-3, 1e-9))
	})

	It("should reject arrays of different lengths", func() {
		_, err := validate.Compare("z", volumes, []float64{1, 2}, []float64{1, 2, 3}, 10)
		Expect(err).To(MatchError(validate.ErrLength))
	})
})

var _ = Describe("Report", func() {
	It("should wrap ErrMismatch and name failed checks", func() {
		r := &validate.Report{Decimal: 10, Checks: []validate.Check{
			{Name: "partition_function", Compared: 3},
			{Name: "free_energy", Compared: 3, Mismatches: []validate.Mismatch{{Index: 1}}},
		}}
		Expect(r.OK()).To(BeFalse())
		err := r.Err()
		Expect(err).To(MatchError(validate.ErrMismatch))
		Expect(err.Error()).To(ContainSubstring("free_energy"))
		Expect(err.Error()).NotTo(ContainSubstring("partition_function"))
	})

	It("should return nil when all checks pass", func() {
		r := &validate.Report{Checks: []validate.Check{{Name: "a"}, {Name: "b"}}}
		Expect(r.OK()).To(BeTrue())
		Expect(r.Err()).NotTo(HaveOccurred())
	})
})

var _ = Describe("Run", func() {
	var params model.Params

	BeforeEach(func() {
		params = model.DefaultParams()
	})

	sweepWith := func(method series.Method) *sweep.Result {
		opts := series.DefaultOptions()
		opts.Method = method
		eng, err := series.New(opts)
		Expect(err).NotTo(HaveOccurred())
		eval, err := thermo.NewSeries(params, eng)
		Expect(err).NotTo(HaveOccurred())

		res, err := sweep.New(eval, params).Run(context.Background(), sweep.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())
		return res
	}

	Context("with the reference model", func() {
		It("should match all closed forms to ten decimals", func() {
			res := sweepWith(series.Ratio)
			Expect(res.Len()).To(Equal(100))

			report, err := validate.Run(res, validate.DefaultDecimal)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Checks).To(HaveLen(4))
			for _, c := range report.Checks {
				Expect(c.Mismatches).To(BeEmpty(), "check %s", c.Name)
				Expect(c.Compared).To(Equal(100))
			}
			Expect(report.Err()).NotTo(HaveOccurred())
		})

		It("should also pass with Shanks extrapolation", func() {
			report, err := validate.Run(sweepWith(series.Shanks), validate.DefaultDecimal)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.OK()).To(BeTrue(), "%v", report.Err())
		})

		It("should match the partition function at the reference volume", func() {
			res := sweepWith(series.Ratio)
			last := res.Len() - 1
			Expect(res.Volumes[last]).To(Equal(13.0))
			want := 1 / (2 * math.Sinh(0.30*(1*math.Pow(13, -2))/2))
			Expect(validate.AlmostEqual(res.Z[last], want, validate.DefaultDecimal)).To(BeTrue())
		})
	})

	Context("with a naively truncated sum", func() {
		It("should flag the shortfall", func() {
			params.Samples = 5
			eng, err := series.New(series.Options{
				Precision: 40, Digits: 3, MinTerms: 4, MaxTerms: 1_000_000, Method: series.Direct, Window: 7,
			})
			Expect(err).NotTo(HaveOccurred())
			eval, err := thermo.NewSeries(params, eng)
			Expect(err).NotTo(HaveOccurred())
			res, err := sweep.New(eval, params).Run(context.Background(), sweep.Config{Workers: 1})
			Expect(err).NotTo(HaveOccurred())

			report, err := validate.Run(res, validate.DefaultDecimal)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.OK()).To(BeFalse())
			Expect(report.Err()).To(MatchError(validate.ErrMismatch))
		})
	})

	Context("with the analytic evaluator", func() {
		It("should trivially agree with itself", func() {
			an, err := thermo.NewAnalytic(params)
			Expect(err).NotTo(HaveOccurred())
			res, err := sweep.New(an, params).Run(context.Background(), sweep.DefaultConfig())
			Expect(err).NotTo(HaveOccurred())

			report, err := validate.Run(res, validate.DefaultDecimal)
			Expect(err).NotTo(HaveOccurred())
			for _, c := range report.Checks {
				Expect(c.MaxAbsDiff).To(BeNumerically("<", validate.Tolerance(validate.DefaultDecimal)))
			}
		})
	})
})
