package evaluation

import (
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func TestEvaluation(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Evaluation Module Suite")
}

func allScores(v int) Criteria {
	return Criteria{
		Davamiyyet:               v,
		IsguzarKeyfiyetler:       v,
		StreseDavamliliq:         v,
		AscImici:                 v,
		QavramaMenimseme:         v,
		IxtisasBiliyi:            v,
		MuhendisEtikasi:          v,
		KomandaIleIslemeBacarigi: v,
	}
}

var _ = ginkgo.Describe("Criteria", func() {
	ginkgo.Describe("Average", func() {
		ginkgo.It("should return the value itself when all scores are equal", func() {
			gomega.Expect(allScores(7).Average()).To(gomega.Equal(7.0))
		})

		ginkgo.It("should round to two decimals", func() {
			// Given 7 tens and one 2: mean 72/8 = 9.0
			c := allScores(10)
			c.KomandaIleIslemeBacarigi = 2

			gomega.Expect(c.Average()).To(gomega.Equal(9.0))
		})

		ginkgo.It("should round half up on the third decimal", func() {
			// Given sum 61: 61/8 = 7.625 → 7.63
			c := allScores(8)
			c.Davamiyyet = 7
			c.IsguzarKeyfiyetler = 7
			c.StreseDavamliliq = 7

			gomega.Expect(c.Average()).To(gomega.Equal(7.63))
		})

		ginkgo.It("should handle the minimum and maximum", func() {
			gomega.Expect(allScores(1).Average()).To(gomega.Equal(1.0))
			gomega.Expect(allScores(10).Average()).To(gomega.Equal(10.0))
		})
	})

	ginkgo.Describe("Validate", func() {
		ginkgo.It("should accept scores inside [1,10]", func() {
			gomega.Expect(allScores(1).Validate()).To(gomega.Succeed())
			gomega.Expect(allScores(10).Validate()).To(gomega.Succeed())
		})

		ginkgo.It("should reject a zero score", func() {
			c := allScores(5)
			c.AscImici = 0

			err := c.Validate()
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(err.Error()).To(gomega.ContainSubstring("between 1 and 10"))
		})

		ginkgo.It("should reject a score above ten", func() {
			c := allScores(5)
			c.IxtisasBiliyi = 11

			gomega.Expect(c.Validate()).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("Scores", func() {
		ginkgo.It("should keep the entity definition order", func() {
			c := Criteria{
				Davamiyyet:               1,
				IsguzarKeyfiyetler:       2,
				StreseDavamliliq:         3,
				AscImici:                 4,
				QavramaMenimseme:         5,
				IxtisasBiliyi:            6,
				MuhendisEtikasi:          7,
				KomandaIleIslemeBacarigi: 8,
			}

			gomega.Expect(c.Scores()).To(gomega.Equal([8]int{1, 2, 3, 4, 5, 6, 7, 8}))
		})
	})
})

var _ = ginkgo.Describe("Round2", func() {
	ginkgo.It("should round half away from zero", func() {
		gomega.Expect(Round2(7.625)).To(gomega.Equal(7.63))
		gomega.Expect(Round2(7.624)).To(gomega.Equal(7.62))
		gomega.Expect(Round2(7.0)).To(gomega.Equal(7.0))
	})
})

var _ = ginkgo.Describe("ValidEvaluationNumber", func() {
	ginkgo.It("should accept 1 through 3 only", func() {
		gomega.Expect(ValidEvaluationNumber(1)).To(gomega.BeTrue())
		gomega.Expect(ValidEvaluationNumber(3)).To(gomega.BeTrue())
		gomega.Expect(ValidEvaluationNumber(0)).To(gomega.BeFalse())
		gomega.Expect(ValidEvaluationNumber(4)).To(gomega.BeFalse())
	})
})
