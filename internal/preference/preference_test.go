package preference

import (
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func TestPreference(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Preference Module Suite")
}

func strPtr(s string) *string { return &s }

var _ = ginkgo.Describe("Resolve", func() {
	var prefs []*Preference

	ginkgo.BeforeEach(func() {
		prefs = []*Preference{
			{ID: "1/global-location", UserID: 1, DataType: "location", CompanyID: nil, Allowed: true},
			{ID: "1/tech-corp-location", UserID: 1, DataType: "location", CompanyID: strPtr("tech-corp"), Allowed: false},
			{ID: "1/tech-corp-email", UserID: 1, DataType: "email", CompanyID: strPtr("tech-corp"), Allowed: true},
		}
	})

	ginkgo.Context("with a company-specific record", func() {
		ginkgo.It("should let the company record win over the global one", func() {
			result := Resolve(prefs, "location", strPtr("tech-corp"))
			gomega.Expect(result.Allowed).To(gomega.BeFalse())
			gomega.Expect(result.IsGlobal).To(gomega.BeFalse())
		})

		ginkgo.It("should not leak another company's record", func() {
			result := Resolve(prefs, "location", strPtr("finance-hub"))
			gomega.Expect(result.Allowed).To(gomega.BeTrue())
			gomega.Expect(result.IsGlobal).To(gomega.BeTrue())
		})
	})

	ginkgo.Context("with only a global record", func() {
		ginkgo.It("should fall back to the global value", func() {
			result := Resolve(prefs, "location", strPtr("health-plus"))
			gomega.Expect(result.Allowed).To(gomega.BeTrue())
			gomega.Expect(result.IsGlobal).To(gomega.BeTrue())
		})

		ginkgo.It("should answer global queries from the global tier", func() {
			result := Resolve(prefs, "location", nil)
			gomega.Expect(result.Allowed).To(gomega.BeTrue())
			gomega.Expect(result.IsGlobal).To(gomega.BeTrue())
		})
	})

	ginkgo.Context("with no record at either tier", func() {
		ginkgo.It("should default to deny", func() {
			result := Resolve(prefs, "health-records", strPtr("tech-corp"))
			gomega.Expect(result.Allowed).To(gomega.BeFalse())
			gomega.Expect(result.IsGlobal).To(gomega.BeTrue())
		})

		ginkgo.It("should default to deny for global queries too", func() {
			result := Resolve(nil, "email", nil)
			gomega.Expect(result.Allowed).To(gomega.BeFalse())
		})

		ginkgo.It("should ignore a company record when only a global query is made", func() {
			result := Resolve(prefs, "email", nil)
			gomega.Expect(result.Allowed).To(gomega.BeFalse())
			gomega.Expect(result.IsGlobal).To(gomega.BeTrue())
		})
	})
})

var _ = ginkgo.Describe("CalculateCost", func() {
	ginkgo.It("should charge one token per company-specific change", func() {
		changes := []Change{
			{DataType: "email", CompanyID: strPtr("tech-corp"), Allowed: true},
			{DataType: "location", CompanyID: strPtr("finance-hub"), Allowed: false},
		}
		gomega.Expect(CalculateCost(changes, 10)).To(gomega.Equal(int64(2)))
	})

	ginkgo.It("should charge one token per company for a global change", func() {
		changes := []Change{
			{DataType: "email", Allowed: true},
		}
		gomega.Expect(CalculateCost(changes, 5)).To(gomega.Equal(int64(5)))
	})

	ginkgo.It("should sum mixed batches linearly", func() {
		changes := []Change{
			{DataType: "email", Allowed: true},
			{DataType: "location", Allowed: false},
			{DataType: "browsing-history", CompanyID: strPtr("tech-corp"), Allowed: true},
		}
		// 2 global changes x 3 companies + 1 company change
		gomega.Expect(CalculateCost(changes, 3)).To(gomega.Equal(int64(7)))
	})

	ginkgo.It("should make global changes free when no companies exist", func() {
		changes := []Change{
			{DataType: "email", Allowed: true},
		}
		gomega.Expect(CalculateCost(changes, 0)).To(gomega.BeZero())
	})

	ginkgo.It("should price an empty batch at zero", func() {
		gomega.Expect(CalculateCost(nil, 100)).To(gomega.BeZero())
	})
})

var _ = ginkgo.Describe("SynthesizeID", func() {
	ginkgo.It("should scope global preferences under the global prefix", func() {
		gomega.Expect(SynthesizeID(nil, "location")).To(gomega.Equal("global-location"))
	})

	ginkgo.It("should scope company preferences under the company id", func() {
		gomega.Expect(SynthesizeID(strPtr("tech-corp"), "location")).To(gomega.Equal("tech-corp-location"))
	})

	ginkgo.It("should slug multi-word data types", func() {
		gomega.Expect(SynthesizeID(nil, "Browsing History")).To(gomega.Equal("global-browsing-history"))
	})

	ginkgo.It("should be deterministic for the same pair", func() {
		a := SynthesizeID(strPtr("tech-corp"), "email")
		b := SynthesizeID(strPtr("tech-corp"), "email")
		gomega.Expect(a).To(gomega.Equal(b))
	})
})

var _ = ginkgo.Describe("RecordID", func() {
	ginkgo.It("should prefix the synthesized id with the owning user", func() {
		gomega.Expect(RecordID(42, nil, "location")).To(gomega.Equal("42/global-location"))
		gomega.Expect(RecordID(42, strPtr("tech-corp"), "location")).To(gomega.Equal("42/tech-corp-location"))
	})

	ginkgo.It("should keep different users' records distinct", func() {
		gomega.Expect(RecordID(1, nil, "email")).NotTo(gomega.Equal(RecordID(2, nil, "email")))
	})
})

var _ = ginkgo.Describe("CommitDTO", func() {
	ginkgo.It("should reject an empty change set", func() {
		dto := CommitDTO{}
		gomega.Expect(dto.Validate()).To(gomega.HaveOccurred())
	})

	ginkgo.It("should reject a change without a data type", func() {
		dto := CommitDTO{Changes: []ChangeDTO{{DataType: ""}}}
		gomega.Expect(dto.Validate()).To(gomega.HaveOccurred())
	})

	ginkgo.It("should reject an empty company id", func() {
		dto := CommitDTO{Changes: []ChangeDTO{{DataType: "email", CompanyID: strPtr("")}}}
		gomega.Expect(dto.Validate()).To(gomega.HaveOccurred())
	})

	ginkgo.It("should reject duplicate (data type, company) pairs", func() {
		dto := CommitDTO{Changes: []ChangeDTO{
			{DataType: "email", CompanyID: strPtr("tech-corp"), Allowed: true},
			{DataType: "email", CompanyID: strPtr("tech-corp"), Allowed: false},
		}}
		gomega.Expect(dto.Validate()).To(gomega.HaveOccurred())
	})

	ginkgo.It("should allow the same data type at different scopes", func() {
		dto := CommitDTO{Changes: []ChangeDTO{
			{DataType: "email", Allowed: true},
			{DataType: "email", CompanyID: strPtr("tech-corp"), Allowed: false},
		}}
		gomega.Expect(dto.Validate()).NotTo(gomega.HaveOccurred())
	})
})
