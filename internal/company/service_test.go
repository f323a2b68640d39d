package company

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	companyDatamodel "github.com/datatrust/preference-management/internal/core/datamodel/company"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func TestCompany(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Company Module Suite")
}

type mockCompanyRepository struct {
	companies []*companyDatamodel.Company
	err       error
}

func (m *mockCompanyRepository) GetAll() ([]*companyDatamodel.Company, error) {
	return m.companies, m.err
}

func (m *mockCompanyRepository) GetByID(id string) (*companyDatamodel.Company, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, c := range m.companies {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockCompanyRepository) Count() (int64, error) {
	return int64(len(m.companies)), m.err
}

var _ = ginkgo.Describe("CompanyService", func() {
	var (
		service *Service
		repo    *mockCompanyRepository
	)

	ginkgo.BeforeEach(func() {
		repo = &mockCompanyRepository{
			companies: []*companyDatamodel.Company{
				{
					ID:       "tech-corp",
					Name:     "TechCorp",
					Industry: "technology",
					DataSharingPolicies: []companyDatamodel.DataSharingPolicy{
						{ID: "p1", CompanyID: "tech-corp", DataType: "email", Purpose: "notifications"},
						{ID: "p2", CompanyID: "tech-corp", DataType: "location", Purpose: "fraud detection"},
					},
				},
			},
		}
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		service = NewService(repo, lg)
	})

	ginkgo.Describe("GetCompanyByID", func() {
		ginkgo.It("should map the data model including its policies", func() {
			company, err := service.GetCompanyByID("tech-corp")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(company.Name).To(gomega.Equal("TechCorp"))
			gomega.Expect(company.DataSharingPolicies).To(gomega.HaveLen(2))
			gomega.Expect(company.DeclaredDataTypes()).To(gomega.Equal([]string{"email", "location"}))
		})

		ginkgo.It("should return ErrNotFound for an unknown id", func() {
			_, err := service.GetCompanyByID("ghost-corp")
			gomega.Expect(err).To(gomega.MatchError(ErrNotFound))
		})

		ginkgo.It("should propagate repository failures instead of reporting not found", func() {
			repo.err = errors.New("connection refused")

			_, err := service.GetCompanyByID("tech-corp")
			gomega.Expect(err).To(gomega.MatchError(repo.err))
			gomega.Expect(err).ToNot(gomega.MatchError(ErrNotFound))
		})
	})

	ginkgo.Describe("Declares", func() {
		ginkgo.It("should report declared data types only", func() {
			company, err := service.GetCompanyByID("tech-corp")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(company.Declares("email")).To(gomega.BeTrue())
			gomega.Expect(company.Declares("health-records")).To(gomega.BeFalse())
		})
	})

	ginkgo.Describe("CountCompanies", func() {
		ginkgo.It("should return the directory size", func() {
			count, err := service.CountCompanies()
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(count).To(gomega.Equal(int64(1)))
		})
	})
})
