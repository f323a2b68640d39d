package preference

import (
	"context"
	"errors"
	"io"
	"log/slog"

	companyDatamodel "github.com/datatrust/preference-management/internal/core/datamodel/company"
	preferenceDatamodel "github.com/datatrust/preference-management/internal/core/datamodel/preference"
	"github.com/datatrust/preference-management/internal/core/events"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

type mockRepository struct {
	prefs   map[string]*preferenceDatamodel.Preference
	balance int64
	listErr error
}

func newMockRepository(balance int64) *mockRepository {
	return &mockRepository{
		prefs:   make(map[string]*preferenceDatamodel.Preference),
		balance: balance,
	}
}

func (m *mockRepository) ListForUser(userID int64) ([]*preferenceDatamodel.Preference, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*preferenceDatamodel.Preference
	for _, p := range m.prefs {
		if p.UserID == userID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *mockRepository) Upsert(pref *preferenceDatamodel.Preference) error {
	m.prefs[pref.ID] = pref
	return nil
}

func (m *mockRepository) UpsertAll(prefs []*preferenceDatamodel.Preference) error {
	for _, p := range prefs {
		m.prefs[p.ID] = p
	}
	return nil
}

func (m *mockRepository) CommitChanges(userID int64, cost int64, description string, prefs []*preferenceDatamodel.Preference) (int64, error) {
	if m.balance < cost {
		return 0, ErrInsufficientTokens
	}
	m.balance -= cost
	for _, p := range prefs {
		m.prefs[p.ID] = p
	}
	return m.balance, nil
}

type mockCompanyDirectory struct {
	companies map[string]*companyDatamodel.Company
	err       error
}

func (m *mockCompanyDirectory) GetByID(id string) (*companyDatamodel.Company, error) {
	if m.err != nil {
		return nil, m.err
	}
	if c, ok := m.companies[id]; ok {
		return c, nil
	}
	return nil, ErrCompanyNotFound
}

func (m *mockCompanyDirectory) Count() (int64, error) {
	return int64(len(m.companies)), nil
}

type mockDataTypeRegistry struct {
	known []string
	err   error
}

func (m *mockDataTypeRegistry) IsKnown(name string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for _, n := range m.known {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockDataTypeRegistry) ListActiveNames() ([]string, error) {
	return m.known, nil
}

type mockEventPublisher struct {
	published []events.Event
}

func (m *mockEventPublisher) Publish(ctx context.Context, event events.Event) error {
	m.published = append(m.published, event)
	return nil
}

func (m *mockEventPublisher) countByType(eventType string) int {
	count := 0
	for _, e := range m.published {
		if e.EventType() == eventType {
			count++
		}
	}
	return count
}

func companyWithPolicies(id, name string, dataTypes ...string) *companyDatamodel.Company {
	policies := make([]companyDatamodel.DataSharingPolicy, len(dataTypes))
	for i, dt := range dataTypes {
		policies[i] = companyDatamodel.DataSharingPolicy{
			ID:        id + "-policy-" + dt,
			CompanyID: id,
			DataType:  dt,
			Position:  i,
		}
	}
	return &companyDatamodel.Company{
		ID:                  id,
		Name:                name,
		DataSharingPolicies: policies,
	}
}

var _ = ginkgo.Describe("PreferenceService", func() {
	var (
		service   *Service
		repo      *mockRepository
		directory *mockCompanyDirectory
		registry  *mockDataTypeRegistry
		publisher *mockEventPublisher
		ctx       context.Context
	)

	const userID int64 = 1

	ginkgo.BeforeEach(func() {
		repo = newMockRepository(100)
		directory = &mockCompanyDirectory{companies: map[string]*companyDatamodel.Company{
			"tech-corp":   companyWithPolicies("tech-corp", "TechCorp", "email", "location", "browsing-history"),
			"finance-hub": companyWithPolicies("finance-hub", "FinanceHub", "email", "purchase-history"),
			"health-plus": companyWithPolicies("health-plus", "HealthPlus", "email", "location"),
		}}
		registry = &mockDataTypeRegistry{known: []string{"email", "location", "browsing-history", "purchase-history"}}
		publisher = &mockEventPublisher{}
		ctx = context.Background()

		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		service = NewService(repo, directory, registry, publisher, lg)
	})

	ginkgo.Describe("EstimateCost", func() {
		ginkgo.It("should price company changes at one token each", func() {
			estimate, err := service.EstimateCost(userID, []Change{
				{DataType: "email", CompanyID: strPtr("tech-corp"), Allowed: true},
				{DataType: "location", CompanyID: strPtr("health-plus"), Allowed: false},
			})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(estimate.Cost).To(gomega.Equal(int64(2)))
			gomega.Expect(estimate.CompanyCount).To(gomega.Equal(int64(3)))
			gomega.Expect(estimate.ChangeCount).To(gomega.Equal(2))
		})

		ginkgo.It("should multiply global changes by the company count", func() {
			estimate, err := service.EstimateCost(userID, []Change{
				{DataType: "email", Allowed: false},
				{DataType: "location", Allowed: false},
				{DataType: "browsing-history", CompanyID: strPtr("tech-corp"), Allowed: true},
			})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(estimate.Cost).To(gomega.Equal(int64(7)))
		})

		ginkgo.It("should reject an empty batch", func() {
			_, err := service.EstimateCost(userID, nil)
			gomega.Expect(err).To(gomega.MatchError(ErrEmptyChangeSet))
		})

		ginkgo.It("should reject unknown data types", func() {
			_, err := service.EstimateCost(userID, []Change{
				{DataType: "shoe-size", Allowed: true},
			})
			gomega.Expect(err).To(gomega.MatchError(ErrUnknownDataType))
		})

		ginkgo.It("should reject unknown companies", func() {
			_, err := service.EstimateCost(userID, []Change{
				{DataType: "email", CompanyID: strPtr("ghost-corp"), Allowed: true},
			})
			gomega.Expect(err).To(gomega.MatchError(ErrCompanyNotFound))
		})
	})

	ginkgo.Describe("CommitChanges", func() {
		ginkgo.Context("with sufficient balance", func() {
			ginkgo.It("should persist the batch and deduct the cost", func() {
				result, err := service.CommitChanges(ctx, userID, []Change{
					{DataType: "email", CompanyID: strPtr("tech-corp"), Allowed: true},
					{DataType: "location", Allowed: true},
				})
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(result.Success).To(gomega.BeTrue())
				// 1 company change + 1 global change x 3 companies
				gomega.Expect(result.Cost).To(gomega.Equal(int64(4)))
				gomega.Expect(result.BalanceAfter).To(gomega.Equal(int64(96)))
				gomega.Expect(repo.prefs).To(gomega.HaveKey("1/tech-corp-email"))
				gomega.Expect(repo.prefs).To(gomega.HaveKey("1/global-location"))
			})

			ginkgo.It("should publish one changed event per change plus a committed event", func() {
				_, err := service.CommitChanges(ctx, userID, []Change{
					{DataType: "email", CompanyID: strPtr("tech-corp"), Allowed: true},
					{DataType: "location", Allowed: true},
				})
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(publisher.countByType(events.EventTypePreferenceChanged)).To(gomega.Equal(2))
				gomega.Expect(publisher.countByType(events.EventTypePreferencesCommitted)).To(gomega.Equal(1))
			})

			ginkgo.It("should overwrite rather than duplicate on re-commit", func() {
				_, err := service.CommitChanges(ctx, userID, []Change{
					{DataType: "email", CompanyID: strPtr("tech-corp"), Allowed: true},
				})
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				_, err = service.CommitChanges(ctx, userID, []Change{
					{DataType: "email", CompanyID: strPtr("tech-corp"), Allowed: false},
				})
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				gomega.Expect(repo.prefs).To(gomega.HaveLen(1))
				gomega.Expect(repo.prefs["1/tech-corp-email"].Allowed).To(gomega.BeFalse())
			})
		})

		ginkgo.Context("with insufficient balance", func() {
			ginkgo.BeforeEach(func() {
				repo.balance = 5
			})

			ginkgo.It("should reject the batch without persisting anything", func() {
				result, err := service.CommitChanges(ctx, userID, []Change{
					{DataType: "email", Allowed: false},
					{DataType: "location", Allowed: false},
					{DataType: "browsing-history", CompanyID: strPtr("tech-corp"), Allowed: true},
				})
				gomega.Expect(err).To(gomega.MatchError(ErrInsufficientTokens))
				gomega.Expect(result.Success).To(gomega.BeFalse())
				gomega.Expect(result.Cost).To(gomega.Equal(int64(7)))
				gomega.Expect(repo.prefs).To(gomega.BeEmpty())
				gomega.Expect(repo.balance).To(gomega.Equal(int64(5)))
			})

			ginkgo.It("should publish no events on a failed commit", func() {
				_, err := service.CommitChanges(ctx, userID, []Change{
					{DataType: "email", Allowed: false},
					{DataType: "location", Allowed: false},
				})
				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(publisher.published).To(gomega.BeEmpty())
			})
		})

		ginkgo.It("should reject an empty batch before touching the balance", func() {
			_, err := service.CommitChanges(ctx, userID, nil)
			gomega.Expect(err).To(gomega.MatchError(ErrEmptyChangeSet))
		})

		ginkgo.Context("when the data type registry is unavailable", func() {
			ginkgo.BeforeEach(func() {
				registry.err = errors.New("connection refused")
			})

			ginkgo.It("should surface the lookup failure rather than rejecting the data type", func() {
				_, err := service.CommitChanges(ctx, userID, []Change{
					{DataType: "email", Allowed: true},
				})
				gomega.Expect(err).To(gomega.MatchError(registry.err))
				gomega.Expect(err).ToNot(gomega.MatchError(ErrUnknownDataType))
				gomega.Expect(repo.prefs).To(gomega.BeEmpty())
				gomega.Expect(repo.balance).To(gomega.Equal(int64(100)))
				gomega.Expect(publisher.published).To(gomega.BeEmpty())
			})
		})
	})

	ginkgo.Describe("ClonePreferences", func() {
		ginkgo.BeforeEach(func() {
			// tech-corp allows email explicitly; location is allowed globally.
			repo.prefs["1/tech-corp-email"] = &preferenceDatamodel.Preference{
				ID: "1/tech-corp-email", UserID: userID, DataType: "email",
				CompanyID: strPtr("tech-corp"), Allowed: true,
			}
			repo.prefs["1/global-location"] = &preferenceDatamodel.Preference{
				ID: "1/global-location", UserID: userID, DataType: "location", Allowed: true,
			}
		})

		ginkgo.It("should copy source values restricted to the target's declared types", func() {
			count, err := service.ClonePreferences(ctx, userID, "tech-corp", "health-plus")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(count).To(gomega.Equal(2))

			gomega.Expect(repo.prefs["1/health-plus-email"].Allowed).To(gomega.BeTrue())
			gomega.Expect(repo.prefs["1/health-plus-location"].Allowed).To(gomega.BeTrue())
		})

		ginkgo.It("should fall back to global then deny for types the source never set", func() {
			count, err := service.ClonePreferences(ctx, userID, "finance-hub", "tech-corp")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(count).To(gomega.Equal(3))

			// finance-hub has no email record of its own, global has none either
			gomega.Expect(repo.prefs["1/tech-corp-email"].Allowed).To(gomega.BeFalse())
			// location falls back to the global allow
			gomega.Expect(repo.prefs["1/tech-corp-location"].Allowed).To(gomega.BeTrue())
			// browsing-history exists nowhere, default deny
			gomega.Expect(repo.prefs["1/tech-corp-browsing-history"].Allowed).To(gomega.BeFalse())
		})

		ginkgo.It("should clone the global set when the source is global", func() {
			count, err := service.ClonePreferences(ctx, userID, SourceGlobal, "health-plus")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(count).To(gomega.Equal(2))
			gomega.Expect(repo.prefs["1/health-plus-location"].Allowed).To(gomega.BeTrue())
			gomega.Expect(repo.prefs["1/health-plus-email"].Allowed).To(gomega.BeFalse())
		})

		ginkgo.It("should reject cloning a company onto itself", func() {
			_, err := service.ClonePreferences(ctx, userID, "tech-corp", "tech-corp")
			gomega.Expect(err).To(gomega.MatchError(ErrSelfClone))
		})

		ginkgo.It("should reject an unknown target company", func() {
			_, err := service.ClonePreferences(ctx, userID, "tech-corp", "ghost-corp")
			gomega.Expect(err).To(gomega.MatchError(ErrCompanyNotFound))
		})

		ginkgo.It("should reject an unknown source company", func() {
			_, err := service.ClonePreferences(ctx, userID, "ghost-corp", "tech-corp")
			gomega.Expect(err).To(gomega.MatchError(ErrCompanyNotFound))
		})

		ginkgo.It("should be a no-op when the target declares no data types", func() {
			directory.companies["empty-corp"] = companyWithPolicies("empty-corp", "EmptyCorp")

			count, err := service.ClonePreferences(ctx, userID, "tech-corp", "empty-corp")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(count).To(gomega.BeZero())
			gomega.Expect(publisher.published).To(gomega.BeEmpty())
		})

		ginkgo.It("should publish a cloned event", func() {
			_, err := service.ClonePreferences(ctx, userID, "tech-corp", "health-plus")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(publisher.countByType(events.EventTypePreferencesCloned)).To(gomega.Equal(1))
		})
	})

	ginkgo.Describe("ResolvePreference", func() {
		ginkgo.BeforeEach(func() {
			repo.prefs["1/global-email"] = &preferenceDatamodel.Preference{
				ID: "1/global-email", UserID: userID, DataType: "email", Allowed: true,
			}
		})

		ginkgo.It("should resolve through the stored records", func() {
			result, err := service.ResolvePreference(userID, "email", strPtr("tech-corp"))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(result.Allowed).To(gomega.BeTrue())
			gomega.Expect(result.IsGlobal).To(gomega.BeTrue())
		})

		ginkgo.It("should reject unknown data types", func() {
			_, err := service.ResolvePreference(userID, "shoe-size", nil)
			gomega.Expect(err).To(gomega.MatchError(ErrUnknownDataType))
		})
	})

	ginkgo.Describe("GetGlobalPreferences", func() {
		ginkgo.It("should list every active type with default-deny placeholders", func() {
			repo.prefs["1/global-email"] = &preferenceDatamodel.Preference{
				ID: "1/global-email", UserID: userID, DataType: "email", Allowed: true,
			}

			prefs, err := service.GetGlobalPreferences(userID)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(prefs).To(gomega.HaveLen(4))

			byType := make(map[string]*Preference)
			for _, p := range prefs {
				byType[p.DataType] = p
			}
			gomega.Expect(byType["email"].Allowed).To(gomega.BeTrue())
			gomega.Expect(byType["location"].Allowed).To(gomega.BeFalse())
			gomega.Expect(byType["location"].ID).To(gomega.Equal("1/global-location"))
		})
	})

	ginkgo.Describe("GetCompanyPreferences", func() {
		ginkgo.It("should resolve each declared type for the company", func() {
			repo.prefs["1/tech-corp-email"] = &preferenceDatamodel.Preference{
				ID: "1/tech-corp-email", UserID: userID, DataType: "email",
				CompanyID: strPtr("tech-corp"), Allowed: true,
			}

			prefs, err := service.GetCompanyPreferences(userID, "tech-corp")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(prefs).To(gomega.HaveLen(3))
			gomega.Expect(prefs[0].DataType).To(gomega.Equal("email"))
			gomega.Expect(prefs[0].Allowed).To(gomega.BeTrue())
			gomega.Expect(prefs[0].IsGlobal).To(gomega.BeFalse())
		})

		ginkgo.It("should reject an unknown company", func() {
			_, err := service.GetCompanyPreferences(userID, "ghost-corp")
			gomega.Expect(err).To(gomega.MatchError(ErrCompanyNotFound))
		})

		ginkgo.It("should surface directory failures instead of reporting not found", func() {
			directory.err = errors.New("connection refused")

			_, err := service.GetCompanyPreferences(userID, "tech-corp")
			gomega.Expect(err).To(gomega.MatchError(directory.err))
			gomega.Expect(err).ToNot(gomega.MatchError(ErrCompanyNotFound))
		})
	})
})
