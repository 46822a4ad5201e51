package evaluation

import (
	"errors"
	"log/slog"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/asc-academy/evaluation-portal/internal"
	"github.com/asc-academy/evaluation-portal/internal/user"
)

// Mock evaluation repository for testing
type mockEvaluationRepository struct {
	evals         map[string]*Evaluation
	years         []int
	yearsSubjects []string
	returnError   bool
	errorToReturn error
}

func newMockEvaluationRepository() *mockEvaluationRepository {
	return &mockEvaluationRepository{evals: map[string]*Evaluation{}}
}

func (m *mockEvaluationRepository) GetByID(id string) (*Evaluation, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	if e, ok := m.evals[id]; ok {
		return e, nil
	}
	return nil, internal.ErrEvaluationNotFound
}

func (m *mockEvaluationRepository) GetByUserAndNumber(userID string, number int) (*Evaluation, error) {
	for _, e := range m.evals {
		if e.UserID == userID && e.EvaluationNumber == number {
			return e, nil
		}
	}
	return nil, internal.ErrEvaluationNotFound
}

func (m *mockEvaluationRepository) ListByUser(userID string) ([]*Evaluation, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	var out []*Evaluation
	for n := MinEvaluationNumber; n <= MaxEvaluationNumber; n++ {
		for _, e := range m.evals {
			if e.UserID == userID && e.EvaluationNumber == n {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func (m *mockEvaluationRepository) List(filter ListFilter, subjectIDs []string) ([]*Evaluation, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	allowed := map[string]bool{}
	for _, id := range subjectIDs {
		allowed[id] = true
	}
	var out []*Evaluation
	for _, e := range m.evals {
		if len(subjectIDs) > 0 && !allowed[e.UserID] {
			continue
		}
		if filter.EvaluationNumber != 0 && e.EvaluationNumber != filter.EvaluationNumber {
			continue
		}
		if filter.Year != 0 && e.EvaluationDate.Year() != filter.Year {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *mockEvaluationRepository) Create(e *Evaluation) error {
	if m.returnError {
		return m.errorToReturn
	}
	m.evals[e.ID] = e
	return nil
}

func (m *mockEvaluationRepository) Update(e *Evaluation) error {
	if m.returnError {
		return m.errorToReturn
	}
	m.evals[e.ID] = e
	return nil
}

func (m *mockEvaluationRepository) Delete(id string) error {
	if m.returnError {
		return m.errorToReturn
	}
	delete(m.evals, id)
	return nil
}

func (m *mockEvaluationRepository) DistinctYears(subjectIDs []string) ([]int, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	m.yearsSubjects = subjectIDs
	return m.years, nil
}

// Mock user directory capturing rollup writes
type mockUserDirectory struct {
	users        map[string]*user.User
	rollups      map[string]*float64
	rollupCalls  int
	rollupError  error
	membership   map[string][]string
	returnError  bool
	errorToThrow error
}

func newMockUserDirectory() *mockUserDirectory {
	deptID := "dept-1"
	return &mockUserDirectory{
		users: map[string]*user.User{
			"subject-1": {ID: "subject-1", Email: "subject@asc.az", FirstName: "Aysel", LastName: "Aliyeva", Role: internal.RoleUser, DepartmentID: &deptID},
			"admin-1":   {ID: "admin-1", Email: "admin@asc.az", Role: internal.RoleAdmin},
		},
		rollups:    map[string]*float64{},
		membership: map[string][]string{"dept-1": {"subject-1"}},
	}
}

func (m *mockUserDirectory) GetByID(id string) (*user.User, error) {
	if m.returnError {
		return nil, m.errorToThrow
	}
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, internal.ErrUserNotFound
}

func (m *mockUserDirectory) ListByIDs(ids []string) ([]*user.User, error) {
	if m.returnError {
		return nil, m.errorToThrow
	}
	var out []*user.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockUserDirectory) IDsByDepartment(departmentID string) ([]string, error) {
	if m.returnError {
		return nil, m.errorToThrow
	}
	return m.membership[departmentID], nil
}

func (m *mockUserDirectory) SetEvaluationAverage(userID string, avg *float64) error {
	m.rollupCalls++
	if m.rollupError != nil {
		return m.rollupError
	}
	m.rollups[userID] = avg
	return nil
}

var _ = ginkgo.Describe("EvaluationService", func() {
	var (
		service  *Service
		mockRepo *mockEvaluationRepository
		users    *mockUserDirectory
		admin    *internal.Identity
		subject  *internal.Identity
	)

	ginkgo.BeforeEach(func() {
		mockRepo = newMockEvaluationRepository()
		users = newMockUserDirectory()
		service = NewService(mockRepo, users, slog.Default())
		admin = &internal.Identity{ID: "admin-1", Email: "admin@asc.az", Role: internal.RoleAdmin}
		subject = &internal.Identity{ID: "subject-1", Email: "subject@asc.az", Role: internal.RoleUser}
	})

	createDTO := func(number, score int) CreateEvaluationDTO {
		return CreateEvaluationDTO{
			UserID:           "subject-1",
			EvaluationNumber: number,
			Criteria:         allScores(score),
		}
	}

	ginkgo.Describe("Create", func() {
		ginkgo.Context("when the payload is valid", func() {
			ginkgo.It("should derive the average before persisting", func() {
				// Given 7 tens and one 2: average 9.00
				dto := createDTO(1, 10)
				dto.Criteria.KomandaIleIslemeBacarigi = 2

				// When
				view, err := service.Create(admin, dto)

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(view.AverageScore).To(gomega.Equal(9.0))
			})

			ginkgo.It("should stamp the acting admin as evaluator", func() {
				// When
				view, err := service.Create(admin, createDTO(1, 7))

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(view.Evaluator).ToNot(gomega.BeNil())
				gomega.Expect(view.Evaluator.ID).To(gomega.Equal("admin-1"))
				gomega.Expect(view.User.ID).To(gomega.Equal("subject-1"))
			})

			ginkgo.It("should roll the subject's average up across rounds", func() {
				// Given rounds averaging 5.00 and 9.00
				_, err := service.Create(admin, createDTO(1, 5))
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				_, err = service.Create(admin, createDTO(2, 9))
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				// Then
				gomega.Expect(users.rollups["subject-1"]).ToNot(gomega.BeNil())
				gomega.Expect(*users.rollups["subject-1"]).To(gomega.Equal(7.0))
			})

			ginkgo.It("should swallow a rollup failure after the primary write", func() {
				// Given
				users.rollupError = errors.New("rollup write failed")

				// When
				view, err := service.Create(admin, createDTO(1, 7))

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(view).ToNot(gomega.BeNil())
				gomega.Expect(users.rollupCalls).To(gomega.Equal(1))
			})
		})

		ginkgo.Context("when the slot is already taken", func() {
			ginkgo.It("should return a duplicate error naming the slot", func() {
				// Given
				_, err := service.Create(admin, createDTO(2, 7))
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				// When
				view, err := service.Create(admin, createDTO(2, 8))

				// Then
				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(err.Error()).To(gomega.ContainSubstring("Evaluation #2 already exists for this user"))
				gomega.Expect(view).To(gomega.BeNil())
			})
		})

		ginkgo.Context("when the subject does not exist", func() {
			ginkgo.It("should return user not found", func() {
				// Given
				dto := createDTO(1, 7)
				dto.UserID = "ghost"

				// When
				view, err := service.Create(admin, dto)

				// Then
				gomega.Expect(err).To(gomega.Equal(internal.ErrUserNotFound))
				gomega.Expect(view).To(gomega.BeNil())
			})
		})

		ginkgo.Context("when validation fails", func() {
			ginkgo.It("should reject an out-of-range evaluation number", func() {
				// When
				view, err := service.Create(admin, createDTO(4, 7))

				// Then
				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(err.Error()).To(gomega.ContainSubstring("must be 1, 2 or 3"))
				gomega.Expect(view).To(gomega.BeNil())
			})

			ginkgo.It("should reject an out-of-range criterion score", func() {
				// Given
				dto := createDTO(1, 5)
				dto.Criteria.StreseDavamliliq = 0

				// When
				view, err := service.Create(admin, dto)

				// Then
				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(view).To(gomega.BeNil())
			})
		})
	})

	ginkgo.Describe("Update", func() {
		var existingID string

		ginkgo.BeforeEach(func() {
			view, err := service.Create(admin, createDTO(1, 5))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			existingID = view.ID
		})

		ginkgo.It("should recompute the average from the new criteria", func() {
			// When
			view, err := service.Update(existingID, UpdateEvaluationDTO{Criteria: allScores(9)})

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(view.AverageScore).To(gomega.Equal(9.0))
			gomega.Expect(*users.rollups["subject-1"]).To(gomega.Equal(9.0))
		})

		ginkgo.It("should return not found for an unknown id", func() {
			// When
			view, err := service.Update("ghost", UpdateEvaluationDTO{Criteria: allScores(9)})

			// Then
			gomega.Expect(err).To(gomega.Equal(internal.ErrEvaluationNotFound))
			gomega.Expect(view).To(gomega.BeNil())
		})
	})

	ginkgo.Describe("Delete", func() {
		ginkgo.It("should clear the rollup when no rounds remain", func() {
			// Given
			view, err := service.Create(admin, createDTO(1, 7))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(*users.rollups["subject-1"]).To(gomega.Equal(7.0))

			// When
			err = service.Delete(view.ID)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(users.rollups["subject-1"]).To(gomega.BeNil())
		})

		ginkgo.It("should recompute from the remaining rounds", func() {
			// Given rounds averaging 5.00 and 9.00
			first, err := service.Create(admin, createDTO(1, 5))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			_, err = service.Create(admin, createDTO(2, 9))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			// When
			err = service.Delete(first.ID)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(*users.rollups["subject-1"]).To(gomega.Equal(9.0))
		})

		ginkgo.It("should return not found for an unknown id", func() {
			gomega.Expect(service.Delete("ghost")).To(gomega.Equal(internal.ErrEvaluationNotFound))
		})
	})

	ginkgo.Describe("GetByID", func() {
		var existingID string

		ginkgo.BeforeEach(func() {
			view, err := service.Create(admin, createDTO(1, 7))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			existingID = view.ID
		})

		ginkgo.It("should allow the subject to read their own round", func() {
			view, err := service.GetByID(subject, existingID)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(view.ID).To(gomega.Equal(existingID))
		})

		ginkgo.It("should deny another non-admin user", func() {
			other := &internal.Identity{ID: "other", Role: internal.RoleUser}

			view, err := service.GetByID(other, existingID)
			gomega.Expect(err).To(gomega.HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.StatusCode).To(gomega.Equal(403))
			gomega.Expect(view).To(gomega.BeNil())
		})
	})

	ginkgo.Describe("ListByUser", func() {
		ginkgo.BeforeEach(func() {
			_, err := service.Create(admin, createDTO(2, 8))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			_, err = service.Create(admin, createDTO(1, 6))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("should return the subject's rounds ordered by number", func() {
			views, err := service.ListByUser(subject, "subject-1")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(views).To(gomega.HaveLen(2))
			gomega.Expect(views[0].EvaluationNumber).To(gomega.Equal(1))
			gomega.Expect(views[1].EvaluationNumber).To(gomega.Equal(2))
		})

		ginkgo.It("should deny a non-admin reading another user's rounds", func() {
			other := &internal.Identity{ID: "other", Role: internal.RoleUser}

			views, err := service.ListByUser(other, "subject-1")
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(views).To(gomega.BeNil())
		})
	})

	ginkgo.Describe("List", func() {
		ginkgo.It("should return no years without a department filter", func() {
			mockRepo.years = []int{2026, 2025}

			views, years, err := service.List(ListFilter{})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(views).To(gomega.BeEmpty())
			gomega.Expect(years).To(gomega.BeNil())
		})

		ginkgo.It("should scope the year hints to the department's members", func() {
			mockRepo.years = []int{2026, 2025}

			_, years, err := service.List(ListFilter{DepartmentID: "dept-1"})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(years).To(gomega.Equal([]int{2026, 2025}))
			gomega.Expect(mockRepo.yearsSubjects).To(gomega.Equal([]string{"subject-1"}))
		})

		ginkgo.It("should fall back to the current year when the department has no evaluations", func() {
			_, years, err := service.List(ListFilter{DepartmentID: "dept-1"})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(years).To(gomega.Equal([]int{time.Now().Year()}))
		})

		ginkgo.It("should short-circuit for a department with no members", func() {
			// Given an evaluation that would otherwise match
			_, err := service.Create(admin, createDTO(1, 7))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			// When
			views, years, err := service.List(ListFilter{DepartmentID: "dept-empty"})

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(views).To(gomega.BeEmpty())
			gomega.Expect(years).To(gomega.Equal([]int{time.Now().Year()}))
		})

		ginkgo.It("should narrow to the department's members", func() {
			// Given
			_, err := service.Create(admin, createDTO(1, 7))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			// When
			views, _, err := service.List(ListFilter{DepartmentID: "dept-1"})

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(views).To(gomega.HaveLen(1))
			gomega.Expect(views[0].User.ID).To(gomega.Equal("subject-1"))
		})

		ginkgo.It("should leave a deleted evaluator unresolved in the view", func() {
			// Given
			_, err := service.Create(admin, createDTO(1, 7))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			delete(users.users, "admin-1")

			// When
			views, _, err := service.List(ListFilter{})

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(views).To(gomega.HaveLen(1))
			gomega.Expect(views[0].Evaluator.Resolved).To(gomega.BeFalse())
			gomega.Expect(views[0].Evaluator.ID).To(gomega.Equal("admin-1"))
		})
	})
})
