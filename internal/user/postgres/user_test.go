package postgres_test

import (
	"testing"
	"time"

	"github.com/asc-academy/evaluation-portal/internal"
	"github.com/asc-academy/evaluation-portal/internal/user"
	userPostgres "github.com/asc-academy/evaluation-portal/internal/user/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestUserPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Postgres Suite")
}

var _ = Describe("User Repository", func() {
	var (
		db   *gorm.DB
		repo *userPostgres.UserRepository
	)

	newUser := func(id, email string, deptID *string, createdAt time.Time) *user.User {
		return &user.User{
			ID:           id,
			Email:        email,
			PasswordHash: "hash",
			Role:         internal.RoleUser,
			DepartmentID: deptID,
			CreatedAt:    createdAt,
			UpdatedAt:    createdAt,
		}
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&user.User{})
		Expect(err).NotTo(HaveOccurred())

		repo = userPostgres.NewUserRepository(db)
	})

	Describe("GetByID", func() {
		It("should return the domain not-found error for unknown ids", func() {
			_, err := repo.GetByID("ghost")
			Expect(err).To(Equal(internal.ErrUserNotFound))
		})

		It("should load a stored account", func() {
			Expect(db.Create(newUser("u1", "a@asc.az", nil, time.Now())).Error).To(Succeed())

			u, err := repo.GetByID("u1")
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Email).To(Equal("a@asc.az"))
		})
	})

	Describe("List", func() {
		deptA := "dept-a"
		deptB := "dept-b"

		BeforeEach(func() {
			Expect(db.Create(newUser("u1", "a@asc.az", &deptA, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))).Error).To(Succeed())
			Expect(db.Create(newUser("u2", "b@asc.az", &deptA, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))).Error).To(Succeed())
			Expect(db.Create(newUser("u3", "c@asc.az", &deptB, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))).Error).To(Succeed())
		})

		It("should return everyone without filters, oldest first", func() {
			users, err := repo.List(user.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(3))
			Expect(users[0].ID).To(Equal("u1"))
		})

		It("should filter by department", func() {
			users, err := repo.List(user.ListFilter{DepartmentID: deptA})
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(2))
		})

		It("should filter by creation year", func() {
			users, err := repo.List(user.ListFilter{Year: 2026})
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(2))
		})

		It("should combine department and year", func() {
			users, err := repo.List(user.ListFilter{DepartmentID: deptA, Year: 2026})
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(1))
			Expect(users[0].ID).To(Equal("u2"))
		})
	})

	Describe("ListByIDs", func() {
		It("should return only the matching accounts", func() {
			Expect(db.Create(newUser("u1", "a@asc.az", nil, time.Now())).Error).To(Succeed())
			Expect(db.Create(newUser("u2", "b@asc.az", nil, time.Now())).Error).To(Succeed())

			users, err := repo.ListByIDs([]string{"u2", "ghost"})
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(1))
			Expect(users[0].ID).To(Equal("u2"))
		})

		It("should return nothing for an empty id list", func() {
			users, err := repo.ListByIDs(nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(BeEmpty())
		})
	})

	Describe("IDsByDepartment", func() {
		It("should pluck only the member ids", func() {
			deptA := "dept-a"
			Expect(db.Create(newUser("u1", "a@asc.az", &deptA, time.Now())).Error).To(Succeed())
			Expect(db.Create(newUser("u2", "b@asc.az", nil, time.Now())).Error).To(Succeed())

			ids, err := repo.IDsByDepartment(deptA)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(Equal([]string{"u1"}))
		})
	})

	Describe("SetEvaluationAverage", func() {
		BeforeEach(func() {
			Expect(db.Create(newUser("u1", "a@asc.az", nil, time.Now())).Error).To(Succeed())
		})

		It("should store the rollup value", func() {
			avg := 7.25
			Expect(repo.SetEvaluationAverage("u1", &avg)).To(Succeed())

			u, err := repo.GetByID("u1")
			Expect(err).NotTo(HaveOccurred())
			Expect(u.EvaluationAverageScore).NotTo(BeNil())
			Expect(*u.EvaluationAverageScore).To(Equal(7.25))
		})

		It("should clear the rollup with nil", func() {
			avg := 7.25
			Expect(repo.SetEvaluationAverage("u1", &avg)).To(Succeed())

			Expect(repo.SetEvaluationAverage("u1", nil)).To(Succeed())

			u, err := repo.GetByID("u1")
			Expect(err).NotTo(HaveOccurred())
			Expect(u.EvaluationAverageScore).To(BeNil())
		})
	})

	Describe("Unique email constraint", func() {
		It("should surface a duplicate key error", func() {
			Expect(db.Create(newUser("u1", "same@asc.az", nil, time.Now())).Error).To(Succeed())

			err := db.Create(newUser("u2", "same@asc.az", nil, time.Now())).Error
			Expect(err).To(HaveOccurred())
			Expect(internal.IsDuplicateKey(err)).To(BeTrue())
		})
	})

	Describe("Delete", func() {
		It("should remove the account", func() {
			Expect(db.Create(newUser("u1", "a@asc.az", nil, time.Now())).Error).To(Succeed())

			Expect(repo.Delete("u1")).To(Succeed())

			_, err := repo.GetByID("u1")
			Expect(err).To(Equal(internal.ErrUserNotFound))
		})
	})
})
