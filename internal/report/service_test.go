package report

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"

	"github.com/asc-academy/evaluation-portal/internal/department"
	"github.com/asc-academy/evaluation-portal/internal/evaluation"
	"github.com/asc-academy/evaluation-portal/internal/user"
)

type mockEvaluationSource struct {
	evals      []*evaluation.Evaluation
	lastFilter evaluation.ListFilter
	lastIDs    []string
}

func (m *mockEvaluationSource) List(filter evaluation.ListFilter, subjectIDs []string) ([]*evaluation.Evaluation, error) {
	m.lastFilter = filter
	m.lastIDs = subjectIDs
	if len(subjectIDs) == 0 {
		return m.evals, nil
	}
	allowed := make(map[string]bool, len(subjectIDs))
	for _, id := range subjectIDs {
		allowed[id] = true
	}
	var out []*evaluation.Evaluation
	for _, e := range m.evals {
		if allowed[e.UserID] {
			out = append(out, e)
		}
	}
	return out, nil
}

type mockSubjectDirectory struct {
	users map[string]*user.User
}

func (m *mockSubjectDirectory) ListByIDs(ids []string) ([]*user.User, error) {
	var out []*user.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockSubjectDirectory) IDsByDepartment(departmentID string) ([]string, error) {
	var ids []string
	for _, u := range m.users {
		if u.DepartmentID != nil && *u.DepartmentID == departmentID {
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}

type mockDeptDirectory struct {
	departments []*department.Department
}

func (m *mockDeptDirectory) GetAll() ([]*department.Department, error) {
	return m.departments, nil
}

var _ = ginkgo.Describe("ReportService", func() {
	var (
		service  *Service
		source   *mockEvaluationSource
		subjects *mockSubjectDirectory
	)

	eval := func(id, userID string, number int) *evaluation.Evaluation {
		c := evaluation.Criteria{
			Davamiyyet: 8, IsguzarKeyfiyetler: 8, StreseDavamliliq: 8, AscImici: 8,
			QavramaMenimseme: 8, IxtisasBiliyi: 8, MuhendisEtikasi: 8, KomandaIleIslemeBacarigi: 8,
		}
		return &evaluation.Evaluation{
			ID:               id,
			UserID:           userID,
			EvaluationNumber: number,
			EvaluationDate:   time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC),
			Criteria:         c,
			AverageScore:     c.Average(),
		}
	}

	ginkgo.BeforeEach(func() {
		dept1 := "dept-1"
		deptGone := "dept-gone"
		subjects = &mockSubjectDirectory{
			users: map[string]*user.User{
				"u1": {ID: "u1", Email: "aysel@asc.az", FirstName: "Aysel", LastName: "Aliyeva", DepartmentID: &dept1},
				"u2": {ID: "u2", Email: "rustam@asc.az", FirstName: "Rustam", DepartmentID: &deptGone},
				"u3": {ID: "u3", Email: "admin@asc.az", FirstName: "Admin"},
			},
		}
		source = &mockEvaluationSource{
			evals: []*evaluation.Evaluation{
				eval("e1", "u1", 1),
				eval("e2", "u1", 2),
				eval("e3", "u2", 1),
				eval("e4", "u3", 1),
			},
		}
		depts := &mockDeptDirectory{
			departments: []*department.Department{{ID: "dept-1", Name: "Elektrik"}},
		}
		service = NewService(source, subjects, depts, slog.Default())
	})

	openWorkbook := func(filter ExportFilter) (*excelize.File, string) {
		buf, filename, err := service.Export(filter)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		f, err := excelize.OpenReader(buf)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		ginkgo.DeferCleanup(f.Close)
		return f, filename
	}

	ginkgo.It("should group sheets by department and skip subjects without one", func() {
		f, _ := openWorkbook(ExportFilter{})

		sheets := f.GetSheetList()
		gomega.Expect(sheets).To(gomega.ContainElement("Elektrik"))
		gomega.Expect(sheets).To(gomega.ContainElement(UnresolvedDepartmentLabel))
		// u3 has no department and must not surface anywhere
		for _, sheet := range sheets {
			rows, err := f.GetRows(sheet)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			for _, row := range rows {
				gomega.Expect(row).ToNot(gomega.ContainElement("admin@asc.az"))
			}
		}
	})

	ginkgo.It("should bucket a subject's rounds into separate sections", func() {
		f, _ := openWorkbook(ExportFilter{})

		rows, err := f.GetRows("Elektrik")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		var titles []string
		for _, row := range rows {
			if len(row) > 0 && row[0] != "" && row[0] != "Full name" && row[0] != "Aysel Aliyeva" {
				titles = append(titles, row[0])
			}
		}
		gomega.Expect(titles).To(gomega.Equal([]string{"Evaluation #1", "Evaluation #2"}))
	})

	ginkgo.It("should place unknown departments on the placeholder sheet", func() {
		f, _ := openWorkbook(ExportFilter{})

		rows, err := f.GetRows(UnresolvedDepartmentLabel)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(rows[2]).To(gomega.ContainElement("rustam@asc.az"))
	})

	ginkgo.It("should narrow the export to one department's members", func() {
		f, _ := openWorkbook(ExportFilter{DepartmentID: "dept-1"})

		gomega.Expect(source.lastIDs).To(gomega.ConsistOf("u1"))
		gomega.Expect(f.GetSheetList()).To(gomega.Equal([]string{"Elektrik"}))
	})

	ginkgo.It("should return an empty workbook for a department with no members", func() {
		f, _ := openWorkbook(ExportFilter{DepartmentID: "dept-empty"})

		gomega.Expect(f.GetSheetList()).To(gomega.Equal([]string{"Sheet1"}))
	})

	ginkgo.It("should pass the year filter through to the store", func() {
		_, _ = openWorkbook(ExportFilter{Year: 2026})

		gomega.Expect(source.lastFilter.Year).To(gomega.Equal(2026))
	})

	ginkgo.It("should date-stamp the filename", func() {
		_, filename := openWorkbook(ExportFilter{})

		expected := fmt.Sprintf("evaluations_%s.xlsx", time.Now().Format("2006-01-02"))
		gomega.Expect(filename).To(gomega.Equal(expected))
	})
})
