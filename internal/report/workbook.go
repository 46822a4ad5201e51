package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/asc-academy/evaluation-portal/internal/evaluation"
	"github.com/xuri/excelize/v2"
)

// UnresolvedDepartmentLabel names the sheet for subjects whose department
// record no longer exists.
const UnresolvedDepartmentLabel = "Unknown department"

// Row is one subject's scored round as it appears in the export.
type Row struct {
	FullName string
	Email    string
	Average  float64
	Scores   [8]int
	Date     time.Time
}

// DepartmentGroup holds one department's rows bucketed by evaluation number.
// Bucket index is evaluationNumber-1; row order within a bucket is preserved
// as given.
type DepartmentGroup struct {
	Name    string
	Buckets [evaluation.MaxEvaluationNumber][]Row
}

// BuildDepartmentWorkbook renders one sheet per department group, each sheet
// holding a section per evaluation number. Empty buckets emit nothing. The
// transformation is pure: it never touches storage.
func BuildDepartmentWorkbook(groups []DepartmentGroup) (*excelize.File, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	used := make(map[string]bool)
	for _, group := range groups {
		sheet := uniqueSheetName(SanitizeSheetName(group.Name), used)
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("create sheet %q: %w", sheet, err)
		}
		if err := writeGroup(f, sheet, group, headerStyle); err != nil {
			return nil, err
		}
	}

	// The implicit default sheet only survives when there is nothing to export.
	if len(groups) > 0 {
		f.DeleteSheet("Sheet1")
		if idx, err := f.GetSheetIndex(SanitizeSheetName(groups[0].Name)); err == nil && idx >= 0 {
			f.SetActiveSheet(idx)
		}
	}
	return f, nil
}

func writeGroup(f *excelize.File, sheet string, group DepartmentGroup, headerStyle int) error {
	labels := evaluation.CriterionLabels()
	lastCol := colName(3 + len(labels) + 1)

	f.SetColWidth(sheet, "A", "A", 28)
	f.SetColWidth(sheet, "B", "B", 32)
	f.SetColWidth(sheet, lastCol, lastCol, 14)

	row := 1
	for i, bucket := range group.Buckets {
		if len(bucket) == 0 {
			continue
		}

		title := fmt.Sprintf("Evaluation #%d", i+1)
		f.SetCellValue(sheet, cell("A", row), title)
		f.MergeCell(sheet, cell("A", row), cell(lastCol, row))
		f.SetCellStyle(sheet, cell("A", row), cell(lastCol, row), headerStyle)
		row++

		f.SetCellValue(sheet, cell("A", row), "Full name")
		f.SetCellValue(sheet, cell("B", row), "Email")
		f.SetCellValue(sheet, cell("C", row), "Average")
		for j, label := range labels {
			f.SetCellValue(sheet, cell(colName(3+j), row), label)
		}
		f.SetCellValue(sheet, cell(lastCol, row), "Date")
		row++

		for _, r := range bucket {
			f.SetCellValue(sheet, cell("A", row), r.FullName)
			f.SetCellValue(sheet, cell("B", row), r.Email)
			f.SetCellValue(sheet, cell("C", row), r.Average)
			for j, score := range r.Scores {
				f.SetCellValue(sheet, cell(colName(3+j), row), score)
			}
			f.SetCellValue(sheet, cell(lastCol, row), r.Date.Format("2006-01-02"))
			row++
		}

		// blank row between sections
		row++
	}
	return nil
}

// SanitizeSheetName maps an arbitrary department name onto Excel's sheet
// naming rules: the characters : \ / ? * [ ] are forbidden and names cap at
// 31 characters.
func SanitizeSheetName(name string) string {
	replacer := strings.NewReplacer(":", " ", "\\", " ", "/", " ", "?", " ", "*", " ", "[", " ", "]", " ")
	clean := strings.TrimSpace(replacer.Replace(name))
	if clean == "" {
		clean = UnresolvedDepartmentLabel
	}
	runes := []rune(clean)
	if len(runes) > 31 {
		clean = string(runes[:31])
	}
	return clean
}

func uniqueSheetName(name string, used map[string]bool) string {
	key := strings.ToLower(name)
	if !used[key] {
		used[key] = true
		return name
	}
	for i := 2; ; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		runes := []rune(name)
		if len(runes)+len(suffix) > 31 {
			runes = runes[:31-len(suffix)]
		}
		candidate := string(runes) + suffix
		key = strings.ToLower(candidate)
		if !used[key] {
			used[key] = true
			return candidate
		}
	}
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
