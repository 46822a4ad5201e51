package evaluation

import (
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	MinEvaluationNumber = 1
	MaxEvaluationNumber = 3

	minScore = 1
	maxScore = 10
)

// Criteria are the eight scored dimensions of an assessment round, each in
// [1,10]. Field order is the entity definition order and also the column
// order of the Excel export.
type Criteria struct {
	Davamiyyet               int `json:"davamiyyet" gorm:"column:davamiyyet;not null"`
	IsguzarKeyfiyetler       int `json:"isGuzarKeyfiyyetler" gorm:"column:isguzar_keyfiyetler;not null"`
	StreseDavamliliq         int `json:"streseDavamliliq" gorm:"column:strese_davamliliq;not null"`
	AscImici                 int `json:"ascImici" gorm:"column:asc_imici;not null"`
	QavramaMenimseme         int `json:"qavramaMenimseme" gorm:"column:qavrama_menimseme;not null"`
	IxtisasBiliyi            int `json:"ixtisasBiliyi" gorm:"column:ixtisas_biliyi;not null"`
	MuhendisEtikasi          int `json:"muhendisEtikasi" gorm:"column:muhendis_etikasi;not null"`
	KomandaIleIslemeBacarigi int `json:"komandaIleIslemeBacarigi" gorm:"column:komanda_ile_isleme_bacarigi;not null"`
}

// criterionLabels pairs each score with its display label, in entity order.
var criterionLabels = []string{
	"Davamiyyet",
	"İşgüzar",
	"Stres",
	"ASC",
	"Qavrama",
	"İxtisas",
	"Etika",
	"Komanda",
}

// CriterionLabels returns the display labels in entity-definition order.
func CriterionLabels() []string {
	labels := make([]string, len(criterionLabels))
	copy(labels, criterionLabels)
	return labels
}

// Scores returns the eight values in entity-definition order.
func (c Criteria) Scores() [8]int {
	return [8]int{
		c.Davamiyyet,
		c.IsguzarKeyfiyetler,
		c.StreseDavamliliq,
		c.AscImici,
		c.QavramaMenimseme,
		c.IxtisasBiliyi,
		c.MuhendisEtikasi,
		c.KomandaIleIslemeBacarigi,
	}
}

func (c Criteria) Validate() error {
	for i, score := range c.Scores() {
		if score < minScore || score > maxScore {
			return fmt.Errorf("%s score must be between %d and %d", criterionLabels[i], minScore, maxScore)
		}
	}
	return nil
}

// Average is the arithmetic mean of the eight scores rounded to two decimals
// (half up). The write path always calls this before persisting; a
// client-supplied average never survives.
func (c Criteria) Average() float64 {
	sum := 0
	for _, score := range c.Scores() {
		sum += score
	}
	return Round2(float64(sum) / 8)
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Evaluation is one scored assessment round for a subject user. The
// (UserID, EvaluationNumber) pair is unique: one record per cycle slot.
type Evaluation struct {
	ID               string    `json:"id" gorm:"primaryKey;column:id"`
	UserID           string    `json:"userId" gorm:"column:user_id;not null;uniqueIndex:idx_user_eval_number"`
	EvaluationNumber int       `json:"evaluationNumber" gorm:"column:evaluation_number;not null;uniqueIndex:idx_user_eval_number"`
	EvaluatedBy      string    `json:"evaluatorId" gorm:"column:evaluated_by;not null"`
	EvaluationDate   time.Time `json:"evaluationDate" gorm:"column:evaluation_date;not null"`
	Criteria         Criteria  `json:"criteria" gorm:"embedded"`
	AverageScore     float64   `json:"averageScore" gorm:"column:average_score;not null"`
	Comments         string    `json:"comments,omitempty" gorm:"column:comments"`
	CreatedAt        time.Time `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt        time.Time `json:"updatedAt" gorm:"column:updated_at"`
}

func (Evaluation) TableName() string {
	return "evaluations"
}

func ValidEvaluationNumber(n int) bool {
	return n >= MinEvaluationNumber && n <= MaxEvaluationNumber
}

var ErrInvalidEvaluationNumber = errors.New("evaluationNumber must be 1, 2 or 3")
