package models

// Criterion is one named entry of the oral marking sheet.
type Criterion struct {
	Key       string  `json:"key"`
	Name      string  `json:"name"`
	MaxPoints float64 `json:"max_points"`
}

// MarkingCriteria is the fixed ordered marking sheet. Maximums sum to 100,
// so a team's round total is always out of 100 regardless of judge count.
var MarkingCriteria = []Criterion{
	{Key: "knowledge_of_law", Name: "Knowledge of Law", MaxPoints: 20},
	{Key: "application_of_law_to_facts", Name: "Application of Law to Facts", MaxPoints: 20},
	{Key: "ingenuity_and_ability_to_answer_questions", Name: "Ingenuity and Ability to Answer Questions", MaxPoints: 15},
	{Key: "persuasiveness", Name: "Persuasiveness", MaxPoints: 15},
	{Key: "time_management_and_organization", Name: "Time Management and Organization", MaxPoints: 10},
	{Key: "style_poise_courtesy_and_demeanor", Name: "Style, Poise, Courtesy and Demeanor", MaxPoints: 10},
	{Key: "language_and_presentation", Name: "Language and Presentation", MaxPoints: 10},
}

func CriterionByKey(key string) (Criterion, bool) {
	for _, c := range MarkingCriteria {
		if c.Key == key {
			return c, true
		}
	}
	return Criterion{}, false
}

func MaxTotalPoints() float64 {
	var sum float64
	for _, c := range MarkingCriteria {
		sum += c.MaxPoints
	}
	return sum
}
