package tutor

// DefaultID 默认导师，讲解语言为 Hinglish
const DefaultID = "hinglish"

// Tutor 决定分析与问答时使用的讲解语言。
type Tutor struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	ExplanationLanguage string `json:"explanationLanguage"`
	Description         string `json:"description,omitempty"`
}

// Seed provides the built-in tutors.
func Seed() []Tutor {
	return []Tutor{
		{
			ID:                  DefaultID,
			Name:                "Hinglish Coach",
			ExplanationLanguage: "Hinglish",
			Description:         "Explains grammar, word choice and pronunciation in a friendly Hindi-English mix.",
		},
		{
			ID:                  "english",
			Name:                "English Coach",
			ExplanationLanguage: "English",
			Description:         "Keeps every explanation in simple English for immersive practice.",
		},
		{
			ID:                  "hindi",
			Name:                "Hindi Coach",
			ExplanationLanguage: "Hindi",
			Description:         "Explains mistakes and tips in Hindi for learners who prefer their first language.",
		},
	}
}
