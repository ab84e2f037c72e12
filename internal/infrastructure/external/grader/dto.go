package grader

import "github.com/prepdesk/prepdesk/internal/application/practice"

type submitRequest struct {
	ItemID           string `json:"item_id"`
	Answer           string `json:"answer"`
	TimeSpentSeconds int    `json:"time_spent_seconds"`
}

type gradeResponse struct {
	Correct       bool   `json:"correct"`
	Explanation   string `json:"explanation,omitempty"`
	CorrectAnswer string `json:"correct_answer,omitempty"`
}

func (r gradeResponse) toResult() practice.GradeResult {
	return practice.GradeResult{
		Correct:       r.Correct,
		Explanation:   r.Explanation,
		CorrectAnswer: r.CorrectAnswer,
	}
}
