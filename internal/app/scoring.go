package app

import (
	"fmt"
	"math"

	"quizcraft-service/internal/domain"
)

// SubmittedAnswer is one answer in a submission payload.
type SubmittedAnswer struct {
	QuestionID     string `json:"questionId"`
	SelectedAnswer string `json:"selectedAnswer"`
	TimeSpent      int    `json:"timeSpent"`
}

// scoreSubmission grades a submission against the answer key. It is all or
// nothing: any answer referencing a question outside the key rejects the
// whole submission and nothing is recorded.
func scoreSubmission(key domain.AnswerKey, answers []SubmittedAnswer) ([]domain.AnswerRecord, int, error) {
	records := make([]domain.AnswerRecord, 0, len(answers))
	correct := 0
	for _, answer := range answers {
		correctAnswer, ok := key.Answers[answer.QuestionID]
		if !ok {
			return nil, 0, domain.Invalid(fmt.Sprintf("question %s not found in quiz", answer.QuestionID))
		}
		isCorrect := answer.SelectedAnswer == correctAnswer
		if isCorrect {
			correct++
		}
		records = append(records, domain.AnswerRecord{
			QuestionID:     answer.QuestionID,
			SelectedAnswer: answer.SelectedAnswer,
			IsCorrect:      isCorrect,
			TimeSpent:      answer.TimeSpent,
		})
	}
	return records, correct, nil
}

// percentScore divides by the quiz's full question count, so submitting a
// subset of questions still lowers the achievable score.
func percentScore(correct, totalQuestions int) int {
	if totalQuestions == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(totalQuestions) * 100))
}
