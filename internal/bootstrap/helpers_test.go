package bootstrap

import "interview-backend/internal/questions"

func questionsFixture() questions.Result {
	return questions.Result{Technical: []string{"Explain channels."}}
}
