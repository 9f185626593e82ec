package server

import "time"

type messageResponse struct {
	Message string `json:"message"`
}

type uploadResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
	Chunks  int    `json:"chunks"`
}

type documentPayload struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

type askRequest struct {
	Question string `json:"question"`
}

// answerType values distinguish a model answer from a guardrail refusal.
const (
	answerSuccess = "success"
	answerRefused = "refused"
)

type askResponse struct {
	Type   string `json:"type"`
	Answer string `json:"answer"`
}
