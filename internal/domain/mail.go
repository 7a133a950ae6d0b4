package domain

const (
	MailTypeSolveFinished = "solve_finished"
	MailTypeSolveFailed   = "solve_failed"
)

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type SolveFinishedMailData struct {
	JobID       string  `json:"jobID"`
	ProblemName string  `json:"problemName"`
	Fitness     int64   `json:"fitness"`
	Generation  int     `json:"generation"`
	Percentage  float64 `json:"percentage"`
}

type SolveFailedMailData struct {
	JobID       string `json:"jobID"`
	ProblemName string `json:"problemName"`
	Error       string `json:"error"`
}
