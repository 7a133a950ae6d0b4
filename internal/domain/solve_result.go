package domain

import "time"

type SolveResultProduct struct {
	ProductID    string `json:"productID"`
	Value        uint32 `json:"value"`
	Quantity     uint32 `json:"quantity"`
	Contribution int64  `json:"contribution"`
	Max          uint32 `json:"max"`
	MaxValue     int64  `json:"maxValue"`
}

type SolveResultRemain struct {
	ResourceID string `json:"resourceID"`
	Title      string `json:"title"`
	Amount     int64  `json:"amount"`
}

// SolveResult 是冠军个体的最终报告
type SolveResult struct {
	ID          int64                `json:"id"`
	ProblemID   int64                `json:"problemID"`
	JobID       string               `json:"jobID"`
	Fitness     int64                `json:"fitness"`
	Generation  int                  `json:"generation"` // 冠军被发现的代数
	Generations int                  `json:"generations"`
	Restarts    int                  `json:"restarts"`
	KnownBest   int64                `json:"knownBest"`
	Percentage  float64              `json:"percentage"` // known_best 为 0 时为 0
	Products    []SolveResultProduct `json:"products"`
	Remains     []SolveResultRemain  `json:"remains"`
	CreatedAt   time.Time            `json:"createdAt"`
}
