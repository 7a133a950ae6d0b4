package domain

import "time"

type SolveJobStatus string

const (
	SolveJobQueued    SolveJobStatus = "queued"
	SolveJobRunning   SolveJobStatus = "running"
	SolveJobSucceeded SolveJobStatus = "succeeded"
	SolveJobFailed    SolveJobStatus = "failed"
)

// Settings 对应一次遗传算法运行的参数记录
type Settings struct {
	PopulationSize        int    `yaml:"population_size" json:"populationSize" validate:"required,min=1,max=100000"`
	GenerationsCount      int    `yaml:"generations_count" json:"generationsCount" validate:"required,min=1,max=1000000"`
	Frequency             int    `yaml:"frequency" json:"frequency" validate:"required,min=1"`
	Path                  string `yaml:"path" json:"-"`
	KnownBest             int64  `yaml:"known_best" json:"knownBest"`
	StabilityThreshold    int    `yaml:"stability_threshold" json:"stabilityThreshold" validate:"required,min=1"`
	MutationsPer1K        int    `yaml:"mutations_per_1k" json:"mutationsPer1k" validate:"min=0,max=1000"`
	RandMutateUpActivates bool   `yaml:"rand_mutate_up_activates" json:"randMutateUpActivates"`
	Seed                  uint64 `yaml:"seed" json:"seed"`
}

type SolveJob struct {
	ID          string         `json:"id"`
	ProblemID   int64          `json:"problemID"`
	Settings    Settings       `json:"settings"`
	NotifyEmail string         `json:"notifyEmail,omitempty"`
	Status      SolveJobStatus `json:"status"`
	Error       string         `json:"error,omitempty"`
	ResultID    int64          `json:"resultID,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}
