package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/config"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/domain"
)

var ErrSolveJobNotFound = errors.New("求解任务不存在或已过期")

// JobStore 把求解任务的状态保存在 redis 中，过期后自动删除
type JobStore struct {
	cfg *config.Config
	rdb *redis.Client
}

func NewJobStore(cfg *config.Config, rdb *redis.Client) *JobStore {
	return &JobStore{
		cfg: cfg,
		rdb: rdb,
	}
}

func solveJobKey(id string) string {
	return "solve_job:" + id
}

func (s *JobStore) SaveSolveJob(job *domain.SolveJob) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(s.cfg.Redis.OperationExpiration)*time.Second)
	defer cancel()

	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	return s.rdb.Set(ctx, solveJobKey(job.ID), data, time.Duration(s.cfg.Redis.JobExpiration)*time.Second).Err()
}

func (s *JobStore) GetSolveJob(id string) (*domain.SolveJob, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(s.cfg.Redis.OperationExpiration)*time.Second)
	defer cancel()

	data, err := s.rdb.Get(ctx, solveJobKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSolveJobNotFound
		}
		return nil, err
	}

	job := &domain.SolveJob{}
	if err := json.Unmarshal(data, job); err != nil {
		return nil, err
	}

	return job, nil
}
