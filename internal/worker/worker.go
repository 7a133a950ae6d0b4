package worker

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/config"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/domain"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/metrics"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/solver"
)

// ErrMalformedJob 表示消息本身无法解析，重新入队也没有意义
var ErrMalformedJob = errors.New("无法解析求解任务")

type ResultStore interface {
	GetProblemByID(id int64) (*domain.Problem, error)
	InsertSolveResult(sr *domain.SolveResult) error
}

type JobStore interface {
	SaveSolveJob(job *domain.SolveJob) error
}

type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Worker struct {
	cfg         *config.Config
	repository  ResultStore
	jobs        JobStore
	mailChannel Publisher
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

func New(cfg *config.Config, repo ResultStore, jobs JobStore, mailCh Publisher, m *metrics.Metrics, logger *slog.Logger) *Worker {
	return &Worker{
		cfg:         cfg,
		repository:  repo,
		jobs:        jobs,
		mailChannel: mailCh,
		metrics:     m,
		logger:      logger,
	}
}

// Handle 处理一条求解任务消息
// 返回 ErrMalformedJob 时消息应当被丢弃，返回其他错误时消息应当重新入队
// 参数或问题本身有误导致的失败只会把任务标记为 failed，不会返回错误
func (w *Worker) Handle(ctx context.Context, body []byte) error {
	job := &domain.SolveJob{}
	if err := json.Unmarshal(body, job); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedJob, err)
	}
	if job.ID == "" {
		return fmt.Errorf("%w: 缺少任务 ID", ErrMalformedJob)
	}

	logger := w.logger.With("job", job.ID, "problem", job.ProblemID)

	if err := config.ValidateSettings(&job.Settings); err != nil {
		w.fail(ctx, logger, job, "", err)
		return nil
	}

	p, err := w.repository.GetProblemByID(job.ProblemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			w.fail(ctx, logger, job, "", errors.New("问题不存在"))
			return nil
		}
		return err
	}

	w.updateStatus(logger, job, domain.SolveJobRunning)

	parameters := solver.ParametersFromSettings(&job.Settings)
	s, err := solver.New(parameters, p, nil)
	if err != nil {
		w.fail(ctx, logger, job, p.Name, err)
		return nil
	}
	s.OnProgress(func(progress solver.Progress) {
		logger.Info("求解进度",
			"generation", progress.Generation,
			"total", progress.TotalFitness,
			"best", progress.BestFitness,
			"worst", progress.WorstFitness,
			"champion", progress.ChampionFitness,
		)
	})

	logger.Info("开始求解", "genes", len(s.Knapsack().Genes()), "population", parameters.PopulationSize, "generations", parameters.GenerationsCount)
	start := time.Now()
	res, err := s.Solve()
	if err != nil {
		w.fail(ctx, logger, job, p.Name, err)
		return nil
	}
	elapsed := time.Since(start)

	sr := s.Knapsack().Explain(res, job.Settings.KnownBest)
	sr.ProblemID = p.ID
	sr.JobID = job.ID

	if err := w.repository.InsertSolveResult(sr); err != nil {
		return err
	}

	w.metrics.ObserveRun(res.Generations, res.Restarts, sr.Fitness, elapsed)
	logger.Info("求解完成", "fitness", sr.Fitness, "generation", sr.Generation, "restarts", sr.Restarts, "duration", elapsed)

	job.ResultID = sr.ID
	w.updateStatus(logger, job, domain.SolveJobSucceeded)

	if job.NotifyEmail != "" {
		w.notify(ctx, logger, domain.MailMessage{
			Type: domain.MailTypeSolveFinished,
			To:   job.NotifyEmail,
			Data: domain.SolveFinishedMailData{
				JobID:       job.ID,
				ProblemName: p.Name,
				Fitness:     sr.Fitness,
				Generation:  sr.Generation,
				Percentage:  sr.Percentage,
			},
		})
	}

	return nil
}

func (w *Worker) fail(ctx context.Context, logger *slog.Logger, job *domain.SolveJob, problemName string, cause error) {
	logger.Error("求解任务失败", "error", cause)
	w.metrics.JobFailed()

	job.Error = cause.Error()
	w.updateStatus(logger, job, domain.SolveJobFailed)

	if job.NotifyEmail != "" {
		w.notify(ctx, logger, domain.MailMessage{
			Type: domain.MailTypeSolveFailed,
			To:   job.NotifyEmail,
			Data: domain.SolveFailedMailData{
				JobID:       job.ID,
				ProblemName: problemName,
				Error:       cause.Error(),
			},
		})
	}
}

// 任务状态只是缓存，写入失败不影响求解结果
func (w *Worker) updateStatus(logger *slog.Logger, job *domain.SolveJob, status domain.SolveJobStatus) {
	job.Status = status
	job.UpdatedAt = time.Now()
	if err := w.jobs.SaveSolveJob(job); err != nil {
		logger.Error("无法更新求解任务状态", "status", status, "error", err)
	}
}

func (w *Worker) notify(ctx context.Context, logger *slog.Logger, mailMessage domain.MailMessage) {
	mailData, err := json.Marshal(mailMessage)
	if err != nil {
		logger.Error("邮件信息序列化失败", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(w.cfg.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := w.mailChannel.PublishWithContext(
		ctx,
		"",
		w.cfg.RabbitMQ.EmailQueue,
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        mailData,
		},
	); err != nil {
		logger.Error("无法发送通知邮件到消息队列", "error", err)
	}
}
