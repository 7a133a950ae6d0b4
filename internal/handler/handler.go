package handler

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/config"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/domain"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/metrics"
	"golang.org/x/crypto/bcrypt"
)

// ProblemStore 由 repository.Repository 实现
type ProblemStore interface {
	CreateProblem(p *domain.Problem) error
	GetAllProblems() ([]*domain.Problem, error)
	GetProblemByID(id int64) (*domain.Problem, error)
	DeleteProblem(id int64) error
	GetSolveResultsByProblemID(problemID int64) ([]*domain.SolveResult, error)
}

// JobStore 由 repository.JobStore 实现
type JobStore interface {
	SaveSolveJob(job *domain.SolveJob) error
	GetSolveJob(id string) (*domain.SolveJob, error)
}

// Publisher 由 *amqp.Channel 实现
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Handler struct {
	validate          *validator.Validate
	config            *config.Config
	repository        ProblemStore
	jobs              JobStore
	translator        ut.Translator
	solveChannel      Publisher
	metrics           *metrics.Metrics
	adminPasswordHash []byte

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo ProblemStore, jobs JobStore, solveCh Publisher, m *metrics.Metrics) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	// 管理员密码只在内存中保存哈希值
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(cfg.Admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &Handler{
		validate:          validate,
		config:            cfg,
		repository:        repo,
		jobs:              jobs,
		translator:        trans,
		solveChannel:      solveCh,
		metrics:           m,
		adminPasswordHash: passwordHash,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Handle("/metrics", promhttp.Handler())

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/problems", func(r chi.Router) {
			r.Post("/", h.CreateProblem)
			r.Get("/", h.GetAllProblems)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.problem)
				r.Get("/", h.GetProblem)
				r.Delete("/", h.DeleteProblem)
				r.Post("/solve", h.SolveProblem)
				r.Get("/results", h.GetSolveResults)
			})
		})

		r.Get("/jobs/{id}", h.GetSolveJob)
	})
}
