package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/domain"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/repository"
)

func (h *Handler) SolveProblem(w http.ResponseWriter, r *http.Request) {
	p := r.Context().Value(ProblemCtx).(*domain.Problem)

	var req struct {
		domain.Settings
		NotifyEmail string `json:"notifyEmail" validate:"omitempty,email"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	now := time.Now()
	job := &domain.SolveJob{
		ID:          uuid.NewString(),
		ProblemID:   p.ID,
		Settings:    req.Settings,
		NotifyEmail: req.NotifyEmail,
		Status:      domain.SolveJobQueued,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// 先保存任务状态，避免 worker 取到任务时状态还不存在
	if err := h.jobs.SaveSolveJob(job); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	jobData, err := json.Marshal(job)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 发送任务到消息队列中
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := h.solveChannel.PublishWithContext(
		ctx,
		"",
		h.config.RabbitMQ.SolveQueue,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    job.ID,
			Body:         jobData,
		},
	); err != nil {
		job.Status = domain.SolveJobFailed
		job.Error = "任务投递失败"
		job.UpdatedAt = time.Now()
		if saveErr := h.jobs.SaveSolveJob(job); saveErr != nil {
			slog.Error("无法更新求解任务状态", "job", job.ID, "error", saveErr)
		}
		h.internalServerError(w, r, err)
		return
	}

	h.metrics.JobQueued()

	h.successResponse(w, r, "求解任务已提交", job)
}

func (h *Handler) GetSolveJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	if err := uuid.Validate(jobID); err != nil {
		h.errorResponse(w, r, "任务ID无效")
		return
	}

	job, err := h.jobs.GetSolveJob(jobID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSolveJobNotFound):
			h.errorResponse(w, r, "任务不存在或已过期")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "获取任务状态成功", job)
}
