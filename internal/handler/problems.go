package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/domain"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/problem"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/solver"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/utils"
)

func (h *Handler) CreateProblem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name" validate:"required,max=64"`
		Description string `json:"description" validate:"max=512"`
		Definition  string `json:"definition" validate:"required"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// definition 与问题定义文件的格式相同
	p, err := problem.Parse(strings.NewReader(req.Definition))
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	p.Name = req.Name
	p.Description = req.Description

	if err := utils.ValidateProblem(p); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateProblem(p); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "problems_name_key":
				h.errorResponse(w, r, "问题名称已存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建问题成功", p)
}

func (h *Handler) GetAllProblems(w http.ResponseWriter, r *http.Request) {
	problems, err := h.repository.GetAllProblems()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取问题列表成功", problems)
}

func (h *Handler) GetProblem(w http.ResponseWriter, r *http.Request) {
	p := r.Context().Value(ProblemCtx).(*domain.Problem)

	// 编译一次以填充每个产品的 Max
	k, err := solver.Compile(p, nil)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	h.successResponse(w, r, "获取问题成功", struct {
		*domain.Problem
		Genes int `json:"genes"`
	}{
		Problem: p,
		Genes:   len(k.Genes()),
	})
}

func (h *Handler) DeleteProblem(w http.ResponseWriter, r *http.Request) {
	p := r.Context().Value(ProblemCtx).(*domain.Problem)

	if err := h.repository.DeleteProblem(p.ID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "问题不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "删除问题成功", nil)
}

func (h *Handler) GetSolveResults(w http.ResponseWriter, r *http.Request) {
	p := r.Context().Value(ProblemCtx).(*domain.Problem)

	results, err := h.repository.GetSolveResultsByProblemID(p.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取求解结果成功", results)
}
