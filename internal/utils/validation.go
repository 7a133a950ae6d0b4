package utils

import (
	"errors"
	"fmt"
	"slices"

	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/domain"
)

// ValidateProblem 在保存问题之前检查其结构
func ValidateProblem(p *domain.Problem) error {
	if len(p.Resources) == 0 {
		return errors.New("问题中至少需要一种资源")
	}
	if len(p.Products) == 0 {
		return errors.New("问题中至少需要一种产品")
	}

	for _, resource := range p.Resources {
		if resource.Amount < 0 {
			return fmt.Errorf("资源 %s 的数量不能为负数", resource.ID)
		}
	}

	for _, product := range p.Products {
		// 检查产品是否至少有一项数量为正的需求
		if !slices.ContainsFunc(product.Requirements, func(req domain.Requirement) bool { return req.Amount > 0 }) {
			return fmt.Errorf("产品 %s 没有任何数量为正的资源需求", product.ID)
		}

		seen := make(map[string]bool)
		for _, req := range product.Requirements {
			if _, exists := p.Resources[req.ResourceID]; !exists {
				return fmt.Errorf("产品 %s 需要的资源 %s 不存在", product.ID, req.ResourceID)
			}
			if seen[req.ResourceID] {
				return fmt.Errorf("产品 %s 中资源 %s 的需求重复", product.ID, req.ResourceID)
			}
			seen[req.ResourceID] = true
		}
	}

	return nil
}
