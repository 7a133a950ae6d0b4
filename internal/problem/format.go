package problem

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/domain"
)

// Format 将问题写回按行组织的文本格式，输出可以被 Parse 重新读取
func Format(w io.Writer, p *domain.Problem) error {
	resourceIDs := make([]string, 0, len(p.Resources))
	for id := range p.Resources {
		resourceIDs = append(resourceIDs, id)
	}
	slices.Sort(resourceIDs)

	for _, id := range resourceIDs {
		r := p.Resources[id]
		if _, err := fmt.Fprintf(w, "resource: %s: %s: %d\n", r.ID, r.Title, r.Amount); err != nil {
			return err
		}
	}

	productIDs := make([]string, 0, len(p.Products))
	for id := range p.Products {
		productIDs = append(productIDs, id)
	}
	slices.Sort(productIDs)

	for _, id := range productIDs {
		prod := p.Products[id]
		reqs := make([]string, len(prod.Requirements))
		for i, req := range prod.Requirements {
			reqs[i] = fmt.Sprintf("%s=%d", req.ResourceID, req.Amount)
		}

		line := fmt.Sprintf("product: %s: %d", prod.ID, prod.Value)
		if len(reqs) > 0 {
			line += ": " + strings.Join(reqs, ": ")
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	return nil
}
