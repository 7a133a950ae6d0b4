package domain

import (
	"fmt"
	"strings"
	"time"
)

type Resource struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Amount int64  `json:"amount"` // 资源池中的数量不会为负，只有在可行性检查时才会临时变为负数
}

func (r Resource) String() string {
	return fmt.Sprintf("resource '[%s]%s' (qty: %d)", r.ID, r.Title, r.Amount)
}

type Requirement struct {
	ResourceID string `json:"resourceID"`
	Amount     uint32 `json:"amount"` // 每生产一个单位的产品所消耗的资源数量
}

func (r Requirement) String() string {
	return fmt.Sprintf("%d [%s]", r.Amount, r.ResourceID)
}

type Product struct {
	ID           string        `json:"id"`
	Value        uint32        `json:"value"`
	Requirements []Requirement `json:"requirements"`
	Max          uint32        `json:"max"`      // 假设只生产这一种产品时，所有资源最多能支撑的数量
	Solution     uint32        `json:"solution"` // 最终冠军个体给出的数量，只在生成报告时填充
}

func (p Product) String() string {
	reqs := make([]string, len(p.Requirements))
	for i, r := range p.Requirements {
		reqs[i] = r.String()
	}
	return fmt.Sprintf("product %s @ %d$, req(%s)", p.ID, p.Value, strings.Join(reqs, ", "))
}

// Problem 是一次求解所用的问题定义，加载之后只读
type Problem struct {
	ID          int64                `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Resources   map[string]*Resource `json:"resources"`
	Products    map[string]*Product  `json:"products"`
	CreatedAt   time.Time            `json:"createdAt"`
	Version     int32                `json:"-"`
}

func NewProblem() *Problem {
	return &Problem{
		Resources: make(map[string]*Resource),
		Products:  make(map[string]*Product),
	}
}
