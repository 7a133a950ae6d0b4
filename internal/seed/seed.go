package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/domain"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/problem"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/utils"
)

// 表格中的信息列，其余的列都是资源
const (
	ProductHeader = "product"
	ValueHeader   = "value"
)

// 第一列为以下值的行不是产品
const (
	StockRow = "stock"
	TitleRow = "title"
)

// ParseCSV 解析表格形式的问题定义，例如：
//
//	product,value,iron,wood
//	title,,铁,木材
//	stock,,40,30
//	chair,4,1,3
//
// title 行可以省略，此时资源的标题与 id 相同；空单元格表示不需要该资源
func ParseCSV(r io.Reader) (*domain.Problem, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	// 读取表头
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}

	productCol := slices.Index(headers, ProductHeader)
	valueCol := slices.Index(headers, ValueHeader)
	if productCol < 0 || valueCol < 0 {
		return nil, errors.New("没有找到 product 列或 value 列")
	}

	resourceCols := make([]int, 0, len(headers))
	for i := range headers {
		if i != productCol && i != valueCol {
			resourceCols = append(resourceCols, i)
		}
	}
	if len(resourceCols) == 0 {
		return nil, errors.New("没有找到资源列")
	}

	p := domain.NewProblem()
	for _, col := range resourceCols {
		id := strings.TrimSpace(headers[col])
		p.Resources[id] = &domain.Resource{ID: id, Title: id}
	}

	hasStock := false
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("第 %d 行: %w", line, err)
		}

		switch id := strings.TrimSpace(row[productCol]); id {
		case StockRow:
			for _, col := range resourceCols {
				amount, err := strconv.ParseInt(strings.TrimSpace(row[col]), 10, 64)
				if err != nil {
					return nil, fmt.Errorf("第 %d 行: 资源 %s 的数量无效: %w", line, headers[col], err)
				}
				if amount < 0 {
					return nil, fmt.Errorf("第 %d 行: 资源 %s 的数量不能为负数", line, headers[col])
				}
				p.Resources[strings.TrimSpace(headers[col])].Amount = amount
			}
			hasStock = true
		case TitleRow:
			for _, col := range resourceCols {
				if title := strings.TrimSpace(row[col]); title != "" {
					p.Resources[strings.TrimSpace(headers[col])].Title = title
				}
			}
		default:
			value, err := strconv.ParseUint(strings.TrimSpace(row[valueCol]), 10, 32)
			if err != nil {
				return nil, fmt.Errorf("第 %d 行: 产品 %s 的价值无效: %w", line, id, err)
			}

			product := &domain.Product{
				ID:           id,
				Value:        uint32(value),
				Requirements: make([]domain.Requirement, 0, len(resourceCols)),
			}
			for _, col := range resourceCols {
				cell := strings.TrimSpace(row[col])
				if cell == "" {
					continue
				}
				amount, err := strconv.ParseUint(cell, 10, 32)
				if err != nil {
					return nil, fmt.Errorf("第 %d 行: 产品 %s 对资源 %s 的需求无效: %w", line, id, headers[col], err)
				}
				product.Requirements = append(product.Requirements, domain.Requirement{
					ResourceID: strings.TrimSpace(headers[col]),
					Amount:     uint32(amount),
				})
			}
			p.Products[id] = product
		}
	}

	if !hasStock {
		return nil, errors.New("没有找到 stock 行")
	}

	return p, nil
}

// LoadFile 根据扩展名选择解析方式，.csv 为表格，其余为按行的问题定义
// 问题名称取文件名（不含扩展名）
func LoadFile(path string) (*domain.Problem, error) {
	var p *domain.Problem
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()

		if p, err = ParseCSV(file); err != nil {
			return nil, err
		}
	} else {
		var err error
		if p, err = problem.LoadFile(path); err != nil {
			return nil, err
		}
	}

	p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	p.Description = "导入自 " + filepath.Base(path)

	return p, nil
}

type ProblemCreator interface {
	CreateProblem(p *domain.Problem) error
}

// ImportProblems 导入若干问题文件，单个文件失败只记录日志，返回成功导入的数量
func ImportProblems(r ProblemCreator, paths []string) int {
	cnt := 0
	for _, path := range paths {
		p, err := LoadFile(path)
		if err != nil {
			slog.Error("读取问题文件失败", "path", path, "error", err)
			continue
		}

		if err := utils.ValidateProblem(p); err != nil {
			slog.Error("问题不合法", "path", path, "error", err)
			continue
		}

		if err := r.CreateProblem(p); err != nil {
			slog.Error("插入问题失败", "path", path, "error", err)
			continue
		}

		cnt++
	}

	slog.Info("导入问题完成", "count", cnt)
	return cnt
}
