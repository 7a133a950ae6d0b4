package problem

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/domain"
)

// LoadFile 从文件中读取问题定义
func LoadFile(path string) (*domain.Problem, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开问题定义文件: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// 单行最长 4MB，足以容纳 API 请求体上限内的任意一行
const maxLineBytes = 4 << 20

// Parse 解析按行组织的问题定义，每一行的格式为：
//
//	resource: <id>: <title>: <amount>
//	product: <id>: <value>: <reqId>=<reqAmount>: <reqId>=<reqAmount>...
//
// 无法识别的行会被忽略，重复的 id 会覆盖之前的记录
func Parse(r io.Reader) (*domain.Problem, error) {
	p := domain.NewProblem()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Split(strings.TrimSpace(scanner.Text()), ":")

		switch strings.ToLower(strings.TrimSpace(fields[0])) {
		case "resource":
			res, err := parseResource(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("第 %d 行: %w", lineNo, err)
			}
			p.Resources[res.ID] = res
		case "product":
			prod, err := parseProduct(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("第 %d 行: %w", lineNo, err)
			}
			p.Products[prod.ID] = prod
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("读取问题定义失败: %w", err)
	}

	return p, nil
}

func parseResource(fields []string) (*domain.Resource, error) {
	if len(fields) < 3 {
		return nil, fmt.Errorf("资源定义字段不足")
	}

	amount, err := strconv.ParseInt(strings.TrimSpace(fields[2]), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("资源数量格式错误: %w", err)
	}
	if amount < 0 {
		return nil, fmt.Errorf("资源 %s 的数量不能为负数", strings.TrimSpace(fields[0]))
	}

	return &domain.Resource{
		ID:     strings.TrimSpace(fields[0]),
		Title:  strings.TrimSpace(fields[1]),
		Amount: amount,
	}, nil
}

func parseProduct(fields []string) (*domain.Product, error) {
	if len(fields) < 2 {
		return nil, fmt.Errorf("产品定义字段不足")
	}

	value, err := strconv.ParseUint(strings.TrimSpace(fields[1]), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("产品价值格式错误: %w", err)
	}

	prod := &domain.Product{
		ID:           strings.TrimSpace(fields[0]),
		Value:        uint32(value),
		Requirements: make([]domain.Requirement, 0, len(fields)-2),
	}

	for _, field := range fields[2:] {
		field = strings.TrimSpace(field)
		if field == "" {
			// 允许行尾多出一个冒号
			continue
		}

		req, err := parseRequirement(field)
		if err != nil {
			return nil, err
		}
		prod.Requirements = append(prod.Requirements, req)
	}

	return prod, nil
}

func parseRequirement(input string) (domain.Requirement, error) {
	id, amountStr, ok := strings.Cut(input, "=")
	if !ok {
		return domain.Requirement{}, fmt.Errorf("需求 %q 缺少 '='", input)
	}

	amount, err := strconv.ParseUint(strings.TrimSpace(amountStr), 10, 32)
	if err != nil {
		return domain.Requirement{}, fmt.Errorf("需求数量格式错误: %w", err)
	}

	return domain.Requirement{
		ResourceID: strings.TrimSpace(id),
		Amount:     uint32(amount),
	}, nil
}
