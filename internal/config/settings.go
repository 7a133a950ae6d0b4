package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadSettings 读取 YAML 格式的运行参数文件，文件内容为参数记录的列表，只使用第一条
func LoadSettings(path string) (*domain.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法读取参数文件: %w", err)
	}

	return ParseSettings(data)
}

func ParseSettings(data []byte) (*domain.Settings, error) {
	var records []domain.Settings
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("参数文件格式错误: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("参数文件中没有任何参数记录")
	}

	settings := records[0]
	if err := ValidateSettings(&settings); err != nil {
		return nil, err
	}
	if settings.Path == "" {
		return nil, errors.New("参数文件缺少问题定义路径 path")
	}

	return &settings, nil
}

// ValidateSettings 检查参数的取值范围，path 不在检查范围内（通过 API 提交时问题来自数据库）
func ValidateSettings(settings *domain.Settings) error {
	if err := validate.Struct(settings); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			fe := validationErrors[0]
			return fmt.Errorf("参数 %s 不合法 (%s=%s)", fe.Field(), fe.Tag(), fe.Param())
		}
		return err
	}

	return nil
}
