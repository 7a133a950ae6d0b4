package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/config"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/problem"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/solver"
)

func main() {
	var configPath string
	var dump bool

	flag.StringVar(&configPath, "config", "./config.yaml", "运行参数文件路径")
	flag.BoolVar(&dump, "dump", false, "求解前输出编译后的问题（产品、资源和基因矩阵）")
	flag.Parse()

	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * 读取运行参数和问题定义
	 **********************************************/
	settings, err := config.LoadSettings(configPath)
	if err != nil {
		logger.Error("无法读取运行参数", "path", configPath, "error", err)
		os.Exit(1)
	}

	p, err := problem.LoadFile(settings.Path)
	if err != nil {
		logger.Error("无法读取问题定义", "path", settings.Path, "error", err)
		os.Exit(1)
	}

	/**********************************************
	 * 编译问题并求解
	 **********************************************/
	s, err := solver.New(solver.ParametersFromSettings(settings), p, nil)
	if err != nil {
		logger.Error("无法创建求解器", "error", err)
		os.Exit(1)
	}

	if dump {
		fmt.Print(s.Knapsack())
	}

	s.OnProgress(func(progress solver.Progress) {
		if err := solver.WriteProgress(os.Stdout, progress); err != nil {
			logger.Error("无法输出进度", "error", err)
		}
	})

	res, err := s.Solve()
	if err != nil {
		logger.Error("求解失败", "error", err)
		os.Exit(1)
	}

	/**********************************************
	 * 输出报告
	 **********************************************/
	sr := s.Knapsack().Explain(res, settings.KnownBest)
	if err := s.Knapsack().WriteReport(os.Stdout, sr); err != nil {
		logger.Error("无法输出报告", "error", err)
		os.Exit(1)
	}
}
