package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/config"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/domain"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/problem"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/repository"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/seed"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var resources int
	var products int
	var out string
	var seedValue uint64

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机问题, 2: 生成随机问题文件, 3: 导入问题文件，文件路径作为参数传入)")
	flag.IntVar(&n, "n", 5, "要生成的问题数量")
	flag.IntVar(&resources, "resources", 4, "每个随机问题的资源种类数")
	flag.IntVar(&products, "products", 8, "每个随机问题的产品种类数")
	flag.StringVar(&out, "out", "./data", "随机问题文件的输出目录")
	flag.Uint64Var(&seedValue, "seed", 0, "随机数种子，0 表示随机")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if seedValue == 0 {
		seedValue = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seedValue, seedValue))

	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的问题数量")
			return
		}

		repo, closeDB, err := openRepository()
		if err != nil {
			slog.Error("无法连接到数据库", slog.String("error", err.Error()))
			return
		}
		defer closeDB()

		cnt := 0
		for i := 0; i < n; i++ {
			p := utils.GenerateRandomProblem(rng, resources, products)
			if err := repo.CreateProblem(p); err != nil {
				slog.Error("无法插入问题", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("插入问题成功", slog.Int("count", cnt))
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的问题数量")
			return
		}
		if err := os.MkdirAll(out, 0o755); err != nil {
			slog.Error("无法创建输出目录", slog.String("error", err.Error()))
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			p := utils.GenerateRandomProblem(rng, resources, products)
			path := filepath.Join(out, fmt.Sprintf("%s.txt", p.Name))
			if err := writeProblem(path, p); err != nil {
				slog.Error("无法写入问题文件", slog.String("path", path), slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("生成问题文件成功", slog.Int("count", cnt), slog.String("dir", out))
	case 3:
		if flag.NArg() == 0 {
			slog.Error("请指定要导入的问题文件")
			return
		}

		repo, closeDB, err := openRepository()
		if err != nil {
			slog.Error("无法连接到数据库", slog.String("error", err.Error()))
			return
		}
		defer closeDB()

		seed.ImportProblems(repo, flag.Args())
	default:
		slog.Error("指定的操作非法")
	}
}

func writeProblem(path string, p *domain.Problem) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return problem.Format(file, p)
}

func openRepository() (*repository.Repository, func(), error) {
	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		return nil, nil, err
	}

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		dbpool.Close()
		return nil, nil, err
	}

	return repository.NewRepository(cfg, dbpool), func() { dbpool.Close() }, nil
}
