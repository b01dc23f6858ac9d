package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"tasks-api/internal/config"
	"tasks-api/internal/db"
	"tasks-api/internal/importer"
	taskrepo "tasks-api/internal/repository/task"
	tasksvc "tasks-api/internal/service/task"
)

func main() {
	var (
		filePath string
		userID   int64
	)
	flag.StringVar(&filePath, "file", "", "Path to a task CSV (user_id,title,description,status)")
	flag.Int64Var(&userID, "user", 0, "User id for rows that leave user_id empty")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger := log.New(os.Stdout, "[importer] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatalf("open file: %v", err)
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, tasksvc.New(taskrepo.NewPostgres(pool)), userID)

	start := time.Now()
	res, err := imp.Run(ctx)
	if err != nil {
		logger.Fatalf("import failed after %d tasks: %v", res.Imported, err)
	}

	fmt.Printf("Imported %d tasks (%d already existed) in %s\n", res.Imported, res.Skipped, time.Since(start).Truncate(time.Millisecond))
}
