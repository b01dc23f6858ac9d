package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"tasks-api/internal/domain"
	tasksvc "tasks-api/internal/service/task"
)

type TaskCreator interface {
	Create(ctx context.Context, in tasksvc.CreateInput) (*domain.Task, error)
}

// Result summarises an import run.
type Result struct {
	Imported int
	// Skipped counts rows whose (user_id, title) already exists.
	Skipped int
}

// CSVImporter reads task rows with a user_id,title,description,status header
// and creates them through the task service.
type CSVImporter struct {
	reader        *csv.Reader
	tasks         TaskCreator
	defaultUserID int64
}

// NewCSVImporter returns an importer. Rows without a user_id column value are
// assigned defaultUserID; pass 0 to require it on every row.
func NewCSVImporter(r io.Reader, tasks TaskCreator, defaultUserID int64) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader:        csvr,
		tasks:         tasks,
		defaultUserID: defaultUserID,
	}
}

type csvRow struct {
	Line        int
	UserID      int64
	Title       string
	Description string
	Status      domain.TaskStatus
}

// Run parses CSV rows and creates one task per row. It stops at the first
// invalid row or storage failure.
func (i *CSVImporter) Run(ctx context.Context) (Result, error) {
	var res Result

	headers, err := i.reader.Read()
	if err != nil {
		return res, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["title"]; !ok {
		return res, errors.New("missing title column")
	}

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read row: %w", err)
		}
		line, _ := i.reader.FieldPos(0)

		row, err := i.parseRow(record, index, line)
		if err != nil {
			return res, err
		}
		if row == nil {
			continue
		}

		created, err := i.save(ctx, row)
		if err != nil {
			return res, err
		}
		if created {
			res.Imported++
		} else {
			res.Skipped++
		}
	}

	return res, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) (bool, error) {
	_, err := i.tasks.Create(ctx, tasksvc.CreateInput{
		UserID:      row.UserID,
		Title:       row.Title,
		Description: row.Description,
		Status:      row.Status,
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrAlreadyExists):
		return false, nil
	default:
		return false, fmt.Errorf("row %d: create task %q: %w", row.Line, row.Title, err)
	}
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func (i *CSVImporter) parseRow(record []string, index map[string]int, line int) (*csvRow, error) {
	userStr := pick(record, index, "user_id")
	title := pick(record, index, "title")
	desc := pick(record, index, "description")
	status := pick(record, index, "status")

	if userStr == "" && title == "" && desc == "" && status == "" {
		return nil, nil
	}

	userID := i.defaultUserID
	if userStr != "" {
		id, err := strconv.ParseInt(userStr, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("row %d: invalid user_id %q", line, userStr)
		}
		userID = id
	}

	return &csvRow{
		Line:        line,
		UserID:      userID,
		Title:       title,
		Description: desc,
		Status:      domain.TaskStatus(strings.ToLower(status)),
	}, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
