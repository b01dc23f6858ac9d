package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"tasks-api/internal/domain"
	tasksvc "tasks-api/internal/service/task"
)

type stubTaskCreator struct {
	items []tasksvc.CreateInput
	seen  map[string]bool
	err   error
}

func (s *stubTaskCreator) Create(_ context.Context, in tasksvc.CreateInput) (*domain.Task, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.seen == nil {
		s.seen = map[string]bool{}
	}
	key := in.Title
	if s.seen[key] {
		return nil, domain.ErrAlreadyExists
	}
	s.seen[key] = true
	s.items = append(s.items, in)
	return &domain.Task{UserID: in.UserID, Title: in.Title}, nil
}

func TestCSVImporter_Run(t *testing.T) {
	csvData := `user_id,title,description,status
7,Write docs,Cover the CSRF flow,in_progress
,Review PR,Check the gate,
8,Ship,Tag the release,Completed

7,Write docs,Duplicate row,pending`

	repo := &stubTaskCreator{}
	imp := NewCSVImporter(strings.NewReader(csvData), repo, 3)

	res, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if res.Imported != 3 || res.Skipped != 1 {
		t.Fatalf("expected 3 imported and 1 skipped, got %+v", res)
	}

	if repo.items[0].UserID != 7 || repo.items[0].Status != domain.TaskStatusInProgress {
		t.Fatalf("unexpected first task: %+v", repo.items[0])
	}
	if repo.items[1].UserID != 3 || repo.items[1].Status != "" {
		t.Fatalf("expected default user and status on second task, got %+v", repo.items[1])
	}
	if repo.items[2].Status != domain.TaskStatusCompleted {
		t.Fatalf("expected lower-cased status, got %q", repo.items[2].Status)
	}
}

func TestCSVImporter_InvalidUser(t *testing.T) {
	csvData := `user_id,title,description
abc,Write docs,Body`

	_, err := NewCSVImporter(strings.NewReader(csvData), &stubTaskCreator{}, 0).Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "row 2") {
		t.Fatalf("expected row 2 error, got %v", err)
	}
}

func TestCSVImporter_MissingTitleColumn(t *testing.T) {
	_, err := NewCSVImporter(strings.NewReader("user_id,description\n1,x"), &stubTaskCreator{}, 0).Run(context.Background())
	if err == nil {
		t.Fatalf("expected missing column error")
	}
}

func TestCSVImporter_StopsOnServiceError(t *testing.T) {
	csvData := `user_id,title,description
1,a,b
1,c,d`
	repo := &stubTaskCreator{err: tasksvc.ErrMissingFields}

	res, err := NewCSVImporter(strings.NewReader(csvData), repo, 0).Run(context.Background())
	if !errors.Is(err, tasksvc.ErrMissingFields) {
		t.Fatalf("expected missing fields error, got %v", err)
	}
	if res.Imported != 0 {
		t.Fatalf("expected nothing imported, got %d", res.Imported)
	}
}
