package local

import (
	"context"
	"time"

	"github.com/google/uuid"

	"todowork/internal/service"
)

// ListTasks implements service.TaskService. Tasks are returned in creation
// order.
func (s *Store) ListTasks(ctx context.Context, userID string) ([]service.Task, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, title, completed FROM tasks WHERE user_id = ? ORDER BY seq`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []service.Task
	for rows.Next() {
		var t service.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Completed); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CreateTask implements service.TaskService.
func (s *Store) CreateTask(ctx context.Context, userID, title string) (service.Task, error) {
	t := service.Task{ID: uuid.NewString(), Title: title}
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO tasks (id, user_id, title, completed, created_at) VALUES (?, ?, ?, 0, ?)`,
		t.ID, userID, t.Title, time.Now().Unix())
	if err != nil {
		return service.Task{}, err
	}
	return t, nil
}

// UpdateCompletion implements service.TaskService.
func (s *Store) UpdateCompletion(ctx context.Context, userID, taskID string, completed bool) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE tasks SET completed = ? WHERE id = ? AND user_id = ?`, completed, taskID, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DeleteTask implements service.TaskService.
func (s *Store) DeleteTask(ctx context.Context, userID, taskID string) error {
	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = ? AND user_id = ?`, taskID, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func requireRow(res rowsAffecter) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return service.ErrNotFound
	}
	return nil
}
