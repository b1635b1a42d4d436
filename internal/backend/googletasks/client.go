// Package googletasks implements service.TaskService using the Google Tasks API.
//
// Each todowork user gets a dedicated task list in the linked Google
// account, titled ListPrefix + user ID; it is created on first use.
package googletasks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"todowork/internal/config"
	"todowork/internal/service"
)

const (
	// ListPrefix prefixes the per-user task list title.
	ListPrefix = "todowork:"

	// PageSize is the number of tasks requested per page.
	PageSize = 100

	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	// Scope is the OAuth scope for Google Tasks.
	Scope = "https://www.googleapis.com/auth/tasks"

	statusCompleted   = "completed"
	statusNeedsAction = "needsAction"
)

// Client implements service.TaskService using Google Tasks API.
type Client struct {
	svc *tasks.Service

	mu    sync.Mutex
	lists map[string]string // userID -> list ID
}

// New creates a new Google Tasks client.
// Requires oauth_client.json and google_token.json to exist (see the
// connect command).
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	// Load OAuth client config
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", config.OAuthClientFile, err)
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, Scope)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.OAuthClientFile, err)
	}

	// Load token
	tokenData, err := os.ReadFile(cfg.GoogleTokenPath())
	if err != nil {
		return nil, fmt.Errorf("google account not connected (run: todowork connect): %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.GoogleTokenFile, err)
	}

	// Token source refreshes automatically
	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, &token))
	return NewWithHTTPClient(ctx, httpClient)
}

// NewWithHTTPClient creates a client with a custom HTTP client and options
// (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return &Client{svc: svc, lists: make(map[string]string)}, nil
}

// ListTasks returns the user's tasks in API order, including completed ones.
func (c *Client) ListTasks(ctx context.Context, userID string) ([]service.Task, error) {
	listID, err := c.userList(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := c.listItems(ctx, listID)
	if err != nil {
		return nil, err
	}
	result := make([]service.Task, 0, len(items))
	for _, t := range items {
		result = append(result, convertTask(t))
	}
	return result, nil
}

// CreateTask creates a new open task at the end of the user's list.
// The API inserts at the top unless a previous sibling is given, so the
// current last top-level task is looked up first.
func (c *Client) CreateTask(ctx context.Context, userID, title string) (service.Task, error) {
	listID, err := c.userList(ctx, userID)
	if err != nil {
		return service.Task{}, err
	}
	items, err := c.listItems(ctx, listID)
	if err != nil {
		return service.Task{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	call := c.svc.Tasks.Insert(listID, &tasks.Task{
		Title:  title,
		Status: statusNeedsAction,
	})
	if last := lastTopLevel(items); last != "" {
		call = call.Previous(last)
	}
	created, err := call.Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return convertTask(created), nil
}

func (c *Client) listItems(ctx context.Context, listID string) ([]*tasks.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var items []*tasks.Task
	err := c.svc.Tasks.List(listID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowHidden(true).
		ShowDeleted(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			items = append(items, resp.Items...)
			return nil
		})
	if err != nil {
		return nil, wrapError(err)
	}
	return items, nil
}

func lastTopLevel(items []*tasks.Task) string {
	for i := len(items) - 1; i >= 0; i-- {
		if items[i].Parent == "" {
			return items[i].Id
		}
	}
	return ""
}

// UpdateCompletion marks a task completed or reopens it.
func (c *Client) UpdateCompletion(ctx context.Context, userID, taskID string, completed bool) error {
	listID, err := c.userList(ctx, userID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	patch := &tasks.Task{Status: statusNeedsAction}
	if completed {
		patch.Status = statusCompleted
	} else {
		// Reopening must also clear the completion timestamp.
		patch.NullFields = []string{"Completed"}
	}

	_, err = c.svc.Tasks.Patch(listID, taskID, patch).Context(ctx).Do()
	if err != nil {
		return wrapError(err)
	}
	return nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, userID, taskID string) error {
	listID, err := c.userList(ctx, userID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if err := c.svc.Tasks.Delete(listID, taskID).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	return nil
}

// userList resolves the user's task list by title, creating it if missing.
// Resolved IDs are cached for the life of the client.
func (c *Client) userList(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", service.ErrSessionMismatch
	}
	c.mu.Lock()
	id, ok := c.lists[userID]
	c.mu.Unlock()
	if ok {
		return id, nil
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	title := ListPrefix + userID
	err := c.svc.Tasklists.List().MaxResults(100).Pages(ctx, func(resp *tasks.TaskLists) error {
		for _, list := range resp.Items {
			if id == "" && strings.TrimSpace(list.Title) == title {
				id = list.Id
			}
		}
		return nil
	})
	if err != nil {
		return "", wrapError(err)
	}

	if id == "" {
		created, err := c.svc.Tasklists.Insert(&tasks.TaskList{Title: title}).Context(ctx).Do()
		if err != nil {
			return "", wrapError(err)
		}
		id = created.Id
	}

	c.mu.Lock()
	c.lists[userID] = id
	c.mu.Unlock()
	return id, nil
}

func convertTask(t *tasks.Task) service.Task {
	return service.Task{
		ID:        t.Id,
		Title:     t.Title,
		Completed: t.Status == statusCompleted,
	}
}

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	errStr := err.Error()

	// Check for timeout
	if strings.Contains(errStr, "context deadline exceeded") {
		return fmt.Errorf("request timed out")
	}

	// Check for auth errors
	if strings.Contains(errStr, "401") || strings.Contains(errStr, "403") {
		return fmt.Errorf("google token expired or revoked (run: todowork connect)")
	}

	// Check for not found
	if strings.Contains(errStr, "404") {
		return service.ErrNotFound
	}

	return err
}
