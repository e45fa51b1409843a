// Package timer provides a typed client for the time tracking REST API.
// All project, task and time-entry operations are scoped to a workspace,
// which the client resolves once at startup.
package timer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"tracksync/internal/domain"
	"tracksync/internal/errors"
	"tracksync/internal/logging"
	"tracksync/internal/retry"
)

const (
	defaultTimeout  = 30 * time.Second
	entryPageSize   = 1000
	projectPageSize = 1000
	timestampFormat = time.RFC3339
)

// Options configures the Client
type Options struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Retry   retry.Config

	// HTTPClient overrides the default client, used by tests
	HTTPClient *http.Client
}

// Client is a typed HTTP wrapper over the Timer REST API.
// Authentication uses the X-Api-Key header.
type Client struct {
	http        *http.Client
	opts        Options
	log         *logging.Logger
	workspaceID string
	now         func() time.Time
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.Retry.MaxAttempts <= 0 {
		o.Retry = retry.DefaultConfig()
	}
	httpClient := o.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: o.Timeout}
	}
	return &Client{
		http: httpClient,
		opts: o,
		log:  logging.Named("timer"),
		now:  time.Now,
	}
}

// ResolveWorkspace finds the workspace id for a name and pins the client
// to it. A missing workspace is a not-found error; reconciliation cannot
// run without one.
func (c *Client) ResolveWorkspace(ctx context.Context, name string) (string, error) {
	workspaces, err := retry.Do(ctx, c.opts.Retry.MaxAttempts, func() ([]workspaceJSON, error) {
		var resp []workspaceJSON
		if err := c.get(ctx, "/workspaces", nil, &resp); err != nil {
			return nil, err
		}
		return resp, nil
	})
	if err != nil {
		return "", err
	}

	for _, ws := range workspaces {
		if ws.Name == name {
			c.workspaceID = ws.ID
			c.log.Info().Str("workspace", name).Str("workspace_id", ws.ID).Msg("workspace resolved")
			return ws.ID, nil
		}
	}
	return "", errors.NewNotFoundError("workspace", name)
}

// ResolveUserID finds the user id for an email within the resolved
// workspace. A missing user is a not-found error, fatal at startup.
func (c *Client) ResolveUserID(ctx context.Context, email string) (string, error) {
	if err := c.requireWorkspace(); err != nil {
		return "", err
	}

	users, err := retry.Do(ctx, c.opts.Retry.MaxAttempts, func() ([]userJSON, error) {
		var resp []userJSON
		if err := c.get(ctx, "/workspaces/"+c.workspaceID+"/users", nil, &resp); err != nil {
			return nil, err
		}
		return resp, nil
	})
	if err != nil {
		return "", err
	}

	for _, user := range users {
		if user.Email == email {
			c.log.Info().Str("email", email).Str("user_id", user.ID).Msg("user resolved")
			return user.ID, nil
		}
	}
	return "", errors.NewNotFoundError("user", email)
}

// FindProjectByName returns the project with the exact given name, or
// nil when no project matches. The comparison is case-sensitive.
func (c *Client) FindProjectByName(ctx context.Context, name string) (*domain.TimerProject, error) {
	if err := c.requireWorkspace(); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("page-size", strconv.Itoa(projectPageSize))

	projects, err := retry.Do(ctx, c.opts.Retry.MaxAttempts, func() ([]projectJSON, error) {
		var resp []projectJSON
		if err := c.get(ctx, "/workspaces/"+c.workspaceID+"/projects", query, &resp); err != nil {
			return nil, err
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	for _, project := range projects {
		if project.Name == name {
			found := project.toDomain()
			return &found, nil
		}
	}
	return nil, nil
}

// CreateProject creates a private, non-billable project with the given name
func (c *Client) CreateProject(ctx context.Context, name string) (*domain.TimerProject, error) {
	if err := c.requireWorkspace(); err != nil {
		return nil, err
	}

	body := createProjectRequest{Name: name, IsPublic: false, Billable: false}
	created, err := retry.DoWithDelay(ctx, c.opts.Retry, func() (*projectJSON, error) {
		var resp projectJSON
		if err := c.post(ctx, "/workspaces/"+c.workspaceID+"/projects", body, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	})
	if err != nil {
		return nil, err
	}

	c.log.Info().Str("project", name).Str("project_id", created.ID).Msg("project created")
	project := created.toDomain()
	return &project, nil
}

// ListTasks returns every task of a project
func (c *Client) ListTasks(ctx context.Context, projectID string) ([]domain.TimerTask, error) {
	if err := c.requireWorkspace(); err != nil {
		return nil, err
	}

	tasks, err := retry.Do(ctx, c.opts.Retry.MaxAttempts, func() ([]taskJSON, error) {
		var resp []taskJSON
		if err := c.get(ctx, c.tasksPath(projectID), nil, &resp); err != nil {
			return nil, err
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	result := make([]domain.TimerTask, 0, len(tasks))
	for _, task := range tasks {
		result = append(result, task.toDomain())
	}
	return result, nil
}

// GetTask returns a single task, or nil when the id does not resolve
func (c *Client) GetTask(ctx context.Context, projectID, taskID string) (*domain.TimerTask, error) {
	if err := c.requireWorkspace(); err != nil {
		return nil, err
	}

	task, err := retry.Do(ctx, c.opts.Retry.MaxAttempts, func() (*taskJSON, error) {
		var resp taskJSON
		if err := c.get(ctx, c.tasksPath(projectID)+"/"+taskID, nil, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	})
	if err != nil {
		if statusOf(err) == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}

	found := task.toDomain()
	return &found, nil
}

// CreateTask creates a task in the given project
func (c *Client) CreateTask(ctx context.Context, projectID string, fields domain.TaskFields) (*domain.TimerTask, error) {
	if err := c.requireWorkspace(); err != nil {
		return nil, err
	}

	created, err := retry.DoWithDelay(ctx, c.opts.Retry, func() (*taskJSON, error) {
		var resp taskJSON
		if err := c.post(ctx, c.tasksPath(projectID), fields, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	})
	if err != nil {
		return nil, err
	}

	c.log.Info().Str("task", fields.Name).Str("project_id", projectID).Msg("task created")
	task := created.toDomain()
	return &task, nil
}

// UpdateTask replaces the writable fields of an existing task
func (c *Client) UpdateTask(ctx context.Context, projectID, taskID string, fields domain.TaskFields) error {
	if err := c.requireWorkspace(); err != nil {
		return err
	}

	_, err := retry.DoWithDelay(ctx, c.opts.Retry, func() (*taskJSON, error) {
		var resp taskJSON
		if err := c.put(ctx, c.tasksPath(projectID)+"/"+taskID, fields, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	})
	if err != nil {
		return err
	}

	c.log.Info().Str("task", fields.Name).Str("task_id", taskID).Msg("task updated")
	return nil
}

// ListTimeEntriesForUser returns the user's time entries from since to
// now. Entries without a project id cannot be reconciled and are
// filtered out before returning.
func (c *Client) ListTimeEntriesForUser(ctx context.Context, userID string, since time.Time) ([]domain.TimerTimeEntry, error) {
	if err := c.requireWorkspace(); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("start", since.UTC().Format(timestampFormat))
	query.Set("end", c.now().UTC().Format(timestampFormat))
	query.Set("page", "1")
	query.Set("page-size", strconv.Itoa(entryPageSize))

	entries, err := retry.Do(ctx, c.opts.Retry.MaxAttempts, func() ([]timeEntryJSON, error) {
		var resp []timeEntryJSON
		if err := c.get(ctx, "/workspaces/"+c.workspaceID+"/user/"+userID+"/time-entries", query, &resp); err != nil {
			return nil, err
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	result := make([]domain.TimerTimeEntry, 0, len(entries))
	skipped := 0
	for _, entry := range entries {
		if entry.ProjectID == "" {
			skipped++
			continue
		}
		result = append(result, entry.toDomain())
	}
	if skipped > 0 {
		c.log.Warn().Int("count", skipped).Msg("dropped time entries without a project id")
	}
	return result, nil
}

func (c *Client) tasksPath(projectID string) string {
	return fmt.Sprintf("/workspaces/%s/projects/%s/tasks", c.workspaceID, projectID)
}

func (c *Client) requireWorkspace() error {
	if c.workspaceID == "" {
		return errors.NewValidationError("workspace not resolved; call ResolveWorkspace first", nil)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) put(ctx context.Context, path string, body interface{}, out interface{}) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, out interface{}) error {
	operation := method + " " + path

	target := c.opts.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reqBody *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.NewValidationError("could not encode request body", err)
		}
		reqBody = bytes.NewReader(payload)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return errors.NewRequestError(operation, 0, err)
	}
	req.Header.Set("X-Api-Key", c.opts.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.NewRequestError(operation, 0, err)
	}
	defer resp.Body.Close()

	c.log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("timer http response")

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.NewRequestError(operation, resp.StatusCode, err)
		}
		return nil
	case resp.StatusCode == http.StatusConflict:
		return errors.NewConflictError("resource", path)
	default:
		return errors.NewRequestError(operation, resp.StatusCode, nil)
	}
}

func statusOf(err error) int {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr.StatusCode()
	}
	return 0
}
