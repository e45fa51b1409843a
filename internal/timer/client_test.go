package timer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracksync/internal/domain"
	"tracksync/internal/errors"
	"tracksync/internal/retry"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(Options{
		BaseURL: server.URL,
		APIKey:  "timer-key",
		Retry:   retry.Config{MaxAttempts: 2, Delay: time.Millisecond},
	})
}

// resolvedClient returns a client already pinned to workspace ws1
func resolvedClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/workspaces" {
			json.NewEncoder(w).Encode([]workspaceJSON{{ID: "ws1", Name: "Turia"}})
			return
		}
		handler(w, r)
	}))

	_, err := client.ResolveWorkspace(context.Background(), "Turia")
	require.NoError(t, err)
	return client
}

func TestClient_ResolveWorkspace(t *testing.T) {
	t.Run("should resolve a workspace by name", func(t *testing.T) {
		// Arrange
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "timer-key", r.Header.Get("X-Api-Key"))
			json.NewEncoder(w).Encode([]workspaceJSON{
				{ID: "ws0", Name: "Other"},
				{ID: "ws1", Name: "Turia"},
			})
		}))

		// Act
		id, err := client.ResolveWorkspace(context.Background(), "Turia")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "ws1", id)
	})

	t.Run("should fail with not found for an unknown workspace", func(t *testing.T) {
		// Arrange
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode([]workspaceJSON{{ID: "ws0", Name: "Other"}})
		}))

		// Act
		_, err := client.ResolveWorkspace(context.Background(), "Missing")

		// Assert
		assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))
	})
}

func TestClient_ResolveUserID(t *testing.T) {
	t.Run("should resolve a user by email", func(t *testing.T) {
		// Arrange
		client := resolvedClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/workspaces/ws1/users", r.URL.Path)
			json.NewEncoder(w).Encode([]userJSON{
				{ID: "u1", Email: "dev@example.com"},
			})
		})

		// Act
		id, err := client.ResolveUserID(context.Background(), "dev@example.com")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "u1", id)
	})

	t.Run("should fail with not found for an unknown email", func(t *testing.T) {
		// Arrange
		client := resolvedClient(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode([]userJSON{})
		})

		// Act
		_, err := client.ResolveUserID(context.Background(), "nobody@example.com")

		// Assert
		assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))
	})

	t.Run("should require a resolved workspace", func(t *testing.T) {
		// Arrange
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("no request expected")
		}))

		// Act
		_, err := client.ResolveUserID(context.Background(), "dev@example.com")

		// Assert
		assert.True(t, errors.IsErrorType(err, errors.ErrorTypeValidation))
	})
}

func TestClient_FindProjectByName(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/workspaces/ws1/projects", r.URL.Path)
		require.Equal(t, "1000", r.URL.Query().Get("page-size"))
		json.NewEncoder(w).Encode([]projectJSON{
			{ID: "p1", Name: "Alpha"},
			{ID: "p2", Name: "alpha"},
		})
	}

	t.Run("should match the project name case-sensitively", func(t *testing.T) {
		// Arrange
		client := resolvedClient(t, handler)

		// Act
		project, err := client.FindProjectByName(context.Background(), "alpha")

		// Assert
		require.NoError(t, err)
		require.NotNil(t, project)
		assert.Equal(t, "p2", project.ID)
	})

	t.Run("should return nil when absent", func(t *testing.T) {
		// Arrange
		client := resolvedClient(t, handler)

		// Act
		project, err := client.FindProjectByName(context.Background(), "Beta")

		// Assert
		require.NoError(t, err)
		assert.Nil(t, project)
	})
}

func TestClient_CreateProject(t *testing.T) {
	// Arrange
	var posted createProjectRequest
	client := resolvedClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&posted))
		json.NewEncoder(w).Encode(projectJSON{ID: "p9", Name: posted.Name})
	})

	// Act
	project, err := client.CreateProject(context.Background(), "Alpha")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "p9", project.ID)
	assert.Equal(t, "Alpha", posted.Name)
	assert.False(t, posted.IsPublic)
	assert.False(t, posted.Billable)
}

func TestClient_Tasks(t *testing.T) {
	t.Run("should list tasks for a project", func(t *testing.T) {
		// Arrange
		client := resolvedClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/workspaces/ws1/projects/p1/tasks", r.URL.Path)
			json.NewEncoder(w).Encode([]taskJSON{
				{ID: "t1", Name: "[42] Fix login", Status: "ACTIVE"},
			})
		})

		// Act
		tasks, err := client.ListTasks(context.Background(), "p1")

		// Assert
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, domain.TaskStatusActive, tasks[0].Status)
	})

	t.Run("should get a single task", func(t *testing.T) {
		// Arrange
		client := resolvedClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/workspaces/ws1/projects/p1/tasks/t1", r.URL.Path)
			json.NewEncoder(w).Encode(taskJSON{ID: "t1", Name: "[42] Fix login"})
		})

		// Act
		task, err := client.GetTask(context.Background(), "p1", "t1")

		// Assert
		require.NoError(t, err)
		require.NotNil(t, task)
		assert.Equal(t, "[42] Fix login", task.Name)
	})

	t.Run("should return nil for a missing task", func(t *testing.T) {
		// Arrange
		client := resolvedClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		// Act
		task, err := client.GetTask(context.Background(), "p1", "missing")

		// Assert
		require.NoError(t, err)
		assert.Nil(t, task)
	})

	t.Run("should create a task with its metadata", func(t *testing.T) {
		// Arrange
		var posted domain.TaskFields
		client := resolvedClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&posted))
			json.NewEncoder(w).Encode(taskJSON{ID: "t9", Name: posted.Name, Status: string(posted.Status)})
		})

		// Act
		task, err := client.CreateTask(context.Background(), "p1", domain.TaskFields{
			Name:        "[42] Fix login",
			Status:      domain.TaskStatusActive,
			AssigneeIDs: []string{"u1"},
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "t9", task.ID)
		assert.Equal(t, "[42] Fix login", posted.Name)
		assert.Equal(t, []string{"u1"}, posted.AssigneeIDs)
	})

	t.Run("should update a task", func(t *testing.T) {
		// Arrange
		var method string
		client := resolvedClient(t, func(w http.ResponseWriter, r *http.Request) {
			method = r.Method
			require.Equal(t, "/workspaces/ws1/projects/p1/tasks/t1", r.URL.Path)
			json.NewEncoder(w).Encode(taskJSON{ID: "t1"})
		})

		// Act
		err := client.UpdateTask(context.Background(), "p1", "t1", domain.TaskFields{
			Name:   "[42] Fix login flow",
			Status: domain.TaskStatusDone,
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, http.MethodPut, method)
	})
}

func TestClient_ListTimeEntriesForUser(t *testing.T) {
	t.Run("should fetch entries and filter those without a project", func(t *testing.T) {
		// Arrange
		client := resolvedClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/workspaces/ws1/user/u1/time-entries", r.URL.Path)
			require.NotEmpty(t, r.URL.Query().Get("start"))
			require.NotEmpty(t, r.URL.Query().Get("end"))
			json.NewEncoder(w).Encode([]timeEntryJSON{
				{ID: "e1", TaskID: "t1", ProjectID: "p1", TimeInterval: timeIntervalJSON{
					Start: time.Date(2024, 10, 10, 9, 0, 0, 0, time.UTC), Duration: "PT1H30M",
				}},
				{ID: "e2", TaskID: "t2", TimeInterval: timeIntervalJSON{
					Start: time.Date(2024, 10, 10, 11, 0, 0, 0, time.UTC), Duration: "PT1H",
				}},
			})
		})

		// Act
		entries, err := client.ListTimeEntriesForUser(context.Background(), "u1", time.Now().AddDate(0, 0, -7))

		// Assert
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "e1", entries[0].ID)
		assert.Equal(t, "PT1H30M", entries[0].Interval.Duration)
	})

	t.Run("should retry a transient failure", func(t *testing.T) {
		// Arrange
		calls := 0
		client := resolvedClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			json.NewEncoder(w).Encode([]timeEntryJSON{})
		})

		// Act
		entries, err := client.ListTimeEntriesForUser(context.Background(), "u1", time.Now())

		// Assert
		require.NoError(t, err)
		assert.Empty(t, entries)
		assert.Equal(t, 2, calls)
	})
}
