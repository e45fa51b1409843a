// Package tracker provides a typed client for the issue tracker REST API.
// The tracker is the source of truth for work items; the engine reads
// issues from it and writes time entries back.
package tracker

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
	defaultPageSize = 100
	defaultTimeout  = 30 * time.Second
	dateFormat      = "2006-01-02"
)

// Options configures the Client
type Options struct {
	BaseURL  string
	APIKey   string
	PageSize int
	Timeout  time.Duration
	Retry    retry.Config

	// HTTPClient overrides the default client, used by tests
	HTTPClient *http.Client
}

// Client is a typed HTTP wrapper over the Tracker REST API.
// Authentication uses the API key query parameter.
type Client struct {
	http *http.Client
	opts Options
	log  *logging.Logger
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.PageSize <= 0 {
		o.PageSize = defaultPageSize
	}
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
		log:  logging.Named("tracker"),
	}
}

// ListIssuesSince returns every issue created on or after the cutoff
// date, following pagination until a short or empty page. A page failure
// that survives its retries is returned to the caller: a partial issue
// list would corrupt downstream reconciliation decisions.
func (c *Client) ListIssuesSince(ctx context.Context, cutoff time.Time) ([]domain.Issue, error) {
	var issues []domain.Issue
	offset := 0

	for {
		query := url.Values{}
		query.Set("created_on", ">="+cutoff.Format(dateFormat))
		query.Set("offset", strconv.Itoa(offset))
		query.Set("limit", strconv.Itoa(c.opts.PageSize))

		page, err := retry.Do(ctx, c.opts.Retry.MaxAttempts, func() (*issuesResponse, error) {
			var resp issuesResponse
			if err := c.get(ctx, "/issues.json", query, &resp); err != nil {
				return nil, err
			}
			return &resp, nil
		})
		if err != nil {
			return nil, err
		}

		if len(page.Issues) == 0 {
			break
		}
		for _, issue := range page.Issues {
			issues = append(issues, issue.toDomain())
		}
		c.log.Debug().Int("page_size", len(page.Issues)).Int("offset", offset).Msg("fetched issue page")

		if len(page.Issues) < c.opts.PageSize {
			break
		}
		offset += c.opts.PageSize
	}

	c.log.Info().Int("count", len(issues)).Time("cutoff", cutoff).Msg("fetched issues since cutoff")
	return issues, nil
}

// FindIssueBySubject looks an issue up by its exact subject. The match
// is case-sensitive among the candidates the API returns; nil means no
// exact match exists.
func (c *Client) FindIssueBySubject(ctx context.Context, subject string) (*domain.Issue, error) {
	query := url.Values{}
	query.Set("subject", subject)
	query.Set("limit", strconv.Itoa(c.opts.PageSize))

	resp, err := retry.Do(ctx, c.opts.Retry.MaxAttempts, func() (*issuesResponse, error) {
		var r issuesResponse
		if err := c.get(ctx, "/issues.json", query, &r); err != nil {
			return nil, err
		}
		return &r, nil
	})
	if err != nil {
		return nil, err
	}

	for _, candidate := range resp.Issues {
		if candidate.Subject == subject {
			issue := candidate.toDomain()
			return &issue, nil
		}
	}
	return nil, nil
}

// ProjectIDForIssue resolves the project an issue belongs to. A missing
// issue yields a not-found error.
func (c *Client) ProjectIDForIssue(ctx context.Context, issueID string) (int, error) {
	issue, err := c.getIssue(ctx, issueID)
	if err != nil {
		return 0, err
	}
	return issue.Project.ID, nil
}

// IssueExists reports whether the given issue id resolves on the Tracker
func (c *Client) IssueExists(ctx context.Context, issueID string) (bool, error) {
	_, err := c.getIssue(ctx, issueID)
	if err != nil {
		if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ProjectExists reports whether the given project id resolves on the Tracker
func (c *Client) ProjectExists(ctx context.Context, projectID int) (bool, error) {
	_, err := retry.Do(ctx, c.opts.Retry.MaxAttempts, func() (*projectWrapper, error) {
		var resp projectWrapper
		if err := c.get(ctx, fmt.Sprintf("/projects/%d.json", projectID), nil, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	})
	if err != nil {
		if statusOf(err) == http.StatusNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListRecentTimeEntries returns the Tracker time entries spent inside
// the given date window.
func (c *Client) ListRecentTimeEntries(ctx context.Context, from, to time.Time) ([]domain.TrackerTimeEntry, error) {
	query := url.Values{}
	query.Set("from", from.Format(dateFormat))
	query.Set("to", to.Format(dateFormat))

	resp, err := retry.Do(ctx, c.opts.Retry.MaxAttempts, func() (*timeEntriesResponse, error) {
		var r timeEntriesResponse
		if err := c.get(ctx, "/time_entries.json", query, &r); err != nil {
			return nil, err
		}
		return &r, nil
	})
	if err != nil {
		return nil, err
	}

	entries := make([]domain.TrackerTimeEntry, 0, len(resp.TimeEntries))
	for _, entry := range resp.TimeEntries {
		entries = append(entries, entry.toDomain())
	}
	return entries, nil
}

// CreateTimeEntry records worked hours against an issue. The owning
// project is resolved first; creation is retried with a fixed delay on
// transient failures. Conflicts and validation rejections propagate to
// the caller untouched.
func (c *Client) CreateTimeEntry(ctx context.Context, issueID string, hours float64, comments string, spentOn time.Time) (*domain.TrackerTimeEntry, error) {
	id, err := parseIssueID(issueID)
	if err != nil {
		return nil, err
	}

	projectID, err := c.ProjectIDForIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}

	body := createTimeEntryRequest{
		TimeEntry: createTimeEntryBody{
			ProjectID: projectID,
			IssueID:   id,
			Hours:     hours,
			Comments:  comments,
			SpentOn:   spentOn.Format(dateFormat),
		},
	}

	created, err := retry.DoWithDelay(ctx, c.opts.Retry, func() (*timeEntryWrapper, error) {
		var resp timeEntryWrapper
		if err := c.post(ctx, "/time_entries.json", body, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	})
	if err != nil {
		return nil, err
	}

	c.log.Info().Str("issue_id", issueID).Float64("hours", hours).Msg("time entry created")
	entry := created.TimeEntry.toDomain()
	if entry.IssueID == 0 {
		entry.IssueID = id
	}
	if entry.ProjectID == 0 {
		entry.ProjectID = projectID
	}
	return &entry, nil
}

func (c *Client) getIssue(ctx context.Context, issueID string) (*issueJSON, error) {
	if _, err := parseIssueID(issueID); err != nil {
		return nil, err
	}

	resp, err := retry.Do(ctx, c.opts.Retry.MaxAttempts, func() (*issueWrapper, error) {
		var r issueWrapper
		if err := c.get(ctx, "/issues/"+issueID+".json", nil, &r); err != nil {
			return nil, err
		}
		return &r, nil
	})
	if err != nil {
		if statusOf(err) == http.StatusNotFound {
			return nil, errors.NewNotFoundError("issue", issueID)
		}
		return nil, err
	}
	return &resp.Issue, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, out interface{}) error {
	operation := method + " " + path

	if query == nil {
		query = url.Values{}
	}
	query.Set("key", c.opts.APIKey)

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

	req, err := http.NewRequestWithContext(ctx, method, c.opts.BaseURL+path+"?"+query.Encode(), reqBody)
	if err != nil {
		return errors.NewRequestError(operation, 0, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.NewRequestError(operation, 0, err)
	}
	defer resp.Body.Close()

	c.log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("tracker http response")

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
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return errors.NewValidationError("request rejected by tracker", nil).WithContext("operation", operation)
	default:
		return errors.NewRequestError(operation, resp.StatusCode, nil)
	}
}

func parseIssueID(issueID string) (int, error) {
	id, err := strconv.Atoi(issueID)
	if err != nil || id < 0 {
		return 0, errors.NewValidationError("issue id is not numeric", err).WithContext("issue_id", issueID)
	}
	return id, nil
}

func statusOf(err error) int {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr.StatusCode()
	}
	return 0
}
