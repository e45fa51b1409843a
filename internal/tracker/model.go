package tracker

import (
	"time"

	"tracksync/internal/domain"
)

// Wire representations of the Tracker REST payloads. Only the fields the
// engine consumes are mapped; everything else the API returns is dropped
// at decode time.

type namedRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type issueJSON struct {
	ID          int       `json:"id"`
	Subject     string    `json:"subject"`
	Description string    `json:"description"`
	Status      namedRef  `json:"status"`
	Project     namedRef  `json:"project"`
	AssignedTo  *namedRef `json:"assigned_to,omitempty"`
}

type issuesResponse struct {
	Issues     []issueJSON `json:"issues"`
	TotalCount int         `json:"total_count"`
	Offset     int         `json:"offset"`
	Limit      int         `json:"limit"`
}

type issueWrapper struct {
	Issue issueJSON `json:"issue"`
}

type projectWrapper struct {
	Project namedRef `json:"project"`
}

type timeEntryJSON struct {
	ID       int      `json:"id"`
	Issue    idRef    `json:"issue"`
	Project  idRef    `json:"project"`
	Hours    float64  `json:"hours"`
	Comments string   `json:"comments"`
	SpentOn  dateOnly `json:"spent_on"`
}

type idRef struct {
	ID int `json:"id"`
}

type timeEntriesResponse struct {
	TimeEntries []timeEntryJSON `json:"time_entries"`
}

type timeEntryWrapper struct {
	TimeEntry timeEntryJSON `json:"time_entry"`
}

type createTimeEntryRequest struct {
	TimeEntry createTimeEntryBody `json:"time_entry"`
}

type createTimeEntryBody struct {
	ProjectID int     `json:"project_id"`
	IssueID   int     `json:"issue_id"`
	Hours     float64 `json:"hours"`
	Comments  string  `json:"comments"`
	SpentOn   string  `json:"spent_on"`
}

// dateOnly unmarshals the Tracker's "2006-01-02" date fields
type dateOnly struct {
	time.Time
}

func (d *dateOnly) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		return nil
	}
	parsed, err := time.Parse(`"2006-01-02"`, s)
	if err != nil {
		return err
	}
	d.Time = parsed
	return nil
}

func (i issueJSON) toDomain() domain.Issue {
	issue := domain.Issue{
		ID:          i.ID,
		Subject:     i.Subject,
		Description: i.Description,
		Status:      i.Status.Name,
		Project: domain.ProjectRef{
			ID:   i.Project.ID,
			Name: i.Project.Name,
		},
	}
	if i.AssignedTo != nil {
		name := i.AssignedTo.Name
		issue.Assignee = &name
	}
	return issue
}

func (e timeEntryJSON) toDomain() domain.TrackerTimeEntry {
	return domain.TrackerTimeEntry{
		ID:        e.ID,
		IssueID:   e.Issue.ID,
		ProjectID: e.Project.ID,
		Hours:     e.Hours,
		Comments:  e.Comments,
		SpentOn:   e.SpentOn.Time,
	}
}
