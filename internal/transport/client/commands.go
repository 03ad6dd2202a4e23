package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joshdurbin/js4hs-edge/internal/domain"
	"github.com/joshdurbin/js4hs-edge/internal/linkcheck"
)

// Commands provides command-line operations for the client
type Commands struct {
	client *Client
	out    io.Writer
}

// NewCommands creates a new Commands instance writing to stdout
func NewCommands(client *Client) *Commands {
	return &Commands{
		client: client,
		out:    os.Stdout,
	}
}

// SetOutput redirects command output
func (c *Commands) SetOutput(w io.Writer) {
	c.out = w
}

// CreateJob posts a job and displays the result
func (c *Commands) CreateJob(ctx context.Context, req domain.CreateJobRequest) error {
	job, err := c.client.CreateJob(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Job created:\n")
	c.printJob(job)
	return nil
}

// GetJob retrieves and displays a job
func (c *Commands) GetJob(ctx context.Context, id string) error {
	job, err := c.client.GetJob(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			fmt.Fprintf(c.out, "Job '%s' not found\n", id)
			return nil
		}
		return err
	}

	c.printJob(job)
	return nil
}

// ListJobs displays one page of jobs in a table format
func (c *Commands) ListJobs(ctx context.Context, page int) error {
	result, err := c.client.ListJobs(ctx, page)
	if err != nil {
		return err
	}

	if len(result.Jobs) == 0 {
		fmt.Fprintln(c.out, "No jobs found")
		return nil
	}

	fmt.Fprintf(c.out, "%-38s %-30s %-25s %-20s\n", "ID", "Title", "Employer", "Posted")
	fmt.Fprintln(c.out, strings.Repeat("-", 115))

	for _, job := range result.Jobs {
		fmt.Fprintf(c.out, "%-38s %-30s %-25s %-20s\n",
			job.ID,
			clip(job.Title, 30),
			clip(job.Employer, 25),
			job.CreatedAt.Format("2006-01-02 15:04:05"),
		)
	}

	fmt.Fprintf(c.out, "\nPage %d (%d per page), %d jobs total\n", result.Page, result.PageSize, result.Total)
	return nil
}

// IssueLink requests a QR link and displays it
func (c *Commands) IssueLink(ctx context.Context, target string) error {
	link, err := c.client.IssueLink(ctx, target)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "QR link: %s\n", link.URL)
	fmt.Fprintf(c.out, "Issued At: %s\n", link.IssuedAt.Format(time.RFC3339))
	fmt.Fprintf(c.out, "Expires At: %s\n", link.ExpiresAt.Format(time.RFC3339))
	return nil
}

// ValidateLink asks the server about a link and displays the verdict
func (c *Commands) ValidateLink(ctx context.Context, rawURL string) error {
	result, err := c.client.ValidateLink(ctx, rawURL)
	if err != nil {
		return err
	}

	if result.IsValid {
		fmt.Fprintln(c.out, "Link is valid")
	} else {
		fmt.Fprintln(c.out, "Link is NOT valid")
	}
	if result.Reason != "" {
		fmt.Fprintf(c.out, "Reason: %s\n", result.Reason)
	}
	if result.TimeRemaining != nil {
		fmt.Fprintf(c.out, "Time Remaining: %ds\n", *result.TimeRemaining)
	}
	return nil
}

// WatchLink counts down a link locally until it expires or ctx is done
func (c *Commands) WatchLink(ctx context.Context, rawURL string, maxAge time.Duration, opts ...linkcheck.MonitorOption) error {
	onChange := func(valid bool) {
		if valid {
			fmt.Fprintln(c.out, "Link is valid")
		} else {
			fmt.Fprintln(c.out, "Link has expired")
		}
	}
	countdown := linkcheck.WithCountdown(func(remaining int64) {
		fmt.Fprintf(c.out, "%ds remaining\n", remaining)
	})

	monitor := linkcheck.NewMonitor(rawURL, maxAge, onChange, append([]linkcheck.MonitorOption{countdown}, opts...)...)
	res := monitor.Run(ctx)

	if res.Reason != "" {
		fmt.Fprintf(c.out, "Reason: %s\n", res.Reason)
	}
	return nil
}

func (c *Commands) printJob(job *domain.Job) {
	fmt.Fprintf(c.out, "ID: %s\n", job.ID)
	fmt.Fprintf(c.out, "Title: %s\n", job.Title)
	fmt.Fprintf(c.out, "Employer: %s\n", job.Employer)
	if job.Location != "" {
		fmt.Fprintf(c.out, "Location: %s\n", job.Location)
	}
	if job.Description != "" {
		fmt.Fprintf(c.out, "Description: %s\n", job.Description)
	}
	fmt.Fprintf(c.out, "Posted At: %s\n", job.CreatedAt.Format(time.RFC3339))
}

func clip(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}
