// Package googletasks reads a Google Tasks list as an import source.
package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"todo/internal/config"
	"todo/internal/importer"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// PageSize is the number of tasks per page.
	PageSize = 100

	// Scope is the read-only OAuth scope for Google Tasks.
	Scope = "https://www.googleapis.com/auth/tasks.readonly"

	statusCompleted = "completed"
)

// TaskList is a Google Tasks list as shown by `todo lists`.
type TaskList struct {
	ID        string
	Title     string
	IsDefault bool
}

// Client reads tasks from one Google Tasks list.
// It implements importer.Source.
type Client struct {
	svc    *tasks.Service
	listID string
}

var _ importer.Source = (*Client)(nil)

// New creates a Google Tasks client for the list named in cfg.Import.GoogleList.
// Requires oauth_client.json and token.json to exist.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	oauthConfig, err := OAuthConfig(cfg)
	if err != nil {
		return nil, err
	}

	token, err := LoadToken(cfg.TokenPath())
	if err != nil {
		return nil, err
	}

	// Token source auto-refreshes.
	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, token))

	return NewWithHTTPClient(ctx, httpClient, cfg.Import.GoogleList)
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
// Extra options such as option.WithEndpoint are passed to the API service.
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, listID string, opts ...option.ClientOption) (*Client, error) {
	if listID == "" {
		listID = DefaultListID
	}
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return &Client{svc: svc, listID: listID}, nil
}

func (c *Client) Name() string {
	return "google tasks list " + c.listID
}

// Fetch returns every task of the list, completed and hidden ones included,
// in API order.
func (c *Client) Fetch(ctx context.Context) ([]importer.RemoteTask, error) {
	var result []importer.RemoteTask
	err := c.svc.Tasks.List(c.listID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowHidden(true).
		ShowDeleted(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, t := range resp.Items {
				result = append(result, importer.RemoteTask{
					ExternalID: t.Id,
					Text:       t.Title,
					Completed:  t.Status == statusCompleted,
				})
			}
			return nil
		})
	if err != nil {
		return nil, wrapError(err)
	}
	if result == nil {
		result = []importer.RemoteTask{}
	}
	return result, nil
}

// ListLists returns all task lists in API order.
func (c *Client) ListLists(ctx context.Context) ([]TaskList, error) {
	// The default list's real ID is needed to flag it.
	defaultList, err := c.svc.Tasklists.Get(DefaultListID).Context(ctx).Do()
	if err != nil {
		return nil, wrapError(err)
	}

	var result []TaskList
	err = c.svc.Tasklists.List().MaxResults(100).Pages(ctx, func(resp *tasks.TaskLists) error {
		for _, list := range resp.Items {
			result = append(result, TaskList{
				ID:        list.Id,
				Title:     list.Title,
				IsDefault: list.Id == defaultList.Id,
			})
		}
		return nil
	})
	if err != nil {
		return nil, wrapError(err)
	}
	return result, nil
}

// wrapError classifies API errors for the importer with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %v", importer.ErrDecode, err)
	}

	errStr := err.Error()

	if strings.Contains(errStr, "context deadline exceeded") {
		return fmt.Errorf("%w: request timed out", importer.ErrNetwork)
	}

	if strings.Contains(errStr, "401") || strings.Contains(errStr, "403") {
		return fmt.Errorf("%w: token expired or revoked (run: todo login)", importer.ErrNetwork)
	}

	if strings.Contains(errStr, "404") {
		return fmt.Errorf("%w: list not found", importer.ErrNetwork)
	}

	return fmt.Errorf("%w: %v", importer.ErrNetwork, err)
}
