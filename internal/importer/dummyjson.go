package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// DefaultURL is the public list the first run imports from.
const DefaultURL = "https://dummyjson.com/todos"

// maxPayload caps the response body read from the remote list.
const maxPayload = 4 << 20

type todosResponse struct {
	Todos []struct {
		ID        int    `json:"id"`
		Todo      string `json:"todo"`
		Completed bool   `json:"completed"`
	} `json:"todos"`
}

// DummyJSONSource reads {"todos":[{"id","todo","completed"}]} from a URL.
type DummyJSONSource struct {
	url    string
	client *http.Client
}

// NewDummyJSONSource creates a source for url. An empty url uses DefaultURL;
// a nil client uses http.DefaultClient.
func NewDummyJSONSource(url string, client *http.Client) *DummyJSONSource {
	if url == "" {
		url = DefaultURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &DummyJSONSource{url: url, client: client}
}

func (s *DummyJSONSource) Name() string { return s.url }

func (s *DummyJSONSource) Fetch(ctx context.Context) ([]RemoteTask, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %s", ErrNetwork, resp.Status)
	}

	var payload todosResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxPayload)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if payload.Todos == nil {
		return nil, fmt.Errorf("%w: missing todos field", ErrDecode)
	}

	out := make([]RemoteTask, 0, len(payload.Todos))
	for _, t := range payload.Todos {
		out = append(out, RemoteTask{
			ExternalID: strconv.Itoa(t.ID),
			Text:       t.Todo,
			Completed:  t.Completed,
		})
	}
	return out, nil
}
