package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// WorkerResponse — воркер из admin API.
type WorkerResponse struct {
	ID            string   `json:"id"`
	Tools         []string `json:"tools"`
	Tags          []string `json:"tags"`
	RegisteredAt  string   `json:"registered_at"`
	LastHeartbeat string   `json:"last_heartbeat"`
	Draining      bool     `json:"draining"`
	Alive         bool     `json:"alive"`
}

// QueueResponse — длина очереди из admin API.
type QueueResponse struct {
	Name   string `json:"name"`
	Length int    `json:"length"`
}

// PlanStatusResponse — plan со сводкой статусов job.
type PlanStatusResponse struct {
	PlanID      string         `json:"plan_id"`
	ActionID    string         `json:"action_id"`
	Description string         `json:"plan_description,omitempty"`
	Digest      string         `json:"digest"`
	JobIDs      []string       `json:"job_ids"`
	SubmittedAt string         `json:"submitted_at"`
	Statuses    map[string]int `json:"statuses"`
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент admin API сервера Conveyor.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ListWorkers возвращает реестр воркеров.
func (c *Client) ListWorkers(ctx context.Context) ([]WorkerResponse, error) {
	var workers []WorkerResponse
	err := c.get(ctx, "/api/v1/workers", &workers)
	return workers, err
}

// GetWorker возвращает воркера по ID.
func (c *Client) GetWorker(ctx context.Context, id string) (*WorkerResponse, error) {
	var w WorkerResponse
	err := c.get(ctx, "/api/v1/workers/"+id, &w)
	return &w, err
}

// ListQueues возвращает длины очередей.
func (c *Client) ListQueues(ctx context.Context) ([]QueueResponse, error) {
	var queues []QueueResponse
	err := c.get(ctx, "/api/v1/queues", &queues)
	return queues, err
}

// GetPlanStatus возвращает plan со сводкой статусов.
func (c *Client) GetPlanStatus(ctx context.Context, id string) (*PlanStatusResponse, error) {
	var p PlanStatusResponse
	err := c.get(ctx, "/api/v1/plans/"+id, &p)
	return &p, err
}

// --- HTTP helpers ---

// get читает {"data": ...}; ответ списка имеет тот же конверт плюс total.
func (c *Client) get(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return json.Unmarshal(dr.Data, result)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
