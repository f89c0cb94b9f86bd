package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"chesstwist/internal/client/display"
	"chesstwist/internal/core"
)

// Error is a non-2xx reply from the server
type Error struct {
	Status   int
	Response core.ErrorResponse
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%d %s: %s", e.Status, e.Response.Code, e.Response.Error)
	if e.Response.Details != "" {
		msg += " (" + e.Response.Details + ")"
	}
	return msg
}

type HealthResponse struct {
	Status  string `json:"status"`
	Time    int64  `json:"time"`
	Storage string `json:"storage"`
	Games   int    `json:"games"`
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Verbose    bool
	Log        io.Writer // Request trace when Verbose
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			// Long-poll waits run up to 25s server side
			Timeout: 35 * time.Second,
		},
		Log: io.Discard,
	}
}

// SetBaseURL updates the API base URL for the client
func (c *Client) SetBaseURL(u string) {
	c.BaseURL = strings.TrimRight(u, "/")
}

func (c *Client) tracef(format string, args ...any) {
	if c.Verbose {
		fmt.Fprintf(c.Log, format, args...)
	}
}

func (c *Client) doRequest(method, path, token string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(jsonData)
		c.tracef("%s[API] %s %s%s\n%s\n", display.Blue, method, path, display.Reset, jsonData)
	} else {
		c.tracef("%s[API] %s %s%s\n", display.Blue, method, path, display.Reset)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, bodyReader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	statusColor := display.Green
	if resp.StatusCode >= 400 {
		statusColor = display.Red
	}
	c.tracef("%s[%d %s]%s\n", statusColor, resp.StatusCode, http.StatusText(resp.StatusCode), display.Reset)

	if resp.StatusCode >= 400 {
		apiErr := &Error{Status: resp.StatusCode}
		if err := json.Unmarshal(respBody, &apiErr.Response); err != nil {
			apiErr.Response.Error = strings.TrimSpace(string(respBody))
		}
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("response parse error: %w", err)
		}
	}
	return nil
}

func gamePath(gameID string, suffix ...string) string {
	return "/api/v1/games/" + url.PathEscape(gameID) + strings.Join(suffix, "")
}

// API Methods

func (c *Client) Health() (*HealthResponse, error) {
	var resp HealthResponse
	err := c.doRequest(http.MethodGet, "/health", "", nil, &resp)
	return &resp, err
}

func (c *Client) CreateGame(req core.CreateGameRequest) (*core.GameResponse, error) {
	var resp core.GameResponse
	err := c.doRequest(http.MethodPost, "/api/v1/games", "", req, &resp)
	return &resp, err
}

func (c *Client) GetGame(gameID string) (*core.GameResponse, error) {
	var resp core.GameResponse
	err := c.doRequest(http.MethodGet, gamePath(gameID), "", nil, &resp)
	return &resp, err
}

// WaitGame blocks until the game moves past moveCount or the server times out
func (c *Client) WaitGame(gameID string, moveCount int) (*core.GameResponse, error) {
	var resp core.GameResponse
	path := fmt.Sprintf("%s?wait=true&moveCount=%d", gamePath(gameID), moveCount)
	err := c.doRequest(http.MethodGet, path, "", nil, &resp)
	return &resp, err
}

func (c *Client) DeleteGame(gameID, token string) error {
	return c.doRequest(http.MethodDelete, gamePath(gameID), token, nil, nil)
}

func (c *Client) MakeMove(gameID, token, from, to string) (*core.GameResponse, error) {
	var resp core.GameResponse
	req := core.MoveRequest{From: from, To: to}
	err := c.doRequest(http.MethodPost, gamePath(gameID, "/moves"), token, req, &resp)
	return &resp, err
}

func (c *Client) Promote(gameID, token, piece string) (*core.GameResponse, error) {
	var resp core.GameResponse
	req := core.PromotionRequest{Piece: piece}
	err := c.doRequest(http.MethodPost, gamePath(gameID, "/promotion"), token, req, &resp)
	return &resp, err
}

func (c *Client) UndoMoves(gameID, token string, count int) (*core.GameResponse, error) {
	var resp core.GameResponse
	req := core.UndoRequest{Count: count}
	err := c.doRequest(http.MethodPost, gamePath(gameID, "/undo"), token, req, &resp)
	return &resp, err
}

func (c *Client) ResetGame(gameID, token string) (*core.GameResponse, error) {
	var resp core.GameResponse
	err := c.doRequest(http.MethodPost, gamePath(gameID, "/reset"), token, nil, &resp)
	return &resp, err
}

func (c *Client) GetBoard(gameID string) (*core.BoardResponse, error) {
	var resp core.BoardResponse
	err := c.doRequest(http.MethodGet, gamePath(gameID, "/board"), "", nil, &resp)
	return &resp, err
}

func (c *Client) LegalMoves(gameID, square string) (*core.LegalMovesResponse, error) {
	var resp core.LegalMovesResponse
	path := gamePath(gameID, "/legal?square="+url.QueryEscape(square))
	err := c.doRequest(http.MethodGet, path, "", nil, &resp)
	return &resp, err
}
