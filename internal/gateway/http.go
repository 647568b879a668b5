package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fairwaylabs/scorecard/internal/common"
	"github.com/fairwaylabs/scorecard/internal/models"
)

// HTTPClient implements Client over plain HTTP/JSON. Timeout behavior
// belongs to the injected http.Client; the gateway itself never retries.
type HTTPClient struct {
	baseURL  string
	http     *http.Client
	identity IdentitySource
}

// NewHTTPClient builds a gateway for the backend at baseURL. When httpClient
// is nil, http.DefaultClient is used. identity may be nil; requests then go
// out without the username header.
func NewHTTPClient(baseURL string, httpClient *http.Client, identity IdentitySource) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     httpClient,
		identity: identity,
	}
}

// do performs one request/response exchange. A non-nil in is JSON-encoded
// as the body; a non-nil out receives the decoded response body.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if c.identity != nil {
		username, err := c.identity.Username(ctx)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("failed to resolve identity: %w", err)
		}
		if username != "" {
			req.Header.Set(common.UsernameHeaderName, username)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: %s %s returned %s", common.ErrServer, method, path, resp.Status)
	}
	if resp.StatusCode == http.StatusConflict {
		return fmt.Errorf("%w: %s %s returned %s", common.ErrConflictNotResolved, method, path, resp.Status)
	}
	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: %s %s returned %s: %s", common.ErrValidation, method, path, resp.Status, strings.TrimSpace(string(msg)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *HTTPClient) ListRounds(ctx context.Context) ([]models.Round, error) {
	var wires []RoundWire
	if err := c.do(ctx, http.MethodGet, "/rounds", nil, &wires); err != nil {
		return nil, err
	}
	result := make([]models.Round, 0, len(wires))
	for _, w := range wires {
		result = append(result, RoundFromWire(w))
	}
	return result, nil
}

func (c *HTTPClient) CreateRound(ctx context.Context, rd models.Round) (*models.Round, error) {
	var created RoundWire
	req := map[string]RoundWire{"round": RoundToWire(rd)}
	if err := c.do(ctx, http.MethodPost, "/rounds", req, &created); err != nil {
		return nil, err
	}
	out := RoundFromWire(created)
	return &out, nil
}

func (c *HTTPClient) UpdateRound(ctx context.Context, rd models.Round) (*models.Round, error) {
	if rd.ServerID == nil {
		return nil, fmt.Errorf("%w: round has no server id", common.ErrValidation)
	}
	var updated RoundWire
	req := map[string]RoundWire{"round": RoundToWire(rd)}
	path := fmt.Sprintf("/rounds/%d", *rd.ServerID)
	if err := c.do(ctx, http.MethodPut, path, req, &updated); err != nil {
		return nil, err
	}
	out := RoundFromWire(updated)
	return &out, nil
}

func (c *HTTPClient) DeleteRound(ctx context.Context, serverID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/rounds/%d", serverID), nil, nil)
}

// dataEnvelope is the {"data": ...} wrapper the backend uses on reads of
// courses, the bag, and hole definitions.
type dataEnvelope[T any] struct {
	Data T `json:"data"`
}

func (c *HTTPClient) ListCourses(ctx context.Context) ([]models.Course, error) {
	var env dataEnvelope[[]CourseWire]
	if err := c.do(ctx, http.MethodGet, "/courses", nil, &env); err != nil {
		return nil, err
	}
	result := make([]models.Course, 0, len(env.Data))
	for _, w := range env.Data {
		result = append(result, CourseFromWire(w))
	}
	return result, nil
}

func (c *HTTPClient) CreateCourse(ctx context.Context, course models.Course) (*models.Course, error) {
	var env dataEnvelope[CourseWire]
	req := map[string]CourseWire{"course": CourseToWire(course)}
	if err := c.do(ctx, http.MethodPost, "/courses", req, &env); err != nil {
		return nil, err
	}
	out := CourseFromWire(env.Data)
	return &out, nil
}

func (c *HTTPClient) UpdateCourse(ctx context.Context, course models.Course) (*models.Course, error) {
	if course.ServerID == nil {
		return nil, fmt.Errorf("%w: course has no server id", common.ErrValidation)
	}
	var env dataEnvelope[CourseWire]
	req := map[string]CourseWire{"course": CourseToWire(course)}
	path := fmt.Sprintf("/courses/%d", *course.ServerID)
	if err := c.do(ctx, http.MethodPut, path, req, &env); err != nil {
		return nil, err
	}
	out := CourseFromWire(env.Data)
	return &out, nil
}

func (c *HTTPClient) UpdateHoleDefinition(ctx context.Context, hd models.HoleDefinition) (*models.HoleDefinition, error) {
	if hd.ServerID == nil {
		return nil, fmt.Errorf("%w: hole definition has no server id", common.ErrValidation)
	}
	var env dataEnvelope[HoleDefinitionWire]
	req := map[string]HoleDefinitionWire{"hole_definition": HoleDefinitionToWire(hd)}
	path := fmt.Sprintf("/hole_definitions/%d", *hd.ServerID)
	if err := c.do(ctx, http.MethodPut, path, req, &env); err != nil {
		return nil, err
	}
	out := HoleDefinitionFromWire(env.Data)
	return &out, nil
}

func (c *HTTPClient) GetBag(ctx context.Context) ([]models.Club, error) {
	var env dataEnvelope[[]ClubWire]
	if err := c.do(ctx, http.MethodGet, "/bag", nil, &env); err != nil {
		return nil, err
	}
	result := make([]models.Club, 0, len(env.Data))
	for _, w := range env.Data {
		result = append(result, ClubFromWire(w))
	}
	return result, nil
}

// ReplaceBag ships the whole bag in one request; the server swaps its copy
// wholesale and returns the stored set with ids assigned.
func (c *HTTPClient) ReplaceBag(ctx context.Context, clubs []models.Club) ([]models.Club, error) {
	wires := make([]ClubWire, 0, len(clubs))
	for _, club := range clubs {
		wires = append(wires, ClubToWire(club))
	}
	var env dataEnvelope[[]ClubWire]
	req := map[string][]ClubWire{"clubs": wires}
	if err := c.do(ctx, http.MethodPost, "/bag", req, &env); err != nil {
		return nil, err
	}
	result := make([]models.Club, 0, len(env.Data))
	for _, w := range env.Data {
		result = append(result, ClubFromWire(w))
	}
	return result, nil
}
