package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gym-manager/backend/internal/domain/analytics"
	"gym-manager/backend/internal/domain/attendance"
	"gym-manager/backend/internal/domain/device"
	"gym-manager/backend/internal/domain/gym"
	"gym-manager/backend/internal/domain/member"
	"gym-manager/backend/internal/domain/retention"
	"gym-manager/backend/internal/domain/trainer"
	"gym-manager/backend/internal/domain/user"
	"gym-manager/backend/internal/domain/workout"
	"gym-manager/backend/internal/scope"
)

// Client talks to the REST backend. The session cookie set by Login is kept
// in a cookie jar and sent with every later request.
type Client struct {
	base    *url.URL
	hc      *http.Client
	idToken string
}

type ClientOption func(*Client)

// WithHTTPClient replaces the default client. Its Jar must be set for
// cookie sessions to work.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.hc = hc }
}

// WithIDToken sends a Firebase ID token as a bearer credential instead of
// relying on the session cookie.
func WithIDToken(tok string) ClientOption {
	return func(c *Client) { c.idToken = tok }
}

func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api url %q", baseURL)
	}
	c := &Client{base: u}
	for _, o := range opts {
		o(c)
	}
	if c.hc == nil {
		jar, _ := cookiejar.New(nil)
		c.hc = &http.Client{Jar: jar, Timeout: 30 * time.Second}
	}
	return c, nil
}

type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	FailedGyms []scope.Failure `json:"failedGyms"`
	Error      string          `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body any) (int, []byte, error) {
	// path segments arrive escaped; keep them so an id holding "/" stays one segment
	u := *c.base
	u.RawPath = c.base.EscapedPath() + path
	unescaped, err := url.PathUnescape(u.RawPath)
	if err != nil {
		return 0, nil, fmt.Errorf("invalid path %q: %w", path, err)
	}
	u.Path = unescaped
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.idToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.idToken)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, raw, nil
}

// call performs a request against an enveloped endpoint and decodes data
// into out when non-nil.
func (c *Client) call(ctx context.Context, method, path string, q url.Values, body, out any) ([]scope.Failure, error) {
	status, raw, err := c.do(ctx, method, path, q, body)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, &APIError{Status: status, Message: errorField(raw)}
	}
	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return env.FailedGyms, nil
}

func scopeQuery(orgID string, gymIDs []string) url.Values {
	q := url.Values{}
	q.Set("organizationId", orgID)
	if len(gymIDs) > 0 {
		b, _ := json.Marshal(gymIDs)
		q.Set("gymIds", string(b))
	}
	return q
}

func keyQuery(orgID, gymID string) url.Values {
	q := url.Values{}
	q.Set("organizationId", orgID)
	q.Set("gymId", gymID)
	return q
}

// ===== auth =====

// IdentityStatus is the answer of the identity check.
type IdentityStatus struct {
	Authenticated bool           `json:"authenticated"`
	User          *user.Identity `json:"user,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// Login exchanges a Firebase ID token for a session cookie.
func (c *Client) Login(ctx context.Context, idToken string) (*user.Identity, error) {
	var out user.Identity
	if _, err := c.call(ctx, http.MethodPost, "/api/auth/login", nil, map[string]string{"idToken": idToken}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyUser returns ErrNoSession when the backend answers 401.
func (c *Client) VerifyUser(ctx context.Context) (*IdentityStatus, error) {
	status, raw, err := c.do(ctx, http.MethodGet, "/api/auth/verify-user", nil, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		return nil, ErrNoSession
	}
	if status != http.StatusOK {
		return nil, &APIError{Status: status, Message: errorField(raw)}
	}
	var out IdentityStatus
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode verify-user: %w", err)
	}
	return &out, nil
}

// VerifyGymAccess treats 403 as a regular "not authorized" answer.
func (c *Client) VerifyGymAccess(ctx context.Context) (*gym.AccessResult, error) {
	status, raw, err := c.do(ctx, http.MethodGet, "/api/auth/verify-gym-access", nil, nil)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK, http.StatusForbidden:
	case http.StatusUnauthorized:
		return nil, ErrNoSession
	default:
		return nil, &APIError{Status: status, Message: errorField(raw)}
	}
	var out gym.AccessResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode verify-gym-access: %w", err)
	}
	if status == http.StatusForbidden {
		out.Authorized = false
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := c.call(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil)
	return err
}

func errorField(raw []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(raw, &e)
	return e.Error
}

// ===== trainers =====

func (c *Client) ListTrainers(ctx context.Context, orgID string, gymIDs []string) ([]trainer.Trainer, []scope.Failure, error) {
	var out []trainer.Trainer
	failed, err := c.call(ctx, http.MethodGet, "/api/admin/trainers", scopeQuery(orgID, gymIDs), nil, &out)
	return out, failed, err
}

func (c *Client) CreateTrainer(ctx context.Context, orgID, gymID string, in trainer.Input) (*trainer.Trainer, error) {
	body := map[string]any{"organizationId": orgID, "gymId": gymID, "trainerData": in}
	var out trainer.Trainer
	if _, err := c.call(ctx, http.MethodPost, "/api/admin/trainers", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTrainer overwrites trainer id stored in gymID; in.GymID may name
// another gym to move it.
func (c *Client) UpdateTrainer(ctx context.Context, orgID, gymID, id string, in trainer.Input) (*trainer.Trainer, error) {
	body := map[string]any{"organizationId": orgID, "gymId": gymID, "trainerData": in}
	var out trainer.Trainer
	if _, err := c.call(ctx, http.MethodPut, "/api/admin/trainers/"+url.PathEscape(id), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTrainer(ctx context.Context, orgID, gymID, id string) error {
	_, err := c.call(ctx, http.MethodDelete, "/api/admin/trainers/"+url.PathEscape(id), keyQuery(orgID, gymID), nil, nil)
	return err
}

// ===== members =====

func (c *Client) ListMembers(ctx context.Context, orgID string, gymIDs []string) ([]member.Member, []scope.Failure, error) {
	var out []member.Member
	failed, err := c.call(ctx, http.MethodGet, "/api/admin/users", scopeQuery(orgID, gymIDs), nil, &out)
	return out, failed, err
}

func (c *Client) CreateMember(ctx context.Context, orgID, gymID string, in member.Input) (*member.Member, error) {
	body := map[string]any{"organizationId": orgID, "gymId": gymID, "userData": in}
	var out member.Member
	if _, err := c.call(ctx, http.MethodPost, "/api/admin/users", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateMember(ctx context.Context, orgID, gymID, id string, in member.Input) (*member.Member, error) {
	body := map[string]any{"organizationId": orgID, "gymId": gymID, "userData": in}
	var out member.Member
	if _, err := c.call(ctx, http.MethodPut, "/api/admin/users/"+url.PathEscape(id), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteMember(ctx context.Context, orgID, gymID, id string) error {
	_, err := c.call(ctx, http.MethodDelete, "/api/admin/users/"+url.PathEscape(id), keyQuery(orgID, gymID), nil, nil)
	return err
}

// AssignTrainer sets the member's trainer; an empty trainerID clears it.
func (c *Client) AssignTrainer(ctx context.Context, orgID, gymID, memberID, trainerID string) error {
	body := member.AssignInput{OrganizationID: orgID, GymID: gymID, TrainerID: trainerID}
	_, err := c.call(ctx, http.MethodPut, "/api/admin/users/"+url.PathEscape(memberID)+"/assign-trainer", nil, body, nil)
	return err
}

// ===== attendance =====

func (c *Client) ListAttendance(ctx context.Context, orgID string, gymIDs []string, f attendance.DateFilter) ([]attendance.Record, []scope.Failure, error) {
	q := scopeQuery(orgID, gymIDs)
	if f.Date != "" {
		q.Set("date", f.Date)
	}
	if f.From != "" {
		q.Set("from", f.From)
	}
	if f.To != "" {
		q.Set("to", f.To)
	}
	var out []attendance.Record
	failed, err := c.call(ctx, http.MethodGet, "/api/admin/attendance", q, nil, &out)
	return out, failed, err
}

func (c *Client) MarkAttendance(ctx context.Context, orgID string, in attendance.MarkInput) (*attendance.Record, error) {
	body := map[string]any{"organizationId": orgID, "gymId": in.GymID, "record": in}
	var out attendance.Record
	if _, err := c.call(ctx, http.MethodPost, "/api/admin/attendance", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AttendanceCalendar(ctx context.Context, orgID string, gymIDs []string, month string) (map[string]analytics.DayCounts, []scope.Failure, error) {
	q := scopeQuery(orgID, gymIDs)
	q.Set("month", month)
	out := map[string]analytics.DayCounts{}
	failed, err := c.call(ctx, http.MethodGet, "/api/admin/attendance/calendar", q, nil, &out)
	return out, failed, err
}

func (c *Client) AttendanceStats(ctx context.Context, orgID string, gymIDs []string, date string) (*analytics.Report, error) {
	q := scopeQuery(orgID, gymIDs)
	if date != "" {
		q.Set("date", date)
	}
	var out analytics.Report
	if _, err := c.call(ctx, http.MethodGet, "/api/admin/attendance/stats", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RetentionAlerts lists active members who stopped attending, using the
// default thresholds.
func (c *Client) RetentionAlerts(ctx context.Context, orgID string, gymIDs []string, asOf string) (*retention.Report, error) {
	q := scopeQuery(orgID, gymIDs)
	if asOf != "" {
		q.Set("asOf", asOf)
	}
	var out retention.Report
	if _, err := c.call(ctx, http.MethodGet, "/api/admin/retention", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ===== devices =====

func (c *Client) ListDevices(ctx context.Context, orgID string, gymIDs []string) ([]device.Device, error) {
	var out []device.Device
	_, err := c.call(ctx, http.MethodGet, "/api/admin/devices", scopeQuery(orgID, gymIDs), nil, &out)
	return out, err
}

// ===== workouts =====

// ExerciseLibrary is the answer of the exercises endpoint.
type ExerciseLibrary struct {
	Exercises    []workout.Exercise    `json:"exercises"`
	MuscleGroups []workout.MuscleGroup `json:"muscleGroups"`
	Days         []string              `json:"days"`
}

func (c *Client) Exercises(ctx context.Context, search, muscle string) (*ExerciseLibrary, error) {
	q := url.Values{}
	if search != "" {
		q.Set("q", search)
	}
	if muscle != "" {
		q.Set("muscle", muscle)
	}
	var out ExerciseLibrary
	if _, err := c.call(ctx, http.MethodGet, "/api/workouts/exercises", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) WorkoutPlan(ctx context.Context, orgID, gymID, trainerID, memberID string) (*workout.Plan, error) {
	var out workout.Plan
	path := "/api/workouts/" + url.PathEscape(trainerID) + "/" + url.PathEscape(memberID)
	if _, err := c.call(ctx, http.MethodGet, path, keyQuery(orgID, gymID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SaveWorkoutEntry(ctx context.Context, in workout.AutoSaveInput) (*workout.Entry, error) {
	var out workout.Entry
	if _, err := c.call(ctx, http.MethodPost, "/api/workouts/auto-save", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RemoveWorkoutEntry(ctx context.Context, planID, day string, muscleID, exerciseID int) error {
	path := "/api/workouts/" + url.PathEscape(planID) + "/" + url.PathEscape(day) + "/" +
		strconv.Itoa(muscleID) + "/" + strconv.Itoa(exerciseID)
	_, err := c.call(ctx, http.MethodDelete, path, nil, nil, nil)
	return err
}
