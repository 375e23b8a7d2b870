package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"gym-manager/backend/internal/authctx"
	"gym-manager/backend/internal/config"
	"gym-manager/backend/internal/domain/analytics"
	"gym-manager/backend/internal/domain/attendance"
	"gym-manager/backend/internal/domain/device"
	"gym-manager/backend/internal/domain/gym"
	"gym-manager/backend/internal/domain/member"
	"gym-manager/backend/internal/domain/retention"
	"gym-manager/backend/internal/domain/trainer"
	"gym-manager/backend/internal/domain/workout"
	"gym-manager/backend/internal/handlers"
	"gym-manager/backend/internal/httpjson"
	"gym-manager/backend/internal/media"
	"gym-manager/backend/internal/middleware"
	"gym-manager/backend/internal/scope"
)

type RouterDeps struct {
	Cfg          config.Config
	Auth         handlers.AuthClient
	Profiles     handlers.ProfileWriter
	GymSvc       *gym.Service
	TrainerSvc   *trainer.Service
	MemberSvc    *member.Service
	AttendSvc    *attendance.Service
	AnalyticsSvc *analytics.Service
	RetentionSvc *retention.Service
	DeviceSvc    *device.Service
	WorkoutSvc   *workout.Service
	// Signer may be nil; exercise images are then served without URLs.
	Signer media.URLSigner
}

type trainerBody struct {
	OrganizationID string        `json:"organizationId"`
	GymID          string        `json:"gymId"`
	TrainerData    trainer.Input `json:"trainerData"`
}

type memberBody struct {
	OrganizationID string       `json:"organizationId"`
	GymID          string       `json:"gymId"`
	UserData       member.Input `json:"userData"`
}

type markBody struct {
	OrganizationID string               `json:"organizationId"`
	GymID          string               `json:"gymId"`
	Record         attendance.MarkInput `json:"record"`
}

type bulkBody struct {
	OrganizationID string `json:"organizationId"`
	attendance.BulkInput
}

type attendanceUpdateBody struct {
	OrganizationID string `json:"organizationId"`
	GymID          string `json:"gymId"`
	attendance.UpdateInput
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORS(d.Cfg.AllowedOrigins))
	r.Use(middleware.Identify(d.Auth, d.Cfg.SessionCookieName))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpjson.Write(w, 200, map[string]any{"ok": true, "ts": time.Now().UTC().Format(time.RFC3339)})
	})

	authH := handlers.NewAuth(d.Cfg, d.Auth, d.GymSvc, d.Profiles)
	r.Post("/api/auth/signup", authH.Signup)
	r.Post("/api/auth/login", authH.Login)
	r.Get("/api/auth/verify-user", authH.VerifyUser)
	r.Get("/api/auth/verify-gym-access", authH.VerifyGymAccess)
	r.With(middleware.RequireUser).Post("/api/auth/logout", authH.Logout)

	// Everything below requires a caller registered to at least one gym.
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.RequireAccess(d.GymSvc))

		// ===== Trainers =====
		pr.Get("/api/admin/trainers", func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			refs, ok := resolveQueryScope(w, r)
			if !ok {
				return
			}
			out, err := d.TrainerSvc.List(r.Context(), q.Get("organizationId"), refs)
			if err != nil {
				status, msg := mapTrainerError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.List(w, out)
		})

		pr.Post("/api/admin/trainers", func(w http.ResponseWriter, r *http.Request) {
			var body trainerBody
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				httpjson.Error(w, 400, "invalid json")
				return
			}
			in := body.TrainerData
			if strings.TrimSpace(in.GymID) == "" {
				in.GymID = body.GymID
			}
			if _, ok := resolveScope(w, r, body.OrganizationID, in.GymID); !ok {
				return
			}
			out, err := d.TrainerSvc.Create(r.Context(), body.OrganizationID, in)
			if err != nil {
				status, msg := mapTrainerError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.OK(w, 201, out)
		})

		pr.Put("/api/admin/trainers/{id}", func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "id")
			var body trainerBody
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				httpjson.Error(w, 400, "invalid json")
				return
			}
			in := body.TrainerData
			if strings.TrimSpace(in.GymID) == "" {
				in.GymID = body.GymID
			}
			if _, ok := resolveScope(w, r, body.OrganizationID, body.GymID, in.GymID); !ok {
				return
			}
			out, err := d.TrainerSvc.Update(r.Context(), body.OrganizationID, body.GymID, id, in)
			if err != nil {
				status, msg := mapTrainerError(err)
				httpjson.Error(w, status, msg)
				return
			}
			if out.GymID != strings.TrimSpace(body.GymID) {
				releaseTrainer(r, d.MemberSvc, body.OrganizationID, body.GymID, id)
			}
			httpjson.OK(w, 200, out)
		})

		pr.Delete("/api/admin/trainers/{id}", func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if _, ok := resolveScope(w, r, q.Get("organizationId"), q.Get("gymId")); !ok {
				return
			}
			id := chi.URLParam(r, "id")
			if err := d.TrainerSvc.Delete(r.Context(), q.Get("organizationId"), q.Get("gymId"), id); err != nil {
				status, msg := mapTrainerError(err)
				httpjson.Error(w, status, msg)
				return
			}
			releaseTrainer(r, d.MemberSvc, q.Get("organizationId"), q.Get("gymId"), id)
			httpjson.OK(w, 200, nil)
		})

		// ===== Members =====
		pr.Get("/api/admin/users", func(w http.ResponseWriter, r *http.Request) {
			refs, ok := resolveQueryScope(w, r)
			if !ok {
				return
			}
			out, err := d.MemberSvc.List(r.Context(), r.URL.Query().Get("organizationId"), refs)
			if err != nil {
				status, msg := mapMemberError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.List(w, out)
		})

		pr.Post("/api/admin/users", func(w http.ResponseWriter, r *http.Request) {
			var body memberBody
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				httpjson.Error(w, 400, "invalid json")
				return
			}
			in := body.UserData
			if strings.TrimSpace(in.GymID) == "" {
				in.GymID = body.GymID
			}
			if _, ok := resolveScope(w, r, body.OrganizationID, in.GymID); !ok {
				return
			}
			out, err := d.MemberSvc.Create(r.Context(), body.OrganizationID, in)
			if err != nil {
				status, msg := mapMemberError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.OK(w, 201, out)
		})

		pr.Put("/api/admin/users/{id}", func(w http.ResponseWriter, r *http.Request) {
			var body memberBody
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				httpjson.Error(w, 400, "invalid json")
				return
			}
			in := body.UserData
			if strings.TrimSpace(in.GymID) == "" {
				in.GymID = body.GymID
			}
			if _, ok := resolveScope(w, r, body.OrganizationID, body.GymID, in.GymID); !ok {
				return
			}
			out, err := d.MemberSvc.Update(r.Context(), body.OrganizationID, body.GymID, chi.URLParam(r, "id"), in)
			if err != nil {
				status, msg := mapMemberError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.OK(w, 200, out)
		})

		pr.Put("/api/admin/users/{id}/assign-trainer", func(w http.ResponseWriter, r *http.Request) {
			var in member.AssignInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				httpjson.Error(w, 400, "invalid json")
				return
			}
			if _, ok := resolveScope(w, r, in.OrganizationID, in.GymID); !ok {
				return
			}
			if err := d.MemberSvc.AssignTrainer(r.Context(), chi.URLParam(r, "id"), in); err != nil {
				status, msg := mapMemberError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.OK(w, 200, map[string]any{"assignedTrainer": strings.TrimSpace(in.TrainerID)})
		})

		pr.Delete("/api/admin/users/{id}", func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if _, ok := resolveScope(w, r, q.Get("organizationId"), q.Get("gymId")); !ok {
				return
			}
			if err := d.MemberSvc.Delete(r.Context(), q.Get("organizationId"), q.Get("gymId"), chi.URLParam(r, "id")); err != nil {
				status, msg := mapMemberError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.OK(w, 200, nil)
		})

		// ===== Attendance =====
		pr.Get("/api/admin/attendance", func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			refs, ok := resolveQueryScope(w, r)
			if !ok {
				return
			}
			var (
				out scope.Result[attendance.Record]
				err error
			)
			if month := q.Get("month"); month != "" {
				out, err = d.AttendSvc.Month(r.Context(), q.Get("organizationId"), refs, month)
			} else {
				f := attendance.DateFilter{Date: q.Get("date"), From: q.Get("from"), To: q.Get("to")}
				out, err = d.AttendSvc.List(r.Context(), q.Get("organizationId"), refs, f)
			}
			if err != nil {
				status, msg := mapAttendanceError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.List(w, out)
		})

		pr.Post("/api/admin/attendance", func(w http.ResponseWriter, r *http.Request) {
			var body markBody
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				httpjson.Error(w, 400, "invalid json")
				return
			}
			in := body.Record
			if strings.TrimSpace(in.GymID) == "" {
				in.GymID = body.GymID
			}
			if _, ok := resolveScope(w, r, body.OrganizationID, in.GymID); !ok {
				return
			}
			uid, _ := authctx.UID(r.Context())
			out, err := d.AttendSvc.Mark(r.Context(), uid, body.OrganizationID, in)
			if err != nil {
				status, msg := mapAttendanceError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.OK(w, 201, out)
		})

		pr.Post("/api/admin/attendance/bulk", func(w http.ResponseWriter, r *http.Request) {
			var body bulkBody
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				httpjson.Error(w, 400, "invalid json")
				return
			}
			if _, ok := resolveScope(w, r, body.OrganizationID, body.GymID); !ok {
				return
			}
			uid, _ := authctx.UID(r.Context())
			out, err := d.AttendSvc.BulkMark(r.Context(), uid, body.OrganizationID, body.BulkInput)
			if err != nil {
				status, msg := mapAttendanceError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.OK(w, 201, out)
		})

		pr.Put("/api/admin/attendance/{id}", func(w http.ResponseWriter, r *http.Request) {
			var body attendanceUpdateBody
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				httpjson.Error(w, 400, "invalid json")
				return
			}
			if _, ok := resolveScope(w, r, body.OrganizationID, body.GymID); !ok {
				return
			}
			out, err := d.AttendSvc.Update(r.Context(), body.OrganizationID, body.GymID, chi.URLParam(r, "id"), body.UpdateInput)
			if err != nil {
				status, msg := mapAttendanceError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.OK(w, 200, out)
		})

		pr.Get("/api/admin/attendance/calendar", func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			refs, ok := resolveQueryScope(w, r)
			if !ok {
				return
			}
			cal, failed, err := d.AnalyticsSvc.Calendar(r.Context(), q.Get("organizationId"), refs, q.Get("month"))
			if err != nil {
				status, msg := mapAnalyticsError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.Partial(w, cal, failed)
		})

		pr.Get("/api/admin/attendance/stats", func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			refs, ok := resolveQueryScope(w, r)
			if !ok {
				return
			}
			out, err := d.AnalyticsSvc.DayReport(r.Context(), q.Get("organizationId"), refs, q.Get("date"))
			if err != nil {
				status, msg := mapAnalyticsError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.OK(w, 200, out)
		})

		pr.Get("/api/admin/retention", func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			refs, ok := resolveQueryScope(w, r)
			if !ok {
				return
			}
			settings, err := retentionSettings(q)
			if err != nil {
				httpjson.Error(w, 400, err.Error())
				return
			}
			out, err := d.RetentionSvc.Alerts(r.Context(), q.Get("organizationId"), refs, q.Get("asOf"), settings)
			if err != nil {
				status, msg := mapAnalyticsError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.OK(w, 200, out)
		})

		// ===== Devices =====
		pr.Get("/api/admin/devices", func(w http.ResponseWriter, r *http.Request) {
			refs, ok := resolveQueryScope(w, r)
			if !ok {
				return
			}
			out, err := d.DeviceSvc.ListScoped(r.Context(), r.URL.Query().Get("organizationId"), scope.IDs(refs))
			if err != nil {
				status, msg := mapDeviceError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.OK(w, 200, out)
		})

		// ===== Uploads =====
		uploadsH := handlers.NewUploads(d.Signer)
		pr.Post("/api/admin/uploads/signed-url", uploadsH.CreatePhotoUploadURL)

		// ===== Workouts =====
		pr.Get("/api/workouts/exercises", func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			exercises := workout.FilterExercises(q.Get("q"), q.Get("muscle"))
			if d.Signer != nil {
				for i := range exercises {
					u, err := d.Signer.Download(r.Context(), media.ExercisePath(exercises[i].Image), 0)
					if err != nil {
						if !errors.Is(err, media.ErrNotConfigured) {
							log.Printf("[workouts] sign image %s: %v", exercises[i].Image, err)
						}
						break
					}
					exercises[i].ImageURL = u.URL
				}
			}
			httpjson.OK(w, 200, map[string]any{
				"exercises":    exercises,
				"muscleGroups": workout.MuscleGroups,
				"days":         workout.Days,
			})
		})

		pr.Get("/api/workouts/{trainerId}/{userId}", func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if _, ok := resolveScope(w, r, q.Get("organizationId"), q.Get("gymId")); !ok {
				return
			}
			out, err := d.WorkoutSvc.GetOrCreatePlan(r.Context(), q.Get("organizationId"), q.Get("gymId"), chi.URLParam(r, "trainerId"), chi.URLParam(r, "userId"))
			if err != nil {
				status, msg := mapWorkoutError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.OK(w, 200, out)
		})

		pr.Post("/api/workouts/auto-save", func(w http.ResponseWriter, r *http.Request) {
			var in workout.AutoSaveInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				httpjson.Error(w, 400, "invalid json")
				return
			}
			if !planInScope(w, r, d.WorkoutSvc, in.PlanID) {
				return
			}
			out, err := d.WorkoutSvc.AddEntry(r.Context(), in)
			if err != nil {
				status, msg := mapWorkoutError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.OK(w, 201, out)
		})

		pr.Delete("/api/workouts/{planId}/{day}/{muscleId}/{exerciseId}", func(w http.ResponseWriter, r *http.Request) {
			planID := chi.URLParam(r, "planId")
			muscleID, err1 := strconv.Atoi(chi.URLParam(r, "muscleId"))
			exerciseID, err2 := strconv.Atoi(chi.URLParam(r, "exerciseId"))
			if err1 != nil || err2 != nil {
				httpjson.Error(w, 400, "muscleId and exerciseId must be numbers")
				return
			}
			if !planInScope(w, r, d.WorkoutSvc, planID) {
				return
			}
			if err := d.WorkoutSvc.RemoveEntry(r.Context(), planID, chi.URLParam(r, "day"), muscleID, exerciseID); err != nil {
				status, msg := mapWorkoutError(err)
				httpjson.Error(w, status, msg)
				return
			}
			httpjson.OK(w, 200, nil)
		})
	})

	return r
}

// parseGymIDs accepts a JSON array (`["g1","g2"]`) or a comma separated list.
func parseGymIDs(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if strings.HasPrefix(raw, "[") {
		var ids []string
		if err := json.Unmarshal([]byte(raw), &ids); err != nil {
			return nil, err
		}
		return ids, nil
	}
	return strings.Split(raw, ","), nil
}

func resolveQueryScope(w http.ResponseWriter, r *http.Request) ([]scope.Ref, bool) {
	q := r.URL.Query()
	ids, err := parseGymIDs(q.Get("gymIds"))
	if err != nil {
		httpjson.Error(w, 400, "gymIds must be a JSON array of gym ids")
		return nil, false
	}
	return resolveScope(w, r, q.Get("organizationId"), ids...)
}

// resolveScope checks that every gym id belongs to the caller and writes the
// error response when one does not.
func resolveScope(w http.ResponseWriter, r *http.Request, orgID string, gymIDs ...string) ([]scope.Ref, bool) {
	access, ok := authctx.Access(r.Context())
	if !ok {
		httpjson.Error(w, 403, gym.DenialNoGym)
		return nil, false
	}
	refs, err := access.Scope(orgID, gymIDs)
	if err != nil {
		status, msg := mapGymError(err)
		httpjson.Error(w, status, msg)
		return nil, false
	}
	return refs, true
}

// releaseTrainer unassigns members from a trainer that left gymID. The
// trainer change is already committed, so failures are only logged.
func releaseTrainer(r *http.Request, svc *member.Service, orgID, gymID, trainerID string) {
	n, err := svc.ReleaseTrainer(r.Context(), strings.TrimSpace(orgID), strings.TrimSpace(gymID), trainerID)
	if err != nil {
		log.Printf("[trainers] release members of %s in %s: %v", trainerID, gymID, err)
		return
	}
	if n > 0 {
		log.Printf("[trainers] unassigned %d member(s) from %s in %s", n, trainerID, gymID)
	}
}

func planInScope(w http.ResponseWriter, r *http.Request, svc *workout.Service, planID string) bool {
	p, err := svc.Plan(r.Context(), planID)
	if err != nil {
		status, msg := mapWorkoutError(err)
		httpjson.Error(w, status, msg)
		return false
	}
	_, ok := resolveScope(w, r, p.OrganizationID, p.GymID)
	return ok
}

func mapGymError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case gym.IsErrUnauthorized(err):
		return 401, err.Error()
	case gym.IsErrForbidden(err):
		return 403, err.Error()
	case gym.IsErrNotFound(err):
		return 404, err.Error()
	case gym.IsErrBadRequest(err):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapTrainerError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case trainer.IsErrNotFound(err):
		return 404, err.Error()
	case trainer.IsErrBadRequest(err):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapMemberError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case member.IsErrNotFound(err):
		return 404, err.Error()
	case member.IsErrBadRequest(err):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapAttendanceError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case attendance.IsErrNotFound(err):
		return 404, err.Error()
	case attendance.IsErrBadRequest(err):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

func mapAnalyticsError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case analytics.IsErrBadRequest(err), attendance.IsErrBadRequest(err), retention.IsErrBadRequest(err):
		return 400, err.Error()
	default:
		return 500, err.Error()
	}
}

// retentionSettings reads optional overrides of the default thresholds.
func retentionSettings(q url.Values) (retention.Settings, error) {
	s := retention.DefaultSettings()
	if v := q.Get("thresholdDays"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return s, errors.New("thresholdDays must be an integer")
		}
		s.ThresholdDays = n
	}
	for key, dst := range map[string]*float64{"criticalMultiplier": &s.CriticalMultiplier, "watchRatio": &s.WatchRatio} {
		v := q.Get(key)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return s, fmt.Errorf("%s must be a number", key)
		}
		*dst = f
	}
	return s, nil
}

func mapDeviceError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	if device.IsErrBadRequest(err) {
		return 400, err.Error()
	}
	return 500, err.Error()
}

func mapWorkoutError(err error) (int, string) {
	if err == nil {
		return 500, "unknown error"
	}
	switch {
	case workout.IsErrNotFound(err):
		return 404, err.Error()
	case workout.IsErrBadRequest(err):
		return 400, err.Error()
	case workout.IsErrAlreadyExists(err):
		return 409, err.Error()
	default:
		return 500, err.Error()
	}
}
