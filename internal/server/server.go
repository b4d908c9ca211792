// Package server exposes the staff API over HTTP: auth, tasks, notices,
// repairs, contacts and profile. It is the backend counterpart of the
// mobile client; the stores behind it are the same ones the CLI drives.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"mzstay/internal/config"
	"mzstay/internal/contacts"
	"mzstay/internal/domain"
	"mzstay/internal/profile"
	"mzstay/internal/storage"
	"mzstay/internal/store"
	"mzstay/internal/validate"
)

// Config wires the HTTP API handler.
type Config struct {
	Tasks    *store.Tasks
	Notices  *store.Notices
	Repairs  *store.Repairs
	KV       storage.KV
	App      *config.Config
	BasePath string
	Log      *zap.Logger
	Now      func() time.Time
}

type apiErrorBody struct {
	Code    string         `json:"code" example:"not_found"`
	Message string         `json:"message" example:"task not found"`
	Details map[string]any `json:"details,omitempty" jsonschema:"type=object,additionalProperties=true"`
}

// apiError models the error envelope.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

// New returns the HTTP handler.
func New(cfg Config) (http.Handler, error) {
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/v1"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity {
			status = http.StatusBadRequest
		}
		return newAPIError(status, "", msg, nil)
	}

	router := chi.NewRouter()
	router.Use(newAuthMiddleware(basePath, cfg.App.Server.JWTSecret))
	hcfg := huma.DefaultConfig("MZStay Staff API", "1.0.0")
	hcfg.OpenAPIPath = "/openapi"
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	registerHealth(group)
	registerAuth(group, cfg)
	registerTasks(group, cfg)
	registerNotices(group, cfg)
	registerRepairs(group, cfg)
	registerContacts(group)
	registerProfile(group, cfg)
	registerOpenAPI(router, api, basePath)

	return router, nil
}

func newAPIError(status int, code, message string, details map[string]any) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{
		status: status,
		Body:   apiErrorBody{Code: code, Message: message, Details: details},
	}
}

func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return newAPIError(http.StatusNotFound, "not_found", err.Error(), nil)
	}
	msg := err.Error()
	lowered := strings.ToLower(msg)
	switch {
	case strings.Contains(lowered, "invalid") || strings.Contains(lowered, "required"):
		return newAPIError(http.StatusBadRequest, "bad_request", msg, nil)
	default:
		return newAPIError(http.StatusInternalServerError, "internal_error", "internal error", map[string]any{"error": msg})
	}
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}

func registerAuth(api huma.API, cfg Config) {
	huma.Register(api, huma.Operation{
		OperationID: "auth-login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Exchange credentials for a token",
	}, func(ctx context.Context, input *struct {
		Body LoginRequest `json:"body"`
	}) (*struct {
		Body LoginResponse `json:"body"`
	}, error) {
		username, password, errs := validate.LoginForm(input.Body.Username, input.Body.Password)
		if len(errs) > 0 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "username and password required", nil)
		}
		if username != cfg.App.LocalLogin.Username || password != cfg.App.LocalLogin.Password {
			return nil, newAPIError(http.StatusUnauthorized, "invalid_credentials", "invalid username or password", nil)
		}
		token, err := mintToken(cfg.App.Server.JWTSecret, username, cfg.App.LocalLogin.Role, cfg.Now())
		if err != nil {
			return nil, handleError(err)
		}
		cfg.Log.Info("staff signed in", zap.String("username", username))
		return &struct {
			Body LoginResponse `json:"body"`
		}{Body: LoginResponse{Token: token}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "auth-me",
		Method:      http.MethodGet,
		Path:        "/auth/me",
		Summary:     "Profile behind the presented token",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body MeResponse `json:"body"`
	}, error) {
		p, authErr := requirePrincipal(ctx)
		if authErr != nil {
			return nil, authErr
		}
		return &struct {
			Body MeResponse `json:"body"`
		}{Body: MeResponse{Username: p.Username, Role: p.Role}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "auth-forgot",
		Method:      http.MethodPost,
		Path:        "/auth/forgot",
		Summary:     "Request a password reset email",
	}, func(ctx context.Context, input *struct {
		Body ForgotRequest `json:"body"`
	}) (*struct {
		Body OKResponse `json:"body"`
	}, error) {
		if _, errs := validate.Email(input.Body.Email); len(errs) > 0 {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "email format invalid", nil)
		}
		return &struct {
			Body OKResponse `json:"body"`
		}{Body: OKResponse{OK: true}}, nil
	})
}

func registerTasks(api huma.API, cfg Config) {
	huma.Register(api, huma.Operation{
		OperationID: "tasks-list",
		Method:      http.MethodGet,
		Path:        "/tasks",
		Summary:     "List cleaning tasks",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body TaskListResponse `json:"body"`
	}, error) {
		if err := cfg.Tasks.Init(ctx); err != nil {
			return nil, handleError(err)
		}
		snap := cfg.Tasks.Snapshot()
		items := make([]domain.Task, len(snap.Items))
		copy(items, snap.Items)
		sort.Slice(items, func(i, j int) bool {
			if items[i].Date != items[j].Date {
				return items[i].Date < items[j].Date
			}
			return items[i].Title < items[j].Title
		})
		return &struct {
			Body TaskListResponse `json:"body"`
		}{Body: TaskListResponse{Items: items}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "tasks-get",
		Method:      http.MethodGet,
		Path:        "/tasks/{task_id}",
		Summary:     "Show one task",
	}, func(ctx context.Context, input *struct {
		TaskID string `path:"task_id"`
	}) (*struct {
		Body domain.Task `json:"body"`
	}, error) {
		if err := cfg.Tasks.Init(ctx); err != nil {
			return nil, handleError(err)
		}
		for _, t := range cfg.Tasks.Snapshot().Items {
			if t.ID == input.TaskID {
				return &struct {
					Body domain.Task `json:"body"`
				}{Body: t}, nil
			}
		}
		return nil, newAPIError(http.StatusNotFound, "not_found", "task not found", nil)
	})

	huma.Register(api, huma.Operation{
		OperationID: "tasks-key-photo",
		Method:      http.MethodPost,
		Path:        "/tasks/{task_id}/key-photo",
		Summary:     "Attach the key-handover photo",
	}, func(ctx context.Context, input *struct {
		TaskID string          `path:"task_id"`
		Body   KeyPhotoRequest `json:"body"`
	}) (*struct {
		Body OKResponse `json:"body"`
	}, error) {
		if _, authErr := requirePrincipal(ctx); authErr != nil {
			return nil, authErr
		}
		if strings.TrimSpace(input.Body.URI) == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "uri required", nil)
		}
		if err := cfg.Tasks.Init(ctx); err != nil {
			return nil, handleError(err)
		}
		if err := cfg.Tasks.SetKeyPhoto(ctx, input.TaskID, input.Body.URI); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body OKResponse `json:"body"`
		}{Body: OKResponse{OK: true}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "tasks-complete",
		Method:      http.MethodPost,
		Path:        "/tasks/{task_id}/complete",
		Summary:     "Mark a task completed",
	}, func(ctx context.Context, input *struct {
		TaskID string              `path:"task_id"`
		Body   CompleteTaskRequest `json:"body"`
	}) (*struct {
		Body OKResponse `json:"body"`
	}, error) {
		p, authErr := requirePrincipal(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if !validate.CompletionNote(input.Body.Note) {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "note too long", nil)
		}
		if err := cfg.Tasks.Init(ctx); err != nil {
			return nil, handleError(err)
		}
		completedAt := input.Body.CompletedAt
		if completedAt == "" {
			completedAt = cfg.Now().UTC().Format(time.RFC3339)
		}
		err := cfg.Tasks.Complete(ctx, store.CompleteParams{
			TaskID:      input.TaskID,
			Supplies:    input.Body.Supplies,
			Note:        input.Body.Note,
			CompletedAt: completedAt,
			CompletedBy: p.Username,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body OKResponse `json:"body"`
		}{Body: OKResponse{OK: true}}, nil
	})
}

func registerNotices(api huma.API, cfg Config) {
	huma.Register(api, huma.Operation{
		OperationID: "notices-list",
		Method:      http.MethodGet,
		Path:        "/notices",
		Summary:     "List notices",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body NoticeListResponse `json:"body"`
	}, error) {
		if err := cfg.Notices.Init(ctx); err != nil {
			return nil, handleError(err)
		}
		snap := cfg.Notices.Snapshot()
		unread := make([]string, 0, len(snap.UnreadIDs))
		for id := range snap.UnreadIDs {
			unread = append(unread, id)
		}
		sort.Strings(unread)
		return &struct {
			Body NoticeListResponse `json:"body"`
		}{Body: NoticeListResponse{Items: snap.Items, UnreadIDs: unread}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "notices-read",
		Method:      http.MethodPost,
		Path:        "/notices/{notice_id}/read",
		Summary:     "Mark a notice read",
	}, func(ctx context.Context, input *struct {
		NoticeID string `path:"notice_id"`
	}) (*struct {
		Body OKResponse `json:"body"`
	}, error) {
		if err := cfg.Notices.Init(ctx); err != nil {
			return nil, handleError(err)
		}
		if err := cfg.Notices.MarkRead(ctx, input.NoticeID); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body OKResponse `json:"body"`
		}{Body: OKResponse{OK: true}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "notices-refresh",
		Method:      http.MethodPost,
		Path:        "/notices/refresh",
		Summary:     "Simulate a pull-down refresh",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body OKResponse `json:"body"`
	}, error) {
		if err := cfg.Notices.Refresh(ctx); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body OKResponse `json:"body"`
		}{Body: OKResponse{OK: true}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "notices-more",
		Method:      http.MethodPost,
		Path:        "/notices/more",
		Summary:     "Load older notices",
	}, func(ctx context.Context, input *struct {
		Body LoadMoreRequest `json:"body"`
	}) (*struct {
		Body OKResponse `json:"body"`
	}, error) {
		if err := cfg.Notices.LoadMore(ctx, input.Body.Count); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body OKResponse `json:"body"`
		}{Body: OKResponse{OK: true}}, nil
	})
}

func registerRepairs(api huma.API, cfg Config) {
	huma.Register(api, huma.Operation{
		OperationID: "repairs-list",
		Method:      http.MethodGet,
		Path:        "/repairs",
		Summary:     "List repair tickets",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body RepairListResponse `json:"body"`
	}, error) {
		if err := cfg.Repairs.Init(ctx); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body RepairListResponse `json:"body"`
		}{Body: RepairListResponse{Items: cfg.Repairs.Snapshot().Items}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "repairs-create",
		Method:      http.MethodPost,
		Path:        "/repairs",
		Summary:     "File a repair ticket",
	}, func(ctx context.Context, input *struct {
		Body CreateRepairRequest `json:"body"`
	}) (*struct {
		Body domain.RepairTicket `json:"body"`
	}, error) {
		p, authErr := requirePrincipal(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if input.Body.PropertyTitle == "" || input.Body.Description == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "propertyTitle and description required", nil)
		}
		if err := cfg.Repairs.Init(ctx); err != nil {
			return nil, handleError(err)
		}
		ticket, err := cfg.Repairs.CreateTicket(ctx, store.CreateTicketParams{
			TaskID:        input.Body.TaskID,
			PropertyTitle: input.Body.PropertyTitle,
			Address:       input.Body.Address,
			Type:          input.Body.Type,
			Description:   input.Body.Description,
			Urgency:       input.Body.Urgency,
			Contact:       input.Body.Contact,
			CreatedBy:     p.Username,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.RepairTicket `json:"body"`
		}{Body: ticket}, nil
	})
}

func registerContacts(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "contacts-list",
		Method:      http.MethodGet,
		Path:        "/contacts",
		Summary:     "Internal contact directory",
	}, func(ctx context.Context, input *struct {
		Department string `query:"department"`
	}) (*struct {
		Body ContactListResponse `json:"body"`
	}, error) {
		items := contacts.All()
		if input.Department != "" {
			items = contacts.ByDepartment(input.Department)
		}
		return &struct {
			Body ContactListResponse `json:"body"`
		}{Body: ContactListResponse{Items: items}}, nil
	})
}

func registerProfile(api huma.API, cfg Config) {
	huma.Register(api, huma.Operation{
		OperationID: "profile-get",
		Method:      http.MethodGet,
		Path:        "/profile",
		Summary:     "Staff profile",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body domain.Profile `json:"body"`
	}, error) {
		p, authErr := requirePrincipal(ctx)
		if authErr != nil {
			return nil, authErr
		}
		stored, ok, err := profile.Get(ctx, cfg.KV)
		if err != nil {
			return nil, handleError(err)
		}
		if !ok {
			stored = profile.DefaultFromUser(&domain.StoredUser{Username: p.Username, Role: p.Role})
		}
		return &struct {
			Body domain.Profile `json:"body"`
		}{Body: stored}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "profile-put",
		Method:      http.MethodPut,
		Path:        "/profile",
		Summary:     "Update staff profile",
	}, func(ctx context.Context, input *struct {
		Body domain.Profile `json:"body"`
	}) (*struct {
		Body domain.Profile `json:"body"`
	}, error) {
		if _, authErr := requirePrincipal(ctx); authErr != nil {
			return nil, authErr
		}
		p := input.Body
		p.MobileAU = validate.NormalizeAUMobile(p.MobileAU)
		if err := profile.Set(ctx, cfg.KV, p); err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Profile `json:"body"`
		}{Body: p}, nil
	})
}

func registerOpenAPI(r chi.Router, api huma.API, basePath string) {
	var spec []byte
	specPath := path.Join(basePath, "openapi.json")
	r.Get(specPath, func(w http.ResponseWriter, r *http.Request) {
		if spec == nil {
			spec, _ = json.Marshal(api.OpenAPI())
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(spec)
	})
}
