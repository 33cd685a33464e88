package users

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"mercator-hq/wiretap/pkg/endpoint"
	"mercator-hq/wiretap/pkg/interceptor"
	"mercator-hq/wiretap/pkg/telemetry/logging"
)

// Service exposes the store over HTTP and gRPC.
type Service struct {
	store *Store
}

// NewService creates a Service backed by store.
func NewService(store *Store) *Service {
	return &Service{store: store}
}

// Controller returns the class-level declarations of the HTTP endpoints.
func (s *Service) Controller(maxUploadBytes int64) endpoint.Controller {
	return endpoint.Controller{
		Name:           "users",
		Logging:        interceptor.Enabled,
		Produces:       []string{"application/json"},
		Consumes:       []string{"application/json"},
		MaxUploadBytes: maxUploadBytes,
	}
}

var idParam = endpoint.ParamSpec{Name: "id", Source: endpoint.SourcePath, Parse: endpoint.Int, Required: true}

var formTypes = []string{"application/x-www-form-urlencoded", "multipart/form-data"}

// Endpoints returns the HTTP endpoints of the service.
func (s *Service) Endpoints() []endpoint.Endpoint {
	return []endpoint.Endpoint{
		{
			Name:    "getUser",
			Method:  http.MethodGet,
			Pattern: "/getUser",
			Returns: interceptor.Typed("User"),
			Handle:  s.getUser,
		},
		{
			Name:    "getUserById",
			Method:  http.MethodGet,
			Pattern: "/users/{id}",
			Params:  []endpoint.ParamSpec{idParam},
			Returns: interceptor.Typed("User"),
			Handle:  s.getUserByID,
		},
		{
			Name:     "createUser",
			Method:   http.MethodPost,
			Pattern:  "/users",
			Consumes: formTypes,
			Params: []endpoint.ParamSpec{
				{Name: "username", Source: endpoint.SourceForm, Required: true},
				{Name: "email", Source: endpoint.SourceForm, Required: true},
				{Name: "password", Source: endpoint.SourceForm, Required: true},
			},
			Returns: interceptor.Typed("User"),
			Status:  http.StatusCreated,
			Handle:  s.createUser,
		},
		{
			Name:    "updateUser",
			Method:  http.MethodPut,
			Pattern: "/users/{id}",
			Params: []endpoint.ParamSpec{
				idParam,
				{Name: "update", Source: endpoint.SourceBody, Required: true, New: func() any { return &UserUpdate{} }},
			},
			Returns: interceptor.Typed("User"),
			Handle:  s.updateUser,
		},
		{
			Name:    "deleteUser",
			Method:  http.MethodDelete,
			Pattern: "/users/{id}",
			Params:  []endpoint.ParamSpec{idParam},
			Returns: interceptor.Void(),
			Handle:  s.deleteUser,
		},
		{
			Name:     "login",
			Method:   http.MethodPost,
			Pattern:  "/login",
			Consumes: formTypes,
			Params: []endpoint.ParamSpec{
				{Name: "username", Source: endpoint.SourceForm, Required: true},
				{Name: "password", Source: endpoint.SourceForm, Required: true},
			},
			Returns: interceptor.Typed("User"),
			Handle:  s.login,
		},
		{
			Name:     "uploadAvatar",
			Method:   http.MethodPut,
			Pattern:  "/users/{id}/avatar",
			Consumes: []string{"multipart/form-data"},
			Params: []endpoint.ParamSpec{
				idParam,
				{Name: "avatar", Source: endpoint.SourceFile, Required: true},
			},
			Returns: interceptor.Typed("AvatarInfo"),
			Handle:  s.uploadAvatar,
		},
		{
			Name:     "getAvatar",
			Method:   http.MethodGet,
			Pattern:  "/users/{id}/avatar",
			Produces: []string{"application/octet-stream"},
			Params:   []endpoint.ParamSpec{idParam},
			Returns:  interceptor.Typed("Resource"),
			Handle:   s.getAvatar,
		},
		{
			Name:     "ping",
			Method:   http.MethodGet,
			Pattern:  "/ping",
			Logging:  interceptor.Disabled,
			Produces: []string{"text/plain"},
			Returns:  interceptor.Typed("string"),
			Handle: func(context.Context, *endpoint.Input) (any, error) {
				return "pong", nil
			},
		},
	}
}

// Authenticate implements middleware.Authenticator.
func (s *Service) Authenticate(ctx context.Context, username, password string) (bool, error) {
	return s.store.Authenticate(ctx, username, password)
}

func (s *Service) getUser(ctx context.Context, _ *endpoint.Input) (any, error) {
	username := logging.GetUser(ctx)
	if username == "" {
		return nil, endpoint.NewStatusError(http.StatusUnauthorized, "authentication required")
	}
	u, err := s.store.GetByUsername(ctx, username)
	return u, mapError(err)
}

func (s *Service) getUserByID(ctx context.Context, in *endpoint.Input) (any, error) {
	u, err := s.store.Get(ctx, in.Int64("id"))
	return u, mapError(err)
}

func (s *Service) createUser(ctx context.Context, in *endpoint.Input) (any, error) {
	u, err := s.store.Create(ctx, in.String("username"), in.String("email"), in.String("password"))
	return u, mapError(err)
}

func (s *Service) updateUser(ctx context.Context, in *endpoint.Input) (any, error) {
	update, _ := endpoint.Arg[*UserUpdate](in, "update")
	if update.Email == "" {
		return nil, endpoint.BadRequest("email is required")
	}
	u, err := s.store.UpdateEmail(ctx, in.Int64("id"), update.Email)
	return u, mapError(err)
}

func (s *Service) deleteUser(ctx context.Context, in *endpoint.Input) (any, error) {
	return nil, mapError(s.store.Delete(ctx, in.Int64("id")))
}

func (s *Service) login(ctx context.Context, in *endpoint.Input) (any, error) {
	ok, err := s.store.Authenticate(ctx, in.String("username"), in.String("password"))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, endpoint.NewStatusError(http.StatusUnauthorized, "invalid credentials")
	}
	u, err := s.store.GetByUsername(ctx, in.String("username"))
	return u, mapError(err)
}

func (s *Service) uploadAvatar(ctx context.Context, in *endpoint.Input) (any, error) {
	id := in.Int64("id")
	upload := in.File("avatar")

	data, err := upload.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	contentType := upload.ContentType()
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	if err := s.store.SetAvatar(ctx, id, data, contentType); err != nil {
		return nil, mapError(err)
	}
	return AvatarInfo{UserID: id, Size: int64(len(data)), ContentType: contentType}, nil
}

func (s *Service) getAvatar(ctx context.Context, in *endpoint.Input) (any, error) {
	data, contentType, err := s.store.Avatar(ctx, in.Int64("id"))
	if err != nil {
		return nil, mapError(err)
	}
	return endpoint.NewResource(data, contentType), nil
}

// mapError turns store errors into HTTP status errors.
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return endpoint.NotFound("%v", err)
	case errors.Is(err, ErrConflict):
		return endpoint.NewStatusError(http.StatusConflict, err.Error())
	default:
		return err
	}
}
