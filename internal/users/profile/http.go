// Copyright (c) 2026 Nexus Portal. All rights reserved.
// Author: dev@nexusportal.app

/*
HTTP delivery layer for profile resolution and the student directory.

This layer is strictly responsible for transport concerns (status codes,
headers, JSON); all authorization decisions are made by the router-mounted
role middleware.
*/
package profile

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nexusportal/nexus/internal/platform/middleware"
	requestutil "github.com/nexusportal/nexus/internal/platform/request"
	"github.com/nexusportal/nexus/internal/platform/respond"
	"github.com/nexusportal/nexus/internal/platform/sec"
	"github.com/nexusportal/nexus/internal/platform/validate"
	"github.com/nexusportal/nexus/pkg/pagination"
)

// # Definitions & Constructors

// Handler implements profile-related HTTP endpoints.
type Handler struct {
	profileService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{profileService: service}
}

// Routes returns a [chi.Router] for the caller's own profile.
//
// # Endpoints
//   - GET   / : Resolves the caller's profile.
//   - PATCH / : Updates mutable contact fields.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Any verified member may read and edit their own profile.
	router.Use(middleware.RequireRole())
	router.Get("/", handler.me)
	router.Patch("/", handler.updateMe)

	return router
}

// StudentRoutes returns a [chi.Router] for the staff-only student directory.
//
// # Endpoints
//   - GET /        : Paginated student listing, optional ?batch= filter.
//   - GET /batches : Distinct sorted batch labels.
func (handler *Handler) StudentRoutes() chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.RequireRole(sec.RoleStaff))
	router.Get("/", handler.listStudents)
	router.Get("/batches", handler.batches)

	return router
}

// # Request Payloads

type updateContactRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

/*
Me resolves the authenticated caller's profile.

GET /api/v1/profile

Response:
  - 200: Profile: Role-shaped identity record
  - 404: PROFILE_NOT_FOUND: Principal exists without a profile
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.profileService.Resolve(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, record)
}

/*
UpdateMe applies partial contact changes to the caller's profile.

PATCH /api/v1/profile

Request:
  - Body: updateContactRequest (Name, Phone — both optional)

Response:
  - 200: Profile: Updated record
  - 400: ErrInvalidJSON: Bad input
*/
func (handler *Handler) updateMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateContactRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	if input.Name != nil {
		validator.Required(FieldName, *input.Name).MaxLen(FieldName, *input.Name, 120)
	}
	if input.Phone != nil {
		validator.MaxLen(FieldPhone, *input.Phone, 20)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.profileService.UpdateContact(request.Context(), userID, UpdateContactInput{
		Name:  input.Name,
		Phone: input.Phone,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, record)
}

/*
ListStudents serves the staff dashboard's student directory.

GET /api/v1/students?batch=2024&page=1&limit=20

Response:
  - 200: []Profile with pagination metadata
  - 403: FORBIDDEN: Caller is not staff (redirect hint to own dashboard)
*/
func (handler *Handler) listStudents(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	batch := request.URL.Query().Get(FieldBatch)

	students, meta, err := handler.profileService.ListStudents(request.Context(), batch, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, students, meta)
}

/*
Batches serves the distinct cohort labels for directory filtering.

GET /api/v1/students/batches

Response:
  - 200: []string: Sorted distinct batch labels
*/
func (handler *Handler) batches(writer http.ResponseWriter, request *http.Request) {
	labels, err := handler.profileService.Batches(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, labels)
}
