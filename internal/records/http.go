// Copyright (c) 2026 Nexus Portal. All rights reserved.
// Author: dev@nexusportal.app

/*
HTTP delivery layer for certificate uploads and retrieval.

Uploads arrive as multipart form data under the "file" field; the request
body is capped at the certificate size limit before the form is parsed so
oversized payloads never stream fully into memory.
*/
package records

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nexusportal/nexus/internal/platform/apperr"
	"github.com/nexusportal/nexus/internal/platform/constants"
	"github.com/nexusportal/nexus/internal/platform/ctxutil"
	"github.com/nexusportal/nexus/internal/platform/middleware"
	requestutil "github.com/nexusportal/nexus/internal/platform/request"
	"github.com/nexusportal/nexus/internal/platform/respond"
	"github.com/nexusportal/nexus/internal/platform/sec"
	"github.com/nexusportal/nexus/internal/platform/validate"
)

// multipartMemoryLimit bounds the in-memory portion of a parsed upload;
// anything larger spills to a temp file.
const multipartMemoryLimit = 1 << 20

// # Definitions & Constructors

// Handler implements certificate-related HTTP endpoints.
type Handler struct {
	certificateService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{certificateService: service}
}

// Routes returns a [chi.Router] for certificate endpoints.
//
// # Endpoints
//   - POST /                    : Student files a new certificate.
//   - GET  /                    : Student lists their own certificates.
//   - GET  /student/{studentID} : Staff inspects a student's certificates.
//
// Certificate records are insert-only; there is deliberately no update or
// delete route.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(student chi.Router) {
		student.Use(middleware.RequireRole(sec.RoleStudent))
		student.Post("/", handler.upload)
		student.Get("/", handler.listOwn)
	})

	router.Group(func(staff chi.Router) {
		staff.Use(middleware.RequireRole(sec.RoleStaff))
		staff.Get("/student/{studentID}", handler.listForStudent)
	})

	return router
}

/*
Upload accepts a multipart certificate and stores it for the caller.

POST /api/v1/certificates

Request:
  - Body: multipart/form-data with a single "file" part

Response:
  - 201: Certificate: Stored record with a presigned download URL
  - 400: VALIDATION_ERROR: Missing part, empty file, or size over limit
  - 502: UPLOAD_FAILED: Object storage or metadata write failed
*/
func (handler *Handler) upload(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Cap the whole request body before parsing; a small allowance covers the
	// multipart framing around the file itself.
	request.Body = http.MaxBytesReader(writer, request.Body, constants.MaxCertificateSize+multipartMemoryLimit)

	if err := request.ParseMultipartForm(multipartMemoryLimit); err != nil {
		respond.Error(writer, request, apperr.ValidationError("Upload must be multipart form data within the size limit"))
		return
	}

	file, header, err := request.FormFile(FieldFile)
	if err != nil {
		respond.Error(writer, request, validate.RequiredError(FieldFile, "A certificate file is required"))
		return
	}
	defer file.Close()

	logger := ctxutil.GetLogger(request.Context())

	record, err := handler.certificateService.Upload(request.Context(), UploadInput{
		StudentID:   userID,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		SizeBytes:   header.Size,
		Body:        file,
		Progress: func(bytesTransferred, totalBytes int64) {
			logger.Debug("certificate_upload_progress",
				slog.Int64("bytes_transferred", bytesTransferred),
				slog.Int64("total_bytes", totalBytes),
			)
		},
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, record)
}

/*
ListOwn serves the caller's certificates for the student dashboard.

GET /api/v1/certificates

Response:
  - 200: []Certificate: Newest first, each with a fresh presigned URL
*/
func (handler *Handler) listOwn(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	certificates, err := handler.certificateService.ListOwn(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, certificates)
}

/*
ListForStudent serves one student's certificates for the staff view.

GET /api/v1/certificates/student/{studentID}

Response:
  - 200: []Certificate: Storage order, each with a fresh presigned URL
  - 403: FORBIDDEN: Caller is not staff (redirect hint to own dashboard)
*/
func (handler *Handler) listForStudent(writer http.ResponseWriter, request *http.Request) {
	studentID := requestutil.Param(request, "studentID")
	if studentID == "" {
		respond.Error(writer, request, validate.RequiredError(FieldStudentID, "A student identifier is required"))
		return
	}

	certificates, err := handler.certificateService.ListForStudent(request.Context(), studentID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, certificates)
}
