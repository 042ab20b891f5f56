package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"bookshelf-api/internal/domains/author/model"
	"bookshelf-api/internal/domains/author/service"
	"bookshelf-api/internal/shared/jsonbody"
	"bookshelf-api/internal/shared/response"
	"bookshelf-api/internal/shared/urlgen"
	"bookshelf-api/internal/shared/violation"
)

// RouteDetail is the route name used to build Location headers.
const RouteDetail = "author_detail"

type AuthorHandler struct {
	service service.ServiceInterface
	urls    *urlgen.Generator
}

func NewAuthorHandler(svc service.ServiceInterface, urls *urlgen.Generator) *AuthorHandler {
	return &AuthorHandler{
		service: svc,
		urls:    urls,
	}
}

// ════════════════════════════════════════════════════════════════
// GET /api/authors
// ════════════════════════════════════════════════════════════════

func (h *AuthorHandler) List(c *gin.Context) {
	authors, err := h.service.List(c.Request.Context())
	if err != nil {
		h.fail(c, "list authors", err)
		return
	}

	response.OK(c, authors)
}

// ════════════════════════════════════════════════════════════════
// GET /api/authors/:id
// ════════════════════════════════════════════════════════════════

func (h *AuthorHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.NotFound(c)
		return
	}

	author, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "get author", err)
		return
	}

	response.OK(c, author)
}

// ════════════════════════════════════════════════════════════════
// POST /api/authors
// ════════════════════════════════════════════════════════════════

func (h *AuthorHandler) Create(c *gin.Context) {
	var req model.AuthorPayload
	if err := c.ShouldBindWith(&req, jsonbody.Binding); err != nil {
		response.Violations(c, violation.Malformed(err).Violations)
		return
	}

	author, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "create author", err)
		return
	}

	location, err := h.urls.Absolute(c.Request, RouteDetail, map[string]string{
		"id": strconv.FormatInt(author.ID, 10),
	})
	if err != nil {
		h.fail(c, "build author location", err)
		return
	}

	response.Created(c, location, author)
}

// ════════════════════════════════════════════════════════════════
// PUT /api/authors/:id
// ════════════════════════════════════════════════════════════════

func (h *AuthorHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.NotFound(c)
		return
	}

	var req model.AuthorPayload
	if err := c.ShouldBindWith(&req, jsonbody.Binding); err != nil {
		response.Violations(c, violation.Malformed(err).Violations)
		return
	}

	if err := h.service.Update(c.Request.Context(), id, req); err != nil {
		h.fail(c, "update author", err)
		return
	}

	response.NoContent(c)
}

// ════════════════════════════════════════════════════════════════
// DELETE /api/authors/:id
// ════════════════════════════════════════════════════════════════

func (h *AuthorHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.NotFound(c)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, "delete author", err)
		return
	}

	response.NoContent(c)
}

func (h *AuthorHandler) fail(c *gin.Context, op string, err error) {
	var verr *violation.Error
	switch {
	case errors.As(err, &verr):
		response.Violations(c, verr.Violations)
	case errors.Is(err, model.ErrAuthorNotFound):
		response.NotFound(c)
	default:
		log.Error().Err(err).
			Str("request_id", c.GetString("request_id")).
			Str("op", op).
			Msg("[AUTHOR] request failed")
		response.InternalServerError(c, "Internal server error")
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
