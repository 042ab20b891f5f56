package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"bookshelf-api/internal/domains/book/model"
	"bookshelf-api/internal/domains/book/service"
	"bookshelf-api/internal/shared/jsonbody"
	"bookshelf-api/internal/shared/response"
	"bookshelf-api/internal/shared/urlgen"
	"bookshelf-api/internal/shared/violation"
)

const RouteDetail = "book_detail"

type BookHandler struct {
	service service.ServiceInterface
	urls    *urlgen.Generator
}

func NewBookHandler(svc service.ServiceInterface, urls *urlgen.Generator) *BookHandler {
	return &BookHandler{
		service: svc,
		urls:    urls,
	}
}

// List - GET /api/books
func (h *BookHandler) List(c *gin.Context) {
	books, err := h.service.List(c.Request.Context())
	if err != nil {
		h.fail(c, "list books", err)
		return
	}

	response.OK(c, books)
}

// GetByID - GET /api/books/:id
func (h *BookHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.NotFound(c)
		return
	}

	book, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "get book", err)
		return
	}

	response.OK(c, book)
}

// Create - POST /api/books
// Body: {"title", "coverText", "idAuthor"}; idAuthor mặc định -1 (không có author)
func (h *BookHandler) Create(c *gin.Context) {
	var req model.BookPayload
	if err := c.ShouldBindWith(&req, jsonbody.Binding); err != nil {
		response.Violations(c, violation.Malformed(err).Violations)
		return
	}

	book, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "create book", err)
		return
	}

	location, err := h.urls.Absolute(c.Request, RouteDetail, map[string]string{
		"id": strconv.FormatInt(book.ID, 10),
	})
	if err != nil {
		h.fail(c, "build book location", err)
		return
	}

	response.Created(c, location, book)
}

// Update - PUT /api/books/:id
func (h *BookHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.NotFound(c)
		return
	}

	var req model.BookPayload
	if err := c.ShouldBindWith(&req, jsonbody.Binding); err != nil {
		response.Violations(c, violation.Malformed(err).Violations)
		return
	}

	if err := h.service.Update(c.Request.Context(), id, req); err != nil {
		h.fail(c, "update book", err)
		return
	}

	response.NoContent(c)
}

// Delete - DELETE /api/books/:id
func (h *BookHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.NotFound(c)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, "delete book", err)
		return
	}

	response.NoContent(c)
}

func (h *BookHandler) fail(c *gin.Context, op string, err error) {
	var verr *violation.Error
	if errors.As(err, &verr) {
		response.Violations(c, verr.Violations)
		return
	}
	if errors.Is(err, model.ErrBookNotFound) {
		response.NotFound(c)
		return
	}
	if errors.Is(err, model.ErrAuthorGone) {
		response.Conflict(c, "AUTHOR_GONE", "Linked author was deleted, retry the request")
		return
	}

	log.Error().Err(err).
		Str("request_id", c.GetString("request_id")).
		Str("op", op).
		Msg("[BOOK] request failed")
	response.InternalServerError(c, "Internal server error")
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
