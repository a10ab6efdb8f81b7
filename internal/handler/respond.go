package handler

import (
	"errors"
	"net/http"
	"strconv"

	"reforco-escolar/internal/auth"
	"reforco-escolar/internal/logger"
	"reforco-escolar/internal/middleware"
	"reforco-escolar/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	maxPageSize = 100
	// keeps (page-1)*limit far from overflowing
	maxPage = 1_000_000
)

// fail translates err into a status and {"error": ...} body. Unknown errors
// are logged and reported without detail.
func fail(c *gin.Context, err error) {
	var ve *util.ValidationError
	switch {
	case errors.As(err, &ve):
		util.Error(c, http.StatusBadRequest, ve.Error())
	case errors.Is(err, auth.ErrEmailInUse):
		util.Error(c, http.StatusBadRequest, auth.ErrEmailInUse.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		util.Error(c, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
	case errors.Is(err, auth.ErrForbidden):
		util.Error(c, http.StatusForbidden, auth.ErrForbidden.Error())
	case errors.Is(err, auth.ErrNotFound):
		util.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		util.Error(c, http.StatusNotFound, "not found")
	default:
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error("request failed")
		util.Error(c, http.StatusInternalServerError, "internal server error")
	}
}

// badRequest reports a malformed body or parameter.
func badRequest(c *gin.Context, msg string) {
	util.Error(c, http.StatusBadRequest, msg)
}

// currentIdentity fetches the caller or writes 401.
func currentIdentity(c *gin.Context) (auth.Identity, bool) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, auth.ErrUnauthenticated.Error())
		return auth.Identity{}, false
	}
	return id, true
}

// pathID parses the :id parameter or writes 400.
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "invalid id")
		return 0, false
	}
	return uint(id), true
}

// queryID parses an optional numeric query parameter; 0 means absent.
func queryID(c *gin.Context, name string) (uint, bool) {
	s := c.Query(name)
	if s == "" {
		return 0, true
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// pageParams reads ?page= and ?limit=.
func pageParams(c *gin.Context, defaultSize int) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultSize)))
	if limit <= 0 || limit > maxPageSize {
		limit = defaultSize
	}
	return page, limit
}

// paginate counts base, then loads one page into dest. The scope filters are
// already part of base, so the total never includes hidden rows.
func paginate(base *gorm.DB, dest interface{}, order string, page, limit int, preloads ...string) (util.Pagination, error) {
	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return util.Pagination{}, err
	}

	q := base.Session(&gorm.Session{})
	for _, p := range preloads {
		q = q.Preload(p)
	}
	if err := q.Order(order).Offset((page - 1) * limit).Limit(limit).Find(dest).Error; err != nil {
		return util.Pagination{}, err
	}
	return util.NewPagination(page, limit, total), nil
}
