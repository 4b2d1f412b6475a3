package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Pagination là cặp limit/skip đọc từ query string
type Pagination struct {
	Limit int
	Skip  int
}

// ParsePagination clamps limit to [1, maxLimit] and skip to >= 0.
// Unparseable values fall back to the defaults.
func ParsePagination(c *gin.Context, defaultLimit, maxLimit int) Pagination {
	limit := queryInt(c, "limit", defaultLimit)
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	skip := queryInt(c, "skip", 0)
	if skip < 0 {
		skip = 0
	}
	return Pagination{Limit: limit, Skip: skip}
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// ParseUUIDParam đọc path param dạng UUID; ok=false nếu sai format
func ParseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// ParseOptionalUUID trả về nil cho chuỗi rỗng
func ParseOptionalUUID(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
