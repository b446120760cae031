package shared

import (
	"strings"

	"github.com/storefront-next/internal/constants"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EnsureDraftSession 解析草稿会话标识。
// 请求未携带时生成新会话，并通过响应头回传给客户端。
func EnsureDraftSession(c *gin.Context) string {
	sessionID := strings.TrimSpace(c.GetHeader(constants.DraftSessionHeader))
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	c.Header(constants.DraftSessionHeader, sessionID)
	return sessionID
}
