package handler

import (
	"reforco-escolar/internal/util"

	"github.com/gin-gonic/gin"
)

// GetMe returns the identity resolved by AuthMiddleware.
func GetMe(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	util.Success(c, gin.H{"user": id.Profile()})
}
