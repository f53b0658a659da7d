package middleware

import "github.com/gin-gonic/gin"

// AgentMiddleware restricts a group to agent users
func AgentMiddleware() gin.HandlerFunc {
	return requireRole("agent")
}
