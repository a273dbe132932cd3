package middleware

import (
  "net/http"
  "strings"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/medialog/medialog-backend/internal/logger"
  "github.com/medialog/medialog-backend/internal/requestdata"
  "github.com/medialog/medialog-backend/internal/services"
)

type AuthMiddleware struct {
  log         *logger.Logger
  authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
  middlewareLog := log.With("middleware", "AuthMiddleware")
  return &AuthMiddleware{log: middlewareLog, authService: authService}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
  return func(c *gin.Context) {
    tokenString := extractToken(c)
    if tokenString == "" {
      c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
      return
    }
    ctx, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString)
    if err != nil {
      c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
      return
    }
    c.Request = c.Request.WithContext(ctx)
    rd := requestdata.GetRequestData(ctx)
    if rd == nil || rd.UserID == uuid.Nil {
      c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
      return
    }
    c.Next()
  }
}

// AttachRefreshToken pulls the refresh token off the request so the auth
// service can rotate it; used only on the refresh route.
func (am *AuthMiddleware) AttachRefreshToken() gin.HandlerFunc {
  return func(c *gin.Context) {
    var body struct {
      RefreshToken string `json:"refresh_token"`
    }
    if err := c.ShouldBindJSON(&body); err != nil || body.RefreshToken == "" {
      c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing refresh token"})
      return
    }
    ctx := c.Request.Context()
    rd := requestdata.GetRequestData(ctx)
    if rd == nil {
      rd = &requestdata.RequestData{}
      ctx = requestdata.WithRequestData(ctx, rd)
    }
    rd.RefreshToken = body.RefreshToken
    c.Request = c.Request.WithContext(ctx)
    c.Next()
  }
}

func extractToken(c *gin.Context) string {
  authHeader := c.GetHeader("Authorization")
  if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
    return authHeader[7:]
  }
  if qToken := c.Query("token"); qToken != "" {
    return qToken
  }
  return ""
}
