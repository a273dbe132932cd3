package handlers

import (
  "io"
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/medialog/medialog-backend/internal/apierr"
  "github.com/medialog/medialog-backend/internal/repos"
  "github.com/medialog/medialog-backend/internal/services"
)

const maxAvatarUploadBytes = 5 << 20

type UserHandler struct {
  userRepo      repos.UserRepo
  avatarService services.AvatarService
}

func NewUserHandler(userRepo repos.UserRepo, avatarService services.AvatarService) *UserHandler {
  return &UserHandler{userRepo: userRepo, avatarService: avatarService}
}

func (uh *UserHandler) Me(c *gin.Context) {
  userID, err := currentUserID(c)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  users, err := uh.userRepo.GetByIDs(c.Request.Context(), nil, []uuid.UUID{userID})
  if err != nil {
    RespondAppError(c, err)
    return
  }
  if len(users) == 0 {
    RespondAppError(c, apierr.NotFound("user %s not found", userID))
    return
  }
  RespondOK(c, users[0])
}

func (uh *UserHandler) UploadAvatar(c *gin.Context) {
  userID, err := currentUserID(c)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  users, err := uh.userRepo.GetByIDs(c.Request.Context(), nil, []uuid.UUID{userID})
  if err != nil {
    RespondAppError(c, err)
    return
  }
  if len(users) == 0 {
    RespondAppError(c, apierr.NotFound("user %s not found", userID))
    return
  }
  user := users[0]

  raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxAvatarUploadBytes+1))
  if err != nil {
    RespondError(c, http.StatusBadRequest, apierr.CodeBadRequest, err)
    return
  }
  if len(raw) == 0 || len(raw) > maxAvatarUploadBytes {
    RespondAppError(c, apierr.BadRequest("avatar image must be between 1 byte and %d bytes", maxAvatarUploadBytes))
    return
  }

  if err := uh.avatarService.SetUserAvatarFromImage(c.Request.Context(), user, raw); err != nil {
    RespondAppError(c, err)
    return
  }
  if err := uh.userRepo.Save(c.Request.Context(), nil, user); err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"avatar_url": user.AvatarURL})
}
