package handlers

import (
  "net/http"
  "strconv"

  "github.com/gin-gonic/gin"

  "github.com/medialog/medialog-backend/internal/apierr"
  "github.com/medialog/medialog-backend/internal/services"
)

type FeedHandler struct {
  updateLogService services.UpdateLogService
}

func NewFeedHandler(updateLogService services.UpdateLogService) *FeedHandler {
  return &FeedHandler{updateLogService: updateLogService}
}

func (fh *FeedHandler) List(c *gin.Context) {
  userID, err := currentUserID(c)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  limit, offset := pagination(c)
  logs, err := fh.updateLogService.ListForUser(c.Request.Context(), userID, limit, offset)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"updates": logs, "limit": limit, "offset": offset})
}

func (fh *FeedHandler) Delete(c *gin.Context) {
  userID, err := currentUserID(c)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  id, err := strconv.ParseUint(c.Param("log_id"), 10, 64)
  if err != nil {
    RespondError(c, http.StatusBadRequest, apierr.CodeBadRequest, apierr.BadRequest("invalid log id"))
    return
  }
  if err := fh.updateLogService.DeleteForUser(c.Request.Context(), userID, []uint{uint(id)}); err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"deleted": true})
}
