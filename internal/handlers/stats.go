package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/medialog/medialog-backend/internal/apierr"
  "github.com/medialog/medialog-backend/internal/services"
  "github.com/medialog/medialog-backend/internal/types"
)

type StatsHandler struct {
  statsService     services.StatsService
  reconcileService services.ReconcileService
}

func NewStatsHandler(statsService services.StatsService, reconcileService services.ReconcileService) *StatsHandler {
  return &StatsHandler{statsService: statsService, reconcileService: reconcileService}
}

func (sh *StatsHandler) GetAll(c *gin.Context) {
  userID, err := currentUserID(c)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  stats, err := sh.statsService.GetUserStats(c.Request.Context(), userID)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, stats)
}

func (sh *StatsHandler) GetForMediaType(c *gin.Context) {
  userID, err := currentUserID(c)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  mt := pathMediaType(c)
  if mt != types.MediaTypeAll && !mt.Valid() {
    RespondError(c, http.StatusBadRequest, apierr.CodeBadRequest, apierr.BadRequest("unknown media type %q", mt))
    return
  }
  stats, err := sh.statsService.GetUserStatsForMediaType(c.Request.Context(), userID, mt)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, stats)
}

func (sh *StatsHandler) Reconcile(c *gin.Context) {
  userID, err := currentUserID(c)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  stats, err := sh.reconcileService.ReconcileUser(c.Request.Context(), userID)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, stats)
}
