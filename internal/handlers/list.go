package handlers

import (
  "net/http"
  "strconv"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/medialog/medialog-backend/internal/apierr"
  "github.com/medialog/medialog-backend/internal/requestdata"
  "github.com/medialog/medialog-backend/internal/services"
  "github.com/medialog/medialog-backend/internal/types"
)

type ListHandler struct {
  listService services.ListService
}

func NewListHandler(listService services.ListService) *ListHandler {
  return &ListHandler{listService: listService}
}

func currentUserID(c *gin.Context) (uuid.UUID, error) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.UserID == uuid.Nil {
    return uuid.Nil, apierr.Unauthorized("no authenticated user")
  }
  return rd.UserID, nil
}

func pathMediaType(c *gin.Context) types.MediaType {
  return types.MediaType(c.Param("media_type"))
}

func pathEntryID(c *gin.Context) (uuid.UUID, error) {
  id, err := uuid.Parse(c.Param("entry_id"))
  if err != nil {
    return uuid.Nil, apierr.BadRequest("invalid entry id")
  }
  return id, nil
}

func pagination(c *gin.Context) (int, int) {
  limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
  offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
  if limit <= 0 || limit > 200 {
    limit = 50
  }
  if offset < 0 {
    offset = 0
  }
  return limit, offset
}

func (lh *ListHandler) Add(c *gin.Context) {
  userID, err := currentUserID(c)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  entryID, err := pathEntryID(c)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  var req struct {
    Status *types.Status `json:"status"`
  }
  if c.Request.ContentLength > 0 {
    if err := c.ShouldBindJSON(&req); err != nil {
      RespondError(c, http.StatusBadRequest, apierr.CodeBadRequest, err)
      return
    }
  }
  entry, err := lh.listService.AddEntry(c.Request.Context(), userID, entryID, pathMediaType(c), req.Status)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  c.JSON(http.StatusCreated, entry)
}

func (lh *ListHandler) Update(c *gin.Context) {
  userID, err := currentUserID(c)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  entryID, err := pathEntryID(c)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  var change services.ChangeSet
  if err := c.ShouldBindJSON(&change); err != nil {
    RespondError(c, http.StatusBadRequest, apierr.CodeBadRequest, err)
    return
  }
  entry, err := lh.listService.UpdateEntry(c.Request.Context(), userID, entryID, pathMediaType(c), change)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, entry)
}

func (lh *ListHandler) Remove(c *gin.Context) {
  userID, err := currentUserID(c)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  entryID, err := pathEntryID(c)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  delta, err := lh.listService.RemoveEntry(c.Request.Context(), userID, entryID, pathMediaType(c))
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"removed": true, "delta": delta})
}

func (lh *ListHandler) List(c *gin.Context) {
  userID, err := currentUserID(c)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  limit, offset := pagination(c)
  entries, err := lh.listService.ListEntries(c.Request.Context(), userID, pathMediaType(c), limit, offset)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"entries": entries, "limit": limit, "offset": offset})
}
