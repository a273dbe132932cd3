package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/medialog/medialog-backend/internal/apierr"
  "github.com/medialog/medialog-backend/internal/repos"
  "github.com/medialog/medialog-backend/internal/services"
  "github.com/medialog/medialog-backend/internal/types"
)

type CatalogHandler struct {
  entryRepo      repos.MediaEntryRepo
  catalogService services.CatalogService
}

func NewCatalogHandler(entryRepo repos.MediaEntryRepo, catalogService services.CatalogService) *CatalogHandler {
  return &CatalogHandler{entryRepo: entryRepo, catalogService: catalogService}
}

func (ch *CatalogHandler) List(c *gin.Context) {
  mt := pathMediaType(c)
  if !mt.Valid() {
    RespondError(c, http.StatusBadRequest, apierr.CodeBadRequest, apierr.BadRequest("unknown media type %q", mt))
    return
  }
  limit, offset := pagination(c)
  entries, err := ch.entryRepo.ListByMediaType(c.Request.Context(), nil, mt, limit, offset)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"entries": entries, "limit": limit, "offset": offset})
}

func (ch *CatalogHandler) Get(c *gin.Context) {
  id, err := uuid.Parse(c.Param("entry_id"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, apierr.CodeBadRequest, apierr.BadRequest("invalid entry id"))
    return
  }
  entries, err := ch.entryRepo.GetByIDs(c.Request.Context(), nil, []uuid.UUID{id})
  if err != nil {
    RespondAppError(c, err)
    return
  }
  if len(entries) == 0 {
    RespondAppError(c, apierr.NotFound("no catalog entry %s", id))
    return
  }
  RespondOK(c, entries[0])
}

func (ch *CatalogHandler) Create(c *gin.Context) {
  var req struct {
    MediaType   types.MediaType `json:"media_type"`
    Title       string          `json:"title"`
    ReleaseDate string          `json:"release_date"`
    UnitCount   int             `json:"unit_count"`
    CoverURL    string          `json:"cover_url"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, apierr.CodeBadRequest, err)
    return
  }
  entry, err := ch.catalogService.CreateEntry(c.Request.Context(), req.MediaType, req.Title, req.ReleaseDate, req.UnitCount, req.CoverURL)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  c.JSON(http.StatusCreated, entry)
}
