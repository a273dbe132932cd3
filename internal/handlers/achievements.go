package handlers

import (
  "github.com/gin-gonic/gin"

  "github.com/medialog/medialog-backend/internal/repos"
  "github.com/medialog/medialog-backend/internal/services"
)

type AchievementHandler struct {
  achievementService services.AchievementService
  achievementRepo    repos.AchievementRepo
}

func NewAchievementHandler(achievementService services.AchievementService, achievementRepo repos.AchievementRepo) *AchievementHandler {
  return &AchievementHandler{achievementService: achievementService, achievementRepo: achievementRepo}
}

// Catalog lists the static achievement definitions with their tiers.
func (ah *AchievementHandler) Catalog(c *gin.Context) {
  achievements, err := ah.achievementRepo.ListAll(c.Request.Context(), nil)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"achievements": achievements})
}

// Progress lists the caller's progress records, tiers included.
func (ah *AchievementHandler) Progress(c *gin.Context) {
  userID, err := currentUserID(c)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  progress, err := ah.achievementService.ListProgressForUser(c.Request.Context(), userID)
  if err != nil {
    RespondAppError(c, err)
    return
  }
  RespondOK(c, gin.H{"achievements": progress})
}
