package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bragforgood-api/services"
	"bragforgood-api/utils"
)

type LeaderboardController struct {
	leaderboard *services.LeaderboardService
}

func NewLeaderboardController(leaderboard *services.LeaderboardService) *LeaderboardController {
	return &LeaderboardController{leaderboard: leaderboard}
}

func (lc *LeaderboardController) GetMonthly(c *gin.Context) {
	board, err := lc.leaderboard.Monthly(c.Request.Context())
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}
