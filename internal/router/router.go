package router

import (
	"github.com/blues/sfs/internal/config"
	"github.com/blues/sfs/internal/handler"
	"github.com/blues/sfs/internal/ledger"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(engine *ledger.Engine, db *gorm.DB, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "serie-funding-service",
		})
	})

	v1 := r.Group("/api/v1")
	{
		projectHandler := handler.NewProjectHandler(engine, db)
		projects := v1.Group("/projects")
		{
			projects.POST("", projectHandler.CreateProject)
			projects.GET("", projectHandler.GetProjects)
			projects.GET("/:id", projectHandler.GetProject)
			projects.POST("/:id/invest", projectHandler.Invest)
			projects.POST("/:id/shares/transfer", projectHandler.TransferShares)
			projects.GET("/:id/shares/:address", projectHandler.GetShares)
			projects.POST("/:id/complete", projectHandler.Complete)
			projects.POST("/:id/force-complete", projectHandler.ForceComplete)
			projects.POST("/:id/refund", projectHandler.ClaimRefund)
			projects.GET("/:id/refunds", projectHandler.GetProjectRefunds)
			projects.GET("/:id/contributions", projectHandler.GetProjectContributions)
			projects.GET("/:id/holders", projectHandler.GetProjectHolders)
			projects.GET("/:id/stats", projectHandler.GetProjectStats)
		}
		v1.GET("/stats/projects", projectHandler.GetAllProjectStats)

		tokenHandler := handler.NewTokenHandler(engine)
		token := v1.Group("/token")
		{
			token.GET("", tokenHandler.GetTokenInfo)
			token.GET("/balance/:address", tokenHandler.GetBalance)
			token.GET("/allowance/:owner/:spender", tokenHandler.GetAllowance)
			token.POST("/transfer", tokenHandler.Transfer)
			token.POST("/approve", tokenHandler.Approve)
			token.POST("/transfer-from", tokenHandler.TransferFrom)
			token.POST("/mint", tokenHandler.Mint)
			token.POST("/burn", tokenHandler.Burn)
			token.POST("/fund-rewards", tokenHandler.FundRewardsPool)
		}

		stakingHandler := handler.NewStakingHandler(engine, db)
		staking := v1.Group("/staking")
		{
			staking.GET("/stakes/:address", stakingHandler.GetUserStakes)
			staking.GET("/rewards/:address/:index", stakingHandler.CalculateRewards)
			staking.GET("/claims/:address", stakingHandler.GetRewardClaims)
			staking.POST("/claim", stakingHandler.ClaimRewards)
			staking.POST("/unstake", stakingHandler.Unstake)
		}
		v1.GET("/projects/:id/staked", stakingHandler.GetProjectTotalStaked)
		v1.GET("/projects/:id/stake-index/:address", stakingHandler.GetStakeIndex)

		eventHandler := handler.NewEventHandler(engine, db)
		events := v1.Group("/events")
		{
			events.GET("", eventHandler.GetEvents)
			events.GET("/feed", eventHandler.GetFeed)
			events.GET("/stats", eventHandler.GetEventStats)
		}
	}

	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
