package router

import (
	"Reddit_Lite/internal/handler"
	"Reddit_Lite/internal/middleware"
	"Reddit_Lite/internal/mirror"
	"Reddit_Lite/internal/pkg"
	"Reddit_Lite/internal/service"

	"github.com/gin-gonic/gin"
)

func InitRouter(mirrors *mirror.Registry, emailCfg pkg.SMTPConfig) *gin.Engine {
	r := gin.Default()

	emailSvc := service.NewEmailService(emailCfg)
	voteSvc := service.NewVoteService(mirrors)
	communitySvc := service.NewCommunityService(mirrors)
	postSvc := service.NewPostService(mirrors)
	userSvc := service.NewUserService(mirrors)

	user := handler.NewUserHandler(userSvc)
	email := handler.NewEmailHandler(emailSvc)
	community := handler.NewCommunityHandler(communitySvc)
	post := handler.NewPostHandler(postSvc, voteSvc)
	vote := handler.NewVoteHandler(voteSvc)

	// 邮件验证码
	emailGroup := r.Group("/api/email")
	{
		emailGroup.POST("/:scope/code", email.SendCode)
	}

	// 用户
	userGroup := r.Group("/api/user")
	{
		userGroup.POST("/register", user.Register)
		userGroup.POST("/login", user.Login)
		userGroup.POST("/reset", user.ResetPassword)
	}

	// token
	tokenGroup := r.Group("/api/token")
	{
		tokenGroup.POST("/refresh", user.TokenRefresh)
	}

	// 登录态
	authGroup := r.Group("/api/auth")
	authGroup.Use(middleware.AuthMiddleware())
	{
		authGroup.POST("/logout", user.Logout)
		authGroup.POST("/change-password", user.ChangePassword)
	}

	// 社区
	communityGroup := r.Group("/api/community")
	{
		communityGroup.GET("/list", community.List)
		communityGroup.GET("/:name", community.Get)
	}
	communityAuth := r.Group("/api/community")
	communityAuth.Use(middleware.AuthMiddleware())
	{
		communityAuth.POST("/create", community.Create)
		communityAuth.POST("/:name/membership", community.Toggle)
		communityAuth.GET("/mine/list", community.MyMemberships)
	}

	// 帖子与投票
	postGroup := r.Group("/api/post")
	postGroup.Use(middleware.AuthMiddleware())
	{
		postGroup.POST("/create", post.Create)
		postGroup.GET("/:id", post.Get)
		postGroup.DELETE("/:id", post.Delete)
		postGroup.GET("/list/:name", post.ListByCommunity)
		postGroup.GET("/cursor/:name", post.ListCursor)
		postGroup.POST("/:id/vote", vote.Cast)
		postGroup.GET("/:id/vote", vote.Status)
	}

	return r
}
