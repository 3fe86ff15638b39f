package router

import (
	"aitools/internal/handlers"
	"aitools/internal/metrics"
	"aitools/internal/middleware"
	"aitools/internal/services"

	"github.com/gin-gonic/gin"
)

// Deps is everything the routes need, built once in main.
type Deps struct {
	SiteURL  string
	SiteName string

	Users       *services.UserService
	Tools       *services.ToolService
	Categories  *services.CategoryService
	Bookmarks   *services.BookmarkService
	Upvotes     *services.UpvoteService
	Reviews     *services.ReviewService
	Submissions *services.SubmissionService
	Blog        *services.BlogService
	Newsletter  *services.NewsletterService
	Analytics   *services.AnalyticsService
	Metadata    *services.MetadataFetcher
	Captcha     *services.CaptchaService
	Images      *services.ImageStore
	Tracker     *services.Tracker
	Metrics     *metrics.Metrics
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Handlers
	authHandler := handlers.NewAuthHandler(d.Users, d.Captcha)
	catalogHandler := handlers.NewCatalogHandler(d.Tools, d.Categories, d.Bookmarks, d.Upvotes, d.Tracker)
	toolHandler := handlers.NewToolHandler(d.Tools, d.Reviews, d.Bookmarks, d.Upvotes, d.Tracker, d.Metrics)
	toggleHandler := handlers.NewToggleHandler(d.Bookmarks, d.Upvotes, d.Upvotes, d.Metrics)
	bookmarksHandler := handlers.NewBookmarksHandler(d.Bookmarks)
	submissionHandler := handlers.NewSubmissionHandler(d.Submissions, d.Captcha, d.Tracker, d.Metrics)
	newsletterHandler := handlers.NewNewsletterHandler(d.Newsletter, d.Metrics)
	blogHandler := handlers.NewBlogHandler(d.Blog, d.Tracker)
	seoHandler := handlers.NewSEOHandler(d.SiteURL, d.SiteName, d.Tools, d.Blog)
	imageHandler := handlers.NewImageHandler(d.Images)
	adminHandler := handlers.NewAdminHandler(handlers.AdminServices{
		Tools:       d.Tools,
		Categories:  d.Categories,
		Submissions: d.Submissions,
		Blog:        d.Blog,
		Newsletter:  d.Newsletter,
		Analytics:   d.Analytics,
		Metadata:    d.Metadata,
	}, d.Metrics)

	// 公共路由 (Public Routes)
	r.GET("/", catalogHandler.Index)            // 首页 - 工具目录
	r.GET("/tool/:id", toolHandler.Detail)      // 工具详情页
	r.GET("/blog", blogHandler.List)            // 博客列表
	r.GET("/blog/:slug", blogHandler.Show)      // 博客文章
	r.GET("/submit", submissionHandler.Show)    // 提交工具页面
	r.POST("/submit", submissionHandler.Create) // 提交工具
	r.POST("/newsletter", newsletterHandler.Subscribe)

	r.GET("/signup", authHandler.ShowRegister) // 注册页面
	r.POST("/signup", authHandler.Register)    // 提交注册
	r.GET("/login", authHandler.ShowLogin)     // 登录页面
	r.POST("/login", authHandler.Login)        // 提交登录
	r.GET("/logout", authHandler.Logout)       // 退出登录

	r.GET("/robots.txt", seoHandler.RobotsTxt)
	r.GET("/sitemap.xml", seoHandler.SitemapXML)
	r.GET("/feed.xml", seoHandler.RSSFeed)
	r.GET("/img/:id", imageHandler.Proxy) // 图片反代
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	// 匿名用户点击会收到提示并跳转登录，所以不走 AuthRequired
	r.POST("/bookmark/:id", toggleHandler.Bookmark) // 收藏/取消收藏
	r.POST("/upvote/:id", toggleHandler.Upvote)     // 点赞/取消点赞

	// 受保护路由 (Protected Routes)
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/tool/:id/review", toolHandler.SubmitReview) // 提交评价
		authorized.GET("/bookmarks", bookmarksHandler.List)           // 我的收藏
		authorized.DELETE("/bookmarks/:id", bookmarksHandler.Remove)  // 移除收藏
	}

	// 管理后台 (Admin Routes)
	admin := r.Group("/admin")
	admin.Use(middleware.AdminRequired())
	{
		admin.GET("", adminHandler.Dashboard) // 访问统计

		admin.GET("/tools", adminHandler.Tools)
		admin.GET("/tools/new", adminHandler.NewTool)
		admin.POST("/tools/prefill", adminHandler.Prefill) // 抓取链接预填表单
		admin.POST("/tools", adminHandler.CreateTool)
		admin.GET("/tools/:id/edit", adminHandler.EditTool)
		admin.POST("/tools/:id", adminHandler.UpdateTool)
		admin.DELETE("/tools/:id", adminHandler.DeleteTool)
		admin.POST("/tools/:id/featured", adminHandler.ToggleFeatured)

		admin.GET("/categories", adminHandler.Categories)
		admin.POST("/categories", adminHandler.CreateCategory)
		admin.POST("/categories/:id", adminHandler.UpdateCategory)
		admin.DELETE("/categories/:id", adminHandler.DeleteCategory)

		admin.GET("/submissions", adminHandler.Submissions)                    // 审核列表
		admin.POST("/submissions/:id/approve", adminHandler.ApproveSubmission) // 通过
		admin.POST("/submissions/:id/reject", adminHandler.RejectSubmission)   // 拒绝

		admin.GET("/blog", adminHandler.Posts)
		admin.GET("/blog/new", adminHandler.NewPost)
		admin.POST("/blog", adminHandler.CreatePost)
		admin.GET("/blog/:id/edit", adminHandler.EditPost)
		admin.POST("/blog/:id", adminHandler.UpdatePost)
		admin.DELETE("/blog/:id", adminHandler.DeletePost)

		admin.GET("/subscribers", adminHandler.Subscribers) // 订阅者
		admin.POST("/upload", imageHandler.Upload)          // logo / 封面图上传
	}
}
