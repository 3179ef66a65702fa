package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/hireloop/hireloop/internal/api/handlers"
	"github.com/hireloop/hireloop/internal/api/middleware"
	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/services"
)

type Deps struct {
	JWT       middleware.JWTConfig
	Team      services.TeamService
	Limiter   *middleware.RedisLimiter
	RateLimit int // requests per minute, 0 disables

	Jobs       *handlers.JobHandler
	Candidates *handlers.CandidateHandler
	Interviews *handlers.InterviewHandler
	Offers     *handlers.OfferHandler
	Comments   *handlers.CommentHandler
	Tasks      *handlers.TaskHandler
	Members    *handlers.TeamHandler
	Activity   *handlers.ActivityHandler
	Analytics  *handlers.AnalyticsHandler
	Files      *handlers.FileHandler
	WS         *handlers.WSHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// storage ids arrive path-escaped in a single segment
	r.UseRawPath = true
	r.UnescapePathValues = true

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	authed := []gin.HandlerFunc{middleware.JWTAuth(d.JWT)}
	if d.Limiter != nil && d.RateLimit > 0 {
		authed = append(authed, middleware.RateLimit(d.Limiter, d.RateLimit))
	}
	authed = append(authed, middleware.ResolveActor(d.Team))

	perm := middleware.RequirePermission

	api := r.Group("/api", authed...)

	jobs := api.Group("/jobs")
	jobs.GET("", d.Jobs.List)
	jobs.GET("/:id", d.Jobs.Get)
	jobs.POST("", perm(models.PermManageJobs), d.Jobs.Create)
	jobs.PATCH("/:id", perm(models.PermManageJobs), d.Jobs.Update)
	jobs.POST("/:id/status", perm(models.PermManageJobs), d.Jobs.SetStatus)
	jobs.POST("/:id/team", perm(models.PermManageJobs), d.Jobs.Assign)
	jobs.DELETE("/:id/team/:member_id", perm(models.PermManageJobs), d.Jobs.Unassign)

	cands := api.Group("/candidates")
	cands.GET("", d.Candidates.List)
	cands.GET("/:id", d.Candidates.Get)
	cands.GET("/:id/interviews", d.Interviews.ListByCandidate)
	cands.POST("", perm(models.PermManageCandidates), d.Candidates.Create)
	cands.PATCH("/:id", perm(models.PermManageCandidates), d.Candidates.UpdateDetails)
	cands.POST("/:id/advance", perm(models.PermManageCandidates), d.Candidates.Advance)
	cands.POST("/:id/reject", perm(models.PermManageCandidates), d.Candidates.Reject)
	cands.PUT("/:id/evaluation", perm(models.PermManageCandidates), d.Candidates.UpdateEvaluation)
	cands.POST("/:id/resume", perm(models.PermManageFiles), d.Candidates.UploadResume)
	cands.POST("/:id/files", perm(models.PermManageFiles), d.Candidates.AttachFile)

	ivs := api.Group("/interviews")
	ivs.GET("/upcoming", d.Interviews.Upcoming)
	ivs.POST("", perm(models.PermScheduleInterviews), d.Interviews.Schedule)
	ivs.POST("/:id/reschedule", perm(models.PermScheduleInterviews), d.Interviews.Reschedule)
	ivs.POST("/:id/cancel", perm(models.PermScheduleInterviews), d.Interviews.Cancel)
	ivs.POST("/:id/no-show", perm(models.PermScheduleInterviews), d.Interviews.NoShow)
	ivs.POST("/:id/feedback", perm(models.PermSubmitFeedback), d.Interviews.Feedback)

	offers := api.Group("/offers")
	offers.GET("/:id", d.Offers.Get)
	offers.PUT("", perm(models.PermCreateOffers), d.Offers.Upsert)
	offers.POST("/:id/review", perm(models.PermApproveOffers), d.Offers.Review)
	offers.POST("/:id/send", perm(models.PermSendOffers), d.Offers.Send)
	offers.POST("/:id/respond", perm(models.PermSendOffers), d.Offers.Respond)
	offers.POST("/:id/withdraw", perm(models.PermSendOffers), d.Offers.Withdraw)

	comments := api.Group("/comments")
	comments.GET("", d.Comments.List)
	comments.POST("", perm(models.PermComment), d.Comments.Add)
	comments.PATCH("/:id", perm(models.PermComment), d.Comments.Edit)
	comments.DELETE("/:id", perm(models.PermComment), d.Comments.Delete)
	comments.POST("/:id/reactions", perm(models.PermComment), d.Comments.AddReaction)
	comments.DELETE("/:id/reactions", perm(models.PermComment), d.Comments.RemoveReaction)

	tasks := api.Group("/tasks")
	tasks.GET("", d.Tasks.ListRelated)
	tasks.GET("/mine", d.Tasks.Mine)
	tasks.POST("", perm(models.PermManageTasks), d.Tasks.Create)
	tasks.POST("/:id/status", d.Tasks.UpdateStatus)
	tasks.POST("/:id/assign", perm(models.PermManageTasks), d.Tasks.Reassign)

	team := api.Group("/team")
	team.GET("", d.Members.List)
	team.GET("/me", d.Members.Me)
	team.POST("", perm(models.PermManageTeam), d.Members.Create)
	team.POST("/:id/role", perm(models.PermManageTeam), d.Members.ChangeRole)
	team.POST("/:id/deactivate", perm(models.PermManageTeam), d.Members.Deactivate)

	api.GET("/activity", d.Activity.List)
	api.GET("/notifications", d.Activity.Notifications)
	api.POST("/notifications/:id/read", d.Activity.MarkRead)

	analytics := api.Group("/analytics", perm(models.PermViewAnalytics))
	analytics.GET("/metrics", d.Analytics.Metrics)
	analytics.GET("/funnel", d.Analytics.Funnel)
	analytics.GET("/time-to-hire", d.Analytics.TimeToHire)
	analytics.GET("/sources", d.Analytics.Sources)
	analytics.GET("/interviews", d.Analytics.Interviews)
	analytics.GET("/compliance", perm(models.PermViewCompliance), d.Analytics.Compliance)

	files := api.Group("/files")
	files.POST("/upload-url", perm(models.PermManageFiles), d.Files.UploadURL)
	files.GET("/:storage_id/url", d.Files.URL)
	files.GET("/download/:storage_id", d.Files.Download)

	// WebSocket
	ws := r.Group("/ws", authed...)
	ws.GET("/activity", d.WS.ActivityFeed)
}
