package router

import (
	"net/http"
	"time"

	"reforco-escolar/internal/auth"
	"reforco-escolar/internal/config"
	"reforco-escolar/internal/handler"
	"reforco-escolar/internal/logger"
	"reforco-escolar/internal/middleware"
	"reforco-escolar/internal/session"
	"reforco-escolar/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps are the shared components handlers are built from.
type Deps struct {
	DB        *gorm.DB
	Hasher    *util.Hasher
	Issuer    *auth.Issuer
	Directory *auth.Directory
}

// NewDeps wires the auth components on top of db and the session store.
func NewDeps(cfg *config.Config, db *gorm.DB, store session.Store) Deps {
	hasher := util.NewHasher(cfg.Security.BcryptCost, cfg.Security.HashWorkers)
	ttl := time.Duration(cfg.JWT.ExpireHours) * time.Hour
	return Deps{
		DB:        db,
		Hasher:    hasher,
		Issuer:    auth.NewIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, ttl, store),
		Directory: auth.NewDirectory(db, hasher),
	}
}

// SetupRouter configures the Gin engine and every API route.
func SetupRouter(cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(logger.Log), middleware.Recovery(logger.Log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.NoRoute(func(c *gin.Context) {
		util.Error(c, http.StatusNotFound, "route not found")
	})

	db := deps.DB
	pageSize := cfg.App.PageSize
	api := r.Group("/api")

	// login is the only public endpoint
	authHandler := handler.NewAuthHandler(db, deps.Directory, deps.Issuer, deps.Hasher)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(middleware.NewAuthenticator(deps.Issuer, deps.Directory)),
		middleware.AuditMiddleware(db, logger.Log),
	)
	staff := middleware.RequireStaff()
	admin := middleware.RequireAdmin()

	profileHandler := handler.NewProfileHandler(db, deps.Directory, deps.Hasher)
	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/auth/me", handler.GetMe)
	protected.POST("/auth/register", admin, authHandler.Register)
	protected.PUT("/auth/change-password", profileHandler.ChangePassword)
	protected.PUT("/auth/profile", profileHandler.UpdateProfile)

	studentHandler := handler.NewStudentHandler(db, deps.Directory, deps.Hasher, pageSize)
	protected.GET("/students", studentHandler.ListStudents)
	protected.POST("/students", staff, studentHandler.CreateStudent)
	protected.GET("/students/:id", studentHandler.GetStudent)
	protected.PUT("/students/:id", staff, studentHandler.UpdateStudent)
	protected.DELETE("/students/:id", staff, studentHandler.DeleteStudent)

	tutoringHandler := handler.NewTutoringHandler(db, pageSize)
	protected.GET("/tutorings", tutoringHandler.ListTutorings)
	protected.POST("/tutorings", staff, tutoringHandler.CreateTutoring)
	protected.GET("/tutorings/:id", tutoringHandler.GetTutoring)
	protected.PUT("/tutorings/:id", staff, tutoringHandler.UpdateTutoring)
	protected.DELETE("/tutorings/:id", staff, tutoringHandler.DeleteTutoring)

	paymentHandler := handler.NewPaymentHandler(db, pageSize)
	protected.GET("/payments", paymentHandler.ListPayments)
	protected.GET("/payments/export", staff, paymentHandler.Export)
	protected.POST("/payments", staff, paymentHandler.CreatePayment)
	protected.GET("/payments/:id", paymentHandler.GetPayment)
	protected.PUT("/payments/:id", staff, paymentHandler.UpdatePayment)
	protected.DELETE("/payments/:id", staff, paymentHandler.DeletePayment)

	evaluationHandler := handler.NewEvaluationHandler(db, pageSize)
	protected.GET("/evaluations", evaluationHandler.ListEvaluations)
	protected.POST("/evaluations", staff, evaluationHandler.CreateEvaluation)
	protected.GET("/evaluations/:id", evaluationHandler.GetEvaluation)
	protected.PUT("/evaluations/:id", staff, evaluationHandler.UpdateEvaluation)
	protected.DELETE("/evaluations/:id", staff, evaluationHandler.DeleteEvaluation)

	materials := protected.Group("/materials", staff)
	materialHandler := handler.NewMaterialHandler(db, pageSize)
	materials.GET("", materialHandler.ListMaterials)
	materials.POST("", materialHandler.CreateMaterial)
	materials.GET("/:id", materialHandler.GetMaterial)
	materials.PUT("/:id", materialHandler.UpdateMaterial)
	materials.DELETE("/:id", materialHandler.DeleteMaterial)

	logHandler := handler.NewLogHandler(db, pageSize)
	protected.GET("/audit-logs", admin, logHandler.ListLogs)

	return r
}
