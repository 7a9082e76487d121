package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/openchurchhq/church-community-backend/internal/auth"
	"github.com/openchurchhq/church-community-backend/internal/campus"
	campusHttp "github.com/openchurchhq/church-community-backend/internal/campus/http"
	"github.com/openchurchhq/church-community-backend/internal/church"
	churchHttp "github.com/openchurchhq/church-community-backend/internal/church/http"
	"github.com/openchurchhq/church-community-backend/internal/invite"
	inviteHttp "github.com/openchurchhq/church-community-backend/internal/invite/http"
	"github.com/openchurchhq/church-community-backend/internal/joinrequest"
	joinrequestHttp "github.com/openchurchhq/church-community-backend/internal/joinrequest/http"
	"github.com/openchurchhq/church-community-backend/internal/membership"
	membershipHttp "github.com/openchurchhq/church-community-backend/internal/membership/http"
	"github.com/openchurchhq/church-community-backend/internal/ministry"
	ministryHttp "github.com/openchurchhq/church-community-backend/internal/ministry/http"
	"github.com/openchurchhq/church-community-backend/internal/pkg/storage"
	"github.com/openchurchhq/church-community-backend/internal/safety"
	safetyHttp "github.com/openchurchhq/church-community-backend/internal/safety/http"
	"github.com/openchurchhq/church-community-backend/internal/user"
	userHttp "github.com/openchurchhq/church-community-backend/internal/user/http"
)

// RouterConfig carries the services and cross-cutting pieces the router
// assembles into the HTTP surface.
type RouterConfig struct {
	IsProduction bool
	ProdOrigins  []string

	JWTManager *auth.JWTManager
	Files      storage.Storage

	Users        user.Service
	Churches     church.Service
	Memberships  membership.Service
	Campuses     campus.Service
	Invites      invite.Service
	JoinRequests joinrequest.Service
	Ministries   ministry.Service
	Safety       safety.Service
}

// NewRouter assembles middleware (CORS, Logger, Auth) and registers routes
// for every module under /v1.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction {
		corsConfig.AllowOrigins = cfg.ProdOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	authMiddleware := auth.AuthRequired(cfg.JWTManager)

	userHandler := userHttp.NewHandler(cfg.Users, cfg.JWTManager)
	churchHandler := churchHttp.NewHandler(cfg.Churches, cfg.Files)
	membershipHandler := membershipHttp.NewHandler(cfg.Memberships)
	campusHandler := campusHttp.NewHandler(cfg.Campuses)
	inviteHandler := inviteHttp.NewHandler(cfg.Invites)
	joinrequestHandler := joinrequestHttp.NewHandler(cfg.JoinRequests)
	ministryHandler := ministryHttp.NewHandler(cfg.Ministries)
	safetyHandler := safetyHttp.NewHandler(cfg.Safety)

	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware)
		churchHttp.RegisterRoutes(v1, churchHandler, authMiddleware)

		// Authenticated endpoints outside the church hierarchy.
		authed := v1.Group("")
		authed.Use(authMiddleware)
		{
			inviteHttp.RegisterRedeemRoutes(authed, inviteHandler)
			joinrequestHttp.RegisterUserRoutes(authed, joinrequestHandler)
		}

		// Church-scoped sub-resources share one group so the :churchID
		// param name stays consistent across modules.
		churchScoped := v1.Group("/churches/:churchID")
		churchScoped.Use(authMiddleware)
		{
			membershipHttp.RegisterRoutes(churchScoped, membershipHandler)
			campusHttp.RegisterRoutes(churchScoped, campusHandler)
			inviteHttp.RegisterRoutes(churchScoped, inviteHandler)
			joinrequestHttp.RegisterRoutes(churchScoped, joinrequestHandler)
			ministryHttp.RegisterRoutes(churchScoped, ministryHandler)
			safetyHttp.RegisterRoutes(churchScoped, safetyHandler)
		}
	}

	return r
}
