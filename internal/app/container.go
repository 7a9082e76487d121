package app

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openchurchhq/church-community-backend/internal/api"
	"github.com/openchurchhq/church-community-backend/internal/auth"
	"github.com/openchurchhq/church-community-backend/internal/campus"
	"github.com/openchurchhq/church-community-backend/internal/church"
	"github.com/openchurchhq/church-community-backend/internal/invite"
	"github.com/openchurchhq/church-community-backend/internal/joinrequest"
	"github.com/openchurchhq/church-community-backend/internal/membership"
	"github.com/openchurchhq/church-community-backend/internal/ministry"
	"github.com/openchurchhq/church-community-backend/internal/pkg/storage"
	"github.com/openchurchhq/church-community-backend/internal/safety"
	"github.com/openchurchhq/church-community-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  []string
	DBPool       *pgxpool.Pool
	JWTSecret    string
	JWTTTL       time.Duration
	BcryptCost   int
	UploadDir    string
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) (*Container, error) {
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	files, err := storage.NewLocalStorage(cfg.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("init file storage: %w", err)
	}

	// User module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher)

	// Membership module. The campus repository doubles as the campus
	// directory, breaking the membership <-> campus service cycle.
	campusRepo := campus.NewPgxRepository(cfg.DBPool)
	membershipRepo := membership.NewPgxRepository(cfg.DBPool)
	membershipService := membership.NewService(membershipRepo, campusRepo)

	// Campus module
	campusService := campus.NewService(campusRepo, membershipService)

	// Church module
	churchRepo := church.NewPgxRepository(cfg.DBPool)
	churchService := church.NewService(churchRepo, membershipService)

	// Invite module
	inviteRepo := invite.NewPgxRepository(cfg.DBPool)
	inviteService := invite.NewService(inviteRepo, membershipService)

	// Join request module
	joinrequestRepo := joinrequest.NewPgxRepository(cfg.DBPool)
	joinrequestService := joinrequest.NewService(joinrequestRepo, membershipService, campusRepo)

	// Ministry module
	ministryRepo := ministry.NewPgxRepository(cfg.DBPool)
	ministryService := ministry.NewService(ministryRepo, membershipService, campusRepo)

	// Safety module
	safetyRepo := safety.NewPgxRepository(cfg.DBPool)
	safetyService := safety.NewService(safetyRepo, membershipService, campusRepo)

	router := api.NewRouter(api.RouterConfig{
		IsProduction: cfg.IsProduction,
		ProdOrigins:  cfg.ProdOrigins,
		JWTManager:   jwtManager,
		Files:        files,
		Users:        userService,
		Churches:     churchService,
		Memberships:  membershipService,
		Campuses:     campusService,
		Invites:      inviteService,
		JoinRequests: joinrequestService,
		Ministries:   ministryService,
		Safety:       safetyService,
	})

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
	}, nil
}
