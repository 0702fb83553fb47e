package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/pixeldodo/pixeldodo/app/controllers"
	"github.com/pixeldodo/pixeldodo/app/models"
	"github.com/pixeldodo/pixeldodo/app/repository"
	"github.com/pixeldodo/pixeldodo/internal/pkg/database"
	"github.com/pixeldodo/pixeldodo/internal/pkg/generation"
	"github.com/pixeldodo/pixeldodo/internal/pkg/imagegen"
	"github.com/pixeldodo/pixeldodo/internal/pkg/ledger"
	"github.com/pixeldodo/pixeldodo/internal/pkg/metrics/counter"
	"github.com/pixeldodo/pixeldodo/internal/pkg/middleware"
	"github.com/pixeldodo/pixeldodo/internal/pkg/oauth"
	"github.com/pixeldodo/pixeldodo/internal/pkg/s3mirror"
	"github.com/pixeldodo/pixeldodo/internal/pkg/session"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// init oauth providers
	oauth.Setup()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	// init repositories
	repository.InitializeFactory(database.GetDB())

	// Wire the generation gate: repositories, credit ledger, upstream
	// client, and post-generation hooks.
	controllers.InitializeGenerateController(buildGenerationService())

	h.registerPublicRoutes(app)
	h.registerAdminRoutes(app)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}

func buildGenerationService() *generation.Service {
	factory := repository.GetGlobalFactory()
	users := factory.GetUserRepository()
	images := factory.GetGeneratedImageRepository()

	led := ledger.NewService(users)
	client := imagegen.NewClientFromEnv()

	hooks := []generation.Hook{
		func(models.GeneratedImage) {
			if err := counter.AddGeneration(); err != nil {
				log.Warnf("failed to count generation: %v", err)
			}
		},
	}

	mirror, err := s3mirror.NewMirror(images)
	if err != nil {
		log.Errorf("S3 mirror disabled: %v", err)
	} else if mirror != nil {
		hooks = append(hooks, mirror.Hook())
	}

	return generation.NewService(users, images, led, client, hooks...)
}
