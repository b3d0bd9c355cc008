package http

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/Rounit002/demohavenn/internal/config"
	"github.com/Rounit002/demohavenn/internal/domain/library"
	"github.com/Rounit002/demohavenn/internal/http/auth"
	branchhttp "github.com/Rounit002/demohavenn/internal/http/branches"
	studenthttp "github.com/Rounit002/demohavenn/internal/http/students"
	userhttp "github.com/Rounit002/demohavenn/internal/http/users"
	"github.com/Rounit002/demohavenn/internal/policyopa"
	"github.com/Rounit002/demohavenn/internal/ratelimit"
	"github.com/Rounit002/demohavenn/internal/repo/postgres"
	"github.com/Rounit002/demohavenn/internal/session"
	"github.com/Rounit002/demohavenn/internal/usecase"
)

type Server struct {
	cfg            config.Config
	r              *gin.Engine
	authService    *usecase.AuthService
	libraryService *usecase.LibraryService
	authenticator  *auth.SessionAuthenticator
	authorizer     *auth.Authorizer
	limiter        ratelimit.Limiter
}

type ServerDeps struct {
	AuthService    *usecase.AuthService
	LibraryService *usecase.LibraryService
	Sessions       session.Store
	Authorizer     *auth.Authorizer
	Limiter        ratelimit.Limiter
}

// NewServer wires the production dependency graph: gorm repositories over the
// store, redis-backed sessions and login throttling when REDIS_ADDR is set,
// and the optional rego policy hook.
func NewServer(cfg config.Config, store *postgres.Store) (*Server, error) {
	libraryRepo := postgres.NewLibraryRepo(store.DB)
	userRepo := postgres.NewUserRepo(store.DB)
	studentRepo := postgres.NewStudentRepo(store.DB)
	branchRepo := postgres.NewBranchRepo(store.DB)

	deps := ServerDeps{
		AuthService:    usecase.NewAuthService(libraryRepo, userRepo, studentRepo, cfg.BcryptCost),
		LibraryService: usecase.NewLibraryService(branchRepo, studentRepo, userRepo, cfg.BcryptCost),
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		sessions, err := session.NewRedisStore(client, cfg.SessionTTL())
		if err != nil {
			return nil, fmt.Errorf("session store: %w", err)
		}
		limiter, err := ratelimit.NewRedisLimiter(client, nil)
		if err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
		deps.Sessions = sessions
		deps.Limiter = limiter
	} else {
		log.Printf("REDIS_ADDR not set; using in-process sessions and rate limiting")
		deps.Sessions = session.NewMemoryStore(session.MemoryStoreConfig{TTL: cfg.SessionTTL()})
		deps.Limiter = ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{})
	}

	if cfg.AuthPolicyPath != "" {
		engine, err := policyopa.NewEngineFromPath(context.Background(), cfg.AuthPolicyPath)
		if err != nil {
			return nil, fmt.Errorf("auth policy: %w", err)
		}
		deps.Authorizer = auth.NewAuthorizerWithPolicy(engine)
	}

	return NewServerWithDeps(cfg, deps), nil
}

func NewServerWithDeps(cfg config.Config, deps ServerDeps) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	if deps.Sessions == nil {
		deps.Sessions = session.NewMemoryStore(session.MemoryStoreConfig{TTL: cfg.SessionTTL()})
	}
	if deps.Authorizer == nil {
		deps.Authorizer = auth.NewAuthorizer()
	}

	s := &Server{
		cfg:            cfg,
		r:              r,
		authService:    deps.AuthService,
		libraryService: deps.LibraryService,
		authenticator:  auth.NewSessionAuthenticator(deps.Sessions, cfg.SessionCookieName),
		authorizer:     deps.Authorizer,
		limiter:        deps.Limiter,
	}
	s.routes()
	return s
}

func (s *Server) Run() error {
	addr := s.cfg.HTTPAddr
	if addr == "" {
		addr = ":8080"
	}
	log.Printf("library service listening on %s", addr)
	return s.r.Run(addr)
}

// Engine exposes the router for httptest servers.
func (s *Server) Engine() *gin.Engine {
	return s.r
}

func (s *Server) routes() {
	s.r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	authHandler := auth.NewHandler(s.authService, s.authenticator, s.limiter, auth.HandlerConfig{
		CookieName:   s.cfg.SessionCookieName,
		CookieMaxAge: int(s.cfg.SessionTTL().Seconds()),
		CookieSecure: s.cfg.SessionSecure,
		LoginLimit:   s.cfg.LoginRateLimit,
		LoginWindow:  s.cfg.LoginRateWindowSeconds,
	})
	branchHandler := branchhttp.NewHandler(s.libraryService)
	studentHandler := studenthttp.NewHandler(s.libraryService)
	userHandler := userhttp.NewHandler(s.libraryService)

	authorize := func(combinator library.Combinator, perms ...string) gin.HandlerFunc {
		return auth.Authorize(s.authenticator, s.authorizer, combinator, perms...)
	}

	api := s.r.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.HandleRegister)
			authGroup.POST("/login", authHandler.HandleOwnerLogin)
			authGroup.GET("/status", authHandler.HandleStatus)
			authGroup.POST("/refresh", authHandler.HandleRefresh)
			authGroup.POST("/logout", authHandler.HandleLogout)
		}

		userGroup := api.Group("/users")
		{
			userGroup.POST("/login", authHandler.HandleUserLogin)
			userGroup.GET("", auth.RequireAdminOrStaff(s.authenticator), auth.BindTenant(), userHandler.HandleList)
			userGroup.POST("", authorize(library.CombinatorAll, library.PermManageStaff), userHandler.HandleCreate)
			userGroup.PUT("/:id/access", authorize(library.CombinatorAll, library.PermManageStaff), userHandler.HandleUpdateAccess)
		}

		studentGroup := api.Group("/students")
		{
			studentGroup.POST("/login", authHandler.HandleStudentLogin)
			studentGroup.GET("/me", auth.RequireStudent(s.authenticator), auth.BindTenant(), studentHandler.HandleMe)
			studentGroup.GET("", authorize(library.CombinatorAny, library.PermManageLibraryStudents), studentHandler.HandleList)
			studentGroup.POST("", authorize(library.CombinatorAll, library.PermManageLibraryStudents), studentHandler.HandleCreate)
			studentGroup.DELETE("/:id", authorize(library.CombinatorAll, library.PermManageLibraryStudents), studentHandler.HandleDelete)
		}

		branchGroup := api.Group("/branches")
		{
			branchGroup.GET("", authorize(library.CombinatorAny, library.PermManageBranches, library.PermManageLibraryStudents), branchHandler.HandleList)
			branchGroup.GET("/:id", authorize(library.CombinatorAny, library.PermManageBranches, library.PermManageLibraryStudents), branchHandler.HandleGet)
			branchGroup.POST("", authorize(library.CombinatorAll, library.PermManageBranches), branchHandler.HandleCreate)
			branchGroup.PUT("/:id", authorize(library.CombinatorAll, library.PermManageBranches), branchHandler.HandleUpdate)
			branchGroup.DELETE("/:id", authorize(library.CombinatorAll, library.PermManageBranches), branchHandler.HandleDelete)
		}
	}
}
