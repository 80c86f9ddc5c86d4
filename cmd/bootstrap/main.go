package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"task-rbac/internal/adapters/audit"
	adaptermiddleware "task-rbac/internal/adapters/http/middleware"
	adapterlogger "task-rbac/internal/adapters/logger"
	"task-rbac/internal/adapters/metrics"
	"task-rbac/internal/application"
	"task-rbac/internal/infrastructure/auth"
	"task-rbac/internal/infrastructure/config"
	"task-rbac/internal/infrastructure/dynamodb"
	httpiface "task-rbac/internal/interfaces/http"
	"task-rbac/internal/platform/lambda"
)

func main() {
	bootLogger := adapterlogger.New()

	cfg, err := config.Load(os.Getenv)
	if err != nil {
		bootLogger.Error(context.Background(), "configuration error", "error", err)
		os.Exit(1)
	}
	level, err := adapterlogger.ParseLevel(cfg.LogLevel)
	if err != nil {
		bootLogger.Error(context.Background(), "configuration error", "error", err)
		os.Exit(1)
	}
	logger := adapterlogger.NewWithWriter(os.Stdout, level)
	xray.Configure(xray.Config{LogLevel: "error"})

	ctx := context.Background()
	ddbClient, err := dynamodb.NewClient(ctx, cfg.Region, cfg.TableName)
	if err != nil {
		logger.Error(ctx, "failed to initialize dynamodb client", "error", err)
		os.Exit(1)
	}
	orgRepo := dynamodb.NewOrganizationRepository(ddbClient)
	roleRepo := dynamodb.NewRoleRepository(ddbClient)
	userRepo := dynamodb.NewUserRepository(ddbClient)
	taskRepo := dynamodb.NewTaskRepository(ddbClient)

	auditLog := audit.NewLog(
		audit.WithLogger(logger.With("component", "audit")),
		audit.WithMirror(dynamodb.NewAuditStore(ddbClient), cfg.AuditBufferSize),
	)
	decisions := metrics.NewDecisions()

	authz := application.NewAuthorizationService(auditLog, decisions, logger)
	permSvc := application.NewPermissionService(authz)
	handlers := httpiface.Handlers{
		Tasks:         httpiface.NewTasksHandler(application.NewTaskService(taskRepo, userRepo, authz, logger), logger),
		Audit:         httpiface.NewAuditHandler(application.NewAuditService(auditLog, authz)),
		Users:         httpiface.NewUsersHandler(application.NewUserService(userRepo, roleRepo, authz), permSvc),
		Roles:         httpiface.NewRolesHandler(application.NewRoleService(roleRepo, authz)),
		Organizations: httpiface.NewOrganizationsHandler(application.NewOrganizationService(orgRepo, authz)),
		Permissions:   httpiface.NewPermissionsHandler(permSvc),
		Authorization: httpiface.NewAuthorizationHandler(authz),
		Metrics:       decisions.Handler(),
	}

	authMode, err := adaptermiddleware.ParseAuthMode(cfg.AuthMode)
	if err != nil {
		logger.Error(ctx, "configuration error", "error", err)
		os.Exit(1)
	}
	var verifier auth.Verifier
	switch authMode {
	case adaptermiddleware.ModeCognito:
		verifier = auth.NewCognitoVerifier(cfg.UserPoolID, cfg.Region)
	case adaptermiddleware.ModeJWT:
		if verifier, err = auth.NewHMACVerifier(cfg.JWTSigningKey); err != nil {
			logger.Error(ctx, "failed to initialize token verifier", "error", err)
			os.Exit(1)
		}
	case adaptermiddleware.ModeNone:
		logger.Warn(ctx, "authentication disabled, trusting "+adaptermiddleware.DevUserHeader+" header")
	}
	authMiddleware, err := adaptermiddleware.AuthMiddleware(authMode, verifier)
	if err != nil {
		logger.Error(ctx, "failed to initialize auth middleware", "error", err)
		os.Exit(1)
	}
	mw := httpiface.Middleware{
		XRay:          adaptermiddleware.XRayMiddleware("task-rbac-http"),
		RequestLogger: adaptermiddleware.RequestLogger(logger),
		RequestMeta:   adaptermiddleware.RequestMeta(),
		Auth:          authMiddleware,
		Principal:     adaptermiddleware.Principal(application.NewPrincipalService(userRepo, roleRepo), logger),
	}
	e := httpiface.NewMainRouter(handlers, mw)

	if cfg.Runtime == config.RuntimeLambda {
		logger.Info(ctx, "starting lambda handler")
		lambda.Start(e, lambda.Hooks{
			AfterInvoke: func(ctx context.Context) {
				if err := auditLog.Flush(ctx); err != nil {
					logger.Warn(ctx, "audit mirror not flushed before response", "error", err)
				}
			},
			Shutdown: func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 400*time.Millisecond)
				defer cancel()
				if err := auditLog.Close(shutdownCtx); err != nil {
					logger.Error(shutdownCtx, "audit mirror did not drain", "error", err)
				}
			},
		})
		return
	}

	go func() {
		logger.Info(ctx, "starting http server", "port", cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "http server stopped", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "http shutdown failed", "error", err)
	}
	if err := auditLog.Close(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "audit mirror did not drain", "error", err)
	}
}
