package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"scrapbook/auth"
	"scrapbook/config"
	"scrapbook/db"
	"scrapbook/editor"
	"scrapbook/handlers"
	"scrapbook/models"
	"scrapbook/processing"
	"scrapbook/storage"
	"scrapbook/utils"
	"scrapbook/web"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	gormsessions "github.com/gin-contrib/sessions/gorm"
	"github.com/gin-gonic/autotls"
	"github.com/gin-gonic/gin"
)

const (
	sessionCookieName  = "token"
	processingInterval = 30 * time.Second
)

func serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := openDB(); err != nil {
		return err
	}
	defer db.Close()
	if err := models.SeedAdmin(); err != nil {
		return err
	}
	if err := storage.Init(); err != nil {
		return err
	}
	handlers.Init()
	handlers.Editors = editor.NewRegistry(time.Duration(config.EDIT_SESSION_TTL)*time.Second, storage.Default())
	go handlers.Editors.Run(ctx)
	processing.Init()
	go processing.StartProcessing(ctx, storage.Default(), processingInterval)

	if !config.DEBUG_MODE {
		gin.SetMode(gin.ReleaseMode)
	}
	sessionStore := gormsessions.NewStore(db.Instance, true, []byte(config.SESSION_KEY))
	router := newRouter(sessionStore)

	if config.TLS_DOMAINS != "" {
		// autotls manages its own listeners, it stops with the process
		return autotls.Run(router, strings.Split(config.TLS_DOMAINS, ",")...)
	}
	server := &http.Server{Addr: config.BIND_ADDRESS, Handler: router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()
	log.Printf("Listening on %s", config.BIND_ADDRESS)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Printf("Server stopped")
	return nil
}

func newRouter(sessionStore sessions.Store) *gin.Engine {
	router := gin.Default()
	_ = router.SetTrustedProxies([]string{})
	if config.DEBUG_MODE {
		router.Use(utils.ErrorLogMiddleware)
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "PUT", "POST"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           30 * 24 * time.Hour,
	}))
	sessionStore.Options(sessions.Options{Path: "/", MaxAge: config.SESSION_MAXAGE, HttpOnly: true})
	router.Use(sessions.Sessions(sessionCookieName, sessionStore))
	if !config.DEBUG_MODE {
		router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/album/cover", "/album/element/image", "/w/album/"})))
	}
	router.Use(utils.CacheControl(utils.CacheNone)) // image end-points override it
	authRouter := &auth.Router{Base: router}
	albumRouter := &auth.Router{Base: router, Required: []models.Permission{models.PermissionAlbums}}
	// User handlers
	router.POST("/user/login", handlers.UserLogin)
	authRouter.POST("/user/logout", handlers.UserLogout)
	authRouter.GET("/user/status", handlers.UserGetStatus)
	authRouter.POST("/user/save", handlers.UserSave, models.PermissionAdmin)
	// Album handlers
	albumRouter.GET("/album/list", handlers.AlbumList)
	albumRouter.GET("/album/get", handlers.AlbumGet)
	albumRouter.POST("/album/create", handlers.AlbumCreate)
	albumRouter.POST("/album/save", handlers.AlbumSave)
	albumRouter.POST("/album/delete", handlers.AlbumDelete)
	albumRouter.PUT("/album/cover", handlers.AlbumCoverUpload)
	albumRouter.GET("/album/cover", handlers.AlbumCover)
	albumRouter.GET("/album/pages", handlers.AlbumPages)
	albumRouter.GET("/album/element/image", handlers.AlbumElementImage)
	albumRouter.GET("/album/share", handlers.AlbumShare)
	// Page editor handlers
	albumRouter.POST("/editor/open", handlers.EditorOpen)
	albumRouter.GET("/editor/state", handlers.EditorState)
	albumRouter.POST("/editor/page/add", handlers.EditorAddPage)
	albumRouter.POST("/editor/page/delete", handlers.EditorDeletePage)
	albumRouter.POST("/editor/page/current", handlers.EditorCurrentPage)
	albumRouter.POST("/editor/element/add", handlers.EditorAddElement)
	albumRouter.POST("/editor/element/update", handlers.EditorUpdateElement)
	albumRouter.POST("/editor/element/transform", handlers.EditorTransform)
	albumRouter.POST("/editor/element/delete", handlers.EditorDeleteElement)
	albumRouter.POST("/editor/element/restore", handlers.EditorRestoreElement)
	albumRouter.PUT("/editor/element/image", handlers.EditorElementImage)
	albumRouter.POST("/editor/orientation", handlers.EditorOrientation)
	albumRouter.POST("/editor/save", handlers.EditorSave)
	albumRouter.POST("/editor/close", handlers.EditorClose)

	/*
	 *	Web interface
	 */
	router.GET("/w/album/:token/", web.AlbumView)
	router.GET("/w/album/:token/image", web.AlbumImageView)
	router.GET("/robots.txt", utils.CacheControl(utils.CacheDay), web.DisallowRobots)
	return router
}
