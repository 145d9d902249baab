package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"readre/pkg/session"
)

var (
	cfg      Config
	sessions *session.Manager
	bridge   *session.Bridge
)

func main() {
	var err error
	cfg, err = loadConfig()
	if err != nil {
		log.Fatal(err)
	}

	// Support a lightweight migrate command: `./readre migrate`
	// Runs AutoMigrate then exits. Useful for CI or manual DB setup.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		cfg.AutoMigrate = true
		initDB(cfg)
		fmt.Println("migration completed")
		return
	}

	initDB(cfg)

	store := session.NewGormStore(db)
	signer := session.NewHS256Signer([]byte(cfg.SecretKey))
	sessions = session.NewManager(store, signer, cfg.AccessTTL())
	bridge = session.NewBridge(session.NewGoogleVerifier(), store, sessions)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	setupRoutes(r)

	r.Run(fmt.Sprintf(":%d", cfg.Port))
}
