package server

import (
	"fmt"
	"log"
	"net/http"
	"text/template"
	"time"

	"balloonpop/internal/config"
	"balloonpop/internal/db"
	"balloonpop/internal/difficulty"
	"balloonpop/internal/gamedata"
	"balloonpop/internal/rooms"
)

func Run() error {
	appCfg := config.Load()

	profile, err := difficulty.ResolveProfile(appCfg.DifficultyProfile, appCfg.ProfilesPath)
	if err != nil {
		return fmt.Errorf("resolving difficulty profile: %w", err)
	}

	gameCfg := gamedata.DefaultConfig()
	gameCfg.RoundDuration = appCfg.RoundDuration
	gameCfg.Profile = profile
	roomStore := rooms.NewStore(gameCfg)

	funcMap := template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}
	tmpl := template.Must(template.New("").Funcs(funcMap).ParseFiles(
		"templates/home.html",
		"templates/game.html",
		"templates/join.html",
		"templates/balloon.html",
		"templates/lobby.html",
		"templates/recap.html",
		"templates/analytics/dashboard.html",
		"templates/analytics/leaderboard.html",
		"templates/analytics/player.html",
		"templates/analytics/game.html",
	))

	srv := &Server{
		Rooms: roomStore,
		Tmpl:  tmpl,
	}

	// Optional database connection
	if appCfg.DatabaseURL != "" {
		database, err := db.Connect(appCfg.DatabaseURL)
		if err != nil {
			log.Printf("[DB] Failed to connect: %v (running without database)\n", err)
		} else {
			if err := database.Migrate(); err != nil {
				log.Printf("[DB] Migration failed: %v\n", err)
			}
			srv.DB = database
			srv.PopBuffer = make(chan db.PopEvent, 1000)
			srv.AdjustBuffer = make(chan db.AdjustmentEvent, 1000)
			go popBatchWriter(database, srv.PopBuffer)
			go adjustBatchWriter(database, srv.AdjustBuffer)
			log.Println("[DB] Database connected and migrations applied")
		}
	} else {
		log.Println("[DB] DATABASE_URL not set, running without database")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", srv.handleHome)
	mux.HandleFunc("/rooms/create", srv.handleCreateRoom)
	mux.HandleFunc("/rooms/join", srv.handleJoinRoom)
	mux.HandleFunc("/room", srv.handleRoom)
	mux.HandleFunc("/room/{code}", srv.handleRoomWithCode)
	mux.HandleFunc("/room/register", srv.handleRegister)
	mux.HandleFunc("/room/ready", srv.handleReady)
	mux.HandleFunc("/room/balloon/", srv.handleBalloon)
	mux.HandleFunc("/room/events", srv.handleEvents)
	mux.HandleFunc("/room/poll", srv.handlePoll)
	mux.HandleFunc("/room/play-again", srv.handlePlayAgain)
	mux.HandleFunc("/room/ws", srv.handleWS)
	mux.HandleFunc("/health", srv.handleHealth)
	mux.HandleFunc("/analytics", srv.handleAnalyticsDashboard)
	mux.HandleFunc("/analytics/leaderboard", srv.handleAnalyticsLeaderboard)
	mux.HandleFunc("/analytics/player/", srv.handleAnalyticsPlayer)
	mux.HandleFunc("/analytics/game/", srv.handleAnalyticsGame)
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	addr := "0.0.0.0:" + appCfg.Port
	fmt.Printf("Server listening on http://localhost:%s\n", appCfg.Port)
	return http.ListenAndServe(addr, mux)
}

func popBatchWriter(database *db.DB, buffer chan db.PopEvent) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	batch := make([]db.PopEvent, 0, 50)

	for {
		select {
		case ev := <-buffer:
			batch = append(batch, ev)
			if len(batch) >= 50 {
				if err := database.BatchRecordPops(batch); err != nil {
					log.Printf("[DB] BatchRecordPops error: %v\n", err)
				}
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				if err := database.BatchRecordPops(batch); err != nil {
					log.Printf("[DB] BatchRecordPops error: %v\n", err)
				}
				batch = batch[:0]
			}
		}
	}
}

func adjustBatchWriter(database *db.DB, buffer chan db.AdjustmentEvent) {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	batch := make([]db.AdjustmentEvent, 0, 50)

	for {
		select {
		case ev := <-buffer:
			batch = append(batch, ev)
			if len(batch) >= 50 {
				if err := database.BatchRecordAdjustments(batch); err != nil {
					log.Printf("[DB] BatchRecordAdjustments error: %v\n", err)
				}
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				if err := database.BatchRecordAdjustments(batch); err != nil {
					log.Printf("[DB] BatchRecordAdjustments error: %v\n", err)
				}
				batch = batch[:0]
			}
		}
	}
}
