package server

import (
	"encoding/json"
	"net/http"
	_ "net/http/pprof" // Profiling

	"github.com/ZiglerOllydbg/ra2-sub003/internal/version"
	"github.com/ZiglerOllydbg/ra2-sub003/pkg/logger"
)

type Server struct {
	Lobby *Lobby
	Port  string
}

func New(lobby *Lobby, port string) *Server {
	return &Server{
		Lobby: lobby,
		Port:  port,
	}
}

// Handler собирает роуты. Профилировщик net/http/pprof висит на DefaultServeMux,
// поэтому роуты регистрируются туда же.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	mux.Handle("/debug/pprof/", http.DefaultServeMux)
	return mux
}

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", enableCORS(s.handleWS))
	mux.HandleFunc("/health", enableCORS(s.handleHealth))
	mux.HandleFunc("/version", enableCORS(s.handleVersion))

	debugHandler := NewDebugHandler(s.Lobby)
	debugHandler.RegisterRoutes(mux)
}

// Run запускает HTTP сервер
func (s *Server) Run() error {
	logger.Log.Infof("RA2 lockstep relay running on :%s", s.Port)
	return http.ListenAndServe(":"+s.Port, s.Handler())
}

func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		next(w, r)
	}
}

// handleWS обрабатывает подключение по WebSocket
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Error("Upgrade error:", err)
		return
	}

	client := NewClient(s.Lobby, conn)
	go client.serve()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(version.Info())
}
