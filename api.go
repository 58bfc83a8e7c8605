package main

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/skip2/go-qrcode"
)

type createGameRequest struct {
	Name    string      `json:"name"`
	Options GameOptions `json:"options"`
}

type validateNameRequest struct {
	Name string `json:"name"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	if isNotFound(err) {
		status = http.StatusNotFound
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func serveAPIHealth(dir *GameDirectory) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":      "ok",
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"gameService": dir != nil,
		})
	}
}

func serveAPIStats(dir *GameDirectory) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		if dir == nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "game service not initialized",
			})

			return
		}

		writeJSON(w, http.StatusOK, dir.Stats())
	}
}

func serveCreateGame(cfg *Config, dir *GameDirectory, hub *Hub, log *logrus.Logger) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var req createGameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, validationErr("invalid request body"))
			return
		}

		snapshot, err := dir.CreateGame(req.Name, req.Options)
		if err != nil {
			writeError(w, err)
			return
		}

		log.WithFields(logrus.Fields{
			"game": snapshot.ID,
			"name": snapshot.Name,
			"ip":   realIP(r),
		}).Info("game created over http")

		hub.BroadcastState(snapshot)

		writeJSON(w, http.StatusCreated, map[string]any{
			"success": true,
			"game":    snapshot,
		})
	}
}

func serveCurrentGame(dir *GameDirectory) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		snapshot := dir.CurrentSnapshot()
		if snapshot == nil {
			writeError(w, notFoundErr("No active game"))
			return
		}

		writeJSON(w, http.StatusOK, snapshot)
	}
}

func serveEndCurrentGame(dir *GameDirectory, hub *Hub, log *logrus.Logger) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		// Ending with no active game is not an error; game is null then.
		snapshot := dir.EndCurrentGame()
		if snapshot != nil {
			log.WithFields(logrus.Fields{
				"game": snapshot.ID,
				"ip":   realIP(r),
			}).Info("game ended over http")

			hub.BroadcastEnded(snapshot)
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"game":    snapshot,
		})
	}
}

func serveValidateName(dir *GameDirectory) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var req validateNameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			writeError(w, validationErr("name is required"))
			return
		}

		v := validateName(req.Name, "")

		writeJSON(w, http.StatusOK, map[string]any{
			"isUnique":   dir.IsNameUnique(req.Name),
			"valid":      v.Valid,
			"message":    v.Message,
			"normalized": v.Normalized,
		})
	}
}

func serveHistory(dir *GameDirectory) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		history := dir.History()
		if history == nil {
			history = []GameRecord{}
		}

		writeJSON(w, http.StatusOK, history)
	}
}

// serveGameQR renders a PNG QR code pointing at the join URL of the
// active game, respecting TLS and X-Forwarded-Proto.
func serveGameQR(cfg *Config, dir *GameDirectory) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		if dir.CurrentSnapshot() == nil {
			writeError(w, notFoundErr("No active game"))
			return
		}

		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		url := scheme + "://" + r.Host + cfg.prefix + "/"

		const qrSize = 320 // mobile-friendly size
		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}
}

func serveVersion(cfg *Config, log *logrus.Logger) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(cfg, w)
		w.WriteHeader(http.StatusOK)

		written, err := w.Write([]byte("sketchwars v" + releaseVersion + "\n"))
		if err != nil {
			return
		}

		log.WithFields(logrus.Fields{
			"size":     humanReadableSize(int64(written)),
			"ip":       realIP(r),
			"duration": time.Since(startTime).Round(time.Microsecond).String(),
		}).Debug("served version page")
	}
}

func serveHealthCheck(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(cfg, w)

		_, _ = w.Write([]byte("Ok\n"))
	}
}

func serveRobots(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		data := "User-agent: *\nDisallow: /\n"

		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(cfg, w)

		_, _ = w.Write([]byte(data))
	}
}

// registerAPI wires the request/response surface and the realtime channel
// onto the router.
func registerAPI(cfg *Config, mux *httprouter.Router, dir *GameDirectory, hub *Hub, log *logrus.Logger) {
	prefix := strings.TrimSuffix(cfg.prefix, "/")

	mux.GET(prefix+"/api/health", serveAPIHealth(dir))
	mux.GET(prefix+"/api/stats", serveAPIStats(dir))
	mux.POST(prefix+"/api/games", serveCreateGame(cfg, dir, hub, log))
	mux.GET(prefix+"/api/games/current", serveCurrentGame(dir))
	mux.DELETE(prefix+"/api/games/current", serveEndCurrentGame(dir, hub, log))
	mux.GET(prefix+"/api/games/current/qr", serveGameQR(cfg, dir))
	mux.POST(prefix+"/api/validate/name", serveValidateName(dir))
	mux.GET(prefix+"/api/games/history", serveHistory(dir))

	mux.GET(prefix+"/ws", serveWS(hub))
}
