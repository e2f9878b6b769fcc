package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aaaravM/PathLearn/pkg/engine"
	"github.com/aaaravM/PathLearn/pkg/model"
	"github.com/aaaravM/PathLearn/pkg/store/sqlite"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg := loadConfig()

	ctx := context.Background()

	var store engine.Store
	if cfg.DBPath != "" {
		db, err := sqlite.New(ctx, sqlite.Config{Path: cfg.DBPath, Logger: logger})
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		store = db
	}

	core, err := engine.New(ctx, engine.Options{Store: store, Logger: logger})
	if err != nil {
		log.Fatalf("failed to init engine: %v", err)
	}
	defer core.Close()

	if store != nil {
		go startSnapshotLoop(ctx, core, cfg.SnapshotEvery, logger)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Post("/api/learners", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]string{"learner_id": "guest-" + uuid.NewString()})
	})

	r.Route("/api/learners/{id}", func(r chi.Router) {
		r.Post("/interactions", func(w http.ResponseWriter, req *http.Request) {
			var ev model.InteractionEvent
			if err := json.NewDecoder(req.Body).Decode(&ev); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			core.RecordInteraction(req.Context(), learnerID(req), ev)
			w.WriteHeader(http.StatusNoContent)
		})

		r.Get("/state", func(w http.ResponseWriter, req *http.Request) {
			summary := core.StateSummary(learnerID(req))
			if summary == nil {
				// New learner: no history yet is a normal state, not an error.
				writeJSON(w, map[string]any{"state": nil})
				return
			}
			writeJSON(w, map[string]any{"state": summary})
		})

		r.Get("/retention", func(w http.ResponseWriter, req *http.Request) {
			id := learnerID(req)
			writeJSON(w, map[string]any{
				"curve":      core.RetentionCurve(id),
				"review_day": core.ReviewDay(id),
			})
		})

		r.Get("/prediction", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, core.PredictPerformance(learnerID(req)))
		})

		r.Get("/fingerprint", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, core.Fingerprint(learnerID(req)))
		})

		r.Get("/plan", func(w http.ResponseWriter, req *http.Request) {
			id := learnerID(req)
			writeJSON(w, map[string]any{
				"plan":          core.Plan(id),
				"should_review": core.ShouldReview(id),
			})
		})

		r.Post("/career-path", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				CareerPath string `json:"career_path"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			core.SetCareerPath(learnerID(req), body.CareerPath)
			w.WriteHeader(http.StatusNoContent)
		})

		r.Post("/optimize", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				Lesson  model.LessonContext `json:"lesson"`
				Outcome model.Outcome       `json:"outcome"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			res, err := core.OptimizeNextLesson(req.Context(), learnerID(req), body.Lesson, body.Outcome)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			writeJSON(w, res)
		})
	})

	logger.Info("starting PathLearn server", "addr", cfg.ListenAddr, "db", cfg.DBPath)
	if err := http.ListenAndServe(cfg.ListenAddr, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func learnerID(req *http.Request) string {
	return chi.URLParam(req, "id")
}

// ------------ config & helpers ------------

type config struct {
	ListenAddr    string
	DBPath        string
	SnapshotEvery time.Duration
}

func loadConfig() config {
	return config{
		ListenAddr:    getenv("PATHLEARN_LISTEN_ADDR", ":8080"),
		DBPath:        os.Getenv("PATHLEARN_DB_PATH"),
		SnapshotEvery: getenvDuration("PATHLEARN_SNAPSHOT_EVERY", 5*time.Minute),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func startSnapshotLoop(ctx context.Context, core *engine.Engine, every time.Duration, logger *slog.Logger) {
	if every <= 0 {
		every = 5 * time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := core.SaveSnapshots(ctx); err != nil {
				logger.Error("snapshot save failed", "err", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
