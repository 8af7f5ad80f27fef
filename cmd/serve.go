package main

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/brandscope/internal/export"
	"github.com/sells-group/brandscope/internal/imaging"
	"github.com/sells-group/brandscope/internal/model"
	"github.com/sells-group/brandscope/internal/radar"
	"github.com/sells-group/brandscope/internal/session"
	"github.com/sells-group/brandscope/internal/wizard"
	anthropicpkg "github.com/sells-group/brandscope/pkg/anthropic"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the wizard HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		wiz, st, err := initWizard(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		r := buildRouter(wiz, st, cfg.Gate.Passphrase)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// buildRouter assembles the wizard API router. Every route except health
// and unlock sits behind the passphrase gate.
func buildRouter(wiz *wizard.Wizard, st session.Store, passphrase string) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Access-Key"},
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/{id}/unlock", handleUnlock(wiz))

		r.Group(func(r chi.Router) {
			r.Use(accessGate(passphrase))

			r.Post("/", handleCreateSession(wiz))
			r.Get("/", handleListSessions(st))
			r.Get("/{id}", handleGetSession(wiz))
			r.Delete("/{id}", handleDeleteSession(st))
			r.Put("/{id}/project", handleUpdateProject(wiz))
			r.Put("/{id}/evidence/{category}", handleSaveEvidence(wiz))
			r.Post("/{id}/evidence/{category}/images", handleAddImages(wiz))
			r.Post("/{id}/run/{category}", handleRunCategory(wiz))
			r.Get("/{id}/result", handleResult(wiz))
			r.Get("/{id}/export.xlsx", handleExportXLSX(wiz))
			r.Get("/{id}/export.md", handleExportMarkdown(wiz))
		})
	})

	return r
}

// accessGate enforces the shared passphrase via the X-Access-Key header.
// A deployment with no passphrase configured runs open. This is a
// courtesy gate, not a security boundary.
func accessGate(passphrase string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if passphrase == "" || subtle.ConstantTimeCompare([]byte(req.Header.Get("X-Access-Key")), []byte(passphrase)) == 1 {
				next.ServeHTTP(w, req)
				return
			}
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "access key required"})
		})
	}
}

func handleUnlock(wiz *wizard.Wizard) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Passphrase string `json:"passphrase"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if err := wiz.Unlock(req.Context(), chi.URLParam(req, "id"), body.Passphrase); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "unlocked"})
	}
}

func handleCreateSession(wiz *wizard.Wizard) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var project model.Project
		if err := json.NewDecoder(req.Body).Decode(&project); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		sess, err := wiz.CreateSession(req.Context(), project)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, sess)
	}
}

func handleListSessions(st session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(req.URL.Query().Get("offset"))
		sessions, err := st.ListSessions(req.Context(), limit, offset)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
	}
}

func handleGetSession(wiz *wizard.Wizard) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		sess, err := wiz.GetSession(req.Context(), chi.URLParam(req, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

func handleDeleteSession(st session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := st.DeleteSession(req.Context(), chi.URLParam(req, "id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleUpdateProject(wiz *wizard.Wizard) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var project model.Project
		if err := json.NewDecoder(req.Body).Decode(&project); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		sess, err := wiz.UpdateProject(req.Context(), chi.URLParam(req, "id"), project)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

func handleSaveEvidence(wiz *wizard.Wizard) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Fields map[string]string `json:"fields"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		sess, err := wiz.SaveEvidence(req.Context(),
			chi.URLParam(req, "id"),
			model.Category(chi.URLParam(req, "category")),
			body.Fields,
		)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

func handleAddImages(wiz *wizard.Wizard) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Images []struct {
				Filename string `json:"filename"`
				Data     []byte `json:"data"`
			} `json:"images"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}

		items := make([]imaging.BatchItem, len(body.Images))
		for i, img := range body.Images {
			items[i] = imaging.BatchItem{Filename: img.Filename, Data: img.Data}
		}

		sess, failures, err := wiz.AddImages(req.Context(),
			chi.URLParam(req, "id"),
			model.Category(chi.URLParam(req, "category")),
			items,
		)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"session":  sess,
			"failures": failures,
		})
	}
}

func handleRunCategory(wiz *wizard.Wizard) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		result, err := wiz.RunCategory(req.Context(),
			chi.URLParam(req, "id"),
			model.Category(chi.URLParam(req, "category")),
		)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func handleResult(wiz *wizard.Wizard) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		sess, err := wiz.GetSession(req.Context(), chi.URLParam(req, "id"))
		if err != nil {
			writeError(w, err)
			return
		}

		size := 400.0
		if s := req.URL.Query().Get("size"); s != "" {
			if parsed, err := strconv.ParseFloat(s, 64); err == nil && parsed > 0 {
				size = parsed
			}
		}

		resp := map[string]any{"session": sess}
		if sess.Aggregate != nil {
			resp["radar"] = map[string]any{
				"polygon": radar.Polygon(*sess.Aggregate, size),
				"axes":    radar.Axes(size),
			}
			resp["continuum"] = map[string]any{
				"width":  size,
				"marker": radar.ContinuumMarker(sess.Aggregate.Overall, size),
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleExportXLSX(wiz *wizard.Wizard) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		sess, err := wiz.GetSession(req.Context(), chi.URLParam(req, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		// Render fully before touching the ResponseWriter so a failed
		// export surfaces as an error status, not a truncated 200.
		var buf bytes.Buffer
		if err := export.WriteXLSX(&buf, sess); err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="assessment.xlsx"`)
		if _, err := w.Write(buf.Bytes()); err != nil {
			zap.L().Warn("export xlsx write failed", zap.Error(err))
		}
	}
}

func handleExportMarkdown(wiz *wizard.Wizard) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		sess, err := wiz.GetSession(req.Context(), chi.URLParam(req, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		var buf bytes.Buffer
		if err := export.WriteMarkdown(&buf, sess); err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="assessment.md"`)
		if _, err := w.Write(buf.Bytes()); err != nil {
			zap.L().Warn("export markdown write failed", zap.Error(err))
		}
	}
}

// writeError maps domain errors to HTTP statuses. Upstream model failures
// surface the provider message verbatim for inline display.
func writeError(w http.ResponseWriter, err error) {
	var upstream *anthropicpkg.UpstreamError

	status := http.StatusInternalServerError
	switch {
	case eris.Is(err, session.ErrNotFound):
		status = http.StatusNotFound
	case eris.Is(err, wizard.ErrValidation), eris.Is(err, wizard.ErrUnknownCategory):
		status = http.StatusBadRequest
	case eris.Is(err, wizard.ErrAnalysisInFlight):
		status = http.StatusConflict
	case eris.Is(err, wizard.ErrBadPassphrase):
		status = http.StatusUnauthorized
	case errors.As(err, &upstream):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		zap.L().Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
