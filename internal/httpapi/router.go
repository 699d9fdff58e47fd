package httpapi

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ironsheep/nutrition-lens/internal/app"
	"github.com/ironsheep/nutrition-lens/internal/history"
	"github.com/ironsheep/nutrition-lens/internal/imaging"
	"github.com/ironsheep/nutrition-lens/internal/pipeline"
	"github.com/ironsheep/nutrition-lens/internal/report"
)

// MaxImageBytes caps uploaded label photos.
const MaxImageBytes = 10 << 20

// Router owns the gin engine and the collaborators it serves.
type Router struct {
	engine *gin.Engine
	wire   *app.Wire
}

// NewRouter builds the engine and registers all routes.
func NewRouter(w *app.Wire) *Router {
	engine := gin.New()
	engine.MaxMultipartMemory = MaxImageBytes
	engine.Use(gin.LoggerWithWriter(w.Logger.Writer()), gin.Recovery())

	config := cors.DefaultConfig()
	config.AllowOrigins = w.Config.HTTP.AllowedOrigins
	config.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	engine.Use(cors.New(config))

	r := &Router{engine: engine, wire: w}

	engine.GET("/health", r.health)
	api := engine.Group("/api")
	{
		api.POST("/scan", r.scan)
		api.POST("/parse", r.parse)
		api.POST("/narrate", r.narrate)

		api.GET("/scans", r.listScans)
		api.GET("/scans/:id", r.getScan)
		api.DELETE("/scans/:id", r.deleteScan)
		api.GET("/scans/:id/report", r.scanReport)
	}
	return r
}

// Handler exposes the engine for http.Server and httptest.
func (r *Router) Handler() http.Handler {
	return r.engine
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (r *Router) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           r.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		r.wire.Logger.Printf("HTTP API listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (r *Router) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"ocr":       r.wire.Config.OCREngine(),
		"speech":    r.wire.Pipeline.HasSynthesizer(),
		"history":   r.wire.HistoryEnabled(),
		"allergens": r.wire.Detector.Names(),
	})
}

type scanResponse struct {
	*pipeline.ScanResult
	ID        string `json:"id,omitempty"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

func (r *Router) scan(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field \"image\" is required"})
		return
	}
	if file.Size > MaxImageBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image too large"})
		return
	}
	f, err := file.Open()
	if err != nil {
		writeError(c, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, MaxImageBytes))
	if err != nil {
		writeError(c, err)
		return
	}

	var opts []pipeline.ScanOption
	if region := c.PostForm("region"); region != "" {
		reg, err := imaging.ParseRegion(region)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		opts = append(opts, pipeline.WithRegion(reg))
	}
	if v := c.PostForm("preprocess"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "preprocess must be true or false"})
			return
		}
		opts = append(opts, pipeline.WithPreprocess(enabled))
	}

	result, err := r.wire.Pipeline.Scan(c.Request.Context(), data, opts...)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := scanResponse{ScanResult: result}
	if save, _ := strconv.ParseBool(c.PostForm("save")); save {
		store, err := r.wire.RequireHistory(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		rec, dup, err := store.SaveOnce(c.Request.Context(), file.Filename, data, result)
		if err != nil {
			writeError(c, err)
			return
		}
		resp.ID = rec.ID
		if dup {
			resp.Duplicate = true
			c.JSON(http.StatusOK, resp)
			return
		}
		c.JSON(http.StatusCreated, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type textRequest struct {
	Text string `json:"text" binding:"required"`
}

func (r *Router) parse(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	c.JSON(http.StatusOK, r.wire.Pipeline.ScanText(req.Text))
}

func (r *Router) narrate(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result := r.wire.Pipeline.ScanText(req.Text)
	n := r.wire.Pipeline.Narrate(c.Request.Context(), result.Nutrition)

	voice := r.wire.Config.Voice()
	if len(n.Audio) > 0 && c.Query("format") != "json" {
		c.Data(http.StatusOK, voice.AudioEncoding.ContentType(), n.Audio)
		return
	}

	body := gin.H{"text": n.Text}
	if n.Warning != "" {
		body["warning"] = n.Warning
	}
	if len(n.Audio) > 0 {
		body["audio_base64"] = base64.StdEncoding.EncodeToString(n.Audio)
		body["audio_encoding"] = string(voice.AudioEncoding)
	}
	c.JSON(http.StatusOK, body)
}

func (r *Router) listScans(c *gin.Context) {
	store, err := r.wire.RequireHistory(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	limit := 0
	if v := c.Query("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
	}
	records, err := store.List(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, history.Summaries(records))
}

func (r *Router) getScan(c *gin.Context) {
	rec, ok := r.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (r *Router) deleteScan(c *gin.Context) {
	store, err := r.wire.RequireHistory(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if err := store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Scan deleted successfully"})
}

func (r *Router) scanReport(c *gin.Context) {
	rec, ok := r.lookup(c)
	if !ok {
		return
	}
	meta := report.Meta{Source: rec.Source, ScannedAt: rec.CreatedAt, ID: rec.ID}

	if strings.EqualFold(c.Query("format"), "markdown") {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Markdown(meta, rec.Result)))
		return
	}
	page, err := report.HTML(meta, rec.Result)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

// lookup fetches the record named by the :id parameter, writing the error
// response itself when it fails.
func (r *Router) lookup(c *gin.Context) (*history.Record, bool) {
	store, err := r.wire.RequireHistory(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	rec, err := store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return rec, true
}

// writeError maps the error taxonomy onto HTTP status codes.
func writeError(c *gin.Context, err error) {
	var decodeErr *imaging.DecodeError
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &decodeErr):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, pipeline.ErrInvalidRegion):
		status = http.StatusBadRequest
	case errors.Is(err, history.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, app.ErrHistoryDisabled):
		status = http.StatusNotImplemented
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
