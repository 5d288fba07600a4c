package handler

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"invodex/internal/domain"
	"invodex/internal/pipeline"
	"invodex/internal/port"
)

// ProcessRequest is the body for both processing endpoints. StartingPoint and
// WindowSize select the batch window; the caller advances StartingPoint by the
// returned files_handled to resume. An omitted, zero, or negative WindowSize
// processes everything from StartingPoint through the end of the list — set
// it explicitly to cap how many files one request sends to the analysis
// provider.
type ProcessRequest struct {
	Path              string `json:"path" binding:"required"`
	Recursive         bool   `json:"recursive"`
	LanguageDetection bool   `json:"language_detection"`
	StartingPoint     int    `json:"starting_point"`
	WindowSize        int    `json:"window_size"`
}

// ProcessHandler exposes the batch pipeline over HTTP.
type ProcessHandler struct {
	runner *pipeline.Runner
	repo   port.DocumentRepository
}

// NewProcessHandler creates a new ProcessHandler. repo may be nil when
// persistence is disabled.
func NewProcessHandler(runner *pipeline.Runner, repo port.DocumentRepository) *ProcessHandler {
	return &ProcessHandler{runner: runner, repo: repo}
}

// Process handles POST /process
func (h *ProcessHandler) Process(c *gin.Context) {
	h.handle(c, func(ctx context.Context, req *ProcessRequest) (*pipeline.RunResult, error) {
		return h.runner.Run(ctx, req.Path, req.Recursive, req.LanguageDetection, req.StartingPoint, req.WindowSize)
	})
}

// ProcessLLM handles POST /process/llm
func (h *ProcessHandler) ProcessLLM(c *gin.Context) {
	h.handle(c, func(ctx context.Context, req *ProcessRequest) (*pipeline.RunResult, error) {
		return h.runner.RunHybrid(ctx, req.Path, req.Recursive, req.LanguageDetection, req.StartingPoint, req.WindowSize)
	})
}

func (h *ProcessHandler) handle(c *gin.Context, run func(context.Context, *ProcessRequest) (*pipeline.RunResult, error)) {
	var req ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body: "+err.Error())
		return
	}

	result, err := run(c.Request.Context(), &req)
	if err != nil {
		HandleError(c, err)
		return
	}

	h.persist(c.Request.Context(), result.Results)
	RespondOK(c, result)
}

// persist records the batch's documents. A storage failure is logged but does
// not fail the request: the extraction results are already in the response.
func (h *ProcessHandler) persist(ctx context.Context, docs []domain.Document) {
	if h.repo == nil || len(docs) == 0 {
		return
	}
	if err := h.repo.UpsertBatch(ctx, docs); err != nil {
		log.Printf("ProcessHandler.persist: %v", err)
	}
}
