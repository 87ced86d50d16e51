package restapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"trenchcard/internal/app/port"
	"trenchcard/internal/app/presenter"
	"trenchcard/internal/domain/entity"
	"trenchcard/internal/infrastructure/card"
)

// Error bodies never carry upstream details.
const (
	msgInvalidAddress    = "Invalid wallet address"
	msgFetchFailed       = "Failed to fetch wallet data"
	msgGenerateFailed    = "Failed to generate PNL card image"
	msgUnsupportedFormat = "Unsupported image format"
)

const formatHTML = "html"

type errorResponse struct {
	Error string `json:"error"`
}

// WalletHandler serves the wallet data and card image routes.
type WalletHandler struct {
	snapshots port.SnapshotService
	cards     *card.Builder
	renderer  port.Renderer
	location  *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

// NewWalletHandler creates a new WalletHandler. loc is used for every
// displayed time; nil means UTC.
func NewWalletHandler(snapshots port.SnapshotService, cards *card.Builder, renderer port.Renderer, loc *time.Location, logger *zap.Logger) *WalletHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &WalletHandler{
		snapshots: snapshots,
		cards:     cards,
		renderer:  renderer,
		location:  loc,
		now:       time.Now,
		logger:    logger.Named("WalletHandler"),
	}
}

// GetWalletHandler returns the presented snapshot of :address.
func (h *WalletHandler) GetWalletHandler(c *gin.Context) {
	log := requestLogger(c, h.logger)

	snapshot, err := h.snapshots.BuildSnapshot(c.Request.Context(), c.Param("address"))
	if err != nil {
		h.abortWithSnapshotError(c, log, err, msgFetchFailed)
		return
	}
	c.JSON(http.StatusOK, presenter.Present(snapshot, h.location))
}

// GenerateCardHandler renders the card of :address. Query parameters:
// hideBalance (bool) and format (png, jpeg or html; png by default).
func (h *WalletHandler) GenerateCardHandler(c *gin.Context) {
	log := requestLogger(c, h.logger)

	format := strings.ToLower(c.DefaultQuery("format", string(port.ImagePNG)))
	if format == "jpg" {
		format = string(port.ImageJPEG)
	}
	if format != string(port.ImagePNG) && format != string(port.ImageJPEG) && format != formatHTML {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: msgUnsupportedFormat})
		return
	}
	hideBalance, _ := strconv.ParseBool(c.Query("hideBalance"))

	snapshot, err := h.snapshots.BuildSnapshot(c.Request.Context(), c.Param("address"))
	if err != nil {
		h.abortWithSnapshotError(c, log, err, msgGenerateFailed)
		return
	}

	markup, err := h.cards.Build(presenter.Present(snapshot, h.location), card.Options{
		HideBalance: hideBalance,
		GeneratedAt: h.now(),
		Location:    h.location,
	})
	if err != nil {
		log.Error("Failed to build card markup", zap.Error(err))
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: msgGenerateFailed})
		return
	}
	if format == formatHTML {
		c.Data(http.StatusOK, "text/html; charset=utf-8", markup)
		return
	}

	imageFormat := port.ImageFormat(format)
	img, err := h.renderer.Render(c.Request.Context(), markup, imageFormat)
	if err != nil {
		log.Error("Failed to render card image", zap.String("format", format), zap.Error(err))
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: msgGenerateFailed})
		return
	}
	c.Data(http.StatusOK, imageFormat.ContentType(), img)
}

func (h *WalletHandler) abortWithSnapshotError(c *gin.Context, log *zap.Logger, err error, message string) {
	_ = c.Error(err)
	if errors.Is(err, entity.ErrInvalidAddress) {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: msgInvalidAddress})
		return
	}
	log.Error("Snapshot failed", zap.String("address", c.Param("address")), zap.Error(err))
	c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: message})
}
