package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"yolo-webcam-go/internal/config"
)

// WebRTCHandler hands browser clients the RTC configuration
type WebRTCHandler struct {
	cfg *config.Config
}

func NewWebRTCHandler(cfg *config.Config) *WebRTCHandler {
	return &WebRTCHandler{cfg: cfg}
}

type ICEServer struct {
	URLs []string `json:"urls"`
}

type RTCConfigResponse struct {
	ICEServers []ICEServer `json:"ice_servers"`
}

// Config godoc
// @Summary WebRTC configuration
// @Description Get the ICE servers browser clients should use
// @Tags webrtc
// @Produce json
// @Success 200 {object} RTCConfigResponse
// @Router /webrtc/config [get]
func (h *WebRTCHandler) Config(c *gin.Context) {
	servers := make([]ICEServer, 0, len(h.cfg.WebRTCICEServers))
	for _, url := range h.cfg.WebRTCICEServers {
		servers = append(servers, ICEServer{URLs: []string{url}})
	}
	c.JSON(http.StatusOK, RTCConfigResponse{ICEServers: servers})
}
