package websocket

import (
	"log"
	"net/http"
	"sync"

	"speakcoach/models"
	"speakcoach/services"
	"speakcoach/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	// In production, adjust the CheckOrigin function to allow only trusted origins.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

var discussionService *services.DiscussionService

// InitDiscussionHandler wires the discussion service used by the live
// speech channel.
func InitDiscussionHandler(svc *services.DiscussionService) {
	discussionService = svc
}

// Message is the live-channel envelope. Client to server: "interim" and
// "final" carry recognition fragments, "finalizeTurn" submits the
// accumulated transcript, "reset" discards it. Server to client:
// "transcript" echoes the running transcript, "turn" carries the AI
// responses for a completed turn, "error" reports a failure.
type Message struct {
	Type       string                     `json:"type"`
	Text       string                     `json:"text,omitempty"`
	Transcript string                     `json:"transcript,omitempty"`
	Messages   []models.DiscussionMessage `json:"messages,omitempty"`
	Phase      string                     `json:"phase,omitempty"`
	TurnCount  int                        `json:"turnCount,omitempty"`
	MaxTurns   int                        `json:"maxTurns,omitempty"`
	Score      *models.DiscussionScore    `json:"score,omitempty"`
	HistoryID  string                     `json:"historyId,omitempty"`
	Error      string                     `json:"error,omitempty"`
}

// DiscussionSpeechHandler handles the WebSocket channel that feeds
// browser speech recognition into a discussion session. The client
// streams interim and final fragments as the student speaks; when it
// signals end of turn, the accumulated transcript is submitted and the
// AI responses are pushed back over the same connection.
func DiscussionSpeechHandler(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		log.Println("WebSocket connection failed: missing token")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
		return
	}
	userID, err := utils.ValidateToken(token)
	if err != nil {
		log.Printf("WebSocket connection failed: invalid token - %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	sessionID := c.Query("session")
	if sessionID == "" {
		log.Println("WebSocket connection failed: missing session parameter")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing session parameter"})
		return
	}
	if _, err := discussionService.GetSession(userID, sessionID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Discussion session not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	var writeMu sync.Mutex
	send := func(msg Message) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("WebSocket write failed: %v", err)
		}
	}

	buffer := &services.TranscriptBuffer{}

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read failed: %v", err)
			}
			return
		}

		switch msg.Type {
		case "interim":
			buffer.SetInterim(msg.Text)
			send(Message{Type: "transcript", Transcript: buffer.Text()})
		case "final":
			buffer.Commit(msg.Text)
			send(Message{Type: "transcript", Transcript: buffer.Text()})
		case "reset":
			buffer.Reset()
			send(Message{Type: "transcript", Transcript: ""})
		case "finalizeTurn":
			transcript := buffer.Text()
			buffer.Reset()
			if transcript == "" {
				send(Message{Type: "error", Error: "Nothing was heard this turn"})
				continue
			}
			result, err := discussionService.SubmitTurn(c.Request.Context(), userID, sessionID, transcript)
			if err != nil {
				send(Message{Type: "error", Error: err.Error()})
				continue
			}
			send(Message{
				Type:      "turn",
				Messages:  result.Messages,
				Phase:     result.Phase,
				TurnCount: result.TurnCount,
				MaxTurns:  result.MaxTurns,
				Score:     result.Score,
				HistoryID: result.HistoryID,
			})
		default:
			log.Printf("WebSocket ignoring unknown message type %q", msg.Type)
		}
	}
}
