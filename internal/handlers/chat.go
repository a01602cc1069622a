package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"shopshere/internal/chat"
)

// systemPrompt pins the assistant to storefront support topics.
const systemPrompt = `You are a helpful AI assistant for "Shopshere", a modern e-commerce platform.

Your job is to assist users by clearly and politely explaining how the site works: browsing and searching products, reading ratings and reviews, managing the cart, checking out, paying securely via Razorpay, and tracking orders under "My Orders".

Platform features:
- Browse products by category or search, with filters for category, price and ratings.
- Product pages show images, ratings and customer reviews.
- Signed-in users can add items to their cart, update quantities, and check out with a shipping address.
- Payments are handled securely through Razorpay; order history lives in the user's profile.
- Users can leave one review per product and manage their account password.

Always be concise, helpful, and polite. If users ask about unrelated topics, gently redirect them to Shopshere features.`

type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// HandleChatMessage proxies a single user message to the language-model
// completion API with the fixed system prompt. No conversation state is kept.
func HandleChatMessage(client *chat.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/chat"
		defer handlePanic(c, route)

		var req ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
			respondWithError(c, http.StatusBadRequest, route, `Missing "message" in request body`)
			return
		}

		reply, err := client.Complete(c.Request.Context(), systemPrompt, req.Message)
		if err != nil {
			log.Println("[CHAT] [ERROR] completion failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Something went wrong with the chat service")
			return
		}

		c.JSON(http.StatusOK, gin.H{"reply": reply})
	}
}
